package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/packcat/internal/caniuse"
	"github.com/JonMunkholm/packcat/internal/config"
	"github.com/JonMunkholm/packcat/internal/core"
	"github.com/JonMunkholm/packcat/internal/fetch"
	"github.com/JonMunkholm/packcat/internal/logging"
)

// app carries what every subcommand needs once the root flags are parsed.
type app struct {
	transport http.RoundTripper
	features  map[string]string

	logLevel  string
	logFormat string

	cfg      *config.ClientConfig
	client   *fetch.Client
	service  *core.Service
	browsers *caniuse.Client
}

// newRootCmd builds the command tree. A nil transport uses the default.
func newRootCmd(transport http.RoundTripper) *cobra.Command {
	return (&app{transport: transport}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "packctl",
		Short: "Inspect and download pack catalogs",
		Long: `packctl reads pack catalogs (CSV files or URLs), works out which column holds
the name, URL, author, description, dependencies and modified date, and
downloads the listed packs.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			return a.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (default from LOG_LEVEL)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text or json (default from LOG_FORMAT)")

	_ = root.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = root.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(a.newInferCommand())
	root.AddCommand(a.newPreviewCommand())
	root.AddCommand(a.newDownloadCommand())
	root.AddCommand(a.newCaniuseCommand())

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())

	a.cfg = cfg
	a.client = fetch.NewClient(fetch.Options{
		Timeout:      cfg.Fetch.Timeout,
		MaxBytes:     cfg.Fetch.MaxCatalogBytes,
		MaxFileBytes: cfg.Fetch.MaxPackBytes,
		UserAgent:    cfg.Fetch.UserAgent,
		Transport:    a.transport,
		AllowedHosts: cfg.Fetch.AllowedHosts,
	})
	a.service = core.NewService(nil, a.client, core.Options{
		MaxConcurrentDownloads: cfg.Download.MaxConcurrent,
		DownloadMaxWait:        cfg.Download.MaxWaitTime,
		DownloadDir:            cfg.Download.Dir,
	})
	a.browsers = caniuse.NewClient(a.client)
	if a.features != nil {
		a.browsers = a.browsers.WithFeatures(a.features)
	}
	return nil
}

func (a *app) newInferCommand() *cobra.Command {
	var showScores bool

	cmd := &cobra.Command{
		Use:   "infer FILE",
		Short: "Print the inferred column mapping of a CSV catalog",
		Example: `  # Mapping only
  packctl infer catalog.csv

  # Mapping, header decision and per-column scores
  packctl infer catalog.csv --scores`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			cat, err := core.ParseCatalog(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if showScores {
				return writeJSON(cmd.OutOrStdout(), cat.Analysis)
			}
			return writeJSON(cmd.OutOrStdout(), cat.Analysis.Mapping)
		},
	}

	cmd.Flags().BoolVar(&showScores, "scores", false, "include the header decision and score matrix")
	return cmd
}

func (a *app) newPreviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preview FILE|URL",
		Short: "Print the packs a catalog would produce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.loadCatalog(cmd, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), cat.Report)
		},
	}
}

func (a *app) newDownloadCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "download URL",
		Short:   "Fetch a catalog and download every pack it lists",
		Example: `  packctl download https://example.com/packs.csv --dir ./packs`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.service.FetchCatalog(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			packs := cat.Report.Packs
			for i := range packs {
				packs[i].ID = uuid.New()
			}

			if dir == "" {
				dir = a.cfg.Download.Dir
			}
			result, err := a.service.Download(cmd.Context(), packs, dir)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if result.Failed > 0 {
				return fmt.Errorf("%d of %d downloads failed", result.Failed, result.Failed+result.Downloaded)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "target directory (default from DOWNLOAD_DIR)")
	return cmd
}

func (a *app) newCaniuseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "caniuse FEATURE",
		Short: "List browsers with full support for a feature",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return caniuse.NewClient(nil).FeatureKeys(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.browsers.SupportedBrowsers(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// loadCatalog reads src from disk, or over HTTP when it looks like a URL.
func (a *app) loadCatalog(cmd *cobra.Command, src string) (*core.Catalog, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return a.service.FetchCatalog(cmd.Context(), src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, err
	}
	cat, err := core.ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	return cat, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
