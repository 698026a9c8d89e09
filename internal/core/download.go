package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/packcat/internal/logging"
)

// DownloadPacks downloads every pack of an import that has a URL into dir.
// An empty dir means the configured download directory.
func (s *Service) DownloadPacks(ctx context.Context, importID uuid.UUID, dir string) (*DownloadResult, error) {
	packs, err := s.ListPacks(ctx, importID)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = s.downloadDir
	}
	return s.Download(ctx, packs, dir)
}

// Download fetches packs into dir concurrently. A failed pack is reported in
// the result and does not stop the others. Archives are saved as-is.
func (s *Service) Download(ctx context.Context, packs []PackInfo, dir string) (*DownloadResult, error) {
	if dir == "" {
		return nil, errors.New("download: no directory given")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}

	start := s.now()
	log := logging.WithFields(ctx, "dir", dir)

	var targets []PackInfo
	for _, p := range packs {
		if p.URL != nil {
			targets = append(targets, p)
		}
	}
	names := downloadNames(targets)

	result := &DownloadResult{Dir: dir, Packs: make([]DownloadedPack, len(targets))}

	var g errgroup.Group
	g.SetLimit(s.downloads.MaxConcurrent())
	for i, p := range targets {
		g.Go(func() error {
			out := DownloadedPack{PackID: p.ID, Name: p.Name}
			n, path, err := s.downloadOne(ctx, p, filepath.Join(dir, names[i]))
			out.Bytes = n
			if err != nil {
				out.Error = FormatUserError(err)
				log.Warn("pack download failed", "pack", p.Name, "url", p.URLString(), "error", err)
			} else {
				out.Path = path
			}
			result.Packs[i] = out
			return nil
		})
	}
	_ = g.Wait()

	for _, p := range result.Packs {
		if p.Error != "" {
			result.Failed++
		} else {
			result.Downloaded++
		}
	}
	result.Duration = s.now().Sub(start)

	log.Info("downloads finished",
		"downloaded", result.Downloaded,
		"failed", result.Failed,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// downloadOne writes one pack to a temporary file and renames it into place.
func (s *Service) downloadOne(ctx context.Context, p PackInfo, dest string) (int64, string, error) {
	if err := s.downloads.Acquire(ctx); err != nil {
		return 0, "", err
	}
	defer s.downloads.Release()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".part-*")
	if err != nil {
		return 0, "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	n, err := s.fetcher.Download(ctx, p.URLString(), tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, "", err
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return n, "", fmt.Errorf("save %s: %w", filepath.Base(dest), err)
	}
	return n, dest, nil
}

// downloadNames picks a file name for each pack. Names come from the URL
// path, then the pack name, and are reduced to a single path element.
// Duplicates get the catalog line as a prefix, then a counter if that
// name is taken too.
func downloadNames(packs []PackInfo) []string {
	names := make([]string, len(packs))
	used := make(map[string]bool, len(packs))

	for i, p := range packs {
		name := safeFileName(URLBaseName(p.URL))
		if name == "" {
			name = safeFileName(p.Name)
		}
		if name == "" {
			name = p.ID.String()
		}
		base := name
		for n := 1; used[strings.ToLower(name)]; n++ {
			if n == 1 {
				name = fmt.Sprintf("%d_%s", p.Line, base)
			} else {
				name = fmt.Sprintf("%d_%d_%s", p.Line, n, base)
			}
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func safeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	switch name {
	case ".", "..", "/", "":
		return ""
	}
	return name
}
