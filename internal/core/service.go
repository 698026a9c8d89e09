package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/packcat/internal/infer"
	"github.com/JonMunkholm/packcat/internal/logging"
)

// DefaultImportTimeout is the maximum duration of one import.
var DefaultImportTimeout = 2 * time.Minute

// PreviewSampleSize is how many packs a Preview carries.
const PreviewSampleSize = 10

// ErrNoColumns is returned when neither a name nor a URL column was found.
var ErrNoColumns = errors.New("no columns recognized")

// Fetcher retrieves catalogs and pack files. *fetch.Client implements it.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
	Download(ctx context.Context, rawURL string, w io.Writer) (int64, error)
}

// Options configures a Service. Zero values fall back to the limiter and
// timeout defaults.
type Options struct {
	MaxConcurrentImports   int
	ImportMaxWait          time.Duration
	ImportTimeout          time.Duration
	MaxConcurrentDownloads int
	DownloadMaxWait        time.Duration
	DownloadDir            string
}

// Service provides catalog import, query and download operations.
type Service struct {
	store   Store
	fetcher Fetcher

	imports       *Limiter
	downloads     *Limiter
	importTimeout time.Duration
	downloadDir   string

	now func() time.Time
}

// NewService creates a Service. store may be nil for callers that only
// analyze or download catalogs without persisting them.
func NewService(store Store, fetcher Fetcher, opts Options) *Service {
	timeout := opts.ImportTimeout
	if timeout <= 0 {
		timeout = DefaultImportTimeout
	}
	return &Service{
		store:         store,
		fetcher:       fetcher,
		imports:       NewLimiter(opts.MaxConcurrentImports, opts.ImportMaxWait, ErrTooManyImports),
		downloads:     NewLimiter(opts.MaxConcurrentDownloads, opts.DownloadMaxWait, ErrTooManyDownloads),
		importTimeout: timeout,
		downloadDir:   opts.DownloadDir,
		now:           time.Now,
	}
}

// Catalog is a decoded catalog with its inference result and packs.
type Catalog struct {
	Encoding  string
	TotalRows int
	Analysis  infer.Analysis
	Report    BuildReport
}

// ParseCatalog decodes data, infers the column roles and builds the packs.
func ParseCatalog(data []byte) (*Catalog, error) {
	grid, encoding, err := decodeCatalog(data)
	if err != nil {
		return nil, err
	}

	analysis := infer.Analyze(grid)
	return &Catalog{
		Encoding:  encoding,
		TotalRows: len(grid),
		Analysis:  analysis,
		Report:    BuildPacks(grid, analysis.Mapping, analysis.HasHeader),
	}, nil
}

// AnalyzeCSV previews a catalog without storing anything.
func (s *Service) AnalyzeCSV(ctx context.Context, data []byte) (*Preview, error) {
	start := s.now()

	cat, err := ParseCatalog(data)
	if err != nil {
		return nil, err
	}

	samples := cat.Report.Packs
	if len(samples) > PreviewSampleSize {
		samples = samples[:PreviewSampleSize]
	}

	logging.FromContext(ctx).Debug("catalog analyzed",
		"rows", cat.TotalRows,
		"packs", len(cat.Report.Packs),
		"encoding", cat.Encoding,
		"has_header", cat.Analysis.HasHeader,
	)

	return &Preview{
		Analysis:         cat.Analysis,
		TotalRows:        cat.TotalRows,
		PackCount:        len(cat.Report.Packs),
		Samples:          samples,
		Skipped:          cat.Report.Skipped,
		ProcessingTimeMs: s.now().Sub(start).Milliseconds(),
	}, nil
}

// FetchCatalog downloads the catalog at source and parses it.
func (s *Service) FetchCatalog(ctx context.Context, source string) (*Catalog, error) {
	data, err := s.fetcher.Get(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ImportCatalog fetches the catalog at source and stores it.
func (s *Service) ImportCatalog(ctx context.Context, source string) (*ImportResult, error) {
	return s.runImport(ctx, source, func(ctx context.Context) ([]byte, error) {
		data, err := s.fetcher.Get(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("fetch catalog: %w", err)
		}
		return data, nil
	})
}

// ImportCSV stores an uploaded catalog. name is recorded as the source.
func (s *Service) ImportCSV(ctx context.Context, name string, data []byte) (*ImportResult, error) {
	return s.runImport(ctx, name, func(context.Context) ([]byte, error) {
		return data, nil
	})
}

func (s *Service) runImport(ctx context.Context, source string, load func(context.Context) ([]byte, error)) (*ImportResult, error) {
	if s.store == nil {
		return nil, errors.New("import: no store configured")
	}

	if err := s.imports.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("import %s: %w", source, err)
	}
	defer s.imports.Release()

	ctx, cancel := context.WithTimeout(ctx, s.importTimeout)
	defer cancel()

	start := s.now()
	result := &ImportResult{
		Import: CatalogImport{ID: uuid.New(), Source: source, ImportedAt: start.UTC()},
		Phase:  PhaseFetching,
	}
	log := logging.WithFields(ctx, "import_id", result.Import.ID, "source", source)
	log.Info("import started")

	fail := func(err error) (*ImportResult, error) {
		log.Error("import failed", "phase", result.Phase, "error", err)
		result.Phase = PhaseFailed
		result.Error = FormatUserError(err)
		result.Duration = s.now().Sub(start)
		return result, err
	}

	data, err := load(ctx)
	if err != nil {
		return fail(err)
	}

	result.Phase = PhaseDecoding
	grid, encoding, err := decodeCatalog(data)
	if err != nil {
		return fail(err)
	}

	result.Phase = PhaseInferring
	analysis := infer.Analyze(grid)
	if !analysis.Mapping.Assigned(infer.Name) && !analysis.Mapping.Assigned(infer.URL) {
		return fail(ErrNoColumns)
	}
	report := BuildPacks(grid, analysis.Mapping, analysis.HasHeader)

	result.Phase = PhaseStoring
	for i := range report.Packs {
		report.Packs[i].ID = uuid.New()
	}
	result.Import.TotalRows = len(grid)
	result.Import.Stored = len(report.Packs)
	result.Import.Skipped = len(report.Skipped)
	result.Import.HasHeader = analysis.HasHeader
	result.Import.Mapping = analysis.Mapping
	result.Skipped = report.Skipped

	if err := s.store.SaveImport(ctx, result.Import, report.Packs); err != nil {
		return fail(err)
	}

	result.Phase = PhaseComplete
	result.Duration = s.now().Sub(start)
	log.Info("import complete",
		"encoding", encoding,
		"stored", result.Import.Stored,
		"skipped", result.Import.Skipped,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

func (s *Service) ListImports(ctx context.Context, limit int) ([]CatalogImport, error) {
	return s.store.ListImports(ctx, limit)
}

func (s *Service) GetImport(ctx context.Context, id uuid.UUID) (*CatalogImport, error) {
	return s.store.GetImport(ctx, id)
}

// ListPacks returns the packs of an import in catalog order.
func (s *Service) ListPacks(ctx context.Context, importID uuid.UUID) ([]PackInfo, error) {
	if _, err := s.store.GetImport(ctx, importID); err != nil {
		return nil, err
	}
	return s.store.ListPacks(ctx, importID)
}

func (s *Service) GetPack(ctx context.Context, id uuid.UUID) (*PackInfo, error) {
	return s.store.GetPack(ctx, id)
}

// ServiceStatus reports limiter usage.
type ServiceStatus struct {
	Imports   LimiterStatus `json:"imports"`
	Downloads LimiterStatus `json:"downloads"`
}

func (s *Service) Status() ServiceStatus {
	return ServiceStatus{
		Imports:   s.imports.Status(),
		Downloads: s.downloads.Status(),
	}
}

// WaitForIdle blocks until no import or download is running.
func (s *Service) WaitForIdle(ctx context.Context) error {
	if err := s.imports.WaitForDrain(ctx); err != nil {
		return fmt.Errorf("waiting for imports: %w", err)
	}
	if err := s.downloads.WaitForDrain(ctx); err != nil {
		return fmt.Errorf("waiting for downloads: %w", err)
	}
	return nil
}
