// Package core provides the business logic for importing pack catalogs.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/packcat/internal/infer"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	SendBatch(context.Context, *pgx.Batch) pgx.BatchResults
	Begin(context.Context) (pgx.Tx, error)
}

// ModifiedDate is a last-modified date that may be unknown.
type ModifiedDate struct {
	Time  time.Time
	Known bool
}

// Unknown is the ModifiedDate of a pack whose date could not be read.
var Unknown = ModifiedDate{}

// String renders the date as YYYY-MM-DD or "unknown".
func (d ModifiedDate) String() string {
	if !d.Known {
		return "unknown"
	}
	return d.Time.Format("2006-01-02")
}

// MarshalJSON encodes the date as RFC 3339 or the string "unknown".
func (d ModifiedDate) MarshalJSON() ([]byte, error) {
	if !d.Known {
		return json.Marshal("unknown")
	}
	return json.Marshal(d.Time.Format(time.RFC3339))
}

// PackInfo is one downloadable pack described by a catalog row.
type PackInfo struct {
	ID            uuid.UUID    `json:"id"`
	Line          int          `json:"line"`
	Name          string       `json:"name"`
	URL           *url.URL     `json:"-"`
	Author        string       `json:"author,omitempty"`
	Description   string       `json:"description,omitempty"`
	Dependencies  []string     `json:"dependencies,omitempty"`
	DateModified  ModifiedDate `json:"dateModified"`
	UnzipRequired bool         `json:"unzipRequired"`
}

// URLString returns the pack URL or "".
func (p PackInfo) URLString() string {
	if p.URL == nil {
		return ""
	}
	return p.URL.String()
}

// MarshalJSON adds the URL as a plain string.
func (p PackInfo) MarshalJSON() ([]byte, error) {
	type plain PackInfo
	return json.Marshal(struct {
		plain
		URL string `json:"url,omitempty"`
	}{plain(p), p.URLString()})
}

// SkippedRow records a catalog row that produced no pack.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// BuildReport is the outcome of turning a grid into packs.
type BuildReport struct {
	Packs   []PackInfo   `json:"packs"`
	Skipped []SkippedRow `json:"skipped,omitempty"`
}

// Preview is the read-only analysis of a catalog.
type Preview struct {
	Analysis         infer.Analysis `json:"analysis"`
	TotalRows        int            `json:"totalRows"`
	PackCount        int            `json:"packCount"`
	Samples          []PackInfo     `json:"samples"`
	Skipped          []SkippedRow   `json:"skipped,omitempty"`
	ProcessingTimeMs int64          `json:"processingTimeMs"`
}

// ImportPhase indicates the current stage of an import.
type ImportPhase string

const (
	PhaseFetching  ImportPhase = "fetching"
	PhaseDecoding  ImportPhase = "decoding"
	PhaseInferring ImportPhase = "inferring"
	PhaseStoring   ImportPhase = "storing"
	PhaseComplete  ImportPhase = "complete"
	PhaseFailed    ImportPhase = "failed"
)

// CatalogImport is a stored import of one catalog.
type CatalogImport struct {
	ID         uuid.UUID     `json:"id"`
	Source     string        `json:"source"`
	ImportedAt time.Time     `json:"importedAt"`
	TotalRows  int           `json:"totalRows"`
	Stored     int           `json:"stored"`
	Skipped    int           `json:"skipped"`
	HasHeader  bool          `json:"hasHeader"`
	Mapping    infer.Mapping `json:"mapping"`
}

// ImportResult contains the final result of an import.
type ImportResult struct {
	Import   CatalogImport `json:"import"`
	Phase    ImportPhase   `json:"phase"`
	Skipped  []SkippedRow  `json:"skipped,omitempty"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// DownloadedPack is the outcome of downloading one pack.
type DownloadedPack struct {
	PackID uuid.UUID `json:"packId"`
	Name   string    `json:"name"`
	Path   string    `json:"path,omitempty"`
	Bytes  int64     `json:"bytes"`
	Error  string    `json:"error,omitempty"`
}

// DownloadResult summarises a batch download.
type DownloadResult struct {
	Dir        string           `json:"dir"`
	Downloaded int              `json:"downloaded"`
	Failed     int              `json:"failed"`
	Packs      []DownloadedPack `json:"packs"`
	Duration   time.Duration    `json:"duration"`
}
