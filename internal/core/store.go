package core

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/packcat/internal/infer"
)

var (
	ErrImportNotFound = errors.New("import not found")
	ErrPackNotFound   = errors.New("pack not found")
)

//go:embed schema.sql
var schemaSQL string

// Store persists catalog imports and their packs.
type Store interface {
	SaveImport(ctx context.Context, imp CatalogImport, packs []PackInfo) error
	ListImports(ctx context.Context, limit int) ([]CatalogImport, error)
	GetImport(ctx context.Context, id uuid.UUID) (*CatalogImport, error)
	ListPacks(ctx context.Context, importID uuid.UUID) ([]PackInfo, error)
	GetPack(ctx context.Context, id uuid.UUID) (*PackInfo, error)
}

// PGStore is the Postgres Store. db is usually a *pgxpool.Pool.
type PGStore struct {
	db DBTX
}

func NewPGStore(db DBTX) *PGStore {
	return &PGStore{db: db}
}

// EnsureSchema creates the tables if they do not exist.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const (
	insertImportSQL = `
		INSERT INTO catalog_imports (id, source, imported_at, total_rows, stored, skipped, mapping, has_header)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	insertPackSQL = `
		INSERT INTO packs (id, import_id, line, name, url, author, description, dependencies, date_modified, unzip_required)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	importColumns = `id, source, imported_at, total_rows, stored, skipped, mapping, has_header`

	packColumns = `id, import_id, line, name, url, author, description, dependencies, date_modified, unzip_required`
)

// SaveImport writes imp and all of its packs in one transaction.
func (s *PGStore) SaveImport(ctx context.Context, imp CatalogImport, packs []PackInfo) error {
	mapping, err := json.Marshal(imp.Mapping)
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}

	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		batch.Queue(insertImportSQL,
			ToPgUUID(imp.ID), imp.Source, imp.ImportedAt,
			imp.TotalRows, imp.Stored, imp.Skipped, mapping, imp.HasHeader,
		)
		for _, p := range packs {
			batch.Queue(insertPackSQL,
				ToPgUUID(p.ID), ToPgUUID(imp.ID), p.Line, p.Name,
				ToPgText(p.URLString()), ToPgText(p.Author), ToPgText(p.Description),
				p.Dependencies, ToPgDate(p.DateModified), p.UnzipRequired,
			)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert import %s: %w", imp.ID, err)
		}
		return nil
	})
}

func (s *PGStore) ListImports(ctx context.Context, limit int) ([]CatalogImport, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+importColumns+` FROM catalog_imports ORDER BY imported_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	var imports []CatalogImport
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		imports = append(imports, *imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("import rows: %w", err)
	}
	return imports, nil
}

func (s *PGStore) GetImport(ctx context.Context, id uuid.UUID) (*CatalogImport, error) {
	row := s.db.QueryRow(ctx, `SELECT `+importColumns+` FROM catalog_imports WHERE id = $1`, ToPgUUID(id))
	imp, err := scanImport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrImportNotFound, id)
	}
	return imp, err
}

func (s *PGStore) ListPacks(ctx context.Context, importID uuid.UUID) ([]PackInfo, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+packColumns+` FROM packs WHERE import_id = $1 ORDER BY line`, ToPgUUID(importID))
	if err != nil {
		return nil, fmt.Errorf("query packs: %w", err)
	}
	defer rows.Close()

	var packs []PackInfo
	for rows.Next() {
		p, err := scanPack(rows)
		if err != nil {
			return nil, err
		}
		packs = append(packs, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pack rows: %w", err)
	}
	return packs, nil
}

func (s *PGStore) GetPack(ctx context.Context, id uuid.UUID) (*PackInfo, error) {
	row := s.db.QueryRow(ctx, `SELECT `+packColumns+` FROM packs WHERE id = $1`, ToPgUUID(id))
	p, err := scanPack(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPackNotFound, id)
	}
	return p, err
}

func scanImport(row pgx.Row) (*CatalogImport, error) {
	var (
		id      pgtype.UUID
		mapping []byte
		imp     CatalogImport
	)
	err := row.Scan(&id, &imp.Source, &imp.ImportedAt, &imp.TotalRows,
		&imp.Stored, &imp.Skipped, &mapping, &imp.HasHeader)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan import: %w", err)
	}

	imp.ID = uuid.UUID(id.Bytes)
	imp.Mapping = infer.NewMapping()
	if err := json.Unmarshal(mapping, &imp.Mapping); err != nil {
		return nil, fmt.Errorf("decode mapping for import %s: %w", imp.ID, err)
	}
	return &imp, nil
}

func scanPack(row pgx.Row) (*PackInfo, error) {
	var (
		id, importID      pgtype.UUID
		url, author, desc pgtype.Text
		modified          pgtype.Date
		p                 PackInfo
	)
	err := row.Scan(&id, &importID, &p.Line, &p.Name, &url, &author, &desc,
		&p.Dependencies, &modified, &p.UnzipRequired)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan pack: %w", err)
	}

	p.ID = uuid.UUID(id.Bytes)
	p.URL = ParsePackURL(url.String)
	p.Author = author.String
	p.Description = desc.String
	p.DateModified = FromPgDate(modified)
	return &p, nil
}
