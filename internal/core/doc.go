// Package core provides catalog import, record building and pack downloads.
//
// The package holds the domain logic independent of any transport. The web
// server and the packctl CLI both drive it through [Service].
//
// # Pipeline
//
// An import runs through these phases, reported in [ImportResult.Phase]:
//
//  1. fetching: the catalog is downloaded ([Service.ImportCatalog]) or taken
//     from an upload ([Service.ImportCSV])
//  2. decoding: [DecodeText] strips the BOM and converts Shift-JIS, then
//     [DecodeCSV] builds a padded grid
//  3. inferring: the infer package assigns column roles and [BuildPacks]
//     turns each data row into a [PackInfo]
//  4. storing: the import and its packs are written in one transaction
//
// [Service.AnalyzeCSV] runs steps 2 and 3 only and returns a [Preview].
//
// # Concurrency
//
// Imports and downloads are bounded by a [Limiter] each. A caller that cannot
// get a slot within the configured wait receives [ErrTooManyImports] or
// [ErrTooManyDownloads]. [Service.WaitForIdle] drains both on shutdown.
//
// # Storage
//
// [Store] abstracts persistence. [PGStore] is the Postgres implementation
// and creates its tables with [PGStore.EnsureSchema].
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]:
//
//   - FETCH001-FETCH004: remote catalog and pack retrieval
//   - CSV001-CSV004: decoding and column recognition
//   - IMP001-IMP006: import and download lifecycle
//   - DB001-DB004: database failures
//   - CIU001-CIU002: browser support lookups
//   - REQ001-REQ002: malformed HTTP requests
package core
