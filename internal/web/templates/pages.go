package templates

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/packcat/internal/core"
	"github.com/JonMunkholm/packcat/internal/infer"
)

const timeLayout = "2006-01-02 15:04 MST"

// Dashboard lists recent imports and offers the import form.
func Dashboard(imports []core.CatalogImport) templ.Component {
	return Layout("Imports", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}

		h.raw(`<section><h1>Import a catalog</h1>`)
		h.raw(`<form method="post" action="/api/imports" hx-post="/api/imports" hx-target="#import-result">`)
		h.raw(`<input type="url" name="url" placeholder="https://example.com/catalog.csv" required>`)
		h.raw(`<button type="submit">Import</button></form>`)
		h.raw(`<form method="post" action="/api/imports" enctype="multipart/form-data">`)
		h.raw(`<input type="file" name="file" accept=".csv,text/csv">`)
		h.raw(`<button type="submit">Upload</button></form>`)
		h.raw(`<div id="import-result"></div></section>`)

		h.raw(`<section><h2>Recent imports</h2>`)
		if len(imports) == 0 {
			h.raw(`<p class="empty">No catalogs imported yet.</p></section>`)
			return h.err
		}

		h.raw(`<table><thead><tr><th>Source</th><th>Imported</th><th>Packs</th><th>Skipped</th><th>Header</th></tr></thead><tbody>`)
		for _, imp := range imports {
			h.raw(`<tr><td><a href="/imports/`)
			h.text(imp.ID.String())
			h.raw(`">`)
			h.text(imp.Source)
			h.raw(`</a></td><td>`)
			h.text(imp.ImportedAt.Format(timeLayout))
			h.raw(`</td><td>`)
			h.text(strconv.Itoa(imp.Stored))
			h.raw(`</td><td>`)
			h.text(strconv.Itoa(imp.Skipped))
			h.raw(`</td><td>`)
			h.text(yesNo(imp.HasHeader))
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table></section>`)
		return h.err
	}))
}

// ImportPage shows one import: the inferred mapping and its packs.
func ImportPage(imp core.CatalogImport, packs []core.PackInfo) templ.Component {
	return Layout(imp.Source, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}

		h.raw(`<section><h1>`)
		h.text(imp.Source)
		h.raw(`</h1><p>Imported `)
		h.text(imp.ImportedAt.Format(timeLayout))
		h.rawf(`. %d of %d rows became packs.</p>`, imp.Stored, imp.TotalRows)
		h.component(ctx, MappingTable(imp.Mapping))
		h.raw(`<form method="post" hx-post="/api/imports/`)
		h.text(imp.ID.String())
		h.raw(`/download" hx-target="#download-result"><button type="submit">Download packs</button></form>`)
		h.raw(`<div id="download-result"></div></section>`)

		h.raw(`<section><h2>Packs</h2><table><thead><tr>`)
		h.raw(`<th>Line</th><th>Name</th><th>Author</th><th>Modified</th><th>Dependencies</th><th>Archive</th>`)
		h.raw(`</tr></thead><tbody>`)
		for _, p := range packs {
			h.rawf(`<tr><td>%d</td><td>`, p.Line)
			if u := p.URLString(); u != "" {
				h.raw(`<a href="`)
				h.text(string(templ.URL(u)))
				h.raw(`" rel="noopener">`)
				h.text(p.Name)
				h.raw(`</a>`)
			} else {
				h.text(p.Name)
			}
			h.raw(`</td><td>`)
			h.text(p.Author)
			h.raw(`</td><td>`)
			h.text(p.DateModified.String())
			h.raw(`</td><td>`)
			h.text(strings.Join(p.Dependencies, ", "))
			h.raw(`</td><td>`)
			h.text(yesNo(p.UnzipRequired))
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table></section>`)
		return h.err
	}))
}

// MappingTable renders which column each role was bound to.
func MappingTable(m infer.Mapping) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<table class="mapping"><thead><tr><th>Role</th><th>Column</th></tr></thead><tbody>`)
		for _, r := range infer.Roles {
			h.raw(`<tr><td>`)
			h.text(r.String())
			h.raw(`</td><td>`)
			if m.Assigned(r) {
				h.text(strconv.Itoa(m.Column(r) + 1))
			} else {
				h.raw(`<span class="unassigned">unassigned</span>`)
			}
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
