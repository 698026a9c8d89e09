package core

import (
	"github.com/JonMunkholm/packcat/internal/infer"
)

// BuildPacks maps each data row of grid to a PackInfo using m. When
// hasHeader is set, row 0 is skipped. Line numbers are 1-based grid rows.
//
// Rows that are empty, or that have neither a name nor a URL, are reported
// in Skipped instead.
func BuildPacks(grid [][]string, m infer.Mapping, hasHeader bool) BuildReport {
	var report BuildReport

	start := 0
	if hasHeader {
		start = 1
	}
	if start > len(grid) {
		return report
	}

	for i, row := range grid[start:] {
		line := start + i + 1

		if isEmptyRow(row) {
			report.Skipped = append(report.Skipped, SkippedRow{Line: line, Reason: "empty row"})
			continue
		}

		pack, ok := buildPack(row, m)
		if !ok {
			report.Skipped = append(report.Skipped, SkippedRow{Line: line, Reason: "no name or url"})
			continue
		}
		pack.Line = line
		report.Packs = append(report.Packs, pack)
	}

	return report
}

func buildPack(row []string, m infer.Mapping) (PackInfo, bool) {
	p := PackInfo{
		Name:         CleanCell(m.Cell(row, infer.Name)),
		URL:          ParsePackURL(m.Cell(row, infer.URL)),
		Author:       CleanCell(m.Cell(row, infer.Author)),
		Description:  CleanCell(m.Cell(row, infer.Description)),
		Dependencies: SplitDependencies(m.Cell(row, infer.Dependencies)),
		DateModified: ParseModifiedDate(m.Cell(row, infer.DateModified)),
	}

	if p.Name == "" {
		p.Name = URLBaseName(p.URL)
	}
	if p.Name == "" && p.URL == nil {
		return PackInfo{}, false
	}

	p.UnzipRequired = IsArchiveName(p.Name)
	if p.URL != nil && IsArchiveName(p.URL.Path) {
		p.UnzipRequired = true
	}
	return p, true
}
