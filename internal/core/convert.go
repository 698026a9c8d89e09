package core

// convert.go turns raw catalog cells into typed pack fields and pgtype values.
//
// Catalog cells are messy: Excel formula prefixes (="value"), stray quotes,
// US/EU/ISO/Japanese dates and dependency lists split by ASCII or full-width
// commas. Every parser here is total; unparseable input becomes the zero or
// "unknown" value rather than an error.

import (
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/packcat/internal/infer"
)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// Date layouts beyond the inference grammar, split by year format for proper
// 2-digit year handling.
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006.1.2", "20060102",
	}
)

// dependencySeparators splits dependency lists. Japanese catalogs use the
// ideographic comma and the full-width comma.
var dependencySeparators = []string{",", "、", "，"}

// ParseModifiedDate reads a last-modified cell. Anything unparseable is Unknown.
func ParseModifiedDate(s string) ModifiedDate {
	s = CleanCell(s)
	if s == "" {
		return Unknown
	}

	if t, ok := infer.ParseDate(s); ok {
		return ModifiedDate{Time: t, Known: true}
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return ModifiedDate{Time: t, Known: true}
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return ModifiedDate{Time: t, Known: true}
		}
	}

	return Unknown
}

// ParsePackURL returns s as a URL if it is an absolute http(s) URL.
func ParsePackURL(s string) *url.URL {
	s = CleanCell(s)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil
	}
	return u
}

// SplitDependencies splits a dependency cell into trimmed, non-empty names,
// preserving order.
func SplitDependencies(s string) []string {
	s = CleanCell(s)
	if s == "" {
		return nil
	}
	for _, sep := range dependencySeparators[1:] {
		s = strings.ReplaceAll(s, sep, dependencySeparators[0])
	}

	var deps []string
	for _, part := range strings.Split(s, dependencySeparators[0]) {
		if part = strings.TrimSpace(part); part != "" {
			deps = append(deps, part)
		}
	}
	return deps
}

// URLBaseName returns the last path segment of u, unescaped.
func URLBaseName(u *url.URL) string {
	if u == nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "/" || base == "." {
		return ""
	}
	if unescaped, err := url.PathUnescape(base); err == nil {
		return unescaped
	}
	return base
}

// IsArchiveName reports whether name refers to a zip archive.
func IsArchiveName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".zip")
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgDate converts a ModifiedDate to pgtype.Date; unknown dates are NULL.
func ToPgDate(d ModifiedDate) pgtype.Date {
	if !d.Known {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: d.Time, Valid: true}
}

// FromPgDate is the inverse of ToPgDate.
func FromPgDate(d pgtype.Date) ModifiedDate {
	if !d.Valid {
		return Unknown
	}
	return ModifiedDate{Time: d.Time, Known: true}
}

// ToPgUUID converts a uuid.UUID to pgtype.UUID. The nil UUID is NULL.
func ToPgUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}
