package infer

import "strings"

// keywords maps each role to the lowercase substrings that identify it in a
// header cell. Add a locale by appending its synonyms here.
var keywords = map[Role][]string{
	DateModified: {"date", "time", "更新"},
	Name:         {"name", "file", "名前"},
	URL:          {"url", "link", "http"},
	Author:       {"author", "creator", "作者"},
	Description:  {"desc", "説明"},
	Dependencies: {"dep", "req", "前提"},
}

// Keywords returns a copy of the header keywords for r.
func Keywords(r Role) []string {
	return append([]string(nil), keywords[r]...)
}

// headerMatches reports whether a header cell names role r.
func headerMatches(lower string, r Role) bool {
	for _, kw := range keywords[r] {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// headerMarkers are the substrings that make row 0 a header. They are
// narrower than keywords: "http", "time" or "file" often appear in data rows.
var headerMarkers = []string{
	"name", "date", "url", "link", "author", "desc", "dep",
	"名前", "更新", "作者", "説明", "前提",
}

// HasHeader reports whether row looks like a header: at least one cell
// contains a header marker.
func HasHeader(row []string) bool {
	for _, cell := range row {
		lower := strings.ToLower(cell)
		for _, m := range headerMarkers {
			if strings.Contains(lower, m) {
				return true
			}
		}
	}
	return false
}
