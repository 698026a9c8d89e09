package infer

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Score weights. A header match is worth at least a full sample of any
// unit-weight content signal.
const (
	HeaderWeight         = 100.0
	DateWeight           = 1.0
	URLWeight            = 1.0
	ArchiveNameWeight    = 2.0
	IdentifierNameWeight = 0.5
	ListWeight           = 1.0
	LongTextWeight       = 1.0
)

// SampleRows caps how many data rows are scored.
const SampleRows = 100

const (
	minDateLen       = 5  // exclusive
	minIdentifierLen = 3  // exclusive
	minLongTextLen   = 50 // exclusive
)

var identifierRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ScoreMatrix holds one score per column for each role.
type ScoreMatrix [numRoles][]float64

// Of returns the column scores of r.
func (s ScoreMatrix) Of(r Role) []float64 {
	if r < 0 || r >= numRoles {
		return nil
	}
	return s[r]
}

// MarshalJSON encodes the matrix as an object keyed by role name.
func (s ScoreMatrix) MarshalJSON() ([]byte, error) {
	out := make(map[string][]float64, numRoles)
	for _, r := range Roles {
		out[r.String()] = s[r]
	}
	return json.Marshal(out)
}

// Analysis is the result of one inference pass with its working state.
type Analysis struct {
	Mapping     Mapping     `json:"mapping"`
	HasHeader   bool        `json:"hasHeader"`
	Columns     int         `json:"columns"`
	SampledRows int         `json:"sampledRows"`
	Scores      ScoreMatrix `json:"scores"`
}

// Infer returns the column bound to each role. It never fails: an empty grid
// or a grid where nothing scores yields an all-unassigned mapping.
func Infer(grid [][]string) Mapping {
	return Analyze(grid).Mapping
}

// Analyze runs inference and also reports the header decision, the number
// of sampled rows and the final scores.
func Analyze(grid [][]string) Analysis {
	a := Analysis{Mapping: NewMapping()}
	if len(grid) == 0 {
		return a
	}

	numCols := len(grid[0])
	a.Columns = numCols
	for _, r := range Roles {
		a.Scores[r] = make([]float64, numCols)
	}

	header := grid[0]
	a.HasHeader = HasHeader(header)

	start := 0
	if a.HasHeader {
		start = 1
		scoreHeader(&a.Scores, header)
	}

	end := start + SampleRows
	if end > len(grid) {
		end = len(grid)
	}
	for _, row := range grid[start:end] {
		scoreRow(&a.Scores, row, numCols)
	}
	a.SampledRows = end - start

	a.Mapping = assign(&a.Scores, numCols)
	return a
}

func scoreHeader(scores *ScoreMatrix, header []string) {
	for col, cell := range header {
		lower := strings.ToLower(cell)
		for _, r := range Roles {
			if headerMatches(lower, r) {
				scores[r][col] += HeaderWeight
			}
		}
	}
}

func scoreRow(scores *ScoreMatrix, row []string, numCols int) {
	for col, cell := range row {
		if col >= numCols {
			break
		}
		if cell == "" {
			continue
		}
		n := utf8.RuneCountInString(cell)

		if n > minDateLen && hasDigit(cell) {
			if _, ok := ParseDate(cell); ok {
				scores[DateModified][col] += DateWeight
			}
		}

		if strings.HasPrefix(cell, "http://") || strings.HasPrefix(cell, "https://") {
			scores[URL][col] += URLWeight
		}

		if strings.HasSuffix(cell, ".zip") {
			scores[Name][col] += ArchiveNameWeight
		} else if n > minIdentifierLen && identifierRe.MatchString(cell) {
			scores[Name][col] += IdentifierNameWeight
		}

		if strings.Contains(cell, ",") {
			scores[Dependencies][col] += ListWeight
		}

		if n > minLongTextLen {
			scores[Description][col] += LongTextWeight
		}
	}
}

// assign lets each role, in AssignOrder, claim the unclaimed column with the
// strictly highest positive score. Ties go to the lowest column index.
func assign(scores *ScoreMatrix, numCols int) Mapping {
	m := NewMapping()
	claimed := make([]bool, numCols)

	for _, r := range AssignOrder {
		best, bestScore := Unassigned, 0.0
		for col := 0; col < numCols; col++ {
			if claimed[col] {
				continue
			}
			if s := scores[r][col]; s > bestScore {
				best, bestScore = col, s
			}
		}
		if best != Unassigned {
			m[r] = best
			claimed[best] = true
		}
	}
	return m
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}
