// Package infer guesses which column of an untyped, header-optional CSV grid
// holds each pack catalog role (last-modified date, name, URL, author,
// description, dependency list).
//
// Inference runs in two phases. Scoring adds [HeaderWeight] to every role a
// header cell names, then samples up to [SampleRows] data rows and adds small
// content increments (dates, URLs, archive names, comma lists, long text).
// Assignment then walks [AssignOrder] and lets each role claim the highest
// scoring column no earlier role took.
//
// Assignment is greedy, not an optimal bipartite matching. Switching to an
// optimal matcher changes tie-breaking and is a behavior change, not a fix.
//
//	grid := [][]string{
//	    {"Name", "URL", "Updated"},
//	    {"base_pack", "https://example.com/base.zip", "2024-03-01"},
//	}
//	m := infer.Infer(grid)
//	m.Column(infer.URL) // 1
//
// Every function in this package is pure and safe for concurrent use.
package infer
