package core

import "strings"

// MsgMissingHeaderRow is the structural error for a sheet without row 0.
const MsgMissingHeaderRow = "Missing header row"

// HeaderIndex maps normalized header text to a 0-based grid column.
type HeaderIndex map[string]int

// NormalizeHeader trims surrounding whitespace and folds case.
func NormalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ResolveHeaders indexes the header row of g.
// Blank header cells are ignored; when a header repeats, the first column wins.
func ResolveHeaders(g *Grid) (HeaderIndex, error) {
	if !g.hasHeaderRow() {
		return nil, &StructuralError{Message: MsgMissingHeaderRow}
	}

	idx := make(HeaderIndex)
	for col, c := range g.Row(0) {
		key := NormalizeHeader(c.Display())
		if key == "" {
			continue
		}
		if _, dup := idx[key]; dup {
			continue
		}
		idx[key] = col
	}
	return idx, nil
}

// Lookup returns the column of header, normalizing it first.
func (h HeaderIndex) Lookup(header string) (int, bool) {
	col, ok := h[NormalizeHeader(header)]
	return col, ok
}
