package core

import (
	"strconv"
	"strings"
	"time"
)

// CellKind tags the native kind of a grid cell.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellBoolean
	CellDate
)

func (k CellKind) String() string {
	switch k {
	case CellEmpty:
		return "empty"
	case CellText:
		return "text"
	case CellNumber:
		return "number"
	case CellBoolean:
		return "boolean"
	case CellDate:
		return "date"
	default:
		return "CellKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Cell is one raw value of a grid.
//
// Only the fields that belong to Kind are meaningful. Shown is the text the
// spreadsheet application displays for the cell (number formats applied); it
// may be empty when the source has no formatting information. Date cells read
// from a serial number also carry it in Num, with Serial set.
type Cell struct {
	Kind   CellKind
	Text   string
	Num    float64
	Bool   bool
	Time   time.Time
	Shown  string
	Serial bool
}

// TextCell returns a Text cell, or an Empty cell for "".
func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell returns a Number cell with its formatted rendering.
func NumberCell(v float64, shown string) Cell {
	return Cell{Kind: CellNumber, Num: v, Shown: shown}
}

// BoolCell returns a Boolean cell.
func BoolCell(v bool) Cell {
	return Cell{Kind: CellBoolean, Bool: v}
}

// DateCell returns a Date cell. serial is the spreadsheet serial number.
func DateCell(t time.Time, serial float64, shown string) Cell {
	return Cell{Kind: CellDate, Time: t, Num: serial, Shown: shown, Serial: true}
}

// ISODateCell returns a Date cell stored as ISO 8601 text. It has no serial
// number, so it never reads as a Number.
func ISODateCell(t time.Time, shown string) Cell {
	return Cell{Kind: CellDate, Time: t, Shown: shown}
}

// number returns the native numeric value of Number cells and of Date cells
// that carry a serial.
func (c Cell) number() (float64, bool) {
	if c.Kind == CellNumber || (c.Kind == CellDate && c.Serial) {
		return c.Num, true
	}
	return 0, false
}

// Display returns the trimmed textual rendering of the cell.
func (c Cell) Display() string {
	switch c.Kind {
	case CellEmpty:
		return ""
	case CellText:
		return strings.TrimSpace(c.Text)
	case CellNumber:
		if s := strings.TrimSpace(c.Shown); s != "" {
			return s
		}
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellBoolean:
		if c.Bool {
			return "TRUE"
		}
		return "FALSE"
	case CellDate:
		if s := strings.TrimSpace(c.Shown); s != "" {
			return s
		}
		return c.Time.Format(isoDate)
	default:
		return ""
	}
}

// IsBlank reports whether the cell is empty or text that trims to empty.
// Number, Boolean and Date cells are never blank.
func (c Cell) IsBlank() bool {
	switch c.Kind {
	case CellEmpty:
		return true
	case CellText:
		return strings.TrimSpace(c.Text) == ""
	default:
		return false
	}
}

// Grid is the decoded first sheet of an upload. Row 0 is the header row.
// Rows may have different lengths; missing cells read as Empty.
type Grid struct {
	rows [][]Cell
}

// NewGrid wraps rows. The grid takes ownership of the slice.
func NewGrid(rows [][]Cell) *Grid {
	return &Grid{rows: rows}
}

// NumRows returns the number of rows including the header row.
func (g *Grid) NumRows() int {
	if g == nil {
		return 0
	}
	return len(g.rows)
}

// Row returns row i, or nil when out of range.
func (g *Grid) Row(i int) []Cell {
	if g == nil || i < 0 || i >= len(g.rows) {
		return nil
	}
	return g.rows[i]
}

// Cell returns the cell at (row, col), or an Empty cell when absent.
func (g *Grid) Cell(row, col int) Cell {
	r := g.Row(row)
	if col < 0 || col >= len(r) {
		return Cell{}
	}
	return r[col]
}

// DataRows returns the number of non-blank data rows.
func (g *Grid) DataRows() int {
	n := 0
	for i := 1; i < g.NumRows(); i++ {
		if !isBlankRow(g.rows[i]) {
			n++
		}
	}
	return n
}

// hasHeaderRow reports whether row 0 exists in the source.
func (g *Grid) hasHeaderRow() bool {
	return g.NumRows() > 0 && len(g.rows[0]) > 0
}

func isBlankRow(row []Cell) bool {
	for _, c := range row {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}
