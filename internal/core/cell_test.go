package core

import (
	"testing"
	"time"
)

func TestCell_Display(t *testing.T) {
	jan31 := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{"empty", Cell{}, ""},
		{"text trimmed", TextCell("  POL-1 "), "POL-1"},
		{"number uses shown text", NumberCell(1200.5, "1,200.50"), "1,200.50"},
		{"number without shown text", NumberCell(1200.5, ""), "1200.5"},
		{"integral number", NumberCell(42, ""), "42"},
		{"boolean true", BoolCell(true), "TRUE"},
		{"boolean false", BoolCell(false), "FALSE"},
		{"date uses shown text", DateCell(jan31, 45322, "31/01/2024"), "31/01/2024"},
		{"date without shown text", DateCell(jan31, 45322, ""), "2024-01-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cell.Display(); got != tt.want {
				t.Errorf("Display() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCell_IsBlank(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want bool
	}{
		{"empty", Cell{}, true},
		{"whitespace text", TextCell(" \t "), true},
		{"text", TextCell("x"), false},
		{"zero number", NumberCell(0, ""), false},
		{"false boolean", BoolCell(false), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cell.IsBlank(); got != tt.want {
				t.Errorf("IsBlank() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTextCell_EmptyStringIsEmpty(t *testing.T) {
	if k := TextCell("").Kind; k != CellEmpty {
		t.Errorf("TextCell(\"\").Kind = %v, want empty", k)
	}
}

func TestGrid_DataRows(t *testing.T) {
	g := gridOf(
		[]string{"A", "B"},
		[]string{"1", "2"},
		[]string{"", "  "},
		[]string{},
		[]string{"", "3"},
	)
	if got := g.DataRows(); got != 2 {
		t.Errorf("DataRows() = %d, want 2", got)
	}

	var nilGrid *Grid
	if got := nilGrid.NumRows(); got != 0 {
		t.Errorf("nil grid NumRows() = %d, want 0", got)
	}
}
