package core

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadGrid_WorkbookCellKinds(t *testing.T) {
	issued := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	data := workbookBytes(t,
		[]any{"Policy No", "Premium", "Active", "Issue Date", "Note"},
		[]any{"POL-1", 1200.5, true, issued, nil},
	)

	g, err := ReadGrid(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 2, g.NumRows())

	assert.Equal(t, CellText, g.Cell(0, 0).Kind)
	assert.Equal(t, "Policy No", g.Cell(0, 0).Display())

	assert.Equal(t, CellText, g.Cell(1, 0).Kind)
	assert.Equal(t, "POL-1", g.Cell(1, 0).Text)

	assert.Equal(t, CellNumber, g.Cell(1, 1).Kind)
	assert.InDelta(t, 1200.5, g.Cell(1, 1).Num, 1e-9)

	assert.Equal(t, CellBoolean, g.Cell(1, 2).Kind)
	assert.True(t, g.Cell(1, 2).Bool)

	assert.Equal(t, CellDate, g.Cell(1, 3).Kind)
	assert.Equal(t, "2024-01-31", g.Cell(1, 3).Time.Format(isoDate))

	assert.Equal(t, CellEmpty, g.Cell(1, 4).Kind)
	assert.Equal(t, CellEmpty, g.Cell(5, 5).Kind, "out of range reads as empty")
}

func TestReadGrid_CustomDateFormat(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	code := "dd/mm/yyyy"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &code})
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Issue Date"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", 45322))
	require.NoError(t, f.SetCellStyle("Sheet1", "A2", "A2", style))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	g, err := ReadGrid(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	c := g.Cell(1, 0)
	require.Equal(t, CellDate, c.Kind)
	assert.Equal(t, "2024-01-31", c.Time.Format(isoDate))
	assert.InDelta(t, 45322, c.Num, 1e-9)
	assert.True(t, c.Serial)
}

func TestReadGrid_FormulaCachedValue(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Premium"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", 84))
	require.NoError(t, f.SetCellFormula("Sheet1", "A2", "B2*2"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	g, err := ReadGrid(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "84", g.Cell(1, 0).Display())
}

func TestReadGrid_FirstSheetOnly(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "first"))
	_, err := f.NewSheet("Second")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Second", "A1", "second"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	g, err := ReadGrid(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "first", g.Cell(0, 0).Display())
}

func TestReadGrid_CSV(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Policy No,Premium\nPOL-1,\"1,200.50\"\n\nPOL-2,  \n")...)

	g, err := ReadGrid(bytes.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "Policy No", g.Cell(0, 0).Display(), "BOM must not leak into the first header")
	assert.Equal(t, "1,200.50", g.Cell(1, 1).Display())
	assert.Equal(t, CellText, g.Cell(1, 1).Kind)
	assert.True(t, g.Cell(2, 1).IsBlank())
	assert.Equal(t, 2, g.DataRows())
}

func TestReadGrid_StructuralErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		wantMsg string
	}{
		{"empty input", nil, MsgEmptyFile},
		{"legacy xls", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0, 0}, MsgLegacyFormat},
		{"corrupt zip", []byte("PK\x03\x04not really a zip"), MsgUnreadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadGrid(bytes.NewReader(tt.input))
			var se *StructuralError
			require.True(t, errors.As(err, &se), "error %v is not structural", err)
			assert.Equal(t, tt.wantMsg, se.Message)
		})
	}
}

func TestReadGrid_CSVReadFailure(t *testing.T) {
	r := io.MultiReader(
		bytes.NewReader([]byte("Policy No,Premium\nPOL-1,10\n")),
		iotest.ErrReader(errors.New("connection dropped")),
	)

	_, err := ReadGrid(r)
	var se *StructuralError
	require.True(t, errors.As(err, &se), "error %v is not structural", err)
	assert.Equal(t, MsgInvalidCSV, se.Message)
	assert.ErrorContains(t, err, "connection dropped")
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"dd/mm/yyyy", true},
		{"yyyy-mm-dd hh:mm", true},
		{"[h]:mm:ss", true},
		{"[$-409]mmmm d, yyyy", true},
		{"0.00", false},
		{"#,##0.00", false},
		{`0.00 "days"`, false},
		{"[Red]0.00;[Blue]-0.00", false},
		{"@", false},
		{"General", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := isDateFormatCode(tt.code); got != tt.want {
				t.Errorf("isDateFormatCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestIsBuiltinDateFormat(t *testing.T) {
	for _, id := range []int{14, 17, 22, 27, 36, 45, 47, 50, 58} {
		if !isBuiltinDateFormat(id) {
			t.Errorf("isBuiltinDateFormat(%d) = false, want true", id)
		}
	}
	for _, id := range []int{0, 1, 2, 4, 10, 13, 23, 37, 44, 49, 59} {
		if isBuiltinDateFormat(id) {
			t.Errorf("isBuiltinDateFormat(%d) = true, want false", id)
		}
	}
}
