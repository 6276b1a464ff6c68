package core

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbookBytes builds an .xlsx whose first sheet holds rows starting at A1.
// nil values leave the cell unset.
func workbookBytes(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", name, v))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// csvReader joins lines into a CSV stream.
func csvReader(lines ...string) *bytes.Reader {
	return bytes.NewReader([]byte(strings.Join(lines, "\n") + "\n"))
}

// gridOf builds a grid of text cells.
func gridOf(rows ...[]string) *Grid {
	cells := make([][]Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]Cell, len(row))
		for j, v := range row {
			cells[i][j] = TextCell(v)
		}
	}
	return NewGrid(cells)
}

// motorSchema mirrors the sample MotorPolicy configuration.
func motorSchema() Schema {
	return Schema{
		ConfigID:  "MotorPolicy-v1",
		PartnerID: 1,
		Name:      "MotorPolicy-v1",
		Status:    "ACTIVE",
		Columns: []ColumnSpec{
			{Header: "Policy No", Key: "policyId", Type: TypeString, Required: true},
			{Header: "Issue Date", Key: "issueDate", Type: TypeDate, Required: true, Format: "dd/MM/yyyy"},
			{Header: "Premium", Key: "premium", Type: TypeNumber, Required: true},
			{Header: "Product", Key: "product", Type: TypeString},
		},
	}
}

func intPtr(i int) *int { return &i }
