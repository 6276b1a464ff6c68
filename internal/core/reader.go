package core

// reader.go decodes an uploaded byte stream into a Grid.
//
// Two containers are recognized by their leading bytes:
//
//   - OOXML workbooks (zip signature) are decoded with excelize. Only the first
//     sheet is read. Formula cells contribute their cached result.
//   - Anything else is read as CSV through the BOM and UTF-8 stream wrappers.
//
// Legacy binary workbooks (.xls) are rejected with a StructuralError.

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Structural messages produced by ReadGrid.
const (
	MsgNoSheet      = "No sheet found in workbook"
	MsgEmptyFile    = "empty file"
	MsgUnreadable   = "unable to open workbook"
	MsgInvalidCSV   = "invalid csv"
	MsgLegacyFormat = "unsupported workbook format (legacy .xls), save the file as .xlsx"
)

var (
	zipSignature = []byte("PK\x03\x04")
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// ReadGrid decodes r into a Grid. r is read to the end.
func ReadGrid(r io.Reader) (*Grid, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(oleSignature))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, &StructuralError{Message: MsgUnreadable, Err: err}
	}
	if len(head) == 0 {
		return nil, &StructuralError{Message: MsgEmptyFile}
	}

	switch {
	case bytes.HasPrefix(head, zipSignature):
		return readWorkbook(br)
	case bytes.HasPrefix(head, oleSignature):
		return nil, &StructuralError{Message: MsgLegacyFormat}
	default:
		return readDelimited(br)
	}
}

// ---- Workbook ----

// workbookDecoder classifies the cells of one sheet.
type workbookDecoder struct {
	f         *excelize.File
	sheet     string
	date1904  bool
	dateStyle map[int]bool
}

func readWorkbook(r io.Reader) (*Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &StructuralError{Message: MsgUnreadable, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &StructuralError{Message: MsgNoSheet}
	}

	d := &workbookDecoder{f: f, sheet: sheets[0], dateStyle: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}

	shown, err := f.GetRows(d.sheet)
	if err != nil {
		return nil, &StructuralError{Message: MsgUnreadable, Err: err}
	}
	raw, err := f.GetRows(d.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &StructuralError{Message: MsgUnreadable, Err: err}
	}

	rows := make([][]Cell, max(len(raw), len(shown)))
	for r := range rows {
		rawRow, shownRow := at(raw, r), at(shown, r)
		cells := make([]Cell, max(len(rawRow), len(shownRow)))
		for c := range cells {
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, &StructuralError{Message: MsgUnreadable, Err: err}
			}
			cells[c] = d.cell(name, field(rawRow, c), field(shownRow, c))
		}
		rows[r] = cells
	}

	return NewGrid(rows), nil
}

// cell builds one Cell from the raw stored value and the formatted text.
func (d *workbookDecoder) cell(name, raw, shown string) Cell {
	typ, err := d.f.GetCellType(d.sheet, name)
	if err != nil {
		return TextCell(shown)
	}

	if raw == "" {
		// A formula without a cached result keeps its text.
		if formula, ferr := d.f.GetCellFormula(d.sheet, name); ferr == nil && formula != "" {
			return TextCell("=" + formula)
		}
		return Cell{}
	}

	switch typ {
	case excelize.CellTypeBool:
		return BoolCell(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError:
		return TextCell(raw)
	case excelize.CellTypeDate:
		if t, ok := parseISOCell(raw); ok {
			return ISODateCell(t, shown)
		}
		return TextCell(shown)
	default:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return TextCell(raw)
		}
		if d.isDateStyled(name) {
			if t, err := excelize.ExcelDateToTime(v, d.date1904); err == nil {
				return DateCell(t, v, shown)
			}
		}
		return NumberCell(v, shown)
	}
}

// isDateStyled reports whether the cell's number format renders a date or time.
func (d *workbookDecoder) isDateStyled(name string) bool {
	idx, err := d.f.GetCellStyle(d.sheet, name)
	if err != nil || idx == 0 {
		return false
	}
	if v, ok := d.dateStyle[idx]; ok {
		return v
	}

	isDate := false
	if style, err := d.f.GetStyle(idx); err == nil && style != nil {
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		} else {
			isDate = isBuiltinDateFormat(style.NumFmt)
		}
	}
	d.dateStyle[idx] = isDate
	return isDate
}

// isBuiltinDateFormat covers the built-in date and time number formats,
// including the East Asian ranges.
func isBuiltinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom format code contains date or time
// tokens outside quoted literals, escapes and bracketed sections.
func isDateFormatCode(code string) bool {
	// Only the first section decides; the others format negatives, zero and text.
	if i := strings.IndexByte(code, ';'); i >= 0 {
		code = code[:i]
	}

	var b strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			inQuote = ch != '"'
		case inBracket:
			if ch == ']' {
				inBracket = false
			}
		case ch == '"':
			inQuote = true
		case ch == '[':
			// Elapsed time like [h] or [mm] is still a time format.
			if end := strings.IndexByte(code[i:], ']'); end > 0 {
				inner := strings.ToLower(code[i+1 : i+end])
				if strings.Trim(inner, "hms") == "" {
					b.WriteString(inner)
				}
			}
			inBracket = true
		case ch == '\\' || ch == '_' || ch == '*':
			i++
		default:
			b.WriteByte(ch)
		}
	}

	cleaned := strings.ToLower(b.String())
	if strings.ContainsAny(cleaned, "#?@") {
		return false
	}
	return strings.ContainsAny(cleaned, "ydmhs")
}

func parseISOCell(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", isoDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func at(rows [][]string, i int) []string {
	if i < len(rows) {
		return rows[i]
	}
	return nil
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// ---- Delimited text ----

func readDelimited(r io.Reader) (*Grid, error) {
	cr := csv.NewReader(NewCSVSource(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]Cell
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &StructuralError{Message: MsgInvalidCSV, Err: fmt.Errorf("line %d: %w", len(rows)+1, err)}
		}
		cells := make([]Cell, len(rec))
		for i, v := range rec {
			cells[i] = TextCell(v)
		}
		rows = append(rows, cells)
	}

	return NewGrid(rows), nil
}
