package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ColumnType is the declared type of a schema column.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeNumber
	TypeDate
	TypeBoolean
)

// String returns the lower-case name used in schemas and error messages.
func (t ColumnType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeDate:
		return "date"
	case TypeBoolean:
		return "boolean"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// valid reports whether t is one of the declared constants.
func (t ColumnType) valid() bool {
	return t >= TypeString && t <= TypeBoolean
}

// ParseColumnType converts a schema type name to a ColumnType.
// Matching is case-insensitive; an empty name means string.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string":
		return TypeString, nil
	case "number":
		return TypeNumber, nil
	case "date":
		return TypeDate, nil
	case "boolean", "bool":
		return TypeBoolean, nil
	default:
		return 0, &SchemaError{Column: -1, Message: fmt.Sprintf("unknown column type %q", s)}
	}
}

// MarshalJSON encodes the type by name.
func (t ColumnType) MarshalJSON() ([]byte, error) {
	if !t.valid() {
		return nil, fmt.Errorf("marshal column type: invalid value %d", int(t))
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a type name. null decodes to string.
func (t *ColumnType) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = TypeString
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return &SchemaError{Column: -1, Message: fmt.Sprintf("column type must be a string: %v", err)}
	}
	parsed, err := ParseColumnType(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ColumnSpec declares one expected spreadsheet column.
type ColumnSpec struct {
	Header     string     `json:"header"`               // Display name in the header row
	Key        string     `json:"key"`                  // Canonical key in output records
	Type       ColumnType `json:"type"`                 // Declared value type
	Required   bool       `json:"required"`             // Value must be non-empty in every data row
	Format     string     `json:"format,omitempty"`     // Date pattern such as dd/MM/yyyy
	EnumValues []string   `json:"enumValues,omitempty"` // Optional case-insensitive allow-list
}

// Schema is a partner's column configuration.
// It is owned by the caller and treated as immutable during an engine call.
type Schema struct {
	ConfigID  string       `json:"configId"`
	PartnerID int64        `json:"partnerId"`
	Name      string       `json:"name"`
	Status    string       `json:"status"`
	Columns   []ColumnSpec `json:"columnMappings"`
}

// FieldInternal is the field name used for errors that are not tied to a column.
const FieldInternal = "internal"

// Messages emitted by the validator.
const (
	MsgMissingHeader   = "Missing header"
	MsgRequiredMissing = "Required value is missing"
	MsgNotAllowed      = "Value not in allowed list"
)

// invalidTypeMessage returns the type-mismatch message for t.
func invalidTypeMessage(t ColumnType) string {
	return "Invalid data type (expected " + t.String() + ")"
}

// ValidationError is one problem found in an uploaded sheet.
// Row is nil for structural problems that are not tied to a row; otherwise it
// is the 1-based spreadsheet row number (the header is row 1).
type ValidationError struct {
	Row     *int   `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Row != nil {
		return fmt.Sprintf("row %d: %s: %s", *e.Row, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// rowError builds a row-scoped validation error.
func rowError(row int, field, message string) ValidationError {
	return ValidationError{Row: &row, Field: field, Message: message}
}

// internalError converts any fault into the single internal validation error.
func internalError(err error) ValidationError {
	msg := "Validation error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return ValidationError{Field: FieldInternal, Message: msg}
}

// Field is one key/value pair of a canonical record.
type Field struct {
	Key   string
	Value any // nil, string, float64 or bool
}

// CanonicalRecord is one transformed data row.
// Fields keep the schema's column order, including in JSON.
type CanonicalRecord []Field

// Get returns the value stored under key.
func (r CanonicalRecord) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// MarshalJSON encodes the record as a JSON object in field order.
func (r CanonicalRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", f.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the input.
func (r *CanonicalRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("canonical record: expected object, got %v", tok)
	}

	rec := CanonicalRecord{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("canonical record: expected key, got %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("canonical record %q: %w", key, err)
		}
		rec = append(rec, Field{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = rec
	return nil
}

// Outcome is the terminal result of ValidateThenTransform.
// Exactly one of Errors and Records is meaningful: a non-empty Errors is an
// error result, otherwise Records holds the (possibly empty) record list.
type Outcome struct {
	Errors  []ValidationError `json:"errors"`
	Records []CanonicalRecord `json:"records"`
}

// Valid reports whether the outcome is a record result.
func (o Outcome) Valid() bool {
	return len(o.Errors) == 0
}

func errorOutcome(errs ...ValidationError) Outcome {
	return Outcome{Errors: errs, Records: []CanonicalRecord{}}
}
