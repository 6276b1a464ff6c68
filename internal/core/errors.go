package core

import "fmt"

// StructuralError reports a sheet that cannot be scanned at all: an unreadable
// container, a workbook without sheets, or a missing header row.
type StructuralError struct {
	Message string
	Err     error // Underlying decoder error, if any
}

func (e *StructuralError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}

// SchemaError reports a schema that cannot drive the engine.
// It is raised when the schema is loaded, never while scanning rows.
type SchemaError struct {
	Column  int    // Index into Schema.Columns, or -1 for schema-level problems
	Header  string // Header of the offending column, if known
	Message string
}

func (e *SchemaError) Error() string {
	switch {
	case e.Column < 0:
		return "schema: " + e.Message
	case e.Header != "":
		return fmt.Sprintf("schema: column %d (%q): %s", e.Column, e.Header, e.Message)
	default:
		return fmt.Sprintf("schema: column %d: %s", e.Column, e.Message)
	}
}
