package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DecodeSchema parses a configuration document and validates it.
// Unknown column types and structural problems are reported as *SchemaError.
func DecodeSchema(data []byte) (Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		var se *SchemaError
		if errors.As(err, &se) {
			return Schema{}, se
		}
		return Schema{}, fmt.Errorf("decode schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}

// Validate checks that the schema can drive the engine: every column has a
// header and key, keys are unique, headers are unique after normalization,
// types are known, and Date formats are translatable.
func (s Schema) Validate() error {
	keys := make(map[string]int, len(s.Columns))
	headers := make(map[string]int, len(s.Columns))

	for i, c := range s.Columns {
		if strings.TrimSpace(c.Header) == "" {
			return &SchemaError{Column: i, Message: "header is required"}
		}
		if strings.TrimSpace(c.Key) == "" {
			return &SchemaError{Column: i, Header: c.Header, Message: "key is required"}
		}
		if !c.Type.valid() {
			return &SchemaError{Column: i, Header: c.Header, Message: fmt.Sprintf("unknown column type %d", int(c.Type))}
		}
		if prev, dup := keys[c.Key]; dup {
			return &SchemaError{Column: i, Header: c.Header, Message: fmt.Sprintf("key %q already used by column %d", c.Key, prev)}
		}
		keys[c.Key] = i

		h := NormalizeHeader(c.Header)
		if prev, dup := headers[h]; dup {
			return &SchemaError{Column: i, Header: c.Header, Message: fmt.Sprintf("header duplicates column %d", prev)}
		}
		headers[h] = i

		if c.Type == TypeDate && strings.TrimSpace(c.Format) != "" {
			if _, err := translateDatePattern(c.Format); err != nil {
				return &SchemaError{Column: i, Header: c.Header, Message: err.Error()}
			}
		}
	}
	return nil
}
