package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseColumnType(t *testing.T) {
	tests := []struct {
		input   string
		want    ColumnType
		wantErr bool
	}{
		{"string", TypeString, false},
		{"", TypeString, false},
		{"NUMBER", TypeNumber, false},
		{" Date ", TypeDate, false},
		{"boolean", TypeBoolean, false},
		{"bool", TypeBoolean, false},
		{"decimal", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColumnType(tt.input)
			if tt.wantErr {
				var se *SchemaError
				if !errors.As(err, &se) {
					t.Fatalf("ParseColumnType(%q) error = %v, want *SchemaError", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColumnType(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseColumnType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestColumnType_JSON(t *testing.T) {
	data, err := json.Marshal(ColumnSpec{Header: "Premium", Key: "premium", Type: TypeNumber})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"header":"Premium","key":"premium","type":"number","required":false}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var spec ColumnSpec
	if err := json.Unmarshal([]byte(`{"header":"X","key":"x","type":null}`), &spec); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if spec.Type != TypeString {
		t.Errorf("null type = %v, want string", spec.Type)
	}

	if _, err := json.Marshal(ColumnType(42)); err == nil {
		t.Error("Marshal of unknown type should fail")
	}
}

func TestCanonicalRecord_JSONKeepsOrder(t *testing.T) {
	rec := CanonicalRecord{
		{Key: "policyId", Value: "POL-1"},
		{Key: "premium", Value: 1200.5},
		{Key: "active", Value: true},
		{Key: "product", Value: nil},
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"policyId":"POL-1","premium":1200.5,"active":true,"product":null}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var back CanonicalRecord
	if err := json.Unmarshal([]byte(`{"z":1,"a":"x","m":null}`), &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	keys := []string{"z", "a", "m"}
	if len(back) != len(keys) {
		t.Fatalf("Unmarshal produced %d fields, want %d", len(back), len(keys))
	}
	for i, k := range keys {
		if back[i].Key != k {
			t.Errorf("field %d key = %q, want %q", i, back[i].Key, k)
		}
	}
	if v, _ := back.Get("z"); v != float64(1) {
		t.Errorf("Get(z) = %v, want 1", v)
	}
	if _, ok := back.Get("missing"); ok {
		t.Error("Get(missing) reported ok")
	}

	if err := json.Unmarshal([]byte(`[1,2]`), &back); err == nil {
		t.Error("Unmarshal of array should fail")
	}
}

func TestValidationError_JSON(t *testing.T) {
	data, err := json.Marshal([]ValidationError{
		{Field: "Premium", Message: MsgMissingHeader},
		rowError(2, "Premium", MsgRequiredMissing),
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `[{"row":null,"field":"Premium","message":"Missing header"},` +
		`{"row":2,"field":"Premium","message":"Required value is missing"}]`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

func TestInvalidTypeMessage(t *testing.T) {
	tests := map[ColumnType]string{
		TypeNumber:  "Invalid data type (expected number)",
		TypeDate:    "Invalid data type (expected date)",
		TypeBoolean: "Invalid data type (expected boolean)",
	}
	for typ, want := range tests {
		if got := invalidTypeMessage(typ); got != want {
			t.Errorf("invalidTypeMessage(%v) = %q, want %q", typ, got, want)
		}
	}
}
