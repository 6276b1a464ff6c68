package core

import (
	"context"
	"reflect"
	"testing"
)

func TestValidate(t *testing.T) {
	scenario := Schema{Columns: []ColumnSpec{
		{Header: "Policy No", Key: "policyId", Type: TypeString, Required: true},
		{Header: "Premium", Key: "premium", Type: TypeNumber, Required: true},
	}}

	tests := []struct {
		name   string
		grid   *Grid
		schema Schema
		want   []ValidationError
	}{
		{
			name:   "valid row with thousands separator",
			grid:   gridOf([]string{"Policy No", "Premium"}, []string{"POL-1", "1,200.50"}),
			schema: scenario,
			want:   []ValidationError{},
		},
		{
			name:   "required value missing",
			grid:   gridOf([]string{"Policy No", "Premium"}, []string{"POL-2", ""}),
			schema: scenario,
			want:   []ValidationError{{Row: intPtr(2), Field: "Premium", Message: MsgRequiredMissing}},
		},
		{
			name:   "every required column empty in one row",
			grid:   gridOf([]string{"Policy No", "Premium", "Product"}, []string{"", " ", "Car"}),
			schema: scenario,
			want: []ValidationError{
				{Row: intPtr(2), Field: "Policy No", Message: MsgRequiredMissing},
				{Row: intPtr(2), Field: "Premium", Message: MsgRequiredMissing},
			},
		},
		{
			name:   "missing headers short-circuit row checks",
			grid:   gridOf([]string{"Product"}, []string{""}, []string{"x"}),
			schema: scenario,
			want: []ValidationError{
				{Field: "Policy No", Message: MsgMissingHeader},
				{Field: "Premium", Message: MsgMissingHeader},
			},
		},
		{
			name:   "headers match case and whitespace insensitively",
			grid:   gridOf([]string{"  policy no ", "PREMIUM"}, []string{"POL-3", "10"}),
			schema: scenario,
			want:   []ValidationError{},
		},
		{
			name:   "missing header row",
			grid:   NewGrid(nil),
			schema: scenario,
			want:   []ValidationError{{Field: FieldInternal, Message: MsgMissingHeaderRow}},
		},
		{
			name: "errors are row-major then schema order",
			grid: gridOf(
				[]string{"Premium", "Policy No"},
				[]string{"abc", ""},
				[]string{"", ""},
				[]string{"", "POL-9"},
			),
			schema: scenario,
			want: []ValidationError{
				{Row: intPtr(2), Field: "Policy No", Message: MsgRequiredMissing},
				{Row: intPtr(2), Field: "Premium", Message: invalidTypeMessage(TypeNumber)},
				{Row: intPtr(4), Field: "Premium", Message: MsgRequiredMissing},
			},
		},
		{
			name: "optional empty cells are skipped",
			grid: gridOf([]string{"Note", "When"}, []string{"", ""}, []string{"x", ""}),
			schema: Schema{Columns: []ColumnSpec{
				{Header: "Note", Key: "note"},
				{Header: "When", Key: "when", Type: TypeDate},
			}},
			want: []ValidationError{},
		},
		{
			name: "type and enum checks",
			grid: gridOf(
				[]string{"Issued", "Active", "Product"},
				[]string{"31/01/2024", "maybe", "car"},
				[]string{"2024-13-01", "N", "Boat"},
			),
			schema: Schema{Columns: []ColumnSpec{
				{Header: "Issued", Key: "issued", Type: TypeDate, Format: "dd/MM/yyyy"},
				{Header: "Active", Key: "active", Type: TypeBoolean},
				{Header: "Product", Key: "product", EnumValues: []string{"Car", "Bike"}},
			}},
			want: []ValidationError{
				{Row: intPtr(2), Field: "Active", Message: invalidTypeMessage(TypeBoolean)},
				{Row: intPtr(3), Field: "Issued", Message: invalidTypeMessage(TypeDate)},
				{Row: intPtr(3), Field: "Product", Message: MsgNotAllowed},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(context.Background(), tt.grid, tt.schema, DefaultOptions())
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Validate() =\n  %v\nwant\n  %v", got, tt.want)
			}
		})
	}
}

func TestValidate_BlankRowsContributeNothing(t *testing.T) {
	schema := Schema{Columns: []ColumnSpec{{Header: "Policy No", Key: "policyId", Required: true}}}

	dense := gridOf([]string{"Policy No"}, []string{""}, []string{"POL-1"})
	sparse := gridOf([]string{"Policy No"}, []string{"  "}, []string{}, []string{""}, []string{"POL-1"}, []string{" "})

	for name, g := range map[string]*Grid{"dense": dense, "sparse": sparse} {
		if errs := Validate(context.Background(), g, schema, DefaultOptions()); len(errs) != 0 {
			t.Errorf("%s: Validate() = %v, want no errors", name, errs)
		}
	}
}

func TestValidate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := gridOf([]string{"Policy No"}, []string{""})
	schema := Schema{Columns: []ColumnSpec{{Header: "Policy No", Key: "policyId", Required: true}}}

	errs := Validate(ctx, g, schema, DefaultOptions())
	if len(errs) != 1 {
		t.Fatalf("Validate() returned %d errors, want 1", len(errs))
	}
	if errs[0].Field != FieldInternal || errs[0].Row != nil {
		t.Errorf("Validate() = %v, want a single internal error", errs[0])
	}
	if errs[0].Message != context.Canceled.Error() {
		t.Errorf("message = %q, want %q", errs[0].Message, context.Canceled.Error())
	}
}
