package core

import (
	"context"
	"fmt"
	"io"
	"slices"
)

// Engine runs validation and transformation over uploaded sheets.
// An Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	opts    Options
	coercer *Coercer
}

// NewEngine returns an engine using opts, with zero fields set to defaults.
func NewEngine(opts Options) *Engine {
	opts = opts.withDefaults()
	opts.DateFallbacks = slices.Clone(opts.DateFallbacks)
	return &Engine{opts: opts, coercer: NewCoercer(opts)}
}

// Options returns a copy of the engine's options.
func (e *Engine) Options() Options {
	o := e.opts
	o.DateFallbacks = slices.Clone(o.DateFallbacks)
	return o
}

// Report is the result of validating one sheet.
type Report struct {
	Errors []ValidationError `json:"errors"`
	Rows   int               `json:"rows"` // Non-blank data rows, 0 when the sheet was unreadable
}

// Valid reports whether no errors were found.
func (r Report) Valid() bool {
	return len(r.Errors) == 0
}

// ValidateOnly decodes r and returns every validation error.
// An empty list means the sheet is valid.
func (e *Engine) ValidateOnly(ctx context.Context, r io.Reader, schema Schema) []ValidationError {
	return e.Validate(ctx, r, schema).Errors
}

// Validate is ValidateOnly plus the number of data rows scanned.
func (e *Engine) Validate(ctx context.Context, r io.Reader, schema Schema) (rep Report) {
	defer func() {
		if p := recover(); p != nil {
			rep = Report{Errors: []ValidationError{panicError(p)}}
		}
	}()

	g, verr := e.load(r, schema)
	if verr != nil {
		return Report{Errors: []ValidationError{*verr}}
	}
	errs := validateGrid(ctx, g, schema, e.coercer)
	return Report{Errors: errs, Rows: g.DataRows()}
}

// ValidateThenTransform validates r and, only when no errors were found,
// transforms the same grid into records.
func (e *Engine) ValidateThenTransform(ctx context.Context, r io.Reader, schema Schema) Outcome {
	return e.run(ctx, r, schema, 0)
}

// Preview is ValidateThenTransform keeping at most limit records.
// A limit <= 0 keeps all records.
func (e *Engine) Preview(ctx context.Context, r io.Reader, schema Schema, limit int) Outcome {
	return e.run(ctx, r, schema, limit)
}

func (e *Engine) run(ctx context.Context, r io.Reader, schema Schema, limit int) (out Outcome) {
	defer func() {
		if p := recover(); p != nil {
			out = errorOutcome(panicError(p))
		}
	}()

	g, verr := e.load(r, schema)
	if verr != nil {
		return errorOutcome(*verr)
	}

	if errs := validateGrid(ctx, g, schema, e.coercer); len(errs) > 0 {
		return errorOutcome(errs...)
	}

	records, err := transformGrid(ctx, g, schema, e.coercer, limit)
	if err != nil {
		return errorOutcome(internalError(err))
	}
	return Outcome{Errors: []ValidationError{}, Records: records}
}

// load checks the schema and decodes the sheet.
func (e *Engine) load(r io.Reader, schema Schema) (*Grid, *ValidationError) {
	if err := schema.Validate(); err != nil {
		v := internalError(err)
		return nil, &v
	}
	g, err := ReadGrid(r)
	if err != nil {
		v := internalError(err)
		return nil, &v
	}
	return g, nil
}

func panicError(p any) ValidationError {
	if err, ok := p.(error); ok {
		return internalError(err)
	}
	return internalError(fmt.Errorf("%v", p))
}
