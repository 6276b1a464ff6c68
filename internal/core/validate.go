package core

import (
	"context"
	"strings"
)

// ContextCheckInterval is how many rows are scanned between cancellation checks.
const ContextCheckInterval = 100

// columnPlan binds a ColumnSpec to its resolved grid column.
type columnPlan struct {
	spec    ColumnSpec
	col     int
	present bool
	allowed map[string]struct{}
}

func planColumns(schema Schema, idx HeaderIndex) []columnPlan {
	plans := make([]columnPlan, len(schema.Columns))
	for i, spec := range schema.Columns {
		col, ok := idx.Lookup(spec.Header)
		p := columnPlan{spec: spec, col: col, present: ok}
		if len(spec.EnumValues) > 0 {
			p.allowed = make(map[string]struct{}, len(spec.EnumValues))
			for _, v := range spec.EnumValues {
				p.allowed[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
			}
		}
		plans[i] = p
	}
	return plans
}

// Validate checks every non-blank data row of g against schema.
//
// Missing headers are reported once each and stop the scan. Row errors are
// ordered by row, then by schema column. A cancelled ctx ends the scan with a
// single internal error appended to what was found so far.
func Validate(ctx context.Context, g *Grid, schema Schema, opts Options) []ValidationError {
	return validateGrid(ctx, g, schema, NewCoercer(opts))
}

func validateGrid(ctx context.Context, g *Grid, schema Schema, co *Coercer) []ValidationError {
	errs := []ValidationError{}

	idx, err := ResolveHeaders(g)
	if err != nil {
		return append(errs, internalError(err))
	}

	plans := planColumns(schema, idx)
	for _, p := range plans {
		if !p.present {
			errs = append(errs, ValidationError{Field: p.spec.Header, Message: MsgMissingHeader})
		}
	}
	if len(errs) > 0 {
		return errs
	}

	for r := 1; r < g.NumRows(); r++ {
		if (r-1)%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return append(errs, internalError(err))
			}
		}

		row := g.Row(r)
		if isBlankRow(row) {
			continue
		}

		for _, p := range plans {
			if msg := checkCell(co, g.Cell(r, p.col), p); msg != "" {
				errs = append(errs, rowError(r+1, p.spec.Header, msg))
			}
		}
	}

	return errs
}

// checkCell returns the error message for one cell, or "" when it passes.
func checkCell(co *Coercer, cell Cell, p columnPlan) string {
	display := cell.Display()
	if display == "" {
		if p.spec.Required {
			return MsgRequiredMissing
		}
		return ""
	}

	if !co.Valid(cell, p.spec) {
		return invalidTypeMessage(p.spec.Type)
	}

	if p.allowed != nil {
		if _, ok := p.allowed[strings.ToLower(display)]; !ok {
			return MsgNotAllowed
		}
	}
	return ""
}
