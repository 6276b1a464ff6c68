package core

import "context"

// Transform builds one CanonicalRecord per non-blank data row of g.
//
// Records follow row order and hold one field per schema column, in schema
// order. A column whose header is absent maps to nil in every record. The only
// errors are a missing header row and ctx cancellation.
func Transform(ctx context.Context, g *Grid, schema Schema, opts Options) ([]CanonicalRecord, error) {
	return transformGrid(ctx, g, schema, NewCoercer(opts), 0)
}

// transformGrid stops after limit records when limit > 0.
func transformGrid(ctx context.Context, g *Grid, schema Schema, co *Coercer, limit int) ([]CanonicalRecord, error) {
	idx, err := ResolveHeaders(g)
	if err != nil {
		return nil, err
	}
	plans := planColumns(schema, idx)

	records := []CanonicalRecord{}
	for r := 1; r < g.NumRows(); r++ {
		if (r-1)%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if isBlankRow(g.Row(r)) {
			continue
		}

		rec := make(CanonicalRecord, len(plans))
		for i, p := range plans {
			var v any
			if p.present {
				v = co.Coerce(g.Cell(r, p.col), p.spec)
			}
			rec[i] = Field{Key: p.spec.Key, Value: v}
		}
		records = append(records, rec)

		if limit > 0 && len(records) >= limit {
			break
		}
	}

	return records, nil
}
