// Package core is the schema-driven validation and transformation engine for
// partner spreadsheet uploads.
//
// It has no knowledge of HTTP, storage or remote services; the loader and web
// packages wrap it.
//
// # Pipeline
//
//  1. [ReadGrid] decodes an .xlsx workbook (first sheet only) or a CSV file
//     into a [Grid] of tagged [Cell] values. Formula cells contribute their
//     cached result and are never recomputed.
//  2. [ResolveHeaders] indexes row 0 under [NormalizeHeader] (trim, case fold).
//  3. [Validate] checks every non-blank data row against a [Schema] and returns
//     an ordered list of [ValidationError].
//  4. [Transform] coerces each non-blank data row into a [CanonicalRecord]
//     keyed by the schema's column keys.
//
// [Engine] ties the steps together and guarantees that transformation never
// runs over a sheet with outstanding validation errors:
//
//	eng := core.NewEngine(core.DefaultOptions())
//	out := eng.ValidateThenTransform(ctx, file, schema)
//	if !out.Valid() {
//	    return out.Errors
//	}
//	store(out.Records)
//
// # Row numbers
//
// Errors carry 1-based spreadsheet row numbers: the header is row 1 and the
// first data row is row 2. Structural errors have a nil row.
//
// # Dates
//
// Date columns accept native date cells, or text matching the column's format
// (default dd/MM/yyyy) or one of [Options.DateFallbacks]. Patterns use the
// d, dd, M, MM, MMM, MMMM, yy and yyyy tokens and are translated to Go
// layouts once per format. Transformed dates are ISO-8601 calendar dates.
//
// # Error Handling
//
// Technical errors are mapped to coded user messages with [MapError].
package core
