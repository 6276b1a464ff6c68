package core

import (
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Options tune the engine's date handling.
type Options struct {
	DefaultDateFormat string   // Used when a Date column has no format (default dd/MM/yyyy)
	DateFallbacks     []string // Tried in order after the column format; nil means the defaults
}

// DefaultOptions returns the stock date settings.
func DefaultOptions() Options {
	return Options{
		DefaultDateFormat: DefaultDateFormat,
		DateFallbacks:     DefaultDateFallbacks(),
	}
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.DefaultDateFormat) == "" {
		o.DefaultDateFormat = DefaultDateFormat
	}
	if o.DateFallbacks == nil {
		o.DateFallbacks = DefaultDateFallbacks()
	}
	return o
}

// booleanWords are the accepted textual booleans, compared case-insensitively.
var booleanWords = map[string]bool{
	"true": true, "false": true,
	"y": true, "n": true,
	"1": true, "0": true,
}

// Coercer checks and converts single cells against a ColumnSpec.
// It is safe for concurrent use.
type Coercer struct {
	defaultFormat string
	fallbacks     []datePattern

	mu       sync.Mutex
	byFormat map[string][]datePattern
}

// NewCoercer compiles the date patterns of opts.
func NewCoercer(opts Options) *Coercer {
	opts = opts.withDefaults()
	fallbacks := make([]datePattern, 0, len(opts.DateFallbacks))
	for _, p := range opts.DateFallbacks {
		fallbacks = append(fallbacks, compileDatePattern(p))
	}
	return &Coercer{
		defaultFormat: opts.DefaultDateFormat,
		fallbacks:     fallbacks,
		byFormat:      make(map[string][]datePattern),
	}
}

// patterns returns the configured format followed by the fallbacks,
// skipping a fallback identical to the configured format.
func (c *Coercer) patterns(format string) []datePattern {
	if strings.TrimSpace(format) == "" {
		format = c.defaultFormat
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ps, ok := c.byFormat[format]; ok {
		return ps
	}
	ps := make([]datePattern, 0, len(c.fallbacks)+1)
	ps = append(ps, compileDatePattern(format))
	for _, fb := range c.fallbacks {
		if fb.source == format {
			continue
		}
		ps = append(ps, fb)
	}
	c.byFormat[format] = ps
	return ps
}

func (c *Coercer) parseDate(s, format string) (time.Time, bool) {
	for _, p := range c.patterns(format) {
		if t, ok := p.parse(s); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// Valid reports whether a non-empty cell satisfies the column's type.
func (c *Coercer) Valid(cell Cell, spec ColumnSpec) bool {
	switch spec.Type {
	case TypeNumber:
		if _, ok := cell.number(); ok {
			return true
		}
		_, ok := parseNumber(cell.Display())
		return ok
	case TypeDate:
		if cell.Kind == CellDate {
			return true
		}
		_, ok := c.parseDate(cell.Display(), spec.Format)
		return ok
	case TypeBoolean:
		if cell.Kind == CellBoolean {
			return true
		}
		return booleanWords[strings.ToLower(cell.Display())]
	default:
		return true
	}
}

// Coerce converts a cell to its canonical value: float64 for numbers, an
// ISO-8601 calendar date string for dates, bool for native booleans, and the
// display text otherwise. Empty or unconvertible cells yield nil.
func (c *Coercer) Coerce(cell Cell, spec ColumnSpec) any {
	display := cell.Display()
	if display == "" {
		return nil
	}

	switch spec.Type {
	case TypeNumber:
		if v, ok := cell.number(); ok {
			return v
		}
		if f, ok := parseNumber(display); ok {
			return f
		}
		return nil
	case TypeDate:
		if cell.Kind == CellDate {
			return cell.Time.Format(isoDate)
		}
		if t, ok := c.parseDate(display, spec.Format); ok {
			return t.Format(isoDate)
		}
		return nil
	case TypeBoolean:
		if cell.Kind == CellBoolean {
			return cell.Bool
		}
		return display
	default:
		return display
	}
}

// parseNumber parses s as a finite float after removing thousands separators.
func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
