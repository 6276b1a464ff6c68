package core

import (
	"fmt"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// DefaultDateFormat is used for Date columns without a format.
const DefaultDateFormat = "dd/MM/yyyy"

// DefaultDateFallbacks returns the patterns tried after a column's own format.
func DefaultDateFallbacks() []string {
	return []string{"dd/MM/yyyy", "d/M/yyyy", "yyyy-MM-dd", "dd-MM-yyyy", "d-M-yyyy"}
}

// datePattern is a date pattern translated to a Go reference layout.
// An untranslatable pattern keeps its error and never matches.
type datePattern struct {
	source string
	layout string
	err    error
}

func compileDatePattern(p string) datePattern {
	layout, err := translateDatePattern(p)
	return datePattern{source: p, layout: layout, err: err}
}

// parse reads s with the pattern's layout. Two-digit years land in
// 2000-2099; Go's own pivot would put 69-99 in the 1900s.
func (p datePattern) parse(s string) (time.Time, bool) {
	if p.err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse(p.layout, s)
	if err != nil {
		return time.Time{}, false
	}
	if strings.Contains(p.layout, "06") && !strings.Contains(p.layout, "2006") && t.Year() < 2000 {
		t = t.AddDate(100, 0, 0)
	}
	return t, true
}

// translateDatePattern converts a letter pattern such as "dd/MM/yyyy" into a
// Go layout. Letters inside single quotes are literal; '' is a quote.
// The pattern must name a year, a month and a day.
func translateDatePattern(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("empty date pattern")
	}

	var b strings.Builder
	var hasYear, hasMonth, hasDay bool
	runes := []rune(p)

	for i := 0; i < len(runes); {
		ch := runes[i]

		if ch == '\'' {
			if i+1 < len(runes) && runes[i+1] == '\'' {
				b.WriteRune('\'')
				i += 2
				continue
			}
			end := i + 1
			for end < len(runes) && runes[end] != '\'' {
				end++
			}
			if end == len(runes) {
				return "", fmt.Errorf("date pattern %q: unterminated quote", p)
			}
			lit := string(runes[i+1 : end])
			if strings.ContainsAny(lit, "0123456789") {
				return "", fmt.Errorf("date pattern %q: digits in literal", p)
			}
			b.WriteString(lit)
			i = end + 1
			continue
		}

		if !isPatternLetter(ch) {
			if ch >= '0' && ch <= '9' {
				return "", fmt.Errorf("date pattern %q: digit %q outside quotes", p, ch)
			}
			b.WriteRune(ch)
			i++
			continue
		}

		n := 1
		for i+n < len(runes) && runes[i+n] == ch {
			n++
		}
		i += n

		switch ch {
		case 'd':
			hasDay = true
			if n > 2 {
				return "", fmt.Errorf("date pattern %q: too many 'd'", p)
			}
			b.WriteString(pick(n, "2", "02"))
		case 'M', 'L':
			hasMonth = true
			switch n {
			case 1:
				b.WriteString("1")
			case 2:
				b.WriteString("01")
			case 3:
				b.WriteString("Jan")
			default:
				b.WriteString("January")
			}
		case 'y', 'u':
			hasYear = true
			if n == 2 {
				b.WriteString("06")
			} else {
				b.WriteString("2006")
			}
		case 'E':
			if n <= 3 {
				b.WriteString("Mon")
			} else {
				b.WriteString("Monday")
			}
		case 'H':
			b.WriteString("15")
		case 'h':
			b.WriteString(pick(n, "3", "03"))
		case 'm':
			b.WriteString(pick(n, "4", "04"))
		case 's':
			b.WriteString(pick(n, "5", "05"))
		case 'a':
			b.WriteString("PM")
		default:
			return "", fmt.Errorf("date pattern %q: unsupported letter %q", p, ch)
		}
	}

	if !hasYear || !hasMonth || !hasDay {
		return "", fmt.Errorf("date pattern %q: needs year, month and day", p)
	}
	return b.String(), nil
}

func isPatternLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func pick(n int, one, two string) string {
	if n == 1 {
		return one
	}
	return two
}
