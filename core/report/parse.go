package report

import (
	"math"
	"strings"
	"time"
	"unicode"
)

const dateLayout = "2006-01-02"

// parseLeadingInt reads the leading base-10 integer of raw, the way form inputs are read:
// leading whitespace and a sign are accepted, parsing stops at the first non digit.
// Values saturate at math.MaxInt32.
func parseLeadingInt(raw string) (int, bool) {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	var n int64
	digits := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		digits++
		if n < math.MaxInt32 {
			n = n*10 + int64(c-'0')
			if n > math.MaxInt32 {
				n = math.MaxInt32
			}
		}
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return int(n), true
}

// ParseGroupCount coerces a group count input: anything that is not a positive integer becomes 1.
func ParseGroupCount(raw string) int {
	n, ok := parseLeadingInt(raw)
	if !ok || n < 1 {
		return 1
	}
	return n
}

// ParseCount coerces a student count or a coverage percentage: failed parses and negatives become 0.
func ParseCount(raw string) int {
	n, ok := parseLeadingInt(raw)
	if !ok || n < 0 {
		return 0
	}
	return n
}

// ParseDate keeps a YYYY-MM-DD date and blanks anything else.
func ParseDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return ""
	}
	return d.Format(dateLayout)
}
