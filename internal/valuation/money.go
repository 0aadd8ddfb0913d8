package valuation

import (
	"math"
	"strconv"
	"strings"
)

// ParseMoney coerces a money-formatted string ("$68,500", "12500 USD") to a
// numeric value. Returns false for anything that is not a finite number.
func ParseMoney(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.ToUpper(s), "USD")
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == '$', r == ',', r == ' ':
			// separators and currency marks drop out
		default:
			return 0, false
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatUSD formats a dollar amount with comma separators (68500 → "68,500").
func FormatUSD(n int64) string {
	if n < 0 {
		return "-" + FormatUSD(-n)
	}
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
