// Package format converts loosely typed result values into display strings.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// MaxFractionDigits is the precision of localized numbers.
const MaxFractionDigits = 3

// Number renders v with English digit grouping and at most MaxFractionDigits
// fraction digits, e.g. 1234.5678 -> "1,234.568".
func Number(v float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(MaxFractionDigits)))
}

// AsNumber reports whether v is a native number and returns it as float64.
// Strings are never treated as numbers here; see ParseNumber.
func AsNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseNumber parses a numeric string such as "14" or " 2.5 ".
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Numeric accepts native numbers and numeric strings.
func Numeric(v any) (float64, bool) {
	if f, ok := AsNumber(v); ok {
		return f, true
	}
	if s, ok := v.(string); ok {
		return ParseNumber(s)
	}
	return 0, false
}

// String returns the plain string form of v. nil becomes "".
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case interface{ String() string }:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
