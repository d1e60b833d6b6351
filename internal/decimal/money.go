package decimal

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// CurrencyPrefix marks a value rendered as Brazilian Real
const CurrencyPrefix = "R$"

// ErrNotCurrency is returned by ParseBRL for values without the R$ prefix
var ErrNotCurrency = errors.New("value is not a formatted currency")

// FromString parses a decimal that may use either '.' or ',' as decimal separator.
// Surrounding whitespace is ignored. Thousands separators are not accepted.
func FromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}

// FormatGrouped renders d with the given number of decimal places,
// grouping the integer part in thousands.
func FormatGrouped(d decimal.Decimal, places int32, thousands, point string) string {
	sign, intPart, frac := split(d.StringFixed(places))
	return sign + group(intPart, thousands) + joinFrac(point, frac)
}

// FormatPlain renders d with the given number of decimal places and no grouping.
func FormatPlain(d decimal.Decimal, places int32, point string) string {
	sign, intPart, frac := split(d.StringFixed(places))
	return sign + intPart + joinFrac(point, frac)
}

// FormatBRL renders d as "R$ 1.234,56"
func FormatBRL(d decimal.Decimal) string {
	return CurrencyPrefix + " " + FormatGrouped(d, 2, ".", ",")
}

// ParseBRL reverses FormatBRL: strips the prefix, drops '.' separators
// and reads ',' as the decimal point.
func ParseBRL(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, CurrencyPrefix) {
		return Zero, ErrNotCurrency
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, CurrencyPrefix))
	s = strings.ReplaceAll(s, ".", "")
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// Mean returns the arithmetic mean rounded to 2 places, zero for an empty slice
func Mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return Zero
	}
	return Sum(values).Div(decimal.NewFromInt(int64(len(values)))).Round(2)
}

func split(fixed string) (sign, intPart, frac string) {
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	intPart, frac, _ = strings.Cut(fixed, ".")
	return sign, intPart, frac
}

func group(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func joinFrac(point, frac string) string {
	if frac == "" {
		return ""
	}
	return point + frac
}
