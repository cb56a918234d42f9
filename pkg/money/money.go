package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// All amounts crossing the commerce boundary are integers in minor currency
// units. Conversion to major units happens here, at the render edge, and
// nowhere else.

var minorUnitsByCurrency = map[string]int32{
	"JPY": 0,
	"KRW": 0,
	"BHD": 3,
	"KWD": 3,
}

func exponent(currencyCode string) int32 {
	if exp, ok := minorUnitsByCurrency[strings.ToUpper(currencyCode)]; ok {
		return exp
	}
	return 2
}

// Major converts minor units into a major-unit decimal for the currency.
func Major(minor int64, currencyCode string) decimal.Decimal {
	return decimal.New(minor, -exponent(currencyCode))
}

// Format renders minor units as a plain major-unit string, e.g. 9900 → "99.00".
func Format(minor int64, currencyCode string) string {
	exp := exponent(currencyCode)
	return Major(minor, currencyCode).StringFixed(exp)
}

// FormatWithCode renders the amount followed by its currency code.
func FormatWithCode(minor int64, currencyCode string) string {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if code == "" {
		return Format(minor, currencyCode)
	}
	return Format(minor, code) + " " + code
}
