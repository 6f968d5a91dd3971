package util

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

var amountReplacer = strings.NewReplacer(
	",", "",
	" ", "",
	"\u00a0", "",
	"\t", "",
	"\u2212", "-",
)

// ParseAmount converts a provider amount into a signed decimal. Strings may carry
// thousands separators, a unicode minus or accounting parentheses for negatives.
// Returns false for nil, blanks and the "-" placeholder.
func ParseAmount(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return val, true
	case float64:
		return decimal.NewFromFloat(val), true
	case float32:
		return decimal.NewFromFloat32(val), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case json.Number:
		return parseAmountString(val.String())
	case string:
		return parseAmountString(val)
	}
	return decimal.Zero, false
}

// ParsePercent parses a percent value such as "2.35" or "2.35%".
func ParsePercent(s string) (decimal.Decimal, bool) {
	return parseAmountString(strings.TrimSuffix(strings.TrimSpace(s), "%"))
}

func parseAmountString(s string) (decimal.Decimal, bool) {
	s = amountReplacer.Replace(strings.TrimSpace(s))
	if s == "" || s == "-" {
		return decimal.Zero, false
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}
