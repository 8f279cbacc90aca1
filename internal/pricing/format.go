package pricing

import (
	"fmt"
	"strings"
)

// FormatINR renders an amount in Indian Rupee notation with Indian digit
// grouping: the rightmost three digits form one group, then pairs
// (e.g. ₹1,23,45,678.90). Always two decimal places.
func FormatINR(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	raw := fmt.Sprintf("%.2f", amount)
	intPart, decPart, _ := strings.Cut(raw, ".")

	out := "₹" + groupIndian(intPart) + "." + decPart
	if negative {
		out = "-" + out
	}
	return out
}

func groupIndian(s string) string {
	if len(s) <= 3 {
		return s
	}
	out := s[len(s)-3:]
	rest := s[:len(s)-3]
	for len(rest) > 2 {
		out = rest[len(rest)-2:] + "," + out
		rest = rest[:len(rest)-2]
	}
	return rest + "," + out
}
