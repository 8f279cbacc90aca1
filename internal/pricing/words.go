package pricing

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var wordUnits = []string{
	"", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
	"seventeen", "eighteen", "nineteen",
}

var wordTens = []string{
	"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety",
}

var titleCaser = cases.Title(language.English)

// AmountInWords renders a non-negative amount in the Indian numbering system
// (crore / lakh / thousand / hundred) as "<Words> rupees [and <words> paisa]
// only". Zero yields "Zero rupees only".
func AmountInWords(amount float64) string {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "N/A"
	}

	rupees := int64(math.Floor(amount))
	paisa := int64(math.Round((amount - math.Floor(amount)) * 100))
	if paisa >= 100 {
		rupees++
		paisa -= 100
	}

	out := indianWords(rupees)
	if out == "" {
		out = "zero"
	}
	out += " rupees"
	if paisa > 0 {
		out += " and " + under100(paisa) + " paisa"
	}
	out += " only"

	// Capitalize the leading word only; the rest stays lowercase.
	first, rest, found := strings.Cut(out, " ")
	if !found {
		return titleCaser.String(out)
	}
	return titleCaser.String(first) + " " + rest
}

func indianWords(n int64) string {
	if n == 0 {
		return ""
	}
	var parts []string
	if n >= 1_00_00_000 {
		// Crore counts can themselves exceed 99 ("one hundred twenty crore").
		parts = append(parts, indianWords(n/1_00_00_000)+" crore")
		n %= 1_00_00_000
	}
	if n >= 1_00_000 {
		parts = append(parts, under100(n/1_00_000)+" lakh")
		n %= 1_00_000
	}
	if n >= 1_000 {
		parts = append(parts, under100(n/1_000)+" thousand")
		n %= 1_000
	}
	if n >= 100 {
		parts = append(parts, wordUnits[n/100]+" hundred")
		n %= 100
	}
	if n > 0 {
		parts = append(parts, under100(n))
	}
	return strings.Join(parts, " ")
}

func under100(n int64) string {
	if n < 20 {
		return wordUnits[n]
	}
	out := wordTens[n/10]
	if n%10 != 0 {
		out += " " + wordUnits[n%10]
	}
	return out
}
