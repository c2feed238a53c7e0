package services

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var idPrinter = message.NewPrinter(language.Indonesian)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// formatNumber renders a measure with Indonesian digit grouping, e.g.
// 6611000 → "6.611.000". Missing values render empty.
func formatNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return idPrinter.Sprint(number.Decimal(*v, number.MaxFractionDigits(3)))
}

// formatFixed2 renders a measure with exactly two fraction digits.
func formatFixed2(v *float64) string {
	if v == nil {
		return ""
	}
	return idPrinter.Sprint(number.Decimal(*v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// formatPlain renders a measure without grouping, the way scores are shown.
func formatPlain(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// formatDate renders an upstream date or timestamp as day/month/year.
// Unparseable input is returned as is.
func formatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2/1/2006")
		}
	}
	return s
}
