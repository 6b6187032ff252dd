// Package fare projects driven distance into money. Accumulation stays in
// full floating-point precision; rounding happens only when a value is
// formatted for display.
package fare

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Fare returns the amount earned for a distance at the given per-kilometer rate.
func Fare(distanceKm, ratePerKm float64) float64 {
	return distanceKm * ratePerKm
}

// Formatter renders monetary amounts with two decimals in a fixed locale.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter builds a Formatter for a BCP 47 locale tag such as "ar-EG".
// Unparseable tags fall back to English.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Format renders v with exactly two fraction digits.
func (f *Formatter) Format(v float64) string {
	return f.printer.Sprintf("%.2f", v)
}
