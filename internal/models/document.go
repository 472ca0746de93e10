package models

import "fmt"

// Document is an immutable catalog entry. Prices are euro cents so totals
// never touch float arithmetic.
type Document struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
}

// FormatPrice renders the price as a two-decimal euro string, e.g. "29.90".
func (d Document) FormatPrice() string {
	return FormatCents(d.PriceCents)
}

// FormatCents renders an integer cent amount with two decimals.
func FormatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
