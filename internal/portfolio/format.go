package portfolio

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const displayCurrency = "USD"

// NotAvailable is shown in place of a missing metric.
const NotAvailable = "N/A"

// FormatPrice renders a price as currency with two decimals, e.g. 19.5 -> "$19.50".
func FormatPrice(price float64) string {
	cur := money.GetCurrency(displayCurrency)
	cents := decimal.NewFromFloat(price).Shift(int32(cur.Fraction)).Round(0)
	return money.New(cents.IntPart(), displayCurrency).Display()
}

// FormatMetric renders an optional ratio with two decimals, or NotAvailable.
func FormatMetric(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return decimal.NewFromFloat(*v).StringFixed(2)
}

// FormatQuantity renders a share count without trailing zeros.
func FormatQuantity(q float64) string {
	return decimal.NewFromFloat(q).String()
}
