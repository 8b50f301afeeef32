package utils

import (
	"fmt"
	"math"
)

// FormatMoney keeps consistent decimal formatting for currency fields.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// FormatPrice renders "USD 1200.00".
func FormatPrice(currency string, amount float64) string {
	if currency == "" {
		currency = "USD"
	}
	return currency + " " + FormatMoney(amount)
}

// LineTotal multiplies a unit price by a quantity, rounded to cents.
func LineTotal(unit float64, qty int) float64 {
	return math.Round(unit*float64(qty)*100) / 100
}
