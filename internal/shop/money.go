package shop

import "github.com/shopspring/decimal"

// FormatMoney renders an amount with two decimal places for display. The
// underlying amounts stay unrounded float64 values.
func FormatMoney(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}
