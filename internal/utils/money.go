package utils

import (
	"fmt"
	"math"
	"strings"
)

var currencySymbols = map[string]string{
	"EUR": "€",
	"GBP": "£",
	"USD": "$",
}

// FormatMoney keeps consistent decimal formatting for currency fields.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// FormatPrice renders an amount with two decimals and the symbol of the operating currency.
// Unknown currency codes are rendered as a suffix ("85.00 CHF").
func FormatPrice(amount float64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	if sym, ok := currencySymbols[code]; ok {
		return sign + sym + FormatMoney(amount)
	}
	if code == "" {
		return sign + FormatMoney(amount)
	}
	return sign + FormatMoney(amount) + " " + code
}

// RoundCents rounds to two decimals.
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
