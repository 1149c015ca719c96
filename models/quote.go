package models

import (
	"fmt"
	"strings"
)

// Quote is the rate engine's output for one stay duration: a single charge
// amount in minor currency units, the billing unit it was computed in, and
// a human-readable label.
type Quote struct {
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Label    string  `json:"label"`
	Currency string  `json:"currency"`
}

// zeroDecimalCurrencies have no fractional minor unit.
var zeroDecimalCurrencies = map[string]bool{
	"THB": true,
	"JPY": true,
	"VND": true,
	"IDR": true,
	"KRW": true,
}

// IsZeroDecimalCurrency reports whether the currency's minor unit equals
// its major unit.
func IsZeroDecimalCurrency(currency string) bool {
	return zeroDecimalCurrencies[strings.ToUpper(currency)]
}

// FormatAmount renders a minor-unit amount for human-facing copy.
func FormatAmount(amount float64, currency string) string {
	if IsZeroDecimalCurrency(currency) {
		return fmt.Sprintf("%.0f %s", amount, strings.ToUpper(currency))
	}
	return fmt.Sprintf("%.2f %s", amount/100, strings.ToUpper(currency))
}
