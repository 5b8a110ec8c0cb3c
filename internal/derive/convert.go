// Package derive implements the pure financial derivation functions:
// currency conversion, default-wallet selection, budget usage, and the
// calibration preview. Every function is total; degenerate input yields a
// sentinel or zero result, never an error.
package derive

import (
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/domain"
)

// Convert converts amount (a decimal string denominated in currency) into
// the reference currency, formatted to exactly 2 decimal places.
//
// Rates are units of currency per 1 unit of the reference currency, so the
// conversion divides. The second return is false when there is nothing to
// convert: the amount is already in the reference currency, the amount is
// empty or unparseable, or no positive rate is known for the currency.
func Convert(amount string, currency domain.Currency, rates map[domain.Currency]decimal.Decimal) (string, bool) {
	if currency == domain.ReferenceCurrency {
		return "", false
	}

	amount = strings.TrimSpace(amount)
	if amount == "" {
		return "", false
	}

	rate, ok := rates[currency]
	if !ok || !rate.IsPositive() {
		return "", false
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return "", false
	}

	return value.DivRound(rate, 2).StringFixed(2), true
}
