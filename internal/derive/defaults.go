package derive

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/domain"
)

// PickDefault selects the wallet a fresh session should open on.
//
// The primary wallet wins when one exists. Otherwise the wallet with the
// largest balance in the reference currency is chosen, ties broken by input
// order (first maximum wins); wallets with no reference balance rank
// lowest. Returns false only for an empty list.
func PickDefault(wallets []domain.Wallet) (uuid.UUID, bool) {
	if len(wallets) == 0 {
		return uuid.Nil, false
	}

	for _, w := range wallets {
		if w.IsPrimary {
			return w.ID, true
		}
	}

	best := 0
	var bestBalance *decimal.Decimal
	for i, w := range wallets {
		if w.BalanceInReference == nil {
			continue
		}
		if bestBalance == nil || w.BalanceInReference.GreaterThan(*bestBalance) {
			best = i
			bestBalance = w.BalanceInReference
		}
	}

	return wallets[best].ID, true
}
