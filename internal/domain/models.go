// Package domain defines the core types shared by the reconciliation layer.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency represents ISO 4217 currency codes
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	IDR Currency = "IDR" // Indonesian Rupiah
	RUB Currency = "RUB" // Russian Ruble
	KRW Currency = "KRW" // South Korean Won
)

// ReferenceCurrency is the currency all cross-currency amounts are
// normalized against for comparison.
const ReferenceCurrency = USD

type WalletType string

const (
	WalletTypeCard   WalletType = "card"
	WalletTypeCash   WalletType = "cash"
	WalletTypeCrypto WalletType = "crypto"
)

// Wallet represents a user's wallet. Balances are decimal strings on the
// wire; shopspring/decimal marshals them quoted.
type Wallet struct {
	ID                 uuid.UUID        `json:"id"`
	OwnerID            uuid.UUID        `json:"owner_id"`
	Name               string           `json:"name"`
	Type               WalletType       `json:"type"`
	Balance            decimal.Decimal  `json:"balance"`
	Currency           Currency         `json:"currency"`
	BalanceInReference *decimal.Decimal `json:"balance_in_reference_currency,omitempty"`
	IsPrimary          bool             `json:"is_primary"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// ReorderID reports the wallet's identity for list reordering.
func (w Wallet) ReorderID() uuid.UUID {
	return w.ID
}

// Severity classifies how large a reconciliation delta is.
type Severity string

const (
	SeveritySame     Severity = "same"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// CalibrationPreview is a pure projection of (wallet, user-entered actual
// balance). It is recomputed on every input change and never persisted.
type CalibrationPreview struct {
	WalletID      uuid.UUID       `json:"wallet_id"`
	Reported      decimal.Decimal `json:"reported_balance"`
	Actual        decimal.Decimal `json:"actual_balance"`
	Difference    decimal.Decimal `json:"difference"`
	PercentChange decimal.Decimal `json:"percent_change"`
	Severity      Severity        `json:"severity"`
	WillCorrect   bool            `json:"will_correct"`
	Changed       bool            `json:"changed"`
}

// ReconciliationFailure records one wallet whose calibration submit failed.
type ReconciliationFailure struct {
	WalletID uuid.UUID `json:"wallet_id"`
	Message  string    `json:"message"`
}

// ReconciliationOutcome aggregates one batch calibration run.
type ReconciliationOutcome struct {
	Attempted          int                     `json:"attempted"`
	Succeeded          int                     `json:"succeeded"`
	CorrectionsCreated int                     `json:"corrections_created"`
	Failures           []ReconciliationFailure `json:"failures"`
}

// ReorderItem assigns a wallet its new dense 1-based rank.
type ReorderItem struct {
	ID       uuid.UUID `json:"id"`
	Position int       `json:"position"`
}

// ReorderPayload is the new canonical order sent to the server. Positions
// are a permutation of 1..N.
type ReorderPayload []ReorderItem

// Rate is one exchange rate record: units of Code per 1 unit of the
// reference currency.
type Rate struct {
	Code Currency        `json:"code"`
	Rate decimal.Decimal `json:"rate"`
}

// ReceiptItem is a single line recognized on a scanned receipt.
type ReceiptItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// ReceiptDraft is the unconfirmed transaction proposed by receipt scanning.
type ReceiptDraft struct {
	Merchant string          `json:"merchant"`
	Total    decimal.Decimal `json:"total"`
	Currency Currency        `json:"currency"`
	Date     time.Time       `json:"date"`
	Items    []ReceiptItem   `json:"items,omitempty"`
}
