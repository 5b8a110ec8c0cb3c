package derive

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/domain"
)

var (
	// balanceEpsilon is the smallest difference treated as a real change.
	balanceEpsilon = decimal.NewFromFloat(0.01)

	warningThreshold  = decimal.NewFromInt(5)
	criticalThreshold = decimal.NewFromInt(10)
	hundred           = decimal.NewFromInt(100)
)

// Preview computes the calibration projection for one wallet given the
// user-entered actual balance. A nil actual means the user left this wallet
// untouched; the preview then reports the wallet as unchanged.
func Preview(w domain.Wallet, actual *decimal.Decimal) domain.CalibrationPreview {
	p := domain.CalibrationPreview{
		WalletID:      w.ID,
		Reported:      w.Balance,
		Actual:        w.Balance,
		Difference:    decimal.Zero,
		PercentChange: decimal.Zero,
		Severity:      domain.SeveritySame,
	}

	if actual == nil {
		return p
	}

	p.Actual = *actual
	p.Difference = actual.Sub(w.Balance)

	// Reported balance of zero makes a relative change meaningless; percent
	// stays zero and severity is driven by the change flag alone.
	if !w.Balance.IsZero() {
		p.PercentChange = p.Difference.Abs().Div(w.Balance.Abs()).Mul(hundred)
	}

	p.Changed = p.Difference.Abs().GreaterThan(balanceEpsilon)
	p.WillCorrect = p.Difference.LessThan(balanceEpsilon.Neg())

	switch {
	case p.Changed && p.PercentChange.GreaterThan(criticalThreshold):
		p.Severity = domain.SeverityCritical
	case p.Changed && p.PercentChange.GreaterThan(warningThreshold):
		p.Severity = domain.SeverityWarning
	default:
		p.Severity = domain.SeveritySame
	}

	return p
}
