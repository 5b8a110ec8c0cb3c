package derive

import (
	"github.com/shopspring/decimal"
)

// BudgetUsage returns how much of a budget limit has been consumed, as a
// percentage. A non-positive limit yields zero rather than a division
// error; negative spend clamps to zero. Values above 100 indicate
// overspend and are returned as-is.
func BudgetUsage(spent, limit decimal.Decimal) decimal.Decimal {
	if !limit.IsPositive() {
		return decimal.Zero
	}
	if spent.IsNegative() {
		return decimal.Zero
	}
	return spent.Div(limit).Mul(hundred)
}
