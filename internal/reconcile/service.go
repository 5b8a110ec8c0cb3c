// Package reconcile drives batch wallet balance calibration: it submits one
// correction request per changed wallet and aggregates partial outcomes.
package reconcile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/derive"
	"fintrack/internal/domain"
	errs "fintrack/pkg/errors"
	"fintrack/pkg/logger"
	"fintrack/pkg/validator"
)

// CorrectionResult is the server's answer to one calibration submit.
type CorrectionResult struct {
	CalibrationApplied           bool `json:"calibration_applied"`
	CorrectionTransactionCreated bool `json:"correction_transaction_created"`
}

// Submitter sends a single wallet calibration to the server.
type Submitter interface {
	SubmitCalibration(ctx context.Context, walletID uuid.UUID, actual decimal.Decimal) (*CorrectionResult, error)
}

// Notifier is invoked once per batch run with the final outcome. Injected
// by the caller (e.g. to trigger a reward toast); never a global.
type Notifier func(outcome domain.ReconciliationOutcome)

type Service struct {
	submitter Submitter
	validator *validator.Validator
	logger    logger.Logger
	notify    Notifier
}

func NewService(submitter Submitter, v *validator.Validator, log logger.Logger, notify Notifier) *Service {
	return &Service{
		submitter: submitter,
		validator: v,
		logger:    log,
		notify:    notify,
	}
}

// Plan builds one calibration preview per wallet, in wallet order. Wallets
// without a user entry produce an unchanged preview.
func Plan(wallets []domain.Wallet, entries map[uuid.UUID]decimal.Decimal) []domain.CalibrationPreview {
	previews := make([]domain.CalibrationPreview, 0, len(wallets))
	for _, w := range wallets {
		var actual *decimal.Decimal
		if v, ok := entries[w.ID]; ok {
			actual = &v
		}
		previews = append(previews, derive.Preview(w, actual))
	}
	return previews
}

// calibrationRequest is validated before submit; a zero actual balance is
// legitimate, so only the wallet identity is required.
type calibrationRequest struct {
	WalletID      uuid.UUID `validate:"required"`
	ActualBalance decimal.Decimal
}

// Run executes the batch over all changed previews, strictly sequentially:
// server-side balance updates and correcting-transaction creation must not
// race for the same owner.
//
// One wallet's failure never aborts the batch; it is recorded and the loop
// moves on. The two exceptions both stop after the current item and return
// the partial outcome alongside the stop cause: context cancellation, and
// total transport failure (errs.ErrTransportUnavailable).
func (s *Service) Run(ctx context.Context, previews []domain.CalibrationPreview) (*domain.ReconciliationOutcome, error) {
	changed := make([]domain.CalibrationPreview, 0, len(previews))
	for _, p := range previews {
		if p.Changed {
			changed = append(changed, p)
		}
	}

	outcome := &domain.ReconciliationOutcome{Attempted: len(changed)}
	var stop error

	for _, p := range changed {
		if err := ctx.Err(); err != nil {
			stop = err
			break
		}

		req := calibrationRequest{WalletID: p.WalletID, ActualBalance: p.Actual}
		if err := s.validator.Validate(req); err != nil {
			outcome.Failures = append(outcome.Failures, domain.ReconciliationFailure{
				WalletID: p.WalletID,
				Message:  err.Error(),
			})
			continue
		}

		result, err := s.submitter.SubmitCalibration(ctx, p.WalletID, p.Actual)
		if err != nil {
			outcome.Failures = append(outcome.Failures, domain.ReconciliationFailure{
				WalletID: p.WalletID,
				Message:  err.Error(),
			})
			s.logger.Warn("Calibration submit failed", map[string]interface{}{
				"wallet_id": p.WalletID,
				"error":     err.Error(),
			})
			if errors.Is(err, errs.ErrTransportUnavailable) {
				stop = err
				break
			}
			continue
		}

		outcome.Succeeded++
		if result != nil && result.CorrectionTransactionCreated {
			outcome.CorrectionsCreated++
		}
	}

	s.logger.Info("Batch reconciliation finished", map[string]interface{}{
		"attempted":           outcome.Attempted,
		"succeeded":           outcome.Succeeded,
		"corrections_created": outcome.CorrectionsCreated,
		"failures":            len(outcome.Failures),
	})

	if s.notify != nil {
		s.notify(*outcome)
	}

	return outcome, stop
}
