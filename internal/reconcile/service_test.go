package reconcile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fintrack/internal/domain"
	errs "fintrack/pkg/errors"
	"fintrack/pkg/logger"
	"fintrack/pkg/validator"
)

// --- Mocks ---

type MockSubmitter struct {
	mock.Mock
}

func (m *MockSubmitter) SubmitCalibration(ctx context.Context, walletID uuid.UUID, actual decimal.Decimal) (*CorrectionResult, error) {
	args := m.Called(ctx, walletID, actual)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CorrectionResult), args.Error(1)
}

func changedPreview(actual float64) domain.CalibrationPreview {
	return domain.CalibrationPreview{
		WalletID: uuid.New(),
		Reported: decimal.NewFromInt(100),
		Actual:   decimal.NewFromFloat(actual),
		Changed:  true,
	}
}

// --- Tests ---

func TestRunMiddleItemFailureIsIsolated(t *testing.T) {
	submitter := new(MockSubmitter)
	service := NewService(submitter, validator.New(), logger.NewNop(), nil)
	ctx := context.Background()

	first := changedPreview(80)
	second := changedPreview(90)
	third := changedPreview(70)

	submitter.On("SubmitCalibration", ctx, first.WalletID, first.Actual).
		Return(&CorrectionResult{CalibrationApplied: true, CorrectionTransactionCreated: true}, nil)
	submitter.On("SubmitCalibration", ctx, second.WalletID, second.Actual).
		Return(nil, errors.New("request failed: 502"))
	submitter.On("SubmitCalibration", ctx, third.WalletID, third.Actual).
		Return(&CorrectionResult{CalibrationApplied: true}, nil)

	outcome, err := service.Run(ctx, []domain.CalibrationPreview{first, second, third})

	require.NoError(t, err)
	assert.Equal(t, 3, outcome.Attempted)
	assert.Equal(t, 2, outcome.Succeeded)
	assert.Equal(t, 1, outcome.CorrectionsCreated)
	require.Len(t, outcome.Failures, 1)
	assert.Equal(t, second.WalletID, outcome.Failures[0].WalletID)
	assert.Equal(t, "request failed: 502", outcome.Failures[0].Message)

	// The loop must still process the item after the failure.
	submitter.AssertCalled(t, "SubmitCalibration", ctx, third.WalletID, third.Actual)
}

func TestRunSkipsUnchangedPreviews(t *testing.T) {
	submitter := new(MockSubmitter)
	service := NewService(submitter, validator.New(), logger.NewNop(), nil)
	ctx := context.Background()

	unchanged := domain.CalibrationPreview{
		WalletID: uuid.New(),
		Reported: decimal.NewFromInt(100),
		Actual:   decimal.NewFromInt(100),
		Changed:  false,
	}

	outcome, err := service.Run(ctx, []domain.CalibrationPreview{unchanged})

	require.NoError(t, err)
	assert.Zero(t, outcome.Attempted)
	assert.Zero(t, outcome.Succeeded)
	assert.Empty(t, outcome.Failures)
	submitter.AssertNotCalled(t, "SubmitCalibration", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunTransportDownAbortsWithPartials(t *testing.T) {
	submitter := new(MockSubmitter)
	service := NewService(submitter, validator.New(), logger.NewNop(), nil)
	ctx := context.Background()

	first := changedPreview(80)
	second := changedPreview(90)
	third := changedPreview(70)

	submitter.On("SubmitCalibration", ctx, first.WalletID, first.Actual).
		Return(&CorrectionResult{CalibrationApplied: true}, nil)
	submitter.On("SubmitCalibration", ctx, second.WalletID, second.Actual).
		Return(nil, fmt.Errorf("%w: dial tcp refused", errs.ErrTransportUnavailable))

	outcome, err := service.Run(ctx, []domain.CalibrationPreview{first, second, third})

	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrTransportUnavailable)
	// Already-recorded partial results are returned, not discarded.
	assert.Equal(t, 3, outcome.Attempted)
	assert.Equal(t, 1, outcome.Succeeded)
	require.Len(t, outcome.Failures, 1)
	submitter.AssertNotCalled(t, "SubmitCalibration", ctx, third.WalletID, third.Actual)
}

func TestRunStopsBetweenItemsOnCancellation(t *testing.T) {
	submitter := new(MockSubmitter)
	service := NewService(submitter, validator.New(), logger.NewNop(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	first := changedPreview(80)
	second := changedPreview(90)

	// The in-flight item completes; cancellation takes effect before the
	// next submit starts.
	submitter.On("SubmitCalibration", ctx, first.WalletID, first.Actual).
		Run(func(args mock.Arguments) { cancel() }).
		Return(&CorrectionResult{CalibrationApplied: true}, nil)

	outcome, err := service.Run(ctx, []domain.CalibrationPreview{first, second})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, outcome.Attempted)
	assert.Equal(t, 1, outcome.Succeeded)
	submitter.AssertNotCalled(t, "SubmitCalibration", ctx, second.WalletID, second.Actual)
}

func TestRunNotifiesObserverOnce(t *testing.T) {
	submitter := new(MockSubmitter)

	var notified []domain.ReconciliationOutcome
	service := NewService(submitter, validator.New(), logger.NewNop(), func(o domain.ReconciliationOutcome) {
		notified = append(notified, o)
	})

	ctx := context.Background()
	preview := changedPreview(80)
	submitter.On("SubmitCalibration", ctx, preview.WalletID, preview.Actual).
		Return(&CorrectionResult{CalibrationApplied: true}, nil)

	_, err := service.Run(ctx, []domain.CalibrationPreview{preview})

	require.NoError(t, err)
	require.Len(t, notified, 1)
	assert.Equal(t, 1, notified[0].Succeeded)
}

func TestPlanPreservesWalletOrder(t *testing.T) {
	first := domain.Wallet{ID: uuid.New(), Balance: decimal.NewFromInt(100)}
	second := domain.Wallet{ID: uuid.New(), Balance: decimal.NewFromInt(200)}

	entries := map[uuid.UUID]decimal.Decimal{
		second.ID: decimal.NewFromInt(150),
	}

	previews := Plan([]domain.Wallet{first, second}, entries)

	require.Len(t, previews, 2)
	assert.Equal(t, first.ID, previews[0].WalletID)
	assert.False(t, previews[0].Changed, "wallet without an entry stays unchanged")
	assert.Equal(t, second.ID, previews[1].WalletID)
	assert.True(t, previews[1].Changed)
}
