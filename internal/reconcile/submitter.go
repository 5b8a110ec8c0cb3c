package reconcile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/apiclient"
	errs "fintrack/pkg/errors"
)

// APISubmitter submits calibrations over the HTTP transport.
type APISubmitter struct {
	api *apiclient.Client
}

func NewAPISubmitter(api *apiclient.Client) *APISubmitter {
	return &APISubmitter{api: api}
}

type calibrationBody struct {
	ActualBalance decimal.Decimal `json:"actual_balance"`
}

func (s *APISubmitter) SubmitCalibration(ctx context.Context, walletID uuid.UUID, actual decimal.Decimal) (*CorrectionResult, error) {
	path := fmt.Sprintf("/wallets/%s/calibrate", walletID)
	raw, err := s.api.Post(ctx, path, calibrationBody{ActualBalance: actual})
	if err != nil {
		return nil, err
	}

	var result CorrectionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, errs.Wrap(err, "failed to decode calibration result")
	}
	return &result, nil
}
