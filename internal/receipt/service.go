// Package receipt submits captured receipt images to the remote scanning
// service and decodes the proposed transaction draft.
package receipt

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"image"

	"fintrack/internal/apiclient"
	"fintrack/internal/domain"
	"fintrack/internal/faults"
	errs "fintrack/pkg/errors"
	"fintrack/pkg/logger"
	"fintrack/pkg/validator"
)

type Service struct {
	api       *apiclient.Client
	encoder   Encoder
	validator *validator.Validator
	logger    logger.Logger
}

func NewService(api *apiclient.Client, encoder Encoder, v *validator.Validator, log logger.Logger) *Service {
	return &Service{
		api:       api,
		encoder:   encoder,
		validator: v,
		logger:    log,
	}
}

type scanRequest struct {
	Image       string `json:"image" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
}

// Scan uploads the image and returns the recognized draft. Failures keep
// their classifiable shape; callers decide between a retry action and a
// specific remediation via faults.Classify.
func (s *Service) Scan(ctx context.Context, img image.Image) (*domain.ReceiptDraft, error) {
	data, contentType, err := s.encoder.Encode(img)
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode receipt image")
	}

	req := scanRequest{
		Image:       base64.StdEncoding.EncodeToString(data),
		ContentType: contentType,
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	raw, err := s.api.Post(ctx, "/receipts/scan", req)
	if err != nil {
		classified := faults.Classify(err)
		s.logger.Warn("Receipt scan failed", map[string]interface{}{
			"message_key": classified.MessageKey,
			"retryable":   classified.Retryable,
			"error":       err.Error(),
		})
		return nil, err
	}

	var draft domain.ReceiptDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, errs.Wrap(err, "failed to decode receipt draft")
	}
	return &draft, nil
}
