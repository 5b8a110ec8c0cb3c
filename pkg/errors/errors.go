// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrRateNotAvailable     = errors.New("exchange rate not available")
	ErrTransportUnavailable = errors.New("transport unavailable")
	ErrUnauthorized         = errors.New("Unauthorized")
	ErrInsufficientCredits  = errors.New("INSUFFICIENT_CREDITS")
	ErrMutationPending      = errors.New("mutation already pending")
	ErrNothingToReconcile   = errors.New("no changed wallets to reconcile")
	ErrEmptyReorder         = errors.New("reorder payload is empty")
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
