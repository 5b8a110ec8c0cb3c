// Package faults maps raised failures onto the client-side error taxonomy
// that drives user-facing messaging and retry eligibility.
package faults

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strings"

	errs "fintrack/pkg/errors"
)

// Classified is the taxonomy entry for one failure. MessageKey selects the
// user-facing message; Retryable decides whether a retry action is offered.
type Classified struct {
	MessageKey string `json:"message_key"`
	Retryable  bool   `json:"retryable"`
}

// Message keys, one per taxonomy entry.
const (
	KeyNetwork      = "network"
	KeyTimeout      = "timeout"
	KeyUnauthorized = "unauthorized"
	KeyNoCredits    = "no_credits"
	KeyServer       = "server"
	KeyUnknown      = "unknown"
)

// unauthorizedMarker is the exact message the backend uses for auth
// failures. Only an exact match (or the sentinel) classifies as
// unauthorized; substrings are too easy to trip by accident.
const unauthorizedMarker = "Unauthorized"

// serverStatusRe matches a 5xx status embedded in a failure message,
// e.g. "request failed: 502".
var serverStatusRe = regexp.MustCompile(`\b5\d{2}\b`)

// Classify maps a failure onto the taxonomy. Rules evaluate in order and
// the first match wins. A nil error classifies as unknown/retryable so a
// misbehaving caller is never silently blocked.
func Classify(err error) Classified {
	if err == nil {
		return Classified{MessageKey: KeyUnknown, Retryable: true}
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case msg == unauthorizedMarker || errors.Is(err, errs.ErrUnauthorized):
		return Classified{MessageKey: KeyUnauthorized, Retryable: false}

	case strings.Contains(msg, "INSUFFICIENT_CREDITS") ||
		strings.Contains(lower, "insufficient credits") ||
		errors.Is(err, errs.ErrInsufficientCredits):
		return Classified{MessageKey: KeyNoCredits, Retryable: false}

	case isTransport(err) ||
		strings.Contains(lower, "network") ||
		strings.Contains(lower, "failed to fetch"):
		return Classified{MessageKey: KeyNetwork, Retryable: true}

	case errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		isTimeout(err) ||
		strings.Contains(lower, "timeout"):
		return Classified{MessageKey: KeyTimeout, Retryable: true}

	case serverStatusRe.MatchString(msg):
		return Classified{MessageKey: KeyServer, Retryable: true}

	default:
		return Classified{MessageKey: KeyUnknown, Retryable: true}
	}
}

// ClassifyMessage classifies a failure that arrived as a bare string
// rather than an error value.
func ClassifyMessage(msg string) Classified {
	if msg == "" {
		return Classified{MessageKey: KeyUnknown, Retryable: true}
	}
	return Classify(errors.New(msg))
}

// isTransport reports whether err is a transport-level failure that is not
// a timeout or cancellation. Timeouts fall through to the timeout rule.
func isTransport(err error) bool {
	if errors.Is(err, errs.ErrTransportUnavailable) {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return !netErr.Timeout()
	}
	return false
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
