// Package normalize converts API payloads of variable shape into a canonical
// ordered slice of typed records.
//
// Two endpoint families legitimately return either a bare list or a
// paginated {"data": [...]} envelope depending on query parameters; callers
// must not special-case this.
package normalize

import (
	"bytes"
	"encoding/json"

	"fintrack/pkg/logger"
)

var nullLiteral = []byte("null")

// Slice interprets raw as an ordered sequence of T.
//
// A missing/null payload yields an empty slice. A bare JSON array is decoded
// directly. An object with a "data" array yields that inner array. Any other
// shape degrades to an empty slice and emits a warning so backend shape
// drift is observable without crashing callers. Slice never returns an
// error.
func Slice[T any](log logger.Logger, raw json.RawMessage) []T {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, nullLiteral) {
		return []T{}
	}

	switch raw[0] {
	case '[':
		var out []T
		if err := json.Unmarshal(raw, &out); err != nil {
			warnShape(log, raw, err)
			return []T{}
		}
		if out == nil {
			return []T{}
		}
		return out
	case '{':
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			warnShape(log, raw, err)
			return []T{}
		}
		inner := bytes.TrimSpace(envelope.Data)
		if len(inner) == 0 || inner[0] != '[' {
			warnShape(log, raw, nil)
			return []T{}
		}
		var out []T
		if err := json.Unmarshal(inner, &out); err != nil {
			warnShape(log, raw, err)
			return []T{}
		}
		if out == nil {
			return []T{}
		}
		return out
	default:
		warnShape(log, raw, nil)
		return []T{}
	}
}

func warnShape(log logger.Logger, raw json.RawMessage, err error) {
	if log == nil {
		return
	}
	fields := map[string]interface{}{
		"payload_prefix": prefix(raw, 64),
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	log.Warn("Unexpected response shape, treating as empty", fields)
}

func prefix(raw []byte, n int) string {
	if len(raw) > n {
		return string(raw[:n])
	}
	return string(raw)
}
