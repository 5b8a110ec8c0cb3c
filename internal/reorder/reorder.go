// Package reorder applies speculative wallet-list reordering: the new order
// shows locally at once, then commits or rolls back on the server's answer.
package reorder

import (
	"github.com/google/uuid"

	"fintrack/internal/domain"
)

// Reorderable is anything with a stable identity that can be ranked.
type Reorderable interface {
	ReorderID() uuid.UUID
}

// BuildPayload assigns dense 1-based positions in the items' current order.
// Only identity and order matter; any prior position values are ignored.
func BuildPayload[T Reorderable](items []T) domain.ReorderPayload {
	payload := make(domain.ReorderPayload, 0, len(items))
	for i, item := range items {
		payload = append(payload, domain.ReorderItem{
			ID:       item.ReorderID(),
			Position: i + 1,
		})
	}
	return payload
}
