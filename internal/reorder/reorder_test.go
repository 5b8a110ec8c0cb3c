package reorder

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/domain"
)

func TestBuildPayloadEmpty(t *testing.T) {
	payload := BuildPayload([]domain.Wallet{})
	assert.Empty(t, payload)
	assert.NotNil(t, payload)
}

func TestBuildPayloadSingle(t *testing.T) {
	w := domain.Wallet{ID: uuid.New()}
	payload := BuildPayload([]domain.Wallet{w})

	require.Len(t, payload, 1)
	assert.Equal(t, domain.ReorderItem{ID: w.ID, Position: 1}, payload[0])
}

func TestBuildPayloadDensePositions(t *testing.T) {
	x := domain.Wallet{ID: uuid.New()}
	y := domain.Wallet{ID: uuid.New()}
	z := domain.Wallet{ID: uuid.New()}

	payload := BuildPayload([]domain.Wallet{x, y, z})

	require.Len(t, payload, 3)
	assert.Equal(t, domain.ReorderItem{ID: x.ID, Position: 1}, payload[0])
	assert.Equal(t, domain.ReorderItem{ID: y.ID, Position: 2}, payload[1])
	assert.Equal(t, domain.ReorderItem{ID: z.ID, Position: 3}, payload[2])

	// Positions are a permutation of 1..N with no gaps or repeats.
	seen := make(map[int]bool, len(payload))
	for _, item := range payload {
		assert.False(t, seen[item.Position])
		seen[item.Position] = true
		assert.GreaterOrEqual(t, item.Position, 1)
		assert.LessOrEqual(t, item.Position, len(payload))
	}
}

func TestBuildPayloadIgnoresEverythingButIdentityAndOrder(t *testing.T) {
	// Balances, names, and any prior ordering hints must not influence the
	// assigned ranks.
	rich := domain.Wallet{ID: uuid.New(), Name: "zz", Balance: decimal.NewFromInt(9999), IsPrimary: true}
	poor := domain.Wallet{ID: uuid.New(), Name: "aa", Balance: decimal.NewFromInt(1)}

	payload := BuildPayload([]domain.Wallet{poor, rich})

	require.Len(t, payload, 2)
	assert.Equal(t, poor.ID, payload[0].ID)
	assert.Equal(t, 1, payload[0].Position)
	assert.Equal(t, rich.ID, payload[1].ID)
	assert.Equal(t, 2, payload[1].Position)
}
