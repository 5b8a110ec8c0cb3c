package reorder

import (
	"context"
	"errors"

	"fintrack/internal/apiclient"
	"fintrack/internal/domain"
	"fintrack/internal/faults"
	"fintrack/internal/optimistic"
	"fintrack/pkg/cache"
	errs "fintrack/pkg/errors"
	"fintrack/pkg/logger"
)

// walletOrderKey addresses the cached wallet list the reorder speculates on.
const walletOrderKey = "wallets:order"

type Service struct {
	api    *apiclient.Client
	store  *cacheStore
	coord  *optimistic.Coordinator[[]domain.Wallet]
	logger logger.Logger
}

func NewService(api *apiclient.Client, store cache.Store, log logger.Logger) *Service {
	cs := &cacheStore{store: store, key: walletOrderKey}
	return &Service{
		api:    api,
		store:  cs,
		coord:  optimistic.NewCoordinator[[]domain.Wallet](cs, log),
		logger: log,
	}
}

// PrimeCache seeds the cached wallet order, typically right after a fetch.
func (s *Service) PrimeCache(ctx context.Context, wallets []domain.Wallet) error {
	return s.store.Save(ctx, wallets)
}

// State exposes the resolution of the most recent reorder.
func (s *Service) State() optimistic.State {
	return s.coord.State()
}

type reorderBody struct {
	Items domain.ReorderPayload `json:"items"`
}

// ReorderWallets submits ordered as the new canonical wallet order. The
// cached list reflects the order immediately; a server rejection restores
// the exact prior order and surfaces the failure once.
func (s *Service) ReorderWallets(ctx context.Context, ordered []domain.Wallet) error {
	payload := BuildPayload(ordered)
	if len(payload) == 0 {
		return errs.ErrEmptyReorder
	}

	err := s.coord.Mutate(ctx, ordered, func(ctx context.Context) error {
		_, sendErr := s.api.Patch(ctx, "/wallets/reorder", reorderBody{Items: payload})
		return sendErr
	})
	if err != nil {
		classified := faults.Classify(err)
		s.logger.Warn("Reorder rolled back", map[string]interface{}{
			"message_key": classified.MessageKey,
			"retryable":   classified.Retryable,
			"error":       err.Error(),
		})
		return err
	}
	return nil
}

// cacheStore adapts the key-addressed cache to the coordinator's contract.
type cacheStore struct {
	store cache.Store
	key   string
}

func (s *cacheStore) Load(ctx context.Context) ([]domain.Wallet, error) {
	var wallets []domain.Wallet
	err := s.store.Get(ctx, s.key, &wallets)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return wallets, nil
}

func (s *cacheStore) Save(ctx context.Context, wallets []domain.Wallet) error {
	return s.store.Set(ctx, s.key, wallets, 0)
}

func (s *cacheStore) Invalidate(ctx context.Context) error {
	return s.store.Delete(ctx, s.key)
}
