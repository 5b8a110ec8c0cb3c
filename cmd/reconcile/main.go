package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"fintrack/internal/apiclient"
	"fintrack/internal/derive"
	"fintrack/internal/domain"
	"fintrack/internal/normalize"
	"fintrack/internal/rates"
	"fintrack/internal/reconcile"
	"fintrack/pkg/cache"
	"fintrack/pkg/config"
	"fintrack/pkg/logger"
	"fintrack/pkg/validator"
)

// balanceFlags collects repeated -set wallet-id=actual-balance entries.
type balanceFlags map[uuid.UUID]decimal.Decimal

func (f balanceFlags) String() string {
	return fmt.Sprintf("%d entries", len(f))
}

func (f balanceFlags) Set(value string) error {
	parts := strings.SplitN(value, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("expected wallet-id=amount, got %q", value)
	}
	id, err := uuid.Parse(strings.TrimSpace(parts[0]))
	if err != nil {
		return fmt.Errorf("invalid wallet id %q: %w", parts[0], err)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", parts[1], err)
	}
	f[id] = amount
	return nil
}

func main() {
	// .env is optional; environment variables still apply without it.
	_ = godotenv.Load()

	entries := balanceFlags{}
	flag.Var(entries, "set", "wallet-id=actual-balance (repeatable)")
	dryRun := flag.Bool("dry-run", false, "print previews without submitting corrections")
	flag.Parse()

	cfg := config.Load()
	log := logger.New("reconcile")

	var store cache.Store
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to redis", map[string]interface{}{
				"error": err.Error(),
			})
		}
		defer redisCache.Close()
		store = redisCache
	} else {
		store = cache.NewMemoryCache()
	}

	api := apiclient.New(cfg.API, log)
	v := validator.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	raw, err := api.Get(ctx, "/wallets")
	if err != nil {
		log.Fatal("Failed to fetch wallets", map[string]interface{}{
			"error": err.Error(),
		})
	}
	wallets := normalize.Slice[domain.Wallet](log, raw)
	if len(wallets) == 0 {
		fmt.Println("No wallets found.")
		return
	}

	if id, ok := derive.PickDefault(wallets); ok {
		log.Debug("Default wallet selected", map[string]interface{}{
			"wallet_id": id,
		})
	}

	rateSource := rates.NewSource(api, store, log, cfg.Reconcile.RateTTL)
	rateTable, err := rateSource.Rates(ctx)
	if err != nil {
		log.Warn("Rates unavailable, reference balances omitted", map[string]interface{}{
			"error": err.Error(),
		})
		rateTable = map[domain.Currency]decimal.Decimal{}
	}

	previews := reconcile.Plan(wallets, entries)
	printPreviews(wallets, previews, rateTable)

	if *dryRun {
		return
	}

	service := reconcile.NewService(reconcile.NewAPISubmitter(api), v, log, nil)
	outcome, runErr := service.Run(ctx, previews)
	if runErr != nil {
		log.Warn("Batch stopped early", map[string]interface{}{
			"error": runErr.Error(),
		})
	}

	printOutcome(outcome)

	// A single success means server-side balances moved; cached views must
	// refetch. Zero successes means nothing was applied, not an error.
	if outcome.Succeeded > 0 {
		for _, key := range []string{"wallets:order", "transactions:recent"} {
			if err := store.Delete(ctx, key); err != nil {
				log.Warn("Failed to invalidate cache", map[string]interface{}{
					"key":   key,
					"error": err.Error(),
				})
			}
		}
	}
}

func printPreviews(wallets []domain.Wallet, previews []domain.CalibrationPreview, rateTable map[domain.Currency]decimal.Decimal) {
	byID := make(map[uuid.UUID]domain.Wallet, len(wallets))
	for _, w := range wallets {
		byID[w.ID] = w
	}

	fmt.Println("Calibration previews:")
	for _, p := range previews {
		w := byID[p.WalletID]
		line := fmt.Sprintf("  %-20s %10s %s", w.Name, p.Reported.StringFixed(2), w.Currency)
		if converted, ok := derive.Convert(p.Reported.String(), w.Currency, rateTable); ok {
			line += fmt.Sprintf(" (%s %s)", converted, domain.ReferenceCurrency)
		}
		if p.Changed {
			line += fmt.Sprintf("  -> %s (%s%%, %s)", p.Actual.StringFixed(2), p.PercentChange.StringFixed(2), p.Severity)
			if p.WillCorrect {
				line += " [correction]"
			}
		}
		fmt.Println(line)
	}
}

func printOutcome(outcome *domain.ReconciliationOutcome) {
	if outcome.Attempted == 0 {
		fmt.Println("No changes to apply.")
		return
	}
	if outcome.Succeeded == 0 && len(outcome.Failures) == 0 {
		fmt.Println("No changes applied.")
		return
	}
	fmt.Printf("Calibrated %d of %d wallets (%d corrections created).\n",
		outcome.Succeeded, outcome.Attempted, outcome.CorrectionsCreated)
	for _, f := range outcome.Failures {
		fmt.Printf("  failed %s: %s\n", f.WalletID, f.Message)
	}
}
