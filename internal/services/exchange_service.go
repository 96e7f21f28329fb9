package services

import (
	"context"
	"errors"
	"fmt"
	"rld/internal/models"
	"rld/internal/providers"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

type ExchangeResult struct {
	TransactionID   string          `json:"transaction_id,omitempty"`
	OutputAmount    decimal.Decimal `json:"output_amount"`
	EffectiveRate   decimal.Decimal `json:"effective_rate"`
	FeeAmount       int64           `json:"fee_amount"`
	NetFlowers      int64           `json:"net_flowers"`
	BonusMultiplier decimal.Decimal `json:"bonus_multiplier"`
}

type ExchangeServiceInterface interface {
	Estimate(account string, amount int64) (*ExchangeResult, error)
	Exchange(ctx context.Context, account string, amount int64, description string) (*ExchangeResult, error)
}

// ExchangeService orchestrates one exchange: validation in order, rate
// and fee computation, the ledger debit plus daily-stat increment in a
// single unit of work, then the settlement trigger.
type ExchangeService struct {
	store      *models.Store
	ledger     LedgerServiceInterface
	tiers      TierServiceInterface
	stats      StatsServiceInterface
	settlement SettlementNotifierInterface
	clock      providers.ClockInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	backoff    providers.BackoffConfig
}

func NewExchangeService(store *models.Store, ledger LedgerServiceInterface, tiers TierServiceInterface, stats StatsServiceInterface, settlement SettlementNotifierInterface, clock providers.ClockInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) ExchangeServiceInterface {
	return &ExchangeService{
		store:      store,
		ledger:     ledger,
		tiers:      tiers,
		stats:      stats,
		settlement: settlement,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
		backoff:    providers.DefaultBackoffConfig(),
	}
}

// quote validates in the mandated order and computes the rate, fee and
// output for one amount. Mutates nothing.
func quote(cfg *models.ExchangeConfig, bal *models.Balance, stat *models.DailyStat, amount int64) (*ExchangeResult, error) {
	if amount <= 0 {
		return nil, &models.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if amount > bal.Available {
		return nil, &models.InsufficientBalanceError{Requested: amount, Available: bal.Available}
	}
	if amount < cfg.MinExchangeAmount {
		return nil, &models.BelowMinimumError{Requested: amount, Minimum: cfg.MinExchangeAmount}
	}
	if stat.AmountExchanged+amount > cfg.MaxDailyExchange {
		return nil, &models.DailyLimitError{
			Requested:   amount,
			AlreadyUsed: stat.AmountExchanged,
			Limit:       cfg.MaxDailyExchange,
		}
	}

	effectiveRate := cfg.BaseRate.Div(cfg.BonusMultiplier)
	fee := decimal.NewFromInt(amount).Mul(cfg.FeePercentage).Div(oneHundred).Floor().IntPart()
	net := amount - fee
	output := decimal.NewFromInt(net).Div(effectiveRate)

	return &ExchangeResult{
		OutputAmount:    output,
		EffectiveRate:   effectiveRate,
		FeeAmount:       fee,
		NetFlowers:      net,
		BonusMultiplier: cfg.BonusMultiplier,
	}, nil
}

// Estimate prices an exchange without committing anything.
func (es *ExchangeService) Estimate(account string, amount int64) (*ExchangeResult, error) {
	cfg, err := es.tiers.GetExchangeConfig(account)
	if err != nil {
		return nil, err
	}
	date := es.clock.Now().UTC().Format(models.DateLayout)
	return quote(cfg, es.store.GetBalance(account), es.store.GetDailyStat(account, date), amount)
}

func retryableExchangeErr(err error) bool {
	var pErr *models.PersistenceError
	return errors.Is(err, models.ErrConcurrencyConflict) || errors.As(err, &pErr)
}

func (es *ExchangeService) Exchange(ctx context.Context, account string, amount int64, description string) (*ExchangeResult, error) {
	date := es.clock.Now().UTC().Format(models.DateLayout)
	var result *ExchangeResult

	op := func() error {
		atx, err := es.store.Begin(account)
		if err != nil {
			return err
		}
		cfg, err := es.tiers.GetExchangeConfig(account)
		if err != nil {
			atx.Rollback()
			return err
		}
		stat := es.store.GetDailyStat(account, date)

		res, err := quote(cfg, atx.Balance(), stat, amount)
		if err != nil {
			atx.Rollback()
			return err
		}

		// A caller-supplied deadline must leave the balance untouched;
		// past this point the commit is all-or-nothing.
		if err = ctx.Err(); err != nil {
			atx.Rollback()
			return fmt.Errorf("exchange aborted: %w", err)
		}

		t, err := es.ledger.DebitTx(atx, amount, "exchange", date, description)
		if err != nil {
			atx.Rollback()
			return err
		}
		es.stats.RecordExchange(atx, date, amount, res.FeeAmount, res.OutputAmount)

		if err = atx.Commit(); err != nil {
			return err
		}
		res.TransactionID = t.ID
		result = res
		return nil
	}

	err := providers.WithBackoff(ctx, es.backoff, es.logger, "exchange", retryableExchangeErr, op)
	if err != nil {
		if models.IsBusinessError(err) {
			es.metrics.IncExchanges("rejected")
		} else {
			es.metrics.IncExchanges("failed")
		}
		return nil, err
	}

	es.metrics.IncExchanges("completed")
	es.metrics.IncTransactions(string(models.TxSpend))
	es.metrics.AddExchangedFlowers(amount)

	if err := es.settlement.NotifyExchange(ctx, account, result.TransactionID, result.OutputAmount); err != nil {
		// The debit is committed; settlement is retried out of band.
		es.logger.Errorf(providers.TypeApp, "Settlement notify failed for tx %s: %s", result.TransactionID, err)
	}
	return result, nil
}
