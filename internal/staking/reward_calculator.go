package staking

import (
	"errors"
	"fmt"
	"rld/internal/models"
	"rld/internal/providers"
	"rld/internal/services"
	"rld/internal/structures"
	"time"
)

// flowerUnit is the balance step the reward scales with: one reward unit
// per full 500 flowers of 24h minimum balance.
const flowerUnit = 500

const rewardMethod = "soft-staking"

// RewardCalculator is the daily batch: it reduces a date's snapshots to
// a minimum balance per account, decides eligibility and credits the
// reward exactly once per (account, date).
type RewardCalculator struct {
	store   *models.Store
	ledger  services.LedgerServiceInterface
	clock   providers.ClockInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	config  *structures.Config
}

func NewRewardCalculator(store *models.Store, ledger services.LedgerServiceInterface, clock providers.ClockInterface, logger providers.Logger, metrics providers.MetricsProviderInterface, config *structures.Config) *RewardCalculator {
	return &RewardCalculator{
		store:   store,
		ledger:  ledger,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
		config:  config,
	}
}

// RunForDate processes every account with snapshots on the given
// calendar date (UTC). Safe to re-run: accounts with an existing reward
// record are skipped, and one account's failure never aborts the rest.
func (rc *RewardCalculator) RunForDate(date time.Time) error {
	start := rc.clock.Now()
	day := date.UTC().Format(models.DateLayout)
	from := date.UTC().Truncate(24 * time.Hour)
	to := from.Add(24 * time.Hour)

	accounts := rc.store.AccountsWithSnapshots(from, to)
	rc.logger.Infof(providers.TypeApp, "Reward batch %s: %d candidate accounts", day, len(accounts))

	failed := 0
	for _, account := range accounts {
		if err := rc.runAccount(account, day, from, to); err != nil {
			if errors.Is(err, models.ErrDuplicateReward) {
				continue
			}
			failed++
			rc.logger.Errorf(providers.TypeApp, "Reward batch %s: account %s failed: %s", day, account, err)
		}
	}

	rc.metrics.ObserveRewardBatchDuration(rc.clock.Now().Sub(start))
	if failed > 0 {
		return fmt.Errorf("reward batch %s: %d of %d accounts failed", day, failed, len(accounts))
	}
	return nil
}

func (rc *RewardCalculator) runAccount(account, day string, from, to time.Time) error {
	if rc.store.GetReward(account, day) != nil {
		return models.ErrDuplicateReward
	}

	snaps := rc.store.SnapshotsInRange(account, from, to)
	if len(snaps) == 0 {
		return nil
	}

	minBalance := snaps[0].Balance
	for _, snap := range snaps[1:] {
		if snap.Balance < minBalance {
			minBalance = snap.Balance
		}
	}
	span := snaps[len(snaps)-1].BucketStart.Sub(snaps[0].BucketStart) + SnapshotBucket

	eligible := minBalance >= rc.config.Staking.MinBalanceThreshold &&
		span >= time.Duration(rc.config.Staking.MinHoldingHours)*time.Hour
	if !eligible {
		return nil
	}

	// Cap applies to the final computed value, flat across tiers.
	flowers := (minBalance / flowerUnit) * rc.config.Staking.FlowersPer500Unit
	if flowers > rc.config.Staking.MaxDailyFlowersPerUser {
		flowers = rc.config.Staking.MaxDailyFlowersPerUser
	}

	record := &models.RewardRecord{
		Account:        account,
		Date:           day,
		MinBalance24h:  minBalance,
		FlowersAwarded: flowers,
		Method:         rewardMethod,
		CreatedAt:      rc.clock.Now(),
	}

	atx, err := rc.store.Begin(account)
	if err != nil {
		return err
	}
	if flowers > 0 {
		if _, err = rc.ledger.CreditTx(atx, flowers, "staking_reward", day, "daily soft staking reward"); err != nil {
			atx.Rollback()
			return err
		}
	}
	atx.PutReward(record)
	if err = atx.Commit(); err != nil {
		return err
	}

	if flowers > 0 {
		rc.metrics.IncRewardsAwarded()
		rc.metrics.AddRewardFlowers(flowers)
		rc.metrics.IncTransactions(string(models.TxEarn))
	}
	return nil
}
