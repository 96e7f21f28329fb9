package staking

import (
	"testing"
	"time"

	"rld/internal/models"
	"rld/internal/providers"
	"rld/internal/services"
	"rld/internal/structures"
	"rld/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stakingFixture struct {
	store    *models.Store
	clock    *testutil.MockClock
	logger   *testutil.MockLogger
	conf     *structures.Config
	ledger   services.LedgerServiceInterface
	recorder *SnapshotRecorder
	rewards  *RewardCalculator
}

func newStakingFixture() *stakingFixture {
	conf := &structures.Config{
		Ledger: structures.LedgerConfig{
			SnapshotInterval: time.Hour,
			RetentionHours:   48,
		},
		Staking: structures.StakingConfig{
			MinBalanceThreshold:    100,
			MinHoldingHours:        1,
			FlowersPer500Unit:      10,
			MaxDailyFlowersPerUser: 200,
		},
	}

	f := &stakingFixture{
		store:  models.NewStore(200 * time.Millisecond),
		clock:  testutil.NewMockClock(time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)),
		logger: &testutil.MockLogger{},
		conf:   conf,
	}
	metrics := providers.NewMetricsProvider(conf, f.store)
	f.ledger = services.NewLedgerService(f.store, f.clock, f.logger, metrics)
	f.recorder = NewSnapshotRecorder(f.store, f.clock, f.logger, conf)
	f.rewards = NewRewardCalculator(f.store, f.ledger, f.clock, f.logger, metrics, conf)
	return f
}

func (f *stakingFixture) credit(t *testing.T, account string, amount int64) {
	t.Helper()
	_, err := f.ledger.Credit(account, amount, "reward", "r-1", "")
	require.NoError(t, err)
}

func TestRecordAccountTruncatesToBucket(t *testing.T) {
	f := newStakingFixture()
	f.credit(t, "alice", 700)

	snap := f.recorder.RecordAccount("alice")
	assert.Equal(t, int64(700), snap.Balance)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), snap.BucketStart)
}

func TestRecordAccountCountsLockedBalance(t *testing.T) {
	f := newStakingFixture()
	f.credit(t, "alice", 700)
	_, err := f.ledger.Lock("alice", 300, "hold", "h-1", "")
	require.NoError(t, err)

	snap := f.recorder.RecordAccount("alice")
	assert.Equal(t, int64(700), snap.Balance)
}

func TestRecordTickIsIdempotentWithinBucket(t *testing.T) {
	f := newStakingFixture()
	f.credit(t, "alice", 700)

	f.recorder.RecordTick()
	f.clock.Advance(10 * time.Minute)
	f.recorder.RecordTick()

	assert.Equal(t, 1, f.store.CountSnapshots())
}

func TestRecordTickSamplesAllHolders(t *testing.T) {
	f := newStakingFixture()
	f.credit(t, "alice", 700)
	f.credit(t, "bob", 200)

	n := f.recorder.RecordTick()
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, f.store.CountSnapshots())
}

func TestRecordTickClosesDrainedAccountWithZeroSample(t *testing.T) {
	f := newStakingFixture()
	f.credit(t, "alice", 700)
	f.recorder.RecordTick()

	_, err := f.ledger.Debit("alice", 700, "exchange", "2025-03-01", "")
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	n := f.recorder.RecordTick()
	require.Equal(t, 1, n)

	bucket := time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)
	snap := f.store.SnapshotAt("alice", bucket)
	require.NotNil(t, snap)
	assert.Equal(t, int64(0), snap.Balance)

	// a fully drained account leaves the sample set on the next tick
	f.clock.Advance(time.Hour)
	assert.Equal(t, 0, f.recorder.RecordTick())
}

func TestPruneDropsOldSnapshots(t *testing.T) {
	f := newStakingFixture()
	f.credit(t, "alice", 700)

	f.recorder.RecordTick()
	f.clock.Advance(time.Duration(f.conf.Ledger.RetentionHours+1) * time.Hour)
	f.recorder.RecordTick()

	removed := f.recorder.Prune()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, f.store.CountSnapshots())
}
