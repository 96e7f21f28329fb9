package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore() *Store {
	return NewStore(100 * time.Millisecond)
}

func stageEarn(tx *AccountTx, amount int64) {
	bal := tx.Balance()
	before := bal.Available
	bal.Available += amount
	bal.TotalEarned += amount
	bal.UpdatedAt = time.Now().UTC()
	tx.Append(&Transaction{
		ID:            "t-earn",
		Account:       tx.Account(),
		Type:          TxEarn,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  bal.Available,
		Status:        TxCompleted,
		CreatedAt:     time.Now().UTC(),
	})
}

func TestBeginRejectsEmptyAccount(t *testing.T) {
	s := testStore()
	_, err := s.Begin("")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "account", verr.Field)
}

func TestCommitAppliesStagedWrites(t *testing.T) {
	s := testStore()

	tx, err := s.Begin("alice")
	require.NoError(t, err)
	stageEarn(tx, 250)
	require.NoError(t, tx.Commit())

	bal := s.GetBalance("alice")
	assert.Equal(t, int64(250), bal.Available)
	assert.Equal(t, int64(250), bal.TotalEarned)

	txs := s.ListTransactions("alice", "", 10)
	require.Len(t, txs, 1)
	assert.Equal(t, uint64(1), txs[0].Sequence)
	assert.Equal(t, uint64(1), s.Commits())
}

func TestRollbackDiscardsStagedWrites(t *testing.T) {
	s := testStore()

	tx, err := s.Begin("alice")
	require.NoError(t, err)
	stageEarn(tx, 250)
	tx.Rollback()

	assert.Equal(t, int64(0), s.GetBalance("alice").Available)
	assert.Empty(t, s.ListTransactions("alice", "", 10))
	assert.Equal(t, uint64(0), s.Commits())
}

func TestCommitTwiceFails(t *testing.T) {
	s := testStore()

	tx, err := s.Begin("alice")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	var perr *PersistenceError
	require.ErrorAs(t, tx.Commit(), &perr)
	assert.Equal(t, "commit", perr.Op)
}

func TestSequencesAreContiguousPerAccount(t *testing.T) {
	s := testStore()

	for i := 0; i < 3; i++ {
		tx, err := s.Begin("alice")
		require.NoError(t, err)
		stageEarn(tx, 10)
		require.NoError(t, tx.Commit())
	}
	tx, err := s.Begin("bob")
	require.NoError(t, err)
	stageEarn(tx, 10)
	require.NoError(t, tx.Commit())

	alice := s.ListTransactions("alice", "", 10)
	require.Len(t, alice, 3)
	// newest first
	assert.Equal(t, uint64(3), alice[0].Sequence)
	assert.Equal(t, uint64(1), alice[2].Sequence)

	bob := s.ListTransactions("bob", "", 10)
	require.Len(t, bob, 1)
	assert.Equal(t, uint64(1), bob[0].Sequence)
}

func TestBeginConflictTimesOut(t *testing.T) {
	s := NewStore(30 * time.Millisecond)

	held, err := s.Begin("alice")
	require.NoError(t, err)

	_, err = s.Begin("alice")
	assert.ErrorIs(t, err, ErrConcurrencyConflict)

	// other accounts are unaffected
	other, err := s.Begin("bob")
	require.NoError(t, err)
	other.Rollback()

	held.Rollback()
	again, err := s.Begin("alice")
	require.NoError(t, err)
	again.Rollback()
}

func TestDuplicateRewardAppliesNothing(t *testing.T) {
	s := testStore()

	first, err := s.Begin("alice")
	require.NoError(t, err)
	first.PutReward(&RewardRecord{Account: "alice", Date: "2025-03-01", FlowersAwarded: 10})
	require.NoError(t, first.Commit())

	second, err := s.Begin("alice")
	require.NoError(t, err)
	stageEarn(second, 10)
	second.PutReward(&RewardRecord{Account: "alice", Date: "2025-03-01", FlowersAwarded: 10})
	assert.ErrorIs(t, second.Commit(), ErrDuplicateReward)

	// the credit staged next to the duplicate must not land either
	assert.Equal(t, int64(0), s.GetBalance("alice").Available)
	assert.Empty(t, s.ListTransactions("alice", "", 10))
	require.Len(t, s.RewardsFor("alice"), 1)

	// the failed commit released the account lock
	tx, err := s.Begin("alice")
	require.NoError(t, err)
	tx.Rollback()
}

func TestStatDeltaMergesIntoDailyStat(t *testing.T) {
	s := testStore()

	for i := 0; i < 2; i++ {
		tx, err := s.Begin("alice")
		require.NoError(t, err)
		tx.AddStat("2025-03-01", 100, 1, decimal.NewFromInt(2))
		require.NoError(t, tx.Commit())
	}

	st := s.GetDailyStat("alice", "2025-03-01")
	assert.Equal(t, int64(200), st.AmountExchanged)
	assert.Equal(t, int64(2), st.FeesPaid)
	assert.Equal(t, 2, st.Count)
	assert.True(t, st.OutputTotal.Equal(decimal.NewFromInt(4)))

	// other dates stay zero-valued
	assert.Equal(t, 0, s.GetDailyStat("alice", "2025-03-02").Count)
}

func TestListTransactionsFilterAndLimit(t *testing.T) {
	s := testStore()

	tx, err := s.Begin("alice")
	require.NoError(t, err)
	tx.Append(&Transaction{ID: "a", Type: TxEarn, Amount: 1})
	tx.Append(&Transaction{ID: "b", Type: TxSpend, Amount: 1})
	tx.Append(&Transaction{ID: "c", Type: TxEarn, Amount: 1})
	require.NoError(t, tx.Commit())

	earns := s.ListTransactions("alice", TxEarn, 10)
	require.Len(t, earns, 2)
	assert.Equal(t, "c", earns[0].ID)
	assert.Equal(t, "a", earns[1].ID)

	limited := s.ListTransactions("alice", "", 2)
	require.Len(t, limited, 2)
	assert.Equal(t, "c", limited[0].ID)
}

func TestGetBalanceReturnsIndependentCopy(t *testing.T) {
	s := testStore()

	tx, err := s.Begin("alice")
	require.NoError(t, err)
	stageEarn(tx, 100)
	require.NoError(t, tx.Commit())

	read := s.GetBalance("alice")
	read.Available = 9999
	assert.Equal(t, int64(100), s.GetBalance("alice").Available)
}

func TestUpsertSnapshotOverwritesBucket(t *testing.T) {
	s := testStore()
	bucket := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	s.UpsertSnapshot(&Snapshot{Account: "alice", Balance: 100, BucketStart: bucket})
	s.UpsertSnapshot(&Snapshot{Account: "alice", Balance: 200, BucketStart: bucket})

	assert.Equal(t, 1, s.CountSnapshots())
	require.NotNil(t, s.SnapshotAt("alice", bucket))
	assert.Equal(t, int64(200), s.SnapshotAt("alice", bucket).Balance)
}

func TestSnapshotsInRangeSortedHalfOpen(t *testing.T) {
	s := testStore()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, h := range []int{2, 0, 1, 3} {
		s.UpsertSnapshot(&Snapshot{Account: "alice", Balance: int64(h), BucketStart: base.Add(time.Duration(h) * time.Hour)})
	}

	got := s.SnapshotsInRange("alice", base, base.Add(3*time.Hour))
	require.Len(t, got, 3)
	assert.Equal(t, int64(0), got[0].Balance)
	assert.Equal(t, int64(2), got[2].Balance)
}

func TestPruneSnapshots(t *testing.T) {
	s := testStore()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for h := 0; h < 5; h++ {
		s.UpsertSnapshot(&Snapshot{Account: "alice", BucketStart: base.Add(time.Duration(h) * time.Hour)})
	}

	removed := s.PruneSnapshots(base.Add(3 * time.Hour))
	assert.Equal(t, 3, removed)
	assert.Equal(t, 2, s.CountSnapshots())
	assert.Nil(t, s.SnapshotAt("alice", base))
	assert.NotNil(t, s.SnapshotAt("alice", base.Add(4*time.Hour)))
}

func TestActiveAccounts(t *testing.T) {
	s := testStore()

	tx, err := s.Begin("alice")
	require.NoError(t, err)
	stageEarn(tx, 100)
	require.NoError(t, tx.Commit())

	tx, err = s.Begin("bob")
	require.NoError(t, err)
	bal := tx.Balance()
	bal.Available = 0
	bal.Locked = 50
	require.NoError(t, tx.Commit())

	tx, err = s.Begin("carol")
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	active := s.ActiveAccounts()
	assert.ElementsMatch(t, []string{"alice", "bob"}, active)
}

func TestExportImportRoundTrip(t *testing.T) {
	s := testStore()

	tx, err := s.Begin("alice")
	require.NoError(t, err)
	stageEarn(tx, 500)
	tx.AddStat("2025-03-01", 100, 1, decimal.RequireFromString("1.5"))
	tx.PutReward(&RewardRecord{Account: "alice", Date: "2025-03-01", FlowersAwarded: 10})
	require.NoError(t, tx.Commit())

	bucket := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s.UpsertSnapshot(&Snapshot{Account: "alice", Balance: 500, BucketStart: bucket})
	s.PutTier(&Tier{Account: "alice", Level: TierVip, Points: 6000, Verifications: 3})
	s.AppendAudit(&TierAudit{ID: "a1", Account: "alice", FromLevel: TierBasic, ToLevel: TierVip})

	restored := testStore()
	restored.Import(s.Export())

	assert.Equal(t, int64(500), restored.GetBalance("alice").Available)
	require.Len(t, restored.ListTransactions("alice", "", 10), 1)
	require.NotNil(t, restored.SnapshotAt("alice", bucket))
	require.NotNil(t, restored.GetReward("alice", "2025-03-01"))
	assert.Equal(t, TierVip, restored.GetTier("alice").Level)
	require.Len(t, restored.AuditsFor("alice"), 1)
	assert.True(t, restored.GetDailyStat("alice", "2025-03-01").OutputTotal.Equal(decimal.RequireFromString("1.5")))

	// sequence counter must continue, not restart
	next, err := restored.Begin("alice")
	require.NoError(t, err)
	stageEarn(next, 1)
	require.NoError(t, next.Commit())
	assert.Equal(t, uint64(2), restored.ListTransactions("alice", "", 1)[0].Sequence)
}
