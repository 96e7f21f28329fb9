package staking

import (
	"rld/internal/models"
	"rld/internal/providers"
	"rld/internal/structures"
	"time"
)

// SnapshotBucket is the fixed sampling bucket: one snapshot per account
// per hour at most.
const SnapshotBucket = time.Hour

// SnapshotRecorder writes one balance sample per account per bucket.
// Re-running a tick for the same bucket overwrites the sample, so a
// crashed or re-triggered tick is safe to repeat.
type SnapshotRecorder struct {
	store  *models.Store
	clock  providers.ClockInterface
	logger providers.Logger
	config *structures.Config
}

func NewSnapshotRecorder(store *models.Store, clock providers.ClockInterface, logger providers.Logger, config *structures.Config) *SnapshotRecorder {
	return &SnapshotRecorder{store: store, clock: clock, logger: logger, config: config}
}

// RecordTick samples every account with a nonzero holding plus every
// account sampled in the previous bucket; the latter gets a zero sample
// when drained, which is what closes its staking session.
func (r *SnapshotRecorder) RecordTick() int {
	bucket := r.clock.Now().UTC().Truncate(SnapshotBucket)
	prev := bucket.Add(-SnapshotBucket)

	seen := make(map[string]struct{})
	for _, account := range r.store.ActiveAccounts() {
		seen[account] = struct{}{}
	}
	for _, account := range r.store.AccountsWithSnapshotAt(prev) {
		// A zero sample already closed this account's session; once that
		// happened it stays out of the tick until it holds again.
		if snap := r.store.SnapshotAt(account, prev); snap != nil && snap.Balance > 0 {
			seen[account] = struct{}{}
		}
	}

	for account := range seen {
		r.RecordAccount(account)
	}
	return len(seen)
}

// RecordAccount samples one account into the current bucket.
func (r *SnapshotRecorder) RecordAccount(account string) *models.Snapshot {
	bucket := r.clock.Now().UTC().Truncate(SnapshotBucket)
	snap := &models.Snapshot{
		Account:     account,
		Balance:     r.store.GetBalance(account).Total(),
		BucketStart: bucket,
	}
	r.store.UpsertSnapshot(snap)
	return snap
}

// Prune drops snapshots older than the retention window. Retention stays
// above 24h so the reward batch always has its trailing window.
func (r *SnapshotRecorder) Prune() int {
	retention := time.Duration(r.config.Ledger.RetentionHours) * time.Hour
	cutoff := r.clock.Now().UTC().Add(-retention)
	return r.store.PruneSnapshots(cutoff)
}
