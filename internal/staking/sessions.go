package staking

import (
	"rld/internal/models"
)

// BuildSessions derives staking sessions from an ordered snapshot run:
// a session opens on a nonzero snapshot and closes when a bucket is
// missing or sampled at zero. The last session stays open (nil EndTime)
// when the final snapshot is nonzero.
func BuildSessions(snaps []*models.Snapshot) []*models.StakingSession {
	var sessions []*models.StakingSession
	var cur *models.StakingSession
	var sum int64
	var count int64

	closeCur := func(at *models.Snapshot) {
		if cur == nil {
			return
		}
		end := at.BucketStart
		cur.EndTime = &end
		cur.AvgBalance = sum / count
		sessions = append(sessions, cur)
		cur = nil
	}

	var prev *models.Snapshot
	for _, snap := range snaps {
		gap := prev != nil && snap.BucketStart.Sub(prev.BucketStart) > SnapshotBucket
		if cur != nil && (gap || snap.Balance == 0) {
			closeCur(snap)
		}
		prev = snap
		if snap.Balance == 0 {
			continue
		}
		if cur == nil {
			cur = &models.StakingSession{
				Account:    snap.Account,
				StartTime:  snap.BucketStart,
				MinBalance: snap.Balance,
				MaxBalance: snap.Balance,
			}
			sum, count = 0, 0
		}
		if snap.Balance < cur.MinBalance {
			cur.MinBalance = snap.Balance
		}
		if snap.Balance > cur.MaxBalance {
			cur.MaxBalance = snap.Balance
		}
		sum += snap.Balance
		count++
	}

	if cur != nil {
		cur.AvgBalance = sum / count
		sessions = append(sessions, cur)
	}
	return sessions
}
