package models

import "time"

// DateLayout is the calendar-date key used by reward records and daily stats.
const DateLayout = "2006-01-02"

// StakingSession is a contiguous run of nonzero snapshots. Sessions are
// derived from the snapshot table on demand, never stored.
type StakingSession struct {
	Account    string     `json:"account"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	MinBalance int64      `json:"min_balance"`
	MaxBalance int64      `json:"max_balance"`
	AvgBalance int64      `json:"avg_balance"`
}

// RewardRecord marks that the daily staking reward for (account, date)
// has been decided. Written exactly once, never mutated; its presence is
// the idempotence guard for the reward batch.
type RewardRecord struct {
	Account        string    `json:"account"`
	Date           string    `json:"date"`
	MinBalance24h  int64     `json:"min_balance_24h"`
	FlowersAwarded int64     `json:"flowers_awarded"`
	Method         string    `json:"method"`
	CreatedAt      time.Time `json:"created_at"`
}
