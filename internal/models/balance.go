package models

import "time"

// Balance is the derived current view of one account's ledger.
// Available and Locked never go below zero; TotalEarned and TotalSpent
// only grow and stay consistent with the transaction log.
type Balance struct {
	Account     string    `json:"account"`
	Available   int64     `json:"available"`
	Locked      int64     `json:"locked"`
	TotalEarned int64     `json:"total_earned"`
	TotalSpent  int64     `json:"total_spent"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Total is the full holding used for staking snapshots.
func (b *Balance) Total() int64 {
	return b.Available + b.Locked
}

func (b *Balance) Clone() *Balance {
	cp := *b
	return &cp
}
