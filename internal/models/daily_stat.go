package models

import "github.com/shopspring/decimal"

// DailyStat aggregates one account's completed exchanges for one date.
// It is incremented only inside the same unit of work as the triggering
// exchange debit, so it always equals the sum of that day's exchanges.
type DailyStat struct {
	Account         string          `json:"account"`
	Date            string          `json:"date"`
	AmountExchanged int64           `json:"amount_exchanged"`
	Count           int             `json:"count"`
	FeesPaid        int64           `json:"fees_paid"`
	OutputTotal     decimal.Decimal `json:"output_total"`
}

func (d *DailyStat) Clone() *DailyStat {
	cp := *d
	return &cp
}
