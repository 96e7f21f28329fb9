package services

import (
	"rld/internal/models"

	"github.com/shopspring/decimal"
)

// StatsServiceInterface keeps the per-(account, date) exchange
// aggregates. RecordExchange stages into the caller's unit of work so
// the stat lands in the same commit as the triggering debit — it is
// bookkeeping, not an independent source of truth.
type StatsServiceInterface interface {
	GetDailyStat(account, date string) *models.DailyStat
	RecordExchange(atx *models.AccountTx, date string, amount, fee int64, output decimal.Decimal)
}

type StatsService struct {
	store *models.Store
}

func NewStatsService(store *models.Store) StatsServiceInterface {
	return &StatsService{store: store}
}

func (ss *StatsService) GetDailyStat(account, date string) *models.DailyStat {
	return ss.store.GetDailyStat(account, date)
}

func (ss *StatsService) RecordExchange(atx *models.AccountTx, date string, amount, fee int64, output decimal.Decimal) {
	atx.AddStat(date, amount, fee, output)
}
