package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TierLevel string

const (
	TierBasic    TierLevel = "basic"
	TierVerified TierLevel = "verified"
	TierVip      TierLevel = "vip"
	TierPremium  TierLevel = "premium"
)

// TierRank orders levels for the monotonic-upgrade rule. Unknown levels
// rank below basic.
func TierRank(l TierLevel) int {
	switch l {
	case TierBasic:
		return 1
	case TierVerified:
		return 2
	case TierVip:
		return 3
	case TierPremium:
		return 4
	}
	return 0
}

const (
	KycNone     = "none"
	KycPending  = "pending"
	KycApproved = "approved"
	KycRejected = "rejected"
)

type Tier struct {
	Account       string    `json:"account"`
	Level         TierLevel `json:"level"`
	Points        int64     `json:"points"`
	Verifications int       `json:"verifications"`
	KYCStatus     string    `json:"kyc_status"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TierAudit records every tier transition, including derived ones.
type TierAudit struct {
	ID        string    `json:"id"`
	Account   string    `json:"account"`
	FromLevel TierLevel `json:"from_level"`
	ToLevel   TierLevel `json:"to_level"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

// ExchangeConfig is the exchange parameter set derived from a tier level.
// A higher BonusMultiplier yields a better effective rate.
type ExchangeConfig struct {
	Level             TierLevel       `json:"level"`
	MinExchangeAmount int64           `json:"min_exchange_amount"`
	MaxDailyExchange  int64           `json:"max_daily_exchange"`
	BaseRate          decimal.Decimal `json:"base_rate"`
	BonusMultiplier   decimal.Decimal `json:"bonus_multiplier"`
	FeePercentage     decimal.Decimal `json:"fee_percentage"`
}
