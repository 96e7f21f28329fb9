package services

import (
	"fmt"
	"rld/internal/models"
	"rld/internal/providers"
	"rld/internal/structures"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/atomic"
)

// Ordered derivation thresholds. Premium additionally requires approved KYC.
const (
	vipPointsThreshold     = 5000
	vipVerificationsMin    = 3
	premiumPointsThreshold = 10000
)

type TierServiceInterface interface {
	GetTier(account string) (*models.Tier, error)
	GetExchangeConfig(account string) (*models.ExchangeConfig, error)
	UpgradeTier(account string, level models.TierLevel, reason string, force bool) (*models.Tier, error)
	ApplyVerificationEvent(account string, points int64, verifications int, kycStatus string) (*models.Tier, error)
}

type TierService struct {
	store  *models.Store
	cache  providers.CacheProviderInterface
	conf   *structures.Config
	clock  providers.ClockInterface
	logger providers.Logger

	// cacheVer versions every cache key; bumping it on a tier-changing
	// event invalidates all cached tiers at once.
	cacheVer atomic.Uint64
}

func NewTierService(store *models.Store, cache providers.CacheProviderInterface, conf *structures.Config, clock providers.ClockInterface, logger providers.Logger) TierServiceInterface {
	return &TierService{store: store, cache: cache, conf: conf, clock: clock, logger: logger}
}

func deriveLevel(t *models.Tier) models.TierLevel {
	switch {
	case t.Points >= premiumPointsThreshold && t.KYCStatus == models.KycApproved:
		return models.TierPremium
	case t.Points >= vipPointsThreshold && t.Verifications >= vipVerificationsMin:
		return models.TierVip
	case t.Verifications >= 1 || t.KYCStatus == models.KycApproved:
		return models.TierVerified
	default:
		return models.TierBasic
	}
}

func (ts *TierService) cacheKey(account string) string {
	return fmt.Sprintf("tier:%d:%s", ts.cacheVer.Load(), account)
}

func (ts *TierService) stored(account string) *models.Tier {
	if t := ts.store.GetTier(account); t != nil {
		return t
	}
	return &models.Tier{Account: account, Level: models.TierBasic, KYCStatus: models.KycNone}
}

func (ts *TierService) GetTier(account string) (*models.Tier, error) {
	if account == "" {
		return nil, &models.ValidationError{Field: "account", Reason: "must not be empty"}
	}

	key := ts.cacheKey(account)
	if data, ok := ts.cache.Get(key); ok {
		var cached models.Tier
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	tier := ts.stored(account)
	// The stored level is authoritative but never hides a higher derived
	// one; derived promotions are persisted by ApplyVerificationEvent.
	if derived := deriveLevel(tier); models.TierRank(derived) > models.TierRank(tier.Level) {
		tier.Level = derived
	}

	if data, err := json.Marshal(tier); err == nil {
		ts.cache.Set(key, data)
	}
	return tier, nil
}

func (ts *TierService) GetExchangeConfig(account string) (*models.ExchangeConfig, error) {
	tier, err := ts.GetTier(account)
	if err != nil {
		return nil, err
	}
	rates, ok := ts.conf.Exchange.Tiers[string(tier.Level)]
	if !ok {
		return nil, fmt.Errorf("tier %s: %w", tier.Level, models.ErrConfigurationMissing)
	}
	return &models.ExchangeConfig{
		Level:             tier.Level,
		MinExchangeAmount: rates.MinExchangeAmount,
		MaxDailyExchange:  rates.MaxDailyExchange,
		BaseRate:          decimal.NewFromFloat(rates.BaseRate),
		BonusMultiplier:   decimal.NewFromFloat(rates.BonusMultiplier),
		FeePercentage:     decimal.NewFromFloat(rates.FeePercentage),
	}, nil
}

// UpgradeTier moves an account to an explicit level. Forward transitions
// only, unless force is set; either way an audit entry is written.
func (ts *TierService) UpgradeTier(account string, level models.TierLevel, reason string, force bool) (*models.Tier, error) {
	if account == "" {
		return nil, &models.ValidationError{Field: "account", Reason: "must not be empty"}
	}
	if models.TierRank(level) == 0 {
		return nil, &models.ValidationError{Field: "level", Reason: fmt.Sprintf("unknown tier %q", level)}
	}
	if reason == "" {
		return nil, &models.ValidationError{Field: "reason", Reason: "must not be empty"}
	}

	cur := ts.stored(account)
	if !force && models.TierRank(level) <= models.TierRank(cur.Level) {
		return nil, &models.ValidationError{
			Field:  "level",
			Reason: fmt.Sprintf("transition %s -> %s requires the override flag", cur.Level, level),
		}
	}

	now := ts.clock.Now()
	next := *cur
	next.Level = level
	next.UpdatedAt = now
	ts.store.PutTier(&next)
	ts.store.AppendAudit(&models.TierAudit{
		ID:        uuid.NewString(),
		Account:   account,
		FromLevel: cur.Level,
		ToLevel:   level,
		Reason:    reason,
		At:        now,
	})
	ts.cacheVer.Inc()

	ts.logger.Infof(providers.TypeApp, "Tier change %s: %s -> %s (%s)", account, cur.Level, level, reason)
	return &next, nil
}

// ApplyVerificationEvent folds a verification-service event into the
// account's signals and re-derives the level. The level never drops as a
// result of an event.
func (ts *TierService) ApplyVerificationEvent(account string, points int64, verifications int, kycStatus string) (*models.Tier, error) {
	if account == "" {
		return nil, &models.ValidationError{Field: "account", Reason: "must not be empty"}
	}

	cur := ts.stored(account)
	now := ts.clock.Now()
	next := *cur
	next.Points += points
	next.Verifications += verifications
	if kycStatus != "" {
		next.KYCStatus = kycStatus
	}
	if derived := deriveLevel(&next); models.TierRank(derived) > models.TierRank(next.Level) {
		next.Level = derived
	}
	next.UpdatedAt = now
	ts.store.PutTier(&next)

	if next.Level != cur.Level {
		ts.store.AppendAudit(&models.TierAudit{
			ID:        uuid.NewString(),
			Account:   account,
			FromLevel: cur.Level,
			ToLevel:   next.Level,
			Reason:    "verification event",
			At:        now,
		})
	}
	ts.cacheVer.Inc()
	return &next, nil
}
