package providers

import (
	"fmt"
	"path/filepath"
	"rld/internal/structures"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "RLD_LOG_LEVEL")
	viper.BindEnv("persistence.saveInterval", "RLD_SAVE_INTERVAL")
	viper.BindEnv("ledger.snapshotInterval", "RLD_SNAPSHOT_INTERVAL")
	viper.BindEnv("cache.enabled", "RLD_CACHE_ENABLED")
	viper.BindEnv("cache.size", "RLD_CACHE_SIZE")
	viper.BindEnv("admin.token", "RLD_ADMIN_TOKEN")
	viper.BindEnv("rateLimit.maxRequests", "RLD_RATELIMIT_MAX")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	applyDefaults(&conf)

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "RewardLedgerDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

// applyDefaults fills the knobs a minimal config file may omit. Tier
// rates default to the standard ladder so an empty exchange section
// still resolves a config for every level.
func applyDefaults(conf *structures.Config) {
	if conf.Ledger.RetentionHours <= 0 {
		conf.Ledger.RetentionHours = 48
	}
	if conf.Staking.FlowersPer500Unit <= 0 {
		conf.Staking.FlowersPer500Unit = 10
	}
	if conf.Staking.MaxDailyFlowersPerUser <= 0 {
		conf.Staking.MaxDailyFlowersPerUser = 200
	}
	if conf.Staking.MinHoldingHours <= 0 {
		conf.Staking.MinHoldingHours = 12
	}
	if conf.RateLimit.Window <= 0 {
		conf.RateLimit.Window = time.Minute
	}
	if conf.Exchange.TierCacheTTL <= 0 {
		conf.Exchange.TierCacheTTL = time.Minute
	}
	if len(conf.Exchange.Tiers) == 0 {
		conf.Exchange.Tiers = DefaultTierRates()
	}
}

// DefaultTierRates is the built-in ladder: higher tiers get a better
// bonus multiplier, a higher daily cap and a lower fee.
func DefaultTierRates() map[string]structures.TierRates {
	return map[string]structures.TierRates{
		"basic":    {MinExchangeAmount: 50, MaxDailyExchange: 500, BaseRate: 50, BonusMultiplier: 1.0, FeePercentage: 1.0},
		"verified": {MinExchangeAmount: 50, MaxDailyExchange: 1000, BaseRate: 50, BonusMultiplier: 1.05, FeePercentage: 1.0},
		"vip":      {MinExchangeAmount: 20, MaxDailyExchange: 2500, BaseRate: 50, BonusMultiplier: 1.1, FeePercentage: 0.5},
		"premium":  {MinExchangeAmount: 10, MaxDailyExchange: 5000, BaseRate: 50, BonusMultiplier: 1.2, FeePercentage: 0.25},
	}
}
