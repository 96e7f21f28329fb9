package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type LedgerConfig struct {
	SnapshotInterval time.Duration `yaml:"snapshotInterval" validate:"required|min:1"`
	RetentionHours   int           `yaml:"retentionHours"`
}

type StakingConfig struct {
	MinBalanceThreshold    int64 `yaml:"minBalanceThreshold" validate:"required|min:1"`
	MinHoldingHours        int   `yaml:"minHoldingHours"`
	FlowersPer500Unit      int64 `yaml:"flowersPer500Unit"`
	MaxDailyFlowersPerUser int64 `yaml:"maxDailyFlowersPerUser"`
	RewardRunHour          int   `yaml:"rewardRunHour"`
}

// TierRates is the exchange configuration attached to one tier level.
type TierRates struct {
	MinExchangeAmount int64   `yaml:"minExchangeAmount"`
	MaxDailyExchange  int64   `yaml:"maxDailyExchange"`
	BaseRate          float64 `yaml:"baseRate"`
	BonusMultiplier   float64 `yaml:"bonusMultiplier"`
	FeePercentage     float64 `yaml:"feePercentage"`
}

type ExchangeSection struct {
	Tiers        map[string]TierRates `yaml:"tiers"`
	TierCacheTTL time.Duration        `yaml:"tierCacheTTL"`
}

type RateLimitConfig struct {
	MaxRequests int           `yaml:"maxRequests"`
	Window      time.Duration `yaml:"window"`
}

type AdminConfig struct {
	Token string `yaml:"token"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server          `yaml:"webServer"`
	Persistence Persistence     `yaml:"persistence"`
	Logger      LoggerConfig    `yaml:"logger"`
	Cache       CacheConfig     `yaml:"cache"`
	Metrics     MetricsConfig   `yaml:"metrics"`
	Admin       AdminConfig     `yaml:"admin"`
	Ledger      LedgerConfig    `yaml:"ledger"`
	Staking     StakingConfig   `yaml:"staking"`
	RateLimit   RateLimitConfig `yaml:"rateLimit"`
	Exchange    ExchangeSection `yaml:"exchange"`
}
