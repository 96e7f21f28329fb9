package providers

import (
	"rld/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8086,
		},
		Persistence: structures.Persistence{
			FilePath:     "/tmp/rld.dat",
			SaveInterval: 30 * time.Second,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
		Ledger: structures.LedgerConfig{
			SnapshotInterval: time.Hour,
			RetentionHours:   48,
		},
		Staking: structures.StakingConfig{
			MinBalanceThreshold: 100,
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_EmptyLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_MissingPersistencePath(t *testing.T) {
	c := validConfig()
	c.Persistence.FilePath = ""
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroSnapshotInterval(t *testing.T) {
	c := validConfig()
	c.Ledger.SnapshotInterval = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestConfigValidator_ZeroMinBalanceThreshold(t *testing.T) {
	c := validConfig()
	c.Staking.MinBalanceThreshold = 0
	v := NewCnfValidator(c)
	assert.Error(t, v.Validate())
}

func TestApplyDefaults(t *testing.T) {
	c := validConfig()
	applyDefaults(c)

	assert.Equal(t, int64(10), c.Staking.FlowersPer500Unit)
	assert.Equal(t, int64(200), c.Staking.MaxDailyFlowersPerUser)
	assert.Equal(t, 12, c.Staking.MinHoldingHours)
	assert.Equal(t, time.Minute, c.RateLimit.Window)
	assert.Equal(t, time.Minute, c.Exchange.TierCacheTTL)

	for _, level := range []string{"basic", "verified", "vip", "premium"} {
		assert.Contains(t, c.Exchange.Tiers, level)
	}
}
