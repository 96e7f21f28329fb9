package services

import (
	"rld/internal/models"
	"rld/internal/providers"
	"rld/internal/structures"
	"rld/internal/testutil"
	"time"
)

// serviceFixture bundles a store with the services under test, wired
// against mock infrastructure and the built-in tier ladder.
type serviceFixture struct {
	store      *models.Store
	clock      *testutil.MockClock
	logger     *testutil.MockLogger
	settlement *testutil.MockSettlement
	conf       *structures.Config
	ledger     LedgerServiceInterface
	tiers      TierServiceInterface
	stats      StatsServiceInterface
	exchange   ExchangeServiceInterface
}

func newServiceFixture() *serviceFixture {
	conf := &structures.Config{}
	conf.Exchange.Tiers = providers.DefaultTierRates()

	f := &serviceFixture{
		store:      models.NewStore(200 * time.Millisecond),
		clock:      testutil.NewMockClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)),
		logger:     &testutil.MockLogger{},
		settlement: &testutil.MockSettlement{},
		conf:       conf,
	}

	metrics := providers.NewMetricsProvider(conf, f.store)
	cache := providers.NewCacheProvider(conf, f.logger)

	f.ledger = NewLedgerService(f.store, f.clock, f.logger, metrics)
	f.tiers = NewTierService(f.store, cache, conf, f.clock, f.logger)
	f.stats = NewStatsService(f.store)
	f.exchange = NewExchangeService(f.store, f.ledger, f.tiers, f.stats, f.settlement, f.clock, f.logger, metrics)
	return f
}

// setTierRates replaces one level's exchange parameters.
func (f *serviceFixture) setTierRates(level string, rates structures.TierRates) {
	f.conf.Exchange.Tiers[level] = rates
}
