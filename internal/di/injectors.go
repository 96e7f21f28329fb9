//go:build wireinject
// +build wireinject

package di

import (
	"rld/internal"
	"rld/internal/controllers"
	"rld/internal/providers"
	"rld/internal/services"
	"rld/internal/staking"
	"rld/internal/structures"

	wire "github.com/google/wire"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewStoreProvider,
		providers.NewClock,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewCounterStore,
		providers.NewRateLimiter,

		services.NewLedgerService,
		services.NewTierService,
		services.NewStatsService,
		services.NewSettlementNotifier,
		services.NewExchangeService,

		staking.NewZstdCompressor,
		staking.NewFileManager,
		staking.NewSnapshotRecorder,
		staking.NewRewardCalculator,
		staking.NewScheduler,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
