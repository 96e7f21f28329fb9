package internal

import (
	"net/http"
	"rld/internal/controllers"
	"rld/internal/providers"
	"rld/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/balance", http.HandlerFunc(apiController.GetBalance))
	routers.Get("/transactions", http.HandlerFunc(apiController.GetTransactions))
	routers.Get("/tier", http.HandlerFunc(apiController.GetTierInfo))
	routers.Get("/exchange/estimate", http.HandlerFunc(apiController.GetExchangeEstimate))
	routers.Post("/exchange", http.HandlerFunc(apiController.ExecuteExchange))
	routers.Get("/rewards", http.HandlerFunc(apiController.GetRewards))
	routers.Get("/staking/sessions", http.HandlerFunc(apiController.GetStakingSessions))
	routers.Post("/tier/upgrade", http.HandlerFunc(apiController.UpgradeTier))
	routers.Post("/tier/event", http.HandlerFunc(apiController.ApplyVerificationEvent))
	routers.Post("/snapshots/record", http.HandlerFunc(apiController.RecordSnapshot))
	routers.Post("/rewards/run", http.HandlerFunc(apiController.RunRewardBatch))
	return routers
}
