//go:build wireinject
// +build wireinject

package di

import (
	"PricePulse/pkg/config"
	"PricePulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideCache,
		ProvideSnapshotSink,
		ProvideScorer,

		// Repositories
		ProvideStateStore,
		ProvideSignalCache,
		ProvideSearchClients,
		ProvideCatalog,

		// Domain services
		ProvideClock,
		ProvideEngine,
		ProvideSimulator,
		ProvideAggregator,
		ProvideWarmer,

		// Use cases and transport
		ProvideLivePricing,
		ProvideHandler,

		// Application
		ProvideApp,
	)
	return &server.App{}, nil
}
