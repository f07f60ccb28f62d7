//go:build wireinject
// +build wireinject

package di

import (
	"beelandr/internal"
	"beelandr/internal/clients/openmeteo"
	"beelandr/internal/controllers"
	"beelandr/internal/mapview"
	"beelandr/internal/persistence"
	"beelandr/internal/providers"
	"beelandr/internal/services"
	"beelandr/internal/structures"
	wire "github.com/google/wire"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewStoreProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		openmeteo.NewClient,
		mapview.NewGeoJSONAdapter,
		wire.Bind(new(mapview.Adapter), new(*mapview.GeoJSONAdapter)),

		services.NewSeedSource,
		services.NewPlotService,
		services.NewWeatherService,
		services.NewWeatherPruner,
		services.NewSessionService,

		persistence.NewSnapshotCompressor,
		persistence.NewFileManager,
		persistence.NewScheduler,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewHandler,
		internal.NewApp,
	)

	return nil, nil
}
