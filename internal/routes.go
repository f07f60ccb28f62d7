package internal

import (
	"beelandr/internal/controllers"
	"beelandr/internal/providers"
	"net/http"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/role", http.HandlerFunc(apiController.GetRole))
	routers.Post("/role", http.HandlerFunc(apiController.SetRole))
	routers.Get("/plots", http.HandlerFunc(apiController.GetPlots))
	routers.Post("/plots", http.HandlerFunc(apiController.SavePlot))
	routers.Get("/plots/detail", http.HandlerFunc(apiController.GetPlotDetail))
	routers.Get("/weather", http.HandlerFunc(apiController.GetWeather))
	routers.Post("/draw", http.HandlerFunc(apiController.Draw))
	routers.Post("/draw/clear", http.HandlerFunc(apiController.ClearDrawing))
	routers.Get("/map", http.HandlerFunc(apiController.GetMap))
	return routers
}
