// Package mapview holds the map surface the application controller draws on.
package mapview

import "beelandr/internal/models"

// Adapter is the rendering surface for plots and the user's draw layer.
type Adapter interface {
	EnableDraw(enabled bool)
	DrawEnabled() bool
	ClearAll()
	ClearDrawLayer()
	DisplayMarker(plot models.Plot)
	DisplayPolygon(plot models.Plot)
	// SetDrawnLayer replaces the draw layer with a shape submitted by the user.
	SetDrawnLayer(data []byte) error
	DrawnLayer() (models.Geometry, bool)
	FeatureCount() int
}
