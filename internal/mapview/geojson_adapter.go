package mapview

import (
	"beelandr/internal/models"
	"errors"
	"fmt"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/atomic"
	"sync"
)

var (
	ErrDrawDisabled = errors.New("drawing is disabled")
	ErrInvalidShape = errors.New("invalid drawn shape")
)

// GeoJSONAdapter keeps the plot layer as a GeoJSON feature collection for
// a Leaflet front end, and the single shape the user has drawn.
type GeoJSONAdapter struct {
	mu          sync.RWMutex
	drawEnabled atomic.Bool
	features    *geojson.FeatureCollection
	drawn       *models.Geometry
}

func NewGeoJSONAdapter() *GeoJSONAdapter {
	return &GeoJSONAdapter{features: geojson.NewFeatureCollection()}
}

func (a *GeoJSONAdapter) EnableDraw(enabled bool) {
	a.drawEnabled.Store(enabled)
}

func (a *GeoJSONAdapter) DrawEnabled() bool {
	return a.drawEnabled.Load()
}

func (a *GeoJSONAdapter) ClearAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.features = geojson.NewFeatureCollection()
}

func (a *GeoJSONAdapter) ClearDrawLayer() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.drawn = nil
}

func (a *GeoJSONAdapter) DisplayMarker(plot models.Plot) {
	if !plot.Geometry.IsPoint() {
		return
	}
	pt := plot.Geometry.Point
	a.add(plotFeature(orb.Point{pt.Lng, pt.Lat}, plot))
}

// DisplayPolygon draws the plot's outline. A polygon without points is not
// drawn.
func (a *GeoJSONAdapter) DisplayPolygon(plot models.Plot) {
	if !plot.Geometry.IsPolygon() || len(plot.Geometry.Polygon) == 0 {
		return
	}
	a.add(plotFeature(orb.Polygon{toRing(plot.Geometry.Polygon)}, plot))
}

func (a *GeoJSONAdapter) add(f *geojson.Feature) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.features.Append(f)
}

// SetDrawnLayer accepts a GeoJSON geometry or feature holding a Point or a
// Polygon. Only the outer ring of a polygon is kept.
func (a *GeoJSONAdapter) SetDrawnLayer(data []byte) error {
	if !a.DrawEnabled() {
		return ErrDrawDisabled
	}
	geom, err := ParseDrawnGeometry(data)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.drawn = &geom
	return nil
}

func (a *GeoJSONAdapter) DrawnLayer() (models.Geometry, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.drawn == nil {
		return models.Geometry{}, false
	}
	return *a.drawn, true
}

// FeatureCollection returns the rendered plot layer as GeoJSON.
func (a *GeoJSONAdapter) FeatureCollection() ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.features.MarshalJSON()
}

// FeatureCount is the number of plots currently rendered.
func (a *GeoJSONAdapter) FeatureCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.features.Features)
}

func plotFeature(g orb.Geometry, plot models.Plot) *geojson.Feature {
	f := geojson.NewFeature(g)
	f.ID = plot.ID.String()
	f.Properties["owner"] = plot.Owner
	f.Properties["landType"] = plot.LandType
	f.Properties["contact"] = plot.Contact
	if !plot.Area.IsZero() {
		f.Properties["area"] = plot.Area.String()
	}
	if !plot.Hives.IsZero() {
		f.Properties["hives"] = plot.Hives.String()
	}
	f.Properties["isUserCreated"] = plot.IsUserCreated
	return f
}

func toRing(points []models.LatLng) orb.Ring {
	ring := make(orb.Ring, 0, len(points)+1)
	for _, p := range points {
		ring = append(ring, orb.Point{p.Lng, p.Lat})
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

// ParseDrawnGeometry converts a drawn GeoJSON shape into a plot geometry.
func ParseDrawnGeometry(data []byte) (models.Geometry, error) {
	var shape orb.Geometry
	if g, err := geojson.UnmarshalGeometry(data); err == nil && g.Coordinates != nil {
		shape = g.Coordinates
	} else if f, ferr := geojson.UnmarshalFeature(data); ferr == nil && f.Geometry != nil {
		shape = f.Geometry
	} else {
		if err == nil {
			err = ferr
		}
		if err == nil {
			return models.Geometry{}, fmt.Errorf("%w: no geometry", ErrInvalidShape)
		}
		return models.Geometry{}, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}

	switch s := shape.(type) {
	case orb.Point:
		return models.NewPointGeometry(s.Lat(), s.Lon()), nil
	case orb.Polygon:
		if len(s) == 0 || len(s[0]) == 0 {
			return models.Geometry{}, fmt.Errorf("%w: empty polygon", ErrInvalidShape)
		}
		ring := s[0]
		if len(ring) > 1 && ring.Closed() {
			ring = ring[:len(ring)-1]
		}
		points := make([]models.LatLng, 0, len(ring))
		for _, p := range ring {
			points = append(points, models.LatLng{Lat: p.Lat(), Lng: p.Lon()})
		}
		return models.NewPolygonGeometry(points), nil
	}
	return models.Geometry{}, fmt.Errorf("%w: only points and polygons can be drawn, got %s", ErrInvalidShape, shape.GeoJSONType())
}
