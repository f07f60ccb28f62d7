package models

type GeometryKind string

const (
	GeometryPoint   GeometryKind = "marker"
	GeometryPolygon GeometryKind = "polygon"
)

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geometry is either a single point or a polygon ring; Kind says which of
// Point and Polygon is meaningful.
type Geometry struct {
	Kind    GeometryKind
	Point   LatLng
	Polygon []LatLng
}

func NewPointGeometry(lat, lng float64) Geometry {
	return Geometry{Kind: GeometryPoint, Point: LatLng{Lat: lat, Lng: lng}}
}

func NewPolygonGeometry(points []LatLng) Geometry {
	cp := make([]LatLng, len(points))
	copy(cp, points)
	return Geometry{Kind: GeometryPolygon, Polygon: cp}
}

func (g Geometry) IsPoint() bool {
	return g.Kind == GeometryPoint
}

func (g Geometry) IsPolygon() bool {
	return g.Kind == GeometryPolygon
}

// Center returns the point itself or the vertex mean of a polygon. A closing
// vertex equal to the first one is not counted twice. ok is false for an
// empty polygon or an unset geometry.
func (g Geometry) Center() (LatLng, bool) {
	switch g.Kind {
	case GeometryPoint:
		return g.Point, true
	case GeometryPolygon:
		pts := g.Polygon
		if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
			pts = pts[:len(pts)-1]
		}
		if len(pts) == 0 {
			return LatLng{}, false
		}
		var c LatLng
		for _, p := range pts {
			c.Lat += p.Lat
			c.Lng += p.Lng
		}
		c.Lat /= float64(len(pts))
		c.Lng /= float64(len(pts))
		return c, true
	}
	return LatLng{}, false
}
