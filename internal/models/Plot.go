package models

import (
	"bytes"
	"errors"
	"fmt"
	json "github.com/goccy/go-json"
	"strings"
)

const LocalIDPrefix = "local-"

type Role string

const (
	RoleLandowner Role = "landowner"
	RoleBeekeeper Role = "beekeeper"
)

func (r Role) Valid() bool {
	return r == RoleLandowner || r == RoleBeekeeper
}

var LandTypes = []string{"Farmland", "Orchard", "Meadow", "Woodland", "Garden", "Wildflower"}

var ErrInvalidGeometry = errors.New("plot must have exactly one of point or polygon")

// PlotID keeps the JSON form it was read with: seed listings use numbers,
// plots saved locally use "local-<unix ms>" strings.
type PlotID struct {
	value   string
	numeric bool
}

func NewPlotID(s string) PlotID {
	return PlotID{value: s}
}

func (id PlotID) String() string {
	return id.value
}

func (id PlotID) IsLocal() bool {
	return strings.HasPrefix(id.value, LocalIDPrefix)
}

func (id PlotID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

func (id *PlotID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = PlotID{value: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("plot id: %w", err)
	}
	*id = PlotID{value: n.String(), numeric: true}
	return nil
}

type Plot struct {
	ID            PlotID
	Owner         string
	LandType      string
	Contact       string
	Geometry      Geometry
	Area          DisplayValue
	Hives         DisplayValue
	IsUserCreated bool
	// Timestamp is the creation time in unix milliseconds, zero for seed plots.
	Timestamp int64
}

// plotRecord is the flat listing record shared with the map front end and
// the seed file.
type plotRecord struct {
	ID            PlotID       `json:"id"`
	Owner         string       `json:"owner"`
	LandType      string       `json:"landType"`
	Contact       string       `json:"contact"`
	Type          GeometryKind `json:"type"`
	Lat           *float64     `json:"lat,omitempty"`
	Lng           *float64     `json:"lng,omitempty"`
	Coordinates   []LatLng     `json:"coordinates,omitempty"`
	Area          DisplayValue `json:"area"`
	Hives         DisplayValue `json:"hives"`
	IsUserCreated bool         `json:"isUserCreated"`
	Timestamp     int64        `json:"timestamp,omitempty"`
}

func (p Plot) MarshalJSON() ([]byte, error) {
	rec := plotRecord{
		ID:            p.ID,
		Owner:         p.Owner,
		LandType:      p.LandType,
		Contact:       p.Contact,
		Type:          p.Geometry.Kind,
		Area:          p.Area,
		Hives:         p.Hives,
		IsUserCreated: p.IsUserCreated,
		Timestamp:     p.Timestamp,
	}
	switch p.Geometry.Kind {
	case GeometryPoint:
		lat, lng := p.Geometry.Point.Lat, p.Geometry.Point.Lng
		rec.Lat, rec.Lng = &lat, &lng
	case GeometryPolygon:
		rec.Coordinates = p.Geometry.Polygon
	default:
		return nil, ErrInvalidGeometry
	}
	return json.Marshal(rec)
}

func (p *Plot) UnmarshalJSON(data []byte) error {
	var rec plotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	hasPoint := rec.Lat != nil || rec.Lng != nil
	hasPolygon := rec.Type == GeometryPolygon || rec.Coordinates != nil

	var geom Geometry
	switch {
	case hasPoint && hasPolygon, !hasPoint && !hasPolygon:
		return fmt.Errorf("plot %s: %w", rec.ID, ErrInvalidGeometry)
	case hasPolygon:
		geom = NewPolygonGeometry(rec.Coordinates)
	default:
		if rec.Lat == nil || rec.Lng == nil {
			return fmt.Errorf("plot %s: point needs both lat and lng", rec.ID)
		}
		geom = NewPointGeometry(*rec.Lat, *rec.Lng)
	}

	*p = Plot{
		ID:            rec.ID,
		Owner:         rec.Owner,
		LandType:      rec.LandType,
		Contact:       rec.Contact,
		Geometry:      geom,
		Area:          rec.Area,
		Hives:         rec.Hives,
		IsUserCreated: rec.IsUserCreated,
		Timestamp:     rec.Timestamp,
	}
	return nil
}

// Filters is the beekeeper's transient search state. A nil MaxHives and an
// empty LandType impose no constraint.
type Filters struct {
	MaxHives *int   `json:"maxHives,omitempty"`
	LandType string `json:"landType,omitempty"`
}

func (f Filters) IsEmpty() bool {
	return f.MaxHives == nil && f.LandType == ""
}
