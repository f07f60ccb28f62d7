package mapview

import (
	"beelandr/internal/models"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plotWith(id string, g models.Geometry) models.Plot {
	return models.Plot{
		ID:       models.NewPlotID(id),
		Owner:    "Ann",
		LandType: "Meadow",
		Geometry: g,
		Hives:    models.NewDisplayNumber(4),
	}
}

func TestDisplayMarkerAndPolygon(t *testing.T) {
	a := NewGeoJSONAdapter()
	a.DisplayMarker(plotWith("1", models.NewPointGeometry(51.5, -0.1)))
	a.DisplayPolygon(plotWith("2", models.NewPolygonGeometry([]models.LatLng{
		{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1},
	})))
	require.Equal(t, 2, a.FeatureCount())

	raw, err := a.FeatureCollection()
	require.NoError(t, err)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Type        string          `json:"type"`
				Coordinates json.RawMessage `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(raw, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)

	assert.Equal(t, "1", fc.Features[0].ID)
	assert.Equal(t, "Point", fc.Features[0].Geometry.Type)
	assert.JSONEq(t, `[-0.1,51.5]`, string(fc.Features[0].Geometry.Coordinates))
	assert.Equal(t, "Meadow", fc.Features[0].Properties["landType"])
	assert.Equal(t, "4", fc.Features[0].Properties["hives"])
	assert.NotContains(t, fc.Features[0].Properties, "area")

	assert.Equal(t, "Polygon", fc.Features[1].Geometry.Type)
	// the ring is closed
	assert.JSONEq(t, `[[[0,0],[1,0],[1,1],[0,0]]]`, string(fc.Features[1].Geometry.Coordinates))
}

func TestDisplayPolygon_EmptyIsSkipped(t *testing.T) {
	a := NewGeoJSONAdapter()
	assert.NotPanics(t, func() {
		a.DisplayPolygon(plotWith("1", models.NewPolygonGeometry(nil)))
	})
	assert.Equal(t, 0, a.FeatureCount())
}

func TestDisplay_WrongKindIsIgnored(t *testing.T) {
	a := NewGeoJSONAdapter()
	a.DisplayMarker(plotWith("1", models.NewPolygonGeometry([]models.LatLng{{Lat: 1, Lng: 1}})))
	a.DisplayPolygon(plotWith("2", models.NewPointGeometry(1, 1)))
	assert.Equal(t, 0, a.FeatureCount())
}

func TestClearAll(t *testing.T) {
	a := NewGeoJSONAdapter()
	a.DisplayMarker(plotWith("1", models.NewPointGeometry(1, 1)))
	a.ClearAll()
	assert.Equal(t, 0, a.FeatureCount())

	raw, err := a.FeatureCollection()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(raw))
}

func TestSetDrawnLayer_Disabled(t *testing.T) {
	a := NewGeoJSONAdapter()
	err := a.SetDrawnLayer([]byte(`{"type":"Point","coordinates":[1,2]}`))
	assert.ErrorIs(t, err, ErrDrawDisabled)
	_, ok := a.DrawnLayer()
	assert.False(t, ok)
}

func TestSetDrawnLayer_ReplacesAndClears(t *testing.T) {
	a := NewGeoJSONAdapter()
	a.EnableDraw(true)
	require.True(t, a.DrawEnabled())

	require.NoError(t, a.SetDrawnLayer([]byte(`{"type":"Point","coordinates":[1,2]}`)))
	require.NoError(t, a.SetDrawnLayer([]byte(`{"type":"Point","coordinates":[3,4]}`)))

	g, ok := a.DrawnLayer()
	require.True(t, ok)
	assert.Equal(t, models.NewPointGeometry(4, 3), g)

	a.ClearDrawLayer()
	_, ok = a.DrawnLayer()
	assert.False(t, ok)
}

func TestSetDrawnLayer_InvalidKeepsPrevious(t *testing.T) {
	a := NewGeoJSONAdapter()
	a.EnableDraw(true)
	require.NoError(t, a.SetDrawnLayer([]byte(`{"type":"Point","coordinates":[1,2]}`)))

	err := a.SetDrawnLayer([]byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidShape)

	g, ok := a.DrawnLayer()
	require.True(t, ok)
	assert.Equal(t, models.NewPointGeometry(2, 1), g)
}

func TestParseDrawnGeometry(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want models.Geometry
	}{
		{
			name: "point",
			in:   `{"type":"Point","coordinates":[-0.12,51.5]}`,
			want: models.NewPointGeometry(51.5, -0.12),
		},
		{
			name: "closed polygon drops the closing vertex",
			in:   `{"type":"Polygon","coordinates":[[[0,0],[2,0],[2,2],[0,0]]]}`,
			want: models.NewPolygonGeometry([]models.LatLng{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 2}, {Lat: 2, Lng: 2}}),
		},
		{
			name: "open polygon",
			in:   `{"type":"Polygon","coordinates":[[[0,0],[2,0],[2,2]]]}`,
			want: models.NewPolygonGeometry([]models.LatLng{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 2}, {Lat: 2, Lng: 2}}),
		},
		{
			name: "feature",
			in:   `{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[3,4]}}`,
			want: models.NewPointGeometry(4, 3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDrawnGeometry([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDrawnGeometry_Rejects(t *testing.T) {
	inputs := map[string]string{
		"garbage":     `{{`,
		"line string": `{"type":"LineString","coordinates":[[0,0],[1,1]]}`,
		"empty ring":  `{"type":"Polygon","coordinates":[[]]}`,
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDrawnGeometry([]byte(in))
			assert.ErrorIs(t, err, ErrInvalidShape)
		})
	}
}
