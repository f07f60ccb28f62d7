package controllers

import (
	"beelandr/internal/mapview"
	"beelandr/internal/models"
	"beelandr/internal/services"
	"beelandr/internal/storage"
	"beelandr/internal/testutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	ac      *ApiController
	session services.SessionServiceInterface
	store   *storage.Store
	adapter *mapview.GeoJSONAdapter
	weather *testutil.MockWeatherService
}

func seedPlots() []models.Plot {
	return []models.Plot{
		{
			ID:       models.NewPlotID("1"),
			Owner:    "Hill Farm",
			LandType: "Meadow",
			Contact:  "hill@example.com",
			Geometry: models.NewPointGeometry(51.5, -0.1),
			Hives:    models.NewDisplayNumber(5),
		},
		{
			ID:       models.NewPlotID("2"),
			Owner:    "Old Orchard",
			LandType: "Orchard",
			Contact:  "orchard@example.com",
			Geometry: models.NewPolygonGeometry([]models.LatLng{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 2}, {Lat: 2, Lng: 2}}),
			Hives:    models.NewDisplayText("15 hives"),
		},
	}
}

func newAPIFixture(t *testing.T, quota int) *apiFixture {
	t.Helper()
	logger := &testutil.MockLogger{}
	store := storage.NewStore(quota)
	plots := services.NewPlotService(store, &testutil.MockSeedSource{Plots: seedPlots()}, logger, testutil.NewMockMetrics())
	ws := &testutil.MockWeatherService{Result: models.WeatherResult{
		Weather: models.WeatherSnapshot{Temperature: 18, Condition: "Mild", BeeScore: 81},
		Source:  models.SourceLive,
	}}
	adapter := mapview.NewGeoJSONAdapter()
	session := services.NewSessionService(store, plots, ws, adapter, logger)
	return &apiFixture{
		ac:      NewApiController(logger, session, ws, adapter),
		session: session,
		store:   store,
		adapter: adapter,
		weather: ws,
	}
}

func (fx *apiFixture) do(handler http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func (fx *apiFixture) becomeLandowner(t *testing.T) {
	t.Helper()
	rr := fx.do(fx.ac.SetRole, http.MethodPost, "/role", `{"role":"landowner"}`)
	require.Equal(t, http.StatusOK, rr.Code)
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dest))
}

const plotForm = `{"owner":"Ann","landType":"Meadow","contact":"ann@example.com","area":"2 acres","hives":4`

// --- role ---

func TestGetRole_NotChosen(t *testing.T) {
	fx := newAPIFixture(t, 0)
	rr := fx.do(fx.ac.GetRole, http.MethodGet, "/role", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"chosen":false}`, rr.Body.String())
}

func TestSetRole_Landowner(t *testing.T) {
	fx := newAPIFixture(t, 0)
	rr := fx.do(fx.ac.SetRole, http.MethodPost, "/role", `{"role":"landowner"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp struct {
		Role   string `json:"role"`
		Chosen bool   `json:"chosen"`
		Map    struct {
			Plots []json.RawMessage `json:"plots"`
			Total int               `json:"total"`
		} `json:"map"`
	}
	decode(t, rr, &resp)
	assert.Equal(t, "landowner", resp.Role)
	assert.True(t, resp.Chosen)
	assert.Len(t, resp.Map.Plots, 2)
	assert.Equal(t, 2, resp.Map.Total)
	assert.True(t, fx.adapter.DrawEnabled())

	rr = fx.do(fx.ac.GetRole, http.MethodGet, "/role", "")
	assert.JSONEq(t, `{"role":"landowner","chosen":true}`, rr.Body.String())
}

func TestSetRole_Invalid(t *testing.T) {
	fx := newAPIFixture(t, 0)

	rr := fx.do(fx.ac.SetRole, http.MethodPost, "/role", `{"role":"queen"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = fx.do(fx.ac.SetRole, http.MethodPost, "/role", `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.False(t, fx.store.Has(storage.KeyUserRole))
}

// --- plots ---

func TestGetPlots_Filters(t *testing.T) {
	fx := newAPIFixture(t, 0)

	rr := fx.do(fx.ac.GetPlots, http.MethodGet, "/plots?maxHives=10", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp services.RefreshResult
	decode(t, rr, &resp)
	require.Len(t, resp.Plots, 1)
	assert.Equal(t, "1", resp.Plots[0].ID.String())
	assert.Equal(t, 2, resp.Total)
	require.NotNil(t, resp.Filter.MaxHives)
	assert.Equal(t, 10, *resp.Filter.MaxHives)
	assert.Equal(t, 1, fx.adapter.FeatureCount())
}

func TestGetPlots_LandType(t *testing.T) {
	fx := newAPIFixture(t, 0)
	rr := fx.do(fx.ac.GetPlots, http.MethodGet, "/plots?landType=Orchard", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp services.RefreshResult
	decode(t, rr, &resp)
	require.Len(t, resp.Plots, 1)
	assert.Equal(t, "2", resp.Plots[0].ID.String())
}

func TestGetPlots_InvalidCeiling(t *testing.T) {
	fx := newAPIFixture(t, 0)
	for _, q := range []string{"maxHives=-1", "maxHives=many", "maxHives=2.5"} {
		rr := fx.do(fx.ac.GetPlots, http.MethodGet, "/plots?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
	}
}

func TestSavePlot_WithGeometry(t *testing.T) {
	fx := newAPIFixture(t, 0)
	fx.becomeLandowner(t)

	body := plotForm + `,"geometry":{"type":"Point","coordinates":[-0.12,51.5]}}`
	rr := fx.do(fx.ac.SavePlot, http.MethodPost, "/plots", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var saved models.Plot
	decode(t, rr, &saved)
	assert.True(t, saved.ID.IsLocal())
	assert.True(t, saved.IsUserCreated)
	assert.Equal(t, "Ann", saved.Owner)
	assert.Equal(t, "4", saved.Hives.String())
	assert.Equal(t, models.LatLng{Lat: 51.5, Lng: -0.12}, saved.Geometry.Point)

	_, drawn := fx.adapter.DrawnLayer()
	assert.False(t, drawn)
	assert.Equal(t, 3, fx.adapter.FeatureCount())
}

func TestSavePlot_AfterDraw(t *testing.T) {
	fx := newAPIFixture(t, 0)
	fx.becomeLandowner(t)

	rr := fx.do(fx.ac.Draw, http.MethodPost, "/draw", `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = fx.do(fx.ac.SavePlot, http.MethodPost, "/plots", plotForm+`}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var saved models.Plot
	decode(t, rr, &saved)
	assert.True(t, saved.Geometry.IsPolygon())
	assert.Len(t, saved.Geometry.Polygon, 3)
}

func TestSavePlot_NothingDrawn(t *testing.T) {
	fx := newAPIFixture(t, 0)
	fx.becomeLandowner(t)

	rr := fx.do(fx.ac.SavePlot, http.MethodPost, "/plots", plotForm+`}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSavePlot_BeekeeperCannotDraw(t *testing.T) {
	fx := newAPIFixture(t, 0)
	rr := fx.do(fx.ac.SetRole, http.MethodPost, "/role", `{"role":"beekeeper"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	body := plotForm + `,"geometry":{"type":"Point","coordinates":[1,1]}}`
	rr = fx.do(fx.ac.SavePlot, http.MethodPost, "/plots", body)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestSavePlot_InvalidDetails(t *testing.T) {
	fx := newAPIFixture(t, 0)
	fx.becomeLandowner(t)

	body := `{"owner":"Ann","landType":"Desert","contact":"ann@example.com","geometry":{"type":"Point","coordinates":[1,1]}}`
	rr := fx.do(fx.ac.SavePlot, http.MethodPost, "/plots", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp errorResponse
	decode(t, rr, &resp)
	assert.Contains(t, resp.Error, "invalid plot details")
}

func TestSavePlot_InvalidShape(t *testing.T) {
	fx := newAPIFixture(t, 0)
	fx.becomeLandowner(t)

	body := plotForm + `,"geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]}}`
	rr := fx.do(fx.ac.SavePlot, http.MethodPost, "/plots", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSavePlot_QuotaExceeded(t *testing.T) {
	fx := newAPIFixture(t, 64)
	fx.becomeLandowner(t)

	body := plotForm + `,"geometry":{"type":"Point","coordinates":[1,1]}}`
	rr := fx.do(fx.ac.SavePlot, http.MethodPost, "/plots", body)
	assert.Equal(t, http.StatusInsufficientStorage, rr.Code)
	assert.False(t, fx.store.Has(storage.KeyUserPlots))
}

func TestSavePlot_OversizedBody(t *testing.T) {
	fx := newAPIFixture(t, 0)
	fx.becomeLandowner(t)

	big := `{"owner":"` + strings.Repeat("x", maxRequestBodySize) + `"}`
	rr := fx.do(fx.ac.SavePlot, http.MethodPost, "/plots", big)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// --- detail & weather ---

func TestGetPlotDetail(t *testing.T) {
	fx := newAPIFixture(t, 0)

	rr := fx.do(fx.ac.GetPlotDetail, http.MethodGet, "/plots/detail?id=2", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Plot    models.Plot          `json:"plot"`
		Weather models.WeatherResult `json:"weather"`
		Applied bool                 `json:"applied"`
	}
	decode(t, rr, &resp)
	assert.True(t, resp.Applied)
	assert.Equal(t, "Old Orchard", resp.Plot.Owner)
	assert.Equal(t, 81, resp.Weather.Weather.BeeScore)
	assert.Equal(t, models.SourceLive, resp.Weather.Source)
	require.Len(t, fx.weather.Calls, 1)
}

func TestGetPlotDetail_Errors(t *testing.T) {
	fx := newAPIFixture(t, 0)

	rr := fx.do(fx.ac.GetPlotDetail, http.MethodGet, "/plots/detail", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = fx.do(fx.ac.GetPlotDetail, http.MethodGet, "/plots/detail?id=99", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetWeather(t *testing.T) {
	fx := newAPIFixture(t, 0)

	rr := fx.do(fx.ac.GetWeather, http.MethodGet, "/weather?lat=51.5&lng=-0.12", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var res models.WeatherResult
	decode(t, rr, &res)
	assert.Equal(t, "Mild", res.Weather.Condition)
	assert.Equal(t, []models.LatLng{{Lat: 51.5, Lng: -0.12}}, fx.weather.Calls)
}

func TestGetWeather_BadCoordinates(t *testing.T) {
	fx := newAPIFixture(t, 0)
	for _, q := range []string{"", "lat=1", "lat=abc&lng=1", "lat=91&lng=0", "lat=0&lng=-181", "lat=NaN&lng=NaN", "lat=0&lng=NaN"} {
		rr := fx.do(fx.ac.GetWeather, http.MethodGet, "/weather?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
	}
	assert.Empty(t, fx.weather.Calls)
}

// --- drawing & map ---

func TestDraw_Disabled(t *testing.T) {
	fx := newAPIFixture(t, 0)
	rr := fx.do(fx.ac.Draw, http.MethodPost, "/draw", `{"type":"Point","coordinates":[1,1]}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestDraw_InvalidAndClear(t *testing.T) {
	fx := newAPIFixture(t, 0)
	fx.becomeLandowner(t)

	rr := fx.do(fx.ac.Draw, http.MethodPost, "/draw", `{"type":"Circle"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = fx.do(fx.ac.Draw, http.MethodPost, "/draw", `{"type":"Point","coordinates":[1,1]}`)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = fx.do(fx.ac.ClearDrawing, http.MethodPost, "/draw/clear", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	_, drawn := fx.adapter.DrawnLayer()
	assert.False(t, drawn)
}

func TestGetMap(t *testing.T) {
	fx := newAPIFixture(t, 0)
	fx.do(fx.ac.GetPlots, http.MethodGet, "/plots", "")

	rr := fx.do(fx.ac.GetMap, http.MethodGet, "/map", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/geo+json", rr.Header().Get("Content-Type"))

	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	decode(t, rr, &fc)
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Len(t, fc.Features, 2)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrInvalidRole, http.StatusBadRequest},
		{services.ErrNoDrawnShape, http.StatusBadRequest},
		{models.ErrInvalidGeometry, http.StatusBadRequest},
		{mapview.ErrDrawDisabled, http.StatusForbidden},
		{services.ErrPlotNotFound, http.StatusNotFound},
		{storage.ErrQuotaExceeded, http.StatusInsufficientStorage},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
