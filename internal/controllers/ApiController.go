package controllers

import (
	"beelandr/internal/mapview"
	"beelandr/internal/models"
	"beelandr/internal/providers"
	"beelandr/internal/services"
	"beelandr/internal/storage"
	"errors"
	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type MapLayer interface {
	FeatureCollection() ([]byte, error)
}

type ApiController struct {
	logger  providers.Logger
	session services.SessionServiceInterface
	weather services.WeatherServiceInterface
	layer   MapLayer
}

func NewApiController(logger providers.Logger, session services.SessionServiceInterface, weather services.WeatherServiceInterface, adapter *mapview.GeoJSONAdapter) *ApiController {
	return &ApiController{
		logger:  logger,
		session: session,
		weather: weather,
		layer:   adapter,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type roleRequest struct {
	Role models.Role `json:"role"`
}

type roleResponse struct {
	Role   models.Role             `json:"role,omitempty"`
	Chosen bool                    `json:"chosen"`
	Map    *services.RefreshResult `json:"map,omitempty"`
}

type savePlotRequest struct {
	services.PlotDetails
	// Geometry optionally carries the drawn shape in the same request.
	Geometry json.RawMessage `json:"geometry,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrInvalidPlot),
		errors.Is(err, services.ErrNoDrawnShape),
		errors.Is(err, models.ErrInvalidGeometry),
		errors.Is(err, mapview.ErrInvalidShape):
		return http.StatusBadRequest
	case errors.Is(err, mapview.ErrDrawDisabled):
		return http.StatusForbidden
	case errors.Is(err, services.ErrPlotNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrQuotaExceeded):
		return http.StatusInsufficientStorage
	}
	return http.StatusInternalServerError
}

func (ac *ApiController) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	t := providers.GetLogTypeByRequestType(r.Method)
	if status >= http.StatusInternalServerError {
		ac.logger.Errorf(t, "%s %s: %s", r.Method, r.URL.Path, err)
	} else {
		ac.logger.Infof(t, "%s %s rejected: %s", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		badRequest(w, "Bad Request")
		return false
	}
	return true
}

func (ac *ApiController) GetRole(w http.ResponseWriter, r *http.Request) {
	role, ok := ac.session.Role()
	writeJSON(w, http.StatusOK, roleResponse{Role: role, Chosen: ok})
}

func (ac *ApiController) SetRole(w http.ResponseWriter, r *http.Request) {
	var payload roleRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	res, err := ac.session.SetRole(r.Context(), payload.Role)
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roleResponse{Role: payload.Role, Chosen: true, Map: &res})
}

// parseFilters reads maxHives and landType. An empty value means the filter
// is not set.
func parseFilters(r *http.Request) (models.Filters, error) {
	var f models.Filters
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("maxHives")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, errors.New("maxHives must be a non-negative integer")
		}
		f.MaxHives = &n
	}
	if lt := q.Get("landType"); lt != "" {
		f.LandType = lt
	}
	return f, nil
}

func (ac *ApiController) GetPlots(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ac.session.Refresh(r.Context(), filters))
}

func (ac *ApiController) SavePlot(w http.ResponseWriter, r *http.Request) {
	var payload savePlotRequest
	if !decodeBody(w, r, &payload) {
		return
	}
	if len(payload.Geometry) > 0 && string(payload.Geometry) != "null" {
		if err := ac.session.Draw(payload.Geometry); err != nil {
			ac.fail(w, r, err)
			return
		}
	}
	plot, err := ac.session.SaveDrawn(r.Context(), payload.PlotDetails)
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, plot)
}

func (ac *ApiController) GetPlotDetail(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		badRequest(w, "id is required")
		return
	}
	view, err := ac.session.OpenDetail(r.Context(), id)
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ac.session.DetailWeather(r.Context(), view))
}

func (ac *ApiController) GetWeather(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := cast.ToFloat64E(q.Get("lat"))
	lng, errLng := cast.ToFloat64E(q.Get("lng"))
	if errLat != nil || errLng != nil || q.Get("lat") == "" || q.Get("lng") == "" {
		badRequest(w, "lat and lng are required numbers")
		return
	}
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		badRequest(w, "lat or lng out of range")
		return
	}
	writeJSON(w, http.StatusOK, ac.weather.GetWeatherForPlot(r.Context(), lat, lng))
}

func (ac *ApiController) Draw(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err != nil {
		badRequest(w, "Bad Request")
		return
	}
	if err := ac.session.Draw(body); err != nil {
		ac.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) ClearDrawing(w http.ResponseWriter, r *http.Request) {
	ac.session.ClearDrawing()
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) GetMap(w http.ResponseWriter, r *http.Request) {
	data, err := ac.layer.FeatureCollection()
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
