package services

import (
	"beelandr/internal/mapview"
	"beelandr/internal/models"
	"beelandr/internal/providers"
	"beelandr/internal/storage"
	"beelandr/internal/weather"
	"context"
	"errors"
	"fmt"
	"go.uber.org/atomic"
	"sync"
)

var (
	ErrInvalidRole  = errors.New("role must be landowner or beekeeper")
	ErrNoDrawnShape = errors.New("draw a point or polygon before saving")
)

type RefreshResult struct {
	Plots  []models.Plot  `json:"plots"`
	Total  int            `json:"total"`
	Status string         `json:"status,omitempty"`
	Filter models.Filters `json:"filters"`
}

// DetailView is an opened plot detail. Token identifies the view so a late
// weather response for an older view can be recognised.
type DetailView struct {
	Token uint64      `json:"token"`
	Plot  models.Plot `json:"plot"`
}

type DetailWeather struct {
	Plot    models.Plot           `json:"plot"`
	Weather *models.WeatherResult `json:"weather,omitempty"`
	Applied bool                  `json:"applied"`
}

type SessionServiceInterface interface {
	Role() (models.Role, bool)
	SetRole(ctx context.Context, role models.Role) (RefreshResult, error)
	Filters() models.Filters
	Refresh(ctx context.Context, filters models.Filters) RefreshResult
	Draw(data []byte) error
	ClearDrawing()
	SaveDrawn(ctx context.Context, details PlotDetails) (models.Plot, error)
	OpenDetail(ctx context.Context, id string) (DetailView, error)
	DetailWeather(ctx context.Context, view DetailView) DetailWeather
}

// Session is the state of the single local user: role, filters, the map
// surface and the currently open detail view.
type Session struct {
	mu        sync.Mutex
	store     storage.StoreInterface
	plots     PlotServiceInterface
	forecast  WeatherServiceInterface
	adapter   mapview.Adapter
	logger    providers.Logger
	filters   models.Filters
	detailGen atomic.Uint64
}

func NewSessionService(store storage.StoreInterface, plots PlotServiceInterface, forecast WeatherServiceInterface, adapter mapview.Adapter, logger providers.Logger) SessionServiceInterface {
	s := &Session{
		store:    store,
		plots:    plots,
		forecast: forecast,
		adapter:  adapter,
		logger:   logger,
	}
	s.syncDrawing()
	return s
}

// syncDrawing enables the draw tools only for a persisted landowner role. The
// store may be restored after the session is built, so callers that depend on
// the draw state run it first.
func (s *Session) syncDrawing() {
	role, ok := s.Role()
	s.adapter.EnableDraw(ok && role == models.RoleLandowner)
}

// Role returns the persisted role. ok is false until a role has been chosen.
func (s *Session) Role() (models.Role, bool) {
	var role models.Role
	if !s.store.Load(storage.KeyUserRole, &role) || !role.Valid() {
		return "", false
	}
	return role, true
}

func (s *Session) SetRole(ctx context.Context, role models.Role) (RefreshResult, error) {
	if !role.Valid() {
		return RefreshResult{}, fmt.Errorf("%q: %w", role, ErrInvalidRole)
	}
	if err := s.store.Save(storage.KeyUserRole, role); err != nil {
		return RefreshResult{}, fmt.Errorf("save role: %w", err)
	}

	s.mu.Lock()
	switch role {
	case models.RoleLandowner:
		s.adapter.EnableDraw(true)
	case models.RoleBeekeeper:
		s.adapter.EnableDraw(false)
		s.adapter.ClearDrawLayer()
		s.filters = models.Filters{}
	}
	filters := s.filters
	s.mu.Unlock()

	s.logger.Infof(providers.TypePost, "Role set to %s", role)
	return s.Refresh(ctx, filters), nil
}

func (s *Session) Filters() models.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Refresh reloads every plot, applies filters and redraws the map.
func (s *Session) Refresh(ctx context.Context, filters models.Filters) RefreshResult {
	loaded := s.plots.LoadAll(ctx)
	visible := s.plots.ApplyFilters(loaded.Plots, filters)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = filters
	s.adapter.ClearAll()
	for _, p := range visible {
		if p.Geometry.IsPolygon() {
			s.adapter.DisplayPolygon(p)
		} else {
			s.adapter.DisplayMarker(p)
		}
	}
	if !filters.IsEmpty() {
		s.logger.Debugf(providers.TypeGet, "Filters kept %d of %d plots", len(visible), len(loaded.Plots))
	}
	s.logger.Debugf(providers.TypeGet, "Map shows %d features", s.adapter.FeatureCount())

	return RefreshResult{
		Plots:  visible,
		Total:  len(loaded.Plots),
		Status: loaded.Status,
		Filter: filters,
	}
}

func (s *Session) Draw(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncDrawing()
	return s.adapter.SetDrawnLayer(data)
}

func (s *Session) ClearDrawing() {
	s.adapter.ClearDrawLayer()
}

// SaveDrawn saves the drawn shape with the given details. The draw layer is
// kept when saving fails so the user can retry.
func (s *Session) SaveDrawn(ctx context.Context, details PlotDetails) (models.Plot, error) {
	geom, ok := s.adapter.DrawnLayer()
	if !ok {
		return models.Plot{}, ErrNoDrawnShape
	}
	if err := details.Validate(); err != nil {
		return models.Plot{}, err
	}

	saved, err := s.plots.Save(details.ToPlot(geom))
	if err != nil {
		return models.Plot{}, err
	}

	s.adapter.ClearDrawLayer()
	s.Refresh(ctx, s.Filters())
	return saved, nil
}

// OpenDetail opens the detail view of a plot, superseding any open view.
func (s *Session) OpenDetail(ctx context.Context, id string) (DetailView, error) {
	plot, err := s.plots.Find(ctx, id)
	if err != nil {
		return DetailView{}, err
	}
	return DetailView{Token: s.detailGen.Inc(), Plot: plot}, nil
}

// DetailWeather fetches weather at the plot's representative coordinate.
// Applied is false when a newer detail view was opened while the request
// was in flight; the weather is then left out.
func (s *Session) DetailWeather(ctx context.Context, view DetailView) DetailWeather {
	var res models.WeatherResult
	if center, ok := view.Plot.Geometry.Center(); ok {
		res = s.forecast.GetWeatherForPlot(ctx, center.Lat, center.Lng)
	} else {
		s.logger.Warnf(providers.TypeWeather, "Plot %s has no coordinates, skipping weather", view.Plot.ID)
		res = models.WeatherResult{Weather: weather.DefaultSnapshot(), Source: models.SourceDefault}
	}

	out := DetailWeather{Plot: view.Plot}
	if s.detailGen.Load() != view.Token {
		s.logger.Debugf(providers.TypeWeather, "Discarding weather for superseded view of plot %s", view.Plot.ID)
		return out
	}
	out.Weather = &res
	out.Applied = true
	return out
}
