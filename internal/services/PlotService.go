package services

import (
	"beelandr/internal/models"
	"beelandr/internal/providers"
	"beelandr/internal/storage"
	"context"
	"errors"
	"fmt"
	json "github.com/goccy/go-json"
	"github.com/gookit/validate"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	ErrPlotNotFound = errors.New("plot not found")
	ErrInvalidPlot  = errors.New("invalid plot details")
)

const seedUnavailableStatus = "Community listings are unavailable right now; showing your saved plots only."

// PlotDetails is what a landowner fills in for a drawn shape.
type PlotDetails struct {
	Owner    string              `json:"owner"`
	LandType string              `json:"landType"`
	Contact  string              `json:"contact"`
	Area     models.DisplayValue `json:"area"`
	Hives    models.DisplayValue `json:"hives"`
}

func (d PlotDetails) Validate() error {
	v := validate.Map(map[string]any{
		"owner":    strings.TrimSpace(d.Owner),
		"landType": d.LandType,
		"contact":  strings.TrimSpace(d.Contact),
		"area":     d.Area.String(),
		"hives":    d.Hives.String(),
	})
	v.StringRule("owner", "required|maxLen:120")
	v.StringRule("landType", "required|in:"+strings.Join(models.LandTypes, ","))
	v.StringRule("contact", "required|maxLen:120")
	v.StringRule("area", "maxLen:60")
	v.StringRule("hives", "maxLen:60")
	if !v.Validate() {
		return fmt.Errorf("%w: %s", ErrInvalidPlot, v.Errors.String())
	}
	return nil
}

func detailsOf(p models.Plot) PlotDetails {
	return PlotDetails{Owner: p.Owner, LandType: p.LandType, Contact: p.Contact, Area: p.Area, Hives: p.Hives}
}

func (d PlotDetails) ToPlot(geom models.Geometry) models.Plot {
	return models.Plot{
		Owner:    strings.TrimSpace(d.Owner),
		LandType: d.LandType,
		Contact:  strings.TrimSpace(d.Contact),
		Geometry: geom,
		Area:     d.Area,
		Hives:    d.Hives,
	}
}

type LoadResult struct {
	Plots     []models.Plot `json:"plots"`
	SeedCount int           `json:"seedCount"`
	Status    string        `json:"status,omitempty"`
}

type PlotServiceInterface interface {
	LoadAll(ctx context.Context) LoadResult
	ApplyFilters(plots []models.Plot, filters models.Filters) []models.Plot
	Save(plot models.Plot) (models.Plot, error)
	Find(ctx context.Context, id string) (models.Plot, error)
	UserPlots() []models.Plot
}

type PlotService struct {
	mu      sync.Mutex
	store   storage.StoreInterface
	seed    SeedSourceInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	now     func() time.Time
	lastID  int64
}

func NewPlotService(store storage.StoreInterface, seed SeedSourceInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) PlotServiceInterface {
	return &PlotService{
		store:   store,
		seed:    seed,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// LoadAll returns the seed listing followed by the locally saved plots, in
// their stored order and without deduplication.
func (ps *PlotService) LoadAll(ctx context.Context) LoadResult {
	var res LoadResult

	seed, err := ps.seed.Fetch(ctx)
	if err != nil {
		ps.logger.Errorf(providers.TypeApp, "Seed listing unavailable: %s", err)
		res.Status = seedUnavailableStatus
	}
	user := ps.UserPlots()

	res.Plots = make([]models.Plot, 0, len(seed)+len(user))
	res.Plots = append(res.Plots, seed...)
	res.Plots = append(res.Plots, user...)
	res.SeedCount = len(seed)

	ps.metrics.SetPlotsTotal("seed", len(seed))
	ps.metrics.SetPlotsTotal("user", len(user))
	return res
}

func (ps *PlotService) ApplyFilters(plots []models.Plot, filters models.Filters) []models.Plot {
	return ApplyFilters(plots, filters)
}

// ApplyFilters keeps the plots that satisfy every set filter, preserving order.
func ApplyFilters(plots []models.Plot, filters models.Filters) []models.Plot {
	out := make([]models.Plot, 0, len(plots))
	for _, p := range plots {
		if filters.MaxHives != nil && p.Hives.Int() > *filters.MaxHives {
			continue
		}
		if filters.LandType != "" && p.LandType != filters.LandType {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (ps *PlotService) rawUserPlots() []json.RawMessage {
	var raw []json.RawMessage
	if !ps.store.Load(storage.KeyUserPlots, &raw) {
		return nil
	}
	return raw
}

// UserPlots returns the locally saved plots. Entries that no longer decode
// are skipped but stay in the store.
func (ps *PlotService) UserPlots() []models.Plot {
	raw := ps.rawUserPlots()
	plots := make([]models.Plot, 0, len(raw))
	for i, r := range raw {
		var p models.Plot
		if err := json.Unmarshal(r, &p); err != nil {
			ps.logger.Warnf(providers.TypeApp, "Skipping stored plot %d: %s", i, err)
			continue
		}
		plots = append(plots, p)
	}
	return plots
}

func (ps *PlotService) nextID() (string, int64) {
	ms := ps.now().UnixMilli()
	id := ms
	if id <= ps.lastID {
		id = ps.lastID + 1
	}
	ps.lastID = id
	return models.LocalIDPrefix + strconv.FormatInt(id, 10), ms
}

// Save stamps a new local plot and appends it to the stored list. On error
// the stored list is left unchanged.
func (ps *PlotService) Save(plot models.Plot) (models.Plot, error) {
	switch {
	case plot.Geometry.IsPoint():
	case plot.Geometry.IsPolygon():
		if len(plot.Geometry.Polygon) == 0 {
			return models.Plot{}, models.ErrInvalidGeometry
		}
	default:
		return models.Plot{}, models.ErrInvalidGeometry
	}
	if err := detailsOf(plot).Validate(); err != nil {
		return models.Plot{}, err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	id, ts := ps.nextID()
	plot.ID = models.NewPlotID(id)
	plot.IsUserCreated = true
	plot.Timestamp = ts

	encoded, err := json.Marshal(plot)
	if err != nil {
		return models.Plot{}, fmt.Errorf("encode plot: %w", err)
	}
	raw := append(ps.rawUserPlots(), encoded)
	if err := ps.store.Save(storage.KeyUserPlots, raw); err != nil {
		return models.Plot{}, fmt.Errorf("save plot %s: %w", id, err)
	}

	ps.logger.Infof(providers.TypePost, "Saved plot %s (%s, %s)", id, plot.LandType, plot.Geometry.Kind)
	ps.metrics.SetPlotsTotal("user", len(raw))
	return plot, nil
}

// Find looks a plot up by id. Local ids are only ever issued by Save, so
// they are searched for without fetching the seed listing.
func (ps *PlotService) Find(ctx context.Context, id string) (models.Plot, error) {
	var candidates []models.Plot
	if models.NewPlotID(id).IsLocal() {
		candidates = ps.UserPlots()
	} else {
		candidates = ps.LoadAll(ctx).Plots
	}
	for _, p := range candidates {
		if p.ID.String() == id {
			return p, nil
		}
	}
	return models.Plot{}, fmt.Errorf("%s: %w", id, ErrPlotNotFound)
}
