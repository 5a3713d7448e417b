// Package dashboard answers the dashboard's view requests against the
// attached dataset.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/tokyo-flow-dashboard/internal/domain"
	"github.com/couchcryptid/tokyo-flow-dashboard/internal/observability"
)

// ErrNotReady is returned by view methods before a dataset is attached.
var ErrNotReady = errors.New("dataset not loaded")

// fallbackAreaCount is how many areas are preselected when none of the
// configured defaults exist in the dataset.
const fallbackAreaCount = 3

// InteractionRecorder receives every answered view request.
type InteractionRecorder interface {
	Record(ctx context.Context, in domain.Interaction) error
}

// MapQuery selects the map view.
type MapQuery struct {
	Category domain.Category
	Start    domain.Date
	End      domain.Date
}

// SeriesQuery selects the line view.
type SeriesQuery struct {
	Category domain.Category
	Areas    domain.AreaSelection
}

// MapResult is the map panel's table.
type MapResult struct {
	Category domain.Category         `json:"category"`
	Start    domain.Date             `json:"start"`
	End      domain.Date             `json:"end"`
	Dates    []domain.Date           `json:"dates"`
	Points   []domain.GeoObservation `json:"points"`
}

// SeriesResult is the line panel's table.
type SeriesResult struct {
	Category domain.Category   `json:"category"`
	Areas    []string          `json:"areas"`
	Rows     domain.TidySeries `json:"rows"`
}

// CategoryOption is one entry of the category selector.
type CategoryOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Alias string `json:"alias"`
}

// Options describes the controls and initial state of the dashboard page.
type Options struct {
	Categories      []CategoryOption `json:"categories"`
	Areas           []string         `json:"areas"`
	MinDate         *domain.Date     `json:"min_date,omitempty"`
	MaxDate         *domain.Date     `json:"max_date,omitempty"`
	DefaultCategory domain.Category  `json:"default_category"`
	DefaultAreas    []string         `json:"default_areas"`
	Viewport        domain.Viewport  `json:"viewport"`
	LoadedAt        time.Time        `json:"loaded_at"`
}

// Service runs the filter and shape transformations for the HTTP layer.
// The dataset is immutable once attached, so views run concurrently
// without locking.
type Service struct {
	dataset      atomic.Pointer[domain.Dataset]
	recorder     InteractionRecorder
	defaultAreas []string
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// New creates a Service. Pass a nil recorder to disable the interaction log.
func New(recorder InteractionRecorder, defaultAreas []string, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		recorder:     recorder,
		defaultAreas: defaultAreas,
		logger:       logger,
		metrics:      metrics,
	}
}

// Attach publishes ds to subsequent requests.
func (s *Service) Attach(ds *domain.Dataset) {
	vocab := ds.Vocabulary()
	if !vocab.Consistent() {
		s.logger.Warn("area vocabulary mismatch; unmatched areas are left off the map",
			"observations_only", vocab.ObservationsOnly,
			"coordinates_only", vocab.CoordinatesOnly,
		)
	}

	s.metrics.DatasetRows.WithLabelValues("observations").Set(float64(ds.Observations().Len()))
	s.metrics.DatasetRows.WithLabelValues("coordinates").Set(float64(ds.Coordinates().Len()))
	s.metrics.DatasetDates.Set(float64(len(ds.Observations().Dates())))
	s.metrics.UnmatchedAreas.Set(float64(len(vocab.ObservationsOnly) + len(vocab.CoordinatesOnly)))
	s.metrics.DatasetLoaded.Set(1)

	s.dataset.Store(ds)
	s.logger.Info("dataset attached",
		"observation_rows", ds.Observations().Len(),
		"coordinate_rows", ds.Coordinates().Len(),
		"date_columns", len(ds.Observations().Dates()),
	)
}

// CheckReadiness returns nil once a dataset is attached.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.dataset.Load() == nil {
		return ErrNotReady
	}
	return nil
}

// MapView filters by category and date range and joins the totals with the
// coordinate table.
func (s *Service) MapView(ctx context.Context, q MapQuery) (MapResult, error) {
	ds := s.dataset.Load()
	if ds == nil {
		return MapResult{}, ErrNotReady
	}

	start := time.Now()
	filtered := domain.Filter(ds.Observations(), q.Category, q.Start, q.End)
	points := domain.ToGeoTable(filtered, ds.Coordinates())
	s.observe(domain.ViewMap, len(points), start)

	s.record(ctx, domain.NewInteraction(domain.ViewMap, q.Category, len(points)).WithRange(q.Start, q.End))

	return MapResult{
		Category: q.Category,
		Start:    q.Start,
		End:      q.End,
		Dates:    filtered.Dates,
		Points:   points,
	}, nil
}

// SeriesView reshapes the selected areas' rows into long form.
func (s *Service) SeriesView(ctx context.Context, q SeriesQuery) (SeriesResult, error) {
	ds := s.dataset.Load()
	if ds == nil {
		return SeriesResult{}, ErrNotReady
	}

	areas := domain.Areas(q.Areas)
	start := time.Now()
	rows := domain.ToTidySeries(ds.Observations(), q.Category, domain.AreaList(areas))
	s.observe(domain.ViewSeries, len(rows), start)

	s.record(ctx, domain.NewInteraction(domain.ViewSeries, q.Category, len(rows)).WithAreas(areas))

	return SeriesResult{Category: q.Category, Areas: areas, Rows: rows}, nil
}

// Options returns the selector contents and initial selections.
func (s *Service) Options() (Options, error) {
	ds := s.dataset.Load()
	if ds == nil {
		return Options{}, ErrNotReady
	}

	opts := Options{
		Areas:           ds.Areas(),
		DefaultCategory: domain.CategoryAll,
		DefaultAreas:    s.initialAreas(ds),
		Viewport:        ds.Viewport(),
		LoadedAt:        ds.LoadedAt(),
	}
	for _, c := range domain.Categories() {
		opts.Categories = append(opts.Categories, CategoryOption{Label: string(c), Value: string(c), Alias: c.Alias()})
	}
	if first, last, ok := ds.Span(); ok {
		opts.MinDate, opts.MaxDate = &first, &last
	}
	return opts, nil
}

// initialAreas keeps the configured defaults the dataset knows about,
// falling back to the first few areas.
func (s *Service) initialAreas(ds *domain.Dataset) []string {
	known := ds.Areas()
	out := []string{}
	for _, a := range s.defaultAreas {
		if slices.Contains(known, a) {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		out = append(out, known[:min(fallbackAreaCount, len(known))]...)
	}
	return out
}

func (s *Service) observe(view domain.View, rows int, start time.Time) {
	outcome := "ok"
	if rows == 0 {
		outcome = "empty"
	}
	s.metrics.ViewRequests.WithLabelValues(string(view), outcome).Inc()
	s.metrics.ViewRows.WithLabelValues(string(view)).Observe(float64(rows))
	s.metrics.ViewDuration.WithLabelValues(string(view)).Observe(time.Since(start).Seconds())
}

// record forwards the interaction; failures are logged and never reach the user.
func (s *Service) record(ctx context.Context, in domain.Interaction) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, in); err != nil {
		s.metrics.InteractionFails.Inc()
		s.logger.Warn("record interaction failed", "error", err, "view", in.View, "interaction_id", in.ID)
		return
	}
	s.metrics.InteractionsSent.Inc()
}
