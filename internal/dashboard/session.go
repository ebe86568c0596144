package dashboard

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/KaramelBytes/housing-explorer/internal/analysis"
	"github.com/KaramelBytes/housing-explorer/internal/dataset"
	"github.com/KaramelBytes/housing-explorer/internal/logging"
	"github.com/KaramelBytes/housing-explorer/internal/metrics"
)

// EventKind names a user action.
type EventKind string

const (
	EventLoadBuiltin  EventKind = "load_builtin"
	EventUpload       EventKind = "upload"
	EventExplore      EventKind = "explore"
	EventManualPoints EventKind = "manual_points"
)

// Event is one user action. Only the fields of its kind are read.
type Event struct {
	Kind       EventKind
	UploadName string
	UploadData []byte
	Map        MapRequest
	Points     []dataset.PointInput

	// DefaultPoints is the number of default points used when Points is empty.
	DefaultPoints int
}

// Update carries the panels recomputed by an event. Panels an event does not
// affect are nil. LoadErr is the outcome of the load performed by this event.
type Update struct {
	Overview   *Panel[OverviewPanel]   `json:"overview,omitempty"`
	Map        *Panel[MapPanel]        `json:"map,omitempty"`
	Statistics *Panel[StatisticsPanel] `json:"statistics,omitempty"`
	Manual     *Panel[EntryPanel]      `json:"manual,omitempty"`
	LoadErr    error                   `json:"-"`
}

// Session holds one user's dataset and selections. Events are handled one at a
// time; each runs the whole chain from the dataset to the charts.
type Session struct {
	ID string

	mu      sync.Mutex
	cfg     Config
	loader  *dataset.Loader
	snaps   *analysis.SnapshotCache
	log     *zap.Logger
	ds      *dataset.Dataset
	loadErr error
	mapReq  MapRequest
}

// NewSession returns an empty session sharing the given loader and snapshot
// cache.
func NewSession(id string, cfg Config, loader *dataset.Loader, snaps *analysis.SnapshotCache, log *zap.Logger) *Session {
	return &Session{
		ID:     id,
		cfg:    cfg,
		loader: loader,
		snaps:  snaps,
		log:    logging.OrNop(log).With(zap.String("session_id", id)),
	}
}

// Handle applies ev and returns the recomputed panels.
func (s *Session) Handle(ev Event) Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Debug("handling event", zap.String("event", string(ev.Kind)))

	switch ev.Kind {
	case EventLoadBuiltin:
		s.load(dataset.FileSource(s.cfg.BuiltinPath))
		return s.loaded()
	case EventUpload:
		s.load(dataset.UploadSource(ev.UploadName, ev.UploadData))
		return s.loaded()
	case EventExplore:
		s.mapReq = ev.Map
		m := s.mapPanel()
		return Update{Map: &m}
	case EventManualPoints:
		m := s.manualPanel(ev.Points, ev.DefaultPoints)
		return Update{Manual: &m}
	default:
		s.log.Warn("unknown event", zap.String("event", string(ev.Kind)))
		return Update{}
	}
}

// Overview returns the current overview panel.
func (s *Session) Overview() Panel[OverviewPanel] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overviewPanel()
}

// Map returns the map panel for the last map request.
func (s *Session) Map() Panel[MapPanel] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapPanel()
}

// Statistics returns the current statistics panel.
func (s *Session) Statistics() Panel[StatisticsPanel] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statisticsPanel()
}

// Rows returns a page of the raw data table.
func (s *Session) Rows(offset, limit int) Panel[RowsPage] {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := metrics.NewTimer()
	content, err := Rows(s.ds, offset, limit)
	p := panelOf(content, s.explain(err))
	s.observe("rows", t, p.Warning)
	return p
}

// Dataset returns the loaded dataset, or nil.
func (s *Session) Dataset() *dataset.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ds
}

// Close drops the session's dataset and evicts it from the shared caches when no
// other session holds it.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release(s.ds)
	s.ds, s.loadErr, s.mapReq = nil, nil, MapRequest{}
}

func (s *Session) load(src dataset.Source) {
	ds, err := s.loader.Acquire(src)
	// acquire before releasing so reloading the same source keeps the entry
	s.release(s.ds)
	// a failed load leaves nothing behind; panels show the error
	s.ds, s.loadErr = ds, err
	s.mapReq = MapRequest{}
}

func (s *Session) release(ds *dataset.Dataset) {
	if ds == nil || !s.loader.Release(ds) || s.snaps == nil {
		return
	}
	if n := s.snaps.Forget(ds.Fingerprint()); n > 0 {
		s.log.Debug("snapshots evicted", zap.Int("count", n))
	}
}

func (s *Session) loaded() Update {
	u := s.all()
	u.LoadErr = s.loadErr
	return u
}

func (s *Session) all() Update {
	o := s.overviewPanel()
	m := s.mapPanel()
	st := s.statisticsPanel()
	return Update{Overview: &o, Map: &m, Statistics: &st}
}

func (s *Session) overviewPanel() Panel[OverviewPanel] {
	t := metrics.NewTimer()
	p := Overview(s.ds, s.loadErr, s.cfg.HeadRows)
	s.observe("overview", t, p.Warning)
	return p
}

func (s *Session) mapPanel() Panel[MapPanel] {
	t := metrics.NewTimer()
	content, err := Explore(s.ds, s.mapReq)
	p := panelOf(content, s.explain(err))
	if errors.Is(err, analysis.ErrNoNumericColumns) {
		p.Warning += ". Please make sure the file is a valid CSV with numeric columns for longitude, latitude and price."
	}
	s.observe("explore", t, p.Warning)
	return p
}

func (s *Session) statisticsPanel() Panel[StatisticsPanel] {
	t := metrics.NewTimer()
	content, err := Statistics(s.ds, s.cfg.StatisticsOptions(), s.snaps)
	p := panelOf(content, s.explain(err))
	s.observe("statistics", t, p.Warning)
	return p
}

func (s *Session) manualPanel(points []dataset.PointInput, defaults int) Panel[EntryPanel] {
	t := metrics.NewTimer()
	p := panelOf(ManualEntry(points, defaults, s.cfg.MaxManualPoints, s.cfg.PlaceholderPrice))
	s.observe("manual", t, p.Warning)
	return p
}

func (s *Session) observe(panel string, t *metrics.Timer, warning string) {
	d := t.ObservePanel(panel)
	if warning != "" {
		metrics.PanelErrors.WithLabelValues(panel).Inc()
		s.log.Info("panel degraded", zap.String("panel", panel), zap.String("warning", warning))
		return
	}
	s.log.Debug("panel computed", zap.String("panel", panel), zap.Duration("elapsed", d))
}

// explain replaces the missing-dataset error with the load failure behind it.
func (s *Session) explain(err error) error {
	if errors.Is(err, ErrNoDataset) && s.loadErr != nil {
		return fmt.Errorf("could not load the dataset: %w", s.loadErr)
	}
	return err
}
