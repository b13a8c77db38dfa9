package usecase

import (
	"context"
	"fmt"
	"time"

	"EconDash/internal/domain/models"
	domrepo "EconDash/internal/domain/repository"
	applogger "EconDash/pkg/logger"
)

// TableJoined selects the aligned table as the dashboard table.
const TableJoined = "joined"

// PipelineConfig is everything one run needs.
type PipelineConfig struct {
	Profile string
	Sources []models.SourceSpec
	Window  models.Window
	Plan    []models.JoinStep
	Columns []models.Metric
	Missing models.MissingPolicy
	// Table is TableJoined or the metric whose series the dashboard
	// table shows.
	Table string
}

// Result is the read-only outcome of a run.
type Result struct {
	Profile     string
	Series      []models.TimeSeries
	Joined      models.JoinedTable
	Matrix      *models.CorrelationMatrix
	Table       models.JoinedTable
	GeneratedAt time.Time
}

// SeriesByMetric returns the loaded series for m.
func (r *Result) SeriesByMetric(m models.Metric) (models.TimeSeries, bool) {
	for _, s := range r.Series {
		if s.Metric == m {
			return s, true
		}
	}
	return models.TimeSeries{}, false
}

// Pipeline loads, aligns and correlates the configured sources.
type Pipeline struct {
	cfg       PipelineConfig
	loader    *SourceLoader
	metrics   domrepo.Metrics
	publisher domrepo.SnapshotPublisher
	l         *applogger.Logger
	now       func() time.Time
}

func NewPipeline(cfg PipelineConfig, loader *SourceLoader, metrics domrepo.Metrics, publisher domrepo.SnapshotPublisher, l *applogger.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, loader: loader, metrics: metrics, publisher: publisher, l: l, now: time.Now}
}

// Run executes one pass. Sources are fetched sequentially and any source
// failure aborts the run. Snapshot publishing failures are logged only.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	started := p.now()
	res := &Result{Profile: p.cfg.Profile, Series: make([]models.TimeSeries, 0, len(p.cfg.Sources))}

	byMetric := make(map[models.Metric]models.TimeSeries, len(p.cfg.Sources))
	for _, spec := range p.cfg.Sources {
		s, err := p.loader.Load(ctx, spec, p.cfg.Window)
		if err != nil {
			return nil, &models.PipelineError{Stage: "load", Err: err}
		}
		res.Series = append(res.Series, s)
		byMetric[s.Metric] = s
	}

	joined, err := Align(byMetric, p.cfg.Plan)
	if err != nil {
		p.metrics.RecordError("align")
		return nil, &models.PipelineError{Stage: "align", Err: err}
	}
	if len(p.cfg.Columns) > 0 {
		if joined, err = Project(joined, p.cfg.Columns); err != nil {
			p.metrics.RecordError("align")
			return nil, &models.PipelineError{Stage: "project", Err: err}
		}
	}
	if err := joined.Validate(); err != nil {
		return nil, &models.PipelineError{Stage: "align", Err: err}
	}
	res.Joined = joined
	p.metrics.RecordJoin(joined.Len())
	if joined.Len() == 0 {
		p.l.Warn("aligned table is empty", applogger.Error(models.ErrEmptyJoin))
	}

	res.Matrix, err = Correlate(joined, p.cfg.Missing)
	if err != nil {
		return nil, &models.PipelineError{Stage: "correlate", Err: err}
	}
	p.metrics.RecordCorrelation(res.Matrix)
	for _, pair := range res.Matrix.Pairs() {
		p.l.Debug("correlation",
			applogger.String("a", string(pair.A)),
			applogger.String("b", string(pair.B)),
			applogger.Float64("r", pair.R),
		)
	}

	res.Table, err = p.table(res, byMetric)
	if err != nil {
		return nil, &models.PipelineError{Stage: "table", Err: err}
	}
	res.GeneratedAt = p.now().UTC()

	p.l.Info("pipeline finished",
		applogger.String("profile", p.cfg.Profile),
		applogger.Int("sources", len(res.Series)),
		applogger.Int("rows", joined.Len()),
		applogger.Duration("duration_ms", time.Since(started)),
	)

	p.publish(ctx, res)
	return res, nil
}

func (p *Pipeline) table(res *Result, byMetric map[models.Metric]models.TimeSeries) (models.JoinedTable, error) {
	if p.cfg.Table == "" || p.cfg.Table == TableJoined {
		return res.Joined, nil
	}
	m, err := models.ParseMetric(p.cfg.Table)
	if err != nil {
		return models.JoinedTable{}, err
	}
	s, ok := byMetric[m]
	if !ok {
		return models.JoinedTable{}, fmt.Errorf("%w: table series %q not loaded", models.ErrSchemaMismatch, m)
	}
	return models.TableFromSeries(s), nil
}

func (p *Pipeline) publish(ctx context.Context, res *Result) {
	if p.publisher == nil {
		return
	}
	snap := &models.Snapshot{
		Profile:     res.Profile,
		GeneratedAt: res.GeneratedAt,
		Start:       p.cfg.Window.Start,
		Rows:        res.Joined.Len(),
		Matrix:      res.Matrix,
	}
	if err := p.publisher.Publish(ctx, snap); err != nil {
		p.metrics.RecordError("publish")
		p.l.Error("snapshot publish failed", applogger.Error(err))
	}
}
