package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"math"
	"net/http"

	"EconDash/internal/domain/models"
	"EconDash/internal/usecase"
	xhttp "EconDash/pkg/http"
	xlogger "EconDash/pkg/logger"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// Options tune the rendered page.
type Options struct {
	Title      string
	Colorscale string
	Precision  int32
	// HealthCheck, when set, pings a backing store on /healthz.
	HealthCheck func(ctx context.Context) error
}

// DashboardHandler serves the dashboard page and the JSON view of the same
// pipeline result. The result is computed before the server starts and is
// never mutated, so handlers read it without locking.
type DashboardHandler struct {
	logger *xlogger.Logger
	result *usecase.Result
	opts   Options
}

func NewDashboardHandler(logger *xlogger.Logger, result *usecase.Result, opts Options) *DashboardHandler {
	if opts.Colorscale == "" {
		opts.Colorscale = "Viridis"
	}
	if opts.Title == "" {
		opts.Title = "US Economy Dashboard"
	}
	return &DashboardHandler{logger: logger, result: result, opts: opts}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index, h.requireResult)
	e.GET("/healthz", h.Health, h.requireResult)

	g := e.Group("/api", h.requireResult)
	g.GET("/series", h.ListSeries)
	g.GET("/series/:name", h.GetSeries)
	g.GET("/joined", h.Joined)
	g.GET("/correlation", h.Correlation)
}

// requireResult answers 503 until a pipeline result is available.
func (h *DashboardHandler) requireResult(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.result == nil {
			return xhttp.AppErrorResponse(c, xhttp.UnavailableErrorf("no pipeline result"))
		}
		return next(c)
	}
}

func (h *DashboardHandler) Index(c echo.Context) error {
	view, err := h.page()
	if err != nil {
		h.logger.Error("dashboard view error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, view); err != nil {
		h.logger.Error("dashboard render error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (h *DashboardHandler) page() (*pageView, error) {
	view := &pageView{Title: h.opts.Title, Charts: make([]chartView, 0, len(h.result.Series))}
	for i, s := range h.result.Series {
		fig, err := toJS(lineFigure(s))
		if err != nil {
			return nil, fmt.Errorf("chart %s: %w", s.Metric, err)
		}
		view.Charts = append(view.Charts, chartView{
			ID:     fmt.Sprintf("chart-%d-%s", i, s.Metric),
			Title:  seriesTitle(s),
			Figure: fig,
		})
	}
	heat, err := toJS(heatmapFigure(h.result.Matrix, h.opts.Colorscale, h.opts.Precision))
	if err != nil {
		return nil, fmt.Errorf("heatmap: %w", err)
	}
	view.Heatmap = heat
	view.Table = buildTable(h.result.Table)
	return view, nil
}

func (h *DashboardHandler) Health(c echo.Context) error {
	if h.opts.HealthCheck != nil {
		if err := h.opts.HealthCheck(c.Request().Context()); err != nil {
			h.logger.Warn("health check failed", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.UnavailableErrorf("store unavailable").WithError(err))
		}
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"profile":      h.result.Profile,
		"generated_at": h.result.GeneratedAt,
		"series":       len(h.result.Series),
		"rows":         h.result.Joined.Len(),
	})
}

type seriesSummary struct {
	Metric models.Metric `json:"metric"`
	Title  string        `json:"title"`
	Points int           `json:"points"`
	First  *models.Date  `json:"first,omitempty"`
	Last   *models.Date  `json:"last,omitempty"`
}

func (h *DashboardHandler) ListSeries(c echo.Context) error {
	out := make([]seriesSummary, 0, len(h.result.Series))
	for _, s := range h.result.Series {
		sum := seriesSummary{Metric: s.Metric, Title: seriesTitle(s), Points: s.Len()}
		if n := s.Len(); n > 0 {
			first, last := s.Points[0].Date, s.Points[n-1].Date
			sum.First, sum.Last = &first, &last
		}
		out = append(out, sum)
	}
	return xhttp.SuccessResponse(c, out)
}

func (h *DashboardHandler) GetSeries(c echo.Context) error {
	req := &models.SeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	m, err := models.ParseMetric(req.Name)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("unknown series %q", req.Name).
			WithParam("loaded", h.loaded()).
			WithError(err))
	}
	s, ok := h.result.SeriesByMetric(m)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("series %q is not loaded", m).WithParam("loaded", h.loaded()))
	}
	s.Title = seriesTitle(s)
	return xhttp.SuccessResponse(c, s)
}

func (h *DashboardHandler) loaded() []models.Metric {
	out := make([]models.Metric, 0, len(h.result.Series))
	for _, s := range h.result.Series {
		out = append(out, s.Metric)
	}
	return out
}

func (h *DashboardHandler) Joined(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.result.Joined)
}

func (h *DashboardHandler) Correlation(c echo.Context) error {
	req := &models.CorrelationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if req.Format == "matrix" {
		return xhttp.SuccessResponse(c, h.result.Matrix)
	}

	pairs := h.result.Matrix.Pairs()
	out := make([]models.Pair, 0, len(pairs))
	for _, p := range pairs {
		if req.MinAbs > 0 && (math.IsNaN(p.R) || math.Abs(p.R) < req.MinAbs) {
			continue
		}
		out = append(out, p)
	}
	return xhttp.SuccessResponse(c, out)
}
