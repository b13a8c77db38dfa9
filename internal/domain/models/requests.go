package models

// CorrelationRequest is the query of GET /api/correlation.
type CorrelationRequest struct {
	Format string  `query:"format" default:"matrix" validate:"oneof=matrix pairs"`
	MinAbs float64 `query:"min_abs" validate:"gte=0,lte=1"`
}

// SeriesRequest is the path of GET /api/series/:name.
type SeriesRequest struct {
	Name string `param:"name" validate:"required"`
}
