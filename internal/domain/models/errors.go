package models

import (
	"errors"
	"fmt"
)

var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrSchemaMismatch    = errors.New("schema mismatch")
	ErrUnknownMetric     = errors.New("unknown metric")
	ErrUnknownSourceKind = errors.New("unknown source kind")
	ErrEmptyJoin         = errors.New("join produced no rows")
)

// SourceError reports a failure to load one named source.
type SourceError struct {
	Source Metric
	Kind   string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s (%s): %v", e.Source, e.Kind, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// NewSourceError wraps err for the given source.
func NewSourceError(source Metric, kind string, err error) *SourceError {
	return &SourceError{Source: source, Kind: kind, Err: err}
}

// PipelineError reports which pipeline stage failed.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
