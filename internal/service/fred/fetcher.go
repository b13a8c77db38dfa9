package fred

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"EconDash/internal/domain/models"
	drepo "EconDash/internal/domain/repository"
	"EconDash/internal/service/csvsource"
	apphttp "EconDash/pkg/http"
)

// DateColumn is the date column name of every FRED table.
const DateColumn = "DATE"

// Config holds FRED endpoints and the optional API key.
type Config struct {
	APIKey   string
	BaseURL  string // JSON API root, e.g. https://api.stlouisfed.org/fred
	GraphURL string // keyless CSV download, e.g. https://fred.stlouisfed.org/graph/fredgraph.csv
}

// Fetcher loads a FRED series as a (DATE, <SERIES>) table. With an API key
// the JSON observations endpoint is used, otherwise the public graph CSV.
type Fetcher struct {
	client *apphttp.Client
	cfg    Config
}

func New(client *apphttp.Client, cfg Config) drepo.SourceFetcher {
	return &Fetcher{client: client, cfg: cfg}
}

func (f *Fetcher) Kind() string { return models.KindFRED }

func (f *Fetcher) Fetch(ctx context.Context, spec models.SourceSpec, window models.Window) (*models.RawTable, error) {
	if f.cfg.APIKey != "" {
		return f.fetchJSON(ctx, spec.Series, window)
	}
	return f.fetchCSV(ctx, spec.Series, window)
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
	ErrorMessage string `json:"error_message"`
}

func (f *Fetcher) fetchJSON(ctx context.Context, series string, window models.Window) (*models.RawTable, error) {
	q := url.Values{}
	q.Set("series_id", series)
	q.Set("api_key", f.cfg.APIKey)
	q.Set("file_type", "json")
	q.Set("observation_start", window.Start.String())
	if !window.End.IsZero() {
		q.Set("observation_end", window.End.String())
	}

	var resp observationsResponse
	if err := f.client.GetJSON(ctx, f.cfg.BaseURL+"/series/observations", q, &resp); err != nil {
		return nil, fmt.Errorf("fred %s: %w", series, err)
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("fred %s: %s", series, resp.ErrorMessage)
	}

	table := &models.RawTable{
		Source:  "fred:" + series,
		Columns: []string{DateColumn, series},
		Rows:    make([][]string, 0, len(resp.Observations)),
	}
	for _, o := range resp.Observations {
		table.Rows = append(table.Rows, []string{o.Date, o.Value})
	}
	return table, nil
}

func (f *Fetcher) fetchCSV(ctx context.Context, series string, window models.Window) (*models.RawTable, error) {
	q := url.Values{}
	q.Set("id", series)
	q.Set("cosd", window.Start.String())
	if !window.End.IsZero() {
		q.Set("coed", window.End.String())
	}

	body, err := f.client.GetBytes(ctx, f.cfg.GraphURL, q, map[string]string{"Accept": "text/csv"})
	if err != nil {
		return nil, fmt.Errorf("fred %s: %w", series, err)
	}
	table, err := csvsource.Parse(bytes.NewReader(body), "fred:"+series)
	if err != nil {
		return nil, fmt.Errorf("fred %s: %w", series, err)
	}
	// The graph export has named its date column both DATE and
	// observation_date over time.
	if len(table.Columns) > 0 {
		table.Columns[0] = DateColumn
	}
	return table, nil
}
