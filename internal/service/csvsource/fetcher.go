package csvsource

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"EconDash/internal/domain/models"
	drepo "EconDash/internal/domain/repository"
	apphttp "EconDash/pkg/http"
)

// Parse reads a headed CSV document into a RawTable. A UTF-8 BOM on the
// first header cell is stripped and short rows are padded.
func Parse(r io.Reader, source string) (*models.RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: empty csv", models.ErrSchemaMismatch, source)
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	table := &models.RawTable{Source: source, Columns: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		row := make([]string, len(header))
		copy(row, rec)
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// FileFetcher reads local CSV files.
type FileFetcher struct{}

func NewFileFetcher() drepo.SourceFetcher { return &FileFetcher{} }

func (f *FileFetcher) Kind() string { return models.KindCSVFile }

// Fetch reads spec.Path. The window is applied by the loader.
func (f *FileFetcher) Fetch(_ context.Context, spec models.SourceSpec, _ models.Window) (*models.RawTable, error) {
	fh, err := os.Open(spec.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", spec.Path, err)
	}
	defer fh.Close()
	return Parse(fh, "file:"+spec.Path)
}

// URLFetcher downloads a remote CSV.
type URLFetcher struct {
	client *apphttp.Client
}

func NewURLFetcher(client *apphttp.Client) drepo.SourceFetcher {
	return &URLFetcher{client: client}
}

func (f *URLFetcher) Kind() string { return models.KindCSVURL }

// Fetch downloads spec.URL. The window is applied by the loader.
func (f *URLFetcher) Fetch(ctx context.Context, spec models.SourceSpec, _ models.Window) (*models.RawTable, error) {
	body, err := f.client.GetBytes(ctx, spec.URL, nil, map[string]string{"Accept": "text/csv"})
	if err != nil {
		return nil, err
	}
	return Parse(bytes.NewReader(body), spec.URL)
}
