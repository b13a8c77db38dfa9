package tiingo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"EconDash/internal/domain/models"
	drepo "EconDash/internal/domain/repository"

	"github.com/markcheno/go-quote"
)

// Columns mirror the Yahoo table so both kinds share defaults.
var Columns = []string{"Date", "Open", "High", "Low", "Close", "Volume"}

// QuoteFunc downloads a daily quote; quote.NewQuoteFromTiingo in production.
type QuoteFunc func(symbol, startDate, endDate string, period quote.Period, token string) (quote.Quote, error)

// Fetcher loads daily bars from Tiingo through go-quote.
type Fetcher struct {
	token string
	load  QuoteFunc
	now   func() time.Time
}

func New(token string) drepo.SourceFetcher {
	return NewWithQuoteFunc(token, quote.NewQuoteFromTiingo)
}

func NewWithQuoteFunc(token string, fn QuoteFunc) *Fetcher {
	return &Fetcher{token: token, load: fn, now: time.Now}
}

func (f *Fetcher) Kind() string { return models.KindTiingo }

type result struct {
	q   quote.Quote
	err error
}

// Fetch downloads spec.Symbol. go-quote is not context aware, so the call
// runs in its own goroutine and is abandoned when ctx ends.
func (f *Fetcher) Fetch(ctx context.Context, spec models.SourceSpec, window models.Window) (*models.RawTable, error) {
	if f.token == "" {
		return nil, fmt.Errorf("tiingo %s: token not configured", spec.Symbol)
	}
	end := models.DateOf(f.now().UTC())
	if !window.End.IsZero() {
		end = window.End
	}

	ch := make(chan result, 1)
	go func() {
		q, err := f.load(spec.Symbol, window.Start.String(), end.String(), quote.Daily, f.token)
		ch <- result{q: q, err: err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("tiingo %s: %w", spec.Symbol, ctx.Err())
	case r = <-ch:
	}
	if r.err != nil {
		return nil, fmt.Errorf("tiingo %s: %w", spec.Symbol, r.err)
	}

	q := r.q
	table := &models.RawTable{Source: "tiingo:" + spec.Symbol, Columns: Columns, Rows: make([][]string, 0, len(q.Date))}
	for i, d := range q.Date {
		table.Rows = append(table.Rows, []string{
			d.Format(models.DateLayout),
			format(q.Open, i),
			format(q.High, i),
			format(q.Low, i),
			format(q.Close, i),
			format(q.Volume, i),
		})
	}
	return table, nil
}

func format(col []float64, i int) string {
	if i >= len(col) {
		return ""
	}
	return strconv.FormatFloat(col[i], 'f', -1, 64)
}
