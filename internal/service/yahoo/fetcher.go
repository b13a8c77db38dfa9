package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"EconDash/internal/domain/models"
	drepo "EconDash/internal/domain/repository"
	apphttp "EconDash/pkg/http"
	"EconDash/pkg/util"
)

// Columns are the raw columns of a Yahoo daily history table.
var Columns = []string{"Date", "Open", "High", "Low", "Close", "Volume"}

// Fetcher pulls daily bars from the Yahoo Finance chart API.
type Fetcher struct {
	client  *apphttp.Client
	baseURL string
	now     func() time.Time
}

// New creates a Yahoo fetcher. baseURL is normally
// https://query1.finance.yahoo.com.
func New(client *apphttp.Client, baseURL string) drepo.SourceFetcher {
	return &Fetcher{client: client, baseURL: baseURL, now: time.Now}
}

func (f *Fetcher) Kind() string { return models.KindYahoo }

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int    `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch returns the daily history of spec.Symbol covering window. Null
// cells (holidays, halted sessions) are left empty.
func (f *Fetcher) Fetch(ctx context.Context, spec models.SourceSpec, window models.Window) (*models.RawTable, error) {
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("events", "history")
	q.Set("includeAdjustedClose", "true")
	q.Set("period1", strconv.FormatInt(window.Start.Time().Unix(), 10))
	end := f.now().UTC()
	if !window.End.IsZero() {
		end = window.End.Time().AddDate(0, 0, 1)
	}
	q.Set("period2", strconv.FormatInt(end.Unix(), 10))

	u := fmt.Sprintf("%s/v8/finance/chart/%s", f.baseURL, url.PathEscape(spec.Symbol))
	var chart chartResponse
	if err := f.client.GetJSON(ctx, u, q, &chart); err != nil {
		return nil, fmt.Errorf("yahoo %s: %w", spec.Symbol, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo %s: api error %s: %s", spec.Symbol, chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: no result", spec.Symbol)
	}

	result := chart.Chart.Result[0]
	table := &models.RawTable{Source: "yahoo:" + spec.Symbol, Columns: Columns}
	if len(result.Indicators.Quote) == 0 {
		return table, nil
	}
	quote := result.Indicators.Quote[0]
	table.Rows = make([][]string, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		day := util.ExchangeDay(ts, result.Meta.GMTOffset)
		table.Rows = append(table.Rows, []string{
			day.Format(models.DateLayout),
			cell(quote.Open, i),
			cell(quote.High, i),
			cell(quote.Low, i),
			cell(quote.Close, i),
			cell(quote.Volume, i),
		})
	}
	return table, nil
}

func cell(col []*float64, i int) string {
	if i >= len(col) || col[i] == nil {
		return ""
	}
	return strconv.FormatFloat(*col[i], 'f', -1, 64)
}
