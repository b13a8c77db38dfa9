package fred

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"EconDash/internal/domain/models"
	apphttp "EconDash/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *apphttp.Client {
	t.Helper()
	c, err := apphttp.NewClient()
	require.NoError(t, err)
	return c
}

func TestFetchJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/series/observations", r.URL.Path)
		assert.Equal(t, "TOTALSA", r.URL.Query().Get("series_id"))
		assert.Equal(t, "key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "2019-01-01", r.URL.Query().Get("observation_start"))
		_, _ = w.Write([]byte(`{"observations":[
			{"date":"2019-01-01","value":"16.9"},
			{"date":"2019-02-01","value":"."}]}`))
	}))
	defer srv.Close()

	f := New(newClient(t), Config{APIKey: "key", BaseURL: srv.URL})
	table, err := f.Fetch(context.Background(),
		models.SourceSpec{Name: models.TotalVehicleSales, Series: "TOTALSA"},
		models.Window{Start: models.NewDate(2019, 1, 1)})
	require.NoError(t, err)

	assert.Equal(t, []string{"DATE", "TOTALSA"}, table.Columns)
	assert.Equal(t, [][]string{{"2019-01-01", "16.9"}, {"2019-02-01", "."}}, table.Rows)
}

func TestFetchJSONErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error_code":400,"error_message":"Bad Request. The series does not exist."}`))
	}))
	defer srv.Close()

	f := New(newClient(t), Config{APIKey: "key", BaseURL: srv.URL})
	_, err := f.Fetch(context.Background(), models.SourceSpec{Series: "NOPE"}, models.Window{})
	assert.ErrorContains(t, err, "does not exist")
}

func TestFetchCSVWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "USTRADE", r.URL.Query().Get("id"))
		assert.Equal(t, "2019-01-01", r.URL.Query().Get("cosd"))
		_, _ = w.Write([]byte("observation_date,USTRADE\n2019-01-01,15771.9\n2019-02-01,15759.4\n"))
	}))
	defer srv.Close()

	f := New(newClient(t), Config{GraphURL: srv.URL})
	table, err := f.Fetch(context.Background(),
		models.SourceSpec{Series: "USTRADE"},
		models.Window{Start: models.NewDate(2019, 1, 1)})
	require.NoError(t, err)

	assert.Equal(t, []string{"DATE", "USTRADE"}, table.Columns)
	assert.Len(t, table.Rows, 2)
}

func TestFetchJSONErrorDoesNotLeakKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	f := New(newClient(t), Config{APIKey: "SECRETKEY123", BaseURL: srv.URL})
	_, err := f.Fetch(context.Background(),
		models.SourceSpec{Name: models.TotalVehicleSales, Series: "TOTALSA"},
		models.Window{Start: models.NewDate(2019, 1, 1)})
	require.Error(t, err)
	assert.ErrorContains(t, err, "unexpected status 500")
	assert.NotContains(t, err.Error(), "SECRETKEY123")
}
