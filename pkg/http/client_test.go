package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBytesStatusErrorHidesSecrets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("bad api_key=" + r.URL.Query().Get("api_key")))
	}))
	defer srv.Close()

	c, err := NewClient()
	require.NoError(t, err)

	q := url.Values{"api_key": {"SECRETKEY123"}, "series_id": {"TOTALSA"}}
	_, err = c.GetBytes(context.Background(), srv.URL+"/series/observations", q, nil)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.NotContains(t, err.Error(), "SECRETKEY123")
	assert.Contains(t, err.Error(), "api_key=xxxxx")
	assert.Contains(t, err.Error(), "series_id=TOTALSA")
}

func TestGetBytesTransportErrorHidesSecrets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c, err := NewClient()
	require.NoError(t, err)

	_, err = c.GetBytes(context.Background(), addr, url.Values{"token": {"SECRETKEY123"}}, nil)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRETKEY123")
}

func TestGetJSONDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "econdash-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"value":42}`))
	}))
	defer srv.Close()

	c, err := NewClient(WithUserAgent("econdash-test"))
	require.NoError(t, err)

	var out struct {
		Value int `json:"value"`
	}
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, nil, &out))
	assert.Equal(t, 42, out.Value)
}
