package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"EconDash/internal/domain/models"
	"EconDash/internal/domain/repository"
	"EconDash/internal/service/csvsource"
	"EconDash/internal/usecase"
	"EconDash/pkg/config"
	applogger "EconDash/pkg/logger"
	"EconDash/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const confidenceCSV = "TIME,Value\n2019-01,100.1\n2019-02,100.4\n2019-03,99.8\n2019-04,100.9\n"

func newTestApp(t *testing.T, writeFiles bool) *App {
	t.Helper()
	dir := t.TempDir()
	consumer := filepath.Join(dir, "consumer.csv")
	business := filepath.Join(dir, "business.csv")
	if writeFiles {
		require.NoError(t, os.WriteFile(consumer, []byte(confidenceCSV), 0o644))
		require.NoError(t, os.WriteFile(business, []byte(confidenceCSV), 0o644))
	}

	cfg, err := config.Parse([]byte(fmt.Sprintf(`
title: Confidence
sources:
  - {name: consumer_confidence, kind: csv_file, path: %q}
  - {name: business_confidence, kind: csv_file, path: %q}
pipeline:
  join:
    - series: consumer_confidence
    - series: business_confidence
      how: right
dashboard:
  table: joined
`, consumer, business)))
	require.NoError(t, err)
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = time.Second

	log := applogger.Nop()
	loader := usecase.NewSourceLoader([]repository.SourceFetcher{csvsource.NewFileFetcher()}, metrics.Noop{}, log)
	pipeline := usecase.NewPipeline(usecase.PipelineConfig{
		Profile: cfg.Profile,
		Sources: cfg.SourceSpecs(),
		Window:  cfg.Window(),
		Plan:    cfg.JoinPlan(),
		Columns: cfg.Projection(),
		Missing: models.MissingPolicy(cfg.Pipeline.Missing),
		Table:   cfg.Dashboard.Table,
	}, loader, metrics.Noop{}, nil, log)
	return New(cfg, pipeline, nil, log)
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestRunContextServesUntilCancelled(t *testing.T) {
	app := newTestApp(t, true)
	ready := make(chan string, 1)
	app.onReady = func(addr string) { ready <- addr }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- app.RunContext(ctx) }()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("app stopped before ready: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("app not ready")
	}

	code, body := get(t, "http://"+addr+"/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"rows":4`)

	code, body = get(t, "http://"+addr+"/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Confidence")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not shut down")
	}
}

func TestRunContextPipelineFailure(t *testing.T) {
	app := newTestApp(t, false)
	app.onReady = func(string) { t.Error("server must not start after a pipeline failure") }

	err := app.RunContext(context.Background())
	require.Error(t, err)

	var perr *models.PipelineError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "load", perr.Stage)
	assert.ErrorIs(t, err, models.ErrSourceUnavailable)
}

func TestRunContextBindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	app := newTestApp(t, true)
	app.cfg.Server.Port = ln.Addr().(*net.TCPAddr).Port
	app.onReady = func(string) { t.Error("dashboard reported ready on a busy port") }

	err = app.RunContext(context.Background())
	assert.ErrorContains(t, err, "listen")
}
