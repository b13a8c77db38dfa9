package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"EconDash/internal/domain/models"
	applogger "EconDash/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSQLite(t *testing.T) string {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "series.db")
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE oil (day TEXT, close REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO oil VALUES
		('2018-12-31', 45.41), ('2019-01-02', 46.54), ('2019-01-03', 47.09), ('2019-01-04', NULL)`)
	require.NoError(t, err)
	return dsn
}

func TestSQLSeriesStoreSQLite(t *testing.T) {
	dsn := seedSQLite(t)
	store := NewSQLSeriesStore(nil, applogger.Nop())
	defer store.Close()

	spec := models.SourceSpec{
		Name:   models.CrudeOil,
		Kind:   models.KindSQL,
		Driver: DriverSQLite,
		DSN:    dsn,
		Query:  `SELECT day AS date, close AS value FROM oil WHERE day >= ? ORDER BY day`,
	}
	table, err := store.Fetch(context.Background(), spec, models.Window{Start: models.NewDate(2019, 1, 1)})
	require.NoError(t, err)

	assert.Equal(t, []string{"date", "value"}, table.Columns)
	assert.Equal(t, [][]string{
		{"2019-01-02", "46.54"},
		{"2019-01-03", "47.09"},
		{"2019-01-04", ""},
	}, table.Rows)
}

func TestSQLSeriesStoreWindowEnd(t *testing.T) {
	dsn := seedSQLite(t)
	store := NewSQLSeriesStore(nil, applogger.Nop())
	defer store.Close()

	spec := models.SourceSpec{
		Name:   models.CrudeOil,
		Driver: DriverSQLite,
		DSN:    dsn,
		Query:  `SELECT day, close FROM oil WHERE day BETWEEN ? AND ? ORDER BY day`,
	}
	table, err := store.Fetch(context.Background(), spec,
		models.Window{Start: models.NewDate(2019, 1, 1), End: models.NewDate(2019, 1, 2)})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"2019-01-02", "46.54"}}, table.Rows)
}

func TestSQLSeriesStoreErrors(t *testing.T) {
	store := NewSQLSeriesStore(nil, applogger.Nop())
	defer store.Close()

	_, err := store.Fetch(context.Background(), models.SourceSpec{Driver: DriverClickHouse, Query: "SELECT 1"}, models.Window{})
	assert.ErrorContains(t, err, "clickhouse is not configured")

	_, err = store.Fetch(context.Background(), models.SourceSpec{Driver: DriverSQLite, DSN: ":memory:", Query: "SELECT ?, ?, ?"}, models.Window{})
	assert.ErrorContains(t, err, "placeholders")

	_, err = store.Fetch(context.Background(), models.SourceSpec{Driver: "postgres", Query: "SELECT 1"}, models.Window{})
	assert.Error(t, err)
}
