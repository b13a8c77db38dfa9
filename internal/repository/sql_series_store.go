package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"EconDash/internal/domain/models"
	pkgch "EconDash/pkg/clickhouse"
	applogger "EconDash/pkg/logger"

	_ "modernc.org/sqlite"
)

const (
	DriverClickHouse = "clickhouse"
	DriverSQLite     = "sqlite"
)

// SQLSeriesStore serves the "sql" source kind. Queries run against the
// shared ClickHouse pool or a per-DSN SQLite database and must select the
// configured date and value columns. Up to two "?" placeholders are bound
// to the window start and end as YYYY-MM-DD strings.
type SQLSeriesStore struct {
	ch *sql.DB
	l  *applogger.Logger

	mu     sync.Mutex
	sqlite map[string]*sql.DB
}

// NewSQLSeriesStore creates the store. ch may be nil when no ClickHouse
// is configured.
func NewSQLSeriesStore(ch *pkgch.Client, l *applogger.Logger) *SQLSeriesStore {
	s := &SQLSeriesStore{l: l, sqlite: make(map[string]*sql.DB)}
	if ch != nil {
		s.ch = ch.DB()
	}
	return s
}

func (s *SQLSeriesStore) Kind() string { return models.KindSQL }

func (s *SQLSeriesStore) Fetch(ctx context.Context, spec models.SourceSpec, window models.Window) (*models.RawTable, error) {
	db, err := s.db(spec)
	if err != nil {
		return nil, err
	}

	args, err := bindWindow(spec.Query, window)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := db.QueryContext(ctx, spec.Query, args...)
	if err != nil {
		s.l.Error("sql series query error",
			applogger.String("driver", spec.Driver),
			applogger.String("source", spec.Name.String()),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("query %s: %w", spec.Name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	table := &models.RawTable{Source: spec.Driver + ":" + spec.Name.String(), Columns: cols}

	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", spec.Name, err)
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = stringify(v)
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	s.l.Debug("sql series query",
		applogger.String("driver", spec.Driver),
		applogger.String("source", spec.Name.String()),
		applogger.Int("rows", len(table.Rows)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return table, nil
}

func (s *SQLSeriesStore) db(spec models.SourceSpec) (*sql.DB, error) {
	switch spec.Driver {
	case "", DriverClickHouse:
		if s.ch == nil {
			return nil, fmt.Errorf("clickhouse is not configured")
		}
		return s.ch, nil
	case DriverSQLite:
		s.mu.Lock()
		defer s.mu.Unlock()
		if db, ok := s.sqlite[spec.DSN]; ok {
			return db, nil
		}
		db, err := sql.Open("sqlite", spec.DSN)
		if err != nil {
			return nil, fmt.Errorf("sqlite open: %w", err)
		}
		db.SetMaxOpenConns(1)
		s.sqlite[spec.DSN] = db
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", spec.Driver)
	}
}

// Close releases SQLite handles. The ClickHouse pool is owned elsewhere.
func (s *SQLSeriesStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for dsn, db := range s.sqlite {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.sqlite, dsn)
	}
	return firstErr
}

func bindWindow(query string, window models.Window) ([]any, error) {
	switch n := strings.Count(query, "?"); n {
	case 0:
		return nil, nil
	case 1:
		return []any{window.Start.String()}, nil
	case 2:
		end := window.End
		if end.IsZero() {
			end = models.DateOf(time.Now().UTC())
		}
		return []any{window.Start.String(), end.String()}, nil
	default:
		return nil, fmt.Errorf("query has %d placeholders, at most 2 supported", n)
	}
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(models.DateLayout)
		}
		return x.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(x, 10)
	case *float64:
		if x == nil {
			return ""
		}
		return strconv.FormatFloat(*x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
