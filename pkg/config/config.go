package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"EconDash/internal/domain/models"
	"EconDash/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// TableJoined selects the joined table for the dashboard data table.
const TableJoined = "joined"

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Profile     string `yaml:"profile" default:"us_economy" validate:"required"`
	Title       string `yaml:"title" default:"US Economy Dashboard"`
	Server      struct {
		Host            string        `yaml:"host" default:"127.0.0.1"`
		Port            int           `yaml:"port" default:"8050" validate:"min=1,max=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORS            bool          `yaml:"cors"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error fatal panic"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	HTTPClient struct {
		Timeout   time.Duration `yaml:"timeout" default:"30s"`
		UserAgent string        `yaml:"user_agent" default:"Mozilla/5.0 (compatible; EconDash/1.0)"`
		Proxy     string        `yaml:"proxy"`
	} `yaml:"http_client"`
	FRED struct {
		APIKey   string `yaml:"api_key"`
		BaseURL  string `yaml:"base_url" default:"https://api.stlouisfed.org/fred"`
		GraphURL string `yaml:"graph_url" default:"https://fred.stlouisfed.org/graph/fredgraph.csv"`
	} `yaml:"fred"`
	Yahoo struct {
		BaseURL string `yaml:"base_url" default:"https://query1.finance.yahoo.com"`
	} `yaml:"yahoo"`
	Tiingo struct {
		Token string `yaml:"token"`
	} `yaml:"tiingo"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"default"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"econdash.snapshots"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"kafka"`
	Pipeline struct {
		Start   string     `yaml:"start" default:"2019-01-01" validate:"required"`
		End     string     `yaml:"end"`
		Join    []JoinStep `yaml:"join" validate:"required,min=1,dive"`
		Columns []string   `yaml:"columns"`
		Missing string     `yaml:"missing" default:"pairwise" validate:"oneof=pairwise complete"`
	} `yaml:"pipeline"`
	Dashboard struct {
		Table      string `yaml:"table"`
		Colorscale string `yaml:"colorscale" default:"Viridis"`
		Precision  int32  `yaml:"precision" default:"2" validate:"min=0,max=6"`
	} `yaml:"dashboard"`
	Sources []SourceConfig `yaml:"sources" validate:"required,min=1,dive"`
}

// JoinStep merges one configured source into the running table.
type JoinStep struct {
	Series string `yaml:"series" validate:"required"`
	How    string `yaml:"how" default:"inner" validate:"oneof=inner right left outer"`
}

// FilterConfig keeps raw rows where Column == Equals.
type FilterConfig struct {
	Column string `yaml:"column" validate:"required"`
	Equals string `yaml:"equals"`
}

// SourceConfig declares one series.
type SourceConfig struct {
	Name        string        `yaml:"name" validate:"required"`
	Kind        string        `yaml:"kind" validate:"required"`
	Title       string        `yaml:"title"`
	Series      string        `yaml:"series"`
	Symbol      string        `yaml:"symbol"`
	URL         string        `yaml:"url" validate:"omitempty,url"`
	Path        string        `yaml:"path"`
	Driver      string        `yaml:"driver" validate:"omitempty,oneof=clickhouse sqlite"`
	DSN         string        `yaml:"dsn"`
	Query       string        `yaml:"query"`
	DateColumn  string        `yaml:"date_column"`
	ValueColumn string        `yaml:"value_column"`
	Filter      *FilterConfig `yaml:"filter"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML, applies defaults and validates.
func Parse(b []byte) (*Config, error) {
	c, err := decode(b)
	if err != nil {
		return nil, err
	}
	if err := c.finalize(); err != nil {
		return nil, err
	}
	return c, nil
}

// decode applies struct defaults before unmarshalling so explicit zero
// values in YAML (false, 0) are kept. Join steps only exist after
// unmarshalling and get their defaults afterwards.
func decode(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for i := range c.Pipeline.Join {
		if err := defaults.Set(&c.Pipeline.Join[i]); err != nil {
			return nil, fmt.Errorf("apply defaults: %w", err)
		}
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// A .env file in the working directory is honoured when present.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := decode(b)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("FRED_API_KEY"); v != "" {
		c.FRED.APIKey = v
	}
	if v := os.Getenv("TIINGO_TOKEN"); v != "" {
		c.Tiingo.Token = v
	}
	if v := os.Getenv("SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SERVER_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("PIPELINE_START"); v != "" {
		c.Pipeline.Start = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}

	if err := c.finalize(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) finalize() error {
	for i := range c.Sources {
		c.Sources[i].applyKindDefaults()
	}
	if len(c.Pipeline.Columns) == 0 {
		for _, step := range c.Pipeline.Join {
			c.Pipeline.Columns = append(c.Pipeline.Columns, step.Series)
		}
	}
	if c.Dashboard.Table == "" && len(c.Sources) > 0 {
		c.Dashboard.Table = c.Sources[0].Name
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// applyKindDefaults fills the raw column names each provider emits.
func (s *SourceConfig) applyKindDefaults() {
	switch s.Kind {
	case models.KindFRED:
		if s.DateColumn == "" {
			s.DateColumn = "DATE"
		}
		if s.ValueColumn == "" {
			s.ValueColumn = s.Series
		}
	case models.KindYahoo, models.KindTiingo:
		if s.DateColumn == "" {
			s.DateColumn = "Date"
		}
		if s.ValueColumn == "" {
			s.ValueColumn = "Close"
		}
	case models.KindCSVFile, models.KindCSVURL:
		if s.DateColumn == "" {
			s.DateColumn = "TIME"
		}
		if s.ValueColumn == "" {
			s.ValueColumn = "Value"
		}
	case models.KindSQL:
		if s.Driver == "" {
			s.Driver = "clickhouse"
		}
		if s.DateColumn == "" {
			s.DateColumn = "date"
		}
		if s.ValueColumn == "" {
			s.ValueColumn = "value"
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	start, err := util.ParseDay(c.Pipeline.Start)
	if err != nil {
		return fmt.Errorf("pipeline.start: %w", err)
	}
	if c.Pipeline.End != "" {
		end, err := util.ParseDay(c.Pipeline.End)
		if err != nil {
			return fmt.Errorf("pipeline.end: %w", err)
		}
		if end.Before(start) {
			return fmt.Errorf("pipeline.end must not be before pipeline.start")
		}
	}

	names := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if _, err := models.ParseMetric(s.Name); err != nil {
			return fmt.Errorf("sources[%d].name: %w", i, err)
		}
		if names[s.Name] {
			return fmt.Errorf("sources[%d].name: duplicate source %q", i, s.Name)
		}
		names[s.Name] = true
		if err := s.validateKind(); err != nil {
			return fmt.Errorf("sources[%d] (%s): %w", i, s.Name, err)
		}
		if s.Kind == models.KindSQL && s.Driver == "clickhouse" && c.ClickHouse.Host == "" {
			return fmt.Errorf("sources[%d] (%s): clickhouse.host is required", i, s.Name)
		}
		if s.Kind == models.KindTiingo && c.Tiingo.Token == "" {
			return fmt.Errorf("sources[%d] (%s): tiingo.token is required", i, s.Name)
		}
	}

	joined := make(map[string]bool, len(c.Pipeline.Join))
	for i, step := range c.Pipeline.Join {
		if !names[step.Series] {
			return fmt.Errorf("pipeline.join[%d]: series %q is not a configured source", i, step.Series)
		}
		if joined[step.Series] {
			return fmt.Errorf("pipeline.join[%d]: series %q joined twice", i, step.Series)
		}
		joined[step.Series] = true
	}
	seen := make(map[string]bool, len(c.Pipeline.Columns))
	for i, col := range c.Pipeline.Columns {
		if !joined[col] {
			return fmt.Errorf("pipeline.columns[%d]: %q is not part of the join", i, col)
		}
		if seen[col] {
			return fmt.Errorf("pipeline.columns[%d]: duplicate column %q", i, col)
		}
		seen[col] = true
	}

	if c.Dashboard.Table != TableJoined && !names[c.Dashboard.Table] {
		return fmt.Errorf("dashboard.table: %q is neither %q nor a configured source", c.Dashboard.Table, TableJoined)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}

func (s *SourceConfig) validateKind() error {
	switch s.Kind {
	case models.KindFRED:
		if s.Series == "" {
			return fmt.Errorf("series is required for kind %s", s.Kind)
		}
	case models.KindYahoo, models.KindTiingo:
		if s.Symbol == "" {
			return fmt.Errorf("symbol is required for kind %s", s.Kind)
		}
	case models.KindCSVURL:
		if s.URL == "" {
			return fmt.Errorf("url is required for kind %s", s.Kind)
		}
	case models.KindCSVFile:
		if s.Path == "" {
			return fmt.Errorf("path is required for kind %s", s.Kind)
		}
	case models.KindSQL:
		if s.Query == "" {
			return fmt.Errorf("query is required for kind %s", s.Kind)
		}
		if s.Driver == "sqlite" && s.DSN == "" {
			return fmt.Errorf("dsn is required for sqlite sources")
		}
	default:
		return fmt.Errorf("unknown kind %q (want one of %s)", s.Kind, strings.Join(models.SourceKinds(), ", "))
	}
	return nil
}

// Window returns the configured load window.
func (c *Config) Window() models.Window {
	var w models.Window
	if t, err := util.ParseDay(c.Pipeline.Start); err == nil {
		w.Start = models.DateOf(t)
	}
	if t, err := util.ParseDay(c.Pipeline.End); err == nil {
		w.End = models.DateOf(t)
	}
	return w
}

// SourceSpecs converts the validated source list into domain specs.
func (c *Config) SourceSpecs() []models.SourceSpec {
	out := make([]models.SourceSpec, 0, len(c.Sources))
	for _, s := range c.Sources {
		m, _ := models.ParseMetric(s.Name)
		spec := models.SourceSpec{
			Name:        m,
			Kind:        s.Kind,
			Title:       s.Title,
			Series:      s.Series,
			Symbol:      s.Symbol,
			URL:         s.URL,
			Path:        s.Path,
			Driver:      s.Driver,
			DSN:         s.DSN,
			Query:       s.Query,
			DateColumn:  s.DateColumn,
			ValueColumn: s.ValueColumn,
		}
		if s.Filter != nil {
			spec.Filter = &models.RowFilter{Column: s.Filter.Column, Equals: s.Filter.Equals}
		}
		out = append(out, spec)
	}
	return out
}

// JoinPlan converts the join steps into domain types.
func (c *Config) JoinPlan() []models.JoinStep {
	out := make([]models.JoinStep, 0, len(c.Pipeline.Join))
	for _, step := range c.Pipeline.Join {
		m, _ := models.ParseMetric(step.Series)
		out = append(out, models.JoinStep{Series: m, How: models.JoinKind(step.How)})
	}
	return out
}

// Projection returns the authoritative output column order.
func (c *Config) Projection() []models.Metric {
	out := make([]models.Metric, 0, len(c.Pipeline.Columns))
	for _, col := range c.Pipeline.Columns {
		m, _ := models.ParseMetric(col)
		out = append(out, m)
	}
	return out
}
