package config

import (
	"os"
	"path/filepath"
	"testing"

	"EconDash/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
sources:
  - name: total_vehicle_sales
    kind: fred
    series: TOTALSA
  - name: crude_oil
    kind: yahoo
    symbol: CL=F
  - name: consumer_confidence
    kind: csv_file
    path: data/consumer_confidence.csv
pipeline:
  join:
    - series: crude_oil
    - series: total_vehicle_sales
    - series: consumer_confidence
      how: right
`

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", c.Server.Host)
	assert.Equal(t, 8050, c.Server.Port)
	assert.Equal(t, "2019-01-01", c.Pipeline.Start)
	assert.Equal(t, "pairwise", c.Pipeline.Missing)
	assert.Equal(t, "inner", c.Pipeline.Join[0].How)
	assert.Equal(t, "right", c.Pipeline.Join[2].How)
	assert.Equal(t, []string{"crude_oil", "total_vehicle_sales", "consumer_confidence"}, c.Pipeline.Columns)
	assert.Equal(t, "total_vehicle_sales", c.Dashboard.Table)

	assert.Equal(t, "DATE", c.Sources[0].DateColumn)
	assert.Equal(t, "TOTALSA", c.Sources[0].ValueColumn)
	assert.Equal(t, "Date", c.Sources[1].DateColumn)
	assert.Equal(t, "Close", c.Sources[1].ValueColumn)
	assert.Equal(t, "TIME", c.Sources[2].DateColumn)
	assert.Equal(t, "Value", c.Sources[2].ValueColumn)
}

func TestParseKeepsExplicitZeroValues(t *testing.T) {
	doc := minimal + `
metrics:
  enabled: false
kafka:
  required_acks: 0
  max_attempts: 0
dashboard:
  precision: 0
`
	c, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.False(t, c.Metrics.Enabled)
	assert.Equal(t, "/metrics", c.Metrics.Path)
	assert.Equal(t, 0, c.Kafka.RequiredAcks)
	assert.Equal(t, 0, c.Kafka.MaxAttempts)
	assert.Equal(t, "gzip", c.Kafka.Compression)
	assert.Equal(t, int32(0), c.Dashboard.Precision)
}

func TestWindowAndPlan(t *testing.T) {
	c, err := Parse([]byte(minimal))
	require.NoError(t, err)

	w := c.Window()
	assert.Equal(t, models.NewDate(2019, 1, 1), w.Start)
	assert.True(t, w.End.IsZero())

	plan := c.JoinPlan()
	require.Len(t, plan, 3)
	assert.Equal(t, models.ConsumerConfidence, plan[2].Series)
	assert.Equal(t, models.JoinRight, plan[2].How)

	specs := c.SourceSpecs()
	require.Len(t, specs, 3)
	assert.Equal(t, models.TotalVehicleSales, specs[0].Name)
	assert.Equal(t, "TOTALSA", specs[0].Series)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"unknown metric": `
sources:
  - {name: gold, kind: yahoo, symbol: GC=F}
pipeline:
  join: [{series: gold}]
`,
		"missing series": `
sources:
  - {name: total_vehicle_sales, kind: fred}
pipeline:
  join: [{series: total_vehicle_sales}]
`,
		"join unknown source": `
sources:
  - {name: crude_oil, kind: yahoo, symbol: CL=F}
pipeline:
  join: [{series: natural_gas}]
`,
		"bad join kind": `
sources:
  - {name: crude_oil, kind: yahoo, symbol: CL=F}
pipeline:
  join: [{series: crude_oil, how: cross}]
`,
		"column outside join": `
sources:
  - {name: crude_oil, kind: yahoo, symbol: CL=F}
  - {name: natural_gas, kind: yahoo, symbol: NG=F}
pipeline:
  join: [{series: crude_oil}]
  columns: [crude_oil, natural_gas]
`,
		"end before start": `
sources:
  - {name: crude_oil, kind: yahoo, symbol: CL=F}
pipeline:
  start: "2020-01-01"
  end: "2019-01-01"
  join: [{series: crude_oil}]
`,
		"unknown kind": `
sources:
  - {name: crude_oil, kind: bloomberg, symbol: CL=F}
pipeline:
  join: [{series: crude_oil}]
`,
		"clickhouse without host": `
sources:
  - {name: crude_oil, kind: sql, query: "SELECT 1"}
pipeline:
  join: [{series: crude_oil}]
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o644))

	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("FRED_API_KEY", "secret")
	t.Setenv("PIPELINE_START", "2020-03-01")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", c.Server.Host)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "secret", c.FRED.APIKey)
	assert.Equal(t, models.NewDate(2020, 3, 1), c.Window().Start)
}

func TestShippedProfiles(t *testing.T) {
	us, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "us_economy", us.Profile)
	assert.Equal(t, "127.0.0.1", us.Server.Host)
	assert.Equal(t, 8050, us.Server.Port)
	assert.Equal(t, []models.Metric{
		models.CrudeOil, models.NaturalGas, models.TotalVehicleSales, models.RetailEmployees,
	}, us.Projection())
	for _, step := range us.JoinPlan() {
		assert.Equal(t, models.JoinInner, step.How)
	}

	covid, err := Load(filepath.Join("..", "..", "config", "covid_confidence.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", covid.Server.Host)
	assert.Equal(t, 8080, covid.Server.Port)
	assert.Equal(t, TableJoined, covid.Dashboard.Table)
	assert.Equal(t, models.JoinRight, covid.JoinPlan()[1].How)
	assert.Equal(t, "TIME", covid.Sources[1].DateColumn)
	require.NotNil(t, covid.Sources[0].Filter)
	assert.Equal(t, "United States", covid.Sources[0].Filter.Equals)
}
