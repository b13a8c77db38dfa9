package usecase

import (
	"math"
	"testing"

	"EconDash/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertWellFormed(t *testing.T, m *models.CorrelationMatrix) {
	t.Helper()
	n := m.Size()
	for i := 0; i < n; i++ {
		assert.Equal(t, 1.0, m.Values[i][i], "diagonal %d", i)
		for j := 0; j < n; j++ {
			a, b := m.Values[i][j], m.Values[j][i]
			if math.IsNaN(a) {
				assert.True(t, math.IsNaN(b))
				continue
			}
			assert.Equal(t, a, b)
			assert.GreaterOrEqual(t, a, -1.0)
			assert.LessOrEqual(t, a, 1.0)
		}
	}
}

func TestCorrelateKnownValues(t *testing.T) {
	table := models.JoinedTable{
		Columns: []models.Metric{models.CrudeOil, models.NaturalGas, models.TotalVehicleSales},
		Rows: []models.Row{
			{Date: d(2019, 1, 1), Values: []float64{1, 2, 5}},
			{Date: d(2019, 2, 1), Values: []float64{2, 4, 3}},
			{Date: d(2019, 3, 1), Values: []float64{3, 6, 4}},
			{Date: d(2019, 4, 1), Values: []float64{4, 8, 1}},
		},
	}
	m, err := Correlate(table, models.MissingPairwise)
	require.NoError(t, err)
	assertWellFormed(t, m)

	r, ok := m.At(models.CrudeOil, models.NaturalGas)
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-12)

	r, _ = m.At(models.CrudeOil, models.TotalVehicleSales)
	assert.InDelta(t, -0.8315218406, r, 1e-9)
	assert.Equal(t, 4, m.Observations[0][2])
}

func TestCorrelateTwoRows(t *testing.T) {
	table := models.JoinedTable{
		Columns: []models.Metric{models.CrudeOil, models.NaturalGas},
		Rows: []models.Row{
			{Date: d(2019, 1, 2), Values: []float64{46.54, 2.958}},
			{Date: d(2019, 1, 3), Values: []float64{47.09, 2.945}},
		},
	}
	m, err := Correlate(table, models.MissingPairwise)
	require.NoError(t, err)
	assertWellFormed(t, m)

	r, _ := m.At(models.CrudeOil, models.NaturalGas)
	assert.False(t, math.IsNaN(r))
	assert.InDelta(t, -1.0, r, 1e-12)
	assert.Equal(t, 2, m.Observations[0][1])
}

func TestCorrelateUndefinedPairs(t *testing.T) {
	table := models.JoinedTable{
		Columns: []models.Metric{models.CrudeOil, models.RetailEmployees, models.NaturalGas},
		Rows: []models.Row{
			{Date: d(2019, 1, 1), Values: []float64{1, 7, 3}},
			{Date: d(2019, 2, 1), Values: []float64{2, 7, math.NaN()}},
			{Date: d(2019, 3, 1), Values: []float64{3, 7, math.NaN()}},
		},
	}
	m, err := Correlate(table, models.MissingPairwise)
	require.NoError(t, err)
	assertWellFormed(t, m)

	r, _ := m.At(models.CrudeOil, models.RetailEmployees)
	assert.True(t, math.IsNaN(r), "zero variance")
	r, _ = m.At(models.CrudeOil, models.NaturalGas)
	assert.True(t, math.IsNaN(r), "single observation")
	assert.Equal(t, 1, m.Observations[0][2])
}

func TestCorrelateEmptyTable(t *testing.T) {
	m, err := Correlate(models.JoinedTable{Columns: []models.Metric{models.CrudeOil, models.NaturalGas}}, models.MissingPairwise)
	require.NoError(t, err)
	assertWellFormed(t, m)
	r, _ := m.At(models.NaturalGas, models.CrudeOil)
	assert.True(t, math.IsNaN(r))
}

func TestCorrelateMissingPolicies(t *testing.T) {
	table := models.JoinedTable{
		Columns: []models.Metric{models.CovidCases, models.ConsumerConfidence, models.BusinessConfidence},
		Rows: []models.Row{
			{Date: d(2020, 1, 1), Values: []float64{math.NaN(), 101, 100}},
			{Date: d(2020, 2, 1), Values: []float64{math.NaN(), 100, 99}},
			{Date: d(2020, 3, 1), Values: []float64{10, 97, 98}},
			{Date: d(2020, 4, 1), Values: []float64{20, 95, 95}},
			{Date: d(2020, 5, 1), Values: []float64{30, 96, 97}},
		},
	}

	pairwise, err := Correlate(table, models.MissingPairwise)
	require.NoError(t, err)
	complete, err := Correlate(table, models.MissingComplete)
	require.NoError(t, err)
	assertWellFormed(t, pairwise)
	assertWellFormed(t, complete)

	assert.Equal(t, 5, pairwise.Observations[1][2])
	assert.Equal(t, 3, complete.Observations[1][2])
	assert.Equal(t, 3, pairwise.Observations[0][1])

	pr, _ := pairwise.At(models.ConsumerConfidence, models.BusinessConfidence)
	cr, _ := complete.At(models.ConsumerConfidence, models.BusinessConfidence)
	assert.NotEqual(t, pr, cr)

	_, err = Correlate(table, "impute")
	assert.Error(t, err)
}
