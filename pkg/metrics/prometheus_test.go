package metrics

import (
	"errors"
	"math"
	"testing"
	"time"

	"EconDash/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordFetch("crude_oil", "yahoo", 120*time.Millisecond, 42, nil)
	r.RecordFetch("natural_gas", "yahoo", time.Second, 0, errors.New("boom"))
	r.RecordError("fetch")
	r.RecordJoin(17)
	r.RecordCorrelation(&models.CorrelationMatrix{
		Columns:      []models.Metric{models.CrudeOil, models.NaturalGas, models.TotalVehicleSales},
		Values:       [][]float64{{1, 0.5, math.NaN()}, {0.5, 1, -0.2}, {math.NaN(), -0.2, 1}},
		Observations: [][]int{{3, 3, 1}, {3, 3, 3}, {1, 3, 3}},
	})

	assert.Equal(t, 42.0, testutil.ToFloat64(r.sourceRows.WithLabelValues("crude_oil")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("fetch")))
	assert.Equal(t, 17.0, testutil.ToFloat64(r.joinedRows))
	assert.Equal(t, 0.5, testutil.ToFloat64(r.correlation.WithLabelValues("crude_oil", "natural_gas")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.correlation))
}
