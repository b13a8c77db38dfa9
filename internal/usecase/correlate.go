package usecase

import (
	"fmt"
	"math"

	"EconDash/internal/domain/models"
)

// Correlate computes the Pearson matrix of every column pair. With
// MissingPairwise each pair uses the rows where both cells exist; with
// MissingComplete only rows complete across all columns count. Pairs with
// fewer than two observations or zero variance are NaN. The diagonal is
// 1.0 and the result is symmetric.
func Correlate(t models.JoinedTable, policy models.MissingPolicy) (*models.CorrelationMatrix, error) {
	switch policy {
	case "", models.MissingPairwise:
	case models.MissingComplete:
		t = DropIncomplete(t)
	default:
		return nil, fmt.Errorf("unsupported missing policy %q", policy)
	}

	n := len(t.Columns)
	m := &models.CorrelationMatrix{
		Columns:      append([]models.Metric(nil), t.Columns...),
		Values:       make([][]float64, n),
		Observations: make([][]int, n),
	}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
		m.Observations[i] = make([]int, n)
	}

	cols := make([][]float64, n)
	for i := range cols {
		cols[i] = t.Column(i)
	}

	for i := 0; i < n; i++ {
		m.Values[i][i] = 1.0
		m.Observations[i][i] = countPresent(cols[i])
		for j := i + 1; j < n; j++ {
			r, obs := pearson(cols[i], cols[j])
			m.Values[i][j], m.Values[j][i] = r, r
			m.Observations[i][j], m.Observations[j][i] = obs, obs
		}
	}
	return m, nil
}

// pearson correlates x and y over the indices where both are present.
func pearson(x, y []float64) (float64, int) {
	var sumX, sumY float64
	obs := 0
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		sumX += x[i]
		sumY += y[i]
		obs++
	}
	if obs < 2 {
		return math.NaN(), obs
	}
	meanX := sumX / float64(obs)
	meanY := sumY / float64(obs)

	var num, denX, denY float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		dx := x[i] - meanX
		dy := y[i] - meanY
		num += dx * dy
		denX += dx * dx
		denY += dy * dy
	}

	den := math.Sqrt(denX * denY)
	if den == 0 {
		return math.NaN(), obs
	}
	return clamp(num/den, -1, 1), obs
}

func countPresent(x []float64) int {
	n := 0
	for _, v := range x {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
