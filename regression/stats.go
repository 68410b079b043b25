package regression

import "math"

// calculateMean calculates the arithmetic mean (0 for an empty slice).
func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// calculateFitStats calculates R² and RMSE of the line a + b·x in a single pass.
//
// Formula: R² = 1 - (SS_res / SS_tot)
//   - SS_res: Sum of squares of residuals (observed - predicted)²
//   - SS_tot: Total sum of squares (observed - mean)²
//
// R² is NaN when SS_tot is exactly zero.
func calculateFitStats(x, y []float64, a, b float64) (r2, rmse float64) {
	n := len(x)
	if n == 0 {
		return math.NaN(), math.NaN()
	}

	meanY := calculateMean(y)

	ssTot := 0.0
	ssRes := 0.0
	for i := 0; i < n; i++ {
		dev := y[i] - meanY
		ssTot += dev * dev

		residual := y[i] - (a + b*x[i])
		ssRes += residual * residual
	}

	rmse = math.Sqrt(ssRes / float64(n))
	if ssTot == 0 {
		return math.NaN(), rmse
	}

	return 1.0 - (ssRes / ssTot), rmse
}
