package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/odysseylab/odyssey/internal/pool"
)

// LinearFit is the result of an ordinary least-squares fit y = Intercept + Slope·x.
type LinearFit struct {
	// Slope is the fitted slope. For a log-OD fit this is the growth rate mu.
	Slope float64
	// Intercept is the fitted value at x = 0.
	Intercept float64
	// RSquared is the coefficient of determination, NaN when undefined.
	RSquared float64
	// RMSE is the root mean square error of the residuals.
	RMSE float64
	// N is the number of points the fit used.
	N int
}

// undefinedFit returns the infeasible-fit value for n points.
func undefinedFit(n int) LinearFit {
	nan := math.NaN()
	return LinearFit{Slope: nan, Intercept: nan, RSquared: nan, RMSE: nan, N: n}
}

// FitLinear fits y = a + b·x by ordinary least squares.
//
// x and y must have equal length. Fewer than two points, mismatched lengths
// or zero variance in x yield a fit with NaN coefficients. Zero variance in
// y yields slope 0 with NaN R².
//
// Parameters:
//   - x: Independent variable (time)
//   - y: Dependent variable (typically ln(OD))
//
// Returns:
//   - LinearFit: Slope, intercept, R², RMSE and point count
func FitLinear(x, y []float64) LinearFit {
	n := len(x)
	if n != len(y) || n < 2 {
		return undefinedFit(n)
	}

	meanX := calculateMean(x)
	ssX := 0.0
	for _, xi := range x {
		d := xi - meanX
		ssX += d * d
	}
	if ssX == 0 {
		return undefinedFit(n)
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)
	r2, rmse := calculateFitStats(x, y, intercept, slope)

	return LinearFit{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  r2,
		RMSE:      rmse,
		N:         n,
	}
}

// FitExponential fits ln(od) = a + mu·t. Every od value must be positive.
func FitExponential(t, od []float64) LinearFit {
	if len(t) != len(od) {
		return undefinedFit(len(t))
	}

	logOD, cleanup := pool.GetFloat64Slice(len(od))
	defer cleanup()

	for i, v := range od {
		logOD[i] = math.Log(v)
	}

	return FitLinear(t, logOD)
}

// Valid reports whether the slope and intercept are defined.
func (f LinearFit) Valid() bool {
	return !math.IsNaN(f.Slope) && !math.IsNaN(f.Intercept)
}

// Predict evaluates the fitted line at x.
func (f LinearFit) Predict(x float64) float64 {
	return f.Intercept + f.Slope*x
}

// DoublingTime returns ln(2)/Slope, or NaN when the slope is zero or undefined.
//
// A negative slope yields a negative value (a halving time); callers that
// need a strictly positive doubling time should check the slope first.
func (f LinearFit) DoublingTime() float64 {
	if math.IsNaN(f.Slope) || f.Slope == 0 {
		return math.NaN()
	}

	return math.Ln2 / f.Slope
}

// String returns a human-readable summary of the fit.
func (f LinearFit) String() string {
	return fmt.Sprintf("LinearFit{Slope: %.4f, Intercept: %.4f, R²: %.4f, RMSE: %.4f, N: %d}",
		f.Slope, f.Intercept, f.RSquared, f.RMSE, f.N)
}
