// Package regression provides the least-squares fitting primitives used by the
// growth-curve engine.
//
// Exponential growth OD(t) = OD0 · e^(mu·t) becomes a straight line after a log
// transform:
//
//	ln(OD) = ln(OD0) + mu·t
//
// so the specific growth rate mu is the slope of an ordinary least-squares fit
// of ln(OD) against time, and ln(OD0) is its intercept.
//
// # Basic Usage
//
//	fit := regression.FitLinear(times, logOD)
//	if !fit.Valid() {
//	    // fewer than 2 points or no spread in time
//	}
//	fmt.Printf("mu=%.4f R²=%.4f td=%.2f\n", fit.Slope, fit.RSquared, fit.DoublingTime())
//
// FitExponential applies the log transform itself:
//
//	fit := regression.FitExponential(times, od) // od must be > 0
//
// # Undefined Values
//
// Infeasible fits are data, not errors. A fit over fewer than two points, or
// over points that all share one time value, reports NaN slope, intercept and
// R². When every y value is identical the slope is 0 but R² is NaN, because
// the total sum of squares is zero and R² = 1 − SS_res/SS_tot is undefined.
//
// # Metrics
//
//   - RSquared: coefficient of determination, 1 for a perfect line, may be negative
//   - RMSE: root mean square error of the residuals, in units of y
//
// All functions are pure: inputs are never modified and no state is retained.
package regression
