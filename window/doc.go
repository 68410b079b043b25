// Package window selects the exponential-phase window of a growth curve.
//
// Two independent strategies are provided and are selected by the caller:
//
// # Strategy A: score-based scan
//
// BestWindow fits every contiguous window of at least MinPoints points and
// keeps the one with the highest score R² + 0.02·tanh(slope) + 0.01·len/total.
// It has no R² threshold. DetectExponentialStart finds where the smoothed
// log-OD slope first reaches 35% of its peak, and SeededWindow combines the
// two by running an anchored scan from that start.
//
//	logOD := s.LogOD()
//	w, err := window.SeededWindow(s.Time, logOD, window.WithMinPoints(5))
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("mu=%.3f over [%g, %g]\n", w.Slope, w.TMin, w.TMax)
//
// # Strategy B: LOQ-anchored forward search
//
// DetectLOQ estimates a limit of quantification from blank readings (or the
// first OD readings), starts the window at the first point above it and
// contracts the end from the tail until the fit of ln(OD − blank mean)
// reaches R2Min (default 0.99) and the curve is still accelerating at the
// window end.
//
//	aw, err := window.DetectLOQ(t, od, blank, window.WithR2Min(0.97))
//	switch {
//	case errors.Is(err, window.ErrNoPointsAboveLOQ):
//	    // curve never rises above the blank noise
//	case err != nil:
//	    return err
//	}
//
// Failures of either strategy are reported as sentinel errors whose messages
// are suitable as per-group failure reasons.
//
// The default constants (score weights, the 0.35 start fraction, K = 2) are
// heuristics and every one of them can be overridden with an option.
package window
