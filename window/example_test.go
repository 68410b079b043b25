package window_test

import (
	"errors"
	"fmt"
	"math"

	"github.com/odysseylab/odyssey/window"
)

func ExampleDetectLOQ() {
	t := make([]float64, 20)
	od := make([]float64, 20)
	for i := range t {
		t[i] = float64(i)
		od[i] = 0.05 + 0.005*math.Exp(0.4*float64(min(i, 12)))
	}
	blank := []float64{0.049, 0.050, 0.051}

	aw, err := window.DetectLOQ(t, od, blank)
	if err != nil {
		fmt.Println("no window:", err)
		return
	}

	fmt.Printf("window [%g, %g] mu=%.2f r2=%.3f\n", aw.TStart, aw.TEnd, aw.Mu, aw.R2)
	// Output: window [0, 12] mu=0.40 r2=1.000
}

func ExampleSeededWindow() {
	x := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	logOD := []float64{-3, -3, -3, -3, -2.5, -2, -1.5, -1, -0.5, 0, 0.5, 1}

	w, err := window.SeededWindow(x, logOD)
	if errors.Is(err, window.ErrNoCandidate) {
		fmt.Println("no candidate window")
		return
	}

	fmt.Printf("points %d..%d slope=%.2f\n", w.Start, w.End-1, w.Slope)
	// Output: points 3..11 slope=0.50
}
