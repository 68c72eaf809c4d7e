package calculator

// LinearSlope fits a least-squares line to y against its indices 0..n-1 and
// returns the slope in revenue units per month. Requires at least 2 points;
// returns ok=false otherwise or when the x variance is zero.
func LinearSlope(y []float64) (slope float64, ok bool) {
	n := len(y)
	if n < 2 {
		return 0, false
	}

	meanX := float64(n-1) / 2
	meanY := Mean(y)

	var num, den float64
	for i, v := range y {
		dx := float64(i) - meanX
		num += dx * (v - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0, false
	}
	return num / den, true
}
