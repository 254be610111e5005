package sim

// TimeGrid returns n+1 equally spaced points from 0 to horizon. Point i is
// computed as horizon*i/n so the last point is exactly horizon.
func TimeGrid(horizon float64, n int) []float64 {
	ts := make([]float64, n+1)
	for i := range ts {
		ts[i] = horizon * float64(i) / float64(n)
	}
	return ts
}
