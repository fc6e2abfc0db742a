package safety

// TargetSamples is the number of points a path is reduced to before scoring.
const TargetSamples = 10

// SampleStep returns the stride used to sample a path of n points.
func SampleStep(n int) int {
	return max(1, n/TargetSamples)
}

// SamplePath takes every SampleStep-th element starting at index 0.
func SamplePath[T any](points []T) []T {
	if len(points) == 0 {
		return nil
	}
	step := SampleStep(len(points))
	out := make([]T, 0, (len(points)+step-1)/step)
	for i := 0; i < len(points); i += step {
		out = append(out, points[i])
	}
	return out
}
