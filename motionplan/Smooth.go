package motionplan

import (
	"context"
)

// simpleSmoothStep looks at waypoints step apart and removes those in
// between if the two can be joined directly
func simpleSmoothStep(ctx context.Context, valid Validator, path [][]float64,
	step int, resolution float64) ([][]float64, error) {
	for i := step + 1; i < len(path); i += step {
		ok, err := checkPath(ctx, valid, path[i-step-1], path[i], resolution)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		// we can merge
		path = append(path[0:i-step], path[i:]...)
		i--
	}
	return path, nil
}

// smoothPath removes waypoints from path until no two waypoints with a
// single waypoint between them can be joined directly. The first and
// last waypoints are kept.
func smoothPath(ctx context.Context, valid Validator, path [][]float64,
	resolution float64) ([][]float64, error) {
	for {
		originalSize := len(path)

		var err error
		if path, err = simpleSmoothStep(ctx, valid, path, 10, resolution); err != nil {
			return nil, err
		}
		if path, err = simpleSmoothStep(ctx, valid, path, 1, resolution); err != nil {
			return nil, err
		}

		if len(path) == originalSize {
			return path, nil
		}
	}
}

// Interpolate returns path densified to at least n waypoints by
// linearly interpolating between consecutive waypoints. Waypoints of
// path are kept, and interpolated waypoints are spread over segments
// in proportion to their joint-space length.
func Interpolate(path [][]float64, n int) [][]float64 {
	if len(path) < 2 || n <= len(path) {
		out := make([][]float64, len(path))
		for i := range path {
			out[i] = append([]float64(nil), path[i]...)
		}
		return out
	}

	lengths := make([]float64, len(path)-1)
	var total float64
	for i := range lengths {
		lengths[i] = inputDist(path[i], path[i+1])
		total += lengths[i]
	}

	extra := n - len(path)
	out := make([][]float64, 0, n)
	for i := range lengths {
		out = append(out, append([]float64(nil), path[i]...))

		// Points inserted between waypoints i and i+1
		var k int
		if total > 0 {
			k = int(float64(extra) * lengths[i] / total)
		} else {
			k = extra / len(lengths)
		}
		if i == len(lengths)-1 {
			k = n - len(out) - 1
		}
		for j := 1; j <= k; j++ {
			out = append(out, interpolateInputs(path[i], path[i+1],
				float64(j)/float64(k+1)))
		}
	}
	return append(out, append([]float64(nil), path[len(path)-1]...))
}
