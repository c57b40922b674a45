package vec2

import "math"

type T [2]float64

func (v T) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1])
}

// Interpolate blends three points with barycentric weights (1-u-v, u, v).
func Interpolate(a, b, c T, u, v float64) T {
	w := 1 - u - v
	return T{
		w*a[0] + u*b[0] + v*c[0],
		w*a[1] + u*b[1] + v*c[1],
	}
}
