package vec3

import (
	"math"
)

// T is used both for points and for directions.  Which one a value is depends
// on where it came from.
type T [3]float64

func (v T) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Normalize returns the unit vector along v.  The zero vector has no
// direction, and normalizing it yields NaNs; callers must check first.
func Normalize(v T) T {
	l := v.Norm()
	return T{
		v[0] / l,
		v[1] / l,
		v[2] / l,
	}
}

func AddVV(a, b T) T {
	return T{
		a[0] + b[0],
		a[1] + b[1],
		a[2] + b[2],
	}
}

func SubVV(a, b T) T {
	return T{
		a[0] - b[0],
		a[1] - b[1],
		a[2] - b[2],
	}
}

func MulVS(a T, b float64) T {
	return T{
		a[0] * b,
		a[1] * b,
		a[2] * b,
	}
}

func DivVS(a T, b float64) T {
	return T{
		a[0] / b,
		a[1] / b,
		a[2] / b,
	}
}

func Negate(a T) T {
	return T{-a[0], -a[1], -a[2]}
}

func IProd(a, b T) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func CProd(a, b T) T {
	return T{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// MinVV is the componentwise minimum.
func MinVV(a, b T) T {
	return T{
		math.Min(a[0], b[0]),
		math.Min(a[1], b[1]),
		math.Min(a[2], b[2]),
	}
}

// MaxVV is the componentwise maximum.
func MaxVV(a, b T) T {
	return T{
		math.Max(a[0], b[0]),
		math.Max(a[1], b[1]),
		math.Max(a[2], b[2]),
	}
}

// Reject returns the component of b that is orthogonal to a.
func Reject(a, b T) T {
	return SubVV(b, MulVS(Normalize(a), IProd(a, b)/a.Norm()))
}

// Reflect mirrors the incoming direction a about the unit normal n.
func Reflect(a, n T) T {
	return SubVV(a, MulVS(n, 2*IProd(a, n)))
}

// Interpolate blends three vectors with barycentric weights (1-u-v, u, v).
func Interpolate(a, b, c T, u, v float64) T {
	w := 1 - u - v
	return T{
		w*a[0] + u*b[0] + v*c[0],
		w*a[1] + u*b[1] + v*c[1],
		w*a[2] + u*b[2] + v*c[2],
	}
}
