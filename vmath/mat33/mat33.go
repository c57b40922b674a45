package mat33

import (
	"math"

	"whitted/vmath/vec3"
)

// T is a row-major 3x3 matrix.
type T struct {
	Elts [9]float64
}

func Identity() T {
	return T{[9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}}
}

// Columns builds the matrix whose columns are a, b, and c.
func Columns(a, b, c vec3.T) T {
	return T{[9]float64{
		a[0], b[0], c[0],
		a[1], b[1], c[1],
		a[2], b[2], c[2],
	}}
}

func MulMM(a, b T) T {
	result := T{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				result.Elts[i*3+j] += a.Elts[i*3+k] * b.Elts[k*3+j]
			}
		}
	}
	return result
}

func MulMV(a T, b vec3.T) vec3.T {
	return vec3.T{
		a.Elts[0]*b[0] + a.Elts[1]*b[1] + a.Elts[2]*b[2],
		a.Elts[3]*b[0] + a.Elts[4]*b[1] + a.Elts[5]*b[2],
		a.Elts[6]*b[0] + a.Elts[7]*b[1] + a.Elts[8]*b[2],
	}
}

func Transpose(m T) T {
	transpose := T{}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			transpose.Elts[c*3+r] = m.Elts[r*3+c]
		}
	}
	return transpose
}

func Determinant(m T) float64 {
	e := m.Elts
	return e[0]*(e[4]*e[8]-e[5]*e[7]) -
		e[1]*(e[3]*e[8]-e[5]*e[6]) +
		e[2]*(e[3]*e[7]-e[4]*e[6])
}

// Inverse returns the inverse of m via its adjugate.  ok is false when m is
// singular, in which case the returned matrix is meaningless.
func Inverse(m T) (inv T, ok bool) {
	det := Determinant(m)
	if det == 0 || math.IsNaN(det) {
		return T{}, false
	}

	e := m.Elts
	adj := [9]float64{
		e[4]*e[8] - e[5]*e[7], e[2]*e[7] - e[1]*e[8], e[1]*e[5] - e[2]*e[4],
		e[5]*e[6] - e[3]*e[8], e[0]*e[8] - e[2]*e[6], e[2]*e[3] - e[0]*e[5],
		e[3]*e[7] - e[4]*e[6], e[1]*e[6] - e[0]*e[7], e[0]*e[4] - e[1]*e[3],
	}
	for i := range adj {
		inv.Elts[i] = adj[i] / det
	}
	return inv, true
}

// Rotation is the right-handed rotation by angle radians about axis
// (Rodrigues' formula).  axis does not need to be normalized, but must not be
// zero.
func Rotation(axis vec3.T, angle float64) T {
	u := vec3.Normalize(axis)
	c := math.Cos(angle)
	s := math.Sin(angle)
	k := 1 - c

	return T{[9]float64{
		c + u[0]*u[0]*k, u[0]*u[1]*k - u[2]*s, u[0]*u[2]*k + u[1]*s,
		u[1]*u[0]*k + u[2]*s, c + u[1]*u[1]*k, u[1]*u[2]*k - u[0]*s,
		u[2]*u[0]*k - u[1]*s, u[2]*u[1]*k + u[0]*s, c + u[2]*u[2]*k,
	}}
}
