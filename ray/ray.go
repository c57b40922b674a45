package ray

import (
	"math"

	"whitted/vmath/vec3"
)

// Epsilon is the smallest distance along a ray at which a surface is allowed
// to be hit.  Secondary rays start exactly on a surface, and without this
// margin rounding error lets them re-hit it immediately ("surface acne").
const Epsilon = 1e-4

type Span struct {
	Lo, Hi float64
}

func SpanOverlaps(a, b Span) bool {
	return !(a.Lo > b.Hi || a.Hi <= b.Lo)
}

// Contains reports whether Lo <= t <= Hi.  NaN is never contained.
func (s Span) Contains(t float64) bool {
	return s.Lo <= t && t <= s.Hi
}

func (s Span) IsFinite() bool {
	return !math.IsInf(s.Lo, 0) && !math.IsInf(s.Hi, 0)
}

func (s Span) IsNaN() bool {
	return math.IsNaN(s.Lo) || math.IsNaN(s.Hi)
}

// Ray is a half-line.  Slope is always a unit vector, so the parameter t of
// Eval is a distance.
type Ray struct {
	Point vec3.T
	Slope vec3.T
}

// New builds a ray from point towards direction.  ok is false if direction
// has no length.
func New(point, direction vec3.T) (r Ray, ok bool) {
	l := direction.Norm()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return Ray{}, false
	}
	return Ray{Point: point, Slope: vec3.DivVS(direction, l)}, true
}

// Through builds the ray from a that passes through b.
func Through(a, b vec3.T) (Ray, bool) {
	return New(a, vec3.SubVV(b, a))
}

func (r *Ray) Eval(t float64) vec3.T {
	return vec3.T{
		r.Point[0] + t*r.Slope[0],
		r.Point[1] + t*r.Slope[1],
		r.Point[2] + t*r.Slope[2],
	}
}

// RaySegment restricts a ray to the parameter range TheSegment.
type RaySegment struct {
	TheRay     Ray
	TheSegment Span
}

// Query is the segment every scene query uses: from Epsilon to infinity.
func Query(r Ray) RaySegment {
	return RaySegment{
		TheRay:     r,
		TheSegment: Span{Lo: Epsilon, Hi: math.Inf(1)},
	}
}
