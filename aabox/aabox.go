package aabox

import (
	"math"

	"whitted/ray"
	"whitted/vmath/vec3"
)

type AABox struct {
	X, Y, Z ray.Span
}

// AccumZeroAABox is the empty box: growing it by any point yields the
// degenerate box containing just that point.
func AccumZeroAABox() AABox {
	return AABox{
		X: ray.Span{Lo: math.Inf(1), Hi: math.Inf(-1)},
		Y: ray.Span{Lo: math.Inf(1), Hi: math.Inf(-1)},
		Z: ray.Span{Lo: math.Inf(1), Hi: math.Inf(-1)},
	}
}

func GrowAABoxToPoint(a AABox, b vec3.T) AABox {
	return AABox{
		X: ray.Span{Lo: math.Min(a.X.Lo, b[0]), Hi: math.Max(a.X.Hi, b[0])},
		Y: ray.Span{Lo: math.Min(a.Y.Lo, b[1]), Hi: math.Max(a.Y.Hi, b[1])},
		Z: ray.Span{Lo: math.Min(a.Z.Lo, b[2]), Hi: math.Max(a.Z.Hi, b[2])},
	}
}

func (a AABox) IsFinite() bool {
	return a.X.IsFinite() && a.Y.IsFinite() && a.Z.IsFinite()
}

func (a AABox) Center() vec3.T {
	return vec3.T{
		(a.X.Lo + a.X.Hi) / 2,
		(a.Y.Lo + a.Y.Hi) / 2,
		(a.Z.Lo + a.Z.Hi) / 2,
	}
}

func (a AABox) Lo() vec3.T {
	return vec3.T{a.X.Lo, a.Y.Lo, a.Z.Lo}
}

func (a AABox) Hi() vec3.T {
	return vec3.T{a.X.Hi, a.Y.Hi, a.Z.Hi}
}

// Axis returns the span of the box along axis i (0, 1, or 2).
func (a AABox) Axis(i int) ray.Span {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	}
	return a.Z
}
