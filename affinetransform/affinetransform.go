package affinetransform

import (
	"whitted/vmath/mat33"
	"whitted/vmath/vec3"
)

type AffineTransform struct {
	Linear mat33.T
	Offset vec3.T
}

func Identity() AffineTransform {
	return AffineTransform{
		Linear: mat33.Identity(),
	}
}

func Scale(s float64) AffineTransform {
	return AffineTransform{
		Linear: mat33.T{Elts: [9]float64{s, 0.0, 0.0, 0.0, s, 0.0, 0.0, 0.0, s}},
	}
}

func Translate(x vec3.T) AffineTransform {
	result := Identity()
	result.Offset = x
	return result
}

// Compose returns the transform that applies b first, then a.
func Compose(a, b AffineTransform) AffineTransform {
	return AffineTransform{
		Linear: mat33.MulMM(a.Linear, b.Linear),
		Offset: vec3.AddVV(a.Offset, mat33.MulMV(a.Linear, b.Offset)),
	}
}

// NormalTransformMat is the transpose inverse of the linear part, which is
// what surface normals must be multiplied by.  A singular transform flattens
// the model, so there is no sensible answer; the identity is returned.
func (t AffineTransform) NormalTransformMat() mat33.T {
	inv, ok := mat33.Inverse(t.Linear)
	if !ok {
		return mat33.Identity()
	}
	return mat33.Transpose(inv)
}

func TransformPoint(a AffineTransform, b vec3.T) vec3.T {
	return vec3.AddVV(mat33.MulMV(a.Linear, b), a.Offset)
}

// TransformNormal maps a model-space normal through nm (see
// NormalTransformMat) and renormalizes it.
func TransformNormal(nm mat33.T, n vec3.T) vec3.T {
	return vec3.Normalize(mat33.MulMV(nm, n))
}
