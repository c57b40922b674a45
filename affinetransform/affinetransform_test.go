package affinetransform

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"whitted/vmath/mat33"
	"whitted/vmath/vec3"
)

var approx = cmpopts.EquateApprox(0, 1e-12)

func TestComposeOrder(t *testing.T) {
	// Scale first, then move.
	xf := Compose(Translate(vec3.T{1, 2, 3}), Scale(2))

	got := TransformPoint(xf, vec3.T{1, 1, 1})
	if diff := cmp.Diff(got, vec3.T{3, 4, 5}, approx); diff != "" {
		t.Errorf("Bad transformed point; diff (-got +want)\n%s", diff)
	}
}

func TestNormalsStayPerpendicular(t *testing.T) {
	xf := AffineTransform{
		Linear: mat33.T{Elts: [9]float64{
			3, 0, 0,
			0, 1, 0,
			0, 0, 1,
		}},
	}

	// The plane x + y = 0 stretched along x.
	tangent := vec3.T{1, -1, 0}
	normal := vec3.Normalize(vec3.T{1, 1, 0})

	worldTangent := mat33.MulMV(xf.Linear, tangent)
	worldNormal := TransformNormal(xf.NormalTransformMat(), normal)

	if d := vec3.IProd(worldTangent, worldNormal); d > 1e-12 || d < -1e-12 {
		t.Errorf("Transformed normal %v is not perpendicular to tangent %v", worldNormal, worldTangent)
	}
	if diff := cmp.Diff(worldNormal.Norm(), 1.0, approx); diff != "" {
		t.Errorf("Transformed normal is not unit length; diff (-got +want)\n%s", diff)
	}
}

func TestSingularNormalMat(t *testing.T) {
	if diff := cmp.Diff(Scale(0).NormalTransformMat(), mat33.Identity()); diff != "" {
		t.Errorf("Singular transform did not fall back to identity; diff (-got +want)\n%s", diff)
	}
}
