package contact

import (
	"math"

	"whitted/ray"
	"whitted/vmath/vec2"
	"whitted/vmath/vec3"
)

// Contact records where a ray met a surface.
type Contact struct {
	// Distance along R.  +Inf when nothing was hit.
	T float64
	R ray.Ray
	P vec3.T

	// Unit surface normal at P.
	N vec3.T

	// Barycentric coordinates of P, for triangle-based geometry.
	UV vec2.T

	// Which sub-primitive was hit, for aggregates (the triangle index within
	// a mesh).  -1 otherwise.
	Part int
}

// NoHit is the "no intersection" sentinel.  Its T is +Inf, so it loses every
// Closer comparison against a real contact.
func NoHit() Contact {
	return Contact{
		T:    math.Inf(1),
		N:    vec3.T{},
		Part: -1,
	}
}

func (c Contact) IsHit() bool {
	return !math.IsInf(c.T, 1) && !math.IsNaN(c.T)
}

// Closer reports whether c is strictly nearer along its ray than d.
func (c Contact) Closer(d Contact) bool {
	return c.T < d.T
}

// At builds a contact at distance t along r with normal n.  The normal is
// flipped if needed so that it faces back along the ray.
func At(r ray.Ray, t float64, n vec3.T) Contact {
	c := Contact{
		T:    t,
		R:    r,
		P:    r.Eval(t),
		N:    n,
		Part: -1,
	}
	return c.FaceForward()
}

// FaceForward orients N against the incoming ray.
func (c Contact) FaceForward() Contact {
	if vec3.IProd(c.N, c.R.Slope) > 0 {
		c.N = vec3.Negate(c.N)
	}
	return c
}
