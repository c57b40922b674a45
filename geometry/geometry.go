package geometry

import (
	"math"

	"whitted/aabox"
	"whitted/contact"
	"whitted/material"
	"whitted/ray"
	"whitted/rgb"
	"whitted/vmath/mat33"
	"whitted/vmath/vec2"
	"whitted/vmath/vec3"
)

// Geometry is a surface that rays can hit.
//
// RayInto returns the nearest contact whose distance lies in
// query.TheSegment, or contact.NoHit().  Misses, parallel rays, and
// degenerate shapes are all reported as NoHit; RayInto never produces NaNs.
// Returned normals are unit length and face against the query ray.
//
// MaterialAt and MaterialCoords are only called with contacts that this
// geometry returned from RayInto.
type Geometry interface {
	RayInto(query ray.RaySegment) contact.Contact
	MaterialAt(c contact.Contact) *material.Material
	MaterialCoords(c contact.Contact) material.MaterialCoords
}

// ColorAt is the surface color of g at c: the material's flat color, or its
// texture sampled at the surface coordinates of c.
func ColorAt(g Geometry, c contact.Contact) rgb.T {
	m := g.MaterialAt(c)
	if m == nil {
		return rgb.Black
	}
	if m.Texture == nil {
		return m.Color
	}
	return m.ColorAt(g.MaterialCoords(c))
}

type Sphere struct {
	Center vec3.T
	Radius float64

	// The texture is rotated by Angle degrees about Axis before it is
	// mapped, to move the seam and poles (a tilted planet, say).  A zero
	// Axis means no rotation.
	Axis  vec3.T
	Angle float64

	Mtl *material.Material
}

// span returns the parameter interval over which r is inside the sphere.
func (s *Sphere) span(r ray.Ray) (ray.Span, bool) {
	if !(s.Radius > 0) {
		return ray.Span{}, false
	}

	oc := vec3.SubVV(r.Point, s.Center)

	// Slope is a unit vector, so the quadratic's leading coefficient is 1.
	b := vec3.IProd(oc, r.Slope)
	c := vec3.IProd(oc, oc) - s.Radius*s.Radius

	disc := b*b - c
	if disc < 0 {
		return ray.Span{}, false
	}

	sq := math.Sqrt(disc)
	return ray.Span{Lo: -b - sq, Hi: -b + sq}, true
}

func (s *Sphere) RayInto(query ray.RaySegment) contact.Contact {
	r := query.TheRay
	roots, ok := s.span(r)
	if !ok {
		return contact.NoHit()
	}

	t := roots.Lo
	if !query.TheSegment.Contains(t) {
		// The near root is behind us (we may be inside the sphere) or too
		// close to the origin to be trusted.  Try the far one.
		t = roots.Hi
		if !query.TheSegment.Contains(t) {
			return contact.NoHit()
		}
	}

	n := vec3.DivVS(vec3.SubVV(r.Eval(t), s.Center), s.Radius)
	return contact.At(r, t, n)
}

func (s *Sphere) MaterialAt(c contact.Contact) *material.Material {
	return s.Mtl
}

func (s *Sphere) MaterialCoords(c contact.Contact) material.MaterialCoords {
	local := vec3.SubVV(c.P, s.Center)
	if s.Axis != (vec3.T{}) && s.Angle != 0 {
		local = mat33.MulMV(mat33.Rotation(s.Axis, s.Angle*math.Pi/180), local)
	}

	cosTheta := local[2] / s.Radius
	if cosTheta > 1 {
		cosTheta = 1
	} else if cosTheta < -1 {
		cosTheta = -1
	}
	theta := math.Acos(cosTheta)
	phi := math.Atan2(local[1], local[0]) + math.Pi

	return material.MaterialCoords{
		Mtl2: vec2.T{phi / (2 * math.Pi), theta / math.Pi},
		Mtl3: local,
	}
}

// Box is an axis-aligned box.
type Box struct {
	Bounds aabox.AABox
	Mtl    *material.Material
}

func (b *Box) RayInto(query ray.RaySegment) contact.Contact {
	r := query.TheRay
	cover := ray.Span{Lo: math.Inf(-1), Hi: math.Inf(1)}
	entryAxis, exitAxis := -1, -1

	for i := 0; i < 3; i++ {
		span := b.Bounds.Axis(i)

		if r.Slope[i] == 0 {
			// Parallel to this pair of faces: either always between them
			// or never.
			if r.Point[i] < span.Lo || span.Hi < r.Point[i] {
				return contact.NoHit()
			}
			continue
		}

		cur := ray.Span{
			Lo: (span.Lo - r.Point[i]) / r.Slope[i],
			Hi: (span.Hi - r.Point[i]) / r.Slope[i],
		}
		if cur.Hi < cur.Lo {
			cur.Lo, cur.Hi = cur.Hi, cur.Lo
		}

		if cur.Lo > cover.Lo {
			cover.Lo = cur.Lo
			entryAxis = i
		}
		if cur.Hi < cover.Hi {
			cover.Hi = cur.Hi
			exitAxis = i
		}
		if cover.Hi < cover.Lo {
			return contact.NoHit()
		}
	}

	t, axis := cover.Lo, entryAxis
	if !query.TheSegment.Contains(t) {
		t, axis = cover.Hi, exitAxis
		if !query.TheSegment.Contains(t) {
			return contact.NoHit()
		}
	}
	if axis == -1 {
		// Only possible for a ray with zero slope, which ray.New refuses
		// to build.
		return contact.NoHit()
	}

	n := vec3.T{}
	n[axis] = 1
	return contact.At(r, t, n)
}

func (b *Box) MaterialAt(c contact.Contact) *material.Material {
	return b.Mtl
}

func (b *Box) MaterialCoords(c contact.Contact) material.MaterialCoords {
	local := vec3.SubVV(c.P, b.Bounds.Lo())
	size := vec3.SubVV(b.Bounds.Hi(), b.Bounds.Lo())

	// Parameterize the face by the two axes it spans.
	axes := make([]int, 0, 2)
	for i := 0; i < 3; i++ {
		if c.N[i] == 0 {
			axes = append(axes, i)
		}
	}

	coords := material.MaterialCoords{Mtl3: local}
	for j, i := range axes {
		if j < 2 && size[i] > 0 {
			coords.Mtl2[j] = local[i] / size[i]
		}
	}
	return coords
}
