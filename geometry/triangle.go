package geometry

import (
	"math"

	"whitted/aabox"
	"whitted/contact"
	"whitted/material"
	"whitted/ray"
	"whitted/vmath/vec2"
	"whitted/vmath/vec3"
)

// determinantEpsilon is the smallest |det| Möller–Trumbore accepts before
// calling the ray parallel to the triangle's plane.
const determinantEpsilon = 1e-12

type Triangle struct {
	Verts [3]vec3.T

	// Per-vertex normals for smooth shading, used when HasNorms is set.
	Norms    [3]vec3.T
	HasNorms bool

	// Per-vertex texture coordinates, used when HasTexs is set.
	Texs    [3]vec2.T
	HasTexs bool

	// May be nil inside a Mesh, which then supplies its default material.
	Mtl *material.Material
}

func (tr *Triangle) RayInto(query ray.RaySegment) contact.Contact {
	r := query.TheRay

	e1 := vec3.SubVV(tr.Verts[1], tr.Verts[0])
	e2 := vec3.SubVV(tr.Verts[2], tr.Verts[0])

	p := vec3.CProd(r.Slope, e2)
	det := vec3.IProd(e1, p)
	if math.Abs(det) < determinantEpsilon {
		return contact.NoHit()
	}
	f := 1 / det

	s := vec3.SubVV(r.Point, tr.Verts[0])
	u := f * vec3.IProd(s, p)
	if u < 0 || u > 1 {
		return contact.NoHit()
	}

	q := vec3.CProd(s, e1)
	v := f * vec3.IProd(r.Slope, q)
	if v < 0 || u+v > 1 {
		return contact.NoHit()
	}

	t := f * vec3.IProd(e2, q)
	if !query.TheSegment.Contains(t) {
		return contact.NoHit()
	}

	n := vec3.CProd(e1, e2)
	if tr.HasNorms {
		if smooth := vec3.Interpolate(tr.Norms[0], tr.Norms[1], tr.Norms[2], u, v); smooth.Norm() > 0 {
			n = smooth
		}
	}
	if n.Norm() == 0 {
		return contact.NoHit()
	}

	c := contact.At(r, t, vec3.Normalize(n))
	c.UV = vec2.T{u, v}
	return c
}

func (tr *Triangle) MaterialAt(c contact.Contact) *material.Material {
	return tr.Mtl
}

func (tr *Triangle) MaterialCoords(c contact.Contact) material.MaterialCoords {
	coords := material.MaterialCoords{
		Mtl2: c.UV,
		Mtl3: vec3.SubVV(c.P, tr.Verts[0]),
	}
	if tr.HasTexs {
		coords.Mtl2 = vec2.Interpolate(tr.Texs[0], tr.Texs[1], tr.Texs[2], c.UV[0], c.UV[1])
	}
	return coords
}

// Mesh is a triangle soup behind a bounding sphere.  Rays that miss the
// sphere skip the triangle scan entirely.
type Mesh struct {
	Triangles []*Triangle

	// Default material for triangles that have none of their own.
	Mtl *material.Material

	bound Sphere
}

func NewMesh(triangles []*Triangle, mtl *material.Material) *Mesh {
	m := &Mesh{
		Triangles: triangles,
		Mtl:       mtl,
	}

	box := aabox.AccumZeroAABox()
	for _, tr := range triangles {
		for _, v := range tr.Verts {
			box = aabox.GrowAABoxToPoint(box, v)
		}
	}
	if !box.IsFinite() {
		return m
	}

	center := box.Center()
	radius := 0.0
	for _, tr := range triangles {
		for _, v := range tr.Verts {
			radius = math.Max(radius, vec3.SubVV(v, center).Norm())
		}
	}

	// Pad a little so that rays grazing a vertex on the bound are not lost
	// to rounding.
	m.bound = Sphere{
		Center: center,
		Radius: radius*(1+1e-9) + ray.Epsilon,
	}
	return m
}

// Bound returns the mesh's bounding sphere.
func (m *Mesh) Bound() Sphere {
	return m.bound
}

func (m *Mesh) RayInto(query ray.RaySegment) contact.Contact {
	if len(m.Triangles) == 0 {
		return contact.NoHit()
	}

	roots, ok := m.bound.span(query.TheRay)
	if !ok || roots.Hi < query.TheSegment.Lo || roots.Lo > query.TheSegment.Hi {
		return contact.NoHit()
	}

	best := contact.NoHit()
	for i, tr := range m.Triangles {
		c := tr.RayInto(query)
		if c.Closer(best) {
			best = c
			best.Part = i
		}
	}
	return best
}

func (m *Mesh) MaterialAt(c contact.Contact) *material.Material {
	if 0 <= c.Part && c.Part < len(m.Triangles) {
		if mtl := m.Triangles[c.Part].Mtl; mtl != nil {
			return mtl
		}
	}
	return m.Mtl
}

func (m *Mesh) MaterialCoords(c contact.Contact) material.MaterialCoords {
	if 0 <= c.Part && c.Part < len(m.Triangles) {
		return m.Triangles[c.Part].MaterialCoords(c)
	}
	return material.MaterialCoords{}
}
