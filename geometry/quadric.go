package geometry

import (
	"math"

	"whitted/contact"
	"whitted/material"
	"whitted/ray"
	"whitted/vmath/vec2"
	"whitted/vmath/vec3"
)

// parallelEpsilon bounds |cos| between a ray and a surface direction below
// which the two are treated as parallel.
const parallelEpsilon = 1e-9

// tangents returns two unit vectors that, together with the unit vector n,
// form an orthonormal basis.
func tangents(n vec3.T) (vec3.T, vec3.T) {
	helper := vec3.T{1, 0, 0}
	if math.Abs(n[0]) > 0.9 {
		helper = vec3.T{0, 1, 0}
	}
	right := vec3.Normalize(vec3.CProd(helper, n))
	up := vec3.CProd(n, right)
	return right, up
}

// Disk is a flat disk.  A zero Radius makes it an infinite plane.
type Disk struct {
	Center vec3.T
	Normal vec3.T
	Radius float64
	Mtl    *material.Material

	right, up vec3.T
}

// NewDisk builds a disk.  normal need not be unit length; a zero normal gives
// a disk that is never hit.
func NewDisk(center, normal vec3.T, radius float64, mtl *material.Material) *Disk {
	d := &Disk{
		Center: center,
		Radius: radius,
		Mtl:    mtl,
	}
	if normal.Norm() > 0 {
		d.Normal = vec3.Normalize(normal)
		d.right, d.up = tangents(d.Normal)
	}
	return d
}

func (d *Disk) RayInto(query ray.RaySegment) contact.Contact {
	r := query.TheRay

	denom := vec3.IProd(d.Normal, r.Slope)
	if math.Abs(denom) < parallelEpsilon {
		return contact.NoHit()
	}

	t := vec3.IProd(d.Normal, vec3.SubVV(d.Center, r.Point)) / denom
	if !query.TheSegment.Contains(t) {
		return contact.NoHit()
	}

	if d.Radius > 0 {
		offset := vec3.SubVV(r.Eval(t), d.Center)
		if vec3.IProd(offset, offset) > d.Radius*d.Radius {
			return contact.NoHit()
		}
	}

	return contact.At(r, t, d.Normal)
}

func (d *Disk) MaterialAt(c contact.Contact) *material.Material {
	return d.Mtl
}

// MaterialCoords maps a finite disk onto [0, 1] x [0, 1] with the center at
// (0.5, 0.5).  On an infinite plane the coordinates are world-space offsets
// from Center.
func (d *Disk) MaterialCoords(c contact.Contact) material.MaterialCoords {
	offset := vec3.SubVV(c.P, d.Center)
	uv := vec2.T{vec3.IProd(offset, d.right), vec3.IProd(offset, d.up)}
	if d.Radius > 0 {
		uv = vec2.T{uv[0]/(2*d.Radius) + 0.5, uv[1]/(2*d.Radius) + 0.5}
	}
	return material.MaterialCoords{Mtl2: uv, Mtl3: offset}
}

// Cylinder is an open tube (no caps) of the given Radius, running Length units
// from Base along Axis.
type Cylinder struct {
	Base   vec3.T
	Axis   vec3.T
	Radius float64
	Length float64
	Mtl    *material.Material

	right, up vec3.T
}

// NewCylinder builds a cylinder.  axis need not be unit length; a zero axis
// gives a cylinder that is never hit.
func NewCylinder(base, axis vec3.T, radius, length float64, mtl *material.Material) *Cylinder {
	c := &Cylinder{
		Base:   base,
		Radius: radius,
		Length: length,
		Mtl:    mtl,
	}
	if axis.Norm() > 0 {
		c.Axis = vec3.Normalize(axis)
		c.right, c.up = tangents(c.Axis)
	}
	return c
}

func (cy *Cylinder) RayInto(query ray.RaySegment) contact.Contact {
	if !(cy.Radius > 0) || cy.Axis == (vec3.T{}) {
		return contact.NoHit()
	}

	r := query.TheRay
	x := vec3.SubVV(r.Point, cy.Base)

	dv := vec3.IProd(r.Slope, cy.Axis)
	xv := vec3.IProd(x, cy.Axis)

	// Quadratic in t for the distance from the axis, with the axial
	// components projected out.  b is the half-coefficient.
	a := 1 - dv*dv
	b := vec3.IProd(r.Slope, x) - dv*xv
	c := vec3.IProd(x, x) - xv*xv - cy.Radius*cy.Radius

	if a < parallelEpsilon {
		return contact.NoHit()
	}

	disc := b*b - a*c
	if disc < 0 {
		return contact.NoHit()
	}
	sq := math.Sqrt(disc)

	for _, t := range [2]float64{(-b - sq) / a, (-b + sq) / a} {
		if !query.TheSegment.Contains(t) {
			continue
		}

		m := dv*t + xv
		if m < 0 || m > cy.Length {
			continue
		}

		p := r.Eval(t)
		radial := vec3.SubVV(vec3.SubVV(p, cy.Base), vec3.MulVS(cy.Axis, m))
		if radial.Norm() == 0 {
			continue
		}
		return contact.At(r, t, vec3.Normalize(radial))
	}

	return contact.NoHit()
}

func (cy *Cylinder) MaterialAt(c contact.Contact) *material.Material {
	return cy.Mtl
}

// MaterialCoords wraps u around the axis and runs v along it.
func (cy *Cylinder) MaterialCoords(c contact.Contact) material.MaterialCoords {
	local := vec3.SubVV(c.P, cy.Base)
	m := vec3.IProd(local, cy.Axis)
	angle := math.Atan2(vec3.IProd(local, cy.up), vec3.IProd(local, cy.right)) + math.Pi

	v := 0.0
	if cy.Length > 0 {
		v = m / cy.Length
	}
	return material.MaterialCoords{
		Mtl2: vec2.T{angle / (2 * math.Pi), v},
		Mtl3: local,
	}
}
