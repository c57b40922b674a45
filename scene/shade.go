package scene

import (
	"math"

	"whitted/contact"
	"whitted/geometry"
	"whitted/material"
	"whitted/ray"
	"whitted/rgb"
	"whitted/vmath/vec3"
)

// Background is the color of rays that escape the scene.
var Background = rgb.Black

// Trace returns the color seen along r.  depth is the number of reflection
// bounces still allowed.
//
// In Depth mode the result is the raw hit distance in every channel (0 for a
// miss); FinalizeDepth turns a raster of these into greyscale.
func (s *Scene) Trace(r ray.Ray, depth int) rgb.T {
	c, idx := s.Collide(r)
	if idx == -1 {
		return Background
	}
	g := s.Elements[idx]

	switch s.Mode {
	case Normal:
		return normalColor(c.N)
	case Depth:
		return rgb.Grey(c.T)
	case Gooch:
		return s.goochColor(g, idx, c, depth)
	default:
		return s.phongColor(g, idx, c, depth)
	}
}

func normalColor(n vec3.T) rgb.T {
	return rgb.T{(n[0] + 1) / 2, (n[1] + 1) / 2, (n[2] + 1) / 2}
}

func materialOf(g geometry.Geometry, c contact.Contact) material.Material {
	if m := g.MaterialAt(c); m != nil {
		return *m
	}
	return material.Material{}
}

// lightFrom returns the unit vector from c toward l.  ok is false when the
// light sits exactly on the surface, or when shadows are on and something
// other than the surface at c is the first thing the light reaches.
func (s *Scene) lightFrom(l *Light, idx int, c contact.Contact) (vec3.T, bool) {
	toLight, ok := ray.Through(c.P, l.Position)
	if !ok {
		return vec3.T{}, false
	}
	if !s.Shadows {
		return toLight.Slope, true
	}

	// Cast from the light back at the surface.  The light is visible if that
	// ray's nearest hit is the same element.  Within a mesh it must also be
	// the same triangle, or land on the same point of a neighboring one (the
	// shared edge).
	shadowRay := ray.Ray{Point: l.Position, Slope: vec3.Negate(toLight.Slope)}
	sc, sidx := s.Collide(shadowRay)
	if sidx != idx {
		return vec3.T{}, false
	}
	if sc.Part != c.Part && vec3.SubVV(sc.P, c.P).Norm() > ray.Epsilon {
		return vec3.T{}, false
	}
	return toLight.Slope, true
}

func specular(l, n, v vec3.T, exponent float64) float64 {
	r := vec3.Reflect(vec3.Negate(l), n)
	return math.Pow(math.Max(0, vec3.IProd(r, v)), exponent)
}

// reflection traces the mirror bounce at c, if the budget allows.
func (s *Scene) reflection(c contact.Contact, depth int) rgb.T {
	if depth <= 0 {
		return rgb.Black
	}
	bounce, ok := ray.New(c.P, vec3.Reflect(c.R.Slope, c.N))
	if !ok {
		return rgb.Black
	}
	return s.Trace(bounce, depth-1)
}

func (s *Scene) phongColor(g geometry.Geometry, idx int, c contact.Contact, depth int) rgb.T {
	mtl := materialOf(g, c)
	surface := geometry.ColorAt(g, c)
	v := vec3.Negate(c.R.Slope)

	color := rgb.MulCS(mtl.Color, mtl.Ka)

	for _, l := range s.Lights {
		toLight, ok := s.lightFrom(l, idx, c)
		if !ok {
			continue
		}

		diffuse := math.Max(0, vec3.IProd(toLight, c.N))
		color = rgb.AddCC(color, rgb.MulCS(rgb.MulCC(surface, l.Color), diffuse*mtl.Kd))
		color = rgb.AddCC(color, rgb.MulCS(l.Color, specular(toLight, c.N, v, mtl.N)*mtl.Ks))
	}

	color = rgb.AddCC(color, rgb.MulCS(s.reflection(c, depth), mtl.Ks))
	return rgb.Clamp(color)
}

// goochColor blends from a cool tone on surfaces facing away from each light
// to a warm tone on surfaces facing it.  Highlights, shadows and reflections
// are as in phongColor.
func (s *Scene) goochColor(g geometry.Geometry, idx int, c contact.Contact, depth int) rgb.T {
	mtl := materialOf(g, c)
	surface := geometry.ColorAt(g, c)
	v := vec3.Negate(c.R.Slope)

	color := rgb.Black
	for _, l := range s.Lights {
		toLight, ok := s.lightFrom(l, idx, c)
		if !ok {
			continue
		}

		kd := rgb.MulCS(rgb.MulCC(surface, l.Color), mtl.Kd)
		cool := rgb.AddCC(rgb.T{0, 0, s.Gooch.B}, rgb.MulCS(kd, s.Gooch.Alpha))
		warm := rgb.AddCC(rgb.T{s.Gooch.Y, s.Gooch.Y, 0}, rgb.MulCS(kd, s.Gooch.Beta))

		ln := vec3.IProd(toLight, c.N)
		color = rgb.AddCC(color, rgb.MulCS(cool, (1-ln)/2))
		color = rgb.AddCC(color, rgb.MulCS(warm, (1+ln)/2))
		color = rgb.AddCC(color, rgb.MulCS(l.Color, specular(toLight, c.N, v, mtl.N)*mtl.Ks))
	}

	color = rgb.AddCC(color, rgb.MulCS(s.reflection(c, depth), mtl.Ks))
	return rgb.Clamp(color)
}
