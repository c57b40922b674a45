package camera

import (
	"fmt"
	"math"

	"whitted/vmath/vec3"
)

// GoldenAngle, in radians, spaces aperture samples along a sunflower spiral so
// that any prefix of them covers the disk evenly.
var GoldenAngle = math.Pi * (3 - math.Sqrt(5))

// Frame places an image in world space.  Origin is the lower-left corner of
// the image; H and V step one pixel right and one pixel up.
type Frame struct {
	Origin vec3.T
	H, V   vec3.T
}

// Point returns the world-space position of continuous image coordinates
// (x right, y up, in pixels from the lower-left corner).
func (f Frame) Point(x, y float64) vec3.T {
	return vec3.AddVV(f.Origin, vec3.AddVV(vec3.MulVS(f.H, x), vec3.MulVS(f.V, y)))
}

type Camera interface {
	// Eye is the center of projection.
	Eye() vec3.T

	// Frame positions an image of the given size.
	Frame(imgCols, imgRows int) Frame
}

// SimpleEye looks down -Z at the z=0 plane, where pixels are one unit squares
// with the lower-left image corner at the world origin.
type SimpleEye struct {
	Position vec3.T
}

func (c *SimpleEye) Eye() vec3.T {
	return c.Position
}

func (c *SimpleEye) Frame(imgCols, imgRows int) Frame {
	return Frame{
		H: vec3.T{1, 0, 0},
		V: vec3.T{0, 1, 0},
	}
}

// LookAt is a camera at Position aimed at Center.  The image is centered on
// Center, Up gives its upward direction, and |Up| is the world-space size of
// one pixel.
type LookAt struct {
	Position vec3.T
	Center   vec3.T
	Up       vec3.T

	// Orthonormal basis: view direction, right, and true up.
	g, a, b vec3.T
}

func NewLookAt(position, center, up vec3.T) (*LookAt, error) {
	view := vec3.SubVV(center, position)
	if view.Norm() == 0 {
		return nil, fmt.Errorf("camera eye and center coincide at %v", position)
	}
	if up.Norm() == 0 {
		return nil, fmt.Errorf("camera up vector is zero")
	}

	g := vec3.Normalize(view)
	a := vec3.CProd(g, up)
	if a.Norm() == 0 {
		return nil, fmt.Errorf("camera up vector %v is parallel to the view direction", up)
	}
	a = vec3.Normalize(a)
	b := vec3.Normalize(vec3.CProd(a, g))

	return &LookAt{
		Position: position,
		Center:   center,
		Up:       up,
		g:        g,
		a:        a,
		b:        b,
	}, nil
}

func (c *LookAt) Eye() vec3.T {
	return c.Position
}

// Basis returns the view direction, the right vector, and the true up vector,
// all unit length.
func (c *LookAt) Basis() (g, a, b vec3.T) {
	return c.g, c.a, c.b
}

func (c *LookAt) Frame(imgCols, imgRows int) Frame {
	pixelSize := c.Up.Norm()
	h := vec3.MulVS(c.a, pixelSize)
	v := vec3.MulVS(c.b, pixelSize)

	origin := vec3.SubVV(c.Center, vec3.MulVS(h, float64(imgCols)/2))
	origin = vec3.SubVV(origin, vec3.MulVS(v, float64(imgRows)/2))

	return Frame{
		Origin: origin,
		H:      h,
		V:      v,
	}
}
