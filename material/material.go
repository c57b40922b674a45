package material

import (
	"image"
	"math"

	"whitted/rgb"
	"whitted/vmath/vec2"
	"whitted/vmath/vec3"
)

// MaterialCoords locate a point on a surface for texture lookup.
type MaterialCoords struct {
	// Surface parameterization, nominally in [0, 1] x [0, 1].
	Mtl2 vec2.T

	// Position in the primitive's own frame.
	Mtl3 vec3.T
}

// TextureMap computes the surface color at the given coordinates.
type TextureMap func(MaterialCoords) rgb.T

// Material holds Phong reflectance coefficients.  A single material may be
// shared by many primitives (all triangles loaded from one mesh file, for
// instance); it is never mutated once a render starts.
type Material struct {
	Color rgb.T

	Ka, Kd, Ks float64

	// Specular exponent.
	N float64

	// Texture, if set, replaces Color wherever the owning primitive can
	// supply surface coordinates.
	Texture TextureMap
}

func (m *Material) ColorAt(coords MaterialCoords) rgb.T {
	if m.Texture == nil {
		return m.Color
	}
	return m.Texture(coords)
}

func ConstantColor(c rgb.T) TextureMap {
	return func(coords MaterialCoords) rgb.T {
		return c
	}
}

// parity returns 1 if the point lands in an "odd" cell of a grid with the
// given period, 0 otherwise.
func parity(period float64, xs ...float64) int {
	p := 0
	for _, x := range xs {
		q := x / period
		if q-math.Floor(q) > 0.5 {
			p ^= 1
		}
	}
	return p
}

func CheckerboardSurface(period float64, a, b rgb.T) TextureMap {
	return func(coords MaterialCoords) rgb.T {
		if parity(period, coords.Mtl2[0], coords.Mtl2[1]) == 1 {
			return b
		}
		return a
	}
}

func CheckerboardVolume(period float64, a, b rgb.T) TextureMap {
	return func(coords MaterialCoords) rgb.T {
		if parity(period, coords.Mtl3[0], coords.Mtl3[1], coords.Mtl3[2]) == 1 {
			return b
		}
		return a
	}
}

// BullseyeSurface draws concentric rings around the (0.5, 0.5) point of the
// surface parameterization.
func BullseyeSurface(period float64, a, b rgb.T) TextureMap {
	return func(coords MaterialCoords) rgb.T {
		d := vec2.T{coords.Mtl2[0] - 0.5, coords.Mtl2[1] - 0.5}.Norm() / period
		if _, frac := math.Modf(d); frac < 0.5 {
			return a
		}
		return b
	}
}

// ImageTexture samples img with nearest-neighbor lookup: texel i covers
// [i/size, (i+1)/size).  u runs left to right
// and v top to bottom; coordinates outside [0, 1] are clamped to the border.
func ImageTexture(img image.Image) TextureMap {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	// Convert once up front.  image.Image implementations are not promised to
	// be safe for concurrent use, and the render workers share the texture.
	pixels := make([]rgb.T, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			pixels[y*width+x] = rgb.T{
				float64(r) / 65535.0,
				float64(g) / 65535.0,
				float64(b) / 65535.0,
			}
		}
	}

	return func(coords MaterialCoords) rgb.T {
		if width == 0 || height == 0 {
			return rgb.Black
		}
		x := texel(coords.Mtl2[0], width)
		y := texel(coords.Mtl2[1], height)
		return pixels[y*width+x]
	}
}

func texel(f float64, size int) int {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	i := int(f * float64(size))
	if i >= size {
		i = size - 1
	}
	return i
}
