package camera

import (
	"math"

	"whitted/ray"
	"whitted/vmath/vec3"
)

// Aperture simulates a lens for depth of field.  Samples == 0 is a pinhole.
type Aperture struct {
	Radius  float64
	Samples int
}

// Sampler turns pixels into primary rays.  Every pixel is split into an N x N
// grid (N = the supersampling factor) and every grid cell is seen from each
// aperture sample position, so a pixel gets N*N*max(1, Samples) rays.
//
// A Sampler is immutable once built and safe for concurrent use.
type Sampler struct {
	imgCols, imgRows int
	grid             int
	frame            Frame
	eyes             []vec3.T
}

func NewSampler(cam Camera, imgCols, imgRows, supersampling int, aperture Aperture) *Sampler {
	if supersampling < 1 {
		supersampling = 1
	}

	s := &Sampler{
		imgCols: imgCols,
		imgRows: imgRows,
		grid:    supersampling,
		frame:   cam.Frame(imgCols, imgRows),
	}

	eye := cam.Eye()
	if aperture.Samples <= 0 || aperture.Radius == 0 {
		s.eyes = []vec3.T{eye}
		return s
	}

	// Spread the eye over the lens in the plane of the image.
	right := unitOr(s.frame.H, vec3.T{1, 0, 0})
	up := unitOr(s.frame.V, vec3.T{0, 1, 0})
	for k := 0; k < aperture.Samples; k++ {
		r := aperture.Radius * math.Sqrt(float64(k)/float64(aperture.Samples))
		theta := float64(k) * GoldenAngle
		offset := vec3.AddVV(
			vec3.MulVS(right, r*math.Cos(theta)),
			vec3.MulVS(up, r*math.Sin(theta)),
		)
		s.eyes = append(s.eyes, vec3.AddVV(eye, offset))
	}
	return s
}

func unitOr(v, fallback vec3.T) vec3.T {
	if v.Norm() == 0 {
		return fallback
	}
	return vec3.Normalize(v)
}

// RaysPerPixel is the most rays ImageToRays will produce for one pixel.
func (s *Sampler) RaysPerPixel() int {
	return s.grid * s.grid * len(s.eyes)
}

// ImageToRays appends the primary rays for the pixel at curRow, curCol (row 0
// is the top of the image) to dst.  Sample points that coincide with the eye
// produce no ray.
func (s *Sampler) ImageToRays(curRow, curCol int, dst []ray.Ray) []ray.Ray {
	step := 1 / float64(s.grid)
	for _, eye := range s.eyes {
		for i := 0; i < s.grid; i++ {
			x := float64(curCol) + (float64(i)+0.5)*step
			for j := 0; j < s.grid; j++ {
				y := float64(s.imgRows-curRow) - (float64(j)+0.5)*step
				if r, ok := ray.Through(eye, s.frame.Point(x, y)); ok {
					dst = append(dst, r)
				}
			}
		}
	}
	return dst
}
