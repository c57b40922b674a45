package scene

import (
	"math"

	"whitted/rgb"
)

// DepthRange is the span of hit distances seen while tracing a Depth mode
// image.  Workers each keep their own and merge them once tracing is done.
type DepthRange struct {
	Min, Max float64
}

func EmptyDepthRange() DepthRange {
	return DepthRange{Min: math.Inf(1), Max: math.Inf(-1)}
}

func (d DepthRange) IsEmpty() bool {
	return d.Min > d.Max
}

// Add grows d to include distance.  A distance of 0 marks a background pixel
// and is ignored.
func (d *DepthRange) Add(distance float64) {
	if distance == 0 || math.IsNaN(distance) {
		return
	}
	d.Min = math.Min(d.Min, distance)
	d.Max = math.Max(d.Max, distance)
}

func MergeDepthRanges(a, b DepthRange) DepthRange {
	return DepthRange{
		Min: math.Min(a.Min, b.Min),
		Max: math.Max(a.Max, b.Max),
	}
}

// FinalizeDepth replaces the raw distances in a Depth mode raster with
// greyscale, nearest white and farthest black.  Background pixels stay
// black.  If every hit is at the same distance, all hits become white.
func FinalizeDepth(raster Raster, d DepthRange) {
	if d.IsEmpty() {
		return
	}

	diff := d.Max - d.Min
	for y := 0; y < raster.Height(); y++ {
		for x := 0; x < raster.Width(); x++ {
			distance := raster.At(x, y)[0]
			if distance == 0 {
				continue
			}

			value := 1.0
			if diff > 0 {
				value = 1 - (distance-d.Min)/diff
			}
			raster.Set(x, y, rgb.Clamp(rgb.Grey(value)))
		}
	}
}
