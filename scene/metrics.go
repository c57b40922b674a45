package scene

import (
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	modeKey = tag.MustNewKey("mode")

	raysTraced     = stats.Int64("whitted/rays_traced", "Primary rays traced", stats.UnitDimensionless)
	pixelsRendered = stats.Int64("whitted/pixels_rendered", "Pixels rendered", stats.UnitDimensionless)

	RaysTracedView = &view.View{
		Name:        "whitted/rays_traced",
		Description: "Total primary rays traced, by render mode",
		TagKeys:     []tag.Key{modeKey},
		Measure:     raysTraced,
		Aggregation: view.Sum(),
	}

	PixelsRenderedView = &view.View{
		Name:        "whitted/pixels_rendered",
		Description: "Total pixels rendered, by render mode",
		TagKeys:     []tag.Key{modeKey},
		Measure:     pixelsRendered,
		Aggregation: view.Sum(),
	}
)

// RegisterMetrics makes the render views available to exporters.
func RegisterMetrics() error {
	return view.Register(RaysTracedView, PixelsRenderedView)
}
