package scene

import (
	"context"
	"runtime"
	"sync"

	"github.com/golang/glog"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"whitted/camera"
	"whitted/ray"
	"whitted/rgb"
)

type ChunkWorker struct {
	chunk            *Image
	depths           DepthRange
	raysTraced       int64
	progressFunction func(int)

	sampler *camera.Sampler
	scene   *Scene

	// Rows [rowSrc, rowLim) of the overall image.
	rowSrc int
	rowLim int
}

func (w *ChunkWorker) Render() {
	rays := make([]ray.Ray, 0, w.sampler.RaysPerPixel())
	for cr := w.rowSrc; cr < w.rowLim; cr++ {
		for cc := 0; cc < w.chunk.Cols; cc++ {
			rays = w.sampler.ImageToRays(cr, cc, rays[:0])

			color := rgb.Black
			for _, r := range rays {
				color = rgb.AddCC(color, w.scene.Trace(r, w.scene.ReflectionDepth))
			}
			if len(rays) != 0 {
				color = rgb.DivCS(color, float64(len(rays)))
			}

			w.chunk.Set(cc, cr-w.rowSrc, color)
			if w.scene.Mode == Depth {
				w.depths.Add(color[0])
			}
			w.raysTraced += int64(len(rays))
		}

		w.progressFunction(1)
	}
}

// ProgressFunction is called as rows complete with the number of rows done
// so far and the total.
type ProgressFunction func(done, total int)

// TraceRaster fills raster with the traced color of every pixel, splitting
// the rows among one worker per CPU.  In Depth mode the raster holds raw
// distances afterwards, and the returned range is what FinalizeDepth needs.
func TraceRaster(ctx context.Context, s *Scene, raster Raster, progressFunction ProgressFunction) DepthRange {
	tracer := otel.Tracer("whitted/scene")
	ctx, span := tracer.Start(ctx, "TraceRaster")
	defer span.End()

	imgCols, imgRows := raster.Width(), raster.Height()
	span.SetAttributes(
		attribute.Key("cols").Int(imgCols),
		attribute.Key("rows").Int(imgRows),
		attribute.Key("mode").String(s.Mode.String()),
	)

	if progressFunction == nil {
		progressFunction = func(int, int) {}
	}

	sampler := camera.NewSampler(s.Camera, imgCols, imgRows, s.Supersampling, s.Aperture)

	curProgress := 0
	depths := EmptyDepthRange()
	var totalRays int64

	// mergeMutex locks curProgress, depths, totalRays, and raster.
	mergeMutex := sync.Mutex{}

	processorCount := runtime.NumCPU()

	// We chunk work by rows.
	workUnit := (imgRows + processorCount - 1) / processorCount

	var wg sync.WaitGroup
	for rowSrc := 0; rowSrc < imgRows; rowSrc += workUnit {
		rowLim := min(rowSrc+workUnit, imgRows)

		worker := &ChunkWorker{
			chunk:  NewImage(imgCols, rowLim-rowSrc),
			depths: EmptyDepthRange(),
			progressFunction: func(rows int) {
				mergeMutex.Lock()
				defer mergeMutex.Unlock()
				curProgress += rows
				progressFunction(curProgress, imgRows)
			},
			sampler: sampler,
			scene:   s,
			rowSrc:  rowSrc,
			rowLim:  rowLim,
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Render()

			mergeMutex.Lock()
			defer mergeMutex.Unlock()

			Paste(raster, worker.chunk, worker.rowSrc, 0)
			depths = MergeDepthRanges(depths, worker.depths)
			totalRays += worker.raysTraced
			glog.V(1).Infof("Finished rows [%d, %d)", worker.rowSrc, worker.rowLim)
		}()
	}

	wg.Wait()

	stats.RecordWithOptions(
		ctx,
		stats.WithTags(tag.Upsert(modeKey, s.Mode.String())),
		stats.WithMeasurements(raysTraced.M(totalRays), pixelsRendered.M(int64(imgCols*imgRows))))

	return depths
}

// RenderScene renders s into raster.
func RenderScene(ctx context.Context, s *Scene, raster Raster, progressFunction ProgressFunction) {
	depths := TraceRaster(ctx, s, raster, progressFunction)
	if s.Mode == Depth {
		FinalizeDepth(raster, depths)
	}
}
