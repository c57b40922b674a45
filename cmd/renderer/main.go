// renderer traces a YAML scene description and writes the result as a PNG,
// either to a local file or to gs://bucket/object.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"contrib.go.opencensus.io/exporter/stackdriver"
	cloudtrace "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"github.com/golang/glog"
	"go.opencensus.io/stats/view"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/term"

	"whitted/output"
	"whitted/rasterfile"
	"whitted/scene"
	"whitted/scenefile"
)

var (
	sceneFile  = flag.String("scene", "", "YAML scene description to render")
	outputFile = flag.String("output", "output.png", "Output PNG (local path or gs://bucket/object)")
	rawFile    = flag.String("raw-output", "", "If set, also write the unclamped raster here")
	outputCols = flag.Int("output-cols", 0, "Output image columns (0 uses the scene's view size)")
	outputRows = flag.Int("output-rows", 0, "Output image rows (0 uses the scene's view size)")

	monitoring           = flag.Bool("monitoring", false, "Export traces and render metrics to Google Cloud?")
	monitoringProject    = flag.String("monitoring-project", "", "Override project used for monitoring integration.  If not specified, the project associated with Application Default Credentials is used.")
	monitoringTraceRatio = flag.Float64("monitoring-trace-ratio", 1.0, "What ratio of traces should be exported?")

	cpuprofile = flag.String("cpu-profile", "", "write cpu profile to `file`")
	memprofile = flag.String("mem-profile", "", "write memory profile to `file`")
)

// rasterSize picks the output size, letting nonzero flags override the scene.
func rasterSize(s *scene.Scene, cols, rows int) (int, int, error) {
	if cols == 0 {
		cols = s.ViewCols
	}
	if rows == 0 {
		rows = s.ViewRows
	}
	if cols <= 0 || rows <= 0 {
		return 0, 0, fmt.Errorf("bad output size %dx%d", cols, rows)
	}
	return cols, rows, nil
}

func progressReporter() scene.ProgressFunction {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return func(cur, tot int) {
			if cur == tot {
				glog.Infof("Traced %d/%d rows", cur, tot)
			}
		}
	}
	return func(cur, tot int) {
		fmt.Fprintf(os.Stderr, "\r%d/%d %d%%", cur, tot, 100*cur/tot)
		if cur == tot {
			fmt.Fprintln(os.Stderr)
		}
	}
}

// installMonitoring sends otel spans to Cloud Trace and the render views to
// Cloud Monitoring.  The returned func flushes both.
func installMonitoring() (func(), error) {
	traceOpts := []cloudtrace.Option{}
	sdOpts := stackdriver.Options{
		MetricPrefix:      "whitted",
		ReportingInterval: 60 * time.Second,
	}
	if *monitoringProject != "" {
		traceOpts = append(traceOpts, cloudtrace.WithProjectID(*monitoringProject))
		sdOpts.ProjectID = *monitoringProject
	}

	_, traceShutdown, err := cloudtrace.InstallNewPipeline(traceOpts, sdktrace.WithSampler(sdktrace.TraceIDRatioBased(*monitoringTraceRatio)))
	if err != nil {
		return nil, fmt.Errorf("while installing Cloud Trace pipeline: %w", err)
	}

	exporter, err := stackdriver.NewExporter(sdOpts)
	if err != nil {
		traceShutdown()
		return nil, fmt.Errorf("while creating Stackdriver exporter: %w", err)
	}
	if err := exporter.StartMetricsExporter(); err != nil {
		traceShutdown()
		return nil, fmt.Errorf("while starting metrics exporter: %w", err)
	}

	return func() {
		exporter.StopMetricsExporter()
		exporter.Flush()
		traceShutdown()
	}, nil
}

func logMetrics() {
	for _, v := range []*view.View{scene.RaysTracedView, scene.PixelsRenderedView} {
		rows, err := view.RetrieveData(v.Name)
		if err != nil {
			glog.Warningf("Failed to retrieve %s: %v", v.Name, err)
			continue
		}
		for _, row := range rows {
			if sum, ok := row.Data.(*view.SumData); ok {
				glog.Infof("%s %v: %v", v.Name, row.Tags, sum.Value)
			}
		}
	}
}

func do(ctx context.Context) error {
	if *sceneFile == "" {
		return fmt.Errorf("--scene is required")
	}

	if *monitoring {
		shutdown, err := installMonitoring()
		if err != nil {
			return err
		}
		defer shutdown()
	}

	s, err := scenefile.Load(ctx, *sceneFile)
	if err != nil {
		return fmt.Errorf("while loading scene: %w", err)
	}
	s.LogSettings()

	cols, rows, err := rasterSize(s, *outputCols, *outputRows)
	if err != nil {
		return err
	}

	if err := scene.RegisterMetrics(); err != nil {
		return fmt.Errorf("while registering metrics: %w", err)
	}

	raster := scene.NewImage(cols, rows)
	start := time.Now()
	scene.RenderScene(ctx, s, raster, progressReporter())
	glog.Infof("Rendered %dx%d in %v", cols, rows, time.Since(start))
	logMetrics()

	if err := output.WritePNG(ctx, *outputFile, raster); err != nil {
		return fmt.Errorf("while writing output: %w", err)
	}

	if *rawFile != "" {
		w, err := output.Create(ctx, *rawFile)
		if err != nil {
			return fmt.Errorf("while opening raw output: %w", err)
		}
		if err := rasterfile.Write(w, s.Mode.String(), raster); err != nil {
			w.Close()
			return fmt.Errorf("while writing raw output: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("while closing raw output: %w", err)
		}
	}

	return nil
}

func main() {
	flag.Parse()
	defer glog.Flush()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			glog.Exitf("Could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			glog.Exitf("Could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	if err := do(context.Background()); err != nil {
		pprof.StopCPUProfile()
		glog.Exitf("Error: %v", err)
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			glog.Exitf("Could not create memory profile: %v", err)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			glog.Exitf("Could not write memory profile: %v", err)
		}
	}
}
