// Package output writes finished renders to local files or Cloud Storage.
package output

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	googleopt "google.golang.org/api/option"

	"whitted/rgb"
	"whitted/scene"
)

func channel(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(math.Round(v * 255))
}

// ToImage converts r to 8-bit color, clamping every channel to [0, 1].
func ToImage(r scene.Raster) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Width(), r.Height()))
	for y := 0; y < r.Height(); y++ {
		for x := 0; x < r.Width(); x++ {
			c := rgb.Clamp(r.At(x, y))
			img.SetNRGBA(x, y, color.NRGBA{channel(c[0]), channel(c[1]), channel(c[2]), 255})
		}
	}
	return img
}

func EncodePNG(w io.Writer, r scene.Raster) error {
	if err := png.Encode(w, ToImage(r)); err != nil {
		return fmt.Errorf("while encoding PNG: %w", err)
	}
	return nil
}

// ParseGCSURL splits gs://bucket/object.  ok is false for anything else.
func ParseGCSURL(dest string) (bucket, object string, ok bool) {
	rest := strings.TrimPrefix(dest, "gs://")
	if rest == dest {
		return "", "", false
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

type gcsWriter struct {
	*storage.Writer
	client *storage.Client
}

func (w *gcsWriter) Close() error {
	defer w.client.Close()
	if err := w.Writer.Close(); err != nil {
		return fmt.Errorf("while closing object writer: %w", err)
	}
	return nil
}

// Create opens dest for writing.  dest is a local path or a gs://bucket/object
// URL; for GCS, the object only appears once the writer is closed
// successfully.
func Create(ctx context.Context, dest string) (io.WriteCloser, error) {
	if strings.HasPrefix(dest, "gs://") {
		bucket, object, ok := ParseGCSURL(dest)
		if !ok {
			return nil, fmt.Errorf("malformed GCS URL %q, want gs://bucket/object", dest)
		}

		client, err := storage.NewClient(ctx, googleopt.WithGRPCConnectionPool(1))
		if err != nil {
			return nil, fmt.Errorf("while creating GCS client: %w", err)
		}
		w := client.Bucket(bucket).Object(object).NewWriter(ctx)
		return &gcsWriter{Writer: w, client: client}, nil
	}

	f, err := os.Create(dest)
	if err != nil {
		return nil, fmt.Errorf("while creating output file: %w", err)
	}
	return f, nil
}

// WritePNG stores r as a PNG at dest (see Create).
func WritePNG(ctx context.Context, dest string, r scene.Raster) error {
	tracer := otel.Tracer("whitted/output")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "output.WritePNG")
	defer span.End()

	w, err := Create(ctx, dest)
	if err != nil {
		return err
	}
	if err := EncodePNG(w, r); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("while finishing %s: %w", dest, err)
	}
	return nil
}
