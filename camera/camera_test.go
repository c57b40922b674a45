package camera

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"whitted/ray"
	"whitted/vmath/vec3"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestLookAtFrame(t *testing.T) {
	c, err := NewLookAt(vec3.T{0, 0, 5}, vec3.T{0, 0, 0}, vec3.T{0, 2, 0})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	g, a, b := c.Basis()
	if diff := cmp.Diff([]vec3.T{g, a, b}, []vec3.T{{0, 0, -1}, {1, 0, 0}, {0, 1, 0}}, approx); diff != "" {
		t.Errorf("Bad basis; diff (-got +want)\n%s", diff)
	}

	// Pixels are |up| = 2 units wide, so a 4x2 image spans 8x4 units
	// centered on the look-at point.
	want := Frame{
		Origin: vec3.T{-4, -2, 0},
		H:      vec3.T{2, 0, 0},
		V:      vec3.T{0, 2, 0},
	}
	if diff := cmp.Diff(c.Frame(4, 2), want, approx); diff != "" {
		t.Errorf("Bad frame; diff (-got +want)\n%s", diff)
	}
}

func TestLookAtDegenerate(t *testing.T) {
	testCases := []struct {
		desc            string
		eye, center, up vec3.T
	}{
		{"eye at center", vec3.T{1, 1, 1}, vec3.T{1, 1, 1}, vec3.T{0, 1, 0}},
		{"zero up", vec3.T{0, 0, 5}, vec3.T{0, 0, 0}, vec3.T{0, 0, 0}},
		{"up along view", vec3.T{0, 0, 5}, vec3.T{0, 0, 0}, vec3.T{0, 0, 3}},
	}
	for _, tc := range testCases {
		if _, err := NewLookAt(tc.eye, tc.center, tc.up); err == nil {
			t.Errorf("%s: NewLookAt succeeded, want error", tc.desc)
		}
	}
}

func TestSimpleEyeSingleSample(t *testing.T) {
	cam := &SimpleEye{Position: vec3.T{2, 2, 10}}
	s := NewSampler(cam, 4, 4, 1, Aperture{})

	if s.RaysPerPixel() != 1 {
		t.Fatalf("RaysPerPixel() = %d, want 1", s.RaysPerPixel())
	}

	// Row 0 is the top of the image, which is the high-y edge of the plane.
	got := s.ImageToRays(0, 1, nil)
	want, _ := ray.Through(vec3.T{2, 2, 10}, vec3.T{1.5, 3.5, 0})
	if diff := cmp.Diff(got, []ray.Ray{want}, approx); diff != "" {
		t.Errorf("Bad ray; diff (-got +want)\n%s", diff)
	}
}

func TestSupersamplingGrid(t *testing.T) {
	cam := &SimpleEye{Position: vec3.T{0, 0, 1}}
	s := NewSampler(cam, 1, 1, 2, Aperture{})

	rays := s.ImageToRays(0, 0, nil)
	if len(rays) != 4 {
		t.Fatalf("Got %d rays, want 4", len(rays))
	}

	var targets []vec3.T
	for _, r := range rays {
		// The eye is one unit above the image plane.
		dist := -r.Point[2] / r.Slope[2]
		targets = append(targets, r.Eval(dist))
	}

	want := []vec3.T{
		{0.25, 0.75, 0},
		{0.25, 0.25, 0},
		{0.75, 0.75, 0},
		{0.75, 0.25, 0},
	}
	if diff := cmp.Diff(targets, want, approx); diff != "" {
		t.Errorf("Bad subsample targets; diff (-got +want)\n%s", diff)
	}
}

func TestSupersamplingClamped(t *testing.T) {
	s := NewSampler(&SimpleEye{Position: vec3.T{0, 0, 1}}, 2, 2, 0, Aperture{})
	if s.RaysPerPixel() != 1 {
		t.Errorf("RaysPerPixel() = %d, want 1", s.RaysPerPixel())
	}
}

func TestApertureSpiral(t *testing.T) {
	cam, err := NewLookAt(vec3.T{0, 0, 5}, vec3.T{0, 0, 0}, vec3.T{0, 1, 0})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	const radius, samples = 0.5, 16
	s := NewSampler(cam, 3, 3, 2, Aperture{Radius: radius, Samples: samples})
	if s.RaysPerPixel() != 2*2*samples {
		t.Fatalf("RaysPerPixel() = %d, want %d", s.RaysPerPixel(), 2*2*samples)
	}

	rays := s.ImageToRays(1, 1, nil)
	if len(rays) != 2*2*samples {
		t.Fatalf("Got %d rays, want %d", len(rays), 2*2*samples)
	}

	// The first sample is the pinhole; the rest spread out over the lens in
	// the image plane, never beyond the aperture.
	if diff := cmp.Diff(rays[0].Point, cam.Eye(), approx); diff != "" {
		t.Errorf("First aperture sample is off the eye; diff (-got +want)\n%s", diff)
	}
	for k := 0; k < samples; k++ {
		p := rays[k*4].Point
		offset := vec3.SubVV(p, cam.Eye())
		if math.Abs(offset[2]) > 1e-12 {
			t.Errorf("Sample %d left the lens plane: %v", k, p)
		}
		wantR := radius * math.Sqrt(float64(k)/samples)
		if diff := cmp.Diff(offset.Norm(), wantR, approx); diff != "" {
			t.Errorf("Sample %d at bad radius; diff (-got +want)\n%s", k, diff)
		}
	}
}

func TestPinholeWhenNoSamples(t *testing.T) {
	cam := &SimpleEye{Position: vec3.T{0, 0, 1}}
	s := NewSampler(cam, 1, 1, 1, Aperture{Radius: 3, Samples: 0})
	rays := s.ImageToRays(0, 0, nil)
	if len(rays) != 1 || rays[0].Point != cam.Position {
		t.Errorf("Got rays %v, want a single ray from the eye", rays)
	}
}
