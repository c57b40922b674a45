package scene

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"whitted/camera"
	"whitted/geometry"
	"whitted/material"
	"whitted/ray"
	"whitted/rgb"
	"whitted/vmath/vec3"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func greyMaterial() *material.Material {
	return &material.Material{
		Color: rgb.Grey(0.5),
		Ka:    0.2,
		Kd:    0.5,
		Ks:    0.1,
		N:     32,
	}
}

// sphereAtOrigin is a unit sphere lit and viewed head-on from (0, 0, 5).
func sphereAtOrigin(t *testing.T) *Scene {
	s := New()
	s.AddElement(&geometry.Sphere{Center: vec3.T{0, 0, 0}, Radius: 1, Mtl: greyMaterial()})
	s.AddLight(&Light{Position: vec3.T{0, 0, 5}, Color: rgb.White})
	if err := s.SetCamera(vec3.T{0, 0, 5}, vec3.T{0, 0, 0}, vec3.T{0, 1, 0}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return s
}

func mustRay(t *testing.T, point, direction vec3.T) ray.Ray {
	r, ok := ray.New(point, direction)
	if !ok {
		t.Fatalf("Degenerate ray direction %v", direction)
	}
	return r
}

func TestDefaults(t *testing.T) {
	s := New()
	if s.Mode != Phong {
		t.Errorf("Default mode is %v, want %v", s.Mode, Phong)
	}
	if s.Shadows {
		t.Errorf("Shadows are on by default")
	}
	if s.ReflectionDepth != 0 {
		t.Errorf("Default reflection depth is %d, want 0", s.ReflectionDepth)
	}
	if s.Supersampling != 1 {
		t.Errorf("Default supersampling is %d, want 1", s.Supersampling)
	}
	if s.ViewCols != 400 || s.ViewRows != 400 {
		t.Errorf("Default view size is %dx%d, want 400x400", s.ViewCols, s.ViewRows)
	}
}

func TestSettersClamp(t *testing.T) {
	s := New()

	s.SetReflectionDepth(-3)
	if s.ReflectionDepth != 0 {
		t.Errorf("SetReflectionDepth(-3) gave %d, want 0", s.ReflectionDepth)
	}

	s.SetSupersampling(0)
	if s.Supersampling != 1 {
		t.Errorf("SetSupersampling(0) gave %d, want 1", s.Supersampling)
	}

	s.SetDepthOfField(0.5, -1)
	if s.Aperture.Samples != 0 {
		t.Errorf("SetDepthOfField(0.5, -1) gave %d samples, want 0", s.Aperture.Samples)
	}
}

func TestSetRenderModeName(t *testing.T) {
	testCases := []struct {
		name string
		want RenderMode
	}{
		{"phong", Phong},
		{"zbuffer", Depth},
		{"normal", Normal},
		{"gooch", Gooch},
		{"cartoon", Phong},
		{"", Phong},
	}

	for _, tc := range testCases {
		s := New()
		s.SetRenderMode(Normal)
		s.SetRenderModeName(tc.name)
		if s.Mode != tc.want {
			t.Errorf("SetRenderModeName(%q) gave %v, want %v", tc.name, s.Mode, tc.want)
		}
	}
}

func TestSetCameraRejectsDegenerate(t *testing.T) {
	s := New()
	if err := s.SetCamera(vec3.T{1, 2, 3}, vec3.T{1, 2, 3}, vec3.T{0, 1, 0}); err == nil {
		t.Errorf("Eye == center was accepted")
	}
	if err := s.SetCamera(vec3.T{0, 0, 5}, vec3.T{0, 0, 0}, vec3.T{0, 0, 1}); err == nil {
		t.Errorf("Up parallel to the view direction was accepted")
	}
	if _, ok := s.Camera.(*camera.SimpleEye); !ok {
		t.Errorf("Failed SetCamera replaced the camera with %T", s.Camera)
	}
}

func TestCollideNearest(t *testing.T) {
	near := &geometry.Sphere{Center: vec3.T{0, 0, -5}, Radius: 1}
	far := &geometry.Sphere{Center: vec3.T{0, 0, -10}, Radius: 1}
	r := mustRay(t, vec3.T{0, 0, 0}, vec3.T{0, 0, -1})

	for _, order := range [][]geometry.Geometry{{near, far}, {far, near}} {
		s := New()
		for _, g := range order {
			s.AddElement(g)
		}

		c, idx := s.Collide(r)
		if idx == -1 {
			t.Fatalf("No hit")
		}
		if s.Elements[idx] != near {
			t.Errorf("Hit the far sphere")
		}
		if diff := cmp.Diff(c.T, 4.0, approx); diff != "" {
			t.Errorf("Bad hit distance; diff (-got +want)\n%s", diff)
		}
	}
}

func TestCollideMiss(t *testing.T) {
	s := New()
	s.AddElement(&geometry.Sphere{Center: vec3.T{0, 0, -5}, Radius: 1})

	c, idx := s.Collide(mustRay(t, vec3.T{0, 0, 0}, vec3.T{0, 0, 1}))
	if idx != -1 {
		t.Errorf("Got hit on element %d, want none", idx)
	}
	if c.IsHit() {
		t.Errorf("Miss returned a hit contact %+v", c)
	}
	if got := s.Trace(mustRay(t, vec3.T{0, 0, 0}, vec3.T{0, 0, 1}), 3); got != Background {
		t.Errorf("Missed ray traced to %v, want background %v", got, Background)
	}
}

func TestSphereFrontPole(t *testing.T) {
	s := sphereAtOrigin(t)

	// Light, eye, and normal are colinear, so diffuse and specular are both
	// at full strength: 0.5*0.2 + 0.5*0.5 + 0.1.
	want := rgb.Grey(0.45)

	for _, shadows := range []bool{false, true} {
		s.SetShadows(shadows)

		img := NewImage(1, 1)
		RenderScene(context.Background(), s, img, nil)
		if diff := cmp.Diff(img.At(0, 0), want, approx); diff != "" {
			t.Errorf("Bad color with shadows=%v; diff (-got +want)\n%s", shadows, diff)
		}
	}
}

func TestShadowOcclusion(t *testing.T) {
	s := New()
	s.AddElement(&geometry.Sphere{Center: vec3.T{0, 0, 0}, Radius: 1, Mtl: greyMaterial()})
	s.AddElement(&geometry.Sphere{Center: vec3.T{6, 0, 0}, Radius: 1, Mtl: greyMaterial()})
	s.AddLight(&Light{Position: vec3.T{10, 0, 0}, Color: rgb.White})

	// Looks at the lit pole of the first sphere from between the spheres.
	r := mustRay(t, vec3.T{3, 0, 0}, vec3.T{-1, 0, 0})

	s.SetShadows(false)
	if diff := cmp.Diff(s.Trace(r, 0), rgb.Grey(0.45), approx); diff != "" {
		t.Errorf("Bad unshadowed color; diff (-got +want)\n%s", diff)
	}

	s.SetShadows(true)
	if diff := cmp.Diff(s.Trace(r, 0), rgb.Grey(0.1), approx); diff != "" {
		t.Errorf("Bad shadowed color; diff (-got +want)\n%s", diff)
	}
}

func TestMeshSeamNotShadowed(t *testing.T) {
	quad := geometry.NewMesh([]*geometry.Triangle{
		{Verts: [3]vec3.T{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}},
		{Verts: [3]vec3.T{{0, 0, 0}, {1, 1, 0}, {0, 1, 0}}},
	}, greyMaterial())

	s := New()
	s.AddElement(quad)
	s.AddLight(&Light{Position: vec3.T{0.3, 0.7, 2}, Color: rgb.White})

	// Points along the diagonal both triangles share.
	const n = 500
	for k := 1; k < n; k++ {
		f := float64(k) / n
		r := mustRay(t, vec3.T{f, f, 1}, vec3.T{0, 0, -1})

		s.SetShadows(false)
		lit := s.Trace(r, 0)
		s.SetShadows(true)
		shadowed := s.Trace(r, 0)

		if diff := cmp.Diff(shadowed, lit, approx); diff != "" {
			t.Fatalf("Diagonal point (%v, %v) is shadowed by its own mesh; diff (-got +want)\n%s", f, f, diff)
		}
	}
}

func TestMeshSelfShadow(t *testing.T) {
	// A mesh whose upper triangle hangs over its lower one.
	mesh := geometry.NewMesh([]*geometry.Triangle{
		{Verts: [3]vec3.T{{-1, -1, 0}, {1, -1, 0}, {0, 1, 0}}},
		{Verts: [3]vec3.T{{-1, -1, 1}, {1, -1, 1}, {0, 1, 1}}},
	}, greyMaterial())

	s := New()
	s.AddElement(mesh)
	s.AddLight(&Light{Position: vec3.T{0, 0, 5}, Color: rgb.White})
	s.SetShadows(true)

	// From the side, between the two triangles, looking down at the lower one.
	r := mustRay(t, vec3.T{3, 0, 0.5}, vec3.T{-3, 0, -0.5})
	got := s.Trace(r, 0)
	if diff := cmp.Diff(got, rgb.Grey(0.1), approx); diff != "" {
		t.Errorf("Lower triangle should only get ambient light; diff (-got +want)\n%s", diff)
	}
}

func TestAmbientUsesMaterialColor(t *testing.T) {
	mtl := greyMaterial()
	mtl.Texture = material.ConstantColor(rgb.T{1, 0, 0})

	s := New()
	s.AddElement(geometry.NewDisk(vec3.T{0, 0, 0}, vec3.T{0, 0, 1}, 0, mtl))

	got := s.Trace(mustRay(t, vec3.T{0, 0, 1}, vec3.T{0, 0, -1}), 0)
	if diff := cmp.Diff(got, rgb.Grey(0.1), approx); diff != "" {
		t.Errorf("Bad ambient color; diff (-got +want)\n%s", diff)
	}
}

func TestReflectionDepth(t *testing.T) {
	mirror := &material.Material{Color: rgb.White, Ka: 0.1, Ks: 0.5}

	// Two facing planes and no lights.  Each bounce adds the ambient term of
	// the next plane at half strength, so the color reveals exactly how many
	// bounces were traced.
	s := New()
	s.AddElement(geometry.NewDisk(vec3.T{0, 0, 0}, vec3.T{0, 0, 1}, 0, mirror))
	s.AddElement(geometry.NewDisk(vec3.T{0, 0, 2}, vec3.T{0, 0, -1}, 0, mirror))

	r := mustRay(t, vec3.T{0, 0, 1}, vec3.T{0, 0, -1})

	want := 0.1
	for depth := 0; depth < 6; depth++ {
		if diff := cmp.Diff(s.Trace(r, depth), rgb.Grey(want), approx); diff != "" {
			t.Errorf("Bad color at depth %d; diff (-got +want)\n%s", depth, diff)
		}
		want = 0.1 + 0.5*want
	}
}

func TestNormalMode(t *testing.T) {
	s := sphereAtOrigin(t)
	s.SetRenderMode(Normal)

	got := s.Trace(mustRay(t, vec3.T{0, 0, 5}, vec3.T{0, 0, -1}), 0)
	if diff := cmp.Diff(got, rgb.T{0.5, 0.5, 1}, approx); diff != "" {
		t.Errorf("Bad normal color; diff (-got +want)\n%s", diff)
	}
}

func TestGoochMode(t *testing.T) {
	s := sphereAtOrigin(t)
	s.SetRenderMode(Gooch)
	s.SetGooch(GoochParameters{B: 0.4, Y: 0.4, Alpha: 0.2, Beta: 0.6})

	// Facing the light, only the warm tone counts: y + beta*kd*color, plus
	// the full specular highlight.
	got := s.Trace(mustRay(t, vec3.T{0, 0, 5}, vec3.T{0, 0, -1}), 0)
	if diff := cmp.Diff(got, rgb.T{0.65, 0.65, 0.25}, approx); diff != "" {
		t.Errorf("Bad gooch color; diff (-got +want)\n%s", diff)
	}
}

func TestDepthModeConstantDistance(t *testing.T) {
	// Seen from its center, every point of a sphere is at the same
	// distance.
	s := New()
	s.AddElement(&geometry.Sphere{Center: vec3.T{2, 1.5, 5}, Radius: 100})
	s.SetEye(vec3.T{2, 1.5, 5})
	s.SetRenderMode(Depth)

	img := NewImage(4, 3)
	RenderScene(context.Background(), s, img, nil)

	for y := 0; y < img.Rows; y++ {
		for x := 0; x < img.Cols; x++ {
			if diff := cmp.Diff(img.At(x, y), rgb.White); diff != "" {
				t.Errorf("Bad pixel (%d, %d); diff (-got +want)\n%s", x, y, diff)
			}
		}
	}
}

func TestFinalizeDepth(t *testing.T) {
	img := NewImage(4, 1)
	d := EmptyDepthRange()
	for x, distance := range []float64{0, 2, 4, 6} {
		img.Set(x, 0, rgb.Grey(distance))
		d.Add(distance)
	}

	if diff := cmp.Diff(d, DepthRange{Min: 2, Max: 6}); diff != "" {
		t.Fatalf("Bad depth range; diff (-got +want)\n%s", diff)
	}

	FinalizeDepth(img, d)

	want := []rgb.T{rgb.Black, rgb.White, rgb.Grey(0.5), rgb.Black}
	if diff := cmp.Diff(img.Pix, want, approx); diff != "" {
		t.Errorf("Bad finalized depths; diff (-got +want)\n%s", diff)
	}
}

func TestMergeDepthRanges(t *testing.T) {
	a := EmptyDepthRange()
	a.Add(3)
	b := EmptyDepthRange()
	b.Add(1)
	b.Add(2)

	got := MergeDepthRanges(MergeDepthRanges(a, b), EmptyDepthRange())
	if diff := cmp.Diff(got, DepthRange{Min: 1, Max: 3}); diff != "" {
		t.Errorf("Bad merge; diff (-got +want)\n%s", diff)
	}
	if !EmptyDepthRange().IsEmpty() {
		t.Errorf("EmptyDepthRange is not empty")
	}
}

func TestRenderMatchesTrace(t *testing.T) {
	s := New()
	s.AddElement(&geometry.Sphere{Center: vec3.T{0, 0, 0}, Radius: 1.5, Mtl: greyMaterial()})
	s.AddElement(geometry.NewDisk(vec3.T{0, -1.5, 0}, vec3.T{0, 1, 0}, 0, greyMaterial()))
	s.AddLight(&Light{Position: vec3.T{3, 5, 5}, Color: rgb.White})
	if err := s.SetCamera(vec3.T{0, 1, 8}, vec3.T{0, 0, 0}, vec3.T{0, 0.5, 0}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	s.SetShadows(true)
	s.SetSupersampling(2)

	const cols, rows = 9, 7

	var lastDone, lastTotal int
	img := NewImage(cols, rows)
	RenderScene(context.Background(), s, img, func(done, total int) {
		lastDone, lastTotal = done, total
	})
	if lastDone != rows || lastTotal != rows {
		t.Errorf("Final progress was %d/%d, want %d/%d", lastDone, lastTotal, rows, rows)
	}

	sampler := camera.NewSampler(s.Camera, cols, rows, 2, camera.Aperture{})
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			rays := sampler.ImageToRays(y, x, nil)
			want := rgb.Black
			for _, r := range rays {
				want = rgb.AddCC(want, s.Trace(r, 0))
			}
			want = rgb.DivCS(want, float64(len(rays)))

			if diff := cmp.Diff(img.At(x, y), want, approx); diff != "" {
				t.Errorf("Bad pixel (%d, %d); diff (-got +want)\n%s", x, y, diff)
			}
		}
	}
}

func TestSupersamplingOneIsSingleSample(t *testing.T) {
	s := sphereAtOrigin(t)
	s.SetSupersampling(1)

	const cols, rows = 5, 5
	img := NewImage(cols, rows)
	RenderScene(context.Background(), s, img, nil)

	frame := s.Camera.Frame(cols, rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			target := frame.Point(float64(x)+0.5, float64(rows-y)-0.5)
			r, ok := ray.Through(s.Camera.Eye(), target)
			if !ok {
				t.Fatalf("Degenerate primary ray at (%d, %d)", x, y)
			}
			if diff := cmp.Diff(img.At(x, y), s.Trace(r, 0), approx); diff != "" {
				t.Errorf("Bad pixel (%d, %d); diff (-got +want)\n%s", x, y, diff)
			}
		}
	}
}

func TestPaste(t *testing.T) {
	dst := NewImage(3, 3)
	src := NewImage(2, 1)
	src.Set(0, 0, rgb.Grey(0.25))
	src.Set(1, 0, rgb.White)

	Paste(dst, src, 2, 1)

	want := NewImage(3, 3)
	want.Set(1, 2, rgb.Grey(0.25))
	want.Set(2, 2, rgb.White)
	if diff := cmp.Diff(dst, want); diff != "" {
		t.Errorf("Bad paste; diff (-got +want)\n%s", diff)
	}
}
