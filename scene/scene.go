package scene

import (
	"fmt"

	"github.com/golang/glog"

	"whitted/camera"
	"whitted/contact"
	"whitted/geometry"
	"whitted/ray"
	"whitted/rgb"
	"whitted/vmath/vec3"
)

type RenderMode int

const (
	Phong RenderMode = iota
	Normal
	Depth
	Gooch
)

var renderModeNames = map[RenderMode]string{
	Phong:  "phong",
	Normal: "normal",
	Depth:  "zbuffer",
	Gooch:  "gooch",
}

func (m RenderMode) String() string {
	if name, ok := renderModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("RenderMode(%d)", int(m))
}

// ParseRenderMode maps a scene file mode name to a RenderMode.
func ParseRenderMode(name string) (RenderMode, bool) {
	for m, n := range renderModeNames {
		if n == name {
			return m, true
		}
	}
	return Phong, false
}

type Light struct {
	Position vec3.T
	Color    rgb.T
}

// GoochParameters control tone shading: B and Y are the strengths of the cool
// blue and warm yellow tones, Alpha and Beta how much of the surface's own
// diffuse color is mixed into each.
type GoochParameters struct {
	B, Y        float64
	Alpha, Beta float64
}

// Scene is everything needed to render an image.  It is assembled with the
// Add and Set methods and is read-only while a render is running.
type Scene struct {
	Elements []geometry.Geometry
	Lights   []*Light

	Camera camera.Camera

	Mode            RenderMode
	Shadows         bool
	ReflectionDepth int
	Supersampling   int
	Aperture        camera.Aperture
	Gooch           GoochParameters

	// Preferred output size.
	ViewCols, ViewRows int
}

func New() *Scene {
	return &Scene{
		Camera:        &camera.SimpleEye{},
		Mode:          Phong,
		Supersampling: 1,
		ViewCols:      400,
		ViewRows:      400,
	}
}

func (s *Scene) AddElement(g geometry.Geometry) int {
	s.Elements = append(s.Elements, g)
	return len(s.Elements) - 1
}

func (s *Scene) AddLight(l *Light) int {
	s.Lights = append(s.Lights, l)
	return len(s.Lights) - 1
}

// SetEye selects the simple eye camera.
func (s *Scene) SetEye(eye vec3.T) {
	s.Camera = &camera.SimpleEye{Position: eye}
}

// SetCamera selects the look-at camera.  The scene is unchanged on error.
func (s *Scene) SetCamera(eye, center, up vec3.T) error {
	c, err := camera.NewLookAt(eye, center, up)
	if err != nil {
		return fmt.Errorf("while setting camera: %w", err)
	}
	s.Camera = c
	return nil
}

func (s *Scene) SetRenderMode(m RenderMode) {
	s.Mode = m
}

// SetRenderModeName sets the mode by its scene file name.  Unknown names fall
// back to Phong.
func (s *Scene) SetRenderModeName(name string) {
	m, ok := ParseRenderMode(name)
	if !ok {
		glog.Warningf("Did not recognize render mode %q, defaulting to %v", name, Phong)
	}
	s.Mode = m
}

func (s *Scene) SetShadows(on bool) {
	s.Shadows = on
}

// SetReflectionDepth bounds reflection recursion.  0 disables reflections;
// negative depths are treated as 0.
func (s *Scene) SetReflectionDepth(depth int) {
	if depth < 0 {
		depth = 0
	}
	s.ReflectionDepth = depth
}

// SetSupersampling sets the per-axis subsample count.  Factors below 1 are
// treated as 1.
func (s *Scene) SetSupersampling(factor int) {
	if factor < 1 {
		factor = 1
	}
	s.Supersampling = factor
}

// SetDepthOfField enables lens blur with the given aperture.  samples == 0
// disables it.
func (s *Scene) SetDepthOfField(radius float64, samples int) {
	if samples < 0 {
		samples = 0
	}
	s.Aperture = camera.Aperture{Radius: radius, Samples: samples}
}

func (s *Scene) SetGooch(p GoochParameters) {
	s.Gooch = p
}

func (s *Scene) SetViewSize(cols, rows int) {
	s.ViewCols = cols
	s.ViewRows = rows
}

// Collide finds the nearest element hit by r, returning the contact and the
// element's index, or contact.NoHit() and -1.
func (s *Scene) Collide(r ray.Ray) (contact.Contact, int) {
	query := ray.Query(r)

	minContact := contact.NoHit()
	minElementIndex := -1
	for i, elt := range s.Elements {
		c := elt.RayInto(query)
		if !c.IsHit() || !query.TheSegment.Contains(c.T) {
			continue
		}
		if c.Closer(minContact) {
			minContact = c
			minElementIndex = i
			query.TheSegment.Hi = c.T
		}
	}
	return minContact, minElementIndex
}

// LogSettings writes a summary of the scene to the info log.
func (s *Scene) LogSettings() {
	glog.Infof("Scene with %d objects", len(s.Elements))
	glog.Infof("    Lights: %d", len(s.Lights))
	glog.Infof("    Shadows: %v", s.Shadows)
	glog.Infof("    Supersampling: %d", s.Supersampling)
	glog.Infof("    Reflection depth: %d", s.ReflectionDepth)
	glog.Infof("    Image dimensions: [%d, %d]", s.ViewCols, s.ViewRows)
	glog.Infof("    Render mode: %v", s.Mode)
	if s.Mode == Gooch {
		glog.Infof("        b=%v y=%v alpha=%v beta=%v", s.Gooch.B, s.Gooch.Y, s.Gooch.Alpha, s.Gooch.Beta)
	}

	switch c := s.Camera.(type) {
	case *camera.LookAt:
		glog.Infof("    Camera: look-at")
		glog.Infof("        Eye: %v", c.Position)
		glog.Infof("        Center: %v", c.Center)
		glog.Infof("        Up: %v", c.Up)
		if s.Aperture.Samples > 0 {
			glog.Infof("        Depth of field: radius %v, %d samples", s.Aperture.Radius, s.Aperture.Samples)
		} else {
			glog.Infof("        Depth of field disabled")
		}
	case *camera.SimpleEye:
		glog.Infof("    Camera: simple eye at %v", c.Position)
	}
}
