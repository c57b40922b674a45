// Package scenefile loads scenes from YAML.
//
// Unknown object types and render modes are skipped or defaulted with a
// warning.  Missing or unreadable textures and meshes are errors: every
// external file is loaded before the scene is returned.
package scenefile

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/golang/glog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"gopkg.in/yaml.v3"

	"whitted/aabox"
	"whitted/affinetransform"
	"whitted/geometry"
	"whitted/material"
	"whitted/objfile"
	"whitted/scene"
	"whitted/vmath/vec3"
)

// Load reads the scene file at path.  Texture and mesh paths in the file are
// relative to the file's directory.
func Load(ctx context.Context, path string) (*scene.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("while reading scene file: %w", err)
	}
	s, err := Parse(ctx, data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("while loading %s: %w", path, err)
	}
	return s, nil
}

// Parse builds a scene from YAML.  Relative resource paths are resolved
// against baseDir.
func Parse(ctx context.Context, data []byte, baseDir string) (*scene.Scene, error) {
	tracer := otel.Tracer("whitted/scenefile")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "scenefile.Parse")
	defer span.End()

	doc := &document{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("while decoding YAML: %w", err)
	}

	objects := []*objectNode{}
	for _, n := range doc.Objects {
		typed := struct {
			Type string `yaml:"type"`
		}{}
		if err := n.Decode(&typed); err != nil {
			return nil, fmt.Errorf("while reading object at line %d: %w", n.Line, err)
		}
		if !knownTypes[typed.Type] {
			glog.Warningf("Found object of unknown type %q at line %d, ignored", typed.Type, n.Line)
			continue
		}

		obj := &objectNode{}
		if err := n.Decode(obj); err != nil {
			return nil, fmt.Errorf("while reading %s at line %d: %w", typed.Type, n.Line, err)
		}
		objects = append(objects, obj)
	}

	res, err := loadResources(ctx, baseDir, objects)
	if err != nil {
		return nil, err
	}

	s := scene.New()
	if err := configure(s, doc); err != nil {
		return nil, err
	}

	for i, obj := range objects {
		g, err := res.buildObject(obj)
		if err != nil {
			return nil, fmt.Errorf("while building object %d (%s): %w", i, obj.Type, err)
		}
		s.AddElement(g)
	}

	for i, l := range doc.Lights {
		pos, err := toVec3("position", l.Position)
		if err != nil {
			return nil, fmt.Errorf("while reading light %d: %w", i, err)
		}
		color, err := toRGB("color", l.Color)
		if err != nil {
			return nil, fmt.Errorf("while reading light %d: %w", i, err)
		}
		s.AddLight(&scene.Light{Position: pos, Color: color})
	}

	span.SetAttributes(
		attribute.Key("objects").Int(len(s.Elements)),
		attribute.Key("lights").Int(len(s.Lights)),
	)
	glog.Infof("YAML parsing results: %d objects read", len(s.Elements))
	return s, nil
}

var knownTypes = map[string]bool{
	"sphere":   true,
	"disk":     true,
	"cylinder": true,
	"triangle": true,
	"box":      true,
	"mesh":     true,
}

// configure applies the top-level render settings.
func configure(s *scene.Scene, doc *document) error {
	if doc.RenderMode != "" {
		s.SetRenderModeName(doc.RenderMode)
	}
	s.SetShadows(doc.Shadows)
	s.SetReflectionDepth(doc.MaxRecursionDepth)
	if doc.SuperSampling != nil {
		s.SetSupersampling(doc.SuperSampling.Factor)
	}
	if g := doc.GoochParameters; g != nil {
		s.SetGooch(scene.GoochParameters{B: g.B, Y: g.Y, Alpha: g.Alpha, Beta: g.Beta})
	}

	switch {
	case doc.Camera != nil:
		c := doc.Camera
		eye, err := toVec3("Camera.eye", c.Eye)
		if err != nil {
			return err
		}
		center, err := toVec3("Camera.center", c.Center)
		if err != nil {
			return err
		}
		up, err := toVec3("Camera.up", c.Up)
		if err != nil {
			return err
		}
		if err := s.SetCamera(eye, center, up); err != nil {
			return err
		}

		if c.ViewSize != nil {
			if len(c.ViewSize) != 2 || c.ViewSize[0] <= 0 || c.ViewSize[1] <= 0 {
				return fmt.Errorf("Camera.viewSize: want two positive sizes, got %v", c.ViewSize)
			}
			s.SetViewSize(c.ViewSize[0], c.ViewSize[1])
		}
		if c.ApertureSamples > 0 {
			s.SetDepthOfField(c.ApertureRadius, c.ApertureSamples)
		}
	case doc.Eye != nil:
		eye, err := toVec3("Eye", doc.Eye)
		if err != nil {
			return err
		}
		s.SetEye(eye)
	default:
		return fmt.Errorf("scene has neither Camera nor Eye")
	}
	return nil
}

// resources holds every external file the scene refers to, keyed by the path
// as written in the scene file.
type resources struct {
	mu     sync.Mutex
	images map[string]image.Image
	models map[string]*objfile.Model
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("while decoding %s: %w", path, err)
	}
	return img, nil
}

func resolve(baseDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

func texturePaths(m *materialNode, into map[string]bool) {
	if m != nil && m.Texture != "" {
		into[m.Texture] = true
	}
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// loadResources reads every texture and mesh concurrently.  The first failure
// cancels the rest.
func loadResources(ctx context.Context, baseDir string, objects []*objectNode) (*resources, error) {
	tracer := otel.Tracer("whitted/scenefile")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "scenefile.loadResources")
	defer span.End()

	textures := map[string]bool{}
	meshes := map[string]bool{}
	for _, obj := range objects {
		texturePaths(obj.Material, textures)
		for _, m := range obj.Groups {
			texturePaths(m, textures)
		}
		if obj.Type == "mesh" {
			if obj.File == "" {
				return nil, fmt.Errorf("mesh without a file")
			}
			meshes[obj.File] = true
		}
	}

	res := &resources{
		images: map[string]image.Image{},
		models: map[string]*objfile.Model{},
	}

	jobs := []func() error{}
	for _, p := range sortedKeys(textures) {
		p := p
		jobs = append(jobs, func() error {
			img, err := loadImage(resolve(baseDir, p))
			if err != nil {
				return fmt.Errorf("while loading texture %q: %w", p, err)
			}
			res.mu.Lock()
			defer res.mu.Unlock()
			res.images[p] = img
			return nil
		})
	}
	for _, p := range sortedKeys(meshes) {
		p := p
		jobs = append(jobs, func() error {
			model, err := objfile.ReadFile(resolve(baseDir, p))
			if err != nil {
				return fmt.Errorf("while loading mesh %q: %w", p, err)
			}
			res.mu.Lock()
			defer res.mu.Unlock()
			res.models[p] = model
			return nil
		})
	}

	// Use errgroup and semaphore to limit concurrency.
	eg, ctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(runtime.NumCPU()))

	var acquireErr error
	for _, job := range jobs {
		job := job
		if err := sem.Acquire(ctx, 1); err != nil {
			acquireErr = fmt.Errorf("while acquiring concurrency limiter semaphore: %w", err)
			break
		}
		eg.Go(func() error {
			defer sem.Release(1)
			return job()
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("while loading scene resources: %w", err)
	}
	if acquireErr != nil {
		return nil, acquireErr
	}

	span.SetAttributes(
		attribute.Key("textures").Int(len(res.images)),
		attribute.Key("meshes").Int(len(res.models)),
	)
	return res, nil
}

func (res *resources) buildMaterial(m *materialNode) (*material.Material, error) {
	if m == nil {
		return nil, fmt.Errorf("missing material")
	}

	color, err := toRGB("color", m.Color)
	if err != nil {
		return nil, err
	}
	mtl := &material.Material{
		Color: color,
		Ka:    m.Ka,
		Kd:    m.Kd,
		Ks:    m.Ks,
		N:     m.N,
	}

	switch {
	case m.Texture != "":
		img, ok := res.images[m.Texture]
		if !ok {
			return nil, fmt.Errorf("texture %q was not loaded", m.Texture)
		}
		mtl.Texture = material.ImageTexture(img)
	case m.Pattern != nil:
		other, err := toRGB("pattern.color", m.Pattern.Color)
		if err != nil {
			return nil, err
		}
		period := m.Pattern.Period
		if !(period > 0) {
			return nil, fmt.Errorf("pattern.period must be positive, got %v", period)
		}
		switch m.Pattern.Type {
		case "checkerboard":
			mtl.Texture = material.CheckerboardSurface(period, color, other)
		case "checkerboard3d":
			mtl.Texture = material.CheckerboardVolume(period, color, other)
		case "bullseye":
			mtl.Texture = material.BullseyeSurface(period, color, other)
		default:
			glog.Warningf("Unknown pattern type %q, using flat color", m.Pattern.Type)
		}
	}
	return mtl, nil
}

func (res *resources) buildObject(obj *objectNode) (geometry.Geometry, error) {
	mtl, err := res.buildMaterial(obj.Material)
	if err != nil {
		return nil, fmt.Errorf("while reading material: %w", err)
	}

	switch obj.Type {
	case "sphere":
		center, err := toVec3("position", obj.Position)
		if err != nil {
			return nil, err
		}
		s := &geometry.Sphere{Center: center, Radius: obj.Radius.R, Angle: obj.Angle, Mtl: mtl}
		if obj.Radius.Axis != nil {
			if s.Axis, err = toVec3("radius axis", obj.Radius.Axis); err != nil {
				return nil, err
			}
		}
		return s, nil

	case "disk":
		center, err := toVec3("position", obj.Position)
		if err != nil {
			return nil, err
		}
		normal, err := toVec3("normal", obj.Normal)
		if err != nil {
			return nil, err
		}
		return geometry.NewDisk(center, normal, obj.Radius.R, mtl), nil

	case "cylinder":
		base, err := toVec3("position", obj.Position)
		if err != nil {
			return nil, err
		}
		axis, err := toVec3("direction", obj.Direction)
		if err != nil {
			return nil, err
		}
		return geometry.NewCylinder(base, axis, obj.Radius.R, obj.Length, mtl), nil

	case "triangle":
		return buildTriangle(obj, mtl)

	case "box":
		lo, err := toVec3("min", obj.Min)
		if err != nil {
			return nil, err
		}
		hi, err := toVec3("max", obj.Max)
		if err != nil {
			return nil, err
		}
		bounds := aabox.GrowAABoxToPoint(aabox.GrowAABoxToPoint(aabox.AccumZeroAABox(), lo), hi)
		return &geometry.Box{Bounds: bounds, Mtl: mtl}, nil

	case "mesh":
		return res.buildMesh(obj, mtl)
	}

	return nil, fmt.Errorf("unknown object type %q", obj.Type)
}

func buildTriangle(obj *objectNode, mtl *material.Material) (*geometry.Triangle, error) {
	if len(obj.Vertices) != 3 {
		return nil, fmt.Errorf("vertices: got %d, want 3", len(obj.Vertices))
	}
	tr := &geometry.Triangle{Mtl: mtl}

	for i, v := range obj.Vertices {
		p, err := toVec3(fmt.Sprintf("vertices[%d]", i), v)
		if err != nil {
			return nil, err
		}
		tr.Verts[i] = p
	}

	if obj.Normals != nil {
		if len(obj.Normals) != 3 {
			return nil, fmt.Errorf("normals: got %d, want 3", len(obj.Normals))
		}
		for i, n := range obj.Normals {
			v, err := toVec3(fmt.Sprintf("normals[%d]", i), n)
			if err != nil {
				return nil, err
			}
			tr.Norms[i] = v
		}
		tr.HasNorms = true
	}

	if obj.TexCoords != nil {
		if len(obj.TexCoords) != 3 {
			return nil, fmt.Errorf("texcoords: got %d, want 3", len(obj.TexCoords))
		}
		for i, tc := range obj.TexCoords {
			v, err := toVec2(fmt.Sprintf("texcoords[%d]", i), tc)
			if err != nil {
				return nil, err
			}
			tr.Texs[i] = v
		}
		tr.HasTexs = true
	}

	return tr, nil
}

// buildMesh fits the model into [-1, 1], scales it, and moves it to its
// position.
func (res *resources) buildMesh(obj *objectNode, mtl *material.Material) (*geometry.Mesh, error) {
	model, ok := res.models[obj.File]
	if !ok {
		return nil, fmt.Errorf("mesh %q was not loaded", obj.File)
	}

	pos := vec3.T{}
	if obj.Position != nil {
		var err error
		if pos, err = toVec3("position", obj.Position); err != nil {
			return nil, err
		}
	}
	scale := 1.0
	if obj.Scale != nil {
		scale = *obj.Scale
	}
	if !(scale > 0) {
		return nil, fmt.Errorf("scale must be positive, got %v", scale)
	}

	groups := map[string]*material.Material{}
	for name, m := range obj.Groups {
		gm, err := res.buildMaterial(m)
		if err != nil {
			return nil, fmt.Errorf("while reading material for group %q: %w", name, err)
		}
		groups[name] = gm
	}

	xf := affinetransform.Compose(
		affinetransform.Translate(pos),
		affinetransform.Compose(affinetransform.Scale(scale), model.UnitizeTransform()),
	)
	m := geometry.NewMesh(model.Triangles(xf, groups), mtl)
	glog.V(1).Infof("Mesh %s: %d triangles, bound radius %v", obj.File, len(m.Triangles), m.Bound().Radius)
	return m, nil
}
