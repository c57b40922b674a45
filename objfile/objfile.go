// Package objfile reads Wavefront OBJ meshes.
//
// Supported statements are v, vt, vn, f (polygons are fanned into
// triangles, negative indices count back from the end) and usemtl, which
// tags the faces that follow with a material name.  Everything else (mtllib,
// g, o, s, l, p, ...) is ignored.
package objfile

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"whitted/aabox"
	"whitted/affinetransform"
	"whitted/geometry"
	"whitted/material"
	"whitted/vmath/vec2"
	"whitted/vmath/vec3"
)

// Corner is one vertex of a face, as indices into the Model's tables.  VT and
// VN are -1 when the face does not give them.
type Corner struct {
	V, VT, VN int
}

type Face struct {
	Corners [3]Corner

	// Name from the most recent usemtl statement, or "".
	Material string
}

type Model struct {
	Vertices  []vec3.T
	TexCoords []vec2.T
	Normals   []vec3.T
	Faces     []Face
}

func ReadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("while opening mesh: %w", err)
	}
	defer f.Close()

	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("while reading %s: %w", path, err)
	}
	return m, nil
}

func Read(r io.Reader) (*Model, error) {
	m := &Model{}
	curMaterial := ""

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "v":
			var v vec3.T
			v, err = parseVec3(fields[1:])
			m.Vertices = append(m.Vertices, v)
		case "vn":
			var v vec3.T
			v, err = parseVec3(fields[1:])
			m.Normals = append(m.Normals, v)
		case "vt":
			var v vec2.T
			v, err = parseVec2(fields[1:])
			m.TexCoords = append(m.TexCoords, v)
		case "f":
			err = m.addFace(fields[1:], curMaterial)
		case "usemtl":
			if len(fields) < 2 {
				err = fmt.Errorf("usemtl without a name")
			} else {
				curMaterial = fields[1]
			}
		}
		if err != nil {
			return nil, fmt.Errorf("while parsing line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("while scanning: %w", err)
	}

	return m, nil
}

func parseFloats(fields []string, want int) ([]float64, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("got %d coordinates, want %d", len(fields), want)
	}
	out := make([]float64, want)
	for i := range out {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func parseVec3(fields []string) (vec3.T, error) {
	fs, err := parseFloats(fields, 3)
	if err != nil {
		return vec3.T{}, err
	}
	return vec3.T{fs[0], fs[1], fs[2]}, nil
}

func parseVec2(fields []string) (vec2.T, error) {
	fs, err := parseFloats(fields, 2)
	if err != nil {
		return vec2.T{}, err
	}
	return vec2.T{fs[0], fs[1]}, nil
}

// resolveIndex turns a 1-based (or negative, relative) OBJ index into a
// 0-based one.
func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	}
	return 0, fmt.Errorf("index %d out of range (%d defined)", i, count)
}

func (m *Model) parseCorner(s string) (Corner, error) {
	c := Corner{VT: -1, VN: -1}
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return c, fmt.Errorf("bad face vertex %q", s)
	}

	var err error
	if c.V, err = resolveIndex(parts[0], len(m.Vertices)); err != nil {
		return c, fmt.Errorf("bad vertex in %q: %w", s, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.VT, err = resolveIndex(parts[1], len(m.TexCoords)); err != nil {
			return c, fmt.Errorf("bad texture coordinate in %q: %w", s, err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.VN, err = resolveIndex(parts[2], len(m.Normals)); err != nil {
			return c, fmt.Errorf("bad normal in %q: %w", s, err)
		}
	}
	return c, nil
}

func (m *Model) addFace(fields []string, mtl string) error {
	if len(fields) < 3 {
		return fmt.Errorf("face has %d vertices, want at least 3", len(fields))
	}

	corners := make([]Corner, len(fields))
	for i, f := range fields {
		c, err := m.parseCorner(f)
		if err != nil {
			return err
		}
		corners[i] = c
	}

	for i := 1; i+1 < len(corners); i++ {
		m.Faces = append(m.Faces, Face{
			Corners:  [3]Corner{corners[0], corners[i], corners[i+1]},
			Material: mtl,
		})
	}
	return nil
}

// Bounds is the axis-aligned box around every vertex.
func (m *Model) Bounds() aabox.AABox {
	box := aabox.AccumZeroAABox()
	for _, v := range m.Vertices {
		box = aabox.GrowAABoxToPoint(box, v)
	}
	return box
}

// UnitizeTransform centers the model on the origin and scales it uniformly so
// that its largest dimension spans [-1, 1].
func (m *Model) UnitizeTransform() affinetransform.AffineTransform {
	box := m.Bounds()
	if !box.IsFinite() {
		return affinetransform.Identity()
	}

	size := vec3.SubVV(box.Hi(), box.Lo())
	extent := math.Max(size[0], math.Max(size[1], size[2]))
	if extent == 0 {
		return affinetransform.Translate(vec3.Negate(box.Center()))
	}
	return affinetransform.Compose(
		affinetransform.Scale(2/extent),
		affinetransform.Translate(vec3.Negate(box.Center())),
	)
}

// Triangles places the model in the world with xf.  Faces tagged with a name
// in materials get that material; the rest are left nil for the mesh default.
//
// OBJ texture coordinates put v=0 at the bottom of the image; they are
// flipped to match material.ImageTexture.
func (m *Model) Triangles(xf affinetransform.AffineTransform, materials map[string]*material.Material) []*geometry.Triangle {
	nm := xf.NormalTransformMat()

	tris := make([]*geometry.Triangle, 0, len(m.Faces))
	for _, f := range m.Faces {
		tr := &geometry.Triangle{
			HasNorms: true,
			HasTexs:  true,
			Mtl:      materials[f.Material],
		}
		for i, c := range f.Corners {
			tr.Verts[i] = affinetransform.TransformPoint(xf, m.Vertices[c.V])

			if c.VN == -1 || m.Normals[c.VN].Norm() == 0 {
				tr.HasNorms = false
			} else {
				tr.Norms[i] = affinetransform.TransformNormal(nm, m.Normals[c.VN])
			}

			if c.VT == -1 {
				tr.HasTexs = false
			} else {
				tc := m.TexCoords[c.VT]
				tr.Texs[i] = vec2.T{tc[0], 1 - tc[1]}
			}
		}
		if !tr.HasNorms {
			tr.Norms = [3]vec3.T{}
		}
		if !tr.HasTexs {
			tr.Texs = [3]vec2.T{}
		}
		tris = append(tris, tr)
	}
	return tris
}
