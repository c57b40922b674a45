package scenefile

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"whitted/rgb"
	"whitted/vmath/vec2"
	"whitted/vmath/vec3"
)

// document mirrors the top level of a scene file.
type document struct {
	RenderMode        string      `yaml:"RenderMode"`
	Shadows           bool        `yaml:"Shadows"`
	MaxRecursionDepth int         `yaml:"MaxRecursionDepth"`
	SuperSampling     *superNode  `yaml:"SuperSampling"`
	GoochParameters   *goochNode  `yaml:"GoochParameters"`
	Camera            *cameraNode `yaml:"Camera"`
	Eye               []float64   `yaml:"Eye"`
	Objects           []yaml.Node `yaml:"Objects"`
	Lights            []lightNode `yaml:"Lights"`
}

type superNode struct {
	Factor int `yaml:"factor"`
}

type goochNode struct {
	B     float64 `yaml:"b"`
	Y     float64 `yaml:"y"`
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
}

type cameraNode struct {
	Eye             []float64 `yaml:"eye"`
	Center          []float64 `yaml:"center"`
	Up              []float64 `yaml:"up"`
	ViewSize        []int     `yaml:"viewSize"`
	ApertureRadius  float64   `yaml:"apertureRadius"`
	ApertureSamples int       `yaml:"apertureSamples"`
}

type lightNode struct {
	Position []float64 `yaml:"position"`
	Color    []float64 `yaml:"color"`
}

type patternNode struct {
	Type   string    `yaml:"type"`
	Period float64   `yaml:"period"`
	Color  []float64 `yaml:"color"`
}

type materialNode struct {
	Color   []float64    `yaml:"color"`
	Ka      float64      `yaml:"ka"`
	Kd      float64      `yaml:"kd"`
	Ks      float64      `yaml:"ks"`
	N       float64      `yaml:"n"`
	Texture string       `yaml:"texture"`
	Pattern *patternNode `yaml:"pattern"`
}

// radiusNode accepts either a plain radius or, for textured spheres,
// [radius, [axis x, y, z]].
type radiusNode struct {
	R    float64
	Axis []float64
}

func (r *radiusNode) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&r.R)
	}
	if value.Kind != yaml.SequenceNode || len(value.Content) != 2 {
		return fmt.Errorf("line %d: radius must be a number or [radius, axis]", value.Line)
	}
	if err := value.Content[0].Decode(&r.R); err != nil {
		return err
	}
	return value.Content[1].Decode(&r.Axis)
}

type objectNode struct {
	Type     string        `yaml:"type"`
	Material *materialNode `yaml:"material"`

	// Sphere, disk, cylinder, mesh.
	Position []float64 `yaml:"position"`

	// Sphere, disk, cylinder.
	Radius radiusNode `yaml:"radius"`

	// Sphere.
	Angle float64 `yaml:"angle"`

	// Disk.
	Normal []float64 `yaml:"normal"`

	// Cylinder.
	Direction []float64 `yaml:"direction"`
	Length    float64   `yaml:"length"`

	// Triangle.
	Vertices  [][]float64 `yaml:"vertices"`
	Normals   [][]float64 `yaml:"normals"`
	TexCoords [][]float64 `yaml:"texcoords"`

	// Box.
	Min []float64 `yaml:"min"`
	Max []float64 `yaml:"max"`

	// Mesh.
	File   string                   `yaml:"file"`
	Scale  *float64                 `yaml:"scale"`
	Groups map[string]*materialNode `yaml:"groups"`
}

func toVec3(name string, xs []float64) (vec3.T, error) {
	if len(xs) != 3 {
		return vec3.T{}, fmt.Errorf("%s: got %d components, want 3", name, len(xs))
	}
	return vec3.T{xs[0], xs[1], xs[2]}, nil
}

func toVec2(name string, xs []float64) (vec2.T, error) {
	if len(xs) != 2 {
		return vec2.T{}, fmt.Errorf("%s: got %d components, want 2", name, len(xs))
	}
	return vec2.T{xs[0], xs[1]}, nil
}

func toRGB(name string, xs []float64) (rgb.T, error) {
	v, err := toVec3(name, xs)
	return rgb.T(v), err
}
