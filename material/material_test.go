package material

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"whitted/rgb"
	"whitted/vmath/vec2"
)

func TestColorAtFlat(t *testing.T) {
	m := &Material{Color: rgb.T{0.1, 0.2, 0.3}}
	got := m.ColorAt(MaterialCoords{Mtl2: vec2.T{0.7, 0.7}})
	if diff := cmp.Diff(got, m.Color); diff != "" {
		t.Errorf("Untextured material; diff (-got +want)\n%s", diff)
	}
}

func TestCheckerboardSurface(t *testing.T) {
	a, b := rgb.Black, rgb.White
	tex := CheckerboardSurface(1, a, b)

	testCases := []struct {
		uv   vec2.T
		want rgb.T
	}{
		{vec2.T{0.25, 0.25}, a},
		{vec2.T{0.75, 0.25}, b},
		{vec2.T{0.25, 0.75}, b},
		{vec2.T{0.75, 0.75}, a},
		{vec2.T{1.25, 0.25}, a},
	}
	for _, tc := range testCases {
		got := tex(MaterialCoords{Mtl2: tc.uv})
		if diff := cmp.Diff(got, tc.want); diff != "" {
			t.Errorf("At %v; diff (-got +want)\n%s", tc.uv, diff)
		}
	}
}

func TestImageTexture(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	img.Set(1, 1, color.RGBA{255, 255, 255, 255})

	tex := ImageTexture(img)

	testCases := []struct {
		uv   vec2.T
		want rgb.T
	}{
		{vec2.T{0, 0}, rgb.T{1, 0, 0}},
		{vec2.T{1, 0}, rgb.T{0, 1, 0}},
		{vec2.T{0, 1}, rgb.T{0, 0, 1}},
		{vec2.T{1, 1}, rgb.White},
		// Interior points land in the texel that covers them.
		{vec2.T{0.25, 0.25}, rgb.T{1, 0, 0}},
		{vec2.T{0.6, 0.1}, rgb.T{0, 1, 0}},
		{vec2.T{0.75, 0.4}, rgb.T{0, 1, 0}},
		{vec2.T{0.99, 0.5}, rgb.White},
		{vec2.T{0.49, 0.99}, rgb.T{0, 0, 1}},
		// Clamped to the border.
		{vec2.T{-3, 7}, rgb.T{0, 0, 1}},
	}
	for _, tc := range testCases {
		got := tex(MaterialCoords{Mtl2: tc.uv})
		if diff := cmp.Diff(got, tc.want); diff != "" {
			t.Errorf("At %v; diff (-got +want)\n%s", tc.uv, diff)
		}
	}
}
