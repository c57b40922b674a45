// Package rgb holds linear RGB colors.  Values outside [0, 1] are allowed
// while light is being accumulated; Clamp before display.
package rgb

type T [3]float64

var (
	Black = T{0, 0, 0}
	White = T{1, 1, 1}
)

func Grey(v float64) T {
	return T{v, v, v}
}

func AddCC(a, b T) T {
	return T{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func MulCS(a T, s float64) T {
	return T{a[0] * s, a[1] * s, a[2] * s}
}

func DivCS(a T, s float64) T {
	return T{a[0] / s, a[1] / s, a[2] / s}
}

// MulCC is the componentwise product, used to filter light by a surface.
func MulCC(a, b T) T {
	return T{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func Clamp(a T) T {
	for i := range a {
		if a[i] < 0 {
			a[i] = 0
		}
		if a[i] > 1 {
			a[i] = 1
		}
	}
	return a
}
