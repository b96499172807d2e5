// based on:
// https://bottosson.github.io/posts/oklab/

// Package okcolor converts 8-bit sRGB colors to the OKLab perceptual space.
package okcolor

import "math"

type Lab struct {
	L float64 // perceived lightness
	A float64 // how green/red the color is
	B float64 // how blue/yellow the color is
}

// linear maps an 8-bit sRGB channel to linear light.
var linear [256]float64

func init() {
	for i := range linear {
		linear[i] = toLinear(float64(i) / 255)
	}
}

func toLinear(x float64) float64 {
	if x >= 0.04045 {
		return math.Pow((x+0.055)/1.055, 2.4)
	}
	return x / 12.92
}

// FromSRGB converts an 8-bit sRGB triple.
func FromSRGB(r, g, b uint8) Lab {
	lr, lg, lb := linear[r], linear[g], linear[b]

	l := math.Cbrt(0.4122214708*lr + 0.5363325363*lg + 0.0514459929*lb)
	m := math.Cbrt(0.2119034982*lr + 0.6806995451*lg + 0.1073969566*lb)
	s := math.Cbrt(0.0883024619*lr + 0.2817188376*lg + 0.6299787005*lb)

	return Lab{
		L: 0.2104542553*l + 0.7936177850*m - 0.0040720468*s,
		A: 1.9779984951*l - 2.4285922050*m + 0.4505937099*s,
		B: 0.0259040371*l + 0.7827717662*m - 0.8086757660*s,
	}
}

// Dist2 is the squared Euclidean distance between two colors.
func (lc Lab) Dist2(o Lab) float64 {
	dL := lc.L - o.L
	da := lc.A - o.A
	db := lc.B - o.B
	return dL*dL + da*da + db*db
}
