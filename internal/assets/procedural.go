package assets

import (
	"image"
	"image/color"
	"math"

	perlin "github.com/aquilax/go-perlin"
)

const starColorRows = 16

// Perlin parameters: alpha is the octave weight divisor, beta the frequency
// multiplier, octaves the number of summed layers.
const (
	noiseAlpha   = 2
	noiseBeta    = 2
	noiseOctaves = 4
)

// SunSurface returns a grey granulation texture that wraps seamlessly in u.
func SunSurface(size int, seed int64) *image.RGBA {
	p := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed)
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		v := float64(y) / float64(size)
		for x := 0; x < size; x++ {
			u := float64(x) / float64(size)
			coarse := wrapped(p, u, v, 6)
			fine := wrapped(p, u+0.37, v+0.11, 24)
			g := toByte(0.5 + 0.8*coarse + 0.4*fine)
			img.SetRGBA(x, y, color.RGBA{R: g, G: g, B: g, A: 255})
		}
	}
	return img
}

// Noise returns three independent wrapping noise fields in R, G and B.
func Noise(size int, seed int64) *image.RGBA {
	p := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed)
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		v := float64(y) / float64(size)
		for x := 0; x < size; x++ {
			u := float64(x) / float64(size)
			img.SetRGBA(x, y, color.RGBA{
				R: toByte(0.5 + wrapped(p, u, v, 4)),
				G: toByte(0.5 + wrapped(p, u, v+3.1, 8)),
				B: toByte(0.5 + wrapped(p, u, v+7.7, 16)),
				A: 255,
			})
		}
	}
	return img
}

// starRamp runs from cold black through red and orange to white.
var starRamp = []struct {
	at float64
	c  [3]float64
}{
	{0.00, [3]float64{0, 0, 0}},
	{0.30, [3]float64{0.55, 0.06, 0.01}},
	{0.55, [3]float64{1.00, 0.42, 0.05}},
	{0.80, [3]float64{1.00, 0.82, 0.30}},
	{1.00, [3]float64{1.00, 1.00, 0.92}},
}

// StarColor returns the heat-to-color lookup. x is heat; each row applies a
// different brightness so the animated row offset makes the surface pulse.
func StarColor(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	span := float64(max(width-1, 1))
	for y := 0; y < height; y++ {
		pulse := 0.85 + 0.3*(0.5+0.5*math.Sin(2*math.Pi*float64(y)/float64(height)))
		for x := 0; x < width; x++ {
			heat := float64(x) / span * pulse
			c := rampAt(heat)
			img.SetRGBA(x, y, color.RGBA{R: toByte(c[0]), G: toByte(c[1]), B: toByte(c[2]), A: 255})
		}
	}
	return img
}

func rampAt(t float64) [3]float64 {
	if t <= starRamp[0].at {
		return starRamp[0].c
	}
	for i := 1; i < len(starRamp); i++ {
		hi := starRamp[i]
		if t <= hi.at {
			lo := starRamp[i-1]
			f := (t - lo.at) / (hi.at - lo.at)
			return [3]float64{
				lo.c[0] + (hi.c[0]-lo.c[0])*f,
				lo.c[1] + (hi.c[1]-lo.c[1])*f,
				lo.c[2] + (hi.c[2]-lo.c[2])*f,
			}
		}
	}
	return starRamp[len(starRamp)-1].c
}

// wrapped samples 3D noise on a cylinder so the result tiles in u.
func wrapped(p *perlin.Perlin, u, v, scale float64) float64 {
	angle := 2 * math.Pi * u
	radius := scale / (2 * math.Pi)
	return p.Noise3D(radius*math.Cos(angle), radius*math.Sin(angle), v*scale)
}

func toByte(f float64) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(f*255 + 0.5)
}
