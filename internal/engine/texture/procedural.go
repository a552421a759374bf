package texture

import (
	"image"
	"image/color"
	"math"
)

// RainSprite generates the rain streak sprite: a soft vertical streak,
// brightest at the center column, fading toward both ends. Alpha-only
// shape in a white texture so the particle shader can tint it.
func RainSprite(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	cx := float64(width-1) / 2
	for y := 0; y < height; y++ {
		// Fade in at the top, long tail at the bottom.
		v := float64(y) / float64(height-1)
		lengthFade := math.Sin(v * math.Pi)
		lengthFade = math.Pow(lengthFade, 0.7)
		for x := 0; x < width; x++ {
			d := math.Abs(float64(x)-cx) / (cx + 0.5)
			core := math.Max(0, 1-d*d*3)
			a := uint8(math.Min(1, core*lengthFade) * 255)
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: a})
		}
	}
	return img
}

// WindSprite generates the wind mote sprite: a soft radial dot with a
// gaussian falloff.
func WindSprite(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	c := float64(size-1) / 2
	sigma := float64(size) / 5
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) - c
			dy := float64(y) - c
			a := math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: uint8(a * 255)})
		}
	}
	return img
}

// Cubemap face indices in GL order: +X -X +Y -Y +Z -Z.
const (
	FacePosX = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// EnvFaces generates the six faces of a neutral environment cubemap:
// a vertical sky gradient toward skyColor at the zenith and a
// groundColor bounce below the horizon. size is the face edge in
// pixels (64/128/256 by tier).
func EnvFaces(size int, skyColor, groundColor [3]float32) [6]*image.RGBA {
	var faces [6]*image.RGBA
	horizon := mix3(skyColor, groundColor, 0.5)

	for f := 0; f < 6; f++ {
		img := image.NewRGBA(image.Rect(0, 0, size, size))
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				dir := faceDirection(f, x, y, size)
				var c [3]float32
				switch {
				case dir[1] >= 0:
					c = mix3(horizon, skyColor, dir[1])
				default:
					c = mix3(horizon, groundColor, -dir[1])
				}
				img.SetRGBA(x, y, color.RGBA{
					R: uint8(clamp01(c[0]) * 255),
					G: uint8(clamp01(c[1]) * 255),
					B: uint8(clamp01(c[2]) * 255),
					A: 255,
				})
			}
		}
		faces[f] = img
	}
	return faces
}

// faceDirection maps a cubemap texel to its normalized world direction.
func faceDirection(face, x, y, size int) [3]float32 {
	// Texel center in [-1,1].
	u := (2*(float32(x)+0.5)/float32(size) - 1)
	v := (2*(float32(y)+0.5)/float32(size) - 1)

	var d [3]float32
	switch face {
	case FacePosX:
		d = [3]float32{1, -v, -u}
	case FaceNegX:
		d = [3]float32{-1, -v, u}
	case FacePosY:
		d = [3]float32{u, 1, v}
	case FaceNegY:
		d = [3]float32{u, -1, -v}
	case FacePosZ:
		d = [3]float32{u, -v, 1}
	default: // FaceNegZ
		d = [3]float32{-u, -v, -1}
	}

	l := float32(math.Sqrt(float64(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])))
	return [3]float32{d[0] / l, d[1] / l, d[2] / l}
}

func mix3(a, b [3]float32, t float32) [3]float32 {
	return [3]float32{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
