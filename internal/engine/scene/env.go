package scene

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/vitrine3d/vitrine/internal/engine/profile"
	"github.com/vitrine3d/vitrine/internal/engine/texture"
)

// EnvFaceSize returns the cubemap face edge for a quality tier.
func EnvFaceSize(tier profile.Tier) int {
	switch tier {
	case profile.TierHigh:
		return 256
	case profile.TierMedium:
		return 128
	default:
		return 64
	}
}

// EnvMap is the procedural reflection cubemap, generated once per
// session and shared by every surface.
type EnvMap struct {
	tex  uint32
	size int
}

// NewEnvMap builds and uploads the neutral gradient cubemap.
func NewEnvMap(tier profile.Tier, sky, ground [3]float32) *EnvMap {
	size := EnvFaceSize(tier)
	faces := texture.EnvFaces(size, sky, ground)

	em := &EnvMap{size: size}
	gl.GenTextures(1, &em.tex)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, em.tex)
	for i, face := range faces {
		gl.TexImage2D(
			gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i),
			0, gl.RGBA8, int32(size), int32(size), 0,
			gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(face.Pix),
		)
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)

	return em
}

// Texture returns the cubemap texture id.
func (em *EnvMap) Texture() uint32 {
	return em.tex
}

// Size returns the face edge in pixels.
func (em *EnvMap) Size() int {
	return em.size
}

// Destroy releases the cubemap. Idempotent.
func (em *EnvMap) Destroy() {
	if em.tex != 0 {
		gl.DeleteTextures(1, &em.tex)
		em.tex = 0
	}
}
