// Package material classifies asset surfaces and derives the shading
// parameters applied to them. Classification is heuristic: substring
// name matching backs up whatever the source document declares.
package material

import (
	"strings"

	"github.com/vitrine3d/vitrine/internal/engine/profile"
	"github.com/vitrine3d/vitrine/pkg/formats"
	"github.com/vitrine3d/vitrine/pkg/math"
)

// Class is the rendering treatment a surface receives.
type Class int

// Surface classes.
const (
	ClassStandard Class = iota
	ClassGlass
	ClassMetal
	ClassMirror
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case ClassGlass:
		return "glass"
	case ClassMetal:
		return "metal"
	case ClassMirror:
		return "mirror"
	default:
		return "standard"
	}
}

// Glass material constants.
const (
	GlassIOR          = 1.5
	GlassTransmission = 0.92
	glassMinRoughness = 0.02
	glassMaxRoughness = 0.12
	glassMinOpacity   = 0.05
	glassMaxOpacity   = 0.85
)

// MaxAnisotropy bounds anisotropic filtering regardless of what the
// GPU reports.
const MaxAnisotropy = 8

var glassTokens = []string{"glass", "glas", "crystal", "vitrine", "window", "lens"}
var metalTokens = []string{"metal", "steel", "iron", "alumin", "brass", "copper", "gold", "silver"}
var mirrorTokens = []string{"chrome", "mirror"}

// Props are the resolved shading parameters for one surface.
type Props struct {
	Class Class

	BaseColor    [4]float32
	Metalness    float32
	Roughness    float32
	Opacity      float32
	Transmission float32
	IOR          float32

	// DepthWrite is disabled for glass so it composites with other
	// transparent surfaces.
	DepthWrite bool

	// EnvIntensity scales reflection sampling; boosted for metals.
	EnvIntensity float32

	// NormalScale is the tier-gated normal-map intensity.
	NormalScale float32

	BaseColorTexture int // texture index, -1 when untextured
	NormalTexture    int
	DoubleSided      bool
}

// IsGlass reports whether a surface should receive the transmissive
// treatment: a glass name token, source-flagged transparency below 95%
// opacity, or a strong specular component.
func IsGlass(name string, mat *formats.Material) bool {
	if hasToken(name, glassTokens) {
		return true
	}
	if mat == nil {
		return false
	}
	if mat.Transparent() && mat.BaseColor()[3] < 0.95 {
		return true
	}
	return mat.SpecularStrength() > 0.8
}

// Classify derives shading properties for one surface. mat may be nil
// when the asset declared no material. The pass never fails: anything
// unrecognized falls through to the standard treatment.
func Classify(name string, mat *formats.Material, tier profile.Tier) Props {
	p := Props{
		BaseColor:        [4]float32{1, 1, 1, 1},
		Metalness:        0,
		Roughness:        0.8,
		Opacity:          1,
		DepthWrite:       true,
		EnvIntensity:     1,
		NormalScale:      normalScaleFor(tier),
		BaseColorTexture: -1,
		NormalTexture:    -1,
	}

	if mat != nil {
		p.BaseColor = mat.BaseColor()
		p.Metalness = mat.Metallic()
		p.Roughness = mat.Roughness()
		p.DoubleSided = mat.DoubleSided
		if t := mat.PBRMetallicRoughness.BaseColorTexture; t != nil {
			p.BaseColorTexture = t.Index
		}
		if mat.NormalTexture != nil {
			p.NormalTexture = mat.NormalTexture.Index
		}
	}

	if IsGlass(name, mat) {
		p.Class = ClassGlass
		p.IOR = GlassIOR
		p.Transmission = GlassTransmission
		p.Roughness = math.Clamp(p.Roughness, glassMinRoughness, glassMaxRoughness)
		p.Opacity = math.Clamp(p.BaseColor[3], glassMinOpacity, glassMaxOpacity)
		p.DepthWrite = false
		return p
	}

	// Everything else is force-opaque, even if the source flagged it
	// transparent.
	p.Opacity = 1
	p.BaseColor[3] = 1

	switch {
	case hasToken(name, mirrorTokens):
		p.Class = ClassMirror
		p.Metalness = 1.0
		p.Roughness = 0.02
		p.EnvIntensity = 1.6
	case hasToken(name, metalTokens) || p.Metalness > 0.5:
		p.Class = ClassMetal
		if p.Metalness < 0.85 {
			p.Metalness = 0.85
		}
		p.Roughness *= 0.6
		p.EnvIntensity = 1.4
	}

	return p
}

// ClampAnisotropy bounds a GPU-reported max anisotropy value.
func ClampAnisotropy(reported float32) float32 {
	if reported > MaxAnisotropy {
		return MaxAnisotropy
	}
	if reported < 1 {
		return 1
	}
	return reported
}

func normalScaleFor(tier profile.Tier) float32 {
	switch tier {
	case profile.TierHigh:
		return 1.25
	case profile.TierMedium:
		return 1.0
	default:
		return 0.75
	}
}

func hasToken(name string, tokens []string) bool {
	lower := strings.ToLower(name)
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
