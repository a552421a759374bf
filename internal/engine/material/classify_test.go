package material

import (
	"testing"

	"github.com/vitrine3d/vitrine/internal/engine/profile"
	"github.com/vitrine3d/vitrine/pkg/formats"
)

func f32(v float32) *float32 { return &v }

func plastic() *formats.Material {
	m := &formats.Material{Name: "PlasticShell"}
	m.PBRMetallicRoughness.MetallicFactor = f32(0)
	m.PBRMetallicRoughness.RoughnessFactor = f32(0.7)
	return m
}

func TestIsGlass_NameToken(t *testing.T) {
	for _, name := range []string{"FrontGlass", "glass_panel", "Crystal_01", "side WINDOW"} {
		if !IsGlass(name, nil) {
			t.Errorf("IsGlass(%q) = false, want true", name)
		}
	}
	if IsGlass("WoodFrame", nil) {
		t.Error("IsGlass(WoodFrame) = true, want false")
	}
}

func TestIsGlass_TransparencyFlag(t *testing.T) {
	m := plastic()
	m.AlphaMode = "BLEND"
	m.PBRMetallicRoughness.BaseColorFactor = &[4]float32{1, 1, 1, 0.5}
	if !IsGlass("Shell", m) {
		t.Error("blended material at 50% opacity should read as glass")
	}

	// Nearly opaque blend stays standard.
	m.PBRMetallicRoughness.BaseColorFactor = &[4]float32{1, 1, 1, 0.97}
	if IsGlass("Shell", m) {
		t.Error("blend at 97% opacity should not read as glass")
	}
}

func TestIsGlass_StrongSpecular(t *testing.T) {
	m := plastic()
	m.Extensions.Specular = &struct {
		SpecularFactor *float32 `json:"specularFactor"`
	}{SpecularFactor: f32(0.95)}
	if !IsGlass("Shell", m) {
		t.Error("strong specular factor should read as glass")
	}
}

func TestClassify_GlassParameters(t *testing.T) {
	m := plastic()
	m.Name = "TableGlass"
	m.AlphaMode = "BLEND"
	m.PBRMetallicRoughness.BaseColorFactor = &[4]float32{0.9, 0.95, 1, 0.3}
	m.PBRMetallicRoughness.RoughnessFactor = f32(0.5)

	p := Classify(m.Name, m, profile.TierHigh)
	if p.Class != ClassGlass {
		t.Fatalf("class = %v, want glass", p.Class)
	}
	if p.IOR != GlassIOR {
		t.Errorf("IOR = %v, want %v", p.IOR, float32(GlassIOR))
	}
	if p.Transmission != GlassTransmission {
		t.Errorf("transmission = %v, want %v", p.Transmission, float32(GlassTransmission))
	}
	if p.Roughness != glassMaxRoughness {
		t.Errorf("roughness = %v, want clamped to %v", p.Roughness, float32(glassMaxRoughness))
	}
	if p.Opacity != 0.3 {
		t.Errorf("opacity = %v, want 0.3", p.Opacity)
	}
	if p.DepthWrite {
		t.Error("glass must not write depth")
	}
}

func TestClassify_GlassOpacityClamps(t *testing.T) {
	m := plastic()
	m.AlphaMode = "BLEND"
	m.PBRMetallicRoughness.BaseColorFactor = &[4]float32{1, 1, 1, 0.01}
	if p := Classify("glass", m, profile.TierHigh); p.Opacity != glassMinOpacity {
		t.Errorf("opacity = %v, want floor %v", p.Opacity, float32(glassMinOpacity))
	}

	// Name token alone forces glass even when the color is opaque;
	// opacity caps so the surface still reads as transmissive.
	m2 := plastic()
	if p := Classify("glass", m2, profile.TierHigh); p.Opacity != glassMaxOpacity {
		t.Errorf("opacity = %v, want cap %v", p.Opacity, float32(glassMaxOpacity))
	}
}

func TestClassify_NonGlassForcedOpaque(t *testing.T) {
	m := plastic()
	m.AlphaMode = "BLEND"
	m.PBRMetallicRoughness.BaseColorFactor = &[4]float32{1, 0, 0, 0.98}

	p := Classify("Shell", m, profile.TierMedium)
	if p.Class != ClassStandard {
		t.Fatalf("class = %v, want standard", p.Class)
	}
	if p.Opacity != 1 || p.BaseColor[3] != 1 {
		t.Errorf("opacity = %v alpha = %v, want forced opaque", p.Opacity, p.BaseColor[3])
	}
	if !p.DepthWrite {
		t.Error("opaque surfaces write depth")
	}
}

func TestClassify_MetalByNameAndFactor(t *testing.T) {
	byName := plastic()
	byName.Name = "BrushedSteelLeg"
	p := Classify(byName.Name, byName, profile.TierHigh)
	if p.Class != ClassMetal {
		t.Fatalf("class = %v, want metal", p.Class)
	}
	if p.Metalness < 0.85 {
		t.Errorf("metalness = %v, want boosted to at least 0.85", p.Metalness)
	}
	if p.EnvIntensity <= 1 {
		t.Errorf("env intensity = %v, want boosted", p.EnvIntensity)
	}

	byFactor := plastic()
	byFactor.PBRMetallicRoughness.MetallicFactor = f32(0.8)
	if p := Classify("Leg", byFactor, profile.TierHigh); p.Class != ClassMetal {
		t.Errorf("metallic factor 0.8 should classify as metal, got %v", p.Class)
	}
}

func TestClassify_Mirror(t *testing.T) {
	p := Classify("ChromeTrim", plastic(), profile.TierHigh)
	if p.Class != ClassMirror {
		t.Fatalf("class = %v, want mirror", p.Class)
	}
	if p.Metalness != 1.0 || p.Roughness != 0.02 {
		t.Errorf("metalness = %v roughness = %v, want 1.0/0.02", p.Metalness, p.Roughness)
	}
}

func TestClassify_NilMaterial(t *testing.T) {
	p := Classify("Body", nil, profile.TierLow)
	if p.Class != ClassStandard {
		t.Errorf("class = %v, want standard", p.Class)
	}
	if p.BaseColorTexture != -1 || p.NormalTexture != -1 {
		t.Errorf("texture indices = %d/%d, want -1/-1", p.BaseColorTexture, p.NormalTexture)
	}
}

func TestClassify_NormalScaleByTier(t *testing.T) {
	low := Classify("Body", plastic(), profile.TierLow)
	med := Classify("Body", plastic(), profile.TierMedium)
	high := Classify("Body", plastic(), profile.TierHigh)
	if !(low.NormalScale < med.NormalScale && med.NormalScale < high.NormalScale) {
		t.Errorf("normal scale not monotone across tiers: %v %v %v",
			low.NormalScale, med.NormalScale, high.NormalScale)
	}
}

func TestClampAnisotropy(t *testing.T) {
	if got := ClampAnisotropy(16); got != MaxAnisotropy {
		t.Errorf("ClampAnisotropy(16) = %v, want %v", got, float32(MaxAnisotropy))
	}
	if got := ClampAnisotropy(0); got != 1 {
		t.Errorf("ClampAnisotropy(0) = %v, want 1", got)
	}
	if got := ClampAnisotropy(4); got != 4 {
		t.Errorf("ClampAnisotropy(4) = %v, want 4", got)
	}
}
