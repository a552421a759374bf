package scene

import (
	"testing"

	"github.com/vitrine3d/vitrine/internal/engine/profile"
	"github.com/vitrine3d/vitrine/internal/engine/weather"
)

func TestApplyWeather_KeepsEnvironmentMap(t *testing.T) {
	q := profile.New(8, 1)
	s := &Scene{config: Config{Quality: q}}
	em := &EnvMap{tex: 7, size: EnvFaceSize(q.Tier)}
	s.envMap = em

	for _, kind := range weather.Kinds {
		s.ApplyWeather(weather.ParamsFor(kind, q))
	}

	if s.envMap != em || em.tex != 7 {
		t.Error("weather switch replaced the session environment map")
	}
	if s.params.Kind != weather.Foggy {
		t.Errorf("params kind = %v, want last applied profile", s.params.Kind)
	}
}

func TestEnvFaceSize_PerTier(t *testing.T) {
	tests := []struct {
		tier profile.Tier
		want int
	}{
		{profile.TierLow, 64},
		{profile.TierMedium, 128},
		{profile.TierHigh, 256},
	}
	for _, tc := range tests {
		if got := EnvFaceSize(tc.tier); got != tc.want {
			t.Errorf("EnvFaceSize(%v) = %d, want %d", tc.tier, got, tc.want)
		}
	}
}
