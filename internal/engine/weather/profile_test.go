package weather

import "testing"

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"sunny", Sunny},
		{"rainy", Rainy},
		{"rain", Rainy},
		{"Rainy", Rainy},
		{" night ", Night},
		{"foggy", Foggy},
		{"fog", Foggy},
		{"", Sunny},
		{"hurricane", Sunny},
	}
	for _, tc := range tests {
		if got := ParseKind(tc.in); got != tc.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestKindString_RoundTrip(t *testing.T) {
	for _, kind := range Kinds {
		if got := ParseKind(kind.String()); got != kind {
			t.Errorf("ParseKind(%q) = %v, want %v", kind.String(), got, kind)
		}
	}
}
