package measure

import (
	"math"
	"testing"
)

func TestUnitMillimeterFactor(t *testing.T) {
	tests := []struct {
		unit Unit
		want float64
	}{
		{Millimeter, 1},
		{Centimeter, 10},
		{Meter, 1000},
	}
	for _, tc := range tests {
		if got := tc.unit.MillimeterFactor(); got != tc.want {
			t.Errorf("%s factor = %v, want %v", tc.unit, got, tc.want)
		}
	}
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in   string
		want Unit
	}{
		{"mm", Millimeter},
		{"millimeters", Millimeter},
		{"cm", Centimeter},
		{"centimeter", Centimeter},
		{"m", Meter},
		{"meters", Meter},
		{"", Millimeter},
		{"furlong", Millimeter},
	}
	for _, tc := range tests {
		if got := ParseUnit(tc.in); got != tc.want {
			t.Errorf("ParseUnit(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

// Converting to a display unit and back must recover the original value
// within that unit's rounding precision.
func TestConvertRoundTrip(t *testing.T) {
	values := []float64{0.5, 1, 5, 9.9, 10, 50, 123, 1500, 2000, 12345}
	units := []struct {
		unit      Unit
		precision float64 // display precision expressed in mm
	}{
		{Millimeter, 0.5},
		{Centimeter, 0.5},  // 0.1 cm = 1 mm, half-step 0.5 mm
		{Meter, 5},         // 0.01 m = 10 mm, half-step 5 mm
	}

	for _, u := range units {
		for _, mm := range values {
			converted := Convert(mm, u.unit)
			back := converted * u.unit.MillimeterFactor()
			if diff := math.Abs(back - mm); diff > u.precision {
				t.Errorf("%v mm -> %v %s -> %v mm (diff %v > %v)",
					mm, converted, u.unit, back, diff, u.precision)
			}
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		mm      float64
		display Unit
		want    string
	}{
		{2000, Millimeter, "2000 mm"},
		{50, Millimeter, "50 mm"},
		{9.94, Millimeter, "9.9 mm"},
		{1234.4, Millimeter, "1234 mm"},
		{2000, Centimeter, "200.0 cm"},
		{55, Centimeter, "5.5 cm"},
		{2000, Meter, "2.00 m"},
		{1200, Meter, "1.20 m"},
		{50, Meter, "0.05 m"},
	}
	for _, tc := range tests {
		if got := Format(tc.mm, tc.display); got != tc.want {
			t.Errorf("Format(%v, %s) = %q, want %q", tc.mm, tc.display, got, tc.want)
		}
	}
}
