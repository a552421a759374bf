// Package measure derives product dimensions from mesh bounds or an
// authoritative spec and builds the dimension-line overlay geometry.
package measure

import "fmt"

// Unit is a measurement display or model unit.
type Unit string

// Supported units.
const (
	Millimeter Unit = "mm"
	Centimeter Unit = "cm"
	Meter      Unit = "m"
)

// MillimeterFactor returns how many millimeters one of this unit is.
func (u Unit) MillimeterFactor() float64 {
	switch u {
	case Centimeter:
		return 10
	case Meter:
		return 1000
	default:
		return 1
	}
}

// Valid reports whether u is one of the supported units.
func (u Unit) Valid() bool {
	switch u {
	case Millimeter, Centimeter, Meter:
		return true
	}
	return false
}

// ParseUnit normalizes a unit string, falling back to millimeter.
func ParseUnit(s string) Unit {
	switch s {
	case "mm", "millimeter", "millimeters":
		return Millimeter
	case "cm", "centimeter", "centimeters":
		return Centimeter
	case "m", "meter", "meters":
		return Meter
	}
	return Millimeter
}

// Convert converts a millimeter value into the given display unit.
func Convert(mm float64, to Unit) float64 {
	return mm / to.MillimeterFactor()
}

// Format renders a millimeter value in the given display unit with that
// unit's rounding rule: mm >= 10 rounds to integer, otherwise one
// decimal; cm one decimal; m two decimals.
func Format(mm float64, display Unit) string {
	v := Convert(mm, display)
	switch display {
	case Meter:
		return fmt.Sprintf("%.2f m", v)
	case Centimeter:
		return fmt.Sprintf("%.1f cm", v)
	default:
		if v >= 10 {
			return fmt.Sprintf("%.0f mm", v)
		}
		return fmt.Sprintf("%.1f mm", v)
	}
}
