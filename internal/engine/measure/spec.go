package measure

import (
	"regexp"
	"strconv"
	"strings"
)

// Spec carries externally supplied product dimensions. Each value may be
// a bare number or a numeric string with an optional unit suffix
// ("1500", "1500mm", "1.2 m"). Unit declares the default for bare
// numbers; when empty it falls back to millimeter.
type Spec struct {
	Width     string `yaml:"width"`
	Height    string `yaml:"height"`
	Thickness string `yaml:"thickness"`
	Unit      string `yaml:"unit"`
}

// Empty reports whether no dimension value was supplied at all.
func (s Spec) Empty() bool {
	return s.Width == "" && s.Height == "" && s.Thickness == ""
}

// Dimensions are resolved width/height/thickness values in millimeters.
type Dimensions struct {
	WidthMM     float64
	HeightMM    float64
	ThicknessMM float64

	// Authoritative is true when all three axes parsed from the spec;
	// such dimensions stay fixed regardless of the assumed model unit.
	Authoritative bool
}

// Values returns the three millimeter values in width/height/thickness order.
func (d Dimensions) Values() [3]float64 {
	return [3]float64{d.WidthMM, d.HeightMM, d.ThicknessMM}
}

var dimensionPattern = regexp.MustCompile(`^\s*([0-9]+(?:[.,][0-9]+)?)\s*(mm|cm|m)?\s*$`)

// ParseDimension parses a single dimension value into millimeters.
// defaultUnit applies when the value carries no suffix. Returns false
// for anything that does not match the numeric+unit pattern.
func ParseDimension(value string, defaultUnit Unit) (float64, bool) {
	m := dimensionPattern.FindStringSubmatch(strings.ToLower(value))
	if m == nil {
		return 0, false
	}
	num, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil || num <= 0 {
		return 0, false
	}
	unit := defaultUnit
	if m[2] != "" {
		unit = Unit(m[2])
	}
	if !unit.Valid() {
		unit = Millimeter
	}
	return num * unit.MillimeterFactor(), true
}

// Resolve reconciles a Spec against the mesh's raw bounding size.
// Axes that parse from the spec use the authoritative value; the rest
// fall back to rawSize_axis x mmPerUnit(assumedUnit). rawSize is the
// pre-normalization mesh size in its native coordinates.
func Resolve(spec Spec, rawSize [3]float64, assumedUnit Unit) Dimensions {
	defaultUnit := ParseUnit(spec.Unit)
	if !assumedUnit.Valid() {
		assumedUnit = Meter
	}
	scale := assumedUnit.MillimeterFactor()

	values := [3]string{spec.Width, spec.Height, spec.Thickness}
	var out [3]float64
	parsed := 0
	for i, v := range values {
		if mm, ok := ParseDimension(v, defaultUnit); ok {
			out[i] = mm
			parsed++
			continue
		}
		out[i] = rawSize[i] * scale
	}

	return Dimensions{
		WidthMM:       out[0],
		HeightMM:      out[1],
		ThicknessMM:   out[2],
		Authoritative: parsed == 3,
	}
}
