package measure

import (
	"github.com/vitrine3d/vitrine/pkg/math"
)

// Axis indices into an Overlay's annotations.
const (
	AxisWidth = iota
	AxisHeight
	AxisThickness
)

// Segment is a line segment in model space.
type Segment struct {
	From, To math.Vec3
}

// Annotation is one dimension callout: the dimension line itself, two
// extension lines connecting it to the bounding box, perpendicular end
// ticks, and a label anchored at the line's midpoint.
type Annotation struct {
	Axis        int
	Line        Segment
	Extensions  [2]Segment
	Ticks       [2]Segment
	LabelAnchor math.Vec3
	LabelText   string

	valueMM float64
}

// ValueMM returns the millimeter value behind the label.
func (a Annotation) ValueMM() float64 {
	return a.valueMM
}

// Overlay is the full measurement overlay for one model.
// Geometry is rebuilt when the model or dimensions change; only label
// text changes when the display unit does.
type Overlay struct {
	Annotations [3]Annotation
	DisplayUnit Unit
	Visible     bool

	rebuilds int
}

// Build constructs the overlay for a model occupying boundsMin..boundsMax
// (in presentation space) with the given resolved dimensions.
func Build(boundsMin, boundsMax math.Vec3, dims Dimensions, display Unit) *Overlay {
	if !display.Valid() {
		display = Millimeter
	}
	size := boundsMax.Sub(boundsMin)
	offset := size.MaxComponent() * 0.08
	if offset < 3 {
		offset = 3
	}

	o := &Overlay{
		DisplayUnit: display,
		Visible:     true,
	}

	// Width runs along X below the front face.
	o.Annotations[AxisWidth] = buildAnnotation(
		AxisWidth, dims.WidthMM, display,
		math.Vec3{X: boundsMin.X, Y: boundsMin.Y, Z: boundsMax.Z},
		math.Vec3{X: boundsMax.X, Y: boundsMin.Y, Z: boundsMax.Z},
		math.Vec3{Z: offset},
		math.Vec3{Z: 1},
	)

	// Height runs along Y beside the left face.
	o.Annotations[AxisHeight] = buildAnnotation(
		AxisHeight, dims.HeightMM, display,
		math.Vec3{X: boundsMin.X, Y: boundsMin.Y, Z: boundsMax.Z},
		math.Vec3{X: boundsMin.X, Y: boundsMax.Y, Z: boundsMax.Z},
		math.Vec3{X: -offset},
		math.Vec3{X: -1},
	)

	// Thickness runs along Z beside the right face.
	o.Annotations[AxisThickness] = buildAnnotation(
		AxisThickness, dims.ThicknessMM, display,
		math.Vec3{X: boundsMax.X, Y: boundsMin.Y, Z: boundsMin.Z},
		math.Vec3{X: boundsMax.X, Y: boundsMin.Y, Z: boundsMax.Z},
		math.Vec3{X: offset},
		math.Vec3{X: 1},
	)

	o.rebuilds = 1
	return o
}

// buildAnnotation places the dimension line parallel to the box edge
// cornerA..cornerB, pushed outward by offset. tickDir is the outward
// direction used for the perpendicular end ticks.
func buildAnnotation(axis int, mm float64, display Unit, cornerA, cornerB, offset, tickDir math.Vec3) Annotation {
	from := cornerA.Add(offset)
	to := cornerB.Add(offset)

	length := to.Sub(from).Length()
	tickLen := length * 0.03
	if tickLen < 1.5 {
		tickLen = 1.5
	}
	halfTick := tickDir.Scale(tickLen / 2)

	return Annotation{
		Axis: axis,
		Line: Segment{From: from, To: to},
		Extensions: [2]Segment{
			{From: cornerA, To: from},
			{From: cornerB, To: to},
		},
		Ticks: [2]Segment{
			{From: from.Sub(halfTick), To: from.Add(halfTick)},
			{From: to.Sub(halfTick), To: to.Add(halfTick)},
		},
		LabelAnchor: from.Add(to).Scale(0.5),
		LabelText:   Format(mm, display),
		valueMM:     mm,
	}
}

// SetDisplayUnit rewrites the label text in place from the stored
// millimeter values. No geometry is touched.
func (o *Overlay) SetDisplayUnit(u Unit) {
	if !u.Valid() || u == o.DisplayUnit {
		return
	}
	o.DisplayUnit = u
	for i := range o.Annotations {
		o.Annotations[i].LabelText = Format(o.Annotations[i].valueMM, u)
	}
}

// Rebuilds returns how many times the overlay geometry was constructed.
func (o *Overlay) Rebuilds() int {
	return o.rebuilds
}

// Segments collects every line segment for the renderer.
func (o *Overlay) Segments() []Segment {
	segs := make([]Segment, 0, 15)
	for i := range o.Annotations {
		a := &o.Annotations[i]
		segs = append(segs, a.Line, a.Extensions[0], a.Extensions[1], a.Ticks[0], a.Ticks[1])
	}
	return segs
}
