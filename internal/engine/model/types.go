// Package model builds renderable mesh data from parsed assets and
// computes the bounding geometry the rest of the engine consumes.
package model

import (
	"github.com/vitrine3d/vitrine/pkg/math"
)

// NormalizedSize is the presentation size of a loaded model: its
// largest dimension is scaled to exactly this many units.
const NormalizedSize = 100

// Vertex is the interleaved vertex layout uploaded to the GPU.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Surface is one drawable primitive group with a single material.
type Surface struct {
	Name          string
	MaterialIndex int // index into the source document's materials, -1 when absent
	Vertices      []Vertex
	Indices       []uint32
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Size returns the box extents.
func (b Bounds) Size() math.Vec3 {
	return math.Vec3{
		X: b.Max[0] - b.Min[0],
		Y: b.Max[1] - b.Min[1],
		Z: b.Max[2] - b.Min[2],
	}
}

// Center returns the box center point.
func (b Bounds) Center() math.Vec3 {
	return math.Vec3{
		X: (b.Min[0] + b.Max[0]) / 2,
		Y: (b.Min[1] + b.Max[1]) / 2,
		Z: (b.Min[2] + b.Max[2]) / 2,
	}
}

// MaxDimension returns the largest extent.
func (b Bounds) MaxDimension() float32 {
	return b.Size().MaxComponent()
}

// Mesh is a complete loaded model. RawBounds and RawSize are measured
// in the asset's native coordinates before any presentation transform;
// dimension inference always reads these, never the normalized bounds.
type Mesh struct {
	Surfaces []Surface

	RawBounds Bounds
	RawSize   math.Vec3

	// NormalizedBounds is valid after Normalize.
	NormalizedBounds Bounds
}

// computeBounds scans every surface vertex.
func (m *Mesh) computeBounds() Bounds {
	b := Bounds{
		Min: [3]float32{1e30, 1e30, 1e30},
		Max: [3]float32{-1e30, -1e30, -1e30},
	}
	for si := range m.Surfaces {
		for vi := range m.Surfaces[si].Vertices {
			p := m.Surfaces[si].Vertices[vi].Position
			for c := 0; c < 3; c++ {
				if p[c] < b.Min[c] {
					b.Min[c] = p[c]
				}
				if p[c] > b.Max[c] {
					b.Max[c] = p[c]
				}
			}
		}
	}
	return b
}
