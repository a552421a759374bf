package model

// Normalize re-centers the mesh so its horizontal center sits at the
// origin and its lowest point on the ground plane, then uniformly
// scales it so the largest dimension equals targetSize. The transform
// is purely presentational: RawBounds and RawSize are computed before
// it and stay untouched.
func (m *Mesh) Normalize(targetSize float32) {
	if targetSize <= 0 {
		targetSize = NormalizedSize
	}

	center := m.RawBounds.Center()
	minY := m.RawBounds.Min[1]

	maxDim := m.RawBounds.MaxDimension()
	scale := float32(1)
	if maxDim > 0 {
		scale = targetSize / maxDim
	}

	for si := range m.Surfaces {
		verts := m.Surfaces[si].Vertices
		for vi := range verts {
			p := &verts[vi].Position
			p[0] = (p[0] - center.X) * scale
			p[1] = (p[1] - minY) * scale
			p[2] = (p[2] - center.Z) * scale
		}
	}

	m.NormalizedBounds = m.computeBounds()
}
