package shadow

import (
	"github.com/vitrine3d/vitrine/pkg/math"
)

// Frustum half-extent of the sun's orthographic shadow volume. The
// model is normalized to 100 units, so a fixed stage-sized box covers
// it with margin for particle travel.
const FrustumHalfExtent = 200

// SunMatrix computes the view-projection matrix for the directional
// sun's depth pass. lightDir points TO the light, normalized.
func SunMatrix(lightDir math.Vec3) math.Mat4 {
	stageCenter := math.Vec3{X: 0, Y: FrustumHalfExtent / 4, Z: 0}
	lightDistance := float32(FrustumHalfExtent * 2)

	lightPos := math.Vec3{
		X: stageCenter.X + lightDir.X*lightDistance,
		Y: stageCenter.Y + lightDir.Y*lightDistance,
		Z: stageCenter.Z + lightDir.Z*lightDistance,
	}

	up := math.Vec3{X: 0, Y: 1, Z: 0}
	if abs32(lightDir.Y) > 0.99 {
		up = math.Vec3{X: 0, Y: 0, Z: 1}
	}

	view := math.LookAt(lightPos, stageCenter, up)
	proj := math.Ortho(
		-FrustumHalfExtent, FrustumHalfExtent,
		-FrustumHalfExtent, FrustumHalfExtent,
		0.1, lightDistance+FrustumHalfExtent,
	)
	return proj.Mul(view)
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
