// Package camera provides the orbit camera the viewer session drives.
package camera

import (
	gomath "math"

	"github.com/vitrine3d/vitrine/pkg/math"
)

// OrbitCamera orbits a target point with exponentially damped motion:
// input writes goal values, Update eases the live values toward them
// every frame.
type OrbitCamera struct {
	// Live state, read by ViewMatrix.
	Target    math.Vec3
	Distance  float32
	Pitch     float32 // radians, clamped away from the poles
	Yaw       float32

	// Goal state written by input handlers.
	goalTarget   math.Vec3
	goalDistance float32
	goalPitch    float32
	goalYaw      float32

	// Constraints, derived from the framed bounds.
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
	PanSensitivity  float32

	// Damping is the easing rate per second; higher snaps faster.
	Damping float32

	disposed bool
}

// NewOrbitCamera creates an orbit camera with viewer defaults.
func NewOrbitCamera() *OrbitCamera {
	c := &OrbitCamera{
		Distance:        220.0,
		Pitch:           0.45,
		Yaw:             0.6,
		MinDistance:     30.0,
		MaxDistance:     600.0,
		MinPitch:        -1.4,
		MaxPitch:        1.4,
		DragSensitivity: 0.006,
		ZoomSensitivity: 0.1,
		PanSensitivity:  0.0015,
		Damping:         8.0,
	}
	c.snapGoals()
	return c
}

func (c *OrbitCamera) snapGoals() {
	c.goalTarget = c.Target
	c.goalDistance = c.Distance
	c.goalPitch = c.Pitch
	c.goalYaw = c.Yaw
}

// Update eases live values toward goals. dt is the frame delta in
// seconds; runs every frame regardless of the heavy-step gate.
func (c *OrbitCamera) Update(dt float32) {
	t := 1 - float32(gomath.Exp(float64(-c.Damping*dt)))
	c.Distance += (c.goalDistance - c.Distance) * t
	c.Pitch += (c.goalPitch - c.Pitch) * t
	c.Yaw += (c.goalYaw - c.Yaw) * t
	c.Target.X += (c.goalTarget.X - c.Target.X) * t
	c.Target.Y += (c.goalTarget.Y - c.Target.Y) * t
	c.Target.Z += (c.goalTarget.Z - c.Target.Z) * t
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cp := float32(gomath.Cos(float64(c.Pitch)))
	return math.Vec3{
		X: c.Target.X + c.Distance*cp*float32(gomath.Sin(float64(c.Yaw))),
		Y: c.Target.Y + c.Distance*float32(gomath.Sin(float64(c.Pitch))),
		Z: c.Target.Z + c.Distance*cp*float32(gomath.Cos(float64(c.Yaw))),
	}
}

// ViewMatrix returns the view matrix for the current live state.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	return math.LookAt(c.Position(), c.Target, up)
}

// HandleDrag updates the goal rotation from a mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.goalYaw -= deltaX * c.DragSensitivity
	c.goalPitch += deltaY * c.DragSensitivity
	c.goalPitch = math.Clamp(c.goalPitch, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates the goal distance from a wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.goalDistance -= delta * c.goalDistance * c.ZoomSensitivity
	c.goalDistance = math.Clamp(c.goalDistance, c.MinDistance, c.MaxDistance)
}

// HandlePan moves the goal target in the camera's screen plane.
func (c *OrbitCamera) HandlePan(deltaX, deltaY float32) {
	scale := c.goalDistance * c.PanSensitivity

	rightX := float32(gomath.Cos(float64(c.goalYaw)))
	rightZ := float32(-gomath.Sin(float64(c.goalYaw)))

	c.goalTarget.X += (-deltaX * rightX) * scale
	c.goalTarget.Z += (-deltaX * rightZ) * scale
	c.goalTarget.Y += deltaY * scale
}

// FitToBounds frames an axis-aligned box: target at its center,
// distance from its size, zoom clamps derived from the same size. The
// live state snaps so a new model appears framed, not mid-flight.
func (c *OrbitCamera) FitToBounds(min, max [3]float32) {
	c.Target = math.Vec3{
		X: (min[0] + max[0]) / 2,
		Y: (min[1] + max[1]) / 2,
		Z: (min[2] + max[2]) / 2,
	}

	maxSize := max[0] - min[0]
	if s := max[1] - min[1]; s > maxSize {
		maxSize = s
	}
	if s := max[2] - min[2]; s > maxSize {
		maxSize = s
	}
	if maxSize <= 0 {
		maxSize = 100
	}

	c.Distance = maxSize * 2.2
	c.MinDistance = maxSize * 0.4
	c.MaxDistance = maxSize * 8
	c.Pitch = 0.45
	c.Yaw = 0.6
	c.snapGoals()
}

// Dispose releases the controller; safe to call more than once.
func (c *OrbitCamera) Dispose() {
	c.disposed = true
}

// Disposed reports whether Dispose ran.
func (c *OrbitCamera) Disposed() bool {
	return c.disposed
}
