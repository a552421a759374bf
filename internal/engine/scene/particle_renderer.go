package scene

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/vitrine3d/vitrine/internal/engine/scene/shaders"
	"github.com/vitrine3d/vitrine/internal/engine/shader"
	"github.com/vitrine3d/vitrine/pkg/math"
)

// ParticleRenderer draws one particle arena as textured point sprites.
// Positions stream from the simulation's struct-of-arrays into an
// interleaved scratch buffer each heavy-step; the GPU buffer is sized
// once at arena creation.
type ParticleRenderer struct {
	program uint32

	locViewProj  int32
	locCameraPos int32
	locBaseSize  int32
	locSprite    int32
	locTint      int32

	vao      uint32
	vbo      uint32
	capacity int
	count    int
	scratch  []float32
}

// NewParticleRenderer compiles the particle shader and allocates a
// streaming buffer for capacity particles.
func NewParticleRenderer(capacity int) (*ParticleRenderer, error) {
	if capacity < 1 {
		capacity = 1
	}
	pr := &ParticleRenderer{
		capacity: capacity,
		scratch:  make([]float32, capacity*3),
	}

	program, err := shader.CompileProgram(shaders.ParticleVertexShader, shaders.ParticleFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("particle shader: %w", err)
	}
	pr.program = program
	pr.locViewProj = shader.GetUniform(program, "uViewProj")
	pr.locCameraPos = shader.GetUniform(program, "uCameraPos")
	pr.locBaseSize = shader.GetUniform(program, "uBaseSize")
	pr.locSprite = shader.GetUniform(program, "uSprite")
	pr.locTint = shader.GetUniform(program, "uTint")

	gl.GenVertexArrays(1, &pr.vao)
	gl.BindVertexArray(pr.vao)
	gl.GenBuffers(1, &pr.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, pr.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, capacity*3*4, nil, gl.STREAM_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.BindVertexArray(0)

	return pr, nil
}

// Upload interleaves the arena's position planes and streams them to
// the GPU. Call after each heavy-step.
func (pr *ParticleRenderer) Upload(x, y, z []float32) {
	n := len(x)
	if n > pr.capacity {
		n = pr.capacity
	}
	for i := 0; i < n; i++ {
		pr.scratch[i*3+0] = x[i]
		pr.scratch[i*3+1] = y[i]
		pr.scratch[i*3+2] = z[i]
	}
	pr.count = n

	gl.BindBuffer(gl.ARRAY_BUFFER, pr.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, n*3*4, gl.Ptr(pr.scratch))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Render draws the uploaded particles with the given sprite and tint.
func (pr *ParticleRenderer) Render(viewProj math.Mat4, camPos math.Vec3, sprite uint32, tint [4]float32, baseSize float32) {
	if pr.count == 0 {
		return
	}

	gl.UseProgram(pr.program)
	gl.UniformMatrix4fv(pr.locViewProj, 1, false, viewProj.Ptr())
	gl.Uniform3f(pr.locCameraPos, camPos.X, camPos.Y, camPos.Z)
	gl.Uniform1f(pr.locBaseSize, baseSize)
	gl.Uniform4fv(pr.locTint, 1, &tint[0])

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, sprite)
	gl.Uniform1i(pr.locSprite, 0)

	gl.Enable(gl.PROGRAM_POINT_SIZE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)

	gl.BindVertexArray(pr.vao)
	gl.DrawArrays(gl.POINTS, 0, int32(pr.count))
	gl.BindVertexArray(0)

	gl.DepthMask(true)
	gl.Disable(gl.PROGRAM_POINT_SIZE)
}

// Destroy releases GPU resources. Idempotent.
func (pr *ParticleRenderer) Destroy() {
	if pr.vao != 0 {
		gl.DeleteVertexArrays(1, &pr.vao)
		pr.vao = 0
	}
	if pr.vbo != 0 {
		gl.DeleteBuffers(1, &pr.vbo)
		pr.vbo = 0
	}
	if pr.program != 0 {
		gl.DeleteProgram(pr.program)
		pr.program = 0
	}
	pr.count = 0
}
