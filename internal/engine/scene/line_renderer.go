package scene

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/vitrine3d/vitrine/internal/engine/measure"
	"github.com/vitrine3d/vitrine/internal/engine/scene/shaders"
	"github.com/vitrine3d/vitrine/internal/engine/shader"
	"github.com/vitrine3d/vitrine/pkg/math"
)

// LineRenderer draws the measurement overlay's dimension lines and the
// debug bounds wireframe.
type LineRenderer struct {
	program uint32

	locViewProj int32
	locColor    int32

	vao      uint32
	vbo      uint32
	capacity int // vertices
	count    int
	scratch  []float32
}

// NewLineRenderer compiles the line shader. capacity is the vertex
// budget for one upload.
func NewLineRenderer(capacity int) (*LineRenderer, error) {
	if capacity < 2 {
		capacity = 2
	}
	lr := &LineRenderer{
		capacity: capacity,
		scratch:  make([]float32, 0, capacity*3),
	}

	program, err := shader.CompileProgram(shaders.LineVertexShader, shaders.LineFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("line shader: %w", err)
	}
	lr.program = program
	lr.locViewProj = shader.GetUniform(program, "uViewProj")
	lr.locColor = shader.GetUniform(program, "uColor")

	gl.GenVertexArrays(1, &lr.vao)
	gl.BindVertexArray(lr.vao)
	gl.GenBuffers(1, &lr.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, lr.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, capacity*3*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.BindVertexArray(0)

	return lr, nil
}

// UploadSegments replaces the buffered geometry with the given segment
// list (two vertices per segment).
func (lr *LineRenderer) UploadSegments(segments []measure.Segment) {
	lr.scratch = lr.scratch[:0]
	for _, s := range segments {
		lr.scratch = append(lr.scratch, s.From.X, s.From.Y, s.From.Z)
		lr.scratch = append(lr.scratch, s.To.X, s.To.Y, s.To.Z)
	}
	lr.upload()
}

// UploadBox replaces the buffered geometry with the 12 edges of an
// axis-aligned box.
func (lr *LineRenderer) UploadBox(min, max [3]float32) {
	corners := [8][3]float32{
		{min[0], min[1], min[2]},
		{max[0], min[1], min[2]},
		{max[0], max[1], min[2]},
		{min[0], max[1], min[2]},
		{min[0], min[1], max[2]},
		{max[0], min[1], max[2]},
		{max[0], max[1], max[2]},
		{min[0], max[1], max[2]},
	}
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}

	lr.scratch = lr.scratch[:0]
	for _, e := range edges {
		a, b := corners[e[0]], corners[e[1]]
		lr.scratch = append(lr.scratch, a[0], a[1], a[2], b[0], b[1], b[2])
	}
	lr.upload()
}

func (lr *LineRenderer) upload() {
	n := len(lr.scratch) / 3
	if n > lr.capacity {
		n = lr.capacity
		lr.scratch = lr.scratch[:n*3]
	}
	lr.count = n

	gl.BindBuffer(gl.ARRAY_BUFFER, lr.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, n*3*4, gl.Ptr(lr.scratch))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Render draws the buffered lines in a flat color.
func (lr *LineRenderer) Render(viewProj math.Mat4, color [4]float32) {
	if lr.count == 0 {
		return
	}

	gl.UseProgram(lr.program)
	gl.UniformMatrix4fv(lr.locViewProj, 1, false, viewProj.Ptr())
	gl.Uniform4fv(lr.locColor, 1, &color[0])

	gl.BindVertexArray(lr.vao)
	gl.DrawArrays(gl.LINES, 0, int32(lr.count))
	gl.BindVertexArray(0)
}

// Clear drops the buffered geometry without releasing the buffer.
func (lr *LineRenderer) Clear() {
	lr.count = 0
}

// Destroy releases GPU resources. Idempotent.
func (lr *LineRenderer) Destroy() {
	if lr.vao != 0 {
		gl.DeleteVertexArrays(1, &lr.vao)
		lr.vao = 0
	}
	if lr.vbo != 0 {
		gl.DeleteBuffers(1, &lr.vbo)
		lr.vbo = 0
	}
	if lr.program != 0 {
		gl.DeleteProgram(lr.program)
		lr.program = 0
	}
	lr.count = 0
}
