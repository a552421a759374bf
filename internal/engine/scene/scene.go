// Package scene composes the product stage: classified surfaces,
// weather particles, the measurement overlay, shadows, and the
// environment reflection map, rendered into an offscreen framebuffer.
package scene

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/vitrine3d/vitrine/internal/engine/camera"
	"github.com/vitrine3d/vitrine/internal/engine/framebuffer"
	"github.com/vitrine3d/vitrine/internal/engine/lighting"
	"github.com/vitrine3d/vitrine/internal/engine/measure"
	"github.com/vitrine3d/vitrine/internal/engine/model"
	"github.com/vitrine3d/vitrine/internal/engine/profile"
	"github.com/vitrine3d/vitrine/internal/engine/scene/shaders"
	"github.com/vitrine3d/vitrine/internal/engine/shader"
	"github.com/vitrine3d/vitrine/internal/engine/shadow"
	"github.com/vitrine3d/vitrine/internal/engine/texture"
	"github.com/vitrine3d/vitrine/internal/engine/weather"
	"github.com/vitrine3d/vitrine/pkg/formats"
	"github.com/vitrine3d/vitrine/pkg/math"
)

// Config contains stage configuration.
type Config struct {
	Width   int32
	Height  int32
	Quality profile.Profile
}

// Overlay line colors.
var (
	overlayColor = [4]float32{0.95, 0.85, 0.25, 1.0}
	boundsColor  = [4]float32{0.3, 0.9, 0.5, 0.8}
)

// Neutral reflection gradient, independent of the active weather.
var (
	envSkyColor    = [3]float32{0.55, 0.60, 0.66}
	envGroundColor = [3]float32{0.25, 0.22, 0.2}
)

// Scene renders the product stage offscreen and hands the color
// texture to the UI layer.
type Scene struct {
	config Config

	framebuffer *framebuffer.Framebuffer

	surfaceRenderer *SurfaceRenderer
	overlayRenderer *LineRenderer
	boundsRenderer  *LineRenderer
	rainRenderer    *ParticleRenderer
	windRenderer    *ParticleRenderer

	shadowMap      *shadow.Map
	depthProgram   uint32
	locDepthLVP    int32
	locDepthModel  int32
	shadowsEnabled bool
	lightViewProj  math.Mat4

	envMap *EnvMap

	rainSprite uint32
	windSprite uint32

	params weather.Params
	rig    lighting.Rig

	rain *weather.RainSystem
	wind *weather.WindSystem

	overlayVisible bool
	boundsVisible  bool

	lastViewProj math.Mat4
}

// New creates the stage sized per the quality profile.
func New(cfg Config) (*Scene, error) {
	s := &Scene{
		config:         cfg,
		overlayVisible: true,
	}

	var err error
	s.framebuffer, err = framebuffer.New(cfg.Width, cfg.Height)
	if err != nil {
		return nil, fmt.Errorf("creating framebuffer: %w", err)
	}

	s.shadowMap = shadow.NewMap(cfg.Quality.ShadowResolution)
	s.shadowsEnabled = s.shadowMap != nil

	if err := s.createDepthProgram(); err != nil {
		s.Destroy()
		return nil, err
	}

	s.surfaceRenderer, err = NewSurfaceRenderer()
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("creating surface renderer: %w", err)
	}

	// 15 overlay segments, 2 vertices each.
	s.overlayRenderer, err = NewLineRenderer(30)
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("creating overlay renderer: %w", err)
	}
	s.boundsRenderer, err = NewLineRenderer(24)
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("creating bounds renderer: %w", err)
	}

	s.createSprites()
	s.envMap = NewEnvMap(cfg.Quality.Tier, envSkyColor, envGroundColor)
	s.applyEnvironment(weather.ParamsFor(weather.Sunny, cfg.Quality))

	return s, nil
}

func (s *Scene) createDepthProgram() error {
	program, err := shader.CompileProgram(shaders.DepthVertexShader, shaders.DepthFragmentShader)
	if err != nil {
		return fmt.Errorf("depth shader: %w", err)
	}
	s.depthProgram = program
	s.locDepthLVP = shader.GetUniform(program, "uLightViewProj")
	s.locDepthModel = shader.GetUniform(program, "uModel")
	return nil
}

func (s *Scene) createSprites() {
	s.rainSprite = uploadSprite(texture.RainSprite(16, 64))
	s.windSprite = uploadSprite(texture.WindSprite(32))
}

func uploadSprite(img *image.RGBA) uint32 {
	b := img.Bounds()
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

// ApplyWeather rebuilds the stage environment for new weather
// parameters: light rig, background, and fog. The reflection cubemap is
// session-lived and survives profile switches.
func (s *Scene) ApplyWeather(params weather.Params) {
	s.applyEnvironment(params)
}

func (s *Scene) applyEnvironment(params weather.Params) {
	s.params = params
	s.rig = lighting.BuildRig(params, s.config.Quality.Tier)
}

// AttachRain wires a rain arena to the stage: allocates its GPU buffer
// and registers its teardown on the arena's dispose hook.
func (s *Scene) AttachRain(rs *weather.RainSystem) error {
	pr, err := NewParticleRenderer(rs.Count())
	if err != nil {
		return fmt.Errorf("rain renderer: %w", err)
	}
	s.rain = rs
	s.rainRenderer = pr
	rs.OnDispose(func() {
		pr.Destroy()
		if s.rainRenderer == pr {
			s.rainRenderer = nil
			s.rain = nil
		}
	})
	pr.Upload(rs.X, rs.Y, rs.Z)
	return nil
}

// AttachWind wires a wind arena to the stage.
func (s *Scene) AttachWind(ws *weather.WindSystem) error {
	pr, err := NewParticleRenderer(ws.Count())
	if err != nil {
		return fmt.Errorf("wind renderer: %w", err)
	}
	s.wind = ws
	s.windRenderer = pr
	ws.OnDispose(func() {
		pr.Destroy()
		if s.windRenderer == pr {
			s.windRenderer = nil
			s.wind = nil
		}
	})
	pr.Upload(ws.X, ws.Y, ws.Z)
	return nil
}

// SyncParticles streams fresh particle positions to the GPU. Call
// after each heavy-step.
func (s *Scene) SyncParticles() {
	if s.rain != nil && s.rainRenderer != nil {
		s.rainRenderer.Upload(s.rain.X, s.rain.Y, s.rain.Z)
	}
	if s.wind != nil && s.windRenderer != nil {
		s.windRenderer.Upload(s.wind.X, s.wind.Y, s.wind.Z)
	}
}

// LoadMesh uploads a product mesh with classified materials.
func (s *Scene) LoadMesh(mesh *model.Mesh, glb *formats.GLB) {
	s.surfaceRenderer.LoadMesh(mesh, glb, s.config.Quality)
	s.boundsRenderer.UploadBox(mesh.NormalizedBounds.Min, mesh.NormalizedBounds.Max)
}

// ClearMesh disposes the displayed mesh and its overlay geometry.
func (s *Scene) ClearMesh() {
	s.surfaceRenderer.Clear()
	s.overlayRenderer.Clear()
	s.boundsRenderer.Clear()
}

// SetOverlay replaces the measurement overlay line geometry.
func (s *Scene) SetOverlay(o *measure.Overlay) {
	s.overlayRenderer.UploadSegments(o.Segments())
}

// SetOverlayVisible toggles dimension line drawing.
func (s *Scene) SetOverlayVisible(v bool) {
	s.overlayVisible = v
}

// SetBoundsVisible toggles the debug bounds wireframe.
func (s *Scene) SetBoundsVisible(v bool) {
	s.boundsVisible = v
}

// Render draws the stage and returns the color texture for the UI.
func (s *Scene) Render(cam *camera.OrbitCamera) uint32 {
	aspect := float32(s.config.Width) / float32(s.config.Height)
	proj := math.Perspective(0.785398, aspect, 1.0, 5000.0)
	view := cam.ViewMatrix()
	viewProj := proj.Mul(view)
	s.lastViewProj = viewProj
	camPos := cam.Position()

	modelMat := math.Identity()

	if s.shadowsEnabled && s.surfaceRenderer.HasMesh() {
		s.lightViewProj = shadow.SunMatrix(math.Vec3{
			X: s.rig.Sun.Direction[0],
			Y: s.rig.Sun.Direction[1],
			Z: s.rig.Sun.Direction[2],
		})
		s.renderShadowPass(modelMat)
	}

	restore := s.framebuffer.BindWithViewport()
	defer restore()

	bg := s.params.Background
	s.framebuffer.Clear(bg[0], bg[1], bg[2], 1.0)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	s.surfaceRenderer.Render(viewProj, modelMat, camPos, s.rig, s.params,
		s.envMap.Texture(), s.shadowsEnabled, s.lightViewProj, s.shadowMap)

	if s.rainRenderer != nil {
		s.rainRenderer.Render(viewProj, camPos, s.rainSprite,
			[4]float32{0.7, 0.75, 0.85, 0.55}, 1.6)
	}
	if s.windRenderer != nil {
		s.windRenderer.Render(viewProj, camPos, s.windSprite,
			[4]float32{0.85, 0.88, 0.9, 0.35}, 1.1)
	}

	if s.overlayVisible {
		s.overlayRenderer.Render(viewProj, overlayColor)
	}
	if s.boundsVisible {
		s.boundsRenderer.Render(viewProj, boundsColor)
	}

	return s.framebuffer.ColorTexture()
}

func (s *Scene) renderShadowPass(modelMat math.Mat4) {
	s.shadowMap.Bind()
	gl.UseProgram(s.depthProgram)
	gl.UniformMatrix4fv(s.locDepthLVP, 1, false, s.lightViewProj.Ptr())
	s.surfaceRenderer.RenderShadow(s.depthProgram, s.locDepthModel, modelMat)
	s.shadowMap.Unbind()
}

// ProjectToScreen maps a model-space point to framebuffer pixel
// coordinates using the last rendered view. ok is false when the point
// is behind the camera.
func (s *Scene) ProjectToScreen(p math.Vec3) (x, y float32, ok bool) {
	clip := s.lastViewProj.MulVec4(math.Vec4{p.X, p.Y, p.Z, 1})
	if clip[3] <= 0 {
		return 0, 0, false
	}
	ndcX := clip[0] / clip[3]
	ndcY := clip[1] / clip[3]
	x = (ndcX*0.5 + 0.5) * float32(s.config.Width)
	y = (1 - (ndcY*0.5 + 0.5)) * float32(s.config.Height)
	return x, y, true
}

// Resize recreates the framebuffer when the host viewport changed.
func (s *Scene) Resize(width, height int32) {
	if width == s.config.Width && height == s.config.Height {
		return
	}
	s.config.Width = width
	s.config.Height = height
	s.framebuffer.Resize(width, height)
}

// ColorTexture returns the rendered color texture.
func (s *Scene) ColorTexture() uint32 {
	return s.framebuffer.ColorTexture()
}

// Size returns the framebuffer dimensions.
func (s *Scene) Size() (int32, int32) {
	return s.framebuffer.Size()
}

// Destroy releases every stage resource. Idempotent through the
// members' own guards.
func (s *Scene) Destroy() {
	if s.surfaceRenderer != nil {
		s.surfaceRenderer.Destroy()
	}
	if s.overlayRenderer != nil {
		s.overlayRenderer.Destroy()
	}
	if s.boundsRenderer != nil {
		s.boundsRenderer.Destroy()
	}
	if s.rainRenderer != nil {
		s.rainRenderer.Destroy()
		s.rainRenderer = nil
	}
	if s.windRenderer != nil {
		s.windRenderer.Destroy()
		s.windRenderer = nil
	}
	if s.envMap != nil {
		s.envMap.Destroy()
	}
	if s.shadowMap != nil {
		s.shadowMap.Destroy()
	}
	if s.depthProgram != 0 {
		gl.DeleteProgram(s.depthProgram)
		s.depthProgram = 0
	}
	if s.rainSprite != 0 {
		gl.DeleteTextures(1, &s.rainSprite)
		s.rainSprite = 0
	}
	if s.windSprite != 0 {
		gl.DeleteTextures(1, &s.windSprite)
		s.windSprite = 0
	}
	if s.framebuffer != nil {
		s.framebuffer.Destroy()
	}
}
