package scene

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/vitrine3d/vitrine/internal/engine/lighting"
	"github.com/vitrine3d/vitrine/internal/engine/material"
	"github.com/vitrine3d/vitrine/internal/engine/model"
	"github.com/vitrine3d/vitrine/internal/engine/profile"
	"github.com/vitrine3d/vitrine/internal/engine/scene/shaders"
	"github.com/vitrine3d/vitrine/internal/engine/shader"
	"github.com/vitrine3d/vitrine/internal/engine/shadow"
	"github.com/vitrine3d/vitrine/internal/engine/texture"
	"github.com/vitrine3d/vitrine/internal/engine/weather"
	"github.com/vitrine3d/vitrine/internal/logger"
	"github.com/vitrine3d/vitrine/pkg/formats"
	"github.com/vitrine3d/vitrine/pkg/math"
)

// EXT_texture_filter_anisotropic enums; not in the 4.1 core namespace
// but universally supported.
const (
	textureMaxAnisotropy    = 0x84FE
	maxTextureMaxAnisotropy = 0x84FF
)

// drawSurface is one uploaded surface with its resolved material.
type drawSurface struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32

	props      material.Props
	colorTex   uint32 // 0 when untextured
	ownsTex    bool
}

// SurfaceRenderer uploads the active product mesh and renders its
// classified surfaces: opaque first, then glass back-to-front with
// depth writes off.
type SurfaceRenderer struct {
	program uint32

	locMVP           int32
	locModel         int32
	locLightViewProj int32

	locBaseColorTex int32
	locShadowMap    int32
	locEnvMap       int32

	locBaseColor    int32
	locMetalness    int32
	locRoughness    int32
	locOpacity      int32
	locEnvIntensity int32
	locHasTexture   int32
	locIsGlass      int32

	locCameraPos        int32
	locAmbientColor     int32
	locAmbientIntensity int32
	locSunDir           int32
	locSunColor         int32
	locSunIntensity     int32
	locFillDir          int32
	locFillIntensity    int32
	locRimDir           int32
	locRimColor         int32
	locRimIntensity     int32
	locRimCount         int32
	locHemiSky          int32
	locHemiGround       int32
	locHemiIntensity    int32
	locShadowsEnabled   int32

	locFogDensity int32
	locFogColor   int32

	surfaces []*drawSurface

	maxAnisotropy float32
}

// NewSurfaceRenderer compiles the surface shader and queries the GPU's
// anisotropic filtering limit.
func NewSurfaceRenderer() (*SurfaceRenderer, error) {
	sr := &SurfaceRenderer{}

	program, err := shader.CompileProgram(shaders.SurfaceVertexShader, shaders.SurfaceFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("surface shader: %w", err)
	}
	sr.program = program

	sr.locMVP = shader.GetUniform(program, "uMVP")
	sr.locModel = shader.GetUniform(program, "uModel")
	sr.locLightViewProj = shader.GetUniform(program, "uLightViewProj")
	sr.locBaseColorTex = shader.GetUniform(program, "uBaseColorTex")
	sr.locShadowMap = shader.GetUniform(program, "uShadowMap")
	sr.locEnvMap = shader.GetUniform(program, "uEnvMap")
	sr.locBaseColor = shader.GetUniform(program, "uBaseColor")
	sr.locMetalness = shader.GetUniform(program, "uMetalness")
	sr.locRoughness = shader.GetUniform(program, "uRoughness")
	sr.locOpacity = shader.GetUniform(program, "uOpacity")
	sr.locEnvIntensity = shader.GetUniform(program, "uEnvIntensity")
	sr.locHasTexture = shader.GetUniform(program, "uHasTexture")
	sr.locIsGlass = shader.GetUniform(program, "uIsGlass")
	sr.locCameraPos = shader.GetUniform(program, "uCameraPos")
	sr.locAmbientColor = shader.GetUniform(program, "uAmbientColor")
	sr.locAmbientIntensity = shader.GetUniform(program, "uAmbientIntensity")
	sr.locSunDir = shader.GetUniform(program, "uSunDir")
	sr.locSunColor = shader.GetUniform(program, "uSunColor")
	sr.locSunIntensity = shader.GetUniform(program, "uSunIntensity")
	sr.locFillDir = shader.GetUniform(program, "uFillDir")
	sr.locFillIntensity = shader.GetUniform(program, "uFillIntensity")
	sr.locRimDir = shader.GetUniform(program, "uRimDir")
	sr.locRimColor = shader.GetUniform(program, "uRimColor")
	sr.locRimIntensity = shader.GetUniform(program, "uRimIntensity")
	sr.locRimCount = shader.GetUniform(program, "uRimCount")
	sr.locHemiSky = shader.GetUniform(program, "uHemiSky")
	sr.locHemiGround = shader.GetUniform(program, "uHemiGround")
	sr.locHemiIntensity = shader.GetUniform(program, "uHemiIntensity")
	sr.locShadowsEnabled = shader.GetUniform(program, "uShadowsEnabled")
	sr.locFogDensity = shader.GetUniform(program, "uFogDensity")
	sr.locFogColor = shader.GetUniform(program, "uFogColor")

	var reported float32
	gl.GetFloatv(maxTextureMaxAnisotropy, &reported)
	sr.maxAnisotropy = material.ClampAnisotropy(reported)

	return sr, nil
}

// LoadMesh replaces the displayed mesh: classify every surface, upload
// geometry and textures. Per-surface classification or texture failures
// are logged at debug and the surface falls back to plain shading.
func (sr *SurfaceRenderer) LoadMesh(mesh *model.Mesh, glb *formats.GLB, quality profile.Profile) {
	sr.Clear()

	texCache := make(map[int]uint32)

	for si := range mesh.Surfaces {
		surf := &mesh.Surfaces[si]

		var mat *formats.Material
		if surf.MaterialIndex >= 0 && surf.MaterialIndex < len(glb.Doc.Materials) {
			mat = &glb.Doc.Materials[surf.MaterialIndex]
		}
		props := material.Classify(surf.Name, mat, quality.Tier)

		ds := &drawSurface{props: props}
		if props.BaseColorTexture >= 0 {
			tex, cached := texCache[props.BaseColorTexture]
			if !cached {
				var err error
				tex, err = sr.uploadGLBTexture(glb, props.BaseColorTexture)
				if err != nil {
					logger.Debug("surface texture skipped",
						zap.String("surface", surf.Name),
						zap.Error(err))
					tex = 0
				}
				texCache[props.BaseColorTexture] = tex
			}
			ds.colorTex = tex
			ds.ownsTex = !cached && tex != 0
		}

		sr.uploadGeometry(ds, surf)
		sr.surfaces = append(sr.surfaces, ds)
	}

	logger.Debug("mesh uploaded",
		zap.Int("surfaces", len(sr.surfaces)),
		zap.Int("textures", len(texCache)))
}

func (sr *SurfaceRenderer) uploadGeometry(ds *drawSurface, surf *model.Surface) {
	gl.GenVertexArrays(1, &ds.vao)
	gl.BindVertexArray(ds.vao)

	gl.GenBuffers(1, &ds.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, ds.vbo)
	stride := int32(unsafe.Sizeof(model.Vertex{}))
	gl.BufferData(gl.ARRAY_BUFFER, len(surf.Vertices)*int(stride), gl.Ptr(surf.Vertices), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)

	gl.GenBuffers(1, &ds.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ds.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(surf.Indices)*4, gl.Ptr(surf.Indices), gl.STATIC_DRAW)
	ds.indexCount = int32(len(surf.Indices))

	gl.BindVertexArray(0)
}

// uploadGLBTexture resolves texture index -> image -> GL texture with
// mipmaps and bounded anisotropic filtering.
func (sr *SurfaceRenderer) uploadGLBTexture(glb *formats.GLB, texIndex int) (uint32, error) {
	if texIndex < 0 || texIndex >= len(glb.Doc.Textures) {
		return 0, fmt.Errorf("texture index %d out of range", texIndex)
	}
	source := glb.Doc.Textures[texIndex].Source
	if source < 0 || source >= len(glb.Doc.Images) {
		return 0, fmt.Errorf("texture %d image source %d out of range", texIndex, source)
	}

	data, err := glb.ImageData(source)
	if err != nil {
		return 0, fmt.Errorf("texture %d image data: %w", texIndex, err)
	}
	img, err := texture.Decode(data, glb.Doc.Images[source].MimeType)
	if err != nil {
		return 0, fmt.Errorf("texture %d: %w", texIndex, err)
	}
	rgba := texture.ToRGBA(img)
	b := rgba.Bounds()

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameterf(gl.TEXTURE_2D, textureMaxAnisotropy, sr.maxAnisotropy)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return tex, nil
}

// Render draws all surfaces: opaque first, then glass with depth
// writes disabled so transmissive surfaces composite over each other.
func (sr *SurfaceRenderer) Render(viewProj, modelMat math.Mat4, camPos math.Vec3,
	rig lighting.Rig, params weather.Params, envMap uint32,
	shadowsEnabled bool, lightViewProj math.Mat4, shadowMap *shadow.Map) {

	if len(sr.surfaces) == 0 {
		return
	}

	gl.UseProgram(sr.program)

	mvp := viewProj.Mul(modelMat)
	gl.UniformMatrix4fv(sr.locMVP, 1, false, mvp.Ptr())
	gl.UniformMatrix4fv(sr.locModel, 1, false, modelMat.Ptr())
	gl.UniformMatrix4fv(sr.locLightViewProj, 1, false, lightViewProj.Ptr())

	gl.Uniform3f(sr.locCameraPos, camPos.X, camPos.Y, camPos.Z)
	gl.Uniform3fv(sr.locAmbientColor, 1, &rig.AmbientColor[0])
	gl.Uniform1f(sr.locAmbientIntensity, rig.AmbientIntensity)
	gl.Uniform3fv(sr.locSunDir, 1, &rig.Sun.Direction[0])
	gl.Uniform3fv(sr.locSunColor, 1, &rig.Sun.Color[0])
	gl.Uniform1f(sr.locSunIntensity, rig.Sun.Intensity)
	gl.Uniform3fv(sr.locFillDir, 1, &rig.Fill.Direction[0])
	gl.Uniform1f(sr.locFillIntensity, rig.Fill.Intensity)
	gl.Uniform3fv(sr.locHemiSky, 1, &rig.HemiSkyColor[0])
	gl.Uniform3fv(sr.locHemiGround, 1, &rig.HemiGroundColor[0])
	gl.Uniform1f(sr.locHemiIntensity, rig.HemiIntensity)

	var rimDirs [6]float32
	var rimColors [6]float32
	var rimIntensities [2]float32
	for i, rim := range rig.Rims {
		copy(rimDirs[i*3:], rim.Direction[:])
		copy(rimColors[i*3:], rim.Color[:])
		rimIntensities[i] = rim.Intensity
	}
	gl.Uniform3fv(sr.locRimDir, 2, &rimDirs[0])
	gl.Uniform3fv(sr.locRimColor, 2, &rimColors[0])
	gl.Uniform1fv(sr.locRimIntensity, 2, &rimIntensities[0])
	gl.Uniform1i(sr.locRimCount, int32(len(rig.Rims)))

	if shadowsEnabled && shadowMap != nil {
		gl.Uniform1i(sr.locShadowsEnabled, 1)
		shadowMap.BindTexture(gl.TEXTURE1)
	} else {
		gl.Uniform1i(sr.locShadowsEnabled, 0)
	}
	gl.Uniform1i(sr.locShadowMap, 1)

	gl.ActiveTexture(gl.TEXTURE2)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, envMap)
	gl.Uniform1i(sr.locEnvMap, 2)

	gl.Uniform1f(sr.locFogDensity, params.FogDensity)
	gl.Uniform3fv(sr.locFogColor, 1, &params.FogColor[0])

	for _, ds := range sr.surfaces {
		if ds.props.Class != material.ClassGlass {
			sr.drawSurface(ds)
		}
	}

	gl.DepthMask(false)
	for _, ds := range sr.surfaces {
		if ds.props.Class == material.ClassGlass {
			sr.drawSurface(ds)
		}
	}
	gl.DepthMask(true)
}

func (sr *SurfaceRenderer) drawSurface(ds *drawSurface) {
	p := ds.props
	gl.Uniform4fv(sr.locBaseColor, 1, &p.BaseColor[0])
	gl.Uniform1f(sr.locMetalness, p.Metalness)
	gl.Uniform1f(sr.locRoughness, p.Roughness)
	gl.Uniform1f(sr.locOpacity, p.Opacity)
	gl.Uniform1f(sr.locEnvIntensity, p.EnvIntensity)

	if ds.colorTex != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, ds.colorTex)
		gl.Uniform1i(sr.locBaseColorTex, 0)
		gl.Uniform1i(sr.locHasTexture, 1)
	} else {
		gl.Uniform1i(sr.locHasTexture, 0)
	}

	if p.Class == material.ClassGlass {
		gl.Uniform1i(sr.locIsGlass, 1)
	} else {
		gl.Uniform1i(sr.locIsGlass, 0)
	}

	if p.DoubleSided || p.Class == material.ClassGlass {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}

	gl.BindVertexArray(ds.vao)
	gl.DrawElements(gl.TRIANGLES, ds.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// RenderShadow draws every opaque surface into the bound shadow map
// using the shared depth program. Glass casts no shadow.
func (sr *SurfaceRenderer) RenderShadow(depthProgram uint32, locModel int32, modelMat math.Mat4) {
	gl.UniformMatrix4fv(locModel, 1, false, modelMat.Ptr())
	for _, ds := range sr.surfaces {
		if ds.props.Class == material.ClassGlass {
			continue
		}
		gl.BindVertexArray(ds.vao)
		gl.DrawElements(gl.TRIANGLES, ds.indexCount, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)
}

// Clear disposes the uploaded mesh. Idempotent.
func (sr *SurfaceRenderer) Clear() {
	for _, ds := range sr.surfaces {
		if ds.vao != 0 {
			gl.DeleteVertexArrays(1, &ds.vao)
		}
		if ds.vbo != 0 {
			gl.DeleteBuffers(1, &ds.vbo)
		}
		if ds.ebo != 0 {
			gl.DeleteBuffers(1, &ds.ebo)
		}
		if ds.ownsTex && ds.colorTex != 0 {
			gl.DeleteTextures(1, &ds.colorTex)
		}
	}
	sr.surfaces = nil
}

// HasMesh reports whether a mesh is currently uploaded.
func (sr *SurfaceRenderer) HasMesh() bool {
	return len(sr.surfaces) > 0
}

// Destroy releases the renderer and any uploaded mesh.
func (sr *SurfaceRenderer) Destroy() {
	sr.Clear()
	if sr.program != 0 {
		gl.DeleteProgram(sr.program)
		sr.program = 0
	}
}
