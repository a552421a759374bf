// Package formats provides decoders for 3D asset containers.
package formats

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// GLB format errors.
var (
	ErrInvalidGLBMagic     = errors.New("invalid GLB magic: expected 'glTF'")
	ErrUnsupportedVersion  = errors.New("unsupported GLB version: expected 2")
	ErrTruncatedGLB        = errors.New("truncated GLB data")
	ErrMissingJSONChunk    = errors.New("GLB missing JSON chunk")
	ErrAccessorOutOfRange  = errors.New("accessor index out of range")
	ErrBufferViewTruncated = errors.New("buffer view exceeds binary chunk")
	ErrInvalidBufferView   = errors.New("negative buffer view bounds")
	ErrUnsupportedAccessor = errors.New("unsupported accessor layout")
)

// GLB chunk type identifiers.
const (
	glbMagic     = 0x46546C67 // "glTF"
	chunkJSON    = 0x4E4F534A // "JSON"
	chunkBIN     = 0x004E4942 // "BIN\0"
	glbHeaderLen = 12
)

// glTF accessor component types.
const (
	componentByte   = 5120
	componentUByte  = 5121
	componentShort  = 5122
	componentUShort = 5123
	componentUInt   = 5125
	componentFloat  = 5126
)

// Document is the parsed glTF JSON tree, restricted to the fields the
// viewer consumes.
type Document struct {
	Asset struct {
		Version string `json:"version"`
	} `json:"asset"`
	Buffers []struct {
		ByteLength int    `json:"byteLength"`
		URI        string `json:"uri"`
	} `json:"buffers"`
	BufferViews []BufferView `json:"bufferViews"`
	Accessors   []Accessor   `json:"accessors"`
	Images      []Image      `json:"images"`
	Textures    []struct {
		Source int `json:"source"`
	} `json:"textures"`
	Materials []Material `json:"materials"`
	Meshes    []struct {
		Name       string      `json:"name"`
		Primitives []Primitive `json:"primitives"`
	} `json:"meshes"`
	Nodes []Node `json:"nodes"`
}

// BufferView is a slice of the binary chunk.
type BufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride"`
}

// Accessor describes typed data inside a buffer view.
type Accessor struct {
	BufferView    int    `json:"bufferView"`
	ByteOffset    int    `json:"byteOffset"`
	ComponentType int    `json:"componentType"`
	Count         int    `json:"count"`
	Type          string `json:"type"`
}

// Image is an embedded texture image.
type Image struct {
	Name       string `json:"name"`
	MimeType   string `json:"mimeType"`
	BufferView int    `json:"bufferView"`
}

// TextureRef points at a texture slot from a material.
type TextureRef struct {
	Index int `json:"index"`
}

// Material carries the PBR parameters the classifier inspects.
type Material struct {
	Name                 string `json:"name"`
	AlphaMode            string `json:"alphaMode"`
	DoubleSided          bool   `json:"doubleSided"`
	PBRMetallicRoughness struct {
		BaseColorFactor  *[4]float32 `json:"baseColorFactor"`
		BaseColorTexture *TextureRef `json:"baseColorTexture"`
		MetallicFactor   *float32    `json:"metallicFactor"`
		RoughnessFactor  *float32    `json:"roughnessFactor"`
	} `json:"pbrMetallicRoughness"`
	NormalTexture *TextureRef `json:"normalTexture"`
	Extensions    struct {
		Specular *struct {
			SpecularFactor *float32 `json:"specularFactor"`
		} `json:"KHR_materials_specular"`
		Transmission *struct {
			TransmissionFactor *float32 `json:"transmissionFactor"`
		} `json:"KHR_materials_transmission"`
	} `json:"extensions"`
}

// BaseColor returns the material's base color factor, defaulting to white.
func (m *Material) BaseColor() [4]float32 {
	if m.PBRMetallicRoughness.BaseColorFactor != nil {
		return *m.PBRMetallicRoughness.BaseColorFactor
	}
	return [4]float32{1, 1, 1, 1}
}

// Metallic returns the metallic factor, defaulting to 1 per the glTF spec.
func (m *Material) Metallic() float32 {
	if m.PBRMetallicRoughness.MetallicFactor != nil {
		return *m.PBRMetallicRoughness.MetallicFactor
	}
	return 1
}

// Roughness returns the roughness factor, defaulting to 1.
func (m *Material) Roughness() float32 {
	if m.PBRMetallicRoughness.RoughnessFactor != nil {
		return *m.PBRMetallicRoughness.RoughnessFactor
	}
	return 1
}

// SpecularStrength returns the KHR specular factor, or 0 when absent.
func (m *Material) SpecularStrength() float32 {
	if m.Extensions.Specular != nil && m.Extensions.Specular.SpecularFactor != nil {
		return *m.Extensions.Specular.SpecularFactor
	}
	return 0
}

// Transparent reports whether the source flagged this material for
// alpha blending.
func (m *Material) Transparent() bool {
	return m.AlphaMode == "BLEND"
}

// Primitive is one drawable surface of a mesh.
type Primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices"`
	Material   *int           `json:"material"`
}

// Node places a mesh in the scene tree.
type Node struct {
	Name        string      `json:"name"`
	Mesh        *int        `json:"mesh"`
	Children    []int       `json:"children"`
	Translation *[3]float32 `json:"translation"`
	Rotation    *[4]float32 `json:"rotation"`
	Scale       *[3]float32 `json:"scale"`
	Matrix      *[16]float32 `json:"matrix"`
}

// GLB is a parsed binary glTF container: the JSON document plus the
// binary chunk its buffer views index into.
type GLB struct {
	Doc *Document
	Bin []byte
}

// ParseGLB decodes a GLB container from memory.
func ParseGLB(data []byte) (*GLB, error) {
	if len(data) < glbHeaderLen {
		return nil, ErrTruncatedGLB
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != glbMagic {
		return nil, ErrInvalidGLBMagic
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != 2 {
		return nil, fmt.Errorf("%w: got %d", ErrUnsupportedVersion, version)
	}
	total := binary.LittleEndian.Uint32(data[8:12])
	if int(total) > len(data) {
		return nil, ErrTruncatedGLB
	}

	var jsonChunk, binChunk []byte
	offset := glbHeaderLen
	for offset+8 <= int(total) {
		chunkLen := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		chunkType := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += 8
		if offset+chunkLen > int(total) {
			return nil, ErrTruncatedGLB
		}
		chunk := data[offset : offset+chunkLen]
		switch chunkType {
		case chunkJSON:
			jsonChunk = chunk
		case chunkBIN:
			binChunk = chunk
		}
		offset += chunkLen
	}

	if jsonChunk == nil {
		return nil, ErrMissingJSONChunk
	}

	doc := &Document{}
	if err := json.Unmarshal(bytes.TrimRight(jsonChunk, "\x00 "), doc); err != nil {
		return nil, fmt.Errorf("decoding glTF JSON: %w", err)
	}

	return &GLB{Doc: doc, Bin: binChunk}, nil
}

// viewData returns the raw bytes behind an accessor, validating bounds.
func (g *GLB) viewData(acc Accessor, elemSize int) ([]byte, int, error) {
	if acc.BufferView < 0 || acc.BufferView >= len(g.Doc.BufferViews) {
		return nil, 0, ErrAccessorOutOfRange
	}
	view := g.Doc.BufferViews[acc.BufferView]
	// Offsets, strides, and counts come straight from untrusted JSON.
	if view.ByteOffset < 0 || acc.ByteOffset < 0 || view.ByteStride < 0 || acc.Count < 0 {
		return nil, 0, ErrInvalidBufferView
	}
	stride := view.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := view.ByteOffset + acc.ByteOffset
	need := start + (acc.Count-1)*stride + elemSize
	if acc.Count == 0 {
		need = start
	}
	if need > len(g.Bin) || start > len(g.Bin) {
		return nil, 0, ErrBufferViewTruncated
	}
	return g.Bin[start:], stride, nil
}

// ReadVec3 reads a VEC3 float accessor.
func (g *GLB) ReadVec3(index int) ([][3]float32, error) {
	acc, err := g.accessor(index, "VEC3", componentFloat)
	if err != nil {
		return nil, err
	}
	data, stride, err := g.viewData(acc, 12)
	if err != nil {
		return nil, err
	}
	out := make([][3]float32, acc.Count)
	for i := 0; i < acc.Count; i++ {
		base := i * stride
		for c := 0; c < 3; c++ {
			bits := binary.LittleEndian.Uint32(data[base+c*4 : base+c*4+4])
			out[i][c] = float32frombits(bits)
		}
	}
	return out, nil
}

// ReadVec2 reads a VEC2 float accessor.
func (g *GLB) ReadVec2(index int) ([][2]float32, error) {
	acc, err := g.accessor(index, "VEC2", componentFloat)
	if err != nil {
		return nil, err
	}
	data, stride, err := g.viewData(acc, 8)
	if err != nil {
		return nil, err
	}
	out := make([][2]float32, acc.Count)
	for i := 0; i < acc.Count; i++ {
		base := i * stride
		for c := 0; c < 2; c++ {
			bits := binary.LittleEndian.Uint32(data[base+c*4 : base+c*4+4])
			out[i][c] = float32frombits(bits)
		}
	}
	return out, nil
}

// ReadIndices reads a SCALAR index accessor of any supported width.
func (g *GLB) ReadIndices(index int) ([]uint32, error) {
	if index < 0 || index >= len(g.Doc.Accessors) {
		return nil, ErrAccessorOutOfRange
	}
	acc := g.Doc.Accessors[index]
	if acc.Type != "SCALAR" {
		return nil, fmt.Errorf("%w: index accessor type %s", ErrUnsupportedAccessor, acc.Type)
	}

	var elemSize int
	switch acc.ComponentType {
	case componentUByte:
		elemSize = 1
	case componentUShort:
		elemSize = 2
	case componentUInt:
		elemSize = 4
	default:
		return nil, fmt.Errorf("%w: index component type %d", ErrUnsupportedAccessor, acc.ComponentType)
	}

	data, stride, err := g.viewData(acc, elemSize)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, acc.Count)
	for i := 0; i < acc.Count; i++ {
		base := i * stride
		switch elemSize {
		case 1:
			out[i] = uint32(data[base])
		case 2:
			out[i] = uint32(binary.LittleEndian.Uint16(data[base : base+2]))
		case 4:
			out[i] = binary.LittleEndian.Uint32(data[base : base+4])
		}
	}
	return out, nil
}

// ImageData returns the raw embedded bytes for an image.
func (g *GLB) ImageData(index int) ([]byte, error) {
	if index < 0 || index >= len(g.Doc.Images) {
		return nil, ErrAccessorOutOfRange
	}
	img := g.Doc.Images[index]
	if img.BufferView < 0 || img.BufferView >= len(g.Doc.BufferViews) {
		return nil, ErrAccessorOutOfRange
	}
	view := g.Doc.BufferViews[img.BufferView]
	if view.ByteOffset < 0 || view.ByteLength < 0 {
		return nil, ErrInvalidBufferView
	}
	if view.ByteOffset+view.ByteLength > len(g.Bin) {
		return nil, ErrBufferViewTruncated
	}
	return g.Bin[view.ByteOffset : view.ByteOffset+view.ByteLength], nil
}

func (g *GLB) accessor(index int, wantType string, wantComponent int) (Accessor, error) {
	if index < 0 || index >= len(g.Doc.Accessors) {
		return Accessor{}, ErrAccessorOutOfRange
	}
	acc := g.Doc.Accessors[index]
	if acc.Type != wantType || acc.ComponentType != wantComponent {
		return Accessor{}, fmt.Errorf("%w: want %s/float, got %s/%d",
			ErrUnsupportedAccessor, wantType, acc.Type, acc.ComponentType)
	}
	return acc, nil
}

func float32frombits(b uint32) float32 {
	return math.Float32frombits(b)
}
