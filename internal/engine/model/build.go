package model

import (
	"errors"
	"fmt"

	"github.com/vitrine3d/vitrine/pkg/formats"
	"github.com/vitrine3d/vitrine/pkg/math"
)

// ErrEmptyModel is returned when an asset contains no drawable geometry.
var ErrEmptyModel = errors.New("model contains no drawable geometry")

// FromGLB flattens a parsed GLB document into surfaces, applying each
// node's transform so positions land in a single model space, and
// computes the raw bounding box of the result.
func FromGLB(glb *formats.GLB) (*Mesh, error) {
	mesh := &Mesh{}

	visited := make(map[int]bool)
	for ni := range glb.Doc.Nodes {
		if isChildNode(glb.Doc.Nodes, ni) {
			continue
		}
		if err := appendNode(mesh, glb, ni, math.Identity(), visited); err != nil {
			return nil, err
		}
	}

	if len(mesh.Surfaces) == 0 {
		return nil, ErrEmptyModel
	}

	mesh.RawBounds = mesh.computeBounds()
	mesh.RawSize = mesh.RawBounds.Size()
	return mesh, nil
}

// isChildNode reports whether any node lists index ni as a child;
// traversal starts only from roots so transforms apply once.
func isChildNode(nodes []formats.Node, ni int) bool {
	for i := range nodes {
		for _, c := range nodes[i].Children {
			if c == ni {
				return true
			}
		}
	}
	return false
}

func appendNode(mesh *Mesh, glb *formats.GLB, ni int, parent math.Mat4, visited map[int]bool) error {
	if ni < 0 || ni >= len(glb.Doc.Nodes) {
		return fmt.Errorf("node index %d out of range", ni)
	}
	// glTF requires the node hierarchy to be a tree; a repeated index
	// means a crafted document with a cycle.
	if visited[ni] {
		return fmt.Errorf("node %d revisited: cycle in scene graph", ni)
	}
	visited[ni] = true
	node := glb.Doc.Nodes[ni]
	transform := parent.Mul(nodeMatrix(node))

	if node.Mesh != nil {
		if err := appendMesh(mesh, glb, node, transform); err != nil {
			return err
		}
	}
	for _, child := range node.Children {
		if err := appendNode(mesh, glb, child, transform, visited); err != nil {
			return err
		}
	}
	return nil
}

func nodeMatrix(node formats.Node) math.Mat4 {
	if node.Matrix != nil {
		return math.Mat4(*node.Matrix)
	}
	t := math.Vec3{}
	if node.Translation != nil {
		t = math.Vec3{X: node.Translation[0], Y: node.Translation[1], Z: node.Translation[2]}
	}
	r := math.QuatIdentity()
	if node.Rotation != nil {
		r = math.Quat{X: node.Rotation[0], Y: node.Rotation[1], Z: node.Rotation[2], W: node.Rotation[3]}
	}
	s := math.Vec3{X: 1, Y: 1, Z: 1}
	if node.Scale != nil {
		s = math.Vec3{X: node.Scale[0], Y: node.Scale[1], Z: node.Scale[2]}
	}
	return math.Compose(t, r, s)
}

func appendMesh(mesh *Mesh, glb *formats.GLB, node formats.Node, transform math.Mat4) error {
	mi := *node.Mesh
	if mi < 0 || mi >= len(glb.Doc.Meshes) {
		return fmt.Errorf("node %q mesh index %d out of range", node.Name, mi)
	}
	src := glb.Doc.Meshes[mi]

	for pi := range src.Primitives {
		prim := src.Primitives[pi]

		posAcc, ok := prim.Attributes["POSITION"]
		if !ok {
			continue
		}
		positions, err := glb.ReadVec3(posAcc)
		if err != nil {
			return fmt.Errorf("mesh %q positions: %w", src.Name, err)
		}

		var normals [][3]float32
		if acc, ok := prim.Attributes["NORMAL"]; ok {
			if normals, err = glb.ReadVec3(acc); err != nil {
				return fmt.Errorf("mesh %q normals: %w", src.Name, err)
			}
		}
		var uvs [][2]float32
		if acc, ok := prim.Attributes["TEXCOORD_0"]; ok {
			if uvs, err = glb.ReadVec2(acc); err != nil {
				return fmt.Errorf("mesh %q texcoords: %w", src.Name, err)
			}
		}

		var indices []uint32
		if prim.Indices != nil {
			if indices, err = glb.ReadIndices(*prim.Indices); err != nil {
				return fmt.Errorf("mesh %q indices: %w", src.Name, err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		surf := Surface{
			Name:          surfaceName(glb, src.Name, prim.Material),
			MaterialIndex: -1,
			Vertices:      make([]Vertex, len(positions)),
			Indices:       indices,
		}
		if prim.Material != nil {
			surf.MaterialIndex = *prim.Material
		}

		for i := range positions {
			p := transform.TransformPoint(positions[i])
			v := Vertex{Position: p}
			if i < len(normals) {
				v.Normal = transform.TransformDirection(normals[i])
			}
			if i < len(uvs) {
				v.TexCoord = uvs[i]
			}
			surf.Vertices[i] = v
		}

		mesh.Surfaces = append(mesh.Surfaces, surf)
	}
	return nil
}

// surfaceName prefers the material name since classification heuristics
// run on it; the mesh name is the fallback.
func surfaceName(glb *formats.GLB, meshName string, material *int) string {
	if material != nil && *material >= 0 && *material < len(glb.Doc.Materials) {
		if name := glb.Doc.Materials[*material].Name; name != "" {
			return name
		}
	}
	return meshName
}
