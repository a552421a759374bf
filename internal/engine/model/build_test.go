package model

import (
	"encoding/json"
	"testing"

	"github.com/vitrine3d/vitrine/pkg/formats"
)

// docOnlyGLB parses a glTF document with no binary chunk; enough for
// exercising the scene-graph walk on crafted documents.
func docOnlyGLB(t *testing.T, src string) *formats.GLB {
	t.Helper()
	doc := &formats.Document{}
	if err := json.Unmarshal([]byte(src), doc); err != nil {
		t.Fatalf("fixture doc: %v", err)
	}
	return &formats.GLB{Doc: doc}
}

func TestFromGLB_MeshIndexOutOfRange(t *testing.T) {
	glb := docOnlyGLB(t, `{"nodes":[{"name":"root","mesh":5}],"meshes":[]}`)
	if _, err := FromGLB(glb); err == nil {
		t.Fatal("expected error for out-of-range mesh index")
	}
}

func TestFromGLB_ChildIndexOutOfRange(t *testing.T) {
	glb := docOnlyGLB(t, `{"nodes":[{"children":[7]}]}`)
	if _, err := FromGLB(glb); err == nil {
		t.Fatal("expected error for out-of-range child index")
	}
}

func TestFromGLB_NodeCycle(t *testing.T) {
	// Node 1 lists itself as a child; without the visited guard the
	// walk recurses forever.
	glb := docOnlyGLB(t, `{"nodes":[{"children":[1]},{"children":[1]}]}`)
	if _, err := FromGLB(glb); err == nil {
		t.Fatal("expected error for scene graph cycle")
	}
}

func TestFromGLB_EmptyDocument(t *testing.T) {
	glb := docOnlyGLB(t, `{"nodes":[]}`)
	if _, err := FromGLB(glb); err != ErrEmptyModel {
		t.Fatalf("err = %v, want ErrEmptyModel", err)
	}
}
