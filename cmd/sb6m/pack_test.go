package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samcharles93/sb6m/internal/device/recorder"
	"github.com/samcharles93/sb6m/internal/logger"
	"github.com/samcharles93/sb6m/internal/object"
	"github.com/samcharles93/sb6m/pkg/sb6m"
)

const triangleManifest = `comment: two triangles
storage: %s
vertex_count: 3
vertex_floats: [0, 0, 0, 1, 0, 0, 0, 1, 0]
indices:
  type: ushort
  values: [0, 1, 2, 2, 1, 0]
attribs:
  - name: position
    components: 3
    type: float
    stride: 12
sub_objects:
  - {first: 0, count: 3}
  - {first: 6, count: 3}
`

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "triangles.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func packAndLoad(t *testing.T, storage string) (*object.Object, *recorder.Device) {
	t.Helper()
	manifest := writeManifest(t, strings.Replace(triangleManifest, "%s", storage, 1))
	out := filepath.Join(t.TempDir(), "triangles.sbm")
	if _, err := packManifest(manifest, out); err != nil {
		t.Fatalf("packManifest: %v", err)
	}
	dev := recorder.New(0)
	obj := object.New(dev, logger.Discard())
	if err := obj.Load(out); err != nil {
		t.Fatalf("load packed mesh: %v", err)
	}
	t.Cleanup(obj.Free)
	return obj, dev
}

func TestPackSplitManifest(t *testing.T) {
	obj, dev := packAndLoad(t, "split")

	if !obj.Indexed() || obj.IndexType() != sb6m.IndexUnsignedShort {
		t.Fatalf("expected ushort indexed mesh, got indexed=%v type=%s", obj.Indexed(), obj.IndexType())
	}
	if obj.IndexBase() != 36 {
		t.Fatalf("index base: got %d want 36", obj.IndexBase())
	}
	if obj.BufferSize() != 36+12 {
		t.Fatalf("buffer size: got %d want 48", obj.BufferSize())
	}
	if obj.SubObjectCount() != 2 {
		t.Fatalf("sub-objects: got %d want 2", obj.SubObjectCount())
	}
	data, ok := dev.BufferData(obj.Buffer())
	if !ok {
		t.Fatal("buffer not found on recorder")
	}
	if got := data[36:38]; !bytes.Equal(got, []byte{0, 0}) {
		t.Fatalf("first index bytes: got %v", got)
	}

	r, ok := obj.DrawRange(1)
	if !ok {
		t.Fatal("missing draw range 1")
	}
	if got, want := r, (object.IndexedRange{ByteOffset: 42, Count: 3}); got != want {
		t.Fatalf("draw range: got %+v want %+v", got, want)
	}
}

func TestPackBlobManifest(t *testing.T) {
	obj, _ := packAndLoad(t, "blob")

	if obj.IndexBase() != 36 {
		t.Fatalf("index base: got %d want 36", obj.IndexBase())
	}
	if obj.BufferSize() != 48 {
		t.Fatalf("buffer size: got %d want 48", obj.BufferSize())
	}
	first, count := obj.SubObjectInfo(1)
	if first != 6 || count != 3 {
		t.Fatalf("sub-object 1: got {%d %d} want {6 3}", first, count)
	}
}

func TestPackRejectsUnknownFields(t *testing.T) {
	manifest := writeManifest(t, strings.Replace(triangleManifest, "%s", "split", 1)+"colour: red\n")
	if _, err := packManifest(manifest, filepath.Join(t.TempDir(), "out.sbm")); err == nil {
		t.Fatal("expected unknown manifest field to be rejected")
	}
}

func TestPackRejectsBadManifests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown storage", "storage: zip\nvertex_floats: [0]\nattribs: [{name: p, components: 1, type: float}]\n"},
		{"no attribs", "vertex_floats: [0]\n"},
		{"no vertices", "attribs: [{name: p, components: 1, type: float}]\n"},
		{"bad component type", "vertex_floats: [0]\nattribs: [{name: p, components: 1, type: quad}]\n"},
		{"index overflow", "vertex_floats: [0]\nattribs: [{name: p, components: 1, type: float}]\nindices: {type: ubyte, values: [256]}\n"},
		{"float index type", "vertex_floats: [0]\nattribs: [{name: p, components: 1, type: float}]\nindices: {type: float, values: [0]}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manifest := writeManifest(t, tt.body)
			if _, err := packManifest(manifest, filepath.Join(t.TempDir(), "out.sbm")); err == nil {
				t.Fatalf("expected error for %s", tt.name)
			}
		})
	}
}

func TestPackReadsPayloadFiles(t *testing.T) {
	dir := t.TempDir()
	verts := make([]byte, 24)
	if err := os.WriteFile(filepath.Join(dir, "verts.bin"), verts, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "idx.bin"), []byte{0, 1, 1}, 0o644); err != nil {
		t.Fatal(err)
	}
	body := "vertex_count: 2\nvertices: verts.bin\nindices: {type: ubyte, file: idx.bin}\n" +
		"attribs: [{name: p, components: 3, type: float, stride: 12}]\n"
	manifest := filepath.Join(dir, "lines.yaml")
	if err := os.WriteFile(manifest, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "lines.sbm")
	chunks, err := packManifest(manifest, out)
	if err != nil {
		t.Fatalf("packManifest: %v", err)
	}
	if chunks != 3 {
		t.Fatalf("chunks: got %d want 3 (ATRB, VRTX, INDX)", chunks)
	}

	obj := object.New(recorder.New(0), nil)
	if err := obj.Load(out); err != nil {
		t.Fatalf("load: %v", err)
	}
	defer obj.Free()
	if obj.SubObjectCount() != 1 {
		t.Fatalf("sub-objects: got %d want 1", obj.SubObjectCount())
	}
	if _, count := obj.SubObjectInfo(0); count != 3 {
		t.Fatalf("default sub-object count: got %d want 3", count)
	}
}
