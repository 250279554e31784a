package meshinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samcharles93/sb6m/internal/device/recorder"
	"github.com/samcharles93/sb6m/internal/object"
	"github.com/samcharles93/sb6m/pkg/sb6m"
)

func openMesh(t *testing.T) *sb6m.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quad.sbm")
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w, err := sb6m.NewWriter(out)
	if err != nil {
		t.Fatal(err)
	}
	steps := []func() error{
		func() error { return w.WriteComment("quad") },
		func() error {
			return w.WriteAttribs([]sb6m.AttribDecl{
				{Name: "position", Components: 2, Type: sb6m.TypeFloat, Stride: 12},
				{Name: "color", Components: 4, Type: sb6m.TypeUnsignedByte, Stride: 12, DataOffset: 8, Flags: sb6m.AttribFlagNormalized},
			})
		},
		func() error { return w.WriteVertexData(4, make([]byte, 48)) },
		func() error { return w.WriteIndexData(sb6m.IndexUnsignedByte, 6, []byte{0, 1, 2, 2, 1, 3}) },
		func() error { return w.WriteSubObjects([]sb6m.SubObjectDecl{{First: 0, Count: 3}, {First: 3, Count: 3}}) },
		w.Finalise,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			t.Fatal(err)
		}
	}
	_ = out.Close()

	f, err := sb6m.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestFromContainer(t *testing.T) {
	t.Parallel()
	f := openMesh(t)
	s := FromContainer(f.Container)

	if s.Mode != ModeIndexed || s.Storage != StorageSplit {
		t.Fatalf("mode/storage: got %s/%s", s.Mode, s.Storage)
	}
	if s.IndexType != "ubyte" || s.IndexCount != 6 || s.VertexCount != 4 {
		t.Fatalf("counts: got %+v", s)
	}
	if s.Comment != "quad" {
		t.Fatalf("comment: got %q", s.Comment)
	}
	if len(s.Chunks) != 5 || s.Chunks[0].Tag != "CMNT" {
		t.Fatalf("chunks: got %+v", s.Chunks)
	}
	if len(s.Attribs) != 2 || s.Attribs[1].Name != "color" || !s.Attribs[1].Normalized {
		t.Fatalf("attribs: got %+v", s.Attribs)
	}
	if len(s.SubObjects) != 2 || s.SubObjects[1].Mode != "" {
		t.Fatalf("file view sub-objects should be unresolved: %+v", s.SubObjects)
	}
}

func TestDescribeResolvesDrawRanges(t *testing.T) {
	t.Parallel()
	f := openMesh(t)
	rec := recorder.New(0)
	o := object.New(rec, nil)
	if err := o.LoadContainer(f.Container); err != nil {
		t.Fatalf("load: %v", err)
	}

	s := Describe(f.Container, o, rec.Name())
	if s.Device != "recorder" || s.BufferBytes != 54 {
		t.Fatalf("device view: got device=%q buffer=%d", s.Device, s.BufferBytes)
	}
	want := []SubObject{
		{Index: 0, First: 0, Count: 3, Mode: ModeIndexed, Start: 48},
		{Index: 1, First: 3, Count: 3, Mode: ModeIndexed, Start: 51},
	}
	if len(s.SubObjects) != len(want) {
		t.Fatalf("sub-objects: got %+v", s.SubObjects)
	}
	for i := range want {
		if s.SubObjects[i] != want[i] {
			t.Fatalf("sub-object %d: got %+v want %+v", i, s.SubObjects[i], want[i])
		}
	}
}
