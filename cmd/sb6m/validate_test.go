package main

import (
	"bytes"
	"os"
	"path/filepath"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/samcharles93/sb6m/internal/app"
	"github.com/samcharles93/sb6m/internal/device/recorder"
	"github.com/samcharles93/sb6m/internal/logger"
)

func TestValidateMeshes(t *testing.T) {
	good := filepath.Join(t.TempDir(), "good.sbm")
	if _, err := packManifest(writeManifest(t, strings.Replace(triangleManifest, "%s", "split", 1)), good); err != nil {
		t.Fatalf("packManifest: %v", err)
	}
	bad := filepath.Join(t.TempDir(), "bad.sbm")
	if err := os.WriteFile(bad, []byte("not a mesh at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	failed := validateMeshes(&out, recorder.New(0), logger.Discard(), []string{good, bad, good})
	if failed != 1 {
		t.Fatalf("failed: got %d want 1\n%s", failed, out.String())
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected one line per mesh, got %q", out.String())
	}
	if !strings.HasPrefix(lines[0], "ok ") || !strings.Contains(lines[0], "indexed ushort") {
		t.Fatalf("unexpected report for good mesh: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "FAIL "+bad) {
		t.Fatalf("unexpected report for bad mesh: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "ok ") {
		t.Fatalf("a failure must not poison later meshes: %q", lines[2])
	}
}

func TestMeshViewerDrawsEverySubObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.sbm")
	if _, err := packManifest(writeManifest(t, strings.Replace(triangleManifest, "%s", "split", 1)), path); err != nil {
		t.Fatalf("packManifest: %v", err)
	}

	var out bytes.Buffer
	v := &meshViewer{
		path:      path,
		dev:       recorder.New(0),
		log:       logger.Discard(),
		out:       &out,
		all:       true,
		instances: 2,
	}
	ctx := t.Context()
	if err := v.Startup(ctx); err != nil {
		t.Fatalf("startup: %v", err)
	}
	defer func() { _ = v.Shutdown(ctx) }()

	if err := v.Render(ctx, appFrame(0)); err != nil {
		t.Fatalf("render: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"count=3 type=ushort offset=36 instances=2",
		"count=3 type=ushort offset=42 instances=2",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in output:\n%s", want, got)
		}
	}
}

func TestMeshViewerRejectsMissingSubObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.sbm")
	if _, err := packManifest(writeManifest(t, strings.Replace(triangleManifest, "%s", "blob", 1)), path); err != nil {
		t.Fatalf("packManifest: %v", err)
	}
	v := &meshViewer{path: path, dev: recorder.New(0), log: logger.Discard(), out: &bytes.Buffer{}, subObject: 5, instances: 1}
	ctx := t.Context()
	if err := v.Startup(ctx); err != nil {
		t.Fatalf("startup: %v", err)
	}
	defer func() { _ = v.Shutdown(ctx) }()
	if err := v.Render(ctx, appFrame(0)); err == nil {
		t.Fatal("expected out of range sub-object to fail")
	}
}

func appFrame(i int) app.Frame {
	return app.Frame{Index: i, Rand: rand.New(rand.NewPCG(1, 2))}
}
