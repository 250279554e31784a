package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePackOut(t *testing.T) {
	t.Run("explicit output wins", func(t *testing.T) {
		manifest := filepath.Join(t.TempDir(), "cube.yaml")
		outPath := filepath.Join(t.TempDir(), "nested", "cube.sbm")

		got, defaulted, err := resolvePackOut(manifest, outPath)
		if err != nil {
			t.Fatalf("resolvePackOut returned error: %v", err)
		}
		if defaulted {
			t.Fatalf("expected explicit output to not be defaulted")
		}
		if got != filepath.Clean(outPath) {
			t.Fatalf("unexpected output path: got %q want %q", got, filepath.Clean(outPath))
		}
		if _, err := os.Stat(filepath.Dir(got)); err != nil {
			t.Fatalf("expected output directory to exist: %v", err)
		}
	})

	t.Run("env output dir overrides default", func(t *testing.T) {
		envDir := filepath.Join(t.TempDir(), "pack-out")
		t.Setenv(envPackOutDir, envDir)

		got, defaulted, err := resolvePackOut(filepath.Join(t.TempDir(), "torus.yaml"), "")
		if err != nil {
			t.Fatalf("resolvePackOut returned error: %v", err)
		}
		if !defaulted {
			t.Fatalf("expected output to be defaulted")
		}
		if want := filepath.Join(envDir, "torus.sbm"); got != want {
			t.Fatalf("unexpected output path: got %q want %q", got, want)
		}
	})

	t.Run("default output dir is ./out", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv(envPackOutDir, "")

		got, _, err := resolvePackOut("asteroids.yml", "")
		if err != nil {
			t.Fatalf("resolvePackOut returned error: %v", err)
		}
		if want := filepath.Join("out", "asteroids.sbm"); got != want {
			t.Fatalf("unexpected output path: got %q want %q", got, want)
		}
	})
}

func TestDiscoverMeshesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.sbm", "a.SBM", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write file %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "dir.sbm"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := discoverMeshes(dir)
	if err != nil {
		t.Fatalf("discoverMeshes returned error: %v", err)
	}
	want := []string{filepath.Join(dir, "a.SBM"), filepath.Join(dir, "b.sbm")}
	if len(got) != len(want) {
		t.Fatalf("unexpected mesh count: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected ordering at %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestResolveMeshPath(t *testing.T) {
	t.Run("file flag bypasses env", func(t *testing.T) {
		t.Setenv(envMeshDir, "")
		got, err := resolveMeshPath("/tmp/cube.sbm", "", bytes.NewBuffer(nil), io.Discard)
		if err != nil {
			t.Fatalf("resolveMeshPath returned error: %v", err)
		}
		if got != filepath.Clean("/tmp/cube.sbm") {
			t.Fatalf("unexpected mesh path: got %q", got)
		}
	})

	t.Run("nothing configured", func(t *testing.T) {
		t.Setenv(envMeshDir, "")
		if _, err := resolveMeshPath("", "", bytes.NewBuffer(nil), io.Discard); err == nil {
			t.Fatal("expected error without --file or a meshes directory")
		}
	})

	t.Run("single mesh selects automatically", func(t *testing.T) {
		dir := t.TempDir()
		only := filepath.Join(dir, "only.sbm")
		if err := os.WriteFile(only, []byte("x"), 0o644); err != nil {
			t.Fatalf("write mesh: %v", err)
		}
		t.Setenv(envMeshDir, dir)

		prevTTY := stdinIsTTY
		stdinIsTTY = func() bool { return false }
		defer func() { stdinIsTTY = prevTTY }()

		got, err := resolveMeshPath("", "", bytes.NewBuffer(nil), io.Discard)
		if err != nil {
			t.Fatalf("resolveMeshPath returned error: %v", err)
		}
		if got != only {
			t.Fatalf("unexpected mesh path: got %q want %q", got, only)
		}
	})

	t.Run("multiple meshes require a tty", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"a.sbm", "b.sbm"} {
			if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
				t.Fatalf("write mesh %s: %v", name, err)
			}
		}
		t.Setenv(envMeshDir, dir)

		prevTTY := stdinIsTTY
		stdinIsTTY = func() bool { return false }
		defer func() { stdinIsTTY = prevTTY }()

		if _, err := resolveMeshPath("", "", bytes.NewBuffer(nil), io.Discard); err == nil {
			t.Fatalf("expected error when multiple meshes and stdin is not a tty")
		}
	})

	t.Run("interactive selection chooses sorted index", func(t *testing.T) {
		dir := t.TempDir()
		a := filepath.Join(dir, "a.sbm")
		b := filepath.Join(dir, "b.sbm")
		for _, p := range []string{b, a} {
			if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
				t.Fatalf("write mesh: %v", err)
			}
		}

		prevTTY := stdinIsTTY
		stdinIsTTY = func() bool { return true }
		defer func() { stdinIsTTY = prevTTY }()

		got, err := resolveMeshPath("", dir, bytes.NewBufferString("7\n2\n"), io.Discard)
		if err != nil {
			t.Fatalf("resolveMeshPath returned error: %v", err)
		}
		if got != b {
			t.Fatalf("unexpected mesh selection: got %q want %q", got, b)
		}
	})
}
