package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "meshes_dir: /srv/meshes\nbackend: recorder\nmax_vertex_attribs: 8\nlog_format: json\nserver_address: 127.0.0.1:9000\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfigFile(path)
	if err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}
	if cfg.MeshesDir != "/srv/meshes" || cfg.Backend != "recorder" || cfg.LogFormat != "json" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.MaxVertexAttribs == nil || *cfg.MaxVertexAttribs != 8 {
		t.Fatalf("max_vertex_attribs: got %v want 8", cfg.MaxVertexAttribs)
	}
	if cfg.MaxUploadBytes != nil {
		t.Fatalf("unset max_upload_bytes should stay nil, got %d", *cfg.MaxUploadBytes)
	}
	if cfg.ServerAddress != "127.0.0.1:9000" {
		t.Fatalf("server_address: got %q", cfg.ServerAddress)
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	if _, err := loadConfigFile(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
