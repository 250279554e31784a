package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the sb6m configuration file (~/.config/sb6m/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	MeshesDir string `yaml:"meshes_dir"`
	Backend   string `yaml:"backend"`

	MaxVertexAttribs *int64 `yaml:"max_vertex_attribs"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress  string `yaml:"server_address"`
	MaxUploadBytes *int64 `yaml:"max_upload_bytes"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "sb6m", "config.yaml")
}

func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyMeshConfig applies config file defaults to the mesh and device flags
// when the corresponding flag was not set.
func applyMeshConfig(c *cli.Command, cfg Config) {
	if cfg.MeshesDir != "" && !c.IsSet("meshes-path") {
		meshesPath = cfg.MeshesDir
	}
	if cfg.Backend != "" && !c.IsSet("backend") {
		backendName = cfg.Backend
	}
	if cfg.MaxVertexAttribs != nil && !c.IsSet("max-vertex-attribs") {
		maxAttribs = *cfg.MaxVertexAttribs
	}
}

func applyServeConfig(c *cli.Command, cfg Config, addr *string, maxUpload *int64) {
	if cfg.MaxVertexAttribs != nil && !c.IsSet("max-vertex-attribs") {
		maxAttribs = *cfg.MaxVertexAttribs
	}
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.MaxUploadBytes != nil && !c.IsSet("max-upload-bytes") {
		*maxUpload = *cfg.MaxUploadBytes
	}
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't exist.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	cfg, err := loadConfigFile(path)
	if err != nil {
		return Config{}
	}
	return cfg
}

func loadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
