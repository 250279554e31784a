package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/sb6m/internal/backend"
	"github.com/samcharles93/sb6m/internal/device"
	"github.com/samcharles93/sb6m/internal/logger"
)

var (
	meshPath    string
	meshesPath  string
	backendName string
	maxAttribs  int64
	logLevel    string
	logFormat   string
	debug       bool

	// config is read once in the root Before hook.
	config Config
)

func commonMeshFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "path to .sbm file",
			Destination: &meshPath,
		},
		&cli.StringFlag{
			Name:        "meshes-path",
			Aliases:     []string{"path"},
			Usage:       "directory to pick a .sbm file from when --file is not set",
			Destination: &meshesPath,
		},
	}
}

func deviceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backend",
			Usage:       "rendering backend (recorder, gl, auto)",
			Value:       backend.Recorder,
			Destination: &backendName,
		},
		&cli.Int64Flag{
			Name:        "max-vertex-attribs",
			Usage:       "attribute slots of the recorder backend (0 = default)",
			Destination: &maxAttribs,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       logger.FormatPretty,
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	config = LoadConfig()
	applyLoggingConfig(cmd, config)

	level := logLevel
	if debug {
		level = "debug"
	}
	log, err := logger.Setup(os.Stderr, logFormat, level)
	if err != nil {
		return ctx, cli.Exit("error: "+err.Error(), 1)
	}
	return logger.WithContext(ctx, log), nil
}

// The CLI never creates a window, so auto always resolves to the recorder.
func newDevice() (device.Device, error) {
	return backend.New(backendName, backend.Options{MaxVertexAttribs: int(maxAttribs)})
}
