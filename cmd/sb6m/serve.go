package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/sb6m/internal/api"
	"github.com/samcharles93/sb6m/internal/logger"
	"github.com/samcharles93/sb6m/internal/webui"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		maxUpload   int64
		noUI        bool
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the mesh inspection REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Int64Flag{
				Name:        "max-upload-bytes",
				Usage:       "largest accepted mesh upload",
				Value:       api.DefaultMaxUploadBytes,
				Destination: &maxUpload,
			},
			&cli.Int64Flag{
				Name:        "max-vertex-attribs",
				Usage:       "attribute slots of each mesh's recorder (0 = default)",
				Destination: &maxAttribs,
			},
			&cli.BoolFlag{
				Name:        "no-ui",
				Usage:       "do not serve the mesh browser page at /",
				Destination: &noUI,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyServeConfig(cmd, config, &addr, &maxUpload)

			store := api.NewMeshStore(int(maxAttribs), log)
			defer store.Close()
			server := api.NewServer(store, api.Options{MaxUploadBytes: maxUpload, Log: log})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			if !noUI {
				webui.Register(e)
			}
			log.Info("starting server", "address", addr)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
