package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/sb6m/internal/device/recorder"
	"github.com/samcharles93/sb6m/internal/logger"
	"github.com/samcharles93/sb6m/internal/object"
	"github.com/samcharles93/sb6m/pkg/sb6m"
)

func packCmd() *cli.Command {
	return &cli.Command{
		Name:  "pack",
		Usage: "Pack a YAML mesh manifest and its payloads into a single .sbm file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "manifest",
				Aliases:  []string{"m"},
				Usage:    "YAML manifest describing attribs, payloads and sub-objects",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"out", "o"},
				Usage:   "output .sbm path (default: $" + envPackOutDir + "/<manifest>.sbm or ./out)",
			},
			&cli.BoolFlag{
				Name:  "no-verify",
				Usage: "skip loading the packed mesh back after writing",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			manifestPath := cmd.String("manifest")

			outPath, defaulted, err := resolvePackOut(manifestPath, cmd.String("output"))
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if defaulted {
				log.Info("output path defaulted", "path", outPath)
			}

			chunks, err := packManifest(manifestPath, outPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: pack: %v", err), 1)
			}

			if !cmd.Bool("no-verify") {
				obj := object.New(recorder.New(0), log)
				if err := obj.Load(outPath); err != nil {
					return cli.Exit(fmt.Sprintf("error: packed mesh does not load: %v", err), 1)
				}
				obj.Free()
			}
			fmt.Printf("wrote %s (%d chunks)\n", outPath, chunks)
			return nil
		},
	}
}

// packManifest writes the mesh described by manifestPath to outPath and
// returns the number of chunks written.
func packManifest(manifestPath, outPath string) (int, error) {
	m, err := loadManifest(manifestPath)
	if err != nil {
		return 0, err
	}
	mesh, err := m.resolve(filepath.Dir(manifestPath))
	if err != nil {
		return 0, err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	w, err := sb6m.NewWriter(f)
	if err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := mesh.write(w); err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := w.Finalise(); err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}
	return len(w.Chunks()), nil
}
