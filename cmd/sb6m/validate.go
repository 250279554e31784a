package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/sb6m/internal/device"
	"github.com/samcharles93/sb6m/internal/logger"
	"github.com/samcharles93/sb6m/internal/object"
)

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Load meshes onto a backend and report whether they are usable",
		ArgsUsage: "[file.sbm ...]",
		Flags:     append(commonMeshFlags(), deviceFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyMeshConfig(cmd, config)

			paths := cmd.Args().Slice()
			if meshPath != "" || len(paths) == 0 {
				path, err := resolveMeshPath(meshPath, meshesPath, os.Stdin, os.Stderr)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				paths = append([]string{path}, paths...)
			}

			dev, err := newDevice()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			failed := validateMeshes(os.Stdout, dev, log, paths)
			if failed > 0 {
				return cli.Exit(fmt.Sprintf("error: %d of %d meshes failed validation", failed, len(paths)), 1)
			}
			return nil
		},
	}
}

// validateMeshes loads each path in turn and reports one line per mesh. It
// returns the number of failures.
func validateMeshes(w io.Writer, dev device.Device, log logger.Logger, paths []string) int {
	obj := object.New(dev, log)
	defer obj.Free()

	failed := 0
	for _, path := range paths {
		if err := obj.Load(path); err != nil {
			failed++
			_, _ = fmt.Fprintf(w, "FAIL %s: %v\n", path, err)
			continue
		}
		mode := "arrays"
		if obj.Indexed() {
			mode = "indexed " + obj.IndexType().String()
		}
		_, _ = fmt.Fprintf(w, "ok   %s: %s, %d attribs, %d sub-objects, %s on %s\n",
			path, mode, len(obj.Attribs()), obj.SubObjectCount(), formatBytes(uint64(obj.BufferSize())), dev.Name())
		obj.Free()
	}
	return failed
}
