package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/sb6m/internal/logger"
	"github.com/samcharles93/sb6m/pkg/sb6m"
)

func listCmd() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List .sbm meshes in a directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "meshes-path",
				Aliases:     []string{"path"},
				Usage:       "directory containing .sbm meshes",
				Destination: &meshesPath,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyMeshConfig(cmd, config)

			dir := meshDir(meshesPath)
			if dir == "" {
				return cli.Exit("error: --meshes-path is required unless "+envMeshDir+" is set", 1)
			}

			meshes, err := discoverMeshes(dir)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if len(meshes) == 0 {
				log.Info("no meshes found", "path", dir)
				return nil
			}

			fmt.Printf("Meshes in %s:\n\n", dir)
			for _, m := range meshes {
				fmt.Printf("  %s\n", describeListEntry(m))
			}
			fmt.Printf("\n%d mesh(es) found\n", len(meshes))
			return nil
		},
	}
}

func describeListEntry(path string) string {
	name := filepath.Base(path)
	info, err := os.Stat(path)
	if err != nil {
		return name
	}
	size := formatBytes(uint64(info.Size()))

	f, err := sb6m.Open(path)
	if err != nil {
		return fmt.Sprintf("%-40s %10s  (unreadable: %v)", name, size, err)
	}
	defer func() { _ = f.Close() }()

	c := f.Container
	mode := "arrays"
	if c.Indexed() {
		mode = "indexed"
	}
	var verts uint32
	if c.Vertex != nil {
		verts = c.Vertex.TotalVertices
	}
	subs := len(c.SubObjects)
	if !c.Has(sb6m.ChunkSubObjectList) {
		subs = 1
	}
	return fmt.Sprintf("%-40s %10s  %-7s %8d verts %4d sub-objects", name, size, mode, verts, subs)
}
