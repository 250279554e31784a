package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/sb6m/internal/device/recorder"
	"github.com/samcharles93/sb6m/internal/logger"
	"github.com/samcharles93/sb6m/internal/meshinfo"
	"github.com/samcharles93/sb6m/internal/object"
	"github.com/samcharles93/sb6m/pkg/sb6m"
)

func inspectCmd() *cli.Command {
	var (
		showAll        bool
		showChunks     bool
		showAttribs    bool
		showSubObjects bool
		showComment    bool
		asJSON         bool
		subObjectLimit int64
	)

	return &cli.Command{
		Name:  "inspect",
		Usage: "Inspect the contents of an .sbm mesh container",
		Flags: append(commonMeshFlags(),
			&cli.BoolFlag{Name: "all", Usage: "show every section", Destination: &showAll},
			&cli.BoolFlag{Name: "chunks", Usage: "show chunk directory", Destination: &showChunks},
			&cli.BoolFlag{Name: "attribs", Usage: "show attribute declarations", Destination: &showAttribs},
			&cli.BoolFlag{Name: "sub-objects", Usage: "show sub-object table", Destination: &showSubObjects},
			&cli.BoolFlag{Name: "comment", Usage: "print embedded comment", Destination: &showComment},
			&cli.Int64Flag{Name: "sub-objects-limit", Usage: "limit sub-object listing (0 = no limit)", Value: 32, Destination: &subObjectLimit},
			&cli.BoolFlag{Name: "json", Usage: "print the summary as JSON", Destination: &asJSON},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyMeshConfig(cmd, config)

			if showAll {
				showChunks = true
				showAttribs = true
				showSubObjects = true
				showComment = true
				if subObjectLimit == 32 {
					subObjectLimit = 0
				}
			}

			path, err := resolveMeshPath(meshPath, meshesPath, os.Stdin, os.Stderr)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			stat, err := os.Stat(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: stat mesh path %q: %v", path, err), 1)
			}

			f, err := sb6m.Open(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open mesh: %v", err), 1)
			}
			defer func() { _ = f.Close() }()

			summary, loadErr := describe(f.Container, log)
			summary.Name = filepath.Base(path)

			if asJSON {
				out, err := json.MarshalIndent(summary, "", "  ")
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: encode summary: %v", err), 1)
				}
				fmt.Println(string(out))
			} else {
				fmt.Printf("SB6M Inspect: %s\n", path)
				fmt.Printf("File: %s (%s)\n", filepath.Base(path), formatBytes(uint64(stat.Size())))
				printSummary(summary)
				if showChunks {
					printChunks(summary.Chunks)
				}
				if showAttribs {
					printAttribs(summary.Attribs)
				}
				if showSubObjects {
					printSubObjects(summary, int(subObjectLimit))
				}
				if showComment {
					printComment(summary.Comment)
				}
			}

			if loadErr != nil {
				return cli.Exit(fmt.Sprintf("error: mesh does not load: %v", loadErr), 1)
			}
			return nil
		},
	}
}

// describe loads c onto a recorder to resolve draw ranges. When the load
// fails the file view is returned with the error.
func describe(c *sb6m.Container, log logger.Logger) (meshinfo.Summary, error) {
	dev := recorder.New(int(maxAttribs))
	obj := object.New(dev, log)
	if err := obj.LoadContainer(c); err != nil {
		return meshinfo.FromContainer(c), err
	}
	defer obj.Free()
	return meshinfo.Describe(c, obj, dev.Name()), nil
}

func printSummary(s meshinfo.Summary) {
	fmt.Printf("SB6M Header: chunks=%d header=%dB flags=0x%x\n", s.NumChunks, s.HeaderSize, s.Flags)
	section("Mesh")
	row("Draw mode", s.Mode)
	row("Storage", s.Storage)
	row("Index type", s.IndexType)
	rowInt("Index count", int(s.IndexCount))
	rowInt("Vertex count", int(s.VertexCount))
	rowInt("Attributes", len(s.Attribs))
	subs := fmt.Sprintf("%d", len(s.SubObjects))
	if s.DeclaredSubObjects > len(s.SubObjects) {
		subs = fmt.Sprintf("%d (of %d declared)", len(s.SubObjects), s.DeclaredSubObjects)
	}
	row("Sub-objects", subs)
	if s.BufferBytes > 0 {
		row("Device buffer", formatBytes(uint64(s.BufferBytes)))
	}
}

func printChunks(chunks []meshinfo.Chunk) {
	section("Chunks")
	for _, c := range chunks {
		note := ""
		if !c.Known {
			note = "  (skipped)"
		}
		fmt.Printf("%-6s off=%-10d size=%s%s\n", c.Tag, c.Offset, formatBytes(uint64(c.Size)), note)
	}
}

func printAttribs(attribs []meshinfo.Attrib) {
	section("Attributes")
	if len(attribs) == 0 {
		fmt.Println("(none)")
		return
	}
	fmt.Printf("%-4s %-24s %-6s %-8s %-7s %-8s %s\n", "slot", "name", "comps", "type", "stride", "offset", "flags")
	for _, a := range attribs {
		var flags []string
		if a.Normalized {
			flags = append(flags, "normalized")
		}
		if a.Integer {
			flags = append(flags, "integer")
		}
		fmt.Printf("%-4d %-24s %-6d %-8s %-7d %-8d %s\n",
			a.Slot, a.Name, a.Components, a.Type, a.Stride, a.Offset, strings.Join(flags, ","))
	}
}

func printSubObjects(s meshinfo.Summary, limit int) {
	section("Sub-objects")
	shown := s.SubObjects
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, so := range shown {
		switch so.Mode {
		case meshinfo.ModeIndexed:
			fmt.Printf("%4d first=%-8d count=%-8d elements at byte %d\n", so.Index, so.First, so.Count, so.Start)
		case meshinfo.ModeArrays:
			fmt.Printf("%4d first=%-8d count=%-8d arrays from vertex %d\n", so.Index, so.First, so.Count, so.Start)
		default:
			fmt.Printf("%4d first=%-8d count=%d\n", so.Index, so.First, so.Count)
		}
	}
	if len(shown) < len(s.SubObjects) {
		fmt.Printf("... %d more\n", len(s.SubObjects)-len(shown))
	}
	if s.DeclaredSubObjects > len(s.SubObjects) {
		fmt.Printf("%d declared entries past the %d-entry table were dropped\n",
			s.DeclaredSubObjects-len(s.SubObjects), object.MaxSubObjects)
	}
}

func printComment(text string) {
	section("Comment")
	if strings.TrimSpace(text) == "" {
		fmt.Println("(empty)")
		return
	}
	fmt.Println(text)
}

func section(title string) {
	line := strings.Repeat("-", len(title)+8)
	fmt.Printf("\n%s\n--- %s ---\n%s\n", line, title, line)
}

func row(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("%-24s %s\n", label+":", value)
}

func rowInt(label string, v int) {
	if v == 0 {
		return
	}
	row(label, fmt.Sprintf("%d", v))
}

func formatBytes(b uint64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.2f GiB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.2f MiB", float64(b)/float64(mb))
	case b >= kb:
		return fmt.Sprintf("%.2f KiB", float64(b)/float64(kb))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
