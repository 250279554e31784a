package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/sb6m/internal/app"
	"github.com/samcharles93/sb6m/internal/device/recorder"
	"github.com/samcharles93/sb6m/internal/logger"
	"github.com/samcharles93/sb6m/internal/object"
)

func renderCmd() *cli.Command {
	var (
		subObject    int64
		allSubs      bool
		shuffle      bool
		instances    int64
		baseInstance int64
		frames       int64
		interval     time.Duration
		seed         int64
	)

	return &cli.Command{
		Name:  "render",
		Usage: "Drive a mesh through a headless frame loop and print the draw calls",
		Flags: append(commonMeshFlags(),
			&cli.Int64Flag{Name: "sub-object", Usage: "sub-object to draw", Destination: &subObject},
			&cli.BoolFlag{Name: "all-sub-objects", Usage: "draw every sub-object each frame", Destination: &allSubs},
			&cli.BoolFlag{Name: "shuffle", Usage: "draw one random sub-object per frame", Destination: &shuffle},
			&cli.Int64Flag{Name: "instances", Usage: "instance count per draw", Value: 1, Destination: &instances},
			&cli.Int64Flag{Name: "base-instance", Usage: "base instance per draw", Destination: &baseInstance},
			&cli.Int64Flag{Name: "frames", Usage: "number of frames to render", Value: 1, Destination: &frames},
			&cli.DurationFlag{Name: "interval", Usage: "minimum time between frames", Destination: &interval},
			&cli.Int64Flag{Name: "seed", Usage: "seed for --shuffle", Value: 1, Destination: &seed},
			&cli.Int64Flag{
				Name:        "max-vertex-attribs",
				Usage:       "attribute slots of the recorder (0 = default)",
				Destination: &maxAttribs,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyMeshConfig(cmd, config)

			if err := checkDrawFlags(instances, baseInstance, subObject, frames); err != nil {
				return cli.Exit("error: "+err.Error(), 1)
			}
			path, err := resolveMeshPath(meshPath, meshesPath, os.Stdin, os.Stderr)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			viewer := &meshViewer{
				path:         path,
				dev:          recorder.New(int(maxAttribs)),
				log:          log,
				out:          os.Stdout,
				subObject:    int(subObject),
				all:          allSubs,
				shuffle:      shuffle,
				instances:    uint32(instances),
				baseInstance: uint32(baseInstance),
			}
			err = app.Run(ctx, viewer, app.RunOptions{
				Frames:   int(frames),
				Interval: interval,
				Seed:     uint64(seed),
				Log:      log,
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			return nil
		},
	}
}

// meshViewer draws one mesh per frame on a recorder and prints each call.
type meshViewer struct {
	app.Base

	path string
	dev  *recorder.Device
	obj  *object.Object
	log  logger.Logger
	out  io.Writer

	subObject    int
	all          bool
	shuffle      bool
	instances    uint32
	baseInstance uint32
}

func (v *meshViewer) Startup(context.Context) error {
	v.obj = object.New(v.dev, v.log)
	if err := v.obj.Load(v.path); err != nil {
		return err
	}
	v.dev.Reset()
	_, _ = fmt.Fprintf(v.out, "loaded %s: %d sub-objects\n", v.path, v.obj.SubObjectCount())
	return nil
}

func (v *meshViewer) Render(_ context.Context, f app.Frame) error {
	var subs []int
	switch {
	case v.all:
		for i := range v.obj.SubObjectCount() {
			subs = append(subs, i)
		}
	case v.shuffle:
		if n := v.obj.SubObjectCount(); n > 0 {
			subs = []int{f.Rand.IntN(n)}
		}
	default:
		subs = []int{v.subObject}
	}

	for _, i := range subs {
		if err := v.obj.RenderSubObject(i, v.instances, v.baseInstance); err != nil {
			return err
		}
	}
	for _, c := range v.dev.Draws() {
		_, _ = fmt.Fprintf(v.out, "frame %d: %s\n", f.Index, formatDraw(c))
	}
	v.dev.Reset()
	return nil
}

func (v *meshViewer) Shutdown(context.Context) error {
	if v.obj != nil {
		v.obj.Free()
	}
	return nil
}

// checkDrawFlags rejects draw parameters the device cannot represent.
// Instance counts are 32-bit on the device.
func checkDrawFlags(instances, baseInstance, subObject, frames int64) error {
	if instances < 0 || baseInstance < 0 || subObject < 0 || frames < 1 {
		return errors.New("--instances, --base-instance and --sub-object must be non-negative and --frames positive")
	}
	if instances > math.MaxUint32 || baseInstance > math.MaxUint32 {
		return fmt.Errorf("--instances and --base-instance must not exceed %d", uint32(math.MaxUint32))
	}
	return nil
}

func formatDraw(c recorder.Call) string {
	switch {
	case c.Elements != nil:
		e := c.Elements
		return fmt.Sprintf("draw_elements vao=%d count=%d type=%s offset=%d instances=%d base_instance=%d",
			c.VAO, e.Count, e.IndexType, e.Offset, e.InstanceCount, e.BaseInstance)
	case c.Arrays != nil:
		a := c.Arrays
		return fmt.Sprintf("draw_arrays vao=%d first=%d count=%d instances=%d base_instance=%d",
			c.VAO, a.First, a.Count, a.InstanceCount, a.BaseInstance)
	default:
		return string(c.Op)
	}
}
