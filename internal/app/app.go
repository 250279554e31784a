// Package app runs an Application through a fixed number of frames without a
// window. Hosts that own a real surface drive Application themselves.
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/samcharles93/sb6m/internal/logger"
)

// Application is the set of callbacks a host loop invokes. Embed Base to
// pick up no-op defaults.
type Application interface {
	Startup(ctx context.Context) error
	Render(ctx context.Context, f Frame) error
	Shutdown(ctx context.Context) error
}

// Base implements Application with callbacks that do nothing.
type Base struct{}

func (Base) Startup(context.Context) error       { return nil }
func (Base) Render(context.Context, Frame) error { return nil }
func (Base) Shutdown(context.Context) error      { return nil }

// Frame is passed to Render once per iteration.
type Frame struct {
	Index int
	// Elapsed is the time since the loop started.
	Elapsed time.Duration
	Delta   time.Duration
	// Rand is owned by the loop and seeded from RunOptions.Seed. It must not
	// be retained past the call.
	Rand *rand.Rand
}

type RunOptions struct {
	// Frames is the number of frames to render. Zero renders until ctx is
	// done.
	Frames int
	// Interval is the minimum time between frames. Zero runs frames back to
	// back.
	Interval time.Duration
	Seed     uint64
	Log      logger.Logger
}

// Run calls Startup, then Render once per frame, then Shutdown. Shutdown
// runs whenever Startup succeeded, even if a frame failed or ctx was
// cancelled.
func Run(ctx context.Context, a Application, opts RunOptions) (err error) {
	log := opts.Log
	if log == nil {
		log = logger.FromContext(ctx)
	}
	log = log.With("component", "app")

	if err := a.Startup(ctx); err != nil {
		return fmt.Errorf("app: startup: %w", err)
	}
	defer func() {
		// Shutdown gets its own context so cancellation does not skip it.
		if serr := a.Shutdown(context.WithoutCancel(ctx)); serr != nil {
			err = errors.Join(err, fmt.Errorf("app: shutdown: %w", serr))
		}
	}()

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	var ticker *time.Ticker
	if opts.Interval > 0 {
		ticker = time.NewTicker(opts.Interval)
		defer ticker.Stop()
	}

	start := time.Now()
	last := start
	for i := 0; opts.Frames <= 0 || i < opts.Frames; i++ {
		if i > 0 && ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		now := time.Now()
		f := Frame{Index: i, Elapsed: now.Sub(start), Delta: now.Sub(last), Rand: rng}
		last = now
		if err := a.Render(ctx, f); err != nil {
			return fmt.Errorf("app: frame %d: %w", i, err)
		}
	}
	log.Debug("loop finished", "frames", opts.Frames, "elapsed", time.Since(start))
	return nil
}
