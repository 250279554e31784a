package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samcharles93/sb6m/internal/logger"
)

type countingApp struct {
	Base
	frames   []Frame
	draws    []int
	failAt   int
	shutdown bool
}

func (a *countingApp) Render(_ context.Context, f Frame) error {
	if a.failAt > 0 && f.Index == a.failAt {
		return errors.New("boom")
	}
	a.frames = append(a.frames, f)
	a.draws = append(a.draws, f.Rand.IntN(1000))
	return nil
}

func (a *countingApp) Shutdown(context.Context) error {
	a.shutdown = true
	return nil
}

func TestRunFrames(t *testing.T) {
	t.Parallel()
	a := &countingApp{}
	if err := Run(context.Background(), a, RunOptions{Frames: 5, Log: logger.Discard()}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(a.frames) != 5 {
		t.Fatalf("frames: got %d want 5", len(a.frames))
	}
	for i, f := range a.frames {
		if f.Index != i {
			t.Fatalf("frame %d has index %d", i, f.Index)
		}
	}
	if !a.shutdown {
		t.Fatal("shutdown not called")
	}
}

func TestRunSeedIsDeterministic(t *testing.T) {
	t.Parallel()
	a, b := &countingApp{}, &countingApp{}
	opts := RunOptions{Frames: 8, Seed: 42, Log: logger.Discard()}
	if err := Run(context.Background(), a, opts); err != nil {
		t.Fatal(err)
	}
	if err := Run(context.Background(), b, opts); err != nil {
		t.Fatal(err)
	}
	for i := range a.draws {
		if a.draws[i] != b.draws[i] {
			t.Fatalf("draw %d: got %d and %d from the same seed", i, a.draws[i], b.draws[i])
		}
	}
}

func TestRunShutdownAfterFrameError(t *testing.T) {
	t.Parallel()
	a := &countingApp{failAt: 2}
	err := Run(context.Background(), a, RunOptions{Frames: 5, Log: logger.Discard()})
	if err == nil {
		t.Fatal("expected frame error")
	}
	if len(a.frames) != 2 || !a.shutdown {
		t.Fatalf("got %d frames, shutdown=%v", len(a.frames), a.shutdown)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	a := &countingApp{}
	err := Run(ctx, a, RunOptions{Interval: time.Millisecond, Log: logger.Discard()})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v want deadline exceeded", err)
	}
	if !a.shutdown {
		t.Fatal("shutdown not called after cancellation")
	}
}

type failingStartup struct{ Base }

func (failingStartup) Startup(context.Context) error { return errors.New("no device") }

func TestRunStartupError(t *testing.T) {
	t.Parallel()
	if err := Run(context.Background(), failingStartup{}, RunOptions{Frames: 1, Log: logger.Discard()}); err == nil {
		t.Fatal("expected startup error")
	}
}
