package backend

import (
	"fmt"
	"strings"

	"github.com/samcharles93/sb6m/internal/device"
	"github.com/samcharles93/sb6m/internal/device/recorder"
)

const (
	Recorder = "recorder"
	GL       = "gl"
	Auto     = "auto"
)

// Options configures device construction.
type Options struct {
	// MaxVertexAttribs limits the recorder's attribute slots. Zero keeps the
	// recorder default; hardware devices report their own limit.
	MaxVertexAttribs int
	// ContextCurrent reports that the caller has made a GL context current on
	// this thread. Auto only selects gl when it is set.
	ContextCurrent bool
}

func Normalize(name string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(name))
	if backend == "" {
		return Auto, nil
	}
	switch backend {
	case Recorder, GL, Auto:
		return backend, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected auto, recorder, or gl)", backend)
	}
}

// New builds the named device. Auto selects gl when it is compiled in and
// the caller owns a current context, and the recorder otherwise. Naming gl
// explicitly without a context fails in the device constructor.
func New(name string, opts Options) (device.Device, error) {
	backend, err := Normalize(name)
	if err != nil {
		return nil, err
	}
	if backend == Auto {
		backend = Recorder
		if glEnabled && opts.ContextCurrent {
			backend = GL
		}
	}
	switch backend {
	case GL:
		return newGL()
	default:
		return recorder.New(opts.MaxVertexAttribs), nil
	}
}
