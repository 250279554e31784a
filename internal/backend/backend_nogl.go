//go:build !gl

package backend

import (
	"errors"

	"github.com/samcharles93/sb6m/internal/device"
)

const glEnabled = false

var errGLUnavailable = errors.New("gl backend not compiled in this build (rebuild with -tags gl)")

func newGL() (device.Device, error) {
	return nil, errGLUnavailable
}
