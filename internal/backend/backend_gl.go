//go:build gl

package backend

import (
	"github.com/samcharles93/sb6m/internal/device"
	"github.com/samcharles93/sb6m/internal/device/glcore"
)

const glEnabled = true

func newGL() (device.Device, error) {
	return glcore.New()
}
