//go:build gl

// Package glcore implements device.Device on OpenGL 4.5 core using direct
// state access. The caller owns the window and must make a context current
// on the calling thread before New and every later call.
package glcore

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.5-core/gl"

	"github.com/samcharles93/sb6m/internal/device"
	"github.com/samcharles93/sb6m/pkg/sb6m"
)

// Name is the backend name reported by Device.
const Name = "gl"

type Device struct {
	maxAttribs int
}

var _ device.Device = (*Device)(nil)

// New loads the GL function pointers for the current context.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("glcore: init: %w", err)
	}
	if gl.GetString(gl.VERSION) == nil {
		return nil, errors.New("glcore: no current GL context on this thread")
	}
	var n int32
	gl.GetIntegerv(gl.MAX_VERTEX_ATTRIBS, &n)
	if n < 1 {
		return nil, fmt.Errorf("glcore: context reports %d vertex attributes", n)
	}
	return &Device{maxAttribs: int(n)}, nil
}

func (d *Device) Name() string          { return Name }
func (d *Device) MaxVertexAttribs() int { return d.maxAttribs }

func (d *Device) CreateVertexArray() (device.VertexArray, error) {
	var vao uint32
	gl.CreateVertexArrays(1, &vao)
	if vao == 0 {
		return 0, glError("create vertex array")
	}
	return device.VertexArray(vao), nil
}

func (d *Device) DeleteVertexArray(vao device.VertexArray) {
	h := uint32(vao)
	gl.DeleteVertexArrays(1, &h)
}

func (d *Device) CreateBuffer(size int) (device.Buffer, error) {
	var buf uint32
	gl.CreateBuffers(1, &buf)
	if buf == 0 {
		return 0, glError("create buffer")
	}
	gl.NamedBufferData(buf, size, nil, gl.STATIC_DRAW)
	if err := checkError("allocate buffer"); err != nil {
		gl.DeleteBuffers(1, &buf)
		return 0, err
	}
	return device.Buffer(buf), nil
}

func (d *Device) UploadBuffer(buf device.Buffer, offset int, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	gl.NamedBufferSubData(uint32(buf), offset, len(data), unsafe.Pointer(&data[0]))
	return checkError("upload buffer")
}

func (d *Device) DeleteBuffer(buf device.Buffer) {
	h := uint32(buf)
	gl.DeleteBuffers(1, &h)
}

// BindVertexAttrib gives every attribute its own binding point at the same
// index as the attribute slot. The buffer offset carries the attribute
// offset so the relative offset is always zero. Binding points treat a zero
// stride as "do not advance", so packed attributes get their element size.
func (d *Device) BindVertexAttrib(vao device.VertexArray, buf device.Buffer, a device.Attrib) error {
	v := uint32(vao)
	stride := a.Stride
	if stride == 0 {
		stride = device.PackedStride(a.Components, a.Type)
	}
	if a.Integer {
		gl.VertexArrayAttribIFormat(v, a.Slot, int32(a.Components), uint32(a.Type), 0)
	} else {
		gl.VertexArrayAttribFormat(v, a.Slot, int32(a.Components), uint32(a.Type), a.Normalized, 0)
	}
	gl.VertexArrayVertexBuffer(v, a.Slot, uint32(buf), int(a.Offset), int32(stride))
	gl.VertexArrayAttribBinding(v, a.Slot, a.Slot)
	gl.EnableVertexArrayAttrib(v, a.Slot)
	return checkError(fmt.Sprintf("bind attribute %d", a.Slot))
}

func (d *Device) BindIndexBuffer(vao device.VertexArray, buf device.Buffer, _ sb6m.IndexType) error {
	gl.VertexArrayElementBuffer(uint32(vao), uint32(buf))
	return checkError("bind index buffer")
}

func (d *Device) DrawElementsInstanced(vao device.VertexArray, e device.DrawElements) error {
	gl.BindVertexArray(uint32(vao))
	gl.DrawElementsInstancedBaseInstance(uint32(e.Mode), int32(e.Count), uint32(e.IndexType),
		gl.PtrOffset(int(e.Offset)), int32(e.InstanceCount), e.BaseInstance)
	return checkError("draw elements")
}

func (d *Device) DrawArraysInstanced(vao device.VertexArray, a device.DrawArrays) error {
	gl.BindVertexArray(uint32(vao))
	gl.DrawArraysInstancedBaseInstance(uint32(a.Mode), int32(a.First), int32(a.Count),
		int32(a.InstanceCount), a.BaseInstance)
	return checkError("draw arrays")
}

func checkError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("glcore: %s: GL error 0x%04x", op, code)
	}
	return nil
}

func glError(op string) error {
	if err := checkError(op); err != nil {
		return err
	}
	return fmt.Errorf("glcore: %s: no handle returned", op)
}
