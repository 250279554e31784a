// Package recorder provides a headless device that records every call it
// receives and keeps a byte image of each buffer.
package recorder

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/samcharles93/sb6m/internal/device"
	"github.com/samcharles93/sb6m/pkg/sb6m"
)

// Name is the backend name reported by Device.
const Name = "recorder"

// DefaultMaxVertexAttribs matches the minimum OpenGL guarantee.
const DefaultMaxVertexAttribs = 16

var ErrUnknownHandle = errors.New("recorder: unknown handle")

type Op string

const (
	OpCreateVertexArray     Op = "create_vertex_array"
	OpDeleteVertexArray     Op = "delete_vertex_array"
	OpCreateBuffer          Op = "create_buffer"
	OpUploadBuffer          Op = "upload_buffer"
	OpDeleteBuffer          Op = "delete_buffer"
	OpBindVertexAttrib      Op = "bind_vertex_attrib"
	OpBindIndexBuffer       Op = "bind_index_buffer"
	OpDrawElementsInstanced Op = "draw_elements_instanced"
	OpDrawArraysInstanced   Op = "draw_arrays_instanced"
)

// Call is one recorded device operation. Only the fields relevant to Op are
// set.
type Call struct {
	Op        Op                   `json:"op"`
	VAO       device.VertexArray   `json:"vao,omitempty"`
	Buffer    device.Buffer        `json:"buffer,omitempty"`
	Offset    int                  `json:"offset,omitempty"`
	Size      int                  `json:"size,omitempty"`
	Attrib    *device.Attrib       `json:"attrib,omitempty"`
	IndexType sb6m.IndexType       `json:"index_type,omitempty"`
	Elements  *device.DrawElements `json:"elements,omitempty"`
	Arrays    *device.DrawArrays   `json:"arrays,omitempty"`
}

// IsDraw reports whether the call issued a draw.
func (c Call) IsDraw() bool {
	return c.Op == OpDrawElementsInstanced || c.Op == OpDrawArraysInstanced
}

// VertexArrayState is the binding state of a vertex array.
type VertexArrayState struct {
	Attribs     map[uint32]device.Attrib
	AttribBufs  map[uint32]device.Buffer
	IndexBuffer device.Buffer
	IndexType   sb6m.IndexType
}

// Device records calls in memory. It is not safe for concurrent use.
type Device struct {
	maxAttribs int
	next       uint32
	buffers    map[device.Buffer][]byte
	arrays     map[device.VertexArray]*VertexArrayState
	calls      []Call
}

var _ device.Device = (*Device)(nil)

// New returns a recorder limited to maxAttribs attribute slots. Values
// below one select DefaultMaxVertexAttribs.
func New(maxAttribs int) *Device {
	if maxAttribs < 1 {
		maxAttribs = DefaultMaxVertexAttribs
	}
	return &Device{
		maxAttribs: maxAttribs,
		buffers:    make(map[device.Buffer][]byte),
		arrays:     make(map[device.VertexArray]*VertexArrayState),
	}
}

func (d *Device) Name() string          { return Name }
func (d *Device) MaxVertexAttribs() int { return d.maxAttribs }

func (d *Device) CreateVertexArray() (device.VertexArray, error) {
	d.next++
	vao := device.VertexArray(d.next)
	d.arrays[vao] = &VertexArrayState{
		Attribs:    make(map[uint32]device.Attrib),
		AttribBufs: make(map[uint32]device.Buffer),
	}
	d.record(Call{Op: OpCreateVertexArray, VAO: vao})
	return vao, nil
}

func (d *Device) DeleteVertexArray(vao device.VertexArray) {
	delete(d.arrays, vao)
	d.record(Call{Op: OpDeleteVertexArray, VAO: vao})
}

func (d *Device) CreateBuffer(size int) (device.Buffer, error) {
	if size < 0 {
		return 0, fmt.Errorf("recorder: negative buffer size %d", size)
	}
	d.next++
	buf := device.Buffer(d.next)
	d.buffers[buf] = make([]byte, size)
	d.record(Call{Op: OpCreateBuffer, Buffer: buf, Size: size})
	return buf, nil
}

func (d *Device) UploadBuffer(buf device.Buffer, offset int, data []byte) error {
	mem, ok := d.buffers[buf]
	if !ok {
		return fmt.Errorf("%w: buffer %d", ErrUnknownHandle, buf)
	}
	if offset < 0 || offset+len(data) > len(mem) {
		return fmt.Errorf("recorder: upload [%d, %d) outside buffer of %d bytes", offset, offset+len(data), len(mem))
	}
	copy(mem[offset:], data)
	d.record(Call{Op: OpUploadBuffer, Buffer: buf, Offset: offset, Size: len(data)})
	return nil
}

func (d *Device) DeleteBuffer(buf device.Buffer) {
	delete(d.buffers, buf)
	d.record(Call{Op: OpDeleteBuffer, Buffer: buf})
}

func (d *Device) BindVertexAttrib(vao device.VertexArray, buf device.Buffer, a device.Attrib) error {
	st, err := d.lookup(vao, buf)
	if err != nil {
		return err
	}
	if int(a.Slot) >= d.maxAttribs {
		return fmt.Errorf("recorder: attribute slot %d exceeds limit %d", a.Slot, d.maxAttribs)
	}
	st.Attribs[a.Slot] = a
	st.AttribBufs[a.Slot] = buf
	d.record(Call{Op: OpBindVertexAttrib, VAO: vao, Buffer: buf, Attrib: &a})
	return nil
}

func (d *Device) BindIndexBuffer(vao device.VertexArray, buf device.Buffer, t sb6m.IndexType) error {
	st, err := d.lookup(vao, buf)
	if err != nil {
		return err
	}
	st.IndexBuffer = buf
	st.IndexType = t
	d.record(Call{Op: OpBindIndexBuffer, VAO: vao, Buffer: buf, IndexType: t})
	return nil
}

func (d *Device) DrawElementsInstanced(vao device.VertexArray, e device.DrawElements) error {
	st, ok := d.arrays[vao]
	if !ok {
		return fmt.Errorf("%w: vertex array %d", ErrUnknownHandle, vao)
	}
	if st.IndexBuffer == 0 {
		return fmt.Errorf("recorder: vertex array %d has no index buffer", vao)
	}
	d.record(Call{Op: OpDrawElementsInstanced, VAO: vao, Buffer: st.IndexBuffer, Elements: &e})
	return nil
}

func (d *Device) DrawArraysInstanced(vao device.VertexArray, a device.DrawArrays) error {
	if _, ok := d.arrays[vao]; !ok {
		return fmt.Errorf("%w: vertex array %d", ErrUnknownHandle, vao)
	}
	d.record(Call{Op: OpDrawArraysInstanced, VAO: vao, Arrays: &a})
	return nil
}

func (d *Device) lookup(vao device.VertexArray, buf device.Buffer) (*VertexArrayState, error) {
	st, ok := d.arrays[vao]
	if !ok {
		return nil, fmt.Errorf("%w: vertex array %d", ErrUnknownHandle, vao)
	}
	if _, ok := d.buffers[buf]; !ok {
		return nil, fmt.Errorf("%w: buffer %d", ErrUnknownHandle, buf)
	}
	return st, nil
}

func (d *Device) record(c Call) {
	d.calls = append(d.calls, c)
}

// Calls returns a copy of every recorded call in order.
func (d *Device) Calls() []Call {
	return slices.Clone(d.calls)
}

// Draws returns the recorded draw calls in order.
func (d *Device) Draws() []Call {
	var out []Call
	for _, c := range d.calls {
		if c.IsDraw() {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls. Live objects are kept.
func (d *Device) Reset() {
	d.calls = nil
}

// BufferData returns a copy of the contents of a live buffer.
func (d *Device) BufferData(buf device.Buffer) ([]byte, bool) {
	mem, ok := d.buffers[buf]
	if !ok {
		return nil, false
	}
	return slices.Clone(mem), true
}

// VertexArray returns a copy of the binding state of a live vertex array.
func (d *Device) VertexArray(vao device.VertexArray) (VertexArrayState, bool) {
	st, ok := d.arrays[vao]
	if !ok {
		return VertexArrayState{}, false
	}
	return VertexArrayState{
		Attribs:     maps.Clone(st.Attribs),
		AttribBufs:  maps.Clone(st.AttribBufs),
		IndexBuffer: st.IndexBuffer,
		IndexType:   st.IndexType,
	}, true
}

// Live returns the number of live buffers and vertex arrays.
func (d *Device) Live() (buffers, vertexArrays int) {
	return len(d.buffers), len(d.arrays)
}
