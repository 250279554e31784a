// Package device defines the rendering backend a mesh object draws through.
package device

import "github.com/samcharles93/sb6m/pkg/sb6m"

// Buffer is a device memory handle. Zero is the null handle.
type Buffer uint32

// VertexArray is a vertex attribute binding set. Zero is the null handle.
type VertexArray uint32

// Primitive is the topology of a draw call. Values match the OpenGL enums.
type Primitive uint32

const (
	Points    Primitive = 0x0000
	Lines     Primitive = 0x0001
	Triangles Primitive = 0x0004
)

// Attrib describes one positional vertex attribute binding.
type Attrib struct {
	Slot       uint32
	Components uint32
	Type       sb6m.ComponentType
	Normalized bool
	// Integer attributes are bound through the integer path and are never
	// converted to floating point.
	Integer bool
	Stride  uint32
	// Offset is the byte offset of the first element inside the buffer.
	Offset uint32
}

// PackedStride is the distance between consecutive elements of a tightly
// packed attribute. Packed 2_10_10_10 types occupy one 32-bit word whatever
// the component count.
func PackedStride(components uint32, t sb6m.ComponentType) uint32 {
	switch t {
	case sb6m.TypeInt2101010Rev, sb6m.TypeUnsignedInt2101010Rev:
		return uint32(t.Size())
	}
	return components * uint32(t.Size())
}

// DrawElements is an indexed, instanced draw.
type DrawElements struct {
	Mode      Primitive
	Count     uint32
	IndexType sb6m.IndexType
	// Offset is the byte offset of the first index inside the bound buffer.
	Offset        uint32
	InstanceCount uint32
	BaseInstance  uint32
}

// DrawArrays is a non-indexed, instanced draw.
type DrawArrays struct {
	Mode          Primitive
	First         uint32
	Count         uint32
	InstanceCount uint32
	BaseInstance  uint32
}

// Device is the set of operations a mesh object needs from a rendering
// backend. Implementations are not required to be safe for concurrent use.
type Device interface {
	Name() string
	MaxVertexAttribs() int

	CreateVertexArray() (VertexArray, error)
	DeleteVertexArray(vao VertexArray)

	CreateBuffer(size int) (Buffer, error)
	UploadBuffer(buf Buffer, offset int, data []byte) error
	DeleteBuffer(buf Buffer)

	BindVertexAttrib(vao VertexArray, buf Buffer, a Attrib) error
	BindIndexBuffer(vao VertexArray, buf Buffer, t sb6m.IndexType) error

	DrawElementsInstanced(vao VertexArray, d DrawElements) error
	DrawArraysInstanced(vao VertexArray, d DrawArrays) error
}
