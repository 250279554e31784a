package object

import (
	"github.com/samcharles93/sb6m/internal/device"
	"github.com/samcharles93/sb6m/pkg/sb6m"
)

// layout maps declaration i to attribute slot i. Names are not used for
// binding. Offsets are made relative to the start of the buffer by adding
// vertexBase. A declared stride of zero means tightly packed.
func layout(decls []sb6m.AttribDecl, vertexBase uint32) []device.Attrib {
	out := make([]device.Attrib, len(decls))
	for i, d := range decls {
		stride := d.Stride
		if stride == 0 {
			stride = device.PackedStride(d.Components, d.Type)
		}
		out[i] = device.Attrib{
			Slot:       uint32(i),
			Components: d.Components,
			Type:       d.Type,
			Normalized: d.Normalized(),
			Integer:    d.Integer(),
			Stride:     stride,
			Offset:     d.DataOffset + vertexBase,
		}
	}
	return out
}
