package object

import (
	"fmt"

	"github.com/samcharles93/sb6m/internal/device"
)

// Render draws sub-object 0.
func (o *Object) Render(instanceCount, baseInstance uint32) error {
	return o.RenderSubObject(0, instanceCount, baseInstance)
}

// RenderSubObject issues one instanced draw for sub-object index. Indexed
// objects draw elements of the stored index type; others draw arrays.
func (o *Object) RenderSubObject(index int, instanceCount, baseInstance uint32) error {
	if o.vao == 0 {
		return ErrNotLoaded
	}
	r, ok := o.DrawRange(index)
	if !ok {
		return fmt.Errorf("%w: %d (have %d)", ErrSubObjectRange, index, o.table.len())
	}

	switch r := r.(type) {
	case IndexedRange:
		return o.dev.DrawElementsInstanced(o.vao, device.DrawElements{
			Mode:          device.Triangles,
			Count:         r.Count,
			IndexType:     o.indexType,
			Offset:        r.ByteOffset,
			InstanceCount: instanceCount,
			BaseInstance:  baseInstance,
		})
	case ArrayRange:
		return o.dev.DrawArraysInstanced(o.vao, device.DrawArrays{
			Mode:          device.Triangles,
			First:         r.FirstVertex,
			Count:         r.Count,
			InstanceCount: instanceCount,
			BaseInstance:  baseInstance,
		})
	default:
		return fmt.Errorf("object: unexpected draw range %T", r)
	}
}
