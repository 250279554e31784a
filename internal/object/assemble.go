package object

import (
	"fmt"
	"math"

	"github.com/samcharles93/sb6m/pkg/sb6m"
)

// region records where the vertex and index bytes start inside the
// assembled buffer.
type region struct {
	vertexBase uint32
	indexBase  uint32
}

// assemble creates the object's single device buffer.
//
// With a DATA chunk the blob is uploaded verbatim and every declared offset
// is already relative to it. Otherwise the vertex payload is placed at zero
// and the index payload directly after it.
func (o *Object) assemble(c *sb6m.Container) (region, error) {
	if c.Data != nil {
		blob := c.BlobPayload()
		var r region
		if c.Index != nil {
			r.indexBase = c.Index.DataOffset
		}
		return r, o.upload(len(blob), blob)
	}

	vertices := c.VertexPayload()
	indices := c.IndexPayload()
	if uint64(len(vertices))+uint64(len(indices)) > math.MaxUint32 {
		return region{}, fmt.Errorf("%w: mesh of %d bytes does not fit a 32-bit offset", sb6m.ErrMalformed, len(vertices)+len(indices))
	}
	r := region{indexBase: uint32(len(vertices))}
	return r, o.upload(len(vertices)+len(indices), vertices, indices)
}

func (o *Object) upload(size int, parts ...[]byte) error {
	buf, err := o.dev.CreateBuffer(size)
	if err != nil {
		return fmt.Errorf("object: create buffer of %d bytes: %w", size, err)
	}
	o.buf = buf
	o.bufferSize = size

	offset := 0
	for _, p := range parts {
		if len(p) == 0 {
			continue
		}
		if err := o.dev.UploadBuffer(buf, offset, p); err != nil {
			return fmt.Errorf("object: upload %d bytes at %d: %w", len(p), offset, err)
		}
		offset += len(p)
	}
	return nil
}
