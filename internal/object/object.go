// Package object turns an SB6M container into device resources and draws
// its sub-objects.
//
// An Object owns one device buffer holding every vertex and index byte of the
// mesh, one vertex array with a binding per declared attribute, and a table
// of draw ranges. It is not safe for concurrent use.
package object

import (
	"errors"
	"fmt"

	"github.com/samcharles93/sb6m/internal/device"
	"github.com/samcharles93/sb6m/internal/logger"
	"github.com/samcharles93/sb6m/pkg/sb6m"
)

var (
	ErrNotLoaded      = errors.New("object: no mesh loaded")
	ErrSubObjectRange = errors.New("object: sub-object index out of range")
	ErrTooManyAttribs = fmt.Errorf("%w: more attributes than the device has slots", sb6m.ErrMalformed)
)

type Object struct {
	dev device.Device
	log logger.Logger

	vao device.VertexArray
	buf device.Buffer

	indexed   bool
	indexType sb6m.IndexType
	// indexBase is the byte offset of the index region inside buf.
	indexBase   uint32
	vertexCount uint32
	bufferSize  int

	attribs []device.Attrib
	table   subObjectTable
}

// New returns an empty object that allocates through dev. A nil log
// discards output.
func New(dev device.Device, log logger.Logger) *Object {
	if log == nil {
		log = logger.Discard()
	}
	return &Object{
		dev: dev,
		log: log.With("component", "object", "device", dev.Name()),
	}
}

// Load reads the container at path and replaces the object's contents with
// it. If the file cannot be opened or parsed the object is left unchanged.
func (o *Object) Load(path string) error {
	f, err := sb6m.Open(path)
	if err != nil {
		return fmt.Errorf("object: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := o.LoadContainer(f.Container); err != nil {
		return fmt.Errorf("object: load %s: %w", path, err)
	}
	o.log.Debug("mesh loaded", "path", path, "bytes", len(f.Raw))
	return nil
}

// LoadContainer frees any previous state and builds the object from c. On
// error the object is empty and no device resources are held.
func (o *Object) LoadContainer(c *sb6m.Container) error {
	o.Free()
	if err := o.build(c); err != nil {
		o.Free()
		return err
	}
	o.log.Debug("container uploaded",
		"indexed", o.indexed,
		"attribs", len(o.attribs),
		"sub_objects", o.table.len(),
		"buffer_bytes", o.bufferSize,
	)
	return nil
}

func (o *Object) build(c *sb6m.Container) error {
	if c == nil {
		return fmt.Errorf("%w: nil container", sb6m.ErrMalformed)
	}
	if !c.Has(sb6m.ChunkVertexAttribs) {
		return fmt.Errorf("%w: missing %s chunk", sb6m.ErrMalformed, sb6m.ChunkVertexAttribs)
	}
	if c.Vertex == nil && c.Data == nil {
		return fmt.Errorf("%w: missing %s and %s chunks", sb6m.ErrMalformed, sb6m.ChunkVertexData, sb6m.ChunkData)
	}
	if limit := o.dev.MaxVertexAttribs(); len(c.Attribs) > limit {
		return fmt.Errorf("%w: %d declared, %d available", ErrTooManyAttribs, len(c.Attribs), limit)
	}

	region, err := o.assemble(c)
	if err != nil {
		return err
	}

	vao, err := o.dev.CreateVertexArray()
	if err != nil {
		return fmt.Errorf("object: create vertex array: %w", err)
	}
	o.vao = vao

	o.attribs = layout(c.Attribs, region.vertexBase)
	for _, a := range o.attribs {
		if err := o.dev.BindVertexAttrib(o.vao, o.buf, a); err != nil {
			return fmt.Errorf("object: bind attribute %d: %w", a.Slot, err)
		}
	}

	if c.Indexed() {
		o.indexed = true
		o.indexType = c.Index.Type
		o.indexBase = region.indexBase
		if err := o.dev.BindIndexBuffer(o.vao, o.buf, o.indexType); err != nil {
			return fmt.Errorf("object: bind index buffer: %w", err)
		}
	}
	if c.Vertex != nil {
		o.vertexCount = c.Vertex.TotalVertices
	}

	o.table = newSubObjectTable(c, o.indexBase)
	return nil
}

// Free releases the buffer and vertex array and resets the object to its
// empty state. It is safe to call more than once.
func (o *Object) Free() {
	if o.vao != 0 {
		o.dev.DeleteVertexArray(o.vao)
	}
	if o.buf != 0 {
		o.dev.DeleteBuffer(o.buf)
	}
	*o = Object{dev: o.dev, log: o.log}
}

// Loaded reports whether the object holds device resources.
func (o *Object) Loaded() bool { return o.vao != 0 }

func (o *Object) VAO() device.VertexArray { return o.vao }

func (o *Object) Buffer() device.Buffer { return o.buf }

// BufferSize is the size in bytes of the assembled device buffer.
func (o *Object) BufferSize() int { return o.bufferSize }

func (o *Object) Indexed() bool { return o.indexed }

// IndexType is IndexNone for non-indexed objects.
func (o *Object) IndexType() sb6m.IndexType { return o.indexType }

// IndexBase is the byte offset of the index region inside the buffer.
func (o *Object) IndexBase() uint32 { return o.indexBase }

// VertexCount is the total vertex count declared by the VRTX chunk, or zero
// when the container has none.
func (o *Object) VertexCount() uint32 { return o.vertexCount }

// Attribs returns a copy of the attribute bindings in slot order.
func (o *Object) Attribs() []device.Attrib {
	out := make([]device.Attrib, len(o.attribs))
	copy(out, o.attribs)
	return out
}
