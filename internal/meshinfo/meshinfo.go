// Package meshinfo builds serializable summaries of SB6M meshes for the CLI
// and the HTTP service.
package meshinfo

import (
	"github.com/samcharles93/sb6m/internal/object"
	"github.com/samcharles93/sb6m/pkg/sb6m"
)

const (
	ModeIndexed = "indexed"
	ModeArrays  = "arrays"

	StorageSplit = "split"
	StorageBlob  = "blob"
)

type Chunk struct {
	Tag    string `json:"tag"`
	Offset uint64 `json:"offset"`
	Size   uint32 `json:"size"`
	Known  bool   `json:"known"`
}

type Attrib struct {
	Slot       int    `json:"slot"`
	Name       string `json:"name"`
	Components uint32 `json:"components"`
	Type       string `json:"type"`
	Stride     uint32 `json:"stride"`
	Offset     uint32 `json:"offset"`
	Normalized bool   `json:"normalized,omitempty"`
	Integer    bool   `json:"integer,omitempty"`
}

// SubObject is one draw range. Start is a byte offset into the buffer for
// indexed ranges and a vertex index for array ranges.
type SubObject struct {
	Index int    `json:"index"`
	First uint32 `json:"first"`
	Count uint32 `json:"count"`
	Mode  string `json:"mode,omitempty"`
	Start uint32 `json:"start"`
}

type Summary struct {
	Name       string `json:"name,omitempty"`
	HeaderSize uint32 `json:"header_size"`
	NumChunks  uint32 `json:"num_chunks"`
	Flags      uint32 `json:"flags"`

	Mode        string `json:"mode"`
	Storage     string `json:"storage"`
	IndexType   string `json:"index_type,omitempty"`
	IndexCount  uint32 `json:"index_count,omitempty"`
	VertexCount uint32 `json:"vertex_count"`
	Comment     string `json:"comment,omitempty"`

	Chunks             []Chunk     `json:"chunks"`
	Attribs            []Attrib    `json:"attribs"`
	SubObjects         []SubObject `json:"sub_objects"`
	DeclaredSubObjects int         `json:"declared_sub_objects"`

	// Set once the mesh has been loaded onto a device.
	Device      string `json:"device,omitempty"`
	BufferBytes int    `json:"buffer_bytes,omitempty"`
}

// FromContainer describes c as stored in the file. Sub-objects are listed
// as declared, without truncation or draw ranges.
func FromContainer(c *sb6m.Container) Summary {
	s := Summary{
		HeaderSize: c.Header.Size,
		NumChunks:  c.Header.NumChunks,
		Flags:      c.Header.Flags,
		Mode:       ModeArrays,
		Storage:    StorageSplit,
		Comment:    c.Comment,
	}
	if c.Indexed() {
		s.Mode = ModeIndexed
		s.IndexType = c.Index.Type.String()
		s.IndexCount = c.Index.Count
	}
	if c.Data != nil {
		s.Storage = StorageBlob
	}
	if c.Vertex != nil {
		s.VertexCount = c.Vertex.TotalVertices
	}

	s.Chunks = make([]Chunk, len(c.Chunks))
	for i, ch := range c.Chunks {
		s.Chunks[i] = Chunk{Tag: ch.Type.String(), Offset: ch.Offset, Size: ch.Size, Known: ch.Known}
	}

	s.Attribs = make([]Attrib, len(c.Attribs))
	for i, a := range c.Attribs {
		s.Attribs[i] = Attrib{
			Slot:       i,
			Name:       a.Name,
			Components: a.Components,
			Type:       a.Type.String(),
			Stride:     a.Stride,
			Offset:     a.DataOffset,
			Normalized: a.Normalized(),
			Integer:    a.Integer(),
		}
	}

	s.SubObjects = make([]SubObject, len(c.SubObjects))
	for i, so := range c.SubObjects {
		s.SubObjects[i] = SubObject{Index: i, First: so.First, Count: so.Count}
	}
	s.DeclaredSubObjects = len(c.SubObjects)
	return s
}

// Describe summarizes c after it was loaded into o. The sub-object list is
// replaced by the object's live, resolved table.
func Describe(c *sb6m.Container, o *object.Object, deviceName string) Summary {
	s := FromContainer(c)
	s.Device = deviceName
	s.BufferBytes = o.BufferSize()
	s.DeclaredSubObjects = o.DeclaredSubObjects()
	s.SubObjects = SubObjects(o)
	for i, a := range o.Attribs() {
		if i < len(s.Attribs) {
			s.Attribs[i].Offset = a.Offset
		}
	}
	return s
}

// SubObjects lists the live sub-objects of o with their draw ranges.
func SubObjects(o *object.Object) []SubObject {
	out := make([]SubObject, 0, o.SubObjectCount())
	for i := range o.SubObjectCount() {
		first, count := o.SubObjectInfo(i)
		so := SubObject{Index: i, First: first, Count: count}
		switch r, _ := o.DrawRange(i); r := r.(type) {
		case object.IndexedRange:
			so.Mode = ModeIndexed
			so.Start = r.ByteOffset
		case object.ArrayRange:
			so.Mode = ModeArrays
			so.Start = r.FirstVertex
		}
		out = append(out, so)
	}
	return out
}
