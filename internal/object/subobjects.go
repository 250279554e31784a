package object

import "github.com/samcharles93/sb6m/pkg/sb6m"

// MaxSubObjects is the capacity of the sub-object table. Entries past it are
// dropped when a mesh is loaded.
const MaxSubObjects = 256

// DrawRange is a sub-object resolved for the object's draw mode. It is
// either an IndexedRange or an ArrayRange.
type DrawRange interface {
	// Len is the number of indices or vertices drawn.
	Len() uint32
	drawRange()
}

// IndexedRange draws Count indices starting at ByteOffset, measured from the
// start of the object's buffer.
type IndexedRange struct {
	ByteOffset uint32
	Count      uint32
}

// ArrayRange draws Count vertices starting at vertex FirstVertex.
type ArrayRange struct {
	FirstVertex uint32
	Count       uint32
}

func (r IndexedRange) Len() uint32 { return r.Count }
func (r ArrayRange) Len() uint32   { return r.Count }

func (IndexedRange) drawRange() {}
func (ArrayRange) drawRange()   {}

type subObjectTable struct {
	decls  []sb6m.SubObjectDecl
	ranges []DrawRange
	// declared is the entry count found in the file before truncation.
	declared int
}

func newSubObjectTable(c *sb6m.Container, indexBase uint32) subObjectTable {
	var t subObjectTable
	if c.Has(sb6m.ChunkSubObjectList) {
		t.declared = len(c.SubObjects)
		t.decls = append([]sb6m.SubObjectDecl(nil), c.SubObjects[:min(len(c.SubObjects), MaxSubObjects)]...)
	} else {
		t.declared = 1
		t.decls = []sb6m.SubObjectDecl{{First: 0, Count: defaultCount(c)}}
	}

	t.ranges = make([]DrawRange, len(t.decls))
	for i, d := range t.decls {
		if c.Indexed() {
			t.ranges[i] = IndexedRange{ByteOffset: indexBase + d.First, Count: d.Count}
		} else {
			t.ranges[i] = ArrayRange{FirstVertex: d.First, Count: d.Count}
		}
	}
	return t
}

func defaultCount(c *sb6m.Container) uint32 {
	switch {
	case c.Indexed():
		return c.Index.Count
	case c.Vertex != nil:
		return c.Vertex.TotalVertices
	default:
		return 0
	}
}

func (t subObjectTable) len() int { return len(t.ranges) }

// SubObjectCount is the number of live sub-objects, at most MaxSubObjects.
func (o *Object) SubObjectCount() int { return o.table.len() }

// DeclaredSubObjects is the number of entries the file declared, which can
// exceed SubObjectCount when the table was truncated.
func (o *Object) DeclaredSubObjects() int { return o.table.declared }

// SubObjectInfo returns the stored first and count of sub-object index. An
// out-of-range index yields (0, 0).
func (o *Object) SubObjectInfo(index int) (first, count uint32) {
	if index < 0 || index >= len(o.table.decls) {
		return 0, 0
	}
	d := o.table.decls[index]
	return d.First, d.Count
}

// DrawRange returns the resolved range of sub-object index.
func (o *Object) DrawRange(index int) (DrawRange, bool) {
	if index < 0 || index >= len(o.table.ranges) {
		return nil, false
	}
	return o.table.ranges[index], true
}
