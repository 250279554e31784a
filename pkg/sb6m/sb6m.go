// Package sb6m implements the SB6M chunked mesh container format.
//
// An SB6M file is a fixed header followed by a flat sequence of typed,
// length-prefixed chunks. Readers skip chunks they do not recognise by their
// declared size, which is the format's only forward-compatibility mechanism.
// All fields are 32-bit little-endian and decoded at fixed offsets; host
// struct layout is never relied upon.
package sb6m

import "fmt"

// FourCC is a four-character chunk or file tag. Byte 0 of the stored
// little-endian word is the first character.
type FourCC uint32

// MakeFourCC packs four characters into a FourCC.
func MakeFourCC(a, b, c, d byte) FourCC {
	return FourCC(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

// ParseFourCC converts a four byte string into a FourCC.
func ParseFourCC(s string) (FourCC, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("sb6m: fourcc %q must be 4 bytes", s)
	}
	return MakeFourCC(s[0], s[1], s[2], s[3]), nil
}

func (f FourCC) String() string {
	b := [4]byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08x", uint32(f))
		}
	}
	return string(b[:])
}

// Format constants must never change.
var (
	Magic = MakeFourCC('S', 'B', '6', 'M')

	ChunkIndexData     = MakeFourCC('I', 'N', 'D', 'X')
	ChunkVertexData    = MakeFourCC('V', 'R', 'T', 'X')
	ChunkVertexAttribs = MakeFourCC('A', 'T', 'R', 'B')
	ChunkSubObjectList = MakeFourCC('O', 'L', 'S', 'T')
	ChunkComment       = MakeFourCC('C', 'M', 'N', 'T')
	ChunkData          = MakeFourCC('D', 'A', 'T', 'A')
)

// Fixed on-disk sizes in bytes.
const (
	HeaderSize      = 16
	ChunkHeaderSize = 8

	indexDataSize  = ChunkHeaderSize + 12
	vertexDataSize = ChunkHeaderSize + 12
	dataChunkSize  = ChunkHeaderSize + 12
	countFieldSize = 4

	AttribNameSize = 64
	AttribDeclSize = AttribNameSize + 5*4
	SubObjectSize  = 8
)

// Vertex attribute declaration flags.
const (
	AttribFlagNormalized uint32 = 1 << 0
	AttribFlagInteger    uint32 = 1 << 1
)

// Encoding identifies how a DATA chunk payload is stored.
type Encoding uint32

// EncodingRaw is the only defined encoding: the payload is stored verbatim.
const EncodingRaw Encoding = 0

// ComponentType is the element type of a vertex attribute. Values are the
// OpenGL enums stored in the file.
type ComponentType uint32

const (
	TypeByte                  ComponentType = 0x1400
	TypeUnsignedByte          ComponentType = 0x1401
	TypeShort                 ComponentType = 0x1402
	TypeUnsignedShort         ComponentType = 0x1403
	TypeInt                   ComponentType = 0x1404
	TypeUnsignedInt           ComponentType = 0x1405
	TypeFloat                 ComponentType = 0x1406
	TypeDouble                ComponentType = 0x140A
	TypeHalfFloat             ComponentType = 0x140B
	TypeUnsignedInt2101010Rev ComponentType = 0x8368
	TypeInt2101010Rev         ComponentType = 0x8D9F
)

// Size returns the byte size of one component, or 0 for unknown types.
// Packed types report the size of the whole packed word.
func (t ComponentType) Size() int {
	switch t {
	case TypeByte, TypeUnsignedByte:
		return 1
	case TypeShort, TypeUnsignedShort, TypeHalfFloat:
		return 2
	case TypeInt, TypeUnsignedInt, TypeFloat, TypeInt2101010Rev, TypeUnsignedInt2101010Rev:
		return 4
	case TypeDouble:
		return 8
	default:
		return 0
	}
}

func (t ComponentType) String() string {
	switch t {
	case TypeByte:
		return "byte"
	case TypeUnsignedByte:
		return "ubyte"
	case TypeShort:
		return "short"
	case TypeUnsignedShort:
		return "ushort"
	case TypeInt:
		return "int"
	case TypeUnsignedInt:
		return "uint"
	case TypeFloat:
		return "float"
	case TypeDouble:
		return "double"
	case TypeHalfFloat:
		return "half"
	case TypeInt2101010Rev:
		return "int_2_10_10_10_rev"
	case TypeUnsignedInt2101010Rev:
		return "uint_2_10_10_10_rev"
	default:
		return fmt.Sprintf("0x%04x", uint32(t))
	}
}

// ParseComponentType maps a name produced by ComponentType.String back to
// its value.
func ParseComponentType(name string) (ComponentType, error) {
	for _, t := range []ComponentType{
		TypeByte, TypeUnsignedByte, TypeShort, TypeUnsignedShort, TypeInt,
		TypeUnsignedInt, TypeFloat, TypeDouble, TypeHalfFloat,
		TypeInt2101010Rev, TypeUnsignedInt2101010Rev,
	} {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("sb6m: unknown component type %q", name)
}

// IndexType is the element type of index data. IndexNone marks a
// non-indexed mesh.
type IndexType uint32

const (
	IndexNone          IndexType = 0
	IndexUnsignedByte  IndexType = IndexType(TypeUnsignedByte)
	IndexUnsignedShort IndexType = IndexType(TypeUnsignedShort)
	IndexUnsignedInt   IndexType = IndexType(TypeUnsignedInt)
)

// Size returns the byte size of one index, or 0 if t is not a valid index type.
func (t IndexType) Size() int {
	switch t {
	case IndexUnsignedByte:
		return 1
	case IndexUnsignedShort:
		return 2
	case IndexUnsignedInt:
		return 4
	default:
		return 0
	}
}

func (t IndexType) String() string {
	if t == IndexNone {
		return "none"
	}
	return ComponentType(t).String()
}

// Header is the container header.
type Header struct {
	Magic     FourCC
	Size      uint32
	NumChunks uint32
	Flags     uint32
}

// ChunkHeader prefixes every chunk. Size includes the chunk header itself.
type ChunkHeader struct {
	Type FourCC
	Size uint32
}

// IndexData is the INDX chunk.
type IndexData struct {
	Type       IndexType
	Count      uint32
	DataOffset uint32
}

// ByteSize returns the size of the index payload.
func (d *IndexData) ByteSize() uint64 {
	return uint64(d.Count) * uint64(d.Type.Size())
}

// VertexData is the VRTX chunk. DataOffset is an absolute file offset.
type VertexData struct {
	DataSize      uint32
	DataOffset    uint32
	TotalVertices uint32
}

// AttribDecl is one vertex attribute declaration from the ATRB chunk.
type AttribDecl struct {
	Name       string
	Components uint32
	Type       ComponentType
	Stride     uint32
	Flags      uint32
	DataOffset uint32
}

func (a AttribDecl) Normalized() bool { return a.Flags&AttribFlagNormalized != 0 }
func (a AttribDecl) Integer() bool    { return a.Flags&AttribFlagInteger != 0 }

// SubObjectDecl is one {first, count} draw range from the OLST chunk.
type SubObjectDecl struct {
	First uint32
	Count uint32
}

// DataBlob is the DATA chunk. DataOffset is relative to the chunk start.
type DataBlob struct {
	Encoding   Encoding
	DataOffset uint32
	DataLength uint32
}
