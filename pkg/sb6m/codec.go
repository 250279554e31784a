package sb6m

import (
	"bytes"
	"encoding/binary"
)

// Explicit little-endian encoding of every on-disk structure. Decoders report
// false when the input is too short.

func decodeHeader(b []byte) (Header, bool) {
	if len(b) < HeaderSize {
		return Header{}, false
	}
	return Header{
		Magic:     FourCC(binary.LittleEndian.Uint32(b[0:4])),
		Size:      binary.LittleEndian.Uint32(b[4:8]),
		NumChunks: binary.LittleEndian.Uint32(b[8:12]),
		Flags:     binary.LittleEndian.Uint32(b[12:16]),
	}, true
}

func encodeHeader(b []byte, h Header) bool {
	if len(b) < HeaderSize {
		return false
	}
	binary.LittleEndian.PutUint32(b[0:4], uint32(h.Magic))
	binary.LittleEndian.PutUint32(b[4:8], h.Size)
	binary.LittleEndian.PutUint32(b[8:12], h.NumChunks)
	binary.LittleEndian.PutUint32(b[12:16], h.Flags)
	return true
}

func decodeChunkHeader(b []byte) (ChunkHeader, bool) {
	if len(b) < ChunkHeaderSize {
		return ChunkHeader{}, false
	}
	return ChunkHeader{
		Type: FourCC(binary.LittleEndian.Uint32(b[0:4])),
		Size: binary.LittleEndian.Uint32(b[4:8]),
	}, true
}

func encodeChunkHeader(b []byte, h ChunkHeader) bool {
	if len(b) < ChunkHeaderSize {
		return false
	}
	binary.LittleEndian.PutUint32(b[0:4], uint32(h.Type))
	binary.LittleEndian.PutUint32(b[4:8], h.Size)
	return true
}

// The fixed-field decoders below take the whole chunk, header included.

func decodeIndexData(chunk []byte) (IndexData, bool) {
	if len(chunk) < indexDataSize {
		return IndexData{}, false
	}
	return IndexData{
		Type:       IndexType(binary.LittleEndian.Uint32(chunk[8:12])),
		Count:      binary.LittleEndian.Uint32(chunk[12:16]),
		DataOffset: binary.LittleEndian.Uint32(chunk[16:20]),
	}, true
}

func decodeVertexData(chunk []byte) (VertexData, bool) {
	if len(chunk) < vertexDataSize {
		return VertexData{}, false
	}
	return VertexData{
		DataSize:      binary.LittleEndian.Uint32(chunk[8:12]),
		DataOffset:    binary.LittleEndian.Uint32(chunk[12:16]),
		TotalVertices: binary.LittleEndian.Uint32(chunk[16:20]),
	}, true
}

func decodeDataBlob(chunk []byte) (DataBlob, bool) {
	if len(chunk) < dataChunkSize {
		return DataBlob{}, false
	}
	return DataBlob{
		Encoding:   Encoding(binary.LittleEndian.Uint32(chunk[8:12])),
		DataOffset: binary.LittleEndian.Uint32(chunk[12:16]),
		DataLength: binary.LittleEndian.Uint32(chunk[16:20]),
	}, true
}

func decodeAttribDecl(b []byte) (AttribDecl, bool) {
	if len(b) < AttribDeclSize {
		return AttribDecl{}, false
	}
	name := b[:AttribNameSize]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	f := b[AttribNameSize:]
	return AttribDecl{
		Name:       string(name),
		Components: binary.LittleEndian.Uint32(f[0:4]),
		Type:       ComponentType(binary.LittleEndian.Uint32(f[4:8])),
		Stride:     binary.LittleEndian.Uint32(f[8:12]),
		Flags:      binary.LittleEndian.Uint32(f[12:16]),
		DataOffset: binary.LittleEndian.Uint32(f[16:20]),
	}, true
}

func encodeAttribDecl(b []byte, a AttribDecl) bool {
	if len(b) < AttribDeclSize || len(a.Name) >= AttribNameSize {
		return false
	}
	clear(b[:AttribNameSize])
	copy(b[:AttribNameSize], a.Name)
	f := b[AttribNameSize:]
	binary.LittleEndian.PutUint32(f[0:4], a.Components)
	binary.LittleEndian.PutUint32(f[4:8], uint32(a.Type))
	binary.LittleEndian.PutUint32(f[8:12], a.Stride)
	binary.LittleEndian.PutUint32(f[12:16], a.Flags)
	binary.LittleEndian.PutUint32(f[16:20], a.DataOffset)
	return true
}

func decodeSubObject(b []byte) (SubObjectDecl, bool) {
	if len(b) < SubObjectSize {
		return SubObjectDecl{}, false
	}
	return SubObjectDecl{
		First: binary.LittleEndian.Uint32(b[0:4]),
		Count: binary.LittleEndian.Uint32(b[4:8]),
	}, true
}

func encodeSubObject(b []byte, s SubObjectDecl) bool {
	if len(b) < SubObjectSize {
		return false
	}
	binary.LittleEndian.PutUint32(b[0:4], s.First)
	binary.LittleEndian.PutUint32(b[4:8], s.Count)
	return true
}

func putUint32s(b []byte, vals ...uint32) {
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[i*4:], v)
	}
}
