package sb6m

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ChunkInfo describes one chunk in file order, known or not.
type ChunkInfo struct {
	Type   FourCC
	Offset uint64 // absolute offset of the chunk header
	Size   uint32
	Known  bool
}

// End returns the offset one past the last byte of the chunk.
func (c ChunkInfo) End() uint64 {
	return c.Offset + uint64(c.Size)
}

// Container is a parsed view over an SB6M file. When a known chunk type
// occurs more than once only the last occurrence is kept; every chunk still
// appears in Chunks. Payload slices alias the buffer passed to Parse.
type Container struct {
	Header Header
	Chunks []ChunkInfo

	Index      *IndexData
	Vertex     *VertexData
	Attribs    []AttribDecl
	SubObjects []SubObjectDecl
	Comment    string
	Data       *DataBlob

	last map[FourCC]int

	indexPayload  []byte
	vertexPayload []byte
	blobPayload   []byte
}

// Parse validates the header, walks header.NumChunks chunks and decodes the
// last occurrence of each known type. Every chunk header is bounds checked
// against data; structural problems are reported as ErrMalformed.
func Parse(data []byte) (*Container, error) {
	hdr, ok := decodeHeader(data)
	if !ok {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrMalformed, len(data))
	}
	if hdr.Magic != Magic {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidMagic, hdr.Magic)
	}
	if hdr.Size < HeaderSize || uint64(hdr.Size) > uint64(len(data)) {
		return nil, fmt.Errorf("%w: header size %d out of range", ErrMalformed, hdr.Size)
	}

	c := &Container{
		Header: hdr,
		Chunks: make([]ChunkInfo, 0, min(hdr.NumChunks, 64)),
		last:   make(map[FourCC]int),
	}

	size := uint64(len(data))
	off := uint64(hdr.Size)
	for i := range hdr.NumChunks {
		if off+ChunkHeaderSize > size {
			return nil, fmt.Errorf("%w: chunk %d header at offset %d past end of file", ErrMalformed, i, off)
		}
		ch, _ := decodeChunkHeader(data[off:])
		if ch.Size < ChunkHeaderSize {
			return nil, fmt.Errorf("%w: chunk %d (%s) declares size %d", ErrMalformed, i, ch.Type, ch.Size)
		}
		end := off + uint64(ch.Size)
		if end > size {
			return nil, fmt.Errorf("%w: chunk %d (%s) overruns file by %d bytes", ErrMalformed, i, ch.Type, end-size)
		}

		info := ChunkInfo{Type: ch.Type, Offset: off, Size: ch.Size, Known: knownChunk(ch.Type)}
		if info.Known {
			c.last[ch.Type] = len(c.Chunks)
		}
		c.Chunks = append(c.Chunks, info)
		off = end
	}

	// Superseded occurrences are never decoded.
	for i, info := range c.Chunks {
		if !info.Known || c.last[info.Type] != i {
			continue
		}
		if err := c.classify(info.Type, data[info.Offset:info.End()]); err != nil {
			return nil, fmt.Errorf("%w: chunk %d (%s): %s", ErrMalformed, i, info.Type, err)
		}
	}

	if err := c.resolvePayloads(data); err != nil {
		return nil, err
	}
	return c, nil
}

// classify decodes a chunk of a known type into c. Unknown types are left
// alone.
func (c *Container) classify(tag FourCC, chunk []byte) error {
	switch tag {
	case ChunkIndexData:
		d, ok := decodeIndexData(chunk)
		if !ok {
			return errShortChunk(len(chunk), indexDataSize)
		}
		c.Index = &d
	case ChunkVertexData:
		d, ok := decodeVertexData(chunk)
		if !ok {
			return errShortChunk(len(chunk), vertexDataSize)
		}
		c.Vertex = &d
	case ChunkData:
		d, ok := decodeDataBlob(chunk)
		if !ok {
			return errShortChunk(len(chunk), dataChunkSize)
		}
		c.Data = &d
	case ChunkVertexAttribs:
		n, items, err := countedArray(chunk, AttribDeclSize)
		if err != nil {
			return err
		}
		attribs := make([]AttribDecl, n)
		for i := range attribs {
			attribs[i], _ = decodeAttribDecl(items[i*AttribDeclSize:])
		}
		c.Attribs = attribs
	case ChunkSubObjectList:
		n, items, err := countedArray(chunk, SubObjectSize)
		if err != nil {
			return err
		}
		subs := make([]SubObjectDecl, n)
		for i := range subs {
			subs[i], _ = decodeSubObject(items[i*SubObjectSize:])
		}
		c.SubObjects = subs
	case ChunkComment:
		text := chunk[ChunkHeaderSize:]
		if i := bytes.IndexByte(text, 0); i >= 0 {
			text = text[:i]
		}
		c.Comment = string(text)
	}
	return nil
}

// countedArray reads the element count that follows the chunk header and
// returns the bytes of the declared elements.
func countedArray(chunk []byte, elemSize int) (int, []byte, error) {
	const start = ChunkHeaderSize + countFieldSize
	if len(chunk) < start {
		return 0, nil, errShortChunk(len(chunk), start)
	}
	n := binary.LittleEndian.Uint32(chunk[ChunkHeaderSize:start])
	need := uint64(start) + uint64(n)*uint64(elemSize)
	if need > uint64(len(chunk)) {
		return 0, nil, fmt.Errorf("%d entries need %d bytes, chunk has %d", n, need, len(chunk))
	}
	return int(n), chunk[start:need], nil
}

func errShortChunk(got, want int) error {
	return fmt.Errorf("chunk is %d bytes, need at least %d", got, want)
}

func (c *Container) resolvePayloads(data []byte) error {
	if c.Index != nil && c.Index.Type.Size() == 0 {
		return fmt.Errorf("%w: unsupported index type %s", ErrMalformed, c.Index.Type)
	}

	if c.Data != nil {
		if c.Data.Encoding != EncodingRaw {
			return fmt.Errorf("%w: %d", ErrUnsupportedEncoding, c.Data.Encoding)
		}
		base := c.Chunks[c.last[ChunkData]].Offset
		blob, err := slice(data, base+uint64(c.Data.DataOffset), uint64(c.Data.DataLength))
		if err != nil {
			return fmt.Errorf("%w: data blob: %s", ErrMalformed, err)
		}
		c.blobPayload = blob
		if c.Index != nil {
			idx, err := slice(blob, uint64(c.Index.DataOffset), c.Index.ByteSize())
			if err != nil {
				return fmt.Errorf("%w: index data inside blob: %s", ErrMalformed, err)
			}
			c.indexPayload = idx
		}
		return nil
	}

	if c.Vertex != nil {
		v, err := slice(data, uint64(c.Vertex.DataOffset), uint64(c.Vertex.DataSize))
		if err != nil {
			return fmt.Errorf("%w: vertex data: %s", ErrMalformed, err)
		}
		c.vertexPayload = v
	}
	if c.Index != nil {
		idx, err := slice(data, uint64(c.Index.DataOffset), c.Index.ByteSize())
		if err != nil {
			return fmt.Errorf("%w: index data: %s", ErrMalformed, err)
		}
		c.indexPayload = idx
	}
	return nil
}

func slice(b []byte, off, n uint64) ([]byte, error) {
	end := off + n
	if end < off || end > uint64(len(b)) {
		return nil, fmt.Errorf("range [%d, %d) outside %d bytes", off, end, len(b))
	}
	return b[off:end], nil
}

// Has reports whether a chunk of the given known type was present.
func (c *Container) Has(tag FourCC) bool {
	_, ok := c.last[tag]
	return ok
}

// ChunkOf returns the directory entry of the last chunk of type tag.
func (c *Container) ChunkOf(tag FourCC) (ChunkInfo, bool) {
	i, ok := c.last[tag]
	if !ok {
		return ChunkInfo{}, false
	}
	return c.Chunks[i], true
}

// Indexed reports whether the container carries index data.
func (c *Container) Indexed() bool { return c.Index != nil }

// IndexPayload returns the index bytes, or nil for non-indexed containers.
func (c *Container) IndexPayload() []byte { return c.indexPayload }

// VertexPayload returns the vertex bytes of a split container, or nil when
// the container uses a DATA blob.
func (c *Container) VertexPayload() []byte { return c.vertexPayload }

// BlobPayload returns the DATA chunk payload, or nil if there is none.
func (c *Container) BlobPayload() []byte { return c.blobPayload }
