package sb6m

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
)

const chunkAlign = 4

// Writer builds an SB6M file in a streaming fashion.
//
// The writer reserves the header up front and patches the chunk count during
// Finalise. Chunks are written in call order, each padded to a multiple of
// four bytes. Vertex and index payloads are embedded in their own chunk.
type Writer struct {
	f      *os.File
	chunks []ChunkInfo
	flags  uint32
	closed bool

	mu sync.Mutex
}

// NewWriter creates a writer targeting f. It truncates the file and reserves
// space for the header.
func NewWriter(f *os.File) (*Writer, error) {
	if f == nil {
		return nil, errors.New("sb6m: nil file")
	}
	if err := f.Truncate(0); err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	w := &Writer{f: f}
	if err := writeFull(f, make([]byte, HeaderSize)); err != nil {
		return nil, err
	}
	return w, nil
}

// WriteChunk writes a chunk with an arbitrary tag and body. It is the escape
// hatch for chunk types this package does not model.
func (w *Writer) WriteChunk(tag FourCC, body []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.writeChunk(tag, body)
	return err
}

// WriteIndexData writes an INDX chunk that embeds payload. The recorded data
// offset points at the embedded bytes.
func (w *Writer) WriteIndexData(t IndexType, count uint32, payload []byte) error {
	if t.Size() == 0 {
		return fmt.Errorf("sb6m: unsupported index type %s", t)
	}
	if uint64(len(payload)) != uint64(count)*uint64(t.Size()) {
		return fmt.Errorf("sb6m: index payload is %d bytes, want %d", len(payload), uint64(count)*uint64(t.Size()))
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	pos, err := w.pos()
	if err != nil {
		return err
	}
	off, err := embeddedOffset(pos, indexDataSize, len(payload))
	if err != nil {
		return err
	}
	body := make([]byte, indexDataSize-ChunkHeaderSize, indexDataSize-ChunkHeaderSize+len(payload))
	putUint32s(body, uint32(t), count, off)
	_, err = w.writeChunk(ChunkIndexData, append(body, payload...))
	return err
}

// WriteIndexDecl writes an INDX chunk with caller-provided fields and no
// payload. Use it when the indices live inside a DATA blob.
func (w *Writer) WriteIndexDecl(d IndexData) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	body := make([]byte, indexDataSize-ChunkHeaderSize)
	putUint32s(body, uint32(d.Type), d.Count, d.DataOffset)
	_, err := w.writeChunk(ChunkIndexData, body)
	return err
}

// WriteVertexData writes a VRTX chunk that embeds payload.
func (w *Writer) WriteVertexData(totalVertices uint32, payload []byte) error {
	if uint64(len(payload)) > math.MaxUint32 {
		return errors.New("sb6m: vertex payload too large")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	pos, err := w.pos()
	if err != nil {
		return err
	}
	off, err := embeddedOffset(pos, vertexDataSize, len(payload))
	if err != nil {
		return err
	}
	body := make([]byte, vertexDataSize-ChunkHeaderSize, vertexDataSize-ChunkHeaderSize+len(payload))
	putUint32s(body, uint32(len(payload)), off, totalVertices)
	_, err = w.writeChunk(ChunkVertexData, append(body, payload...))
	return err
}

// WriteVertexDecl writes a VRTX chunk with caller-provided fields and no
// payload.
func (w *Writer) WriteVertexDecl(d VertexData) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	body := make([]byte, vertexDataSize-ChunkHeaderSize)
	putUint32s(body, d.DataSize, d.DataOffset, d.TotalVertices)
	_, err := w.writeChunk(ChunkVertexData, body)
	return err
}

// WriteAttribs writes an ATRB chunk. Names must be shorter than 64 bytes.
func (w *Writer) WriteAttribs(attribs []AttribDecl) error {
	body := make([]byte, countFieldSize+len(attribs)*AttribDeclSize)
	putUint32s(body, uint32(len(attribs)))
	for i, a := range attribs {
		if !encodeAttribDecl(body[countFieldSize+i*AttribDeclSize:], a) {
			return fmt.Errorf("sb6m: attribute %d name %q too long", i, a.Name)
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.writeChunk(ChunkVertexAttribs, body)
	return err
}

// WriteSubObjects writes an OLST chunk. Any number of entries may be written;
// readers keep at most the ones they can hold.
func (w *Writer) WriteSubObjects(subs []SubObjectDecl) error {
	body := make([]byte, countFieldSize+len(subs)*SubObjectSize)
	putUint32s(body, uint32(len(subs)))
	for i, s := range subs {
		encodeSubObject(body[countFieldSize+i*SubObjectSize:], s)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.writeChunk(ChunkSubObjectList, body)
	return err
}

// WriteComment writes a NUL-terminated CMNT chunk.
func (w *Writer) WriteComment(text string) error {
	body := append([]byte(text), 0)
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.writeChunk(ChunkComment, body)
	return err
}

// WriteData writes a DATA chunk whose payload follows the fixed fields.
func (w *Writer) WriteData(enc Encoding, payload []byte) error {
	if uint64(len(payload)) > math.MaxUint32 {
		return errors.New("sb6m: data payload too large")
	}
	body := make([]byte, dataChunkSize-ChunkHeaderSize, dataChunkSize-ChunkHeaderSize+len(payload))
	putUint32s(body, uint32(enc), dataChunkSize, uint32(len(payload)))
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.writeChunk(ChunkData, append(body, payload...))
	return err
}

// AddFlags ORs flags into the header flags word.
func (w *Writer) AddFlags(flags uint32) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errors.New("sb6m: writer already finalised")
	}
	w.flags |= flags
	return nil
}

// Chunks returns the directory of chunks written so far.
func (w *Writer) Chunks() []ChunkInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]ChunkInfo(nil), w.chunks...)
}

// Finalise patches the header and syncs the file. The writer must not be
// used afterwards.
func (w *Writer) Finalise() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errors.New("sb6m: writer already finalised")
	}
	w.closed = true

	end, err := w.pos()
	if err != nil {
		return err
	}
	if err := w.f.Truncate(end); err != nil {
		return err
	}

	var hdr [HeaderSize]byte
	encodeHeader(hdr[:], Header{
		Magic:     Magic,
		Size:      HeaderSize,
		NumChunks: uint32(len(w.chunks)),
		Flags:     w.flags,
	})
	if _, err := w.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := writeFull(w.f, hdr[:]); err != nil {
		return err
	}
	if _, err := w.f.Seek(end, io.SeekStart); err != nil {
		return err
	}
	return w.f.Sync()
}

func (w *Writer) writeChunk(tag FourCC, body []byte) (ChunkInfo, error) {
	if w.closed {
		return ChunkInfo{}, errors.New("sb6m: writer already finalised")
	}
	total := uint64(ChunkHeaderSize + len(body))
	pad := (chunkAlign - total%chunkAlign) % chunkAlign
	total += pad
	if total > math.MaxUint32 {
		return ChunkInfo{}, fmt.Errorf("sb6m: chunk %s too large", tag)
	}

	pos, err := w.pos()
	if err != nil {
		return ChunkInfo{}, err
	}
	var hdr [ChunkHeaderSize]byte
	encodeChunkHeader(hdr[:], ChunkHeader{Type: tag, Size: uint32(total)})
	if err := writeFull(w.f, hdr[:]); err != nil {
		return ChunkInfo{}, err
	}
	if err := writeFull(w.f, body); err != nil {
		return ChunkInfo{}, err
	}
	if err := writeFull(w.f, make([]byte, pad)); err != nil {
		return ChunkInfo{}, err
	}

	info := ChunkInfo{Type: tag, Offset: uint64(pos), Size: uint32(total), Known: knownChunk(tag)}
	w.chunks = append(w.chunks, info)
	return info, nil
}

// embeddedOffset returns the absolute file offset of a payload that follows
// a chunk header and body of headerSize bytes starting at pos. The whole
// payload must be addressable with 32-bit offsets.
func embeddedOffset(pos int64, headerSize, payloadLen int) (uint32, error) {
	if pos < 0 {
		return 0, fmt.Errorf("sb6m: negative write position %d", pos)
	}
	end := uint64(pos) + uint64(headerSize) + uint64(payloadLen)
	if end > math.MaxUint32 {
		return 0, fmt.Errorf("sb6m: payload ending at byte %d exceeds 32-bit file offsets", end)
	}
	return uint32(uint64(pos) + uint64(headerSize)), nil
}

func (w *Writer) pos() (int64, error) {
	return w.f.Seek(0, io.SeekCurrent)
}

func knownChunk(tag FourCC) bool {
	switch tag {
	case ChunkIndexData, ChunkVertexData, ChunkVertexAttribs, ChunkSubObjectList, ChunkComment, ChunkData:
		return true
	}
	return false
}

func writeFull(f *os.File, p []byte) error {
	for len(p) > 0 {
		n, err := f.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}
