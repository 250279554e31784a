package sb6m

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// File is an SB6M container opened from disk. The parsed Container aliases
// Raw, so it must not be used after Close.
type File struct {
	*Container
	Raw     []byte
	mmapped bool
}

// Open maps an SB6M file read-only and parses it. If mmap is unavailable it
// falls back to reading the file into memory. The returned file must be
// closed to release the mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%w: file too large to address", ErrMalformed)
	}
	size := int(size64)
	if size < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrMalformed, size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		sf, parseErr := parseFile(data, true)
		if parseErr != nil {
			_ = unix.Munmap(data)
			return nil, parseErr
		}
		return sf, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return parseFile(data, false)
}

// OpenReaderAt reads and parses an SB6M container from a random-access
// reader without mmap.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%w: invalid size %d", ErrMalformed, size)
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return parseFile(data, false)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

func parseFile(data []byte, mmapped bool) (*File, error) {
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return &File{Container: c, Raw: data, mmapped: mmapped}, nil
}

// Close releases the file bytes and any mmap backing. It is safe to call
// more than once.
func (f *File) Close() error {
	if f == nil || f.Raw == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.Raw)
	}
	f.Raw = nil
	f.Container = nil
	f.mmapped = false
	return err
}
