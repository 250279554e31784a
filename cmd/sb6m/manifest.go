package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samcharles93/sb6m/pkg/sb6m"
)

// Manifest describes a mesh to pack. Payload files are resolved relative to
// the manifest.
type Manifest struct {
	Comment string `yaml:"comment"`
	// Storage is "split" (VRTX and INDX carry their payloads) or "blob"
	// (one DATA chunk holds vertices followed by indices).
	Storage string `yaml:"storage"`
	Flags   uint32 `yaml:"flags"`

	VertexCount  uint32    `yaml:"vertex_count"`
	Vertices     string    `yaml:"vertices"`
	VertexFloats []float32 `yaml:"vertex_floats"`

	Indices    *ManifestIndices     `yaml:"indices"`
	Attribs    []ManifestAttrib     `yaml:"attribs"`
	SubObjects []sb6m.SubObjectDecl `yaml:"sub_objects"`
}

type ManifestIndices struct {
	Type   string   `yaml:"type"`
	File   string   `yaml:"file"`
	Values []uint32 `yaml:"values"`
}

type ManifestAttrib struct {
	Name       string `yaml:"name"`
	Components uint32 `yaml:"components"`
	Type       string `yaml:"type"`
	Stride     uint32 `yaml:"stride"`
	Offset     uint32 `yaml:"offset"`
	Normalized bool   `yaml:"normalized"`
	Integer    bool   `yaml:"integer"`
}

// packedMesh is a manifest with its payloads loaded.
type packedMesh struct {
	manifest  Manifest
	attribs   []sb6m.AttribDecl
	vertices  []byte
	indexType sb6m.IndexType
	indices   []byte
	blob      bool
}

func loadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}

func (m Manifest) resolve(baseDir string) (*packedMesh, error) {
	p := &packedMesh{manifest: m}

	switch strings.ToLower(strings.TrimSpace(m.Storage)) {
	case "", "split":
	case "blob":
		p.blob = true
	default:
		return nil, fmt.Errorf("unknown storage %q (expected split or blob)", m.Storage)
	}

	if len(m.Attribs) == 0 {
		return nil, errors.New("manifest declares no attribs")
	}
	p.attribs = make([]sb6m.AttribDecl, len(m.Attribs))
	for i, a := range m.Attribs {
		t, err := sb6m.ParseComponentType(a.Type)
		if err != nil {
			return nil, fmt.Errorf("attrib %d: %w", i, err)
		}
		var flags uint32
		if a.Normalized {
			flags |= sb6m.AttribFlagNormalized
		}
		if a.Integer {
			flags |= sb6m.AttribFlagInteger
		}
		p.attribs[i] = sb6m.AttribDecl{
			Name:       a.Name,
			Components: a.Components,
			Type:       t,
			Stride:     a.Stride,
			Flags:      flags,
			DataOffset: a.Offset,
		}
	}

	switch {
	case m.Vertices != "" && len(m.VertexFloats) > 0:
		return nil, errors.New("set either vertices or vertex_floats, not both")
	case m.Vertices != "":
		data, err := os.ReadFile(resolveRelative(baseDir, m.Vertices))
		if err != nil {
			return nil, fmt.Errorf("read vertices: %w", err)
		}
		p.vertices = data
	case len(m.VertexFloats) > 0:
		p.vertices = make([]byte, 4*len(m.VertexFloats))
		for i, v := range m.VertexFloats {
			binary.LittleEndian.PutUint32(p.vertices[i*4:], math.Float32bits(v))
		}
	default:
		return nil, errors.New("manifest has no vertex data")
	}

	if m.Indices != nil {
		if err := p.resolveIndices(baseDir, *m.Indices); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *packedMesh) resolveIndices(baseDir string, idx ManifestIndices) error {
	t, err := sb6m.ParseComponentType(idx.Type)
	if err != nil {
		return fmt.Errorf("indices: %w", err)
	}
	p.indexType = sb6m.IndexType(t)
	size := p.indexType.Size()
	if size == 0 {
		return fmt.Errorf("indices: %s is not an index type", idx.Type)
	}

	switch {
	case idx.File != "" && len(idx.Values) > 0:
		return errors.New("indices: set either file or values, not both")
	case idx.File != "":
		data, err := os.ReadFile(resolveRelative(baseDir, idx.File))
		if err != nil {
			return fmt.Errorf("read indices: %w", err)
		}
		if len(data)%size != 0 {
			return fmt.Errorf("indices: %d bytes is not a multiple of %d", len(data), size)
		}
		p.indices = data
	default:
		p.indices = make([]byte, size*len(idx.Values))
		for i, v := range idx.Values {
			if size < 4 && v >= 1<<(8*size) {
				return fmt.Errorf("indices: value %d does not fit %s", v, idx.Type)
			}
			switch size {
			case 1:
				p.indices[i] = byte(v)
			case 2:
				binary.LittleEndian.PutUint16(p.indices[i*2:], uint16(v))
			default:
				binary.LittleEndian.PutUint32(p.indices[i*4:], v)
			}
		}
	}
	return nil
}

func (p *packedMesh) indexCount() uint32 {
	if p.indexType == sb6m.IndexNone {
		return 0
	}
	return uint32(len(p.indices) / p.indexType.Size())
}

// write emits the container in chunk order CMNT, ATRB, VRTX, INDX, OLST,
// DATA.
func (p *packedMesh) write(w *sb6m.Writer) error {
	m := p.manifest
	if m.Comment != "" {
		if err := w.WriteComment(m.Comment); err != nil {
			return err
		}
	}
	if err := w.AddFlags(m.Flags); err != nil {
		return err
	}
	if err := w.WriteAttribs(p.attribs); err != nil {
		return err
	}

	if p.blob {
		if err := w.WriteVertexDecl(sb6m.VertexData{
			DataSize:      uint32(len(p.vertices)),
			TotalVertices: m.VertexCount,
		}); err != nil {
			return err
		}
		if p.indexType != sb6m.IndexNone {
			if err := w.WriteIndexDecl(sb6m.IndexData{
				Type:       p.indexType,
				Count:      p.indexCount(),
				DataOffset: uint32(len(p.vertices)),
			}); err != nil {
				return err
			}
		}
	} else {
		if err := w.WriteVertexData(m.VertexCount, p.vertices); err != nil {
			return err
		}
		if p.indexType != sb6m.IndexNone {
			if err := w.WriteIndexData(p.indexType, p.indexCount(), p.indices); err != nil {
				return err
			}
		}
	}

	if len(m.SubObjects) > 0 {
		if err := w.WriteSubObjects(m.SubObjects); err != nil {
			return err
		}
	}

	if p.blob {
		blob := make([]byte, 0, len(p.vertices)+len(p.indices))
		blob = append(blob, p.vertices...)
		blob = append(blob, p.indices...)
		if err := w.WriteData(sb6m.EncodingRaw, blob); err != nil {
			return err
		}
	}
	return nil
}

func resolveRelative(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
