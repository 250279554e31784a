package api

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/sb6m/internal/device/recorder"
	"github.com/samcharles93/sb6m/internal/logger"
	"github.com/samcharles93/sb6m/internal/meshinfo"
	"github.com/samcharles93/sb6m/internal/object"
	"github.com/samcharles93/sb6m/pkg/sb6m"
)

// meshRecord owns one loaded object and the recorder it draws through. mu
// serializes every use of obj and dev.
type meshRecord struct {
	id        string
	createdAt time.Time
	summary   meshinfo.Summary

	mu  sync.Mutex
	dev *recorder.Device
	obj *object.Object
}

func (r *meshRecord) mesh() Mesh {
	return Mesh{
		ID:        r.id,
		Object:    "mesh",
		CreatedAt: r.createdAt.Unix(),
		Summary:   r.summary,
	}
}

type MeshStore struct {
	mu         sync.Mutex
	meshes     map[string]*meshRecord
	maxAttribs int
	log        logger.Logger
}

// NewMeshStore returns an empty store. Each mesh gets its own recorder
// limited to maxAttribs slots; values below one use the recorder default.
func NewMeshStore(maxAttribs int, log logger.Logger) *MeshStore {
	if log == nil {
		log = logger.Discard()
	}
	return &MeshStore{
		meshes:     make(map[string]*meshRecord),
		maxAttribs: maxAttribs,
		log:        log,
	}
}

// Create parses data and loads it onto a new recorder device.
func (s *MeshStore) Create(name string, data []byte, now time.Time) (Mesh, error) {
	f, err := sb6m.OpenReaderAt(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Mesh{}, err
	}
	defer func() { _ = f.Close() }()

	dev := recorder.New(s.maxAttribs)
	id := newMeshID()
	obj := object.New(dev, s.log.With("mesh_id", id))
	if err := obj.LoadContainer(f.Container); err != nil {
		return Mesh{}, err
	}
	dev.Reset()

	summary := meshinfo.Describe(f.Container, obj, dev.Name())
	summary.Name = name
	rec := &meshRecord{
		id:        id,
		createdAt: now,
		summary:   summary,
		dev:       dev,
		obj:       obj,
	}

	s.mu.Lock()
	s.meshes[id] = rec
	s.mu.Unlock()
	return rec.mesh(), nil
}

func (s *MeshStore) get(id string) (*meshRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.meshes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMeshNotFound, id)
	}
	return rec, nil
}

func (s *MeshStore) Get(id string) (Mesh, error) {
	rec, err := s.get(id)
	if err != nil {
		return Mesh{}, err
	}
	return rec.mesh(), nil
}

// List returns every stored mesh, oldest first.
func (s *MeshStore) List() []Mesh {
	s.mu.Lock()
	recs := make([]*meshRecord, 0, len(s.meshes))
	for _, rec := range s.meshes {
		recs = append(recs, rec)
	}
	s.mu.Unlock()

	slices.SortFunc(recs, func(a, b *meshRecord) int {
		if c := a.createdAt.Compare(b.createdAt); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	out := make([]Mesh, len(recs))
	for i, rec := range recs {
		out[i] = rec.mesh()
	}
	return out
}

// Delete removes a mesh and frees its device resources.
func (s *MeshStore) Delete(id string) error {
	s.mu.Lock()
	rec, ok := s.meshes[id]
	if ok {
		delete(s.meshes, id)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrMeshNotFound, id)
	}

	rec.mu.Lock()
	rec.obj.Free()
	rec.mu.Unlock()
	return nil
}

// SubObjects returns the live sub-object table of a mesh.
func (s *MeshStore) SubObjects(id string) ([]meshinfo.SubObject, int, error) {
	rec, err := s.get(id)
	if err != nil {
		return nil, 0, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return meshinfo.SubObjects(rec.obj), rec.obj.DeclaredSubObjects(), nil
}

// Draw renders one sub-object and returns the device calls it produced.
func (s *MeshStore) Draw(id string, subObject int, instanceCount, baseInstance uint32) ([]recorder.Call, error) {
	rec, err := s.get(id)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.dev.Reset()
	if err := rec.obj.RenderSubObject(subObject, instanceCount, baseInstance); err != nil {
		return nil, err
	}
	return rec.dev.Calls(), nil
}

// Close frees every stored mesh.
func (s *MeshStore) Close() {
	s.mu.Lock()
	recs := s.meshes
	s.meshes = make(map[string]*meshRecord)
	s.mu.Unlock()

	for _, rec := range recs {
		rec.mu.Lock()
		rec.obj.Free()
		rec.mu.Unlock()
	}
}

func newMeshID() string {
	return "mesh_" + uuid.NewString()
}
