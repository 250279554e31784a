package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/sb6m/internal/logger"
	"github.com/samcharles93/sb6m/internal/object"
	"github.com/samcharles93/sb6m/pkg/sb6m"
)

// DefaultMaxUploadBytes bounds the body of a mesh upload.
const DefaultMaxUploadBytes = 64 << 20

type Options struct {
	MaxUploadBytes int64
	Log            logger.Logger
}

type Server struct {
	store     *MeshStore
	log       logger.Logger
	maxUpload int64
	clock     func() time.Time
}

func NewServer(store *MeshStore, opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}
	if store == nil {
		store = NewMeshStore(0, log)
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &Server{
		store:     store,
		log:       log.With("component", "api"),
		maxUpload: maxUpload,
		clock:     time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/meshes", s.handleCreateMesh)
	e.GET("/v1/meshes", s.handleListMeshes)
	e.GET("/v1/meshes/:id", s.handleGetMesh)
	e.DELETE("/v1/meshes/:id", s.handleDeleteMesh)
	e.GET("/v1/meshes/:id/sub_objects", s.handleSubObjects)
	e.POST("/v1/meshes/:id/draw", s.handleDraw)
}

func (s *Server) handleCreateMesh(c *echo.Context) error {
	data, tooLarge, err := readLimited(c.Request().Body, s.maxUpload)
	if err != nil {
		return writeBadRequest(c, "read body: "+err.Error())
	}
	if tooLarge {
		return writeError(c, http.StatusRequestEntityTooLarge, "invalid_request_error", "mesh exceeds the upload limit", "", "request_too_large")
	}
	if len(data) == 0 {
		return writeBadRequest(c, "request body must contain an SB6M container")
	}

	name := strings.TrimSpace(c.QueryParam("name"))
	mesh, err := s.store.Create(name, data, s.clock())
	if err != nil {
		return writeMeshError(c, err)
	}
	s.log.Info("mesh stored", "id", mesh.ID, "name", name, "bytes", len(data), "sub_objects", len(mesh.SubObjects))
	return c.JSON(http.StatusCreated, mesh)
}

func (s *Server) handleListMeshes(c *echo.Context) error {
	return c.JSON(http.StatusOK, MeshList{Object: "list", Data: s.store.List()})
}

func (s *Server) handleGetMesh(c *echo.Context) error {
	mesh, err := s.store.Get(c.Param("id"))
	if err != nil {
		return writeMeshError(c, err)
	}
	return c.JSON(http.StatusOK, mesh)
}

func (s *Server) handleDeleteMesh(c *echo.Context) error {
	id := c.Param("id")
	if err := s.store.Delete(id); err != nil {
		return writeMeshError(c, err)
	}
	return c.JSON(http.StatusOK, DeleteMeshResp{ID: id, Object: "mesh", Deleted: true})
}

func (s *Server) handleSubObjects(c *echo.Context) error {
	id := c.Param("id")
	subs, declared, err := s.store.SubObjects(id)
	if err != nil {
		return writeMeshError(c, err)
	}
	return c.JSON(http.StatusOK, SubObjectList{Object: "list", MeshID: id, Data: subs, Declared: declared})
}

func (s *Server) handleDraw(c *echo.Context) error {
	req, err := decodeJSON[DrawRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	index := 0
	if req.SubObject != nil {
		index = *req.SubObject
	}
	instances := uint32(1)
	if req.InstanceCount != nil {
		instances = *req.InstanceCount
	}

	id := c.Param("id")
	calls, err := s.store.Draw(id, index, instances, req.BaseInstance)
	if err != nil {
		return writeMeshError(c, err)
	}
	return c.JSON(http.StatusOK, DrawResponse{Object: "draw", MeshID: id, SubObject: index, Calls: calls})
}

// writeMeshError maps store and loader errors onto the error envelope.
func writeMeshError(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrMeshNotFound), errors.Is(err, object.ErrNotLoaded):
		return writeNotFound(c, "mesh not found")
	case errors.Is(err, object.ErrSubObjectRange):
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error(), "sub_object", "sub_object_out_of_range")
	case errors.Is(err, sb6m.ErrInvalidMagic):
		return writeError(c, http.StatusBadRequest, "invalid_mesh_error", err.Error(), "", "invalid_magic")
	case errors.Is(err, sb6m.ErrUnsupportedEncoding):
		return writeError(c, http.StatusBadRequest, "invalid_mesh_error", err.Error(), "", "unsupported_encoding")
	case errors.Is(err, object.ErrTooManyAttribs):
		return writeError(c, http.StatusBadRequest, "invalid_mesh_error", err.Error(), "", "too_many_attribs")
	case errors.Is(err, sb6m.ErrMalformed):
		return writeError(c, http.StatusBadRequest, "invalid_mesh_error", err.Error(), "", "malformed")
	case errors.Is(err, ErrInvalidRequest):
		return writeBadRequest(c, err.Error())
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
	}
}
