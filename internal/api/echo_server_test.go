package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/sb6m/internal/device/recorder"
	"github.com/samcharles93/sb6m/pkg/sb6m"
)

func newTestEcho(opts Options) *echo.Echo {
	server := NewServer(NewMeshStore(0, nil), opts)
	e := echo.New()
	server.Register(e)
	return e
}

// triangleMesh is an indexed triangle with two sub-objects.
func triangleMesh(t *testing.T) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tri.sbm")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	w, err := sb6m.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	attribs := []sb6m.AttribDecl{{Name: "position", Components: 3, Type: sb6m.TypeFloat, Stride: 12}}
	if err := w.WriteAttribs(attribs); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteVertexData(3, make([]byte, 36)); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteIndexData(sb6m.IndexUnsignedShort, 3, []byte{0, 0, 1, 0, 2, 0}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteSubObjects([]sb6m.SubObjectDecl{{First: 0, Count: 3}, {First: 4, Count: 1}}); err != nil {
		t.Fatal(err)
	}
	if err := w.Finalise(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func do(t *testing.T, e *echo.Echo, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func createMesh(t *testing.T, e *echo.Echo) Mesh {
	t.Helper()
	rec := do(t, e, http.MethodPost, "/v1/meshes?name=tri", triangleMesh(t))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status: got %d body=%s", rec.Code, rec.Body.String())
	}
	return decodeBody[Mesh](t, rec)
}

func TestMeshLifecycle(t *testing.T) {
	t.Parallel()
	e := newTestEcho(Options{})

	created := createMesh(t, e)
	if !strings.HasPrefix(created.ID, "mesh_") || created.Object != "mesh" {
		t.Fatalf("unexpected mesh: %+v", created)
	}
	if created.Name != "tri" || created.Mode != "indexed" || created.Device != recorder.Name {
		t.Fatalf("summary: got name=%q mode=%q device=%q", created.Name, created.Mode, created.Device)
	}

	getRec := do(t, e, http.MethodGet, "/v1/meshes/"+created.ID, nil)
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status: got %d", getRec.Code)
	}
	if got := decodeBody[Mesh](t, getRec); got.ID != created.ID {
		t.Fatalf("get id: got %q want %q", got.ID, created.ID)
	}

	list := decodeBody[MeshList](t, do(t, e, http.MethodGet, "/v1/meshes", nil))
	if len(list.Data) != 1 || list.Data[0].ID != created.ID {
		t.Fatalf("list: got %+v", list)
	}

	delRec := do(t, e, http.MethodDelete, "/v1/meshes/"+created.ID, nil)
	if delRec.Code != http.StatusOK {
		t.Fatalf("delete status: got %d", delRec.Code)
	}
	if !decodeBody[DeleteMeshResp](t, delRec).Deleted {
		t.Fatal("delete response should report deleted")
	}
	if rec := do(t, e, http.MethodGet, "/v1/meshes/"+created.ID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: got %d want 404", rec.Code)
	}
}

func TestSubObjectsEndpoint(t *testing.T) {
	t.Parallel()
	e := newTestEcho(Options{})
	mesh := createMesh(t, e)

	list := decodeBody[SubObjectList](t, do(t, e, http.MethodGet, "/v1/meshes/"+mesh.ID+"/sub_objects", nil))
	if len(list.Data) != 2 || list.Declared != 2 {
		t.Fatalf("sub-objects: got %+v", list)
	}
	// Indices start after 36 vertex bytes; first is a byte offset.
	if list.Data[1].Start != 40 || list.Data[1].Mode != "indexed" {
		t.Fatalf("sub-object 1: got %+v", list.Data[1])
	}
}

func TestDrawEndpoint(t *testing.T) {
	t.Parallel()
	e := newTestEcho(Options{})
	mesh := createMesh(t, e)

	rec := do(t, e, http.MethodPost, "/v1/meshes/"+mesh.ID+"/draw", []byte(`{"sub_object":1,"instance_count":3,"base_instance":2}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("draw status: got %d body=%s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[DrawResponse](t, rec)
	if len(resp.Calls) != 1 || resp.Calls[0].Elements == nil {
		t.Fatalf("calls: got %+v", resp.Calls)
	}
	el := resp.Calls[0].Elements
	if el.Offset != 40 || el.Count != 1 || el.InstanceCount != 3 || el.BaseInstance != 2 {
		t.Fatalf("draw elements: got %+v", el)
	}

	defaults := decodeBody[DrawResponse](t, do(t, e, http.MethodPost, "/v1/meshes/"+mesh.ID+"/draw", nil))
	if len(defaults.Calls) != 1 || defaults.Calls[0].Elements.InstanceCount != 1 || defaults.SubObject != 0 {
		t.Fatalf("default draw: got %+v", defaults)
	}
}

func TestDrawOutOfRange(t *testing.T) {
	t.Parallel()
	e := newTestEcho(Options{})
	mesh := createMesh(t, e)

	rec := do(t, e, http.MethodPost, "/v1/meshes/"+mesh.ID+"/draw", []byte(`{"sub_object":9}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sub_object_out_of_range") {
		t.Fatalf("expected error code in body, got %s", rec.Body.String())
	}
}

func TestCreateRejectsBadUploads(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		opts   Options
		body   []byte
		status int
		code   string
	}{
		{name: "empty", body: nil, status: http.StatusBadRequest},
		{name: "bad magic", body: make([]byte, 32), status: http.StatusBadRequest, code: "invalid_magic"},
		{name: "too large", opts: Options{MaxUploadBytes: 8}, body: make([]byte, 32), status: http.StatusRequestEntityTooLarge, code: "request_too_large"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := do(t, newTestEcho(tc.opts), http.MethodPost, "/v1/meshes", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status: got %d want %d body=%s", rec.Code, tc.status, rec.Body.String())
			}
			if tc.code != "" && !strings.Contains(rec.Body.String(), tc.code) {
				t.Fatalf("expected %q in body, got %s", tc.code, rec.Body.String())
			}
		})
	}
}

func TestUnknownMesh(t *testing.T) {
	t.Parallel()
	e := newTestEcho(Options{})
	for _, path := range []string{"/v1/meshes/mesh_missing", "/v1/meshes/mesh_missing/sub_objects"} {
		if rec := do(t, e, http.MethodGet, path, nil); rec.Code != http.StatusNotFound {
			t.Fatalf("%s: got %d want 404", path, rec.Code)
		}
	}
}

func TestDrawRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	e := newTestEcho(Options{})
	mesh := createMesh(t, e)
	rec := do(t, e, http.MethodPost, "/v1/meshes/"+mesh.ID+"/draw", []byte(`{"instances":2}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want 400", rec.Code)
	}
}
