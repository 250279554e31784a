package api

import (
	"github.com/samcharles93/sb6m/internal/device/recorder"
	"github.com/samcharles93/sb6m/internal/meshinfo"
)

type ResponseError struct {
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

// Mesh is a stored mesh as returned by the API.
type Mesh struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	CreatedAt int64  `json:"created_at"`
	meshinfo.Summary
}

type MeshList struct {
	Object string `json:"object"`
	Data   []Mesh `json:"data"`
}

type SubObjectList struct {
	Object string               `json:"object"`
	MeshID string               `json:"mesh_id"`
	Data   []meshinfo.SubObject `json:"data"`
	// Declared is the entry count in the file, which may exceed len(Data).
	Declared int `json:"declared"`
}

type DeleteMeshResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type DrawRequest struct {
	SubObject *int `json:"sub_object,omitempty"`
	// InstanceCount defaults to 1.
	InstanceCount *uint32 `json:"instance_count,omitempty"`
	BaseInstance  uint32  `json:"base_instance,omitempty"`
}

type DrawResponse struct {
	Object    string          `json:"object"`
	MeshID    string          `json:"mesh_id"`
	SubObject int             `json:"sub_object"`
	Calls     []recorder.Call `json:"calls"`
}
