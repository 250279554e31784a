// Package webui embeds the mesh browser page served next to the REST API.
package webui

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v5"
)

//go:embed static/*
var staticFS embed.FS

// StaticFS returns the embedded static files rooted at static/.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// This should never happen because we control the embed path
		panic(err)
	}
	return sub
}

// Register serves the browser page at / on e.
func Register(e *echo.Echo) {
	e.GET("/", handleIndex)
}

func handleIndex(c *echo.Context) error {
	page, err := fs.ReadFile(StaticFS(), "index.html")
	if err != nil {
		return err
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/html; charset=utf-8")
	res.WriteHeader(http.StatusOK)
	_, err = res.Write(page)
	return err
}
