// Package ui embeds the browser viewer served under /ui/. The viewer
// connects to /stream, decodes packed snapshots and draws them on a canvas.
package ui

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static/*
var content embed.FS

// GetHandler serves the embedded viewer with the "static" prefix removed.
func GetHandler() http.Handler {
	fsys, err := fs.Sub(content, "static")
	if err != nil {
		panic(err) // embed guarantees the directory exists
	}
	return http.FileServer(http.FS(fsys))
}
