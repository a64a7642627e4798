package handlers

import (
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// StaticHandler serves the built dashboard SPA, falling back to index.html
// for client-side routes
type StaticHandler struct {
	fileSystem http.FileSystem
}

// NewStaticHandler serves files from dir
func NewStaticHandler(dir string) *StaticHandler {
	return &StaticHandler{fileSystem: http.Dir(dir)}
}

// ServeHTTP serves static files and handles SPA routing
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	urlPath := path.Clean("/" + r.URL.Path)
	if urlPath == "/" {
		urlPath = "/index.html"
	}

	file, err := h.fileSystem.Open(urlPath)
	if err == nil {
		defer file.Close()
		stat, statErr := file.Stat()
		if statErr == nil && !stat.IsDir() {
			if ct := mime.TypeByExtension(filepath.Ext(urlPath)); ct != "" {
				w.Header().Set("Content-Type", ct)
			}
			http.ServeContent(w, r, stat.Name(), stat.ModTime(), file)
			return
		}
	}

	// Unknown API paths never fall back to the SPA
	if strings.HasPrefix(urlPath, "/api/") {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	index, err := h.fileSystem.Open("/index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer index.Close()

	stat, err := index.Stat()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, "index.html", stat.ModTime(), index)
}
