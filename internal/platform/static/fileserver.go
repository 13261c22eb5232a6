// Package static serves the client assets from a fixed document root.
// Any request that is not a WebSocket upgrade lands here. Content types
// come from a small fixed extension table, matching what the client
// actually ships; everything else is served as plain text.
package static

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

var contentTypes = map[string]string{
	".html": "text/html",
	".js":   "text/javascript",
	".css":  "text/css",
	".json": "application/json",
	".png":  "image/png",
	".ico":  "image/x-icon",
}

// FileServer is an http.Handler rooted at a document directory.
type FileServer struct {
	root   string
	logger zerolog.Logger
}

// NewFileServer creates a handler serving files under root. "/" maps to
// index.html.
func NewFileServer(root string, logger zerolog.Logger) *FileServer {
	return &FileServer{
		root:   root,
		logger: logger.With().Str("component", "FileServer").Logger(),
	}
}

func (s *FileServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Path
	if name == "/" {
		name = "/index.html"
	}

	// Clean the path and refuse anything that would escape the root.
	name = filepath.Clean(name)
	if strings.Contains(name, "..") {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(s.root, name)
	content, err := os.ReadFile(path)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("Not Found"))
		return
	}

	contentType, ok := contentTypes[filepath.Ext(path)]
	if !ok {
		contentType = "text/plain"
	}
	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(content); err != nil {
		s.logger.Debug().Err(err).Str("path", name).Msg("Static write failed.")
	}
}
