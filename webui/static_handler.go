package webui

import (
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"slices"
	"strconv"
	"strings"

	"report_summarizer/webui/static"
)

// StaticAssetHandler serves the embedded stylesheet and script. Templates
// live in the same filesystem and are never served.
type StaticAssetHandler struct {
	fs          fs.FS
	prefix      string
	dirs        []string
	cacheMaxAge int
}

// StaticAssetConfig configures the StaticAssetHandler.
type StaticAssetConfig struct {
	// Prefix is the URL prefix for static assets (default: "/static")
	Prefix string

	// Dirs are the top-level directories that may be served.
	Dirs []string

	// CacheMaxAge is the max-age in seconds; negative disables caching.
	CacheMaxAge int
}

// DefaultStaticAssetConfig returns a default configuration.
func DefaultStaticAssetConfig() StaticAssetConfig {
	return StaticAssetConfig{
		Prefix:      "/static",
		Dirs:        []string{"css", "js"},
		CacheMaxAge: 3600,
	}
}

// NewStaticAssetHandler creates a handler over the embedded filesystem.
func NewStaticAssetHandler(config StaticAssetConfig) *StaticAssetHandler {
	return NewStaticAssetHandlerWithFS(static.FS(), config)
}

// NewStaticAssetHandlerWithFS creates a handler over fsys.
func NewStaticAssetHandlerWithFS(fsys fs.FS, config StaticAssetConfig) *StaticAssetHandler {
	if config.Prefix == "" {
		config.Prefix = "/static"
	}
	if len(config.Dirs) == 0 {
		config.Dirs = DefaultStaticAssetConfig().Dirs
	}
	if config.CacheMaxAge == 0 {
		config.CacheMaxAge = 3600
	}
	return &StaticAssetHandler{
		fs:          fsys,
		prefix:      strings.TrimSuffix(config.Prefix, "/"),
		dirs:        config.Dirs,
		cacheMaxAge: config.CacheMaxAge,
	}
}

func (h *StaticAssetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+strings.TrimPrefix(r.URL.Path, h.prefix)), "/")
	if !h.allowed(name) {
		http.NotFound(w, r)
		return
	}

	file, err := h.fs.Open(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil || stat.IsDir() {
		http.NotFound(w, r)
		return
	}

	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if h.cacheMaxAge > 0 {
		w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(h.cacheMaxAge))
	} else {
		w.Header().Set("Cache-Control", "no-cache")
	}

	if rs, ok := file.(io.ReadSeeker); ok {
		http.ServeContent(w, r, stat.Name(), stat.ModTime(), rs)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(data)
}

func (h *StaticAssetHandler) allowed(name string) bool {
	dir, _, found := strings.Cut(name, "/")
	if !found {
		return false
	}
	return slices.Contains(h.dirs, dir)
}
