package api

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	indexFile     = "index.html"
	demoToken     = "__IS_DEMO__"
	fallbackMIME  = "application/octet-stream"
	notFoundReply = "404"
)

// StaticHandler serves the embedded single-page app. Unknown paths without a
// file extension get index.html so client-side routing works.
type StaticHandler struct {
	assets fs.FS
	index  []byte
}

// NewStaticHandler renders index.html once, replacing the demo placeholder
// with the demo flag. A missing index.html is not an error; such requests 404.
func NewStaticHandler(assets fs.FS, demo bool) (*StaticHandler, error) {
	h := &StaticHandler{assets: assets}
	raw, err := fs.ReadFile(assets, indexFile)
	switch {
	case err == nil:
		h.index = bytes.ReplaceAll(raw, []byte(demoToken), []byte(strconv.FormatBool(demo)))
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", indexFile, err)
	}
	return h, nil
}

func (h *StaticHandler) Serve(c echo.Context) error {
	name := strings.TrimPrefix(c.Request().URL.Path, "/")
	if name == "" || name == indexFile {
		return h.serveIndex(c)
	}

	if fs.ValidPath(name) {
		if data, err := fs.ReadFile(h.assets, name); err == nil {
			return c.Blob(http.StatusOK, contentType(name), data)
		}
	}

	if strings.Contains(name, ".") {
		return c.String(http.StatusNotFound, notFoundReply)
	}
	return h.serveIndex(c)
}

func (h *StaticHandler) serveIndex(c echo.Context) error {
	if h.index == nil {
		return c.String(http.StatusNotFound, notFoundReply)
	}
	return c.HTMLBlob(http.StatusOK, h.index)
}

func contentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return fallbackMIME
}
