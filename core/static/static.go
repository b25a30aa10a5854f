// Package static serves files from a root directory through the engine's
// handler interface.
package static

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/AxewBoTX/browzer/core/http"
)

var (
	// ErrForbiddenPath means the requested path would resolve outside the
	// configured root directory.
	ErrForbiddenPath = errors.New("path escapes static root")

	// ErrFileNotFound means no regular file exists at the resolved path.
	ErrFileNotFound = errors.New("file not found")

	// ErrFileUnreadable means the file exists but cannot be opened or read.
	ErrFileUnreadable = errors.New("file not readable")
)

// contentTypes maps common file extensions to media types. Unknown extensions
// fall back to application/octet-stream.
var contentTypes = map[string]string{
	".html":  "text/html",
	".htm":   "text/html",
	".css":   "text/css",
	".js":    "application/javascript",
	".json":  "application/json",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".svg":   "image/svg+xml",
	".ico":   "image/x-icon",
	".txt":   "text/plain",
	".pdf":   "application/pdf",
	".xml":   "application/xml",
	".wasm":  "application/wasm",
	".woff2": "font/woff2",
}

// ContentType returns the media type inferred from a filename's extension.
func ContentType(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return http.ContentTypeBinary
}

// Handler returns a handler that resolves the route capture named param
// against root and streams the file as the response body. The open file is
// attached as the response stream; the engine closes it on every exit path.
func Handler(root, param string) http.HandlerFunc {
	return func(c *http.Context) error {
		name := c.Param(param)

		target, err := Resolve(root, name)
		if err != nil {
			return err
		}

		f, err := os.Open(target)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return errors.Wrapf(ErrFileNotFound, "%s", name)
			}
			return errors.Wrapf(ErrFileUnreadable, "open %s: %v", name, err)
		}

		info, err := f.Stat()
		if err != nil {
			f.Close()
			return errors.Wrapf(ErrFileUnreadable, "stat %s: %v", name, err)
		}
		if !info.Mode().IsRegular() {
			f.Close()
			return errors.Wrapf(ErrFileNotFound, "%s is not a regular file", name)
		}

		c.Response.StatusCode = 200
		c.Response.SetHeader(http.HeaderContentType, ContentType(target))
		c.Response.Stream = f
		c.Response.ContentLength = info.Size()
		return nil
	}
}

// Resolve maps a requested name onto the filesystem under root. Any name
// that would escape the root after cleaning, however it is spelled, fails
// with ErrForbiddenPath.
func Resolve(root, name string) (string, error) {
	trimmed := strings.TrimPrefix(name, "/")
	if trimmed == "" {
		return "", errors.Wrap(ErrFileNotFound, "empty path")
	}
	cleaned := path.Clean(trimmed)
	local := filepath.FromSlash(cleaned)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") || !filepath.IsLocal(local) {
		return "", errors.Wrapf(ErrForbiddenPath, "%q", name)
	}
	return filepath.Join(root, local), nil
}
