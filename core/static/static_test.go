package static

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/AxewBoTX/browzer/core/http"
)

func serveFile(t *testing.T, root, name string) (*http.Context, error) {
	t.Helper()
	ctx := http.NewContext(&http.Request{Method: "GET", Path: "/static/" + name})
	ctx.SetParam("filepath", name)
	return ctx, Handler(root, "filepath")(ctx)
}

func TestHandlerServesFile(t *testing.T) {
	root := t.TempDir()
	content := "body { color: red }\n"
	if err := os.WriteFile(filepath.Join(root, "site.css"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, err := serveFile(t, root, "site.css")
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	defer ctx.Response.CloseStream()

	if ctx.Response.StatusCode != 200 {
		t.Errorf("status = %d", ctx.Response.StatusCode)
	}
	if got := ctx.Response.Header("Content-Type"); got != "text/css" {
		t.Errorf("Content-Type = %q", got)
	}
	if ctx.Response.ContentLength != int64(len(content)) {
		t.Errorf("ContentLength = %d, want %d", ctx.Response.ContentLength, len(content))
	}

	body, err := io.ReadAll(ctx.Response.Stream)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if string(body) != content {
		t.Errorf("body = %q", body)
	}
}

func TestHandlerNestedPath(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "css"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "css", "a.css"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, err := serveFile(t, root, "css/a.css")
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	ctx.Response.CloseStream()
}

func TestHandlerNotFound(t *testing.T) {
	_, err := serveFile(t, t.TempDir(), "missing.txt")
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("err = %v, want ErrFileNotFound", err)
	}
}

func TestHandlerDirectoryRejected(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := serveFile(t, root, "sub")
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("err = %v, want ErrFileNotFound", err)
	}
}

func TestHandlerTraversalForbidden(t *testing.T) {
	root := t.TempDir()

	names := []string{
		"../../etc/passwd",
		"..",
		"a/../../secret",
		"../sibling.txt",
	}
	for _, name := range names {
		_, err := serveFile(t, root, name)
		if !errors.Is(err, ErrForbiddenPath) {
			t.Errorf("%q: err = %v, want ErrForbiddenPath", name, err)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		request string
		want    string
		wantErr error
	}{
		{"plain", "index.html", filepath.Join("root", "index.html"), nil},
		{"nested", "css/site.css", filepath.Join("root", "css", "site.css"), nil},
		{"leading slash", "/app.js", filepath.Join("root", "app.js"), nil},
		{"inner dotdot stays local", "a/../b.txt", filepath.Join("root", "b.txt"), nil},
		{"empty", "", "", ErrFileNotFound},
		{"escape", "../x", "", ErrForbiddenPath},
		{"deep escape", "a/../../x", "", ErrForbiddenPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve("root", tt.request)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"index.html", "text/html"},
		{"site.CSS", "text/css"},
		{"app.js", "application/javascript"},
		{"data.json", "application/json"},
		{"logo.png", "image/png"},
		{"notes.txt", "text/plain"},
		{"archive.tar.gz", "application/octet-stream"},
		{"noext", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := ContentType(tt.filename); got != tt.want {
			t.Errorf("ContentType(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
