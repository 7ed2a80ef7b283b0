package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/minihttp/minihttp"
	"github.com/minihttp/minihttp/filesystem"
	minihttphttp "github.com/minihttp/minihttp/http"
)

// readSeekNopCloser wraps an io.ReadSeeker to add a no-op Close method
type readSeekNopCloser struct {
	io.ReadSeeker
}

func (r readSeekNopCloser) Close() error { return nil }

// MockFileSource is a mock implementation of http.FileSource
type MockFileSource struct {
	mock.Mock
}

func (m *MockFileSource) Stat(ctx context.Context, path string) (minihttp.DirectoryEntry, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(minihttp.DirectoryEntry), args.Error(1)
}

func (m *MockFileSource) ListDirectory(ctx context.Context, path string) ([]minihttp.DirectoryEntry, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]minihttp.DirectoryEntry), args.Error(1)
}

func (m *MockFileSource) Open(ctx context.Context, path string) (io.ReadSeekCloser, minihttp.DirectoryEntry, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Get(1).(minihttp.DirectoryEntry), args.Error(2)
	}
	return args.Get(0).(io.ReadSeekCloser), args.Get(1).(minihttp.DirectoryEntry), args.Error(2)
}

// newDiskSource creates a file tree under a temp dir and returns a store over it.
func newDiskSource(t *testing.T, files map[string]string) *filesystem.Store {
	t.Helper()

	dir := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	root, err := os.OpenRoot(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	return filesystem.NewFileStorage(root, false)
}

func serve(h http.Handler, method, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_ServeFile(t *testing.T) {
	files := newDiskSource(t, map[string]string{
		"index.html":      "<h1>hi</h1>",
		"docs/readme.txt": "read me",
		"data.unknownext": "\x00\x01",
	})
	router := minihttphttp.NewHandler(&minihttphttp.HandlerConfig{DirectoryBrowser: true}, files).Router()

	tests := []struct {
		name        string
		target      string
		body        string
		contentType string
	}{
		{name: "html", target: "/index.html", body: "<h1>hi</h1>", contentType: "text/html; charset=utf-8"},
		{name: "nested text", target: "/docs/readme.txt", body: "read me", contentType: "text/plain; charset=utf-8"},
		{name: "unknown type", target: "/data.unknownext", body: "\x00\x01", contentType: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, http.MethodGet, tt.target)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.NotEmpty(t, rec.Header().Get("Last-Modified"))
		})
	}
}

func TestHandler_HeadFile(t *testing.T) {
	files := newDiskSource(t, map[string]string{"a.txt": "hello"})
	router := minihttphttp.NewHandler(&minihttphttp.HandlerConfig{}, files).Router()

	rec := serve(router, http.MethodHead, "/a.txt")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("Content-Length"))
}

func TestHandler_RangeRequest(t *testing.T) {
	files := newDiskSource(t, map[string]string{"a.txt": "0123456789"})
	router := minihttphttp.NewHandler(&minihttphttp.HandlerConfig{}, files).Router()

	req := httptest.NewRequest(http.MethodGet, "/a.txt", nil)
	req.Header.Set("Range", "bytes=2-4")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "234", rec.Body.String())
}

func TestHandler_NotFound(t *testing.T) {
	files := newDiskSource(t, map[string]string{
		"a.txt":     "a",
		".env":      "SECRET=1",
		"sub/b.txt": "b",
	})

	tests := []struct {
		name    string
		browser bool
		target  string
	}{
		{name: "missing file", browser: true, target: "/missing.txt"},
		{name: "dotfile hidden", browser: true, target: "/.env"},
		{name: "file with trailing slash", browser: true, target: "/a.txt/"},
		{name: "directory with browser disabled", browser: false, target: "/sub/"},
		{name: "root with browser disabled", browser: false, target: "/"},
		{name: "NUL in path", browser: true, target: "/a%00.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := minihttphttp.NewHandler(&minihttphttp.HandlerConfig{DirectoryBrowser: tt.browser}, files).Router()

			rec := serve(router, http.MethodGet, tt.target)

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, "404 Not Found", rec.Body.String())
			assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		})
	}
}

func TestHandler_UnmatchedMethod(t *testing.T) {
	files := newDiskSource(t, map[string]string{"a.txt": "a"})
	router := minihttphttp.NewHandler(&minihttphttp.HandlerConfig{}, files).Router()

	rec := serve(router, http.MethodDelete, "/a.txt")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandler_DirectoryRedirect(t *testing.T) {
	files := newDiskSource(t, map[string]string{"my docs/a.txt": "a"})
	router := minihttphttp.NewHandler(&minihttphttp.HandlerConfig{DirectoryBrowser: true}, files).Router()

	rec := serve(router, http.MethodGet, "/my%20docs?page=2")

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/my%20docs/?page=2", rec.Header().Get("Location"))
}

func TestHandler_StorageError(t *testing.T) {
	files := new(MockFileSource)
	files.On("Stat", mock.Anything, "broken.txt").
		Return(minihttp.DirectoryEntry{}, errors.New("disk on fire"))

	router := minihttphttp.NewHandler(&minihttphttp.HandlerConfig{}, files).Router()

	rec := serve(router, http.MethodGet, "/broken.txt")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
	files.AssertExpectations(t)
}

func TestHandler_OpenUsesStatResult(t *testing.T) {
	modified := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	entry := minihttp.DirectoryEntry{Name: "report.pdf", Size: 3, LastModified: modified}

	files := new(MockFileSource)
	files.On("Stat", mock.Anything, "reports/report.pdf").Return(entry, nil)
	files.On("Open", mock.Anything, "reports/report.pdf").
		Return(readSeekNopCloser{strings.NewReader("pdf")}, entry, nil)

	router := minihttphttp.NewHandler(&minihttphttp.HandlerConfig{}, files).Router()

	rec := serve(router, http.MethodGet, "/reports/report.pdf")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, modified.Format(http.TimeFormat), rec.Header().Get("Last-Modified"))
	assert.Equal(t, "pdf", rec.Body.String())
	files.AssertExpectations(t)
}

func TestHandler_MetricsEndpoint(t *testing.T) {
	files := new(MockFileSource)
	router := minihttphttp.NewHandler(&minihttphttp.HandlerConfig{MetricsPath: "/metrics"}, files).Router()

	rec := serve(router, http.MethodGet, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "minihttp_path_blocked_total")
	files.AssertNotCalled(t, "Stat", mock.Anything, mock.Anything)
}

func TestHandler_CORS(t *testing.T) {
	files := newDiskSource(t, map[string]string{"a.txt": "a"})
	router := minihttphttp.NewHandler(&minihttphttp.HandlerConfig{
		CORS: minihttphttp.CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"https://example.com"},
			AllowedMethods: []string{"GET", "HEAD"},
		},
	}, files).Router()

	req := httptest.NewRequest(http.MethodGet, "/a.txt", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPipeline_FilterSeesCanonicalPath(t *testing.T) {
	filter, err := minihttp.NewPathFilter([]string{`^/private/`})
	require.NoError(t, err)

	files := newDiskSource(t, map[string]string{
		"private/s.txt": "PRIVATE",
		"public/a.txt":  "a",
	})
	router := minihttphttp.NewHandler(&minihttphttp.HandlerConfig{
		DirectoryBrowser: true,
		PathFilter:       filter,
	}, files).Router()

	for _, target := range []string{"/private/s.txt", "/x/../private/s.txt", "//private/s.txt", "/public/../private/", "/./private/s.txt"} {
		t.Run(target, func(t *testing.T) {
			rec := serve(router, http.MethodGet, target)
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.NotContains(t, rec.Body.String(), "PRIVATE")
		})
	}

	t.Run("clean allowed path is redirected then served", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/public//a.txt")
		assert.Equal(t, http.StatusMovedPermanently, rec.Code)
		assert.Equal(t, "/public/a.txt", rec.Header().Get("Location"))

		rec = serve(router, http.MethodGet, rec.Header().Get("Location"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "a", rec.Body.String())
	})
}
