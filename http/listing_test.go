package http_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/minihttp/minihttp"
	minihttphttp "github.com/minihttp/minihttp/http"
)

func listingRouter(files minihttphttp.FileSource) http.Handler {
	return minihttphttp.NewHandler(&minihttphttp.HandlerConfig{DirectoryBrowser: true}, files).Router()
}

func TestListing_EmptyDirectory(t *testing.T) {
	files := newDiskSource(t, map[string]string{"empty/": ""})

	rec := serve(listingRouter(files), http.MethodGet, "/empty/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "Page 1 of 1, 0 items")
	assert.Contains(t, body, `<span aria-disabled="true">Previous</span>`)
	assert.Contains(t, body, `<span aria-disabled="true">Next</span>`)
	assert.Contains(t, body, `<a href="/">..</a>`)
	assert.NotContains(t, body, "Logout")
}

func TestListing_PageClampedToLast(t *testing.T) {
	entries := make([]minihttp.DirectoryEntry, 120)
	for i := range entries {
		entries[i] = minihttp.DirectoryEntry{Name: fmt.Sprintf("f%03d.txt", i), Size: 10}
	}

	files := new(MockFileSource)
	files.On("Stat", mock.Anything, "big").Return(minihttp.DirectoryEntry{Name: "big", IsDir: true}, nil)
	files.On("ListDirectory", mock.Anything, "big").Return(entries, nil)

	rec := serve(listingRouter(files), http.MethodGet, "/big/?page=10&pageSize=50")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Page 3 of 3, 120 items")
	assert.Contains(t, body, `href="/big/f100.txt"`)
	assert.Contains(t, body, `href="/big/f119.txt"`)
	assert.NotContains(t, body, `href="/big/f099.txt"`)
	assert.Contains(t, body, `<a href="/big/?page=2&amp;pageSize=50" rel="prev">Previous</a>`)
	assert.Contains(t, body, `<span aria-disabled="true">Next</span>`)
	files.AssertExpectations(t)
}

func TestListing_RootOrderingAndFormatting(t *testing.T) {
	modified := time.Date(2026, 2, 3, 4, 5, 6, 0, time.Local)
	entries := []minihttp.DirectoryEntry{
		{Name: "b.bin", Size: 1536, LastModified: modified},
		{Name: "Zeta", IsDir: true, LastModified: modified},
		{Name: "a.txt", Size: 12, LastModified: modified},
		{Name: "alpha", IsDir: true, LastModified: modified},
	}

	files := new(MockFileSource)
	files.On("Stat", mock.Anything, ".").Return(minihttp.DirectoryEntry{IsDir: true}, nil)
	files.On("ListDirectory", mock.Anything, ".").Return(entries, nil)

	rec := serve(listingRouter(files), http.MethodGet, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.NotContains(t, body, ">..<", "no parent row at root")

	order := []string{`href="/alpha/"`, `href="/Zeta/"`, `href="/a.txt"`, `href="/b.bin"`}
	last := -1
	for _, needle := range order {
		idx := strings.Index(body, needle)
		require.NotEqual(t, -1, idx, needle)
		assert.Greater(t, idx, last, needle)
		last = idx
	}

	assert.Contains(t, body, ">alpha/</a>")
	assert.Contains(t, body, "1.5 KB")
	assert.Contains(t, body, "12 B")
	assert.Contains(t, body, "2026-02-03 04:05:06")
}

func TestListing_EscapesNamesAndLinks(t *testing.T) {
	entries := []minihttp.DirectoryEntry{
		{Name: "<script>alert(1)</script>.txt", Size: 1},
		{Name: "a b#c.txt", Size: 1},
	}

	files := new(MockFileSource)
	files.On("Stat", mock.Anything, "my dir").Return(minihttp.DirectoryEntry{Name: "my dir", IsDir: true}, nil)
	files.On("ListDirectory", mock.Anything, "my dir").Return(entries, nil)

	rec := serve(listingRouter(files), http.MethodGet, "/my%20dir/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.Contains(t, body, `href="/my%20dir/a%20b%23c.txt"`)
	assert.Contains(t, body, `<a href="/">Home</a>`)
	assert.Contains(t, body, "<strong>my dir</strong>")
}

func TestListing_ShowsUserAndLogout(t *testing.T) {
	f := newAuthFixture(t, newDiskSource(t, map[string]string{"docs/a.txt": "a"}))

	rec := serve(f.router, http.MethodGet, "/docs/?page=1", f.sessionCookie(t, "admin", f.identity))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "admin")
	assert.Contains(t, body, `href="/logout?returnUrl=%2Fdocs%2F%3Fpage%3D1"`)
}

func TestListing_ListError(t *testing.T) {
	files := new(MockFileSource)
	files.On("Stat", mock.Anything, "gone").Return(minihttp.DirectoryEntry{Name: "gone", IsDir: true}, nil)
	files.On("ListDirectory", mock.Anything, "gone").Return(nil, minihttp.ErrNotFound)

	rec := serve(listingRouter(files), http.MethodGet, "/gone/")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "404 Not Found", rec.Body.String())
}
