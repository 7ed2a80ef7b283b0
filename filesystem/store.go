// Package filesystem serves files and directory listings from a directory on
// disk. All access goes through an os.Root, so request paths cannot escape the
// served directory through ".." segments or symlinks.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"

	"github.com/minihttp/minihttp"
)

// Store provides read-only access to the served directory.
type Store struct {
	root          *os.Root
	allowDotFiles bool
}

// NewFileStorage creates a new Store over root. Unless allowDotFiles is set,
// any path with a segment starting with "." is reported as missing and such
// entries are left out of listings.
func NewFileStorage(root *os.Root, allowDotFiles bool) *Store {
	return &Store{root: root, allowDotFiles: allowDotFiles}
}

// Stat describes the file or directory at rel. rel is slash separated and
// relative to the root; "." names the root itself.
// Returns minihttp.ErrNotFound if nothing visible exists there.
func (s *Store) Stat(ctx context.Context, rel string) (minihttp.DirectoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return minihttp.DirectoryEntry{}, err
	}

	if s.hidden(rel) {
		return minihttp.DirectoryEntry{}, minihttp.ErrNotFound
	}

	info, err := s.root.Stat(rel)
	if err != nil {
		return minihttp.DirectoryEntry{}, mapErr("stat", err)
	}

	return toEntry(info), nil
}

// ListDirectory returns the children of the directory at rel in directory
// order. Callers sort as needed.
func (s *Store) ListDirectory(ctx context.Context, rel string) ([]minihttp.DirectoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.hidden(rel) {
		return nil, minihttp.ErrNotFound
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), rel)
	if err != nil {
		return nil, mapErr("list directory", err)
	}

	entries := make([]minihttp.DirectoryEntry, 0, len(dirEntries))
	for _, entry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !s.allowDotFiles && minihttp.HasHiddenSegment(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("list directory: %w", err)
		}

		entries = append(entries, toEntry(info))
	}

	return entries, nil
}

// Open opens the regular file at rel for reading. Directories are reported
// as minihttp.ErrNotFound.
func (s *Store) Open(ctx context.Context, rel string) (io.ReadSeekCloser, minihttp.DirectoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, minihttp.DirectoryEntry{}, err
	}

	if s.hidden(rel) {
		return nil, minihttp.DirectoryEntry{}, minihttp.ErrNotFound
	}

	f, err := s.root.Open(rel)
	if err != nil {
		return nil, minihttp.DirectoryEntry{}, mapErr("open file", err)
	}

	info, err := f.Stat()
	if err != nil {
		closeQuietly(f, rel)
		return nil, minihttp.DirectoryEntry{}, fmt.Errorf("open file: %w", err)
	}

	if info.IsDir() {
		closeQuietly(f, rel)
		return nil, minihttp.DirectoryEntry{}, minihttp.ErrNotFound
	}

	return f, toEntry(info), nil
}

// DetectContentType derives a MIME type from the file extension, falling back
// to application/octet-stream for unknown types.
func DetectContentType(name string) string {
	contentType := mime.TypeByExtension(path.Ext(name))

	if contentType == "" {
		return "application/octet-stream"
	}

	return contentType
}

func (s *Store) hidden(rel string) bool {
	return !s.allowDotFiles && minihttp.HasHiddenSegment(rel)
}

func toEntry(info fs.FileInfo) minihttp.DirectoryEntry {
	return minihttp.DirectoryEntry{
		Name:         info.Name(),
		IsDir:        info.IsDir(),
		Size:         info.Size(),
		LastModified: info.ModTime(),
	}
}

func mapErr(op string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return minihttp.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func closeQuietly(f *os.File, rel string) {
	if err := f.Close(); err != nil {
		slog.Warn("failed to close file", "path", rel, "err", err)
	}
}
