package minihttp

import (
	"time"

	"github.com/google/uuid"
)

// DirectoryEntry describes one child of a directory as reported by the
// file-serving collaborator. Size is meaningless for directories.
type DirectoryEntry struct {
	Name         string
	IsDir        bool
	Size         int64
	LastModified time.Time
}

// ServerIdentity is an opaque token unique to one running server process.
// Sessions carry the identity they were issued under and are rejected once
// the process that issued them is gone.
type ServerIdentity string

// NewServerIdentity generates a fresh identity. Call it once at startup.
func NewServerIdentity() ServerIdentity {
	return ServerIdentity(uuid.NewString())
}

func (id ServerIdentity) String() string {
	return string(id)
}
