package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StoredObject identifies a durably persisted file.
type StoredObject struct {
	// URL is where the object can be fetched from.
	URL string
	// PublicID is the backend-specific locator used for later deletion.
	PublicID string
}

// Sink is where final image buffers are durably committed. The compression
// engine is agnostic to the backend: local disk, object storage, or CDN.
type Sink interface {
	// Store persists content under a name derived from suggestedName and
	// returns its locator.
	Store(ctx context.Context, suggestedName string, content io.Reader) (*StoredObject, error)

	// Delete removes a previously stored object by its public ID. Deleting a
	// missing object is not an error.
	Delete(ctx context.Context, publicID string) error

	// Open retrieves a stored object's content for serving.
	Open(ctx context.Context, publicID string) (io.ReadCloser, error)
}

// objectPath builds a uuid-sharded object path, keeping the suggested name's
// extension. Sharding keeps any single directory or prefix from growing
// unbounded.
func objectPath(suggestedName string) string {
	id := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(suggestedName))
	if ext == "" {
		ext = ".webp"
	}
	return fmt.Sprintf("images/%s/%s%s", id[:2], id, ext)
}
