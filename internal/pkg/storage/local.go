package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalSink implements Sink on the local file system. Public IDs are paths
// relative to the base directory; URLs are the public ID joined onto a
// configurable base URL (typically the route that serves stored files).
type LocalSink struct {
	basePath string
	baseURL  string
}

// NewLocalSink creates a LocalSink rooted at basePath.
func NewLocalSink(basePath, baseURL string) (*LocalSink, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalSink{basePath: basePath, baseURL: baseURL}, nil
}

// Store writes content to a uuid-sharded path under the base directory.
func (s *LocalSink) Store(ctx context.Context, suggestedName string, content io.Reader) (*StoredObject, error) {
	path := objectPath(suggestedName)
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(path))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		return nil, fmt.Errorf("failed to write file content: %w", err)
	}

	return &StoredObject{
		URL:      s.baseURL + "/" + path,
		PublicID: path,
	}, nil
}

// Delete removes a stored file. Missing files are ignored.
func (s *LocalSink) Delete(ctx context.Context, publicID string) error {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(publicID))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Open opens a stored file for reading.
func (s *LocalSink) Open(ctx context.Context, publicID string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(publicID))
	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object not found: %w", err)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}
