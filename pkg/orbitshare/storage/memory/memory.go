package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/orbitshare/orbitshare/pkg/orbitshare"
)

// Backend is an in-memory implementation of the orbitshare.BlobStore
// interface, intended for tests and local development.
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte
	updated map[string]time.Time
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string][]byte),
		updated: make(map[string]time.Time),
	}
}

// Upload stores content directly in memory
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[objectKey] = data
	b.updated[objectKey] = time.Now()

	return nil
}

// Download returns the stored content
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, errors.New("object not found")
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes the stored content
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return errors.New("object not found")
	}

	delete(b.objects, objectKey)
	delete(b.updated, objectKey)

	return nil
}

// Meta retrieves metadata for a stored blob
func (b *Backend) Meta(ctx context.Context, objectKey string) (*orbitshare.BlobMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, errors.New("object not found")
	}

	return &orbitshare.BlobMeta{
		Key:         objectKey,
		Size:        int64(len(data)),
		ContentType: http.DetectContentType(data),
		UpdatedAt:   b.updated[objectKey],
	}, nil
}
