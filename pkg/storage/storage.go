// Package storage provides blob storage operations with Azure Blob Storage
// and embedded badger implementations.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/lectern/pkg/lifecycle"
)

// MaxListCap is the hard upper bound on a single List page.
const MaxListCap int32 = 5000

// CacheControlInvalidate is applied to overwritten blobs so cached copies at a
// stable url revalidate against the new content.
const CacheControlInvalidate = "no-cache, max-age=0"

// System manages blob storage operations and lifecycle coordination.
type System interface {
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// Upload streams data to a blob at the given key.
	// Without opts.Overwrite the upload fails with ErrExists if the key is taken.
	Upload(ctx context.Context, key string, reader io.Reader, opts UploadOptions) error
	// Download returns a stream for the blob at the given key. The caller must close Body.
	// Returns ErrNotFound if the blob does not exist.
	Download(ctx context.Context, key string) (*Blob, error)
	// Delete removes the blob at the given key. Returns ErrNotFound if the blob does not exist.
	Delete(ctx context.Context, key string) error
	// List returns one page of blob metadata under prefix, starting after marker.
	List(ctx context.Context, prefix, marker string, maxResults int32) (*ListResult, error)
	// URL returns the public url for the blob at key.
	URL(key string) string
}

// UploadOptions controls how Upload writes a blob.
type UploadOptions struct {
	ContentType string
	Overwrite   bool
	Invalidate  bool
}

// Blob is a downloaded blob stream with its headers.
type Blob struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	CacheControl  string
}

// BlobMeta describes a stored blob without its content.
type BlobMeta struct {
	Key          string    `json:"key"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// ListResult is a page of blob metadata. NextMarker is empty on the last page.
type ListResult struct {
	Blobs      []BlobMeta `json:"blobs"`
	NextMarker string     `json:"nextMarker,omitempty"`
}

// New creates the storage system selected by cfg.Provider.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Provider {
	case ProviderAzure:
		return newAzure(cfg, logger)
	case ProviderBadger:
		return newBadger(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// ParseMaxResults parses a max_results query value, clamping it to limit.
// An empty value yields limit.
func ParseMaxResults(s string, limit int32) (int32, error) {
	if s == "" {
		return limit, nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil || n < 1 {
		return 0, ErrInvalidMaxResults
	}
	return min(int32(n), limit), nil
}

func cacheControl(opts UploadOptions, fallback string) string {
	if opts.Invalidate {
		return CacheControlInvalidate
	}
	return fallback
}

func publicURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + key
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
