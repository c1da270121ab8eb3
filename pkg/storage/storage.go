// Package storage keeps PDF documents and session records on the local
// filesystem under a single base path, addressed by slash-separated keys
// such as "pdf/templates/<id>.pdf".
package storage

import (
	"context"

	"github.com/JaimeStill/pdf-editor/pkg/lifecycle"
)

// System defines keyed file storage. Keys are relative to the base path.
type System interface {
	// Store writes data at key, replacing any existing file atomically.
	Store(ctx context.Context, key string, data []byte) error

	// Retrieve returns the data at key or ErrNotFound.
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Validate reports whether key exists.
	Validate(ctx context.Context, key string) (bool, error)

	// Path resolves key to an absolute filesystem path and ensures its parent
	// directory exists. External tools read and write documents through it.
	Path(ctx context.Context, key string) (string, error)

	// List returns the keys of regular files directly under prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)

	// Copy duplicates src to dst.
	Copy(ctx context.Context, src, dst string) error

	// Start registers directory creation with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}
