// Package blob stores the raw uploaded files. The service only needs
// put/delete by key; which backend serves them is a config choice.
package blob

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Store is the binary object store behind document uploads. Put returns a
// durable locator for the stored object. Delete is best-effort from the
// caller's point of view: a failed delete is logged, never fatal.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (locator string, err error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// NewKey builds a collision-resistant object key that still carries the
// original file name for operator friendliness.
func NewKey(originalFileName string) string {
	return fmt.Sprintf("%s-%s", uuid.NewString(), originalFileName)
}
