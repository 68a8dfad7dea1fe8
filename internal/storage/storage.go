// Package storage holds uploaded file bodies. Metadata rows reference
// objects by the opaque ref returned from Put; several rows may share one
// ref after a duplicate, so callers delete an object only once nothing
// references it.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// ErrObjectNotFound is returned when a ref does not name a stored object
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is the blob store behind file uploads
type ObjectStore interface {
	// Put stores size bytes from r and returns the ref of the new object
	Put(ctx context.Context, r io.Reader, size int64, contentType string) (string, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, ref string) error

	// PublicURL returns a URL clients can fetch the object from
	PublicURL(ctx context.Context, ref string) (string, error)
}

// newObjectKey lays objects out by upload month so buckets stay browsable
func newObjectKey(now time.Time) string {
	return path.Join("files", fmt.Sprintf("%04d", now.Year()), fmt.Sprintf("%02d", int(now.Month())), uuid.NewString())
}
