// Package storage persists product assets: the private downloadable file and
// the publicly served preview image.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Kind selects which asset root a blob belongs to.
type Kind int

const (
	// KindFile is the downloadable product file, reachable only through the
	// admin-gated download route.
	KindFile Kind = iota
	// KindImage is the preview image, served directly at a public URL path.
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindImage:
		return "image"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// BlobStore writes, removes and reads product assets. Put returns the path
// that is persisted on the product row and later passed back to Open/Remove.
type BlobStore interface {
	// Put stores data under a freshly generated name derived from the
	// client-supplied filename and returns the stored path.
	Put(ctx context.Context, kind Kind, originalName string, data []byte) (string, error)

	// Open returns a reader over a previously stored blob.
	Open(ctx context.Context, kind Kind, path string) (io.ReadCloser, error)

	// Remove deletes a previously stored blob. Removing a blob that is
	// already gone is not an error.
	Remove(ctx context.Context, kind Kind, path string) error
}

// NewBlobName builds the stored name for an uploaded asset: a random UUID
// prefix keeps names unique, the original filename keeps them recognizable.
func NewBlobName(originalName string) string {
	return uuid.NewString() + "-" + sanitizeName(originalName)
}

// OriginalName strips the UUID prefix from a stored blob name, recovering the
// client-supplied filename for download responses.
func OriginalName(storedName string) string {
	base := storedName
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	// 36 characters of UUID plus the separator
	if len(base) > 37 {
		if _, err := uuid.Parse(base[:36]); err == nil && base[36] == '-' {
			return base[37:]
		}
	}
	return base
}

// sanitizeName strips any path components from a client-supplied filename.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if name == "" {
		return "unnamed"
	}
	return name
}
