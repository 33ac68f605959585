// Package ports declares the outbound interfaces of the render service.
package ports

import (
	"context"
	"io"
)

type PutObjectInput struct {
	ObjectKey   string
	ContentType string
	Reader      io.Reader
	Size        int64
}

type PutObjectOutput struct {
	// On localfs this echoes the object_key.
	// On gdrive it is the real fileId, needed for later reads.
	ObjectKey string
	Size      int64
}

// StorageProvider persists finished render outputs (localfs, gdrive, s3, ...).
// The ObjectKey returned by PutObject is what the job record stores as its
// result reference; retrieval streams it back through GetObject.
type StorageProvider interface {
	Provider() string

	PutObject(ctx context.Context, in PutObjectInput) (PutObjectOutput, error)
	GetObject(ctx context.Context, objectKey string) (rc io.ReadCloser, contentType string, size int64, err error)
}
