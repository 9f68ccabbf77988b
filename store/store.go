// Package store provides the versioned blob store backing the trail dataset.
//
// Blobs are addressed by repository-relative path and carry the content hash
// of their stored revision. Writers must present the hash they read to update
// a blob; a stale or missing hash fails the write with a conflict instead of
// silently overwriting concurrent changes.
package store

import "context"

// Blob is a stored document together with the hash of its current revision.
type Blob struct {
	Path    string
	Content []byte
	Hash    string
}

// BlobStore is a named-blob store with optimistic-concurrency updates.
type BlobStore interface {
	// Get returns the blob at path as of the latest revision.
	// Returns errors.ErrNotFound when the path does not exist.
	Get(ctx context.Context, path string) (*Blob, error)

	// Put writes content to path. expectedHash must be the hash returned by
	// the Get this write is based on; pass "" to assert the path does not
	// exist yet (create). A mismatch fails with errors.ErrConflict and
	// writes nothing.
	Put(ctx context.Context, path string, content []byte, expectedHash string) (*Blob, error)
}
