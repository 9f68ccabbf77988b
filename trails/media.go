package trails

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mariposa-trails/trailhead/errors"
	"github.com/mariposa-trails/trailhead/store"
)

// relocateRetries bounds the overwrite race loop in Relocate.
const relocateRetries = 3

// Relocator stores uploaded binaries in the blob store and hands back stable
// reference paths for embedding in posts. References have no lifecycle after
// creation; nothing here ever deletes one.
type Relocator struct {
	blobs      store.BlobStore
	uploadsDir string
	logger     *zap.SugaredLogger
}

// UploadFailure describes a single attachment that could not be relocated.
// The update as a whole still proceeds; failures are reported to the caller.
type UploadFailure struct {
	Field    string `json:"field"`
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// NewRelocator creates a relocator writing under uploadsDir in the store.
func NewRelocator(blobs store.BlobStore, uploadsDir string, logger *zap.SugaredLogger) *Relocator {
	return &Relocator{blobs: blobs, uploadsDir: uploadsDir, logger: logger}
}

// Relocate stores content under the sanitized original filename and returns
// the reference path. A name collision overwrites the previous binary.
func (r *Relocator) Relocate(ctx context.Context, filename string, content []byte) (string, error) {
	name := sanitizeFilename(filename)
	if name == "" {
		return "", errors.NewInvalidRequestError("unusable upload filename %q", filename)
	}
	ref := path.Join(r.uploadsDir, name)

	var lastErr error
	for attempt := 0; attempt < relocateRetries; attempt++ {
		hash := ""
		if cur, err := r.blobs.Get(ctx, ref); err == nil {
			hash = cur.Hash
		} else if !errors.IsNotFoundError(err) {
			return "", err
		}

		if _, err := r.blobs.Put(ctx, ref, content, hash); err == nil {
			r.logger.Debugw("Attachment relocated", "ref", ref, "bytes", len(content))
			return ref, nil
		} else if !errors.IsConflictError(err) {
			return "", err
		} else {
			lastErr = err
		}
	}
	return "", lastErr
}

// sanitizeFilename reduces an uploaded filename to a safe single path
// component: base name only, restricted character set, no dot-names.
func sanitizeFilename(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	var b strings.Builder
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == '-' || c == '_' || c == '.':
			b.WriteRune(c)
		default:
			b.WriteRune('_')
		}
	}
	cleaned := b.String()
	if strings.Trim(cleaned, "._") == "" {
		return ""
	}
	return cleaned
}
