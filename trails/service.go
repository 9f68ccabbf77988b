package trails

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/mariposa-trails/trailhead/config"
	"github.com/mariposa-trails/trailhead/errors"
	"github.com/mariposa-trails/trailhead/store"
)

// updateRetries bounds how many times Update re-runs the read-merge-write
// sequence after losing an optimistic-concurrency race.
const updateRetries = 3

// Service owns the dataset lifecycle: reads, merge-updates, and the global
// version counter, all persisted through the blob store.
//
// Concurrency contract: at most one concurrent Update succeeds against a
// given prior revision; losers retry the whole read-merge-write sequence
// internally and only fail upward once retries are exhausted.
type Service struct {
	blobs  store.BlobStore
	cfg    config.StoreConfig
	logger *zap.SugaredLogger
}

// UpdateResult reports a successful merge-update.
type UpdateResult struct {
	Version int
	Trails  []Trail
}

// NewService creates a dataset service over the given blob store.
func NewService(blobs store.BlobStore, cfg config.StoreConfig, logger *zap.SugaredLogger) *Service {
	return &Service{blobs: blobs, cfg: cfg, logger: logger}
}

// Data returns the current dataset. An absent dataset blob is an empty
// dataset, not an error.
func (s *Service) Data(ctx context.Context) ([]Trail, error) {
	ds, _, err := s.readDataset(ctx)
	return ds, err
}

// Version returns the current global version counter. Absent counter is 0.
func (s *Service) Version(ctx context.Context) (int, error) {
	v, _, err := s.readVersion(ctx)
	return v, err
}

// Update merges the incoming batch into the stored dataset under the next
// version number and persists both the counter and the dataset. Writes are
// hash-gated; a lost race is retried from the top with fresh reads.
func (s *Service) Update(ctx context.Context, incoming []Trail) (*UpdateResult, error) {
	// Validate before touching the store so caller errors never write
	if err := validateBatch(incoming); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < updateRetries; attempt++ {
		result, err := s.tryUpdate(ctx, incoming)
		if err == nil {
			if attempt > 0 {
				s.logger.Infow("Update succeeded after retry", "attempts", attempt+1)
			}
			return result, nil
		}
		if !errors.IsConflictError(err) {
			return nil, err
		}
		lastErr = err
		s.logger.Warnw("Concurrent update detected, retrying", "attempt", attempt+1, "error", err)
	}
	return nil, errors.Wrapf(lastErr, "update lost %d concurrent races", updateRetries)
}

// tryUpdate performs one read-merge-write pass.
//
// The counter is written before the dataset, mirroring the documented write
// order. If the counter lands but the dataset write loses a race, the counter
// is ahead of the data until the retry re-reads it and increments again; the
// window is accepted and self-correcting under retry.
func (s *Service) tryUpdate(ctx context.Context, incoming []Trail) (*UpdateResult, error) {
	current, versionHash, err := s.readVersion(ctx)
	if err != nil {
		return nil, err
	}
	existing, dataHash, err := s.readDataset(ctx)
	if err != nil {
		return nil, err
	}

	next := current + 1
	merged, err := Merge(existing, incoming, next)
	if err != nil {
		return nil, err
	}

	versionContent, err := json.Marshal(VersionDoc{Version: next})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode version counter")
	}
	if _, err := s.blobs.Put(ctx, s.cfg.VersionFile, versionContent, versionHash); err != nil {
		return nil, err
	}

	dataContent, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode dataset")
	}
	if _, err := s.blobs.Put(ctx, s.cfg.DataFile, dataContent, dataHash); err != nil {
		return nil, err
	}

	s.logger.Infow("Dataset updated",
		"version", next,
		"incoming_trails", len(incoming),
		"total_trails", len(merged),
	)

	return &UpdateResult{Version: next, Trails: merged}, nil
}

// readDataset reads data.json, returning the trails and the blob hash to gate
// the next write on. Not-found reads as an empty dataset with hash "".
func (s *Service) readDataset(ctx context.Context) ([]Trail, string, error) {
	blob, err := s.blobs.Get(ctx, s.cfg.DataFile)
	if errors.IsNotFoundError(err) {
		return []Trail{}, "", nil
	}
	if err != nil {
		return nil, "", err
	}

	var ds []Trail
	if err := json.Unmarshal(blob.Content, &ds); err != nil {
		return nil, "", errors.WrapStore(err, "stored dataset is not valid JSON")
	}
	return ds, blob.Hash, nil
}

// readVersion reads version.json. Not-found reads as version 0 with hash "".
func (s *Service) readVersion(ctx context.Context) (int, string, error) {
	blob, err := s.blobs.Get(ctx, s.cfg.VersionFile)
	if errors.IsNotFoundError(err) {
		return 0, "", nil
	}
	if err != nil {
		return 0, "", err
	}

	var doc VersionDoc
	if err := json.Unmarshal(blob.Content, &doc); err != nil {
		return 0, "", errors.WrapStore(err, "stored version counter is not valid JSON")
	}
	return doc.Version, blob.Hash, nil
}
