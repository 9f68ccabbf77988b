package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"

	"github.com/mariposa-trails/trailhead/config"
	"github.com/mariposa-trails/trailhead/errors"
)

// GitStore implements BlobStore over a local git repository. Every successful
// Put is one commit; the blob hash exposed to callers is the git blob SHA of
// the stored content, which is what gates concurrent updates.
//
// Writes are serialized in-process with a mutex. Concurrent writers in other
// processes surface as ErrConflict through the hash check.
type GitStore struct {
	mu     sync.Mutex
	repo   *git.Repository
	root   string
	author object.Signature
	logger *zap.SugaredLogger
}

// Open opens the git repository at cfg.Path, initializing a fresh one if the
// path does not contain a repository yet.
func Open(cfg config.StoreConfig, logger *zap.SugaredLogger) (*GitStore, error) {
	repo, err := git.PlainOpen(cfg.Path)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		if mkErr := os.MkdirAll(cfg.Path, 0o755); mkErr != nil {
			return nil, errors.WrapStore(mkErr, "failed to create store directory")
		}
		repo, err = git.PlainInit(cfg.Path, false)
		if err == nil {
			// Point HEAD at the configured branch before the first commit
			head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(cfg.Branch))
			if refErr := repo.Storer.SetReference(head); refErr != nil {
				return nil, errors.WrapStore(refErr, "failed to set initial branch")
			}
			logger.Infow("Initialized store repository", "path", cfg.Path, "branch", cfg.Branch)
		}
	}
	if err != nil {
		return nil, errors.WrapStore(err, "failed to open store repository")
	}

	return &GitStore{
		repo: repo,
		root: cfg.Path,
		author: object.Signature{
			Name:  cfg.AuthorName,
			Email: cfg.AuthorEmail,
		},
		logger: logger,
	}, nil
}

// Get returns the blob at path as of HEAD.
func (s *GitStore) Get(ctx context.Context, path string) (*Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(path)
}

// getLocked reads a blob from the HEAD commit. Caller holds s.mu.
func (s *GitStore) getLocked(path string) (*Blob, error) {
	head, err := s.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		// Empty repository: nothing has been committed yet
		return nil, errors.NewNotFoundError("%s", path)
	}
	if err != nil {
		return nil, errors.WrapStore(err, "failed to resolve HEAD")
	}

	commit, err := s.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, errors.WrapStore(err, "failed to load HEAD commit")
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, errors.WrapStore(err, "failed to load HEAD tree")
	}

	file, err := tree.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, errors.NewNotFoundError("%s", path)
	}
	if err != nil {
		return nil, errors.WrapStore(err, fmt.Sprintf("failed to read %s", path))
	}

	contents, err := file.Contents()
	if err != nil {
		return nil, errors.WrapStore(err, fmt.Sprintf("failed to read contents of %s", path))
	}

	return &Blob{
		Path:    path,
		Content: []byte(contents),
		Hash:    file.Hash.String(),
	}, nil
}

// Put writes content to path as a new commit, gated on expectedHash.
func (s *GitStore) Put(ctx context.Context, path string, content []byte, expectedHash string) (*Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.Contains(path, "..") || filepath.IsAbs(path) {
		return nil, errors.NewInvalidRequestError("invalid blob path %q", path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.getLocked(path)
	switch {
	case errors.IsNotFoundError(err):
		if expectedHash != "" {
			return nil, errors.Wrapf(errors.ErrConflict, "%s was deleted since it was read", path)
		}
	case err != nil:
		return nil, err
	default:
		if expectedHash == "" {
			return nil, errors.Wrapf(errors.ErrConflict, "%s already exists", path)
		}
		if current.Hash != expectedHash {
			return nil, errors.Wrapf(errors.ErrConflict,
				"%s changed since it was read (have %s, expected %s)", path, current.Hash, expectedHash)
		}
	}

	abs := filepath.Join(s.root, path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, errors.WrapStore(err, "failed to create blob directory")
	}
	if err := os.WriteFile(abs, content, 0o644); err != nil {
		return nil, errors.WrapStore(err, fmt.Sprintf("failed to write %s", path))
	}

	wt, err := s.repo.Worktree()
	if err != nil {
		return nil, errors.WrapStore(err, "failed to open worktree")
	}
	if _, err := wt.Add(path); err != nil {
		return nil, errors.WrapStore(err, fmt.Sprintf("failed to stage %s", path))
	}

	commitHash, err := wt.Commit(fmt.Sprintf("update %s", path), &git.CommitOptions{
		Author: &object.Signature{
			Name:  s.author.Name,
			Email: s.author.Email,
			When:  time.Now(),
		},
		AllowEmptyCommits: true, // identical content is a valid, idempotent write
	})
	if err != nil {
		return nil, errors.WrapStore(err, fmt.Sprintf("failed to commit %s", path))
	}

	blobHash := plumbing.ComputeHash(plumbing.BlobObject, content)
	s.logger.Debugw("Blob written", "path", path, "commit", commitHash.String()[:7], "blob", blobHash.String()[:7])

	return &Blob{
		Path:    path,
		Content: content,
		Hash:    blobHash.String(),
	}, nil
}
