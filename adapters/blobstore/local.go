package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gotally/domain/core"

	"github.com/gofrs/flock"
)

const (
	lockFileName = ".gotally.lock"
	tempPrefix   = ".tmp-"
)

// LocalBlobStore implements ports.BlobStore on the local filesystem.
// Writes are atomic (temp file + rename) and serialized both in-process
// and across processes through a lock file in the base directory.
type LocalBlobStore struct {
	basePath string
	mu       sync.RWMutex
	fileLock *flock.Flock
}

// NewLocalBlobStore creates a new local blob store
func NewLocalBlobStore(basePath string) (*LocalBlobStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &LocalBlobStore{
		basePath: basePath,
		fileLock: flock.New(filepath.Join(basePath, lockFileName)),
	}, nil
}

// BasePath returns the directory holding the blobs
func (lbs *LocalBlobStore) BasePath() string {
	return lbs.basePath
}

// Put writes data under key, replacing any previous blob
func (lbs *LocalBlobStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	filePath, err := lbs.keyToPath(key)
	if err != nil {
		return err
	}

	lbs.mu.Lock()
	defer lbs.mu.Unlock()
	if err := lbs.fileLock.Lock(); err != nil {
		return fmt.Errorf("failed to lock blob store: %w", err)
	}
	defer lbs.fileLock.Unlock()

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync blob %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close blob %s: %w", key, err)
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace blob %s: %w", key, err)
	}
	return nil
}

// Get reads the blob stored under key
func (lbs *LocalBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filePath, err := lbs.keyToPath(key)
	if err != nil {
		return nil, err
	}

	lbs.mu.RLock()
	defer lbs.mu.RUnlock()
	if err := lbs.fileLock.RLock(); err != nil {
		return nil, fmt.Errorf("failed to lock blob store: %w", err)
	}
	defer lbs.fileLock.Unlock()

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrBlobNotFound, key)
		}
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return data, nil
}

// Delete removes a blob; deleting a missing key is not an error
func (lbs *LocalBlobStore) Delete(ctx context.Context, key string) error {
	filePath, err := lbs.keyToPath(key)
	if err != nil {
		return err
	}

	lbs.mu.Lock()
	defer lbs.mu.Unlock()
	if err := lbs.fileLock.Lock(); err != nil {
		return fmt.Errorf("failed to lock blob store: %w", err)
	}
	defer lbs.fileLock.Unlock()

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", filePath, err)
	}
	return nil
}

// Exists checks if a blob exists
func (lbs *LocalBlobStore) Exists(ctx context.Context, key string) (bool, error) {
	filePath, err := lbs.keyToPath(key)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(filePath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check file existence: %w", err)
}

// List lists blob keys with a given prefix, sorted
func (lbs *LocalBlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	lbs.mu.RLock()
	defer lbs.mu.RUnlock()

	var keys []string
	err := filepath.Walk(lbs.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		name := info.Name()
		if name == lockFileName || strings.HasPrefix(name, tempPrefix) {
			return nil
		}

		relPath, err := filepath.Rel(lbs.basePath, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(relPath)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}

	sort.Strings(keys)
	return keys, nil
}

// Close releases the lock file handle
func (lbs *LocalBlobStore) Close() error {
	return lbs.fileLock.Close()
}

// keyToPath converts a slash-separated key to a path inside the base directory
func (lbs *LocalBlobStore) keyToPath(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || clean == "." || filepath.IsAbs(clean) || clean == ".." ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(lbs.basePath, clean), nil
}
