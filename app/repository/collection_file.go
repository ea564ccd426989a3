package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// jsonCollection is one kind's whole collection stored as a JSON array in a
// single file. Every mutation runs read -> mutate -> write under mu, and the
// write replaces the file through an atomic rename, so readers need no lock.
type jsonCollection[T any] struct {
	path string
	mu   sync.Mutex
}

func newJSONCollection[T any](path string) (*jsonCollection[T], error) {
	c := &jsonCollection[T]{path: path}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := c.store([]T{}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	return c, nil
}

// load reads the current collection. A missing or empty file is an empty
// collection; anything unparsable is an error.
func (c *jsonCollection[T]) load() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.path, err)
	}
	if items == nil {
		items = []T{}
	}

	return items, nil
}

// count returns the number of elements without decoding them into T
func (c *jsonCollection[T]) count() (int64, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", c.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return 0, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, fmt.Errorf("parse %s: %w", c.path, err)
	}
	return int64(len(raw)), nil
}

// update is the per-kind critical section. Errors returned by fn are passed
// through untouched; medium errors are marked ErrStoreUnavailable.
func (c *jsonCollection[T]) update(ctx context.Context, fn func(items []T) ([]T, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load()
	if err != nil {
		return unavailable("load collection", err)
	}

	next, err := fn(items)
	if err != nil {
		return err
	}

	if err := c.store(next); err != nil {
		return unavailable("store collection", err)
	}

	return nil
}

// store writes items to a temp file next to the collection, syncs it and
// renames it over the collection file.
func (c *jsonCollection[T]) store(items []T) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.path, err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", tmpName, err)
	}

	return nil
}

// nextTimestampID returns the current unix millisecond as text, bumped past
// the largest numeric id already present so two inserts in the same
// millisecond still get distinct, increasing ids.
func nextTimestampID(now time.Time, existing []string) string {
	next := uint64(now.UnixMilli())
	for _, id := range existing {
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			continue
		}
		if n >= next {
			next = n + 1
		}
	}
	return strconv.FormatUint(next, 10)
}
