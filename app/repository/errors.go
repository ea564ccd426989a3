package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrConflict         = errors.New("record already exists")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// unavailable marks a medium failure so callers can match ErrStoreUnavailable
// while keeping the original cause.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
