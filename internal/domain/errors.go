package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest marks a malformed payload; no state was touched.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotJoined is returned for room-scoped requests from a connection
	// that is not joined to that room.
	ErrNotJoined = errors.New("not joined to room")
	// ErrStorage is matched by every StorageError.
	ErrStorage = errors.New("storage error")

	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")
)

// StorageError wraps a ledger failure (timeout, connectivity, encoding).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// Invalid wraps err so that errors.Is(err, ErrInvalidRequest) holds.
func Invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
}
