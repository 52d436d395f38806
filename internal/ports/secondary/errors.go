package secondary

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned when the store is used before Open completes or after Close.
	ErrNotInitialized = errors.New("store not initialized")

	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStorage matches any *StorageError via errors.Is.
	ErrStorage = errors.New("storage error")
)

// StorageError is a constraint violation or I/O failure on a single store call.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// NewStorageError wraps err for op. A nil err or an err that already carries
// a store classification is returned unchanged.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotInitialized) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrStorage) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// ValidationError records a rejected import row.
type ValidationError struct {
	Row    int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}
