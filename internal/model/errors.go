package model

import "errors"

// Sentinel errors shared by the tracker and its callers.
// Use errors.Is to check: errors.Is(err, model.ErrNotFound)
var (
	ErrDuplicateID = errors.New("duplicate id")
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("item not found")
	ErrPersistence = errors.New("persistence failed")
)

// PersistError wraps a storage failure with the operation that triggered it.
// It matches ErrPersistence and unwraps to the underlying cause.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return e.Op + ": " + ErrPersistence.Error() + ": " + e.Err.Error()
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrPersistence) hold for any *PersistError.
func (e *PersistError) Is(target error) bool {
	return target == ErrPersistence
}
