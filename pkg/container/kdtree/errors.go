package kdtree

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput        = errors.New("empty point set")
	ErrInvalidDimensions = errors.New("dimensions must be positive")
	ErrDimMismatch       = errors.New("dimension mismatch")
	ErrSortOrder         = errors.New("merge sort failure")
	ErrNilSink           = errors.New("verbose mode requires a sink")
	ErrInvalidCutoff     = errors.New("cutoff must be a non-negative number")
)

// ConstructionError aborts Build. No partial tree is ever returned with it.
type ConstructionError struct {
	// Index of the offending input point or reference slot, -1 when not applicable.
	Index int
	Err   error
}

func (e *ConstructionError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("kdtree: build: %v", e.Err)
	}
	return fmt.Sprintf("kdtree: build: point %d: %v", e.Index, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// QueryError is returned by searches. The tree stays valid after it.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("kdtree: %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
