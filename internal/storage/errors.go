package storage

import "fmt"

// EntityNotFoundError is returned by AddObservations when an entry names an
// entity that does not exist. Deletions never return it: deleting something
// absent is a no-op.
type EntityNotFoundError struct {
	Name string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity %q not found", e.Name)
}

// StoreIOError wraps any graph-file I/O failure other than the file simply
// not existing yet. It is fatal to the operation that triggered it and is
// never retried internally.
type StoreIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreIOError) Error() string {
	return fmt.Sprintf("%s graph file %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreIOError) Unwrap() error {
	return e.Err
}
