package core

import "fmt"

// ValidationError reports malformed caller input. It never reaches a store.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StorageError reports that the persistence medium could not be read or
// written. Operations failing with it have not been applied.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ExportError reports that an export destination could not be written.
type ExportError struct {
	Destination string
	Err         error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export to %s: %v", e.Destination, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
