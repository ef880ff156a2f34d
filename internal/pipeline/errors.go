package pipeline

import "fmt"

// ValidationError indicates a capture request missing or carrying an
// invalid field. It short-circuits before any I/O or collaborator call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CollaboratorError indicates the vision model call failed.
type CollaboratorError struct {
	Err error
}

func (e CollaboratorError) Error() string {
	return fmt.Errorf("vision model: %w", e.Err).Error()
}

func (e CollaboratorError) Unwrap() error {
	return e.Err
}

// StorageError indicates an I/O failure reading or writing a session's
// record set.
type StorageError struct {
	Op  string
	Err error
}

func (e StorageError) Error() string {
	return fmt.Errorf("storage %s: %w", e.Op, e.Err).Error()
}

func (e StorageError) Unwrap() error {
	return e.Err
}
