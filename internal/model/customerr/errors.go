package customerr

import "fmt"

// ValidationError reports a missing or malformed required field. The
// operation that raised it has not touched any state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NotFoundError reports an update or delete whose target id is absent.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %s not found", e.ID)
}

// RateUnavailableError means every rate provider failed for the pair.
// Callers must treat it as blocking; the resolver never fabricates a rate.
type RateUnavailableError struct {
	Currency string
	Date     string
	Err      error
}

func (e *RateUnavailableError) Error() string {
	return fmt.Sprintf("no rate available for %s on %s: %v", e.Currency, e.Date, e.Err)
}

func (e *RateUnavailableError) Unwrap() error { return e.Err }

// UploadError reports a failed attachment upload.
type UploadError struct {
	FileName string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.FileName, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// PersistenceError reports a failed save of the collection.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
