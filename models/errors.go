package models

import "errors"

// ValidationError rejects a run before any backend call is made (missing
// site id, no images, empty finding set).
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Validation wraps msg as a ValidationError.
func Validation(msg string) error { return &ValidationError{Msg: msg} }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// BackendError marks a storage, AI or notification collaborator failure.
// It is isolated to the single image or action in progress.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	if e.Err == nil {
		return "backend error: " + e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *BackendError) Unwrap() error { return e.Err }

// Backend wraps err as a BackendError for the named operation.
func Backend(op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, Err: err}
}

// IsBackend reports whether err is a BackendError.
func IsBackend(err error) bool {
	var berr *BackendError
	return errors.As(err, &berr)
}

// ParseError marks AI output the pipeline cannot recover from, such as a
// score text containing no digits. The score is never guessed.
type ParseError struct{ Msg string }

func (e *ParseError) Error() string { return e.Msg }

// Parse wraps msg as a ParseError.
func Parse(msg string) error { return &ParseError{Msg: msg} }

// IsParse reports whether err is a ParseError.
func IsParse(err error) bool {
	var perr *ParseError
	return errors.As(err, &perr)
}
