package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so callers can branch without matching
// message strings.
type ErrorKind string

const (
	KindExtractionError       ErrorKind = "extraction_error"
	KindStructuringError      ErrorKind = "structuring_error"
	KindSchemaExtractionError ErrorKind = "schema_extraction_error"
	KindNotFound              ErrorKind = "not_found"
	KindInvalidState          ErrorKind = "invalid_state"
	KindInvalidInput          ErrorKind = "invalid_input"
)

var (
	ErrDocumentNotFound = &ServiceError{Kind: KindNotFound, Message: "document not found"}
	ErrSchemaNotFound   = &ServiceError{Kind: KindNotFound, Message: "schema not found"}
	ErrNotProcessed     = &ServiceError{Kind: KindInvalidState, Message: "document not yet processed"}
)

// ServiceError is a typed error carried across the service boundary.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError wraps err with a kind and message.
func NewServiceError(kind ErrorKind, message string, err error) *ServiceError {
	return &ServiceError{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the error kind, or empty when err is not a ServiceError.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
