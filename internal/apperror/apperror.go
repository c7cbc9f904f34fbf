package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindValidation         Kind = "VALIDATION_ERROR"
	KindUnsupportedMode    Kind = "UNSUPPORTED_MODE"
	KindExtractionFailure  Kind = "EXTRACTION_FAILURE"
	KindPersistenceFailure Kind = "PERSISTENCE_FAILURE"
	KindAlreadyCancelled   Kind = "ALREADY_CANCELLED"
	KindInternal           Kind = "INTERNAL_FAILURE"
)

// AppError is the structured failure every service returns. Status is the
// HTTP status the handlers answer with.
type AppError struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Status: http.StatusNotFound, Message: resource + " not found"}
}

// Missing is NotFound with a caller-supplied message.
func Missing(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Status: http.StatusNotFound, Message: msg}
}

func Validation(msg string) *AppError {
	return &AppError{Kind: KindValidation, Status: http.StatusBadRequest, Message: msg}
}

func UnsupportedMode(mode string) *AppError {
	return &AppError{Kind: KindUnsupportedMode, Status: http.StatusNotImplemented, Message: mode + " not implemented"}
}

func ExtractionFailure(msg string, err error) *AppError {
	return &AppError{Kind: KindExtractionFailure, Status: http.StatusBadGateway, Message: msg, Err: err}
}

func PersistenceFailure(msg string, err error) *AppError {
	return &AppError{Kind: KindPersistenceFailure, Status: http.StatusInternalServerError, Message: msg, Err: err}
}

func AlreadyCancelled() *AppError {
	return &AppError{Kind: KindAlreadyCancelled, Status: http.StatusConflict, Message: "Booking is already cancelled"}
}

func Internal(msg string, err error) *AppError {
	return &AppError{Kind: KindInternal, Status: http.StatusInternalServerError, Message: msg, Err: err}
}

// KindOf reports the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
