package errors

import (
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies an AppError for the HTTP boundary.
type Kind string

const (
	KindInvalidInput    Kind = "invalid_input"
	KindConfig          Kind = "config_error"
	KindResourceLimit   Kind = "resource_limit"
	KindExternalTool    Kind = "external_tool_failure"
	KindRemote          Kind = "remote_service_error"
	KindUnexpectedShape Kind = "unexpected_response_shape"
	KindInternal        Kind = "internal"
)

// Causes that callers can match with Is.
var (
	ErrInvalidTimeRange     = pkgerrors.New("invalid time range")
	ErrInvalidURL           = pkgerrors.New("invalid video url")
	ErrSegmentTooLong       = pkgerrors.New("segment too long")
	ErrSegmentStillTooLarge = pkgerrors.New("segment still too large")
	ErrFileTooLarge         = pkgerrors.New("file too large")
	ErrDownloadFailed       = pkgerrors.New("download failed")
	ErrTranscodeFailed      = pkgerrors.New("transcode failed")
	ErrNotConfigured        = pkgerrors.New("api key not configured")
	ErrUnexpectedResponse   = pkgerrors.New("unexpected response shape")
)

type AppError struct {
	Kind    Kind   `json:"-"`
	Message string `json:"message"`
	Op      string `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to the HTTP status returned to clients.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindConfig:
		return http.StatusUnauthorized
	case KindResourceLimit:
		return http.StatusRequestEntityTooLarge
	case KindExternalTool, KindRemote, KindUnexpectedShape:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func E(kind Kind, op string, err error, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func InvalidInput(op string, err error, message string) *AppError {
	return E(KindInvalidInput, op, err, message)
}

func Config(op string, err error, message string) *AppError {
	return E(KindConfig, op, err, message)
}

func ResourceLimit(op string, err error, message string) *AppError {
	return E(KindResourceLimit, op, err, message)
}

func ExternalTool(op string, err error, message string) *AppError {
	return E(KindExternalTool, op, err, message)
}

func Remote(op string, err error, message string) *AppError {
	return E(KindRemote, op, err, message)
}

func UnexpectedShape(op string, err error, message string) *AppError {
	return E(KindUnexpectedShape, op, err, message)
}

func Internal(op string, err error, message string) *AppError {
	return E(KindInternal, op, err, message)
}

// Wrap annotates a cause with extra detail while keeping it matchable.
func Wrap(err error, detail string) error {
	return pkgerrors.Wrap(err, detail)
}

func Is(err, target error) bool {
	return pkgerrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return pkgerrors.As(err, target)
}

// KindOf reports the Kind of the first AppError in the chain.
func KindOf(err error) Kind {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
