package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	domainerrors "github.com/markwiseapp/markwise-server/internal/errors"
	"github.com/markwiseapp/markwise-server/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		// Check if any of the errors are domain errors
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return &APIError{
					status:  domainErr.HTTPStatus(),
					Code:    string(domainErr.Code),
					Message: domainErr.Message,
					Details: domainErr.Details,
				}
			}

			if mapped := mapStoreError(err); mapped != nil {
				return mapped
			}
		}

		return &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
	}
}

// mapStoreError converts store sentinel errors into API errors, or
// returns nil when err is not a store sentinel.
func mapStoreError(err error) *APIError {
	switch {
	case errors.Is(err, store.ErrNodeNotFound),
		errors.Is(err, store.ErrSnapshotNotFound),
		errors.Is(err, store.ErrTagNotFound):
		return &APIError{
			status:  http.StatusNotFound,
			Code:    string(domainerrors.CodeNotFound),
			Message: err.Error(),
		}
	case errors.Is(err, store.ErrTagExists):
		return &APIError{
			status:  http.StatusConflict,
			Code:    string(domainerrors.CodeAlreadyExists),
			Message: err.Error(),
		}
	case errors.Is(err, store.ErrNotAFolder),
		errors.Is(err, store.ErrNotALeaf),
		errors.Is(err, store.ErrSystemContainer),
		errors.Is(err, store.ErrCyclicMove):
		return &APIError{
			status:  http.StatusUnprocessableEntity,
			Code:    string(domainerrors.CodeValidation),
			Message: err.Error(),
		}
	}
	return nil
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusBadGateway:
		return string(domainerrors.CodeUpstream)
	default:
		return string(domainerrors.CodeInternal)
	}
}
