package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rezkam/monodash/internal/domain"
)

// Error codes returned in ErrorDetail.Code.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidation         = "VALIDATION_ERROR"
	CodeDuplicateTitle     = "DUPLICATE_TITLE"
	CodeNotFound           = "NOT_FOUND"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []ErrorField `json:"details,omitempty"`
}

// ErrorField describes a field-specific error.
type ErrorField struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// BadRequest sends a 400 Bad Request error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, CodeInvalidRequest, message, http.StatusBadRequest)
}

// ValidationError sends a 400 validation error with field details.
func ValidationError(w http.ResponseWriter, field, issue string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    CodeValidation,
			Message: "validation failed",
			Details: []ErrorField{{Field: field, Issue: issue}},
		},
	})
}

// NotFound sends a 404 Not Found error.
func NotFound(w http.ResponseWriter, resource string) {
	Error(w, CodeNotFound, resource+" not found", http.StatusNotFound)
}

// Conflict sends a 409 Conflict error.
func Conflict(w http.ResponseWriter, code, message string) {
	Error(w, code, message, http.StatusConflict)
}

// StorageUnavailable sends a 503 when the command was applied in memory but
// could not be persisted.
func StorageUnavailable(w http.ResponseWriter, r *http.Request, err error) {
	slog.WarnContext(r.Context(), "storage unavailable", "error", err)
	Error(w, CodeStorageUnavailable, "the change was applied but could not be saved", http.StatusServiceUnavailable)
}

// InternalError sends a 500 Internal Server Error.
// The error is logged server-side; the client only sees a generic message.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		slog.ErrorContext(r.Context(), "Internal server error", "error", err)
	}
	Error(w, CodeInternal, "an internal error occurred", http.StatusInternalServerError)
}

// Error sends a generic error response.
func Error(w http.ResponseWriter, code, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// FromDomainError maps domain errors to HTTP responses.
func FromDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Validation errors (400)
	case errors.Is(err, domain.ErrTitleRequired):
		ValidationError(w, "title", "required field missing")
	case errors.Is(err, domain.ErrTitleLength):
		ValidationError(w, "title", "must be between 1 and 120 characters")
	case errors.Is(err, domain.ErrNoteTooLong):
		ValidationError(w, "note", "must be 500 characters or less")
	case errors.Is(err, domain.ErrDueDayInPast):
		ValidationError(w, "dueDay", "cannot be in the past")
	case errors.Is(err, domain.ErrInvalidDay):
		ValidationError(w, "dueDay", "must be a calendar day in YYYY-MM-DD format")
	case errors.Is(err, domain.ErrValidation):
		ValidationError(w, "", err.Error())

	// Conflicts (409)
	case errors.Is(err, domain.ErrDuplicateTitle):
		Conflict(w, CodeDuplicateTitle, "a todo with the same title already exists")

	// Not found (404)
	case errors.Is(err, domain.ErrTodoNotFound):
		NotFound(w, "todo")
	case errors.Is(err, domain.ErrNotFound):
		NotFound(w, "resource")

	// Persistence (503)
	case errors.Is(err, domain.ErrStorage):
		StorageUnavailable(w, r, err)

	default:
		InternalError(w, r, err)
	}
}
