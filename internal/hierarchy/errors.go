package hierarchy

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound: id không tồn tại (kể cả khi xóa lần thứ hai)
	ErrNotFound = errors.New("node not found")

	// ErrConflict là gốc của mọi lỗi 409
	ErrConflict = errors.New("conflict")

	// ErrDuplicateSlug: slug đã được dùng trong cùng bảng
	ErrDuplicateSlug = fmt.Errorf("slug already exists: %w", ErrConflict)

	// ErrValidation match mọi *ValidationError qua errors.Is
	ErrValidation = errors.New("validation error")
)

// Reason phân loại ValidationError cho client
type Reason string

const (
	ReasonSelfParent       Reason = "self_parent"
	ReasonCyclicParent     Reason = "cyclic_parent"
	ReasonParentNotFound   Reason = "parent_not_found"
	ReasonTypeMismatch     Reason = "type_mismatch"
	ReasonInvalidName      Reason = "invalid_name"
	ReasonInvalidSlug      Reason = "invalid_slug"
	ReasonInvalidType      Reason = "invalid_type"
	ReasonScopeRequired    Reason = "scope_required"
	ReasonUnknownAttribute Reason = "unknown_attribute"
)

type ValidationError struct {
	Reason  Reason
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func NewValidationError(reason Reason, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrSelfParent         = NewValidationError(ReasonSelfParent, "a node cannot be its own parent")
	ErrCyclicParent       = NewValidationError(ReasonCyclicParent, "cannot move a node under one of its descendants")
	ErrParentNotFound     = NewValidationError(ReasonParentNotFound, "parent not found")
	ErrParentTypeMismatch = NewValidationError(ReasonTypeMismatch, "parent type does not match")
	ErrInvalidName        = NewValidationError(ReasonInvalidName, "name is required")
	ErrInvalidSlug        = NewValidationError(ReasonInvalidSlug, "slug must contain at least one letter or digit")
	ErrScopeRequired      = NewValidationError(ReasonScopeRequired, "owning scope is required")
)

// ReasonOf trả về Reason nếu err là ValidationError
func ReasonOf(err error) (Reason, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason, true
	}
	return "", false
}

// GetHTTPStatusCode map domain error tới HTTP status code:
// NotFound → 404, Conflict → 409, Validation → 400, còn lại 500
func GetHTTPStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ErrorCode là mã lỗi trong response envelope
func ErrorCode(err error) string {
	switch GetHTTPStatusCode(err) {
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusBadRequest:
		return "VALIDATION_ERROR"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

// GetErrorMessage ẩn chi tiết lỗi nội bộ khỏi client
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, ErrNotFound):
		return "Resource not found"
	case errors.Is(err, ErrDuplicateSlug):
		return "Slug already exists. Please use a different name or slug."
	case errors.Is(err, ErrConflict):
		return "Resource already exists"
	default:
		return "Internal server error"
	}
}
