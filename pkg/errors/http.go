package errors

import (
	"errors"
	"net/http"
)

func HTTPStatusCode(err error) int {
	if err == nil {
		return http.StatusInternalServerError
	}

	switch GetErrorType(err) {
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// GetHumanReadableMessage returns the client-facing message. Storage and
// unknown errors collapse to fallback so driver text never reaches a response.
func GetHumanReadableMessage(err error, fallback string) string {
	if fallback == "" {
		fallback = "Internal server error"
	}
	if err == nil {
		return fallback
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fallback
	}

	switch appErr.Type {
	case ErrorTypeDatabaseError, ErrorTypeInternalServerError, ErrorTypeUnknown:
		return fallback
	}

	return appErr.Message
}
