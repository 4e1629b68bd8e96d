package handler

import (
	"net/http"

	"github.com/locvowork/employee_directory/internal/domain"
)

// StatusMapper picks the HTTP status for an error code.
type StatusMapper struct {
	// Legacy collapses everything except credential failures to 500.
	Legacy bool
}

// Status returns the HTTP status for code; "" means success.
func (m StatusMapper) Status(code domain.Code) int {
	switch code {
	case "":
		return http.StatusOK
	case domain.CodeUnauthenticated, domain.CodeUnauthorized:
		return http.StatusUnauthorized
	}
	if m.Legacy {
		return http.StatusInternalServerError
	}
	switch code {
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidDocument, domain.CodeUnknownOperation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
