package errors

import "net/http"

// HTTPStatus maps an error from the core to its response status, the
// machine-readable code and whether the caller may retry.
func HTTPStatus(err error) (int, string, bool) {
	if ve, ok := IsValidationError(err); ok {
		return http.StatusBadRequest, ve.Code, false
	}
	if _, ok := IsUnauthenticatedError(err); ok {
		return http.StatusUnauthorized, "UNAUTHENTICATED", false
	}
	if _, ok := IsForbiddenError(err); ok {
		return http.StatusForbidden, "FORBIDDEN", false
	}
	if _, ok := IsNotFoundError(err); ok {
		return http.StatusNotFound, "NOT_FOUND", false
	}
	if _, ok := IsInternalError(err); ok {
		return http.StatusServiceUnavailable, "UNAVAILABLE", true
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", false
}
