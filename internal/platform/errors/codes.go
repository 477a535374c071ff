// Package errors provides structured error handling for the registry.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Package errors
	CodePackageNameEmpty        Code = "PACKAGE_NAME_EMPTY"
	CodePackageSignatureMissing Code = "PACKAGE_SIGNATURE_MISSING"

	// Request errors
	CodeRequestInvalid Code = "REQUEST_INVALID"

	// Admin grant errors
	CodeAdminGrantMissing      Code = "ADMIN_GRANT_MISSING"
	CodeAdminGrantInvalid      Code = "ADMIN_GRANT_INVALID"
	CodeAdminGrantExpired      Code = "ADMIN_GRANT_EXPIRED"
	CodeAdminGrantScopeMissing Code = "ADMIN_GRANT_SCOPE_MISSING"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps an error code to the HTTP status the API reports.
func (c Code) HTTPStatus() int {
	switch c {
	case CodePackageNameEmpty, CodeRequestInvalid:
		return http.StatusBadRequest
	case CodeAdminGrantMissing, CodeAdminGrantInvalid, CodeAdminGrantExpired:
		return http.StatusUnauthorized
	case CodeAdminGrantScopeMissing:
		return http.StatusForbidden
	case CodeNotFound, CodePackageSignatureMissing:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
