package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeValidation = "VALIDATION_ERROR"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed here surface as 500.
var errorCodeHTTPStatus = map[string]int{
	// Malformed or invalid input -> 400 Bad Request
	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeValidation:        http.StatusBadRequest,
	"INVALID_INPUT":          http.StatusBadRequest,
	"INVALID_AMOUNT":         http.StatusBadRequest,
	"INVALID_PAYMENT_METHOD": http.StatusBadRequest,
	"INVALID_INTERVAL":       http.StatusBadRequest,
	"INVALID_STATUS":         http.StatusBadRequest,
	"INVALID_DATE_RANGE":     http.StatusBadRequest,
	"INVALID_CUSTOMER":       http.StatusBadRequest,
	"INVALID_INVOICE_NUMBER": http.StatusBadRequest,
	"EMPTY_ITEMS":            http.StatusBadRequest,
	"INVALID_ITEM":           http.StatusBadRequest,
	"INVALID_INVOICE":        http.StatusBadRequest,

	// Missing resources
	"NOT_FOUND": http.StatusNotFound,

	// Conflicts
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"SWEEP_IN_PROGRESS":    http.StatusConflict,

	// Business rule violations -> 422 Unprocessable Entity
	"INVALID_STATE":      http.StatusUnprocessableEntity,
	"EXCEEDS_BALANCE":    http.StatusUnprocessableEntity,
	"CUSTOMER_NOT_FOUND": http.StatusUnprocessableEntity,
	"PRODUCT_NOT_FOUND":  http.StatusUnprocessableEntity,
	"CUSTOMER_INACTIVE":  http.StatusUnprocessableEntity,
	"NOT_DUE":            http.StatusUnprocessableEntity,
	"PAST_DUE_DATE":      http.StatusUnprocessableEntity,

	// Downstream collaborator failures
	"EXTERNAL_SERVICE": http.StatusBadGateway,

	ErrCodeInternal: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
