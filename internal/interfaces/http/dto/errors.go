package dto

import "net/http"

// Error code constants
// Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	ErrCodeInternal      = "ERR_INTERNAL"
	ErrCodeBadRequest    = "ERR_BAD_REQUEST"
	ErrCodeUnauthorized  = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired  = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid  = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked  = "ERR_TOKEN_REVOKED"
	ErrCodeForbidden     = "ERR_FORBIDDEN"
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeConflict      = "ERR_CONFLICT"
	ErrCodeInvalidPeriod = "ERR_INVALID_PERIOD"
	ErrCodeUnavailable   = "ERR_SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:      http.StatusInternalServerError,
	ErrCodeBadRequest:    http.StatusBadRequest,
	ErrCodeUnauthorized:  http.StatusUnauthorized,
	ErrCodeTokenExpired:  http.StatusUnauthorized,
	ErrCodeTokenInvalid:  http.StatusUnauthorized,
	ErrCodeTokenRevoked:  http.StatusUnauthorized,
	ErrCodeForbidden:     http.StatusForbidden,
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeConflict:      http.StatusConflict,
	ErrCodeInvalidPeriod: http.StatusBadRequest,
	ErrCodeUnavailable:   http.StatusServiceUnavailable,
}

// domainErrorCodes maps domain error codes to API error codes
var domainErrorCodes = map[string]string{
	"NOT_FOUND":         ErrCodeNotFound,
	"SUBJECT_NOT_FOUND": ErrCodeNotFound,
	"MALFORMED_PERIOD":  ErrCodeInvalidPeriod,
	"INVALID_INPUT":     ErrCodeBadRequest,
	"UNAUTHORIZED":      ErrCodeUnauthorized,
	"FORBIDDEN":         ErrCodeForbidden,
	"CONFLICT":          ErrCodeConflict,
	"UNAVAILABLE":       ErrCodeUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode converts a domain error code to its API code.
// Unknown codes become ERR_INTERNAL.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainErrorCodes[code]; ok {
		return apiCode
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeInternal
}
