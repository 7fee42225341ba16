// Package ecode defines standardized error codes for API responses.
//
// Codes mirror HTTP status codes negated: 0 means success, -4xx are client
// errors, -5xx are server errors.
package ecode

import "net/http"

// Business error codes
const (
	OK = 0

	RequestErr       = -400
	ParamErr         = -401
	AccessDenied     = -403
	NothingFound     = -404
	MethodNotAllowed = -405
	Conflict         = -409

	ServerErr          = -500
	ServiceUnavailable = -503
	Deadline           = -504
)

var codeText = map[int]string{
	OK:                 "ok",
	RequestErr:         "invalid request",
	ParamErr:           "invalid parameters",
	AccessDenied:       "access denied",
	NothingFound:       "resource not found",
	MethodNotAllowed:   "method not allowed",
	Conflict:           "resource conflict",
	ServerErr:          "internal server error",
	ServiceUnavailable: "service unavailable",
	Deadline:           "deadline exceeded",
}

var codeStatus = map[int]int{
	OK:                 http.StatusOK,
	RequestErr:         http.StatusBadRequest,
	ParamErr:           http.StatusBadRequest,
	AccessDenied:       http.StatusForbidden,
	NothingFound:       http.StatusNotFound,
	MethodNotAllowed:   http.StatusMethodNotAllowed,
	Conflict:           http.StatusConflict,
	ServerErr:          http.StatusInternalServerError,
	ServiceUnavailable: http.StatusServiceUnavailable,
	Deadline:           http.StatusGatewayTimeout,
}

// Text returns the human-readable message for a code.
func Text(code int) string {
	if msg, ok := codeText[code]; ok {
		return msg
	}
	return codeText[ServerErr]
}

// ToHTTPStatus maps a business code to an HTTP status code.
func ToHTTPStatus(code int) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
