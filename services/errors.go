package services

import "errors"

// Sentinel errors returned by services so handlers can map them to HTTP
// status codes without string matching.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("operation not allowed")
	ErrConflict     = errors.New("resource conflict")
	ErrInvalidState = errors.New("invalid state for operation")
)
