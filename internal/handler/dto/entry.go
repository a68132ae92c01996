// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "github.com/entryd/entryd/internal/schema"

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidJSON      = "INVALID_JSON"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeMissingKey       = "MISSING_KEY"
	CodeEntryNotFound    = "ENTRY_NOT_FOUND"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeInternalError    = "INTERNAL_ERROR"
)

// MessageEntryNotFound is the fixed message of a 404 from the get route.
const MessageEntryNotFound = "The entry does not exist"

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details []schema.FieldError `json:"details,omitempty"`
}

// ServiceInfo is the body of GET /.
type ServiceInfo struct {
	Service    string `json:"service"`
	Version    string `json:"version"`
	Collection string `json:"collection"`
	MountPath  string `json:"mount_path"`
	Docs       string `json:"docs"`
}
