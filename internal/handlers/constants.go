package handlers

// Common error message constants shared across handlers
const (
	ErrMsgInvalidRequestBody = "Invalid request body"
	ErrMsgUnauthorized       = "Unauthorized"
	ErrMsgInternal           = "An internal error occurred"
	ErrMsgInvalidDate        = "must be a date in YYYY-MM-DD format"
)

// API path constants
const (
	APIBasePath = "/api/v1"
)

// maxRequestBodyBytes bounds JSON request bodies; snapshots carry document lists
const maxRequestBodyBytes = 1 << 20
