package utils

const (
	// RequestIDKey stores the request id inside the gin context.
	RequestIDKey = "request_id"
	// RequestIDHeader is echoed back on every response.
	RequestIDHeader = "X-Request-ID"
)
