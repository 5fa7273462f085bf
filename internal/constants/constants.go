package constants

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 15
	MaxPageSize     = 100
)

// Tag queries
const (
	DefaultPopularTagLimit = 10
	TagSearchLimit         = 5
)

// AI task drafting
const (
	MaxAIGeneratedTasks = 20
	MaxAIInputLength    = 4000
)

// Gin context keys
const (
	ContextKeyID        = "id"
	ContextKeyRequestID = "request_id"
)

// HeaderRequestID carries the request id in and out of the API.
const HeaderRequestID = "X-Request-ID"
