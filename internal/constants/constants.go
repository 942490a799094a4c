package constants

// Context keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUser      = "user"
	ContextKeyRequestID = "request_id"
	ContextKeyTaskID    = "task_id"
)

// Pagination
const (
	DefaultPage     = 1
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// Validation limits
const (
	MinPasswordLength    = 6
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
	MaxNameLength        = 100
)

// AI
const (
	MaxAIGeneratedTasks = 20
)

const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
	RequestIDHeader     = "X-Request-ID"
)
