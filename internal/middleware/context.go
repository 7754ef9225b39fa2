package middleware

// Context keys used to store session and tracing metadata.
const (
	ContextKeyOperatorID   = "operator_id"
	ContextKeyOperatorName = "operator_name"
	ContextKeyOperatorRole = "operator_role"
	ContextKeyRequestID    = "request_id"
)

// SessionCookieName carries the operator token for server-rendered admin pages.
const SessionCookieName = "directory_session"
