package constants

const (
	// ContextKeyUserID is the key used for the authenticated user in both the
	// session and the gin context.
	ContextKeyUserID = "user_id"
	// ContextKeyTask holds the task loaded by RequireTaskAccess.
	ContextKeyTask = "task"
	// ContextKeyTaskPermissions holds the gate result computed by RequireTaskAccess.
	ContextKeyTaskPermissions = "task_permissions"
	// ContextKeyWorkspace and ContextKeyWorkspaceMember are set by RequireWorkspaceAccess.
	ContextKeyWorkspace       = "workspace"
	ContextKeyWorkspaceMember = "workspace_member"
	// ContextKeyRequestID is set by the RequestID middleware.
	ContextKeyRequestID = "request_id"

	SessionCookieName = "taskquest_session"
	HeaderRequestID   = "X-Request-ID"

	MinPasswordLength = 8
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MaxEmailLength    = 150

	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	MaxTaskNameLength    = 150
	MaxAIGeneratedTasks  = 20
	WorkspaceCodeLength  = 25
	MaxUserSearchResults = 50
	MaxRecentMessages    = 100
)
