package handler

const (
	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"

	// LocalCurrentUser is the locals key carrying the authenticated user.
	LocalCurrentUser = "CurrentUser"

	// LocalTaskGroup is the locals key carrying the path-resolved task group.
	LocalTaskGroup = "taskGroup"
	// LocalTask is the locals key carrying the path-resolved task.
	LocalTask = "task"
	// LocalUser is the locals key carrying the path-resolved user.
	LocalUser = "user"

	// ParamTaskGroupID is the route parameter name for task group ids.
	ParamTaskGroupID = "task_group_id"
	// ParamTaskID is the route parameter name for task ids.
	ParamTaskID = "task_id"
	// ParamUserID is the route parameter name for user ids.
	ParamUserID = "user_id"
)
