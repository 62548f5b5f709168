// Constants mirroring database enum columns.
// Values are stored as strings so audit rows (task_histories, activity_logs)
// stay readable without a join.
package model

// Role of a member within an organization or a project.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
	RoleViewer Role = "VIEWER"
)

// AppType marks what kind of surface an app tracks.
type AppType string

const (
	AppTypeWebsite     AppType = "WEBSITE"
	AppTypeMobile      AppType = "MOBILE"
	AppTypeAPI         AppType = "API"
	AppTypeBugTracking AppType = "BUG_TRACKING"
	AppTypeCustom      AppType = "CUSTOM"
)

// TaskType classifies the nature of a task.
type TaskType string

const (
	TaskTypeFeature     TaskType = "FEATURE"
	TaskTypeBug         TaskType = "BUG"
	TaskTypeImprovement TaskType = "IMPROVEMENT"
)

// TaskPriority is the urgency of a task or bug sheet.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

// TaskStatus is the workflow state of a task or bug sheet.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusInReview   TaskStatus = "IN_REVIEW"
	StatusDone       TaskStatus = "DONE"
)

// ActionKind classifies a mutation for the project activity feed.
// One activity row is written per mutation; the most specific kind wins.
type ActionKind string

const (
	ActionCreated         ActionKind = "CREATED"
	ActionUpdated         ActionKind = "UPDATED"
	ActionDeleted         ActionKind = "DELETED"
	ActionStatusChanged   ActionKind = "STATUS_CHANGED"
	ActionAssigned        ActionKind = "ASSIGNED"
	ActionUnassigned      ActionKind = "UNASSIGNED"
	ActionCommented       ActionKind = "COMMENTED"
	ActionPriorityChanged ActionKind = "PRIORITY_CHANGED"
)

// EntityType names the entity an activity row refers to.
type EntityType string

const (
	EntityTask     EntityType = "TASK"
	EntityBugSheet EntityType = "BUGSHEET"
	EntityProject  EntityType = "PROJECT"
	EntityModule   EntityType = "MODULE"
)

// NotificationType marks which dispatch rule produced a notification.
type NotificationType string

const (
	NotifyMention      NotificationType = "MENTION"
	NotifyAssignment   NotificationType = "ASSIGNMENT"
	NotifyStatusChange NotificationType = "STATUS_CHANGE"
	NotifyComment      NotificationType = "COMMENT"
)

// ViewType distinguishes what a user visit row points at.
type ViewType string

const (
	ViewProject ViewType = "PROJECT"
	ViewApp     ViewType = "APP"
)

// CronJobType selects the function bound to a scheduled job.
type CronJobType string

const (
	CronJobTypeRetention CronJobType = "RETENTION"
)
