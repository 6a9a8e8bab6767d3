package sdk

// Realtime tables exposed over the row feed
const (
	TableMessages       = "messages"
	TableDirectMessages = "direct_messages"
	TableNotifications  = "notifications"
)

// Realtime event types
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// Request status values for DM requests
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusDeclined = "declined"
	RequestStatusBlocked  = "blocked"
	RequestStatusCanceled = "canceled"
)

// Notification types
const (
	NotifyReplyInDiscussion = "reply_in_discussion"
	NotifyReplyToYou        = "reply_to_you"
)

// Platform Ids
const (
	PlatformIdUnknown = 0
	PlatformIdIOS     = 1
	PlatformIdAndroid = 2
	PlatformIdWindows = 3
	PlatformIdMacOS   = 4
	PlatformIdWeb     = 5
)

// MaxBadgeCount caps displayed unread counters; larger values render
// as "99+"
const MaxBadgeCount = 99
