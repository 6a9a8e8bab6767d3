package constant

// Direct request status
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

// Activity types
const (
	ActivityPostCreated  = "post_created"
	ActivityReplyCreated = "reply_created"
	ActivityDMSent       = "dm_sent"
)

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

// Platform Ids
const (
	PlatformIdUnknown = 0
	PlatformIdIOS     = 1
	PlatformIdAndroid = 2
	PlatformIdWindows = 3
	PlatformIdMacOS   = 4
	PlatformIdWeb     = 5
)

// PlatformIdToName converts platform Id to name
func PlatformIdToName(platformId int) string {
	switch platformId {
	case PlatformIdIOS:
		return "iOS"
	case PlatformIdAndroid:
		return "Android"
	case PlatformIdWindows:
		return "Windows"
	case PlatformIdMacOS:
		return "macOS"
	case PlatformIdWeb:
		return "Web"
	default:
		return "Unknown"
	}
}

// Redis key patterns (without prefix, use RedisKey() to get full key)
const (
	redisKeyToken       = "token:%s:%d"     // token:{user_id}:{platform_id}
	redisKeyOnline      = "online:%s"       // online:{user_id}
	redisKeyOnlineConns = "online:conns:%s" // online:conns:{user_id}
	redisKeyAliasSeq    = "alias:seq:%s"    // alias:seq:{discussion_id}
	redisKeyDMUnread    = "dm:unread:%s"    // dm:unread:{user_id}
)

// redisKeyPrefix is the global prefix for all Redis keys
var redisKeyPrefix = "silo:"

// InitRedisKeyPrefix initializes the Redis key prefix from config
func InitRedisKeyPrefix(prefix string) {
	if prefix != "" {
		redisKeyPrefix = prefix
	}
}

// GetRedisKeyPrefix returns the current Redis key prefix
func GetRedisKeyPrefix() string {
	return redisKeyPrefix
}

// Redis key getters with prefix
func RedisKeyToken() string       { return redisKeyPrefix + redisKeyToken }
func RedisKeyOnline() string      { return redisKeyPrefix + redisKeyOnline }
func RedisKeyOnlineConns() string { return redisKeyPrefix + redisKeyOnlineConns }
func RedisKeyAliasSeq() string    { return redisKeyPrefix + redisKeyAliasSeq }
func RedisKeyDMUnread() string    { return redisKeyPrefix + redisKeyDMUnread }
