package gateway

import "time"

// WebSocket protocol constants
const (
	// Request identifiers
	WSSubscribe   = 1001 // Subscribe to row changes
	WSUnsubscribe = 1002 // Remove a subscription
	WSPing        = 1003 // Application-level keepalive

	// Response identifiers
	WSPushEvent     = 2001 // Server push row event
	WSKickOnlineMsg = 2002 // Kick user offline
)

// Timeout constants
const (
	// WriteWait is time allowed to write a message to the peer
	WriteWait = 10 * time.Second

	// PongWait is time allowed to read the next pong message from the peer
	PongWait = 30 * time.Second

	// PingPeriod is period between pings. Must be less than PongWait
	PingPeriod = (PongWait * 9) / 10

	// MaxMessageSize is maximum message size allowed from peer
	MaxMessageSize = 51200
)

// Query parameter keys
const (
	QueryToken       = "token"
	QuerySendId      = "send_id"
	QueryPlatformId  = "platform_id"
	QueryOperationId = "operation_id"
)
