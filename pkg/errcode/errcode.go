package errcode

import "fmt"

// Error represents a business error
type Error struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("errcode: %d, msg: %s", e.Code, e.Msg)
}

// New creates a new error with code and message
func New(code int, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Wrap wraps an error with additional context
func (e *Error) Wrap(err error) *Error {
	if err == nil {
		return e
	}
	return &Error{
		Code: e.Code,
		Msg:  fmt.Sprintf("%s: %v", e.Msg, err),
	}
}

// Common error codes
var (
	// Success
	ErrSuccess = New(0, "success")

	// Common errors (1xxx)
	ErrInvalidParam    = New(1001, "invalid parameter")
	ErrInternalServer  = New(1002, "internal server error")
	ErrUnauthorized    = New(1003, "unauthorized")
	ErrForbidden       = New(1004, "forbidden")
	ErrNotFound        = New(1005, "not found")
	ErrTooManyRequests = New(1006, "too many requests")
	ErrNoPermission    = New(1007, "no permission to access this resource")

	// Auth errors (2xxx)
	ErrTokenInvalid  = New(2001, "token invalid")
	ErrTokenExpired  = New(2002, "token expired")
	ErrTokenMissing  = New(2003, "token missing")
	ErrTokenMismatch = New(2004, "token user mismatch")
	ErrLoginFailed   = New(2005, "login failed")
	ErrUserNotFound  = New(2006, "user not found")
	ErrUserExists    = New(2007, "user already exists")
	ErrPasswordWrong = New(2008, "password wrong")

	// Room/discussion errors (3xxx)
	ErrRoomNotFound       = New(3001, "room not found")
	ErrDiscussionNotFound = New(3002, "discussion not found")
	ErrEmptyContent       = New(3003, "content must not be empty")
	ErrReplyNotFound      = New(3004, "reply not found")
	ErrNotReplyAuthor     = New(3005, "not the reply author")
	ErrParentNotFound     = New(3006, "parent reply not found")
	ErrAliasAssignFailed  = New(3007, "alias assignment failed")

	// Direct message errors (4xxx)
	ErrConversationNotFound  = New(4001, "conversation not found")
	ErrNotConversationMember = New(4002, "not a conversation member")
	ErrRequestNotFound       = New(4003, "direct request not found")
	ErrRequestAlreadyDecided = New(4004, "direct request already decided")
	ErrRequestExists         = New(4005, "direct request already exists")
	ErrRequestSelf           = New(4006, "cannot request a conversation with yourself")
	ErrSendFailed            = New(4007, "message send failed")
	ErrMessageNotFound       = New(4008, "message not found")
	ErrNotMessageSender      = New(4009, "not the message sender")

	// Notification errors (5xxx)
	ErrNotificationNotFound = New(5001, "notification not found")

	// Realtime errors (6xxx)
	ErrConnOverLimit   = New(6001, "connection over max limit")
	ErrConnClosed      = New(6002, "connection closed")
	ErrInvalidProtocol = New(6003, "invalid protocol")
	ErrPushFailed      = New(6004, "push event failed")
	ErrBadSubscription = New(6005, "invalid subscription filter")
)
