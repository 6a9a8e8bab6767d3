package sdk

import (
	"errors"
	"fmt"
)

// Error represents an API error
type Error struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("code: %d, msg: %s", e.Code, e.Msg)
}

// NewError creates a new error
func NewError(code int, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Common error codes
const (
	// Success
	CodeSuccess = 0

	// Common errors (1xxx)
	CodeInvalidParam    = 1001
	CodeInternalServer  = 1002
	CodeUnauthorized    = 1003
	CodeForbidden       = 1004
	CodeNotFound        = 1005
	CodeTooManyRequests = 1006
	CodeNoPermission    = 1007

	// Auth errors (2xxx)
	CodeTokenInvalid  = 2001
	CodeTokenExpired  = 2002
	CodeTokenMissing  = 2003
	CodeTokenMismatch = 2004
	CodeLoginFailed   = 2005
	CodeUserNotFound  = 2006
	CodeUserExists    = 2007
	CodePasswordWrong = 2008

	// Room/discussion errors (3xxx)
	CodeRoomNotFound       = 3001
	CodeDiscussionNotFound = 3002
	CodeEmptyContent       = 3003
	CodeReplyNotFound      = 3004
	CodeNotReplyAuthor     = 3005
	CodeParentNotFound     = 3006
	CodeAliasAssignFailed  = 3007

	// Direct message errors (4xxx)
	CodeConversationNotFound  = 4001
	CodeNotConversationMember = 4002
	CodeRequestNotFound       = 4003
	CodeRequestAlreadyDecided = 4004
	CodeRequestExists         = 4005
	CodeRequestSelf           = 4006
	CodeSendFailed            = 4007
	CodeMessageNotFound       = 4008
	CodeNotMessageSender      = 4009

	// Notification errors (5xxx)
	CodeNotificationNotFound = 5001

	// Realtime errors (6xxx)
	CodeConnOverLimit   = 6001
	CodeConnClosed      = 6002
	CodeInvalidProtocol = 6003
	CodePushFailed      = 6004
	CodeBadSubscription = 6005
)

// Predefined errors
var (
	ErrInvalidParam   = NewError(CodeInvalidParam, "invalid parameter")
	ErrInternalServer = NewError(CodeInternalServer, "internal server error")
	ErrUnauthorized   = NewError(CodeUnauthorized, "unauthorized")
	ErrNotFound       = NewError(CodeNotFound, "not found")

	ErrEmptyContent  = NewError(CodeEmptyContent, "content must not be empty")
	ErrReplyNotFound = NewError(CodeReplyNotFound, "reply not found")

	ErrNotConversationMember = NewError(CodeNotConversationMember, "not a conversation member")
	ErrMessageNotFound       = NewError(CodeMessageNotFound, "message not found")
)

// Client-side state errors
var (
	// ErrSendInFlight rejects a second submit while one is pending
	ErrSendInFlight = errors.New("a send is already in flight")
	// ErrUnknownLocalId means a reconcile or rollback referenced a
	// placeholder the store does not hold
	ErrUnknownLocalId = errors.New("unknown local id")
	// ErrFeedClosed means the realtime feed was closed
	ErrFeedClosed = errors.New("feed closed")
	// ErrBadRowEvent means a realtime frame failed validation
	ErrBadRowEvent = errors.New("invalid row event")
)

// IsNotFound reports whether err is the API not-found error
func IsNotFound(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == CodeNotFound
	}
	return false
}
