package gateway

import "errors"

// Gateway errors
var (
	ErrConnClosed       = errors.New("connection closed")
	ErrWriteChannelFull = errors.New("write channel full")
	ErrInvalidProtocol  = errors.New("invalid protocol")
	ErrUserIdMismatch   = errors.New("user Id mismatch")
	ErrBadSubscription  = errors.New("bad subscription")
	ErrSubLimit         = errors.New("subscription limit reached")
	ErrForbiddenTable   = errors.New("table not subscribable")
	ErrPanic            = errors.New("panic error")
)
