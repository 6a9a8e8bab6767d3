package gateway

import (
	"encoding/json"
	"strings"
)

// WSRequest represents a WebSocket request frame
type WSRequest struct {
	ReqIdentifier int32  `json:"req_identifier"` // Request type
	MsgIncr       string `json:"msg_incr"`       // Client message counter/trace Id
	OperationId   string `json:"operation_id"`   // Operation Id
	SendId        string `json:"send_id"`        // Sender user Id
	Data          []byte `json:"data"`           // Business data
}

// WSResponse represents a WebSocket response frame
type WSResponse struct {
	ReqIdentifier int32  `json:"req_identifier"` // Request type (echo back)
	MsgIncr       string `json:"msg_incr"`       // Message counter (echo back)
	OperationId   string `json:"operation_id"`   // Operation Id (echo back)
	ErrCode       int    `json:"err_code"`       // Error code, 0 = success
	ErrMsg        string `json:"err_msg"`        // Error message
	Data          []byte `json:"data"`           // Response data
}

// SubscribeReq asks for row-change events on one table under a filter.
// Filter uses the "column=eq.value" form; empty means all rows of the table.
type SubscribeReq struct {
	Table  string   `json:"table"`
	Filter string   `json:"filter,omitempty"`
	Events []string `json:"events,omitempty"` // defaults to all event types
}

// SubscribeResp confirms a subscription
type SubscribeResp struct {
	SubKey string `json:"sub_key"`
}

// UnsubscribeReq removes a previous subscription
type UnsubscribeReq struct {
	Table  string `json:"table"`
	Filter string `json:"filter,omitempty"`
}

// RowEvent is one pushed row change. Row carries the full row as JSON;
// consumers decode and validate it at their own boundary.
type RowEvent struct {
	Table    string          `json:"table"`
	Type     string          `json:"type"` // INSERT / UPDATE / DELETE
	Row      json.RawMessage `json:"row"`
	CommitAt int64           `json:"commit_at"`
}

// Filter is a parsed "column=eq.value" expression. The zero value
// matches every row of the table.
type Filter struct {
	Column string
	Value  string
}

// ParseFilter parses a filter expression. Empty input yields the
// match-all filter; a malformed expression returns ok=false.
func ParseFilter(s string) (Filter, bool) {
	if s == "" {
		return Filter{}, true
	}
	idx := strings.Index(s, "=eq.")
	if idx <= 0 {
		return Filter{}, false
	}
	col := s[:idx]
	val := s[idx+len("=eq."):]
	if val == "" {
		return Filter{}, false
	}
	return Filter{Column: col, Value: val}, true
}

// Key returns the canonical index key for subscription matching
func (f Filter) Key(table string) string {
	if f.Column == "" {
		return table + "|*"
	}
	return table + "|" + f.Column + "=" + f.Value
}
