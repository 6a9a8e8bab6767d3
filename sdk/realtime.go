package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket protocol identifiers, mirroring the gateway
const (
	wsSubscribe   = 1001
	wsUnsubscribe = 1002
	wsPing        = 1003

	wsPushEvent     = 2001
	wsKickOnlineMsg = 2002
)

const (
	defaultCallTimeout  = 10 * time.Second
	defaultPingInterval = 25 * time.Second
)

// EventHandler consumes one pushed row event. Delivery is at least
// once and unordered; handlers must dedup on the row id.
type EventHandler func(ev *RowEvent)

type wsRequest struct {
	ReqIdentifier int32  `json:"req_identifier"`
	MsgIncr       string `json:"msg_incr"`
	OperationId   string `json:"operation_id"`
	SendId        string `json:"send_id"`
	Data          []byte `json:"data"`
}

type wsResponse struct {
	ReqIdentifier int32  `json:"req_identifier"`
	MsgIncr       string `json:"msg_incr"`
	OperationId   string `json:"operation_id"`
	ErrCode       int    `json:"err_code"`
	ErrMsg        string `json:"err_msg"`
	Data          []byte `json:"data"`
}

type subscribeReq struct {
	Table  string   `json:"table"`
	Filter string   `json:"filter,omitempty"`
	Events []string `json:"events,omitempty"`
}

type unsubscribeReq struct {
	Table  string `json:"table"`
	Filter string `json:"filter,omitempty"`
}

type subscription struct {
	id      int64
	table   string
	filter  string
	column  string
	value   string
	handler EventHandler
}

// matches reports whether the subscription's filter accepts the row
func (s *subscription) matches(ev *RowEvent) bool {
	if s.table != ev.Table {
		return false
	}
	if s.column == "" {
		return true
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(ev.Row, &m); err != nil {
		return false
	}
	raw, ok := m[s.column]
	if !ok {
		return false
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return false
	}
	return fmt.Sprint(v) == s.value
}

// Feed is a realtime row-change feed over one WebSocket connection.
// Subscriptions are per table with an optional "column=eq.value" filter.
type Feed struct {
	conn       *websocket.Conn
	sendId     string
	platformId int

	writeMu sync.Mutex

	mu      sync.Mutex
	subs    map[int64]*subscription
	pending map[string]chan *wsResponse
	nextSub int64

	msgIncr atomic.Int64

	closeOnce sync.Once
	closedCh  chan struct{}

	errMu sync.Mutex
	err   error

	callTimeout  time.Duration
	pingInterval time.Duration
	onKick       func()
	onError      func(error)
}

// FeedOption configures a Feed
type FeedOption func(*Feed)

// WithCallTimeout bounds subscribe/unsubscribe round trips
func WithCallTimeout(d time.Duration) FeedOption {
	return func(f *Feed) {
		if d > 0 {
			f.callTimeout = d
		}
	}
}

// WithPingInterval overrides the keepalive interval
func WithPingInterval(d time.Duration) FeedOption {
	return func(f *Feed) {
		if d > 0 {
			f.pingInterval = d
		}
	}
}

// WithOnKick sets a callback invoked when the server kicks this connection
func WithOnKick(fn func()) FeedOption {
	return func(f *Feed) {
		f.onKick = fn
	}
}

// WithOnError sets a callback for asynchronous feed errors, such as
// frames that fail validation
func WithOnError(fn func(error)) FeedOption {
	return func(f *Feed) {
		f.onError = fn
	}
}

// DialFeed connects the realtime feed. wsURL is the gateway endpoint,
// e.g. "ws://host:port/ws".
func DialFeed(ctx context.Context, wsURL, token, sendId string, platformId int, opts ...FeedOption) (*Feed, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	q.Set("send_id", sendId)
	q.Set("platform_id", strconv.Itoa(platformId))
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial feed: %w", err)
	}

	f := &Feed{
		conn:         conn,
		sendId:       sendId,
		platformId:   platformId,
		subs:         make(map[int64]*subscription),
		pending:      make(map[string]chan *wsResponse),
		closedCh:     make(chan struct{}),
		callTimeout:  defaultCallTimeout,
		pingInterval: defaultPingInterval,
	}
	for _, opt := range opts {
		opt(f)
	}

	go f.readLoop()
	go f.pingLoop()

	return f, nil
}

// Subscribe registers a handler for row changes on one table. filter is
// a "column=eq.value" expression or empty for all rows; events limits
// the event types, empty means all. The returned cancel function removes
// the handler and, when it was the last one for the table and filter,
// unsubscribes from the server.
func (f *Feed) Subscribe(ctx context.Context, table, filter string, events []string, handler EventHandler) (func(), error) {
	if handler == nil {
		return nil, fmt.Errorf("handler must not be nil")
	}
	column, value, ok := splitFilter(filter)
	if !ok {
		return nil, fmt.Errorf("invalid filter %q", filter)
	}

	data, err := json.Marshal(&subscribeReq{Table: table, Filter: filter, Events: events})
	if err != nil {
		return nil, err
	}

	resp, err := f.call(ctx, wsSubscribe, data)
	if err != nil {
		return nil, err
	}
	if resp.ErrCode != 0 {
		return nil, fmt.Errorf("subscribe rejected: %s", resp.ErrMsg)
	}

	f.mu.Lock()
	f.nextSub++
	sub := &subscription{
		id:      f.nextSub,
		table:   table,
		filter:  filter,
		column:  column,
		value:   value,
		handler: handler,
	}
	f.subs[sub.id] = sub
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		delete(f.subs, sub.id)
		last := true
		for _, other := range f.subs {
			if other.table == sub.table && other.filter == sub.filter {
				last = false
				break
			}
		}
		f.mu.Unlock()

		if !last {
			return
		}
		data, err := json.Marshal(&unsubscribeReq{Table: sub.table, Filter: sub.filter})
		if err != nil {
			return
		}
		unsubCtx, done := context.WithTimeout(context.Background(), f.callTimeout)
		defer done()
		f.call(unsubCtx, wsUnsubscribe, data)
	}
	return cancel, nil
}

// call sends one request frame and waits for the matching response
func (f *Feed) call(ctx context.Context, reqIdentifier int32, data []byte) (*wsResponse, error) {
	select {
	case <-f.closedCh:
		return nil, ErrFeedClosed
	default:
	}

	msgIncr := strconv.FormatInt(f.msgIncr.Add(1), 10)
	ch := make(chan *wsResponse, 1)

	f.mu.Lock()
	f.pending[msgIncr] = ch
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		delete(f.pending, msgIncr)
		f.mu.Unlock()
	}()

	req := &wsRequest{
		ReqIdentifier: reqIdentifier,
		MsgIncr:       msgIncr,
		SendId:        f.sendId,
		Data:          data,
	}
	if err := f.writeFrame(req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.callTimeout)
	defer cancel()

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.closedCh:
		return nil, ErrFeedClosed
	}
}

// writeFrame serializes and writes one request frame
func (f *Feed) writeFrame(req *wsRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	f.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return f.conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop reads frames until the connection fails or the feed closes
func (f *Feed) readLoop() {
	for {
		_, message, err := f.conn.ReadMessage()
		if err != nil {
			f.fail(err)
			return
		}

		var resp wsResponse
		if err := json.Unmarshal(message, &resp); err != nil {
			f.reportError(fmt.Errorf("%w: %v", ErrBadRowEvent, err))
			continue
		}

		switch resp.ReqIdentifier {
		case wsPushEvent:
			f.dispatch(resp.Data)
		case wsKickOnlineMsg:
			if f.onKick != nil {
				f.onKick()
			}
			f.fail(ErrFeedClosed)
			return
		default:
			f.mu.Lock()
			ch, ok := f.pending[resp.MsgIncr]
			f.mu.Unlock()
			if ok {
				select {
				case ch <- &resp:
				default:
				}
			}
		}
	}
}

// dispatch validates a pushed event and fans it out to matching handlers
func (f *Feed) dispatch(data []byte) {
	var ev RowEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		f.reportError(fmt.Errorf("%w: %v", ErrBadRowEvent, err))
		return
	}
	if ev.Table == "" || ev.Type == "" || len(ev.Row) == 0 {
		f.reportError(fmt.Errorf("%w: missing table, type or row", ErrBadRowEvent))
		return
	}

	f.mu.Lock()
	handlers := make([]EventHandler, 0, len(f.subs))
	for _, sub := range f.subs {
		if sub.matches(&ev) {
			handlers = append(handlers, sub.handler)
		}
	}
	f.mu.Unlock()

	for _, h := range handlers {
		h(&ev)
	}
}

// pingLoop keeps the server-side online status fresh
func (f *Feed) pingLoop() {
	ticker := time.NewTicker(f.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			req := &wsRequest{
				ReqIdentifier: wsPing,
				MsgIncr:       strconv.FormatInt(f.msgIncr.Add(1), 10),
				SendId:        f.sendId,
			}
			if err := f.writeFrame(req); err != nil {
				return
			}
		case <-f.closedCh:
			return
		}
	}
}

// fail records the terminal error and closes the feed
func (f *Feed) fail(err error) {
	f.errMu.Lock()
	if f.err == nil {
		f.err = err
	}
	f.errMu.Unlock()
	f.Close()
}

// reportError forwards an asynchronous error to the configured callback
func (f *Feed) reportError(err error) {
	if f.onError != nil {
		f.onError(err)
	}
}

// Err returns the terminal feed error, if any
func (f *Feed) Err() error {
	f.errMu.Lock()
	defer f.errMu.Unlock()
	return f.err
}

// Close shuts the feed down and fails pending calls
func (f *Feed) Close() error {
	f.closeOnce.Do(func() {
		close(f.closedCh)
		f.conn.Close()
	})
	return nil
}

// splitFilter parses a "column=eq.value" expression. Empty input means
// match all rows.
func splitFilter(s string) (column, value string, ok bool) {
	if s == "" {
		return "", "", true
	}
	idx := strings.Index(s, "=eq.")
	if idx <= 0 {
		return "", "", false
	}
	value = s[idx+len("=eq."):]
	if value == "" {
		return "", "", false
	}
	return s[:idx], value, true
}
