package gateway

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/mbeoliero/kit/log"
)

// Client represents a connected WebSocket client
type Client struct {
	mu         sync.Mutex
	conn       ClientConn
	UserId     string
	PlatformId int
	Token      string
	ConnId     string
	server     *WsServer
	closed     atomic.Bool
	closedErr  error
	ctx        context.Context
	cancel     context.CancelFunc

	subsMu sync.RWMutex
	subs   map[string]map[string]bool // subKey -> allowed event types (empty = all)
}

// NewClient creates a new client
func NewClient(conn ClientConn, userId string, platformId int, token, connId string, server *WsServer) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		conn:       conn,
		UserId:     userId,
		PlatformId: platformId,
		Token:      token,
		ConnId:     connId,
		server:     server,
		ctx:        ctx,
		cancel:     cancel,
		subs:       make(map[string]map[string]bool),
	}
}

// readLoop continuously reads messages from the connection
func (c *Client) readLoop() {
	defer func() {
		if r := recover(); r != nil {
			c.closedErr = ErrPanic
			log.CtxError(c.ctx, "client read loop panic: user_id=%s, error=%v", c.UserId, r)
		}
		c.close()
	}()

	for {
		message, err := c.conn.ReadMessage()
		if err != nil {
			log.CtxDebug(c.ctx, "read message error: user_id=%s, error=%v", c.UserId, err)
			c.closedErr = err
			return
		}

		if c.closed.Load() {
			c.closedErr = ErrConnClosed
			return
		}

		if err := c.handleMessage(message); err != nil {
			log.CtxWarn(c.ctx, "handle message error: user_id=%s, error=%v", c.UserId, err)
			c.closedErr = err
			return
		}
	}
}

// handleMessage handles a single incoming message
func (c *Client) handleMessage(message []byte) error {
	var req WSRequest
	if err := json.Unmarshal(message, &req); err != nil {
		return c.replyError(&req, ErrInvalidProtocol)
	}

	// Validate sender Id matches authenticated user
	if req.SendId != "" && req.SendId != c.UserId {
		return c.replyError(&req, ErrUserIdMismatch)
	}

	log.CtxDebug(c.ctx, "received message: req_identifier=%d, user_id=%s", req.ReqIdentifier, c.UserId)

	var resp []byte
	var err error

	switch req.ReqIdentifier {
	case WSSubscribe:
		resp, err = c.server.HandleSubscribe(c.ctx, c, &req)
	case WSUnsubscribe:
		resp, err = c.server.HandleUnsubscribe(c.ctx, c, &req)
	case WSPing:
		c.server.subMap.RefreshOnlineStatus(c.ctx, c.UserId)
	default:
		return c.replyError(&req, ErrInvalidProtocol)
	}

	return c.reply(&req, err, resp)
}

// reply sends a response to the client
func (c *Client) reply(req *WSRequest, err error, data []byte) error {
	resp := WSResponse{
		ReqIdentifier: req.ReqIdentifier,
		MsgIncr:       req.MsgIncr,
		OperationId:   req.OperationId,
		Data:          data,
	}

	if err != nil {
		resp.ErrCode = 1
		resp.ErrMsg = err.Error()
	}

	return c.writeResponse(resp)
}

// replyError sends an error response
func (c *Client) replyError(req *WSRequest, err error) error {
	resp := WSResponse{
		ReqIdentifier: req.ReqIdentifier,
		MsgIncr:       req.MsgIncr,
		OperationId:   req.OperationId,
		ErrCode:       1,
		ErrMsg:        err.Error(),
	}
	return c.writeResponse(resp)
}

// writeResponse writes a response to the connection
func (c *Client) writeResponse(resp WSResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return nil
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	return c.conn.WriteMessage(data)
}

// AddSub records a subscription on this connection. Returns false when
// the per-connection limit is reached.
func (c *Client) AddSub(key string, events []string, limit int) bool {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	if _, exists := c.subs[key]; !exists && limit > 0 && len(c.subs) >= limit {
		return false
	}

	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[e] = true
	}
	c.subs[key] = allowed
	return true
}

// RemoveSub removes a subscription. Returns true if it existed.
func (c *Client) RemoveSub(key string) bool {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	_, exists := c.subs[key]
	delete(c.subs, key)
	return exists
}

// SubKeys returns a snapshot of this connection's subscription keys
func (c *Client) SubKeys() map[string]struct{} {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()

	keys := make(map[string]struct{}, len(c.subs))
	for k := range c.subs {
		keys[k] = struct{}{}
	}
	return keys
}

// wantsEvent reports whether the subscription under key accepts the event type
func (c *Client) wantsEvent(key, eventType string) bool {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()

	allowed, exists := c.subs[key]
	if !exists {
		return false
	}
	return len(allowed) == 0 || allowed[eventType]
}

// PushEvent pushes a row event to the client if the subscription under
// key accepts its type
func (c *Client) PushEvent(ctx context.Context, key string, ev *RowEvent) error {
	if c.closed.Load() {
		return ErrConnClosed
	}
	if !c.wantsEvent(key, ev.Type) {
		return nil
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	resp := WSResponse{
		ReqIdentifier: WSPushEvent,
		Data:          data,
	}

	return c.writeResponse(resp)
}

// KickOnline sends kick message and closes connection
func (c *Client) KickOnline() error {
	resp := WSResponse{
		ReqIdentifier: WSKickOnlineMsg,
	}
	c.writeResponse(resp)
	return c.Close()
}

// Close closes the client connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return nil
	}

	c.closed.Store(true)
	c.cancel()
	return c.conn.Close()
}

// close handles cleanup when connection is closed
func (c *Client) close() {
	c.Close()
	c.server.UnregisterClient(c)
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	return c.closed.Load()
}
