package gateway

import (
	"context"
	"encoding/json"
	"strconv"
	"sync/atomic"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/elyaddev/Silo/internal/config"
	"github.com/elyaddev/Silo/internal/entity"
	"github.com/elyaddev/Silo/pkg/constant"
	"github.com/elyaddev/Silo/pkg/jwt"
	"github.com/google/uuid"
	"github.com/hertz-contrib/websocket"
	"github.com/mbeoliero/kit/log"
	"github.com/redis/go-redis/v9"
)

// AccessChecker authorizes subscriptions. Implementations consult the
// business layer; the gateway itself only knows the table whitelist.
type AccessChecker interface {
	CanSubscribe(ctx context.Context, userId, table string, f Filter) error
}

// WsServer is the WebSocket row-feed server
type WsServer struct {
	cfg            *config.Config
	subMap         *SubMap
	registerChan   chan *Client
	unregisterChan chan *Client
	pushChan       chan *PushTask
	access         AccessChecker
	onlineUserNum  atomic.Int64
	onlineConnNum  atomic.Int64
	maxConnNum     int64
}

// PushTask carries one row event and the subscription keys it matches
type PushTask struct {
	Keys  []string
	Event *RowEvent
}

// NewWsServer creates a new WebSocket server
func NewWsServer(cfg *config.Config, rdb *redis.Client, access AccessChecker) *WsServer {
	return &WsServer{
		cfg:            cfg,
		subMap:         NewSubMap(rdb),
		registerChan:   make(chan *Client, 1000),
		unregisterChan: make(chan *Client, 1000),
		pushChan:       make(chan *PushTask, cfg.Realtime.PushChannelSize),
		access:         access,
		maxConnNum:     cfg.Realtime.MaxConnNum,
	}
}

// Run starts the WebSocket server
func (s *WsServer) Run(ctx context.Context) {
	// Start event loop
	go s.eventLoop(ctx)
	// Start push workers
	workerNum := s.cfg.Realtime.PushWorkerNum
	if workerNum <= 0 {
		workerNum = 10
	}
	for i := 0; i < workerNum; i++ {
		go s.pushLoop(ctx)
	}
	log.Info("started %d push workers", workerNum)
}

// eventLoop handles client registration and unregistration
func (s *WsServer) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-s.registerChan:
			s.registerClient(ctx, client)
		case client := <-s.unregisterChan:
			s.unregisterClient(ctx, client)
		}
	}
}

// pushLoop handles async event pushing
func (s *WsServer) pushLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-s.pushChan:
			s.processPushTask(ctx, task)
		}
	}
}

// processPushTask fans one event out to every matching subscriber.
// Delivery is at-least-once: a connection subscribed under several
// matching keys may receive the event more than once, and consumers
// dedup on the row identifier.
func (s *WsServer) processPushTask(ctx context.Context, task *PushTask) {
	for _, key := range task.Keys {
		for _, client := range s.subMap.Subscribers(key) {
			if err := client.PushEvent(ctx, key, task.Event); err != nil {
				log.CtxDebug(ctx, "push event failed: user_id=%s, conn_id=%s, key=%s, error=%v",
					client.UserId, client.ConnId, key, err)
			}
		}
	}
}

// registerClient registers a client
func (s *WsServer) registerClient(ctx context.Context, client *Client) {
	_, exists := s.subMap.GetByUser(client.UserId)
	if !exists {
		s.onlineUserNum.Add(1)
	}

	s.subMap.Register(ctx, client)
	s.onlineConnNum.Add(1)

	log.CtxInfo(ctx, "client registered: user_id=%s, platform_id=%d, conn_id=%s, online_users=%d, online_conns=%d",
		client.UserId, client.PlatformId, client.ConnId, s.onlineUserNum.Load(), s.onlineConnNum.Load())
}

// unregisterClient unregisters a client
func (s *WsServer) unregisterClient(ctx context.Context, client *Client) {
	isUserOffline := s.subMap.Unregister(ctx, client)
	s.onlineConnNum.Add(-1)

	if isUserOffline {
		s.onlineUserNum.Add(-1)
	}

	log.CtxInfo(ctx, "client unregistered: user_id=%s, conn_id=%s, user_offline=%v, online_users=%d, online_conns=%d",
		client.UserId, client.ConnId, isUserOffline, s.onlineUserNum.Load(), s.onlineConnNum.Load())
}

// UnregisterClient queues client for unregistration
func (s *WsServer) UnregisterClient(client *Client) {
	select {
	case s.unregisterChan <- client:
	default:
		log.Warn("unregister channel full: user_id=%s", client.UserId)
	}
}

// HandleHertzConnection handles a WebSocket connection from Hertz
func (s *WsServer) HandleHertzConnection(ctx context.Context, c *app.RequestContext, upgrader *websocket.HertzUpgrader) {
	// Check connection limit
	if s.onlineConnNum.Load() >= s.maxConnNum {
		c.String(503, "connection limit exceeded")
		return
	}

	// Parse query parameters
	token := string(c.Query(QueryToken))
	sendId := string(c.Query(QuerySendId))
	platformIdStr := string(c.Query(QueryPlatformId))

	if token == "" || sendId == "" {
		c.String(400, "missing required parameters")
		return
	}

	platformId := 0
	if platformIdStr != "" {
		platformId, _ = strconv.Atoi(platformIdStr)
	}

	// Validate token
	claims, err := jwt.ValidateToken(token, s.cfg.JWT.Secret, sendId, platformId)
	if err != nil {
		log.CtxDebug(ctx, "token validation failed: send_id=%s, error=%v", sendId, err)
		c.String(401, "unauthorized")
		return
	}

	err = upgrader.Upgrade(c, func(conn *websocket.Conn) {
		connId := uuid.New().String()
		wsConn := NewHertzClientConn(conn, s.cfg.Realtime.MaxMessageSize, s.cfg.Realtime.PongWait, s.cfg.Realtime.PingPeriod)
		client := NewClient(wsConn, claims.UserId, claims.PlatformId, token, connId, s)

		// Register client
		s.registerChan <- client

		// Blocking message loop
		client.readLoop()
	})

	if err != nil {
		log.CtxWarn(ctx, "websocket upgrade failed: %v", err)
		return
	}
}

// PublishRow queues a row change for fan-out. keyCols names the columns
// whose values route the event to filtered subscriptions, e.g.
// {"discussion_id": "..."} for a message insert.
func (s *WsServer) PublishRow(table, eventType string, row interface{}, keyCols map[string]string) {
	data, err := json.Marshal(row)
	if err != nil {
		log.Warn("marshal row failed: table=%s, error=%v", table, err)
		return
	}

	keys := make([]string, 0, len(keyCols)+1)
	keys = append(keys, Filter{}.Key(table))
	for col, val := range keyCols {
		keys = append(keys, Filter{Column: col, Value: val}.Key(table))
	}

	task := &PushTask{
		Keys: keys,
		Event: &RowEvent{
			Table:    table,
			Type:     eventType,
			Row:      data,
			CommitAt: entity.NowUnixMilli(),
		},
	}

	select {
	case s.pushChan <- task:
		// Successfully queued
	default:
		// Queue full, log warning
		log.Warn("push channel full, event dropped: table=%s, type=%s", table, eventType)
	}
}

// KickUser closes every connection of a user (logout, ban)
func (s *WsServer) KickUser(userId string) {
	clients, ok := s.subMap.GetByUser(userId)
	if !ok {
		return
	}
	for _, client := range clients {
		client.KickOnline()
	}
}

// IsOnline reports whether a user has at least one live connection
func (s *WsServer) IsOnline(ctx context.Context, userId string) bool {
	return s.subMap.IsOnline(ctx, userId)
}

// GetOnlineUserCount returns online user count
func (s *WsServer) GetOnlineUserCount() int64 {
	return s.onlineUserNum.Load()
}

// GetOnlineConnCount returns online connection count
func (s *WsServer) GetOnlineConnCount() int64 {
	return s.onlineConnNum.Load()
}

// ========== Subscription Handlers ==========

// subscribableTables is the whitelist exposed over the row feed
var subscribableTables = map[string]bool{
	constant.TableMessages:       true,
	constant.TableDirectMessages: true,
	constant.TableNotifications:  true,
}

// HandleSubscribe handles a subscribe request
func (s *WsServer) HandleSubscribe(ctx context.Context, client *Client, req *WSRequest) ([]byte, error) {
	var subReq SubscribeReq
	if err := json.Unmarshal(req.Data, &subReq); err != nil {
		return nil, ErrInvalidProtocol
	}

	if !subscribableTables[subReq.Table] {
		return nil, ErrForbiddenTable
	}

	filter, ok := ParseFilter(subReq.Filter)
	if !ok {
		return nil, ErrBadSubscription
	}

	if s.access != nil {
		if err := s.access.CanSubscribe(ctx, client.UserId, subReq.Table, filter); err != nil {
			return nil, err
		}
	}

	key := filter.Key(subReq.Table)
	if !client.AddSub(key, subReq.Events, s.cfg.Realtime.MaxSubsPerConn) {
		return nil, ErrSubLimit
	}
	s.subMap.Subscribe(key, client)

	log.CtxInfo(ctx, "subscribed: user_id=%s, conn_id=%s, key=%s", client.UserId, client.ConnId, key)

	return json.Marshal(SubscribeResp{SubKey: key})
}

// HandleUnsubscribe handles an unsubscribe request
func (s *WsServer) HandleUnsubscribe(ctx context.Context, client *Client, req *WSRequest) ([]byte, error) {
	var unsubReq UnsubscribeReq
	if err := json.Unmarshal(req.Data, &unsubReq); err != nil {
		return nil, ErrInvalidProtocol
	}

	filter, ok := ParseFilter(unsubReq.Filter)
	if !ok {
		return nil, ErrBadSubscription
	}

	key := filter.Key(unsubReq.Table)
	if client.RemoveSub(key) {
		s.subMap.Unsubscribe(key, client)
	}

	return json.Marshal(SubscribeResp{SubKey: key})
}
