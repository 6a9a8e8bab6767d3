package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/elyaddev/Silo/pkg/constant"
	"github.com/redis/go-redis/v9"
)

// SubMap manages client connections and their row-feed subscriptions.
// Clients are indexed two ways: by user Id (for online tracking and
// kicks) and by subscription key (for event fan-out).
type SubMap struct {
	mu    sync.RWMutex
	users map[string][]*Client           // userId -> connections
	subs  map[string]map[string]*Client  // subKey -> connId -> client
	rdb   *redis.Client
}

// NewSubMap creates a new SubMap
func NewSubMap(rdb *redis.Client) *SubMap {
	return &SubMap{
		users: make(map[string][]*Client),
		subs:  make(map[string]map[string]*Client),
		rdb:   rdb,
	}
}

// Register registers a connected client
func (m *SubMap) Register(ctx context.Context, client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[client.UserId] = append(m.users[client.UserId], client)

	// Update Redis online status
	m.setOnline(ctx, client.UserId)
}

// Unregister removes a client and all its subscriptions.
// Returns true when the user has no remaining connections.
func (m *SubMap) Unregister(ctx context.Context, client *Client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	clients, exists := m.users[client.UserId]
	if !exists {
		return false
	}

	newClients := make([]*Client, 0, len(clients))
	for _, c := range clients {
		if c.ConnId != client.ConnId {
			newClients = append(newClients, c)
		}
	}
	m.users[client.UserId] = newClients

	// Drop all subscription index entries for this connection
	for key := range client.SubKeys() {
		if conns, ok := m.subs[key]; ok {
			delete(conns, client.ConnId)
			if len(conns) == 0 {
				delete(m.subs, key)
			}
		}
	}

	if len(newClients) == 0 {
		delete(m.users, client.UserId)
		m.setOffline(ctx, client.UserId)
		return true
	}

	return false
}

// Subscribe adds a client to a subscription key
func (m *SubMap) Subscribe(key string, client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conns, ok := m.subs[key]
	if !ok {
		conns = make(map[string]*Client)
		m.subs[key] = conns
	}
	conns[client.ConnId] = client
}

// Unsubscribe removes a client from a subscription key
func (m *SubMap) Unsubscribe(key string, client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conns, ok := m.subs[key]; ok {
		delete(conns, client.ConnId)
		if len(conns) == 0 {
			delete(m.subs, key)
		}
	}
}

// Subscribers returns a snapshot of the clients under a subscription key
func (m *SubMap) Subscribers(key string) []*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conns, ok := m.subs[key]
	if !ok {
		return nil
	}
	clients := make([]*Client, 0, len(conns))
	for _, c := range conns {
		clients = append(clients, c)
	}
	return clients
}

// GetByUser returns a snapshot of a user's connections
func (m *SubMap) GetByUser(userId string) ([]*Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	clients, exists := m.users[userId]
	if !exists || len(clients) == 0 {
		return nil, false
	}
	out := make([]*Client, len(clients))
	copy(out, clients)
	return out, true
}

// HasConnection checks if user has any connection
func (m *SubMap) HasConnection(userId string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	clients, exists := m.users[userId]
	return exists && len(clients) > 0
}

// GetOnlineUserCount returns the number of online users
func (m *SubMap) GetOnlineUserCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

// IsOnline checks if user is online (checks Redis for distributed support)
func (m *SubMap) IsOnline(ctx context.Context, userId string) bool {
	if m.HasConnection(userId) {
		return true
	}

	if m.rdb != nil {
		key := fmt.Sprintf(constant.RedisKeyOnline(), userId)
		exists, _ := m.rdb.Exists(ctx, key).Result()
		return exists > 0
	}

	return false
}

// setOnline marks user as online in Redis
func (m *SubMap) setOnline(ctx context.Context, userId string) {
	if m.rdb == nil {
		return
	}

	key := fmt.Sprintf(constant.RedisKeyOnline(), userId)
	m.rdb.Set(ctx, key, "1", 60*time.Second)
}

// setOffline marks user as offline in Redis
func (m *SubMap) setOffline(ctx context.Context, userId string) {
	if m.rdb == nil {
		return
	}

	key := fmt.Sprintf(constant.RedisKeyOnline(), userId)
	m.rdb.Del(ctx, key)
}

// RefreshOnlineStatus refreshes the online status TTL
func (m *SubMap) RefreshOnlineStatus(ctx context.Context, userId string) {
	if m.rdb == nil {
		return
	}

	if m.HasConnection(userId) {
		key := fmt.Sprintf(constant.RedisKeyOnline(), userId)
		m.rdb.Expire(ctx, key, 60*time.Second)
	}
}
