package relay

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
)

// HistoryStore persists the chat payloads committed to each room, oldest
// first.
type HistoryStore interface {
	Append(ctx context.Context, roomID, message string) error
	List(ctx context.Context, roomID string) ([]string, error)
}

// MemoryHistory keeps history in process memory.
type MemoryHistory struct {
	rooms map[string][]string
	mu    sync.RWMutex
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{rooms: make(map[string][]string)}
}

func (h *MemoryHistory) Append(_ context.Context, roomID, message string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rooms[roomID] = append(h.rooms[roomID], message)
	return nil
}

func (h *MemoryHistory) List(_ context.Context, roomID string) ([]string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, len(h.rooms[roomID]))
	copy(out, h.rooms[roomID])
	return out, nil
}

// RedisHistory keeps each room's history in a Redis list.
type RedisHistory struct {
	rdb *redis.Client
}

func NewRedisHistory(ctx context.Context, addr string) (*RedisHistory, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return &RedisHistory{rdb: rdb}, nil
}

func historyKey(roomID string) string { return "room:" + roomID + ":chats" }

func (h *RedisHistory) Append(ctx context.Context, roomID, message string) error {
	if err := h.rdb.RPush(ctx, historyKey(roomID), message).Err(); err != nil {
		return fmt.Errorf("append history for %s: %w", roomID, err)
	}
	return nil
}

func (h *RedisHistory) List(ctx context.Context, roomID string) ([]string, error) {
	msgs, err := h.rdb.LRange(ctx, historyKey(roomID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list history for %s: %w", roomID, err)
	}
	return msgs, nil
}

func (h *RedisHistory) Close() error { return h.rdb.Close() }
