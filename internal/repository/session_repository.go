package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dinu-sreekumar/studentms/internal/models"
)

// SessionStore persists advisor chat transcripts and pending clear-all
// confirmations. State is per session, never a process-wide flag.
type SessionStore interface {
	AppendMessage(ctx context.Context, sessionID string, msg models.ChatMessage) error
	Transcript(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
	PutPendingClear(ctx context.Context, token string, ttl time.Duration) error
	// TakePendingClear consumes the token; it reports false when the token is
	// unknown or already expired. Consuming covers both confirm and cancel.
	TakePendingClear(ctx context.Context, token string) (bool, error)
}

// MemorySessionStore keeps session state in process memory. It is the default
// backend for single-instance deployments.
type MemorySessionStore struct {
	mu            sync.Mutex
	transcriptTTL time.Duration
	transcripts   map[string]*memoryTranscript
	pendingClears map[string]time.Time
	now           func() time.Time
}

type memoryTranscript struct {
	messages []models.ChatMessage
	touched  time.Time
}

// NewMemorySessionStore constructs an in-memory session store.
func NewMemorySessionStore(transcriptTTL time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		transcriptTTL: transcriptTTL,
		transcripts:   make(map[string]*memoryTranscript),
		pendingClears: make(map[string]time.Time),
		now:           time.Now,
	}
}

// AppendMessage adds a message to the session transcript.
func (s *MemorySessionStore) AppendMessage(ctx context.Context, sessionID string, msg models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	t, ok := s.transcripts[sessionID]
	if !ok {
		t = &memoryTranscript{}
		s.transcripts[sessionID] = t
	}
	t.messages = append(t.messages, msg)
	t.touched = s.now()
	return nil
}

// Transcript returns the full transcript for a session, oldest first.
func (s *MemorySessionStore) Transcript(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	t, ok := s.transcripts[sessionID]
	if !ok {
		return []models.ChatMessage{}, nil
	}
	out := make([]models.ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out, nil
}

// PutPendingClear parks a confirmation token with a deadline.
func (s *MemorySessionStore) PutPendingClear(ctx context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingClears[token] = s.now().Add(ttl)
	return nil
}

// TakePendingClear consumes a confirmation token if it is still live.
func (s *MemorySessionStore) TakePendingClear(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deadline, ok := s.pendingClears[token]
	if !ok {
		return false, nil
	}
	delete(s.pendingClears, token)
	if s.now().After(deadline) {
		return false, nil
	}
	return true, nil
}

// evictLocked drops transcripts idle past their TTL and stale clear tokens.
func (s *MemorySessionStore) evictLocked() {
	if s.transcriptTTL <= 0 {
		return
	}
	cutoff := s.now().Add(-s.transcriptTTL)
	for id, t := range s.transcripts {
		if t.touched.Before(cutoff) {
			delete(s.transcripts, id)
		}
	}
	now := s.now()
	for token, deadline := range s.pendingClears {
		if now.After(deadline) {
			delete(s.pendingClears, token)
		}
	}
}

// RedisSessionStore keeps session state in Redis so transcripts survive
// restarts and can be shared across instances.
type RedisSessionStore struct {
	client        *redis.Client
	transcriptTTL time.Duration
}

// NewRedisSessionStore constructs a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client, transcriptTTL time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, transcriptTTL: transcriptTTL}
}

func transcriptKey(sessionID string) string {
	return "advisor:session:" + sessionID + ":transcript"
}

func clearTokenKey(token string) string {
	return "roster:clear:" + token
}

// AppendMessage pushes a message onto the session transcript list.
func (s *RedisSessionStore) AppendMessage(ctx context.Context, sessionID string, msg models.ChatMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal chat message: %w", err)
	}
	key := transcriptKey(sessionID)
	if err := s.client.RPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("redis rpush %s: %w", key, err)
	}
	if s.transcriptTTL > 0 {
		if err := s.client.Expire(ctx, key, s.transcriptTTL).Err(); err != nil {
			return fmt.Errorf("redis expire %s: %w", key, err)
		}
	}
	return nil
}

// Transcript loads the full transcript list for a session.
func (s *RedisSessionStore) Transcript(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	key := transcriptKey(sessionID)
	raw, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange %s: %w", key, err)
	}
	messages := make([]models.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg models.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("unmarshal chat message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// PutPendingClear stores a confirmation token with Redis-managed expiry.
func (s *RedisSessionStore) PutPendingClear(ctx context.Context, token string, ttl time.Duration) error {
	key := clearTokenKey(token)
	if err := s.client.Set(ctx, key, models.ClearStatePending, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// TakePendingClear consumes a confirmation token if present.
func (s *RedisSessionStore) TakePendingClear(ctx context.Context, token string) (bool, error) {
	key := clearTokenKey(token)
	removed, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis del %s: %w", key, err)
	}
	return removed > 0, nil
}
