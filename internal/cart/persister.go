package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Persister stores cart contents by session.
type Persister interface {
	// Load returns the items saved for sessionID, or nil if there are none.
	Load(ctx context.Context, sessionID string) ([]model.LineItem, error)

	// Save replaces the items saved for sessionID.
	Save(ctx context.Context, sessionID string, items []model.LineItem) error

	// Delete removes the record for sessionID.
	Delete(ctx context.Context, sessionID string) error
}

// RedisPersister keeps carts as JSON under cart:{sessionID}. Every save
// refreshes the expiry.
type RedisPersister struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisPersister creates a Redis-backed cart persister.
func NewRedisPersister(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisPersister {
	return &RedisPersister{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "cart-redis").Logger(),
	}
}

func key(sessionID string) string {
	return "cart:" + sessionID
}

// Load implements Persister.
func (p *RedisPersister) Load(ctx context.Context, sessionID string) ([]model.LineItem, error) {
	data, err := p.client.Get(ctx, key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		p.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to read cart")
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	var items []model.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		p.logger.Warn().Err(err).Str("session_id", sessionID).Msg("discarding unreadable cart")
		return nil, nil
	}
	return items, nil
}

// Save implements Persister.
func (p *RedisPersister) Save(ctx context.Context, sessionID string, items []model.LineItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := p.client.Set(ctx, key(sessionID), data, p.ttl).Err(); err != nil {
		p.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to write cart")
		return fmt.Errorf("failed to write cart: %w", err)
	}

	p.logger.Debug().
		Str("session_id", sessionID).
		Int("line_count", len(items)).
		Msg("cart saved")
	return nil
}

// Delete implements Persister.
func (p *RedisPersister) Delete(ctx context.Context, sessionID string) error {
	if err := p.client.Del(ctx, key(sessionID)).Err(); err != nil {
		p.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to delete cart")
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

// MemoryPersister keeps carts in process memory.
type MemoryPersister struct {
	mu    sync.Mutex
	carts map[string][]model.LineItem
}

// NewMemoryPersister creates an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{carts: make(map[string][]model.LineItem)}
}

// Load implements Persister.
func (p *MemoryPersister) Load(_ context.Context, sessionID string) ([]model.LineItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.carts[sessionID]), nil
}

// Save implements Persister.
func (p *MemoryPersister) Save(_ context.Context, sessionID string, items []model.LineItem) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.carts[sessionID] = slices.Clone(items)
	return nil
}

// Delete implements Persister.
func (p *MemoryPersister) Delete(_ context.Context, sessionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.carts, sessionID)
	return nil
}
