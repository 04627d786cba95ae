package services

import (
	"context"
	"log/slog"
	"sync"

	"stormbringer/internal/campaign/models"
)

// SessionCache is the per-session fallback copy of recently seen campaigns.
// It is never the source of truth: reads consult it only when the store
// misses or fails. The list is rewritten wholesale on every change.
type SessionCache interface {
	Get(ctx context.Context, id string) (*models.Campaign, bool, error)
	List(ctx context.Context) ([]models.Campaign, error)
	UpsertFront(ctx context.Context, c *models.Campaign) error
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// CacheProvider hands out the cache of one logical session
type CacheProvider interface {
	ForSession(sessionID string) SessionCache
}

type sessionKey struct{}

// WithSession scopes ctx to sessionID for cache lookups
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionFromContext returns the session ctx is scoped to, "anonymous" when none
func SessionFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey{}).(string); ok && id != "" {
		return id
	}
	return "anonymous"
}

// records is the shared list logic of both cache implementations
type records []map[string]any

func (r records) find(id string) (*models.Campaign, bool, error) {
	for _, rec := range r {
		if rec["id"] == id {
			c, err := fromCacheRecord(rec)
			if err != nil {
				return nil, false, err
			}
			return c, true, nil
		}
	}
	return nil, false, nil
}

func (r records) decode(ctx context.Context) []models.Campaign {
	out := make([]models.Campaign, 0, len(r))
	for _, rec := range r {
		c, err := fromCacheRecord(rec)
		if err != nil {
			slog.WarnContext(ctx, "Dropping unreadable cached campaign", "error", err)
			continue
		}
		out = append(out, *c)
	}
	return out
}

func (r records) without(id string) records {
	out := make(records, 0, len(r))
	for _, rec := range r {
		if rec["id"] != id {
			out = append(out, rec)
		}
	}
	return out
}

func (r records) upsertFront(c *models.Campaign) records {
	return append(records{cacheRecord(c)}, r.without(c.ID)...)
}

// MemoryCacheProvider keeps session caches in process memory
type MemoryCacheProvider struct {
	mu       sync.Mutex
	sessions map[string]*MemorySessionCache
}

// NewMemoryCacheProvider creates an empty provider
func NewMemoryCacheProvider() *MemoryCacheProvider {
	return &MemoryCacheProvider{sessions: make(map[string]*MemorySessionCache)}
}

// ForSession returns the cache of sessionID, creating it on first use
func (p *MemoryCacheProvider) ForSession(sessionID string) SessionCache {
	p.mu.Lock()
	defer p.mu.Unlock()

	cache, ok := p.sessions[sessionID]
	if !ok {
		cache = &MemorySessionCache{}
		p.sessions[sessionID] = cache
	}
	return cache
}

// MemorySessionCache is a mutex-protected in-memory SessionCache
type MemorySessionCache struct {
	mu      sync.Mutex
	entries records
}

func (c *MemorySessionCache) Get(ctx context.Context, id string) (*models.Campaign, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.find(id)
}

func (c *MemorySessionCache) List(ctx context.Context) ([]models.Campaign, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.decode(ctx), nil
}

func (c *MemorySessionCache) UpsertFront(ctx context.Context, campaign *models.Campaign) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = c.entries.upsertFront(campaign)
	return nil
}

func (c *MemorySessionCache) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = c.entries.without(id)
	return nil
}

func (c *MemorySessionCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	return nil
}
