package searchcache

import (
	"container/list"
	"context"
	"crypto/md5"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"ai-meetingassist-be/internal/metrics"

	"github.com/google/uuid"
)

// Target is the search-target scope a cached result belongs to.
type Target string

const (
	TargetOrganization Target = "organization"
	TargetProject      Target = "project"
	TargetMeeting      Target = "meeting"
)

// Scope is the visibility boundary of a cache entry. Entries never leak
// across sessions, tenants or targets: the full struct is the map key.
type Scope struct {
	SessionId uuid.UUID
	TenantId  uuid.UUID // organization, project or meeting id depending on Target
	Target    Target
}

// Passage is one retrieved chunk with its relevance score.
type Passage struct {
	Content string  `json:"content"`
	Source  string  `json:"source"` // document id or speaker
	Score   float64 `json:"score"`
}

// CachedResult is the ordered passage list stored for one query.
type CachedResult struct {
	Passages []Passage
	StoredAt time.Time
}

type entry struct {
	fingerprint string
	embedding   []float32
	result      CachedResult
	expiresAt   time.Time
	elem        *list.Element
}

type scopeCache struct {
	entries map[string]*entry
	lru     *list.List // front = most recently used; values are *entry
}

// Cache is the shared search cache all search-based tiers draw on.
// Lookups resolve exact fingerprint matches first, then fall back to a
// cosine-similarity scan over the cached query embeddings in the same scope.
// Callers compute embeddings before calling in; nothing under the lock
// performs I/O.
type Cache struct {
	mu                sync.Mutex
	scopes            map[Scope]*scopeCache
	maxPerScope       int
	semanticThreshold float64
	ttl               time.Duration
}

// New creates a cache bounded to maxPerScope entries per scope, with the
// given default TTL and semantic-hit cosine threshold.
func New(maxPerScope int, ttl time.Duration, semanticThreshold float64) *Cache {
	if maxPerScope <= 0 {
		maxPerScope = 128
	}
	return &Cache{
		scopes:            make(map[Scope]*scopeCache),
		maxPerScope:       maxPerScope,
		semanticThreshold: semanticThreshold,
		ttl:               ttl,
	}
}

// DefaultTTL returns the TTL applied when Store is called with ttl <= 0.
func (c *Cache) DefaultTTL() time.Duration {
	return c.ttl
}

// Fingerprint normalizes a query into a stable cache key: lowercased,
// punctuation stripped, whitespace collapsed, then hashed.
func Fingerprint(query string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(query) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n':
			b.WriteByte(' ')
		}
	}
	normalized := strings.Join(strings.Fields(b.String()), " ")
	return fmt.Sprintf("%x", md5.Sum([]byte(normalized)))
}

// Lookup returns the cached result for (scope, query), trying the exact
// fingerprint first and then the semantic fallback. queryEmbedding may be
// nil, which skips the semantic check.
func (c *Cache) Lookup(scope Scope, query string, queryEmbedding []float32) (CachedResult, bool) {
	fp := Fingerprint(query)
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	sc, ok := c.scopes[scope]
	if !ok {
		metrics.CacheMiss()
		return CachedResult{}, false
	}

	if e, ok := sc.entries[fp]; ok {
		if now.Before(e.expiresAt) {
			sc.lru.MoveToFront(e.elem)
			metrics.CacheHit(metrics.HitExact)
			return e.result, true
		}
		c.removeLocked(scope, sc, e, "ttl")
	}

	// Semantic fallback: near-duplicate questions share one entry.
	if len(queryEmbedding) > 0 {
		var best *entry
		var bestSim float64
		for _, e := range sc.entries {
			if !now.Before(e.expiresAt) {
				continue
			}
			sim := cosineSimilarity(queryEmbedding, e.embedding)
			if sim >= c.semanticThreshold && sim > bestSim {
				best = e
				bestSim = sim
			}
		}
		if best != nil {
			sc.lru.MoveToFront(best.elem)
			metrics.CacheHit(metrics.HitSemantic)
			return best.result, true
		}
	}

	metrics.CacheMiss()
	return CachedResult{}, false
}

// Store inserts or replaces the result for (scope, query). A ttl <= 0 falls
// back to the cache default. Exceeding the per-scope bound evicts the least
// recently used entry.
func (c *Cache) Store(scope Scope, query string, queryEmbedding []float32, result CachedResult, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	fp := Fingerprint(query)
	if result.StoredAt.IsZero() {
		result.StoredAt = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sc, ok := c.scopes[scope]
	if !ok {
		sc = &scopeCache{entries: make(map[string]*entry), lru: list.New()}
		c.scopes[scope] = sc
	}

	if old, ok := sc.entries[fp]; ok {
		sc.lru.Remove(old.elem)
		delete(sc.entries, fp)
	}

	e := &entry{
		fingerprint: fp,
		embedding:   queryEmbedding,
		result:      result,
		expiresAt:   time.Now().Add(ttl),
	}
	e.elem = sc.lru.PushFront(e)
	sc.entries[fp] = e
	metrics.CacheStore()

	for sc.lru.Len() > c.maxPerScope {
		oldest := sc.lru.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(scope, sc, oldest.Value.(*entry), "lru")
	}
}

// DropSession tears down every scope belonging to a session.
func (c *Cache) DropSession(sessionId uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for scope, sc := range c.scopes {
		if scope.SessionId != sessionId {
			continue
		}
		for _, e := range sc.entries {
			c.removeLocked(scope, sc, e, "teardown")
		}
	}
}

// Sweep removes expired entries across all scopes. Called opportunistically
// by the janitor.
func (c *Cache) Sweep() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for scope, sc := range c.scopes {
		for _, e := range sc.entries {
			if !now.Before(e.expiresAt) {
				c.removeLocked(scope, sc, e, "ttl")
			}
		}
	}
}

// StartJanitor sweeps on the given interval until ctx is done.
func (c *Cache) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Sweep()
			}
		}
	}()
}

// Len reports the live entry count for a scope.
func (c *Cache) Len(scope Scope) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	sc, ok := c.scopes[scope]
	if !ok {
		return 0
	}
	return len(sc.entries)
}

func (c *Cache) removeLocked(scope Scope, sc *scopeCache, e *entry, cause string) {
	sc.lru.Remove(e.elem)
	delete(sc.entries, e.fingerprint)
	metrics.CacheEvicted(cause)
	if len(sc.entries) == 0 {
		delete(c.scopes, scope)
	}
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
