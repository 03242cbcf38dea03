package engine

import (
	"sync"

	"github.com/statfuse/statfuse/internal/pkg/models"
)

// Catalogue maps normalized team names to canonical identifiers. It is owned
// and injected by the caller; the engine holds no process-wide name registry.
// Lookups fall back to fuzzy matching against every registered name, so
// "FC Internazionale" and "Internazionale Milano" can resolve to one club.
type Catalogue struct {
	mu    sync.RWMutex
	byKey map[string]string
}

func NewCatalogue() *Catalogue {
	return &Catalogue{byKey: make(map[string]string)}
}

// Register binds a team name to its canonical id.
func (c *Catalogue) Register(name, canonicalID string) {
	key := models.TeamKey(name)
	if key == "" || canonicalID == "" {
		return
	}
	c.mu.Lock()
	c.byKey[key] = canonicalID
	c.mu.Unlock()
}

// Resolve returns the canonical id for a name: an exact key hit, or the
// registered name with the highest similarity above the same-entity
// threshold. Resolution is best-effort; two distinct clubs with close enough
// names can still collapse onto one id (see ErrAmbiguousEntityMatch).
func (c *Catalogue) Resolve(name string) (string, bool) {
	key := models.TeamKey(name)
	if key == "" {
		return "", false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if id, ok := c.byKey[key]; ok {
		return id, true
	}

	bestID := ""
	bestKey := ""
	bestScore := 0.0
	for candidate, id := range c.byKey {
		score := models.NameSimilarity(key, candidate)
		if score <= models.SameEntityThreshold {
			continue
		}
		// Ties break on the lexicographically smallest candidate so map
		// iteration order never changes the answer.
		if score > bestScore || (score == bestScore && candidate < bestKey) {
			bestScore = score
			bestKey = candidate
			bestID = id
		}
	}
	if bestID == "" {
		return "", false
	}
	return bestID, true
}

// ResolveOrAdopt resolves a name, degrading to the normalized name itself as
// the canonical id when nothing matches. Resolution therefore never fails.
func (c *Catalogue) ResolveOrAdopt(name string) string {
	if id, ok := c.Resolve(name); ok {
		return id
	}
	key := models.TeamKey(name)

	c.mu.Lock()
	c.byKey[key] = key
	c.mu.Unlock()
	return key
}

// Len reports the number of registered names.
func (c *Catalogue) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byKey)
}
