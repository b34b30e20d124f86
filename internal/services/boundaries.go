package services

import (
	"context"
	"strings"
	"sync"

	"github.com/electionwatch/atlas-backend/internal/geo"
	"github.com/electionwatch/atlas-backend/internal/metrics"
	"github.com/electionwatch/atlas-backend/internal/models"
	"github.com/electionwatch/atlas-backend/pkg/logger"
)

// boundaryLoader fetches the static boundary bundle. The file-backed store
// implements it in production; tests hand in fixtures.
type boundaryLoader interface {
	LoadAll(ctx context.Context) ([]models.BoundaryGeometry, error)
}

type nameLevelKey struct {
	name  string
	level int
}

// BoundaryCache holds every administrative boundary for the session,
// indexed by level and by (name, level). Read-only after LoadBoundaries;
// the mutex only guards the one-time load.
type BoundaryCache struct {
	loader boundaryLoader

	mu      sync.RWMutex
	loaded  bool
	byLevel map[int][]models.BoundaryGeometry
	byKey   map[nameLevelKey][]models.BoundaryGeometry
	byID    map[int64]models.BoundaryGeometry
}

func NewBoundaryCache(loader boundaryLoader) *BoundaryCache {
	return &BoundaryCache{
		loader:  loader,
		byLevel: make(map[int][]models.BoundaryGeometry),
		byKey:   make(map[nameLevelKey][]models.BoundaryGeometry),
		byID:    make(map[int64]models.BoundaryGeometry),
	}
}

// LoadBoundaries loads and indexes the bundle exactly once. A failed load
// is logged and leaves the cache empty: the map renders blank rather than
// the application crashing, and a later call may retry.
func (c *BoundaryCache) LoadBoundaries(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return
	}

	log := logger.FromContext(ctx)
	boundaries, err := c.loader.LoadAll(ctx)
	if err != nil {
		log.Error("boundary bundle unavailable, map will render empty", "error", err)
		return
	}

	for _, b := range boundaries {
		key := nameLevelKey{name: normalizeName(b.Name), level: b.Level}
		c.byLevel[b.Level] = append(c.byLevel[b.Level], b)
		c.byKey[key] = append(c.byKey[key], b)
		c.byID[b.UnitID] = b
	}
	c.loaded = true

	c.checkHierarchy(ctx)
}

// checkHierarchy verifies the load-time invariants: every boundary below
// district level resolves exactly one parent, and (name, level, parent)
// triples are unique. Violations are logged, never fatal.
func (c *BoundaryCache) checkHierarchy(ctx context.Context) {
	log := logger.FromContext(ctx)
	orphans := 0
	for level := models.LevelConstituency; level <= models.LevelParish; level++ {
		for _, b := range c.byLevel[level] {
			parents := c.byKey[nameLevelKey{name: normalizeName(b.ParentName), level: level - 1}]
			if len(parents) != 1 {
				orphans++
			}
		}
	}
	if orphans > 0 {
		log.Warn("boundaries with unresolved parent", "count", orphans)
	}

	for key, group := range c.byKey {
		seen := map[string]int{}
		for _, b := range group {
			seen[normalizeName(b.ParentName)]++
		}
		for parent, n := range seen {
			if n > 1 {
				log.Warn("ambiguous boundary name",
					"name", key.name, "level", key.level, "parent", parent, "count", n)
			}
		}
	}
}

// BoundariesForLevel returns all boundaries at level; empty for unknown
// levels.
func (c *BoundaryCache) BoundariesForLevel(level int) []models.BoundaryGeometry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byLevel[level]
}

// HasLevel reports whether any boundaries are loaded at level.
func (c *BoundaryCache) HasLevel(level int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byLevel[level]) > 0
}

// BoundaryByID returns a boundary by unit ID.
func (c *BoundaryCache) BoundaryByID(id int64) (models.BoundaryGeometry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.byID[id]
	return b, ok
}

// HasAncestor reports whether b's ancestor chain passes through a unit
// with the given name at the given level. Used to disambiguate sibling
// names below district level.
func (c *BoundaryCache) HasAncestor(b models.BoundaryGeometry, ancestorLevel int, ancestorName string) bool {
	if ancestorLevel >= b.Level {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	want := normalizeName(ancestorName)
	cur := b
	for cur.Level > ancestorLevel {
		parentKey := nameLevelKey{name: normalizeName(cur.ParentName), level: cur.Level - 1}
		parents := c.byKey[parentKey]
		if len(parents) == 0 {
			// Chain is broken one step above the district level: the
			// district's parent (subregion) may not be in the bundle, so
			// compare by name directly.
			return cur.Level-1 == ancestorLevel && parentKey.name == want
		}
		cur = parents[0]
	}
	return normalizeName(cur.Name) == want
}

// LocateDistrict resolves a raw coordinate to the containing district via
// ray casting. This is the fallback for clicks on the base map, where the
// rendering layer has no queryable vector features.
func (c *BoundaryCache) LocateDistrict(pt geo.Point) (models.BoundaryGeometry, bool) {
	metrics.HitTestsTotal.Inc()
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, b := range c.byLevel[models.LevelDistrict] {
		if b.Geometry.Contains(pt) {
			return b, true
		}
	}
	return models.BoundaryGeometry{}, false
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
