package cache

import (
	"sync"

	"github.com/seojinpark/krxlens/internal/models"
)

// SnapshotCache holds the most recent fundamentals table for the read API.
// One snapshot per trading date; a new date displaces the old snapshot.
// Staleness is the caller's call: compare Date against the current latest
// business day rather than a wall-clock TTL.
type SnapshotCache struct {
	mu   sync.RWMutex
	date string // YYYYMMDD of the cached snapshot
	rows []models.FundamentalRow
}

// NewSnapshotCache creates an empty SnapshotCache
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{}
}

// Get returns the cached rows if the cache holds the requested date.
func (c *SnapshotCache) Get(date string) ([]models.FundamentalRow, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.date != date || c.rows == nil {
		return nil, false
	}
	return c.rows, true
}

// Set stores a snapshot for a trading date, replacing any previous one.
func (c *SnapshotCache) Set(date string, rows []models.FundamentalRow) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.date = date
	c.rows = rows
}

// Date returns the trading date of the current snapshot ("" when empty).
func (c *SnapshotCache) Date() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.date
}

// Clear removes the cached snapshot
func (c *SnapshotCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.date = ""
	c.rows = nil
}
