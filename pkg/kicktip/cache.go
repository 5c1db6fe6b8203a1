package kicktip

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/svetlin-marinov/kicktip/internal/logger"
	"github.com/svetlin-marinov/kicktip/internal/metrics"
)

// Cache tier names, as reported in provenance and metrics
const (
	CacheTierMemory = "memory"
	CacheTierDisk   = "disk"
	CacheTierStore  = "store"
	CacheTierFresh  = "fresh"
)

// CacheEntry is one day's prediction set together with its provenance
type CacheEntry struct {
	Date      string              `json:"date"`
	CreatedAt time.Time           `json:"createdAt"`
	Records   []*PredictionRecord `json:"records"`
}

// Expired reports whether the batch has outlived the TTL
func (b *CacheEntry) Expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(b.CreatedAt) > ttl
}

// ResultCache layers three tiers in front of batch evaluation:
// an in-process copy, an on-disk JSON snapshot that survives restarts,
// and the predictions table that survives snapshot loss.
//
// Reads fall through tier by tier and re-populate the tiers above the
// one that answered. Tier IO failures are logged and treated as misses;
// the cache never turns a storage problem into an engine failure.
type ResultCache struct {
	mu     sync.RWMutex
	batch  *CacheEntry
	config *EngineConfig
}

// NewResultCache creates an empty cache
func NewResultCache(config *EngineConfig) *ResultCache {
	return &ResultCache{config: config}
}

// Get returns the cached batch for the given date together with the
// tier that answered. ok is false when every tier misses.
func (c *ResultCache) Get(date string, now time.Time) (*CacheEntry, string, bool) {
	ttl := time.Duration(c.config.CacheTTLSeconds()) * time.Second

	// Tier one: in-process
	c.mu.RLock()
	batch := c.batch
	c.mu.RUnlock()
	if batch != nil && batch.Date == date && !batch.Expired(ttl, now) {
		metrics.RecordCacheRead(CacheTierMemory)
		return batch, CacheTierMemory, true
	}

	// Tier two: on-disk snapshot
	if batch := c.readSnapshot(date, ttl, now); batch != nil {
		c.setMemory(batch)
		metrics.RecordCacheRead(CacheTierDisk)
		return batch, CacheTierDisk, true
	}

	// Tier three: persistent store
	if batch := c.readStore(date, ttl, now); batch != nil {
		c.setMemory(batch)
		c.writeSnapshot(batch)
		metrics.RecordCacheRead(CacheTierStore)
		return batch, CacheTierStore, true
	}

	return nil, "", false
}

// Put stores a freshly evaluated batch through all three tiers.
// The in-process tier always succeeds; the others are best effort.
func (c *ResultCache) Put(date string, records []*PredictionRecord, now time.Time) *CacheEntry {
	batch := &CacheEntry{Date: date, CreatedAt: now, Records: records}

	c.setMemory(batch)
	c.writeSnapshot(batch)
	c.writeStore(batch)

	metrics.RecordCacheRead(CacheTierFresh)
	return batch
}

// Invalidate drops the batch for the given date from every tier
func (c *ResultCache) Invalidate(date string) {
	c.mu.Lock()
	if c.batch != nil && c.batch.Date == date {
		c.batch = nil
	}
	c.mu.Unlock()

	if err := os.Remove(c.config.SnapshotPath); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to remove snapshot", c.config.SnapshotPath, err)
	}

	if n, err := DeleteWhere(&PredictionRecord{}, "batch_date = ?", date); err != nil {
		logger.Warn("Failed to clear persisted predictions", date, err)
	} else if n > 0 {
		logger.Info("Cleared persisted predictions", date, n)
	}

	metrics.RecordCacheInvalidation()
	logger.Info("Cache invalidated", date)
}

// TierState describes one tier for diagnostics. Valid means the tier
// holds a batch whose age is still within the TTL.
type TierState struct {
	Present bool   `json:"present"`
	Valid   bool   `json:"valid"`
	Date    string `json:"date,omitempty"`
	AgeSecs int    `json:"ageSecs,omitempty"`
	Records int    `json:"records,omitempty"`
}

// State reports the observable condition of each tier
func (c *ResultCache) State(now time.Time) map[string]TierState {
	ttl := time.Duration(c.config.CacheTTLSeconds()) * time.Second
	state := make(map[string]TierState, 3)

	c.mu.RLock()
	if c.batch != nil {
		state[CacheTierMemory] = TierState{
			Present: true,
			Valid:   !c.batch.Expired(ttl, now),
			Date:    c.batch.Date,
			AgeSecs: int(now.Sub(c.batch.CreatedAt).Seconds()),
			Records: len(c.batch.Records),
		}
	} else {
		state[CacheTierMemory] = TierState{}
	}
	c.mu.RUnlock()

	disk := TierState{}
	if batch, err := c.parseSnapshot(); err == nil && batch != nil {
		disk = TierState{
			Present: true,
			Valid:   !batch.Expired(ttl, now),
			Date:    batch.Date,
			AgeSecs: int(now.Sub(batch.CreatedAt).Seconds()),
			Records: len(batch.Records),
		}
	}
	state[CacheTierDisk] = disk

	// The newest row's creation time stands for the stored batch's age,
	// matching the hydration rule in readStore
	store := TierState{}
	if count, err := CountWhere(&PredictionRecord{}, "1=1"); err == nil && count > 0 {
		store.Present = true
		store.Records = count
		if rows, err := FindWhere(&PredictionRecord{}, "1=1 ORDER BY created_at DESC LIMIT 1"); err == nil && len(rows) == 1 {
			if newest, ok := rows[0].(*PredictionRecord); ok {
				store.Date = newest.BatchDate
				store.AgeSecs = int(now.Sub(newest.CreatedAt).Seconds())
				store.Valid = now.Sub(newest.CreatedAt) <= ttl
			}
		}
	}
	state[CacheTierStore] = store

	return state
}

func (c *ResultCache) setMemory(batch *CacheEntry) {
	c.mu.Lock()
	c.batch = batch
	c.mu.Unlock()
}

// readSnapshot loads the on-disk tier, rejecting snapshots for another
// date or past the TTL
func (c *ResultCache) readSnapshot(date string, ttl time.Duration, now time.Time) *CacheEntry {
	batch, err := c.parseSnapshot()
	if err != nil {
		logger.Warn("Snapshot unreadable, treating as miss", c.config.SnapshotPath, err)
		return nil
	}
	if batch == nil {
		return nil
	}
	if batch.Date != date {
		logger.Debug("Snapshot is for another date", batch.Date, date)
		return nil
	}
	if batch.Expired(ttl, now) {
		logger.Debug("Snapshot expired", batch.Date)
		return nil
	}
	return batch
}

func (c *ResultCache) parseSnapshot() (*CacheEntry, error) {
	data, err := os.ReadFile(c.config.SnapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var batch CacheEntry
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &batch, nil
}

// writeSnapshot persists the batch to the on-disk tier, best effort
func (c *ResultCache) writeSnapshot(batch *CacheEntry) {
	if err := os.MkdirAll(filepath.Dir(c.config.SnapshotPath), 0755); err != nil {
		logger.Warn("Failed to create snapshot directory", err)
		return
	}

	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		logger.Warn("Failed to encode snapshot", err)
		return
	}

	// Write then rename so a crash never leaves a half-written snapshot
	tmp := c.config.SnapshotPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		logger.Warn("Failed to write snapshot", tmp, err)
		return
	}
	if err := os.Rename(tmp, c.config.SnapshotPath); err != nil {
		logger.Warn("Failed to move snapshot into place", err)
	}
}

// readStore hydrates a batch from the predictions table. The newest
// row's creation time stands for the whole batch when checking the TTL.
func (c *ResultCache) readStore(date string, ttl time.Duration, now time.Time) *CacheEntry {
	rows, err := FindWhere(&PredictionRecord{}, "batch_date = ? ORDER BY kickoff, fixture_id", date)
	if err != nil {
		logger.Warn("Persistent tier unreadable, treating as miss", err)
		return nil
	}
	if len(rows) == 0 {
		return nil
	}

	batch := &CacheEntry{Date: date}
	for _, row := range rows {
		record, ok := row.(*PredictionRecord)
		if !ok {
			continue
		}
		batch.Records = append(batch.Records, record)
		if record.CreatedAt.After(batch.CreatedAt) {
			batch.CreatedAt = record.CreatedAt
		}
	}

	if len(batch.Records) == 0 || batch.Expired(ttl, now) {
		return nil
	}
	return batch
}

// writeStore persists each record to the predictions table, best effort
func (c *ResultCache) writeStore(batch *CacheEntry) {
	objects := make([]Persistable, 0, len(batch.Records))
	for _, record := range batch.Records {
		record.CreatedAt = batch.CreatedAt
		objects = append(objects, record)
	}
	if err := BulkSave(objects); err != nil {
		logger.Warn("Failed to persist prediction batch", batch.Date, err)
	}
}
