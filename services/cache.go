package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"resumeanalyzer/config"
	"resumeanalyzer/models"
)

type cacheEntry struct {
	data         []byte
	createdAt    time.Time
	lastAccessed time.Time
	accessCount  int
}

// CacheStats is reported by the /performance endpoint.
type CacheStats struct {
	MemoryEntries  int     `json:"memory_entries"`
	MaxSize        int     `json:"max_size"`
	DiskEntries    int     `json:"disk_entries"`
	DiskEnabled    bool    `json:"disk_enabled"`
	Hits           int64   `json:"total_hits"`
	Misses         int64   `json:"total_misses"`
	MemoryHits     int64   `json:"memory_hits"`
	DiskHits       int64   `json:"disk_hits"`
	Evictions      int64   `json:"evictions"`
	Errors         int64   `json:"errors"`
	HitRatePercent float64 `json:"hit_rate_percent"`
}

// AnalysisCache keeps analysis results in an LRU memory map, optionally
// backed by a SQLite table so results survive restarts.
type AnalysisCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	maxSize int
	ttl     time.Duration
	db      *sql.DB
	stats   CacheStats
	logger  *zap.Logger
	now     func() time.Time
}

// NewAnalysisCache creates the cache. An empty DBPath keeps it memory only.
func NewAnalysisCache(cfg config.CacheConfig, logger *zap.Logger) (*AnalysisCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 1000
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}

	c := &AnalysisCache{
		entries: make(map[string]*cacheEntry),
		maxSize: cfg.MaxSize,
		ttl:     cfg.TTL,
		logger:  logger,
		now:     time.Now,
	}

	if cfg.DBPath != "" {
		db, err := sql.Open("sqlite", cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache database: %w", err)
		}
		db.SetMaxOpenConns(1)
		if err := createCacheTable(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialise cache database: %w", err)
		}
		c.db = db
		logger.Info("persistent analysis cache enabled", zap.String("path", cfg.DBPath))
	}
	return c, nil
}

func createCacheTable(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cache_entries (
			key           TEXT PRIMARY KEY,
			data          BLOB NOT NULL,
			created_at    INTEGER NOT NULL,
			last_accessed INTEGER NOT NULL,
			access_count  INTEGER NOT NULL DEFAULT 0,
			priority_hash TEXT,
			text_hash     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cache_created_at ON cache_entries(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_cache_text_hash ON cache_entries(text_hash)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func hashHex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// cacheKeys normalises whitespace and priority order before hashing.
func cacheKeys(text string, priorities []string) (key, textHash, priorityHash string) {
	textHash = hashHex(strings.Join(strings.Fields(text), " "))

	sorted := append([]string(nil), priorities...)
	sort.Strings(sorted)
	priorityHash = hashHex(strings.Join(sorted, ","))

	return textHash[:16] + "_" + priorityHash[:8], textHash, priorityHash
}

// CacheKey returns the key a text and priority set are stored under.
func CacheKey(text string, priorities []string) string {
	key, _, _ := cacheKeys(text, priorities)
	return key
}

// Get returns a copy of the cached result, checking memory then disk.
func (c *AnalysisCache) Get(ctx context.Context, text string, priorities []string) (*models.AnalysisResult, bool) {
	key, _, _ := cacheKeys(text, priorities)
	now := c.now()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		if now.Sub(e.createdAt) <= c.ttl {
			e.lastAccessed = now
			e.accessCount++
			c.stats.Hits++
			c.stats.MemoryHits++
			data := e.data
			c.mu.Unlock()
			return c.decode(data)
		}
		delete(c.entries, key)
	}
	c.mu.Unlock()

	if data, createdAt, ok := c.loadFromDisk(ctx, key, now); ok {
		c.mu.Lock()
		c.stats.Hits++
		c.stats.DiskHits++
		c.storeLocked(key, data, createdAt, now)
		c.mu.Unlock()
		return c.decode(data)
	}

	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
	return nil, false
}

// Set stores result in memory and, when enabled, on disk.
func (c *AnalysisCache) Set(ctx context.Context, text string, priorities []string, result *models.AnalysisResult) {
	if result == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		c.recordError("failed to encode cache entry", err)
		return
	}

	key, textHash, priorityHash := cacheKeys(text, priorities)
	now := c.now()

	c.mu.Lock()
	c.storeLocked(key, data, now, now)
	c.mu.Unlock()

	if c.db == nil {
		return
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, data, created_at, last_accessed, access_count, priority_hash, text_hash)
		VALUES (?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, created_at = excluded.created_at, last_accessed = excluded.last_accessed
	`, key, data, now.Unix(), now.Unix(), priorityHash, textHash)
	if err != nil {
		c.recordError("failed to persist cache entry", err)
	}
}

func (c *AnalysisCache) storeLocked(key string, data []byte, createdAt, now time.Time) {
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictLocked()
	}
	c.entries[key] = &cacheEntry{data: data, createdAt: createdAt, lastAccessed: now, accessCount: 1}
}

// evictLocked drops the least recently used fifth of the memory entries.
func (c *AnalysisCache) evictLocked() {
	n := c.maxSize / 5
	if n < 1 {
		n = 1
	}

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.entries[keys[i]].lastAccessed.Before(c.entries[keys[j]].lastAccessed)
	})
	if n > len(keys) {
		n = len(keys)
	}
	for _, k := range keys[:n] {
		delete(c.entries, k)
		c.stats.Evictions++
	}
	c.logger.Debug("evicted analysis cache entries", zap.Int("count", n))
}

func (c *AnalysisCache) loadFromDisk(ctx context.Context, key string, now time.Time) ([]byte, time.Time, bool) {
	if c.db == nil {
		return nil, time.Time{}, false
	}

	var data []byte
	var created int64
	err := c.db.QueryRowContext(ctx, "SELECT data, created_at FROM cache_entries WHERE key = ?", key).Scan(&data, &created)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, false
	}
	if err != nil {
		c.recordError("failed to read cache entry", err)
		return nil, time.Time{}, false
	}

	createdAt := time.Unix(created, 0)
	if now.Sub(createdAt) > c.ttl {
		if _, err := c.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key); err != nil {
			c.recordError("failed to delete expired cache entry", err)
		}
		return nil, time.Time{}, false
	}

	if _, err := c.db.ExecContext(ctx,
		"UPDATE cache_entries SET last_accessed = ?, access_count = access_count + 1 WHERE key = ?",
		now.Unix(), key); err != nil {
		c.recordError("failed to touch cache entry", err)
	}
	return data, createdAt, true
}

func (c *AnalysisCache) decode(data []byte) (*models.AnalysisResult, bool) {
	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.recordError("failed to decode cache entry", err)
		return nil, false
	}
	return &result, true
}

// CleanExpired removes expired entries from memory and disk and returns
// how many were removed.
func (c *AnalysisCache) CleanExpired(ctx context.Context) int {
	now := c.now()
	removed := 0

	c.mu.Lock()
	for k, e := range c.entries {
		if now.Sub(e.createdAt) > c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	c.mu.Unlock()

	if c.db != nil {
		res, err := c.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE created_at < ?", now.Add(-c.ttl).Unix())
		if err != nil {
			c.recordError("failed to clean disk cache", err)
		} else if n, err := res.RowsAffected(); err == nil {
			removed += int(n)
		}
	}
	return removed
}

// RunCleanup calls CleanExpired every interval until ctx is done.
func (c *AnalysisCache) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := c.CleanExpired(ctx); removed > 0 {
				c.logger.Info("expired cache entries removed", zap.Int("removed", removed))
			}
		}
	}
}

// Clear empties the cache.
func (c *AnalysisCache) Clear(ctx context.Context) {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()

	if c.db != nil {
		if _, err := c.db.ExecContext(ctx, "DELETE FROM cache_entries"); err != nil {
			c.recordError("failed to clear disk cache", err)
		}
	}
}

// Stats returns a snapshot of the counters.
func (c *AnalysisCache) Stats(ctx context.Context) CacheStats {
	c.mu.Lock()
	stats := c.stats
	stats.MemoryEntries = len(c.entries)
	stats.MaxSize = c.maxSize
	stats.DiskEnabled = c.db != nil
	c.mu.Unlock()

	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRatePercent = float64(int(float64(stats.Hits)/float64(total)*10000+0.5)) / 100
	}
	if c.db != nil {
		if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cache_entries").Scan(&stats.DiskEntries); err != nil {
			c.recordError("failed to count disk cache entries", err)
		}
	}
	return stats
}

// Close releases the database handle.
func (c *AnalysisCache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *AnalysisCache) recordError(msg string, err error) {
	c.mu.Lock()
	c.stats.Errors++
	c.mu.Unlock()
	c.logger.Warn(msg, zap.Error(err))
}
