package cache

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	cacheVersion    = 2
	defaultTTL      = 30 * 24 * time.Hour
	cacheDirName    = "lyricbar"
	lyricsCacheName = "lyrics"
	fileSuffix      = ".bin"
)

var (
	ErrCacheMiss    = errors.New("cache miss")
	ErrCacheExpired = errors.New("cache expired")
	ErrCacheCorrupt = errors.New("cache corrupt")
)

type Line struct {
	OffsetMs int64
	Text     string
}

type LyricEntry struct {
	Version   uint8
	TrackID   string
	TrackName string
	Provider  string
	Lines     []Line
	CreatedAt int64
	ExpiresAt int64
}

// DiskCache keeps synced lyrics keyed by track id, in memory and as one gob
// file per track. A cache with no base path lives in memory only.
type DiskCache struct {
	basePath string
	ttl      time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	memCache map[string]*LyricEntry
}

func NewMemoryCache() *DiskCache {
	return &DiskCache{
		ttl:      defaultTTL,
		now:      time.Now,
		memCache: make(map[string]*LyricEntry),
	}
}

// NewDiskCache stores entries under dir. An empty dir selects the default
// XDG cache location.
func NewDiskCache(dir string) (*DiskCache, error) {
	if dir == "" {
		cacheDir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = cacheDir
	}

	lyricsPath := filepath.Join(dir, lyricsCacheName)
	if err := os.MkdirAll(lyricsPath, 0755); err != nil {
		return nil, err
	}

	c := NewMemoryCache()
	c.basePath = lyricsPath
	return c, nil
}

// DefaultDir is $XDG_CACHE_HOME/lyricbar, falling back to ~/.cache.
func DefaultDir() (string, error) {
	xdgCache := os.Getenv("XDG_CACHE_HOME")
	if xdgCache != "" {
		return filepath.Join(xdgCache, cacheDirName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".cache", cacheDirName), nil
}

func (c *DiskCache) Path() string {
	return c.basePath
}

func generateKey(trackID string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(trackID)))
	return hex.EncodeToString(hash[:12])
}

func (c *DiskCache) getFilePath(key string) string {
	if c.basePath == "" {
		return ""
	}
	return filepath.Join(c.basePath, key+fileSuffix)
}

func (c *DiskCache) Get(trackID string) (*LyricEntry, error) {
	if trackID == "" {
		return nil, ErrCacheMiss
	}

	key := generateKey(trackID)
	now := c.now().Unix()

	c.mu.RLock()
	entry, exists := c.memCache[key]
	c.mu.RUnlock()

	if exists {
		if entry.ExpiresAt > now {
			return entry, nil
		}
		c.mu.Lock()
		delete(c.memCache, key)
		c.mu.Unlock()
	}

	if c.basePath == "" {
		if exists {
			return nil, ErrCacheExpired
		}
		return nil, ErrCacheMiss
	}

	filePath := c.getFilePath(key)
	entry, err := c.readFromDisk(filePath)
	if err != nil {
		return nil, err
	}

	if entry.ExpiresAt <= now {
		_ = os.Remove(filePath)
		return nil, ErrCacheExpired
	}

	c.mu.Lock()
	c.memCache[key] = entry
	c.mu.Unlock()

	return entry, nil
}

func (c *DiskCache) Set(trackID string, entry *LyricEntry) error {
	if trackID == "" || entry == nil {
		return errors.New("invalid cache entry")
	}

	key := generateKey(trackID)

	now := c.now()
	entry.Version = cacheVersion
	entry.TrackID = trackID
	entry.CreatedAt = now.Unix()
	entry.ExpiresAt = now.Add(c.ttl).Unix()

	c.mu.Lock()
	c.memCache[key] = entry
	c.mu.Unlock()

	if c.basePath == "" {
		return nil
	}

	return c.writeToDisk(c.getFilePath(key), entry)
}

func (c *DiskCache) readFromDisk(filePath string) (*LyricEntry, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	defer file.Close()

	var entry LyricEntry
	if err := gob.NewDecoder(file).Decode(&entry); err != nil {
		return nil, ErrCacheCorrupt
	}

	// version mismatch means stale format
	if entry.Version != cacheVersion {
		_ = os.Remove(filePath)
		return nil, ErrCacheCorrupt
	}

	return &entry, nil
}

func (c *DiskCache) writeToDisk(filePath string, entry *LyricEntry) error {
	// write to temp file first, then rename for atomicity
	tmpPath := filePath + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	if err := gob.NewEncoder(file).Encode(entry); err != nil {
		file.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, filePath)
}

func (c *DiskCache) Delete(trackID string) error {
	if trackID == "" {
		return errors.New("invalid track id")
	}

	key := generateKey(trackID)

	c.mu.Lock()
	delete(c.memCache, key)
	c.mu.Unlock()

	if c.basePath == "" {
		return nil
	}

	err := os.Remove(c.getFilePath(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *DiskCache) Clear() error {
	c.mu.Lock()
	c.memCache = make(map[string]*LyricEntry)
	c.mu.Unlock()

	if c.basePath == "" {
		return nil
	}

	entries, err := os.ReadDir(c.basePath)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), fileSuffix) {
			_ = os.Remove(filepath.Join(c.basePath, entry.Name()))
		}
	}

	return nil
}

// Prune removes expired and unreadable files and returns how many went.
func (c *DiskCache) Prune() (int, error) {
	if c.basePath == "" {
		return 0, nil
	}

	entries, err := os.ReadDir(c.basePath)
	if err != nil {
		return 0, err
	}

	pruned := 0
	now := c.now().Unix()

	for _, dirEntry := range entries {
		if dirEntry.IsDir() || !strings.HasSuffix(dirEntry.Name(), fileSuffix) {
			continue
		}

		filePath := filepath.Join(c.basePath, dirEntry.Name())
		entry, err := c.readFromDisk(filePath)
		if err != nil || entry.ExpiresAt <= now {
			_ = os.Remove(filePath)
			pruned++
		}
	}

	return pruned, nil
}

func (c *DiskCache) Stats() (count int, sizeBytes int64, err error) {
	if c.basePath == "" {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return len(c.memCache), 0, nil
	}

	entries, err := os.ReadDir(c.basePath)
	if err != nil {
		return 0, 0, err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		count++
		sizeBytes += info.Size()
	}

	return count, sizeBytes, nil
}

func (c *DiskCache) ListAll() ([]*LyricEntry, error) {
	if c.basePath == "" {
		c.mu.RLock()
		defer c.mu.RUnlock()
		result := make([]*LyricEntry, 0, len(c.memCache))
		for _, entry := range c.memCache {
			result = append(result, entry)
		}
		return result, nil
	}

	entries, err := os.ReadDir(c.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var result []*LyricEntry
	for _, dirEntry := range entries {
		if dirEntry.IsDir() || !strings.HasSuffix(dirEntry.Name(), fileSuffix) {
			continue
		}

		entry, err := c.readFromDisk(filepath.Join(c.basePath, dirEntry.Name()))
		if err != nil {
			continue
		}
		result = append(result, entry)
	}

	return result, nil
}
