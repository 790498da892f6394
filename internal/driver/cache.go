package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"erblint/internal/diag"
	"erblint/internal/source"
)

// Current schema version - increment when CachePayload format changes
const cacheSchemaVersion uint16 = 1

// Cache хранит результаты линтинга файла на диске, ключ — содержимое + конфигурация.
// Thread-safe for concurrent access.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// CachedOffense is an offense without its correction context; cached results are
// used for reporting only, never for autocorrect.
type CachedOffense struct {
	Linter   string
	Begin    uint32
	End      uint32
	Message  string
	Severity uint8
}

// CachePayload is the on-disk record for one file.
type CachePayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Path        string
	ContentHash [32]byte
	PlanDigest  string
	Offenses    []CachedOffense
	StoredAt    int64
}

// DefaultCacheDir returns $XDG_CACHE_HOME/app, falling back to ~/.cache/app.
func DefaultCacheDir(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app), nil
}

// OpenCache initializes a cache rooted at dir, creating it if needed.
func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// CacheKey derives the key for a file linted under a plan. The path takes part
// because per-linter excludes depend on it.
func CacheKey(f *source.File, path, planDigest string) [32]byte {
	h := sha256.New()
	fmt.Fprintf(h, "v%d\x00%s\x00%s\x00", cacheSchemaVersion, path, planDigest)
	h.Write(f.Hash[:])
	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}

func (c *Cache) pathFor(key [32]byte) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог по первым двум символам, чтобы не раздувать один каталог
	return filepath.Join(c.dir, "lint", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the cache.
func (c *Cache) Put(key [32]byte, payload *CachePayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	payload.Schema = cacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Атомарная замена
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Get reads a payload. A missing entry, an old schema or a hash mismatch is a miss.
func (c *Cache) Get(key [32]byte, hash [32]byte) (*CachePayload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload CachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != cacheSchemaVersion || payload.ContentHash != hash {
		return nil, false, nil
	}
	return &payload, true, nil
}

// Clear drops every cached entry.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// тривиально: переименуем каталог и удалим
	dir := filepath.Join(c.dir, "lint")
	old := dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

func toCachePayload(f *source.File, path, planDigest string, offenses []diag.Offense) *CachePayload {
	payload := &CachePayload{
		Path:        path,
		ContentHash: f.Hash,
		PlanDigest:  planDigest,
		Offenses:    make([]CachedOffense, len(offenses)),
		StoredAt:    time.Now().Unix(),
	}
	for i, off := range offenses {
		payload.Offenses[i] = CachedOffense{
			Linter:   off.Linter,
			Begin:    off.Range.Begin,
			End:      off.Range.End,
			Message:  off.Message,
			Severity: uint8(off.Severity),
		}
	}
	return payload
}

// fromCachePayload rebuilds offenses against f. An out-of-bounds range means the
// entry does not belong to f.
func fromCachePayload(f *source.File, payload *CachePayload) ([]diag.Offense, error) {
	out := make([]diag.Offense, len(payload.Offenses))
	for i, co := range payload.Offenses {
		rng, err := source.NewRange(f, co.Begin, co.End)
		if err != nil {
			return nil, fmt.Errorf("cache entry for %s: %w", payload.Path, err)
		}
		out[i] = diag.Offense{
			Linter:   co.Linter,
			Range:    rng,
			Message:  co.Message,
			Severity: diag.Severity(co.Severity),
		}
	}
	return out, nil
}
