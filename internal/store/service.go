package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrInvalidName is returned when a collection name fails the
// filesystem-safety check.
var ErrInvalidName = errors.New("invalid store name")

const (
	// DefaultWriterBufferSize is the per-store write buffer in bytes.
	DefaultWriterBufferSize = 50_000_000
	// DefaultCacheCapacity bounds the open-index handle cache.
	DefaultCacheCapacity = 10

	// indexFileName is the database file inside each collection
	// directory. Its presence marks a directory as a valid collection.
	indexFileName = "memory.db"
)

// Collection names become directory names, so they are restricted to a
// conservative charset with no path separators or leading dots.
var storeNameRE = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// MemoryService maps collection names to index directories under one
// root, opening or creating them on demand. Open handles are kept in a
// bounded LRU cache so repeated GetStore calls skip the open/migrate
// cost. The cache is safe for concurrent use; get-or-insert is atomic.
type MemoryService struct {
	root             string
	writerBufferSize int
	cacheCapacity    int
	log              *slog.Logger

	mu    sync.Mutex
	cache *lru.Cache[string, *sql.DB]
}

// Option configures a MemoryService.
type Option func(*MemoryService)

// WithWriterBufferSize sets the per-store write buffer in bytes. It maps
// onto the engine's page cache for the collection's connections.
func WithWriterBufferSize(bytes int) Option {
	return func(svc *MemoryService) { svc.writerBufferSize = bytes }
}

// WithCacheCapacity bounds the number of simultaneously open index
// handles; least recently used handles are evicted past the bound.
func WithCacheCapacity(n int) Option {
	return func(svc *MemoryService) { svc.cacheCapacity = n }
}

// WithLogger sets the structured logger used by the service and the
// stores it hands out.
func WithLogger(log *slog.Logger) Option {
	return func(svc *MemoryService) { svc.log = log }
}

// NewService creates a registry rooted at the given directory.
func NewService(root string, opts ...Option) (*MemoryService, error) {
	svc := &MemoryService{
		root:             root,
		writerBufferSize: DefaultWriterBufferSize,
		cacheCapacity:    DefaultCacheCapacity,
		log:              slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}

	cache, err := lru.NewWithEvict[string, *sql.DB](svc.cacheCapacity, func(name string, _ *sql.DB) {
		// Evicted handles stay open: stores handed out earlier may still
		// hold them. Close() tears down whatever is still cached.
		svc.log.Debug("store handle evicted", "name", name)
	})
	if err != nil {
		return nil, fmt.Errorf("create handle cache: %w", err)
	}
	svc.cache = cache
	return svc, nil
}

// GetStore opens or creates the named collection and returns a store over
// it. Cache hits share the index handle but every call gets an
// independent writer, so two live stores over the same name will contend
// for the collection's write lock; coordinating that is the caller's
// responsibility.
func (svc *MemoryService) GetStore(name string) (*MemoryStore, error) {
	if !storeNameRE.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if db, ok := svc.cache.Get(name); ok {
		return newStore(db, svc.log), nil
	}

	dir := filepath.Join(svc.root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := openIndex(filepath.Join(dir, indexFileName), svc.writerBufferSize)
	if err != nil {
		return nil, fmt.Errorf("open store %q: %w", name, err)
	}
	svc.cache.Add(name, db)

	svc.log.Debug("store opened", "name", name, "dir", dir)
	return newStore(db, svc.log), nil
}

// ListStores returns collection names. With cachedOnly it lists the names
// currently resident in the handle cache; otherwise it scans the root for
// directories containing an index file.
func (svc *MemoryService) ListStores(cachedOnly bool) ([]string, error) {
	if cachedOnly {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return svc.cache.Keys(), nil
	}

	entries, err := os.ReadDir(svc.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan store root: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		marker := filepath.Join(svc.root, entry.Name(), indexFileName)
		if _, err := os.Stat(marker); err == nil {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Close closes every cached index handle. Stores handed out before Close
// must not be used afterwards.
func (svc *MemoryService) Close() error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	var firstErr error
	for _, name := range svc.cache.Keys() {
		if db, ok := svc.cache.Peek(name); ok {
			if err := db.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("close store %q: %w", name, err)
			}
		}
	}
	svc.cache.Purge()
	return firstErr
}

// openIndex opens or creates the collection database and brings its
// schema up to date. The buffer size maps onto SQLite's page cache
// (negative pragma value means KiB).
func openIndex(path string, bufferSize int) (*sql.DB, error) {
	if bufferSize <= 0 {
		bufferSize = DefaultWriterBufferSize
	}
	cacheKiB := bufferSize / 1024
	if cacheKiB < 1 {
		cacheKiB = 1
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=cache_size(-%d)", path, cacheKiB)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
