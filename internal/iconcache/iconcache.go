// Package iconcache loads app icons from a two tier cache: a bounded memory tier in front of a
// directory of downloaded files, falling back to the network.
package iconcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/ubuntu/app-showcase/internal/constants"
	"github.com/ubuntu/app-showcase/internal/fetch"
	"github.com/ubuntu/app-showcase/internal/fileutils"
	"github.com/ubuntu/app-showcase/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// Cache is a memory and disk cache of icons keyed by their URL.
type Cache struct {
	dir     string
	fetcher fetch.Fetcher
	decoder Decoder
	mem     *memoryCache
	loads   singleflight.Group

	// generation is bumped by Clear so that loads started before it do not repopulate the cache.
	mu         sync.RWMutex
	generation uint64

	log     *slog.Logger
	metrics *metrics.Collectors
}

// Stats describes the content of the memory tier.
type Stats struct {
	Entries int
	Cost    int
}

type options struct {
	fetcher  fetch.Fetcher
	decoder  Decoder
	maxCount int
	maxCost  int
	logger   *slog.Logger
	metrics  *metrics.Collectors
}

// Options represents an optional function to override Cache default values.
type Options func(*options)

// WithFetcher sets how icons missing from both tiers are downloaded.
func WithFetcher(f fetch.Fetcher) Options {
	return func(o *options) {
		o.fetcher = f
	}
}

// WithDecoder sets the decoder validating downloaded and stored bytes.
func WithDecoder(d Decoder) Options {
	return func(o *options) {
		o.decoder = d
	}
}

// WithMemoryLimits bounds the memory tier by entry count and total byte cost.
func WithMemoryLimits(count, cost int) Options {
	return func(o *options) {
		o.maxCount = count
		o.maxCost = cost
	}
}

// WithLogger sets the logger used by the cache.
func WithLogger(l *slog.Logger) Options {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics sets the collectors recording cache hits and misses.
func WithMetrics(m *metrics.Collectors) Options {
	return func(o *options) {
		o.metrics = m
	}
}

// New returns a Cache storing downloaded icons in dir.
// The directory is created when the first icon is stored.
func New(dir string, args ...Options) *Cache {
	opts := options{
		decoder:  StdDecoder{},
		maxCount: constants.MaxMemoryIcons,
		maxCost:  constants.MaxMemoryIconBytes,
		logger:   slog.Default(),
	}
	for _, opt := range args {
		opt(&opts)
	}
	if opts.fetcher == nil {
		opts.fetcher = fetch.NewHTTPFetcher(fetch.WithLogger(opts.logger))
	}

	return &Cache{
		dir:     dir,
		fetcher: opts.fetcher,
		decoder: opts.decoder,
		mem:     newMemoryCache(opts.maxCount, opts.maxCost),
		log:     opts.logger,
		metrics: opts.metrics,
	}
}

// Key returns the cache key of url: the hex encoded SHA-256 digest of the URL string.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Dir returns the directory of the disk tier.
func (c *Cache) Dir() string {
	return c.dir
}

// Load returns the icon at url, looking in memory first, then on disk, then on the network.
// It returns false if the icon could not be obtained. Nothing is cached on failure.
func (c *Cache) Load(ctx context.Context, url string) (Image, bool) {
	key := Key(url)
	if img, ok := c.mem.get(key); ok {
		c.metrics.IconServed(metrics.TierMemory)
		return img, true
	}

	v, err, _ := c.loads.Do(key, func() (any, error) {
		return c.load(ctx, key, url)
	})
	if err != nil {
		c.log.Debug("Could not load icon", "url", url, "error", err)
		c.metrics.IconMissed()
		return Image{}, false
	}
	return v.(Image), true
}

// load looks up the disk tier then the network. It runs at most once per key at any time.
func (c *Cache) load(ctx context.Context, key, url string) (Image, error) {
	gen := c.currentGeneration()

	// A concurrent load may have completed between the memory lookup and now.
	if img, ok := c.mem.get(key); ok {
		c.metrics.IconServed(metrics.TierMemory)
		return img, nil
	}

	path := filepath.Join(c.dir, key)
	if img, ok := c.loadFromDisk(path); ok {
		if err := c.keep(gen, key, img, ""); err != nil {
			c.log.Warn("Could not keep cached icon", "file", path, "error", err)
		}
		c.metrics.IconServed(metrics.TierDisk)
		return img, nil
	}

	data, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		c.metrics.IconFetchFailed()
		return Image{}, err
	}
	img, err := c.decoder.Decode(data)
	if err != nil {
		return Image{}, err
	}

	if err := c.keep(gen, key, img, path); err != nil {
		c.log.Warn("Could not store icon on disk", "url", url, "file", path, "error", err)
	}
	c.metrics.IconServed(metrics.TierNetwork)
	return img, nil
}

func (c *Cache) loadFromDisk(path string) (Image, bool) {
	data, found, err := fileutils.ReadFileIfExists(path)
	if err != nil {
		c.log.Warn("Could not read cached icon", "file", path, "error", err)
		return Image{}, false
	}
	if !found {
		return Image{}, false
	}

	img, err := c.decoder.Decode(data)
	if err != nil {
		c.log.Info("Discarding undecodable cached icon", "file", path, "error", err)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			c.log.Warn("Could not remove cached icon", "file", path, "error", err)
		}
		return Image{}, false
	}
	return img, true
}

// keep stores img in memory and, if path is set, writes its bytes to path.
// Nothing is kept if the cache was cleared since gen.
func (c *Cache) keep(gen uint64, key string, img Image, path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if gen != c.generation {
		return nil
	}
	c.mem.add(key, img)

	if path == "" {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0750); err != nil {
		return fmt.Errorf("could not create icon cache directory: %v", err)
	}
	return fileutils.AtomicWrite(path, img.Data)
}

func (c *Cache) currentGeneration() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Clear drops every icon from memory and recreates an empty disk directory.
// Loads in flight when Clear is called still return their icon but do not cache it.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.mem.clear()
	if err := fileutils.ResetDir(c.dir); err != nil {
		return fmt.Errorf("could not clear icon cache: %v", err)
	}
	c.log.Debug("Cleared icon cache", "dir", c.dir)
	return nil
}

// Stats returns the number of icons held in memory and their total cost.
func (c *Cache) Stats() Stats {
	return c.mem.stats()
}
