// Package showcase publishes the catalog of apps promoted on the about screen.
//
// The published catalog combines three sources by precedence: the bundled catalog, the last
// fetched catalog persisted in the store, and, when stale, a fresh copy of the remote feed.
// The app the screen is shown in is always filtered out.
package showcase

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/ubuntu/app-showcase/internal/catalog"
	"github.com/ubuntu/app-showcase/internal/constants"
	"github.com/ubuntu/app-showcase/internal/fetch"
	"github.com/ubuntu/app-showcase/internal/kvstore"
	"github.com/ubuntu/app-showcase/internal/metrics"
	"golang.org/x/sync/singleflight"
)

type timeProvider interface {
	Now() time.Time
}

type realTimeProvider struct{}

func (realTimeProvider) Now() time.Time {
	return time.Now()
}

// Snapshot is the published state of the service. It must be treated as read only.
type Snapshot struct {
	Apps    []catalog.App
	Version string
	// LastUpdated is only meaningful when HasLastUpdated is true.
	LastUpdated    time.Time
	HasLastUpdated bool
}

func newSnapshot(c catalog.Catalog) Snapshot {
	t, ok := c.LastUpdatedTime()
	return Snapshot{
		Apps:           c.Apps,
		Version:        c.Version,
		LastUpdated:    t,
		HasLastUpdated: ok,
	}
}

// Service loads, refreshes and publishes the showcase catalog.
type Service struct {
	store          kvstore.Store
	remoteURL      string
	currentStoreID string
	bundled        []byte
	fetcher        fetch.Fetcher
	development    bool
	window         time.Duration
	timeProvider   timeProvider

	mu       sync.RWMutex
	snapshot Snapshot

	// publishMu serializes publications and the observer calls following them.
	publishMu   sync.Mutex
	observersMu sync.Mutex
	observers   map[int]func(Snapshot)
	nextID      int

	refreshes singleflight.Group
	inflight  sync.WaitGroup

	log     *slog.Logger
	metrics *metrics.Collectors
}

type options struct {
	remoteURL      string
	currentStoreID string
	bundled        []byte
	fetcher        fetch.Fetcher
	development    bool
	window         time.Duration
	timeProvider   timeProvider
	logger         *slog.Logger
	metrics        *metrics.Collectors
}

// Options represents an optional function to override Service default values.
type Options func(*options)

// WithRemoteURL sets the address of the remote catalog feed. Without it, the service never refreshes.
func WithRemoteURL(url string) Options {
	return func(o *options) {
		o.remoteURL = url
	}
}

// WithCurrentAppStoreID sets the store id of the hosting app, which is filtered out of the published catalog.
func WithCurrentAppStoreID(id string) Options {
	return func(o *options) {
		o.currentStoreID = id
	}
}

// WithBundled replaces the catalog packaged with the library.
func WithBundled(data []byte) Options {
	return func(o *options) {
		o.bundled = data
	}
}

// WithFetcher sets how the remote feed is retrieved.
func WithFetcher(f fetch.Fetcher) Options {
	return func(o *options) {
		o.fetcher = f
	}
}

// WithDevelopment makes every refresh request fetch the remote feed, regardless of its age.
func WithDevelopment(enabled bool) Options {
	return func(o *options) {
		o.development = enabled
	}
}

// WithStalenessWindow sets the age after which the last fetched catalog is refreshed.
func WithStalenessWindow(d time.Duration) Options {
	return func(o *options) {
		o.window = d
	}
}

// WithLogger sets the logger used by the service.
func WithLogger(l *slog.Logger) Options {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics sets the collectors recording refresh outcomes.
func WithMetrics(m *metrics.Collectors) Options {
	return func(o *options) {
		o.metrics = m
	}
}

// New returns a Service persisting fetched catalogs in store.
// The bundled and cached catalogs are loaded and published before New returns.
func New(store kvstore.Store, args ...Options) *Service {
	opts := options{
		bundled:      catalog.Bundled(),
		window:       constants.DefaultStalenessWindow,
		timeProvider: realTimeProvider{},
		logger:       slog.Default(),
	}
	for _, opt := range args {
		opt(&opts)
	}
	if opts.fetcher == nil {
		opts.fetcher = fetch.NewHTTPFetcher(fetch.WithLogger(opts.logger))
	}

	s := &Service{
		store:          store,
		remoteURL:      opts.remoteURL,
		currentStoreID: opts.currentStoreID,
		bundled:        opts.bundled,
		fetcher:        opts.fetcher,
		development:    opts.development,
		window:         opts.window,
		timeProvider:   opts.timeProvider,
		observers:      make(map[int]func(Snapshot)),
		log:            opts.logger,
		metrics:        opts.metrics,
	}
	s.Load()

	return s
}

// Load publishes the bundled catalog, superseded by the cached one when it decodes.
// A source which fails to decode is skipped and the previously published state is kept.
// Load never writes to the store.
func (s *Service) Load() {
	var (
		c     catalog.Catalog
		found bool
	)

	if bc, err := catalog.Decode(s.bundled); err != nil {
		s.log.Warn("Could not decode bundled catalog", "error", err)
	} else {
		c, found = bc, true
		s.log.Debug("Loaded bundled catalog", "version", bc.Version, "apps", len(bc.Apps))
	}

	if cc, ok := s.cached(); ok {
		c, found = cc, true
	}

	if !found {
		return
	}
	s.publish(c)
}

// cached returns the catalog persisted by the last successful fetch.
func (s *Service) cached() (catalog.Catalog, bool) {
	data, found, err := s.store.Get(constants.CachedCatalogKey)
	if err != nil {
		s.log.Warn("Could not read cached catalog", "error", err)
		return catalog.Catalog{}, false
	}
	if !found {
		s.log.Debug("No cached catalog")
		return catalog.Catalog{}, false
	}

	c, err := catalog.Decode(data)
	if err != nil {
		s.log.Warn("Ignoring undecodable cached catalog", "error", err)
		return catalog.Catalog{}, false
	}
	s.log.Debug("Loaded cached catalog", "version", c.Version, "apps", len(c.Apps))
	return c, true
}

// publish replaces the published snapshot and notifies the observers.
func (s *Service) publish(c catalog.Catalog) {
	snap := newSnapshot(c.WithoutStoreID(s.currentStoreID))

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	s.observersMu.Lock()
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	observers := make([]func(Snapshot), 0, len(ids))
	for _, id := range ids {
		observers = append(observers, s.observers[id])
	}
	s.observersMu.Unlock()

	for _, f := range observers {
		f(snap.clone())
	}
}

func (snap Snapshot) clone() Snapshot {
	snap.Apps = slices.Clone(snap.Apps)
	return snap
}

// Snapshot returns the published state.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.clone()
}

// Apps returns the published apps, in source order.
func (s *Service) Apps() []catalog.App {
	return s.Snapshot().Apps
}

// LastUpdated returns the update time of the published catalog. ok is false if it could not be parsed.
func (s *Service) LastUpdated() (t time.Time, ok bool) {
	snap := s.Snapshot()
	return snap.LastUpdated, snap.HasLastUpdated
}

// Subscribe registers f to be called with the new state after each publication, in registration order.
// f must not trigger a publication itself. The returned function unregisters f.
func (s *Service) Subscribe(f func(Snapshot)) (cancel func()) {
	s.observersMu.Lock()
	defer s.observersMu.Unlock()

	id := s.nextID
	s.nextID++
	s.observers[id] = f

	return func() {
		s.observersMu.Lock()
		defer s.observersMu.Unlock()
		delete(s.observers, id)
	}
}
