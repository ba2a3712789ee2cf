package showcase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ubuntu/app-showcase/internal/catalog"
	"github.com/ubuntu/app-showcase/internal/constants"
	"github.com/ubuntu/app-showcase/internal/metrics"
	"github.com/ubuntu/decorate"
)

// ErrNoRemote is returned by Refresh when no remote feed is configured.
var ErrNoRemote = errors.New("no remote catalog configured")

const refreshKey = "refresh"

// RefreshIfStale fetches the remote feed in the background if the last fetched catalog is stale.
//
// It is a no-op without a remote URL. Failures are logged and leave the published state and the
// store untouched. Overlapping calls share a single fetch. Use Wait to wait for completion.
func (s *Service) RefreshIfStale(ctx context.Context) {
	if s.remoteURL == "" {
		s.log.Debug("No remote catalog configured, skipping refresh")
		s.metrics.Refreshed(metrics.OutcomeSkipped, 0)
		return
	}
	if !s.isStale() {
		s.log.Debug("Cached catalog is fresh, skipping refresh")
		s.metrics.Refreshed(metrics.OutcomeSkipped, 0)
		return
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if err := s.refresh(ctx, false); err != nil {
			s.log.Warn("Could not refresh showcase catalog", "url", s.remoteURL, "error", err)
		}
	}()
}

// Refresh fetches the remote feed now, whatever the age of the last fetched catalog.
// It has the same effects as a background refresh but returns its error.
func (s *Service) Refresh(ctx context.Context) error {
	if s.remoteURL == "" {
		return ErrNoRemote
	}
	return s.refresh(ctx, true)
}

// Wait blocks until the background refreshes started by RefreshIfStale complete.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// refresh fetches and publishes the remote catalog. Concurrent calls are collapsed into one fetch.
func (s *Service) refresh(ctx context.Context, force bool) error {
	_, err, _ := s.refreshes.Do(refreshKey, func() (any, error) {
		// A refresh which completed while this one was waiting to start made the cache fresh.
		if !force && !s.isStale() {
			s.metrics.Refreshed(metrics.OutcomeSkipped, 0)
			return nil, nil
		}

		start := s.timeProvider.Now()
		err := s.fetchAndPublish(ctx)
		outcome := metrics.OutcomeFetched
		if err != nil {
			outcome = metrics.OutcomeFailed
		}
		s.metrics.Refreshed(outcome, s.timeProvider.Now().Sub(start))
		return nil, err
	})
	return err
}

func (s *Service) fetchAndPublish(ctx context.Context) (err error) {
	defer decorate.OnError(&err, "could not refresh from %s", s.remoteURL)

	data, err := s.fetcher.Fetch(ctx, s.remoteURL)
	if err != nil {
		return err
	}
	c, err := catalog.Decode(data)
	if err != nil {
		return err
	}
	s.log.Info("Fetched showcase catalog", "url", s.remoteURL, "version", c.Version, "apps", len(c.Apps))

	s.persist(data)
	s.publish(c)
	return nil
}

// persist stores the fetched bytes and the fetch time. Failures are logged only.
// The fetch time is not written if the bytes could not be, so that a failed write is retried.
func (s *Service) persist(data []byte) {
	if err := s.store.Set(constants.CachedCatalogKey, data); err != nil {
		s.log.Warn("Could not persist fetched catalog", "error", err)
		return
	}
	now := s.timeProvider.Now().UTC().Format(time.RFC3339Nano)
	if err := s.store.Set(constants.LastFetchKey, []byte(now)); err != nil {
		s.log.Warn("Could not persist fetch time", "error", err)
	}
}

// isStale reports whether the remote feed should be fetched.
func (s *Service) isStale() bool {
	if s.development {
		return true
	}

	last, err := s.lastFetch()
	if err != nil {
		s.log.Debug("Treating catalog as stale", "reason", err)
		return true
	}
	return s.timeProvider.Now().Sub(last) > s.window
}

// lastFetch returns the time of the last successful fetch.
func (s *Service) lastFetch() (time.Time, error) {
	data, found, err := s.store.Get(constants.LastFetchKey)
	if err != nil {
		return time.Time{}, err
	}
	if !found {
		return time.Time{}, errors.New("never fetched")
	}
	t, err := time.Parse(time.RFC3339Nano, string(data))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid fetch time %q: %v", data, err)
	}
	return t, nil
}

// LastFetch returns the time of the last successful remote fetch. ok is false if there was none.
func (s *Service) LastFetch() (t time.Time, ok bool) {
	t, err := s.lastFetch()
	return t, err == nil
}
