package commands

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ubuntu/app-showcase/internal/about"
	"github.com/ubuntu/app-showcase/internal/constants"
	"github.com/ubuntu/app-showcase/internal/fetch"
	"github.com/ubuntu/app-showcase/internal/iconcache"
	"github.com/ubuntu/app-showcase/internal/kvstore"
	"github.com/ubuntu/app-showcase/internal/metrics"
	"github.com/ubuntu/app-showcase/internal/showcase"
	"github.com/ubuntu/app-showcase/internal/tips"
)

// session wires the components of the about screen from the app configuration.
type session struct {
	registry *prometheus.Registry
	store    *kvstore.FileStore
	showcase *showcase.Service
	icons    *iconcache.Cache
	vm       *about.ViewModel
}

// newSession validates the configuration and builds the components of the about screen.
func (a *App) newSession() (*session, error) {
	info := a.config.App.WithDefaults()
	if err := info.Validate(); err != nil {
		return nil, fmt.Errorf("invalid app configuration: %w", err)
	}

	s := session{registry: prometheus.NewRegistry()}
	m := metrics.New(s.registry)
	l := slog.Default()

	f := a.fetcher
	if f == nil {
		f = fetch.NewHTTPFetcher(
			fetch.WithResponseTimeout(a.config.Showcase.Timeout),
			fetch.WithUserAgent(fmt.Sprintf("%s/%s", constants.CmdName, constants.Version)),
			fetch.WithLogger(l))
	}

	s.store = kvstore.NewFileStore(l, a.config.StateFile)

	opts := []showcase.Options{
		showcase.WithRemoteURL(info.ShowcaseURL),
		showcase.WithCurrentAppStoreID(info.AppStoreID),
		showcase.WithFetcher(f),
		showcase.WithDevelopment(a.config.Showcase.Development),
		showcase.WithLogger(l),
		showcase.WithMetrics(m),
	}
	if a.config.Showcase.StalenessWindow > 0 {
		opts = append(opts, showcase.WithStalenessWindow(a.config.Showcase.StalenessWindow))
	}
	s.showcase = showcase.New(s.store, opts...)

	s.icons = iconcache.New(a.config.IconDir,
		iconcache.WithFetcher(f),
		iconcache.WithLogger(l),
		iconcache.WithMetrics(m))

	var commerce tips.Commerce
	if len(a.config.Products) > 0 {
		commerce = tips.StaticCommerce(a.config.Products)
	}
	jar := tips.NewJar(commerce, info.Tips, l)

	s.vm = about.NewViewModel(info, s.showcase, s.icons, jar)

	a.session = &s
	return &s, nil
}
