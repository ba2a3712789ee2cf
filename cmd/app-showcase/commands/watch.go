package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/ubuntu/app-showcase/internal/metrics"
	"github.com/ubuntu/app-showcase/internal/showcase"
)

func (a *App) installWatch() error {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the about screen each time its showcase changes",
		Long: `Print the about screen, then print it again each time the showcase catalog is updated,
by this process or by any other one sharing the same state file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch(cmd)
		},
	}

	cmd.Flags().String("metrics-host", "", "host for the metrics endpoint")
	cmd.Flags().Int("metrics-port", 0, "port for the metrics endpoint, disabled when 0")

	if err := bindFlags(a.viper, cmd.Flags(), map[string]string{
		"metricshost": "metrics-host",
		"metricsport": "metrics-port",
	}); err != nil {
		return err
	}

	a.cmd.AddCommand(cmd)
	return nil
}

func (a *App) watch(cmd *cobra.Command) error {
	s, err := a.newSession()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(a.ctx)
	defer cancel()

	changes, errs, err := s.store.Watch(ctx)
	if err != nil {
		return fmt.Errorf("could not watch state file: %v", err)
	}

	if a.config.MetricsPort > 0 {
		srv := metrics.NewServer(metrics.ServerConfig{
			Host:        a.config.MetricsHost,
			Port:        a.config.MetricsPort,
			ReadTimeout: 5 * time.Second,
		}, s.registry)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("Could not shut down metrics server", "error", err)
			}
			wg.Wait()
		}()
	}

	locale := a.locale()
	out := cmd.OutOrStdout()
	var mu sync.Mutex
	render := func() {
		mu.Lock()
		defer mu.Unlock()
		if err := newAboutView(s.vm, locale).write(out); err != nil {
			slog.Warn("Could not print about screen", "error", err)
		}
	}

	unsubscribe := s.showcase.Subscribe(func(showcase.Snapshot) { render() })
	defer unsubscribe()

	render()
	s.vm.Appear(ctx)
	defer s.showcase.Wait()

	close(a.ready)

	for {
		select {
		case <-ctx.Done():
			slog.Debug("Stopped watching the showcase")
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			slog.Debug("State file changed, reloading showcase")
			s.showcase.Load()
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			return fmt.Errorf("state watcher failed: %v", err)
		}
	}
}
