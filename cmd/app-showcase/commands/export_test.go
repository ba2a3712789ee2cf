package commands

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ubuntu/app-showcase/internal/constants"
	"github.com/ubuntu/app-showcase/internal/fetch"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

type (
	AppConfig      = appConfig
	ShowcaseConfig = showcaseConfig
)

// Config returns the configuration of the app.
func (a *App) Config() AppConfig {
	return a.config
}

// NewForTests creates a new App instance for testing purposes, configured with conf.
func NewForTests(t *testing.T, conf *AppConfig, args ...string) *App {
	t.Helper()

	p := GenerateTestConfig(t, conf)
	argsWithConf := append(args, "--config", p)

	a, err := New()
	require.NoError(t, err, "Setup: failed to create app")
	a.cmd.SetArgs(argsWithConf)
	return a
}

// GenerateTestConfig generates a temporary config file for testing.
func GenerateTestConfig(t *testing.T, origConf *AppConfig) string {
	t.Helper()

	var conf appConfig

	if origConf != nil {
		conf = *origConf
	}

	if conf.Verbosity == 0 {
		conf.Verbosity = 2
	}
	if conf.Locale == language.Und {
		conf.Locale = language.English
	}
	if conf.Showcase.StalenessWindow == 0 {
		conf.Showcase.StalenessWindow = constants.DefaultStalenessWindow
	}
	if conf.Showcase.Timeout == 0 {
		conf.Showcase.Timeout = time.Second
	}
	if conf.StateFile == "" {
		conf.StateFile = filepath.Join(t.TempDir(), constants.StateFileName)
	}
	if conf.IconDir == "" {
		conf.IconDir = filepath.Join(t.TempDir(), constants.IconCacheFolder)
	}

	d, err := yaml.Marshal(conf)
	require.NoError(t, err, "Setup: failed to marshal config for tests")

	confPath := filepath.Join(t.TempDir(), "testconfig.yaml")
	require.NoError(t, os.WriteFile(confPath, d, 0600), "Setup: failed to write config for tests")

	return confPath
}

// SetArgs set some arguments on root command for tests.
func (a *App) SetArgs(args ...string) {
	a.cmd.SetArgs(args)
}

// SetSilenceUsage set the SilenceUsage flag on root command for tests.
func (a *App) SetSilenceUsage(silence bool) {
	a.cmd.SilenceUsage = silence
}

// SetOutput redirects the output of every command to w.
func (a *App) SetOutput(w io.Writer) {
	a.cmd.SetOut(w)
}

// SetFetcher replaces the HTTP fetcher of the showcase and icon cache.
func (a *App) SetFetcher(f fetch.Fetcher) {
	a.fetcher = f
}
