// Package constants is responsible for defining the constants used in the application.
// It also provides utility functions to get the default configuration and cache paths.
package constants

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	// CmdName is the name of the command line tool.
	CmdName = "app-showcase"

	// DefaultAppFolder is the name of the default root folder.
	DefaultAppFolder = "app-showcase"

	// DefaultLogLevel is the default log level selected without any verbosity flags.
	DefaultLogLevel = slog.LevelWarn

	// StateFileName is the base name of the file holding the persisted key/value slots.
	StateFileName = "state.toml"

	// IconCacheFolder is the name of the folder holding the downloaded app icons.
	IconCacheFolder = "AppAboutViewIconCache"

	// CachedCatalogKey is the persisted slot holding the raw bytes of the last fetched catalog.
	CachedCatalogKey = "cachedCatalogBytes"

	// LastFetchKey is the persisted slot holding the time of the last successful remote fetch.
	LastFetchKey = "lastFetchTimestamp"

	// DefaultStalenessWindow is the age after which a fetched catalog is considered stale.
	DefaultStalenessWindow = 3600 * time.Second

	// DefaultResponseTimeout is the default time to wait for a remote response.
	DefaultResponseTimeout = 10 * time.Second

	// MaxMemoryIcons is the maximum number of decoded icons kept in memory.
	MaxMemoryIcons = 100

	// MaxMemoryIconBytes is the maximum total cost of the icons kept in memory.
	MaxMemoryIconBytes = 20 * 1024 * 1024

	// MaxResponseBytes bounds the size of any remote payload.
	MaxResponseBytes = 16 * 1024 * 1024
)

// Version is the version of the executable, overridden at build time.
var Version = "Dev"

type options struct {
	baseDir func() (string, error)
}

type option func(*options)

// GetDefaultConfigPath is the default path to the configuration directory.
func GetDefaultConfigPath(opts ...option) string {
	o := options{baseDir: os.UserConfigDir}
	for _, opt := range opts {
		opt(&o)
	}

	return filepath.Join(getBaseDir(o.baseDir), DefaultAppFolder)
}

// GetDefaultCachePath is the default path to the cache directory.
func GetDefaultCachePath(opts ...option) string {
	o := options{baseDir: os.UserCacheDir}
	for _, opt := range opts {
		opt(&o)
	}

	return filepath.Join(getBaseDir(o.baseDir), DefaultAppFolder)
}

// GetDefaultIconCachePath is the default path to the icon disk cache.
func GetDefaultIconCachePath(opts ...option) string {
	return filepath.Join(GetDefaultCachePath(opts...), IconCacheFolder)
}

// getBaseDir is a helper function to handle the case where the baseDir function returns an error, and instead return an empty string.
func getBaseDir(baseDirFunc func() (string, error)) string {
	dir, err := baseDirFunc()
	if err != nil {
		return ""
	}
	return dir
}
