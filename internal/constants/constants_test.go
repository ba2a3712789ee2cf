package constants_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ubuntu/app-showcase/internal/constants"
)

func TestDefaultPaths(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		baseDir func() (string, error)

		wantConfig string
		wantCache  string
		wantIcons  string
	}{
		"Base dir resolved": {
			baseDir:    func() (string, error) { return "abc/def", nil },
			wantConfig: filepath.Join("abc/def", constants.DefaultAppFolder),
			wantCache:  filepath.Join("abc/def", constants.DefaultAppFolder),
			wantIcons:  filepath.Join("abc/def", constants.DefaultAppFolder, constants.IconCacheFolder),
		},
		"Base dir error": {
			baseDir:    func() (string, error) { return "", errors.New("error") },
			wantConfig: constants.DefaultAppFolder,
			wantCache:  constants.DefaultAppFolder,
			wantIcons:  filepath.Join(constants.DefaultAppFolder, constants.IconCacheFolder),
		},
		"Base dir error with value": {
			baseDir:    func() (string, error) { return "abc", errors.New("error") },
			wantConfig: constants.DefaultAppFolder,
			wantCache:  constants.DefaultAppFolder,
			wantIcons:  filepath.Join(constants.DefaultAppFolder, constants.IconCacheFolder),
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.wantConfig, constants.GetDefaultConfigPath(constants.WithBaseDir(tc.baseDir)), "Unexpected config path")
			require.Equal(t, tc.wantCache, constants.GetDefaultCachePath(constants.WithBaseDir(tc.baseDir)), "Unexpected cache path")
			require.Equal(t, tc.wantIcons, constants.GetDefaultIconCachePath(constants.WithBaseDir(tc.baseDir)), "Unexpected icon cache path")
		})
	}
}
