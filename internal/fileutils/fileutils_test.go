package fileutils_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ubuntu/app-showcase/internal/fileutils"
)

func TestAtomicWrite(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		data            []byte
		fileExists      bool
		fileExistsPerms os.FileMode
		invalidDir      bool

		wantErrWin bool
		wantError  bool
	}{
		"Empty file":          {data: []byte{}},
		"Non-empty file":      {data: []byte("data")},
		"Override file":       {data: []byte("data"), fileExistsPerms: 0600, fileExists: true},
		"Override empty file": {data: []byte{}, fileExistsPerms: 0600, fileExists: true},

		"Existing empty file":     {data: []byte{}, fileExistsPerms: 0600, fileExists: true},
		"Existing non-empty file": {data: []byte("data"), fileExistsPerms: 0600, fileExists: true},

		"Override read-only file": {data: []byte("data"), fileExistsPerms: 0400, fileExists: true, wantError: runtime.GOOS == "windows"},
		"Override No Perms file":  {data: []byte("data"), fileExistsPerms: 0000, fileExists: true, wantError: runtime.GOOS == "windows"},
		"Invalid Dir":             {data: []byte("data"), invalidDir: true, wantError: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			oldFile := []byte("Old File!")
			tempDir := t.TempDir()
			path := filepath.Join(tempDir, "file")
			if tc.invalidDir {
				path = filepath.Join(path, "fake_dir")
			}

			if tc.fileExists {
				err := os.WriteFile(path, oldFile, tc.fileExistsPerms)
				require.NoError(t, err, "Setup: WriteFile should not return an error")
				t.Cleanup(func() { _ = os.Chmod(path, 0600) })
			}

			err := fileutils.AtomicWrite(path, tc.data)
			if tc.wantError || (tc.wantErrWin && runtime.GOOS == "windows") {
				require.Error(t, err, "AtomicWrite should return an error")

				// Check that the file was not overwritten
				if !tc.fileExists {
					return
				}

				if tc.invalidDir {
					path = filepath.Dir(path)
				}

				data, err := os.ReadFile(path)
				require.NoError(t, err, "ReadFile should not return an error")
				require.Equal(t, oldFile, data, "AtomicWrite should not overwrite the file")

				return
			}
			require.NoError(t, err, "AtomicWrite should not return an error")

			// Check that the file was written
			data, err := os.ReadFile(path)
			require.NoError(t, err, "ReadFile should not return an error")
			require.Equal(t, tc.data, data, "AtomicWrite should write the data to the file")
		})
	}
}

func TestReadFileIfExists(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content []byte
		missing bool
		isDir   bool

		wantFound bool
		wantErr   bool
	}{
		"Existing file":       {content: []byte("data"), wantFound: true},
		"Existing empty file": {content: []byte{}, wantFound: true},
		"Missing file":        {missing: true},

		"Path is a directory": {isDir: true, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "file")
			switch {
			case tc.isDir:
				require.NoError(t, os.Mkdir(path, 0750), "Setup: failed to create directory")
			case !tc.missing:
				require.NoError(t, os.WriteFile(path, tc.content, 0600), "Setup: failed to write file")
			}

			data, found, err := fileutils.ReadFileIfExists(path)
			if tc.wantErr {
				require.Error(t, err, "ReadFileIfExists should return an error")
				return
			}
			require.NoError(t, err, "ReadFileIfExists should not return an error")
			require.Equal(t, tc.wantFound, found, "Unexpected found state")
			if tc.wantFound {
				require.Equal(t, tc.content, data, "ReadFileIfExists should return the file content")
			}
		})
	}
}

func TestResetDir(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		existing bool
	}{
		"Existing directory with content": {existing: true},
		"Missing directory":               {},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := filepath.Join(t.TempDir(), "cache")
			if tc.existing {
				require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0750), "Setup: failed to create directory")
				require.NoError(t, os.WriteFile(filepath.Join(dir, "entry"), []byte("data"), 0600), "Setup: failed to write file")
			}

			require.NoError(t, fileutils.ResetDir(dir), "ResetDir should not return an error")

			entries, err := os.ReadDir(dir)
			require.NoError(t, err, "ResetDir should leave a readable directory")
			require.Empty(t, entries, "ResetDir should leave an empty directory")
		})
	}
}
