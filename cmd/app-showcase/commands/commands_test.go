package commands_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/ubuntu/app-showcase/cmd/app-showcase/commands"
	"github.com/ubuntu/app-showcase/internal/testutils"
)

const (
	remoteURL = "https://example.com/showcase/apps.json"
	storeID   = "1000"
)

// newAppForTests returns an app configured with conf, fetching through f and writing to the returned buffer.
func newAppForTests(t *testing.T, conf *commands.AppConfig, f *fakeFetcher, args ...string) (*commands.App, *testutils.SyncBuffer) {
	t.Helper()

	a := commands.NewForTests(t, conf, args...)
	if f != nil {
		a.SetFetcher(f)
	}
	out := &testutils.SyncBuffer{}
	a.SetOutput(out)
	return a, out
}

// catalogJSON returns a remote catalog listing one app per store id.
func catalogJSON(version string, ids ...string) []byte {
	apps := make([]string, 0, len(ids))
	for _, id := range ids {
		apps = append(apps, fmt.Sprintf(`{"id":"app.%[1]s","name":"Remote %[1]s","briefDescription":{"en":"Remote app %[1]s","de":"Entferntes %[1]s"},"appStoreID":"%[1]s","platforms":["iOS","macOS"]}`, id))
	}
	return []byte(fmt.Sprintf(`{"version":%q,"lastUpdated":"2025-09-01T10:00:00Z","apps":[%s]}`, version, strings.Join(apps, ",")))
}

// fakeFetcher serves canned responses. Unknown URLs fail.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string][]byte
	err       error
	calls     int
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.responses[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return bytes.Clone(data), nil
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
