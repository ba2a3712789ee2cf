package commands_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ubuntu/app-showcase/cmd/app-showcase/commands"
	"github.com/ubuntu/app-showcase/internal/about"
	"github.com/ubuntu/app-showcase/internal/tips"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

func TestShow(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		info     about.Info
		products []tips.Product
		locale   language.Tag
		remote   []byte
		fetchErr error
		args     []string

		wantFetches int
		wantOutput  []string
		wantMissing []string
		wantErr     bool
	}{
		"Bundled showcase without remote": {
			info: about.Info{AppStoreID: storeID, AppName: "Tester", FeedbackEmail: "me@example.com"},
			wantOutput: []string{
				"Tester\nVersion 1.0.0 (Build 1)\n",
				"Rate: https://apps.apple.com/app/id" + storeID,
				"Feedback: mailto:me@example.com?subject=Tester%20Feedback",
				"Tidepool: Track tides and moon phases for your favourite beaches.",
				"https://apps.apple.com/app/id6461203357",
				"macOS, visionOS",
			},
			wantMissing: []string{"Privacy policy", "Tips:"},
		},
		"Defaults for the app identity": {
			info:        about.Info{AppStoreID: storeID},
			wantOutput:  []string{"App\nVersion 1.0.0 (Build 1)\n"},
			wantMissing: []string{"Feedback:"},
		},
		"Descriptions in the configured locale": {
			info:       about.Info{AppStoreID: storeID},
			locale:     language.German,
			wantOutput: []string{"Tidepool: Gezeiten und Mondphasen", "Ledgerly: A calm, private budget book."},
		},
		"Remote showcase replaces the bundled one": {
			info:        about.Info{AppStoreID: storeID, ShowcaseURL: remoteURL},
			remote:      catalogJSON("2", "2000", "3000"),
			wantFetches: 1,
			wantOutput:  []string{"Remote 2000: Remote app 2000", "Remote 3000", "iOS, macOS", "(updated 2025-09-01)"},
			wantMissing: []string{"Tidepool"},
		},
		"Hosting app is not showcased": {
			info:        about.Info{AppStoreID: "2000", ShowcaseURL: remoteURL},
			remote:      catalogJSON("2", "2000", "3000"),
			wantFetches: 1,
			wantOutput:  []string{"Remote 3000"},
			wantMissing: []string{"Remote 2000"},
		},
		"Bundled showcase is kept on fetch failure": {
			info:        about.Info{AppStoreID: storeID, ShowcaseURL: remoteURL},
			fetchErr:    errors.New("offline"),
			wantFetches: 1,
			wantOutput:  []string{"Tidepool", "Ledgerly", "Focus Bell"},
		},
		"Tips with placeholder labels": {
			info:       about.Info{AppStoreID: storeID, Tips: []string{"tip.small", "tip.large"}},
			wantOutput: []string{"Tips:\n  $2.99 Buy me a coffee\n  $4.99 Buy me 2 coffees\n"},
		},
		"Tips with products": {
			info:        about.Info{AppStoreID: storeID, Tips: []string{"tip.small", "tip.large"}},
			products:    []tips.Product{{ID: "tip.small", DisplayName: "Espresso", DisplayPrice: "1,00 €"}},
			wantOutput:  []string{"Tips:\n  1,00 € Espresso\n"},
			wantMissing: []string{"tip.large", "Buy me"},
		},
		"Privacy policy and copyright": {
			info:       about.Info{AppStoreID: storeID, PrivacyPolicy: "https://example.com/privacy", Copyright: "© 2025 Example"},
			wantOutput: []string{"Privacy policy: https://example.com/privacy", "\n© 2025 Example\n"},
		},
		"Metrics printed on exit": {
			info:       about.Info{AppStoreID: storeID},
			args:       []string{"--metrics"},
			wantOutput: []string{`app_showcase_refreshes_total{outcome="skipped"} 1`},
		},

		"Error on missing store id": {
			info:    about.Info{AppName: "Tester"},
			wantErr: true,
		},
		"Error on relative showcase URL": {
			info:    about.Info{AppStoreID: storeID, ShowcaseURL: "apps.json"},
			wantErr: true,
		},
		"Error on unknown format": {
			info:    about.Info{AppStoreID: storeID},
			args:    []string{"--format", "xml"},
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := &fakeFetcher{responses: map[string][]byte{}, err: tc.fetchErr}
			if tc.remote != nil {
				f.responses[remoteURL] = tc.remote
			}
			conf := &commands.AppConfig{App: tc.info, Products: tc.products, Locale: tc.locale}

			a, out := newAppForTests(t, conf, f, append([]string{"show"}, tc.args...)...)
			err := a.Run()
			if tc.wantErr {
				require.Error(t, err, "Show should fail")
				require.False(t, a.UsageError(), "Configuration errors are not usage errors")
				return
			}
			require.NoError(t, err, "Show should not fail")

			got := out.String()
			for _, want := range tc.wantOutput {
				assert.Contains(t, got, want, "Output should contain expected text")
			}
			for _, missing := range tc.wantMissing {
				assert.NotContains(t, got, missing, "Output should not contain unexpected text")
			}
			assert.Equal(t, tc.wantFetches, f.Calls(), "Unexpected number of fetches")
		})
	}
}

func TestShowYAML(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{responses: map[string][]byte{remoteURL: catalogJSON("2", "2000")}}
	conf := &commands.AppConfig{
		App: about.Info{AppStoreID: storeID, AppName: "Tester", ShowcaseURL: remoteURL, Tips: []string{"tip"}},
	}

	a, out := newAppForTests(t, conf, f, "show", "--format", "yaml")
	require.NoError(t, a.Run(), "Show should not fail")

	var got struct {
		Name        string
		Version     string
		Review      string
		Tips        []string
		LastUpdated string `yaml:"lastUpdated"`
		Apps        []struct {
			Name      string
			Store     string
			Icon      string
			Platforms []string
		}
	}
	require.NoError(t, yaml.Unmarshal([]byte(out.String()), &got), "Output should be valid YAML")

	assert.Equal(t, "Tester", got.Name, "Unexpected name")
	assert.Equal(t, "Version 1.0.0 (Build 1)", got.Version, "Unexpected version")
	assert.Equal(t, "https://apps.apple.com/app/id"+storeID, got.Review, "Unexpected review link")
	assert.Equal(t, []string{"$2.99 Buy me a coffee"}, got.Tips, "Unexpected tips")
	assert.Equal(t, "2025-09-01", got.LastUpdated, "Unexpected last update")
	require.Len(t, got.Apps, 1, "Unexpected number of apps")
	assert.Equal(t, "Remote 2000", got.Apps[0].Name, "Unexpected app name")
	assert.Equal(t, "https://apps.apple.com/app/id2000", got.Apps[0].Store, "Unexpected store link")
	assert.Equal(t, "app.2000-icon", got.Apps[0].Icon, "Apps without icon URL should use their bundled icon")
	assert.Equal(t, []string{"iOS", "macOS"}, got.Apps[0].Platforms, "Unexpected platforms")
}
