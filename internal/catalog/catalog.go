// Package catalog defines the showcased apps and the versioned catalog they are shipped in.
//
// Decoding is strict: a catalog with an app missing a mandatory field, or with an unknown
// platform, is rejected as a whole.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ubuntu/app-showcase/internal/localized"
	"github.com/ubuntu/decorate"
)

// ErrMissingField is returned when a mandatory field is absent from the decoded document.
var ErrMissingField = errors.New("missing mandatory field")

// ErrKeyCase is returned when a key differs from a known field name only by its case.
var ErrKeyCase = errors.New("field name with invalid case")

//go:embed apps.json
var bundled []byte

// Bundled returns the default catalog packaged with the library.
func Bundled() []byte {
	return bytes.Clone(bundled)
}

// App is a single showcased application.
type App struct {
	ID               string
	Name             string
	BriefDescription localized.Text
	// IconURL is the remote icon location. When nil, the icon is a bundled resource named after the ID.
	IconURL    *string
	AppStoreID string
	Platforms  []Platform
}

type appJSON struct {
	ID               *string         `json:"id"`
	Name             *string         `json:"name"`
	BriefDescription *localized.Text `json:"briefDescription"`
	IconURL          *string         `json:"iconURL,omitempty"`
	AppStoreID       *string         `json:"appStoreID"`
	Platforms        *[]Platform     `json:"platforms"`
}

// UnmarshalJSON decodes an app, failing if any mandatory field is absent.
func (a *App) UnmarshalJSON(data []byte) error {
	if err := checkKeyCase(data, "id", "name", "briefDescription", "iconURL", "appStoreID", "platforms"); err != nil {
		return err
	}

	var raw appJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var missing []string
	if raw.ID == nil {
		missing = append(missing, "id")
	}
	if raw.Name == nil {
		missing = append(missing, "name")
	}
	if raw.BriefDescription == nil {
		missing = append(missing, "briefDescription")
	}
	if raw.AppStoreID == nil {
		missing = append(missing, "appStoreID")
	}
	if raw.Platforms == nil {
		missing = append(missing, "platforms")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w in app: %v", ErrMissingField, missing)
	}

	*a = App{
		ID:               *raw.ID,
		Name:             *raw.Name,
		BriefDescription: *raw.BriefDescription,
		IconURL:          raw.IconURL,
		AppStoreID:       *raw.AppStoreID,
		Platforms:        *raw.Platforms,
	}
	return nil
}

// MarshalJSON encodes the app with the same keys it is decoded from.
func (a App) MarshalJSON() ([]byte, error) {
	platforms := a.Platforms
	if platforms == nil {
		platforms = []Platform{}
	}
	return json.Marshal(appJSON{
		ID:               &a.ID,
		Name:             &a.Name,
		BriefDescription: &a.BriefDescription,
		IconURL:          a.IconURL,
		AppStoreID:       &a.AppStoreID,
		Platforms:        &platforms,
	})
}

// StoreURL is the store page of the app.
func (a App) StoreURL() string {
	return "https://apps.apple.com/app/id" + a.AppStoreID
}

// BundledIconName is the name of the packaged icon used when the app has no remote icon.
func (a App) BundledIconName() string {
	return a.ID + "-icon"
}

// Catalog is the versioned list of showcased apps.
type Catalog struct {
	// Version is free form and is not interpreted.
	Version string
	// LastUpdated is an ISO-8601 timestamp, only parsed for display.
	LastUpdated string
	Apps        []App
}

type catalogJSON struct {
	Version     *string `json:"version"`
	LastUpdated *string `json:"lastUpdated"`
	Apps        *[]App  `json:"apps"`
}

// Decode parses a catalog document.
func Decode(data []byte) (c Catalog, err error) {
	defer decorate.OnError(&err, "invalid catalog")

	if err := json.Unmarshal(data, &c); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// UnmarshalJSON decodes a catalog, failing if any mandatory field is absent.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	if err := checkKeyCase(data, "version", "lastUpdated", "apps"); err != nil {
		return err
	}

	var raw catalogJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var missing []string
	if raw.Version == nil {
		missing = append(missing, "version")
	}
	if raw.LastUpdated == nil {
		missing = append(missing, "lastUpdated")
	}
	if raw.Apps == nil {
		missing = append(missing, "apps")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingField, missing)
	}

	*c = Catalog{
		Version:     *raw.Version,
		LastUpdated: *raw.LastUpdated,
		Apps:        *raw.Apps,
	}
	return nil
}

// MarshalJSON encodes the catalog with the same keys it is decoded from.
func (c Catalog) MarshalJSON() ([]byte, error) {
	apps := c.Apps
	if apps == nil {
		apps = []App{}
	}
	return json.Marshal(catalogJSON{
		Version:     &c.Version,
		LastUpdated: &c.LastUpdated,
		Apps:        &apps,
	})
}

// Encode serializes the catalog in the document format read by Decode.
func (c Catalog) Encode() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// LastUpdatedTime parses LastUpdated. ok is false when the value is not a valid ISO-8601 timestamp.
func (c Catalog) LastUpdatedTime() (t time.Time, ok bool) {
	t, err := time.Parse(time.RFC3339Nano, c.LastUpdated)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// WithoutStoreID returns a copy of the catalog without the apps published under storeID.
// An empty storeID filters nothing.
func (c Catalog) WithoutStoreID(storeID string) Catalog {
	apps := make([]App, 0, len(c.Apps))
	for _, a := range c.Apps {
		if storeID != "" && a.AppStoreID == storeID {
			continue
		}
		apps = append(apps, a)
	}
	c.Apps = apps
	return c
}

// checkKeyCase fails if a key of the JSON object in data only matches one of fields case-insensitively.
// encoding/json would otherwise accept it in place of the exact one.
func checkKeyCase(data []byte, fields ...string) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	for k := range keys {
		for _, f := range fields {
			if k != f && strings.EqualFold(k, f) {
				return fmt.Errorf("%w: %q instead of %q", ErrKeyCase, k, f)
			}
		}
	}
	return nil
}
