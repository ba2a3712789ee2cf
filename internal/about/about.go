// Package about holds the identity of the hosting app and the links shown on its about screen.
package about

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMissingStoreID is returned when the hosting app has no store id.
var ErrMissingStoreID = errors.New("app store id is required")

const (
	defaultAppName = "App"
	defaultVersion = "1.0.0"
	defaultBuild   = "1"
)

// Info describes the hosting app.
type Info struct {
	AppName       string
	Version       string
	Build         string
	FeedbackEmail string
	AppStoreID    string
	PrivacyPolicy string
	Copyright     string
	ShowcaseURL   string
	// Tips are the product ids of the tip buttons, in display order.
	Tips []string
}

// WithDefaults returns a copy of i where the unset name, version and build have their default value.
func (i Info) WithDefaults() Info {
	if i.AppName == "" {
		i.AppName = defaultAppName
	}
	if i.Version == "" {
		i.Version = defaultVersion
	}
	if i.Build == "" {
		i.Build = defaultBuild
	}
	return i
}

// Validate checks that the store id is set and that the configured URLs are absolute.
func (i Info) Validate() error {
	var errs []error
	if i.AppStoreID == "" {
		errs = append(errs, ErrMissingStoreID)
	}
	if err := checkURL(i.PrivacyPolicy); err != nil {
		errs = append(errs, fmt.Errorf("invalid privacy policy URL: %v", err))
	}
	if err := checkURL(i.ShowcaseURL); err != nil {
		errs = append(errs, fmt.Errorf("invalid showcase URL: %v", err))
	}
	return errors.Join(errs...)
}

func checkURL(s string) error {
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%q is not an absolute URL", s)
	}
	return nil
}

// VersionString is the version line displayed under the app name.
func (i Info) VersionString() string {
	return fmt.Sprintf("Version %s (Build %s)", i.Version, i.Build)
}

// ReviewURL is the store page where the app can be rated.
func (i Info) ReviewURL() string {
	return StoreURL(i.AppStoreID)
}

// FeedbackURL is the mail link to send feedback. ok is false without feedback email.
func (i Info) FeedbackURL() (link string, ok bool) {
	if i.FeedbackEmail == "" {
		return "", false
	}
	// Spaces are percent-encoded: mail clients do not decode "+" in mailto headers.
	subject := strings.ReplaceAll(url.QueryEscape(i.AppName+" Feedback"), "+", "%20")
	return fmt.Sprintf("mailto:%s?subject=%s", i.FeedbackEmail, subject), true
}

// PrivacyPolicyURL is the privacy policy link. ok is false when there is none.
func (i Info) PrivacyPolicyURL() (link string, ok bool) {
	return i.PrivacyPolicy, i.PrivacyPolicy != ""
}

// StoreURL is the store page of the app published under storeID.
func StoreURL(storeID string) string {
	return "https://apps.apple.com/app/id" + storeID
}
