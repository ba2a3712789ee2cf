package catalog

import (
	"errors"
	"fmt"
)

// ErrUnknownPlatform is returned when decoding a platform tag outside of the supported set.
var ErrUnknownPlatform = errors.New("unknown platform")

// Platform is an operating system an app is available on.
type Platform string

// Supported platforms.
const (
	MacOS    Platform = "macOS"
	IOS      Platform = "iOS"
	IPadOS   Platform = "iPadOS"
	WatchOS  Platform = "watchOS"
	TvOS     Platform = "tvOS"
	VisionOS Platform = "visionOS"
)

// Platforms lists every supported platform.
var Platforms = []Platform{MacOS, IOS, IPadOS, WatchOS, TvOS, VisionOS}

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	switch p {
	case MacOS, IOS, IPadOS, WatchOS, TvOS, VisionOS:
		return true
	}
	return false
}

// DisplayName is the human readable name of the platform.
func (p Platform) DisplayName() string {
	return string(p)
}

// SymbolName is the system symbol representing the platform.
func (p Platform) SymbolName() string {
	switch p {
	case MacOS:
		return "desktopcomputer"
	case IOS:
		return "iphone"
	case IPadOS:
		return "ipad"
	case WatchOS:
		return "applewatch"
	case TvOS:
		return "appletv"
	case VisionOS:
		return "visionpro"
	}
	return "square.grid.2x2"
}

// UnmarshalText rejects any tag which is not a supported platform.
func (p *Platform) UnmarshalText(text []byte) error {
	v := Platform(text)
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPlatform, string(text))
	}
	*p = v
	return nil
}
