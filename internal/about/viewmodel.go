package about

import (
	"context"
	"time"

	"github.com/ubuntu/app-showcase/internal/catalog"
	"github.com/ubuntu/app-showcase/internal/iconcache"
	"github.com/ubuntu/app-showcase/internal/showcase"
	"github.com/ubuntu/app-showcase/internal/tips"
)

// Showcase publishes the apps to promote.
type Showcase interface {
	RefreshIfStale(ctx context.Context)
	Snapshot() showcase.Snapshot
}

// IconLoader loads remote app icons.
type IconLoader interface {
	Load(ctx context.Context, url string) (iconcache.Image, bool)
}

// Row is a showcased app ready to be rendered.
type Row struct {
	ID          string
	Name        string
	Description string
	StoreURL    string
	// IconURL is empty when the icon is the bundled resource named BundledIcon.
	IconURL     string
	BundledIcon string
	Platforms   []catalog.Platform
}

// ViewModel exposes the about screen content to a renderer.
type ViewModel struct {
	info     Info
	showcase Showcase
	icons    IconLoader
	tips     *tips.Jar
}

// NewViewModel returns the view model of the app described by info. jar may be nil when the app has no tips.
func NewViewModel(info Info, s Showcase, icons IconLoader, jar *tips.Jar) *ViewModel {
	return &ViewModel{
		info:     info.WithDefaults(),
		showcase: s,
		icons:    icons,
		tips:     jar,
	}
}

// Info returns the hosting app description, defaults applied.
func (vm *ViewModel) Info() Info {
	return vm.info
}

// Appear is called each time the screen is shown. The showcase refresh runs in the background.
func (vm *ViewModel) Appear(ctx context.Context) {
	vm.showcase.RefreshIfStale(ctx)
	if vm.tips != nil {
		vm.tips.Load(ctx)
	}
}

// Rows returns the showcased apps with their description in locale.
func (vm *ViewModel) Rows(locale string) []Row {
	apps := vm.showcase.Snapshot().Apps

	rows := make([]Row, 0, len(apps))
	for _, a := range apps {
		r := Row{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.BriefDescription.Resolve(locale),
			StoreURL:    a.StoreURL(),
			Platforms:   a.Platforms,
		}
		if a.IconURL != nil {
			r.IconURL = *a.IconURL
		} else {
			r.BundledIcon = a.BundledIconName()
		}
		rows = append(rows, r)
	}
	return rows
}

// LastUpdated returns the update time of the showcased catalog. ok is false if it is unknown.
func (vm *ViewModel) LastUpdated() (t time.Time, ok bool) {
	snap := vm.showcase.Snapshot()
	return snap.LastUpdated, snap.HasLastUpdated
}

// Icon loads the remote icon of r. ok is false for bundled icons and failed loads.
func (vm *ViewModel) Icon(ctx context.Context, r Row) (img iconcache.Image, ok bool) {
	if r.IconURL == "" || vm.icons == nil {
		return iconcache.Image{}, false
	}
	return vm.icons.Load(ctx, r.IconURL)
}

// TipButtons returns the tip buttons to render.
func (vm *ViewModel) TipButtons() []tips.Button {
	if vm.tips == nil {
		return nil
	}
	return vm.tips.Buttons()
}
