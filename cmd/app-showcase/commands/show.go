package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/ubuntu/app-showcase/internal/about"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

// aboutView is the about screen content as printed by show.
type aboutView struct {
	Name        string    `yaml:"name"`
	Version     string    `yaml:"version"`
	Review      string    `yaml:"review"`
	Feedback    string    `yaml:"feedback,omitempty"`
	Privacy     string    `yaml:"privacy,omitempty"`
	Tips        []string  `yaml:"tips,omitempty"`
	LastUpdated string    `yaml:"lastUpdated,omitempty"`
	Apps        []appView `yaml:"apps"`
	Copyright   string    `yaml:"copyright,omitempty"`
}

type appView struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Store       string   `yaml:"store"`
	Icon        string   `yaml:"icon"`
	Platforms   []string `yaml:"platforms,flow"`
}

func (a *App) installShow() {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the about screen",
		Long: `Print the about screen of the app.

The showcase catalog is refreshed first if it is stale.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatText && format != formatYAML {
				return fmt.Errorf("unknown format %q, expected %q or %q", format, formatText, formatYAML)
			}

			s, err := a.newSession()
			if err != nil {
				return err
			}

			s.vm.Appear(a.ctx)
			s.showcase.Wait()

			v := newAboutView(s.vm, a.locale())
			if format == formatYAML {
				return yaml.NewEncoder(cmd.OutOrStdout()).Encode(v)
			}
			return v.write(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format, text or yaml")

	a.cmd.AddCommand(cmd)
}

func newAboutView(vm *about.ViewModel, locale string) aboutView {
	info := vm.Info()
	v := aboutView{
		Name:      info.AppName,
		Version:   info.VersionString(),
		Review:    info.ReviewURL(),
		Copyright: info.Copyright,
	}
	v.Feedback, _ = info.FeedbackURL()
	v.Privacy, _ = info.PrivacyPolicyURL()

	for _, b := range vm.TipButtons() {
		v.Tips = append(v.Tips, b.Label)
	}
	if t, ok := vm.LastUpdated(); ok {
		v.LastUpdated = t.Format(time.DateOnly)
	}

	for _, r := range vm.Rows(locale) {
		app := appView{
			Name:        r.Name,
			Description: r.Description,
			Store:       r.StoreURL,
			Icon:        r.IconURL,
		}
		if app.Icon == "" {
			app.Icon = r.BundledIcon
		}
		for _, p := range r.Platforms {
			app.Platforms = append(app.Platforms, p.DisplayName())
		}
		v.Apps = append(v.Apps, app)
	}
	return v
}

func (v aboutView) write(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n%s\n\n", v.Name, v.Version)
	fmt.Fprintf(&b, "Rate: %s\n", v.Review)
	if v.Feedback != "" {
		fmt.Fprintf(&b, "Feedback: %s\n", v.Feedback)
	}
	if v.Privacy != "" {
		fmt.Fprintf(&b, "Privacy policy: %s\n", v.Privacy)
	}

	if len(v.Tips) > 0 {
		b.WriteString("\nTips:\n")
		for _, t := range v.Tips {
			fmt.Fprintf(&b, "  %s\n", t)
		}
	}

	if len(v.Apps) > 0 {
		b.WriteString("\nMore apps")
		if v.LastUpdated != "" {
			fmt.Fprintf(&b, " (updated %s)", v.LastUpdated)
		}
		b.WriteString(":\n")
		for _, app := range v.Apps {
			fmt.Fprintf(&b, "  %s: %s\n", app.Name, app.Description)
			fmt.Fprintf(&b, "    %s\n", app.Store)
			if len(app.Platforms) > 0 {
				fmt.Fprintf(&b, "    %s\n", strings.Join(app.Platforms, ", "))
			}
		}
	}

	if v.Copyright != "" {
		fmt.Fprintf(&b, "\n%s\n", v.Copyright)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
