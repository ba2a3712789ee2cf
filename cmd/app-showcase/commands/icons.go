package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func (a *App) installIcons() {
	cmd := &cobra.Command{
		Use:   "icons",
		Short: "Manage the icon cache",
		Args:  cobra.NoArgs,
	}

	fetchCmd := &cobra.Command{
		Use:   "fetch [URL...]",
		Short: "Load icons into the cache",
		Long: `Load icons into the cache, from the disk cache when present or from the network otherwise.

Without any URL, the icons of the currently showcased apps are loaded.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession()
			if err != nil {
				return err
			}

			var failed, total int
			if len(args) > 0 {
				total = len(args)
				for _, url := range args {
					img, ok := s.icons.Load(a.ctx, url)
					if !ok {
						failed++
						slog.Warn("Could not load icon", "url", url)
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%dx%d\n", url, img.Format, img.Width, img.Height)
				}
			} else {
				for _, r := range s.vm.Rows(a.locale()) {
					if r.IconURL == "" {
						fmt.Fprintf(cmd.OutOrStdout(), "%s\tbundled\t%s\n", r.Name, r.BundledIcon)
						continue
					}
					total++
					img, ok := s.vm.Icon(a.ctx, r)
					if !ok {
						failed++
						slog.Warn("Could not load icon", "app", r.Name, "url", r.IconURL)
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%dx%d\n", r.Name, img.Format, img.Width, img.Height)
				}
			}

			st := s.icons.Stats()
			slog.Debug("Icon cache in memory", "entries", st.Entries, "cost", st.Cost)

			if failed > 0 {
				return fmt.Errorf("could not load %d of %d icons", failed, total)
			}
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached icon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession()
			if err != nil {
				return err
			}
			if err := s.icons.Clear(); err != nil {
				return fmt.Errorf("could not clear icon cache: %w", err)
			}
			slog.Info("Icon cache cleared", "dir", s.icons.Dir())
			return nil
		},
	}

	cmd.AddCommand(fetchCmd, clearCmd)
	a.cmd.AddCommand(cmd)
}
