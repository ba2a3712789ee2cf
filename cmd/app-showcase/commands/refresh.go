package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (a *App) installRefresh() {
	var force bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the showcase catalog",
		Long: `Refresh the showcase catalog from the remote feed if the cached one is stale.

With --force, the feed is fetched whatever the age of the cached catalog, and failures are reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession()
			if err != nil {
				return err
			}

			if force {
				if err := s.showcase.Refresh(a.ctx); err != nil {
					return fmt.Errorf("could not refresh showcase catalog: %w", err)
				}
			} else {
				s.showcase.RefreshIfStale(a.ctx)
				s.showcase.Wait()
			}

			snap := s.showcase.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog version %s: %d apps\n", snap.Version, len(snap.Apps))
			if t, ok := s.showcase.LastFetch(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Last fetched: %s\n", t.Local().Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "fetch the remote catalog even if the cached one is fresh")

	a.cmd.AddCommand(cmd)
}
