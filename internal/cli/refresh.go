// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/saddlebag/internal/paywall"
	"github.com/taibuivan/saddlebag/internal/platform/constants"
)

func newRefreshCmd(options *rootOptions) *cobra.Command {
	var (
		force       bool
		reloadDelay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Re-verify Discord guild roles for the session",
		Long: "Mounts the paywall for the session. A stale snapshot triggers one automatic refresh; " +
			"--force refreshes even when the snapshot is fresh. The rotated cookie is printed on success.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			client := options.client

			view, err := client.Entitlement(ctx)
			if err != nil {
				return err
			}

			var reloadReason string
			reload := func(ctx context.Context, reason string) {
				reloadReason = reason
				reloaded, err := client.Entitlement(ctx)
				if err != nil {
					options.logger.WarnContext(ctx, "entitlement_reload_failed", "error", err)
					return
				}
				printEntitlement(out, reloaded)
			}

			controller := paywall.NewController(client.Refresher(), reload, paywall.ControllerOptions{
				ReloadDelay: reloadDelay,
				Logger:      options.logger,
			})

			state := controller.Mount(ctx, view.Result)
			fmt.Fprintf(out, "Gate on mount: %s\n", state)

			switch {
			case state == paywall.StateRefreshing:
				controller.Wait()
			case force && view.IsLoggedIn:
				if err := controller.RefreshRoles(ctx); err != nil {
					return err
				}
			default:
				printEntitlement(out, view)
				return nil
			}

			if reloadReason != paywall.ReloadAfterRefresh {
				return fmt.Errorf("cli: roles refresh failed")
			}

			fmt.Fprintf(out, "Session cookie: %s\n", client.SessionCookie())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Refresh even when the role snapshot is fresh")
	cmd.Flags().DurationVar(&reloadDelay, "reload-delay", constants.RefreshReloadDelay, "Pause before reloading after a failed refresh")

	return cmd
}
