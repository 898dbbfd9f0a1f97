// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/taibuivan/saddlebag/internal/paywall"
	"github.com/taibuivan/saddlebag/internal/users/account"
)

func newEntitlementCmd(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "entitlement",
		Short: "Show the entitlement and gate state of the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := options.client.Entitlement(cmd.Context())
			if err != nil {
				return err
			}

			printEntitlement(cmd.OutOrStdout(), view)
			return nil
		},
	}
}

func printEntitlement(out io.Writer, view account.EntitlementView) {
	if view.Discord.Linked {
		fmt.Fprintf(out, "Discord:       %s (%s)\n", view.Discord.Username, view.Discord.ID)
	} else {
		fmt.Fprintln(out, "Discord:       not linked")
	}
	fmt.Fprintf(out, "  Logged in:   %t\n", view.IsLoggedIn)
	fmt.Fprintf(out, "  Premium:     %t\n", view.HasPremium)
	fmt.Fprintf(out, "  Stale roles: %t\n", view.NeedsRefresh)
	fmt.Fprintf(out, "  Gate:        %s\n", paywall.Decide(view.Result))
}
