// Copyright (c) 2026 Saddlebag. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cli implements the saddlebag operator command line.

It drives a running server the way a browser would: it carries the session
cookie, reads the entitlement loader, and runs the paywall refresh controller
against POST /refresh-discord-roles.

Commands:

  - entitlement: Print the entitlement and the gate state for a session.
  - refresh: Re-verify guild roles, automatically when stale or on demand.
*/
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Environment fallbacks for the persistent flags.
const (
	envServer  = "SADDLEBAG_SERVER"
	envSession = "SADDLEBAG_SESSION"
)

type rootOptions struct {
	server   string
	session  string
	logLevel string

	logger *slog.Logger
	client *Client
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// NewRootCmd creates the root cobra command for the saddlebag CLI.
func NewRootCmd() *cobra.Command {
	options := &rootOptions{}

	root := &cobra.Command{
		Use:   "saddlebag",
		Short: "Inspect and refresh Discord entitlements on a saddlebag server",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(options.logLevel)); err != nil {
				return err
			}
			options.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			client, err := NewClient(options.server, options.session, options.logger)
			if err != nil {
				return err
			}
			options.client = client
			return nil
		},
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&options.server, "server", envOr(envServer, "http://localhost:8080"), "Server URL (or "+envServer+" env)")
	flags.StringVar(&options.session, "session", os.Getenv(envSession), "Value of the __session cookie (or "+envSession+" env)")
	flags.StringVar(&options.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newEntitlementCmd(options),
		newRefreshCmd(options),
	)

	return root
}
