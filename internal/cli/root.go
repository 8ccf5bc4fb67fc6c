// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootOptions are the persistent flags every command sees.
type rootOptions struct {
	configPath string
	baseURL    string
	verbose    bool
	jsonOut    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "genstudio",
		Short: "GenStudio in the terminal",
		Long: "genstudio is a terminal client for the GenStudio content platform.\n" +
			"Without a subcommand it opens the interactive chat.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default ~/.genstudio/config.toml)")
	pf.StringVar(&opts.baseURL, "base-url", "", "backend URL, overrides server.base_url")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests to stderr")
	pf.BoolVar(&opts.jsonOut, "json", false, "print machine-readable JSON")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newLoginCmd(opts))
	cmd.AddCommand(newLogoutCmd(opts))
	cmd.AddCommand(newWhoamiCmd(opts))
	cmd.AddCommand(newChatCmd(opts))
	cmd.AddCommand(newAskCmd(opts))
	cmd.AddCommand(newChatsCmd(opts))
	cmd.AddCommand(newNotificationsCmd(opts))
	cmd.AddCommand(newContentsCmd(opts))
	cmd.AddCommand(newProjectsCmd(opts))
	cmd.AddCommand(newAdminCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "genstudio %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// Execute runs the genstudio command line and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd()
	cmd.SetContext(ctx)
	return execute(cmd)
}

func execute(cmd *cobra.Command) int {
	ran, err := cmd.ExecuteC()
	if err == nil {
		return ExitSuccess
	}
	if ran == nil {
		ran = cmd
	}

	jsonMode, _ := ran.Flags().GetBool("json")
	if jsonMode {
		DisplayError(ran.OutOrStdout(), ran.CommandPath(), err, true)
	} else {
		DisplayError(ran.ErrOrStderr(), ran.CommandPath(), err, false)
	}

	if isUsageError(err) {
		return ExitUsageError
	}
	return GetExitCode(err)
}

// isUsageError recognizes cobra's own argument and flag errors.
func isUsageError(err error) bool {
	msg := err.Error()
	for _, prefix := range []string{"unknown command", "unknown flag", "unknown shorthand flag", "accepts ", "requires at least", "invalid argument", "flag needs an argument", "required flag"} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}
