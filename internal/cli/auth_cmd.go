// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - Sign-in commands.
//
// Commands:
//   login               Sign in with email and password
//   logout              End the session and forget saved cookies
//   whoami              Show the signed-in account
//
// Examples:
//   genstudio login --email me@example.com
//   echo "$PW" | genstudio login --email me@example.com
//   genstudio whoami --json

package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/genstudio-tui/internal/api"
	"github.com/jeranaias/genstudio-tui/internal/model"
	"github.com/jeranaias/genstudio-tui/internal/validate"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to GenStudio",
		Long:  "Signs in with email and password. The password is read from the terminal without echo, or from stdin when piped.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, opts, email)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email (prompted when empty)")
	return cmd
}

func runLogin(cmd *cobra.Command, opts *rootOptions, email string) error {
	app, err := openApp(cmd, opts, logStderr)
	if err != nil {
		return err
	}
	defer app.Close()

	in := cmd.InOrStdin()
	prompts := cmd.ErrOrStderr()
	reader := bufio.NewReader(in)
	if strings.TrimSpace(email) == "" {
		if opts.jsonOut {
			return NewValidationError("email", "", "--email is required in JSON mode")
		}
		if email, err = readLine(reader, prompts, "Email: "); err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
	}
	password, err := readPassword(reader, in, prompts, "Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	email = strings.TrimSpace(email)
	if err := validate.Login(email, password); err != nil {
		return err
	}

	user, err := app.API.Login(cmd.Context(), api.Credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	app.Session.Login(*user)
	app.saveCookies()
	app.Logger.Info("signed in", "user", user.ID)

	return printResult(cmd, opts, user, func(w io.Writer) {
		fmt.Fprintf(w, "%s Signed in as %s\n", RenderConditional(SuccessStyle, "[OK]"), user.DisplayName())
	})
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts, logStderr)
			if err != nil {
				return err
			}
			defer app.Close()

			// Local state is cleared even when the server call fails
			serverErr := app.Session.Logout(cmd.Context())
			if err := app.Cookies.Clear(app.API.BaseURL()); err != nil {
				return fmt.Errorf("failed to clear saved session: %w", err)
			}
			if serverErr != nil {
				app.Logger.Warn("server logout failed", "error", serverErr)
			}

			return printResult(cmd, opts, map[string]bool{"signed_out": true}, func(w io.Writer) {
				fmt.Fprintf(w, "%s Signed out\n", RenderConditional(SuccessStyle, "[OK]"))
			})
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts, logStderr)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.requireLogin(cmd.Context()); err != nil {
				return err
			}
			user := app.Session.User()
			return printResult(cmd, opts, user, func(w io.Writer) {
				printUser(w, user, app.API.BaseURL().String())
			})
		},
	}
}

func printUser(w io.Writer, u *model.User, server string) {
	fmt.Fprintln(w, RenderConditional(TitleStyle, u.DisplayName()))
	fmt.Fprintln(w, RenderLabel("Email:", u.Email))
	if u.PlanName != "" {
		fmt.Fprintln(w, RenderLabel("Plan:", u.PlanName))
	}
	role := u.Role
	if u.IsAdmin {
		role = strings.TrimSpace(role + " (admin)")
	}
	if role != "" {
		fmt.Fprintln(w, RenderLabel("Role:", role))
	}
	fmt.Fprintln(w, RenderLabel("Server:", server))
}
