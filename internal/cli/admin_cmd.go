// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// admin_cmd.go - Administrator commands.
//
// Commands:
//   admin users              List user accounts
//   admin plans              List subscription plans
//   admin set-plan <user> <plan>
//                            Move a user to another plan
//
// All admin commands require an administrator session.
//
// Examples:
//   genstudio admin users --plan Pro --sort email
//   genstudio admin set-plan 12 3

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jeranaias/genstudio-tui/internal/filter"
	"github.com/jeranaias/genstudio-tui/internal/model"
	"github.com/jeranaias/genstudio-tui/internal/util"
)

func newAdminCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage users and plans (administrators only)",
	}
	cmd.AddCommand(newAdminUsersCmd(opts))
	cmd.AddCommand(newAdminPlansCmd(opts))
	cmd.AddCommand(newAdminSetPlanCmd(opts))
	return cmd
}

func newAdminUsersCmd(opts *rootOptions) *cobra.Command {
	var (
		lf     listFlags
		role   string
		plan   string
		admins bool
		active string
	)

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := lf.query()
			if err != nil {
				return err
			}
			equal(&q, "role", role)
			equal(&q, "plan", plan)
			if admins {
				equal(&q, "admin", "true")
			}
			equal(&q, "active", active)

			app, err := openApp(cmd, opts, logStderr)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			all, err := app.API.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			users, err := applyList(filter.NewPipeline(filter.Users, nil), all, q, lf.limit)
			if err != nil {
				return err
			}
			return printResult(cmd, opts, users, func(w io.Writer) {
				printUsers(w, users)
			})
		},
	}
	lf.register(cmd, filter.Users.SortKeys())
	cmd.Flags().StringVar(&role, "role", "", "keep users with this role")
	cmd.Flags().StringVar(&plan, "plan", "", "keep users on this plan (by name)")
	cmd.Flags().BoolVar(&admins, "admins", false, "keep only administrators")
	cmd.Flags().StringVar(&active, "active", "", "true or false")
	return cmd
}

func printUsers(w io.Writer, users []model.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users found.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPLAN\tROLE\tACTIVE")
	for _, u := range users {
		role := dash(u.Role)
		if u.IsAdmin {
			role = "admin"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\n", u.ID,
			util.TruncateWidth(u.DisplayName(), 28), u.Email, dash(u.PlanName), role, u.Active)
	}
	tw.Flush()
}

func newAdminPlansCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List subscription plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts, logStderr)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			plans, err := app.API.ListPlans(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(cmd, opts, plans, func(w io.Writer) {
				if len(plans) == 0 {
					fmt.Fprintln(w, "No plans found.")
					return
				}
				tw := newTable(w)
				fmt.Fprintln(tw, "ID\tNAME\tPRICE\tCREDITS\tACTIVE")
				for _, p := range plans {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\n", p.ID, p.Name, p.Price.StringFixed(2), p.Credits, p.Active)
				}
				tw.Flush()
			})
		},
	}
}

func newAdminSetPlanCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-plan <user-id> <plan-id>",
		Short: "Move a user to another plan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID("user", args[0])
			if err != nil {
				return err
			}
			planID, err := parseID("plan", args[1])
			if err != nil {
				return err
			}

			app, err := openApp(cmd, opts, logStderr)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.requireAdmin(cmd.Context()); err != nil {
				return err
			}

			if err := app.API.UpdateUserPlan(cmd.Context(), userID, planID); err != nil {
				return err
			}
			app.Logger.Info("user plan changed", "user", userID, "plan", planID)
			data := map[string]model.ID{"user_id": userID, "plan_id": planID}
			return printResult(cmd, opts, data, func(w io.Writer) {
				fmt.Fprintf(w, "%s User %s moved to plan %s\n", RenderConditional(SuccessStyle, "[OK]"), userID, planID)
			})
		},
	}
}
