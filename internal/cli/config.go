// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation.
//
// Command: config [subcommand]
// Short:   View and modify configuration
//
// Subcommands:
//   show (default)      Display the effective configuration
//   get <key>           Print one value
//   set <key> <value>   Change one value in the config file
//   keys                List every settable key
//   path                Show the config file location
//
// "show" and "get" report the effective values, including GENSTUDIO_*
// environment overrides. "set" edits the file only, so an override that is
// active in the environment is never written back.
//
// Examples:
//   genstudio config
//   genstudio config show --json
//   genstudio config set server.base_url https://studio.example.com
//   genstudio config set chat.temperature 0.4
//   genstudio config set chat.temperature ""     Clear the override
//   genstudio config get chat.default_model

package cli

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/jeranaias/genstudio-tui/internal/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and modify configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, opts)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, opts)
		},
	})
	cmd.AddCommand(newConfigGetCmd(opts))
	cmd.AddCommand(newConfigSetCmd(opts))
	cmd.AddCommand(newConfigKeysCmd(opts))
	cmd.AddCommand(newConfigPathCmd(opts))
	return cmd
}

func runConfigShow(cmd *cobra.Command, opts *rootOptions) error {
	cfg, path, err := loadConfig(opts)
	if err != nil {
		return err
	}
	return printResult(cmd, opts, cfg, func(w io.Writer) {
		fmt.Fprintln(w, RenderConditional(DimStyle, "# "+path))
		if err := toml.NewEncoder(w).Encode(cfg); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", RenderConditional(ErrorStyle, "[ERROR]"), err)
		}
	})
}

func newConfigGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}
			v, err := cfg.Get(args[0])
			if err != nil {
				return NewValidationError("key", args[0], err.Error())
			}
			data := map[string]any{"key": args[0], "value": v}
			return printResult(cmd, opts, data, func(w io.Writer) {
				if v == nil {
					fmt.Fprintln(w, RenderConditional(DimStyle, "(not set)"))
					return
				}
				fmt.Fprintln(w, v)
			})
		},
	}
}

func newConfigSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one value in the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			path, err := configFilePath(opts)
			if err != nil {
				return err
			}

			cfg, err := config.ReadFile(path)
			if err != nil {
				return &ConfigError{Path: path, Err: err}
			}
			if err := cfg.Set(key, value); err != nil {
				return NewValidationError(key, value, err.Error())
			}
			if err := cfg.Validate(); err != nil {
				return &ConfigError{Path: path, Err: err}
			}
			if err := config.Save(cfg, path); err != nil {
				return &ConfigError{Path: path, Err: err}
			}

			saved, _ := cfg.Get(key)
			data := map[string]any{"key": key, "value": saved, "path": path}
			return printResult(cmd, opts, data, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s = %v\n", RenderConditional(SuccessStyle, "[OK]"), key, displayValue(saved))
			})
		},
	}
}

func displayValue(v any) any {
	if v == nil {
		return "(not set)"
	}
	return v
}

func newConfigKeysCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List every settable key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := config.Keys()
			return printResult(cmd, opts, keys, func(w io.Writer) {
				for _, k := range keys {
					fmt.Fprintln(w, k)
				}
			})
		},
	}
}

func newConfigPathCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath(opts)
			if err != nil {
				return err
			}
			return printResult(cmd, opts, map[string]string{"path": path}, func(w io.Writer) {
				fmt.Fprintln(w, path)
			})
		},
	}
}

// configFilePath is --config, or the default path under GENSTUDIO_HOME.
func configFilePath(opts *rootOptions) (string, error) {
	if opts.configPath != "" {
		return opts.configPath, nil
	}
	path, err := config.Path()
	if err != nil {
		return "", &ConfigError{Err: err}
	}
	return path, nil
}
