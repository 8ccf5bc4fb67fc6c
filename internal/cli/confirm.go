// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Confirmation prompts for destructive commands.
//
// Deleting chats, notifications or contents asks first. --yes skips the
// prompt. In --json mode or without a terminal, --yes is required.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ConfirmationOptions configures RequireConfirmation.
type ConfirmationOptions struct {
	// Yes is true if --yes was passed.
	Yes bool

	// JSONMode is true if --json was passed.
	JSONMode bool

	// Details are shown as label/value lines above the prompt.
	Details map[string]string

	In  io.Reader
	Out io.Writer
}

// RequireConfirmation asks the user to confirm action. It returns false,
// nil when the user declines.
//
//	ok, err := RequireConfirmation("delete 3 contents", opts)
//	if err != nil || !ok {
//	    return err
//	}
func RequireConfirmation(action string, opts ConfirmationOptions) (bool, error) {
	if opts.Yes {
		return true, nil
	}
	if opts.JSONMode {
		return false, errors.New("confirmation required: use --yes for destructive actions in JSON mode")
	}

	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if f, ok := in.(*os.File); ok && !isTerminalReader(f) {
		return false, errors.New("confirmation required but stdin is not a terminal; use --yes")
	}

	if len(opts.Details) > 0 {
		labels := make([]string, 0, len(opts.Details))
		for label := range opts.Details {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			fmt.Fprintln(out, RenderLabel(label+":", opts.Details[label]))
		}
	}

	answer, err := readLine(bufio.NewReader(in), out, fmt.Sprintf("Are you sure you want to %s? [y/N]: ", action))
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
