// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tochemey/tlsmgr/log"
)

const defaultLogLevel = "info"

// newRootCmd creates the root command of tlsctl
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tlsctl",
		Short: "Build and inspect TLS secure contexts",
		Long: `tlsctl builds secure contexts from YAML or TOML configuration files.

Example:
  tlsctl check --config server.yaml
  tlsctl ciphers "HIGH:!aNULL" --protocol TLSv1.2
  tlsctl watch --config server.yaml`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("log-level", "l", defaultLogLevel, "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newCheckCmd(), newCiphersCmd(), newWatchCmd())
	return rootCmd
}

// newLogger creates the command logger. Logs go to stderr so the command
// output stays parseable.
func newLogger(cmd *cobra.Command) (log.Logger, error) {
	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	return log.NewZap(log.ParseLevel(level), cmd.ErrOrStderr()), nil
}
