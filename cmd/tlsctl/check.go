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
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/tochemey/tlsmgr/config"
	"github.com/tochemey/tlsmgr/internal/errorschain"
	"github.com/tochemey/tlsmgr/manager"
	gtls "github.com/tochemey/tlsmgr/tls"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Build a secure context from a configuration file and report it",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file (YAML or TOML)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func runCheck(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}

	mgr := manager.New(manager.WithLogger(logger))
	if err := mgr.Build(cfg); err != nil {
		return multierr.Append(err, mgr.Teardown())
	}

	info, err := mgr.Info()
	if err != nil {
		return multierr.Append(err, mgr.Teardown())
	}
	printInfo(cmd.OutOrStdout(), info)

	// a channel minted and handed back proves the context is usable
	channel, err := mgr.CreateChannel()
	if err != nil {
		return multierr.Append(err, mgr.Teardown())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "channel:     %s (%s)\n", channel.ID(), channel.Direction())
	if err := mgr.ReleaseChannel(channel); err != nil {
		return multierr.Append(err, mgr.Teardown())
	}
	return mgr.Teardown()
}

// loadConfig reads a configuration file and checks it is usable
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	// files are only checked on a well formed configuration
	err = errorschain.New(errorschain.ReturnFirst()).
		AddErrorFn(cfg.Validate).
		AddErrorFn(cfg.CheckFiles).
		Error()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func printInfo(w io.Writer, info gtls.Info) {
	fmt.Fprintf(w, "protocol:    %s\n", info.Protocol)
	fmt.Fprintf(w, "role:        %s\n", info.Role)
	fmt.Fprintf(w, "verify peer: %t\n", info.VerifyMode&gtls.VerifyPeer != 0)
	fmt.Fprintf(w, "policy:      %s\n", info.CipherPolicy)
	fmt.Fprintf(w, "ciphers:     %s\n", strings.Join(info.CipherSuites, ":"))
	if info.CertificateFile != "" {
		fmt.Fprintf(w, "certificate: %s\n", info.CertificateFile)
		fmt.Fprintf(w, "subject:     %s\n", info.Subject)
		fmt.Fprintf(w, "expires:     %s\n", info.NotAfter.Format(time.RFC3339))
	}
	if info.CAFile != "" {
		fmt.Fprintf(w, "ca:          %s\n", info.CAFile)
	}
	if info.ServerName != "" {
		fmt.Fprintf(w, "server name: %s\n", info.ServerName)
	}
}
