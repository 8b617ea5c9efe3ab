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
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/tochemey/tlsmgr/config"
	"github.com/tochemey/tlsmgr/engine"
	gtls "github.com/tochemey/tlsmgr/tls"
)

func newCiphersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ciphers [policy]",
		Short: "List the cipher suites an OpenSSL cipher policy selects",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCiphers,
	}
	cmd.Flags().StringP("protocol", "p", "", "Only list the suites usable with this protocol (SSLv3, TLSv1, TLSv1.1, TLSv1.2, TLSv1.3)")
	return cmd
}

func runCiphers(cmd *cobra.Command, args []string) (err error) {
	policy := config.DefaultCiphers
	if len(args) == 1 {
		policy = args[0]
	}

	protocolName, err := cmd.Flags().GetString("protocol")
	if err != nil {
		return fmt.Errorf("failed to get protocol flag: %w", err)
	}

	library := engine.Default()
	if err := library.Acquire(); err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, library.Release())
	}()

	list, err := gtls.ParseCipherList(library.Engine().Ciphers(), policy)
	if err != nil {
		return err
	}

	if protocolName != "" {
		protocol, err := gtls.ParseProtocol(protocolName)
		if err != nil {
			return err
		}
		list = list.For(protocol)
	}

	if list.Len() == 0 {
		return fmt.Errorf("%w: %s", gtls.ErrNoCipherMatch, policy)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "OPENSSL\tIANA\tBITS")
	for _, suite := range list.Suites() {
		fmt.Fprintf(w, "%s\t%s\t%d\n", suite.OpenSSLName(), suite.Name, suite.Bits())
	}
	return w.Flush()
}
