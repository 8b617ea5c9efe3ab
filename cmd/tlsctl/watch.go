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
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	gerrors "github.com/tochemey/tlsmgr/errors"
	"github.com/tochemey/tlsmgr/internal/errorschain"
	"github.com/tochemey/tlsmgr/log"
	"github.com/tochemey/tlsmgr/manager"
	"github.com/tochemey/tlsmgr/watch"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the secure context whenever its credential files change",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file (YAML or TOML)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) (err error) {
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

	out := cmd.OutOrStdout()
	r := newReloader(path, logger)
	if err := r.reload(); err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, r.close())
	}()
	if err := r.report(out); err != nil {
		return err
	}

	files := append(cfg.Files(), path)
	watcher, err := watch.New(files, watch.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Infof("watching %d files", len(files))
	return watcher.Run(ctx, func(watch.Event) error {
		if err := r.reload(); err != nil {
			return err
		}
		return r.report(out)
	})
}

// reloader keeps one ready manager built from a configuration file.
//
// A reload builds a fresh manager first and tears the previous one down only
// once the fresh one is ready, so a broken credential update keeps the
// previous context serving.
type reloader struct {
	mu      sync.Mutex
	path    string
	logger  log.Logger
	current *manager.Manager
}

func newReloader(path string, logger log.Logger) *reloader {
	return &reloader{path: path, logger: logger}
}

func (r *reloader) reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, err := loadConfig(r.path)
	if err != nil {
		return err
	}

	next := manager.New(manager.WithLogger(r.logger))
	if err := next.Build(cfg); err != nil {
		return errorschain.New(errorschain.ReturnAll()).
			AddError(err).
			AddErrorFn(next.Teardown).
			Error()
	}

	previous := r.current
	r.current = next
	r.logger.Infof("secure context %s is ready", next.ID())

	if previous == nil {
		return nil
	}
	return previous.Teardown()
}

func (r *reloader) manager() *manager.Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// report prints the configuration of the serving context
func (r *reloader) report(w io.Writer) error {
	current := r.manager()
	if current == nil {
		return gerrors.ErrNotReady
	}

	info, err := current.Info()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "manager:     %s\n", current.ID())
	printInfo(w, info)
	return nil
}

func (r *reloader) close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil
	}
	err := r.current.Teardown()
	r.current = nil
	return err
}
