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

// Package watch reports changes of credential files so that a fresh secure
// context can be built from them.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/tlsmgr/log"
)

// DefaultDebounce is how long a burst of file events is coalesced before it is reported
const DefaultDebounce = 250 * time.Millisecond

// Event reports a change of a watched file
type Event struct {
	// Path is the watched file that changed
	Path string
	// Op is the file system operation, as reported by fsnotify
	Op string
}

// Watcher watches credential files.
//
// The parent directories are watched rather than the files themselves, so
// files replaced by a rename, as secret mounts do, keep being reported.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]struct{}
	logger   log.Logger
	debounce time.Duration
}

// Option configures a Watcher
type Option func(*Watcher)

// WithLogger sets the watcher logger
func WithLogger(logger log.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithDebounce sets how long bursts of events are coalesced
func WithDebounce(debounce time.Duration) Option {
	return func(w *Watcher) {
		if debounce > 0 {
			w.debounce = debounce
		}
	}
}

// New creates a Watcher for the given files
func New(paths []string, opts ...Option) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("no file to watch")
	}

	w := &Watcher{
		files:    make(map[string]struct{}, len(paths)),
		logger:   log.DiscardLogger,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	dirs := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("invalid path=(%s): %w", path, err), watcher.Close())
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return nil, multierr.Append(fmt.Errorf("failed to watch directory=(%s): %w", dir, err), watcher.Close())
		}
	}

	w.watcher = watcher
	return w, nil
}

// Files returns the absolute paths of the watched files
func (w *Watcher) Files() []string {
	files := make([]string, 0, len(w.files))
	for file := range w.files {
		files = append(files, file)
	}
	return files
}

// Run reports changes to onChange until ctx is done, then releases the watcher.
// An error returned by onChange is logged and watching goes on.
// Run must be called once.
func (w *Watcher) Run(ctx context.Context, onChange func(Event) error) error {
	changes := make(chan Event)
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer close(changes)
		return w.collect(ctx, changes)
	})

	eg.Go(func() error {
		for event := range changes {
			w.logger.Infof("credential file changed: %s (%s)", event.Path, event.Op)
			if err := onChange(event); err != nil {
				w.logger.Errorf("failed to handle change of %s: %v", event.Path, err)
			}
		}
		return nil
	})

	return multierr.Combine(eg.Wait(), w.watcher.Close())
}

func (w *Watcher) collect(ctx context.Context, changes chan<- Event) error {
	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending Event
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			path, relevant := w.relevant(event)
			if !relevant {
				continue
			}
			pending = Event{Path: path, Op: event.Op.String()}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnf("file watcher error: %v", err)
		case <-fire:
			fire = nil
			select {
			case changes <- pending:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return "", false
	}
	path, err := filepath.Abs(event.Name)
	if err != nil {
		return "", false
	}
	_, ok := w.files[path]
	return path, ok
}
