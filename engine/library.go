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

package engine

import (
	"fmt"
	"sync"

	gerrors "github.com/tochemey/tlsmgr/errors"
	"github.com/tochemey/tlsmgr/log"
)

// Library reference counts the users of an Engine.
//
// The first Acquire initializes the engine and the last Release cleans it up.
// Bootstrap and cleanup happen under the library lock, so concurrent managers
// never observe a half initialized engine.
type Library struct {
	mu     sync.Mutex
	engine Engine
	refs   int
	logger log.Logger
}

var (
	defaultLibrary *Library
	defaultOnce    sync.Once
)

// Default returns the process-wide library over the crypto/tls engine
func Default() *Library {
	defaultOnce.Do(func() {
		defaultLibrary = NewLibrary(NewGolang(DefaultSessionCacheSize), log.DiscardLogger)
	})
	return defaultLibrary
}

// NewLibrary creates a Library for the given engine
func NewLibrary(engine Engine, logger log.Logger) *Library {
	if logger == nil {
		logger = log.DiscardLogger
	}
	return &Library{engine: engine, logger: logger}
}

// Engine returns the engine the library manages
func (l *Library) Engine() Engine {
	return l.engine
}

// Acquire takes a reference on the engine, initializing it when it is the first one.
// When initialization fails no reference is taken.
func (l *Library) Acquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.refs == 0 {
		if err := l.engine.Init(); err != nil {
			l.logger.Errorf("failed to initialize engine=(%s): %v", l.engine.Name(), err)
			return fmt.Errorf("engine=(%s) bootstrap failed: %w", l.engine.Name(), err)
		}
		l.logger.Debugf("engine=(%s) version=(%s) initialized", l.engine.Name(), l.engine.Version())
	}

	l.refs++
	return nil
}

// Release drops a reference on the engine, cleaning it up when it is the last one.
// The reference is dropped even when the cleanup fails.
func (l *Library) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.refs == 0 {
		return gerrors.ErrLibraryNotAcquired
	}

	l.refs--
	if l.refs > 0 {
		return nil
	}

	if err := l.engine.Cleanup(); err != nil {
		l.logger.Errorf("failed to clean up engine=(%s): %v", l.engine.Name(), err)
		return fmt.Errorf("engine=(%s) cleanup failed: %w", l.engine.Name(), err)
	}
	l.logger.Debugf("engine=(%s) cleaned up", l.engine.Name())
	return nil
}

// RefCount returns the number of references held on the engine
func (l *Library) RefCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refs
}
