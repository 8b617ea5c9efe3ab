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
	"crypto/tls"
	"runtime"
	"sync"

	gerrors "github.com/tochemey/tlsmgr/errors"
	gtls "github.com/tochemey/tlsmgr/tls"
)

// DefaultSessionCacheSize is the capacity of the engine-wide client session cache
const DefaultSessionCacheSize = 256

// Golang is the Engine backed by crypto/tls.
// crypto/tls does not implement SSLv3.
type Golang struct {
	mu               sync.RWMutex
	ciphers          *gtls.CipherTable
	sessionCache     tls.ClientSessionCache
	sessionCacheSize int
}

// enforce compilation error
var _ Engine = (*Golang)(nil)

// NewGolang creates an instance of Golang. A non-positive cache size
// falls back to DefaultSessionCacheSize.
func NewGolang(sessionCacheSize int) *Golang {
	if sessionCacheSize <= 0 {
		sessionCacheSize = DefaultSessionCacheSize
	}
	return &Golang{sessionCacheSize: sessionCacheSize}
}

// Name implements Engine
func (g *Golang) Name() string {
	return "go"
}

// Version implements Engine
func (g *Golang) Version() string {
	return runtime.Version()
}

// Init builds the cipher algorithm table from the suites crypto/tls implements.
// Calling Init on an initialized engine is a no-op.
func (g *Golang) Init() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ciphers != nil {
		return nil
	}

	suites := append(tls.CipherSuites(), tls.InsecureCipherSuites()...)
	g.ciphers = gtls.NewCipherTable(suites...)
	g.sessionCache = tls.NewLRUClientSessionCache(g.sessionCacheSize)
	return nil
}

// Cleanup drops the engine-wide resources
func (g *Golang) Cleanup() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ciphers == nil {
		return gerrors.ErrEngineNotInitialized
	}
	g.ciphers = nil
	g.sessionCache = nil
	return nil
}

// SupportsProtocol implements Engine
func (g *Golang) SupportsProtocol(protocol gtls.Protocol) bool {
	switch protocol {
	case gtls.TLSv1, gtls.TLSv1_1, gtls.TLSv1_2, gtls.TLSv1_3:
		return true
	default:
		return false
	}
}

// Ciphers implements Engine
func (g *Golang) Ciphers() *gtls.CipherTable {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.ciphers
}

// SessionCache implements Engine
func (g *Golang) SessionCache() tls.ClientSessionCache {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sessionCache
}
