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

// Package engine bootstraps the cryptographic engine secure contexts are built on.
//
// An Engine owns the process-wide resources every secure context shares: the
// cipher algorithm table and the client session cache. A Library counts the
// managers using the engine so that those resources are set up by the first
// one and torn down after the last one.
package engine

import (
	"crypto/tls"

	gtls "github.com/tochemey/tlsmgr/tls"
)

// Engine is a cryptographic engine implementation.
//
// Init and Cleanup are never called concurrently, Library serializes them.
// The other methods may be called from any goroutine.
type Engine interface {
	// Name returns the engine name
	Name() string
	// Version returns the engine version
	Version() string
	// Init sets up the engine-wide resources
	Init() error
	// Cleanup releases the engine-wide resources
	Cleanup() error
	// SupportsProtocol reports whether the engine can negotiate the given protocol
	SupportsProtocol(protocol gtls.Protocol) bool
	// Ciphers returns the cipher algorithm table, nil when the engine is not initialized
	Ciphers() *gtls.CipherTable
	// SessionCache returns the engine-wide client session cache, nil when the engine is not initialized
	SessionCache() tls.ClientSessionCache
}
