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

package manager

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/tlsmgr/engine"
	"github.com/tochemey/tlsmgr/log"
	gtls "github.com/tochemey/tlsmgr/tls"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a manager.
	Apply(m *Manager)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Manager)

// Apply implements Option
func (f OptionFunc) Apply(m *Manager) {
	f(m)
}

// WithLogger sets the manager logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(m *Manager) {
		m.logger = logger
	})
}

// WithLibrary sets the engine library the manager bootstraps.
// The default is the process-wide library over crypto/tls.
func WithLibrary(library *engine.Library) Option {
	return OptionFunc(func(m *Manager) {
		m.library = library
	})
}

// WithSource sets where credential files are read from
func WithSource(source gtls.Source) Option {
	return OptionFunc(func(m *Manager) {
		m.source = source
	})
}

// WithMeterProvider sets the OpenTelemetry meter provider.
// The global provider is used otherwise.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(m *Manager) {
		m.meterProvider = provider
	})
}
