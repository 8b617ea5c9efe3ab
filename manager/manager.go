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

// Package manager owns the lifecycle of a secure context: it bootstraps the
// cryptographic engine, builds one context from a configuration, mints the
// per-connection channels and tears everything down again.
package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/atomic"

	"github.com/tochemey/tlsmgr/config"
	"github.com/tochemey/tlsmgr/engine"
	gerrors "github.com/tochemey/tlsmgr/errors"
	"github.com/tochemey/tlsmgr/internal/errorschain"
	imetric "github.com/tochemey/tlsmgr/internal/metric"
	"github.com/tochemey/tlsmgr/log"
	"github.com/tochemey/tlsmgr/secureconn"
	gtls "github.com/tochemey/tlsmgr/tls"
)

// Manager builds a secure context once and mints secure channels from it.
//
// A Manager holds a reference on its engine library from the moment a build
// reaches the engine until Teardown, whatever the outcome of the build.
// All methods are safe for concurrent use.
type Manager struct {
	mu sync.Mutex

	id       uuid.UUID
	state    State
	library  *engine.Library
	acquired bool
	ctx      *gtls.Context
	role     gtls.Role
	active   *atomic.Int64

	source        gtls.Source
	logger        log.Logger
	meterProvider metric.MeterProvider
	metrics       *imetric.ManagerMetric
}

// New creates an instance of Manager
func New(opts ...Option) *Manager {
	m := &Manager{
		id:      uuid.New(),
		state:   Unbuilt,
		library: engine.Default(),
		active:  atomic.NewInt64(0),
		source:  gtls.OSSource,
		logger:  log.DefaultLogger,
	}

	for _, opt := range opts {
		opt.Apply(m)
	}

	m.logger = m.logger.With("component", "tlsmgr", "manager", m.id.String())

	provider := imetric.New(imetric.WithMeterProvider(m.meterProvider))
	metrics, err := imetric.NewManagerMetric(provider.Meter())
	if err != nil {
		m.logger.Warnf("failed to create instruments, metrics are disabled: %v", err)
		// the noop meter never fails
		metrics, _ = imetric.NewManagerMetric(noop.NewMeterProvider().Meter(""))
	}
	m.metrics = metrics
	return m
}

// ID returns the manager identifier. Channels carry it as their owner.
func (m *Manager) ID() uuid.UUID {
	return m.id
}

// State returns the manager state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Role returns the role the context was built for, zero before a build
func (m *Manager) Role() gtls.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.role
}

// ActiveChannels returns the number of minted channels not yet released
func (m *Manager) ActiveChannels() int {
	return int(m.active.Load())
}

// Info returns a snapshot of the secure context configuration.
// It is available once a build allocated the context and until Teardown.
func (m *Manager) Info() (gtls.Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ctx == nil {
		return gtls.Info{}, gerrors.ErrNotReady
	}
	return m.ctx.Info(), nil
}

// Build configures the secure context. A manager is built once.
//
// A configuration error or a protocol the engine cannot negotiate is rejected
// before anything is acquired and the manager stays Unbuilt. Any later failure
// leaves the manager Failed with its partially configured context, which is
// released by Teardown.
func (m *Manager) Build(cfg *config.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Unbuilt {
		return gerrors.NewErrInvalidState("Build", m.state.String())
	}

	if cfg == nil {
		return gerrors.NewErrInvalidConfig(errors.New("no configuration"))
	}

	if err := cfg.Validate(); err != nil {
		m.logger.Errorf("invalid configuration: %v", err)
		return err
	}

	protocol, role := cfg.Protocol.String(), cfg.Role.String()
	logger := m.logger.With("role", role, "protocol", protocol)

	eng := m.library.Engine()
	if !eng.SupportsProtocol(cfg.Protocol) {
		err := gerrors.NewErrUnsupportedProtocol(protocol, eng.Name())
		logger.Errorf("Protocol %s not supported by engine %s", protocol, eng.Name())
		m.metrics.RecordBuild(context.Background(), imetric.OutcomeUnsupported, protocol, role)
		return gerrors.NewBuildError(gerrors.StageProtocol, err)
	}

	m.state = Building
	if err := m.build(cfg, logger); err != nil {
		m.state = Failed
		m.metrics.RecordBuild(context.Background(), imetric.OutcomeFailure, protocol, role)
		return err
	}

	m.role = cfg.Role
	m.state = Ready
	m.metrics.RecordBuild(context.Background(), imetric.OutcomeSuccess, protocol, role)
	logger.Infof("secure context ready")
	return nil
}

func (m *Manager) build(cfg *config.Config, logger log.Logger) error {
	if err := m.library.Acquire(); err != nil {
		logger.Errorf("could not bootstrap the cryptographic engine: %v", err)
		return gerrors.NewBuildError(gerrors.StageAllocation, gerrors.NewErrContextAllocation(err))
	}
	m.acquired = true

	method, err := gtls.NewMethod(cfg.Protocol, cfg.Role)
	if err != nil {
		logger.Errorf("could not resolve protocol method: %v", err)
		return gerrors.NewBuildError(gerrors.StageAllocation, gerrors.NewErrContextAllocation(err))
	}

	eng := m.library.Engine()
	ctx, err := gtls.NewBuilder(m.source, logger).Build(method, eng.Ciphers(), cfg.Settings())
	m.ctx = ctx
	if err != nil {
		return err
	}

	if cfg.Role == gtls.Initiator {
		ctx.SetSessionCache(eng.SessionCache())
	}
	return nil
}

// CreateChannel mints a channel from the secure context. It returns
// ErrNotReady unless the manager is Ready. No I/O happens here.
func (m *Manager) CreateChannel() (*secureconn.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Ready {
		return nil, gerrors.ErrNotReady
	}

	channel, err := secureconn.New(m.ctx, m.id, m.onRelease)
	if err != nil {
		m.logger.Errorf("could not create secure channel: %v", err)
		return nil, err
	}

	m.active.Inc()
	m.metrics.RecordMinted(context.Background(), channel.Role().String())
	return channel, nil
}

// ReleaseChannel releases a channel minted by this manager. Releasing a
// channel twice returns ErrChannelReleased.
func (m *Manager) ReleaseChannel(channel *secureconn.Channel) error {
	if channel == nil {
		return gerrors.ErrInvalidChannel
	}
	if channel.Owner() != m.id {
		return gerrors.ErrForeignChannel
	}
	return channel.Release()
}

func (m *Manager) onRelease(channel *secureconn.Channel) {
	m.active.Dec()
	m.metrics.RecordReleased(context.Background(), channel.Role().String())
}

// Teardown frees the secure context and releases the engine reference.
// It refuses while channels are outstanding. A manager is torn down once.
func (m *Manager) Teardown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == TornDown {
		return gerrors.NewErrInvalidState("Teardown", m.state.String())
	}

	if active := m.active.Load(); active > 0 {
		return fmt.Errorf("%d channels outstanding: %w", active, gerrors.ErrChannelsActive)
	}

	ctx := m.ctx
	err := errorschain.New(errorschain.ReturnAll()).
		AddErrorFnIf(ctx != nil, func() error {
			ctx.Free()
			return nil
		}).
		AddErrorFnIf(m.acquired, m.library.Release).
		Error()

	m.ctx = nil
	m.acquired = false
	m.state = TornDown

	if err != nil {
		m.logger.Errorf("teardown failed: %v", err)
		return err
	}
	m.logger.Debug("torn down")
	return nil
}
