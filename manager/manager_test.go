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
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/tochemey/tlsmgr/config"
	"github.com/tochemey/tlsmgr/engine"
	gerrors "github.com/tochemey/tlsmgr/errors"
	"github.com/tochemey/tlsmgr/internal/testutil"
	"github.com/tochemey/tlsmgr/log"
	"github.com/tochemey/tlsmgr/secureconn"
	gtls "github.com/tochemey/tlsmgr/tls"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// legacyEngine is the crypto/tls engine claiming support for every protocol,
// SSLv3 included, and counting its bootstrap and cleanup calls
type legacyEngine struct {
	*engine.Golang
	inits    *atomic.Int32
	cleanups *atomic.Int32
	initErr  error
}

func newLegacyEngine() *legacyEngine {
	return &legacyEngine{
		Golang:   engine.NewGolang(0),
		inits:    atomic.NewInt32(0),
		cleanups: atomic.NewInt32(0),
	}
}

func (e *legacyEngine) SupportsProtocol(protocol gtls.Protocol) bool {
	return protocol.Valid()
}

func (e *legacyEngine) Init() error {
	e.inits.Inc()
	if e.initErr != nil {
		return e.initErr
	}
	return e.Golang.Init()
}

func (e *legacyEngine) Cleanup() error {
	e.cleanups.Inc()
	return e.Golang.Cleanup()
}

type fixtures struct {
	server testutil.Credentials
	client testutil.Credentials
	other  testutil.Credentials
	caFile string
}

func newFixtures(t *testing.T) fixtures {
	t.Helper()
	dir := t.TempDir()
	root := testutil.NewCertRoot(t)
	return fixtures{
		server: testutil.WriteCredentials(t, root, dir, "server"),
		client: testutil.WriteCredentials(t, root, dir, "client"),
		other:  testutil.WriteCredentials(t, root, dir, "other"),
		caFile: testutil.WriteCA(t, root, dir),
	}
}

func newLibrary() *engine.Library {
	return engine.NewLibrary(engine.NewGolang(0), log.DiscardLogger)
}

func newManager(library *engine.Library, opts ...Option) *Manager {
	return New(append([]Option{WithLogger(log.DiscardLogger), WithLibrary(library)}, opts...)...)
}

func TestBuildEverySupportedProtocolAndRole(t *testing.T) {
	fx := newFixtures(t)
	library := newLibrary()

	protocols := []gtls.Protocol{gtls.TLSv1, gtls.TLSv1_1, gtls.TLSv1_2, gtls.TLSv1_3}
	roles := map[gtls.Role]secureconn.Direction{
		gtls.Initiator: secureconn.Active,
		gtls.Acceptor:  secureconn.Passive,
	}

	for _, protocol := range protocols {
		for role, direction := range roles {
			t.Run(protocol.String()+"/"+role.String(), func(t *testing.T) {
				manager := newManager(library)
				cfg := config.New(role, protocol, config.WithCertificate(fx.server.CertFile, fx.server.KeyFile))
				require.NoError(t, manager.Build(cfg))
				assert.Equal(t, Ready, manager.State())
				assert.Equal(t, role, manager.Role())

				channel, err := manager.CreateChannel()
				require.NoError(t, err)
				assert.Equal(t, direction, channel.Direction())
				assert.Equal(t, manager.ID(), channel.Owner())
				assert.Equal(t, 1, manager.ActiveChannels())

				require.NoError(t, manager.ReleaseChannel(channel))
				assert.Zero(t, manager.ActiveChannels())
				require.NoError(t, manager.Teardown())
				assert.Equal(t, TornDown, manager.State())
			})
		}
	}
	assert.Zero(t, library.RefCount())
}

func TestBuildUnsupportedProtocol(t *testing.T) {
	library := newLibrary()
	manager := newManager(library)

	err := manager.Build(config.New(gtls.Initiator, gtls.SSLv3))
	require.ErrorIs(t, err, gerrors.ErrUnsupportedProtocol)
	var buildErr *gerrors.BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, gerrors.StageProtocol, buildErr.Stage())

	// nothing was acquired or allocated
	assert.Equal(t, Unbuilt, manager.State())
	assert.Zero(t, library.RefCount())
	_, err = manager.Info()
	require.ErrorIs(t, err, gerrors.ErrNotReady)

	_, err = manager.CreateChannel()
	require.ErrorIs(t, err, gerrors.ErrNotReady)

	// the manager can still be built with a protocol the engine supports
	require.NoError(t, manager.Build(config.New(gtls.Initiator, gtls.TLSv1_2)))
	assert.Equal(t, 1, library.RefCount())
	require.NoError(t, manager.Teardown())
	assert.Zero(t, library.RefCount())
}

func TestBuildCredentials(t *testing.T) {
	fx := newFixtures(t)
	library := newLibrary()

	t.Run("certificate without key", func(t *testing.T) {
		manager := newManager(library)
		require.NoError(t, manager.Build(config.New(gtls.Acceptor, gtls.TLSv1_2, config.WithCertificate(fx.server.CertFile, ""))))
		info, err := manager.Info()
		require.NoError(t, err)
		assert.Equal(t, fx.server.CertFile, info.CertificateFile)
		assert.False(t, info.HasPrivateKey)
		require.NoError(t, manager.Teardown())
	})

	t.Run("key without certificate is ignored", func(t *testing.T) {
		manager := newManager(library)
		require.NoError(t, manager.Build(config.New(gtls.Acceptor, gtls.TLSv1_2, config.WithCertificate("", fx.server.KeyFile))))
		info, err := manager.Info()
		require.NoError(t, err)
		assert.False(t, info.HasPrivateKey)
		require.NoError(t, manager.Teardown())
	})

	t.Run("matching key", func(t *testing.T) {
		manager := newManager(library)
		require.NoError(t, manager.Build(config.New(gtls.Acceptor, gtls.TLSv1_2, config.WithCertificate(fx.server.CertFile, fx.server.KeyFile))))
		require.NoError(t, manager.Teardown())
	})

	t.Run("mismatched key", func(t *testing.T) {
		manager := newManager(library)
		err := manager.Build(config.New(gtls.Acceptor, gtls.TLSv1_2, config.WithCertificate(fx.server.CertFile, fx.other.KeyFile)))
		require.ErrorIs(t, err, gerrors.ErrKeyCertificateMismatch)
		assert.Equal(t, Failed, manager.State())
		require.NoError(t, manager.Teardown())
	})

	assert.Zero(t, library.RefCount())
}

func TestBuildCipherPolicy(t *testing.T) {
	library := newLibrary()
	testCases := []struct {
		name    string
		ciphers string
		valid   bool
	}{
		{name: "empty", ciphers: ""},
		{name: "syntax error", ciphers: "HIGH:!"},
		{name: "no match", ciphers: "NOT-A-CIPHER"},
		{name: "high without anonymous", ciphers: "HIGH:!aNULL", valid: true},
		{name: "elliptic curve AEAD", ciphers: "ECDHE+AESGCM:ECDHE+CHACHA20", valid: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			manager := newManager(library)
			err := manager.Build(config.New(gtls.Initiator, gtls.TLSv1_2, config.WithCiphers(tc.ciphers)))
			if tc.valid {
				require.NoError(t, err)
				assert.Equal(t, Ready, manager.State())
			} else {
				require.ErrorIs(t, err, gerrors.ErrCipherConfiguration)
				assert.Equal(t, Failed, manager.State())
			}
			require.NoError(t, manager.Teardown())
		})
	}
	assert.Zero(t, library.RefCount())
}

func TestFailedBuild(t *testing.T) {
	fx := newFixtures(t)
	library := newLibrary()
	manager := newManager(library)

	err := manager.Build(config.New(gtls.Acceptor, gtls.TLSv1_2,
		config.WithCertificate(fx.server.CertFile, "missing.key"),
		config.WithVerifyPeer()))
	require.ErrorIs(t, err, gerrors.ErrKeyLoad)
	assert.Equal(t, Failed, manager.State())

	// the reference is held until teardown and the partial state is kept
	assert.Equal(t, 1, library.RefCount())
	info, err := manager.Info()
	require.NoError(t, err)
	assert.Equal(t, fx.server.CertFile, info.CertificateFile)
	assert.Equal(t, gtls.VerifyNone, info.VerifyMode)

	_, err = manager.CreateChannel()
	require.ErrorIs(t, err, gerrors.ErrNotReady)

	err = manager.Build(config.New(gtls.Acceptor, gtls.TLSv1_2))
	require.ErrorIs(t, err, gerrors.ErrInvalidState)

	require.NoError(t, manager.Teardown())
	assert.Zero(t, library.RefCount())
}

func TestFailedBootstrap(t *testing.T) {
	eng := newLegacyEngine()
	eng.initErr = errors.New("no entropy")
	library := engine.NewLibrary(eng, log.DiscardLogger)
	manager := newManager(library)

	err := manager.Build(config.New(gtls.Initiator, gtls.TLSv1_2))
	require.ErrorIs(t, err, gerrors.ErrContextAllocation)
	require.ErrorIs(t, err, eng.initErr)
	assert.Equal(t, Failed, manager.State())

	// a failed bootstrap takes no reference, teardown has nothing to release
	assert.Zero(t, library.RefCount())
	_, err = manager.Info()
	require.ErrorIs(t, err, gerrors.ErrNotReady)

	require.NoError(t, manager.Teardown())
	assert.Zero(t, library.RefCount())
	assert.Zero(t, eng.cleanups.Load())
	assert.Equal(t, TornDown, manager.State())
}

func TestBuildInvalidConfig(t *testing.T) {
	library := newLibrary()
	manager := newManager(library)

	require.ErrorIs(t, manager.Build(nil), gerrors.ErrInvalidConfig)
	require.ErrorIs(t, manager.Build(&config.Config{Ciphers: "DEFAULT"}), gerrors.ErrInvalidConfig)
	assert.Equal(t, Unbuilt, manager.State())
	assert.Zero(t, library.RefCount())
	require.NoError(t, manager.Teardown())
}

func TestSharedLibrary(t *testing.T) {
	const managers = 8
	legacy := newLegacyEngine()
	library := engine.NewLibrary(legacy, log.DiscardLogger)

	built := make([]*Manager, managers)
	for i := range managers {
		built[i] = newManager(library)
		require.NoError(t, built[i].Build(config.New(gtls.Initiator, gtls.TLSv1_2)))
	}
	assert.EqualValues(t, 1, legacy.inits.Load())
	assert.Equal(t, managers, library.RefCount())

	for remaining, i := range rand.Perm(managers) {
		require.NotNil(t, legacy.Ciphers(), "engine resources are present while a manager is built")
		require.NoError(t, built[i].Teardown())
		if remaining < managers-1 {
			assert.Zero(t, legacy.cleanups.Load())
		}
	}

	assert.EqualValues(t, 1, legacy.cleanups.Load())
	assert.Nil(t, legacy.Ciphers())
	assert.Zero(t, library.RefCount())

	// a new manager bootstraps the engine again
	manager := newManager(library)
	require.NoError(t, manager.Build(config.New(gtls.Initiator, gtls.TLSv1_2)))
	assert.EqualValues(t, 2, legacy.inits.Load())
	require.NoError(t, manager.Teardown())
}

func TestChannelLifecycle(t *testing.T) {
	library := newLibrary()

	t.Run("create before build", func(t *testing.T) {
		manager := newManager(library)
		channel, err := manager.CreateChannel()
		require.ErrorIs(t, err, gerrors.ErrNotReady)
		assert.Nil(t, channel)
	})

	t.Run("double release", func(t *testing.T) {
		manager := newManager(library)
		require.NoError(t, manager.Build(config.New(gtls.Initiator, gtls.TLSv1_2)))
		channel, err := manager.CreateChannel()
		require.NoError(t, err)

		require.NoError(t, manager.ReleaseChannel(channel))
		require.ErrorIs(t, manager.ReleaseChannel(channel), gerrors.ErrChannelReleased)
		assert.Zero(t, manager.ActiveChannels())
		require.NoError(t, manager.Teardown())
	})

	t.Run("nil and foreign channels", func(t *testing.T) {
		first := newManager(library)
		second := newManager(library)
		require.NoError(t, first.Build(config.New(gtls.Initiator, gtls.TLSv1_2)))
		require.NoError(t, second.Build(config.New(gtls.Initiator, gtls.TLSv1_2)))

		channel, err := first.CreateChannel()
		require.NoError(t, err)

		require.ErrorIs(t, second.ReleaseChannel(nil), gerrors.ErrInvalidChannel)
		require.ErrorIs(t, second.ReleaseChannel(channel), gerrors.ErrForeignChannel)
		assert.False(t, channel.Released())

		require.NoError(t, first.ReleaseChannel(channel))
		require.NoError(t, first.Teardown())
		require.NoError(t, second.Teardown())
	})

	t.Run("teardown with outstanding channels", func(t *testing.T) {
		manager := newManager(library)
		require.NoError(t, manager.Build(config.New(gtls.Acceptor, gtls.TLSv1_2)))
		channel, err := manager.CreateChannel()
		require.NoError(t, err)

		require.ErrorIs(t, manager.Teardown(), gerrors.ErrChannelsActive)
		assert.Equal(t, Ready, manager.State())
		assert.Equal(t, 1, library.RefCount())

		// the context is still usable by the channel
		_, err = channel.Config()
		require.NoError(t, err)

		require.NoError(t, manager.ReleaseChannel(channel))
		require.NoError(t, manager.Teardown())
		assert.True(t, channel.Context().Freed())
	})

	assert.Zero(t, library.RefCount())
}

func TestTeardown(t *testing.T) {
	library := newLibrary()

	t.Run("unbuilt manager", func(t *testing.T) {
		manager := newManager(library)
		require.NoError(t, manager.Teardown())
		assert.Equal(t, TornDown, manager.State())
		assert.Zero(t, library.RefCount())
	})

	t.Run("twice", func(t *testing.T) {
		other := newManager(library)
		require.NoError(t, other.Build(config.New(gtls.Initiator, gtls.TLSv1_2)))

		manager := newManager(library)
		require.NoError(t, manager.Build(config.New(gtls.Initiator, gtls.TLSv1_2)))
		assert.Equal(t, 2, library.RefCount())

		require.NoError(t, manager.Teardown())
		require.ErrorIs(t, manager.Teardown(), gerrors.ErrInvalidState)
		assert.Equal(t, 1, library.RefCount(), "a second teardown does not release another reference")

		require.ErrorIs(t, manager.Build(config.New(gtls.Initiator, gtls.TLSv1_2)), gerrors.ErrInvalidState)
		_, err := manager.CreateChannel()
		require.ErrorIs(t, err, gerrors.ErrNotReady)

		require.NoError(t, other.Teardown())
		assert.Zero(t, library.RefCount())
	})
}

func TestExampleScenarios(t *testing.T) {
	fx := newFixtures(t)

	t.Run("acceptor verifying peers", func(t *testing.T) {
		manager := newManager(newLibrary())
		cfg := config.New(gtls.Acceptor, gtls.TLSv1_2,
			config.WithCertificate(fx.server.CertFile, fx.server.KeyFile),
			config.WithCiphers("HIGH:!aNULL"),
			config.WithVerifyPeer())
		require.NoError(t, manager.Build(cfg))

		channel, err := manager.CreateChannel()
		require.NoError(t, err)
		assert.Equal(t, secureconn.Passive, channel.Direction())

		tlsConfig, err := channel.Config()
		require.NoError(t, err)
		assert.NotEmpty(t, tlsConfig.Certificates)

		require.NoError(t, manager.ReleaseChannel(channel))
		require.NoError(t, manager.Teardown())
	})

	t.Run("legacy initiator", func(t *testing.T) {
		manager := newManager(engine.NewLibrary(newLegacyEngine(), log.DiscardLogger))
		require.NoError(t, manager.Build(config.New(gtls.Initiator, gtls.SSLv3)))

		info, err := manager.Info()
		require.NoError(t, err)
		assert.NotZero(t, info.Options&gtls.OptionNoSSLv2)
		assert.Equal(t, gtls.VerifyNone, info.VerifyMode)
		assert.NotEmpty(t, info.CipherSuites)

		channel, err := manager.CreateChannel()
		require.NoError(t, err)
		assert.Equal(t, secureconn.Active, channel.Direction())
		require.NoError(t, manager.ReleaseChannel(channel))
		require.NoError(t, manager.Teardown())
	})
}

func TestConcurrentChannels(t *testing.T) {
	const channels = 64
	library := newLibrary()
	manager := newManager(library)
	require.NoError(t, manager.Build(config.New(gtls.Acceptor, gtls.TLSv1_2)))

	minted := make([]*secureconn.Channel, channels)
	eg := new(errgroup.Group)
	for i := range channels {
		eg.Go(func() error {
			channel, err := manager.CreateChannel()
			minted[i] = channel
			return err
		})
	}
	require.NoError(t, eg.Wait())
	assert.Equal(t, channels, manager.ActiveChannels())

	ids := make(map[string]struct{}, channels)
	for _, channel := range minted {
		ids[channel.ID().String()] = struct{}{}
	}
	assert.Len(t, ids, channels)

	for _, channel := range minted {
		eg.Go(func() error { return manager.ReleaseChannel(channel) })
	}
	require.NoError(t, eg.Wait())
	assert.Zero(t, manager.ActiveChannels())
	require.NoError(t, manager.Teardown())
}

func TestHandshake(t *testing.T) {
	fx := newFixtures(t)
	library := newLibrary()

	acceptor := newManager(library)
	require.NoError(t, acceptor.Build(config.New(gtls.Acceptor, gtls.TLSv1_2,
		config.WithCertificate(fx.server.CertFile, fx.server.KeyFile),
		config.WithCAFile(fx.caFile),
		config.WithCiphers("ECDHE+AESGCM"),
		config.WithVerifyPeer())))

	initiator := newManager(library)
	require.NoError(t, initiator.Build(config.New(gtls.Initiator, gtls.TLSv1_2,
		config.WithCertificate(fx.client.CertFile, fx.client.KeyFile),
		config.WithCAFile(fx.caFile),
		config.WithVerifyPeer(),
		config.WithServerName("localhost"))))

	passive, err := acceptor.CreateChannel()
	require.NoError(t, err)
	active, err := initiator.CreateChannel()
	require.NoError(t, err)

	clientConn, serverConn := net.Pipe()
	serverTLS, err := passive.Bind(serverConn)
	require.NoError(t, err)
	clientTLS, err := active.Bind(clientConn)
	require.NoError(t, err)

	eg, ctx := errgroup.WithContext(context.Background())
	eg.Go(func() error {
		if err := serverTLS.HandshakeContext(ctx); err != nil {
			return err
		}
		_, err := serverTLS.Write([]byte("hello"))
		return err
	})
	eg.Go(func() error {
		if err := clientTLS.HandshakeContext(ctx); err != nil {
			return err
		}
		buffer := make([]byte, 5)
		_, err := io.ReadFull(clientTLS, buffer)
		return err
	})
	require.NoError(t, eg.Wait())

	state := clientTLS.ConnectionState()
	assert.True(t, state.HandshakeComplete)
	assert.Contains(t, passive.Context().CipherList().IDs(), state.CipherSuite)
	assert.Equal(t, "localhost", state.PeerCertificates[0].Subject.CommonName)

	require.NoError(t, clientConn.Close())
	require.NoError(t, serverConn.Close())

	require.NoError(t, acceptor.ReleaseChannel(passive))
	require.NoError(t, initiator.ReleaseChannel(active))
	require.NoError(t, acceptor.Teardown())
	require.NoError(t, initiator.Teardown())
	assert.Zero(t, library.RefCount())
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	library := newLibrary()
	manager := newManager(library, WithMeterProvider(provider))
	require.Error(t, manager.Build(config.New(gtls.Initiator, gtls.SSLv3)))
	require.NoError(t, manager.Build(config.New(gtls.Initiator, gtls.TLSv1_2)))

	first, err := manager.CreateChannel()
	require.NoError(t, err)
	second, err := manager.CreateChannel()
	require.NoError(t, err)
	require.NoError(t, manager.ReleaseChannel(first))

	var data metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &data))

	builds := points(t, data, "tlsmgr.builds.count")
	assert.Len(t, builds, 2)
	assert.EqualValues(t, 2, total(points(t, data, "tlsmgr.channels.minted.count")))
	assert.EqualValues(t, 1, total(points(t, data, "tlsmgr.channels.active")))

	require.NoError(t, manager.ReleaseChannel(second))
	require.NoError(t, manager.Teardown())
}

func points(t *testing.T, data metricdata.ResourceMetrics, name string) []metricdata.DataPoint[int64] {
	t.Helper()
	for _, scope := range data.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name == name {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				return sum.DataPoints
			}
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func total(points []metricdata.DataPoint[int64]) int64 {
	var sum int64
	for _, point := range points {
		sum += point.Value
	}
	return sum
}
