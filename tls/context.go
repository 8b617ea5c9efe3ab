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

package tls

import (
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"slices"
	"sync"

	gerrors "github.com/tochemey/tlsmgr/errors"
)

// Option is a bit set of context behaviour switches
type Option uint32

const (
	// OptionNoSSLv2 disables the SSLv2 compatible negotiation of legacy contexts
	OptionNoSSLv2 Option = 1 << iota
	// OptionNoTicket disables session tickets
	OptionNoTicket
)

// VerifyMode controls peer certificate verification
type VerifyMode uint8

const (
	// VerifyNone performs no peer verification
	VerifyNone VerifyMode = 0
	// VerifyPeer verifies the peer certificate when one is presented
	VerifyPeer VerifyMode = 1 << 0
	// VerifyFailIfNoPeerCert fails the handshake when the peer presents no certificate.
	// It only has an effect together with VerifyPeer.
	VerifyFailIfNoPeerCert VerifyMode = 1 << 1
)

// VerifyModeFor maps a verify-peer flag to its verify mode
func VerifyModeFor(verifyPeer bool) VerifyMode {
	if verifyPeer {
		return VerifyPeer | VerifyFailIfNoPeerCert
	}
	return VerifyNone
}

// Context is the secure context channels are minted from. It is configured
// once and read concurrently by channels afterwards.
type Context struct {
	mu sync.RWMutex

	method  *Method
	ciphers *CipherTable
	options Option

	certPath  string
	certChain [][]byte
	leaf      *x509.Certificate
	keyPath   string
	key       crypto.Signer

	cipherPolicy string
	cipherList   *CipherList
	verify       VerifyMode

	caPath       string
	roots        *x509.CertPool
	serverName   string
	sessionCache tls.ClientSessionCache

	freed bool
}

// NewContext allocates a secure context from a resolved method. The cipher
// table comes from a bootstrapped engine.
func NewContext(method *Method, ciphers *CipherTable) (*Context, error) {
	if method == nil {
		return nil, gerrors.NewErrContextAllocation(errors.New("no protocol method"))
	}
	if ciphers == nil {
		return nil, gerrors.NewErrContextAllocation(gerrors.ErrEngineNotInitialized)
	}

	ctx := &Context{
		method:  method,
		ciphers: ciphers,
		verify:  VerifyNone,
	}
	if method.Protocol() == SSLv3 {
		ctx.options |= OptionNoSSLv2
	}
	return ctx, nil
}

// Method returns the protocol method the context was allocated from
func (c *Context) Method() *Method {
	return c.method
}

// SetOptions adds options to the context and returns the resulting set
func (c *Context) SetOptions(options Option) Option {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options |= options
	return c.options
}

// Options returns the options set on the context
func (c *Context) Options() Option {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.options
}

// UseCertificateFile loads a PEM certificate, optionally followed by its chain.
func (c *Context) UseCertificateFile(source Source, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.freed {
		return gerrors.ErrContextFreed
	}

	data, err := source.ReadFile(path)
	if err != nil {
		return gerrors.NewErrCertificateLoad(path, err)
	}

	chain, leaf, err := parseCertificateChain(data)
	if err != nil {
		return gerrors.NewErrCertificateLoad(path, err)
	}

	c.certPath = path
	c.certChain = chain
	c.leaf = leaf
	return nil
}

// UsePrivateKeyFile loads a PEM private key. It does not check the key
// against the certificate, see CheckPrivateKey.
func (c *Context) UsePrivateKeyFile(source Source, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.freed {
		return gerrors.ErrContextFreed
	}

	data, err := source.ReadFile(path)
	if err != nil {
		return gerrors.NewErrKeyLoad(path, err)
	}

	key, err := parsePrivateKey(data)
	if err != nil {
		return gerrors.NewErrKeyLoad(path, err)
	}

	c.keyPath = path
	c.key = key
	return nil
}

// CheckPrivateKey verifies that the loaded private key matches the loaded certificate
func (c *Context) CheckPrivateKey() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch {
	case c.freed:
		return gerrors.ErrContextFreed
	case c.leaf == nil:
		return gerrors.NewErrCertificateLoad(c.certPath, errNoCertificate)
	case c.key == nil:
		return gerrors.NewErrKeyLoad(c.keyPath, errNoPrivateKey)
	case !keyMatches(c.leaf, c.key):
		return gerrors.NewErrKeyCertificateMismatch(c.certPath, c.keyPath)
	}
	return nil
}

// SetCipherList applies an OpenSSL cipher policy. The policy must select at
// least one suite usable with the context protocol.
func (c *Context) SetCipherList(policy string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.freed {
		return gerrors.ErrContextFreed
	}

	list, err := ParseCipherList(c.ciphers, policy)
	if err != nil {
		return gerrors.NewErrCipherConfiguration(policy, err)
	}

	usable := list.For(c.method.Protocol())
	if usable.Len() == 0 {
		return gerrors.NewErrCipherConfiguration(policy, ErrNoCipherMatch)
	}

	c.cipherPolicy = policy
	c.cipherList = usable
	return nil
}

// CipherList returns the applied cipher selection, nil when none was applied
func (c *Context) CipherList() *CipherList {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cipherList
}

// SetVerify sets the peer verification mode
func (c *Context) SetVerify(mode VerifyMode) {
	c.mu.Lock()
	c.verify = mode
	c.mu.Unlock()
}

// VerifyMode returns the peer verification mode
func (c *Context) VerifyMode() VerifyMode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.verify
}

// LoadVerifyLocations loads the PEM certificates peers are verified against.
// Without it the system roots are used.
func (c *Context) LoadVerifyLocations(source Source, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.freed {
		return gerrors.ErrContextFreed
	}

	data, err := source.ReadFile(path)
	if err != nil {
		return gerrors.NewErrCertificateLoad(path, err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return gerrors.NewErrCertificateLoad(path, errNoCertificate)
	}

	c.caPath = path
	c.roots = pool
	return nil
}

// SetServerName sets the name initiators expect in the acceptor certificate
func (c *Context) SetServerName(name string) {
	c.mu.Lock()
	c.serverName = name
	c.mu.Unlock()
}

// SetSessionCache sets the client session cache shared by initiator channels
func (c *Context) SetSessionCache(cache tls.ClientSessionCache) {
	c.mu.Lock()
	c.sessionCache = cache
	c.mu.Unlock()
}

// Certificate returns the leaf certificate, nil when none was loaded
func (c *Context) Certificate() *x509.Certificate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.leaf
}

// HasPrivateKey reports whether a private key was loaded
func (c *Context) HasPrivateKey() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.key != nil
}

// Config returns a fresh crypto/tls configuration reflecting the context.
// The version is pinned to the method protocol.
func (c *Context) Config() (*tls.Config, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.freed {
		return nil, gerrors.ErrContextFreed
	}

	version := c.method.Version()
	config := &tls.Config{
		MinVersion:             version,
		MaxVersion:             version,
		ServerName:             c.serverName,
		SessionTicketsDisabled: c.options&OptionNoTicket != 0,
	}

	if c.cipherList != nil && c.method.Protocol() != TLSv1_3 {
		config.CipherSuites = c.cipherList.IDs()
	}

	if c.leaf != nil && c.key != nil {
		config.Certificates = []tls.Certificate{{
			Certificate: slices.Clone(c.certChain),
			PrivateKey:  c.key,
			Leaf:        c.leaf,
		}}
	}

	verifyPeer := c.verify&VerifyPeer != 0
	switch c.method.Role() {
	case Acceptor:
		config.ClientCAs = c.roots
		switch {
		case verifyPeer && c.verify&VerifyFailIfNoPeerCert != 0:
			config.ClientAuth = tls.RequireAndVerifyClientCert
		case verifyPeer:
			config.ClientAuth = tls.VerifyClientCertIfGiven
		default:
			config.ClientAuth = tls.NoClientCert
		}
	case Initiator:
		config.RootCAs = c.roots
		config.InsecureSkipVerify = !verifyPeer //nolint:gosec
		config.ClientSessionCache = c.sessionCache
	}

	return config, nil
}

// Free releases the context configuration. Freeing twice is a no-op.
func (c *Context) Free() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.freed {
		return
	}
	c.freed = true
	c.certChain = nil
	c.leaf = nil
	c.key = nil
	c.cipherList = nil
	c.roots = nil
	c.sessionCache = nil
}

// Freed reports whether the context was freed
func (c *Context) Freed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.freed
}
