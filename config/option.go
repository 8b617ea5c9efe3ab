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

package config

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(config *Config)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Config)

// Apply implements Option
func (f OptionFunc) Apply(c *Config) {
	f(c)
}

// WithCertificate sets the certificate and private key files
func WithCertificate(certFile, keyFile string) Option {
	return OptionFunc(func(c *Config) {
		c.CertFile = certFile
		c.KeyFile = keyFile
	})
}

// WithCAFile sets the file peers are verified against
func WithCAFile(caFile string) Option {
	return OptionFunc(func(c *Config) {
		c.CAFile = caFile
	})
}

// WithCiphers sets the cipher policy
func WithCiphers(ciphers string) Option {
	return OptionFunc(func(c *Config) {
		c.Ciphers = ciphers
	})
}

// WithVerifyPeer turns peer verification on
func WithVerifyPeer() Option {
	return OptionFunc(func(c *Config) {
		c.VerifyPeer = true
	})
}

// WithServerName sets the name initiators expect from acceptors
func WithServerName(name string) Option {
	return OptionFunc(func(c *Config) {
		c.ServerName = name
	})
}
