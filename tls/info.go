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

import "time"

// Info is a read-only snapshot of a secure context configuration.
//
// It carries paths and names only, never key material, so it can be logged
// or printed as is.
type Info struct {
	// Protocol is the protocol pinned by the context method
	Protocol Protocol
	// Role is the handshake role of every channel minted from the context
	Role Role
	// Options holds the context options, OptionNoSSLv2 for legacy contexts
	Options Option
	// VerifyMode is the peer verification mode
	VerifyMode VerifyMode

	// CipherPolicy is the policy string as configured
	CipherPolicy string
	// CipherSuites lists the OpenSSL names the policy selected, in order
	CipherSuites []string

	// CertificateFile is the path the certificate was loaded from
	CertificateFile string
	// KeyFile is the path the private key was loaded from
	KeyFile string
	// CAFile is the path the verification roots were loaded from
	CAFile string
	// Subject is the certificate subject, empty without a certificate
	Subject string
	// NotAfter is the certificate expiry, zero without a certificate
	NotAfter time.Time
	// HasPrivateKey reports whether a private key was loaded
	HasPrivateKey bool

	// ServerName is the name initiators expect from acceptors
	ServerName string
	// Freed reports whether the context was freed
	Freed bool
}

// Info returns a snapshot of the context configuration
func (c *Context) Info() Info {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info := Info{
		Protocol:        c.method.Protocol(),
		Role:            c.method.Role(),
		Options:         c.options,
		VerifyMode:      c.verify,
		CipherPolicy:    c.cipherPolicy,
		CertificateFile: c.certPath,
		KeyFile:         c.keyPath,
		CAFile:          c.caPath,
		HasPrivateKey:   c.key != nil,
		ServerName:      c.serverName,
		Freed:           c.freed,
	}

	if c.cipherList != nil {
		info.CipherSuites = c.cipherList.Names()
	}

	if c.leaf != nil {
		info.Subject = c.leaf.Subject.String()
		info.NotAfter = c.leaf.NotAfter
	}
	return info
}
