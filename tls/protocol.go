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
	"fmt"
	"strings"
)

// Protocol is the wire protocol requested for a secure context.
// The zero value is not a valid protocol.
type Protocol int

const (
	// SSLv3 is the legacy protocol. Contexts built for it disable the SSLv2
	// compatible negotiation.
	SSLv3 Protocol = iota + 1
	// TLSv1 is TLS 1.0
	TLSv1
	// TLSv1_1 is TLS 1.1
	TLSv1_1
	// TLSv1_2 is TLS 1.2
	TLSv1_2
	// TLSv1_3 is TLS 1.3. Its cipher suites are fixed by the engine.
	TLSv1_3
)

// Protocols lists every protocol known to this package, oldest first.
var Protocols = []Protocol{SSLv3, TLSv1, TLSv1_1, TLSv1_2, TLSv1_3}

// wire versions as they appear in the record layer
const (
	versionSSL30 uint16 = 0x0300
	versionTLS10 uint16 = 0x0301
	versionTLS11 uint16 = 0x0302
	versionTLS12 uint16 = 0x0303
	versionTLS13 uint16 = 0x0304
)

// Version returns the record layer version of the protocol, zero when unknown.
func (p Protocol) Version() uint16 {
	switch p {
	case SSLv3:
		return versionSSL30
	case TLSv1:
		return versionTLS10
	case TLSv1_1:
		return versionTLS11
	case TLSv1_2:
		return versionTLS12
	case TLSv1_3:
		return versionTLS13
	default:
		return 0
	}
}

// Valid reports whether p is a known protocol
func (p Protocol) Valid() bool {
	return p.Version() != 0
}

func (p Protocol) String() string {
	switch p {
	case SSLv3:
		return "SSLv3"
	case TLSv1:
		return "TLSv1"
	case TLSv1_1:
		return "TLSv1.1"
	case TLSv1_2:
		return "TLSv1.2"
	case TLSv1_3:
		return "TLSv1.3"
	default:
		return fmt.Sprintf("Protocol(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler
func (p Protocol) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid protocol %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Protocol) UnmarshalText(text []byte) error {
	parsed, err := ParseProtocol(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParseProtocol parses names such as "TLSv1.2", "tlsv1_2" or "SSLv3".
func ParseProtocol(name string) (Protocol, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.NewReplacer("_", ".", " ", "").Replace(normalized)
	switch normalized {
	case "sslv3", "ssl3", "ssl3.0":
		return SSLv3, nil
	case "tlsv1", "tls1", "tlsv1.0", "tls1.0":
		return TLSv1, nil
	case "tlsv1.1", "tls1.1":
		return TLSv1_1, nil
	case "tlsv1.2", "tls1.2":
		return TLSv1_2, nil
	case "tlsv1.3", "tls1.3":
		return TLSv1_3, nil
	default:
		return 0, fmt.Errorf("unknown protocol %q", name)
	}
}

// Role determines the handshake direction of every channel minted from a context.
// The zero value is not a valid role.
type Role int

const (
	// Initiator performs the active open of the handshake
	Initiator Role = iota + 1
	// Acceptor performs the passive open of the handshake
	Acceptor
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == Initiator || r == Acceptor
}

func (r Role) String() string {
	switch r {
	case Initiator:
		return "initiator"
	case Acceptor:
		return "acceptor"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// MarshalText implements encoding.TextMarshaler
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRole parses "initiator"/"client" and "acceptor"/"server".
func ParseRole(name string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "initiator", "client":
		return Initiator, nil
	case "acceptor", "server":
		return Acceptor, nil
	default:
		return 0, fmt.Errorf("unknown role %q", name)
	}
}
