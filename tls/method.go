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

import "fmt"

// Method is the protocol method table a secure context is allocated from.
// Initiator and acceptor variants of the same protocol are distinct methods.
type Method struct {
	protocol Protocol
	role     Role
}

// NewMethod resolves the method for the given protocol and role.
func NewMethod(protocol Protocol, role Role) (*Method, error) {
	if !protocol.Valid() {
		return nil, fmt.Errorf("unknown protocol: %s", protocol)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role: %s", role)
	}
	return &Method{protocol: protocol, role: role}, nil
}

// Protocol returns the method protocol
func (m *Method) Protocol() Protocol {
	return m.protocol
}

// Role returns the method role
func (m *Method) Role() Role {
	return m.role
}

// Version returns the record layer version pinned by the method
func (m *Method) Version() uint16 {
	return m.protocol.Version()
}

func (m *Method) String() string {
	return fmt.Sprintf("%s_%s_method", m.protocol, m.role)
}
