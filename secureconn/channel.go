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

// Package secureconn holds the per-connection secure channels minted from a secure context.
package secureconn

import (
	"crypto/tls"
	"net"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	gerrors "github.com/tochemey/tlsmgr/errors"
	gtls "github.com/tochemey/tlsmgr/tls"
)

// Direction is the handshake direction of a channel
type Direction int

const (
	// Active channels open the handshake, they are minted from initiator contexts
	Active Direction = iota + 1
	// Passive channels answer the handshake, they are minted from acceptor contexts
	Passive
)

func (d Direction) String() string {
	switch d {
	case Active:
		return "active"
	case Passive:
		return "passive"
	default:
		return "unknown"
	}
}

// DirectionOf returns the direction of the channels minted for a role
func DirectionOf(role gtls.Role) Direction {
	if role == gtls.Acceptor {
		return Passive
	}
	return Active
}

// Channel is the secure state of a single connection.
//
// A channel has one owner at a time and is released exactly once. It keeps a
// reference on the context it was minted from for its whole lifetime.
type Channel struct {
	id        uuid.UUID
	owner     uuid.UUID
	role      gtls.Role
	ctx       *gtls.Context
	released  *atomic.Bool
	onRelease func(*Channel)
}

// New mints a channel from ctx on behalf of owner. onRelease, when set, is called
// once when the channel is released.
func New(ctx *gtls.Context, owner uuid.UUID, onRelease func(*Channel)) (*Channel, error) {
	if ctx == nil {
		return nil, gerrors.ErrNotReady
	}
	if ctx.Freed() {
		return nil, gerrors.ErrContextFreed
	}

	return &Channel{
		id:        uuid.New(),
		owner:     owner,
		role:      ctx.Method().Role(),
		ctx:       ctx,
		released:  atomic.NewBool(false),
		onRelease: onRelease,
	}, nil
}

// ID returns the channel identifier
func (c *Channel) ID() uuid.UUID {
	return c.id
}

// Owner returns the identifier of the manager that minted the channel
func (c *Channel) Owner() uuid.UUID {
	return c.owner
}

// Role returns the role of the context the channel was minted from
func (c *Channel) Role() gtls.Role {
	return c.role
}

// Direction returns the handshake direction
func (c *Channel) Direction() Direction {
	return DirectionOf(c.role)
}

// Context returns the secure context the channel was minted from
func (c *Channel) Context() *gtls.Context {
	return c.ctx
}

// Released reports whether the channel was released
func (c *Channel) Released() bool {
	return c.released.Load()
}

// Release releases the channel. Releasing a channel twice returns ErrChannelReleased.
func (c *Channel) Release() error {
	if !c.released.CompareAndSwap(false, true) {
		return gerrors.ErrChannelReleased
	}
	if c.onRelease != nil {
		c.onRelease(c)
	}
	return nil
}

// Config returns the crypto/tls configuration of the channel, a copy
// of the context configuration the caller is free to adjust.
func (c *Channel) Config() (*tls.Config, error) {
	if c.Released() {
		return nil, gerrors.ErrChannelReleased
	}
	return c.ctx.Config()
}

// Bind hands the channel to a transport connection. Active channels
// wrap the connection as the client end, passive channels as the server end.
// No handshake happens here, it runs on the first read or write or on an
// explicit Handshake call.
func (c *Channel) Bind(conn net.Conn) (*tls.Conn, error) {
	config, err := c.Config()
	if err != nil {
		return nil, err
	}

	if c.Direction() == Passive {
		return tls.Server(conn, config), nil
	}

	// verification needs a name to check the acceptor certificate against
	if config.ServerName == "" && !config.InsecureSkipVerify {
		config.ServerName = hostOf(conn.RemoteAddr())
	}
	return tls.Client(conn, config), nil
}

func hostOf(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
