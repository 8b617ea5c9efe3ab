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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedProtocol is returned when the requested protocol version is not
	// available in the linked cryptographic engine.
	ErrUnsupportedProtocol = errors.New("protocol is not supported by the cryptographic engine")

	// ErrContextAllocation is returned when the secure context cannot be allocated
	// from the resolved protocol method.
	ErrContextAllocation = errors.New("failed to allocate secure context")

	// ErrCertificateLoad is returned when the certificate file cannot be read or parsed.
	ErrCertificateLoad = errors.New("could not use certificate")

	// ErrKeyLoad is returned when the private key file cannot be read or is not
	// a PEM encoded private key.
	ErrKeyLoad = errors.New("could not use private key")

	// ErrKeyCertificateMismatch is returned when the private key does not belong to
	// the loaded certificate.
	ErrKeyCertificateMismatch = errors.New("private key does not match the certificate")

	// ErrCipherConfiguration is returned when the cipher policy is syntactically invalid
	// or no cipher suite matches it.
	ErrCipherConfiguration = errors.New("could not set cipher list")

	// ErrNotReady is returned when a channel is requested from a manager that has not
	// completed a successful build.
	ErrNotReady = errors.New("secure context is not ready")

	// ErrInvalidState is returned when an operation is not permitted in the manager's current state.
	ErrInvalidState = errors.New("invalid manager state")

	// ErrChannelReleased is returned when a channel is used or released after it has been released.
	ErrChannelReleased = errors.New("secure channel already released")

	// ErrForeignChannel is returned when a channel is handed back to a manager that did not mint it.
	ErrForeignChannel = errors.New("secure channel does not belong to this manager")

	// ErrInvalidChannel is returned when a nil channel is handed to the manager.
	ErrInvalidChannel = errors.New("invalid secure channel")

	// ErrChannelsActive is returned when a manager is torn down while channels minted from its
	// secure context are still held by callers.
	ErrChannelsActive = errors.New("secure channels are still active")

	// ErrContextFreed is returned when a secure context is used after it has been freed.
	ErrContextFreed = errors.New("secure context has been freed")

	// ErrEngineNotInitialized is returned when engine-wide resources are requested before
	// bootstrap or after cleanup.
	ErrEngineNotInitialized = errors.New("cryptographic engine is not initialized")

	// ErrLibraryNotAcquired is returned when a library reference is released more times than acquired.
	ErrLibraryNotAcquired = errors.New("cryptographic library reference is not held")

	// ErrInvalidConfig is returned when the manager configuration fails validation.
	ErrInvalidConfig = errors.New("invalid TLS configuration")
)

// NewErrUnsupportedProtocol formats an ErrUnsupportedProtocol with the given protocol and engine name.
func NewErrUnsupportedProtocol(protocol, engine string) error {
	return fmt.Errorf("protocol=(%s) engine=(%s): %w", protocol, engine, ErrUnsupportedProtocol)
}

// NewErrContextAllocation wraps a base error with ErrContextAllocation.
func NewErrContextAllocation(err error) error {
	return errors.Join(ErrContextAllocation, err)
}

// NewErrCertificateLoad formats an ErrCertificateLoad for the given certificate path.
func NewErrCertificateLoad(path string, err error) error {
	return errors.Join(fmt.Errorf("certificate=(%s) %w", path, ErrCertificateLoad), err)
}

// NewErrKeyLoad formats an ErrKeyLoad for the given key path.
func NewErrKeyLoad(path string, err error) error {
	return errors.Join(fmt.Errorf("key=(%s) %w", path, ErrKeyLoad), err)
}

// NewErrKeyCertificateMismatch formats an ErrKeyCertificateMismatch for the given pair of files.
func NewErrKeyCertificateMismatch(certPath, keyPath string) error {
	return fmt.Errorf("certificate=(%s) key=(%s) %w", certPath, keyPath, ErrKeyCertificateMismatch)
}

// NewErrCipherConfiguration formats an ErrCipherConfiguration for the given cipher list.
func NewErrCipherConfiguration(ciphers string, err error) error {
	return errors.Join(fmt.Errorf("ciphers=(%s) %w", ciphers, ErrCipherConfiguration), err)
}

// NewErrInvalidState formats an ErrInvalidState with the operation and the state it was attempted in.
func NewErrInvalidState(operation, state string) error {
	return fmt.Errorf("%s in state=(%s): %w", operation, state, ErrInvalidState)
}

// NewErrInvalidConfig wraps validation violations with ErrInvalidConfig.
func NewErrInvalidConfig(err error) error {
	return errors.Join(ErrInvalidConfig, err)
}

// Stage names a step of the secure context build sequence.
type Stage string

const (
	StageProtocol    Stage = "protocol"
	StageAllocation  Stage = "allocation"
	StageCertificate Stage = "certificate"
	StageKey         Stage = "key"
	StageKeyCheck    Stage = "key-check"
	StageCiphers     Stage = "ciphers"
	StageVerify      Stage = "verify"
)

// BuildError reports the build stage at which the secure context
// configuration stopped.
type BuildError struct {
	stage Stage
	err   error
}

// enforce compilation error
var _ error = (*BuildError)(nil)

// NewBuildError creates an instance of BuildError
func NewBuildError(stage Stage, err error) *BuildError {
	return &BuildError{stage: stage, err: err}
}

// Stage returns the build stage that failed
func (e *BuildError) Stage() Stage {
	return e.stage
}

// Error implements the standard error interface
func (e *BuildError) Error() string {
	return fmt.Sprintf("build failed at stage=(%s): %v", e.stage, e.err)
}

func (e *BuildError) Unwrap() error {
	return e.err
}
