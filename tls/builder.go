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
	gerrors "github.com/tochemey/tlsmgr/errors"
	"github.com/tochemey/tlsmgr/log"
)

// Settings is the configuration a Builder applies onto a new context.
// An empty path leaves the corresponding slot unconfigured.
type Settings struct {
	CertificateFile string
	KeyFile         string
	CAFile          string
	CipherPolicy    string
	VerifyPeer      bool
	ServerName      string
}

// Builder allocates secure contexts and applies their configuration
// in a fixed order: credentials, cipher list, then verification.
type Builder struct {
	source Source
	logger log.Logger
}

// NewBuilder creates a Builder reading credentials from source
func NewBuilder(source Source, logger log.Logger) *Builder {
	if source == nil {
		source = OSSource
	}
	if logger == nil {
		logger = log.DiscardLogger
	}
	return &Builder{source: source, logger: logger}
}

// Build allocates a context from method and applies settings, stopping at the
// first failing step. When the failure happens after allocation the partially
// configured context is returned with the error, so the caller can free it.
func (b *Builder) Build(method *Method, ciphers *CipherTable, settings Settings) (*Context, error) {
	ctx, err := NewContext(method, ciphers)
	if err != nil {
		b.logger.Errorf("could not allocate secure context: %v", err)
		return nil, gerrors.NewBuildError(gerrors.StageAllocation, err)
	}

	if settings.CertificateFile != "" {
		if err := b.useCredentials(ctx, settings); err != nil {
			return ctx, err
		}
	} else if settings.KeyFile != "" {
		b.logger.Warnf("Key path %s ignored: no certificate configured", settings.KeyFile)
	}

	b.logger.Infof("Cipher list: %s", settings.CipherPolicy)
	if err := ctx.SetCipherList(settings.CipherPolicy); err != nil {
		b.logger.Errorf("Could not set cipher list: %s: %v", settings.CipherPolicy, err)
		return ctx, gerrors.NewBuildError(gerrors.StageCiphers, err)
	}

	if settings.CAFile != "" {
		b.logger.Infof("CA path: %s", settings.CAFile)
		if err := ctx.LoadVerifyLocations(b.source, settings.CAFile); err != nil {
			b.logger.Errorf("Could not use CA file %s: %v", settings.CAFile, err)
			return ctx, gerrors.NewBuildError(gerrors.StageVerify, err)
		}
	}

	ctx.SetVerify(VerifyModeFor(settings.VerifyPeer))
	ctx.SetServerName(settings.ServerName)
	return ctx, nil
}

func (b *Builder) useCredentials(ctx *Context, settings Settings) error {
	b.logger.Infof("Certificate path: %s", settings.CertificateFile)
	if err := ctx.UseCertificateFile(b.source, settings.CertificateFile); err != nil {
		b.logger.Errorf("Could not use certificate %s: %v", settings.CertificateFile, err)
		return gerrors.NewBuildError(gerrors.StageCertificate, err)
	}

	// a certificate without a key is a valid configuration
	if settings.KeyFile == "" {
		return nil
	}

	b.logger.Infof("Key path: %s", settings.KeyFile)
	if err := ctx.UsePrivateKeyFile(b.source, settings.KeyFile); err != nil {
		b.logger.Errorf("Could not use key %s: %v", settings.KeyFile, err)
		return gerrors.NewBuildError(gerrors.StageKey, err)
	}

	if err := ctx.CheckPrivateKey(); err != nil {
		b.logger.Errorf("Key %s does not match certificate %s", settings.KeyFile, settings.CertificateFile)
		return gerrors.NewBuildError(gerrors.StageKeyCheck, err)
	}
	return nil
}
