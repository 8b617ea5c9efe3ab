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

// Package config holds the configuration a TLS manager builds its secure context from.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	gerrors "github.com/tochemey/tlsmgr/errors"
	"github.com/tochemey/tlsmgr/internal/validation"
	gtls "github.com/tochemey/tlsmgr/tls"
)

// DefaultCiphers is the cipher policy used when none is configured
const DefaultCiphers = "DEFAULT"

// Config represents the secure context configuration
type Config struct {
	// Role is the handshake role of every channel minted from the context.
	// The default value is initiator
	Role gtls.Role `yaml:"role" toml:"role"`
	// Protocol is the protocol version pinned by the context.
	// The default value is TLSv1.2
	Protocol gtls.Protocol `yaml:"protocol" toml:"protocol"`
	// CertFile is the PEM certificate, optionally followed by its chain
	CertFile string `yaml:"cert_file" toml:"cert_file"`
	// KeyFile is the PEM private key of the certificate. It is ignored
	// when no certificate is set
	KeyFile string `yaml:"key_file" toml:"key_file"`
	// CAFile holds the PEM certificates peers are verified against.
	// The system roots are used when it is not set
	CAFile string `yaml:"ca_file" toml:"ca_file"`
	// Ciphers is the cipher policy in OpenSSL syntax. The default value is DEFAULT
	Ciphers string `yaml:"ciphers" toml:"ciphers"`
	// VerifyPeer turns on peer certificate verification
	VerifyPeer bool `yaml:"verify_peer" toml:"verify_peer"`
	// ServerName is the name initiators expect in the acceptor certificate
	ServerName string `yaml:"server_name" toml:"server_name"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Role:     gtls.Initiator,
		Protocol: gtls.TLSv1_2,
		Ciphers:  DefaultCiphers,
	}
}

// New creates an instance of Config for the given role and protocol
func New(role gtls.Role, protocol gtls.Protocol, opts ...Option) *Config {
	config := Default()
	config.Role = role
	config.Protocol = protocol
	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

// LoadFile reads a configuration from a YAML (.yaml, .yml) or TOML (.toml) file.
// Keys missing from the file keep their default value.
func LoadFile(path string) (*Config, error) {
	config := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file=(%s): %w", path, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file=(%s): %w", path, err)
		}
	case ".toml":
		if _, err := toml.DecodeFile(path, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file=(%s): %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension: %s (expected .yaml, .yml or .toml)", ext)
	}
	return config, nil
}

// Settings returns the build settings of the configuration
func (c *Config) Settings() gtls.Settings {
	return gtls.Settings{
		CertificateFile: c.CertFile,
		KeyFile:         c.KeyFile,
		CAFile:          c.CAFile,
		CipherPolicy:    c.Ciphers,
		VerifyPeer:      c.VerifyPeer,
		ServerName:      c.ServerName,
	}
}

// Validate checks the configuration is well formed. The credential files and
// the cipher policy are checked when the context is built.
func (c *Config) Validate() error {
	chain := validation.New().
		AddAssertion(c.Role.Valid(), fmt.Sprintf("the [role] value=(%s) is invalid", c.Role)).
		AddAssertion(c.Protocol.Valid(), fmt.Sprintf("the [protocol] value=(%s) is invalid", c.Protocol))

	if c.ServerName != "" {
		chain.AddValidator(validation.NewPatternValidator("server_name", validation.HostnamePattern, c.ServerName))
	}

	if err := chain.Validate(); err != nil {
		return gerrors.NewErrInvalidConfig(err)
	}
	return nil
}

// CheckFiles checks that the configured credential files exist
func (c *Config) CheckFiles() error {
	err := validation.New().
		AddValidator(validation.NewFileValidator("cert_file", c.CertFile)).
		AddValidator(validation.NewFileValidator("key_file", c.KeyFile)).
		AddValidator(validation.NewFileValidator("ca_file", c.CAFile)).
		Validate()
	if err != nil {
		return gerrors.NewErrInvalidConfig(err)
	}
	return nil
}

// Files returns the credential files the configuration references
func (c *Config) Files() []string {
	files := make([]string, 0, 3)
	for _, file := range []string{c.CertFile, c.KeyFile, c.CAFile} {
		if file != "" {
			files = append(files, file)
		}
	}
	return files
}
