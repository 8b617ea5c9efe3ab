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

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapLevels(t *testing.T) {
	testCases := []struct {
		name  string
		level Level
		log   func(Logger)
		want  string
	}{
		{name: "debug", level: DebugLevel, log: func(l Logger) { l.Debugf("cipher list: %s", "HIGH") }, want: "cipher list: HIGH"},
		{name: "info", level: InfoLevel, log: func(l Logger) { l.Info("certificate path: server.pem") }, want: "certificate path: server.pem"},
		{name: "warn", level: WarningLevel, log: func(l Logger) { l.Warnf("key %s ignored", "k.pem") }, want: "key k.pem ignored"},
		{name: "error", level: ErrorLevel, log: func(l Logger) { l.Error("could not use key") }, want: "could not use key"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buffer := new(bytes.Buffer)
			logger := NewZap(tc.level, buffer)
			require.Equal(t, tc.level, logger.LogLevel())

			tc.log(logger)

			entry := decodeEntry(t, buffer.Bytes())
			assert.Equal(t, tc.want, entry["msg"])
			assert.Equal(t, tc.level.String(), entry["level"])
		})
	}
}

func TestZapFiltersBelowLevel(t *testing.T) {
	buffer := new(bytes.Buffer)
	logger := NewZap(ErrorLevel, buffer)

	logger.Info("hidden")
	logger.Debug("hidden")
	require.Zero(t, buffer.Len())
	require.False(t, logger.Enabled(InfoLevel))
	require.True(t, logger.Enabled(ErrorLevel))
}

func TestZapWith(t *testing.T) {
	t.Run("adds structured fields", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.With("role", "acceptor", "verify", true, "cause", errors.New("boom")).Info("built")

		entry := decodeEntry(t, buffer.Bytes())
		assert.Equal(t, "acceptor", entry["role"])
		assert.Equal(t, true, entry["verify"])
		assert.Equal(t, "boom", entry["cause"])
	})

	t.Run("returns the same logger without fields", func(t *testing.T) {
		logger := NewZap(InfoLevel, new(bytes.Buffer))
		assert.Same(t, logger, logger.With())
	})

	t.Run("records orphan value under underscore", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.With("a", 1, "orphan").Info("msg")

		entry := decodeEntry(t, buffer.Bytes())
		assert.Contains(t, entry, "a")
		assert.Equal(t, "orphan", entry["_"])
	})

	t.Run("skips non-string keys", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.With(42, "ignored", "k", "v").Info("msg")

		entry := decodeEntry(t, buffer.Bytes())
		assert.Equal(t, "v", entry["k"])
		assert.NotContains(t, entry, "42")
	})
}

func TestZapPanic(t *testing.T) {
	logger := NewZap(InfoLevel, new(bytes.Buffer))
	assert.Panics(t, func() { logger.Panicf("invalid %s", "state") })
}

func TestZapOutputsAndFlush(t *testing.T) {
	file, err := os.Create(filepath.Join(t.TempDir(), "tlsmgr.log"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })

	buffer := new(bytes.Buffer)
	logger := NewZap(InfoLevel, buffer, file, os.Stdout)
	require.Len(t, logger.LogOutput(), 3)

	logger.Info("to file")
	require.NoError(t, logger.Flush())

	content, err := os.ReadFile(file.Name())
	require.NoError(t, err)
	assert.Contains(t, string(content), "to file")
	require.NotNil(t, logger.StdLogger())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarningLevel, ParseLevel("warning"))
	assert.Equal(t, ErrorLevel, ParseLevel("error"))
	assert.Equal(t, InfoLevel, ParseLevel("whatever"))
	assert.Equal(t, "invalid", InvalidLevel.String())
}

func decodeEntry(t *testing.T, out []byte) map[string]any {
	t.Helper()
	line := bytes.TrimSpace(bytes.Split(bytes.TrimSpace(out), []byte("\n"))[0])
	entry := make(map[string]any)
	require.NoError(t, json.Unmarshal(line, &entry))
	return entry
}
