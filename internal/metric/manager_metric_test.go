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

package metric

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestManagerMetric(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := New(WithMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))))

	managerMetric, err := NewManagerMetric(provider.Meter())
	require.NoError(t, err)
	require.NotNil(t, managerMetric.BuildsCount())
	require.NotNil(t, managerMetric.MintedCount())
	require.NotNil(t, managerMetric.ActiveChannels())

	managerMetric.RecordBuild(ctx, OutcomeSuccess, "TLSv1.2", "acceptor")
	managerMetric.RecordBuild(ctx, OutcomeUnsupported, "SSLv3", "initiator")
	managerMetric.RecordMinted(ctx, "acceptor")
	managerMetric.RecordMinted(ctx, "acceptor")
	managerMetric.RecordReleased(ctx, "acceptor")

	var data metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &data))

	assert.EqualValues(t, 2, sumOf(t, data, "tlsmgr.builds.count"))
	assert.EqualValues(t, 2, sumOf(t, data, "tlsmgr.channels.minted.count"))
	assert.EqualValues(t, 1, sumOf(t, data, "tlsmgr.channels.active"))
}

func TestManagerMetricInstrumentFailure(t *testing.T) {
	instruments := []string{"tlsmgr.builds.count", "tlsmgr.channels.minted.count", "tlsmgr.channels.active"}
	for _, instrument := range instruments {
		t.Run(instrument, func(t *testing.T) {
			managerMetric, err := NewManagerMetric(&failingMeter{failOn: instrument})
			require.Error(t, err)
			assert.Nil(t, managerMetric)
		})
	}
}

func sumOf(t *testing.T, data metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, scope := range data.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			var total int64
			for _, point := range sum.DataPoints {
				total += point.Value
			}
			return total
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

type failingMeter struct {
	noop.Meter
	failOn string
}

func (m *failingMeter) Int64Counter(name string, opts ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	if name == m.failOn {
		return nil, errors.New("instrument refused")
	}
	return m.Meter.Int64Counter(name, opts...)
}

func (m *failingMeter) Int64UpDownCounter(name string, opts ...metric.Int64UpDownCounterOption) (metric.Int64UpDownCounter, error) {
	if name == m.failOn {
		return nil, errors.New("instrument refused")
	}
	return m.Meter.Int64UpDownCounter(name, opts...)
}
