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
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// OutcomeSuccess marks a build that left the manager ready
	OutcomeSuccess = "success"
	// OutcomeFailure marks a build that left the manager failed
	OutcomeFailure = "failure"
	// OutcomeUnsupported marks a build rejected by the engine capability query
	OutcomeUnsupported = "unsupported"
)

// ManagerMetric defines the TLS manager instrumentation
type ManagerMetric struct {
	// Specifies the total number of builds, by outcome
	buildsCount metric.Int64Counter
	// Specifies the total number of channels minted
	mintedCount metric.Int64Counter
	// Specifies the number of channels not yet released
	activeChannels metric.Int64UpDownCounter
}

// NewManagerMetric creates an instance of ManagerMetric
func NewManagerMetric(meter metric.Meter) (*ManagerMetric, error) {
	managerMetric := new(ManagerMetric)
	var err error

	if managerMetric.buildsCount, err = meter.Int64Counter(
		"tlsmgr.builds.count",
		metric.WithDescription("Total number of secure context builds"),
	); err != nil {
		return nil, fmt.Errorf("failed to create buildsCount instrument, %w", err)
	}

	if managerMetric.mintedCount, err = meter.Int64Counter(
		"tlsmgr.channels.minted.count",
		metric.WithDescription("Total number of secure channels minted"),
	); err != nil {
		return nil, fmt.Errorf("failed to create mintedCount instrument, %w", err)
	}

	if managerMetric.activeChannels, err = meter.Int64UpDownCounter(
		"tlsmgr.channels.active",
		metric.WithDescription("Number of secure channels not yet released"),
	); err != nil {
		return nil, fmt.Errorf("failed to create activeChannels instrument, %w", err)
	}

	return managerMetric, nil
}

// BuildsCount returns the builds counter
func (x *ManagerMetric) BuildsCount() metric.Int64Counter {
	return x.buildsCount
}

// MintedCount returns the minted channels counter
func (x *ManagerMetric) MintedCount() metric.Int64Counter {
	return x.mintedCount
}

// ActiveChannels returns the active channels gauge
func (x *ManagerMetric) ActiveChannels() metric.Int64UpDownCounter {
	return x.activeChannels
}

// RecordBuild records a build outcome
func (x *ManagerMetric) RecordBuild(ctx context.Context, outcome, protocol, role string) {
	x.buildsCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("protocol", protocol),
		attribute.String("role", role),
	))
}

// RecordMinted records a newly minted channel
func (x *ManagerMetric) RecordMinted(ctx context.Context, role string) {
	attrs := metric.WithAttributes(attribute.String("role", role))
	x.mintedCount.Add(ctx, 1, attrs)
	x.activeChannels.Add(ctx, 1, attrs)
}

// RecordReleased records a released channel
func (x *ManagerMetric) RecordReleased(ctx context.Context, role string) {
	x.activeChannels.Add(ctx, -1, metric.WithAttributes(attribute.String("role", role)))
}
