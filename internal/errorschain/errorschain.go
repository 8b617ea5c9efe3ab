/*
 * MIT License
 *
 * Copyright (c) 2022-2024  Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package errorschain runs a sequence of steps and collects their errors.
package errorschain

import "go.uber.org/multierr"

// Chain collects errors from values and deferred steps.
// Steps run in the order they were added when Error is called.
type Chain struct {
	returnFirst bool
	steps       []func() error
}

// ChainOption configures a Chain
type ChainOption func(*Chain)

// New creates a Chain. By default every error is returned.
func New(opts ...ChainOption) *Chain {
	chain := &Chain{
		steps: make([]func() error, 0),
	}

	for _, opt := range opts {
		opt(chain)
	}

	return chain
}

// ReturnFirst stops the chain at the first error, later steps are not run
func ReturnFirst() ChainOption {
	return func(c *Chain) { c.returnFirst = true }
}

// ReturnAll runs every step and combines their errors
func ReturnAll() ChainOption {
	return func(c *Chain) { c.returnFirst = false }
}

// AddError adds an already computed error
func (c *Chain) AddError(err error) *Chain {
	c.steps = append(c.steps, func() error { return err })
	return c
}

// AddErrorFn adds a step run when Error is called
func (c *Chain) AddErrorFn(fn func() error) *Chain {
	c.steps = append(c.steps, fn)
	return c
}

// AddErrorFnIf adds a step only when condition holds
func (c *Chain) AddErrorFnIf(condition bool, fn func() error) *Chain {
	if condition {
		c.AddErrorFn(fn)
	}
	return c
}

// Error runs the steps and returns the resulting error
func (c *Chain) Error() error {
	var err error
	for _, step := range c.steps {
		stepErr := step()
		if stepErr == nil {
			continue
		}
		if c.returnFirst {
			return stepErr
		}
		err = multierr.Append(err, stepErr)
	}
	return err
}
