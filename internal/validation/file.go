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

package validation

import (
	"errors"
	"fmt"
	"os"
)

type fileValidator struct {
	field string
	path  string
}

var _ Validator = (*fileValidator)(nil)

// NewFileValidator returns a validator checking that path names a readable regular file.
// An empty path is accepted, the file is optional.
func NewFileValidator(field, path string) Validator {
	return &fileValidator{field: field, path: path}
}

func (v *fileValidator) Validate() error {
	if v.path == "" {
		return nil
	}

	info, err := os.Stat(v.path)
	if err != nil {
		return fmt.Errorf("the [%s] file=(%s) is not accessible: %w", v.field, v.path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("the [%s] file=(%s) is invalid: %w", v.field, v.path, errors.New("not a regular file"))
	}
	return nil
}
