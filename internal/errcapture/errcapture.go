// Copyright 2014 The Prometheus Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errcapture folds errors of deferred cleanup calls into the error
// returned by the surrounding function.
package errcapture

import (
	"errors"
	"fmt"
	"net"
	"os"

	"go.uber.org/multierr"
)

type doFunc func() error

// Do runs doer and appends its error, annotated with format and a, to *err.
func Do(err *error, doer doFunc, format string, a ...any) {
	derr := doer()
	if err == nil || derr == nil {
		return
	}

	// Closing twice is a common case for files and listeners and not worth
	// reporting.
	if errors.Is(derr, os.ErrClosed) || errors.Is(derr, net.ErrClosed) {
		return
	}

	*err = multierr.Append(*err, fmt.Errorf(format+": %w", append(a, derr)...))
}
