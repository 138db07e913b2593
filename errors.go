// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logkit

import "errors"

// Error types for better error handling and testing.
//
// Design rationale:
//   - Sentinel errors (package-level vars) enable [errors.Is] checks
//   - Descriptive names make error handling self-documenting
//   - Construction-time errors are programmer errors and always propagate;
//     runtime handler/injector failures never surface as returned errors,
//     they are routed to the pipeline's error callback instead
//
// Usage pattern:
//
//	if _, err := logkit.New("api"); err != nil {
//	    if errors.Is(err, logkit.ErrNoHandlers) {
//	        // Pipeline was built without a sink
//	    }
//	}
var (
	// ErrUnknownLevel indicates a level name or value outside the closed
	// severity set. Returned by [ParseLevel] and by [Logger.Log] when given
	// a Level that is not one of the eight defined constants.
	ErrUnknownLevel = errors.New("unknown log level")

	// ErrNoHandlers indicates a pipeline was constructed without any handler.
	// A logger with nowhere to deliver records is a configuration mistake,
	// not a valid quiet mode; use [NewNopHandler] for intentional discarding.
	ErrNoHandlers = errors.New("at least one handler must be provided")

	// ErrInvalidHandler indicates a nil handler was supplied to [WithHandlers].
	ErrInvalidHandler = errors.New("invalid handler")

	// ErrInvalidInjector indicates a nil injector was supplied, either to
	// [WithInjectors] or to a handler's AddInjector.
	ErrInvalidInjector = errors.New("invalid injector")

	// ErrBufferClosed is returned by [BufferHandler.Handle] after the buffer
	// has been closed. The failure is routed like any other handler failure,
	// which makes writes-after-teardown visible instead of silently dropped.
	ErrBufferClosed = errors.New("buffer handler is closed")
)
