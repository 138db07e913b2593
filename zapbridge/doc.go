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

// Package zapbridge delivers logkit records to a zap logger.
//
// The bridge lets a logkit pipeline feed an existing zap setup (encoders,
// sampling, sinks) without re-plumbing either side:
//
//	bridge, err := zapbridge.New(zapLogger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	logger := logkit.MustNew("api", logkit.WithHandlers(bridge))
//
// Record timestamps carry over unchanged, the channel travels as a "channel"
// field, and structured context becomes zap fields.
//
// # Level Mapping
//
// logkit's eight severities collapse onto zap's four release levels: debug
// stays debug, info and notice map to info, warning to warn, and everything
// from error upward to error. The bridge never emits at DPanic, Panic or
// Fatal, whose side effects belong to the application, not to a log
// forwarder. Where the mapping loses the original name (notice, critical,
// alert, emergency) it is preserved in a "severity" field.
package zapbridge
