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

// Package logkit provides a channel-oriented structured logging pipeline
// with severity levels, immutable records, pluggable handlers and bounded
// normalization of arbitrary context data.
//
// # Basic Usage
//
// Create a logger with at least one handler, then log through the level
// methods:
//
//	logger, err := logkit.New("api",
//	    logkit.WithHandlers(logkit.NewWriterHandler(os.Stdout)),
//	)
//	if err != nil {
//	    // only construction can fail: no handlers, nil handler, bad zone
//	}
//	defer logger.Close()
//
//	logger.Info("user {name} logged in",
//	    logkit.F("name", "ada"),
//	    logkit.F("attempt", 3),
//	)
//
// Messages may contain {key} placeholders; the normalizing formatter
// substitutes them from context fields and drops the consumed fields from
// structured output.
//
// # Records and Immutability
//
// A [Record] is a value: level, message, ordered context, timestamp, channel
// and an extra set for enrichment. Records never mutate; every derivation
// ([Record.WithMessage], [Record.WithExtra], ...) returns a copy. Handlers
// and injectors can therefore share records freely across goroutines.
//
// # Handlers
//
// A [Handler] decides whether it wants a record (ShouldHandle), can carry
// its own injector chain, and delivers records (Handle). The package ships
// [WriterHandler] for io.Writer sinks with JSON, text and console encodings,
// [SlogHandler] bridging into log/slog, [BufferHandler] for
// accumulate-then-flush delivery, [NopHandler] for discarding, and
// [TestHandler] for assertions. Custom handlers usually embed
// [LevelThreshold] for filtering and injector bookkeeping.
//
// # Injectors
//
// An [Injector] enriches a record on its way through the pipeline:
//
//	logger, _ := logkit.New("worker",
//	    logkit.WithHandlers(h),
//	    logkit.WithInjectors(logkit.HostInjector(), logkit.PIDInjector()),
//	)
//
// Pipeline injectors run once per record. Handler injectors run per handler
// on a private view of the record, so enrichment for one sink never leaks
// into another.
//
// # Failure Isolation
//
// Logging never fails the caller: [Logger.Log] only rejects levels outside
// the defined set, and the level methods cannot fail at all. Errors and
// panics from handlers, predicates and injectors are contained per handler
// and reported to the callback installed with [WithErrorHandler] or
// [Logger.SetErrorHandler]. A crashing handler costs its own delivery,
// nothing else.
//
// # Normalization
//
// [NormalizingFormatter] makes arbitrary context safe to serialize:
// recursive structures are bounded in depth, strings in length, times become
// RFC 3339 text, errors become structured maps with class, message, an
// optional stack trace and the unwrapped cause chain. Handlers own their
// formatter, so different sinks can normalize differently.
//
// # Subpackages
//
// The config subpackage builds pipelines from declarative YAML, JSON or
// TOML descriptions with a registry for custom handler and injector types.
// The zapbridge subpackage delivers records through an existing
// go.uber.org/zap logger.
package logkit
