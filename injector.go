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

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Injector enriches a record before it reaches handlers. Injectors are pure
// with respect to the pipeline: they receive a record and return a record,
// typically via [Record.WithExtra]. Returning the input unchanged is valid.
//
// Injectors registered on the pipeline run once per record; injectors
// registered on a handler run on that handler's private view of the record,
// so per-handler enrichment never leaks to sibling handlers.
type Injector func(Record) Record

// Field keys used by the stock injectors.
const (
	fieldHost     = "host"
	fieldPID      = "pid"
	fieldRecordID = "record_id"
	fieldCaller   = "caller"
	fieldTraceID  = "trace_id"
	fieldSpanID   = "span_id"
)

// HostInjector returns an injector that adds the machine's host name under
// "host". The name is resolved once at construction; if resolution fails the
// injector is a no-op.
func HostInjector() Injector {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return func(r Record) Record { return r }
	}
	return func(r Record) Record {
		return r.WithExtra(F(fieldHost, host))
	}
}

// PIDInjector returns an injector that adds the process ID under "pid".
func PIDInjector() Injector {
	pid := os.Getpid()
	return func(r Record) Record {
		return r.WithExtra(F(fieldPID, pid))
	}
}

// UniqueIDInjector returns an injector that tags every record with a fresh
// UUID under "record_id", making individual records addressable in
// aggregated output.
func UniqueIDInjector() Injector {
	return func(r Record) Record {
		return r.WithExtra(F(fieldRecordID, uuid.NewString()))
	}
}

// CallerInjector returns an injector that adds the file:line of the log call
// site under "caller". The skip count is the number of stack frames between
// the injector and the user's call; callers going through [Logger.Log] or
// the level convenience methods should pass [CallerSkip].
func CallerInjector(skip int) Injector {
	return func(r Record) Record {
		_, file, line, ok := runtime.Caller(skip)
		if !ok {
			return r
		}
		return r.WithExtra(F(fieldCaller, fmt.Sprintf("%s:%d", file, line)))
	}
}

// CallerSkip is the frame count from an injector invocation back to the
// caller of a [Logger] level method. Pass it to [CallerInjector] when the
// injector is registered on the pipeline.
const CallerSkip = 5

// TraceInjector returns an injector that copies the active OpenTelemetry
// trace and span IDs from ctx into the record under "trace_id" and
// "span_id". Records logged outside a sampled span pass through unchanged.
//
// The context is captured at registration, which suits per-request loggers;
// long-lived loggers should register a fresh TraceInjector per request, or
// attach it to a handler serving that request.
func TraceInjector(ctx context.Context) Injector {
	return func(r Record) Record {
		span := trace.SpanContextFromContext(ctx)
		if !span.IsValid() {
			return r
		}
		return r.WithExtra(
			F(fieldTraceID, span.TraceID().String()),
			F(fieldSpanID, span.SpanID().String()),
		)
	}
}
