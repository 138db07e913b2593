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

import "sync"

// Handler is a record sink. The pipeline consults ShouldHandle before
// delivery, runs the handler's injectors on a private copy of the record,
// and then calls Handle.
//
// Handle returns an error instead of panicking; the pipeline additionally
// recovers panics from misbehaving implementations and converts them to
// errors, so one handler can never take down its siblings.
type Handler interface {
	// Handle delivers one record to the sink.
	Handle(r Record) error

	// ShouldHandle reports whether the handler wants the record. It must be
	// cheap: the pipeline may call it once per record per handler.
	ShouldHandle(r Record) bool

	// Injectors returns the handler-scoped injector chain in registration
	// order.
	Injectors() []Injector

	// AddInjector appends a handler-scoped injector and returns the handler
	// for chaining.
	AddInjector(in Injector) Handler
}

// BatchHandler is an optional capability for handlers that can accept many
// records in one call. [BufferHandler] prefers it on flush; sinks with
// per-call overhead (network transports, syscall-bound writers) should
// implement it.
type BatchHandler interface {
	// HandleBatch delivers records in their original order. Implementations
	// decide whether a mid-batch failure aborts or skips.
	HandleBatch(records []Record) error
}

// Flusher is an optional capability for handlers that hold records back.
// [Logger.Close] walks its handlers and flushes every handler that
// implements it.
type Flusher interface {
	Flush() error
}

// LevelThreshold implements the filtering and injector bookkeeping shared by
// most handlers. Embed it and implement Handle plus a trivial AddInjector
// that returns the outer handler:
//
//	type fileHandler struct {
//	    logkit.LevelThreshold
//	    // ...
//	}
//
//	func (h *fileHandler) AddInjector(in logkit.Injector) logkit.Handler {
//	    h.AppendInjector(in)
//	    return h
//	}
//
// The zero value accepts every level; call [LevelThreshold.SetMinLevel] to
// filter. Level changes are safe under concurrent logging; injector
// registration is construction-time wiring and must not race with dispatch.
type LevelThreshold struct {
	mu        sync.RWMutex
	min       Level
	hasMin    bool
	injectors []Injector
}

// ShouldHandle reports whether the record's level meets the threshold.
func (t *LevelThreshold) ShouldHandle(r Record) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.hasMin {
		return true
	}
	return r.Level().AtLeast(t.min)
}

// MinLevel returns the current threshold. The second result is false when no
// threshold is set and every level passes.
func (t *LevelThreshold) MinLevel() (Level, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.min, t.hasMin
}

// SetMinLevel changes the threshold at runtime. Records already past
// ShouldHandle are unaffected.
func (t *LevelThreshold) SetMinLevel(min Level) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.min = min
	t.hasMin = true
}

// Injectors returns the registered injector chain in registration order.
func (t *LevelThreshold) Injectors() []Injector {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.injectors) == 0 {
		return nil
	}
	out := make([]Injector, len(t.injectors))
	copy(out, t.injectors)
	return out
}

// AppendInjector records a handler-scoped injector. Nil injectors are
// ignored; the pipeline-level constructors are where nil is rejected loudly.
func (t *LevelThreshold) AppendInjector(in Injector) {
	if in == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.injectors = append(t.injectors, in)
}

// NopHandler discards everything. It reports false from ShouldHandle so the
// pipeline skips injector work entirely; use it to keep a logger valid while
// silencing it.
type NopHandler struct{}

// NewNopHandler returns the discarding handler.
func NewNopHandler() *NopHandler {
	return &NopHandler{}
}

// Handle implements [Handler].
func (h *NopHandler) Handle(Record) error { return nil }

// ShouldHandle implements [Handler]; it is always false.
func (h *NopHandler) ShouldHandle(Record) bool { return false }

// Injectors implements [Handler].
func (h *NopHandler) Injectors() []Injector { return nil }

// AddInjector implements [Handler]; the injector is discarded along with
// everything else.
func (h *NopHandler) AddInjector(Injector) Handler { return h }
