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

// TestHandler is an in-memory recording handler for tests. It captures every
// record it is given, in order, and can be told to fail on demand to drive
// error-isolation assertions:
//
//	spy := logkit.NewTestHandler()
//	logger := logkit.MustNew("test", logkit.WithHandlers(spy))
//	logger.Info("hello", logkit.F("k", "v"))
//	require.Equal(t, 1, spy.Count())
//
// All methods are safe for concurrent use.
type TestHandler struct {
	LevelThreshold
	mu      sync.Mutex
	records []Record
	failErr error
}

// NewTestHandler returns an empty spy accepting every level.
func NewTestHandler() *TestHandler {
	return &TestHandler{}
}

// AddInjector implements [Handler].
func (h *TestHandler) AddInjector(in Injector) Handler {
	h.AppendInjector(in)
	return h
}

// Handle records r, or returns the forced error when one is set.
func (h *TestHandler) Handle(r Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failErr != nil {
		return h.failErr
	}
	h.records = append(h.records, r)
	return nil
}

// FailWith makes every subsequent Handle call return err. Pass nil to
// restore normal recording.
func (h *TestHandler) FailWith(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failErr = err
}

// Records returns a copy of the captured records.
func (h *TestHandler) Records() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// Count returns the number of captured records.
func (h *TestHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

// CountAtLevel returns the number of captured records at exactly the given
// level.
func (h *TestHandler) CountAtLevel(level Level) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, r := range h.records {
		if r.Level() == level {
			n++
		}
	}
	return n
}

// Last returns the most recent record; ok is false when nothing was
// captured.
func (h *TestHandler) Last() (Record, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.records) == 0 {
		return Record{}, false
	}
	return h.records[len(h.records)-1], true
}

// HasMessage reports whether any captured record carries exactly this
// message.
func (h *TestHandler) HasMessage(message string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.records {
		if r.Message() == message {
			return true
		}
	}
	return false
}

// FieldValue returns the value of the named field from the most recent
// record carrying it, searching extra before context.
func (h *TestHandler) FieldValue(key string) (any, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.records) - 1; i >= 0; i-- {
		if v, ok := h.records[i].extra.Get(key); ok {
			return v, true
		}
		if v, ok := h.records[i].context.Get(key); ok {
			return v, true
		}
	}
	return nil, false
}

// Reset discards captured records and clears any forced error.
func (h *TestHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = nil
	h.failErr = nil
}
