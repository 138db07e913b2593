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

// DefaultBufferLimit is the capacity used when [NewBufferHandler] is given a
// non-positive limit.
const DefaultBufferLimit = 100

// BufferHandler decorates another handler with accumulate-then-flush
// delivery. Records pass the usual ShouldHandle and injector steps
// immediately, but delivery to the wrapped handler is deferred until the
// buffer fills, [BufferHandler.Flush] is called, or the handler is closed.
//
// On flush, a wrapped handler implementing [BatchHandler] receives all
// records in one HandleBatch call; otherwise records are delivered one by
// one in their original order. Either way the buffer is cleared before
// delivery starts, so a failing flush never redelivers.
//
// Apart from the deferred delivery, the decorator is transparent: filtering
// and injector registration are forwarded to the wrapped handler.
type BufferHandler struct {
	mu     sync.Mutex
	inner  Handler
	limit  int
	buf    []Record
	closed bool
}

// NewBufferHandler wraps inner with a buffer holding up to limit records;
// reaching the limit triggers an automatic flush. A non-positive limit means
// [DefaultBufferLimit].
func NewBufferHandler(inner Handler, limit int) *BufferHandler {
	if limit <= 0 {
		limit = DefaultBufferLimit
	}
	return &BufferHandler{
		inner: inner,
		limit: limit,
		buf:   make([]Record, 0, limit),
	}
}

// Handle appends the record to the buffer, flushing when the limit is
// reached. After Close it returns [ErrBufferClosed], which surfaces
// writes-after-teardown through the pipeline's error callback.
func (b *BufferHandler) Handle(r Record) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBufferClosed
	}
	b.buf = append(b.buf, r)
	if len(b.buf) < b.limit {
		b.mu.Unlock()
		return nil
	}
	records := b.take()
	b.mu.Unlock()
	return b.deliver(records)
}

// ShouldHandle defers to the wrapped handler, so the buffer never
// accumulates records the sink would reject anyway.
func (b *BufferHandler) ShouldHandle(r Record) bool {
	return b.inner.ShouldHandle(r)
}

// Injectors returns the wrapped handler's injector chain.
func (b *BufferHandler) Injectors() []Injector {
	return b.inner.Injectors()
}

// AddInjector registers the injector on the wrapped handler and returns the
// decorator, keeping the fluent form intact across the wrap.
func (b *BufferHandler) AddInjector(in Injector) Handler {
	b.inner.AddInjector(in)
	return b
}

// Flush delivers all buffered records. The buffer is cleared first and
// stays cleared even if delivery fails; the failure is the caller's to
// handle. Flushing an empty buffer is a no-op.
func (b *BufferHandler) Flush() error {
	b.mu.Lock()
	records := b.take()
	b.mu.Unlock()
	return b.deliver(records)
}

// Len reports the number of records currently buffered.
func (b *BufferHandler) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

// Close flushes outstanding records and marks the buffer closed. Only the
// first call flushes; subsequent calls return nil without touching the
// wrapped handler.
func (b *BufferHandler) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	records := b.take()
	b.mu.Unlock()
	return b.deliver(records)
}

// take detaches the current buffer contents. Callers must hold b.mu.
func (b *BufferHandler) take() []Record {
	if len(b.buf) == 0 {
		return nil
	}
	records := b.buf
	b.buf = make([]Record, 0, b.limit)
	return records
}

// deliver hands records to the wrapped handler, batched when supported,
// otherwise one by one in order, stopping at the first failure.
func (b *BufferHandler) deliver(records []Record) error {
	if len(records) == 0 {
		return nil
	}
	if batch, ok := b.inner.(BatchHandler); ok {
		return batch.HandleBatch(records)
	}
	for _, r := range records {
		if err := b.inner.Handle(r); err != nil {
			return err
		}
	}
	return nil
}
