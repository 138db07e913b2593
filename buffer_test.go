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
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// batchSpy records batch deliveries alongside the inherited per-record
// spying.
type batchSpy struct {
	TestHandler
	mu      sync.Mutex
	batches [][]Record
}

func (s *batchSpy) HandleBatch(records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, records)
	return nil
}

func (s *batchSpy) batchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func TestBufferHandler_AccumulatesUntilLimit(t *testing.T) {
	t.Parallel()

	spy := NewTestHandler()
	b := NewBufferHandler(spy, 3)

	require.NoError(t, b.Handle(NewRecord(LevelInfo, "one")))
	require.NoError(t, b.Handle(NewRecord(LevelInfo, "two")))
	assert.Zero(t, spy.Count(), "below the limit nothing is delivered")
	assert.Equal(t, 2, b.Len())

	require.NoError(t, b.Handle(NewRecord(LevelInfo, "three")))
	assert.Equal(t, 3, spy.Count(), "reaching the limit flushes")
	assert.Zero(t, b.Len())

	// Order is preserved through the buffer.
	records := spy.Records()
	assert.Equal(t, "one", records[0].Message())
	assert.Equal(t, "two", records[1].Message())
	assert.Equal(t, "three", records[2].Message())
}

func TestBufferHandler_DefaultLimit(t *testing.T) {
	t.Parallel()

	b := NewBufferHandler(NewTestHandler(), 0)
	for i := 0; i < DefaultBufferLimit-1; i++ {
		require.NoError(t, b.Handle(NewRecord(LevelInfo, "m")))
	}
	assert.Equal(t, DefaultBufferLimit-1, b.Len())
}

func TestBufferHandler_ManualFlush(t *testing.T) {
	t.Parallel()

	spy := NewTestHandler()
	b := NewBufferHandler(spy, 100)

	require.NoError(t, b.Handle(NewRecord(LevelInfo, "held")))
	require.NoError(t, b.Flush())
	assert.Equal(t, 1, spy.Count())

	// Flushing an empty buffer is a no-op.
	require.NoError(t, b.Flush())
	assert.Equal(t, 1, spy.Count())
}

// Test that flush prefers batch delivery when the sink supports it.
func TestBufferHandler_PrefersBatch(t *testing.T) {
	t.Parallel()

	spy := &batchSpy{}
	b := NewBufferHandler(spy, 100)

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Handle(NewRecord(LevelInfo, "m")))
	}
	require.NoError(t, b.Flush())

	assert.Equal(t, 1, spy.batchCount(), "one batch call for the whole buffer")
	assert.Len(t, spy.batches[0], 3)
	assert.Zero(t, spy.Count(), "per-record Handle is bypassed")
}

func TestBufferHandler_PerRecordFallback(t *testing.T) {
	t.Parallel()

	spy := NewTestHandler()
	b := NewBufferHandler(spy, 100)

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Handle(NewRecord(LevelInfo, "m")))
	}
	require.NoError(t, b.Flush())
	assert.Equal(t, 3, spy.Count())
}

// Test that the buffer clears even when delivery fails.
func TestBufferHandler_ClearsOnFailure(t *testing.T) {
	t.Parallel()

	spy := NewTestHandler()
	boom := errors.New("sink down")
	spy.FailWith(boom)
	b := NewBufferHandler(spy, 100)

	require.NoError(t, b.Handle(NewRecord(LevelInfo, "m")))
	err := b.Flush()
	assert.ErrorIs(t, err, boom, "flush propagates delivery failures")
	assert.Zero(t, b.Len(), "cleared despite the failure")

	// A later flush redelivers nothing.
	spy.FailWith(nil)
	require.NoError(t, b.Flush())
	assert.Zero(t, spy.Count())
}

func TestBufferHandler_Close(t *testing.T) {
	t.Parallel()

	spy := NewTestHandler()
	b := NewBufferHandler(spy, 100)

	require.NoError(t, b.Handle(NewRecord(LevelInfo, "held")))
	require.NoError(t, b.Close())
	assert.Equal(t, 1, spy.Count(), "close flushes")

	// Close is idempotent.
	require.NoError(t, b.Close())
	assert.Equal(t, 1, spy.Count())

	// Writes after close fail loudly instead of vanishing.
	err := b.Handle(NewRecord(LevelInfo, "late"))
	assert.ErrorIs(t, err, ErrBufferClosed)
	assert.Equal(t, 1, spy.Count())
}

// Test that the decorator forwards filtering and injector registration.
func TestBufferHandler_Transparency(t *testing.T) {
	t.Parallel()

	spy := NewTestHandler()
	spy.SetMinLevel(LevelError)
	b := NewBufferHandler(spy, 100)

	assert.False(t, b.ShouldHandle(NewRecord(LevelInfo, "m")))
	assert.True(t, b.ShouldHandle(NewRecord(LevelError, "m")))

	returned := b.AddInjector(func(r Record) Record { return r.WithExtra(F("k", 1)) })
	assert.Same(t, Handler(b), returned, "fluent chaining stays on the decorator")
	assert.Len(t, b.Injectors(), 1, "injectors live on the wrapped handler")
	assert.Len(t, spy.Injectors(), 1)
}

// Test the decorator inside a full pipeline.
func TestBufferHandler_ThroughLogger(t *testing.T) {
	t.Parallel()

	spy := NewTestHandler()
	b := NewBufferHandler(spy, 2)
	logger := MustNew("jobs", WithHandlers(b))

	logger.Info("first")
	assert.Zero(t, spy.Count())

	logger.Info("second")
	assert.Equal(t, 2, spy.Count(), "limit reached mid-pipeline flushes")

	logger.Info("third")
	require.NoError(t, logger.Close())
	assert.Equal(t, 3, spy.Count())
}
