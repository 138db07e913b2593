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
	"fmt"
	"strings"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// codedError carries a numeric code for stringification.
type codedError struct {
	msg  string
	code int
}

func (e codedError) Error() string { return e.msg }
func (e codedError) Code() int     { return e.code }

// loudStringer panics inside String.
type loudStringer struct{}

func (loudStringer) String() string { panic("no text for you") }

// brokenMarshaler fails to serialize.
type brokenMarshaler struct{}

func (brokenMarshaler) MarshalJSON() ([]byte, error) {
	return nil, fmt.Errorf("refused")
}

// boxMarshaler serializes to a fixed JSON object.
type boxMarshaler struct{}

func (boxMarshaler) MarshalJSON() ([]byte, error) {
	return []byte(`{"w":3,"h":4}`), nil
}

func TestInterpolate(t *testing.T) {
	t.Parallel()

	f := NewNormalizingFormatter()

	tests := []struct {
		name          string
		message       string
		context       Context
		wantMessage   string
		wantRemaining []string
	}{
		{
			name:          "basic substitution",
			message:       "User {u} in",
			context:       Context{F("u", "bob")},
			wantMessage:   "User bob in",
			wantRemaining: nil,
		},
		{
			name:          "multiple placeholders",
			message:       "{user} from {ip}",
			context:       Context{F("user", "ada"), F("ip", "10.0.0.7")},
			wantMessage:   "ada from 10.0.0.7",
			wantRemaining: nil,
		},
		{
			name:          "unmatched placeholder stays literal",
			message:       "missing {gone}",
			context:       Context{F("kept", 1)},
			wantMessage:   "missing {gone}",
			wantRemaining: []string{"kept"},
		},
		{
			name:          "partial consumption",
			message:       "job {id} done",
			context:       Context{F("id", 7), F("duration_ms", 1500)},
			wantMessage:   "job 7 done",
			wantRemaining: []string{"duration_ms"},
		},
		{
			name:          "non-string values stringified",
			message:       "retry {n} ok {ok}",
			context:       Context{F("n", 3), F("ok", true)},
			wantMessage:   "retry 3 ok true",
			wantRemaining: nil,
		},
		{
			name:          "no placeholders",
			message:       "plain text",
			context:       Context{F("a", 1)},
			wantMessage:   "plain text",
			wantRemaining: []string{"a"},
		},
		{
			name:          "empty context",
			message:       "has {brace}",
			context:       nil,
			wantMessage:   "has {brace}",
			wantRemaining: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			message, remaining := f.Interpolate(tt.message, tt.context)
			assert.Equal(t, tt.wantMessage, message)
			if tt.wantRemaining == nil {
				assert.Empty(t, remaining)
			} else {
				assert.Equal(t, tt.wantRemaining, remaining.Keys())
			}
		})
	}
}

// Test that substituted text is never re-scanned for placeholders.
func TestInterpolate_SinglePass(t *testing.T) {
	t.Parallel()

	f := NewNormalizingFormatter()
	message, _ := f.Interpolate("{a} {b}", Context{F("a", "{b}"), F("b", "B")})
	assert.Equal(t, "{b} B", message, "text introduced by a substitution must stay literal")
}

// Test consumed-field removal through Format, on and off.
func TestFormat_ConsumedFields(t *testing.T) {
	t.Parallel()

	record := NewRecord(LevelInfo, "User {u} in").
		WithContext(Context{F("u", "bob"), F("ip", "10.0.0.7")})

	removing := NewNormalizingFormatter()
	got, err := removing.Format(record)
	require.NoError(t, err)
	assert.Equal(t, "User bob in", got.Message())
	assert.False(t, got.Context().Has("u"), "consumed field dropped")
	assert.True(t, got.Context().Has("ip"))

	keeping := NewNormalizingFormatter(WithConsumedFieldRemoval(false))
	got, err = keeping.Format(record)
	require.NoError(t, err)
	assert.Equal(t, "User bob in", got.Message())
	assert.True(t, got.Context().Has("u"), "consumed field kept when removal is off")

	// The input record is untouched either way.
	assert.Equal(t, "User {u} in", record.Message())
	assert.True(t, record.Context().Has("u"))
}

func TestStringify(t *testing.T) {
	t.Parallel()

	f := NewNormalizingFormatter()
	when := time.Date(2026, 8, 21, 10, 30, 0, 0, time.UTC)

	type point struct{ X, Y int }

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "nil", value: nil, want: "null"},
		{name: "true", value: true, want: "true"},
		{name: "false", value: false, want: "false"},
		{name: "int", value: 42, want: "42"},
		{name: "negative int", value: -7, want: "-7"},
		{name: "float", value: 3.5, want: "3.5"},
		{name: "string", value: "hello", want: "hello"},
		{name: "bytes", value: []byte("raw"), want: "raw"},
		{name: "time", value: when, want: "2026-08-21T10:30:00Z"},
		{name: "duration", value: 1500 * time.Millisecond, want: "1.5s"},
		{name: "channel", value: make(chan int), want: "[resource:chan int]"},
		{name: "func", value: func() {}, want: "[closure]"},
		{name: "slice", value: []int{1, 2, 3}, want: "[array:3]"},
		{name: "map", value: map[string]int{"a": 1, "b": 2}, want: "[array:2]"},
		{name: "struct", value: point{1, 2}, want: "[object:logkit.point]"},
		{name: "stringer", value: time.March, want: "March"},
		{name: "marshaler", value: boxMarshaler{}, want: `{"w":3,"h":4}`},
		{name: "typed nil pointer", value: (*point)(nil), want: "null"},
		{name: "nil map", value: map[string]int(nil), want: "null"},
		{name: "plain error", value: fmt.Errorf("boom"), want: "errors.errorString: boom"},
		{name: "complex", value: complex(1, 2), want: "[unknown]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, f.Stringify(tt.value))
		})
	}
}

// point is declared inside TestStringify; this one checks pointer rendering
// of named structs at package level.
type renderable struct{ N int }

func TestStringify_StructPointer(t *testing.T) {
	t.Parallel()

	f := NewNormalizingFormatter()
	assert.Equal(t, "[object:*logkit.renderable]", f.Stringify(&renderable{N: 1}))
}

func TestStringify_StringerPanic(t *testing.T) {
	t.Parallel()

	f := NewNormalizingFormatter()
	assert.Equal(t, unknownMarker, f.Stringify(loudStringer{}))
}

func TestStringify_MarshalerFailure(t *testing.T) {
	t.Parallel()

	f := NewNormalizingFormatter()
	assert.Equal(t, "{}", f.Stringify(brokenMarshaler{}))
}

func TestStringify_ErrorWithCode(t *testing.T) {
	t.Parallel()

	f := NewNormalizingFormatter()
	assert.Equal(t, "logkit.codedError(403): permission denied",
		f.Stringify(codedError{msg: "permission denied", code: 403}))

	assert.Equal(t, "logkit.codedError: quiet failure",
		f.Stringify(codedError{msg: "quiet failure"}),
		"zero code is omitted")
}

// Test that stack-capturing errors report their origin.
func TestStringify_ErrorWithStack(t *testing.T) {
	t.Parallel()

	f := NewNormalizingFormatter()
	out := f.Stringify(pkgerrors.New("kaboom"))

	assert.True(t, strings.HasPrefix(out, "errors.fundamental: kaboom in "), "got %q", out)
	assert.Contains(t, out, "formatter_test.go:")
	assert.False(t, strings.Contains(out, "\n"), "trace stays out of the summary by default")
}

func TestStringify_ErrorWithStackInMessage(t *testing.T) {
	t.Parallel()

	f := NewNormalizingFormatter(WithStackTraceInMessage(true))
	out := f.Stringify(pkgerrors.New("kaboom"))

	require.Contains(t, out, "\n")
	assert.Contains(t, out, "TestStringify_ErrorWithStackInMessage",
		"trace lines follow the summary")
}

// Test truncation produces exactly the configured length plus the marker.
func TestTruncate(t *testing.T) {
	t.Parallel()

	f := NewNormalizingFormatter(WithMaxStringLength(5))

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "under limit", input: "abc", want: "abc"},
		{name: "at limit", input: "abcde", want: "abcde"},
		{name: "over limit", input: "abcdefgh", want: "abcde..."},
		{name: "multibyte safe", input: "ééééééé", want: "ééééé..."},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := f.Truncate(tt.input)
			assert.Equal(t, tt.want, got)
			if tt.want != tt.input {
				assert.Len(t, []rune(got), 5+len(truncationMarker))
			}
		})
	}
}

func TestTruncate_Disabled(t *testing.T) {
	t.Parallel()

	f := NewNormalizingFormatter(WithMaxStringLength(0))
	long := strings.Repeat("x", 50000)
	assert.Equal(t, long, f.Truncate(long))
}

func TestTruncate_AppliesInStringify(t *testing.T) {
	t.Parallel()

	f := NewNormalizingFormatter(WithMaxStringLength(4))
	assert.Equal(t, "long...", f.Stringify("longer than four"))
}

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	f := NewNormalizingFormatter(WithBasePath("/srv/app"))

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "inside base", input: "/srv/app/internal/db.go", want: "internal/db.go"},
		{name: "base itself", input: "/srv/app", want: ""},
		{name: "outside base", input: "/usr/lib/go/src/x.go", want: "/usr/lib/go/src/x.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, f.normalizePath(tt.input))
		})
	}
}

func TestNormalizePath_Unset(t *testing.T) {
	t.Parallel()

	f := NewNormalizingFormatter()
	assert.Equal(t, "/srv/app/x.go", f.normalizePath("/srv/app/x.go"))
}
