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
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Formatter rewrites a record into its final shape before a sink serializes
// it. Formatters follow the same immutability contract as the rest of the
// pipeline: they return a new record and never modify the input.
type Formatter interface {
	Format(r Record) (Record, error)
}

// Defaults for [NormalizingFormatter].
const (
	// DefaultMaxDepth bounds structural recursion when normalizing nested
	// values.
	DefaultMaxDepth = 10

	// DefaultMaxStringLength bounds the character length of stringified
	// values.
	DefaultMaxStringLength = 10000
)

// Placeholder values substituted for data that cannot be carried through
// normalization.
const (
	maxDepthMarker       = "[...max depth reached...]"
	closureMarker        = "[closure]"
	unknownMarker        = "[unknown]"
	unserializableMarker = "[unserializable]"
	truncationMarker     = "..."
)

// NormalizingFormatter implements message placeholder interpolation and
// recursive value normalization. Its job is to guarantee that whatever a
// caller attached to a record, the version a sink sees is bounded in depth
// and length and built only from JSON-safe shapes: nil, bool, int64,
// float64, string, []any and [Context].
//
// The zero value is not ready to use; construct with
// [NewNormalizingFormatter].
type NormalizingFormatter struct {
	maxDepth         int
	maxStringLength  int
	basePath         string
	stackInContext   bool
	stackInMessage   bool
	removeConsumed   bool
	expandMarshalers bool
}

// FormatterOption configures a [NormalizingFormatter].
type FormatterOption func(*NormalizingFormatter)

// WithMaxDepth sets how many structural levels below the record context are
// preserved before the depth marker replaces deeper values. Zero disables
// the bound; self-referential values will then recurse until the stack
// overflows, so only disable it for data you control.
func WithMaxDepth(depth int) FormatterOption {
	return func(f *NormalizingFormatter) {
		f.maxDepth = depth
	}
}

// WithMaxStringLength sets the character count beyond which stringified
// values are cut and suffixed with "...". Zero disables truncation.
func WithMaxStringLength(length int) FormatterOption {
	return func(f *NormalizingFormatter) {
		f.maxStringLength = length
	}
}

// WithBasePath registers a directory prefix to strip from error file paths,
// keeping build-machine layouts out of emitted records.
func WithBasePath(path string) FormatterOption {
	return func(f *NormalizingFormatter) {
		f.basePath = path
	}
}

// WithStackTraceInContext controls whether normalized errors carry a "trace"
// member. Enabled by default.
func WithStackTraceInContext(enabled bool) FormatterOption {
	return func(f *NormalizingFormatter) {
		f.stackInContext = enabled
	}
}

// WithStackTraceInMessage controls whether stringified errors append their
// stack trace after the one-line summary. Disabled by default.
func WithStackTraceInMessage(enabled bool) FormatterOption {
	return func(f *NormalizingFormatter) {
		f.stackInMessage = enabled
	}
}

// WithConsumedFieldRemoval controls whether fields consumed by placeholder
// interpolation are dropped from the context. Enabled by default; disable it
// to keep interpolated values available to structured sinks as well.
func WithConsumedFieldRemoval(enabled bool) FormatterOption {
	return func(f *NormalizingFormatter) {
		f.removeConsumed = enabled
	}
}

// WithMarshalerExpansion controls how values implementing [json.Marshaler]
// are normalized. Disabled (the default), such values pass through untouched
// on the assumption that the sink's encoder will honor the interface.
// Enabled, the formatter round-trips them through their JSON form and
// normalizes the result, which applies depth and length bounds to their
// expansion too.
func WithMarshalerExpansion(enabled bool) FormatterOption {
	return func(f *NormalizingFormatter) {
		f.expandMarshalers = enabled
	}
}

// NewNormalizingFormatter constructs a formatter with the default bounds:
// depth 10, string length 10000, stack traces in context but not in
// messages, consumed fields removed, marshaler values passed through.
func NewNormalizingFormatter(opts ...FormatterOption) *NormalizingFormatter {
	f := &NormalizingFormatter{
		maxDepth:        DefaultMaxDepth,
		maxStringLength: DefaultMaxStringLength,
		stackInContext:  true,
		removeConsumed:  true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Format interpolates {key} placeholders in the record's message from its
// context, then normalizes the remaining context values. The returned record
// carries the rewritten message and the bounded, serializable context.
func (f *NormalizingFormatter) Format(r Record) (Record, error) {
	message, remaining := f.Interpolate(r.Message(), r.Context())
	kept := remaining
	if !f.removeConsumed {
		kept = r.Context()
	}
	normalized := make(Context, 0, len(kept))
	for _, fd := range kept {
		normalized = append(normalized, F(fd.Key, f.normalize(fd.Value, 1)))
	}
	return r.WithMessageAndContext(message, normalized), nil
}

// Interpolate substitutes {key} placeholders in message with stringified
// context values and returns the rewritten message together with the fields
// whose placeholder did not occur. Substitution is a single pass: text
// introduced by one replacement is never re-scanned, so values containing
// brace sequences cannot trigger cascading substitution.
func (f *NormalizingFormatter) Interpolate(message string, c Context) (string, Context) {
	if len(c) == 0 || !strings.Contains(message, "{") {
		return message, c.Clone()
	}
	var pairs []string
	remaining := make(Context, 0, len(c))
	for _, fd := range c {
		placeholder := "{" + fd.Key + "}"
		if strings.Contains(message, placeholder) {
			pairs = append(pairs, placeholder, f.Stringify(fd.Value))
		} else {
			remaining = append(remaining, fd)
		}
	}
	if len(pairs) == 0 {
		return message, remaining
	}
	return strings.NewReplacer(pairs...).Replace(message), remaining
}

// Stringify reduces an arbitrary value to bounded text. The classification
// order is fixed: nil, bool, numeric and string scalars, resource-like
// values, time values, errors, JSON marshalers, stringers, closures, other
// composites. Whatever the input, Stringify returns printable text and never
// panics.
func (f *NormalizingFormatter) Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		if x {
			return "true"
		}
		return "false"
	case string:
		return f.Truncate(x)
	case []byte:
		return f.Truncate(string(x))
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return f.Truncate(cast.ToString(x))
	}
	if isNilValue(v) {
		return "null"
	}
	if k, ok := kindOf(v); ok && k == kindResource {
		return fmt.Sprintf("[resource:%T]", v)
	}
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339)
	case time.Duration:
		return x.String()
	case error:
		return f.stringifyError(x)
	case json.Marshaler:
		data, err := safeMarshal(x)
		if err != nil {
			return "{}"
		}
		return f.Truncate(string(data))
	case fmt.Stringer:
		return f.Truncate(stringerText(x))
	}
	if k, ok := kindOf(v); ok {
		switch k {
		case kindClosure:
			return closureMarker
		case kindSequence:
			return fmt.Sprintf("[array:%d]", sequenceLen(v))
		case kindObject:
			return fmt.Sprintf("[object:%T]", v)
		}
	}
	return unknownMarker
}

// Truncate bounds s to the configured maximum character count, appending the
// "..." marker when a cut was made. Counting is rune-based, so multi-byte
// text is never split mid-character.
func (f *NormalizingFormatter) Truncate(s string) string {
	if f.maxStringLength <= 0 || len(s) <= f.maxStringLength {
		return s
	}
	runes := []rune(s)
	if len(runes) <= f.maxStringLength {
		return s
	}
	return string(runes[:f.maxStringLength]) + truncationMarker
}

// normalizePath strips the configured base path prefix, plus any leading
// separator left behind, from a file path. Paths outside the base pass
// through unchanged.
func (f *NormalizingFormatter) normalizePath(path string) string {
	if f.basePath == "" || !strings.HasPrefix(path, f.basePath) {
		return path
	}
	return strings.TrimLeft(strings.TrimPrefix(path, f.basePath), `/\`)
}

// stringerText calls String; a panicking implementation degrades to the
// unknown marker instead of taking down the pipeline.
func stringerText(s fmt.Stringer) (out string) {
	defer func() {
		if recover() != nil {
			out = unknownMarker
		}
	}()
	return s.String()
}
