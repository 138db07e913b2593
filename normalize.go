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
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
)

// valueKind classifies values the type switch cannot name directly.
type valueKind int

const (
	kindResource valueKind = iota // channels, unsafe pointers
	kindClosure                   // funcs
	kindSequence                  // slices, arrays, maps
	kindObject                    // structs
)

// kindOf classifies a non-nil value by its underlying kind, looking through
// pointers. The second result is false for kinds that need no special
// treatment.
func kindOf(v any) (valueKind, bool) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return 0, false
	}
	switch t.Kind() {
	case reflect.Chan, reflect.UnsafePointer:
		return kindResource, true
	case reflect.Func:
		return kindClosure, true
	case reflect.Slice, reflect.Array, reflect.Map:
		return kindSequence, true
	case reflect.Struct:
		return kindObject, true
	}
	return 0, false
}

// sequenceLen returns the element count of a slice, array or map, looking
// through pointers.
func sequenceLen(v any) int {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len()
	}
	return 0
}

// isNilValue reports whether v is a typed nil hiding inside a non-nil
// interface. Calling methods on such values panics, so they are resolved to
// null before any interface probe runs.
func isNilValue(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan,
		reflect.Func, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

// valueInterface extracts a reflect value as any, tolerating values that
// cannot be interfaced.
func valueInterface(rv reflect.Value) any {
	if !rv.IsValid() || !rv.CanInterface() {
		return nil
	}
	return rv.Interface()
}

// Normalize reduces an arbitrary value to a bounded, serialization-safe
// shape built from nil, bool, int64, float64, string, []any and [Context].
// Nested structures are ordered deterministically (maps by key) and cut off
// at the configured depth with the depth marker. The record context counts
// as level zero, so a context value is itself at level one.
func (f *NormalizingFormatter) Normalize(v any) any {
	return f.normalize(v, 1)
}

func (f *NormalizingFormatter) normalize(v any, depth int) any {
	if f.maxDepth > 0 && depth > f.maxDepth {
		return maxDepthMarker
	}

	switch x := v.(type) {
	case nil:
		return nil
	case bool:
		return x
	case string:
		return f.Truncate(x)
	case []byte:
		return f.Truncate(string(x))
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return uint64ToNumber(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return uint64ToNumber(x)
	case float32:
		return float64(x)
	case float64:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case time.Duration:
		return x.String()
	}

	if isNilValue(v) {
		return nil
	}
	if k, ok := kindOf(v); ok && k == kindResource {
		return fmt.Sprintf("[resource:%T]", v)
	}
	if err, ok := v.(error); ok {
		return f.normalizeError(err, depth)
	}
	if m, ok := v.(json.Marshaler); ok {
		return f.normalizeMarshaler(m, depth)
	}
	if s, ok := v.(fmt.Stringer); ok {
		return f.Truncate(stringerText(s))
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return uint64ToNumber(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return f.Truncate(rv.String())
	case reflect.Func:
		return closureMarker
	case reflect.Slice, reflect.Array:
		out := make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out = append(out, f.normalize(valueInterface(rv.Index(i)), depth+1))
		}
		return out
	case reflect.Map:
		return f.normalizeMap(rv, depth)
	case reflect.Struct:
		return f.normalizeStruct(rv, depth)
	}
	return unknownMarker
}

// uint64ToNumber keeps unsigned values inside the int64 range where
// possible; only values past MaxInt64 degrade to float64.
func uint64ToNumber(u uint64) any {
	if u > math.MaxInt64 {
		return float64(u)
	}
	return int64(u)
}

// normalizeMap converts a map into an ordered [Context] sorted by
// stringified key, so repeated normalization of the same map is stable.
func (f *NormalizingFormatter) normalizeMap(rv reflect.Value, depth int) any {
	type pair struct {
		key   string
		value reflect.Value
	}
	pairs := make([]pair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		pairs = append(pairs, pair{f.Stringify(valueInterface(iter.Key())), iter.Value()})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })
	out := make(Context, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, F(p.key, f.normalize(valueInterface(p.value), depth+1)))
	}
	return out
}

// normalizeStruct converts a struct into a [Context] of its exported fields
// in declaration order, embedded fields promoted.
func (f *NormalizingFormatter) normalizeStruct(rv reflect.Value, depth int) any {
	fields := reflect.VisibleFields(rv.Type())
	out := make(Context, 0, len(fields))
	for _, sf := range fields {
		if sf.Anonymous || !sf.IsExported() {
			continue
		}
		fv, ok := fieldByIndex(rv, sf.Index)
		if !ok {
			continue
		}
		out = append(out, F(sf.Name, f.normalize(valueInterface(fv), depth+1)))
	}
	return out
}

// fieldByIndex walks a promoted field path, stopping at nil embedded
// pointers instead of panicking the way [reflect.Value.FieldByIndex] does.
func fieldByIndex(rv reflect.Value, index []int) (reflect.Value, bool) {
	for _, i := range index {
		if rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				return reflect.Value{}, false
			}
			rv = rv.Elem()
		}
		rv = rv.Field(i)
	}
	return rv, true
}

// normalizeMarshaler handles values that carry their own JSON form. In
// pass-through mode (the default) the value is returned untouched for the
// sink's encoder to serialize. In expansion mode the JSON form is decoded
// and normalized, which subjects it to the same depth and length bounds as
// plain data.
func (f *NormalizingFormatter) normalizeMarshaler(m json.Marshaler, depth int) any {
	if !f.expandMarshalers {
		return m
	}
	data, err := safeMarshal(m)
	if err != nil {
		return unserializableMarker
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return unserializableMarker
	}
	return f.normalize(decoded, depth)
}

// safeMarshal encodes via encoding/json while containing panics from
// misbehaving MarshalJSON implementations.
func safeMarshal(v any) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("marshal panic: %v", r)
		}
	}()
	return json.Marshal(v)
}

// stackTracer is the stack capture contract of github.com/pkg/errors.
// Errors created with errors.New, errors.Errorf, errors.Wrap or
// errors.WithStack from that package satisfy it.
type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// errorCoder is an optional contract for errors that carry a numeric code.
type errorCoder interface {
	Code() int
}

// normalizeError converts an error into a structured, ordered map: class,
// message, code, file, line, then trace when capture is enabled and the
// error carries one, then previous when the error wraps a cause. The cause
// chain recurses one structural level per hop, so the depth bound caps
// runaway chains.
func (f *NormalizingFormatter) normalizeError(err error, depth int) any {
	file, line := f.errorLocation(err)
	out := Context{
		F("class", errorClass(err)),
		F("message", f.Truncate(errorMessage(err))),
		F("code", errorCode(err)),
		F("file", file),
		F("line", line),
	}
	if f.stackInContext {
		if trace := errorTrace(err); trace != "" {
			out = append(out, F("trace", f.Truncate(trace)))
		}
	}
	if cause := errors.Unwrap(err); cause != nil {
		if f.maxDepth > 0 && depth+1 > f.maxDepth {
			out = append(out, F("previous", maxDepthMarker))
		} else {
			out = append(out, F("previous", f.normalizeError(cause, depth+1)))
		}
	}
	return out
}

// stringifyError renders the one-line error summary
// "class(code): message in file:line", omitting the code when zero and the
// location when unknown. With stack-in-message enabled, the trace follows on
// subsequent lines.
func (f *NormalizingFormatter) stringifyError(err error) string {
	var b strings.Builder
	b.WriteString(errorClass(err))
	if code := errorCode(err); code != 0 {
		b.WriteByte('(')
		b.WriteString(strconv.Itoa(code))
		b.WriteByte(')')
	}
	b.WriteString(": ")
	b.WriteString(errorMessage(err))
	if file, line := f.errorLocation(err); file != "" {
		b.WriteString(" in ")
		b.WriteString(file)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(line))
	}
	out := f.Truncate(b.String())
	if f.stackInMessage {
		if trace := errorTrace(err); trace != "" {
			out += "\n" + trace
		}
	}
	return out
}

// errorClass names the error's dynamic type without the pointer marker.
func errorClass(err error) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}

// errorMessage calls Error; a panicking implementation degrades to the
// unknown marker.
func errorMessage(err error) (msg string) {
	defer func() {
		if recover() != nil {
			msg = unknownMarker
		}
	}()
	return err.Error()
}

// errorCode reads the error's own code, not a wrapped cause's: each element
// of a chain reports for itself.
func errorCode(err error) int {
	if c, ok := err.(errorCoder); ok {
		return c.Code()
	}
	return 0
}

// errorLocation extracts the origin file and line from a stack-capturing
// error, with the base path prefix stripped. Errors without a captured stack
// report an empty file and line zero.
func (f *NormalizingFormatter) errorLocation(err error) (string, int) {
	st, ok := err.(stackTracer)
	if !ok {
		return "", 0
	}
	frames := st.StackTrace()
	if len(frames) == 0 {
		return "", 0
	}
	file, line := frameLocation(frames[0])
	return f.normalizePath(file), line
}

// frameLocation decodes a single pkg/errors frame. The "%+s" form renders
// "funcName\n\tfile", the "%d" form the line number.
func frameLocation(fr pkgerrors.Frame) (string, int) {
	text := fmt.Sprintf("%+s", fr)
	file := text
	if i := strings.LastIndex(text, "\n\t"); i >= 0 {
		file = text[i+2:]
	}
	line, _ := strconv.Atoi(fmt.Sprintf("%d", fr))
	return file, line
}

// errorTrace renders the captured stack of a stack-capturing error, empty
// otherwise.
func errorTrace(err error) string {
	st, ok := err.(stackTracer)
	if !ok {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%+v", st.StackTrace()))
}
