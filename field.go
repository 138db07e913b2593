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
	"bytes"
	"encoding/json"
)

// Field is a single key/value pair attached to a record. Values may be any
// Go value; the normalizing formatter is responsible for reducing arbitrary
// values to a safe, serializable form before they reach a sink.
type Field struct {
	Key   string
	Value any
}

// F constructs a Field. It exists purely to keep call sites short:
//
//	logger.Info("user logged in", logkit.F("user_id", 42))
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Context is an ordered collection of fields. Unlike a map, it preserves the
// order in which fields were attached, so serialized records are stable and
// diff-friendly. All operations are copy-on-write: methods never mutate the
// receiver, they return a new slice when a change is needed.
//
// When the same key appears more than once, the later entry is authoritative:
// [Context.Get] and [Context.MarshalJSON] resolve duplicates in favor of the
// last occurrence. [Context.Merge] keeps contexts duplicate-free by replacing
// values in place.
type Context []Field

// Len returns the number of fields, including duplicate keys.
func (c Context) Len() int {
	return len(c)
}

// Get returns the value for key. When the key appears multiple times the
// most recently appended value wins.
func (c Context) Get(key string) (any, bool) {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].Key == key {
			return c[i].Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present.
func (c Context) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Keys returns the field keys in their original order. Duplicate keys are
// reported once, at the position of their first occurrence.
func (c Context) Keys() []string {
	if len(c) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c))
	seen := make(map[string]struct{}, len(c))
	for _, f := range c {
		if _, dup := seen[f.Key]; dup {
			continue
		}
		seen[f.Key] = struct{}{}
		keys = append(keys, f.Key)
	}
	return keys
}

// Clone returns an independent copy of the context. Field values are shared,
// not deep-copied; treat attached values as immutable once logged.
func (c Context) Clone() Context {
	if c == nil {
		return nil
	}
	out := make(Context, len(c))
	copy(out, c)
	return out
}

// Without returns a copy of the context with the named keys removed. The
// original order of the remaining fields is preserved.
func (c Context) Without(keys ...string) Context {
	if len(c) == 0 || len(keys) == 0 {
		return c.Clone()
	}
	drop := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}
	out := make(Context, 0, len(c))
	for _, f := range c {
		if _, skip := drop[f.Key]; skip {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Merge overlays the given fields onto the context. A field whose key already
// exists replaces the existing value in place, keeping the key's original
// position; new keys are appended in their given order. Neither input is
// mutated.
func (c Context) Merge(overlay Context) Context {
	if len(overlay) == 0 {
		return c.Clone()
	}
	out := c.Clone()
	for _, f := range overlay {
		replaced := false
		for i := range out {
			if out[i].Key == f.Key {
				out[i].Value = f.Value
				replaced = true
			}
		}
		if !replaced {
			out = append(out, f)
		}
	}
	return out
}

// Map flattens the context into a plain map, losing order. Later duplicate
// keys win. Useful for bridging into map-based logging backends.
func (c Context) Map() map[string]any {
	if len(c) == 0 {
		return nil
	}
	out := make(map[string]any, len(c))
	for _, f := range c {
		out[f.Key] = f.Value
	}
	return out
}

// MarshalJSON encodes the context as a JSON object whose member order
// matches field order. Duplicate keys collapse to a single member at the
// first occurrence's position, carrying the last occurrence's value.
func (c Context) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	seen := make(map[string]struct{}, len(c))
	first := true
	for i, f := range c {
		if _, dup := seen[f.Key]; dup {
			continue
		}
		seen[f.Key] = struct{}{}
		value := f.Value
		for j := i + 1; j < len(c); j++ {
			if c[j].Key == f.Key {
				value = c[j].Value
			}
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
