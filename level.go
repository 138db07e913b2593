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
	"encoding"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Level is the severity of a log record. The numeric value is the level's
// priority: higher means more severe. The gaps between values are
// intentional and stable, so priorities can be persisted, compared across
// process boundaries, and interleaved with foreign severity scales without
// remapping.
type Level int

// The closed severity set, ordered by priority. These eight values are the
// only valid levels; arithmetic on Level producing any other value yields an
// invalid level that [Logger.Log] rejects.
const (
	LevelDebug     Level = 10
	LevelInfo      Level = 30
	LevelNotice    Level = 35
	LevelWarning   Level = 40
	LevelError     Level = 50
	LevelCritical  Level = 60
	LevelAlert     Level = 70
	LevelEmergency Level = 100
)

var (
	_ pflag.Value              = (*Level)(nil)
	_ encoding.TextMarshaler   = LevelDebug
	_ encoding.TextUnmarshaler = (*Level)(nil)
	_ json.Marshaler           = LevelDebug
	_ fmt.Stringer             = LevelDebug
)

// Levels returns all valid levels in ascending priority order.
func Levels() []Level {
	return []Level{
		LevelDebug,
		LevelInfo,
		LevelNotice,
		LevelWarning,
		LevelError,
		LevelCritical,
		LevelAlert,
		LevelEmergency,
	}
}

// ParseLevel converts a level name to its Level value. Matching is
// case-insensitive; the canonical names are the lowercase forms returned by
// [Level.String]. Unrecognized names return [ErrUnknownLevel] with the
// offending name preserved verbatim in the error message.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "notice":
		return LevelNotice, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	case "critical":
		return LevelCritical, nil
	case "alert":
		return LevelAlert, nil
	case "emergency":
		return LevelEmergency, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}
}

// String returns the canonical lowercase name of the level. Invalid levels
// format as "level(<n>)" rather than panicking, so corrupted values remain
// printable in diagnostics.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelNotice:
		return "notice"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelCritical:
		return "critical"
	case LevelAlert:
		return "alert"
	case LevelEmergency:
		return "emergency"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Label returns the uppercase display form of the level, e.g. "WARNING".
func (l Level) Label() string {
	return strings.ToUpper(l.String())
}

// Priority returns the numeric priority of the level.
func (l Level) Priority() int {
	return int(l)
}

// Valid reports whether l is one of the eight defined levels.
func (l Level) Valid() bool {
	switch l {
	case LevelDebug, LevelInfo, LevelNotice, LevelWarning,
		LevelError, LevelCritical, LevelAlert, LevelEmergency:
		return true
	}
	return false
}

// LowerThan reports whether l is strictly less severe than other.
func (l Level) LowerThan(other Level) bool {
	return l < other
}

// HigherThan reports whether l is strictly more severe than other.
func (l Level) HigherThan(other Level) bool {
	return l > other
}

// AtLeast reports whether l is at least as severe as min. This is the
// comparison handlers use for threshold filtering.
func (l Level) AtLeast(min Level) bool {
	return l >= min
}

// AtMost reports whether l is at most as severe as max.
func (l Level) AtMost(max Level) bool {
	return l <= max
}

// Set implements [pflag.Value], so a Level can be bound directly to a
// command-line flag:
//
//	lvl := logkit.LevelInfo
//	fs.Var(&lvl, "log-level", "minimum severity to emit")
func (l *Level) Set(s string) error {
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Type implements [pflag.Value].
func (l *Level) Type() string {
	return "level"
}

// MarshalText implements [encoding.TextMarshaler].
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLevel, int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (l *Level) UnmarshalText(text []byte) error {
	return l.Set(string(text))
}

// MarshalJSON encodes the level as its canonical name, keeping serialized
// records readable instead of exposing raw priorities.
func (l Level) MarshalJSON() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLevel, int(l))
	}
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts a level name string.
func (l *Level) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	return l.Set(name)
}
