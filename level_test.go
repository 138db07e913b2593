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
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test that the numeric priorities and names match the severity scale.
func TestLevel_Priorities(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level    Level
		priority int
		name     string
	}{
		{LevelDebug, 10, "debug"},
		{LevelInfo, 30, "info"},
		{LevelNotice, 35, "notice"},
		{LevelWarning, 40, "warning"},
		{LevelError, 50, "error"},
		{LevelCritical, 60, "critical"},
		{LevelAlert, 70, "alert"},
		{LevelEmergency, 100, "emergency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.priority, tt.level.Priority())
			assert.Equal(t, tt.name, tt.level.String())
			assert.True(t, tt.level.Valid())
		})
	}
}

// Test that comparisons follow priority across the whole scale.
func TestLevel_Ordering(t *testing.T) {
	t.Parallel()

	levels := Levels()
	require.Len(t, levels, 8)

	for i := 1; i < len(levels); i++ {
		lower, higher := levels[i-1], levels[i]
		assert.True(t, higher.HigherThan(lower), "%s should outrank %s", higher, lower)
		assert.True(t, lower.LowerThan(higher), "%s should rank below %s", lower, higher)
		assert.True(t, higher.AtLeast(lower))
		assert.True(t, lower.AtMost(higher))
		assert.False(t, lower.AtLeast(higher))
	}

	assert.True(t, LevelError.AtLeast(LevelError), "AtLeast must be inclusive")
	assert.True(t, LevelError.AtMost(LevelError), "AtMost must be inclusive")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Level
		wantErr bool
	}{
		{name: "debug", input: "debug", want: LevelDebug},
		{name: "info", input: "info", want: LevelInfo},
		{name: "notice", input: "notice", want: LevelNotice},
		{name: "warning", input: "warning", want: LevelWarning},
		{name: "warn alias", input: "warn", want: LevelWarning},
		{name: "error", input: "error", want: LevelError},
		{name: "critical", input: "critical", want: LevelCritical},
		{name: "alert", input: "alert", want: LevelAlert},
		{name: "emergency", input: "emergency", want: LevelEmergency},
		{name: "uppercase", input: "ERROR", want: LevelError},
		{name: "mixed case", input: "Notice", want: LevelNotice},
		{name: "unknown", input: "verbose", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "numeric", input: "30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnknownLevel)
				assert.Contains(t, err.Error(), tt.input, "error must carry the rejected name")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Test that every canonical name survives a parse round trip.
func TestParseLevel_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, level := range Levels() {
		got, err := ParseLevel(level.String())
		require.NoError(t, err)
		assert.Equal(t, level, got)
	}
}

func TestLevel_Label(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "WARNING", LevelWarning.Label())
	assert.Equal(t, "EMERGENCY", LevelEmergency.Label())
}

func TestLevel_Valid(t *testing.T) {
	t.Parallel()

	for _, bad := range []Level{0, -1, 5, 45, 99, 101} {
		assert.False(t, bad.Valid(), "Level(%d) must be invalid", int(bad))
	}
}

func TestLevel_StringInvalid(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "level(45)", Level(45).String())
}

// Test binding a Level to a pflag flag set.
func TestLevel_FlagValue(t *testing.T) {
	t.Parallel()

	lvl := LevelInfo
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Var(&lvl, "log-level", "minimum severity")

	require.NoError(t, fs.Parse([]string{"--log-level=critical"}))
	assert.Equal(t, LevelCritical, lvl)
	assert.Equal(t, "level", lvl.Type())

	var bad Level
	err := bad.Set("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownLevel))
}

func TestLevel_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(LevelAlert)
	require.NoError(t, err)
	assert.Equal(t, `"alert"`, string(data))

	var lvl Level
	require.NoError(t, json.Unmarshal([]byte(`"notice"`), &lvl))
	assert.Equal(t, LevelNotice, lvl)

	_, err = json.Marshal(Level(12))
	assert.Error(t, err, "invalid level must not serialize silently")
}

func TestLevel_Text(t *testing.T) {
	t.Parallel()

	data, err := LevelEmergency.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "emergency", string(data))

	var lvl Level
	require.NoError(t, lvl.UnmarshalText([]byte("debug")))
	assert.Equal(t, LevelDebug, lvl)
}
