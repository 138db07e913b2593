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

package config

import (
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"

	"rivaas.dev/logkit"
)

// Config is the declarative description of a logging pipeline. The zero
// value builds a text logger on stderr; every field narrows or extends that.
//
// Field names in configuration files follow the `config` struct tags.
type Config struct {
	// Channel names the pipeline. Empty falls back to the logkit default.
	Channel string `config:"channel"`

	// TimeZone is an IANA zone name ("UTC", "Europe/Amsterdam") applied to
	// record timestamps. Empty keeps UTC.
	TimeZone string `config:"time_zone"`

	// Injectors lists pipeline-scoped injectors by registered name. Built
	// in: "host", "pid", "unique_id", "caller".
	Injectors []string `config:"injectors"`

	// Formatter adjusts the normalizing formatter shared by handlers that
	// take one. Unset fields keep the logkit defaults.
	Formatter FormatterConfig `config:"formatter"`

	// Handlers describes the pipeline's handlers in order. Empty gets one
	// "writer" handler with default options.
	Handlers []HandlerConfig `config:"handlers"`
}

// FormatterConfig carries the optional formatter settings. Pointer fields
// distinguish "not set" from an explicit zero, so `max_depth: 0` (unbounded)
// and an absent max_depth (library default) configure different formatters.
type FormatterConfig struct {
	MaxDepth            *int   `config:"max_depth"`
	MaxStringLength     *int   `config:"max_string_length"`
	BasePath            string `config:"base_path"`
	StackTraceInContext *bool  `config:"stack_trace_in_context"`
	StackTraceInMessage *bool  `config:"stack_trace_in_message"`
	RemoveConsumed      *bool  `config:"remove_consumed"`
	ExpandMarshalers    *bool  `config:"expand_marshalers"`
}

// HandlerConfig describes a single handler: its registered type, an optional
// severity threshold, and options interpreted by the type's factory.
type HandlerConfig struct {
	Type     string         `config:"type"`
	MinLevel string         `config:"min_level"`
	Options  map[string]any `config:"options"`
}

// defaultConfig returns the values merged into every parsed description.
func defaultConfig() Config {
	return Config{
		Handlers: []HandlerConfig{{Type: "writer"}},
	}
}

// Load reads a configuration file and parses it, detecting the format from
// the file extension (.yaml, .yml, .json, .toml).
func Load(path string) (*Config, error) {
	format, err := detectFormat(path)
	if err != nil {
		return nil, NewError(StageLoad, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewError(StageLoad, err)
	}
	return Parse(data, format)
}

// Parse decodes a configuration description in the given format. Unknown
// top-level keys are rejected so typos surface as parse errors instead of
// silently ignored settings. Missing fields are filled from the defaults.
func Parse(data []byte, format Format) (*Config, error) {
	raw := map[string]any{}
	if err := unmarshal(data, format, &raw); err != nil {
		return nil, NewError(StageParse, err)
	}

	var cfg Config
	if err := decode(raw, &cfg, true); err != nil {
		return nil, NewError(StageParse, err)
	}

	if err := mergo.Merge(&cfg, defaultConfig()); err != nil {
		return nil, NewError(StageParse, err)
	}
	return &cfg, nil
}

// decode maps a generic option map onto a tagged struct. Decoding is weakly
// typed, so scalars arriving as the wrong primitive (YAML's bare 40, JSON's
// float64) still land in string and int fields.
func decode(raw map[string]any, out any, strict bool) error {
	dc := &mapstructure.DecoderConfig{
		TagName:          "config",
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      strict,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	}
	decoder, err := mapstructure.NewDecoder(dc)
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}
	return decoder.Decode(raw)
}

// Validate checks the description without building anything: injector and
// handler type names must be registered, levels and the time zone must
// parse, formatter bounds must be non-negative. Factory-specific options
// are outside its reach; those are checked by [Config.Build].
func (c *Config) Validate() error {
	if c.TimeZone != "" {
		if _, err := time.LoadLocation(c.TimeZone); err != nil {
			return NewFieldError(StageBuild, "time_zone", err)
		}
	}
	for _, name := range c.Injectors {
		if _, err := lookupInjector(name); err != nil {
			return NewFieldError(StageBuild, "injectors", err)
		}
	}
	if err := c.Formatter.validate(); err != nil {
		return err
	}
	for i, spec := range c.Handlers {
		field := fmt.Sprintf("handlers[%d]", i)
		if _, err := lookupHandler(spec.Type); err != nil {
			return NewFieldError(StageBuild, field+".type", err)
		}
		if spec.MinLevel != "" {
			if _, err := parseLevel(spec.MinLevel); err != nil {
				return NewFieldError(StageBuild, field+".min_level", err)
			}
		}
	}
	return nil
}

func (fc FormatterConfig) validate() error {
	if fc.MaxDepth != nil && *fc.MaxDepth < 0 {
		return NewFieldError(StageBuild, "formatter.max_depth",
			fmt.Errorf("must not be negative, got %d", *fc.MaxDepth))
	}
	if fc.MaxStringLength != nil && *fc.MaxStringLength < 0 {
		return NewFieldError(StageBuild, "formatter.max_string_length",
			fmt.Errorf("must not be negative, got %d", *fc.MaxStringLength))
	}
	return nil
}

// isZero reports whether no formatter setting was given.
func (fc FormatterConfig) isZero() bool {
	return fc.MaxDepth == nil && fc.MaxStringLength == nil && fc.BasePath == "" &&
		fc.StackTraceInContext == nil && fc.StackTraceInMessage == nil &&
		fc.RemoveConsumed == nil && fc.ExpandMarshalers == nil
}

// build turns the settings into a formatter, or nil when nothing was set so
// handlers keep their own defaults.
func (fc FormatterConfig) build() logkit.Formatter {
	if fc.isZero() {
		return nil
	}
	var opts []logkit.FormatterOption
	if fc.MaxDepth != nil {
		opts = append(opts, logkit.WithMaxDepth(*fc.MaxDepth))
	}
	if fc.MaxStringLength != nil {
		opts = append(opts, logkit.WithMaxStringLength(*fc.MaxStringLength))
	}
	if fc.BasePath != "" {
		opts = append(opts, logkit.WithBasePath(fc.BasePath))
	}
	if fc.StackTraceInContext != nil {
		opts = append(opts, logkit.WithStackTraceInContext(*fc.StackTraceInContext))
	}
	if fc.StackTraceInMessage != nil {
		opts = append(opts, logkit.WithStackTraceInMessage(*fc.StackTraceInMessage))
	}
	if fc.RemoveConsumed != nil {
		opts = append(opts, logkit.WithConsumedFieldRemoval(*fc.RemoveConsumed))
	}
	if fc.ExpandMarshalers != nil {
		opts = append(opts, logkit.WithMarshalerExpansion(*fc.ExpandMarshalers))
	}
	return logkit.NewNormalizingFormatter(opts...)
}
