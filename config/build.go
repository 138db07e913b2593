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

	"dario.cat/mergo"
	"github.com/spf13/cast"

	"rivaas.dev/logkit"
)

// Builder carries shared build state into handler factories. Factories use
// it to resolve the description-wide formatter and to construct nested
// handlers, as the "buffer" type does for its wrapped handler.
type Builder struct {
	formatter logkit.Formatter
}

// Formatter returns the formatter resolved from the description's formatter
// settings, or nil when none were given and handlers should keep their own
// defaults.
func (b *Builder) Formatter() logkit.Formatter {
	return b.formatter
}

// BuildHandler constructs a handler from a description: factory lookup,
// factory invocation, then threshold application.
func (b *Builder) BuildHandler(spec HandlerConfig) (logkit.Handler, error) {
	factory, err := lookupHandler(spec.Type)
	if err != nil {
		return nil, err
	}
	h, err := factory(b, spec.Options)
	if err != nil {
		return nil, err
	}
	if spec.MinLevel != "" {
		level, err := parseLevel(spec.MinLevel)
		if err != nil {
			return nil, err
		}
		setter, ok := h.(interface{ SetMinLevel(logkit.Level) })
		if !ok {
			return nil, fmt.Errorf("handler type %q does not support min_level", spec.Type)
		}
		setter.SetMinLevel(level)
	}
	return h, nil
}

// Build constructs the logger the description asks for. Missing parts are
// filled from the defaults first, so the zero Config builds a text logger
// on stderr.
func (c *Config) Build() (*logkit.Logger, error) {
	merged := *c
	if err := mergo.Merge(&merged, defaultConfig()); err != nil {
		return nil, NewError(StageBuild, err)
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	b := &Builder{formatter: merged.Formatter.build()}

	var opts []logkit.Option
	if merged.TimeZone != "" {
		opts = append(opts, logkit.WithTimeZone(merged.TimeZone))
	}
	if len(merged.Injectors) > 0 {
		injectors := make([]logkit.Injector, 0, len(merged.Injectors))
		for _, name := range merged.Injectors {
			factory, err := lookupInjector(name)
			if err != nil {
				return nil, NewFieldError(StageBuild, "injectors", err)
			}
			injectors = append(injectors, factory())
		}
		opts = append(opts, logkit.WithInjectors(injectors...))
	}

	handlers := make([]logkit.Handler, 0, len(merged.Handlers))
	for i, spec := range merged.Handlers {
		h, err := b.BuildHandler(spec)
		if err != nil {
			return nil, NewFieldError(StageBuild, fmt.Sprintf("handlers[%d]", i), err)
		}
		handlers = append(handlers, h)
	}
	opts = append(opts, logkit.WithHandlers(handlers...))

	logger, err := logkit.New(merged.Channel, opts...)
	if err != nil {
		return nil, NewError(StageBuild, err)
	}
	return logger, nil
}

// parseLevel resolves a level given as a name ("warning") or as the priority
// of a named level ("40"). Arbitrary numbers between the named priorities
// are rejected the same way the pipeline rejects them at log time.
func parseLevel(spec string) (logkit.Level, error) {
	if level, err := logkit.ParseLevel(spec); err == nil {
		return level, nil
	}
	n, err := cast.ToIntE(spec)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", logkit.ErrUnknownLevel, spec)
	}
	level := logkit.Level(n)
	if !level.Valid() {
		return 0, fmt.Errorf("%w: %d", logkit.ErrUnknownLevel, n)
	}
	return level, nil
}
