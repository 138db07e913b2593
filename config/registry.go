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
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"rivaas.dev/logkit"
)

// HandlerFactory builds a handler from its option map. The builder gives
// access to shared state such as the description-wide formatter and to
// nested handler construction.
type HandlerFactory func(b *Builder, options map[string]any) (logkit.Handler, error)

var (
	registryMu        sync.RWMutex
	handlerFactories  = map[string]HandlerFactory{}
	injectorFactories = map[string]func() logkit.Injector{}
)

// RegisterHandler makes a handler type available to descriptions under the
// given name. Registering an existing name replaces the previous factory.
// It panics on an empty name or nil factory, as such a registration can
// only be a programming error.
func RegisterHandler(name string, factory HandlerFactory) {
	if name == "" {
		panic("config: RegisterHandler with empty name")
	}
	if factory == nil {
		panic("config: RegisterHandler with nil factory")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	handlerFactories[name] = factory
}

// RegisterInjector makes an injector available to descriptions under the
// given name. The factory runs once per built logger, so injectors carrying
// per-pipeline state get a fresh instance each build. It panics on an empty
// name or nil factory.
func RegisterInjector(name string, factory func() logkit.Injector) {
	if name == "" {
		panic("config: RegisterInjector with empty name")
	}
	if factory == nil {
		panic("config: RegisterInjector with nil factory")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	injectorFactories[name] = factory
}

func lookupHandler(name string) (HandlerFactory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := handlerFactories[name]
	if !ok {
		return nil, fmt.Errorf("unknown handler type %q", name)
	}
	return factory, nil
}

func lookupInjector(name string) (func() logkit.Injector, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := injectorFactories[name]
	if !ok {
		return nil, fmt.Errorf("unknown injector %q", name)
	}
	return factory, nil
}

// DecodeOptions maps a factory's option map onto a tagged struct using the
// same weakly typed decoding as the rest of the description. Unknown keys
// are rejected so option typos fail the build instead of being ignored.
func DecodeOptions(options map[string]any, out any) error {
	if options == nil {
		options = map[string]any{}
	}
	return decode(options, out, true)
}

func init() {
	RegisterHandler("writer", writerFactory)
	RegisterHandler("buffer", bufferFactory)
	RegisterHandler("nop", nopFactory)
	RegisterHandler("test", testFactory)

	RegisterInjector("host", logkit.HostInjector)
	RegisterInjector("pid", logkit.PIDInjector)
	RegisterInjector("unique_id", logkit.UniqueIDInjector)
	RegisterInjector("caller", func() logkit.Injector {
		return logkit.CallerInjector(logkit.CallerSkip)
	})
}

// writerOptions configures the built-in "writer" handler type.
type writerOptions struct {
	Target   string `config:"target"`
	Encoding string `config:"encoding"`
}

func writerFactory(b *Builder, options map[string]any) (logkit.Handler, error) {
	wo := writerOptions{
		Target:   "stderr",
		Encoding: string(logkit.EncodingText),
	}
	if err := DecodeOptions(options, &wo); err != nil {
		return nil, err
	}

	var w io.Writer
	switch wo.Target {
	case "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	case "discard":
		w = io.Discard
	default:
		return nil, fmt.Errorf("unknown writer target %q (want stdout, stderr or discard)", wo.Target)
	}

	enc := logkit.Encoding(wo.Encoding)
	switch enc {
	case logkit.EncodingJSON, logkit.EncodingText, logkit.EncodingConsole:
	default:
		return nil, fmt.Errorf("unknown encoding %q (want json, text or console)", wo.Encoding)
	}

	opts := []logkit.WriterOption{logkit.WithEncoding(enc)}
	if f := b.Formatter(); f != nil {
		opts = append(opts, logkit.WithFormatter(f))
	}
	return logkit.NewWriterHandler(w, opts...), nil
}

// bufferOptions configures the built-in "buffer" handler type.
type bufferOptions struct {
	Limit   int            `config:"limit"`
	Handler *HandlerConfig `config:"handler"`
}

func bufferFactory(b *Builder, options map[string]any) (logkit.Handler, error) {
	var bo bufferOptions
	if err := DecodeOptions(options, &bo); err != nil {
		return nil, err
	}
	if bo.Handler == nil {
		return nil, errors.New("buffer requires options.handler")
	}
	inner, err := b.BuildHandler(*bo.Handler)
	if err != nil {
		return nil, fmt.Errorf("handler: %w", err)
	}
	return logkit.NewBufferHandler(inner, bo.Limit), nil
}

func nopFactory(_ *Builder, options map[string]any) (logkit.Handler, error) {
	if len(options) > 0 {
		return nil, errors.New("nop takes no options")
	}
	return logkit.NewNopHandler(), nil
}

func testFactory(_ *Builder, options map[string]any) (logkit.Handler, error) {
	if len(options) > 0 {
		return nil, errors.New("test takes no options")
	}
	return logkit.NewTestHandler(), nil
}
