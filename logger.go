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
	"fmt"
	"io"
	"sync"
	"time"
)

// ErrorHandler receives failures that occur while a record is being
// enriched, filtered or delivered. The handler argument identifies the
// handler on whose behalf the failure happened; it is nil for failures in
// pipeline-level injectors.
//
// The callback runs on the logging goroutine. It must not log through the
// same pipeline.
type ErrorHandler func(err error, h Handler)

// Logger is the dispatch pipeline: it stamps records, runs injectors and
// fans records out to handlers. The handler and injector sets are fixed at
// construction; channel, time zone and error callback are the only mutable
// knobs, guarded for concurrent use.
//
// Failure isolation is the pipeline's core guarantee. An injector, predicate
// or handler that returns an error or panics affects only its own step: the
// record still reaches every other handler, and nothing propagates to the
// logging call site. Failures are reported through the [ErrorHandler]
// callback and are otherwise dropped.
type Logger struct {
	mu         sync.RWMutex
	channel    string
	handlers   []Handler
	injectors  []Injector
	loc        *time.Location
	errHandler ErrorHandler
}

// Option configures a [Logger]. Options can fail; [New] returns the first
// failure.
type Option func(*Logger) error

// WithHandlers appends handlers to the pipeline. At least one handler must
// be present across all options by the time construction finishes; nil
// handlers are rejected.
func WithHandlers(handlers ...Handler) Option {
	return func(l *Logger) error {
		for i, h := range handlers {
			if h == nil {
				return fmt.Errorf("%w: handler at index %d is nil", ErrInvalidHandler, i)
			}
			l.handlers = append(l.handlers, h)
		}
		return nil
	}
}

// WithInjectors appends pipeline-level injectors, which run once per record
// before any handler sees it. Nil injectors are rejected.
func WithInjectors(injectors ...Injector) Option {
	return func(l *Logger) error {
		for i, in := range injectors {
			if in == nil {
				return fmt.Errorf("%w: injector at index %d is nil", ErrInvalidInjector, i)
			}
			l.injectors = append(l.injectors, in)
		}
		return nil
	}
}

// WithTimeZone resolves an IANA time zone name (e.g. "Europe/Berlin") and
// stamps records in it. The default is UTC.
func WithTimeZone(name string) Option {
	return func(l *Logger) error {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return fmt.Errorf("resolve time zone %q: %w", name, err)
		}
		l.loc = loc
		return nil
	}
}

// WithLocation stamps records in the given location. Nil means UTC.
func WithLocation(loc *time.Location) Option {
	return func(l *Logger) error {
		if loc == nil {
			loc = time.UTC
		}
		l.loc = loc
		return nil
	}
}

// WithErrorHandler installs the failure callback. Without one, handler and
// injector failures are dropped silently.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(l *Logger) error {
		l.errHandler = fn
		return nil
	}
}

// New constructs a pipeline for the given channel. The channel name tags
// every record; an empty name falls back to [DefaultChannel]. At least one
// handler is required:
//
//	logger, err := logkit.New("api",
//	    logkit.WithHandlers(logkit.NewWriterHandler(os.Stdout)),
//	    logkit.WithInjectors(logkit.HostInjector(), logkit.PIDInjector()),
//	)
func New(channel string, opts ...Option) (*Logger, error) {
	l := &Logger{
		channel: channel,
		loc:     time.UTC,
	}
	if l.channel == "" {
		l.channel = DefaultChannel
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	if len(l.handlers) == 0 {
		return nil, ErrNoHandlers
	}
	return l, nil
}

// MustNew is [New] that panics on error, for wiring in main and in tests.
func MustNew(channel string, opts ...Option) *Logger {
	l, err := New(channel, opts...)
	if err != nil {
		panic(err)
	}
	return l
}

// Channel returns the pipeline's channel name.
func (l *Logger) Channel() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.channel
}

// WithChannel returns a logger sharing this pipeline's handlers, injectors,
// location and error callback, but stamping records with a different channel
// name. The clone is independent: later mutation of either logger does not
// affect the other.
func (l *Logger) WithChannel(channel string) *Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if channel == "" {
		channel = DefaultChannel
	}
	clone := &Logger{
		channel:    channel,
		handlers:   append([]Handler(nil), l.handlers...),
		injectors:  append([]Injector(nil), l.injectors...),
		loc:        l.loc,
		errHandler: l.errHandler,
	}
	return clone
}

// SetErrorHandler replaces the failure callback. Safe for concurrent use.
func (l *Logger) SetErrorHandler(fn ErrorHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errHandler = fn
}

// SetTimeZone resolves an IANA time zone name and uses it for subsequent
// records. Records already dispatched keep their original timestamps.
func (l *Logger) SetTimeZone(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("resolve time zone %q: %w", name, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loc = loc
	return nil
}

// SetLocation uses the given location for subsequent records. Nil means UTC.
func (l *Logger) SetLocation(loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loc = loc
}

// Location returns the location records are currently stamped in.
func (l *Logger) Location() *time.Location {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loc
}

// Log dispatches a record at the given level. The only error it returns is
// [ErrUnknownLevel] for a level outside the defined set; delivery failures
// go to the error callback, never to the caller.
func (l *Logger) Log(level Level, message string, fields ...Field) error {
	if !level.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownLevel, int(level))
	}
	l.dispatch(level, message, Context(fields))
	return nil
}

// Debug logs at [LevelDebug].
func (l *Logger) Debug(message string, fields ...Field) {
	l.dispatch(LevelDebug, message, Context(fields))
}

// Info logs at [LevelInfo].
func (l *Logger) Info(message string, fields ...Field) {
	l.dispatch(LevelInfo, message, Context(fields))
}

// Notice logs at [LevelNotice].
func (l *Logger) Notice(message string, fields ...Field) {
	l.dispatch(LevelNotice, message, Context(fields))
}

// Warning logs at [LevelWarning].
func (l *Logger) Warning(message string, fields ...Field) {
	l.dispatch(LevelWarning, message, Context(fields))
}

// Error logs at [LevelError].
func (l *Logger) Error(message string, fields ...Field) {
	l.dispatch(LevelError, message, Context(fields))
}

// Critical logs at [LevelCritical].
func (l *Logger) Critical(message string, fields ...Field) {
	l.dispatch(LevelCritical, message, Context(fields))
}

// Alert logs at [LevelAlert].
func (l *Logger) Alert(message string, fields ...Field) {
	l.dispatch(LevelAlert, message, Context(fields))
}

// Emergency logs at [LevelEmergency].
func (l *Logger) Emergency(message string, fields ...Field) {
	l.dispatch(LevelEmergency, message, Context(fields))
}

// dispatch is the pipeline core. Both Log and the level methods call it
// directly, keeping the call stack depth identical on every path so
// [CallerInjector] resolves the same frame for all of them.
func (l *Logger) dispatch(level Level, message string, c Context) {
	l.mu.RLock()
	channel := l.channel
	loc := l.loc
	handlers := l.handlers
	injectors := l.injectors
	l.mu.RUnlock()

	r := Record{
		level:   level,
		message: message,
		context: c.Clone(),
		time:    time.Now().In(loc),
		channel: channel,
	}

	for _, in := range injectors {
		r = l.applyInjector(r, in, nil)
	}

	for _, h := range handlers {
		hr := r
		for _, in := range h.Injectors() {
			hr = l.applyInjector(hr, in, h)
		}
		if !l.shouldHandle(h, hr) {
			continue
		}
		if err := l.handle(h, hr); err != nil {
			l.routeError(err, h)
		}
	}
}

// applyInjector runs one injector, keeping the prior record when the
// injector panics so enrichment failures cannot corrupt or drop the record.
func (l *Logger) applyInjector(r Record, in Injector, h Handler) Record {
	out, err := runInjector(in, r)
	if err != nil {
		l.routeError(err, h)
		return r
	}
	return out
}

func runInjector(in Injector, r Record) (out Record, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out, err = r, fmt.Errorf("injector panic: %v", rec)
		}
	}()
	return in(r), nil
}

// shouldHandle consults the handler's predicate; a panicking predicate
// counts as declining the record.
func (l *Logger) shouldHandle(h Handler, r Record) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			l.routeError(fmt.Errorf("handler predicate panic: %v", rec), h)
			ok = false
		}
	}()
	return h.ShouldHandle(r)
}

// handle delivers the record, converting a handler panic into an error.
func (l *Logger) handle(h Handler, r Record) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()
	return h.Handle(r)
}

// routeError hands a failure to the callback, if one is installed.
func (l *Logger) routeError(err error, h Handler) {
	l.mu.RLock()
	fn := l.errHandler
	l.mu.RUnlock()
	if fn != nil {
		fn(err, h)
	}
}

// Flush asks every handler that implements [Flusher] to drain held records.
// The first failure per handler is routed to the error callback; Flush
// itself reports the joined failures.
func (l *Logger) Flush() error {
	l.mu.RLock()
	handlers := l.handlers
	l.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		fl, ok := h.(Flusher)
		if !ok {
			continue
		}
		if err := fl.Flush(); err != nil {
			l.routeError(err, h)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close flushes and releases the pipeline's handlers: handlers implementing
// [io.Closer] are closed, remaining [Flusher] handlers are flushed. Close is
// idempotent at the handler level because well-behaved closers are; call it
// once at process teardown, typically via defer in main.
func (l *Logger) Close() error {
	l.mu.RLock()
	handlers := l.handlers
	l.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		var err error
		switch x := h.(type) {
		case io.Closer:
			err = x.Close()
		case Flusher:
			err = x.Flush()
		}
		if err != nil {
			l.routeError(err, h)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DebugInfo reports the pipeline's wiring for diagnostics: channel, time
// zone, handler and injector counts, and per-handler detail.
func (l *Logger) DebugInfo() map[string]any {
	l.mu.RLock()
	defer l.mu.RUnlock()

	handlers := make([]map[string]any, 0, len(l.handlers))
	for _, h := range l.handlers {
		info := map[string]any{
			"type":      fmt.Sprintf("%T", h),
			"injectors": len(h.Injectors()),
		}
		if t, ok := h.(interface{ MinLevel() (Level, bool) }); ok {
			if min, set := t.MinLevel(); set {
				info["min_level"] = min.String()
			}
		}
		handlers = append(handlers, info)
	}
	return map[string]any{
		"channel":   l.channel,
		"time_zone": l.loc.String(),
		"handlers":  handlers,
		"injectors": len(l.injectors),
	}
}
