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

package zapbridge

import (
	"errors"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rivaas.dev/logkit"
)

// ErrNilLogger is returned by [New] when no zap logger is given.
var ErrNilLogger = errors.New("zap logger must not be nil")

// DefaultSeverityKey is the field under which the original level name is
// preserved when the zap mapping loses it.
const DefaultSeverityKey = "severity"

// Handler forwards records into a [zap.Logger]. It implements
// [logkit.Handler] and [logkit.Flusher]; flushing syncs the zap logger.
type Handler struct {
	logkit.LevelThreshold
	zl          *zap.Logger
	severityKey string
}

// Option configures a [Handler].
type Option func(*Handler)

// WithMinLevel sets the handler's severity threshold. Records below it never
// reach zap, regardless of the zap core's own level.
func WithMinLevel(min logkit.Level) Option {
	return func(h *Handler) {
		h.SetMinLevel(min)
	}
}

// WithSeverityKey changes the field name under which lossy-mapped levels
// keep their original name. The default is [DefaultSeverityKey].
func WithSeverityKey(key string) Option {
	return func(h *Handler) {
		h.severityKey = key
	}
}

// New returns a handler delivering to zl.
func New(zl *zap.Logger, opts ...Option) (*Handler, error) {
	if zl == nil {
		return nil, ErrNilLogger
	}
	h := &Handler{
		zl:          zl,
		severityKey: DefaultSeverityKey,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

// AddInjector implements [logkit.Handler].
func (h *Handler) AddInjector(in logkit.Injector) logkit.Handler {
	h.AppendInjector(in)
	return h
}

// ShouldHandle gates on both the handler's own threshold and the zap core's
// level, so records zap would drop anyway skip formatting entirely.
func (h *Handler) ShouldHandle(r logkit.Record) bool {
	return h.LevelThreshold.ShouldHandle(r) && h.zl.Core().Enabled(zapLevel(r.Level()))
}

// Handle converts the record to a zap entry. The record's timestamp is kept,
// the channel leads the fields, and context precedes extra.
func (h *Handler) Handle(r logkit.Record) error {
	ce := h.zl.Check(zapLevel(r.Level()), r.Message())
	if ce == nil {
		return nil
	}
	ce.Time = r.Time()

	context, extra := r.Context(), r.Extra()
	fields := make([]zap.Field, 0, len(context)+len(extra)+2)
	if ch := r.Channel(); ch != "" {
		fields = append(fields, zap.String("channel", ch))
	}
	if lossy(r.Level()) {
		fields = append(fields, zap.String(h.severityKey, r.Level().String()))
	}
	for _, f := range context {
		fields = append(fields, zap.Any(f.Key, f.Value))
	}
	for _, f := range extra {
		fields = append(fields, zap.Any(f.Key, f.Value))
	}
	ce.Write(fields...)
	return nil
}

// Flush implements [logkit.Flusher] by syncing the zap logger.
func (h *Handler) Flush() error {
	return h.zl.Sync()
}

// zapLevel maps a logkit level onto zap's release levels. DPanic and above
// are deliberately unreachable: a bridge must never trigger zap's panic or
// exit behavior.
func zapLevel(l logkit.Level) zapcore.Level {
	switch {
	case l.LowerThan(logkit.LevelInfo):
		return zapcore.DebugLevel
	case l.LowerThan(logkit.LevelWarning):
		return zapcore.InfoLevel
	case l.LowerThan(logkit.LevelError):
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// lossy reports whether mapping l to zap discards its name.
func lossy(l logkit.Level) bool {
	switch l {
	case logkit.LevelNotice, logkit.LevelCritical, logkit.LevelAlert, logkit.LevelEmergency:
		return true
	default:
		return false
	}
}
