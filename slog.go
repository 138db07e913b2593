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
	"context"
	"log/slog"
)

// bgCtx avoids allocating a context per record handed to slog.
var bgCtx = context.Background()

// SlogHandler forwards records into a [slog.Logger], letting a pipeline feed
// infrastructure that standardized on log/slog without re-implementing its
// handlers. The record's channel travels as the "channel" attribute; context
// and extra fields become attributes in order.
type SlogHandler struct {
	LevelThreshold
	logger *slog.Logger
}

// NewSlogHandler wraps a slog logger; nil means [slog.Default].
func NewSlogHandler(logger *slog.Logger) *SlogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogHandler{logger: logger}
}

// AddInjector implements [Handler].
func (h *SlogHandler) AddInjector(in Injector) Handler {
	h.AppendInjector(in)
	return h
}

// ShouldHandle combines the handler's own threshold with the slog logger's
// enablement, so records the backend would drop are not formatted at all.
func (h *SlogHandler) ShouldHandle(r Record) bool {
	if !h.LevelThreshold.ShouldHandle(r) {
		return false
	}
	return h.logger.Enabled(bgCtx, slogLevel(r.Level()))
}

// Handle implements [Handler].
func (h *SlogHandler) Handle(r Record) error {
	attrs := make([]slog.Attr, 0, r.context.Len()+r.extra.Len()+1)
	attrs = append(attrs, slog.String("channel", r.Channel()))
	for _, f := range r.context {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	for _, f := range r.extra {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	h.logger.LogAttrs(bgCtx, slogLevel(r.Level()), r.Message(), attrs...)
	return nil
}

// slogLevel maps the eight severities onto slog's sparse scale. The four
// slog levels carry debug, info, warning and error directly; the remaining
// severities slot between and above them at distinct values so relative
// ordering survives the translation.
func slogLevel(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelNotice:
		return slog.LevelInfo + 2
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	case LevelCritical:
		return slog.LevelError + 2
	case LevelAlert:
		return slog.LevelError + 4
	case LevelEmergency:
		return slog.LevelError + 8
	default:
		return slog.LevelInfo
	}
}
