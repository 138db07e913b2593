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
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Encoding selects the wire form a [WriterHandler] produces.
type Encoding string

const (
	// EncodingJSON emits one JSON object per record, one record per line.
	EncodingJSON Encoding = "json"

	// EncodingText emits key=value lines, quoted where needed.
	EncodingText Encoding = "text"

	// EncodingConsole emits colored, human-oriented lines for terminals.
	EncodingConsole Encoding = "console"
)

// ANSI escape codes for console encoding.
const (
	ansiReset  = "\033[0m"
	ansiDim    = "\033[2m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
)

// Encode buffers are pooled; buffers that grew past this size are dropped
// instead of returned, keeping one oversized record from pinning memory.
const maxPooledBufferSize = 64 * 1024

var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBufferSize {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}

// WriterHandler delivers records to an [io.Writer], one line per record.
// Writes are serialized internally, so a single handler can safely sit
// behind a concurrent pipeline without interleaving lines.
//
// It implements [BatchHandler]: a batch is encoded into a single buffer and
// delivered with one Write call, which is what makes wrapping it in a
// [BufferHandler] worthwhile for syscall-bound writers.
type WriterHandler struct {
	LevelThreshold
	mu        sync.Mutex
	w         io.Writer
	enc       Encoding
	formatter Formatter
}

// WriterOption configures a [WriterHandler].
type WriterOption func(*WriterHandler)

// WithEncoding selects the output encoding. The default is [EncodingText].
func WithEncoding(enc Encoding) WriterOption {
	return func(h *WriterHandler) {
		h.enc = enc
	}
}

// WithFormatter replaces the handler's formatter. Pass nil to disable
// formatting entirely and serialize raw records; values that defeat the
// encoder then surface as handler errors instead of being normalized away.
func WithFormatter(f Formatter) WriterOption {
	return func(h *WriterHandler) {
		h.formatter = f
	}
}

// WithMinLevel sets the handler's severity threshold.
func WithMinLevel(min Level) WriterOption {
	return func(h *WriterHandler) {
		h.SetMinLevel(min)
	}
}

// NewWriterHandler constructs a handler writing to w. Without options it
// accepts every level, text-encodes, and normalizes records through a
// default [NewNormalizingFormatter].
func NewWriterHandler(w io.Writer, opts ...WriterOption) *WriterHandler {
	h := &WriterHandler{
		w:         w,
		enc:       EncodingText,
		formatter: NewNormalizingFormatter(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// AddInjector implements [Handler].
func (h *WriterHandler) AddInjector(in Injector) Handler {
	h.AppendInjector(in)
	return h
}

// Handle formats, encodes and writes one record.
func (h *WriterHandler) Handle(r Record) error {
	buf := getBuffer()
	defer putBuffer(buf)
	if err := h.encode(buf, h.format(r)); err != nil {
		return err
	}
	return h.write(buf.Bytes())
}

// HandleBatch implements [BatchHandler]: all records are encoded into one
// buffer and delivered in a single write.
func (h *WriterHandler) HandleBatch(records []Record) error {
	buf := getBuffer()
	defer putBuffer(buf)
	for _, r := range records {
		if err := h.encode(buf, h.format(r)); err != nil {
			return err
		}
	}
	return h.write(buf.Bytes())
}

// format runs the configured formatter. A formatter failure degrades to the
// raw record; losing normalization is better than losing the record.
func (h *WriterHandler) format(r Record) Record {
	if h.formatter == nil {
		return r
	}
	fr, err := h.formatter.Format(r)
	if err != nil {
		return r
	}
	return fr
}

func (h *WriterHandler) write(data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(data)
	return err
}

func (h *WriterHandler) encode(buf *bytes.Buffer, r Record) error {
	switch h.enc {
	case EncodingJSON:
		return encodeJSON(buf, r)
	case EncodingConsole:
		encodeConsole(buf, r)
		return nil
	default:
		return encodeText(buf, r)
	}
}

// recordEnvelope fixes the JSON member order of serialized records.
type recordEnvelope struct {
	Time    string  `json:"time"`
	Level   Level   `json:"level"`
	Channel string  `json:"channel"`
	Message string  `json:"message"`
	Context Context `json:"context,omitempty"`
	Extra   Context `json:"extra,omitempty"`
}

func encodeJSON(buf *bytes.Buffer, r Record) error {
	data, err := json.Marshal(recordEnvelope{
		Time:    r.Time().Format(time.RFC3339Nano),
		Level:   r.Level(),
		Channel: r.Channel(),
		Message: r.Message(),
		Context: r.context,
		Extra:   r.extra,
	})
	if err != nil {
		return err
	}
	buf.Write(data)
	buf.WriteByte('\n')
	return nil
}

func encodeText(buf *bytes.Buffer, r Record) error {
	buf.WriteString("time=")
	buf.WriteString(r.Time().Format(time.RFC3339))
	buf.WriteString(" level=")
	buf.WriteString(r.Level().String())
	buf.WriteString(" channel=")
	buf.WriteString(maybeQuote(r.Channel()))
	buf.WriteString(" msg=")
	buf.WriteString(maybeQuote(r.Message()))
	for _, f := range r.context {
		writeTextField(buf, f)
	}
	for _, f := range r.extra {
		writeTextField(buf, f)
	}
	buf.WriteByte('\n')
	return nil
}

func writeTextField(buf *bytes.Buffer, f Field) {
	buf.WriteByte(' ')
	buf.WriteString(f.Key)
	buf.WriteByte('=')
	writeTextValue(buf, f.Value)
}

func writeTextValue(buf *bytes.Buffer, v any) {
	switch x := v.(type) {
	case nil:
		buf.WriteString("null")
	case string:
		buf.WriteString(maybeQuote(x))
	default:
		if data, err := safeMarshal(v); err == nil {
			buf.Write(data)
		} else {
			buf.WriteString(maybeQuote(fmt.Sprint(v)))
		}
	}
}

// maybeQuote quotes values containing whitespace, quotes or separators, and
// leaves plain tokens bare for readability.
func maybeQuote(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, " \t\n\r\"=") {
		return strconv.Quote(s)
	}
	return s
}

func encodeConsole(buf *bytes.Buffer, r Record) {
	buf.WriteString(ansiDim)
	buf.WriteString(r.Time().Format("15:04:05.000"))
	buf.WriteString(ansiReset)
	buf.WriteByte(' ')
	buf.WriteString(levelColor(r.Level()))
	fmt.Fprintf(buf, "%-9s", r.Level().Label())
	buf.WriteString(ansiReset)
	buf.WriteByte(' ')
	if ch := r.Channel(); ch != "" && ch != DefaultChannel {
		buf.WriteString(ansiDim)
		buf.WriteByte('[')
		buf.WriteString(ch)
		buf.WriteByte(']')
		buf.WriteString(ansiReset)
		buf.WriteByte(' ')
	}
	buf.WriteString(r.Message())
	for _, f := range r.context {
		writeConsoleField(buf, f)
	}
	for _, f := range r.extra {
		writeConsoleField(buf, f)
	}
	buf.WriteByte('\n')
}

func writeConsoleField(buf *bytes.Buffer, f Field) {
	buf.WriteByte(' ')
	buf.WriteString(ansiDim)
	buf.WriteString(f.Key)
	buf.WriteByte('=')
	buf.WriteString(ansiReset)
	writeTextValue(buf, f.Value)
}

func levelColor(l Level) string {
	switch {
	case l.AtLeast(LevelError):
		return ansiRed
	case l.AtLeast(LevelWarning):
		return ansiYellow
	case l.AtLeast(LevelInfo):
		return ansiGreen
	default:
		return ansiBlue
	}
}
