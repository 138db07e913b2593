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

import "time"

// DefaultChannel is the channel name assigned to records created without an
// explicit channel.
const DefaultChannel = "default"

// Record is one log event flowing through the pipeline. Records are
// immutable: every With* method returns a modified copy and leaves the
// receiver untouched, so a record already handed to one handler can never be
// altered by an injector running for another.
//
// The zero value is not useful; construct records with [NewRecord], or let
// [Logger.Log] do it.
type Record struct {
	level   Level
	message string
	context Context
	time    time.Time
	channel string
	extra   Context
}

// NewRecord creates a record with the given severity and message. The
// timestamp defaults to the current time in UTC and the channel to
// [DefaultChannel].
func NewRecord(level Level, message string) Record {
	return Record{
		level:   level,
		message: message,
		time:    time.Now().UTC(),
		channel: DefaultChannel,
	}
}

// Level returns the record's severity.
func (r Record) Level() Level {
	return r.level
}

// Message returns the record's message text.
func (r Record) Message() string {
	return r.message
}

// Context returns a copy of the caller-supplied fields. The copy keeps the
// record immutable even if the returned slice is modified.
func (r Record) Context() Context {
	return r.context.Clone()
}

// Time returns the record's timestamp.
func (r Record) Time() time.Time {
	return r.time
}

// Channel returns the record's channel name.
func (r Record) Channel() string {
	return r.channel
}

// Extra returns a copy of the injector-added fields. Extra is kept separate
// from Context so enrichment never collides with caller data.
func (r Record) Extra() Context {
	return r.extra.Clone()
}

// WithMessage returns a copy of the record with a different message.
func (r Record) WithMessage(message string) Record {
	r.message = message
	return r
}

// WithContext returns a copy of the record with the context replaced.
func (r Record) WithContext(c Context) Record {
	r.context = c.Clone()
	return r
}

// WithMessageAndContext returns a copy with both message and context
// replaced. Formatters use this to install interpolated output in one step.
func (r Record) WithMessageAndContext(message string, c Context) Record {
	r.message = message
	r.context = c.Clone()
	return r
}

// WithChannel returns a copy of the record assigned to another channel.
func (r Record) WithChannel(channel string) Record {
	r.channel = channel
	return r
}

// WithTime returns a copy of the record with a different timestamp.
func (r Record) WithTime(t time.Time) Record {
	r.time = t
	return r
}

// WithExtra returns a copy of the record with the given fields merged into
// its extra set. Existing keys are replaced in place, new keys appended;
// this is the primitive injectors build on.
func (r Record) WithExtra(fields ...Field) Record {
	r.extra = r.extra.Merge(Context(fields))
	return r
}
