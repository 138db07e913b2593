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

import "fmt"

// Stages at which configuration processing can fail.
const (
	// StageLoad covers reading the file and detecting its format.
	StageLoad = "load"

	// StageParse covers unmarshalling and decoding into [Config].
	StageParse = "parse"

	// StageBuild covers turning a [Config] into a running logger.
	StageBuild = "build"
)

// Error describes a configuration failure with enough context to point at
// the offending part of the description: the processing stage, the field
// involved when one is known, and the underlying cause.
type Error struct {
	Stage string // One of [StageLoad], [StageParse], [StageBuild].
	Field string // The configuration field at fault, e.g. "handlers[1].type" (optional).
	Err   error  // The underlying error.
}

// Error returns the formatted message, including the field when set.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config %s: %s: %v", e.Stage, e.Field, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error so errors.Is and errors.As see
// through the wrapper.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an [Error] for the given stage.
func NewError(stage string, err error) *Error {
	return &Error{Stage: stage, Err: err}
}

// NewFieldError creates an [Error] tied to a specific configuration field.
func NewFieldError(stage, field string, err error) *Error {
	return &Error{Stage: stage, Field: field, Err: err}
}
