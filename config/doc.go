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

// Package config builds logkit pipelines from declarative configuration files.
//
// The package reads a logger description from YAML, JSON or TOML (the format
// is detected from the file extension) and turns it into a ready
// [rivaas.dev/logkit.Logger]. It exists so deployments can reshape their
// logging (levels, encodings, buffering, injectors) without a recompile.
//
// # Quick Start
//
// Load a description and build the pipeline:
//
//	cfg, err := config.Load("logging.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	logger, err := cfg.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Close()
//
// A typical description:
//
//	channel: api
//	time_zone: UTC
//	injectors: [host, pid]
//	formatter:
//	  max_depth: 6
//	  base_path: /srv/app
//	handlers:
//	  - type: writer
//	    min_level: info
//	    options:
//	      target: stdout
//	      encoding: json
//	  - type: buffer
//	    options:
//	      limit: 250
//	      handler:
//	        type: writer
//	        options: {target: stderr}
//
// # Handler Types
//
// Four handler types are built in:
//
//   - "writer": a [rivaas.dev/logkit.WriterHandler] aimed at stdout, stderr
//     or discard, with json, text or console encoding
//   - "buffer": a [rivaas.dev/logkit.BufferHandler] wrapping another handler
//     description given under options.handler
//   - "nop": discards everything
//   - "test": a recording [rivaas.dev/logkit.TestHandler]
//
// Additional types are added with [RegisterHandler]; additional injector
// names with [RegisterInjector]. Registration is typically done from init
// functions, before any configuration is built.
//
// # Levels
//
// Wherever a level is expected, both names ("warning") and priorities ("40")
// are accepted.
//
// # Errors
//
// Failures are reported as [*Error] values carrying the stage (load, parse,
// build) and, where known, the configuration field that caused the failure,
// so a bad deployment manifest names its own broken line.
package config
