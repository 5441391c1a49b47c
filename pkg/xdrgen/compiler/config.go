// Copyright xdrgen authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package compiler wires the lexer, parser, resolver and emitter into the
// single-pass pipeline described by the project's command-line surface:
// read one schema file, resolve it, and emit a paired Go header/source.
package compiler

// Config is a plain value struct describing one compilation, handed by the
// cmd layer into Compile rather than read back out of a package-level
// singleton.
type Config struct {
	// EmitRPC enables RPC-2 dispatch emission for any program declared in
	// the schema.
	EmitRPC bool

	// PackageName is the Go package clause written into both generated
	// files.
	PackageName string

	// InputPath is the schema source file to read.
	InputPath string

	// HeaderPath and SourcePath are the two generated output files: the
	// header carries constant, enum and type declarations, the source
	// carries the embedded runtime library, every codec and its public
	// Marshal/Unmarshal wrappers.
	HeaderPath string
	SourcePath string
}
