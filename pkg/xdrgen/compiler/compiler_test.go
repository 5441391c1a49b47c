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

package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/xdrgen/xdrgen/internal/assert"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/emitter"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/parser"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/resolver"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/symtab"
)

func writeSchema(t *testing.T, dir, src string) string {
	t.Helper()

	path := filepath.Join(dir, "schema.x")
	assert.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	return path
}

func TestCompile_WritesHeaderAndSource(t *testing.T) {
	dir := t.TempDir()

	input := writeSchema(t, dir, `
		struct Point {
			uint32_t x;
			uint32_t y;
		};
	`)

	cfg := Config{
		PackageName: "xdrtest",
		InputPath:   input,
		SourcePath:  filepath.Join(dir, "out.go"),
		HeaderPath:  filepath.Join(dir, "out_header.go"),
	}

	assert.NoError(t, Compile(cfg, nil))

	header, err := os.ReadFile(cfg.HeaderPath)
	assert.NoError(t, err)
	assert.True(t, strings.Contains(string(header), "package xdrtest"))
	assert.True(t, strings.Contains(string(header), "type Point struct {"))

	source, err := os.ReadFile(cfg.SourcePath)
	assert.NoError(t, err)
	assert.True(t, strings.Contains(string(source), "package xdrtest"))
	assert.True(t, strings.Contains(string(source), "func marshalPoint"))
	assert.True(t, strings.Contains(string(source), "func MarshalPoint"))
}

func TestCompile_RPCFlagEmitsDispatch(t *testing.T) {
	dir := t.TempDir()

	input := writeSchema(t, dir, `
		struct PingArgs { uint32_t nonce; };
		struct PingReply { uint32_t echo; };

		program PINGPROG {
			version PINGV1 {
				PingReply PING(PingArgs) = 1;
			} = 1;
		} = 100;
	`)

	cfg := Config{
		EmitRPC:     true,
		PackageName: "xdrtest",
		InputPath:   input,
		SourcePath:  filepath.Join(dir, "out.go"),
		HeaderPath:  filepath.Join(dir, "out_header.go"),
	}

	assert.NoError(t, Compile(cfg, nil))

	source, err := os.ReadFile(cfg.SourcePath)
	assert.NoError(t, err)
	assert.True(t, strings.Contains(string(source), "type RPCTransport interface {"))
}

func TestCompile_NoRPCFlagOmitsDispatch(t *testing.T) {
	dir := t.TempDir()

	input := writeSchema(t, dir, `
		program PINGPROG {
			version PINGV1 {
				void PING(void) = 1;
			} = 1;
		} = 100;
	`)

	cfg := Config{
		PackageName: "xdrtest",
		InputPath:   input,
		SourcePath:  filepath.Join(dir, "out.go"),
		HeaderPath:  filepath.Join(dir, "out_header.go"),
	}

	assert.NoError(t, Compile(cfg, nil))

	source, err := os.ReadFile(cfg.SourcePath)
	assert.NoError(t, err)
	assert.True(t, !strings.Contains(string(source), "RPCTransport"))
}

func TestCompile_MissingInputFileIsFatal(t *testing.T) {
	dir := t.TempDir()

	cfg := Config{
		PackageName: "xdrtest",
		InputPath:   filepath.Join(dir, "missing.x"),
		SourcePath:  filepath.Join(dir, "out.go"),
		HeaderPath:  filepath.Join(dir, "out_header.go"),
	}

	err := Compile(cfg, nil)
	assert.True(t, err != nil, "expected a file-open error")

	_, ok := err.(*FileOpenError)
	assert.True(t, ok, "expected *FileOpenError")
}

func TestCompile_SyntaxErrorIsFatalAndWritesNoOutput(t *testing.T) {
	dir := t.TempDir()

	input := writeSchema(t, dir, "struct { uint32_t x; };")

	cfg := Config{
		PackageName: "xdrtest",
		InputPath:   input,
		SourcePath:  filepath.Join(dir, "out.go"),
		HeaderPath:  filepath.Join(dir, "out_header.go"),
	}

	err := Compile(cfg, nil)
	assert.True(t, err != nil, "expected a syntax error")

	_, ok := err.(*parser.SyntaxError)
	assert.True(t, ok, "expected *parser.SyntaxError")

	_, statErr := os.Stat(cfg.HeaderPath)
	assert.True(t, os.IsNotExist(statErr), "no partial header file should be written")
}

func TestCompile_UnknownTypeIsFatal(t *testing.T) {
	dir := t.TempDir()

	input := writeSchema(t, dir, "struct Bad { Nonexistent x; };")

	cfg := Config{
		PackageName: "xdrtest",
		InputPath:   input,
		SourcePath:  filepath.Join(dir, "out.go"),
		HeaderPath:  filepath.Join(dir, "out_header.go"),
	}

	err := Compile(cfg, nil)
	assert.True(t, err != nil, "expected an unknown type error")

	_, ok := err.(*resolver.UnknownTypeError)
	assert.True(t, ok, "expected *resolver.UnknownTypeError")
}

func TestCompile_CyclicDefinitionIsFatal(t *testing.T) {
	dir := t.TempDir()

	input := writeSchema(t, dir, `
		struct A { B b; };
		struct B { A a; };
	`)

	cfg := Config{
		PackageName: "xdrtest",
		InputPath:   input,
		SourcePath:  filepath.Join(dir, "out.go"),
		HeaderPath:  filepath.Join(dir, "out_header.go"),
	}

	err := Compile(cfg, nil)
	assert.True(t, err != nil, "expected a cyclic definition error")

	_, ok := err.(*emitter.CyclicDefinitionError)
	assert.True(t, ok, "expected *emitter.CyclicDefinitionError")
}

func TestCompile_DuplicateSymbolIsFatal(t *testing.T) {
	dir := t.TempDir()

	input := writeSchema(t, dir, "const A = 1; struct A { uint32_t x; };")

	cfg := Config{
		PackageName: "xdrtest",
		InputPath:   input,
		SourcePath:  filepath.Join(dir, "out.go"),
		HeaderPath:  filepath.Join(dir, "out_header.go"),
	}

	err := Compile(cfg, nil)
	assert.True(t, err != nil, "expected a duplicate symbol error")

	_, ok := err.(*symtab.DuplicateSymbolError)
	assert.True(t, ok, "expected *symtab.DuplicateSymbolError")
}

func TestCompile_AcceptsExplicitLogger(t *testing.T) {
	dir := t.TempDir()

	input := writeSchema(t, dir, "struct Point { uint32_t x; };")

	cfg := Config{
		PackageName: "xdrtest",
		InputPath:   input,
		SourcePath:  filepath.Join(dir, "out.go"),
		HeaderPath:  filepath.Join(dir, "out_header.go"),
	}

	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)

	assert.NoError(t, Compile(cfg, log))
}

// TestCompile_FixtureSchemas compiles every checked-in example schema under
// testdata/xdr, exercising the full vector-of-aggregate, zerocopy-union and
// RPC-dispatch paths end to end without asserting on exact generated text.
func TestCompile_FixtureSchemas(t *testing.T) {
	fixtures := []struct {
		file    string
		emitRPC bool
	}{
		{"addressbook.x", false},
		{"blockstore.x", true},
	}

	for _, f := range fixtures {
		dir := t.TempDir()

		cfg := Config{
			EmitRPC:     f.emitRPC,
			PackageName: "xdrtest",
			InputPath:   filepath.Join("..", "..", "..", "testdata", "xdr", f.file),
			SourcePath:  filepath.Join(dir, "out.go"),
			HeaderPath:  filepath.Join(dir, "out_header.go"),
		}

		assert.NoError(t, Compile(cfg, nil))

		header, err := os.ReadFile(cfg.HeaderPath)
		assert.NoError(t, err)
		assert.True(t, strings.Contains(string(header), "package xdrtest"), "fixture %s", f.file)

		source, err := os.ReadFile(cfg.SourcePath)
		assert.NoError(t, err)
		assert.True(t, strings.Contains(string(source), "func NewWriteCursor"), "fixture %s embeds runtime", f.file)
	}
}
