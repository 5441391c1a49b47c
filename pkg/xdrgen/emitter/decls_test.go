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

package emitter

import (
	"strings"
	"testing"

	"github.com/xdrgen/xdrgen/internal/assert"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/ast"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/lexer"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/parser"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/resolver"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/symtab"
)

func compileSchema(t *testing.T, src string) *ast.Schema {
	t.Helper()

	toks, err := lexer.Lex([]byte(src))
	assert.NoError(t, err)

	table := symtab.New()

	schema, err := parser.Parse(toks, table)
	assert.NoError(t, err)
	assert.NoError(t, resolver.Resolve(schema, table))

	return schema
}

func TestEmitDeclarations_ConstAndEnum(t *testing.T) {
	schema := compileSchema(t, `
		const MAXLEN = 1024;
		enum Color { RED = 0, GREEN = 1 };
	`)

	p := NewPrinter()
	assert.NoError(t, EmitDeclarations(p, schema))

	out := p.String()
	assert.True(t, strings.Contains(out, "const MAXLEN = 1024"))
	assert.True(t, strings.Contains(out, "type Color = uint32"))
	assert.True(t, strings.Contains(out, "RED Color = 0"))
	assert.True(t, strings.Contains(out, "GREEN Color = 1"))
}

func TestEmitDeclarations_StructFields(t *testing.T) {
	schema := compileSchema(t, `
		struct Packet {
			uint32_t id;
			opaque payload<1024>;
			uint32_t tags<>;
			uint32_t fixed[4];
			Packet *next;
		};
	`)

	p := NewPrinter()
	assert.NoError(t, EmitDeclarations(p, schema))

	out := p.String()
	assert.True(t, strings.Contains(out, "type Packet struct {"))
	assert.True(t, strings.Contains(out, "Id uint32"))
	assert.True(t, strings.Contains(out, "Payload []byte"))
	assert.True(t, strings.Contains(out, "NumTags uint32"))
	assert.True(t, strings.Contains(out, "Tags []uint32"))
	assert.True(t, strings.Contains(out, "Fixed [4]uint32"))
	assert.True(t, strings.Contains(out, "Next *Packet"))
}

func TestEmitDeclarations_FixedOpaqueArrayNoLengthField(t *testing.T) {
	schema := compileSchema(t, `struct Hash { opaque digest[32]; };`)

	p := NewPrinter()
	assert.NoError(t, EmitDeclarations(p, schema))

	out := p.String()
	assert.True(t, strings.Contains(out, "Digest [32]byte"))
	assert.True(t, !strings.Contains(out, "NumDigest"))
}

func TestEmitDeclarations_ZerocopyField(t *testing.T) {
	schema := compileSchema(t, `struct Blob { zerocopy opaque data<65536>; };`)

	p := NewPrinter()
	assert.NoError(t, EmitDeclarations(p, schema))

	assert.True(t, strings.Contains(p.String(), "Data IovecRef"))
}

func TestEmitDeclarations_UnionFields(t *testing.T) {
	schema := compileSchema(t, `
		union Value switch (uint32_t kind) {
			case 0: uint32_t i;
			case 1: void;
			default: opaque raw<256>;
		};
	`)

	p := NewPrinter()
	assert.NoError(t, EmitDeclarations(p, schema))

	out := p.String()
	assert.True(t, strings.Contains(out, "type Value struct {"))
	assert.True(t, strings.Contains(out, "Kind uint32"))
	assert.True(t, strings.Contains(out, "I uint32"))
	assert.True(t, strings.Contains(out, "Raw []byte"))
}

func TestEmitDeclarations_TopologicalOrderAcrossStructs(t *testing.T) {
	// Inner is declared after Outer in source order, but EmitDeclarations
	// must still emit Inner first since Outer embeds it by value.
	schema := compileSchema(t, `
		struct Outer { Inner inner; };
		struct Inner { uint32_t x; };
	`)

	p := NewPrinter()
	assert.NoError(t, EmitDeclarations(p, schema))

	out := p.String()
	innerIdx := strings.Index(out, "type Inner struct")
	outerIdx := strings.Index(out, "type Outer struct")

	assert.True(t, innerIdx >= 0 && outerIdx >= 0, "expected both types emitted")
	assert.True(t, innerIdx < outerIdx, "expected Inner emitted before Outer")
}

func TestEmitDeclarations_PointerIndirectionBreaksCycle(t *testing.T) {
	// A value-by-pointer (optional) reference never forces an ordering
	// dependency, so a mutually-referential pair linked only via pointers
	// must emit successfully.
	schema := compileSchema(t, `
		struct A { B *b; };
		struct B { A *a; };
	`)

	p := NewPrinter()
	assert.NoError(t, EmitDeclarations(p, schema))
}

func TestEmitDeclarations_CyclicValueEmbeddingIsFatal(t *testing.T) {
	toks, err := lexer.Lex([]byte(`
		struct A { B b; };
		struct B { A a; };
	`))
	assert.NoError(t, err)

	table := symtab.New()
	schema, err := parser.Parse(toks, table)
	assert.NoError(t, err)
	assert.NoError(t, resolver.Resolve(schema, table))

	p := NewPrinter()
	err = EmitDeclarations(p, schema)
	assert.True(t, err != nil, "expected a cyclic definition error")

	_, ok := err.(*CyclicDefinitionError)
	assert.True(t, ok, "expected *CyclicDefinitionError")
}
