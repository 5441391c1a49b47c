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

package parser

import (
	"testing"

	"github.com/xdrgen/xdrgen/internal/assert"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/ast"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/lexer"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/symtab"
)

func parseSrc(t *testing.T, src string) (*ast.Schema, *symtab.Table) {
	t.Helper()

	toks, err := lexer.Lex([]byte(src))
	assert.NoError(t, err)

	table := symtab.New()

	schema, err := Parse(toks, table)
	assert.NoError(t, err)

	return schema, table
}

func TestParse_Const(t *testing.T) {
	schema, table := parseSrc(t, "const MAXLEN = 1024;")

	assert.Equal(t, 1, len(schema.Consts))
	assert.Equal(t, "MAXLEN", schema.Consts[0].Name)
	assert.Equal(t, "1024", schema.Consts[0].Value)
	assert.Equal(t, 1, table.Len())
}

func TestParse_Enum_TrailingComma(t *testing.T) {
	schema, _ := parseSrc(t, "enum Color { RED = 0, GREEN = 1, BLUE = 2, };")

	assert.Equal(t, 1, len(schema.Enums))
	assert.Equal(t, 3, len(schema.Enums[0].Entries))
	assert.Equal(t, "BLUE", schema.Enums[0].Entries[2].Name)
}

func TestParse_StructWithArrayAndVectorMembers(t *testing.T) {
	schema, _ := parseSrc(t, `struct Packet {
		uint32_t id;
		opaque payload<1024>;
		uint32_t tags<>;
		uint32_t fixed[4];
	};`)

	assert.Equal(t, 1, len(schema.Structs))
	s := schema.Structs[0]
	assert.Equal(t, 4, len(s.Members))

	assert.Equal(t, "id", s.Members[0].Name)

	payload := s.Members[1].Type
	assert.True(t, payload.Opaque)
	assert.Equal(t, "1024", payload.VectorBound)
	assert.True(t, !payload.Vector)

	tags := s.Members[2].Type
	assert.True(t, tags.Vector)
	assert.Equal(t, "", tags.VectorBound)

	fixed := s.Members[3].Type
	assert.True(t, fixed.Array)
	assert.Equal(t, "4", fixed.ArraySize)
}

func TestParse_OptionalPointerMember(t *testing.T) {
	schema, _ := parseSrc(t, `struct Node {
		uint32_t value;
		Node *next;
	};`)

	next := schema.Structs[0].Members[1].Type
	assert.True(t, next.Optional)
	assert.Equal(t, "Node", next.Name)
}

func TestParse_ZerocopyOpaque(t *testing.T) {
	schema, _ := parseSrc(t, "struct Blob { zerocopy opaque data<65536>; };")

	data := schema.Structs[0].Members[0].Type
	assert.True(t, data.Zerocopy)
	assert.True(t, data.Opaque)
}

func TestParse_ZerocopyOnNonOpaqueIsFatal(t *testing.T) {
	toks, err := lexer.Lex([]byte("struct Bad { zerocopy uint32_t x; };"))
	assert.NoError(t, err)

	_, err = Parse(toks, symtab.New())
	assert.True(t, err != nil, "expected a syntax error")

	_, ok := err.(*SyntaxError)
	assert.True(t, ok, "expected *SyntaxError")
}

func TestParse_UnionWithDefault(t *testing.T) {
	schema, _ := parseSrc(t, `union Value switch (uint32_t kind) {
		case 0: uint32_t i;
		case 1: void;
		default: opaque raw<256>;
	};`)

	u := schema.Unions[0]
	assert.Equal(t, 3, len(u.Cases))
	assert.Equal(t, "0", u.Cases[0].Label)
	assert.True(t, u.Cases[1].Voided)
	assert.True(t, u.Cases[2].IsDefault)
}

func TestParse_UnionDoubleDefaultIsFatal(t *testing.T) {
	toks, err := lexer.Lex([]byte(`union V switch (uint32_t k) {
		default: void;
		default: void;
	};`))
	assert.NoError(t, err)

	_, err = Parse(toks, symtab.New())
	assert.True(t, err != nil, "expected a syntax error for two default cases")
}

func TestParse_ProgramVersionProcedure(t *testing.T) {
	schema, _ := parseSrc(t, `program PING {
		version PING_V1 {
			void PING(void) = 1;
		} = 1;
	} = 100;`)

	assert.Equal(t, 1, len(schema.Programs))
	prog := schema.Programs[0]
	assert.Equal(t, "100", prog.ID)
	assert.Equal(t, 1, len(prog.Versions))
	assert.Equal(t, "1", prog.Versions[0].ID)
	assert.Equal(t, 1, len(prog.Versions[0].Procedures))
	assert.Equal(t, "PING", prog.Versions[0].Procedures[0].Name)
}

func TestParse_DuplicateIdentifierIsFatal(t *testing.T) {
	toks, err := lexer.Lex([]byte("const A = 1; struct A { uint32_t x; };"))
	assert.NoError(t, err)

	_, err = Parse(toks, symtab.New())
	assert.True(t, err != nil, "expected a duplicate symbol error")

	_, ok := err.(*symtab.DuplicateSymbolError)
	assert.True(t, ok, "expected *symtab.DuplicateSymbolError")
}

func TestParse_MalformedDeclarationIsFatal(t *testing.T) {
	toks, err := lexer.Lex([]byte("struct { uint32_t x; };"))
	assert.NoError(t, err)

	_, err = Parse(toks, symtab.New())
	assert.True(t, err != nil, "expected a syntax error for a missing struct name")
}

func TestParse_Typedef(t *testing.T) {
	schema, _ := parseSrc(t, "typedef uint32_t Handle;")

	assert.Equal(t, 1, len(schema.Typedefs))
	assert.Equal(t, "Handle", schema.Typedefs[0].Name)
	assert.Equal(t, "uint32_t", schema.Typedefs[0].Underlying.Name)
}
