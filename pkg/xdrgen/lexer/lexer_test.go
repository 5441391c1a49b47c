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

package lexer

import (
	"testing"

	"github.com/xdrgen/xdrgen/internal/assert"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}

	return out
}

func TestLex_StructDeclaration(t *testing.T) {
	toks, err := Lex([]byte("struct Point { uint32_t x; uint32_t y; };"))
	assert.NoError(t, err)

	assert.Equal(t, []Kind{
		Ident, Ident, LBrace,
		Ident, Ident, Semi,
		Ident, Ident, Semi,
		RBrace, Semi, EOF,
	}, kinds(toks))
}

func TestLex_SkipsLineAndBlockComments(t *testing.T) {
	toks, err := Lex([]byte("const A = 1; // trailing comment\n/* block\ncomment */ const B = 2;"))
	assert.NoError(t, err)

	assert.Equal(t, []Kind{
		Ident, Ident, Equals, Number, Semi,
		Ident, Ident, Equals, Number, Semi,
		EOF,
	}, kinds(toks))
}

func TestLex_SkipsPercentDirectiveLines(t *testing.T) {
	toks, err := Lex([]byte("%#include \"foo.h\"\nconst A = 1;"))
	assert.NoError(t, err)

	assert.Equal(t, []Kind{Ident, Ident, Equals, Number, Semi, EOF}, kinds(toks))
}

func TestLex_NegativeAndHexNumbers(t *testing.T) {
	toks, err := Lex([]byte("-5 0xFF"))
	assert.NoError(t, err)

	assert.Equal(t, Number, toks[0].Kind)
	assert.Equal(t, "-5", toks[0].Text)
	assert.Equal(t, Number, toks[1].Kind)
	assert.Equal(t, "0xFF", toks[1].Text)
}

func TestLex_StringLiteral(t *testing.T) {
	toks, err := Lex([]byte(`"hello world"`))
	assert.NoError(t, err)

	assert.Equal(t, String, toks[0].Kind)
	assert.Equal(t, "hello world", toks[0].Text)
}

func TestLex_UnterminatedStringIsFatal(t *testing.T) {
	_, err := Lex([]byte(`"oops`))
	assert.True(t, err != nil, "expected an unterminated string error")

	_, ok := err.(*Error)
	assert.True(t, ok, "expected *lexer.Error")
}

func TestLex_UnexpectedCharacterIsFatal(t *testing.T) {
	_, err := Lex([]byte("@"))
	assert.True(t, err != nil, "expected an unexpected-character error")
}

func TestLex_AllPunctuationKinds(t *testing.T) {
	toks, err := Lex([]byte("{}()[]<>;,=*:"))
	assert.NoError(t, err)

	assert.Equal(t, []Kind{
		LBrace, RBrace, LParen, RParen, LBracket, RBracket,
		Angle, RAngle, Semi, Comma, Equals, Star, Colon, EOF,
	}, kinds(toks))
}

func TestLex_EmptyInputYieldsOnlyEOF(t *testing.T) {
	toks, err := Lex([]byte(""))
	assert.NoError(t, err)
	assert.Equal(t, []Kind{EOF}, kinds(toks))
}

func TestIsKeyword(t *testing.T) {
	assert.True(t, IsKeyword("struct"))
	assert.True(t, IsKeyword("zerocopy"))
	assert.True(t, !IsKeyword("Point"))
}

func TestLex_TracksLineAndColumn(t *testing.T) {
	toks, err := Lex([]byte("a\nbb"))
	assert.NoError(t, err)

	assert.Equal(t, 1, toks[0].Pos.Line)
	assert.Equal(t, 1, toks[0].Pos.Col)
	assert.Equal(t, 2, toks[1].Pos.Line)
	assert.Equal(t, 1, toks[1].Pos.Col)
}
