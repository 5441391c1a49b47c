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

// Package lexer tokenises an XDR interface-definition schema (RFC 4506 plus
// this generator's extensions: bounded/unbounded opaque, fixed and variable
// arrays, optionals, RPC program blocks, and the `zerocopy` pragma).
package lexer

import "github.com/xdrgen/xdrgen/pkg/xdrgen/ast"

// Kind classifies one lexical token.
type Kind int

// Token kinds. Keyword-shaped identifiers (const, struct, ...) are lexed as
// Ident and reclassified by the parser, mirroring how a small hand-rolled
// lexer for a grammar this size is conventionally split from its parser.
const (
	Ident Kind = iota
	Number
	String
	LBrace    // {
	RBrace    // }
	LParen    // (
	RParen    // )
	LBracket  // [
	RBracket  // ]
	Angle     // <
	RAngle    // >
	Semi      // ;
	Comma     // ,
	Equals    // =
	Star      // *
	Colon     // :
	EOF
)

// Token is one lexical token together with its source position.
type Token struct {
	Kind  Kind
	Text  string
	Pos   ast.Position
}

// keywords recognised by the grammar. The lexer doesn't need these, and the
// parser matches keywords by their literal text rather than through this
// list; it documents every reserved word the grammar accepts and backs
// IsKeyword.
var keywords = map[string]bool{
	"const": true, "enum": true, "typedef": true, "struct": true,
	"union": true, "switch": true, "case": true, "default": true,
	"opaque": true, "string": true, "void": true, "program": true,
	"version": true, "zerocopy": true,
}

// IsKeyword reports whether text is one of the grammar's reserved words.
func IsKeyword(text string) bool {
	return keywords[text]
}
