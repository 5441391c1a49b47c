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

// Package parser turns a lexer.Token stream into an *ast.Schema, registering
// every declared identifier with a symtab.Table as it goes (duplicate
// identifiers are therefore detected during parsing, not in a later pass).
package parser

import (
	"fmt"

	"github.com/xdrgen/xdrgen/pkg/xdrgen/ast"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/lexer"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/symtab"
)

// Parse consumes tokens (as produced by lexer.Lex) and returns the flat set
// of declarations found, inserting each into table. Parsing stops at the
// first error: a malformed declaration (*SyntaxError) or a repeated
// identifier (*symtab.DuplicateSymbolError).
func Parse(tokens []lexer.Token, table *symtab.Table) (*ast.Schema, error) {
	p := &parser{toks: tokens, table: table, schema: &ast.Schema{}}

	for !p.at(lexer.EOF) {
		if err := p.declaration(); err != nil {
			return nil, err
		}
	}

	return p.schema, nil
}

type parser struct {
	toks   []lexer.Token
	pos    int
	table  *symtab.Table
	schema *ast.Schema
}

func (p *parser) cur() lexer.Token {
	return p.toks[p.pos]
}

func (p *parser) at(k lexer.Kind) bool {
	return p.cur().Kind == k
}

func (p *parser) atKeyword(kw string) bool {
	return p.cur().Kind == lexer.Ident && p.cur().Text == kw
}

func (p *parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}

	return t
}

func (p *parser) expect(k lexer.Kind, what string) (lexer.Token, error) {
	if !p.at(k) {
		return lexer.Token{}, NewSyntaxError(p.cur().Pos, fmt.Sprintf("expected %s, found %q", what, p.cur().Text))
	}

	return p.advance(), nil
}

func (p *parser) expectKeyword(kw string) error {
	if !p.atKeyword(kw) {
		return NewSyntaxError(p.cur().Pos, fmt.Sprintf("expected keyword %q, found %q", kw, p.cur().Text))
	}

	p.advance()

	return nil
}

func (p *parser) ident(what string) (lexer.Token, error) {
	return p.expect(lexer.Ident, what)
}

// literal accepts a number or identifier (a constant reference), returning
// its literal text unevaluated, per the specification's non-goal of
// interpreting constant expressions.
func (p *parser) literal(what string) (string, error) {
	if p.at(lexer.Number) || p.at(lexer.Ident) {
		return p.advance().Text, nil
	}

	return "", NewSyntaxError(p.cur().Pos, fmt.Sprintf("expected %s", what))
}

func (p *parser) declaration() error {
	switch {
	case p.atKeyword("const"):
		return p.constDecl()
	case p.atKeyword("enum"):
		return p.enumDecl()
	case p.atKeyword("typedef"):
		return p.typedefDecl()
	case p.atKeyword("struct"):
		return p.structDecl()
	case p.atKeyword("union"):
		return p.unionDecl()
	case p.atKeyword("program"):
		return p.programDecl()
	default:
		return NewSyntaxError(p.cur().Pos, fmt.Sprintf("expected a declaration, found %q", p.cur().Text))
	}
}

func (p *parser) constDecl() error {
	pos := p.cur().Pos

	if err := p.expectKeyword("const"); err != nil {
		return err
	}

	name, err := p.ident("constant name")
	if err != nil {
		return err
	}

	if _, err := p.expect(lexer.Equals, "'='"); err != nil {
		return err
	}

	value, err := p.literal("constant value")
	if err != nil {
		return err
	}

	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return err
	}

	c := &ast.Constant{Name: name.Text, Value: value, Pos: pos}
	if err := p.table.Insert(c.Name, ast.CategoryConst, c, pos); err != nil {
		return err
	}

	p.schema.Consts = append(p.schema.Consts, c)

	return nil
}

func (p *parser) enumDecl() error {
	pos := p.cur().Pos

	if err := p.expectKeyword("enum"); err != nil {
		return err
	}

	name, err := p.ident("enum name")
	if err != nil {
		return err
	}

	if _, err := p.expect(lexer.LBrace, "'{'"); err != nil {
		return err
	}

	e := &ast.Enum{Name: name.Text, Pos: pos}

	for {
		entryName, err := p.ident("enum entry name")
		if err != nil {
			return err
		}

		if _, err := p.expect(lexer.Equals, "'='"); err != nil {
			return err
		}

		value, err := p.literal("enum entry value")
		if err != nil {
			return err
		}

		e.Entries = append(e.Entries, ast.EnumEntry{Name: entryName.Text, Value: value})

		if p.at(lexer.Comma) {
			p.advance()

			if p.at(lexer.RBrace) {
				break // trailing comma
			}

			continue
		}

		break
	}

	if _, err := p.expect(lexer.RBrace, "'}'"); err != nil {
		return err
	}

	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return err
	}

	if err := p.table.Insert(e.Name, ast.CategoryEnum, e, pos); err != nil {
		return err
	}

	p.schema.Enums = append(p.schema.Enums, e)

	return nil
}

func (p *parser) typedefDecl() error {
	pos := p.cur().Pos

	if err := p.expectKeyword("typedef"); err != nil {
		return err
	}

	ref, name, err := p.declarator()
	if err != nil {
		return err
	}

	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return err
	}

	t := &ast.Typedef{Name: name, Underlying: ref, Pos: pos}
	if err := p.table.Insert(t.Name, ast.CategoryTypedef, t, pos); err != nil {
		return err
	}

	p.schema.Typedefs = append(p.schema.Typedefs, t)

	return nil
}

func (p *parser) structDecl() error {
	pos := p.cur().Pos

	if err := p.expectKeyword("struct"); err != nil {
		return err
	}

	name, err := p.ident("struct name")
	if err != nil {
		return err
	}

	if _, err := p.expect(lexer.LBrace, "'{'"); err != nil {
		return err
	}

	s := &ast.Struct{Name: name.Text, Pos: pos}

	for !p.at(lexer.RBrace) {
		ref, memberName, err := p.declarator()
		if err != nil {
			return err
		}

		if _, err := p.expect(lexer.Semi, "';'"); err != nil {
			return err
		}

		s.Members = append(s.Members, ast.Member{Name: memberName, Type: ref})
	}

	p.advance() // '}'

	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return err
	}

	if err := p.table.Insert(s.Name, ast.CategoryStruct, s, pos); err != nil {
		return err
	}

	p.schema.Structs = append(p.schema.Structs, s)

	return nil
}

func (p *parser) unionDecl() error {
	pos := p.cur().Pos

	if err := p.expectKeyword("union"); err != nil {
		return err
	}

	name, err := p.ident("union name")
	if err != nil {
		return err
	}

	if err := p.expectKeyword("switch"); err != nil {
		return err
	}

	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return err
	}

	pivotRef, pivotName, err := p.declarator()
	if err != nil {
		return err
	}

	if _, err := p.expect(lexer.RParen, "')'"); err != nil {
		return err
	}

	if _, err := p.expect(lexer.LBrace, "'{'"); err != nil {
		return err
	}

	u := &ast.Union{Name: name.Text, PivotType: pivotRef, PivotName: pivotName, Pos: pos}

	sawDefault := false
	seenLabels := map[string]bool{}

	for p.atKeyword("case") || p.atKeyword("default") {
		isDefault := p.atKeyword("default")
		p.advance()

		var label string

		if isDefault {
			if sawDefault {
				return NewSyntaxError(p.cur().Pos, "union has more than one default case")
			}

			sawDefault = true
		} else {
			labelPos := p.cur().Pos

			label, err = p.literal("case label")
			if err != nil {
				return err
			}

			if seenLabels[label] {
				return NewSyntaxError(labelPos, fmt.Sprintf("union has more than one case %s", label))
			}

			seenLabels[label] = true
		}

		if _, err := p.expect(lexer.Colon, "':'"); err != nil {
			return err
		}

		uc := ast.UnionCase{Label: label, IsDefault: isDefault}

		if p.atKeyword("void") {
			p.advance()
			uc.Voided = true

			if _, err := p.expect(lexer.Semi, "';'"); err != nil {
				return err
			}
		} else {
			ref, caseName, err := p.declarator()
			if err != nil {
				return err
			}

			if _, err := p.expect(lexer.Semi, "';'"); err != nil {
				return err
			}

			refCopy := ref
			uc.Type = &refCopy
			uc.Name = caseName
		}

		u.Cases = append(u.Cases, uc)
	}

	if _, err := p.expect(lexer.RBrace, "'}'"); err != nil {
		return err
	}

	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return err
	}

	if err := p.table.Insert(u.Name, ast.CategoryUnion, u, pos); err != nil {
		return err
	}

	p.schema.Unions = append(p.schema.Unions, u)

	return nil
}

func (p *parser) programDecl() error {
	pos := p.cur().Pos

	if err := p.expectKeyword("program"); err != nil {
		return err
	}

	name, err := p.ident("program name")
	if err != nil {
		return err
	}

	if _, err := p.expect(lexer.LBrace, "'{'"); err != nil {
		return err
	}

	prog := &ast.Program{Name: name.Text, Pos: pos}

	for p.atKeyword("version") {
		p.advance()

		vname, err := p.ident("version name")
		if err != nil {
			return err
		}

		if _, err := p.expect(lexer.LBrace, "'{'"); err != nil {
			return err
		}

		v := ast.Version{Name: vname.Text}

		for !p.at(lexer.RBrace) {
			replyRef, err := p.typeSpec()
			if err != nil {
				return err
			}

			pname, err := p.ident("procedure name")
			if err != nil {
				return err
			}

			if _, err := p.expect(lexer.LParen, "'('"); err != nil {
				return err
			}

			callRef, err := p.typeSpec()
			if err != nil {
				return err
			}

			if _, err := p.expect(lexer.RParen, "')'"); err != nil {
				return err
			}

			if _, err := p.expect(lexer.Equals, "'='"); err != nil {
				return err
			}

			id, err := p.literal("procedure id")
			if err != nil {
				return err
			}

			if _, err := p.expect(lexer.Semi, "';'"); err != nil {
				return err
			}

			v.Procedures = append(v.Procedures, ast.Procedure{
				Name: pname.Text, ID: id, CallType: callRef, ReplyType: replyRef,
			})
		}

		p.advance() // '}'

		if _, err := p.expect(lexer.Equals, "'='"); err != nil {
			return err
		}

		vid, err := p.literal("version id")
		if err != nil {
			return err
		}

		v.ID = vid

		if _, err := p.expect(lexer.Semi, "';'"); err != nil {
			return err
		}

		prog.Versions = append(prog.Versions, v)
	}

	if _, err := p.expect(lexer.RBrace, "'}'"); err != nil {
		return err
	}

	if _, err := p.expect(lexer.Equals, "'='"); err != nil {
		return err
	}

	id, err := p.literal("program id")
	if err != nil {
		return err
	}

	prog.ID = id

	if _, err := p.expect(lexer.Semi, "';'"); err != nil {
		return err
	}

	// Program names are never referenced as types, so (per section 4.3)
	// they don't participate in the constant/enum/typedef/struct/union
	// symbol table; only those five categories are name-unique together.
	p.schema.Programs = append(p.schema.Programs, prog)

	return nil
}

// typeSpec parses a bare base type name (no declarator suffixes), used for
// RPC call/reply types which are never arrays, vectors or optionals.
func (p *parser) typeSpec() (ast.TypeRef, error) {
	if p.atKeyword("void") {
		p.advance()
		return ast.TypeRef{Name: ast.BuiltinVoid, Builtin: true}, nil
	}

	name, err := p.ident("type name")
	if err != nil {
		return ast.TypeRef{}, err
	}

	return ast.TypeRef{Name: name.Text, Builtin: ast.IsBuiltin(name.Text)}, nil
}

// declarator parses "TYPE [*]NAME [ [N] | <[N]> ]", the shape shared by
// typedefs, struct members and union case payloads. It returns the
// resulting type reference and the declared name.
func (p *parser) declarator() (ast.TypeRef, string, error) {
	var ref ast.TypeRef

	if p.atKeyword("zerocopy") {
		p.advance()
		ref.Zerocopy = true
	}

	switch {
	case p.atKeyword("opaque"):
		p.advance()
		ref.Opaque = true
		ref.Name = "opaque"
	case p.atKeyword("string"):
		p.advance()
		ref.Name = ast.BuiltinString
		ref.Builtin = true
	default:
		name, err := p.ident("type name")
		if err != nil {
			return ast.TypeRef{}, "", err
		}

		ref.Name = name.Text
		ref.Builtin = ast.IsBuiltin(name.Text)
	}

	if p.at(lexer.Star) {
		p.advance()
		ref.Optional = true
	}

	declName, err := p.ident("declarator name")
	if err != nil {
		return ast.TypeRef{}, "", err
	}

	switch {
	case p.at(lexer.LBracket):
		p.advance()

		size, err := p.literal("array size")
		if err != nil {
			return ast.TypeRef{}, "", err
		}

		if _, err := p.expect(lexer.RBracket, "']'"); err != nil {
			return ast.TypeRef{}, "", err
		}

		ref.Array = true
		ref.ArraySize = size

	case p.at(lexer.Angle):
		p.advance()

		if !p.at(lexer.RAngle) {
			bound, err := p.literal("vector bound")
			if err != nil {
				return ast.TypeRef{}, "", err
			}

			ref.VectorBound = bound
		}

		if _, err := p.expect(lexer.RAngle, "'>'"); err != nil {
			return ast.TypeRef{}, "", err
		}

		if ref.Opaque || ref.Name == ast.BuiltinString {
			// bounded/unbounded byte or string buffer, not a vector of T
		} else {
			ref.Vector = true
		}
	}

	if ref.Zerocopy && !ref.Opaque {
		return ast.TypeRef{}, "", NewSyntaxError(declName.Pos, "zerocopy may only be applied to an opaque field")
	}

	return ref, declName.Text, nil
}
