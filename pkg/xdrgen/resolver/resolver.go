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

// Package resolver runs once after parsing: it collapses typedef chains to
// their ultimate non-typedef target, validates every type reference held by
// a struct or union, and reclassifies enum references as 32-bit integers
// for wire purposes (section 4.4 of the specification).
//
// The resolver only ever rewrites a TypeRef's Name and Builtin fields -- the
// declarator's own shape (Array, Vector, Optional, Opaque, Zerocopy, sizes)
// belongs to the member or typedef that declared it and is never touched,
// matching the "two mutable fields" invariant from the specification's data
// model section.
package resolver

import (
	"fmt"

	"github.com/xdrgen/xdrgen/pkg/xdrgen/ast"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/symtab"
)

// Context identifies where an unresolved or unknown type reference
// occurred, so diagnostics can name the right enclosing declaration instead
// of a stale one left over from a previous loop iteration -- the bug noted
// as an open question in the specification, where the original generator's
// union-case diagnostic copy-pasted struct-shaped wording.
type Context int

// The four contexts in which a type reference is resolved.
const (
	ContextTypedef Context = iota
	ContextStruct
	ContextUnionPivot
	ContextUnionCase
)

func (c Context) String() string {
	switch c {
	case ContextTypedef:
		return "typedef"
	case ContextStruct:
		return "struct"
	case ContextUnionPivot:
		return "union pivot"
	case ContextUnionCase:
		return "union case"
	default:
		return "reference"
	}
}

// UnknownTypeError is fatal: a type reference names an identifier that is
// not registered in the symbol table at all.
type UnknownTypeError struct {
	Context  Context
	Referrer string // name of the typedef/struct/union
	Member   string // member/case/pivot name, or "" for a typedef itself
	Referent string // the unknown type name
	Pos      ast.Position
}

func (e *UnknownTypeError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("%d:%d: %s %q uses unknown type %q",
			e.Pos.Line, e.Pos.Col, e.Context, e.Referrer, e.Referent)
	}

	return fmt.Sprintf("%d:%d: %s %q element %q uses unknown type %q",
		e.Pos.Line, e.Pos.Col, e.Context, e.Referrer, e.Member, e.Referent)
}

// Resolve mutates every typedef, struct and union registered in table:
// typedef chains are collapsed, struct/union references are retargeted past
// typedefs, and enum references are reclassified as builtin uint32_t. It
// returns the first UnknownTypeError encountered, or nil on success.
func Resolve(schema *ast.Schema, table *symtab.Table) error {
	for _, t := range schema.Typedefs {
		if err := resolveTypedefChain(table, t); err != nil {
			return err
		}
	}

	for _, s := range schema.Structs {
		for i := range s.Members {
			m := &s.Members[i]
			if err := retarget(table, &m.Type, ContextStruct, s.Name, m.Name, s.Pos); err != nil {
				return err
			}
		}
	}

	for _, u := range schema.Unions {
		if err := retarget(table, &u.PivotType, ContextUnionPivot, u.Name, u.PivotName, u.Pos); err != nil {
			return err
		}

		for i := range u.Cases {
			c := &u.Cases[i]
			if c.Type == nil {
				continue
			}

			if err := retarget(table, c.Type, ContextUnionCase, u.Name, c.Name, u.Pos); err != nil {
				return err
			}
		}
	}

	return nil
}

// resolveTypedefChain walks t's underlying reference while it names a
// non-builtin identifier that itself resolves to another typedef, then
// rewrites t.Underlying.Name/Builtin to the terminal target. An undefined
// intermediate identifier is fatal.
func resolveTypedefChain(table *symtab.Table, t *ast.Typedef) error {
	seen := map[string]bool{t.Name: true}

	for !t.Underlying.Builtin && !t.Underlying.Opaque {
		name := t.Underlying.Name

		sym, ok := table.Lookup(name)
		if !ok {
			return &UnknownTypeError{
				Context: ContextTypedef, Referrer: t.Name, Referent: name, Pos: t.Pos,
			}
		}

		switch sym.Category {
		case ast.CategoryTypedef:
			if seen[name] {
				// A typedef cycle with no builtin terminus; reported as an
				// unknown type since it can never resolve to one.
				return &UnknownTypeError{
					Context: ContextTypedef, Referrer: t.Name, Referent: name, Pos: t.Pos,
				}
			}

			seen[name] = true

			next := sym.Payload.(*ast.Typedef)
			t.Underlying.Name = next.Underlying.Name
			t.Underlying.Builtin = next.Underlying.Builtin

		case ast.CategoryEnum:
			t.Underlying.Name = ast.BuiltinUint32
			t.Underlying.Builtin = true

		default:
			// struct or union: already a terminal, non-builtin target.
			return nil
		}
	}

	return nil
}

// retarget rewrites ref.Name/Builtin in place when it names a typedef
// (collapsing to the typedef's terminal target) or an enum (reclassifying
// it as a builtin uint32_t). Builtins, opaque buffers and direct
// struct/union references are left alone. An undefined reference is fatal.
func retarget(table *symtab.Table, ref *ast.TypeRef, ctx Context, referrer, member string, pos ast.Position) error {
	if ref.Builtin || ref.Opaque {
		return nil
	}

	sym, ok := table.Lookup(ref.Name)
	if !ok {
		return &UnknownTypeError{Context: ctx, Referrer: referrer, Member: member, Referent: ref.Name, Pos: pos}
	}

	switch sym.Category {
	case ast.CategoryTypedef:
		td := sym.Payload.(*ast.Typedef)
		ref.Name = td.Underlying.Name
		ref.Builtin = td.Underlying.Builtin
	case ast.CategoryEnum:
		ref.Name = ast.BuiltinUint32
		ref.Builtin = true
	default:
		// struct or union: nothing to do.
	}

	return nil
}
