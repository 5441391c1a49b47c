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
	"fmt"
	"strings"

	"github.com/xdrgen/xdrgen/pkg/xdrgen/ast"
)

// EmitCodecs renders the internal marshal/unmarshal routine pair and the
// public wrapper pair for every struct and union in schema, in declaration
// order (codec emission, unlike declaration emission, has no ordering
// dependency between aggregates: every internal routine's signature is
// known up front).
func EmitCodecs(p *Printer, schema *ast.Schema) {
	for _, s := range schema.Structs {
		emitStructCodec(p, s)
	}

	for _, u := range schema.Unions {
		emitUnionCodec(p, u)
	}
}

func emitStructCodec(p *Printer, s *ast.Struct) {
	name := GoTypeName(s.Name)

	p.Line("func marshal%s(v []%s, cursor *WriteCursor) (int, error) {", name, name)
	p.Indent()
	p.Line("var n int")
	p.Blank()
	p.Line("for i := range v {")
	p.Indent()

	for _, m := range s.Members {
		emitMemberMarshal(p, fmt.Sprintf("v[i].%s", GoFieldName(m.Name)), &m.Type)
	}

	p.Dedent()
	p.Line("}")
	p.Blank()
	p.Line("return n, nil")
	p.Dedent()
	p.Line("}")
	p.Blank()

	p.Line("func unmarshal%s(v []%s, cursor *ReadCursor, dbuf *DecodeBuffer) (int, error) {", name, name)
	p.Indent()
	p.Line("var n int")
	p.Blank()
	p.Line("for i := range v {")
	p.Indent()

	for _, m := range s.Members {
		emitMemberUnmarshal(p, fmt.Sprintf("v[i].%s", GoFieldName(m.Name)), m.Name, &m.Type)
	}

	p.Dedent()
	p.Line("}")
	p.Blank()
	p.Line("return n, nil")
	p.Dedent()
	p.Line("}")
	p.Blank()

	emitPublicWrappers(p, name)
}

func emitUnionCodec(p *Printer, u *ast.Union) {
	name := GoTypeName(u.Name)
	pivot := GoFieldName(u.PivotName)

	p.Line("func marshal%s(v []%s, cursor *WriteCursor) (int, error) {", name, name)
	p.Indent()
	p.Line("var n int")
	p.Blank()
	p.Line("for i := range v {")
	p.Indent()
	p.Line("if m, err := marshalUint32([]uint32{v[i].%s}, cursor); err != nil {", pivot)
	p.Indent()
	p.Line("return n, err")
	p.Dedent()
	p.Line("} else {")
	p.Indent()
	p.Line("n += m")
	p.Dedent()
	p.Line("}")
	p.Blank()
	p.Line("switch v[i].%s {", pivot)

	var defaultCase *ast.UnionCase

	for idx := range u.Cases {
		c := &u.Cases[idx]
		if c.IsDefault {
			defaultCase = c
			continue
		}

		p.Line("case %s:", caseLabelExpr(c.Label))
		p.Indent()

		if c.Type != nil {
			emitMemberMarshal(p, fmt.Sprintf("v[i].%s", GoFieldName(c.Name)), c.Type)
		}

		p.Dedent()
	}

	p.Line("default:")
	p.Indent()

	if defaultCase != nil && defaultCase.Type != nil {
		emitMemberMarshal(p, fmt.Sprintf("v[i].%s", GoFieldName(defaultCase.Name)), defaultCase.Type)
	}

	p.Dedent()
	p.Line("}")
	p.Dedent()
	p.Line("}")
	p.Blank()
	p.Line("return n, nil")
	p.Dedent()
	p.Line("}")
	p.Blank()

	p.Line("func unmarshal%s(v []%s, cursor *ReadCursor, dbuf *DecodeBuffer) (int, error) {", name, name)
	p.Indent()
	p.Line("var n int")
	p.Blank()
	p.Line("for i := range v {")
	p.Indent()
	p.Line("var pivot [1]uint32")
	p.Line("if m, err := unmarshalUint32(pivot[:], cursor); err != nil {")
	p.Indent()
	p.Line("return n, err")
	p.Dedent()
	p.Line("} else {")
	p.Indent()
	p.Line("n += m")
	p.Dedent()
	p.Line("}")
	p.Line("v[i].%s = pivot[0]", pivot)
	p.Blank()
	p.Line("switch v[i].%s {", pivot)

	defaultCase = nil

	for idx := range u.Cases {
		c := &u.Cases[idx]
		if c.IsDefault {
			defaultCase = c
			continue
		}

		p.Line("case %s:", caseLabelExpr(c.Label))
		p.Indent()

		if c.Type != nil {
			emitMemberUnmarshal(p, fmt.Sprintf("v[i].%s", GoFieldName(c.Name)), c.Name, c.Type)
		}

		p.Dedent()
	}

	p.Line("default:")
	p.Indent()

	if defaultCase != nil && defaultCase.Type != nil {
		emitMemberUnmarshal(p, fmt.Sprintf("v[i].%s", GoFieldName(defaultCase.Name)), defaultCase.Name, defaultCase.Type)
	}

	p.Dedent()
	p.Line("}")
	p.Dedent()
	p.Line("}")
	p.Blank()
	p.Line("return n, nil")
	p.Dedent()
	p.Line("}")
	p.Blank()

	emitPublicWrappers(p, name)
}

// emitPublicWrappers renders the exported Marshal<T>/Unmarshal<T> entry
// points: a cursor constructed over the caller's pool/input, delegating to
// the internal routine above.
func emitPublicWrappers(p *Printer, name string) {
	p.Line("func Marshal%s(in []%s, pool []Iovec) ([]Iovec, int, error) {", name, name)
	p.Indent()
	p.Line("cursor := NewWriteCursor(pool)")
	p.Blank()
	p.Line("n, err := marshal%s(in, cursor)", name)
	p.Line("if err != nil {")
	p.Indent()
	p.Line("return nil, n, err")
	p.Dedent()
	p.Line("}")
	p.Blank()
	p.Line("return cursor.Finish(), n, nil")
	p.Dedent()
	p.Line("}")
	p.Blank()

	p.Line("func Unmarshal%s(in []Iovec, dbuf *DecodeBuffer) ([]%s, int, error) {", name, name)
	p.Indent()
	p.Line("cursor := NewReadCursor(in)")
	p.Line("out := make([]%s, 1)", name)
	p.Blank()
	p.Line("n, err := unmarshal%s(out, cursor, dbuf)", name)
	p.Line("if err != nil {")
	p.Indent()
	p.Line("return nil, n, err")
	p.Dedent()
	p.Line("}")
	p.Blank()
	p.Line("return out, n, nil")
	p.Dedent()
	p.Line("}")
	p.Blank()
}

// marshalFuncName/unmarshalFuncName return the plural ("n consecutive
// values") routine for t's base type: one of the runtime primitives for a
// builtin, or another aggregate's own generated routine.
func marshalFuncName(t *ast.TypeRef) string {
	if t.Builtin {
		switch t.Name {
		case ast.BuiltinUint32:
			return "marshalUint32"
		case ast.BuiltinInt32:
			return "marshalInt32"
		case ast.BuiltinUint64:
			return "marshalUint64"
		case ast.BuiltinInt64:
			return "marshalInt64"
		}
	}

	return "marshal" + GoTypeName(t.Name)
}

func unmarshalFuncName(t *ast.TypeRef) string {
	if t.Builtin {
		switch t.Name {
		case ast.BuiltinUint32:
			return "unmarshalUint32"
		case ast.BuiltinInt32:
			return "unmarshalInt32"
		case ast.BuiltinUint64:
			return "unmarshalUint64"
		case ast.BuiltinInt64:
			return "unmarshalInt64"
		}
	}

	return "unmarshal" + GoTypeName(t.Name)
}

// unmarshalCallExpr renders a call to t's plural unmarshal routine. A
// builtin scalar's runtime primitive never sub-allocates and so takes no
// decode buffer; an aggregate's generated routine always does, since it may
// itself contain opaque/string/vector members.
func unmarshalCallExpr(t *ast.TypeRef, sliceExpr string) string {
	if t.Builtin {
		return fmt.Sprintf("%s(%s, cursor)", unmarshalFuncName(t), sliceExpr)
	}

	return fmt.Sprintf("%s(%s, cursor, dbuf)", unmarshalFuncName(t), sliceExpr)
}

// vectorBoundExpr renders t's declared non-zero bound as a uint32 literal,
// or "0" for unbounded, matching the runtime primitives' "0 means
// unbounded" convention.
func vectorBoundExpr(t *ast.TypeRef) string {
	if t.VectorBound == "" {
		return "0"
	}

	return t.VectorBound
}

// emitMemberMarshal writes the statements that encode one member (access is
// a Go expression naming its field, e.g. "v[i].Foo") per the per-member
// codec contract of section 4.6, accumulating into the enclosing function's
// "n" and returning "n, err" immediately on failure.
func emitMemberMarshal(p *Printer, access string, t *ast.TypeRef) {
	switch {
	case t.Opaque && t.Array:
		p.Line("if err := cursor.Append(%s[:]); err != nil {", access)
		p.Indent()
		p.Line("return n, err")
		p.Dedent()
		p.Line("}")
		p.Line("n += %s", t.ArraySize)

	case t.Zerocopy:
		p.Line("if m, err := marshalZerocopyOpaque(%s, cursor); err != nil {", access)
		p.Indent()
		p.Line("return n, err")
		p.Dedent()
		p.Line("} else {")
		p.Indent()
		p.Line("n += m")
		p.Dedent()
		p.Line("}")

	case t.Opaque:
		p.Line("if m, err := marshalOpaque(%s, cursor); err != nil {", access)
		p.Indent()
		p.Line("return n, err")
		p.Dedent()
		p.Line("} else {")
		p.Indent()
		p.Line("n += m")
		p.Dedent()
		p.Line("}")

	case t.Builtin && t.Name == ast.BuiltinString:
		p.Line("if m, err := marshalString(%s, cursor); err != nil {", access)
		p.Indent()
		p.Line("return n, err")
		p.Dedent()
		p.Line("} else {")
		p.Indent()
		p.Line("n += m")
		p.Dedent()
		p.Line("}")

	case t.Optional:
		p.Line("{")
		p.Indent()
		p.Line("more := uint32(0)")
		p.Line("if %s != nil {", access)
		p.Indent()
		p.Line("more = 1")
		p.Dedent()
		p.Line("}")
		p.Line("if m, err := marshalUint32([]uint32{more}, cursor); err != nil {")
		p.Indent()
		p.Line("return n, err")
		p.Dedent()
		p.Line("} else {")
		p.Indent()
		p.Line("n += m")
		p.Dedent()
		p.Line("}")
		p.Line("if more == 1 {")
		p.Indent()
		p.Line("if m, err := %s([]%s{*%s}, cursor); err != nil {", marshalFuncName(t), goScalarType(t), access)
		p.Indent()
		p.Line("return n, err")
		p.Dedent()
		p.Line("} else {")
		p.Indent()
		p.Line("n += m")
		p.Dedent()
		p.Line("}")
		p.Dedent()
		p.Line("}")
		p.Dedent()
		p.Line("}")

	case t.Vector:
		p.Line("{")
		p.Indent()
		p.Line("count := uint32(len(%s))", access)
		p.Line("if m, err := marshalUint32([]uint32{count}, cursor); err != nil {")
		p.Indent()
		p.Line("return n, err")
		p.Dedent()
		p.Line("} else {")
		p.Indent()
		p.Line("n += m")
		p.Dedent()
		p.Line("}")
		p.Line("if m, err := %s(%s, cursor); err != nil {", marshalFuncName(t), access)
		p.Indent()
		p.Line("return n, err")
		p.Dedent()
		p.Line("} else {")
		p.Indent()
		p.Line("n += m")
		p.Dedent()
		p.Line("}")
		p.Dedent()
		p.Line("}")

	case t.Array:
		p.Line("if m, err := %s(%s[:], cursor); err != nil {", marshalFuncName(t), access)
		p.Indent()
		p.Line("return n, err")
		p.Dedent()
		p.Line("} else {")
		p.Indent()
		p.Line("n += m")
		p.Dedent()
		p.Line("}")

	default:
		p.Line("if m, err := %s([]%s{%s}, cursor); err != nil {", marshalFuncName(t), goScalarType(t), access)
		p.Indent()
		p.Line("return n, err")
		p.Dedent()
		p.Line("} else {")
		p.Indent()
		p.Line("n += m")
		p.Dedent()
		p.Line("}")
	}
}

// emitMemberUnmarshal mirrors emitMemberMarshal. fieldName is the bare XDR
// member name, used to name the synthetic "NumFoo" field for a vector.
func emitMemberUnmarshal(p *Printer, access, fieldName string, t *ast.TypeRef) {
	switch {
	case t.Opaque && t.Array:
		p.Line("if err := cursor.Extract(%s[:]); err != nil {", access)
		p.Indent()
		p.Line("return n, err")
		p.Dedent()
		p.Line("}")
		p.Line("n += %s", t.ArraySize)

	case t.Zerocopy:
		p.Line("if ref, m, err := unmarshalZerocopyOpaque(cursor, %s); err != nil {", vectorBoundExpr(t))
		p.Indent()
		p.Line("return n, err")
		p.Dedent()
		p.Line("} else {")
		p.Indent()
		p.Line("%s = ref", access)
		p.Line("n += m")
		p.Dedent()
		p.Line("}")

	case t.Opaque:
		p.Line("if out, m, err := unmarshalOpaque(cursor, dbuf, %s); err != nil {", vectorBoundExpr(t))
		p.Indent()
		p.Line("return n, err")
		p.Dedent()
		p.Line("} else {")
		p.Indent()
		p.Line("%s = out", access)
		p.Line("n += m")
		p.Dedent()
		p.Line("}")

	case t.Builtin && t.Name == ast.BuiltinString:
		p.Line("if out, m, err := unmarshalString(cursor, dbuf, %s); err != nil {", vectorBoundExpr(t))
		p.Indent()
		p.Line("return n, err")
		p.Dedent()
		p.Line("} else {")
		p.Indent()
		p.Line("%s = out", access)
		p.Line("n += m")
		p.Dedent()
		p.Line("}")

	case t.Optional:
		p.Line("{")
		p.Indent()
		p.Line("var more [1]uint32")
		p.Line("if m, err := unmarshalUint32(more[:], cursor); err != nil {")
		p.Indent()
		p.Line("return n, err")
		p.Dedent()
		p.Line("} else {")
		p.Indent()
		p.Line("n += m")
		p.Dedent()
		p.Line("}")
		p.Line("if more[0] == 1 {")
		p.Indent()
		p.Line("var one [1]%s", goScalarType(t))
		p.Line("if m, err := %s; err != nil {", unmarshalCallExpr(t, "one[:]"))
		p.Indent()
		p.Line("return n, err")
		p.Dedent()
		p.Line("} else {")
		p.Indent()
		p.Line("n += m")
		p.Dedent()
		p.Line("}")
		p.Line("%s = &one[0]", access)
		p.Dedent()
		p.Line("} else {")
		p.Indent()
		p.Line("%s = nil", access)
		p.Dedent()
		p.Line("}")
		p.Dedent()
		p.Line("}")

	case t.Vector:
		p.Line("{")
		p.Indent()
		p.Line("var count [1]uint32")
		p.Line("if m, err := unmarshalUint32(count[:], cursor); err != nil {")
		p.Indent()
		p.Line("return n, err")
		p.Dedent()
		p.Line("} else {")
		p.Indent()
		p.Line("n += m")
		p.Dedent()
		p.Line("}")
		p.Line("if bound := uint32(%s); bound != 0 && count[0] > bound {", vectorBoundExpr(t))
		p.Indent()
		p.Line("return n, ErrBoundExceeded")
		p.Dedent()
		p.Line("}")
		p.Line("v[i].%s = count[0]", NumField(fieldName))
		p.Line("elems := make([]%s, count[0])", goScalarType(t))
		p.Line("if m, err := %s; err != nil {", unmarshalCallExpr(t, "elems"))
		p.Indent()
		p.Line("return n, err")
		p.Dedent()
		p.Line("} else {")
		p.Indent()
		p.Line("n += m")
		p.Dedent()
		p.Line("}")
		p.Line("%s = elems", access)
		p.Dedent()
		p.Line("}")

	case t.Array:
		p.Line("if m, err := %s; err != nil {", unmarshalCallExpr(t, access+"[:]"))
		p.Indent()
		p.Line("return n, err")
		p.Dedent()
		p.Line("} else {")
		p.Indent()
		p.Line("n += m")
		p.Dedent()
		p.Line("}")

	default:
		p.Line("{")
		p.Indent()
		p.Line("var one [1]%s", goScalarType(t))
		p.Line("if m, err := %s; err != nil {", unmarshalCallExpr(t, "one[:]"))
		p.Indent()
		p.Line("return n, err")
		p.Dedent()
		p.Line("} else {")
		p.Indent()
		p.Line("n += m")
		p.Dedent()
		p.Line("}")
		p.Line("%s = one[0]", access)
		p.Dedent()
		p.Line("}")
	}
}

// caseLabelExpr renders a union case's literal label as a Go switch-case
// expression: a bare numeric literal passes through unchanged, an
// identifier is assumed to name an enum entry and is mangled the same way
// emitEnums exported it.
func caseLabelExpr(label string) string {
	if label == "" {
		return label
	}

	r := label[0]
	if r == '-' || (r >= '0' && r <= '9') {
		return label
	}

	if strings.HasPrefix(label, "0x") || strings.HasPrefix(label, "0X") {
		return label
	}

	return Exported(label)
}
