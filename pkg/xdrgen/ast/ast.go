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

// Package ast defines the declaration tree produced by the parser and
// mutated in place by the resolver. Nodes are ordinary Go values allocated
// by the parser; they are not placed in the arena package's allocator.
package ast

// Category classifies a top-level declaration for symbol-table purposes.
type Category int

// The five declaration categories named in the specification's symbol
// table design. RPC programs are tracked separately since they never
// participate in type resolution.
const (
	CategoryConst Category = iota
	CategoryEnum
	CategoryTypedef
	CategoryStruct
	CategoryUnion
)

// String renders a Category for diagnostics.
func (c Category) String() string {
	switch c {
	case CategoryConst:
		return "const"
	case CategoryEnum:
		return "enum"
	case CategoryTypedef:
		return "typedef"
	case CategoryStruct:
		return "struct"
	case CategoryUnion:
		return "union"
	default:
		return "unknown"
	}
}

// Builtin names recognised without a prior declaration.
const (
	BuiltinUint32  = "uint32_t"
	BuiltinInt32   = "int32_t"
	BuiltinUint64  = "uint64_t"
	BuiltinInt64   = "int64_t"
	BuiltinString  = "xdr_string"
	BuiltinVoid    = "void"
)

// IsBuiltin reports whether name is one of the recognised builtin primitive
// type names.
func IsBuiltin(name string) bool {
	switch name {
	case BuiltinUint32, BuiltinInt32, BuiltinUint64, BuiltinInt64, BuiltinString, BuiltinVoid:
		return true
	default:
		return false
	}
}

// TypeRef is a reference to a type occurring as a typedef's underlying type,
// a struct member, a union pivot or case payload, or an RPC call/reply type.
//
// Name and Builtin are the two fields the resolver is permitted to rewrite
// in place once it reclassifies an enum reference as a plain 32-bit integer
// for wire purposes (section 3 of the specification).
type TypeRef struct {
	Name    string
	Builtin bool

	Opaque   bool
	Array    bool
	Vector   bool
	Optional bool
	Zerocopy bool

	// ArraySize is the literal text of a fixed array's size, e.g. "16".
	ArraySize string
	// VectorBound is the literal text of a vector/opaque/string bound, or
	// "" when unbounded ("<>" with no number).
	VectorBound string

	Pos Position
}

// IsVoid reports whether this reference denotes the "no payload" sentinel.
func (t *TypeRef) IsVoid() bool {
	return t.Builtin && t.Name == BuiltinVoid
}

// Position records a location in the schema source for diagnostics.
type Position struct {
	Line, Col int
}

// Constant is a `const NAME = LITERAL;` declaration.
type Constant struct {
	Name  string
	Value string // literal text, substituted verbatim, never evaluated
	Pos   Position
}

// EnumEntry is one `NAME = LIT` member of an enum.
type EnumEntry struct {
	Name  string
	Value string
}

// Enum is an `enum NAME { ... };` declaration.
type Enum struct {
	Name    string
	Entries []EnumEntry
	Pos     Position
}

// Typedef is a `typedef TYPE NAME;` declaration. Underlying starts out
// however the parser saw it and is rewritten in place by the resolver to
// point at a terminal (non-typedef) target.
type Typedef struct {
	Name       string
	Underlying TypeRef
	Pos        Position
}

// Member is one `TYPE NAME;` field of a struct, or a named/typed union case
// payload.
type Member struct {
	Name string
	Type TypeRef
}

// Struct is a `struct NAME { ... };` declaration. Members are encoded and
// decoded in this exact order.
type Struct struct {
	Name    string
	Members []Member
	Pos     Position

	// Emitted is flipped monotonically false->true by the declaration
	// emitter's topological pass; the pass itself tracks progress in a
	// bitset local to the emitter's aggregate-emission loop. This field
	// exists so ast.Struct alone can answer "have I been emitted" for
	// callers (tests, tooling) that don't carry an emitter watermark.
	Emitted bool
}

// UnionCase is one `case LABEL: TYPE NAME;` or `case LABEL: void;` arm, or
// the `default: ...` arm.
type UnionCase struct {
	// Label is the literal case value text; IsDefault is true for the
	// `default` arm, in which case Label is ignored.
	Label     string
	IsDefault bool

	// Name is the field name for a typed, non-voided case; empty for
	// void cases (including an empty default).
	Name string
	// Type is nil for a voided case.
	Type    *TypeRef
	Voided  bool
}

// Union is a `union NAME switch (TYPE NAME) { ... };` declaration. At most
// one case may be IsDefault; case labels (excluding default) are distinct
// as written (the parser compares label text, not evaluated values).
type Union struct {
	Name      string
	PivotType TypeRef
	PivotName string
	Cases     []UnionCase
	Pos       Position

	Emitted bool
}

// Procedure is one `RET NAME(ARG) = NUM;` declaration inside an RPC version.
type Procedure struct {
	Name     string
	ID       string
	CallType TypeRef
	ReplyType TypeRef
}

// Version is one `version NAME { ... } = NUM;` block inside an RPC program.
type Version struct {
	Name       string
	ID         string
	Procedures []Procedure
}

// Program is a `program NAME { ... } = NUM;` declaration.
type Program struct {
	Name     string
	ID       string
	Versions []Version
	Pos      Position
}

// Schema is the flat set of declarations produced by one parse.
type Schema struct {
	Consts   []*Constant
	Enums    []*Enum
	Typedefs []*Typedef
	Structs  []*Struct
	Unions   []*Union
	Programs []*Program
}
