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

	"github.com/bits-and-blooms/bitset"

	"github.com/xdrgen/xdrgen/pkg/xdrgen/ast"
)

// CyclicDefinitionError is fatal: a set of structs/unions refer to each
// other only by value (never through a pointer, vector or zerocopy-opaque
// indirection), so no emission order could ever satisfy every dependency.
type CyclicDefinitionError struct {
	Names []string
}

func (e *CyclicDefinitionError) Error() string {
	return fmt.Sprintf("cyclic definition involving: %s", strings.Join(e.Names, ", "))
}

// EmitDeclarations renders every constant, enum and struct/union type
// declaration for schema onto p, in the order section 4.5 describes:
// constants and enums first (order-independent, since neither can embed
// another aggregate by value), then struct/union bodies via the
// topological relaxation loop below.
func EmitDeclarations(p *Printer, schema *ast.Schema) error {
	emitConstants(p, schema.Consts)
	emitEnums(p, schema.Enums)

	return emitAggregates(p, schema.Structs, schema.Unions)
}

func emitConstants(p *Printer, consts []*ast.Constant) {
	if len(consts) == 0 {
		return
	}

	for _, c := range consts {
		p.Line("const %s = %s", Exported(c.Name), c.Value)
	}

	p.Blank()
}

func emitEnums(p *Printer, enums []*ast.Enum) {
	for _, e := range enums {
		name := GoTypeName(e.Name)

		p.Line("type %s = uint32", name)
		p.Blank()
		p.Line("const (")
		p.Indent()

		for _, ent := range e.Entries {
			p.Line("%s %s = %s", Exported(ent.Name), name, ent.Value)
		}

		p.Dedent()
		p.Line(")")
		p.Blank()
	}
}

// aggregate is one struct or union participating in the topological
// relaxation loop; deps names the other aggregates it embeds by value,
// i.e. the ones that must already be emitted before this one can be.
type aggregate struct {
	name string
	deps []string

	s *ast.Struct
	u *ast.Union
}

func emitAggregates(p *Printer, structs []*ast.Struct, unions []*ast.Union) error {
	order := make([]*aggregate, 0, len(structs)+len(unions))
	indexOf := make(map[string]int, len(structs)+len(unions))

	for _, s := range structs {
		order = append(order, &aggregate{name: s.Name, deps: structDeps(s), s: s})
	}

	for _, u := range unions {
		order = append(order, &aggregate{name: u.Name, deps: unionDeps(u), u: u})
	}

	for i, a := range order {
		indexOf[a.name] = i
	}

	emitted := bitset.New(uint(len(order)))
	remaining := len(order)

	for remaining > 0 {
		progressed := false

		for i, a := range order {
			if emitted.Test(uint(i)) {
				continue
			}

			if !depsSatisfied(a.deps, indexOf, emitted) {
				continue
			}

			if a.u != nil {
				emitUnion(p, a.u)
				a.u.Emitted = true
			} else {
				emitStruct(p, a.s)
				a.s.Emitted = true
			}

			emitted.Set(uint(i))
			remaining--
			progressed = true
		}

		if !progressed {
			var stuck []string

			for i, a := range order {
				if !emitted.Test(uint(i)) {
					stuck = append(stuck, a.name)
				}
			}

			return &CyclicDefinitionError{Names: stuck}
		}
	}

	return nil
}

func depsSatisfied(deps []string, indexOf map[string]int, emitted *bitset.BitSet) bool {
	for _, d := range deps {
		idx, ok := indexOf[d]
		if !ok {
			// Not a struct/union name: a builtin or an enum (already
			// reclassified to uint32_t by the resolver), nothing to wait on.
			continue
		}

		if !emitted.Test(uint(idx)) {
			return false
		}
	}

	return true
}

func structDeps(s *ast.Struct) []string {
	var deps []string

	for _, m := range s.Members {
		if d, ok := valueDep(&m.Type); ok {
			deps = append(deps, d)
		}
	}

	return deps
}

func unionDeps(u *ast.Union) []string {
	var deps []string

	for _, c := range u.Cases {
		if c.Type == nil {
			continue
		}

		if d, ok := valueDep(c.Type); ok {
			deps = append(deps, d)
		}
	}

	return deps
}

// valueDep reports the aggregate name t embeds by value, if any. A pointer
// (Optional), slice (Vector), or runtime-backed (Opaque, Zerocopy) member
// never forces ordering: Go only needs the referenced type fully declared
// when it's embedded directly, inline, in the enclosing struct's memory
// layout.
func valueDep(t *ast.TypeRef) (string, bool) {
	if t.Builtin || t.Optional || t.Vector || t.Opaque || t.Zerocopy {
		return "", false
	}

	return t.Name, true
}

func goScalarType(t *ast.TypeRef) string {
	if t.Builtin {
		switch t.Name {
		case ast.BuiltinUint32:
			return "uint32"
		case ast.BuiltinInt32:
			return "int32"
		case ast.BuiltinUint64:
			return "uint64"
		case ast.BuiltinInt64:
			return "int64"
		case ast.BuiltinString:
			return "string"
		}
	}

	return GoTypeName(t.Name)
}

// fieldGoType maps a resolved type reference to its Go field shape per the
// member emission table of section 4.5.
func fieldGoType(t *ast.TypeRef) string {
	switch {
	case t.Zerocopy:
		return "IovecRef"
	case t.Opaque && t.Array:
		return fmt.Sprintf("[%s]byte", t.ArraySize)
	case t.Opaque:
		return "[]byte"
	case t.Vector:
		return "[]" + goScalarType(t)
	case t.Optional:
		return "*" + goScalarType(t)
	case t.Array:
		return fmt.Sprintf("[%s]%s", t.ArraySize, goScalarType(t))
	default:
		return goScalarType(t)
	}
}

func emitStruct(p *Printer, s *ast.Struct) {
	p.Line("type %s struct {", GoTypeName(s.Name))
	p.Indent()

	for _, m := range s.Members {
		if m.Type.Vector {
			p.Line("%s uint32", NumField(m.Name))
		}

		p.Line("%s %s", GoFieldName(m.Name), fieldGoType(&m.Type))
	}

	p.Dedent()
	p.Line("}")
	p.Blank()
}

// emitUnion renders u as a single Go struct carrying the pivot plus one
// always-present field per non-voided case, per section 4.5's "anonymous
// tagged variant region" note: only the field selected by the pivot's
// current value is meaningful at any one time, the rest are left zeroed.
func emitUnion(p *Printer, u *ast.Union) {
	p.Line("type %s struct {", GoTypeName(u.Name))
	p.Indent()
	p.Line("%s %s", GoFieldName(u.PivotName), goScalarType(&u.PivotType))

	for _, c := range u.Cases {
		if c.Type == nil {
			continue
		}

		if c.Type.Vector {
			p.Line("%s uint32", NumField(c.Name))
		}

		p.Line("%s %s", GoFieldName(c.Name), fieldGoType(c.Type))
	}

	p.Dedent()
	p.Line("}")
	p.Blank()
}
