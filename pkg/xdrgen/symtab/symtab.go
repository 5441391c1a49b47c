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

// Package symtab implements the generator's symbol table: a single
// name -> declaration map shared by every identifier category, exactly as
// section 4.3 of the specification describes it.
package symtab

import (
	"fmt"

	"github.com/xdrgen/xdrgen/pkg/xdrgen/ast"
)

// Symbol is one entry in the table: a declaration's category plus a
// non-owning reference to its payload (one of *ast.Constant, *ast.Enum,
// *ast.Typedef, *ast.Struct or *ast.Union).
type Symbol struct {
	Name     string
	Category ast.Category
	Payload  any
	Pos      ast.Position
}

// DuplicateSymbolError is returned by Insert when name is already present.
type DuplicateSymbolError struct {
	Name        string
	FirstPos    ast.Position
	SecondPos   ast.Position
}

func (e *DuplicateSymbolError) Error() string {
	return fmt.Sprintf("duplicate symbol %q (first declared at %d:%d, redeclared at %d:%d)",
		e.Name, e.FirstPos.Line, e.FirstPos.Col, e.SecondPos.Line, e.SecondPos.Col)
}

// Table is the symbol table. It exclusively owns the name -> Symbol map;
// every other component in the generator holds only a reference to it.
type Table struct {
	symbols map[string]*Symbol
	// order preserves declaration order in a way that's independent of Go
	// map iteration; Names reports it. The emitter passes iterate the
	// schema's own declaration slices, not this list.
	order []string
}

// New constructs an empty symbol table.
func New() *Table {
	return &Table{symbols: make(map[string]*Symbol)}
}

// Insert registers name under category with the given payload. It fails
// with *DuplicateSymbolError if name is already present; identifiers are
// unique across every category, matching the original generator's single
// hash table keyed only on name.
func (t *Table) Insert(name string, category ast.Category, payload any, pos ast.Position) error {
	if existing, ok := t.symbols[name]; ok {
		return &DuplicateSymbolError{Name: name, FirstPos: existing.Pos, SecondPos: pos}
	}

	t.symbols[name] = &Symbol{Name: name, Category: category, Payload: payload, Pos: pos}
	t.order = append(t.order, name)

	return nil
}

// Lookup returns the symbol registered under name, or (nil, false) if
// absent. Builtin primitive names are never present in the table; callers
// must check ast.IsBuiltin separately, mirroring the original generator's
// split between the builtin flag and the identifier hash table.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	s, ok := t.symbols[name]

	return s, ok
}

// Names returns every registered identifier in declaration order.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)

	return out
}

// Len reports how many symbols are registered.
func (t *Table) Len() int {
	return len(t.symbols)
}
