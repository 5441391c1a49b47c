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
	"fmt"

	"github.com/xdrgen/xdrgen/pkg/xdrgen/ast"
)

// SyntaxError is returned for any ill-formed input the parser rejects: an
// unexpected token, an unterminated declaration, or a missing terminator.
type SyntaxError struct {
	Pos ast.Position
	Msg string
}

// NewSyntaxError constructs a syntax error at pos with the given message.
func NewSyntaxError(pos ast.Position, msg string) *SyntaxError {
	return &SyntaxError{Pos: pos, Msg: msg}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: syntax error: %s", e.Pos.Line, e.Pos.Col, e.Msg)
}
