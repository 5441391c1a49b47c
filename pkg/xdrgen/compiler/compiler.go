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

package compiler

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/xdrgen/xdrgen/pkg/xdrgen/emitter"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/lexer"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/parser"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/resolver"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/symtab"
)

// Compile reads cfg.InputPath, runs it through the full pipeline (lex,
// parse, resolve, emit), and writes the resulting header/source pair. Any
// error returned is one of the typed fatal errors this module defines
// (*lexer.Error, *parser.SyntaxError, *symtab.DuplicateSymbolError,
// *resolver.UnknownTypeError, *emitter.CyclicDefinitionError,
// *FileOpenError); logging is purely observational and never substitutes
// for the returned error.
func Compile(cfg Config, log *logrus.Logger) error {
	log = ensureLogger(log)

	src, err := os.ReadFile(cfg.InputPath)
	if err != nil {
		return &FileOpenError{Path: cfg.InputPath, Err: err}
	}

	fields := logrus.Fields{"file": cfg.InputPath}

	log.WithFields(fields).WithField("phase", "lex").Info("tokenizing schema")

	tokens, err := lexer.Lex(src)
	if err != nil {
		log.WithFields(fields).WithField("phase", "lex").WithError(err).Error("lex failed")
		return err
	}

	table := symtab.New()

	log.WithFields(fields).WithField("phase", "parse").Info("parsing declarations")

	schema, err := parser.Parse(tokens, table)
	if err != nil {
		log.WithFields(fields).WithField("phase", "parse").WithError(err).Error("parse failed")
		return err
	}

	log.WithFields(fields).WithField("phase", "resolve").Info("resolving type references")

	if err := resolver.Resolve(schema, table); err != nil {
		log.WithFields(fields).WithField("phase", "resolve").WithError(err).Error("resolve failed")
		return err
	}

	header := emitter.NewPrinter()
	header.Line("package %s", cfg.PackageName)
	header.Blank()
	header.Line("// Code generated by xdrgen. DO NOT EDIT.")
	header.Blank()

	log.WithFields(fields).WithField("phase", "emit-decls").Info("emitting declarations")

	if err := emitter.EmitDeclarations(header, schema); err != nil {
		log.WithFields(fields).WithField("phase", "emit-decls").WithError(err).Error("declaration emission failed")
		return err
	}

	source := emitter.NewPrinter()
	source.Raw(emitter.RenderRuntime(cfg.PackageName))
	source.Blank()

	log.WithFields(fields).WithField("phase", "emit-codec").Info("emitting codecs")
	emitter.EmitCodecs(source, schema)

	if cfg.EmitRPC {
		log.WithFields(fields).WithField("phase", "emit-rpc").Info("emitting RPC dispatch")
		emitter.EmitRPC(source, schema)
	}

	if err := writeGenerated(cfg.HeaderPath, header.String()); err != nil {
		return err
	}

	return writeGenerated(cfg.SourcePath, source.String())
}

func writeGenerated(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return &FileOpenError{Path: path, Err: err}
	}

	return nil
}

func ensureLogger(log *logrus.Logger) *logrus.Logger {
	if log != nil {
		return log
	}

	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)

	return l
}
