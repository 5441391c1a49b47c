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

package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/xdrgen/xdrgen/pkg/xdrgen/compiler"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/emitter"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/lexer"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/parser"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/resolver"
	"github.com/xdrgen/xdrgen/pkg/xdrgen/symtab"
)

// rootCmd is also the generate command: the positional CLI surface is
// invocable bare (xdrgen input.x out.go out_header.go) as well as via the
// explicit "generate" subcommand, both running the same Run function.
var rootCmd = &cobra.Command{
	Use:   "xdrgen input.x output.go output_header.go",
	Short: "a code generator for the XDR interface-definition language.",
	Long:  "Compile an XDR (RFC 4506) schema into a Go header/source pair implementing its wire codecs.",
	Args:  cobra.ExactArgs(3),
	Run:   runGenerate,
}

var generateCmd = &cobra.Command{
	Use:   "generate input.x output.go output_header.go",
	Short: "compile an XDR schema into a Go header/source pair.",
	Args:  cobra.ExactArgs(3),
	Run:   runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) {
	log := logrus.New()

	switch GetCount(cmd, "verbose") {
	case 0:
		log.SetLevel(logrus.WarnLevel)
	case 1:
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetLevel(logrus.DebugLevel)
	}

	cfg := compiler.Config{
		EmitRPC:     GetFlag(cmd, "rpc"),
		PackageName: GetString(cmd, "package"),
		InputPath:   args[0],
		SourcePath:  args[1],
		HeaderPath:  args[2],
	}

	if err := compiler.Compile(cfg, log); err != nil {
		reportFatal(err)
		os.Exit(exitCodeFor(err))
	}
}

// reportFatal prints a one-line diagnostic naming the offending identifier
// or path, coloring it when stdout is a terminal, matching the teacher's
// plain fmt.Println diagnostics otherwise.
func reportFatal(err error) {
	msg := fmt.Sprintf("xdrgen: %s", err.Error())

	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintf(os.Stderr, "\x1b[31m%s\x1b[0m\n", msg)
		return
	}

	fmt.Fprintln(os.Stderr, msg)
}

// exitCodeFor classifies a fatal compiler error into the non-zero process
// exit code required by section 7: each error kind gets a distinct code so
// scripting callers can tell a malformed schema from a missing file without
// parsing the diagnostic text.
func exitCodeFor(err error) int {
	switch err.(type) {
	case *lexer.Error, *parser.SyntaxError:
		return 2
	case *symtab.DuplicateSymbolError:
		return 3
	case *resolver.UnknownTypeError:
		return 4
	case *emitter.CyclicDefinitionError:
		return 5
	case *compiler.FileOpenError:
		return 6
	default:
		return 1
	}
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(generateCmd)

	for _, c := range []*cobra.Command{rootCmd, generateCmd} {
		c.Flags().BoolP("rpc", "r", false, "enable RPC-2 dispatch emission")
		c.Flags().CountP("verbose", "v", "increase logging verbosity")
		c.Flags().String("package", "xdrgen_out", "Go package name for emitted files")
	}
}
