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
	_ "embed"
	"strings"
)

//go:embed templates/runtime.tmpl
var runtimeTemplate string

// RenderRuntime splices the embedded scatter-gather runtime library into
// pkg, the generated file's package name. It is a single placeholder
// substitution rather than a full text/template parse, since the runtime
// template's only variable is the package clause; the result is expected to
// be used verbatim as the leading section of a generated source file.
func RenderRuntime(pkg string) string {
	return strings.Replace(runtimeTemplate, "{{.Package}}", pkg, 1)
}
