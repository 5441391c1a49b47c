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
	"github.com/xdrgen/xdrgen/pkg/xdrgen/ast"
)

// Reply iovec reservation limits, preserved verbatim from the original
// generator's dispatch emission.
const (
	rpcMaxReplyIovecs     = 16
	rpcMaxReplyIovecBytes = 1 << 20
)

// EmitRPC renders, for every (program, version) pair in schema, the
// dispatch struct, the call-dispatch function, the per-procedure reply
// helper, and the version-init constructor described in section 4.9.
func EmitRPC(p *Printer, schema *ast.Schema) {
	if len(schema.Programs) == 0 {
		return
	}

	p.Line("// RPCTransport is the caller-supplied collaborator a generated dispatcher")
	p.Line("// uses to reserve reply iovecs and hand off a marshaled reply.")
	p.Line("type RPCTransport interface {")
	p.Indent()
	p.Line("ReserveReplyIovecs(max int, maxBytes int) []Iovec")
	p.Line("DispatchReply(iov []Iovec)")
	p.Dedent()
	p.Line("}")
	p.Blank()

	p.Line("const (")
	p.Indent()
	p.Line("rpcMaxReplyIovecs     = %d", rpcMaxReplyIovecs)
	p.Line("rpcMaxReplyIovecBytes = %d", rpcMaxReplyIovecBytes)
	p.Dedent()
	p.Line(")")
	p.Blank()

	p.Line("// RPC dispatch results, returned by a version's call-dispatch function.")
	p.Line("const (")
	p.Indent()
	p.Line("RPCStatusOK            = 0")
	p.Line("RPCStatusUnimplemented = 1")
	p.Line("RPCStatusUnmarshalFail = 2")
	p.Dedent()
	p.Line(")")
	p.Blank()

	for _, prog := range schema.Programs {
		for _, v := range prog.Versions {
			emitVersion(p, prog, v)
		}
	}
}

func emitVersion(p *Printer, prog *ast.Program, v ast.Version) {
	name := GoTypeName(v.Name)

	p.Line("type %s struct {", name)
	p.Indent()
	p.Line("ProgramID uint32")
	p.Line("VersionID uint32")
	p.Line("Transport RPCTransport")
	p.Blank()

	for _, proc := range v.Procedures {
		p.Line("RecvCall%s func(%s) (%s, error)", GoTypeName(proc.Name), procArgType(&proc.CallType), procArgType(&proc.ReplyType))
		p.Line("Reply%s func(%s)", GoTypeName(proc.Name), procArgType(&proc.ReplyType))
	}

	p.Dedent()
	p.Line("}")
	p.Blank()

	p.Line("// %sInit zeroes dst, installs program/version identifiers, and wires the", name)
	p.Line("// dispatcher to transport; every RecvCall<Proc> callback starts unset and")
	p.Line("// must be assigned before the corresponding procedure can be served.")
	p.Line("// Reply<Proc> is an app-facing field that no generated code touches:")
	p.Line("// %sInit never assigns it, and neither %sDispatch nor", name, name)
	p.Line("// SendReply<Proc> invokes it.")
	p.Line("func %sInit(dst *%s, transport RPCTransport) {", name, name)
	p.Indent()
	p.Line("*dst = %s{", name)
	p.Indent()
	p.Line("ProgramID: %s,", prog.ID)
	p.Line("VersionID: %s,", v.ID)
	p.Line("Transport: transport,")
	p.Dedent()
	p.Line("}")
	p.Dedent()
	p.Line("}")
	p.Blank()

	p.Line("// %sDispatch selects on procedure id: an unset callback reports", name)
	p.Line("// RPCStatusUnimplemented; otherwise the non-void call payload (if any) is")
	p.Line("// unmarshaled using dbuf before the callback runs.")
	p.Line("func %sDispatch(dst *%s, procID uint32, call []Iovec, dbuf *DecodeBuffer) int {", name, name)
	p.Indent()
	p.Line("switch procID {")

	for _, proc := range v.Procedures {
		p.Line("case %s:", proc.ID)
		p.Indent()
		emitProcDispatch(p, name, &proc)
		p.Dedent()
	}

	p.Line("default:")
	p.Indent()
	p.Line("return RPCStatusUnimplemented")
	p.Dedent()
	p.Line("}")
	p.Dedent()
	p.Line("}")
	p.Blank()

	for _, proc := range v.Procedures {
		emitSendReply(p, name, &proc)
	}
}

func emitProcDispatch(p *Printer, versionName string, proc *ast.Procedure) {
	procName := GoTypeName(proc.Name)

	p.Line("if dst.RecvCall%s == nil {", procName)
	p.Indent()
	p.Line("return RPCStatusUnimplemented")
	p.Dedent()
	p.Line("}")
	p.Blank()

	if proc.CallType.IsVoid() {
		p.Line("reply, err := dst.RecvCall%s(struct{}{})", procName)
	} else {
		p.Line("args, _, err := Unmarshal%s(call, dbuf)", GoTypeName(proc.CallType.Name))
		p.Line("if err != nil {")
		p.Indent()
		p.Line("return RPCStatusUnmarshalFail")
		p.Dedent()
		p.Line("}")
		p.Blank()
		p.Line("reply, err := dst.RecvCall%s(args[0])", procName)
	}

	p.Line("if err != nil {")
	p.Indent()
	p.Line("return RPCStatusUnmarshalFail")
	p.Dedent()
	p.Line("}")
	p.Blank()
	p.Line("dst.SendReply%s(reply)", procName)
	p.Blank()
	p.Line("return RPCStatusOK")
}

// emitSendReply renders SendReply<Proc>: reserve up to rpcMaxReplyIovecs
// iovecs of up to rpcMaxReplyIovecBytes from the transport, marshal the
// reply, commit the used subset, and hand it to the transport's dispatch
// callback. A reserve or marshal failure aborts: per section 4.9, a reply
// that fails to marshal after a successful call indicates a
// generator/runtime mismatch, not a condition the caller can recover from.
func emitSendReply(p *Printer, versionName string, proc *ast.Procedure) {
	procName := GoTypeName(proc.Name)

	p.Line("func (dst *%s) SendReply%s(reply %s) {", versionName, procName, procArgType(&proc.ReplyType))
	p.Indent()
	p.Line("pool := dst.Transport.ReserveReplyIovecs(rpcMaxReplyIovecs, rpcMaxReplyIovecBytes)")

	if proc.ReplyType.IsVoid() {
		p.Line("dst.Transport.DispatchReply(pool[:0])")
	} else {
		p.Line("used, _, err := Marshal%s([]%s{reply}, pool)", GoTypeName(proc.ReplyType.Name), GoTypeName(proc.ReplyType.Name))
		p.Line("if err != nil {")
		p.Indent()
		p.Line(`panic("xdrgen: reply marshal failed after successful call: " + err.Error())`)
		p.Dedent()
		p.Line("}")
		p.Blank()
		p.Line("dst.Transport.DispatchReply(used)")
	}

	p.Dedent()
	p.Line("}")
	p.Blank()
}

// procArgType renders the Go type of an RPC call/reply payload: the empty
// struct for void, otherwise the payload's generated aggregate type.
func procArgType(t *ast.TypeRef) string {
	if t.IsVoid() {
		return "struct{}"
	}

	return GoTypeName(t.Name)
}
