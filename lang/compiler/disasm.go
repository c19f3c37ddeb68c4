package compiler

import (
	"fmt"
	"io"
)

// Disassemble writes a human-readable listing of every instruction in
// proto's chunk (and recursively, every nested function's chunk) to w.
// It backs the CLI's "disasm" subcommand and is the most direct way to
// eyeball that the compiler emits what spec.md §4.3 expects.
func Disassemble(w io.Writer, proto *FunctionProto) {
	disasmChunk(w, &proto.Chunk, proto.String())
	for _, c := range proto.Chunk.Constants {
		if nested, ok := c.(*FunctionProto); ok {
			Disassemble(w, nested)
		}
	}
}

func disasmChunk(w io.Writer, chunk *Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(chunk.Code); {
		offset = disasmInstruction(w, chunk, offset)
	}
}

func disasmInstruction(w io.Writer, chunk *Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && chunk.Lines[offset] == chunk.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", chunk.Lines[offset])
	}

	op := OpCode(chunk.Code[offset])
	switch op {
	case OpConstant:
		return constantInstruction(w, op, chunk, offset)
	case OpConstantLong:
		return constantLongInstruction(w, op, chunk, offset)
	case OpGetLocal, OpSetLocal, OpCall:
		return byteInstruction(w, op, chunk, offset)
	case OpGetGlobal, OpDefineGlobal, OpSetGlobal,
		OpGetProperty, OpSetProperty, OpGetSuper,
		OpClass, OpMethod:
		return constantInstruction(w, op, chunk, offset)
	case OpClosure:
		return closureInstruction(w, chunk, offset)
	case OpGetUpvalue, OpSetUpvalue:
		return byteInstruction(w, op, chunk, offset)
	case OpInvoke, OpSuperInvoke:
		return invokeInstruction(w, op, chunk, offset)
	case OpJump, OpJumpIfFalse:
		return jumpInstruction(w, op, chunk, offset, 1)
	case OpLoop:
		return jumpInstruction(w, op, chunk, offset, -1)
	default:
		fmt.Fprintf(w, "%s\n", op)
		return offset + 1
	}
}

func simpleValue(chunk *Chunk, idx int) string {
	switch v := chunk.Constants[idx].(type) {
	case *FunctionProto:
		return v.String()
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func constantInstruction(w io.Writer, op OpCode, chunk *Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", op, idx, simpleValue(chunk, int(idx)))
	return offset + 2
}

func constantLongInstruction(w io.Writer, op OpCode, chunk *Chunk, offset int) int {
	idx := int(chunk.Code[offset+1]) | int(chunk.Code[offset+2])<<8 | int(chunk.Code[offset+3])<<16
	fmt.Fprintf(w, "%-16s %4d '%s'\n", op, idx, simpleValue(chunk, idx))
	return offset + 4
}

// closureInstruction prints OP_CLOSURE plus its trailing
// upvalue_count*(is_local, index) byte pairs (spec.md §4.3 "CLOSURE c1,
// then upvalue_count x (is_local:1, index:1)").
func closureInstruction(w io.Writer, chunk *Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", OpClosure, idx, simpleValue(chunk, int(idx)))
	offset += 2

	proto, _ := chunk.Constants[idx].(*FunctionProto)
	if proto == nil {
		return offset
	}
	for i := 0; i < len(proto.Upvalues); i++ {
		isLocal := chunk.Code[offset]
		index := chunk.Code[offset+1]
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", offset, kind, index)
		offset += 2
	}
	return offset
}

func byteInstruction(w io.Writer, op OpCode, chunk *Chunk, offset int) int {
	slot := chunk.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d\n", op, slot)
	return offset + 2
}

func invokeInstruction(w io.Writer, op OpCode, chunk *Chunk, offset int) int {
	idx := chunk.Code[offset+1]
	argCount := chunk.Code[offset+2]
	fmt.Fprintf(w, "%-16s (%d args) %4d '%s'\n", op, argCount, idx, simpleValue(chunk, int(idx)))
	return offset + 3
}

func jumpInstruction(w io.Writer, op OpCode, chunk *Chunk, offset int, sign int) int {
	jump := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	fmt.Fprintf(w, "%-16s %4d -> %d\n", op, offset, offset+3+sign*jump)
	return offset + 3
}
