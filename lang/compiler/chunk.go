package compiler

import "fmt"

// Chunk is an append-only unit of compiled bytecode: code bytes, a constant
// pool, and a parallel per-byte source-line map (spec.md §3 "Chunk").
//
// Constants holds float64 (Lox numbers), string (Lox string literals and
// identifiers — golox interns all of them, see DESIGN.md), and
// *FunctionProto (nested function blueprints referenced by OP_CLOSURE).
// Keeping Constants untyped here, rather than a machine.Value, is what lets
// this package avoid importing lang/machine: the VM converts a constant to
// a machine.Value each time an instruction reads it (lang/machine's
// constantValue) (mirrors the teacher's lang/compiler / lang/machine split, where
// compiler.Program.Constants are raw Go values and machine.makeToplevelFunction
// converts them).
type Chunk struct {
	Code      []byte
	Constants []interface{}
	Lines     []int
}

func (c *Chunk) write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// addConstant appends v to the constant pool and returns its index.
func (c *Chunk) addConstant(v interface{}) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// FunctionKind distinguishes the compile-time context of a function body,
// driving the reserved-slot-0 and return-value rules of spec.md §4.2.
type FunctionKind uint8

const (
	KindScript FunctionKind = iota
	KindFunction
	KindMethod
	KindInitializer
)

func (k FunctionKind) String() string {
	switch k {
	case KindScript:
		return "script"
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindInitializer:
		return "initializer"
	default:
		return "unknown"
	}
}

// UpvalueRef describes one entry of a FunctionProto's upvalue table, as
// emitted after OP_CLOSURE: IsLocal selects whether Index refers to a slot
// in the *enclosing* frame's locals or to one of the enclosing closure's
// own upvalues (spec.md §4.2 "addUpvalue").
type UpvalueRef struct {
	IsLocal bool
	Index   uint8
}

// FunctionProto is the compiled blueprint for a function or the top-level
// script: spec.md §3 Object kind "Function" (arity, upvalue count, chunk,
// optional name). It is closed over at runtime to produce a Closure
// object (lang/machine.ObjClosure).
type FunctionProto struct {
	Name         string
	Arity        int
	UpvalueCount int
	Chunk        Chunk
	Upvalues     []UpvalueRef
	Kind         FunctionKind
}

func (f *FunctionProto) String() string {
	if f.Name == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name)
}
