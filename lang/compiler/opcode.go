package compiler

import "fmt"

// OpCode identifies a bytecode instruction. The instruction set and operand
// widths follow spec.md §4.3 exactly: c1/s1/u1/a1 are one-byte operands, c3
// is a three-byte little-endian constant index (CONSTANT_LONG, added per
// the Open Question in spec.md §9), and j2 is a two-byte big-endian jump
// offset.
//
// Naming and the "stack picture" comment convention are grounded on the
// teacher's lang/compiler/opcode.go; the instruction set itself departs
// from the teacher's CFG/varint encoding because spec.md §4.2/§4.3/§9
// mandates a single-pass compiler with fixed-width 16-bit jump operands and
// explicit emit_jump/patch_jump bookkeeping, which the teacher's
// block-linearizing compiler does not use.
type OpCode uint8

//nolint:revive
const (
	OpConstant     OpCode = iota //                    - OpConstant<c1>        value
	OpConstantLong               //                    - OpConstantLong<c3>    value
	OpNil                        //                    - OpNil                 nil
	OpTrue                       //                    - OpTrue                true
	OpFalse                      //                    - OpFalse               false
	OpPop                        //                value OpPop                 -

	OpGetLocal  //      - OpGetLocal<s1>  value
	OpSetLocal  //  value OpSetLocal<s1>  value
	OpGetGlobal //      - OpGetGlobal<c1>  value
	OpDefineGlobal
	OpSetGlobal

	OpGetUpvalue
	OpSetUpvalue
	OpCloseUpvalue

	OpGetProperty
	OpSetProperty
	OpGetSuper

	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate

	OpPrint

	OpJump
	OpJumpIfFalse
	OpLoop

	OpCall

	OpInvoke
	OpSuperInvoke

	OpClosure

	OpReturn

	OpClass
	OpInherit
	OpMethod
)

var opcodeNames = [...]string{
	OpConstant:     "OP_CONSTANT",
	OpConstantLong: "OP_CONSTANT_LONG",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpGetLocal:     "OP_GET_LOCAL",
	OpSetLocal:     "OP_SET_LOCAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpGetUpvalue:   "OP_GET_UPVALUE",
	OpSetUpvalue:   "OP_SET_UPVALUE",
	OpCloseUpvalue: "OP_CLOSE_UPVALUE",
	OpGetProperty:  "OP_GET_PROPERTY",
	OpSetProperty:  "OP_SET_PROPERTY",
	OpGetSuper:     "OP_GET_SUPER",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpPrint:        "OP_PRINT",
	OpJump:         "OP_JUMP",
	OpJumpIfFalse:  "OP_JUMP_IF_FALSE",
	OpLoop:         "OP_LOOP",
	OpCall:         "OP_CALL",
	OpInvoke:       "OP_INVOKE",
	OpSuperInvoke:  "OP_SUPER_INVOKE",
	OpClosure:      "OP_CLOSURE",
	OpReturn:       "OP_RETURN",
	OpClass:        "OP_CLASS",
	OpInherit:      "OP_INHERIT",
	OpMethod:       "OP_METHOD",
}

func (op OpCode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("OP_UNKNOWN(%d)", byte(op))
}
