package compiler_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxlang/golox/lang/compiler"
	"github.com/loxlang/golox/lang/token"
)

func compileOK(t *testing.T, src string) *compiler.FunctionProto {
	t.Helper()
	var errs []string
	proto, ok := compiler.Compile("test.lox", []byte(src), func(pos token.Position, msg string) {
		errs = append(errs, msg)
	})
	require.Truef(t, ok, "compile errors: %v", errs)
	require.Empty(t, errs)
	return proto
}

func opcodes(proto *compiler.FunctionProto) []compiler.OpCode {
	var ops []compiler.OpCode
	code := proto.Chunk.Code
	for i := 0; i < len(code); {
		op := compiler.OpCode(code[i])
		ops = append(ops, op)
		i += instructionLen(proto, op, code, i)
	}
	return ops
}

// instructionLen is a minimal, test-only operand-width table mirroring
// disasm.go's switch, used to walk a chunk's instruction stream without
// depending on disassembly output formatting.
func instructionLen(proto *compiler.FunctionProto, op compiler.OpCode, code []byte, offset int) int {
	switch op {
	case compiler.OpConstant, compiler.OpGetLocal, compiler.OpSetLocal,
		compiler.OpGetGlobal, compiler.OpDefineGlobal, compiler.OpSetGlobal,
		compiler.OpGetUpvalue, compiler.OpSetUpvalue,
		compiler.OpGetProperty, compiler.OpSetProperty, compiler.OpGetSuper,
		compiler.OpCall, compiler.OpClass, compiler.OpMethod:
		return 2
	case compiler.OpConstantLong:
		return 4
	case compiler.OpInvoke, compiler.OpSuperInvoke:
		return 3
	case compiler.OpJump, compiler.OpJumpIfFalse, compiler.OpLoop:
		return 3
	case compiler.OpClosure:
		idx := code[offset+1]
		n := 2
		if p, ok := proto.Chunk.Constants[idx].(*compiler.FunctionProto); ok {
			n += 2 * len(p.Upvalues)
		}
		return n
	default:
		return 1
	}
}

func TestCompileArithmeticExpression(t *testing.T) {
	proto := compileOK(t, "print 1 + 2 * 3;")
	ops := opcodes(proto)
	assert.Contains(t, ops, compiler.OpAdd)
	assert.Contains(t, ops, compiler.OpMultiply)
	assert.Contains(t, ops, compiler.OpPrint)
	assert.Equal(t, compiler.OpReturn, ops[len(ops)-1])
}

func TestCompileGlobalVariable(t *testing.T) {
	proto := compileOK(t, "var x = 1; x = 2; print x;")
	ops := opcodes(proto)
	assert.Contains(t, ops, compiler.OpDefineGlobal)
	assert.Contains(t, ops, compiler.OpSetGlobal)
	assert.Contains(t, ops, compiler.OpGetGlobal)
}

func TestCompileLocalVariable(t *testing.T) {
	proto := compileOK(t, "{ var x = 1; print x; }")
	ops := opcodes(proto)
	assert.Contains(t, ops, compiler.OpGetLocal)
	assert.NotContains(t, ops, compiler.OpGetGlobal)
}

func TestCompileIfElse(t *testing.T) {
	proto := compileOK(t, `if (true) { print 1; } else { print 2; }`)
	ops := opcodes(proto)
	assert.Contains(t, ops, compiler.OpJumpIfFalse)
	assert.Contains(t, ops, compiler.OpJump)
}

func TestCompileWhileLoop(t *testing.T) {
	proto := compileOK(t, `var i = 0; while (i < 3) { i = i + 1; }`)
	ops := opcodes(proto)
	assert.Contains(t, ops, compiler.OpLoop)
}

func TestCompileClosureCapturesUpvalue(t *testing.T) {
	proto := compileOK(t, `
		fun outer() {
			var x = 1;
			fun inner() { return x; }
			return inner;
		}
	`)
	ops := opcodes(proto)
	require.Contains(t, ops, compiler.OpClosure)

	var outerFn *compiler.FunctionProto
	for _, c := range proto.Chunk.Constants {
		if p, ok := c.(*compiler.FunctionProto); ok && p.Name == "outer" {
			outerFn = p
		}
	}
	require.NotNil(t, outerFn)

	var innerFn *compiler.FunctionProto
	for _, c := range outerFn.Chunk.Constants {
		if p, ok := c.(*compiler.FunctionProto); ok && p.Name == "inner" {
			innerFn = p
		}
	}
	require.NotNil(t, innerFn)
	require.Len(t, innerFn.Upvalues, 1)
	assert.True(t, innerFn.Upvalues[0].IsLocal)
}

func TestCompileClassAndMethod(t *testing.T) {
	proto := compileOK(t, `
		class Greeter {
			init(name) { this.name = name; }
			greet() { return this.name; }
		}
	`)
	ops := opcodes(proto)
	assert.Contains(t, ops, compiler.OpClass)
	assert.Contains(t, ops, compiler.OpMethod)
}

func TestCompileClassInheritanceAndSuper(t *testing.T) {
	proto := compileOK(t, `
		class A { greet() { return "a"; } }
		class B < A { greet() { return super.greet(); } }
	`)
	ops := opcodes(proto)
	assert.Contains(t, ops, compiler.OpInherit)
	assert.Contains(t, ops, compiler.OpSuperInvoke)
}

func TestCompileErrorUndefinedAssignmentTarget(t *testing.T) {
	var errs []string
	_, ok := compiler.Compile("test.lox", []byte("1 + 2 = 3;"), func(pos token.Position, msg string) {
		errs = append(errs, msg)
	})
	require.False(t, ok)
	require.NotEmpty(t, errs)
	assert.True(t, strings.Contains(errs[0], "Invalid assignment target."))
}

func TestCompileErrorInheritFromSelf(t *testing.T) {
	var errs []string
	_, ok := compiler.Compile("test.lox", []byte("class A < A {}"), func(pos token.Position, msg string) {
		errs = append(errs, msg)
	})
	require.False(t, ok)
	assert.Contains(t, errs, "A class can't inherit from itself.")
}

func TestCompileErrorTooManyLocals(t *testing.T) {
	var src strings.Builder
	src.WriteString("{\n")
	for i := 0; i < 257; i++ {
		src.WriteString("var a")
		src.WriteString(strconv.Itoa(i))
		src.WriteString(" = 0;\n")
	}
	src.WriteString("}\n")

	var errs []string
	_, ok := compiler.Compile("test.lox", []byte(src.String()), func(pos token.Position, msg string) {
		errs = append(errs, msg)
	})
	require.False(t, ok)
	assert.Contains(t, errs, "Too many local variables in function.")
}
