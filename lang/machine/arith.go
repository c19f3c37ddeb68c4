package machine

import "github.com/loxlang/golox/lang/compiler"

// numericCompare implements GREATER/LESS (spec.md §4.4 "comparisons are
// number-only").
func (th *Thread) numericCompare(op compiler.OpCode) error {
	y, yok := th.peek(0).(Number)
	x, xok := th.peek(1).(Number)
	if !xok || !yok {
		return th.runtimeErrorf("Operands must be numbers.")
	}
	th.pop()
	th.pop()
	if op == compiler.OpGreater {
		th.push(Bool(x > y))
	} else {
		th.push(Bool(x < y))
	}
	return nil
}

// numericBinary implements SUBTRACT/MULTIPLY/DIVIDE.
func (th *Thread) numericBinary(op compiler.OpCode) error {
	y, yok := th.peek(0).(Number)
	x, xok := th.peek(1).(Number)
	if !xok || !yok {
		return th.runtimeErrorf("Operands must be numbers.")
	}
	th.pop()
	th.pop()
	switch op {
	case compiler.OpSubtract:
		th.push(x - y)
	case compiler.OpMultiply:
		th.push(x * y)
	case compiler.OpDivide:
		th.push(x / y)
	}
	return nil
}

// add implements ADD: numeric addition for two numbers, interned
// concatenation for two strings, else a runtime error (spec.md §4.4
// "Addition").
func (th *Thread) add() error {
	y := th.peek(0)
	x := th.peek(1)

	if xn, ok := x.(Number); ok {
		if yn, ok := y.(Number); ok {
			th.pop()
			th.pop()
			th.push(xn + yn)
			return nil
		}
	}
	if xs, ok := x.(*ObjString); ok {
		if ys, ok := y.(*ObjString); ok {
			th.pop()
			th.pop()
			th.push(th.InternString(xs.Value + ys.Value))
			return nil
		}
	}
	return th.runtimeErrorf("Operands must be two numbers or two strings.")
}
