package machine

import (
	"fmt"

	"golang.org/x/exp/maps"

	"github.com/loxlang/golox/lang/compiler"
)

// Run wraps the top-level FunctionProto produced by lang/compiler.Compile
// in a zero-upvalue closure and executes it to completion. Globals persist
// across calls on the same Thread; the value stack, call frames and open
// upvalues left behind by an earlier call that failed are discarded first.
// It (re)registers the native functions in th's globals on every call.
func Run(th *Thread, proto *compiler.FunctionProto) error {
	th.frames = th.frames[:0]
	th.openUpvalues = nil
	th.stackTop = 0
	registerNatives(th)

	fn := th.newFunction(proto)
	th.push(fn)
	closure := th.newClosure(fn, nil)
	th.stack[0] = closure
	th.stackTop = 1

	if !th.callValue(closure, 0) {
		return th.lastCallErr
	}
	return th.run()
}

func (th *Thread) frame() *CallFrame { return &th.frames[len(th.frames)-1] }

func (th *Thread) readByte() byte {
	fr := th.frame()
	b := fr.closure.Fn.Proto.Chunk.Code[fr.ip]
	fr.ip++
	return b
}

func (th *Thread) readShort() int {
	hi := th.readByte()
	lo := th.readByte()
	return int(hi)<<8 | int(lo)
}

func (th *Thread) readConstantRaw() interface{} {
	fr := th.frame()
	idx := int(th.readByte())
	return fr.closure.Fn.Proto.Chunk.Constants[idx]
}

func (th *Thread) readConstantLongRaw() interface{} {
	fr := th.frame()
	b0 := th.readByte()
	b1 := th.readByte()
	b2 := th.readByte()
	idx := int(b0) | int(b1)<<8 | int(b2)<<16
	return fr.closure.Fn.Proto.Chunk.Constants[idx]
}

// constantValue converts a compile-time constant-pool entry (a plain Go
// float64/string/*FunctionProto, per lang/compiler/chunk.go's doc comment)
// into a runtime Value, interning strings as it goes (spec.md §9 "the
// compiler interns all string constants, not only identifiers").
func (th *Thread) constantValue(raw interface{}) Value {
	switch c := raw.(type) {
	case float64:
		return Number(c)
	case string:
		return th.InternString(c)
	case *compiler.FunctionProto:
		return th.newFunction(c)
	default:
		panic(fmt.Sprintf("unexpected constant %T", raw))
	}
}

func (th *Thread) readName() *ObjString {
	return th.constantValue(th.readConstantRaw()).(*ObjString)
}

// run executes bytecode until the outermost call frame returns or a
// runtime error occurs (spec.md §4.4 "Dispatch").
func (th *Thread) run() error {
	for {
		th.maybeCollect()

		fr := th.frame()
		op := compiler.OpCode(th.readByte())

		switch op {
		case compiler.OpConstant:
			th.push(th.constantValue(th.readConstantRaw()))

		case compiler.OpConstantLong:
			th.push(th.constantValue(th.readConstantLongRaw()))

		case compiler.OpNil:
			th.push(Nil)
		case compiler.OpTrue:
			th.push(True)
		case compiler.OpFalse:
			th.push(False)
		case compiler.OpPop:
			th.pop()

		case compiler.OpGetLocal:
			slot := int(th.readByte())
			th.push(th.stack[fr.slotsBase+slot])
		case compiler.OpSetLocal:
			slot := int(th.readByte())
			th.stack[fr.slotsBase+slot] = th.peek(0)

		case compiler.OpGetGlobal:
			name := th.readName()
			v, ok := th.globals.Get(name)
			if !ok {
				return th.fail(th.runtimeErrorf("Undefined variable '%s'.", name.Value))
			}
			th.push(v)
		case compiler.OpDefineGlobal:
			name := th.readName()
			th.globals.Put(name, th.peek(0))
			th.pop()
		case compiler.OpSetGlobal:
			name := th.readName()
			if _, ok := th.globals.Get(name); !ok {
				return th.fail(th.runtimeErrorf("Undefined variable '%s'.", name.Value))
			}
			th.globals.Put(name, th.peek(0))

		case compiler.OpGetUpvalue:
			idx := int(th.readByte())
			th.push(*fr.closure.Upvalues[idx].Location)
		case compiler.OpSetUpvalue:
			idx := int(th.readByte())
			*fr.closure.Upvalues[idx].Location = th.peek(0)
		case compiler.OpCloseUpvalue:
			th.closeUpvalues(th.stackTop - 1)
			th.pop()

		case compiler.OpGetProperty:
			name := th.readName()
			inst, ok := th.peek(0).(*ObjInstance)
			if !ok {
				return th.fail(th.runtimeErrorf("Only instances have properties."))
			}
			if v, ok := inst.Fields[name]; ok {
				th.pop()
				th.push(v)
				break
			}
			method, ok := inst.Class.findMethod(name)
			if !ok {
				return th.fail(th.runtimeErrorf("Undefined property '%s'.", name.Value))
			}
			// inst must stay rooted on the stack (th.peek(0)) until the bound
			// method is built: newBoundMethod may trigger a collection, and
			// it has no other root pointing at the receiver.
			bound := th.newBoundMethod(th.peek(0), method)
			th.pop()
			th.push(bound)

		case compiler.OpSetProperty:
			inst, ok := th.peek(1).(*ObjInstance)
			if !ok {
				return th.fail(th.runtimeErrorf("Only instances have fields."))
			}
			name := th.readName()
			inst.Fields[name] = th.peek(0)
			v := th.pop()
			th.pop()
			th.push(v)

		case compiler.OpGetSuper:
			name := th.readName()
			superclass := th.pop().(*ObjClass)
			receiver := th.pop()
			method, ok := superclass.findMethod(name)
			if !ok {
				return th.fail(th.runtimeErrorf("Undefined property '%s'.", name.Value))
			}
			th.push(th.newBoundMethod(receiver, method))

		case compiler.OpEqual:
			y := th.pop()
			x := th.pop()
			th.push(Equal(x, y))
		case compiler.OpGreater, compiler.OpLess:
			if err := th.numericCompare(op); err != nil {
				return th.fail(err)
			}
		case compiler.OpAdd:
			if err := th.add(); err != nil {
				return th.fail(err)
			}
		case compiler.OpSubtract, compiler.OpMultiply, compiler.OpDivide:
			if err := th.numericBinary(op); err != nil {
				return th.fail(err)
			}
		case compiler.OpNot:
			th.push(Bool(!bool(Truth(th.pop()))))
		case compiler.OpNegate:
			n, ok := th.peek(0).(Number)
			if !ok {
				return th.fail(th.runtimeErrorf("Operand must be a number."))
			}
			th.pop()
			th.push(-n)

		case compiler.OpPrint:
			fmt.Fprintln(th.out(), th.pop().String())

		case compiler.OpJump:
			off := th.readShort()
			fr.ip += off
		case compiler.OpJumpIfFalse:
			off := th.readShort()
			if !bool(Truth(th.peek(0))) {
				fr.ip += off
			}
		case compiler.OpLoop:
			off := th.readShort()
			fr.ip -= off

		case compiler.OpCall:
			argCount := int(th.readByte())
			callee := th.peek(argCount)
			if !th.callValue(callee, argCount) {
				return th.fail(th.lastCallErr)
			}

		case compiler.OpInvoke:
			name := th.readName()
			argCount := int(th.readByte())
			if !th.invoke(name, argCount) {
				return th.fail(th.lastCallErr)
			}

		case compiler.OpSuperInvoke:
			name := th.readName()
			argCount := int(th.readByte())
			superclass := th.pop().(*ObjClass)
			if !th.invokeFromClass(superclass, name, argCount) {
				return th.fail(th.lastCallErr)
			}

		case compiler.OpClosure:
			raw := th.readConstantRaw()
			proto := raw.(*compiler.FunctionProto)
			fn := th.newFunction(proto)
			th.push(fn) // root fn before allocating upvalues/closure
			upvalues := make([]*ObjUpvalue, proto.UpvalueCount)
			for i := range upvalues {
				isLocal := th.readByte() != 0
				index := int(th.readByte())
				if isLocal {
					upvalues[i] = th.captureUpvalue(fr.slotsBase + index)
				} else {
					upvalues[i] = fr.closure.Upvalues[index]
				}
			}
			cl := th.newClosure(fn, upvalues)
			th.pop()
			th.push(cl)

		case compiler.OpReturn:
			result := th.pop()
			th.closeUpvalues(fr.slotsBase)
			base := fr.slotsBase
			th.frames = th.frames[:len(th.frames)-1]
			if len(th.frames) == 0 {
				th.stackTop = base
				return nil
			}
			th.stackTop = base
			th.push(result)

		case compiler.OpClass:
			name := th.readName()
			th.push(name) // keep name rooted while newClass may collect
			cls := th.newClass(name, nil)
			th.pop()
			th.push(cls)

		case compiler.OpInherit:
			superclassVal := th.peek(1)
			superclass, ok := superclassVal.(*ObjClass)
			if !ok {
				return th.fail(th.runtimeErrorf("Superclass must be a class."))
			}
			subclass := th.peek(0).(*ObjClass)
			subclass.Superclass = superclass
			maps.Copy(subclass.Methods, superclass.Methods)
			th.pop() // subclass

		case compiler.OpMethod:
			name := th.readName()
			method := th.pop().(*ObjClosure)
			class := th.peek(0).(*ObjClass)
			class.Methods[name] = method

		default:
			return th.fail(th.runtimeErrorf("internal error: unimplemented opcode %s", op))
		}
	}
}

// fail is a tiny helper so every error-returning opcode can read as
// `return th.fail(err)` instead of repeating the cast.
func (th *Thread) fail(err error) error { return err }
