package machine

// callValue implements the CALL a dispatch table of spec.md §4.4 "Call
// semantics". It returns false (with th.lastCallErr set) on any failure,
// so the hot dispatch loop in run() can check it with a single branch.
func (th *Thread) callValue(callee Value, argCount int) bool {
	switch c := callee.(type) {
	case *ObjClosure:
		return th.call(c, argCount)
	case *ObjNative:
		args := th.stack[th.stackTop-argCount : th.stackTop]
		result, err := c.Fn(th, args)
		if err != nil {
			th.lastCallErr = th.runtimeErrorf("%s", err.Error())
			return false
		}
		th.stackTop -= argCount + 1
		th.push(result)
		return true
	case *ObjClass:
		inst := th.newInstance(c)
		th.stack[th.stackTop-argCount-1] = inst
		if init, ok := c.findMethod(th.InternString("init")); ok {
			return th.call(init, argCount)
		}
		if argCount != 0 {
			th.lastCallErr = th.runtimeErrorf("Expected 0 arguments but got %d.", argCount)
			return false
		}
		return true
	case *ObjBoundMethod:
		th.stack[th.stackTop-argCount-1] = c.Receiver
		return th.call(c.Method, argCount)
	default:
		th.lastCallErr = th.runtimeErrorf("Can only call functions and classes.")
		return false
	}
}

// call pushes a new CallFrame for closure, validating arity and the
// MaxCallFrames bound (spec.md §4.4 "Stack overflow").
func (th *Thread) call(closure *ObjClosure, argCount int) bool {
	if argCount != closure.Fn.Proto.Arity {
		th.lastCallErr = th.runtimeErrorf("Expected %d arguments but got %d.", closure.Fn.Proto.Arity, argCount)
		return false
	}
	if len(th.frames) >= th.MaxCallFrames {
		th.lastCallErr = th.runtimeErrorf("Stack overflow.")
		return false
	}
	th.frames = append(th.frames, CallFrame{
		closure:   closure,
		ip:        0,
		slotsBase: th.stackTop - argCount - 1,
	})
	return true
}

// invoke implements the OP_INVOKE fast path: look up name on the receiver
// at top-argCount-1 without first materializing a BoundMethod.
func (th *Thread) invoke(name *ObjString, argCount int) bool {
	receiver := th.peek(argCount)
	inst, ok := receiver.(*ObjInstance)
	if !ok {
		th.lastCallErr = th.runtimeErrorf("Only instances have methods.")
		return false
	}
	if v, ok := inst.Fields[name]; ok {
		th.stack[th.stackTop-argCount-1] = v
		return th.callValue(v, argCount)
	}
	return th.invokeFromClass(inst.Class, name, argCount)
}

func (th *Thread) invokeFromClass(class *ObjClass, name *ObjString, argCount int) bool {
	method, ok := class.findMethod(name)
	if !ok {
		th.lastCallErr = th.runtimeErrorf("Undefined property '%s'.", name.Value)
		return false
	}
	return th.call(method, argCount)
}

// captureUpvalue returns the open upvalue for the stack slot at index,
// reusing an existing one if the intrusive open list (sorted by descending
// StackIndex) already has it, else inserting a new one in sorted position
// (spec.md §4.4 "State").
func (th *Thread) captureUpvalue(index int) *ObjUpvalue {
	var prev *ObjUpvalue
	uv := th.openUpvalues
	for uv != nil && uv.StackIndex > index {
		prev = uv
		uv = uv.Next
	}
	if uv != nil && uv.StackIndex == index {
		return uv
	}

	created := th.newUpvalue(index)
	created.Next = uv
	if prev == nil {
		th.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues closes every open upvalue at or above stack index
// lastIndex, moving the stack value into the upvalue's own Closed cell
// (spec.md §4.4 "CLOSE_UPVALUE").
func (th *Thread) closeUpvalues(lastIndex int) {
	for th.openUpvalues != nil && th.openUpvalues.StackIndex >= lastIndex {
		uv := th.openUpvalues
		uv.Closed = *uv.Location
		uv.Location = &uv.Closed
		th.openUpvalues = uv.Next
	}
}
