package machine

import "github.com/loxlang/golox/lang/compiler"

// Apart from InternString (thread.go), which registers new strings without
// giving the GC a chance to run, the newXxx helpers are the only allocation
// sites in this package: each registers the object with the heap (so it can
// be swept) and gives the GC a chance to run first. Per spec.md §4.6 "Interactions", any value the new
// object depends on must already be reachable from a root — a stack slot or
// a global — before the allocating call, which is why every call site below
// pushes its inputs onto th.stack (or otherwise roots them) first.

func (th *Thread) newFunction(proto *compiler.FunctionProto) *ObjFunction {
	th.maybeCollect()
	fn := &ObjFunction{Proto: proto}
	th.heap.Register(fn, 64)
	return fn
}

func (th *Thread) newClosure(fn *ObjFunction, upvalues []*ObjUpvalue) *ObjClosure {
	th.maybeCollect()
	cl := &ObjClosure{Fn: fn, Upvalues: upvalues}
	th.heap.Register(cl, 32+8*len(upvalues))
	return cl
}

func (th *Thread) newUpvalue(index int) *ObjUpvalue {
	th.maybeCollect()
	uv := &ObjUpvalue{Location: &th.stack[index], StackIndex: index}
	th.heap.Register(uv, 32)
	return uv
}

func (th *Thread) newClass(name *ObjString, superclass *ObjClass) *ObjClass {
	th.maybeCollect()
	cls := &ObjClass{Name: name, Superclass: superclass, Methods: make(map[*ObjString]*ObjClosure)}
	th.heap.Register(cls, 64)
	return cls
}

func (th *Thread) newInstance(class *ObjClass) *ObjInstance {
	th.maybeCollect()
	inst := &ObjInstance{Class: class, Fields: make(map[*ObjString]Value)}
	th.heap.Register(inst, 64)
	return inst
}

func (th *Thread) newBoundMethod(receiver Value, method *ObjClosure) *ObjBoundMethod {
	th.maybeCollect()
	bm := &ObjBoundMethod{Receiver: receiver, Method: method}
	th.heap.Register(bm, 32)
	return bm
}

func (th *Thread) newNative(name string, fn NativeFn) *ObjNative {
	th.maybeCollect()
	n := &ObjNative{Name: name, Fn: fn}
	th.heap.Register(n, 32)
	return n
}
