package machine

import (
	"fmt"

	"github.com/loxlang/golox/lang/compiler"
	"github.com/loxlang/golox/lang/gc"
)

// ObjString is an interned Lox string. Equality and map-keying both rely on
// pointer identity: every *ObjString reachable from a running program is
// unique for its byte content (lang/gc.Interner), mirroring how the
// teacher's lang/types.String/lang/machine.cell types are small, focused
// wrappers rather than a single catch-all Object type.
type ObjString struct {
	gc.Header
	Value string
}

var _ Value = (*ObjString)(nil)

func (s *ObjString) String() string { return s.Value }
func (*ObjString) Type() string     { return "string" }

// ObjFunction is the runtime counterpart of a compiler.FunctionProto: the
// immutable, shareable blueprint of a function body. It is never called
// directly — OP_CLOSURE always wraps it in an ObjClosure first, even for
// functions that capture nothing, exactly as in clox.
type ObjFunction struct {
	gc.Header
	Proto *compiler.FunctionProto
}

var _ Value = (*ObjFunction)(nil)

func (f *ObjFunction) String() string { return f.Proto.String() }
func (*ObjFunction) Type() string     { return "function" }

// ObjUpvalue is a reference cell shared between a closure and the stack slot
// (or enclosing upvalue) it captures. Open upvalues point into the VM's
// value stack; Closed upvalues own their value directly once the stack
// frame that created them returns (spec.md §4.2 "Upvalues"). The boxing
// idea is grounded on the teacher's lang/machine/cell.go.
type ObjUpvalue struct {
	gc.Header
	Location   *Value // points into the stack while open, or at Closed while closed
	StackIndex int     // th.stack index Location was taken from; only meaningful while open
	Closed     Value
	Next       *ObjUpvalue // intrusive list of open upvalues, sorted by descending StackIndex
}

var _ Value = (*ObjUpvalue)(nil)

func (u *ObjUpvalue) String() string { return "upvalue" }
func (*ObjUpvalue) Type() string     { return "upvalue" }

// ObjClosure pairs an ObjFunction with the upvalues it captured at creation
// time. Calls to Lox functions always go through an ObjClosure; an
// ObjFunction is never called directly (spec.md §3 Object kind "Closure").
type ObjClosure struct {
	gc.Header
	Fn       *ObjFunction
	Upvalues []*ObjUpvalue
}

var _ Value = (*ObjClosure)(nil)

func (c *ObjClosure) String() string { return c.Fn.String() }
func (*ObjClosure) Type() string     { return "closure" }

// NativeFn is the signature every native (built-in) function implements.
// args is the slice of argument values; the caller does not check their
// count, so each native checks it itself. Errors surface as Lox runtime
// errors.
type NativeFn func(th *Thread, args []Value) (Value, error)

// ObjNative wraps a Go function so it can be stored as a Lox value and
// invoked through OP_CALL, following the teacher's pattern of exposing
// built-ins as ordinary Callable values (lang/machine.Callable).
type ObjNative struct {
	gc.Header
	Name string
	Fn   NativeFn
}

var _ Value = (*ObjNative)(nil)

func (n *ObjNative) String() string { return fmt.Sprintf("<native fn %s>", n.Name) }
func (*ObjNative) Type() string     { return "native" }

// ObjClass is a Lox class: a name, its method table, and (if any) the
// superclass whose methods it inherits and may override (spec.md §3 Object
// kind "Class").
type ObjClass struct {
	gc.Header
	Name       *ObjString
	Superclass *ObjClass
	Methods    map[*ObjString]*ObjClosure
}

var _ Value = (*ObjClass)(nil)

func (c *ObjClass) String() string { return c.Name.Value }
func (*ObjClass) Type() string     { return "class" }

// findMethod walks the inheritance chain looking up name, matching clox's
// bindMethod/findMethod semantics: a subclass method table entry always
// shadows one inherited from a superclass.
func (c *ObjClass) findMethod(name *ObjString) (*ObjClosure, bool) {
	for cls := c; cls != nil; cls = cls.Superclass {
		if m, ok := cls.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// ObjInstance is a runtime instance of an ObjClass, holding its own field
// table separate from the class's shared method table (spec.md §3 Object
// kind "Instance").
type ObjInstance struct {
	gc.Header
	Class  *ObjClass
	Fields map[*ObjString]Value
}

var _ Value = (*ObjInstance)(nil)

func (i *ObjInstance) String() string { return i.Class.Name.Value + " instance" }
func (*ObjInstance) Type() string     { return "instance" }

// ObjBoundMethod pairs a receiver instance with one of its class's methods,
// produced by OP_GET_PROPERTY / OP_GET_SUPER when the looked-up name
// resolves to a method rather than a field (spec.md §3 Object kind
// "BoundMethod").
type ObjBoundMethod struct {
	gc.Header
	Receiver Value
	Method   *ObjClosure
}

var _ Value = (*ObjBoundMethod)(nil)

func (b *ObjBoundMethod) String() string { return b.Method.String() }
func (*ObjBoundMethod) Type() string     { return "bound method" }
