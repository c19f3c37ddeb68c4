package machine

import "time"

// registerNatives installs the native (built-in) functions spec.md §5
// describes: clock() for benchmarking test programs, plus str() and
// type(), which expose Value.String() and Value.Type() to Lox programs.
func registerNatives(th *Thread) {
	def := func(name string, fn NativeFn) {
		// newNative may collect, so the name is interned only after it:
		// InternString never collects, and Put roots both right away.
		nat := th.newNative(name, fn)
		th.globals.Put(th.InternString(name), nat)
	}

	def("clock", func(th *Thread, args []Value) (Value, error) {
		if len(args) != 0 {
			return nil, th.runtimeErrorf("Expected 0 arguments but got %d.", len(args))
		}
		return Number(float64(time.Now().UnixNano()-th.startTime) / 1e9), nil
	})

	def("str", func(th *Thread, args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, th.runtimeErrorf("Expected 1 argument but got %d.", len(args))
		}
		return th.InternString(args[0].String()), nil
	})

	def("type", func(th *Thread, args []Value) (Value, error) {
		if len(args) != 1 {
			return nil, th.runtimeErrorf("Expected 1 argument but got %d.", len(args))
		}
		return th.InternString(args[0].Type()), nil
	})
}
