package machine

// CallFrame records one active call to a Closure: its return address (ip)
// into the closure's chunk, and the base stack slot its locals (including
// the receiver/callee at slot 0) start at. Named and shaped after the
// teacher's lang/machine.Frame, generalized from "the current callable +
// bytecode pc" to also carry the slot window the clox-style shared value
// stack needs.
type CallFrame struct {
	closure   *ObjClosure
	ip        int
	slotsBase int
}

// line returns the source line the frame is currently executing, used to
// build runtime error stack traces (spec.md §4.4 "Runtime errors").
func (fr *CallFrame) line() int {
	chunk := &fr.closure.Fn.Proto.Chunk
	idx := fr.ip - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(chunk.Lines) {
		if len(chunk.Lines) == 0 {
			return 0
		}
		idx = len(chunk.Lines) - 1
	}
	return chunk.Lines[idx]
}
