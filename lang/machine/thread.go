package machine

import (
	"io"
	"os"
	"time"

	"github.com/dolthub/swiss"

	"github.com/loxlang/golox/lang/gc"
)

// Thread is a single, synchronous VM instance: its value stack, call
// frames, globals, open-upvalue list and the heap it owns (spec.md §4.4
// "State"). Shaped after the teacher's lang/machine.Thread — an I/O-bound
// struct holding the knobs that govern one execution — generalized from an
// embeddable-language thread to the fixed resource limits spec.md §5
// requires (stack slots, call-frame depth, GC thresholds).
type Thread struct {
	// Name optionally identifies the thread for diagnostics.
	Name string

	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// StackSlots bounds the value stack (spec.md §4.4 "fixed-capacity value
	// stack, default >= 256 values").
	StackSlots int
	// MaxCallFrames bounds call-frame nesting; exceeding it is the runtime
	// error "Stack overflow." (spec.md §4.4).
	MaxCallFrames int

	stack    []Value
	stackTop int

	frames []CallFrame

	globals *swiss.Map[*ObjString, Value]

	openUpvalues *ObjUpvalue

	strings *gc.Interner[*ObjString]
	heap    *gc.Heap

	startTime int64 // unix nanos at NewThread, used by the clock() native

	// lastCallErr carries the error produced by a callValue/invoke that
	// returned false. Those helpers return a bool (rather than an error)
	// because they're called from the hot dispatch loop where a cheap
	// boolean check reads better than an error comparison; the loop reads
	// this field immediately after to build its own return value.
	lastCallErr error
}

// NewThread constructs a ready-to-run Thread. stackSlots and maxCallFrames
// come from internal/config's resolved Config; a zero value for either
// falls back to spec.md's defaults.
func NewThread(stackSlots, maxCallFrames int, gcInitialThreshold int, gcGrowthFactor float64, gcStressTest bool) *Thread {
	if stackSlots <= 0 {
		stackSlots = 256
	}
	if maxCallFrames <= 0 {
		maxCallFrames = 64
	}
	th := &Thread{
		StackSlots:    stackSlots,
		MaxCallFrames: maxCallFrames,
		stack:         make([]Value, stackSlots),
		frames:        make([]CallFrame, 0, maxCallFrames),
		globals:       swiss.NewMap[*ObjString, Value](64),
		strings:       gc.NewInterner[*ObjString](),
		heap:          gc.NewHeap(gcInitialThreshold, gcGrowthFactor),
		startTime:     time.Now().UnixNano(),
	}
	th.heap.StressTest = gcStressTest
	return th
}

func (th *Thread) out() io.Writer {
	if th.Stdout != nil {
		return th.Stdout
	}
	return os.Stdout
}

func (th *Thread) errOut() io.Writer {
	if th.Stderr != nil {
		return th.Stderr
	}
	return os.Stderr
}

// InternString returns the canonical *ObjString for s, allocating and
// registering a new one on first sight (spec.md §4.5 "String Interner").
func (th *Thread) InternString(s string) *ObjString {
	return th.strings.Intern(s, func(s string) *ObjString {
		obj := &ObjString{Value: s}
		th.heap.Register(obj, len(s)+16)
		return obj
	})
}

// push and pop manipulate the value stack directly; callers are trusted not
// to overflow/underflow, matching clox's unchecked push()/pop() macros.
// The only depth check is on call depth, made at call time against
// MaxCallFrames.
func (th *Thread) push(v Value) {
	th.stack[th.stackTop] = v
	th.stackTop++
}

func (th *Thread) pop() Value {
	th.stackTop--
	return th.stack[th.stackTop]
}

func (th *Thread) peek(distance int) Value {
	return th.stack[th.stackTop-1-distance]
}
