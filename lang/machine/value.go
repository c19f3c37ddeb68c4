// Package machine implements the virtual machine that executes compiled
// bytecode chunks (lang/compiler) and the runtime representation of every
// value a Lox program can manipulate.
package machine

import "fmt"

// Value is the interface implemented by any value the machine manipulates.
// Lox has a small, closed set of implementations: Nil, Bool, Number and the
// various Obj* heap types, unlike the teacher's open Value hierarchy meant
// for an embeddable, extensible language.
type Value interface {
	// String returns the value's print representation.
	String() string

	// Type returns a short string describing the value's kind, used by the
	// type() native.
	Type() string
}

// NilType is the type of Nil. Represented as a byte rather than struct{} so
// that Nil can be a constant, matching the teacher's lang/machine.NilType.
type NilType byte

// Nil is the sole value of NilType.
const Nil = NilType(0)

var _ Value = Nil

func (NilType) String() string { return "nil" }
func (NilType) Type() string   { return "nil" }

// Bool is a boolean value.
type Bool bool

const (
	False = Bool(false)
	True  = Bool(true)
)

var _ Value = False

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (Bool) Type() string { return "bool" }

// Number is a double-precision Lox number.
type Number float64

var _ Value = Number(0)

func (n Number) String() string {
	// Integral values between -1e15 and 1e15 print without a fractional
	// part ("3", not "3.0"); everything else uses fmt's %g.
	return formatNumber(float64(n))
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) && f < 1e15 && f > -1e15 {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

func (Number) Type() string { return "number" }

// Truth reports the Lox truthiness of a value: nil and false are falsey,
// everything else — including 0 and the empty string — is truthy
// (spec.md §4.4 "Truthiness").
func Truth(v Value) Bool {
	switch v := v.(type) {
	case NilType:
		return False
	case Bool:
		return v
	default:
		return True
	}
}

// Equal implements Lox's == operator. It never errors: mismatched types and
// incomparable object kinds simply compare unequal, and IEEE 754 rules apply
// to Number (NaN != NaN, -0 == 0), exactly the semantics of spec.md §4.4.
func Equal(x, y Value) Bool {
	switch x := x.(type) {
	case NilType:
		_, ok := y.(NilType)
		return Bool(ok)
	case Bool:
		yb, ok := y.(Bool)
		return Bool(ok && x == yb)
	case Number:
		yn, ok := y.(Number)
		return Bool(ok && float64(x) == float64(yn))
	case *ObjString:
		ys, ok := y.(*ObjString)
		// Strings are interned (lang/gc.Interner), so identity comparison is
		// correct and avoids a byte-by-byte scan on every ==.
		return Bool(ok && x == ys)
	default:
		// All other object kinds compare by identity.
		return Bool(x == y)
	}
}
