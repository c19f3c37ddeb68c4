package machine

import (
	"fmt"
	"strings"
)

// RuntimeError is a Lox runtime error (as opposed to a compile-time one):
// it carries a rendered call-stack trace following spec.md §4.4 "Runtime
// errors print a message and a stack trace ('[line L] in <fn|script>')".
type RuntimeError struct {
	Message string
	Trace   []string
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, line := range e.Trace {
		b.WriteByte('\n')
		b.WriteString(line)
	}
	return b.String()
}

// runtimeErrorf builds a RuntimeError for the current call stack, innermost
// frame first, matching clox's runtimeError() trace order.
func (th *Thread) runtimeErrorf(format string, args ...interface{}) *RuntimeError {
	err := &RuntimeError{Message: fmt.Sprintf(format, args...)}
	for i := len(th.frames) - 1; i >= 0; i-- {
		fr := &th.frames[i]
		name := "script"
		if n := fr.closure.Fn.Proto.Name; n != "" {
			name = fmt.Sprintf("%s()", n)
		}
		err.Trace = append(err.Trace, fmt.Sprintf("[line %d] in %s", fr.line(), name))
	}
	return err
}
