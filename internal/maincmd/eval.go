package maincmd

import (
	"context"

	"github.com/mna/mainer"
)

// Eval compiles and runs a single Lox source string passed as a
// command-line argument (spec.md §6 "evaluate a single string").
func (c *Cmd) Eval(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return runSource(stdio, "<eval>", []byte(args[0]), c.cfg)
}
