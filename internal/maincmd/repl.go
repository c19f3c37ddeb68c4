package maincmd

import (
	"bufio"
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/loxlang/golox/internal/diag"
	"github.com/loxlang/golox/lang/compiler"
	"github.com/loxlang/golox/lang/machine"
)

// Repl reads one line of Lox source at a time from stdio.Stdin, compiling
// and running each line on one Thread shared by the whole session (globals
// defined on one line stay visible on the next), printing its own
// compile/runtime errors but never exiting on them (spec.md §6 "start a
// REPL", §7 "the host decides whether to continue the REPL session or
// exit the process" — golox's host always continues). It exits when
// stdin is closed or ctx is cancelled.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	scanner := bufio.NewScanner(stdio.Stdin)

	th := machine.NewThread(c.cfg.StackSlots, c.cfg.MaxCallFrames, c.cfg.InitialGCThreshold, c.cfg.GCGrowthFactor, c.cfg.GCStressTest)
	th.Name = "repl"
	th.Stdout = stdio.Stdout
	th.Stderr = stdio.Stderr
	th.Stdin = stdio.Stdin

	for {
		fmt.Fprint(stdio.Stdout, "> ")
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := scanner.Text()
		if line == "" {
			continue
		}

		var coll diag.Collector
		proto, ok := compiler.Compile("<repl>", []byte(line), coll.Handle)
		if !ok {
			printError(stdio, coll.Err())
			continue
		}
		if err := machine.Run(th, proto); err != nil {
			printError(stdio, err)
		}
	}
}
