package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/loxlang/golox/internal/config"
	"github.com/loxlang/golox/internal/diag"
	"github.com/loxlang/golox/lang/compiler"
	"github.com/loxlang/golox/lang/machine"
)

// Run compiles and runs a single Lox source file (spec.md §6 "run a
// file").
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return printError(stdio, err)
	}
	return runSource(stdio, args[0], src, c.cfg)
}

func runSource(stdio mainer.Stdio, filename string, src []byte, cfg config.Config) error {
	var coll diag.Collector
	proto, ok := compiler.Compile(filename, src, coll.Handle)
	if !ok {
		return printError(stdio, coll.Err())
	}

	th := machine.NewThread(cfg.StackSlots, cfg.MaxCallFrames, cfg.InitialGCThreshold, cfg.GCGrowthFactor, cfg.GCStressTest)
	th.Name = filename
	th.Stdout = stdio.Stdout
	th.Stderr = stdio.Stderr
	th.Stdin = stdio.Stdin

	if err := machine.Run(th, proto); err != nil {
		return printError(stdio, err)
	}
	return nil
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}
