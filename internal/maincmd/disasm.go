package maincmd

import (
	"context"
	"os"

	"github.com/mna/mainer"

	"github.com/loxlang/golox/internal/diag"
	"github.com/loxlang/golox/lang/compiler"
)

// Disasm compiles a file and prints its disassembled bytecode instead of
// running it, the debugging surface the teacher's lang/compiler/asm.go
// gives the tokenize/parse debug subcommands (SPEC_FULL.md §4 "Disassembler
// / disasm CLI subcommand").
func (c *Cmd) Disasm(ctx context.Context, stdio mainer.Stdio, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return printError(stdio, err)
	}

	var coll diag.Collector
	proto, ok := compiler.Compile(args[0], src, coll.Handle)
	if !ok {
		return printError(stdio, coll.Err())
	}

	compiler.Disassemble(stdio.Stdout, proto)
	return nil
}
