// Command golox is the compiler and stack-based virtual machine CLI for
// the Lox programming language (spec.md §6 "CLI surface").
package main

import (
	"os"

	"github.com/mna/mainer"

	"github.com/loxlang/golox/internal/maincmd"
)

var (
	// placeholder values, replaced on build
	version   = "{v}" // must be N.N[.N]
	buildDate = "{d}" // must be YYYY-mm-DD
)

func main() {
	c := maincmd.Cmd{BuildVersion: version, BuildDate: buildDate}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
