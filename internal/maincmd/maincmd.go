// Package maincmd dispatches golox's CLI subcommands (run, repl, eval,
// disasm), grounded on the teacher's internal/maincmd: a reflect-driven
// command table built from methods of a single Cmd, parsed and run
// through github.com/mna/mainer.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"

	"github.com/loxlang/golox/internal/config"
)

const binName = "golox"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<arg>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<arg>...]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and stack-based virtual machine for the Lox programming language.

The <command> can be one of:
       run <path>                Compile and run a Lox source file.
       repl                      Start an interactive read-eval-print loop.
       eval <source>             Compile and run Lox source code passed as a
                                 single command-line argument.
       disasm <path>             Compile a file and print its disassembled
                                 bytecode instead of running it.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

Resource limits (stack size, call-frame depth, GC thresholds) are
configured through GOLOX_* environment variables; see internal/config.
`, binName)
)

// Cmd is the top-level CLI command, populated by mainer.Parser.Parse and
// dispatched to one of its own methods by name (see buildCmds).
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args  []string
	flags map[string]bool
	cfg   config.Config
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]

	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	switch cmdName {
	case "run", "disasm":
		if len(c.args[1:]) != 1 {
			return fmt.Errorf("%s: exactly one file must be provided", cmdName)
		}
	case "eval":
		if len(c.args[1:]) != 1 {
			return fmt.Errorf("%s: exactly one source argument must be provided", cmdName)
		}
	case "repl":
		if len(c.args[1:]) != 0 {
			return fmt.Errorf("repl: no arguments expected")
		}
	}

	return nil
}

// Main parses args, loads internal/config.Config once from the
// environment (spec.md §2.3), and dispatches to the resolved subcommand.
// Exit code is 0 on success, nonzero on compile or runtime failure
// (spec.md §6 "CLI surface").
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: strings.ToUpper(binName) + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid configuration: %s\n", err)
		return mainer.InvalidArgs
	}
	c.cfg = cfg

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		// each command takes care of printing its own errors; just report
		// a failing exit code.
		return mainer.Failure
	}
	return mainer.Success
}

// valid commands are those that take a mainer.Stdio and a slice of strings
// as input, and return an error as output.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
