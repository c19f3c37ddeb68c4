// Package diag holds the diagnostic shape shared by golox's CLI error
// printer and its language-server compile entry point (spec.md §6, §7):
// scan/parse/compile errors all carry a position, a message, and a
// severity, and are accumulated rather than raised as panics.
package diag

import (
	"go/scanner"
	gotoken "go/token"

	"github.com/loxlang/golox/lang/token"
)

type (
	// Error and ErrorList are re-exported from the standard library's
	// go/scanner package, the same shape lang/scanner.Error/ErrorList
	// already use: sortable by position, with RemoveMultiples and Err
	// helpers, so there is no reason to hand-roll an equivalent.
	Error     = scanner.Error
	ErrorList = scanner.ErrorList
)

// Severity distinguishes a hard compile failure from advisory output. The
// VM never emits anything through this channel (spec.md §7.3: runtime
// errors are a separate, single-shot taxonomy), so golox only has one
// level in practice, but the language-server contract (spec.md §6) names
// severity as part of each diagnostic tuple.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is the language-server-contract tuple from spec.md §6:
// (line, column_or_none, message, severity). Column is 0 when the
// producing pass (the scanner) only tracks line numbers; the
// language-server façade treats 0 as "column unknown".
type Diagnostic struct {
	Line     int
	Column   int
	Message  string
	Severity Severity
}

// FromErrorList flattens a diag.ErrorList (as produced by the scanner and
// compiler's shared error-handler callback) into the Diagnostic slice the
// language-server contract expects.
func FromErrorList(errs ErrorList) []Diagnostic {
	diags := make([]Diagnostic, len(errs))
	for i, e := range errs {
		diags[i] = Diagnostic{
			Line:    e.Pos.Line,
			Column:  e.Pos.Column,
			Message: e.Msg,
		}
	}
	return diags
}

// Collector accumulates scan/parse/compile errors reported through the
// `func(pos token.Position, msg string)` handler lang/scanner.Scanner and
// lang/compiler.Compile both accept, sorting and deduplicating them the
// same way go/scanner.ErrorList does.
type Collector struct {
	errs ErrorList
}

// Handle is passed directly as the error-handler callback to
// lang/scanner.Scanner.Init or lang/compiler.Compile.
func (c *Collector) Handle(pos token.Position, msg string) {
	c.errs.Add(gotoken.Position{Filename: pos.Filename, Line: pos.Line}, msg)
}

// Err returns the sorted, deduplicated error list, or nil if nothing was
// reported.
func (c *Collector) Err() error {
	if len(c.errs) == 0 {
		return nil
	}
	c.errs.Sort()
	c.errs.RemoveMultiples()
	return c.errs.Err()
}

// Diagnostics satisfies the language-server contract's
// compile(source) → (diagnostics, success?) shape (spec.md §6).
func (c *Collector) Diagnostics() []Diagnostic {
	return FromErrorList(c.errs)
}
