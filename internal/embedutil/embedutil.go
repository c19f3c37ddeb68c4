// Package embedutil implements the browser-worker embedding contract of
// spec.md §6: `run(source: bytes, emit: fn(bytes))`, where each PRINT
// instruction and runtime error is emitted as a text fragment and the
// whole run ends in one newline-delimited JSON message per postMessage.
// There is no analogous surface in the teacher, so this is written fresh
// in the idiom of internal/maincmd's small, stdio-shaped, testable
// command handlers.
package embedutil

import (
	"encoding/json"
	"io"

	"github.com/loxlang/golox/internal/config"
	"github.com/loxlang/golox/internal/diag"
	"github.com/loxlang/golox/lang/compiler"
	"github.com/loxlang/golox/lang/machine"
)

// MessageType is the discriminant of the newline-delimited JSON messages
// Run writes to w, matching spec.md §6's three message shapes.
type MessageType string

const (
	TypeOutput      MessageType = "Output"
	TypeExitSuccess MessageType = "ExitSuccess"
	TypeExitFailure MessageType = "ExitFailure"
)

// Message is one newline-delimited JSON object posted to the embedding
// host. Text is only populated for TypeOutput.
type Message struct {
	Type MessageType `json:"type"`
	Text string      `json:"text,omitempty"`
}

// emit writes one Message to w as a single line of JSON, per spec.md §6
// "These messages are newline-delimited JSON objects, one per
// postMessage."
func emit(w io.Writer, msg Message) error {
	enc := json.NewEncoder(w)
	return enc.Encode(msg)
}

// Run compiles and executes source, writing one Message per
// PRINT/runtime-error fragment followed by a single terminal
// ExitSuccess/ExitFailure message, all newline-delimited JSON (spec.md
// §6). It never returns a Go error for a Lox-level compile or runtime
// failure — that outcome is reported through the message stream itself,
// exactly as the host-facing contract requires; the returned error only
// signals a failure to write to w.
func Run(w io.Writer, source []byte, cfg config.Config) error {
	var coll diag.Collector
	proto, ok := compiler.Compile("<embed>", source, coll.Handle)
	if !ok {
		for _, d := range coll.Diagnostics() {
			if err := emit(w, Message{Type: TypeOutput, Text: d.Message}); err != nil {
				return err
			}
		}
		return emit(w, Message{Type: TypeExitFailure})
	}

	th := machine.NewThread(cfg.StackSlots, cfg.MaxCallFrames, cfg.InitialGCThreshold, cfg.GCGrowthFactor, cfg.GCStressTest)
	out := &lineEmitter{w: w}
	th.Stdout = out
	th.Stderr = out

	if err := machine.Run(th, proto); err != nil {
		if werr := emit(w, Message{Type: TypeOutput, Text: err.Error()}); werr != nil {
			return werr
		}
		return emit(w, Message{Type: TypeExitFailure})
	}
	return emit(w, Message{Type: TypeExitSuccess})
}

// lineEmitter adapts the VM's io.Writer-shaped Stdout/Stderr (it writes a
// PRINT statement's text plus a trailing newline via fmt.Fprintln, see
// lang/machine/machine.go) into one Output message per write, the
// granularity spec.md §6 calls a "text fragment".
type lineEmitter struct {
	w io.Writer
}

func (le *lineEmitter) Write(p []byte) (int, error) {
	if err := emit(le.w, Message{Type: TypeOutput, Text: string(p)}); err != nil {
		return 0, err
	}
	return len(p), nil
}
