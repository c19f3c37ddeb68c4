package maincmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxlang/golox/internal/filetest"
	"github.com/loxlang/golox/lang/compiler"
	"github.com/loxlang/golox/lang/machine"
	"github.com/loxlang/golox/lang/token"
)

// TestExamplesRoundTrip implements the spec.md §8 round-trip property:
// compile followed by run on every res/examples/**.lox fixture produces
// the exact output recorded in its trailing "// out:" comments, in both
// normal and GC-stress mode, byte-identically.
func TestExamplesRoundTrip(t *testing.T) {
	const dir = "../../res/examples"
	for _, fi := range filetest.SourceFiles(t, dir, ".lox") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(dir, fi.Name()))
			require.NoError(t, err)

			want := filetest.ExpectedOutput(string(src))

			var compileErrs []string
			proto, ok := compiler.Compile(fi.Name(), src, func(pos token.Position, msg string) {
				compileErrs = append(compileErrs, msg)
			})
			require.Truef(t, ok, "compile errors: %v", compileErrs)

			normal := runExample(t, proto, 256, 64, 1<<20, 2.0, false)
			assert.Equal(t, want, normal)

			stressed := runExample(t, proto, 256, 64, 64, 2.0, true)
			assert.Equal(t, want, stressed, "GC-stress mode must match normal-mode output byte-for-byte")
		})
	}
}

func runExample(t *testing.T, proto *compiler.FunctionProto, stackSlots, maxCallFrames, gcInitialThreshold int, gcGrowthFactor float64, gcStressTest bool) string {
	t.Helper()
	var out bytes.Buffer
	th := machine.NewThread(stackSlots, maxCallFrames, gcInitialThreshold, gcGrowthFactor, gcStressTest)
	th.Stdout = &out
	require.NoError(t, machine.Run(th, proto))
	return out.String()
}
