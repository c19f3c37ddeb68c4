package machine_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxlang/golox/lang/compiler"
	"github.com/loxlang/golox/lang/machine"
	"github.com/loxlang/golox/lang/token"
)

// runSrc compiles and runs src on a fresh Thread, returning everything
// written to stdout and any runtime error.
func runSrc(t *testing.T, src string) (string, error) {
	t.Helper()
	var compileErrs []string
	proto, ok := compiler.Compile("test.lox", []byte(src), func(pos token.Position, msg string) {
		compileErrs = append(compileErrs, msg)
	})
	require.Truef(t, ok, "compile errors: %v", compileErrs)

	var out bytes.Buffer
	th := machine.NewThread(256, 64, 1<<20, 2.0, false)
	th.Stdout = &out
	err := machine.Run(th, proto)
	return out.String(), err
}

func TestRunArithmeticAndPrint(t *testing.T) {
	out, err := runSrc(t, `print 1 + 2 * 3;`)
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

func TestRunStringConcatenation(t *testing.T) {
	out, err := runSrc(t, `print "foo" + "bar";`)
	require.NoError(t, err)
	assert.Equal(t, "foobar\n", out)
}

func TestRunGlobalsAndLocals(t *testing.T) {
	out, err := runSrc(t, `
		var x = 10;
		{
			var x = 20;
			print x;
		}
		print x;
	`)
	require.NoError(t, err)
	assert.Equal(t, "20\n10\n", out)
}

func TestRunIfElse(t *testing.T) {
	out, err := runSrc(t, `
		if (1 < 2) { print "yes"; } else { print "no"; }
	`)
	require.NoError(t, err)
	assert.Equal(t, "yes\n", out)
}

func TestRunWhileLoop(t *testing.T) {
	out, err := runSrc(t, `
		var i = 0;
		var sum = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
		print sum;
	`)
	require.NoError(t, err)
	assert.Equal(t, "10\n", out)
}

func TestRunFunctionCallAndReturn(t *testing.T) {
	out, err := runSrc(t, `
		fun add(a, b) { return a + b; }
		print add(3, 4);
	`)
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

func TestRunClosureCapturesUpvalue(t *testing.T) {
	out, err := runSrc(t, `
		fun makeCounter() {
			var count = 0;
			fun counter() {
				count = count + 1;
				return count;
			}
			return counter;
		}
		var counter = makeCounter();
		print counter();
		print counter();
		print counter();
	`)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestRunClassInstanceAndMethod(t *testing.T) {
	out, err := runSrc(t, `
		class Greeter {
			init(name) { this.name = name; }
			greet() { return "Hello, " + this.name; }
		}
		var g = Greeter("world");
		print g.greet();
	`)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world\n", out)
}

func TestRunInheritanceAndSuper(t *testing.T) {
	out, err := runSrc(t, `
		class A {
			greet() { return "A"; }
		}
		class B < A {
			greet() { return "B+" + super.greet(); }
		}
		print B().greet();
	`)
	require.NoError(t, err)
	assert.Equal(t, "B+A\n", out)
}

func TestRunNaNIsNotEqualToItself(t *testing.T) {
	out, err := runSrc(t, `
		var n = 0.0 / 0.0;
		print n == n;
	`)
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)
}

func TestRunNegativeZeroEqualsZero(t *testing.T) {
	out, err := runSrc(t, `print -0.0 == 0.0;`)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestRunTruthiness(t *testing.T) {
	out, err := runSrc(t, `
		if (0) { print "zero is truthy"; }
		if ("") { print "empty string is truthy"; }
		if (nil) { print "should not print"; } else { print "nil is falsey"; }
	`)
	require.NoError(t, err)
	assert.Equal(t, "zero is truthy\nempty string is truthy\nnil is falsey\n", out)
}

func TestRunRuntimeErrorUndefinedVariable(t *testing.T) {
	_, err := runSrc(t, `print nope;`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable 'nope'.")
}

func TestRunRuntimeErrorTypeMismatch(t *testing.T) {
	_, err := runSrc(t, `print 1 + "a";`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Operands must be two numbers or two strings.")
}

func TestRunStackOverflowOnUnboundedRecursion(t *testing.T) {
	_, err := runSrc(t, `
		fun recurse() { return recurse(); }
		recurse();
	`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Stack overflow.")
}

func TestRunGCStressModeProducesSameOutput(t *testing.T) {
	src := `
		class Node {
			init(value) { this.value = value; }
		}
		var total = 0;
		for (var i = 0; i < 50; i = i + 1) {
			var n = Node(i);
			total = total + n.value;
		}
		print total;
	`
	var compileErrs []string
	proto, ok := compiler.Compile("test.lox", []byte(src), func(pos token.Position, msg string) {
		compileErrs = append(compileErrs, msg)
	})
	require.Truef(t, ok, "compile errors: %v", compileErrs)

	var normal bytes.Buffer
	th1 := machine.NewThread(256, 64, 1<<20, 2.0, false)
	th1.Stdout = &normal
	require.NoError(t, machine.Run(th1, proto))

	var stressed bytes.Buffer
	th2 := machine.NewThread(256, 64, 64, 2.0, true)
	th2.Stdout = &stressed
	require.NoError(t, machine.Run(th2, proto))

	assert.Equal(t, normal.String(), stressed.String())
}

func TestNativeClockAndTypeAndStr(t *testing.T) {
	out, err := runSrc(t, `
		print type(1);
		print type("s");
		print type(nil);
		print type(true);
		print str(1);
		print type(clock());
	`)
	require.NoError(t, err)
	assert.Equal(t, "number\nstring\nnil\nbool\n1\nnumber\n", out)
}
