package maincmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxlang/golox/internal/maincmd"
)

func stdio(stdin string) (mainer.Stdio, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return mainer.Stdio{
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
	}, &stdout, &stderr
}

func TestMainRunFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.lox")
	require.NoError(t, os.WriteFile(path, []byte(`print "hello";`), 0600))

	io, stdout, stderr := stdio("")
	var c maincmd.Cmd
	code := c.Main([]string{"golox", "run", path}, io)
	assert.Equal(t, mainer.Success, code)
	assert.Equal(t, "hello\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestMainEvalExpression(t *testing.T) {
	io, stdout, _ := stdio("")
	var c maincmd.Cmd
	code := c.Main([]string{"golox", "eval", `print 1 + 2;`}, io)
	assert.Equal(t, mainer.Success, code)
	assert.Equal(t, "3\n", stdout.String())
}

func TestMainRunCompileErrorExitsFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.lox")
	require.NoError(t, os.WriteFile(path, []byte(`var = ;`), 0600))

	io, _, stderr := stdio("")
	var c maincmd.Cmd
	code := c.Main([]string{"golox", "run", path}, io)
	assert.Equal(t, mainer.Failure, code)
	assert.NotEmpty(t, stderr.String())
}

func TestMainDisasm(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "const.lox")
	require.NoError(t, os.WriteFile(path, []byte(`print 1;`), 0600))

	io, stdout, _ := stdio("")
	var c maincmd.Cmd
	code := c.Main([]string{"golox", "disasm", path}, io)
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, stdout.String(), "OP_CONSTANT")
}

func TestMainUnknownCommand(t *testing.T) {
	io, _, _ := stdio("")
	var c maincmd.Cmd
	code := c.Main([]string{"golox", "frobnicate"}, io)
	assert.Equal(t, mainer.InvalidArgs, code)
}

func TestMainHelp(t *testing.T) {
	io, stdout, _ := stdio("")
	var c maincmd.Cmd
	code := c.Main([]string{"golox", "--help"}, io)
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, stdout.String(), "Compiler and stack-based virtual machine")
}
