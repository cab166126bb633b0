package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func runArgs(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"timed-writer"}, args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestHelp(t *testing.T) {
	target := filepath.Join(t.TempDir(), "target.txt")

	code, stdout, stderr := runArgs("-h", target)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Usage: timed-writer [-s SLEEP] [-c MAX_ITER] [-f MAX_FAIL] [-b BLOCK_SIZE] [-l] FILENAME")
	assert.Contains(t, stdout, "bounds: [1, 3600]")
	assert.Empty(t, stderr)
	assert.NoFileExists(t, target)
}

func TestHelpSkipsValidation(t *testing.T) {
	code, stdout, _ := runArgs("-c", "9999", "-h")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Usage:")
}

func TestHelpWinsOverParseErrors(t *testing.T) {
	target := filepath.Join(t.TempDir(), "target.txt")

	for _, args := range [][]string{
		{"-h", "-s", "abc", target},
		{"-s", "abc", "-h", target},
		{"-x", "--help"},
		{"-lh", "-c", "0"},
		{"-s1", "-h"},
	} {
		code, stdout, stderr := runArgs(args...)
		assert.Equal(t, 0, code, "args %v", args)
		assert.Contains(t, stdout, "Usage:", "args %v", args)
		assert.Empty(t, stderr, "args %v", args)
	}
	assert.NoFileExists(t, target)
}

func TestHelpRequested(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP("sleep", "s", "5", "")
	fs.BoolP("lock", "l", false, "")
	fs.BoolP("help", "h", false, "")

	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"-h"}, true},
		{[]string{"--help"}, true},
		{[]string{"-lh"}, true},
		{[]string{"file", "-h"}, true},
		{[]string{"-s", "-h", "file"}, false},
		{[]string{"--sleep", "-h"}, false},
		{[]string{"--sleep=3", "-h"}, true},
		{[]string{"-sh"}, false},
		{[]string{"--", "-h"}, false},
		{[]string{"-l", "file"}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, helpRequested(fs, tt.args), "args %v", tt.args)
	}
}

func TestDecimalValues(t *testing.T) {
	target := filepath.Join(t.TempDir(), "target.txt")

	code, _, stderr := runArgs("-c", "01", "-b", "010", target)
	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, int64(10), info.Size())
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runArgs("--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "timed-writer version unreleased")
}

func TestInvalidOptions(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"zero sleep", []string{"-s", "0"}, "invalid sleep time: 0"},
		{"sleep above max", []string{"-s", "3601"}, "invalid sleep time: 3601"},
		{"huge sleep", []string{"-s", "99999999999"}, "invalid sleep time: 99999999999"},
		{"iterations above max", []string{"-c", "667"}, "invalid max iterations: 667"},
		{"zero iterations", []string{"-c", "0"}, "invalid max iterations: 0"},
		{"max iterations accepted", []string{"-c", "666", "-f", "101"}, "invalid max consecutive write failures: 101"},
		{"negative failures", []string{"-f", "-1"}, "invalid max consecutive write failures: -1"},
		{"block size above max", []string{"-b", "33554433"}, "invalid write block size: 33554433"},
		{"non numeric", []string{"-s", "abc"}, "invalid sleep time: abc"},
		{"trailing garbage", []string{"-c", "5x"}, "invalid max iterations: 5x"},
		{"hex block size", []string{"-b", "0x400"}, "invalid write block size: 0x400"},
		{"value taken from next argument", []string{"-c"}, "invalid max iterations: "},
		{"unknown flag", []string{"-x"}, "Command line gibberish, try -h"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := filepath.Join(t.TempDir(), "target.txt")

			code, stdout, stderr := runArgs(append(tt.args, target)...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, tt.wantErr)
			assert.Empty(t, stdout)
			assert.NoFileExists(t, target)
		})
	}
}

func TestPositionalArguments(t *testing.T) {
	dir := t.TempDir()

	code, _, stderr := runArgs("-c", "1")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Expecting one, and only one, FILENAME")

	code, _, stderr = runArgs("-c", "1", filepath.Join(dir, "a"), filepath.Join(dir, "b"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Expecting one, and only one, FILENAME")
	assert.NoFileExists(t, filepath.Join(dir, "a"))
}

func TestRunWritesFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "target.txt")

	code, stdout, stderr := runArgs("-s", "1", "-c", "2", "-f", "0", "-b", "0", target)
	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "Filename: "+target)
	assert.Contains(t, stdout, "Writing sequence 0 (2 bytes)")
	assert.Contains(t, stdout, "Writing sequence 1 (2 bytes)")

	contents, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n", string(contents))
}

func TestRunLongFlags(t *testing.T) {
	target := filepath.Join(t.TempDir(), "target.txt")

	code, _, stderr := runArgs("--count=1", "--block-size=512", "--lock", target)
	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, int64(512), info.Size())
}

func TestRunOpenFailure(t *testing.T) {
	target := filepath.Join(t.TempDir(), "missing", "target.txt")

	code, _, stderr := runArgs("-c", "1", target)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Unable to open "+target)
}

// TestProcessExitStatus builds the binary and checks the exit status seen
// by a parent process, including an abort on the failure cap against
// /dev/full where every write fails with ENOSPC.
func TestProcessExitStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}

	bin := filepath.Join(t.TempDir(), "timed-writer")
	cmd := exec.Command("go", "build", "-o", bin, ".")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	require.NoError(t, cmd.Run(), "failed to build helper")

	exitCode := func(args ...string) (int, string) {
		cmd := exec.Command(bin, args...)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		err := cmd.Run()
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), stderr.String()
		}
		require.NoError(t, err)
		return 0, stderr.String()
	}

	dir := t.TempDir()

	code, _ := exitCode("-h")
	assert.Equal(t, 0, code)

	code, _ = exitCode("-s", "0", filepath.Join(dir, "e.txt"))
	assert.Equal(t, 1, code)
	assert.NoFileExists(t, filepath.Join(dir, "e.txt"))

	code, _ = exitCode("-s", "1", "-c", "2", "-b", "1024", filepath.Join(dir, "b.txt"))
	assert.Equal(t, 0, code)
	info, err := os.Stat(filepath.Join(dir, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, int64(2048), info.Size())

	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("no /dev/full")
	}
	code, stderr := exitCode("-s", "1", "-f", "2", "/dev/full")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Reached max failcount")
}
