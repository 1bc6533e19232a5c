package invoke

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result holds the outcome of one external command invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// CommandError reports a failed external command. It preserves the captured
// output so callers can surface the tool's own diagnostics verbatim.
type CommandError struct {
	Name   string
	Args   []string
	Result Result
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s failed with exit code %d", e.Name, strings.Join(e.Args, " "), e.Result.ExitCode)
	if stderr := strings.TrimSpace(e.Result.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// ExitCode extracts the subprocess exit code from an error chain.
// Returns 1 when err carries no command result.
func ExitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.Result.ExitCode > 0 {
		return cmdErr.Result.ExitCode
	}
	return 1
}

// Runner executes external binaries. dir is the working directory for the
// command; an empty dir runs in the current directory.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

// ExecRunner runs commands via os/exec. Commands block until completion;
// cancellation is delivered through ctx.
type ExecRunner struct{}

// NewRunner returns the default Runner backed by os/exec.
func NewRunner() Runner { return &ExecRunner{} }

// Run executes name with args in dir, capturing stdout and stderr
// separately. A non-zero exit returns the Result alongside a *CommandError.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	// #nosec G204 - command names and arguments are constructed internally
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	// ProcessState is nil when the command never started (binary not found).
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	} else if err != nil {
		res.ExitCode = -1
	}
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return res, &CommandError{Name: name, Args: args, Result: res, Err: err}
	}
	return res, nil
}

// LookPath reports whether the named binary is available on PATH.
func LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
