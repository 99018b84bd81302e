// Package shell runs opaque verify/clean commands for rules.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"syscall"
	"time"
)

const (
	// DefaultTimeout bounds the wall-clock time of a single command.
	DefaultTimeout = 10 * time.Second
	// DefaultKillGrace is how long a timed-out command gets between
	// SIGTERM and SIGKILL.
	DefaultKillGrace = 5 * time.Second
)

// Runner executes a shell command string with the working directory set to
// dir. It returns (true, nil) when the command exits 0, (false, nil) when it
// exits non-zero, and (false, err) when the process could not be run at all
// (spawn failure, timeout). Rules depend on this interface rather than
// os/exec so tests can substitute a stub.
type Runner interface {
	Run(ctx context.Context, command, dir string) (bool, error)
}

// TimeoutError reports a command that exceeded the configured wall-clock
// timeout. It is a distinct error class: a timed-out command is neither a
// failed verification nor a clean exit.
type TimeoutError struct {
	Command string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command timed out after %s: %s", e.Timeout, e.Command)
}

// ShellRunner is the concrete Runner backed by `sh -c`.
type ShellRunner struct {
	timeout time.Duration
	grace   time.Duration
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
}

// NewRunner creates a ShellRunner. Zero durations select the defaults.
// When verbose is set, commands run under `sh -x` with their streams
// attached to stdout/stderr; otherwise all subprocess output is discarded.
func NewRunner(timeout, grace time.Duration, verbose bool, stdout, stderr io.Writer) *ShellRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if grace <= 0 {
		grace = DefaultKillGrace
	}
	return &ShellRunner{
		timeout: timeout,
		grace:   grace,
		verbose: verbose,
		stdout:  stdout,
		stderr:  stderr,
	}
}

// Run executes command in dir under a shell.
func (r *ShellRunner) Run(ctx context.Context, command, dir string) (bool, error) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := []string{"-c", command}
	if r.verbose {
		args = []string{"-x", "-c", command}
	}

	//nolint:gosec // commands are operator-supplied by design
	cmd := exec.CommandContext(cctx, "sh", args...)
	cmd.Dir = dir
	if r.verbose {
		cmd.Stdout = r.stdout
		cmd.Stderr = r.stderr
	}

	// Ask nicely first; WaitDelay escalates to SIGKILL after the grace period.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = r.grace

	err := cmd.Run()
	if err == nil {
		return true, nil
	}

	if cerr := cctx.Err(); cerr != nil {
		if errors.Is(cerr, context.DeadlineExceeded) {
			return false, &TimeoutError{Command: command, Timeout: r.timeout}
		}
		// Cancelled from above (e.g. SIGINT): propagate, don't misreport
		// the killed command as a failed verification.
		return false, cerr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Non-zero exit is a legitimate outcome, not a process failure.
		return false, nil
	}

	return false, err
}
