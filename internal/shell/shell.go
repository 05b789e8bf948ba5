// Package shell runs the external programs every helper wraps.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Cmd describes one invocation of an external program.
type Cmd struct {
	Name    string
	Args    []string
	Dir     string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Timeout time.Duration
}

func (c Cmd) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Process is a started command that has not been waited on yet.
type Process interface {
	Wait() error
}

// Runner abstracts process execution so callers can be tested without the
// real tools installed.
type Runner interface {
	// Output runs the command and returns its stdout.
	Output(ctx context.Context, c Cmd) ([]byte, error)
	// Run runs the command with the Cmd's own stdio.
	Run(ctx context.Context, c Cmd) error
	// Start launches the command without waiting for it.
	Start(c Cmd) (Process, error)
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Name   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed with exit code %d (%s)", e.Name, e.Code, e.Stderr)
	}
	return fmt.Sprintf("%s failed with exit code %d", e.Name, e.Code)
}

// ExitCode extracts the exit status carried by err, or -1.
func ExitCode(err error) int {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return -1
}

// Exec is the os/exec backed Runner.
type Exec struct{}

var _ Runner = Exec{}

func (Exec) Output(ctx context.Context, c Cmd) ([]byte, error) {
	var stdout bytes.Buffer
	c.Stdout = &stdout
	if err := (Exec{}).Run(ctx, c); err != nil {
		return stdout.Bytes(), err
	}
	return stdout.Bytes(), nil
}

func (Exec) Run(ctx context.Context, c Cmd) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout

	// Keep a copy of stderr for the error message even when the caller
	// also wants it (the sandbox log, the terminal).
	var stderr bytes.Buffer
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(c.Stderr, &stderr)
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%s timeout after %v", c.Name, c.Timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{
				Name:   c.Name,
				Code:   exitErr.ExitCode(),
				Stderr: strings.TrimSpace(stderr.String()),
			}
		}
		return fmt.Errorf("%s failed: %w", c.Name, err)
	}
	return nil
}

func (Exec) Start(c Cmd) (Process, error) {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", c.Name, err)
	}
	return &process{name: c.Name, cmd: cmd}, nil
}

type process struct {
	name string
	cmd  *exec.Cmd
}

// Wait reports a non-zero exit as *ExitError, like Run does.
func (p *process) Wait() error {
	err := p.cmd.Wait()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Name: p.name, Code: exitErr.ExitCode()}
	}
	return fmt.Errorf("%s failed: %w", p.name, err)
}
