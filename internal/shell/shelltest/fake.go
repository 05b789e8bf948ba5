// Package shelltest provides a recording shell.Runner for tests.
package shelltest

import (
	"context"
	"io"
	"sync"

	"github.com/lfkit/lfkit/internal/shell"
)

// Result is what the fake returns for a command.
type Result struct {
	Stdout string
	Err    error
	// WaitErr is what a process launched through Start returns from Wait.
	WaitErr error
}

// Fake records every command and answers through Handle. A nil Handle
// succeeds with no output.
type Fake struct {
	Handle func(c shell.Cmd) Result

	mu      sync.Mutex
	calls   []shell.Cmd
	started []shell.Cmd
}

var _ shell.Runner = (*Fake)(nil)

func (f *Fake) result(c shell.Cmd) Result {
	if f.Handle == nil {
		return Result{}
	}
	return f.Handle(c)
}

func (f *Fake) record(c shell.Cmd) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *Fake) Output(ctx context.Context, c shell.Cmd) ([]byte, error) {
	f.record(c)
	r := f.result(c)
	return []byte(r.Stdout), r.Err
}

func (f *Fake) Run(ctx context.Context, c shell.Cmd) error {
	f.record(c)
	r := f.result(c)
	if c.Stdout != nil && r.Stdout != "" {
		_, _ = io.WriteString(c.Stdout, r.Stdout)
	}
	return r.Err
}

func (f *Fake) Start(c shell.Cmd) (shell.Process, error) {
	f.record(c)
	f.mu.Lock()
	f.started = append(f.started, c)
	f.mu.Unlock()
	r := f.result(c)
	if r.Err != nil {
		return nil, r.Err
	}
	return &process{err: r.WaitErr}, nil
}

// Calls returns every recorded command in order.
func (f *Fake) Calls() []shell.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shell.Cmd(nil), f.calls...)
}

// Started returns the commands launched through Start.
func (f *Fake) Started() []shell.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shell.Cmd(nil), f.started...)
}

// Argv flattens a command to name plus args.
func Argv(c shell.Cmd) []string {
	return append([]string{c.Name}, c.Args...)
}

type process struct {
	err    error
	waited bool
}

func (p *process) Wait() error {
	p.waited = true
	return p.err
}
