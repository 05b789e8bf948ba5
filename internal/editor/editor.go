// Package editor opens files in nvim or emacs depending on their type,
// with both editors running side by side.
package editor

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lfkit/lfkit/internal/shell"
)

// Editor launches the two editors.
type Editor struct {
	Runner          shell.Runner
	Nvim            string
	Emacsclient     string
	EmacsExtensions []string
	Logger          *zap.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Partition splits files into those for emacs and those for nvim, keeping
// their order.
func (e *Editor) Partition(files []string) (emacs, nvim []string) {
	for _, f := range files {
		if e.isEmacsFile(f) {
			emacs = append(emacs, f)
		} else {
			nvim = append(nvim, f)
		}
	}
	return emacs, nvim
}

func (e *Editor) isEmacsFile(file string) bool {
	ext := filepath.Ext(file)
	for _, x := range e.EmacsExtensions {
		if ext == x {
			return true
		}
	}
	return false
}

// Edit opens files and waits for every editor it started. With no files
// a bare nvim is run.
func (e *Editor) Edit(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return e.Runner.Run(ctx, shell.Cmd{Name: e.Nvim, Stdin: e.Stdin, Stdout: e.Stdout, Stderr: e.Stderr})
	}

	emacs, nvim := e.Partition(files)
	var procs []shell.Process
	if len(nvim) > 0 {
		p, err := e.Runner.Start(shell.Cmd{
			Name:   e.Nvim,
			Args:   NvimArgs(nvim),
			Stdin:  e.Stdin,
			Stdout: e.Stdout,
			Stderr: e.Stderr,
		})
		if err != nil {
			return err
		}
		procs = append(procs, p)
	}
	if len(emacs) > 0 {
		// emacsclient prints the eval result; keep it off the terminal.
		p, err := e.Runner.Start(shell.Cmd{
			Name:   e.Emacsclient,
			Args:   []string{"-c", "--eval", EmacsSexp(emacs), "--alternate-editor="},
			Stderr: e.Stderr,
		})
		if err != nil {
			return errors.Join(err, waitAll(procs))
		}
		procs = append(procs, p)
	}
	e.Logger.Debug("editors started", zap.Strings("nvim", nvim), zap.Strings("emacs", emacs))
	return waitAll(procs)
}

func waitAll(procs []shell.Process) error {
	var errs []error
	for _, p := range procs {
		errs = append(errs, p.Wait())
	}
	return errors.Join(errs...)
}

// NvimArgs opens files in horizontal splits, then turns them vertical.
func NvimArgs(files []string) []string {
	args := append([]string{"-o"}, files...)
	return append(args, "-c", "wincmd H")
}

// EmacsSexp builds the form that replaces the current workspace with files:
// the first on the left, the second to its right and the rest stacked
// below it.
func EmacsSexp(files []string) string {
	if len(files) == 0 {
		return "(call-interactively #'+workspace/delete)"
	}
	var b strings.Builder
	b.WriteString("(progn (call-interactively #'+workspace/delete) ")
	b.WriteString("(find-file " + elispString(files[0]) + ")")
	if len(files) > 1 {
		b.WriteString(" (split-window-right) (other-window 1) (find-file " + elispString(files[1]) + ")")
		for _, f := range files[2:] {
			b.WriteString(" (split-window-below) (other-window 1) (find-file " + elispString(f) + ")")
		}
		b.WriteString(" (other-window 1)")
	}
	b.WriteString(")")
	return b.String()
}

// elispString quotes s as an elisp string literal.
func elispString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
