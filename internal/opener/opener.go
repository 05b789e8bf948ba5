// Package opener opens a file with its default application, like xdg-open,
// but runs terminal programs in the foreground and offers "open with".
package opener

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lfkit/lfkit/internal/desktop"
	"github.com/lfkit/lfkit/internal/dirs"
	"github.com/lfkit/lfkit/internal/mime"
	"github.com/lfkit/lfkit/internal/mimeapps"
	"github.com/lfkit/lfkit/internal/shell"
)

const (
	playlistName = "playlist"
	mpvPath      = "/usr/bin/mpv"
	programDir   = "/usr/bin"
)

// ChooseFunc picks one of items and returns its index.
type ChooseFunc func(title string, items []string) (int, error)

// Opener dispatches a file to the program that should open it.
type Opener struct {
	Runner   shell.Runner
	Detector *mime.Detector
	Resolver *mimeapps.Resolver
	Dirs     dirs.Dirs
	// TerminalPrograms skip their Exec line and run attached to the terminal.
	TerminalPrograms []string
	Choose           ChooseFunc
	Logger           *zap.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Open opens file. With interactive set the user picks the program.
func (o *Opener) Open(ctx context.Context, file string, interactive bool) error {
	mt, err := o.Detector.Detect(ctx, file)
	if err != nil {
		return err
	}
	o.Logger.Debug("opening", zap.String("file", file), zap.Stringer("mime", mt), zap.Bool("interactive", interactive))

	switch {
	case mt == mime.Executable:
		return o.Runner.Run(ctx, o.attached(file))
	case mt == mime.PlainText && filepath.Base(file) == playlistName:
		return o.foreground(ctx, o.attached(mpvPath, "--playlist="+file))
	}

	if !interactive {
		name, err := o.Resolver.Default(ctx, mt.String())
		if err != nil {
			return err
		}
		return o.OpenWith(ctx, name, file)
	}

	names, err := o.Resolver.Candidates(ctx, mt.String())
	if err != nil {
		return err
	}
	i, err := o.Choose("Open "+filepath.Base(file)+" with:", names)
	if err != nil {
		return err
	}
	if err := o.OpenWith(ctx, names[i], file); err != nil {
		return err
	}
	fmt.Fprintln(o.Stdout)
	return nil
}

// OpenWith opens file with the desktop entry called name.
func (o *Opener) OpenWith(ctx context.Context, name, file string) error {
	program := strings.TrimSuffix(name, ".desktop")
	if o.isTerminalProgram(program) {
		if err := o.foreground(ctx, o.attached(filepath.Join(programDir, program), file)); err != nil {
			return err
		}
		if program == "mpv" {
			fmt.Fprintln(o.Stdout)
		}
		return nil
	}

	entry, err := desktop.Find(o.Dirs, name)
	if err != nil {
		return err
	}
	argv, err := entry.Command()
	if err != nil {
		return err
	}
	// Background output would corrupt lf's screen, so it is discarded.
	c := shell.Cmd{Name: argv[0], Args: append(argv[1:], file)}
	if _, err := o.Runner.Start(c); err != nil {
		return err
	}
	o.Logger.Info("started", zap.String("entry", entry.Path), zap.Stringer("cmd", c))
	return nil
}

func (o *Opener) isTerminalProgram(program string) bool {
	for _, p := range o.TerminalPrograms {
		if p == program {
			return true
		}
	}
	return false
}

func (o *Opener) attached(name string, args ...string) shell.Cmd {
	return shell.Cmd{Name: name, Args: args, Stdin: o.Stdin, Stdout: o.Stdout, Stderr: o.Stderr}
}

// foreground runs an interactive program; its exit status is the user's
// business, not ours.
func (o *Opener) foreground(ctx context.Context, c shell.Cmd) error {
	err := o.Runner.Run(ctx, c)
	if code := shell.ExitCode(err); code > 0 {
		o.Logger.Debug("program exited", zap.Stringer("cmd", c), zap.Int("code", code))
		return nil
	}
	return err
}
