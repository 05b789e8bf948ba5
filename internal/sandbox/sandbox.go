// Package sandbox runs the previewer inside bubblewrap so a malicious file
// cannot reach the network or write outside the thumbnail cache.
package sandbox

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lfkit/lfkit/internal/shell"
)

var (
	systemDirs = []string{"/usr/bin", "/usr/share", "/usr/lib", "/usr/lib64"}
	devices    = []string{"/dev/tty", "/dev/null", "/dev/shm"}
)

// Sandbox describes what the previewer may see.
type Sandbox struct {
	Bwrap     string
	Previewer string
	// ThumbRoot is bound read-write and created if missing.
	ThumbRoot string
	// Optional are bound read-only when they exist.
	Optional []string
	// ReadOnly are bound read-only and must exist.
	ReadOnly []string
	// Writable files are created if missing and bound read-write.
	Writable []string
}

// Argv is the full bwrap command line for previewing file (already
// resolved) with the previewer's extra args.
func (s *Sandbox) Argv(file string, args []string) []string {
	argv := []string{s.Bwrap}
	bind := func(opt string, paths ...string) {
		for _, p := range paths {
			argv = append(argv, opt, p, p)
		}
	}

	bind("--ro-bind", systemDirs...)
	argv = append(argv,
		"--symlink", "/usr/bin", "/bin",
		"--symlink", "/usr/lib64", "/lib64",
		"--proc", "/proc",
	)
	bind("--ro-bind", s.Previewer)
	bind("--ro-bind", s.ReadOnly...)
	bind("--ro-bind", file)
	bind("--ro-bind-try", s.Optional...)
	bind("--dev-bind", devices...)
	bind("--bind", s.ThumbRoot)
	bind("--bind-try", s.Writable...)
	argv = append(argv, "--unshare-all", "--die-with-parent", s.Previewer, file)
	return append(argv, args...)
}

// Prepare creates the directories and files the sandbox binds writable.
func (s *Sandbox) Prepare() error {
	if err := os.MkdirAll(s.ThumbRoot, 0700); err != nil {
		return fmt.Errorf("create thumbnail cache: %w", err)
	}
	for _, path := range s.Writable {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return err
		}
		f.Close()
	}
	return nil
}

// Run previews file in the sandbox, sending the child's stdout to stdout
// and its stderr to log. It returns the child's exit code.
func (s *Sandbox) Run(ctx context.Context, r shell.Runner, file string, args []string, stdout, log io.Writer) (int, error) {
	resolved, err := Resolve(file)
	if err != nil {
		return 0, err
	}
	if err := s.Prepare(); err != nil {
		return 0, err
	}
	argv := s.Argv(resolved, args)
	err = r.Run(ctx, shell.Cmd{Name: argv[0], Args: argv[1:], Stdout: stdout, Stderr: log})
	if code := shell.ExitCode(err); code >= 0 {
		return code, nil
	}
	return 0, err
}

// Resolve returns the absolute, symlink-free path of an existing file.
func Resolve(file string) (string, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
