// Package nvimtheme pushes a light/dark colour choice to every running
// Neovim over its RPC socket.
package nvimtheme

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/neovim/go-client/nvim"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

const (
	socketPrefix = "nvim."
	colorVar     = "mycolor"
)

// Client is the part of *nvim.Nvim the switcher needs.
type Client interface {
	SetVar(name string, value interface{}) error
	Command(cmd string) error
	Close() error
}

// DialFunc connects to the Neovim listening on socket.
type DialFunc func(ctx context.Context, socket string) (Client, error)

// Dial connects through go-client.
func Dial(ctx context.Context, socket string) (Client, error) {
	v, err := nvim.Dial(socket, nvim.DialContext(ctx))
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Value maps the command line to the g:mycolor value. With no argument the
// variable is reset to false; ok is false for unknown arguments.
func Value(args []string) (v interface{}, ok bool) {
	if len(args) == 0 {
		return false, true
	}
	switch args[0] {
	case "light", "dark":
		return args[0], true
	}
	return nil, false
}

// Switcher updates every Neovim instance found in RuntimeDir.
type Switcher struct {
	RuntimeDir string
	// ColorScript is sourced after the variable is set.
	ColorScript string
	Dial        DialFunc
	Logger      *zap.Logger
}

// ColorScript returns the colour plugin path under home.
func ColorScript(home string) string {
	return filepath.Join(home, ".config", "nvim", "plugin", "colors.lua")
}

// Sockets lists the nvim.* sockets in the runtime dir. A missing runtime
// dir yields no sockets.
func (s *Switcher) Sockets() ([]string, error) {
	entries, err := os.ReadDir(s.RuntimeDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), socketPrefix) && e.Type()&os.ModeSocket != 0 {
			out = append(out, filepath.Join(s.RuntimeDir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// Apply sets g:mycolor to value in every instance and re-sources the
// colour script. Sockets left behind by a crashed Neovim are removed.
func (s *Switcher) Apply(ctx context.Context, value interface{}) error {
	sockets, err := s.Sockets()
	if err != nil {
		return err
	}
	for _, socket := range sockets {
		if err := s.apply(ctx, socket, value); err != nil {
			if !isStale(err) {
				return fmt.Errorf("%s: %w", socket, err)
			}
			s.Logger.Info("removing stale socket", zap.String("socket", socket), zap.Error(err))
			if err := os.Remove(socket); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
	}
	return nil
}

func (s *Switcher) apply(ctx context.Context, socket string, value interface{}) error {
	c, err := s.Dial(ctx, socket)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.SetVar(colorVar, value); err != nil {
		return err
	}
	return c.Command("source " + escapePath(s.ColorScript))
}

// isStale reports errors of a socket whose Neovim is gone: the connection
// is refused, or the listener hangs up during the handshake.
func isStale(err error) bool {
	return errors.Is(err, unix.ECONNREFUSED) || errors.Is(err, unix.EINVAL) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// escapePath escapes characters special to Ex file arguments.
func escapePath(p string) string {
	var b strings.Builder
	for _, r := range p {
		switch r {
		case ' ', '\\', '|', '"', '%', '#':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
