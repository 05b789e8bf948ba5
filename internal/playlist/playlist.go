// Package playlist builds and plays mpv playlists of the media files in a
// directory.
package playlist

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lfkit/lfkit/internal/mime"
	"github.com/lfkit/lfkit/internal/natsort"
	"github.com/lfkit/lfkit/internal/shell"
)

// DefaultName is the playlist file created in the scanned directory.
const DefaultName = "playlist"

// Options mirror the command line.
type Options struct {
	Dir      string
	Output   string // defaults to Dir/playlist
	Force    bool   // regenerate even if the playlist exists
	SkipPlay bool
}

// Player scans directories and hands playlists to mpv.
type Player struct {
	Runner   shell.Runner
	Detector *mime.Detector
	Mpv      string
	// Workers bounds concurrent MIME queries; zero means one per CPU.
	Workers int
	Logger  *zap.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run plays an existing playlist, or builds one and then plays it.
func (p *Player) Run(ctx context.Context, opts Options) error {
	output := opts.Output
	if output == "" {
		output = filepath.Join(opts.Dir, DefaultName)
	}

	if isFile(output) && !opts.Force && !opts.SkipPlay {
		return p.Play(ctx, output)
	}

	entries, err := p.Scan(ctx, opts.Dir)
	if err != nil {
		return err
	}
	written, err := Write(output, entries)
	if err != nil {
		return err
	}
	p.Logger.Info("playlist", zap.String("path", output), zap.Int("entries", len(entries)), zap.Bool("written", written))

	if opts.SkipPlay || !isFile(output) {
		return nil
	}
	return p.Play(ctx, output)
}

// Scan returns the names of the audio and video files in dir in natural
// order.
func (p *Player) Scan(ctx context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if isFile(filepath.Join(dir, e.Name())) {
			names = append(names, e.Name())
		}
	}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	types := make([]mime.Type, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range names {
		g.Go(func() error {
			mt, err := p.Detector.Detect(gctx, filepath.Join(dir, name))
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			types[i] = mt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var media []string
	for i, name := range names {
		if types[i].Media == "video" || types[i].Media == "audio" {
			media = append(media, name)
		}
	}
	return natsort.Sort(media), nil
}

// Write stores entries one per line. Nothing is written for an empty list.
func Write(path string, entries []string) (bool, error) {
	if len(entries) == 0 {
		return false, nil
	}
	if err := os.WriteFile(path, []byte(strings.Join(entries, "\n")), 0644); err != nil {
		return false, fmt.Errorf("write playlist: %w", err)
	}
	return true, nil
}

// Play runs mpv on the playlist in the foreground.
func (p *Player) Play(ctx context.Context, path string) error {
	return p.Runner.Run(ctx, shell.Cmd{
		Name:   p.Mpv,
		Args:   []string{"--playlist=" + path},
		Stdin:  p.Stdin,
		Stdout: p.Stdout,
		Stderr: p.Stderr,
	})
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
