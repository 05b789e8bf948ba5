// Package journal extracts one run of a systemd unit from its journal.
package journal

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/lfkit/lfkit/internal/shell"
)

// ErrNoEntry is returned when the requested run does not exist.
var ErrNoEntry = errors.New("no such log entry")

// runStart marks the first line of a unit run.
var runStart = regexp.MustCompile(`(systemd\[\d+\]): Start(ed|ing) .*\.$`)

// Query selects a unit and one of its runs.
type Query struct {
	Unit string
	User bool
	// Status prefixes the `systemctl status` header.
	Status bool
	// Position counts back from the latest run, which is 0.
	Position int
}

// Reader fetches logs through journalctl and systemctl.
type Reader struct {
	Runner shell.Runner
}

// Entry returns the requested run, with the status header when asked.
func (r *Reader) Entry(ctx context.Context, q Query) (string, error) {
	if q.Position < 0 {
		return "", fmt.Errorf("position must be non-negative, got %d", q.Position)
	}

	var header string
	if q.Status {
		raw, err := r.status(ctx, q)
		if err != nil {
			return "", err
		}
		header = TruncateAtEmptyLine(raw)
	}

	logs, err := r.logs(ctx, q)
	if err != nil {
		return "", err
	}
	entry, err := Pick(GroupRuns(logs), q.Position)
	if err != nil {
		return "", fmt.Errorf("%s: %w", q.Unit, err)
	}
	if q.Status {
		return header + "\n" + entry, nil
	}
	return entry, nil
}

func userFlag(user bool) []string {
	if user {
		return []string{"--user"}
	}
	return nil
}

func (r *Reader) logs(ctx context.Context, q Query) (string, error) {
	args := append([]string{"--no-pager"}, userFlag(q.User)...)
	out, err := r.Runner.Output(ctx, shell.Cmd{Name: "journalctl", Args: append(args, "-u", q.Unit)})
	if err != nil {
		return "", err
	}
	return strings.TrimRightFunc(string(out), unicode.IsSpace), nil
}

// status accepts the codes systemctl uses for active (0), failed (1) and
// inactive (3) units; anything else means the unit is unknown.
func (r *Reader) status(ctx context.Context, q Query) (string, error) {
	args := append([]string{"--no-pager"}, userFlag(q.User)...)
	out, err := r.Runner.Output(ctx, shell.Cmd{Name: "systemctl", Args: append(args, "status", "--full", q.Unit)})
	switch shell.ExitCode(err) {
	case -1:
		if err != nil {
			return "", err
		}
	case 0, 1, 3:
	default:
		return "", err
	}
	return strings.TrimRightFunc(string(out), unicode.IsSpace), nil
}

// GroupRuns splits logs into runs. A run starts at a systemd
// "Starting/Started ..." line; the first line always opens one.
func GroupRuns(logs string) []string {
	if logs == "" {
		return nil
	}
	lines := strings.SplitAfter(logs, "\n")
	groups := []string{lines[0]}
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		if runStart.MatchString(strings.TrimRight(line, "\r\n")) {
			groups = append(groups, line)
		} else {
			groups[len(groups)-1] += line
		}
	}
	return groups
}

// Pick returns the run position places back from the latest.
func Pick(runs []string, position int) (string, error) {
	if position < 0 || position >= len(runs) {
		return "", ErrNoEntry
	}
	return runs[len(runs)-1-position], nil
}

// TruncateAtEmptyLine keeps the lines before the first empty one.
func TruncateAtEmptyLine(s string) string {
	lines := strings.SplitAfter(s, "\n")
	for i, line := range lines {
		if line == "\n" || line == "\r\n" {
			return strings.Join(lines[:i], "")
		}
	}
	return s
}
