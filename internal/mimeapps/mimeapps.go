// Package mimeapps resolves a MIME type to desktop entry names following
// the XDG mimeapps.list lookup order, with a KDE trader query in front and
// an interactive fallback behind.
package mimeapps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/lfkit/lfkit/internal/dirs"
	"github.com/lfkit/lfkit/internal/shell"
)

const (
	sectionDefault = "Default Applications"
	sectionAdded   = "Added Associations"
	sectionCache   = "MIME Cache"

	// TextEditor opens text when nothing else is registered.
	TextEditor = "nvim.desktop"
)

// PromptFunc asks the user for a program name.
type PromptFunc func(question string) (string, error)

// Resolver looks up the applications registered for a MIME type.
type Resolver struct {
	Dirs     dirs.Dirs
	Desktops []string // lower-cased XDG_CURRENT_DESKTOP
	Runner   shell.Runner
	Prompt   PromptFunc
}

// UserLists are the per-user mimeapps.list files in lookup order.
func (r *Resolver) UserLists() []string {
	var lists []string
	for _, d := range r.Desktops {
		lists = append(lists, filepath.Join(r.Dirs.ConfigHome, d+"-mimeapps.list"))
	}
	return append(lists, filepath.Join(r.Dirs.ConfigHome, "mimeapps.list"))
}

// SystemLists are the system-wide mimeapps.list files in lookup order.
func (r *Resolver) SystemLists() []string {
	var lists []string
	for _, dir := range r.Dirs.ConfigDirs {
		for _, d := range r.Desktops {
			lists = append(lists, filepath.Join(dir, d+"-mimeapps.list"))
		}
	}
	for _, dir := range r.Dirs.ConfigDirs {
		lists = append(lists, filepath.Join(dir, "mimeapps.list"))
	}
	for _, dir := range r.Dirs.DataDirs {
		for _, d := range r.Desktops {
			lists = append(lists, filepath.Join(dir, "applications", d+"-mimeapps.list"))
		}
	}
	for _, dir := range r.Dirs.DataDirs {
		lists = append(lists, filepath.Join(dir, "applications", "mimeapps.list"))
	}
	return lists
}

func (r *Resolver) mimeinfoCaches() []string {
	caches := []string{filepath.Join(r.Dirs.DataHome, "applications", "mimeinfo.cache")}
	for _, dir := range r.Dirs.DataDirs {
		caches = append(caches, filepath.Join(dir, "applications", "mimeinfo.cache"))
	}
	return caches
}

// Default returns the single desktop entry that opens mimeType.
func (r *Resolver) Default(ctx context.Context, mimeType string) (string, error) {
	names, err := r.resolve(ctx, mimeType, false)
	if err != nil {
		return "", err
	}
	return names[0], nil
}

// Candidates returns every desktop entry associated with mimeType, for an
// "open with" menu.
func (r *Resolver) Candidates(ctx context.Context, mimeType string) ([]string, error) {
	return r.resolve(ctx, mimeType, true)
}

func (r *Resolver) resolve(ctx context.Context, mimeType string, interactive bool) ([]string, error) {
	if len(r.Desktops) > 0 && r.Desktops[0] == "kde" && r.Runner != nil {
		names, err := r.fromTrader(ctx, mimeType)
		if err != nil {
			return nil, err
		}
		if len(names) > 0 {
			return names, nil
		}
	}

	userSections := []string{sectionDefault, sectionAdded}
	if interactive {
		userSections = []string{sectionAdded}
	}
	if names := firstMatch(r.UserLists(), userSections, mimeType); len(names) > 0 {
		return names, nil
	}
	if names := firstMatch(r.SystemLists(), []string{sectionDefault, sectionAdded}, mimeType); len(names) > 0 {
		return names, nil
	}
	if names := firstMatch(r.mimeinfoCaches(), []string{sectionCache}, mimeType); len(names) > 0 {
		return names, nil
	}

	if strings.HasPrefix(mimeType, "text") || strings.HasSuffix(mimeType, "x-empty") {
		return []string{TextEditor}, nil
	}
	return r.askUser()
}

func (r *Resolver) askUser() ([]string, error) {
	if r.Prompt == nil {
		return nil, errors.New("no program found to open file")
	}
	name, err := r.Prompt("No program found to open file. Please enter a program name:")
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(name, ".desktop") {
		name += ".desktop"
	}
	return []string{name}, nil
}

var traderEntry = regexp.MustCompile(`(?m)^DesktopEntryName : '([^']*)'`)

func (r *Resolver) fromTrader(ctx context.Context, mimeType string) ([]string, error) {
	out, err := r.Runner.Output(ctx, shell.Cmd{Name: "ktraderclient5", Args: []string{"--mimetype", mimeType}})
	if err != nil {
		return nil, fmt.Errorf("query KDE trader: %w", err)
	}
	return ParseTraderOutput(string(out)), nil
}

// ParseTraderOutput extracts desktop entry names from ktraderclient5 output.
func ParseTraderOutput(out string) []string {
	if strings.HasSuffix(out, "got 0 offers.\n") {
		return nil
	}
	var names []string
	for _, m := range traderEntry.FindAllStringSubmatch(out, -1) {
		if m[1] != "" {
			names = append(names, m[1]+".desktop")
		}
	}
	return names
}

// firstMatch returns the entries of the first existing file that lists
// mimeType under one of sections (tried in order per file).
func firstMatch(files, sections []string, mimeType string) []string {
	for _, path := range files {
		if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
			continue
		}
		f, err := Load(path)
		if err != nil {
			continue
		}
		for _, name := range sections {
			sec, err := f.GetSection(name)
			if err != nil || !sec.HasKey(mimeType) {
				continue
			}
			if entries := SplitList(sec.Key(mimeType).String()); len(entries) > 0 {
				return entries
			}
		}
	}
	return nil
}

// Load parses a freedesktop-style key file: case-sensitive, no inline
// comments, no quote stripping, no line continuation.
func Load(path string) (*ini.File, error) {
	return ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		IgnoreContinuation:      true,
		PreserveSurroundedQuote: true,
		KeyValueDelimiters:      "=",
	}, path)
}

// SplitList splits a ';'-separated value, dropping empty items.
func SplitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ";") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
