// Package tui holds the small interactive pieces the opener needs: a
// program chooser and a free-text prompt.
package tui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user quits a chooser or prompt.
var ErrCancelled = errors.New("cancelled")

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	indexStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// IO lets callers redirect the terminal; zero value means stdin/stdout.
type IO struct {
	In  io.Reader
	Out io.Writer
}

func (o IO) options() []tea.ProgramOption {
	in, out := o.In, o.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return []tea.ProgramOption{tea.WithInput(in), tea.WithOutput(out)}
}

type chooser struct {
	title    string
	items    []string
	selected int
	offset   int
	digits   string
	done     bool
	quit     bool
}

const chooserViewport = 10

func newChooser(title string, items []string) chooser {
	return chooser{title: title, items: items}
}

func (m chooser) Init() tea.Cmd { return nil }

func (m chooser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "esc", "ctrl+c":
		m.quit = true
		return m, tea.Quit
	case "enter":
		if m.digits != "" {
			if n, err := strconv.Atoi(m.digits); err == nil && n >= 0 && n < len(m.items) {
				m.selected = n
			}
		}
		m.done = true
		return m, tea.Quit
	case "up", "k":
		m.digits = ""
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		m.digits = ""
		if m.selected < len(m.items)-1 {
			m.selected++
		}
	case "home", "g":
		m.digits = ""
		m.selected = 0
	case "end", "G":
		m.digits = ""
		m.selected = len(m.items) - 1
	case "backspace":
		if m.digits != "" {
			m.digits = m.digits[:len(m.digits)-1]
		}
	default:
		// Typing an index jumps to it, like the numbered prompt it replaces.
		s := key.String()
		if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
			m.digits += s
			if n, err := strconv.Atoi(m.digits); err == nil && n < len(m.items) {
				m.selected = n
			} else {
				m.digits = s
				if n, _ := strconv.Atoi(s); n < len(m.items) {
					m.selected = n
				}
			}
		}
	}
	m.clampOffset()
	return m, nil
}

func (m *chooser) clampOffset() {
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+chooserViewport {
		m.offset = m.selected - chooserViewport + 1
	}
}

func (m chooser) View() string {
	if m.done || m.quit {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	end := m.offset + chooserViewport
	if end > len(m.items) {
		end = len(m.items)
	}
	for i := m.offset; i < end; i++ {
		idx := indexStyle.Render(fmt.Sprintf("%2d.", i))
		if i == m.selected {
			fmt.Fprintf(&b, "%s %s\n", idx, selectedStyle.Render("> "+m.items[i]))
		} else {
			fmt.Fprintf(&b, "%s   %s\n", idx, m.items[i])
		}
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("↑/↓ move • 0-9 jump • enter open • q quit"))
	b.WriteString("\n")
	return b.String()
}

// Choose lets the user pick one of items and returns its index.
func Choose(title string, items []string, o IO) (int, error) {
	if len(items) == 0 {
		return 0, errors.New("nothing to choose from")
	}
	final, err := tea.NewProgram(newChooser(title, items), o.options()...).Run()
	if err != nil {
		return 0, fmt.Errorf("chooser: %w", err)
	}
	m := final.(chooser)
	if m.quit || !m.done {
		return 0, ErrCancelled
	}
	return m.selected, nil
}

type prompt struct {
	question string
	input    textinput.Model
	done     bool
	quit     bool
}

func newPrompt(question string) prompt {
	ti := textinput.New()
	ti.Placeholder = "program name"
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 40
	return prompt{question: question, input: ti}
}

func (m prompt) Init() tea.Cmd { return textinput.Blink }

func (m prompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "ctrl+c", "ctrl+d":
			m.quit = true
			return m, tea.Quit
		case "enter":
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m prompt) View() string {
	if m.done || m.quit {
		return ""
	}
	return titleStyle.Render(m.question) + "\n" + m.input.View() + "\n"
}

// Prompt asks a free-text question. Empty answers count as cancelled.
func Prompt(question string, o IO) (string, error) {
	final, err := tea.NewProgram(newPrompt(question), o.options()...).Run()
	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	m := final.(prompt)
	answer := strings.TrimSpace(m.input.Value())
	if m.quit || !m.done || answer == "" {
		return "", ErrCancelled
	}
	return answer, nil
}
