// Package picker implements the interactive tool selection shown by copm init.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
)

// ErrCancelled is returned when the user quits without confirming
var ErrCancelled = errors.New("selection cancelled")

// Option is one selectable tool
type Option struct {
	ID          string
	Label       string
	Description string
}

// Model is the Bubble Tea model for the multi-select tool picker
type Model struct {
	title    string
	options  []Option
	cursor   int
	selected map[string]bool
	warning  string
	done     bool
	quitting bool
}

// New creates a picker with the IDs in preselected already checked
func New(title string, options []Option, preselected []string) Model {
	selected := make(map[string]bool)
	for _, id := range preselected {
		selected[id] = true
	}

	return Model{
		title:    title,
		options:  options,
		selected: selected,
	}
}

// Selected returns the checked IDs in option order
func (m Model) Selected() []string {
	var result []string
	for _, opt := range m.options {
		if m.selected[opt.ID] {
			result = append(result, opt.ID)
		}
	}
	return result
}

// Done reports whether the user confirmed a selection
func (m Model) Done() bool {
	return m.done
}

// IsQuitting returns true if the user quit without confirming
func (m Model) IsQuitting() bool {
	return m.quitting
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	m.warning = ""
	switch {
	case key.Matches(keyMsg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}

	case key.Matches(keyMsg, keys.Toggle):
		if len(m.options) > 0 {
			id := m.options[m.cursor].ID
			m.selected[id] = !m.selected[id]
		}

	case key.Matches(keyMsg, keys.All):
		all := len(m.Selected()) == len(m.options)
		for _, opt := range m.options {
			m.selected[opt.ID] = !all
		}

	case key.Matches(keyMsg, keys.Confirm):
		if len(m.Selected()) == 0 {
			m.warning = "select at least one tool"
			return m, nil
		}
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// View implements tea.Model
func (m Model) View() string {
	if m.done || m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	for i, opt := range m.options {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}

		checked := "[ ]"
		if m.selected[opt.ID] {
			checked = selectedStyle.Render("[x]")
		}

		line := fmt.Sprintf("%s%s %s", cursor, checked, opt.Label)
		if opt.Description != "" {
			line += helpStyle.Render("  " + opt.Description)
		}
		b.WriteString(line + "\n")
	}

	if m.warning != "" {
		b.WriteString("\n" + warnStyle.Render(m.warning) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space: toggle • a: all/none • enter: confirm • q: quit"))

	return b.String()
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	Confirm key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k")),
	Down:    key.NewBinding(key.WithKeys("down", "j")),
	Toggle:  key.NewBinding(key.WithKeys(" ")),
	All:     key.NewBinding(key.WithKeys("a")),
	Confirm: key.NewBinding(key.WithKeys("enter")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c", "esc")),
}

// ToolOptions lists the tools copm can target
func ToolOptions() []Option {
	return []Option{
		{ID: "copilot", Label: "GitHub Copilot", Description: ".github/"},
		{ID: "claude", Label: "Claude Code", Description: ".claude/"},
	}
}

// SelectTools asks which tools the project uses, starting from defaults
func SelectTools(defaults []string) ([]string, error) {
	return Run("Which tools does this project use?", ToolOptions(), defaults)
}

// Run runs the picker and returns the confirmed IDs
func Run(title string, options []Option, preselected []string) ([]string, error) {
	p := tea.NewProgram(New(title, options, preselected))

	finalModel, err := p.Run()
	if err != nil {
		return nil, errors.Wrap(err, "run picker")
	}

	fm := finalModel.(Model)
	if !fm.Done() {
		return nil, ErrCancelled
	}
	return fm.Selected(), nil
}
