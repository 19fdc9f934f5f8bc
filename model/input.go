package model

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/t3chat/t3chat-tui/style"
)

const (
	inputMaxLines = 5
	placeholder   = "Type a message, or / for commands…"
)

// InputModel is the multi-line composer with history navigation and command
// autocomplete. Enter is left to the parent (submit); alt+enter and ctrl+j
// insert a newline.
//
// History navigation:
//   - Up arrow on the first line: walk backwards through submitted inputs
//   - Down arrow on the last line: walk forwards (towards the present)
//
// Autocomplete:
//   - Tab when the buffer starts with "/" cycles through matching commands
type InputModel struct {
	ta         textarea.Model
	history    []string
	historyIdx int // points one past the last entry when not navigating

	commands   []string
	tabIdx     int // -1 = none
	tabMatches []string

	disabled string // placeholder shown while sending is not possible
}

// NewInput returns a ready-to-use InputModel.
func NewInput() InputModel {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.CharLimit = 32000
	ta.SetHeight(1)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))

	return InputModel{ta: ta, tabIdx: -1}
}

// SetCommands replaces the command list used for Tab autocomplete.
func (m *InputModel) SetCommands(cmds []string) {
	m.commands = cmds
}

// SetDisabled swaps the placeholder for reason; an empty reason restores it.
// Typing stays possible so a draft can be prepared while a reply streams.
func (m *InputModel) SetDisabled(reason string) {
	m.disabled = reason
	if reason == "" {
		m.ta.Placeholder = placeholder
	} else {
		m.ta.Placeholder = reason
	}
}

// Disabled reports whether a disabled reason is set.
func (m InputModel) Disabled() bool { return m.disabled != "" }

func (m *InputModel) Focus() tea.Cmd { return m.ta.Focus() }
func (m *InputModel) Blur() { m.ta.Blur() }
func (m InputModel) Focused() bool { return m.ta.Focused() }

// SetWidth resizes the composer; two columns go to the prompt.
func (m *InputModel) SetWidth(w int) {
	if w > 4 {
		m.ta.SetWidth(w - 2)
	}
}

// Height is the number of rows the composer currently needs.
func (m InputModel) Height() int {
	return m.ta.Height()
}

// Value returns the current raw text.
func (m InputModel) Value() string {
	return m.ta.Value()
}

// SetValue replaces the text and moves the cursor to the end.
func (m *InputModel) SetValue(s string) {
	m.ta.SetValue(s)
	m.ta.CursorEnd()
	m.fit()
}

// Reset clears the field and autocomplete state.
func (m *InputModel) Reset() {
	m.historyIdx = len(m.history)
	m.ta.Reset()
	m.resetTab()
	m.fit()
}

// Submit records text in history and clears the field.
func (m *InputModel) Submit(text string) {
	if text != "" {
		m.history = append(m.history, text)
	}
	m.Reset()
}

func (m *InputModel) resetTab() {
	m.tabIdx = -1
	m.tabMatches = nil
}

// fit grows the composer with its content, up to inputMaxLines.
func (m *InputModel) fit() {
	h := m.ta.LineCount()
	if h < 1 {
		h = 1
	}
	if h > inputMaxLines {
		h = inputMaxLines
	}
	m.ta.SetHeight(h)
}

// Init satisfies tea.Model.
func (m InputModel) Init() tea.Cmd {
	return textarea.Blink
}

// Update intercepts history and Tab keys before delegating to the textarea.
func (m InputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyUp:
			if m.ta.Line() == 0 {
				m = m.navigateHistory(-1)
				return m, nil
			}
		case tea.KeyDown:
			if m.ta.Line() >= m.ta.LineCount()-1 {
				m = m.navigateHistory(+1)
				return m, nil
			}
		case tea.KeyTab:
			m = m.cycleComplete()
			return m, nil
		default:
			m.resetTab()
		}
	}

	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	m.fit()
	return m, cmd
}

// View renders the prompt character beside the textarea.
func (m InputModel) View() string {
	prompt := style.PromptChar.Render("❯ ")
	return lipgloss.JoinHorizontal(lipgloss.Top, prompt, m.ta.View())
}

func (m InputModel) navigateHistory(delta int) InputModel {
	if len(m.history) == 0 {
		return m
	}
	next := m.historyIdx + delta
	switch {
	case next < 0:
		next = 0
	case next > len(m.history):
		next = len(m.history)
	}
	m.historyIdx = next

	if next == len(m.history) {
		m.ta.Reset()
	} else {
		m.ta.SetValue(m.history[next])
		m.ta.CursorEnd()
	}
	m.fit()
	return m
}

func (m InputModel) cycleComplete() InputModel {
	current := m.ta.Value()
	if !strings.HasPrefix(current, "/") {
		return m
	}

	if m.tabIdx == -1 || m.tabMatches == nil {
		m.tabMatches = matchCommands(m.commands, current)
		if len(m.tabMatches) == 0 {
			return m
		}
		m.tabIdx = 0
	} else {
		m.tabIdx = (m.tabIdx + 1) % len(m.tabMatches)
	}

	m.ta.SetValue(m.tabMatches[m.tabIdx])
	m.ta.CursorEnd()
	return m
}

func matchCommands(commands []string, prefix string) []string {
	var out []string
	for _, c := range commands {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}
