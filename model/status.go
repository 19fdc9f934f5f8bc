package model

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/t3chat/t3chat-tui/format"
	"github.com/t3chat/t3chat-tui/style"
)

// ConnLevel selects the color of the connection indicator.
type ConnLevel int

const (
	ConnOff ConnLevel = iota
	ConnBusy
	ConnOnline
)

// StatusModel renders the bottom status line:
//
//	● connected · openai/gpt-4o-mini · conv 3f2a… · streaming 128 tok
type StatusModel struct {
	connLabel    string
	connLevel    ConnLevel
	modelName    string
	conversation string
	streaming    bool
	tokens       int
	exact        bool
	width        int
}

// NewStatus returns a StatusModel showing a disconnected client.
func NewStatus() StatusModel {
	return StatusModel{connLabel: "disconnected"}
}

// SetConnection updates the connection indicator.
func (m *StatusModel) SetConnection(label string, level ConnLevel) {
	m.connLabel = label
	m.connLevel = level
}

// SetModel sets the selected model id.
func (m *StatusModel) SetModel(name string) { m.modelName = name }

// SetConversation sets the active conversation id; empty means none.
func (m *StatusModel) SetConversation(id string) { m.conversation = id }

// SetStreaming marks a reply in flight and its token count.
func (m *StatusModel) SetStreaming(on bool, tokens int, exact bool) {
	m.streaming = on
	m.tokens = tokens
	m.exact = exact
}

// SetWidth constrains the line to the terminal width.
func (m *StatusModel) SetWidth(w int) { m.width = w }

// Init satisfies tea.Model.
func (m StatusModel) Init() tea.Cmd {
	return nil
}

// Update satisfies tea.Model. StatusModel is driven by setters only.
func (m StatusModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the status line.
func (m StatusModel) View() string {
	dot := style.StatusOff
	switch m.connLevel {
	case ConnOnline:
		dot = style.StatusOnline
	case ConnBusy:
		dot = style.StatusBusy
	}
	parts := []string{dot.Render("●") + " " + m.connLabel}
	if m.modelName != "" {
		parts = append(parts, format.Sanitize(m.modelName))
	}
	if m.conversation != "" {
		parts = append(parts, "conv "+shortID(format.Sanitize(m.conversation)))
	}
	if m.streaming {
		parts = append(parts, "streaming "+formatTokens(m.tokens, m.exact))
	}
	line := strings.Join(parts, " · ")
	s := style.StatusBar
	if m.width > 0 {
		s = s.MaxWidth(m.width)
	}
	return s.Render(line)
}

func shortID(id string) string {
	r := []rune(id)
	if len(r) <= 8 {
		return id
	}
	return string(r[:8]) + "…"
}

// formatTokens renders a count as "128 tok", "1.2k tok", or "~40 tok"
// when the count is an estimate.
func formatTokens(n int, exact bool) string {
	prefix := ""
	if !exact {
		prefix = "~"
	}
	if n >= 1000 {
		return fmt.Sprintf("%s%.1fk tok", prefix, float64(n)/1000)
	}
	return fmt.Sprintf("%s%d tok", prefix, n)
}
