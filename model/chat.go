package model

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/t3chat/t3chat-tui/format"
	"github.com/t3chat/t3chat-tui/markdown"
	"github.com/t3chat/t3chat-tui/protocol"
	"github.com/t3chat/t3chat-tui/stream"
	"github.com/t3chat/t3chat-tui/style"
)

// Role identifies who a chat line belongs to.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
	RoleSystem
)

// ChatMessage is a single entry in the conversation view.
type ChatMessage struct {
	ID        int
	Role      Role
	Content   string
	Timestamp string // RFC 3339, as on the wire
	Model     string
	Streaming bool

	// cached render, valid while renderedWidth == current width
	rendered      string
	renderedWidth int
}

// ChatModel is a scrollable viewport over the conversation. It is the
// render target of the streaming state machine.
type ChatModel struct {
	vp       viewport.Model
	spin     spinner.Model
	messages []ChatMessage
	nextID   int
	typing   bool
	width    int
	height   int
	now      func() time.Time
}

var _ stream.View = (*ChatModel)(nil)

// NewChat constructs a ChatModel sized to width x height.
func NewChat(width, height int) ChatModel {
	vp := viewport.New(width, height)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = style.SpinnerStyle
	m := ChatModel{vp: vp, spin: sp, width: width, height: height, now: time.Now}
	m.refresh()
	return m
}

func (m *ChatModel) add(msg ChatMessage) int {
	m.nextID++
	msg.ID = m.nextID
	if msg.Timestamp == "" {
		msg.Timestamp = m.now().Format(time.RFC3339)
	}
	m.messages = append(m.messages, msg)
	m.refresh()
	return msg.ID
}

func (m *ChatModel) find(id int) int {
	for i := range m.messages {
		if m.messages[i].ID == id {
			return i
		}
	}
	return -1
}

// AddUserMessage appends a user message and scrolls to the bottom.
func (m *ChatModel) AddUserMessage(text string) {
	m.add(ChatMessage{Role: RoleUser, Content: text})
}

// AddSystemMessage appends a dimmed local line (help, command output).
func (m *ChatModel) AddSystemMessage(text string) {
	m.add(ChatMessage{Role: RoleSystem, Content: text})
}

// Begin implements stream.View.
func (m *ChatModel) Begin(modelName string) stream.Handle {
	return stream.Handle(m.add(ChatMessage{Role: RoleAssistant, Model: modelName, Streaming: true}))
}

// Append implements stream.View.
func (m *ChatModel) Append(h stream.Handle, chunk string) {
	if i := m.find(int(h)); i >= 0 {
		m.messages[i].Content += chunk
		m.messages[i].renderedWidth = 0
		m.refresh()
	}
}

// Finalize implements stream.View.
func (m *ChatModel) Finalize(h stream.Handle, content string) {
	if i := m.find(int(h)); i >= 0 {
		m.messages[i].Content = content
		m.messages[i].Streaming = false
		m.messages[i].renderedWidth = 0
		m.refresh()
	}
}

// Remove implements stream.View.
func (m *ChatModel) Remove(h stream.Handle) {
	if i := m.find(int(h)); i >= 0 {
		m.messages = append(m.messages[:i], m.messages[i+1:]...)
		m.refresh()
	}
}

// SetHistory replaces the whole view with a conversation's messages.
func (m *ChatModel) SetHistory(history []protocol.HistoryMessage) {
	m.messages = m.messages[:0]
	for _, h := range history {
		role := RoleAssistant
		if h.Role == "user" {
			role = RoleUser
		}
		m.nextID++
		m.messages = append(m.messages, ChatMessage{
			ID:        m.nextID,
			Role:      role,
			Content:   h.Content,
			Timestamp: h.Timestamp,
			Model:     h.Model,
		})
	}
	m.refresh()
}

// Clear empties the view.
func (m *ChatModel) Clear() {
	m.messages = nil
	m.typing = false
	m.refresh()
}

// Messages returns the conversation lines (user and assistant only).
func (m ChatModel) Messages() []ChatMessage {
	out := make([]ChatMessage, 0, len(m.messages))
	for _, msg := range m.messages {
		if msg.Role != RoleSystem {
			out = append(out, msg)
		}
	}
	return out
}

// LastReply returns the newest finalized assistant message.
func (m ChatModel) LastReply() (string, bool) {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if msg := m.messages[i]; msg.Role == RoleAssistant && !msg.Streaming {
			return msg.Content, true
		}
	}
	return "", false
}

// SetTyping shows or hides the typing indicator. The returned command
// starts the spinner.
func (m *ChatModel) SetTyping(on bool) tea.Cmd {
	if m.typing == on {
		return nil
	}
	m.typing = on
	m.refresh()
	if on {
		return m.spin.Tick
	}
	return nil
}

// Typing reports whether the typing indicator is visible.
func (m ChatModel) Typing() bool { return m.typing }

// SetSize resizes the viewport.
func (m *ChatModel) SetSize(width, height int) {
	if width == m.width && height == m.height {
		return
	}
	m.width = width
	m.height = height
	m.vp.Width = width
	m.vp.Height = height
	m.refresh()
}

// Restyle drops cached renders after a theme change.
func (m *ChatModel) Restyle() {
	m.spin.Style = style.SpinnerStyle
	for i := range m.messages {
		m.messages[i].renderedWidth = 0
	}
	m.refresh()
}

func (m *ChatModel) ScrollToTop() { m.vp.GotoTop() }
func (m *ChatModel) ScrollToBottom() { m.vp.GotoBottom() }

// Init satisfies tea.Model.
func (m ChatModel) Init() tea.Cmd {
	return nil
}

// Update advances the spinner while typing and forwards keys and mouse
// events to the viewport.
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		if !m.typing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(tick)
		m.refresh()
		return m, cmd
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// View returns the rendered viewport content.
func (m ChatModel) View() string {
	return m.vp.View()
}

func (m *ChatModel) refresh() {
	m.vp.SetContent(m.renderAll())
	m.vp.GotoBottom()
}

func (m *ChatModel) renderAll() string {
	if len(m.messages) == 0 && !m.typing {
		return style.Faint.Render("  No messages yet. Type below to get started.")
	}
	var sb strings.Builder
	for i := range m.messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(m.render(&m.messages[i]))
	}
	if m.typing {
		if len(m.messages) > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(m.spin.View() + style.Faint.Render(" AI is typing"))
	}
	return sb.String()
}

func (m *ChatModel) render(msg *ChatMessage) string {
	if msg.renderedWidth == m.width && msg.renderedWidth != 0 {
		return msg.rendered
	}
	inner := m.width - 2
	if inner < 20 {
		inner = 20
	}
	var out string
	switch msg.Role {
	case RoleUser:
		header := style.UserLabel.Render("You") + meta(msg.Timestamp, "")
		out = style.UserBlock.Width(inner).Render(header + "\n" + format.Sanitize(msg.Content))
	case RoleAssistant:
		header := style.AgentLabel.Render("AI") + meta(msg.Timestamp, msg.Model)
		body := format.Sanitize(msg.Content)
		if msg.Streaming {
			// Raw text while streaming; markdown once the reply is final.
			body += style.Cursor.Render("▍")
		} else {
			body = markdown.Render(body, inner-2)
		}
		out = style.AgentBlock.Width(inner).Render(header + "\n" + body)
	default:
		out = style.SystemBlock.Width(inner).Render(format.Sanitize(msg.Content))
	}
	if !msg.Streaming {
		msg.rendered = out
		msg.renderedWidth = m.width
	}
	return out
}

func meta(ts, modelName string) string {
	var parts []string
	if t := format.Time(ts); t != "" {
		parts = append(parts, t)
	}
	if modelName != "" {
		parts = append(parts, format.Sanitize(modelName))
	}
	if len(parts) == 0 {
		return ""
	}
	return style.MsgMeta.Render(" · " + strings.Join(parts, " · "))
}
