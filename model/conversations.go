package model

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/t3chat/t3chat-tui/format"
	"github.com/t3chat/t3chat-tui/protocol"
	"github.com/t3chat/t3chat-tui/style"
)

// EmptyPreview stands in for a conversation without messages.
const EmptyPreview = "No messages yet"

// ConversationSelected is emitted when the user opens a sidebar entry.
type ConversationSelected struct {
	ID string
}

var (
	sidebarUp    = key.NewBinding(key.WithKeys("up", "k"))
	sidebarDown  = key.NewBinding(key.WithKeys("down", "j"))
	sidebarEnter = key.NewBinding(key.WithKeys("enter"))
)

// ConversationsModel is the sidebar. Its entries are replaced wholesale on
// every conversations_list.
type ConversationsModel struct {
	items   []protocol.Conversation
	active  string
	cursor  int
	focused bool
	width   int
	height  int
}

func NewConversations() ConversationsModel {
	return ConversationsModel{}
}

// SetItems replaces the list. The cursor follows the active conversation.
func (m *ConversationsModel) SetItems(items []protocol.Conversation) {
	m.items = append([]protocol.Conversation(nil), items...)
	m.cursor = 0
	if i := m.index(m.active); i >= 0 {
		m.cursor = i
	}
}

// Items returns the current entries.
func (m ConversationsModel) Items() []protocol.Conversation { return m.items }

// SetActive marks id as the open conversation; empty clears the mark.
func (m *ConversationsModel) SetActive(id string) {
	m.active = id
	if i := m.index(id); i >= 0 {
		m.cursor = i
	}
}

func (m ConversationsModel) Active() string { return m.active }

func (m ConversationsModel) index(id string) int {
	if id == "" {
		return -1
	}
	for i, c := range m.items {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (m *ConversationsModel) Focus() { m.focused = true }
func (m *ConversationsModel) Blur() { m.focused = false }
func (m ConversationsModel) Focused() bool { return m.focused }
func (m *ConversationsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Init satisfies tea.Model.
func (m ConversationsModel) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and emits ConversationSelected on enter. Keys are
// ignored unless the sidebar has focus.
func (m ConversationsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused || len(m.items) == 0 {
		return m, nil
	}
	switch {
	case key.Matches(km, sidebarUp):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, sidebarDown):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(km, sidebarEnter):
		id := m.items[m.cursor].ID
		return m, func() tea.Msg { return ConversationSelected{ID: id} }
	}
	return m, nil
}

// View renders the sidebar: a title, then two lines per entry (title and
// preview), clipped to the available height.
func (m ConversationsModel) View() string {
	inner := m.width - 2
	if inner < 8 {
		inner = 8
	}
	clip := lipgloss.NewStyle().MaxWidth(inner)

	lines := []string{style.SidebarTitle.Render("Conversations"), ""}
	if len(m.items) == 0 {
		lines = append(lines, style.SidebarPreview.Render("None yet"))
	}

	start := 0
	if m.height > 0 {
		// Each entry takes three rows; keep the cursor in view.
		per := (m.height - 2) / 3
		if per < 1 {
			per = 1
		}
		if m.cursor >= per {
			start = m.cursor - per + 1
		}
	}

	for i := start; i < len(m.items); i++ {
		c := m.items[i]
		title := format.Sanitize(c.Title)
		if strings.TrimSpace(title) == "" {
			title = "Untitled"
		}
		preview := format.Sanitize(strings.ReplaceAll(c.Preview, "\n", " "))
		if strings.TrimSpace(preview) == "" {
			preview = EmptyPreview
		}

		mark := "  "
		st := style.SidebarItem
		if c.ID == m.active {
			mark = "● "
			st = style.SidebarActive
		}
		if m.focused && i == m.cursor {
			mark = "> "
			st = st.Underline(true)
		}
		lines = append(lines,
			clip.Render(st.Render(mark+title)),
			clip.Render("  "+style.SidebarPreview.Render(preview)),
			"",
		)
	}

	out := strings.Join(lines, "\n")
	box := style.SidebarBox.Width(m.width)
	if m.height > 0 {
		box = box.Height(m.height).MaxHeight(m.height)
	}
	return box.Render(out)
}
