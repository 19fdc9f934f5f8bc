package model

import (
	"net/url"

	"github.com/charmbracelet/lipgloss"

	"github.com/t3chat/t3chat-tui/style"
)

// HeaderModel renders the one-line title bar:
//
//	t3chat · chat.example.com · Go generics
type HeaderModel struct {
	version string
	server  string
	title   string
	width   int
}

func NewHeader(version, serverURL string) HeaderModel {
	host := serverURL
	if u, err := url.Parse(serverURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return HeaderModel{version: version, server: host}
}

// SetTitle sets the active conversation title; empty means a new chat.
func (m *HeaderModel) SetTitle(title string) { m.title = title }

func (m *HeaderModel) SetWidth(w int) { m.width = w }

func (m HeaderModel) View() string {
	sep := style.HeaderDetail.Render(" · ")
	title := m.title
	if title == "" {
		title = "New chat"
	}
	line := style.HeaderTitle.Render("t3chat") +
		style.HeaderDetail.Render(" "+m.version) + sep +
		style.HeaderDetail.Render(m.server) + sep +
		lipgloss.NewStyle().Foreground(style.Secondary).Render(title)
	if m.width > 0 {
		line = lipgloss.NewStyle().MaxWidth(m.width).Render(line)
	}
	return line
}
