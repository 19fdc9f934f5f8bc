package app

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/t3chat/t3chat-tui/client"
	"github.com/t3chat/t3chat-tui/export"
	"github.com/t3chat/t3chat-tui/model"
	"github.com/t3chat/t3chat-tui/msg"
	"github.com/t3chat/t3chat-tui/protocol"
	"github.com/t3chat/t3chat-tui/style"
)

type command struct {
	name     string
	args     string
	desc     string
	category string
}

var commands = []command{
	{"/new", "", "Start a new conversation", "conversation"},
	{"/open", "<id>", "Open a conversation by id", "conversation"},
	{"/conversations", "", "Refresh and browse the conversation list", "conversation"},
	{"/upload", "<path>...", "Upload files to the conversation (max 10MB each)", "conversation"},
	{"/export", "[path]", "Save the conversation as HTML", "conversation"},
	{"/copy", "", "Copy the last reply to the clipboard", "conversation"},
	{"/model", "[id]", "Show or change the model", "settings"},
	{"/settings", "", "Edit API keys and the custom model", "settings"},
	{"/theme", "[name]", "Show or change the color theme", "settings"},
	{"/reconnect", "", "Reconnect to the chat server", "connection"},
	{"/help", "", "Show commands and keys", "system"},
	{"/quit", "", "Exit", "system"},
}

func commandNames() []string {
	out := make([]string, len(commands))
	for i, c := range commands {
		out[i] = c.name
	}
	return out
}

func paletteItems() []model.PaletteItem {
	out := make([]model.PaletteItem, len(commands))
	for i, c := range commands {
		out[i] = model.PaletteItem{Name: c.name, Description: c.desc, Category: c.category}
	}
	return out
}

// runCommand executes a slash command line such as "/model openai/gpt-4o".
func (m Model) runCommand(line string) (Model, tea.Cmd) {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	m.log.Debug().Str("command", name).Msg("command")

	switch name {
	case "/new":
		return m.newConversation()
	case "/open":
		if arg == "" {
			m.notify("Usage: /open <id>", model.ToastWarning)
			return m, nil
		}
		m.openConversation(arg)
		return m, nil
	case "/conversations":
		if m.send(protocol.GetConversations{}) == nil {
			m.sidebar.Focus()
			m.input.Blur()
		}
		return m, nil
	case "/upload":
		return m.upload(strings.Fields(arg))
	case "/export":
		return m, m.exportCmd(arg)
	case "/copy":
		return m.copyLastReply()
	case "/model":
		if arg == "" {
			return m.openPicker()
		}
		if !contains(m.models, arg) {
			m.notify("Unknown model "+arg+". Add it as the custom model in /settings.", model.ToastWarning)
			return m, nil
		}
		m.selectModel(arg)
		return m, nil
	case "/settings":
		return m.openSettings()
	case "/theme":
		return m.setTheme(arg)
	case "/reconnect":
		return m.reconnect()
	case "/help":
		m.chat.AddSystemMessage(helpText())
		return m, nil
	case "/quit", "/exit":
		return m.quit()
	}
	m.notify(fmt.Sprintf("Unknown command %s. Type /help for a list.", name), model.ToastWarning)
	return m, nil
}

// upload prepares each file off the event loop. Oversized files are
// rejected per file and never queued.
func (m Model) upload(paths []string) (Model, tea.Cmd) {
	if len(paths) == 0 {
		m.notify("Usage: /upload <path>...", model.ToastWarning)
		return m, nil
	}
	if m.state != StateConnected {
		m.notify("Not connected to the chat server", model.ToastWarning)
		return m, nil
	}
	convID := m.convID
	cmds := make([]tea.Cmd, 0, len(paths))
	for _, p := range paths {
		cmds = append(cmds, func() tea.Msg {
			up, err := client.PrepareUploadFile(p, convID)
			if err != nil {
				return msg.UploadFailed{Filename: filepath.Base(p), Err: err}
			}
			return msg.UploadReady{Upload: up}
		})
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleUploadReady(v msg.UploadReady) (Model, tea.Cmd) {
	if err := m.send(v.Upload); err != nil {
		return m, nil
	}
	m.log.Info().Str("file", v.Upload.Filename).Str("mime", v.Upload.MimeType).Msg("upload queued")
	m.notify("Uploading "+v.Upload.Filename, model.ToastInfo)
	return m, nil
}

func (m Model) transcript() export.Transcript {
	t := export.Transcript{ConversationID: m.convID, ExportedAt: m.opts.Now()}
	for _, c := range m.sidebar.Items() {
		if c.ID == m.convID {
			t.Title = c.Title
		}
	}
	for _, cm := range m.chat.Messages() {
		if cm.Streaming {
			continue
		}
		role := "user"
		if cm.Role == model.RoleAssistant {
			role = "assistant"
		}
		t.Messages = append(t.Messages, export.Message{
			Role:      role,
			Content:   cm.Content,
			Timestamp: cm.Timestamp,
			Model:     cm.Model,
		})
	}
	return t
}

func (m Model) exportCmd(path string) tea.Cmd {
	t := m.transcript()
	if path == "" {
		path = filepath.Join(m.opts.ExportDir, export.Filename(t))
	}
	return func() tea.Msg {
		if err := export.WriteFile(path, t); err != nil {
			return msg.ExportResult{Err: err}
		}
		return msg.ExportResult{Path: path}
	}
}

func (m Model) copyLastReply() (Model, tea.Cmd) {
	text, ok := m.chat.LastReply()
	if !ok {
		m.notify("Nothing to copy yet", model.ToastInfo)
		return m, nil
	}
	write := m.opts.Clipboard
	return m, func() tea.Msg {
		if err := write(text); err != nil {
			return msg.CopyResult{Err: err}
		}
		return msg.CopyResult{Chars: len([]rune(text))}
	}
}

func (m Model) setTheme(name string) (Model, tea.Cmd) {
	if name == "" {
		m.chat.AddSystemMessage(fmt.Sprintf("Theme: %s (available: %s)",
			style.CurrentThemeName, strings.Join(style.ThemeNames, ", ")))
		return m, nil
	}
	if !m.applyTheme(name) {
		m.notify(fmt.Sprintf("Unknown theme %s. Available: %s", name, strings.Join(style.ThemeNames, ", ")), model.ToastWarning)
		return m, nil
	}
	m.cfg.Theme = name
	m.notify("Theme changed to "+name, model.ToastInfo)
	save := m.opts.SaveTheme
	if save == nil {
		return m, nil
	}
	return m, func() tea.Msg {
		return msg.ThemeSaved{Theme: name, Err: save(name)}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func helpText() string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, c := range commands {
		usage := c.name
		if c.args != "" {
			usage += " " + c.args
		}
		fmt.Fprintf(&b, "  %-22s %s\n", usage, c.desc)
	}
	b.WriteString(`
Keybindings:
  Enter          Send message
  Alt+Enter      Insert newline
  Ctrl+N         New conversation
  Ctrl+B         Browse conversations (Esc to return)
  Ctrl+P         Select model
  Ctrl+K         Command palette
  Ctrl+S         Settings
  PgUp/PgDn      Scroll chat
  Home/End       Scroll to top/bottom
  Tab            Complete commands
  Up/Down        Input history
  F1             Show this help
  Ctrl+C         Clear input / quit`)
	return b.String()
}
