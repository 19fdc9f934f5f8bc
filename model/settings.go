package model

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/t3chat/t3chat-tui/format"
	"github.com/t3chat/t3chat-tui/settings"
	"github.com/t3chat/t3chat-tui/style"
)

// SettingsSubmitted carries the dialog's raw input. The dialog stays open
// until the parent closes it, so a failed save can show its error in place.
type SettingsSubmitted struct {
	Form settings.Form
}

// SettingsCancelled is emitted on Esc.
type SettingsCancelled struct{}

const (
	fieldOpenRouter = iota
	fieldTavily
	fieldCustomModel
	fieldCount
)

var (
	settingsNext   = key.NewBinding(key.WithKeys("tab", "down"))
	settingsPrev   = key.NewBinding(key.WithKeys("shift+tab", "up"))
	settingsSubmit = key.NewBinding(key.WithKeys("enter", "ctrl+s"))
	settingsCancel = key.NewBinding(key.WithKeys("esc"))
	settingsReveal = key.NewBinding(key.WithKeys("ctrl+r"))
)

// SettingsModel is the API key dialog.
type SettingsModel struct {
	inputs  [fieldCount]textinput.Model
	labels  [fieldCount]string
	focus   int
	active  bool
	reveal  bool
	errText string
	width   int
	height  int
}

func NewSettings() SettingsModel {
	m := SettingsModel{
		labels: [fieldCount]string{
			"OpenRouter API key",
			"Tavily API key (optional)",
			"Custom model (optional)",
		},
	}
	placeholders := [fieldCount]string{"sk-or-...", "tvly-...", "provider/model-name"}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 512
		ti.Prompt = ""
		m.inputs[i] = ti
	}
	m.applyEcho()
	return m
}

// Open shows the dialog prefilled with the stored credentials.
func (m *SettingsModel) Open(c settings.Credentials, width, height int) tea.Cmd {
	m.active = true
	m.errText = ""
	m.reveal = false
	m.width, m.height = width, height
	m.inputs[fieldOpenRouter].SetValue(c.OpenRouterKey)
	m.inputs[fieldTavily].SetValue(c.TavilyKey)
	m.inputs[fieldCustomModel].SetValue(c.CustomModel)
	for i := range m.inputs {
		m.inputs[i].Width = m.fieldWidth()
		m.inputs[i].CursorEnd()
	}
	m.applyEcho()
	return m.setFocus(fieldOpenRouter)
}

// Close hides the dialog.
func (m *SettingsModel) Close() {
	m.active = false
	m.errText = ""
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func (m SettingsModel) IsActive() bool { return m.active }

// SetError shows text under the fields until the next submit.
func (m *SettingsModel) SetError(text string) { m.errText = text }

// Error returns the message shown under the fields.
func (m SettingsModel) Error() string { return m.errText }

// Form returns the current input.
func (m SettingsModel) Form() settings.Form {
	return settings.Form{
		OpenRouterKey: m.inputs[fieldOpenRouter].Value(),
		TavilyKey:     m.inputs[fieldTavily].Value(),
		CustomModel:   m.inputs[fieldCustomModel].Value(),
	}
}

func (m SettingsModel) fieldWidth() int {
	w := m.width/2 - 8
	if w < 30 {
		w = 30
	}
	return w
}

func (m *SettingsModel) applyEcho() {
	for _, i := range []int{fieldOpenRouter, fieldTavily} {
		if m.reveal {
			m.inputs[i].EchoMode = textinput.EchoNormal
		} else {
			m.inputs[i].EchoMode = textinput.EchoPassword
			m.inputs[i].EchoCharacter = '•'
		}
	}
}

func (m *SettingsModel) setFocus(i int) tea.Cmd {
	m.focus = (i + fieldCount) % fieldCount
	for j := range m.inputs {
		if j != m.focus {
			m.inputs[j].Blur()
		}
	}
	return m.inputs[m.focus].Focus()
}

// Update handles navigation, submit, and cancel, forwarding other keys to
// the focused field.
func (m SettingsModel) Update(msg tea.Msg) (SettingsModel, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, settingsCancel):
			m.Close()
			return m, func() tea.Msg { return SettingsCancelled{} }
		case key.Matches(km, settingsSubmit):
			// Enter advances through the fields; on the last one, or with
			// ctrl+s anywhere, it submits.
			if km.String() == "enter" && m.focus < fieldCount-1 {
				return m, m.setFocus(m.focus + 1)
			}
			m.errText = ""
			form := m.Form()
			return m, func() tea.Msg { return SettingsSubmitted{Form: form} }
		case key.Matches(km, settingsNext):
			return m, m.setFocus(m.focus + 1)
		case key.Matches(km, settingsPrev):
			return m, m.setFocus(m.focus - 1)
		case key.Matches(km, settingsReveal):
			m.reveal = !m.reveal
			m.applyEcho()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// View renders the dialog centered in the terminal.
func (m SettingsModel) View() string {
	if !m.active {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(style.ModalTitle.Render("Settings"))
	sb.WriteString("\n\n")
	for i := range m.inputs {
		label := style.FieldLabel
		if i == m.focus {
			label = label.Bold(true)
		}
		sb.WriteString(label.Render(m.labels[i]))
		sb.WriteByte('\n')
		field := lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(style.Border)
		if i == m.focus {
			field = field.BorderForeground(style.Primary)
		}
		sb.WriteString(field.Render(m.inputs[i].View()))
		sb.WriteString("\n\n")
	}
	if m.errText != "" {
		sb.WriteString(style.ErrorText.Render(format.Sanitize(m.errText)))
		sb.WriteString("\n\n")
	}
	sb.WriteString(style.Hint.Render("tab next · enter save · ctrl+r show keys · esc cancel"))

	box := style.ModalBox.Width(m.fieldWidth() + 6).Render(sb.String())
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
