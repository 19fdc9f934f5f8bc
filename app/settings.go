package app

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/t3chat/t3chat-tui/model"
	"github.com/t3chat/t3chat-tui/msg"
	"github.com/t3chat/t3chat-tui/protocol"
	"github.com/t3chat/t3chat-tui/settings"
)

const storeTimeout = 5 * time.Second

// handleCredentials runs once at startup: without an OpenRouter key the
// settings dialog opens and nothing connects; otherwise exactly one
// connection is started.
func (m Model) handleCredentials(v credentialsLoaded) (Model, tea.Cmd) {
	if v.Err != nil {
		m.log.Error().Err(v.Err).Msg("load settings")
		m.notify("Could not read saved settings: "+v.Err.Error(), model.ToastError)
	}
	m.creds = v.Credentials
	m.addModel(m.creds.CustomModel)

	if !m.creds.Complete() {
		m.notify("Please configure your API keys in settings to start chatting.", model.ToastWarning)
		return m.openSettings()
	}
	cmd := m.connect()
	return m, cmd
}

func (m Model) openSettings() (Model, tea.Cmd) {
	m.input.Blur()
	m.picker.Clear()
	cmd := m.settings.Open(m.creds, m.width, m.height)
	return m, cmd
}

// saveSettings validates and persists the form off the event loop.
func (m Model) saveSettings(f settings.Form) tea.Cmd {
	store, current := m.opts.Store, m.creds
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		next, err := settings.Save(ctx, store, current, f)
		if err != nil {
			return msg.SettingsSaved{Credentials: current, Err: err}
		}
		return msg.SettingsSaved{Credentials: next, NewCustomModel: strings.TrimSpace(f.CustomModel)}
	}
}

func (m Model) handleSettingsSaved(v msg.SettingsSaved) (Model, tea.Cmd) {
	if v.Err != nil {
		if errors.Is(v.Err, settings.ErrInvalidInput) {
			m.settings.SetError(strings.TrimPrefix(v.Err.Error(), settings.ErrInvalidInput.Error()+": "))
		} else {
			m.log.Error().Err(v.Err).Msg("save settings")
			m.settings.SetError("Could not save settings: " + v.Err.Error())
		}
		return m, nil
	}

	m.creds = v.Credentials
	m.settings.Close()
	if v.NewCustomModel != "" {
		m.addModel(v.NewCustomModel)
		m.selectModel(v.NewCustomModel)
	}

	var cmds []tea.Cmd
	switch m.state {
	case StateConnected, StateAuthenticating:
		_ = m.send(protocol.UpdateAPIKeys{APIKeys: m.creds.APIKeys()})
	default:
		if m.creds.Complete() {
			m.attempt = 0
			cmds = append(cmds, m.connect())
		} else {
			m.notify("An OpenRouter API key is required to connect.", model.ToastWarning)
		}
	}
	m.notify("Settings saved successfully!", model.ToastSuccess)
	cmds = append(cmds, m.input.Focus())
	return m, tea.Batch(cmds...)
}
