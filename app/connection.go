package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/t3chat/t3chat-tui/client"
	"github.com/t3chat/t3chat-tui/model"
	"github.com/t3chat/t3chat-tui/protocol"
)

// connect starts a dial unless one is in progress or open. Before the
// program is running the request is remembered and replayed on
// ProgramReady.
func (m *Model) connect() tea.Cmd {
	if m.conn == nil || m.state != StateDisconnected {
		return nil
	}
	if m.sender == nil {
		m.pendingConnect = true
		return nil
	}
	m.closing = false
	m.timerAttempt = 0
	m.state = StateConnecting
	m.syncStatus()
	m.log.Info().Int("attempt", m.attempt).Msg("connecting")
	return m.conn.ConnectCmd(m.sender)
}

func (m Model) handleOpened(v client.OpenedEvent) (Model, tea.Cmd) {
	m.connID = v.ConnID
	m.state = StateAuthenticating
	m.syncStatus()
	m.notify("Connected to chat server", model.ToastSuccess)
	if err := m.conn.Send(protocol.Authenticate{APIKeys: m.creds.APIKeys()}); err != nil {
		m.log.Warn().Err(err).Str("conn_id", m.connID).Msg("authenticate not queued")
		m.notify("Connection error occurred", model.ToastError)
	}
	return m, nil
}

// handleAuthSent completes the handshake: chat becomes possible and the
// sidebar is requested.
func (m Model) handleAuthSent() (Model, tea.Cmd) {
	if m.state != StateAuthenticating {
		return m, nil
	}
	m.state = StateConnected
	m.attempt = 0
	m.syncStatus()
	m.log.Info().Str("conn_id", m.connID).Msg("authenticated")
	_ = m.send(protocol.GetConversations{})
	return m, nil
}

// handleDisconnected aborts any reply in flight and schedules one
// reconnect unless the close was intentional or retries are exhausted.
func (m Model) handleDisconnected(v client.DisconnectedEvent) (Model, tea.Cmd) {
	m.state = StateDisconnected
	m.connID = ""
	if m.stream.Abort() {
		m.log.Debug().Msg("reply aborted by disconnect")
	}
	m.chat.SetTyping(false)
	m.setAwaiting(false)

	if v.Intentional || m.closing {
		m.syncStatus()
		return m, nil
	}
	cmd := m.scheduleReconnect()
	m.syncStatus()
	return m, cmd
}

// scheduleReconnect arms exactly one timer for the next attempt.
func (m *Model) scheduleReconnect() tea.Cmd {
	m.attempt++
	if m.backoff.Exhausted(m.attempt) {
		m.log.Warn().Int("attempts", m.attempt-1).Msg("reconnect gave up")
		m.notify(fmt.Sprintf("Could not reconnect after %d attempts. Use /reconnect to try again.", m.attempt-1), model.ToastError)
		return nil
	}
	delay := m.backoff.Delay(m.attempt)
	m.log.Info().Int("attempt", m.attempt).Dur("delay", delay).Msg("reconnect scheduled")
	m.notify("Disconnected from server. Attempting to reconnect...", model.ToastError)
	attempt := m.attempt
	m.timerAttempt = attempt
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return client.ReconnectDueEvent{Attempt: attempt}
	})
}

// handleReconnectDue acts on a timer only if it is the armed one and the
// client is still disconnected. Any other connect disarms it.
func (m Model) handleReconnectDue(v client.ReconnectDueEvent) (Model, tea.Cmd) {
	if m.state != StateDisconnected || m.timerAttempt == 0 || v.Attempt != m.timerAttempt || m.closing {
		return m, nil
	}
	cmd := m.connect()
	return m, cmd
}

// reconnect restarts the schedule from the first attempt.
func (m Model) reconnect() (Model, tea.Cmd) {
	if !m.creds.Complete() {
		m.notify("Please configure your API keys in settings to start chatting.", model.ToastWarning)
		return m, nil
	}
	if m.state != StateDisconnected {
		m.notify("Already "+m.state.String(), model.ToastInfo)
		return m, nil
	}
	m.attempt = 0
	cmd := m.connect()
	return m, cmd
}
