package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/t3chat/t3chat-tui/model"
	"github.com/t3chat/t3chat-tui/protocol"
)

// dispatcher routes one server envelope to its handler. It mutates the
// model it points at and returns the follow-up command.
type dispatcher struct{ m *Model }

var _ protocol.Handler[tea.Cmd] = dispatcher{}

func (m Model) dispatch(in protocol.Inbound) (Model, tea.Cmd) {
	cmd := protocol.Visit[tea.Cmd](in, dispatcher{&m})
	m.syncStatus()
	return m, cmd
}

func (d dispatcher) MessageStart(v protocol.MessageStart) tea.Cmd {
	m := d.m
	if m.stream.Start(v.Model) {
		m.log.Debug().Msg("message_start while streaming; previous reply finalized")
	}
	m.chat.ScrollToBottom()
	return m.chat.SetTyping(true)
}

func (d dispatcher) MessageChunk(v protocol.MessageChunk) tea.Cmd {
	m := d.m
	if !m.stream.Chunk(v.Content) {
		m.log.Debug().Int("bytes", len(v.Content)).Msg("message_chunk without message_start")
		return nil
	}
	m.chat.ScrollToBottom()
	return nil
}

func (d dispatcher) MessageComplete(v protocol.MessageComplete) tea.Cmd {
	m := d.m
	if !m.stream.Complete(v.Content) {
		m.log.Debug().Msg("message_complete without message_start")
	}
	m.chat.SetTyping(false)
	m.setAwaiting(false)
	m.chat.ScrollToBottom()
	return nil
}

func (d dispatcher) Error(v protocol.Error) tea.Cmd {
	m := d.m
	m.chat.SetTyping(false)
	m.notify(v.Message, model.ToastError)
	m.setAwaiting(false)
	m.stream.Abort()
	m.log.Warn().Str("message", v.Message).Msg("server error")
	return nil
}

func (d dispatcher) ConversationCreated(v protocol.ConversationCreated) tea.Cmd {
	m := d.m
	m.setConversation(v.ConversationID)
	_ = m.send(protocol.GetConversations{})
	return nil
}

func (d dispatcher) ConversationsList(v protocol.ConversationsList) tea.Cmd {
	m := d.m
	m.sidebar.SetItems(v.Conversations)
	// Re-mark the active entry and pick up a changed title.
	m.setConversation(m.convID)
	return nil
}

func (d dispatcher) ConversationHistory(v protocol.ConversationHistory) tea.Cmd {
	m := d.m
	// A reply still streaming belongs to the conversation being left.
	m.stream.Abort()
	m.chat.SetTyping(false)
	m.setAwaiting(false)
	m.chat.SetHistory(v.Messages)
	m.setConversation(v.ConversationID)
	m.chat.ScrollToBottom()
	return nil
}

func (d dispatcher) Status(v protocol.Status) tea.Cmd {
	d.m.notify(v.Message, model.ParseToastLevel(v.Level))
	return nil
}
