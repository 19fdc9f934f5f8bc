package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/t3chat/t3chat-tui/client"
	"github.com/t3chat/t3chat-tui/config"
	"github.com/t3chat/t3chat-tui/model"
	"github.com/t3chat/t3chat-tui/msg"
	"github.com/t3chat/t3chat-tui/protocol"
	"github.com/t3chat/t3chat-tui/settings"
)

type fakeTransport struct {
	connects int
	sent     []protocol.Outbound
	closed   bool
	sendErr  error
}

func (f *fakeTransport) ConnectCmd(client.Sender) tea.Cmd {
	f.connects++
	return func() tea.Msg { return nil }
}

func (f *fakeTransport) Send(out protocol.Outbound) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, out)
	return nil
}

func (f *fakeTransport) Close() { f.closed = true }

func (f *fakeTransport) ofType(kind string) []protocol.Outbound {
	var out []protocol.Outbound
	for _, o := range f.sent {
		if o.Type() == kind {
			out = append(out, o)
		}
	}
	return out
}

type nopSender struct{}

func (nopSender) Send(tea.Msg) {}

var validCreds = settings.Credentials{OpenRouterKey: "sk-or-test", TavilyKey: "tvly-test"}

func testConfig() config.Config {
	return config.Config{
		ServerURL:    "http://localhost:8000",
		DefaultModel: "openai/gpt-4o-mini",
		Models:       append([]string(nil), config.DefaultModels...),
		Reconnect: config.Reconnect{
			Initial:     10 * time.Millisecond,
			Max:         100 * time.Millisecond,
			Multiplier:  2,
			MaxAttempts: 3,
		},
	}
}

func newTestModel(t *testing.T) (Model, *fakeTransport, *settings.MemoryStore) {
	t.Helper()
	ft := &fakeTransport{}
	store := settings.NewMemoryStore()
	m := New(Options{
		Transport: ft,
		Store:     store,
		Config:    testConfig(),
		Log:       zerolog.Nop(),
		Version:   "test",
		ExportDir: t.TempDir(),
		Clipboard: func(string) error { return nil },
	})
	m = step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, ft, store
}

func step(t *testing.T, m Model, in tea.Msg) Model {
	t.Helper()
	m, _ = stepCmd(t, m, in)
	return m
}

func stepCmd(t *testing.T, m Model, in tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(in)
	next, ok := updated.(Model)
	require.True(t, ok)
	return next, cmd
}

// connected drives a fresh model through startup and the handshake.
func connected(t *testing.T) (Model, *fakeTransport) {
	t.Helper()
	m, ft, _ := newTestModel(t)
	m = step(t, m, ProgramReady{Sender: nopSender{}})
	m = step(t, m, credentialsLoaded{Credentials: validCreds})
	m = step(t, m, client.OpenedEvent{ConnID: "c1"})
	m = step(t, m, client.AuthSentEvent{})
	require.Equal(t, StateConnected, m.state)
	ft.sent = nil
	return m, ft
}

// runCmd executes cmd and every command of a batch, collecting messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	out := cmd()
	if batch, ok := out.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, runCmd(c)...)
		}
		return msgs
	}
	if out == nil {
		return nil
	}
	return []tea.Msg{out}
}

func typeAndSubmit(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	return stepCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func assistantMessages(m Model) []model.ChatMessage {
	var out []model.ChatMessage
	for _, cm := range m.chat.Messages() {
		if cm.Role == model.RoleAssistant {
			out = append(out, cm)
		}
	}
	return out
}

func lastToast(t *testing.T, m Model) (string, model.ToastLevel) {
	t.Helper()
	text, level, ok := m.toasts.Last()
	require.True(t, ok, "expected a notice")
	return text, level
}

// -- Startup --

func TestStartup_WithKeyConnectsOnce(t *testing.T) {
	m, ft, _ := newTestModel(t)

	// Credentials may arrive before the program is running.
	m = step(t, m, credentialsLoaded{Credentials: validCreds})
	assert.Equal(t, 0, ft.connects)
	assert.False(t, m.settings.IsActive())

	m = step(t, m, ProgramReady{Sender: nopSender{}})
	assert.Equal(t, 1, ft.connects)
	assert.Equal(t, StateConnecting, m.state)

	m = step(t, m, ProgramReady{Sender: nopSender{}})
	m = step(t, m, tea.FocusMsg{})
	assert.Equal(t, 1, ft.connects)
}

func TestStartup_WithoutKeyOpensSettings(t *testing.T) {
	m, ft, _ := newTestModel(t)
	m = step(t, m, ProgramReady{Sender: nopSender{}})
	m = step(t, m, credentialsLoaded{Credentials: settings.Credentials{TavilyKey: "tvly"}})

	assert.Equal(t, 0, ft.connects)
	assert.True(t, m.settings.IsActive())
	text, level := lastToast(t, m)
	assert.Equal(t, "Please configure your API keys in settings to start chatting.", text)
	assert.Equal(t, model.ToastWarning, level)
}

func TestStartup_LoadsCredentialsFromStore(t *testing.T) {
	m, _, store := newTestModel(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, settings.KeyOpenRouter, "sk-or-1"))
	require.NoError(t, store.Set(ctx, settings.KeyCustomModel, "mistral/mixtral"))

	loaded := m.checkAPIKeys()()
	m = step(t, m, loaded)
	assert.Equal(t, "sk-or-1", m.creds.OpenRouterKey)
	assert.Contains(t, m.models, "mistral/mixtral")
	// Added to the options but not selected.
	assert.Equal(t, "openai/gpt-4o-mini", m.modelName)
}

// -- Connection --

func TestHandshake_AuthenticatesThenRequestsConversations(t *testing.T) {
	m, ft, _ := newTestModel(t)
	m = step(t, m, ProgramReady{Sender: nopSender{}})
	m = step(t, m, credentialsLoaded{Credentials: validCreds})

	m = step(t, m, client.OpenedEvent{ConnID: "c1"})
	assert.Equal(t, StateAuthenticating, m.state)
	require.Len(t, ft.sent, 1)
	auth, ok := ft.sent[0].(protocol.Authenticate)
	require.True(t, ok)
	require.NotNil(t, auth.APIKeys.OpenRouter)
	assert.Equal(t, "sk-or-test", *auth.APIKeys.OpenRouter)

	// Chat is not possible until authenticate is on the wire.
	m, _ = typeAndSubmit(t, m, "too early")
	assert.Empty(t, ft.ofType("send_message"))

	m = step(t, m, client.AuthSentEvent{})
	assert.Equal(t, StateConnected, m.state)
	assert.Len(t, ft.ofType("get_conversations"), 1)
}

func TestDisconnect_SchedulesSingleReconnect(t *testing.T) {
	m, ft := connected(t)
	m, cmd := stepCmd(t, m, client.DisconnectedEvent{Err: errors.New("EOF")})
	require.NotNil(t, cmd)
	assert.Equal(t, StateDisconnected, m.state)
	assert.Equal(t, 1, m.attempt)

	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)
	due, ok := msgs[0].(client.ReconnectDueEvent)
	require.True(t, ok)
	assert.Equal(t, 1, due.Attempt)

	m = step(t, m, due)
	assert.Equal(t, 2, ft.connects)
	assert.Equal(t, StateConnecting, m.state)

	// A duplicate timer is a no-op.
	m = step(t, m, due)
	assert.Equal(t, 2, ft.connects)

	// Success resets the attempt counter.
	m = step(t, m, client.OpenedEvent{ConnID: "c2"})
	m = step(t, m, client.AuthSentEvent{})
	assert.Equal(t, 0, m.attempt)
}

func TestDisconnect_IntentionalDoesNotReconnect(t *testing.T) {
	m, _ := connected(t)
	m, cmd := stepCmd(t, m, client.DisconnectedEvent{Intentional: true})
	assert.Nil(t, cmd)
	assert.Equal(t, StateDisconnected, m.state)
}

func TestDisconnect_GivesUpAfterMaxAttempts(t *testing.T) {
	m, ft := connected(t)
	for i := 1; i <= 3; i++ {
		var cmd tea.Cmd
		m, cmd = stepCmd(t, m, client.DisconnectedEvent{Err: errors.New("refused")})
		require.NotNil(t, cmd, "attempt %d", i)
		m = step(t, m, client.ReconnectDueEvent{Attempt: i})
	}
	assert.Equal(t, 4, ft.connects)

	m, cmd := stepCmd(t, m, client.DisconnectedEvent{Err: errors.New("refused")})
	assert.Nil(t, cmd)
	text, level := lastToast(t, m)
	assert.Contains(t, text, "Could not reconnect after 3 attempts")
	assert.Equal(t, model.ToastError, level)

	// /reconnect starts over.
	m, _ = typeAndSubmit(t, m, "/reconnect")
	assert.Equal(t, 5, ft.connects)
	assert.Equal(t, 0, m.attempt)
}

func TestDisconnect_AbortsStreamingReply(t *testing.T) {
	m, _ := connected(t)
	m, _ = typeAndSubmit(t, m, "hi")
	m = step(t, m, protocol.MessageStart{Model: "openai/gpt-4o-mini"})
	m = step(t, m, protocol.MessageChunk{Content: "par"})

	m = step(t, m, client.DisconnectedEvent{Err: errors.New("EOF")})
	assert.False(t, m.stream.Streaming())
	assert.Empty(t, assistantMessages(m))
	assert.False(t, m.awaiting)
	assert.False(t, m.chat.Typing())
}

func TestTransportError_ShowsGenericNotice(t *testing.T) {
	m, _ := connected(t)
	m = step(t, m, client.TransportErrorEvent{Err: errors.New("dial tcp: refused")})
	text, level := lastToast(t, m)
	assert.Equal(t, "Connection error occurred", text)
	assert.Equal(t, model.ToastError, level)
}

func TestQuit_ClosesTransport(t *testing.T) {
	m, ft := connected(t)
	m, cmd := stepCmd(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.True(t, ft.closed)
	assert.True(t, m.closing)
}

// -- Streaming --

func TestStreaming_ChunksThenComplete(t *testing.T) {
	m, ft := connected(t)
	m, _ = typeAndSubmit(t, m, "hello")

	sends := ft.ofType("send_message")
	require.Len(t, sends, 1)
	sm := sends[0].(protocol.SendMessage)
	assert.Equal(t, "hello", sm.Content)
	assert.Equal(t, "openai/gpt-4o-mini", sm.Model)
	assert.Nil(t, sm.ConversationID)
	assert.True(t, m.awaiting)
	assert.Empty(t, m.input.Value())

	m = step(t, m, protocol.MessageStart{Model: "openai/gpt-4o-mini"})
	assert.True(t, m.chat.Typing())
	for _, c := range []string{"Hel", "lo, ", "**wor", "ld**"} {
		m = step(t, m, protocol.MessageChunk{Content: c})
	}
	replies := assistantMessages(m)
	require.Len(t, replies, 1)
	assert.Equal(t, "Hello, **world**", replies[0].Content)
	assert.True(t, replies[0].Streaming)

	m = step(t, m, protocol.MessageComplete{Content: "Hello, **world**!"})
	replies = assistantMessages(m)
	require.Len(t, replies, 1)
	assert.Equal(t, "Hello, **world**!", replies[0].Content)
	assert.False(t, replies[0].Streaming)
	assert.Equal(t, "openai/gpt-4o-mini", replies[0].Model)
	assert.False(t, m.stream.Streaming())
	assert.False(t, m.chat.Typing())
	assert.False(t, m.awaiting)
}

func TestStreaming_ErrorRemovesPartialReply(t *testing.T) {
	m, _ := connected(t)
	m, _ = typeAndSubmit(t, m, "hello")
	m = step(t, m, protocol.MessageStart{Model: "m"})
	m = step(t, m, protocol.MessageChunk{Content: "partial"})

	m = step(t, m, protocol.Error{Message: "Invalid API key"})
	assert.Empty(t, assistantMessages(m))
	assert.False(t, m.stream.Streaming())
	assert.False(t, m.awaiting)
	text, level := lastToast(t, m)
	assert.Equal(t, "Invalid API key", text)
	assert.Equal(t, model.ToastError, level)
}

func TestStreaming_StartWhileStreamingFinalizesPrevious(t *testing.T) {
	m, _ := connected(t)
	m = step(t, m, protocol.MessageStart{Model: "a"})
	m = step(t, m, protocol.MessageChunk{Content: "first"})
	m = step(t, m, protocol.MessageStart{Model: "b"})
	m = step(t, m, protocol.MessageChunk{Content: "second"})
	m = step(t, m, protocol.MessageComplete{Content: "second!"})

	replies := assistantMessages(m)
	require.Len(t, replies, 2)
	assert.Equal(t, "first", replies[0].Content)
	assert.False(t, replies[0].Streaming)
	assert.Equal(t, "second!", replies[1].Content)
	assert.False(t, replies[1].Streaming)
}

func TestStreaming_ChunkWhileIdleIgnored(t *testing.T) {
	m, _ := connected(t)
	m = step(t, m, protocol.MessageChunk{Content: "stray"})
	m = step(t, m, protocol.MessageComplete{Content: "stray"})
	assert.Empty(t, assistantMessages(m))
}

func TestSend_DisabledUntilReplyEnds(t *testing.T) {
	m, ft := connected(t)
	m, _ = typeAndSubmit(t, m, "one")
	m, _ = typeAndSubmit(t, m, "two")
	assert.Len(t, ft.ofType("send_message"), 1)
	// The draft survives.
	assert.Equal(t, "two", m.input.Value())

	m = step(t, m, protocol.MessageStart{Model: "m"})
	m = step(t, m, protocol.MessageComplete{Content: "ok"})
	m, _ = typeAndSubmit(t, m, "two")
	assert.Len(t, ft.ofType("send_message"), 2)

	m = step(t, m, protocol.Error{Message: "boom"})
	assert.False(t, m.awaiting)
	_, _ = typeAndSubmit(t, m, "three")
	assert.Len(t, ft.ofType("send_message"), 3)
}

func TestSend_NotConnectedKeepsDraft(t *testing.T) {
	m, ft, _ := newTestModel(t)
	m, _ = typeAndSubmit(t, m, "hello")
	assert.Empty(t, ft.sent)
	assert.Equal(t, "hello", m.input.Value())
	text, _ := lastToast(t, m)
	assert.Contains(t, text, "Not connected")
}

func TestSend_UsesActiveConversation(t *testing.T) {
	m, ft := connected(t)
	m = step(t, m, protocol.ConversationCreated{ConversationID: "conv-1"})
	_, _ = typeAndSubmit(t, m, "hi")
	sm := ft.ofType("send_message")[0].(protocol.SendMessage)
	require.NotNil(t, sm.ConversationID)
	assert.Equal(t, "conv-1", *sm.ConversationID)
}

// -- Conversations --

func TestConversations_ListCreatedHistory(t *testing.T) {
	m, ft := connected(t)
	m = step(t, m, protocol.ConversationsList{Conversations: []protocol.Conversation{
		{ID: "a", Title: "First", Preview: "hello"},
		{ID: "b", Title: "Second"},
	}})
	assert.Len(t, m.sidebar.Items(), 2)
	assert.Empty(t, m.sidebar.Active())
	assert.Contains(t, m.sidebar.View(), model.EmptyPreview)

	m = step(t, m, protocol.ConversationCreated{ConversationID: "b"})
	assert.Equal(t, "b", m.convID)
	assert.Equal(t, "b", m.sidebar.Active())
	assert.Len(t, ft.ofType("get_conversations"), 1)

	m = step(t, m, protocol.ConversationHistory{ConversationID: "a", Messages: []protocol.HistoryMessage{
		{Role: "user", Content: "q", Timestamp: "2024-01-01T10:00:00Z"},
		{Role: "assistant", Content: "a", Timestamp: "2024-01-01T10:00:05Z", Model: "m"},
	}})
	assert.Equal(t, "a", m.convID)
	assert.Equal(t, "a", m.sidebar.Active())
	msgs := m.chat.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, "a", msgs[1].Content)

	// The list is replaced wholesale.
	m = step(t, m, protocol.ConversationsList{Conversations: []protocol.Conversation{{ID: "c", Title: "Third"}}})
	require.Len(t, m.sidebar.Items(), 1)
	assert.Equal(t, "c", m.sidebar.Items()[0].ID)
}

func TestConversations_HistoryAbortsStream(t *testing.T) {
	m, _ := connected(t)
	m = step(t, m, protocol.MessageStart{Model: "m"})
	m = step(t, m, protocol.MessageChunk{Content: "x"})
	m = step(t, m, protocol.ConversationHistory{ConversationID: "a"})
	assert.False(t, m.stream.Streaming())
	assert.Empty(t, m.chat.Messages())
}

func TestConversations_SelectRequestsHistory(t *testing.T) {
	m, ft := connected(t)
	m = step(t, m, model.ConversationSelected{ID: "a"})
	reqs := ft.ofType("get_conversation_history")
	require.Len(t, reqs, 1)
	assert.Equal(t, "a", reqs[0].(protocol.GetConversationHistory).ConversationID)

	_, _ = typeAndSubmit(t, m, "/open b")
	assert.Len(t, ft.ofType("get_conversation_history"), 2)
}

func TestNewConversation_ClearsView(t *testing.T) {
	m, ft := connected(t)
	m = step(t, m, protocol.ConversationCreated{ConversationID: "a"})
	m.chat.AddUserMessage("old")

	m = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.Len(t, ft.ofType("new_conversation"), 1)
	assert.Empty(t, m.chat.Messages())
	assert.Empty(t, m.convID)
	assert.Empty(t, m.sidebar.Active())
}

func TestStatus_LevelDefaultsToInfo(t *testing.T) {
	m, _ := connected(t)
	m = step(t, m, protocol.Status{Message: "Searching the web"})
	text, level := lastToast(t, m)
	assert.Equal(t, "Searching the web", text)
	assert.Equal(t, model.ToastInfo, level)

	m = step(t, m, protocol.Status{Message: "Rate limited", Level: "warning"})
	_, level = lastToast(t, m)
	assert.Equal(t, model.ToastWarning, level)
}

// -- Settings --

func TestSettingsSaved_CustomModelAddedOnceAndSelected(t *testing.T) {
	m, ft := connected(t)
	before := len(m.models)

	saved := msg.SettingsSaved{
		Credentials:    settings.Credentials{OpenRouterKey: "sk-or-new", CustomModel: "mistral/mixtral-8x7b"},
		NewCustomModel: "mistral/mixtral-8x7b",
	}
	m = step(t, m, saved)
	assert.Len(t, m.models, before+1)
	assert.Equal(t, "mistral/mixtral-8x7b", m.modelName)

	m = step(t, m, saved)
	assert.Len(t, m.models, before+1)

	updates := ft.ofType("update_api_keys")
	require.Len(t, updates, 2)
	assert.Equal(t, "sk-or-new", *updates[0].(protocol.UpdateAPIKeys).APIKeys.OpenRouter)
	assert.Equal(t, 1, ft.connects)
	text, level := lastToast(t, m)
	assert.Equal(t, "Settings saved successfully!", text)
	assert.Equal(t, model.ToastSuccess, level)
}

func TestSettingsSave_PersistsAndConnects(t *testing.T) {
	m, ft, store := newTestModel(t)
	m = step(t, m, ProgramReady{Sender: nopSender{}})
	m = step(t, m, credentialsLoaded{})
	require.True(t, m.settings.IsActive())

	m, cmd := stepCmd(t, m, model.SettingsSubmitted{Form: settings.Form{OpenRouterKey: "  sk-or-typed  "}})
	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)
	m = step(t, m, msgs[0])

	v, err := store.Get(context.Background(), settings.KeyOpenRouter)
	require.NoError(t, err)
	assert.Equal(t, "sk-or-typed", v)
	assert.False(t, m.settings.IsActive())
	assert.Equal(t, 1, ft.connects)
	assert.Empty(t, ft.ofType("update_api_keys"))
}

func TestSettingsSave_InvalidInputKeepsDialogOpen(t *testing.T) {
	m, ft, _ := newTestModel(t)
	m = step(t, m, ProgramReady{Sender: nopSender{}})
	m = step(t, m, credentialsLoaded{})

	m, cmd := stepCmd(t, m, model.SettingsSubmitted{Form: settings.Form{OpenRouterKey: "sk or"}})
	m = step(t, m, runCmd(cmd)[0])
	assert.True(t, m.settings.IsActive())
	assert.Equal(t, "OpenRouter API key must not contain spaces", m.settings.Error())
	assert.Equal(t, 0, ft.connects)
}

// -- Upload --

func TestUpload_SizeLimit(t *testing.T) {
	m, ft := connected(t)
	dir := t.TempDir()
	exact := filepath.Join(dir, "exact.bin")
	over := filepath.Join(dir, "over.bin")
	for path, size := range map[string]int64{exact: client.MaxUploadBytes, over: client.MaxUploadBytes + 1} {
		f, err := os.Create(path)
		require.NoError(t, err)
		require.NoError(t, f.Truncate(size))
		require.NoError(t, f.Close())
	}

	m, cmd := typeAndSubmit(t, m, "/upload "+over+" "+exact)
	msgs := runCmd(cmd)
	require.Len(t, msgs, 2)
	for _, in := range msgs {
		m = step(t, m, in)
	}

	uploads := ft.ofType("file_upload")
	require.Len(t, uploads, 1)
	assert.Equal(t, "exact.bin", uploads[0].(protocol.FileUpload).Filename)

	var found bool
	for _, text := range m.toasts.Messages() {
		if text == "File over.bin is too large (max 10MB)" {
			found = true
		}
	}
	assert.True(t, found, "oversized file notice")
}

func TestUpload_RequiresConnection(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, cmd := typeAndSubmit(t, m, "/upload "+filepath.Join(t.TempDir(), "x"))
	assert.Nil(t, cmd)
	text, _ := lastToast(t, m)
	assert.Contains(t, text, "Not connected")
}

// -- Commands --

func TestModelCommand(t *testing.T) {
	m, _ := connected(t)
	m, _ = typeAndSubmit(t, m, "/model anthropic/claude-3.5-sonnet")
	assert.Equal(t, "anthropic/claude-3.5-sonnet", m.modelName)
	text, _ := lastToast(t, m)
	assert.Equal(t, "Model changed to anthropic/claude-3.5-sonnet", text)

	m, _ = typeAndSubmit(t, m, "/model nope/nope")
	assert.Equal(t, "anthropic/claude-3.5-sonnet", m.modelName)

	m, _ = typeAndSubmit(t, m, "/model")
	assert.True(t, m.picker.IsActive())
	m = step(t, m, model.PickerChoice{Name: "openai/gpt-4o-mini"})
	assert.Equal(t, "openai/gpt-4o-mini", m.modelName)
}

func TestExportAndCopy(t *testing.T) {
	m, _ := connected(t)
	var copied string
	m.opts.Clipboard = func(s string) error { copied = s; return nil }

	m, cmd := typeAndSubmit(t, m, "/copy")
	assert.Nil(t, cmd)
	text, _ := lastToast(t, m)
	assert.Equal(t, "Nothing to copy yet", text)

	m, _ = typeAndSubmit(t, m, "question")
	m = step(t, m, protocol.MessageStart{Model: "m"})
	m = step(t, m, protocol.MessageComplete{Content: "answer <b>"})

	m, cmd = typeAndSubmit(t, m, "/copy")
	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)
	assert.Equal(t, "answer <b>", copied)
	m = step(t, m, msgs[0])

	path := filepath.Join(t.TempDir(), "out.html")
	_, cmd = typeAndSubmit(t, m, "/export "+path)
	msgs = runCmd(cmd)
	require.Len(t, msgs, 1)
	res := msgs[0].(msg.ExportResult)
	require.NoError(t, res.Err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "answer &lt;b&gt;")
	assert.Contains(t, string(data), "question")
}

func TestThemeCommand(t *testing.T) {
	m, _ := connected(t)
	var saved string
	m.opts.SaveTheme = func(name string) error { saved = name; return nil }

	m, cmd := typeAndSubmit(t, m, "/theme light")
	runCmd(cmd)
	assert.Equal(t, "light", saved)
	assert.Equal(t, "light", m.cfg.Theme)

	m, _ = typeAndSubmit(t, m, "/theme neon")
	_, level := lastToast(t, m)
	assert.Equal(t, model.ToastWarning, level)
	assert.Equal(t, "light", m.cfg.Theme)

	_, _ = typeAndSubmit(t, m, "/theme dark")
}

func TestUnknownCommand(t *testing.T) {
	m, ft := connected(t)
	m, _ = typeAndSubmit(t, m, "/frobnicate")
	text, _ := lastToast(t, m)
	assert.Contains(t, text, "Unknown command /frobnicate")
	assert.Empty(t, ft.sent)
}

func TestConfigReload_UpdatesPolicy(t *testing.T) {
	m, _ := connected(t)
	cfg := testConfig()
	cfg.Reconnect.MaxAttempts = 7
	cfg.Models = append(cfg.Models, "x-ai/grok")
	m = step(t, m, msg.ConfigReloaded{Config: cfg})
	assert.Equal(t, 7, m.backoff.MaxAttempts)
	assert.Contains(t, m.models, "x-ai/grok")

	m = step(t, m, msg.ConfigReloaded{Err: config.ErrInvalid})
	assert.Equal(t, 7, m.backoff.MaxAttempts)
}

func TestView_ShowsLayout(t *testing.T) {
	m, _ := connected(t)
	m = step(t, m, protocol.ConversationsList{Conversations: []protocol.Conversation{{ID: "a", Title: "Go generics"}}})
	view := m.View()
	assert.Contains(t, view, "t3chat")
	assert.Contains(t, view, "Go generics")
	assert.Contains(t, view, "connected")
	assert.Contains(t, view, "openai/gpt-4o-mini")
}
