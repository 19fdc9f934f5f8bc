package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/t3chat/t3chat-tui/client"
	"github.com/t3chat/t3chat-tui/config"
	"github.com/t3chat/t3chat-tui/format"
	"github.com/t3chat/t3chat-tui/markdown"
	"github.com/t3chat/t3chat-tui/model"
	"github.com/t3chat/t3chat-tui/msg"
	"github.com/t3chat/t3chat-tui/protocol"
	"github.com/t3chat/t3chat-tui/settings"
	"github.com/t3chat/t3chat-tui/stream"
	"github.com/t3chat/t3chat-tui/style"
	"github.com/t3chat/t3chat-tui/tokens"
)

// Transport is the chat connection as seen by the UI. *client.Conn
// implements it.
type Transport interface {
	ConnectCmd(s client.Sender) tea.Cmd
	Send(out protocol.Outbound) error
	Close()
}

// Options wires the app to its collaborators.
type Options struct {
	Transport Transport
	Store     settings.Store
	Config    config.Config
	Version   string
	Log       zerolog.Logger

	// SaveTheme persists a theme picked with /theme. Nil keeps it in memory.
	SaveTheme func(theme string) error
	// Clipboard writes text for /copy. Nil uses the system clipboard.
	Clipboard func(text string) error
	// ExportDir is where /export writes when no path is given.
	ExportDir string
	// Now is the clock; nil uses time.Now.
	Now func() time.Time
}

// ProgramReady hands the running program to the app so background
// goroutines can deliver messages. Until it arrives connecting is deferred.
type ProgramReady struct{ Sender client.Sender }

type credentialsLoaded struct {
	Credentials settings.Credentials
	Err         error
}

const (
	sidebarWidth    = 30
	sidebarMinWidth = 90 // terminal width below which the sidebar hides
)

// Model is the root Bubble Tea model. The chat view and the streaming state
// are shared by pointer so the stream handle survives value copies.
type Model struct {
	opts Options
	log  zerolog.Logger
	keys KeyMap

	header   model.HeaderModel
	chat     *model.ChatModel
	stream   *stream.State
	sidebar  model.ConversationsModel
	input    model.InputModel
	status   model.StatusModel
	toasts   model.ToastsModel
	picker   model.PickerModel
	palette  model.PaletteModel
	settings model.SettingsModel

	conn           Transport
	sender         client.Sender
	pendingConnect bool
	state          ConnState
	connID         string
	backoff        client.Backoff
	attempt        int // reconnect attempts since the last authentication
	timerAttempt   int // attempt the armed reconnect timer belongs to; 0 = none
	closing        bool

	cfg       config.Config
	creds     settings.Credentials
	models    []string
	modelName string
	convID    string
	awaiting  bool // a send is outstanding; cleared by complete or error
	counter   tokens.Counter

	width  int
	height int
}

// New builds the root model. Nothing touches the network until Init's
// credential check finds an API key.
func New(opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	if opts.Store == nil {
		opts.Store = settings.NewMemoryStore()
	}
	cfg := opts.Config

	chat := model.NewChat(80, 20)
	m := Model{
		opts:      opts,
		log:       opts.Log,
		keys:      DefaultKeyMap(),
		header:    model.NewHeader(opts.Version, cfg.ServerURL),
		chat:      &chat,
		sidebar:   model.NewConversations(),
		input:     model.NewInput(),
		status:    model.NewStatus(),
		toasts:    model.NewToasts(),
		picker:    model.NewPicker(),
		palette:   model.NewPalette(),
		settings:  model.NewSettings(),
		conn:      opts.Transport,
		backoff:   cfg.Reconnect.Backoff(),
		cfg:       cfg,
		models:    dedupe(cfg.Models),
		modelName: cfg.DefaultModel,
		counter:   tokens.Estimate{},
		width:     80,
		height:    24,
	}
	if m.modelName == "" && len(m.models) > 0 {
		m.modelName = m.models[0]
	}
	m.stream = stream.New(m.chat)
	m.input.SetCommands(commandNames())
	m.input.Focus()
	m.status.SetModel(m.modelName)
	m.applyTheme(cfg.Theme)
	m.syncStatus()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.checkAPIKeys(),
		tokens.LoadCmd(m.cfg.Tokenizer),
		m.input.Init(),
		m.tickCmd(),
		tea.WindowSize(),
	)
}

// Update is the single place state changes. Layout is recomputed after
// every message because notices and the composer change height.
func (m Model) Update(raw tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(raw)
	m.layout()
	return m, cmd
}

func (m Model) update(raw tea.Msg) (Model, tea.Cmd) {
	switch v := raw.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = v.Width, v.Height
		m.header.SetWidth(v.Width)
		m.status.SetWidth(v.Width)
		m.input.SetWidth(v.Width)
		m.picker.SetWidth(min(v.Width, 72))
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(v)
	case tea.MouseMsg:
		return m.forwardChat(v)
	case tea.FocusMsg:
		// Terminal focus regained: make sure we are connected.
		if m.state == StateDisconnected && m.creds.Complete() && !m.closing {
			m.attempt = 0
			cmd := m.connect()
			return m, cmd
		}
		return m, nil
	case tea.BlurMsg:
		return m, nil

	case ProgramReady:
		m.sender = v.Sender
		if m.pendingConnect {
			m.pendingConnect = false
			cmd := m.connect()
			return m, cmd
		}
		return m, nil
	case credentialsLoaded:
		return m.handleCredentials(v)
	case tokens.ReadyMsg:
		m.counter = v.Counter
		if v.Err != nil {
			m.log.Warn().Err(v.Err).Msg("tokenizer unavailable, estimating")
		}
		m.syncStatus()
		return m, nil
	case msg.TickMsg:
		m.toasts.Tick()
		cmd := m.tickCmd()
		return m, cmd

	// Connection lifecycle.
	case client.OpenedEvent:
		return m.handleOpened(v)
	case client.AuthSentEvent:
		return m.handleAuthSent()
	case client.TransportErrorEvent:
		m.log.Warn().Err(v.Err).Str("conn_id", m.connID).Msg("transport error")
		m.notify("Connection error occurred", model.ToastError)
		return m, nil
	case client.DisconnectedEvent:
		return m.handleDisconnected(v)
	case client.ReconnectDueEvent:
		return m.handleReconnectDue(v)

	// Server envelopes.
	case protocol.Inbound:
		return m.dispatch(v)

	// Sub-model results.
	case model.ConversationSelected:
		m.sidebar.Blur()
		m.openConversation(v.ID)
		cmd := m.input.Focus()
		return m, cmd
	case model.PickerChoice:
		m.picker.Clear()
		m.selectModel(v.Name)
		cmd := m.input.Focus()
		return m, cmd
	case model.PickerCancel, model.PaletteDismissMsg:
		m.picker.Clear()
		cmd := m.input.Focus()
		return m, cmd
	case model.PaletteExecuteMsg:
		return m.runCommand(v.Command)
	case model.SettingsSubmitted:
		return m, m.saveSettings(v.Form)
	case model.SettingsCancelled:
		cmd := m.input.Focus()
		return m, cmd

	case msg.SettingsSaved:
		return m.handleSettingsSaved(v)
	case msg.UploadReady:
		return m.handleUploadReady(v)
	case msg.UploadFailed:
		m.notify(v.Err.Error(), model.ToastError)
		return m, nil
	case msg.ExportResult:
		if v.Err != nil {
			m.notify("Export failed: "+v.Err.Error(), model.ToastError)
		} else {
			m.notify("Exported to "+v.Path, model.ToastSuccess)
		}
		return m, nil
	case msg.CopyResult:
		if v.Err != nil {
			m.notify("Copy failed: "+v.Err.Error(), model.ToastError)
		} else {
			m.notify(fmt.Sprintf("Copied %d characters", v.Chars), model.ToastSuccess)
		}
		return m, nil
	case msg.ConfigReloaded:
		return m.handleConfigReloaded(v)
	case msg.ThemeSaved:
		if v.Err != nil {
			m.notify("Theme applied but not saved: "+v.Err.Error(), model.ToastWarning)
		}
		return m, nil
	}

	// Spinner ticks, cursor blinks and the like.
	var cmds []tea.Cmd
	updated, cmd := m.chat.Update(raw)
	if c, ok := updated.(model.ChatModel); ok {
		*m.chat = c
	}
	cmds = append(cmds, cmd)
	if m.settings.IsActive() {
		m.settings, cmd = m.settings.Update(raw)
		cmds = append(cmds, cmd)
	} else if m.palette.IsActive() {
		m.palette, cmd = m.palette.Update(raw)
		cmds = append(cmds, cmd)
	} else {
		cmds = append(cmds, m.updateInput(raw))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	switch {
	case m.settings.IsActive():
		return m.settings.View()
	case m.palette.IsActive():
		return m.palette.View()
	case m.picker.IsActive():
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.picker.View())
	}

	body := m.chat.View()
	if m.showSidebar() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), " ", body)
	}
	sections := []string{m.header.View(), body}
	if m.toasts.HasToasts() {
		sections = append(sections, m.toasts.View(m.width))
	}
	sections = append(sections, m.status.View(), m.input.View())
	return strings.Join(sections, "\n")
}

// -- Keys --

func (m Model) handleKey(k tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.keys.Quit):
		if !m.settings.IsActive() && !m.palette.IsActive() && m.input.Value() != "" {
			m.input.Reset()
			return m, nil
		}
		return m.quit()
	case key.Matches(k, m.keys.QuitEOF) && m.input.Value() == "" && !m.settings.IsActive():
		return m.quit()
	}

	if m.settings.IsActive() {
		var cmd tea.Cmd
		m.settings, cmd = m.settings.Update(k)
		return m, cmd
	}
	if m.palette.IsActive() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(k)
		return m, cmd
	}
	if m.picker.IsActive() {
		updated, cmd := m.picker.Update(k)
		if p, ok := updated.(model.PickerModel); ok {
			m.picker = p
		}
		return m, cmd
	}
	if m.sidebar.Focused() {
		if key.Matches(k, m.keys.Escape) || key.Matches(k, m.keys.FocusSidebar) {
			m.sidebar.Blur()
			cmd := m.input.Focus()
			return m, cmd
		}
		updated, cmd := m.sidebar.Update(k)
		if s, ok := updated.(model.ConversationsModel); ok {
			m.sidebar = s
		}
		return m, cmd
	}

	switch {
	case key.Matches(k, m.keys.NewChat):
		return m.newConversation()
	case key.Matches(k, m.keys.Settings):
		return m.openSettings()
	case key.Matches(k, m.keys.ModelPicker):
		return m.openPicker()
	case key.Matches(k, m.keys.Palette):
		m.input.Blur()
		cmd := m.palette.Open(paletteItems(), m.width, m.height)
		return m, cmd
	case key.Matches(k, m.keys.FocusSidebar):
		m.sidebar.Focus()
		m.input.Blur()
		return m, nil
	case key.Matches(k, m.keys.Help):
		m.chat.AddSystemMessage(helpText())
		return m, nil
	case key.Matches(k, m.keys.Escape):
		m.input.Reset()
		return m, nil
	case key.Matches(k, m.keys.PageUp), key.Matches(k, m.keys.PageDown):
		return m.forwardChat(k)
	case key.Matches(k, m.keys.ScrollTop):
		m.chat.ScrollToTop()
		return m, nil
	case key.Matches(k, m.keys.ScrollBottom):
		m.chat.ScrollToBottom()
		return m, nil
	case key.Matches(k, m.keys.Submit):
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		if strings.HasPrefix(text, "/") {
			m.input.Submit(text)
			return m.runCommand(text)
		}
		return m.sendMessage(text)
	}
	cmd := m.updateInput(k)
	return m, cmd
}

func (m *Model) updateInput(raw tea.Msg) tea.Cmd {
	updated, cmd := m.input.Update(raw)
	if in, ok := updated.(model.InputModel); ok {
		m.input = in
	}
	return cmd
}

func (m Model) forwardChat(raw tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.chat.Update(raw)
	if c, ok := updated.(model.ChatModel); ok {
		*m.chat = c
	}
	return m, cmd
}

func (m Model) quit() (Model, tea.Cmd) {
	m.closing = true
	if m.conn != nil {
		m.conn.Close()
	}
	return m, tea.Quit
}

// -- Chat --

// sendMessage queues a user message. Sending is possible only while
// connected and no reply is outstanding; otherwise the draft stays in the
// composer.
func (m Model) sendMessage(text string) (Model, tea.Cmd) {
	switch {
	case m.state != StateConnected:
		m.notify("Not connected to the chat server", model.ToastWarning)
		return m, nil
	case m.awaiting:
		m.notify("Wait for the current reply to finish", model.ToastInfo)
		return m, nil
	}
	err := m.conn.Send(protocol.SendMessage{
		Content:        text,
		Model:          m.modelName,
		ConversationID: protocol.Optional(m.convID),
	})
	if err != nil {
		m.log.Warn().Err(err).Msg("send_message")
		m.notify("Message not sent: "+err.Error(), model.ToastError)
		return m, nil
	}
	m.input.Submit(text)
	m.chat.AddUserMessage(text)
	m.setAwaiting(true)
	return m, nil
}

func (m *Model) setAwaiting(on bool) {
	m.awaiting = on
	if on {
		m.input.SetDisabled("Waiting for the reply…")
	} else {
		m.input.SetDisabled("")
	}
}

func (m Model) newConversation() (Model, tea.Cmd) {
	if err := m.send(protocol.NewConversation{}); err != nil {
		return m, nil
	}
	m.stream.Abort()
	m.chat.SetTyping(false)
	m.setAwaiting(false)
	m.chat.Clear()
	m.setConversation("")
	m.syncStatus()
	return m, nil
}

// openConversation requests a conversation's history; the view is replaced
// when it arrives.
func (m *Model) openConversation(id string) {
	if id == "" {
		return
	}
	_ = m.send(protocol.GetConversationHistory{ConversationID: id})
}

// send queues out, turning failures into a notice.
func (m *Model) send(out protocol.Outbound) error {
	if m.conn == nil {
		return client.ErrNotConnected
	}
	err := m.conn.Send(out)
	if err != nil {
		m.log.Warn().Err(err).Str("type", out.Type()).Msg("send failed")
		m.notify("Not connected to the chat server", model.ToastWarning)
	}
	return err
}

func (m *Model) setConversation(id string) {
	m.convID = id
	m.sidebar.SetActive(id)
	title := ""
	for _, c := range m.sidebar.Items() {
		if c.ID == id {
			title = format.Sanitize(c.Title)
		}
	}
	m.header.SetTitle(title)
	m.status.SetConversation(id)
}

// -- Models & themes --

func (m *Model) selectModel(name string) {
	if name == "" || name == m.modelName {
		return
	}
	m.modelName = name
	m.status.SetModel(name)
	m.notify("Model changed to "+name, model.ToastInfo)
}

// addModel appends name to the options unless already listed.
func (m *Model) addModel(name string) {
	if name == "" {
		return
	}
	for _, existing := range m.models {
		if existing == name {
			return
		}
	}
	m.models = append(m.models, name)
}

func (m Model) openPicker() (Model, tea.Cmd) {
	m.picker.SetItems(model.ModelItems(m.models, m.creds.CustomModel, m.modelName))
	m.input.Blur()
	return m, nil
}

func (m *Model) applyTheme(name string) bool {
	if !style.SetTheme(name) {
		return false
	}
	markdown.SetStyle(style.Current().Glamour)
	m.chat.Restyle()
	return true
}

func (m Model) handleConfigReloaded(v msg.ConfigReloaded) (Model, tea.Cmd) {
	if v.Err != nil {
		m.log.Warn().Err(v.Err).Msg("config reload rejected")
		m.notify("Config not reloaded: "+v.Err.Error(), model.ToastWarning)
		return m, nil
	}
	cfg := v.Config
	if cfg.Theme != m.cfg.Theme {
		m.applyTheme(cfg.Theme)
	}
	m.backoff = cfg.Reconnect.Backoff()
	for _, name := range cfg.Models {
		m.addModel(name)
	}
	m.cfg = cfg
	m.log.Info().Msg("config reloaded")
	m.notify("Configuration reloaded", model.ToastInfo)
	return m, nil
}

// -- Layout --

func (m Model) showSidebar() bool {
	return m.width >= sidebarMinWidth || m.sidebar.Focused()
}

func (m *Model) layout() {
	chatW := m.width
	if m.showSidebar() {
		chatW = m.width - sidebarWidth - 2 // border and gap
	}
	reserved := 1 + 1 + m.input.Height() // header, status, composer
	if m.toasts.HasToasts() {
		reserved += len(m.toasts.Messages())
	}
	chatH := m.height - reserved
	if chatH < 3 {
		chatH = 3
	}
	m.chat.SetSize(chatW, chatH)
	m.sidebar.SetSize(sidebarWidth, chatH)
}

// -- Notices & status --

func (m *Model) notify(text string, level model.ToastLevel) {
	m.toasts.Add(text, level)
}

// syncStatus copies connection and stream state into the status bar.
func (m *Model) syncStatus() {
	label := m.state.String()
	if m.state == StateDisconnected && m.attempt > 0 && !m.backoff.Exhausted(m.attempt) {
		label = fmt.Sprintf("reconnecting (attempt %d)", m.attempt)
	}
	m.status.SetConnection(label, m.state.level())
	if m.stream.Streaming() {
		text := m.stream.Text()
		m.status.SetStreaming(true, m.counter.Count(text), m.counter.Exact())
	} else {
		m.status.SetStreaming(false, 0, false)
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return msg.TickMsg{} })
}

// -- Settings --

func (m Model) checkAPIKeys() tea.Cmd {
	store := m.opts.Store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		c, err := settings.Load(ctx, store)
		return credentialsLoaded{Credentials: c, Err: err}
	}
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
