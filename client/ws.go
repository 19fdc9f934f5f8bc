package client

import (
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/t3chat/t3chat-tui/protocol"
)

var (
	// ErrNotConnected is returned by Send while no socket is open.
	ErrNotConnected = errors.New("not connected to chat server")
	// ErrSendQueueFull is returned by Send when the writer has fallen behind.
	ErrSendQueueFull = errors.New("send queue full")
)

const (
	sendQueueSize    = 64
	writeWait        = 10 * time.Second
	handshakeTimeout = 10 * time.Second
	maxFrameSize     = 32 << 20 // conversation histories can be large
)

type frame struct {
	kind string
	data []byte
}

// Conn owns the chat socket. ConnectCmd runs the whole lifetime of one
// connection inside a tea.Cmd; Send and Close may be called from the event
// loop at any time.
type Conn struct {
	url    string
	dialer *websocket.Dialer
	log    zerolog.Logger

	mu      sync.Mutex
	ws      *websocket.Conn
	out     chan frame
	closing bool
}

// New creates a Conn for the given socket URL (see EndpointURL).
func New(url string, log zerolog.Logger) *Conn {
	return &Conn{
		url: url,
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: handshakeTimeout,
		},
		log: log.With().Str("component", "conn").Logger(),
	}
}

// URL returns the socket URL.
func (c *Conn) URL() string { return c.url }

// Connected reports whether a socket is currently open.
func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws != nil
}

// ConnectCmd returns a tea.Cmd that dials the server and then reads frames
// until the socket closes. Each decoded envelope is delivered to s in arrival
// order. The Cmd's own result is always a DisconnectedEvent (or nil when a
// socket was already open).
func (c *Conn) ConnectCmd(s Sender) tea.Cmd {
	return func() tea.Msg {
		connID := uuid.NewString()
		log := c.log.With().Str("conn_id", connID).Logger()

		c.mu.Lock()
		if c.ws != nil {
			c.mu.Unlock()
			log.Debug().Msg("connect skipped: already connected")
			return nil
		}
		c.closing = false
		c.mu.Unlock()

		log.Info().Str("url", c.url).Msg("dialing")
		ws, _, err := c.dialer.Dial(c.url, nil)
		if err != nil {
			log.Warn().Err(err).Msg("dial failed")
			s.Send(TransportErrorEvent{Err: err})
			return DisconnectedEvent{Err: err}
		}
		ws.SetReadLimit(maxFrameSize)

		out := make(chan frame, sendQueueSize)
		done := make(chan struct{})

		c.mu.Lock()
		if c.closing {
			c.mu.Unlock()
			_ = ws.Close()
			return DisconnectedEvent{Intentional: true}
		}
		c.ws = ws
		c.out = out
		c.mu.Unlock()

		go c.writeLoop(ws, out, done, s, log)
		s.Send(OpenedEvent{ConnID: connID})
		log.Info().Msg("connected")

		err = c.readLoop(ws, s, log)
		close(done)

		c.mu.Lock()
		intentional := c.closing
		if c.ws == ws {
			c.ws = nil
			c.out = nil
		}
		c.mu.Unlock()
		_ = ws.Close()

		if intentional || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			log.Info().Bool("intentional", intentional).Msg("disconnected")
		} else {
			log.Warn().Err(err).Msg("connection lost")
			s.Send(TransportErrorEvent{Err: err})
		}
		return DisconnectedEvent{Err: err, Intentional: intentional}
	}
}

// Send queues one envelope on the single outbound channel. It never blocks.
func (c *Conn) Send(out protocol.Outbound) error {
	data, err := protocol.Encode(out)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ws == nil || c.out == nil {
		return ErrNotConnected
	}
	select {
	case c.out <- frame{kind: out.Type(), data: data}:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close shuts the socket down and marks the disconnect as intentional.
func (c *Conn) Close() {
	c.mu.Lock()
	c.closing = true
	ws := c.ws
	c.mu.Unlock()
	if ws == nil {
		return
	}
	_ = ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	_ = ws.Close()
}

func (c *Conn) readLoop(ws *websocket.Conn, s Sender, log zerolog.Logger) error {
	for {
		kind, data, err := ws.ReadMessage()
		if err != nil {
			return err
		}
		if kind != websocket.TextMessage {
			continue
		}
		in, err := protocol.Decode(data)
		if err != nil {
			if errors.Is(err, protocol.ErrUnknownType) {
				log.Debug().Err(err).Msg("ignoring envelope")
			} else {
				log.Warn().Err(err).Int("bytes", len(data)).Msg("dropping malformed frame")
			}
			continue
		}
		s.Send(in)
	}
}

func (c *Conn) writeLoop(ws *websocket.Conn, out <-chan frame, done <-chan struct{}, s Sender, log zerolog.Logger) {
	for {
		select {
		case <-done:
			return
		case f := <-out:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.TextMessage, f.data); err != nil {
				log.Warn().Err(err).Str("type", f.kind).Msg("write failed")
				// Unblocks the reader, which reports the disconnect.
				_ = ws.Close()
				return
			}
			log.Debug().Str("type", f.kind).Int("bytes", len(f.data)).Msg("sent")
			if f.kind == (protocol.Authenticate{}).Type() {
				s.Send(AuthSentEvent{})
			}
		}
	}
}
