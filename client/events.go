package client

import tea "github.com/charmbracelet/bubbletea"

// Sender delivers messages into the Bubble Tea event loop. *tea.Program
// satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// -- Connection events (dispatched by Conn; the app converts them to state) --

// OpenedEvent is dispatched once the socket handshake succeeds.
type OpenedEvent struct {
	ConnID string
}

// AuthSentEvent is dispatched after an authenticate envelope has been written.
type AuthSentEvent struct{}

// TransportErrorEvent reports a dial, read or write failure. It is always
// followed by a DisconnectedEvent; it never triggers a retry by itself.
type TransportErrorEvent struct {
	Err error
}

// DisconnectedEvent is returned when the socket is gone. Intentional is true
// after Close, in which case no reconnect should be scheduled.
type DisconnectedEvent struct {
	Err         error
	Intentional bool
}

// ReconnectDueEvent fires when a scheduled reconnect timer elapses.
type ReconnectDueEvent struct {
	Attempt int
}
