package app

import "github.com/t3chat/t3chat-tui/model"

// ConnState is the lifecycle of the chat socket.
type ConnState int

const (
	StateDisconnected   ConnState = iota // No socket; a reconnect may be scheduled
	StateConnecting                      // Dial in progress
	StateAuthenticating                  // Socket open, authenticate queued
	StateConnected                       // authenticate written; chat allowed
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

func (s ConnState) level() model.ConnLevel {
	switch s {
	case StateConnected:
		return model.ConnOnline
	case StateConnecting, StateAuthenticating:
		return model.ConnBusy
	default:
		return model.ConnOff
	}
}
