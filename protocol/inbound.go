// Package protocol defines the JSON envelopes exchanged with the chat backend.
// Every envelope carries a "type" discriminator; inbound envelopes decode into
// the sealed Inbound sum type and are routed with Visit.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrUnknownType is returned by Decode for a well-formed envelope whose type
// this client does not handle.
var ErrUnknownType = errors.New("unknown envelope type")

// Inbound is implemented by every envelope the server may send.
type Inbound interface {
	inbound()
}

// MessageStart opens a streamed assistant reply.
type MessageStart struct {
	Model string `json:"model"`
}

// MessageChunk carries one increment of the streamed reply.
type MessageChunk struct {
	Content string `json:"content"`
}

// MessageComplete closes the streamed reply with its full text.
type MessageComplete struct {
	Content string `json:"content"`
}

// Error is a protocol-level failure reported by the server.
type Error struct {
	Message string `json:"message"`
}

// ConversationCreated announces the id of a freshly created conversation.
type ConversationCreated struct {
	ConversationID string `json:"conversation_id"`
}

// Conversation is one sidebar entry.
type Conversation struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Preview string `json:"preview"`
}

// ConversationsList replaces the whole sidebar.
type ConversationsList struct {
	Conversations []Conversation `json:"conversations"`
}

// HistoryMessage is one stored message of a conversation.
type HistoryMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Model     string `json:"model,omitempty"`
}

// ConversationHistory replaces the message view.
type ConversationHistory struct {
	ConversationID string           `json:"conversation_id"`
	Messages       []HistoryMessage `json:"messages"`
}

// Status is a free-text notice with an optional level.
type Status struct {
	Message string `json:"message"`
	Level   string `json:"level,omitempty"`
}

func (MessageStart) inbound()        {}
func (MessageChunk) inbound()        {}
func (MessageComplete) inbound()     {}
func (Error) inbound()               {}
func (ConversationCreated) inbound() {}
func (ConversationsList) inbound()   {}
func (ConversationHistory) inbound() {}
func (Status) inbound()              {}

// Inbound type discriminators.
const (
	TypeMessageStart        = "message_start"
	TypeMessageChunk        = "message_chunk"
	TypeMessageComplete     = "message_complete"
	TypeError               = "error"
	TypeConversationCreated = "conversation_created"
	TypeConversationsList   = "conversations_list"
	TypeConversationHistory = "conversation_history"
	TypeStatus              = "status"
)

// Decode parses one text frame. Unknown types yield an error wrapping
// ErrUnknownType so callers can drop them quietly.
func Decode(data []byte) (Inbound, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("decode envelope: invalid json")
	}
	kind := gjson.GetBytes(data, "type")
	if !kind.Exists() {
		return nil, fmt.Errorf("decode envelope: missing type")
	}

	switch kind.String() {
	case TypeMessageStart:
		return decodeAs[MessageStart](kind.String(), data)
	case TypeMessageChunk:
		return decodeAs[MessageChunk](kind.String(), data)
	case TypeMessageComplete:
		return decodeAs[MessageComplete](kind.String(), data)
	case TypeError:
		return decodeAs[Error](kind.String(), data)
	case TypeConversationCreated:
		return decodeAs[ConversationCreated](kind.String(), data)
	case TypeConversationsList:
		return decodeAs[ConversationsList](kind.String(), data)
	case TypeConversationHistory:
		return decodeAs[ConversationHistory](kind.String(), data)
	case TypeStatus:
		return decodeAs[Status](kind.String(), data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, kind.String())
	}
}

func decodeAs[T Inbound](kind string, data []byte) (Inbound, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return v, nil
}
