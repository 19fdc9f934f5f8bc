package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/sjson"
)

// Outbound is implemented by every envelope the client may send.
type Outbound interface {
	Type() string
}

// APIKeys is the credential object carried by authenticate and
// update_api_keys. Missing keys are sent as null.
type APIKeys struct {
	OpenRouter *string `json:"openrouter"`
	Tavily     *string `json:"tavily"`
}

// NewAPIKeys builds APIKeys, mapping empty strings to null.
func NewAPIKeys(openrouter, tavily string) APIKeys {
	return APIKeys{OpenRouter: Optional(openrouter), Tavily: Optional(tavily)}
}

// Optional returns nil for "" so the field encodes as null.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type Authenticate struct {
	APIKeys APIKeys `json:"api_keys"`
}

type SendMessage struct {
	Content        string  `json:"content"`
	Model          string  `json:"model"`
	ConversationID *string `json:"conversation_id"`
}

// FileUpload carries a whole file, base64 encoded.
type FileUpload struct {
	Filename       string  `json:"filename"`
	Content        string  `json:"content"`
	MimeType       string  `json:"mime_type"`
	ConversationID *string `json:"conversation_id"`
}

type NewConversation struct{}

type GetConversations struct{}

type GetConversationHistory struct {
	ConversationID string `json:"conversation_id"`
}

type UpdateAPIKeys struct {
	APIKeys APIKeys `json:"api_keys"`
}

func (Authenticate) Type() string           { return "authenticate" }
func (SendMessage) Type() string            { return "send_message" }
func (FileUpload) Type() string             { return "file_upload" }
func (NewConversation) Type() string        { return "new_conversation" }
func (GetConversations) Type() string       { return "get_conversations" }
func (GetConversationHistory) Type() string { return "get_conversation_history" }
func (UpdateAPIKeys) Type() string          { return "update_api_keys" }

// Encode marshals out and stamps its type discriminator.
func Encode(out Outbound) ([]byte, error) {
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", out.Type(), err)
	}
	data, err = sjson.SetBytes(data, "type", out.Type())
	if err != nil {
		return nil, fmt.Errorf("encode %s: set type: %w", out.Type(), err)
	}
	return data, nil
}
