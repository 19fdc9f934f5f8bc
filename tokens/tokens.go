// Package tokens counts tokens in reply text for the status bar.
package tokens

import (
	"fmt"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	tiktoken "github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is used when the config does not name one.
const DefaultEncoding = "cl100k_base"

// Counter counts tokens in a string.
type Counter interface {
	Count(text string) int
	// Exact is false for the estimating fallback.
	Exact() bool
}

// Estimate approximates one token per four characters.
type Estimate struct{}

func (Estimate) Count(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}

func (Estimate) Exact() bool { return false }

// Tiktoken counts with a BPE encoding.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// Load fetches the named encoding. The first call may download the BPE
// ranks, so call it off the event loop.
func Load(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}
	return &Tiktoken{enc: enc}, nil
}

func (t *Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

func (t *Tiktoken) Exact() bool { return true }

// ReadyMsg carries the loaded counter, or the estimator and the load error.
type ReadyMsg struct {
	Counter Counter
	Err     error
}

// LoadCmd loads the encoding in the background.
func LoadCmd(encoding string) tea.Cmd {
	return func() tea.Msg {
		t, err := Load(encoding)
		if err != nil {
			return ReadyMsg{Counter: Estimate{}, Err: err}
		}
		return ReadyMsg{Counter: t}
	}
}
