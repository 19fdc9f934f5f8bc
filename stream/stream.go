// Package stream tracks the single assistant reply that is being streamed
// into the chat view.
package stream

import "strings"

// Handle identifies a message inside a View.
type Handle int

// View is the surface a streamed reply is rendered into.
type View interface {
	// Begin adds an empty, streaming assistant message and returns its handle.
	Begin(model string) Handle
	// Append adds raw text to the message.
	Append(h Handle, chunk string)
	// Finalize marks the message complete and replaces its text with content.
	Finalize(h Handle, content string)
	// Remove deletes the message.
	Remove(h Handle)
}

// State is either idle or streaming into exactly one message.
// It is not safe for concurrent use; drive it from the event loop.
type State struct {
	view View

	active bool
	handle Handle
	model  string
	text   strings.Builder
}

// New returns an idle State rendering into v.
func New(v View) *State {
	return &State{view: v}
}

// Streaming reports whether a reply is in flight.
func (s *State) Streaming() bool { return s.active }

// Text returns the text accumulated for the in-flight reply.
func (s *State) Text() string { return s.text.String() }

// Model returns the model label of the in-flight reply.
func (s *State) Model() string { return s.model }

// Start begins a new reply. A reply that is still streaming is finalized
// first with whatever text it accumulated; the return value reports that.
func (s *State) Start(model string) (finalizedPrevious bool) {
	if s.active {
		s.view.Finalize(s.handle, s.text.String())
		finalizedPrevious = true
	}
	s.handle = s.view.Begin(model)
	s.model = model
	s.text.Reset()
	s.active = true
	return finalizedPrevious
}

// Chunk appends text to the in-flight reply. No-op when idle.
func (s *State) Chunk(text string) bool {
	if !s.active {
		return false
	}
	s.text.WriteString(text)
	s.view.Append(s.handle, text)
	return true
}

// Complete finalizes the reply with the authoritative content.
func (s *State) Complete(content string) bool {
	if !s.active {
		return false
	}
	s.view.Finalize(s.handle, content)
	s.reset()
	return true
}

// Abort removes the partial reply.
func (s *State) Abort() bool {
	if !s.active {
		return false
	}
	s.view.Remove(s.handle)
	s.reset()
	return true
}

func (s *State) reset() {
	s.active = false
	s.handle = 0
	s.model = ""
	s.text.Reset()
}
