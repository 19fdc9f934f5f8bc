package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMsg struct {
	model     string
	text      string
	streaming bool
	removed   bool
}

type fakeView struct {
	msgs []*fakeMsg
}

func (v *fakeView) Begin(model string) Handle {
	v.msgs = append(v.msgs, &fakeMsg{model: model, streaming: true})
	return Handle(len(v.msgs) - 1)
}

func (v *fakeView) Append(h Handle, chunk string) { v.msgs[h].text += chunk }

func (v *fakeView) Finalize(h Handle, content string) {
	v.msgs[h].text = content
	v.msgs[h].streaming = false
}

func (v *fakeView) Remove(h Handle) { v.msgs[h].removed = true }

func (v *fakeView) live() []*fakeMsg {
	var out []*fakeMsg
	for _, m := range v.msgs {
		if !m.removed {
			out = append(out, m)
		}
	}
	return out
}

func TestChunksConcatenateInOrder(t *testing.T) {
	v := &fakeView{}
	s := New(v)

	s.Start("gpt")
	for _, c := range []string{"Hel", "lo, ", "wor", "ld"} {
		require.True(t, s.Chunk(c))
	}
	assert.Equal(t, "Hello, world", s.Text())
	assert.Equal(t, "Hello, world", v.msgs[0].text)
	assert.True(t, v.msgs[0].streaming)
	assert.Equal(t, "gpt", s.Model())
}

func TestCompleteFinalizesOnce(t *testing.T) {
	v := &fakeView{}
	s := New(v)

	s.Start("m")
	s.Chunk("partial")
	require.True(t, s.Complete("**full** text"))

	live := v.live()
	require.Len(t, live, 1)
	assert.Equal(t, "**full** text", live[0].text)
	assert.False(t, live[0].streaming)
	assert.False(t, s.Streaming())
	assert.Empty(t, s.Text())

	assert.False(t, s.Complete("again"), "second complete is a no-op")
	assert.Len(t, v.msgs, 1)
}

func TestAbortRemovesPartial(t *testing.T) {
	v := &fakeView{}
	s := New(v)

	s.Start("m")
	s.Chunk("half a rep")
	require.True(t, s.Abort())

	assert.Empty(t, v.live())
	assert.False(t, s.Streaming())
	assert.False(t, s.Abort())
}

func TestIdleEventsAreNoops(t *testing.T) {
	v := &fakeView{}
	s := New(v)

	assert.False(t, s.Chunk("x"))
	assert.False(t, s.Complete("x"))
	assert.False(t, s.Abort())
	assert.Empty(t, v.msgs)
}

func TestStartWhileStreamingFinalizesPrevious(t *testing.T) {
	v := &fakeView{}
	s := New(v)

	assert.False(t, s.Start("a"))
	s.Chunk("first")
	assert.True(t, s.Start("b"))
	s.Chunk("second")

	require.Len(t, v.msgs, 2)
	assert.Equal(t, "first", v.msgs[0].text)
	assert.False(t, v.msgs[0].streaming)
	assert.True(t, v.msgs[1].streaming)
	assert.Equal(t, "second", s.Text())
	assert.Equal(t, "b", s.Model())
}
