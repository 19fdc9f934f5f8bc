package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Transcript {
	return Transcript{
		Title:          "Go <generics>",
		ConversationID: "c-42",
		ExportedAt:     time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC),
		Messages: []Message{
			{Role: "user", Content: "how do I **sort**?", Timestamp: "2025-01-02T15:00:00Z"},
			{Role: "assistant", Content: "```go\nslices.Sort(x)\n```\n<script>", Model: "openai/gpt-4o-mini"},
		},
	}
}

func TestHTML(t *testing.T) {
	out, err := HTML(sample())
	require.NoError(t, err)
	s := string(out)

	assert.Contains(t, s, "<title>Go &lt;generics&gt;</title>")
	assert.Contains(t, s, "how do I <strong>sort</strong>?")
	assert.Contains(t, s, `<pre><code class="language-go">slices.Sort(x)</code></pre>`)
	assert.Contains(t, s, "&lt;script&gt;")
	assert.NotContains(t, s, "<script>")
	assert.Contains(t, s, "openai/gpt-4o-mini")
	assert.Contains(t, s, "Conversation c-42")
	assert.Contains(t, s, "January 2, 2025 at 15:04")
}

func TestHTML_Empty(t *testing.T) {
	_, err := HTML(Transcript{Title: "x"})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestFilename(t *testing.T) {
	tr := sample()
	assert.Equal(t, "t3chat-go-generics-20250102-150405.html", Filename(tr))

	tr.Title = "  !!  "
	assert.Equal(t, "t3chat-conversation-20250102-150405.html", Filename(tr))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "t.html")
	require.NoError(t, WriteFile(path, sample()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<!DOCTYPE html>")
}
