package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"escapes first", "<script>alert(1)</script>", "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{"escaped inside bold", "**<b>**", "<strong>&lt;b&gt;</strong>"},
		{"inline passes", "**b** *i* `c`\nx", "<strong>b</strong> <em>i</em> <code>c</code><br>x"},
		{"fence with lang", "```go\nfunc *a* **b**\n```", `<pre><code class="language-go">func *a* **b**</code></pre>`},
		{"fence default lang", "```\nx := 1\n```", `<pre><code class="language-text">x := 1</code></pre>`},
		{"fence body escaped", "```html\n<b>&</b>\n```", `<pre><code class="language-html">&lt;b&gt;&amp;&lt;/b&gt;</code></pre>`},
		{"fence between text", "see:\n```sh\nls\n```\ndone", `see:<br><pre><code class="language-sh">ls</code></pre><br>done`},
		{"nul cannot forge a slot", "a\x000\x00b", "a0b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTML(tt.in))
		})
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "redok\n\tz", Sanitize("\x1b[31mred\x1b[0m\x07ok\n\tz"))
	assert.Equal(t, "title", Sanitize("\x1b]0;pwned\x07title"))
	assert.Equal(t, "héllo ✓", Sanitize("héllo ✓"))
}

func TestTimeIn(t *testing.T) {
	assert.Equal(t, "14:05", TimeIn("2024-03-01T14:05:09Z", time.UTC))
	assert.Equal(t, "12:05", TimeIn("2024-03-01T14:05:09.123456+02:00", time.UTC))
	assert.Equal(t, "09:30", TimeIn("2024-03-01T09:30:00.5", time.UTC))
	assert.Equal(t, "", TimeIn("yesterday", time.UTC))
	assert.Equal(t, "", TimeIn("", time.UTC))
}
