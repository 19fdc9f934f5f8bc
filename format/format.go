// Package format turns message text into display form.
package format

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

var (
	fenceRe  = regexp.MustCompile("```(\\w+)?\\n([\\s\\S]*?)```")
	boldRe   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe = regexp.MustCompile(`\*(.*?)\*`)
	inlineRe = regexp.MustCompile("`(.*?)`")
	slotRe   = regexp.MustCompile("\x00(\\d+)\x00")
)

// HTML renders content as an HTML fragment. The input is escaped before any
// markup is introduced, so nothing in content can inject tags. Fenced code
// blocks are lifted out first and their bodies are left untouched by the
// inline passes.
func HTML(content string) string {
	// NUL delimits the code block slots below.
	s := html.EscapeString(strings.ReplaceAll(content, "\x00", ""))

	var blocks []string
	s = fenceRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := fenceRe.FindStringSubmatch(m)
		lang := sub[1]
		if lang == "" {
			lang = "text"
		}
		blocks = append(blocks, fmt.Sprintf(`<pre><code class="language-%s">%s</code></pre>`,
			lang, strings.TrimSpace(sub[2])))
		return fmt.Sprintf("\x00%d\x00", len(blocks)-1)
	})

	s = boldRe.ReplaceAllString(s, "<strong>$1</strong>")
	s = italicRe.ReplaceAllString(s, "<em>$1</em>")
	s = inlineRe.ReplaceAllString(s, "<code>$1</code>")
	s = strings.ReplaceAll(s, "\n", "<br>")

	return slotRe.ReplaceAllStringFunc(s, func(m string) string {
		var i int
		fmt.Sscanf(strings.Trim(m, "\x00"), "%d", &i)
		if i < 0 || i >= len(blocks) {
			return ""
		}
		return blocks[i]
	})
}

// Sanitize strips escape sequences and control characters (other than
// newline and tab) so text from the server or a pasted file cannot drive
// the terminal.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

// Time formats an ISO-8601 timestamp as HH:MM local time, or "" when it
// cannot be parsed.
func Time(ts string) string {
	return TimeIn(ts, time.Local)
}

// TimeIn is Time in an explicit location.
func TimeIn(ts string, loc *time.Location) string {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return ""
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, ts, loc); err == nil {
			return t.In(loc).Format("15:04")
		}
	}
	return ""
}
