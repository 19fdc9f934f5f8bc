// Package export writes a conversation out as a standalone HTML page.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/t3chat/t3chat-tui/format"
)

// ErrEmpty is returned for a transcript without messages.
var ErrEmpty = errors.New("conversation has no messages")

type Message struct {
	Role      string // "user" or "assistant"
	Content   string
	Timestamp string
	Model     string
}

type Transcript struct {
	Title          string
	ConversationID string
	Messages       []Message
	ExportedAt     time.Time
}

type renderedMessage struct {
	Role  string
	Label string
	Body  template.HTML
	Time  string
	Model string
}

var page = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<meta name="generator" content="t3chat">
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,sans-serif;max-width:820px;margin:2rem auto;padding:0 1rem;color:#1f2937}
header{border-bottom:1px solid #e5e7eb;margin-bottom:1.5rem}
.message{display:flex;gap:.75rem;margin:1rem 0}
.avatar{flex:none;width:2.25rem;height:2.25rem;border-radius:50%;display:flex;align-items:center;justify-content:center;font-weight:600;color:#fff}
.user .avatar{background:#0891b2}.assistant .avatar{background:#7c3aed}
.content{flex:1}.meta{color:#6b7280;font-size:.8rem;margin-top:.25rem}
pre{background:#111827;color:#e5e7eb;padding:.75rem;border-radius:6px;overflow-x:auto}
code{font-family:ui-monospace,monospace}
</style>
</head>
<body>
<header>
<h1>{{.Title}}</h1>
{{if .ConversationID}}<p class="meta">Conversation {{.ConversationID}}</p>{{end}}
</header>
<main>
{{range .Messages}}<div class="message {{.Role}}">
<div class="avatar">{{.Label}}</div>
<div class="content">
<div class="text">{{.Body}}</div>
<div class="meta">{{.Time}}{{if .Model}} &middot; {{.Model}}{{end}}</div>
</div>
</div>
{{end}}</main>
<footer class="meta">Exported {{.Exported}}</footer>
</body>
</html>
`))

// HTML renders t. Message bodies go through format.HTML, which escapes
// before adding markup; everything else is escaped by html/template.
func HTML(t Transcript) ([]byte, error) {
	if len(t.Messages) == 0 {
		return nil, ErrEmpty
	}
	title := t.Title
	if title == "" {
		title = "Conversation"
	}
	msgs := make([]renderedMessage, 0, len(t.Messages))
	for _, m := range t.Messages {
		label := "U"
		if m.Role == "assistant" {
			label = "AI"
		}
		msgs = append(msgs, renderedMessage{
			Role:  m.Role,
			Label: label,
			Body:  template.HTML(format.HTML(m.Content)),
			Time:  format.Time(m.Timestamp),
			Model: m.Model,
		})
	}
	exported := t.ExportedAt
	if exported.IsZero() {
		exported = time.Now()
	}

	var buf bytes.Buffer
	err := page.Execute(&buf, struct {
		Title          string
		ConversationID string
		Messages       []renderedMessage
		Exported       string
	}{title, t.ConversationID, msgs, exported.Format("January 2, 2006 at 15:04")})
	if err != nil {
		return nil, fmt.Errorf("render transcript: %w", err)
	}
	return buf.Bytes(), nil
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Filename suggests a file name such as t3chat-my-topic-20250102-150405.html.
func Filename(t Transcript) string {
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(t.Title), "-"), "-")
	if len(slug) > 40 {
		slug = strings.TrimRight(slug[:40], "-")
	}
	if slug == "" {
		slug = "conversation"
	}
	at := t.ExportedAt
	if at.IsZero() {
		at = time.Now()
	}
	return fmt.Sprintf("t3chat-%s-%s.html", slug, at.Format("20060102-150405"))
}

// WriteFile renders t to path, creating parent directories.
func WriteFile(path string, t Transcript) error {
	data, err := HTML(t)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
