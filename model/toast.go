package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/t3chat/t3chat-tui/format"
	"github.com/t3chat/t3chat-tui/style"
)

// ToastLevel classifies notice severity.
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastWarning
	ToastError
)

func (l ToastLevel) String() string {
	switch l {
	case ToastSuccess:
		return "success"
	case ToastWarning:
		return "warning"
	case ToastError:
		return "error"
	default:
		return "info"
	}
}

// ParseToastLevel maps a server status level; anything unknown is info.
func ParseToastLevel(s string) ToastLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success":
		return ToastSuccess
	case "warning", "warn":
		return ToastWarning
	case "error":
		return ToastError
	default:
		return ToastInfo
	}
}

const (
	maxToasts = 3
	// ToastTTL is how long a notice stays visible.
	ToastTTL = 5 * time.Second
)

type toast struct {
	message string
	level   ToastLevel
	expiry  time.Time
}

// ToastsModel manages a queue of auto-dismissing notices.
type ToastsModel struct {
	queue []toast
	now   func() time.Time
}

// NewToasts creates an empty ToastsModel.
func NewToasts() ToastsModel {
	return ToastsModel{now: time.Now}
}

// Add enqueues a notice. Oldest notices are dropped past maxToasts.
func (m *ToastsModel) Add(message string, level ToastLevel) {
	m.queue = append(m.queue, toast{
		message: format.Sanitize(message),
		level:   level,
		expiry:  m.clock().Add(ToastTTL),
	})
	if len(m.queue) > maxToasts {
		m.queue = m.queue[len(m.queue)-maxToasts:]
	}
}

func (m ToastsModel) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}

// Tick prunes expired notices. Call on every msg.TickMsg.
func (m *ToastsModel) Tick() {
	now := m.clock()
	alive := m.queue[:0]
	for _, t := range m.queue {
		if now.Before(t.expiry) {
			alive = append(alive, t)
		}
	}
	m.queue = alive
}

// HasToasts reports whether any notices are visible.
func (m ToastsModel) HasToasts() bool {
	return len(m.queue) > 0
}

// Messages lists the visible notices, oldest first.
func (m ToastsModel) Messages() []string {
	out := make([]string, len(m.queue))
	for i, t := range m.queue {
		out[i] = t.message
	}
	return out
}

// Last returns the newest notice.
func (m ToastsModel) Last() (string, ToastLevel, bool) {
	if len(m.queue) == 0 {
		return "", ToastInfo, false
	}
	t := m.queue[len(m.queue)-1]
	return t.message, t.level, true
}

// View renders visible notices as right-aligned colored lines.
func (m ToastsModel) View(termWidth int) string {
	if len(m.queue) == 0 {
		return ""
	}
	var lines []string
	for _, t := range m.queue {
		icon, color := toastIconColor(t.level)
		text := fmt.Sprintf(" %s %s ", icon, t.message)
		rendered := lipgloss.NewStyle().
			Foreground(color).
			Render(text)
		w := lipgloss.Width(rendered)
		pad := termWidth - w
		if pad < 0 {
			pad = 0
		}
		lines = append(lines, strings.Repeat(" ", pad)+rendered)
	}
	return strings.Join(lines, "\n")
}

func toastIconColor(level ToastLevel) (string, lipgloss.TerminalColor) {
	switch level {
	case ToastSuccess:
		return "\u2713", style.Success // ✓
	case ToastWarning:
		return "\u26A0", style.Warning // ⚠
	case ToastError:
		return "\u2718", style.Error // ✘
	default:
		return "\u2139", style.Secondary // ℹ
	}
}
