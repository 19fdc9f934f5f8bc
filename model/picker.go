package model

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/t3chat/t3chat-tui/format"
	"github.com/t3chat/t3chat-tui/style"
)

// PickerItem is a single entry in the model picker.
type PickerItem struct {
	Name     string
	Provider string
	Custom   bool
	Active   bool
}

// PickerChoice is emitted when the user selects a model.
type PickerChoice struct {
	Name string
}

// ModelItems builds picker entries from model ids of the form
// "provider/model". The custom model, if set and not already listed, is
// added too and flagged. Entries are grouped by provider in order of first
// appearance.
func ModelItems(models []string, custom, active string) []PickerItem {
	var (
		order  []string
		groups = map[string][]PickerItem{}
		seen   = map[string]bool{}
	)
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		p := ProviderOf(name)
		if _, ok := groups[p]; !ok {
			order = append(order, p)
		}
		groups[p] = append(groups[p], PickerItem{Name: name, Provider: p, Custom: name == custom, Active: name == active})
	}
	for _, name := range models {
		add(name)
	}
	add(custom)

	items := make([]PickerItem, 0, len(seen))
	for _, p := range order {
		items = append(items, groups[p]...)
	}
	return items
}

// ProviderOf returns the part of a model id before the first '/', or
// "other" when there is none.
func ProviderOf(name string) string {
	if i := strings.IndexByte(name, '/'); i > 0 {
		return name[:i]
	}
	return "other"
}

// PickerCancel is emitted when the user presses Esc.
type PickerCancel struct{}

// PickerModel renders a vertical list of models with arrow-key navigation.
type PickerModel struct {
	items    []PickerItem
	cursor   int
	active   bool
	width    int
	offset   int // scroll offset for long lists
	pageSize int // visible items per page
}

// NewPicker returns a zero-value PickerModel.
func NewPicker() PickerModel {
	return PickerModel{pageSize: 12}
}

// SetItems populates the picker and activates it.
func (m *PickerModel) SetItems(items []PickerItem) {
	m.items = items
	m.cursor = 0
	m.offset = 0
	m.active = true
	// Start cursor on the active model
	for i, item := range items {
		if item.Active {
			m.cursor = i
			// Ensure active item is visible
			if m.cursor >= m.pageSize {
				m.offset = m.cursor - m.pageSize/2
				if m.offset+m.pageSize > len(m.items) {
					m.offset = len(m.items) - m.pageSize
				}
				if m.offset < 0 {
					m.offset = 0
				}
			}
			break
		}
	}
}

// Clear deactivates the picker.
func (m *PickerModel) Clear() {
	m.active = false
	m.items = nil
	m.cursor = 0
	m.offset = 0
}

// IsActive reports whether the picker is currently visible.
func (m PickerModel) IsActive() bool {
	return m.active
}

// SetWidth constrains the picker to the terminal width.
func (m *PickerModel) SetWidth(w int) {
	m.width = w
}

// Init satisfies tea.Model.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update handles keyboard input when the picker is active.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.active || len(m.items) == 0 {
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		} else {
			// Wrap to bottom
			m.cursor = len(m.items) - 1
			if m.cursor >= m.offset+m.pageSize {
				m.offset = m.cursor - m.pageSize + 1
			}
		}

	case tea.KeyDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
			if m.cursor >= m.offset+m.pageSize {
				m.offset = m.cursor - m.pageSize + 1
			}
		} else {
			// Wrap to top
			m.cursor = 0
			m.offset = 0
		}

	case tea.KeyEnter:
		item := m.items[m.cursor]
		m.Clear()
		return m, func() tea.Msg {
			return PickerChoice{Name: item.Name}
		}

	case tea.KeyEsc:
		m.Clear()
		return m, func() tea.Msg { return PickerCancel{} }
	}

	return m, nil
}

// View renders the picker panel.
func (m PickerModel) View() string {
	if !m.active || len(m.items) == 0 {
		return ""
	}

	var sb strings.Builder

	// Header
	header := style.ModalTitle.Render("◈ Select Model")
	hint := style.Hint.Render("  ↑↓ navigate · Enter select · Esc cancel")
	sb.WriteString(header + hint + "\n\n")

	// Determine visible range
	end := m.offset + m.pageSize
	if end > len(m.items) {
		end = len(m.items)
	}

	// Scroll indicator (top)
	if m.offset > 0 {
		sb.WriteString(lipgloss.NewStyle().Foreground(style.Muted).Render("  ↑ more above") + "\n")
	}

	// Group items by provider for display
	lastProvider := ""
	for i := m.offset; i < end; i++ {
		item := m.items[i]

		// Provider header
		if item.Provider != lastProvider {
			lastProvider = item.Provider
			provLabel := lipgloss.NewStyle().
				Foreground(style.Secondary).
				Bold(true).
				Render("  " + format.Sanitize(item.Provider))
			sb.WriteString(provLabel + "\n")
		}

		// Item line
		isCursor := (i == m.cursor)
		sb.WriteString(m.renderItem(item, isCursor))
		sb.WriteString("\n")
	}

	// Scroll indicator (bottom)
	if end < len(m.items) {
		sb.WriteString(lipgloss.NewStyle().Foreground(style.Muted).Render("  ↓ more below") + "\n")
	}

	// Count
	countText := lipgloss.NewStyle().
		Foreground(style.Muted).
		Render(fmt.Sprintf("\n  %d model(s) available", len(m.items)))
	sb.WriteString(countText)

	// Wrap in border
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.Border).
		Padding(0, 1)
	if m.width > 0 {
		boxStyle = boxStyle.Width(m.width - 2)
	}

	return boxStyle.Render(sb.String())
}

// renderItem renders a single model line.
func (m PickerModel) renderItem(item PickerItem, isCursor bool) string {
	// Cursor indicator
	var cursor string
	if isCursor {
		cursor = lipgloss.NewStyle().Foreground(style.Primary).Bold(true).Render("  > ")
	} else {
		cursor = "    "
	}

	// Active marker
	var marker string
	if item.Active {
		marker = lipgloss.NewStyle().Foreground(style.Success).Render("●")
	} else {
		marker = lipgloss.NewStyle().Foreground(style.Muted).Render("○")
	}

	// Model name
	nameStyle := lipgloss.NewStyle()
	if isCursor {
		nameStyle = nameStyle.Bold(true)
	}
	name := nameStyle.Render(format.Sanitize(item.Name))

	var customBadge string
	if item.Custom {
		customBadge = lipgloss.NewStyle().
			Foreground(style.Muted).
			Render("  custom")
	}

	// Active label
	var activeLabel string
	if item.Active {
		activeLabel = lipgloss.NewStyle().
			Foreground(style.Success).
			Render("  active")
	}

	return cursor + marker + " " + name + customBadge + activeLabel
}
