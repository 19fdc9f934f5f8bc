package model

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/t3chat/t3chat-tui/style"
)

// PaletteExecuteMsg is sent when the user selects a command.
type PaletteExecuteMsg struct {
	Command string
}

// PaletteDismissMsg is sent when the user closes the palette.
type PaletteDismissMsg struct{}

// PaletteItem is a single entry in the command palette.
type PaletteItem struct {
	Name        string // e.g. "/new"
	Description string
	Category    string // e.g. "conversation"
}

func (p PaletteItem) filterValue() string {
	return strings.ToLower(p.Name + " " + p.Description + " " + p.Category)
}

var (
	paletteClose = key.NewBinding(key.WithKeys("esc", "ctrl+c"))
	paletteRun   = key.NewBinding(key.WithKeys("enter"))
	paletteUp    = key.NewBinding(key.WithKeys("up", "ctrl+p"))
	paletteDown  = key.NewBinding(key.WithKeys("down", "ctrl+n"))
)

// PaletteModel is a filterable command palette overlay.
type PaletteModel struct {
	active   bool
	filter   textinput.Model
	items    []PaletteItem
	filtered []PaletteItem
	cursor   int
	width    int
	height   int
}

// NewPalette constructs a PaletteModel.
func NewPalette() PaletteModel {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Prompt = "> "
	return PaletteModel{filter: ti}
}

const maxVisible = 12

// Open activates the palette with a list of commands.
func (m *PaletteModel) Open(items []PaletteItem, width, height int) tea.Cmd {
	m.active = true
	m.items = items
	m.filtered = items
	m.cursor = 0
	m.width = width
	m.height = height
	m.filter.PromptStyle = lipgloss.NewStyle().Foreground(style.Primary)
	m.filter.SetValue("")
	m.filter.Width = width/2 - 6
	return m.filter.Focus()
}

// IsActive reports whether the palette overlay is visible.
func (m PaletteModel) IsActive() bool { return m.active }

// Selected returns the item under the cursor.
func (m PaletteModel) Selected() (PaletteItem, bool) {
	if m.cursor < len(m.filtered) {
		return m.filtered[m.cursor], true
	}
	return PaletteItem{}, false
}

func (m *PaletteModel) close() {
	m.active = false
	m.filter.Blur()
}

// Update handles keyboard events for the palette.
func (m PaletteModel) Update(msg tea.Msg) (PaletteModel, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, paletteClose):
			m.close()
			return m, func() tea.Msg { return PaletteDismissMsg{} }

		case key.Matches(km, paletteRun):
			item, ok := m.Selected()
			if !ok {
				return m, nil
			}
			m.close()
			return m, func() tea.Msg { return PaletteExecuteMsg{Command: item.Name} }

		case key.Matches(km, paletteUp):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(km, paletteDown):
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	prev := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != prev {
		m.applyFilter()
	}
	return m, cmd
}

func (m *PaletteModel) applyFilter() {
	m.cursor = 0
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	if query == "" {
		m.filtered = m.items
		return
	}
	var results []PaletteItem
	for _, item := range m.items {
		if strings.Contains(item.filterValue(), query) {
			results = append(results, item)
		}
	}
	m.filtered = results
}

// window returns the [start, end) slice of filtered items to draw, keeping
// the cursor roughly centered.
func (m PaletteModel) window() (int, int) {
	n := len(m.filtered)
	if n <= maxVisible {
		return 0, n
	}
	start := m.cursor - maxVisible/2
	if start < 0 {
		start = 0
	}
	if start+maxVisible > n {
		start = n - maxVisible
	}
	return start, start + maxVisible
}

// View renders the palette as a centered overlay.
func (m PaletteModel) View() string {
	if !m.active {
		return ""
	}

	boxWidth := m.width / 2
	if boxWidth < 50 {
		boxWidth = 50
	}
	if boxWidth > m.width-4 {
		boxWidth = m.width - 4
	}

	var sb strings.Builder
	sb.WriteString(style.ModalTitle.Render("Command Palette"))
	sb.WriteByte('\n')
	sb.WriteString(m.filter.View())
	sb.WriteByte('\n')
	sb.WriteString(lipgloss.NewStyle().Foreground(style.Border).Render(strings.Repeat("─", max(boxWidth-4, 1))))
	sb.WriteByte('\n')

	start, end := m.window()
	if start == end {
		sb.WriteString(style.Faint.Render("  No matching commands"))
	}
	for i := start; i < end; i++ {
		item := m.filtered[i]
		var line string
		if i == m.cursor {
			line = style.PromptChar.Render("> ") +
				style.SidebarActive.Render(item.Name) +
				style.Faint.Render("  "+item.Description)
		} else {
			line = "  " + style.FieldLabel.Render(item.Name) +
				style.Hint.Render("  "+item.Description)
		}
		if item.Category != "" {
			line += style.Hint.Render("  [" + item.Category + "]")
		}
		sb.WriteString(line)
		if i < end-1 {
			sb.WriteByte('\n')
		}
	}
	if end < len(m.filtered) {
		sb.WriteString("\n" + style.Faint.Render("  ... and more (type to filter)"))
	}

	box := style.ModalBox.Width(boxWidth).Render(sb.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
