package style

import "github.com/charmbracelet/lipgloss"

// Colors of the active theme. SetTheme reassigns them.
var (
	Primary   lipgloss.TerminalColor
	Secondary lipgloss.TerminalColor
	Success   lipgloss.TerminalColor
	Warning   lipgloss.TerminalColor
	Error     lipgloss.TerminalColor
	Muted     lipgloss.TerminalColor
	Dim       lipgloss.TerminalColor
	Border    lipgloss.TerminalColor

	MsgBorderUser    lipgloss.TerminalColor
	MsgBorderAgent   lipgloss.TerminalColor
	MsgBorderSystem  lipgloss.TerminalColor
	MsgBorderWarning lipgloss.TerminalColor
	MsgBorderError   lipgloss.TerminalColor
)

// Styles built from the active theme.
var (
	Bold      lipgloss.Style
	Faint     lipgloss.Style
	ErrorText lipgloss.Style

	// Header
	HeaderTitle  lipgloss.Style
	HeaderDetail lipgloss.Style

	PromptChar lipgloss.Style

	// Chat
	UserLabel    lipgloss.Style
	AgentLabel   lipgloss.Style
	MsgMeta      lipgloss.Style
	UserBlock    lipgloss.Style
	AgentBlock   lipgloss.Style
	SystemBlock  lipgloss.Style
	SpinnerStyle lipgloss.Style
	Cursor       lipgloss.Style

	// Status bar
	StatusBar    lipgloss.Style
	StatusOnline lipgloss.Style
	StatusBusy   lipgloss.Style
	StatusOff    lipgloss.Style

	// Sidebar
	SidebarBox     lipgloss.Style
	SidebarTitle   lipgloss.Style
	SidebarItem    lipgloss.Style
	SidebarActive  lipgloss.Style
	SidebarPreview lipgloss.Style

	// Modal dialogs (settings, picker, palette)
	ModalBox   lipgloss.Style
	ModalTitle lipgloss.Style
	FieldLabel lipgloss.Style

	Hint lipgloss.Style
)

func init() {
	SetTheme(CurrentThemeName)
}

// SetTheme switches to the named theme and rebuilds every style. Unknown
// names are ignored and reported as false.
func SetTheme(name string) bool {
	t, ok := Themes[name]
	if !ok {
		return false
	}
	CurrentThemeName = t.Name

	Primary, Secondary = t.Primary, t.Secondary
	Success, Warning, Error = t.Success, t.Warning, t.Error
	Muted, Dim, Border = t.Muted, t.Dim, t.Border
	MsgBorderUser, MsgBorderAgent = t.MsgBorderUser, t.MsgBorderAgent
	MsgBorderSystem, MsgBorderWarning, MsgBorderError = t.MsgBorderSystem, t.MsgBorderWarning, t.MsgBorderError

	build()
	return true
}

func build() {
	Bold = lipgloss.NewStyle().Bold(true)
	Faint = lipgloss.NewStyle().Foreground(Muted)
	ErrorText = lipgloss.NewStyle().Foreground(Error).Bold(true)

	HeaderTitle = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
	HeaderDetail = lipgloss.NewStyle().
		Foreground(Muted)

	PromptChar = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	UserLabel = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)
	AgentLabel = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
	MsgMeta = lipgloss.NewStyle().
		Foreground(Muted).
		Italic(true)
	// Left-border message blocks.
	UserBlock = messageBlock(MsgBorderUser)
	AgentBlock = messageBlock(MsgBorderAgent)
	SystemBlock = messageBlock(MsgBorderSystem).Foreground(Muted)
	SpinnerStyle = lipgloss.NewStyle().
		Foreground(Primary)
	Cursor = lipgloss.NewStyle().
		Foreground(Primary)

	StatusBar = lipgloss.NewStyle().
		Foreground(Muted).
		PaddingLeft(1)
	StatusOnline = lipgloss.NewStyle().Foreground(Success)
	StatusBusy = lipgloss.NewStyle().Foreground(Warning)
	StatusOff = lipgloss.NewStyle().Foreground(Error)

	SidebarBox = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(Border).
		PaddingRight(1)
	SidebarTitle = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
	SidebarItem = lipgloss.NewStyle()
	SidebarActive = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)
	SidebarPreview = lipgloss.NewStyle().
		Foreground(Muted)

	ModalBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
	ModalTitle = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
	FieldLabel = lipgloss.NewStyle().
		Foreground(Secondary)

	Hint = lipgloss.NewStyle().
		Foreground(Dim)
}

func messageBlock(c lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(c).
		PaddingLeft(1)
}

// LevelColor maps a notice level name to a theme color.
func LevelColor(level string) lipgloss.TerminalColor {
	switch level {
	case "success":
		return Success
	case "warning":
		return Warning
	case "error":
		return Error
	default:
		return Secondary
	}
}
