// Package msg defines the tea.Msg types produced by background commands.
// It imports only leaf packages (protocol, settings, config) so every UI
// package can depend on it.
package msg

import (
	"github.com/t3chat/t3chat-tui/config"
	"github.com/t3chat/t3chat-tui/protocol"
	"github.com/t3chat/t3chat-tui/settings"
)

// -- UI events --

// TickMsg drives notice expiry.
type TickMsg struct{}

// -- Files --

// UploadReady carries a file that was read and encoded.
type UploadReady struct {
	Upload protocol.FileUpload
}

// UploadFailed reports a file that could not be prepared (too large,
// unreadable, ...). Err's message is fit for display.
type UploadFailed struct {
	Filename string
	Err      error
}

// ExportResult from /export.
type ExportResult struct {
	Path string
	Err  error
}

// CopyResult from /copy.
type CopyResult struct {
	Chars int
	Err   error
}

// -- Settings & config --

// SettingsSaved after the settings dialog was persisted.
type SettingsSaved struct {
	Credentials settings.Credentials
	// NewCustomModel is set when the form carried a non-empty custom model.
	NewCustomModel string
	Err            error
}

// ConfigReloaded when the config file changed on disk.
type ConfigReloaded struct {
	Config config.Config
	Err    error
}

// ThemeSaved after /theme persisted a new theme.
type ThemeSaved struct {
	Theme string
	Err   error
}
