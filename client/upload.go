package client

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/t3chat/t3chat-tui/protocol"
)

// MaxUploadBytes is the largest file accepted for upload.
const MaxUploadBytes = 10 * 1024 * 1024

// ErrFileTooLarge is returned for files over MaxUploadBytes.
var ErrFileTooLarge = errors.New("file too large")

// UploadError names the file an upload failure belongs to.
type UploadError struct {
	Filename string
	Err      error
}

func (e *UploadError) Error() string {
	if errors.Is(e.Err, ErrFileTooLarge) {
		return fmt.Sprintf("File %s is too large (max 10MB)", e.Filename)
	}
	return fmt.Sprintf("File %s could not be uploaded: %v", e.Filename, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// PrepareUpload builds a file_upload envelope from r. size is checked before
// anything is read so oversized files are rejected without I/O.
func PrepareUpload(name string, r io.Reader, size int64, conversationID string) (protocol.FileUpload, error) {
	if size > MaxUploadBytes {
		return protocol.FileUpload{}, &UploadError{Filename: name, Err: ErrFileTooLarge}
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return protocol.FileUpload{}, &UploadError{Filename: name, Err: err}
	}
	if len(data) > MaxUploadBytes {
		return protocol.FileUpload{}, &UploadError{Filename: name, Err: ErrFileTooLarge}
	}
	return protocol.FileUpload{
		Filename:       name,
		Content:        base64.StdEncoding.EncodeToString(data),
		MimeType:       detectMIME(name, data),
		ConversationID: protocol.Optional(conversationID),
	}, nil
}

// PrepareUploadFile opens path and hands it to PrepareUpload.
func PrepareUploadFile(path, conversationID string) (protocol.FileUpload, error) {
	name := filepath.Base(path)
	f, err := os.Open(path)
	if err != nil {
		return protocol.FileUpload{}, &UploadError{Filename: name, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return protocol.FileUpload{}, &UploadError{Filename: name, Err: err}
	}
	if info.IsDir() {
		return protocol.FileUpload{}, &UploadError{Filename: name, Err: errors.New("is a directory")}
	}
	return PrepareUpload(name, f, info.Size(), conversationID)
}

func detectMIME(name string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return http.DetectContentType(data)
}
