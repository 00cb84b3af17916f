package upload

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUploadInProgress is returned by SelectFile while a simulated upload
	// is running. Reset first to choose another file.
	ErrUploadInProgress = errors.New("upload in progress")

	// ErrUnreadableFile is wrapped by every ReadError.
	ErrUnreadableFile = errors.New("unreadable file")
)

// Reason explains why a candidate file was rejected.
type Reason string

const (
	UnsupportedType Reason = "unsupported_type"
	TooLarge        Reason = "too_large"
)

// ValidationError reports a rejected candidate file. It is recoverable: the
// uploader state is unchanged and the user may pick another file.
type ValidationError struct {
	Reason        Reason
	MediaType     string
	Size          int64
	AcceptedTypes []string
	MaxSizeMB     float64
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case UnsupportedType:
		return "unsupported file type: " + e.Message()
	case TooLarge:
		return "file too large: " + e.Message()
	default:
		return "invalid file"
	}
}

// Message is the user-facing text shown when the file is rejected.
func (e *ValidationError) Message() string {
	switch e.Reason {
	case UnsupportedType:
		return "Invalid file type. Accepted types: " + strings.Join(e.AcceptedTypes, ", ")
	case TooLarge:
		return "File is too large. Maximum size is " + formatMB(e.MaxSizeMB) + "MB"
	default:
		return "Invalid file"
	}
}

// ReadError reports that the preview could not be produced. The attempt is
// abandoned and the uploader returns to Idle.
type ReadError struct {
	Name string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%v %q: %v", ErrUnreadableFile, e.Name, e.Err)
}

func (e *ReadError) Unwrap() []error {
	return []error{ErrUnreadableFile, e.Err}
}

func formatMB(mb float64) string {
	return strconv.FormatFloat(mb, 'f', -1, 64)
}
