package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// BytesPerMB converts the megabyte limits used in options to bytes.
const BytesPerMB = 1024 * 1024

// DefaultAcceptedTypes are the image types accepted when no allow-list is given.
var DefaultAcceptedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// DefaultMaxSizeMB is the size ceiling used when Options.MaxSizeMB is zero.
const DefaultMaxSizeMB = 5

// State is the observable state of an Uploader.
type State int

const (
	StateIdle State = iota
	StateActive
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// MarshalText lets State render as its name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name.
func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*s = StateIdle
	case "active":
		*s = StateActive
	case "complete":
		*s = StateComplete
	default:
		return fmt.Errorf("unknown uploader state %q", b)
	}
	return nil
}

// File is a candidate file chosen for simulated upload.
type File struct {
	Name      string
	Size      int64
	MediaType string

	open func() (io.ReadCloser, error)
}

// NewFile returns a File backed by an in-memory copy of its content.
// Size is the length of data.
func NewFile(name, mediaType string, data []byte) File {
	return File{
		Name:      name,
		Size:      int64(len(data)),
		MediaType: mediaType,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// NewFileFromOpener returns a File whose content is produced by open.
// size is the declared byte size and is not checked against the content.
func NewFileFromOpener(name, mediaType string, size int64, open func() (io.ReadCloser, error)) File {
	return File{Name: name, Size: size, MediaType: mediaType, open: open}
}

// Open returns a reader over the file content.
func (f File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, errors.New("file has no content")
	}
	return f.open()
}

// Options are the per-selection acceptance rules.
type Options struct {
	MaxSizeMB     float64
	AcceptedTypes []string
}

// WithDefaults fills a zero size limit and an empty allow-list.
func (o Options) WithDefaults() Options {
	if o.MaxSizeMB <= 0 {
		o.MaxSizeMB = DefaultMaxSizeMB
	}
	if len(o.AcceptedTypes) == 0 {
		o.AcceptedTypes = DefaultAcceptedTypes
	}
	return o
}

// NoticeLevel classifies a user-facing notification.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeInfo    NoticeLevel = "info"
)

// Notice is a user-facing message. It is informational and not part of the
// programmatic contract.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// EventType identifies what changed in an Event.
type EventType string

const (
	EventState    EventType = "state"
	EventProgress EventType = "progress"
	EventPreview  EventType = "preview"
	EventNotice   EventType = "notice"
)

// Event is delivered to subscribers whenever the uploader changes.
type Event struct {
	Type     EventType `json:"type"`
	State    State     `json:"state"`
	Progress int       `json:"progress"`
	Notice   *Notice   `json:"notice,omitempty"`
}

// Status is a point-in-time snapshot of an Uploader.
type Status struct {
	State     State  `json:"state"`
	Progress  int    `json:"progress"`
	FileName  string `json:"fileName,omitempty"`
	FileSize  int64  `json:"fileSize,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
	Preview   string `json:"preview,omitempty"`
}
