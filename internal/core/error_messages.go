package core

// error_messages.go maps technical errors to user-facing messages with codes
// for support reference.
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - Upload in progress: another file is still uploading
//	         Patterns: "upload in progress"
//	UPL002 - System busy: too many simulated uploads running
//	         Patterns: "too many uploads"
//	UPL003 - Uploader not found: the widget expired or never existed
//	         Patterns: "uploader not found"
//	UPL004 - Request cancelled
//	         Patterns: "context canceled"
//	UPL005 - Request timeout
//	         Patterns: "context deadline exceeded"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large (message carries the configured limit)
//	FILE002 - Unsupported type (message lists the accepted types)
//	FILE003 - No file: the form had no file part
//	          Patterns: "no file provided"
//	FILE004 - Unreadable file: the preview could not be produced
//	          Patterns: "unreadable file"
//
// FILE001 and FILE002 are matched with errors.As on *upload.ValidationError
// so the exact limit and allow-list reach the user.
//
// # Auth Errors (AUTH001-AUTH099)
//
//	AUTH001 - Passwords do not match
//	AUTH002 - Missing fields
//	AUTH003 - Not signed in
//	AUTH004 - Invalid or missing API key
//
// # Leave Errors (LEAVE001-LEAVE099)
//
//	LEAVE001 - Missing dates
//	LEAVE002 - End before start
//	LEAVE003 - Unknown status filter
//	LEAVE004 - Unknown leave type
//	LEAVE005 - Unparseable date
//
// # Gallery and Database Errors
//
//	GAL001 - Image not found
//	DB001  - Connection refused
//	DB002  - Connection reset
//	DB003  - Timeout
//
// # Requests (REQ001), Rate Limiting (RATE001) and Default (ERR000)
//
// Patterns are matched case-insensitively with strings.Contains. The first
// match wins, so specific patterns come before general ones. When a user
// reports ERR000, check the application logs for the technical error.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/leavetrack/internal/upload"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Uploads
	{
		pattern: "upload in progress",
		msg: UserMessage{
			Message: "An upload is already in progress",
			Action:  "Wait for it to finish or reset the uploader",
			Code:    "UPL001",
		},
	},
	{
		pattern: "too many uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "uploader not found",
		msg: UserMessage{
			Message: "Uploader not found",
			Action:  "Reload the page to start a new upload",
			Code:    "UPL003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "UPL005",
		},
	},

	// Files
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please choose an image to upload",
			Code:    "FILE003",
		},
	},
	{
		pattern: "unreadable file",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Check the file and try again",
			Code:    "FILE004",
		},
	},

	// Auth
	{
		pattern: "passwords do not match",
		msg: UserMessage{
			Message: "Passwords do not match",
			Action:  "Enter the same password in both fields",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "missing required fields",
		msg: UserMessage{
			Message: "Please fill in all fields",
			Action:  "Complete every field and submit again",
			Code:    "AUTH002",
		},
	},
	{
		pattern: "not authenticated",
		msg: UserMessage{
			Message: "You are not logged in",
			Action:  "Please log in to continue",
			Code:    "AUTH003",
		},
	},
	{
		pattern: "api key",
		msg: UserMessage{
			Message: "Invalid or missing API key",
			Action:  "Provide a valid X-API-Key header",
			Code:    "AUTH004",
		},
	},

	// Leave
	{
		pattern: "start and end dates are required",
		msg: UserMessage{
			Message: "Please select both start and end dates",
			Action:  "Choose a start and an end date",
			Code:    "LEAVE001",
		},
	},
	{
		pattern: "end date is before start date",
		msg: UserMessage{
			Message: "End date cannot be before start date",
			Action:  "Pick an end date on or after the start date",
			Code:    "LEAVE002",
		},
	},
	{
		pattern: "invalid status filter",
		msg: UserMessage{
			Message: "Unknown request filter",
			Action:  "Use all, pending, approved or rejected",
			Code:    "LEAVE003",
		},
	},
	{
		pattern: "invalid leave type",
		msg: UserMessage{
			Message: "Unknown leave type",
			Action:  "Choose annual, sick, personal or other",
			Code:    "LEAVE004",
		},
	},
	{
		pattern: "invalid date",
		msg: UserMessage{
			Message: "Invalid date format detected",
			Action:  "Use YYYY-MM-DD",
			Code:    "LEAVE005",
		},
	},

	// Gallery
	{
		pattern: "image not found",
		msg: UserMessage{
			Message: "Image not found",
			Action:  "The gallery may have been cleared. Refresh the page",
			Code:    "GAL001",
		},
	},

	// Database
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB003",
		},
	},

	// Requests
	{
		pattern: "malformed request",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check the submitted data and try again",
			Code:    "REQ001",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Validation errors keep their own text; everything else is matched against
// the known patterns, falling back to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var verr *upload.ValidationError
	if errors.As(err, &verr) {
		switch verr.Reason {
		case upload.TooLarge:
			return UserMessage{Message: verr.Message(), Action: "Choose a smaller file", Code: "FILE001"}
		case upload.UnsupportedType:
			return UserMessage{Message: verr.Message(), Action: "Choose a supported image", Code: "FILE002"}
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action", without the action when
// none applies.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	if msg.Action == "" {
		return fmt.Sprintf("%s (Code: %s).", msg.Message, msg.Code)
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
