package core

// error_messages.go maps technical errors to user-facing messages with codes.
//
// # Error Codes Reference
//
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Data Errors (DATA001-DATA099)
//
//	DATA001 - Data file missing: A static data document was not found
//	          Action: Run the fetchdata command to regenerate the data directory
//	          Patterns: "file does not exist", "no such file"
//
//	DATA002 - Dataset unavailable: The country dataset could not be loaded
//	          Action: Please try again in a few moments
//	          Patterns: "dataset unavailable"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	REQ002 - Request timeout: Request timed out
//	         Action: Please try again
//	         Patterns: "context deadline exceeded", "timeout"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again later
//
// Patterns are matched case-insensitively with strings.Contains. The first
// matching pattern wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var missingDocument = UserMessage{
	Message: "Country data file is missing",
	Action:  "Run the fetchdata command to regenerate the data directory",
	Code:    "DATA001",
}

var requestTimeout = UserMessage{
	Message: "Request timed out",
	Action:  "Please try again",
	Code:    "REQ002",
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Data Errors (DATA001-DATA002)
	// =========================================================================
	{pattern: "file does not exist", msg: missingDocument},
	{pattern: "no such file", msg: missingDocument},
	{
		pattern: "dataset unavailable",
		msg: UserMessage{
			Message: "Country data is temporarily unavailable",
			Action:  "Please try again in a few moments",
			Code:    "DATA002",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ002)
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{pattern: "context deadline exceeded", msg: requestTimeout},
	{pattern: "timeout", msg: requestTimeout},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again later",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
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
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps a technical error to a UserError.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
