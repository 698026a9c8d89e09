package core

// error_messages.go maps technical errors to user-facing messages with a code that
// users can quote when reporting a problem.
//
// # Fetch Errors (FETCH001-FETCH099)
//
//	FETCH001 - Response too large: The catalog or pack exceeds the size limit
//	           Action: Ask the publisher for a smaller catalog or raise FETCH_MAX_*_BYTES
//	           Patterns: "response too large"
//
//	FETCH002 - Bad status: The remote server returned an error status
//	           Action: Check that the URL is still published
//	           Patterns: "bad status fetching"
//
//	FETCH003 - Unsupported URL: Only absolute http and https URLs can be fetched
//	           Action: Paste the full catalog link, including https://
//	           Patterns: "unsupported url"
//
//	FETCH004 - Unreachable: The remote server could not be reached
//	           Action: Check the URL and your network connection
//	           Patterns: "fetch http"
//
//	FETCH005 - Host not allowed: The host is not on FETCH_ALLOWED_HOSTS
//	           Action: Use a mirror on an allowed host or ask an admin to add it
//	           Patterns: "host not allowed"
//
// # CSV Errors (CSV001-CSV099)
//
//	CSV001 - Empty file: The catalog contains no rows
//	         Patterns: "empty file"
//
//	CSV002 - Invalid CSV: The catalog could not be parsed
//	         Patterns: "invalid csv"
//
//	CSV003 - No columns recognized: No column looked like a name or URL
//	         Patterns: "no columns recognized"
//
//	CSV004 - No file: No file was attached to the request
//	         Patterns: "no file provided"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Busy: Too many imports in progress
//	IMP002 - Import not found
//	IMP003 - Pack not found
//	IMP004 - Busy: Too many downloads in progress
//	IMP005 - Cancelled: "context canceled"
//	IMP006 - Timed out: "context deadline exceeded"
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key
//	DB002 - Foreign key violation
//	DB003 - Connection refused
//	DB004 - Deadlock
//
// # caniuse Errors (CIU001-CIU099)
//
//	CIU001 - Unknown feature
//	CIU002 - Invalid feature data
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Invalid ID in the URL path
//	REQ002 - Unreadable request body
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check the application logs for
// the original error.
//
// # Pattern Matching
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so fetch patterns sit before the database ones: a refused
// connection inside "fetch https://..." is a fetch problem, not a database one.

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

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps lowercase substrings of technical errors to user
// messages. Order matters: specific patterns come before general ones.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Fetch Errors (FETCH001-FETCH005)
	// =========================================================================
	{
		pattern: "response too large",
		msg: UserMessage{
			Message: "The file exceeds the maximum download size",
			Action:  "Ask the publisher for a smaller catalog or raise the configured limit",
			Code:    "FETCH001",
		},
	},
	{
		pattern: "bad status fetching",
		msg: UserMessage{
			Message: "The remote server returned an error",
			Action:  "Check that the URL is still published",
			Code:    "FETCH002",
		},
	},
	{
		pattern: "unsupported url",
		msg: UserMessage{
			Message: "Only http and https links can be imported",
			Action:  "Paste the full catalog link, including https://",
			Code:    "FETCH003",
		},
	},
	{
		pattern: "host not allowed",
		msg: UserMessage{
			Message: "Catalogs and packs cannot be fetched from this host",
			Action:  "Use a mirror on an allowed host or ask an administrator to allow it",
			Code:    "FETCH005",
		},
	},

	// =========================================================================
	// caniuse Errors (CIU001-CIU002)
	// These wrap fetch errors, so they are checked before FETCH004.
	// =========================================================================
	{
		pattern: "unknown caniuse feature",
		msg: UserMessage{
			Message: "Unknown browser feature",
			Action:  "Pick one of the listed features",
			Code:    "CIU001",
		},
	},
	{
		pattern: "invalid caniuse feature data",
		msg: UserMessage{
			Message: "Browser support data could not be read",
			Action:  "Please try again later",
			Code:    "CIU002",
		},
	},

	{
		pattern: "fetch http",
		msg: UserMessage{
			Message: "The remote server could not be reached",
			Action:  "Check the URL and your network connection",
			Code:    "FETCH004",
		},
	},

	// =========================================================================
	// CSV Errors (CSV001-CSV004)
	// =========================================================================
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The catalog is empty",
			Action:  "Upload a CSV file with at least one pack row",
			Code:    "CSV001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The catalog is not a valid CSV file",
			Action:  "Check the file for unbalanced quotes",
			Code:    "CSV002",
		},
	},
	{
		pattern: "no columns recognized",
		msg: UserMessage{
			Message: "No name or URL column could be recognized",
			Action:  "Add a header row such as Name,URL,Updated",
			Code:    "CSV003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to import",
			Code:    "CSV004",
		},
	},

	// =========================================================================
	// Import Errors (IMP001-IMP006)
	// =========================================================================
	{
		pattern: "too many imports",
		msg: UserMessage{
			Message: "System is busy processing other imports",
			Action:  "Please wait a moment and try again",
			Code:    "IMP001",
		},
	},
	{
		pattern: "import not found",
		msg: UserMessage{
			Message: "Import not found",
			Action:  "Check the import ID or run the import again",
			Code:    "IMP002",
		},
	},
	{
		pattern: "pack not found",
		msg: UserMessage{
			Message: "Pack not found",
			Action:  "Check the pack ID",
			Code:    "IMP003",
		},
	},
	{
		pattern: "too many downloads",
		msg: UserMessage{
			Message: "System is busy with other downloads",
			Action:  "Please wait a moment and try again",
			Code:    "IMP004",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "IMP005",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller catalog or try again later",
			Code:    "IMP006",
		},
	},

	// =========================================================================
	// Database Errors (DB001-DB004)
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Run the import again",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced import does not exist",
			Action:  "Run the import again",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB003",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB004",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ002)
	// =========================================================================
	{
		pattern: "invalid id",
		msg: UserMessage{
			Message: "The ID in the address is not valid",
			Action:  "Check the link you followed",
			Code:    "REQ001",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request body could not be read",
			Action:  `Send JSON such as {"url": "https://example.com/catalog.csv"}`,
			Code:    "REQ002",
		},
	},

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

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. If no
// pattern matches, the ERR000 fallback is returned.
//
// Example:
//
//	msg := MapError(fmt.Errorf("import: %w", ErrTooManyImports))
//	// msg.Code == "IMP001"
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

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a specific pattern rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error, kept for logging, with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
