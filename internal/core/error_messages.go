package core

// error_messages.go maps technical errors to user-facing messages with a
// support code.
//
// # Error Codes Reference
//
// Validation (VAL):
//
//	VAL001 - The file has no header row             ("missing header row")
//	VAL002 - A configured column header is missing  ("missing header")
//	VAL003 - A required value is empty              ("required value is missing")
//	VAL004 - A value has the wrong type             ("invalid data type")
//	VAL005 - A value is not in the allowed list     ("not in allowed list")
//	VAL006 - The file did not pass validation       ("validation failed")
//
// File (FILE):
//
//	FILE001 - File exceeds the size limit           ("file too large")
//	FILE002 - Legacy .xls workbook                  ("unsupported workbook format")
//	FILE003 - Workbook has no sheet                 ("no sheet found")
//	FILE004 - Workbook cannot be opened             ("unable to open workbook")
//	FILE005 - Malformed CSV                         ("invalid csv")
//	FILE006 - No file in the request                ("no file provided")
//	FILE007 - Zero-byte upload                      ("empty file")
//
// Upload (UPL):
//
//	UPL001 - All upload slots busy                  ("too many concurrent uploads")
//	UPL002 - Unknown upload id                      ("upload not found")
//	UPL003 - Request cancelled                      ("context canceled")
//	UPL004 - Request timed out                      ("context deadline exceeded")
//
// Configuration (CFG):
//
//	CFG001 - Partner configuration is invalid       ("schema:")
//	CFG002 - Configuration does not exist           ("config not found")
//	CFG003 - Partner does not exist                 ("partner not found")
//	CFG004 - Configuration service unreachable      ("config service")
//	CFG005 - Partner service unreachable            ("partner service")
//
// Database (DB):
//
//	DB001 - Connection refused                      ("connection refused")
//	DB002 - Connection reset                        ("connection reset")
//	DB003 - Timeout                                 ("timeout")
//	DB004 - Deadlock                                ("deadlock")
//
// Rate limiting: RATE001 ("rate limit"). Fallback: ERR000.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns precede general ones.

import "strings"

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Validation
	{"missing header row", UserMessage{"The file has no header row", "Add a header row with the configured column names", "VAL001"}},
	{"missing header", UserMessage{"A configured column header is missing", "Check that the header row matches the partner configuration", "VAL002"}},
	{"required value is missing", UserMessage{"A required value is empty", "Fill in every required column", "VAL003"}},
	{"invalid data type", UserMessage{"A value has the wrong type", "Use plain numbers and dates like 31/01/2024", "VAL004"}},
	{"not in allowed list", UserMessage{"A value is not in the allowed list", "Check the allowed values for this column", "VAL005"}},
	{"validation failed", UserMessage{"The file did not pass validation", "Review the listed errors and upload a corrected file", "VAL006"}},

	// File
	{"file too large", UserMessage{"File exceeds the maximum size", "Split the file into smaller files", "FILE001"}},
	{"unsupported workbook format", UserMessage{"Legacy .xls workbooks are not supported", "Save the file as .xlsx and upload again", "FILE002"}},
	{"no sheet found", UserMessage{"The workbook has no sheet", "Upload a workbook with data on the first sheet", "FILE003"}},
	{"unable to open workbook", UserMessage{"The file could not be read", "Upload an .xlsx or .csv file", "FILE004"}},
	{"invalid csv", UserMessage{"The file is not valid CSV", "Ensure the file is comma-separated with balanced quotes", "FILE005"}},
	{"no file provided", UserMessage{"No file was selected", "Choose a file to upload", "FILE006"}},
	{"empty file", UserMessage{"The uploaded file is empty", "Upload a file with a header row and data rows", "FILE007"}},

	// Upload
	{"too many concurrent uploads", UserMessage{"The system is busy", "Please wait a moment and try again", "UPL001"}},
	{"upload not found", UserMessage{"Upload not found", "Check the upload id", "UPL002"}},
	{"context canceled", UserMessage{"The request was cancelled", "Please try again", "UPL003"}},
	{"context deadline exceeded", UserMessage{"The request timed out", "Try a smaller file or try again later", "UPL004"}},

	// Configuration
	{"schema:", UserMessage{"The partner configuration is invalid", "Ask the configuration owner to fix the column mappings", "CFG001"}},
	{"config not found", UserMessage{"Configuration not found", "Check the partner and configuration ids", "CFG002"}},
	{"partner not found", UserMessage{"Partner not found", "Check the partner id", "CFG003"}},
	{"config service", UserMessage{"The configuration service is unavailable", "Please try again in a few moments", "CFG004"}},
	{"partner service", UserMessage{"The partner service is unavailable", "Please try again in a few moments", "CFG005"}},

	// Database
	{"connection refused", UserMessage{"Unable to connect to the database", "Please try again in a few moments", "DB001"}},
	{"connection reset", UserMessage{"The database connection was interrupted", "Please try again", "DB002"}},
	{"timeout", UserMessage{"Operation timed out", "Please try again later", "DB003"}},
	{"deadlock", UserMessage{"The database was busy", "Please try again", "DB004"}},

	// Rate limiting
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

// defaultMessage is returned when no pattern matches. Support should check the
// logs for the technical error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A nil error maps to the zero UserMessage.
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

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
