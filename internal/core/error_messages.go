package core

// # Error Codes Reference
//
// Operator-facing messages with codes, so a failed run can be reported as
// "FILE004" instead of a wrapped error chain.
//
//	FILE001 - Input not found: the spreadsheet path does not exist
//	          Action: Check SITEREG_INPUT or --input
//	FILE002 - Unsupported format: extension is not .xlsx/.xlsm/.xltx/.csv
//	          Action: Export the sheet as .xlsx or .csv
//	FILE003 - Unreadable input: the workbook or CSV could not be parsed
//	          Action: Re-export the file and try again
//	FILE004 - Sheet not found: the requested worksheet does not exist
//	          Action: Check SITEREG_SHEET or --sheet
//	FILE005 - Empty input: the sheet has no header row
//	          Action: Make sure the first row holds the column names
//	FILE006 - Permission denied: a file could not be opened
//	          Action: Check file permissions
//	VAL004  - Missing column: a required column is not in the header
//	          Action: Compare the header with the expected columns
//	OUT001  - Write failed: the SQL script or CSV could not be written
//	          Action: Check the output directory exists and is writable
//	CFG001  - Invalid configuration
//	          Action: Fix the reported settings
//	RUN001  - Cancelled: the run was interrupted
//	          Action: Re-run; outputs may be incomplete
//	ERR000  - Unknown error
//	          Action: Check the log for the technical error
//
// Matching walks the error chain with errors.Is; the first entry that
// matches wins, so more specific sentinels come first.

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

// Sentinel errors wrapped by the loader, validation and pipeline.
var (
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrUnreadableInput   = errors.New("unreadable input")
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrNoHeader          = errors.New("no header row")
	ErrMissingColumns    = errors.New("missing required columns")
	ErrWriteOutput       = errors.New("write output")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// UserMessage provides operator-friendly error information with guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorMapping struct {
	target error
	msg    UserMessage
}

var errorMappings = []errorMapping{
	{
		target: ErrUnsupportedFormat,
		msg: UserMessage{
			Message: "Input file format is not supported",
			Action:  "Export the sheet as .xlsx or .csv",
			Code:    "FILE002",
		},
	},
	{
		target: ErrSheetNotFound,
		msg: UserMessage{
			Message: "Worksheet not found in workbook",
			Action:  "Check SITEREG_SHEET or --sheet",
			Code:    "FILE004",
		},
	},
	{
		target: ErrNoHeader,
		msg: UserMessage{
			Message: "Input has no header row",
			Action:  "Make sure the first row holds the column names",
			Code:    "FILE005",
		},
	},
	{
		target: ErrUnreadableInput,
		msg: UserMessage{
			Message: "Input file could not be read",
			Action:  "Re-export the file and try again",
			Code:    "FILE003",
		},
	},
	{
		target: ErrMissingColumns,
		msg: UserMessage{
			Message: "Required column is missing from the input",
			Action:  "Compare the header with the expected columns",
			Code:    "VAL004",
		},
	},
	{
		target: ErrWriteOutput,
		msg: UserMessage{
			Message: "Output file could not be written",
			Action:  "Check the output directory exists and is writable",
			Code:    "OUT001",
		},
	},
	{
		target: ErrInvalidConfig,
		msg: UserMessage{
			Message: "Configuration is invalid",
			Action:  "Fix the reported settings",
			Code:    "CFG001",
		},
	},
	{
		target: fs.ErrNotExist,
		msg: UserMessage{
			Message: "Input file not found",
			Action:  "Check SITEREG_INPUT or --input",
			Code:    "FILE001",
		},
	},
	{
		target: fs.ErrPermission,
		msg: UserMessage{
			Message: "Permission denied",
			Action:  "Check file permissions",
			Code:    "FILE006",
		},
	},
	{
		target: context.Canceled,
		msg: UserMessage{
			Message: "Run was cancelled",
			Action:  "Re-run; outputs may be incomplete",
			Code:    "RUN001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the log for the technical error",
	Code:    "ERR000",
}

// MapError converts an error chain to an operator-friendly message.
// Returns an empty UserMessage for nil errors.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.msg
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
