// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsxedit

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptArchive is returned when the container is not a readable ZIP,
	// or lacks the mandatory [Content_Types].xml part.
	ErrCorruptArchive = errors.New("corrupt archive")
	// ErrUnsupportedFormat is returned for a readable package that is not a spreadsheet.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrStructuralParse is the kind of every *ParseError.
	ErrStructuralParse = errors.New("structural parse error")
	ErrSheetNotFound   = errors.New("sheet not found")
	// ErrDuplicateSheetName is returned when a sheet name is already taken.
	// Names are compared case-insensitively.
	ErrDuplicateSheetName = errors.New("duplicate sheet name")
	ErrInvalidSheetName   = errors.New("invalid sheet name")
	ErrInvalidAddress     = errors.New("invalid cell address")
	// ErrIndexOutOfRange means a cell references a shared string or style
	// that does not exist: the document is corrupt or was edited by hand.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrNotWorksheet is returned when writing cells of a chartsheet.
	ErrNotWorksheet = errors.New("not a worksheet")
	// ErrLastSheet is returned when removing the only sheet of a workbook.
	ErrLastSheet   = errors.New("cannot remove the last sheet")
	ErrTooManyRows = errors.New("too many rows")
	// ErrInvalidTableName is returned for a table name that is empty, too
	// long, looks like a cell reference or has characters other than
	// letters, digits, '_', '.' and '\'.
	ErrInvalidTableName = errors.New("invalid table name")
	// ErrDuplicateTableName is returned when a table name is already taken
	// anywhere in the workbook. Names are compared case-insensitively.
	ErrDuplicateTableName = errors.New("duplicate table name")
	// ErrTableOverlap is returned when a new table would overlap a table of the same sheet.
	ErrTableOverlap = errors.New("table overlaps another table")
)

// ParseError reports a required part whose XML does not have the expected shape.
type ParseError struct {
	Part string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Part, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStructuralParse) true for every ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrStructuralParse }

// NewParseError returns a *ParseError for the named part.
func NewParseError(part string, err error) *ParseError {
	return &ParseError{Part: part, Err: err}
}
