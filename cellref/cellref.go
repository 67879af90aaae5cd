// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package cellref converts between A1-style cell addresses and
// 1-based (row, column) coordinates.
package cellref

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/UNO-SOFT/xlsxedit"
)

const (
	// MaxRows is the number of rows a worksheet can hold.
	MaxRows = 1_048_576
	// MaxColumns is the number of columns a worksheet can hold ("XFD").
	MaxColumns = 16_384

	maxColumnLetters = 3
)

// ColumnName returns the bijective base-26 letters of col: 1 is "A", 27 is "AA".
func ColumnName(col int) (string, error) {
	if col < 1 || col > MaxColumns {
		return "", fmt.Errorf("column %d: %w", col, xlsxedit.ErrInvalidAddress)
	}
	return columnName(col), nil
}

func columnName(col int) string {
	var buf [maxColumnLetters]byte
	i := len(buf)
	for col > 0 {
		col--
		i--
		buf[i] = byte('A' + col%26)
		col /= 26
	}
	return string(buf[i:])
}

// ColumnNumber is the inverse of ColumnName. Letters are case-insensitive.
func ColumnNumber(name string) (int, error) {
	if name == "" || len(name) > maxColumnLetters {
		return 0, fmt.Errorf("column %q: %w", name, xlsxedit.ErrInvalidAddress)
	}
	var col int
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case 'A' <= c && c <= 'Z':
		case 'a' <= c && c <= 'z':
			c -= 'a' - 'A'
		default:
			return 0, fmt.Errorf("column %q: %w", name, xlsxedit.ErrInvalidAddress)
		}
		col = col*26 + int(c-'A'+1)
	}
	if col > MaxColumns {
		return 0, fmt.Errorf("column %q beyond %s: %w", name, columnName(MaxColumns), xlsxedit.ErrInvalidAddress)
	}
	return col, nil
}

// ParseAddress parses "B2" into row 2, column 2.
func ParseAddress(address string) (row, col int, err error) {
	i := 0
	for i < len(address) && isLetter(address[i]) {
		i++
	}
	letters, digits := address[:i], address[i:]
	if letters == "" || digits == "" || digits[0] == '0' {
		return 0, 0, fmt.Errorf("%q: %w", address, xlsxedit.ErrInvalidAddress)
	}
	for j := 0; j < len(digits); j++ {
		if digits[j] < '0' || '9' < digits[j] {
			return 0, 0, fmt.Errorf("%q: %w", address, xlsxedit.ErrInvalidAddress)
		}
	}
	if col, err = ColumnNumber(letters); err != nil {
		return 0, 0, fmt.Errorf("%q: %w", address, xlsxedit.ErrInvalidAddress)
	}
	if len(digits) > 7 {
		return 0, 0, fmt.Errorf("%q: row beyond %d: %w", address, MaxRows, xlsxedit.ErrInvalidAddress)
	}
	if row, err = strconv.Atoi(digits); err != nil || row > MaxRows {
		return 0, 0, fmt.Errorf("%q: row beyond %d: %w", address, MaxRows, xlsxedit.ErrInvalidAddress)
	}
	return row, col, nil
}

// FormatAddress is the inverse of ParseAddress.
func FormatAddress(row, col int) (string, error) {
	if row < 1 || row > MaxRows {
		return "", fmt.Errorf("row %d: %w", row, xlsxedit.ErrInvalidAddress)
	}
	name, err := ColumnName(col)
	if err != nil {
		return "", err
	}
	return name + strconv.Itoa(row), nil
}

// MustFormat is FormatAddress for coordinates already known to be valid.
func MustFormat(row, col int) string {
	s, err := FormatAddress(row, col)
	if err != nil {
		panic(err)
	}
	return s
}

// Canonical returns the upper-cased form of a valid address.
func Canonical(address string) (string, error) {
	row, col, err := ParseAddress(address)
	if err != nil {
		return "", err
	}
	return FormatAddress(row, col)
}

// Range is an inclusive rectangle of cells.
type Range struct {
	FromRow, FromCol int
	ToRow, ToCol     int
}

// ParseRange parses "A1:C3"; a single address is a one-cell range.
// The corners are normalized so From is the top-left one.
func ParseRange(s string) (Range, error) {
	from, to, found := strings.Cut(s, ":")
	r1, c1, err := ParseAddress(from)
	if err != nil {
		return Range{}, err
	}
	r2, c2 := r1, c1
	if found {
		if r2, c2, err = ParseAddress(to); err != nil {
			return Range{}, err
		}
	}
	return Range{
		FromRow: min(r1, r2), FromCol: min(c1, c2),
		ToRow: max(r1, r2), ToCol: max(c1, c2),
	}, nil
}

// String formats the range as "A1:C3", or "A1" for a single cell.
func (r Range) String() string {
	from := MustFormat(r.FromRow, r.FromCol)
	if r.FromRow == r.ToRow && r.FromCol == r.ToCol {
		return from
	}
	return from + ":" + MustFormat(r.ToRow, r.ToCol)
}

// Contains reports whether (row, col) is inside the range.
func (r Range) Contains(row, col int) bool {
	return r.FromRow <= row && row <= r.ToRow && r.FromCol <= col && col <= r.ToCol
}

func isLetter(c byte) bool { return 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' }
