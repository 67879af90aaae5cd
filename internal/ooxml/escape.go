// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package ooxml

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Characters XML 1.0 cannot carry are stored as _xHHHH_, and a literal
// "_xHHHH_" gets its underscore escaped as _x005F_.

// EscapeString applies the _xHHHH_ escaping to s.
func EscapeString(s string) string {
	i := strings.IndexFunc(s, func(r rune) bool { return r == '_' || !isXMLChar(r) })
	if i < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	b.WriteString(s[:i])
	for j, r := range s[i:] {
		switch {
		case r == '_' && isEscapeSeq(s[i+j:]):
			b.WriteString("_x005F_")
		case !isXMLChar(r):
			fmt.Fprintf(&b, "_x%04X_", r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UnescapeString reverses EscapeString.
func UnescapeString(s string) string {
	i := strings.Index(s, "_x")
	if i < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i >= 0 {
		b.WriteString(s[:i])
		s = s[i:]
		if isEscapeSeq(s) {
			n, _ := strconv.ParseUint(s[2:6], 16, 16)
			b.WriteRune(rune(n))
			s = s[7:]
		} else {
			b.WriteString("_x")
			s = s[2:]
		}
		i = strings.Index(s, "_x")
	}
	b.WriteString(s)
	return b.String()
}

// DropIllegal removes the characters XML 1.0 cannot carry from s.
// Invalid UTF-8 becomes U+FFFD.
func DropIllegal(s string) string {
	if utf8.ValidString(s) && strings.IndexFunc(s, func(r rune) bool { return !isXMLChar(r) }) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return -1
	}, s)
}

func isEscapeSeq(s string) bool {
	if len(s) < 7 || s[0] != '_' || s[1] != 'x' || s[6] != '_' {
		return false
	}
	for i := 2; i < 6; i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}

func isXMLChar(r rune) bool {
	switch {
	case r == '\t' || r == '\n' || r == '\r':
		return true
	case r < 0x20:
		return false
	case r == 0xFFFE || r == 0xFFFF:
		return false
	case 0xD800 <= r && r <= 0xDFFF:
		return false
	}
	return true
}
