// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"fmt"

	"github.com/UNO-SOFT/xlsxedit"
	"github.com/UNO-SOFT/xlsxedit/internal/ooxml"
)

// SharedStrings is the workbook-wide table of cell strings.
// It is append-only: an index, once assigned, keeps its text.
type SharedStrings struct {
	part  string
	src   []byte
	items []ooxml.SharedString
	// index maps plain (not rich text) entries to their first position.
	index map[string]int
	// from is the number of entries read from the file.
	from int
	// err is why the part could not be read; such a table is never
	// written back, as cells may refer to its lost entries.
	err error
}

func newSharedStrings(part string, src []byte, items []ooxml.SharedString) *SharedStrings {
	t := &SharedStrings{part: part, src: src, items: items, from: len(items), index: make(map[string]int, len(items))}
	for i, item := range items {
		if item.Rich {
			continue
		}
		if _, ok := t.index[item.Text]; !ok {
			t.index[item.Text] = i
		}
	}
	return t
}

// Intern returns the index of text, appending it if it is not in the table yet.
func (t *SharedStrings) Intern(text string) int {
	if i, ok := t.index[text]; ok {
		return i
	}
	i := len(t.items)
	t.items = append(t.items, ooxml.SharedString{Text: text})
	t.index[text] = i
	return i
}

// Resolve returns the text at index i; rich text runs are concatenated.
func (t *SharedStrings) Resolve(i int) (string, error) {
	if i < 0 || i >= len(t.items) {
		return "", fmt.Errorf("shared string %d of %d: %w", i, len(t.items), xlsxedit.ErrIndexOutOfRange)
	}
	return t.items[i].Text, nil
}

// Len returns the number of entries.
func (t *SharedStrings) Len() int { return len(t.items) }

func (t *SharedStrings) dirty() bool { return len(t.items) > t.from }
