// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/UNO-SOFT/xlsxedit"
	"github.com/UNO-SOFT/xlsxedit/cellref"
	"github.com/UNO-SOFT/xlsxedit/internal/ooxml"
)

// MaxTableNameLength is the longest table name the spreadsheet applications accept.
const MaxTableNameLength = 255

// rcName matches names that read as R1C1 references.
var rcName = regexp.MustCompile(`(?i)^(r[0-9]*)?(c[0-9]*)?$`)

// ValidateTableName checks a table name: a letter, '_' or '\' first, then
// letters, digits, '_', '.' and '\', and not readable as a cell reference.
func ValidateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("empty name: %w", xlsxedit.ErrInvalidTableName)
	}
	if utf8.RuneCountInString(name) > MaxTableNameLength {
		return fmt.Errorf("%q is longer than %d characters: %w", name, MaxTableNameLength, xlsxedit.ErrInvalidTableName)
	}
	for i, r := range name {
		switch {
		case r == utf8.RuneError:
		case unicode.IsLetter(r) || r == '_' || r == '\\':
			continue
		case i > 0 && (unicode.IsDigit(r) || r == '.'):
			continue
		}
		return fmt.Errorf("%q: character %q at %d: %w", name, r, i, xlsxedit.ErrInvalidTableName)
	}
	if _, _, err := cellref.ParseAddress(name); err == nil || rcName.MatchString(name) {
		return fmt.Errorf("%q is a cell reference: %w", name, xlsxedit.ErrInvalidTableName)
	}
	return nil
}

// AddTable turns the range ref of the named worksheet into a table.
// The first row of the range is the header: the column names are its
// values, "ColumnN" for an empty cell and a numeric suffix for a repeated
// name, and the header cells are rewritten to match as strings.
func (wb *Workbook) AddTable(sheetName, name, ref string) error {
	sh, err := wb.Sheet(sheetName)
	if err != nil {
		return err
	}
	if !sh.IsWorksheet() {
		return fmt.Errorf("%q: %w", sheetName, xlsxedit.ErrNotWorksheet)
	}
	if err = ValidateTableName(name); err != nil {
		return err
	}
	rng, err := cellref.ParseRange(ref)
	if err != nil {
		return fmt.Errorf("table %q: %w", name, err)
	}
	tables, err := wb.tables()
	if err != nil {
		return err
	}
	rels, err := sh.relationships()
	if err != nil {
		return err
	}
	var id int
	for _, t := range tables {
		if strings.EqualFold(t.Name, name) {
			return fmt.Errorf("%q: %w", name, xlsxedit.ErrDuplicateTableName)
		}
		id = max(id, t.ID)
	}
	for _, r := range rels.Relationships {
		if r.Type != ooxml.RelTable || r.TargetMode == "External" {
			continue
		}
		t, ok := tables[ooxml.ResolveTarget(sh.part, r.Target)]
		if !ok {
			continue
		}
		if other, err := cellref.ParseRange(t.Ref); err == nil && overlaps(rng, other) {
			return fmt.Errorf("%q and %q: %w", name, t.Name, xlsxedit.ErrTableOverlap)
		}
	}
	columns, err := sh.tableColumns(rng)
	if err != nil {
		return err
	}

	var part string
	for n := 1; ; n++ {
		part = path.Join(path.Dir(wb.part), "tables", "table"+strconv.Itoa(n)+".xml")
		if _, ok := wb.newTables[part]; !ok && !wb.arc.Has(part) {
			break
		}
	}
	relID := rels.Add(ooxml.RelTable, ooxml.RelativeTarget(sh.part, part))
	src, err := ooxml.AddTablePart(sh.src, relID)
	if err != nil {
		rels.Remove(relID)
		return xlsxedit.NewParseError(sh.part, err)
	}
	for i, col := range columns {
		c := sh.cell(rng.FromRow, rng.FromCol+i)
		if v, _ := c.Value(); v == col && (c.kind == KindSharedString || c.kind == KindInlineString) {
			continue
		}
		if err = c.SetString(col); err != nil {
			return err
		}
	}
	sh.src, sh.dirty, sh.relsDirty = src, true, true

	if wb.newTables == nil {
		wb.newTables = make(map[string][]byte)
	}
	wb.newTables[part] = ooxml.EncodeTable(ooxml.Table{ID: id + 1, Name: name, Ref: rng.String(), Columns: columns})
	wb.contentTypes.SetOverride(part, ooxml.MimeTable)
	wb.typesDirty = true
	wb.logger.Debug("add table", "sheet", sh.Name(), "name", name, "ref", rng.String(), "part", part)
	return nil
}

// tables returns the table parts of the package by part name.
func (wb *Workbook) tables() (map[string]ooxml.Table, error) {
	tables := make(map[string]ooxml.Table)
	for _, o := range wb.contentTypes.Overrides {
		if o.ContentType != ooxml.MimeTable {
			continue
		}
		part := strings.TrimPrefix(o.PartName, "/")
		src, ok := wb.newTables[part]
		if !ok {
			if wb.removed[part] || !wb.arc.Has(part) {
				continue
			}
			var err error
			if src, err = wb.arc.Read(part); err != nil {
				return nil, xlsxedit.NewParseError(part, err)
			}
		}
		t, err := ooxml.DecodeTable(src)
		if err != nil {
			return nil, xlsxedit.NewParseError(part, err)
		}
		tables[part] = t
	}
	return tables, nil
}

// removeTables drops the table parts related to sh.
func (wb *Workbook) removeTables(sh *Sheet) {
	rels, err := sh.relationships()
	if err != nil {
		wb.logger.Warn("sheet relationships", "sheet", sh.Name(), "error", err)
		return
	}
	for _, r := range rels.Relationships {
		if r.Type != ooxml.RelTable || r.TargetMode == "External" {
			continue
		}
		part := ooxml.ResolveTarget(sh.part, r.Target)
		wb.contentTypes.RemoveOverride(part)
		wb.removePart(part)
		delete(wb.newTables, part)
	}
}

// relationships returns the relationships of the sheet part, empty when
// it has none yet.
func (sh *Sheet) relationships() (*ooxml.Relationships, error) {
	if sh.rels != nil {
		return sh.rels, nil
	}
	part := ooxml.RelsPart(sh.part)
	if !sh.wb.arc.Has(part) || sh.wb.removed[part] {
		sh.rels = &ooxml.Relationships{}
		return sh.rels, nil
	}
	b, err := sh.wb.arc.Read(part)
	if err != nil {
		return nil, xlsxedit.NewParseError(part, err)
	}
	if sh.rels, err = ooxml.DecodeRelationships(b); err != nil {
		return nil, xlsxedit.NewParseError(part, err)
	}
	return sh.rels, nil
}

// tableColumns returns the column names of a table over rng.
func (sh *Sheet) tableColumns(rng cellref.Range) ([]string, error) {
	names := make([]string, 0, rng.ToCol-rng.FromCol+1)
	seen := make(map[string]bool, cap(names))
	for col := rng.FromCol; col <= rng.ToCol; col++ {
		var v string
		if c := sh.cells[coord{rng.FromRow, col}]; c != nil {
			var err error
			if v, err = c.Value(); err != nil {
				return nil, err
			}
			v = ooxml.DropIllegal(v)
		}
		if v == "" {
			v = "Column" + strconv.Itoa(col-rng.FromCol+1)
		}
		name := v
		for n := 2; seen[strings.ToLower(name)]; n++ {
			name = v + strconv.Itoa(n)
		}
		seen[strings.ToLower(name)] = true
		names = append(names, name)
	}
	return names, nil
}

func overlaps(a, b cellref.Range) bool {
	return a.FromRow <= b.ToRow && b.FromRow <= a.ToRow && a.FromCol <= b.ToCol && b.FromCol <= a.ToCol
}
