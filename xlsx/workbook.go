// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package xlsx reads, edits and writes SpreadsheetML (.xlsx) workbooks.
//
// A loaded Workbook keeps the original archive: saving regenerates only the
// parts that changed, and inside them only the elements that changed, so
// everything this package does not model (charts, images, macros, data
// validations, ...) survives a load/save cycle byte for byte.
//
// A Workbook is not safe for concurrent use.
package xlsx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/UNO-SOFT/xlsxedit"
	"github.com/UNO-SOFT/xlsxedit/internal/archive"
	"github.com/UNO-SOFT/xlsxedit/internal/ooxml"
)

var spreadsheetTypes = []string{
	ooxml.MimeWorkbook, ooxml.MimeWorkbookMacro,
	ooxml.MimeTemplate, ooxml.MimeTemplateMacro,
}

// MaxSheetNameLength is the longest sheet name the spreadsheet applications accept.
const MaxSheetNameLength = 31

// Workbook is an open spreadsheet document.
type Workbook struct {
	logger *slog.Logger
	path   string
	arc    *archive.Archive

	contentTypes *ooxml.ContentTypes
	part         string
	src          []byte
	rels         *ooxml.Relationships
	sheets       []*Sheet
	sst          *SharedStrings
	styles       *Styles
	removed      map[string]bool
	// newTables holds the table parts added since loading.
	newTables map[string][]byte

	sheetList, relsDirty, typesDirty bool
}

// Load parses a workbook from the bytes of an .xlsx (or .xlsm) file.
func Load(data []byte, opts Options) (*Workbook, error) {
	arc, err := archive.Open(data)
	if err != nil {
		return nil, err
	}
	wb := &Workbook{logger: opts.logger(), arc: arc}
	if err = wb.load(); err != nil {
		return nil, err
	}
	return wb, nil
}

// Open reads the whole of r and loads it.
func Open(r io.Reader, opts Options) (*Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Load(data, opts)
}

// OpenFile loads the named file. Save writes back to it.
func OpenFile(fileName string, opts Options) (*Workbook, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	wb, err := Load(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fileName, err)
	}
	wb.path = fileName
	return wb, nil
}

// New returns a workbook with one empty sheet named "Sheet1".
func New(opts Options) *Workbook {
	order, parts := ooxml.DefaultPackage()
	data, err := archive.New(order, parts)
	if err == nil {
		var wb *Workbook
		if wb, err = Load(data, opts); err == nil {
			return wb
		}
	}
	panic(fmt.Errorf("default package: %w", err))
}

func (wb *Workbook) load() error {
	b, err := wb.arc.Read(archive.ContentTypesPart)
	if err != nil {
		return err
	}
	if wb.contentTypes, err = ooxml.DecodeContentTypes(b); err != nil {
		return xlsxedit.NewParseError(archive.ContentTypesPart, err)
	}
	if wb.part, err = wb.officeDocument(); err != nil {
		return err
	}
	if typ := wb.contentTypes.TypeOf(wb.part); !slices.Contains(spreadsheetTypes, typ) {
		return fmt.Errorf("%s has content type %q: %w", wb.part, typ, xlsxedit.ErrUnsupportedFormat)
	}
	if wb.src, err = wb.arc.Read(wb.part); err != nil {
		return err
	}
	relsPart := ooxml.RelsPart(wb.part)
	if b, err = wb.arc.Read(relsPart); err != nil {
		return xlsxedit.NewParseError(relsPart, err)
	}
	if wb.rels, err = ooxml.DecodeRelationships(b); err != nil {
		return xlsxedit.NewParseError(relsPart, err)
	}
	decoded, err := ooxml.DecodeWorkbook(wb.src)
	if err != nil {
		return xlsxedit.NewParseError(wb.part, err)
	}
	wb.logger.Debug("load workbook", "part", wb.part, "sheets", len(decoded.Sheets))

	wb.sst = wb.loadSharedStrings()
	wb.styles = wb.loadStyles()
	wb.sheets = make([]*Sheet, 0, len(decoded.Sheets))
	for _, e := range decoded.Sheets {
		sh, err := wb.loadSheet(e)
		if err != nil {
			return err
		}
		wb.sheets = append(wb.sheets, sh)
	}
	return nil
}

// officeDocument returns the workbook part named by the package relationships.
func (wb *Workbook) officeDocument() (string, error) {
	const fallback = "xl/workbook.xml"
	b, err := wb.arc.Read(ooxml.PartRootRels)
	if err != nil {
		wb.logger.Debug("no package relationships", "error", err)
	} else if rels, err := ooxml.DecodeRelationships(b); err != nil {
		wb.logger.Warn("malformed package relationships", "part", ooxml.PartRootRels, "error", err)
	} else {
		r, ok := rels.ByType(ooxml.RelOfficeDocument)
		if !ok {
			return "", fmt.Errorf("no office document relationship: %w", xlsxedit.ErrUnsupportedFormat)
		}
		part := ooxml.ResolveTarget("", r.Target)
		if !wb.arc.Has(part) {
			return "", fmt.Errorf("office document %s is missing: %w", part, xlsxedit.ErrUnsupportedFormat)
		}
		return part, nil
	}
	if !wb.arc.Has(fallback) {
		return "", fmt.Errorf("no %s: %w", fallback, xlsxedit.ErrUnsupportedFormat)
	}
	return fallback, nil
}

func (wb *Workbook) loadSharedStrings() *SharedStrings {
	r, ok := wb.rels.ByType(ooxml.RelSharedStrings)
	if !ok {
		return newSharedStrings("", nil, nil)
	}
	part := ooxml.ResolveTarget(wb.part, r.Target)
	src, err := wb.arc.Read(part)
	if err != nil {
		wb.logger.Warn("shared strings", "part", part, "error", err)
		t := newSharedStrings(part, nil, nil)
		t.err = err
		return t
	}
	items, err := ooxml.DecodeSharedStrings(src)
	if err != nil {
		wb.logger.Warn("malformed shared strings", "part", part, "error", err)
		t := newSharedStrings(part, nil, nil)
		t.err = err
		return t
	}
	wb.logger.Debug("load shared strings", "part", part, "count", len(items))
	return newSharedStrings(part, src, items)
}

func (wb *Workbook) loadStyles() *Styles {
	defaults := func(part string, err error) *Styles {
		src, ss := defaultStyleSheet()
		t := newStyles(part, src, ss)
		t.err = err
		return t
	}
	r, ok := wb.rels.ByType(ooxml.RelStyles)
	if !ok {
		return defaults("", nil)
	}
	part := ooxml.ResolveTarget(wb.part, r.Target)
	src, err := wb.arc.Read(part)
	if err != nil {
		wb.logger.Warn("styles", "part", part, "error", err)
		return defaults(part, err)
	}
	ss, err := ooxml.DecodeStyles(src)
	if err != nil {
		wb.logger.Warn("malformed styles", "part", part, "error", err)
		return defaults(part, err)
	}
	wb.logger.Debug("load styles", "part", part, "cellXfs", len(ss.CellXfs))
	return newStyles(part, src, ss)
}

func (wb *Workbook) loadSheet(e ooxml.SheetEntry) (*Sheet, error) {
	r, ok := wb.rels.ByID(e.RelID)
	if !ok {
		return nil, xlsxedit.NewParseError(ooxml.RelsPart(wb.part),
			fmt.Errorf("sheet %q: no relationship %q", e.Name, e.RelID))
	}
	part := ooxml.ResolveTarget(wb.part, r.Target)
	src, err := wb.arc.Read(part)
	if err != nil {
		return nil, xlsxedit.NewParseError(part, err)
	}
	ws, err := ooxml.DecodeWorksheet(src)
	if err != nil {
		return nil, xlsxedit.NewParseError(part, err)
	}
	wb.logger.Debug("load sheet", "name", e.Name, "part", part, "kind", ws.Kind, "rows", len(ws.Rows))
	sh := newSheet(wb, e, part, src, ws.Kind)
	if err = sh.fill(ws.Rows); err != nil {
		return nil, xlsxedit.NewParseError(part, err)
	}
	return sh, nil
}

// SharedStrings returns the shared string table.
func (wb *Workbook) SharedStrings() *SharedStrings { return wb.sst }

// Styles returns the cell format table.
func (wb *Workbook) Styles() *Styles { return wb.styles }

// SheetNames returns the names of the sheets in display order.
func (wb *Workbook) SheetNames() []string {
	names := make([]string, len(wb.sheets))
	for i, sh := range wb.sheets {
		names[i] = sh.entry.Name
	}
	return names
}

// Sheets returns the sheets in display order.
func (wb *Workbook) Sheets() []*Sheet { return slices.Clone(wb.sheets) }

// SheetIndex returns the position of the named sheet, or -1.
// Names are matched case-insensitively.
func (wb *Workbook) SheetIndex(name string) int {
	return slices.IndexFunc(wb.sheets, func(sh *Sheet) bool { return strings.EqualFold(sh.entry.Name, name) })
}

// HasSheet reports whether the workbook has a sheet with the given name.
func (wb *Workbook) HasSheet(name string) bool { return wb.SheetIndex(name) >= 0 }

// Sheet returns the named sheet.
func (wb *Workbook) Sheet(name string) (*Sheet, error) {
	i := wb.SheetIndex(name)
	if i < 0 {
		return nil, fmt.Errorf("%q: %w", name, xlsxedit.ErrSheetNotFound)
	}
	return wb.sheets[i], nil
}

// ValidateSheetName checks the name against the rules of the spreadsheet applications.
func ValidateSheetName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("empty name: %w", xlsxedit.ErrInvalidSheetName)
	case utf8.RuneCountInString(name) > MaxSheetNameLength:
		return fmt.Errorf("%q is longer than %d characters: %w", name, MaxSheetNameLength, xlsxedit.ErrInvalidSheetName)
	case strings.ContainsAny(name, `:\/?*[]`):
		return fmt.Errorf("%q contains one of :\\/?*[]: %w", name, xlsxedit.ErrInvalidSheetName)
	case strings.IndexFunc(name, unicode.IsControl) >= 0:
		return fmt.Errorf("%q contains a control character: %w", name, xlsxedit.ErrInvalidSheetName)
	case !utf8.ValidString(name):
		return fmt.Errorf("%q is not valid UTF-8: %w", name, xlsxedit.ErrInvalidSheetName)
	case name[0] == '\'' || name[len(name)-1] == '\'':
		return fmt.Errorf("%q starts or ends with an apostrophe: %w", name, xlsxedit.ErrInvalidSheetName)
	}
	return nil
}

// CreateSheet inserts a new empty worksheet at index, which is clamped
// into [0, len(SheetNames())].
func (wb *Workbook) CreateSheet(name string, index int) (*Sheet, error) {
	if err := ValidateSheetName(name); err != nil {
		return nil, err
	}
	if wb.HasSheet(name) {
		return nil, fmt.Errorf("%q: %w", name, xlsxedit.ErrDuplicateSheetName)
	}
	dir := path.Dir(wb.part)
	var part string
	for n := 1; ; n++ {
		part = path.Join(dir, "worksheets", "sheet"+strconv.Itoa(n)+".xml")
		if !wb.arc.Has(part) && !slices.ContainsFunc(wb.sheets, func(sh *Sheet) bool { return sh.part == part }) {
			break
		}
	}
	var sheetID int
	for _, sh := range wb.sheets {
		sheetID = max(sheetID, sh.entry.SheetID)
	}
	e := ooxml.SheetEntry{
		Name: name, SheetID: sheetID + 1, Orig: -1,
		RelID: wb.rels.Add(ooxml.RelWorksheet, ooxml.RelativeTarget(wb.part, part)),
	}
	wb.contentTypes.SetOverride(part, ooxml.MimeWorksheet)
	sh := newSheet(wb, e, part, ooxml.NewWorksheet(), "worksheet")
	sh.dirty = true

	index = min(max(index, 0), len(wb.sheets))
	wb.sheets = slices.Insert(wb.sheets, index, sh)
	wb.sheetList, wb.relsDirty, wb.typesDirty = true, true, true
	wb.logger.Debug("create sheet", "name", name, "part", part, "index", index)
	return sh, nil
}

// RenameSheet renames a sheet. References to the old name in formulas
// and defined names are not rewritten.
func (wb *Workbook) RenameSheet(oldName, newName string) error {
	sh, err := wb.Sheet(oldName)
	if err != nil {
		return err
	}
	if err = ValidateSheetName(newName); err != nil {
		return err
	}
	if i := wb.SheetIndex(newName); i >= 0 && wb.sheets[i] != sh {
		return fmt.Errorf("%q: %w", newName, xlsxedit.ErrDuplicateSheetName)
	}
	if sh.entry.Name == newName {
		return nil
	}
	sh.entry.Name = newName
	wb.sheetList = true
	return nil
}

// RemoveSheet deletes the named sheet with its part, relationships and tables.
// Names local to the sheet are dropped, and the calculation chain is
// discarded so the application rebuilds it.
func (wb *Workbook) RemoveSheet(name string) error {
	i := wb.SheetIndex(name)
	if i < 0 {
		return fmt.Errorf("%q: %w", name, xlsxedit.ErrSheetNotFound)
	}
	if len(wb.sheets) == 1 {
		return fmt.Errorf("%q: %w", name, xlsxedit.ErrLastSheet)
	}
	sh := wb.sheets[i]
	wb.removeTables(sh)
	wb.rels.Remove(sh.entry.RelID)
	wb.contentTypes.RemoveOverride(sh.part)
	wb.removePart(sh.part)
	wb.removePart(ooxml.RelsPart(sh.part))
	if r, ok := wb.rels.ByType(ooxml.RelCalcChain); ok {
		part := ooxml.ResolveTarget(wb.part, r.Target)
		wb.rels.Remove(r.ID)
		wb.contentTypes.RemoveOverride(part)
		wb.removePart(part)
	}
	wb.sheets = slices.Delete(wb.sheets, i, i+1)
	if !slices.ContainsFunc(wb.sheets, func(sh *Sheet) bool { return sh.entry.State == "" }) {
		wb.sheets[0].entry.State = ""
	}
	wb.sheetList, wb.relsDirty, wb.typesDirty = true, true, true
	wb.logger.Debug("remove sheet", "name", name, "part", sh.part)
	return nil
}

func (wb *Workbook) removePart(part string) {
	if !wb.arc.Has(part) {
		return
	}
	if wb.removed == nil {
		wb.removed = make(map[string]bool)
	}
	wb.removed[part] = true
}

// sharedStringRefs counts the cells referencing the shared string table.
func (wb *Workbook) sharedStringRefs() int {
	var n int
	for _, sh := range wb.sheets {
		for _, c := range sh.cells {
			if c.set && c.kind == KindSharedString {
				n++
			}
		}
	}
	return n
}

// parts returns the regenerated parts by name.
func (wb *Workbook) parts() (map[string][]byte, error) {
	replace := make(map[string][]byte)
	for _, sh := range wb.sheets {
		if sh.relsDirty {
			b, err := sh.rels.Encode()
			if err != nil {
				return nil, err
			}
			replace[ooxml.RelsPart(sh.part)] = b
		}
		if !sh.dirty {
			continue
		}
		b, err := sh.encode()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sh.part, err)
		}
		replace[sh.part] = b
	}
	for part, b := range wb.newTables {
		replace[part] = b
	}

	if wb.sst.dirty() {
		if wb.sst.err != nil {
			return nil, xlsxedit.NewParseError(wb.sst.part, wb.sst.err)
		}
		part := wb.materialize(&wb.sst.part, "sharedStrings.xml", ooxml.RelSharedStrings, ooxml.MimeSharedStrings)
		b, err := ooxml.EncodeSharedStrings(wb.sst.src, wb.sst.items, wb.sst.from, wb.sharedStringRefs())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", part, err)
		}
		replace[part] = b
	}
	if wb.styles.dirty() {
		if wb.styles.err != nil {
			return nil, xlsxedit.NewParseError(wb.styles.part, wb.styles.err)
		}
		part := wb.materialize(&wb.styles.part, "styles.xml", ooxml.RelStyles, ooxml.MimeStyles)
		b, err := ooxml.EncodeStyles(wb.styles.src, wb.styles.ss, wb.styles.from)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", part, err)
		}
		replace[part] = b
	}

	if wb.sheetList {
		entries := make([]ooxml.SheetEntry, len(wb.sheets))
		for i, sh := range wb.sheets {
			entries[i] = sh.entry
		}
		b, err := ooxml.EncodeWorkbook(wb.src, entries)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", wb.part, err)
		}
		replace[wb.part] = b
	}
	if wb.relsDirty {
		b, err := wb.rels.Encode()
		if err != nil {
			return nil, err
		}
		replace[ooxml.RelsPart(wb.part)] = b
	}
	if wb.typesDirty {
		b, err := wb.contentTypes.Encode()
		if err != nil {
			return nil, err
		}
		replace[archive.ContentTypesPart] = b
	}
	for name := range replace {
		wb.logger.Debug("regenerate", "part", name)
	}
	return replace, nil
}

// materialize makes sure the table part (*part, or name next to the
// workbook part) is related to the workbook and has its content type.
func (wb *Workbook) materialize(part *string, name, relType, contentType string) string {
	if *part == "" {
		*part = path.Join(path.Dir(wb.part), name)
		wb.rels.Add(relType, ooxml.RelativeTarget(wb.part, *part))
		wb.relsDirty = true
	}
	if wb.contentTypes.TypeOf(*part) != contentType {
		wb.contentTypes.SetOverride(*part, contentType)
		wb.typesDirty = true
	}
	return *part
}

// WriteTo writes the workbook as an .xlsx archive to w.
// Parts that did not change are copied from the loaded file verbatim.
func (wb *Workbook) WriteTo(w io.Writer) (int64, error) {
	replace, err := wb.parts()
	if err != nil {
		return 0, err
	}
	cw := countingWriter{w: w}
	err = wb.arc.Write(&cw, replace, wb.removed)
	return cw.n, err
}

// Bytes returns the workbook as an .xlsx archive.
func (wb *Workbook) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := wb.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var errNoPath = errors.New("workbook has no file name, use SaveAs")

// Save writes the workbook back to the file it was opened from or last saved to.
func (wb *Workbook) Save() error {
	if wb.path == "" {
		return errNoPath
	}
	return wb.SaveAs(wb.path)
}

// SaveAs writes the workbook to fileName through a temporary file in the
// same directory, so a failed save leaves the old file intact.
func (wb *Workbook) SaveAs(fileName string) error {
	fh, err := os.CreateTemp(filepath.Dir(fileName), "."+filepath.Base(fileName)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(fh.Name())
	if _, err = wb.WriteTo(fh); err != nil {
		fh.Close()
		return err
	}
	if err = fh.Chmod(0o644); err != nil {
		wb.logger.Debug("chmod", "file", fh.Name(), "error", err)
	}
	if err = fh.Close(); err != nil {
		return err
	}
	if err = os.Rename(fh.Name(), fileName); err != nil {
		return err
	}
	wb.path = fileName
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
