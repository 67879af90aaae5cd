// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"cmp"
	"encoding/xml"
	"fmt"
	"maps"
	"slices"

	"github.com/UNO-SOFT/xlsxedit/cellref"
	"github.com/UNO-SOFT/xlsxedit/internal/ooxml"
)

type coord struct{ row, col int }

// Sheet is a sparse grid of cells. Chartsheets have no cells and reject writes.
type Sheet struct {
	wb    *Workbook
	entry ooxml.SheetEntry
	part  string
	src   []byte
	kind  string
	cells map[coord]*Cell
	// rows holds the attributes (height, hidden, ...) of the rows read.
	rows  map[int][]xml.Attr
	dirty bool
	// rels is read on first use.
	rels      *ooxml.Relationships
	relsDirty bool
}

func newSheet(wb *Workbook, e ooxml.SheetEntry, part string, src []byte, kind string) *Sheet {
	return &Sheet{
		wb: wb, entry: e, part: part, src: src, kind: kind,
		cells: make(map[coord]*Cell), rows: make(map[int][]xml.Attr),
	}
}

func (sh *Sheet) fill(rows []ooxml.Row) error {
	for _, r := range rows {
		if _, ok := sh.rows[r.Num]; ok {
			return fmt.Errorf("row %d: duplicate", r.Num)
		}
		sh.rows[r.Num] = r.Attr
		for _, x := range r.Cells {
			k := coord{x.Row, x.Col}
			if _, ok := sh.cells[k]; ok {
				return fmt.Errorf("cell %s: duplicate", cellref.MustFormat(x.Row, x.Col))
			}
			sh.cells[k] = cellFromXML(sh, x)
		}
	}
	return nil
}

// Name returns the sheet name.
func (sh *Sheet) Name() string { return sh.entry.Name }

// IsWorksheet reports whether the sheet holds cells (it is not a chartsheet).
func (sh *Sheet) IsWorksheet() bool { return sh.kind == "worksheet" }

// State is "" for a visible sheet, "hidden" or "veryHidden".
func (sh *Sheet) State() string { return sh.entry.State }

// Cell returns the cell at address ("B2"), creating it if needed.
func (sh *Sheet) Cell(address string) (*Cell, error) {
	row, col, err := cellref.ParseAddress(address)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sh.Name(), err)
	}
	return sh.cell(row, col), nil
}

// CellAt returns the cell at the 1-based coordinates, creating it if needed.
func (sh *Sheet) CellAt(row, col int) (*Cell, error) {
	if _, err := cellref.FormatAddress(row, col); err != nil {
		return nil, fmt.Errorf("%s: %w", sh.Name(), err)
	}
	return sh.cell(row, col), nil
}

func (sh *Sheet) cell(row, col int) *Cell {
	k := coord{row, col}
	c := sh.cells[k]
	if c == nil {
		c = &Cell{sheet: sh, row: row, col: col}
		sh.cells[k] = c
	}
	return c
}

// Value returns the text value of the cell at address; a missing cell is "".
func (sh *Sheet) Value(address string) (string, error) {
	row, col, err := cellref.ParseAddress(address)
	if err != nil {
		return "", fmt.Errorf("%s: %w", sh.Name(), err)
	}
	c := sh.cells[coord{row, col}]
	if c == nil {
		return "", nil
	}
	return c.Value()
}

// SetValue sets the value of the cell at address, see Cell.SetValue.
func (sh *Sheet) SetValue(address, value string) error {
	c, err := sh.Cell(address)
	if err != nil {
		return err
	}
	return c.SetValue(value)
}

// SetStyle sets the style of the cell at address.
func (sh *Sheet) SetStyle(address string, st Style) error {
	c, err := sh.Cell(address)
	if err != nil {
		return err
	}
	return c.SetStyle(st)
}

// Cells returns the stored cells in row-major order.
func (sh *Sheet) Cells() []*Cell {
	cells := make([]*Cell, 0, len(sh.cells))
	for _, c := range sh.cells {
		if c.set {
			cells = append(cells, c)
		}
	}
	slices.SortFunc(cells, func(a, b *Cell) int {
		return cmp.Or(cmp.Compare(a.row, b.row), cmp.Compare(a.col, b.col))
	})
	return cells
}

// bounds returns the smallest range holding every stored cell.
func (sh *Sheet) bounds() (cellref.Range, bool) {
	var r cellref.Range
	var found bool
	for _, c := range sh.cells {
		if !c.set {
			continue
		}
		if !found {
			r = cellref.Range{FromRow: c.row, FromCol: c.col, ToRow: c.row, ToCol: c.col}
			found = true
			continue
		}
		r.FromRow, r.FromCol = min(r.FromRow, c.row), min(r.FromCol, c.col)
		r.ToRow, r.ToCol = max(r.ToRow, c.row), max(r.ToCol, c.col)
	}
	return r, found
}

// Dimension returns the used range, like "A1:D20"; "A1" for an empty sheet.
func (sh *Sheet) Dimension() string {
	r, ok := sh.bounds()
	if !ok {
		return "A1"
	}
	return r.String()
}

// Rows returns the text values from A1 to the last used row and column.
func (sh *Sheet) Rows() ([][]string, error) {
	r, ok := sh.bounds()
	if !ok {
		return nil, nil
	}
	rows := make([][]string, r.ToRow)
	for i := range rows {
		rows[i] = make([]string, r.ToCol)
	}
	for _, c := range sh.cells {
		if !c.set {
			continue
		}
		v, err := c.Value()
		if err != nil {
			return nil, err
		}
		rows[c.row-1][c.col-1] = v
	}
	return rows, nil
}

// xmlRows returns the rows to write: every row read, and every row with a stored cell.
func (sh *Sheet) xmlRows() []ooxml.Row {
	byRow := make(map[int][]ooxml.Cell, len(sh.rows))
	for _, c := range sh.cells {
		if c.set {
			byRow[c.row] = append(byRow[c.row], c.xml())
		}
	}
	nums := slices.Collect(maps.Keys(sh.rows))
	for n := range byRow {
		if _, ok := sh.rows[n]; !ok {
			nums = append(nums, n)
		}
	}
	slices.Sort(nums)
	rows := make([]ooxml.Row, len(nums))
	for i, n := range nums {
		cells := byRow[n]
		slices.SortFunc(cells, func(a, b ooxml.Cell) int { return cmp.Compare(a.Col, b.Col) })
		rows[i] = ooxml.Row{Num: n, Attr: sh.rows[n], Cells: cells}
	}
	return rows
}

func (sh *Sheet) encode() ([]byte, error) {
	return ooxml.EncodeWorksheet(sh.src, sh.xmlRows(), sh.Dimension())
}
