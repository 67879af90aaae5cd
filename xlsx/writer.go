// Copyright 2020, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/UNO-SOFT/xlsxedit"
	"github.com/UNO-SOFT/xlsxedit/cellref"
)

var _ = (xlsxedit.Writer)((*XLSXWriter)(nil))

// XLSXWriter is an xlsxedit.Writer building a fresh Workbook.
type XLSXWriter struct {
	w      io.Writer
	wb     *Workbook
	styles map[xlsxedit.Style]int
	sheets []string
	mu     sync.Mutex
}

// XLSXSheet is a sheet of an XLSXWriter.
type XLSXSheet struct {
	xlw       *XLSXWriter
	sheet     *Sheet
	Name      string
	colStyles []int
	row       int
}

// NewWriter returns a new xlsxedit.Writer.
//
// This writer allows concurrent writes to separate sheets.
//
// This writer collects everything in memory, so big sheets may impose problems.
func NewWriter(w io.Writer, opts Options) *XLSXWriter {
	return &XLSXWriter{w: w, wb: New(opts)}
}

// Workbook returns the workbook being built.
func (xlw *XLSXWriter) Workbook() *Workbook { return xlw.wb }

// Close writes the workbook to the underlying writer.
func (xlw *XLSXWriter) Close() error {
	if xlw == nil {
		return nil
	}
	xlw.mu.Lock()
	defer xlw.mu.Unlock()
	wb, w := xlw.wb, xlw.w
	xlw.wb, xlw.w = nil, nil
	if wb == nil || w == nil {
		return nil
	}
	_, err := wb.WriteTo(w)
	return err
}

// NewSheet adds a sheet with the given columns. Named columns produce a header row.
func (xlw *XLSXWriter) NewSheet(name string, columns []xlsxedit.Column) (xlsxedit.Sheet, error) {
	xlw.mu.Lock()
	defer xlw.mu.Unlock()
	var err error
	if len(xlw.sheets) == 0 { // first
		err = xlw.wb.RenameSheet("Sheet1", name)
	} else {
		_, err = xlw.wb.CreateSheet(name, len(xlw.sheets))
	}
	if err != nil {
		return nil, err
	}
	xlw.sheets = append(xlw.sheets, name)
	sheet, err := xlw.wb.Sheet(name)
	if err != nil {
		return nil, err
	}
	xls := &XLSXSheet{xlw: xlw, sheet: sheet, Name: name, colStyles: make([]int, len(columns))}
	var hasHeader bool
	for i, c := range columns {
		xls.colStyles[i] = xlw.getStyle(c.Column)
		if c.Name == "" {
			continue
		}
		hasHeader = true
		cell, err := sheet.CellAt(1, i+1)
		if err != nil {
			return nil, err
		}
		if err = cell.SetString(c.Name); err != nil {
			return nil, err
		}
		if s := xlw.getStyle(c.Header); s != 0 {
			if err = cell.SetStyleIndex(s); err != nil {
				return nil, err
			}
		}
	}
	if hasHeader {
		xls.row++
	}
	return xls, nil
}

// getStyle returns the cell format of style, built on the default font.
func (xlw *XLSXWriter) getStyle(style xlsxedit.Style) int {
	if style.IsZero() {
		return 0
	}
	s, ok := xlw.styles[style]
	if ok {
		return s
	}
	st, err := xlw.wb.styles.Resolve(0)
	if err != nil {
		st = Style{}
	}
	st.Font.Bold = st.Font.Bold || style.FontBold
	if style.Format != "" {
		st.NumFmt = NumFmt{Code: style.Format}
	}
	s = xlw.wb.styles.Intern(st)
	if xlw.styles == nil {
		xlw.styles = make(map[xlsxedit.Style]int)
	}
	xlw.styles[style] = s
	return s
}

// MaxRowCount is the number of maximum rows.
const MaxRowCount = cellref.MaxRows

// Close is a no-op: the rows are written by XLSXWriter.Close.
func (xls *XLSXSheet) Close() error { return nil }

// AppendRow appends a row of values. Nil (and invalid sql.Null*) values leave the cell empty.
func (xls *XLSXSheet) AppendRow(values ...any) error {
	xls.xlw.mu.Lock()
	defer xls.xlw.mu.Unlock()
	if xls.row >= MaxRowCount {
		return xlsxedit.ErrTooManyRows
	}
	xls.row++
	for i, v := range values {
		if v == nil {
			continue
		}
		cell, err := xls.sheet.CellAt(xls.row, i+1)
		if err != nil {
			return fmt.Errorf("%s[%d/%d]: %w", xls.Name, i, xls.row, err)
		}
		ok, err := setCell(cell, v)
		if err != nil {
			return fmt.Errorf("%s[%s]: %w", xls.Name, cell.Address(), err)
		}
		if !ok || i >= len(xls.colStyles) || xls.colStyles[i] == 0 {
			continue
		}
		if err = cell.SetStyleIndex(xls.colStyles[i]); err != nil {
			return fmt.Errorf("%s[%s]: %w", xls.Name, cell.Address(), err)
		}
	}
	return nil
}

// setCell stores v by its type, reporting false for a nil value.
func setCell(cell *Cell, v any) (bool, error) {
	if vr, ok := v.(driver.Valuer); ok {
		if vv, err := vr.Value(); err == nil {
			if vv == nil {
				return false, nil
			}
			v = vv
		}
	}
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return false, nil
		}
		return true, cell.SetTime(x)
	case sql.NullTime:
		if !x.Valid || x.Time.IsZero() {
			return false, nil
		}
		return true, cell.SetTime(x.Time)
	case sql.NullFloat64:
		if !x.Valid {
			return false, nil
		}
		return true, cell.SetNumber(x.Float64)
	case sql.NullInt64:
		if !x.Valid {
			return false, nil
		}
		return true, cell.SetValue(strconv.FormatInt(x.Int64, 10))
	case sql.NullString:
		if !x.Valid {
			return false, nil
		}
		return true, cell.SetString(x.String)
	case xlsxedit.Number:
		return true, cell.SetValue(string(x))
	case string:
		return true, cell.SetString(x)
	case []byte:
		return true, cell.SetString(string(x))
	case bool:
		return true, cell.SetBool(x)
	case int:
		return true, cell.SetValue(strconv.Itoa(x))
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true, cell.SetValue(fmt.Sprintf("%d", x))
	case float32:
		return true, cell.SetValue(strconv.FormatFloat(float64(x), 'f', -1, 32))
	case float64:
		return true, cell.SetNumber(x)
	case fmt.Stringer:
		return true, cell.SetString(x.String())
	}
	return true, cell.SetString(fmt.Sprint(v))
}
