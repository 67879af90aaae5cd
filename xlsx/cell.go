// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"encoding/xml"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/UNO-SOFT/xlsxedit"
	"github.com/UNO-SOFT/xlsxedit/cellref"
	"github.com/UNO-SOFT/xlsxedit/internal/ooxml"
)

// ValueKind is the stored type of a cell value.
type ValueKind uint8

const (
	KindEmpty ValueKind = iota
	KindNumber
	KindSharedString
	KindInlineString
	KindBool
	KindError
	// KindString is a string result of a formula.
	KindString
	// KindDate is an ISO 8601 date stored as text.
	KindDate
)

func (k ValueKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumber:
		return "number"
	case KindSharedString:
		return "shared string"
	case KindInlineString:
		return "inline string"
	case KindBool:
		return "bool"
	case KindError:
		return "error"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	}
	return "ValueKind(" + strconv.Itoa(int(k)) + ")"
}

// Cell is one cell of a Sheet. Cells are created on first access; a cell
// that was never given a value or style is not written to the file.
type Cell struct {
	sheet    *Sheet
	row, col int
	kind     ValueKind
	// text is the value of every kind but KindSharedString.
	text    string
	sst     int
	style   int
	typ     string
	formula *ooxml.Formula
	attr    []xml.Attr
	raw     []byte
	set     bool
}

func cellFromXML(sh *Sheet, x ooxml.Cell) *Cell {
	c := &Cell{
		sheet: sh, row: x.Row, col: x.Col,
		style: x.Style, typ: x.Type, formula: x.Formula, attr: x.Attr, raw: x.Raw,
		set: true, text: x.Value,
	}
	switch {
	case x.HasInline:
		c.kind, c.text = KindInlineString, x.Inline
	case !x.HasValue:
		c.kind, c.text = KindEmpty, ""
	case x.Type == "" || x.Type == ooxml.TypeNumber:
		c.kind = KindNumber
	case x.Type == ooxml.TypeSharedString:
		c.kind, c.text = KindSharedString, ""
		var err error
		if c.sst, err = strconv.Atoi(strings.TrimSpace(x.Value)); err != nil {
			c.sst = -1
		}
	case x.Type == ooxml.TypeBool:
		c.kind = KindBool
	case x.Type == ooxml.TypeError:
		c.kind = KindError
	case x.Type == ooxml.TypeDate:
		c.kind = KindDate
	default:
		c.kind = KindString
	}
	return c
}

// xml returns the element model of the cell.
func (c *Cell) xml() ooxml.Cell {
	x := ooxml.Cell{
		Row: c.row, Col: c.col, Style: c.style,
		Formula: c.formula, Attr: c.attr, Raw: c.raw,
		Value: c.text, HasValue: true,
	}
	switch c.kind {
	case KindEmpty:
		x.Value, x.HasValue = "", false
	case KindNumber:
	case KindSharedString:
		x.Type, x.Value = ooxml.TypeSharedString, strconv.Itoa(c.sst)
	case KindInlineString:
		x.Type, x.Inline, x.HasInline = ooxml.TypeInlineString, c.text, true
		x.Value, x.HasValue = "", false
	case KindBool:
		x.Type = ooxml.TypeBool
	case KindError:
		x.Type = ooxml.TypeError
	case KindDate:
		x.Type = ooxml.TypeDate
	default:
		if x.Type = c.typ; x.Type == "" {
			x.Type = ooxml.TypeFormulaStr
		}
	}
	return x
}

// Row returns the 1-based row number.
func (c *Cell) Row() int { return c.row }

// Col returns the 1-based column number.
func (c *Cell) Col() int { return c.col }

// Address returns the A1-style address.
func (c *Cell) Address() string { return cellref.MustFormat(c.row, c.col) }

// Kind returns the stored type of the value.
func (c *Cell) Kind() ValueKind { return c.kind }

// IsEmpty reports whether the cell has neither value nor formula.
func (c *Cell) IsEmpty() bool { return c.kind == KindEmpty && c.formula == nil }

// Value returns the value as text: numbers as stored, booleans as
// "TRUE" or "FALSE", errors as their code, formulas as their cached result.
func (c *Cell) Value() (string, error) {
	switch c.kind {
	case KindEmpty:
		return "", nil
	case KindSharedString:
		s, err := c.sheet.wb.sst.Resolve(c.sst)
		if err != nil {
			return "", fmt.Errorf("%s[%s]: %w", c.sheet.Name(), c.Address(), err)
		}
		return s, nil
	case KindBool:
		if v := strings.TrimSpace(c.text); v == "1" || strings.EqualFold(v, "true") {
			return "TRUE", nil
		}
		return "FALSE", nil
	}
	return c.text, nil
}

// Float returns the numeric value; empty cells are 0, booleans 1 or 0.
func (c *Cell) Float() (float64, error) {
	switch c.kind {
	case KindEmpty:
		return 0, nil
	case KindBool:
		if v, _ := c.Value(); v == "TRUE" {
			return 1, nil
		}
		return 0, nil
	}
	s, err := c.Value()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s[%s]: %w", c.sheet.Name(), c.Address(), err)
	}
	return f, nil
}

// Formula returns the formula text without a leading "=", or "".
func (c *Cell) Formula() string {
	if c.formula == nil {
		return ""
	}
	return c.formula.Text
}

func (c *Cell) writable() error {
	if c.sheet.kind != "worksheet" {
		return fmt.Errorf("%s[%s]: %w", c.sheet.Name(), c.Address(), xlsxedit.ErrNotWorksheet)
	}
	return nil
}

// touch marks the cell for regeneration.
func (c *Cell) touch() {
	c.raw, c.set = nil, true
	c.sheet.dirty = true
}

// setValue replaces the value and drops the formula with the value metadata.
func (c *Cell) setValue(kind ValueKind, text string) {
	c.kind, c.text, c.sst, c.typ, c.formula = kind, text, 0, "", nil
	c.attr = slices.DeleteFunc(slices.Clone(c.attr), func(a xml.Attr) bool {
		return a.Name.Space == "" && (a.Name.Local == "vm" || a.Name.Local == "cm")
	})
	c.touch()
}

// SetValue stores text: a decimal number is kept as a number cell with the
// text unchanged, anything else goes to the shared string table.
// Setting a value removes the formula.
func (c *Cell) SetValue(text string) error {
	if err := c.writable(); err != nil {
		return err
	}
	if isNumber(text) {
		c.setValue(KindNumber, text)
		return nil
	}
	c.setShared(text)
	return nil
}

// setShared stores text in the shared string table, or inline when the
// table of the file could not be read.
func (c *Cell) setShared(text string) {
	if c.sheet.wb.sst.err != nil {
		c.setValue(KindInlineString, text)
		return
	}
	c.setValue(KindSharedString, "")
	c.sst = c.sheet.wb.sst.Intern(text)
}

// SetString stores text as a string, even if it looks like a number.
func (c *Cell) SetString(text string) error {
	if err := c.writable(); err != nil {
		return err
	}
	c.setShared(text)
	return nil
}

// SetNumber stores f as a number.
func (c *Cell) SetNumber(f float64) error {
	if err := c.writable(); err != nil {
		return err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%s[%s]: %v is not a finite number", c.sheet.Name(), c.Address(), f)
	}
	c.setValue(KindNumber, formatFloat(f))
	return nil
}

func formatFloat(f float64) string {
	if a := math.Abs(f); a != 0 && (a < 1e-6 || a >= 1e21) {
		return strconv.FormatFloat(f, 'E', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// SetBool stores a boolean.
func (c *Cell) SetBool(b bool) error {
	if err := c.writable(); err != nil {
		return err
	}
	v := "0"
	if b {
		v = "1"
	}
	c.setValue(KindBool, v)
	return nil
}

var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// TimeSerial converts the wall clock of t to a spreadsheet date serial number.
func TimeSerial(t time.Time) float64 {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	secs := wall.Unix() - excelEpoch.Unix()
	return float64(secs)/86400 + float64(wall.Nanosecond())/86400e9
}

// SetTime stores t as a date serial number. An unstyled cell gets the
// built-in date format (14) for midnight, date-time format (22) otherwise.
func (c *Cell) SetTime(t time.Time) error {
	if err := c.writable(); err != nil {
		return err
	}
	c.setValue(KindNumber, formatFloat(TimeSerial(t)))
	if c.style == 0 && c.sheet.wb.styles.err == nil {
		id := 22
		if h, m, s := t.Clock(); h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0 {
			id = 14
		}
		c.style = c.sheet.wb.styles.Intern(Style{NumFmt: NumFmt{ID: id}})
	}
	return nil
}

// SetFormula sets the formula (a leading "=" is dropped) and clears the
// cached value, so the application recalculates it on open.
func (c *Cell) SetFormula(formula string) error {
	if err := c.writable(); err != nil {
		return err
	}
	c.setValue(KindEmpty, "")
	c.formula = &ooxml.Formula{Text: strings.TrimPrefix(formula, "=")}
	return nil
}

// Clear removes the value and the formula, keeping the style.
func (c *Cell) Clear() error {
	if err := c.writable(); err != nil {
		return err
	}
	if !c.set {
		return nil
	}
	c.setValue(KindEmpty, "")
	c.set = c.style != 0
	return nil
}

// StyleIndex returns the index of the cell format, 0 being the default.
func (c *Cell) StyleIndex() int { return c.style }

// Style resolves the cell format.
func (c *Cell) Style() (Style, error) {
	st, err := c.sheet.wb.styles.Resolve(c.style)
	if err != nil {
		return st, fmt.Errorf("%s[%s]: %w", c.sheet.Name(), c.Address(), err)
	}
	return st, nil
}

// SetStyle interns st and applies it to the cell.
func (c *Cell) SetStyle(st Style) error {
	if err := c.writable(); err != nil {
		return err
	}
	if t := c.sheet.wb.styles; t.err != nil {
		return fmt.Errorf("%s[%s]: %w", c.sheet.Name(), c.Address(), xlsxedit.NewParseError(t.part, t.err))
	}
	return c.SetStyleIndex(c.sheet.wb.styles.Intern(st))
}

// SetStyleIndex applies an already interned cell format.
func (c *Cell) SetStyleIndex(i int) error {
	if err := c.writable(); err != nil {
		return err
	}
	if n := c.sheet.wb.styles.Len(); i < 0 || i >= n && i != 0 {
		return fmt.Errorf("%s[%s]: style %d of %d: %w", c.sheet.Name(), c.Address(), i, n, xlsxedit.ErrIndexOutOfRange)
	}
	if c.style == i && (c.set || i == 0) {
		return nil
	}
	c.style = i
	c.touch()
	return nil
}

// SetFont replaces the font of the cell's current format.
func (c *Cell) SetFont(f Font) error {
	return c.updateStyle(func(st *Style) { st.Font = f })
}

// SetFill replaces the fill of the cell's current format.
func (c *Cell) SetFill(f Fill) error {
	return c.updateStyle(func(st *Style) { st.Fill = f })
}

func (c *Cell) updateStyle(update func(*Style)) error {
	if err := c.writable(); err != nil {
		return err
	}
	st, err := c.Style()
	if err != nil {
		return err
	}
	update(&st)
	return c.SetStyle(st)
}

// isNumber reports whether s is a decimal number: an optional sign,
// digits with an optional fraction, and an optional exponent.
func isNumber(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for ; i < len(s) && '0' <= s[i] && s[i] <= '9'; i++ {
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for ; i < len(s) && '0' <= s[i] && s[i] <= '9'; i++ {
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for ; i < len(s) && '0' <= s[i] && s[i] <= '9'; i++ {
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}
