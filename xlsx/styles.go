// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"fmt"

	"github.com/UNO-SOFT/xlsxedit"
	"github.com/UNO-SOFT/xlsxedit/internal/ooxml"
)

type (
	// Font of a cell. Colors are ARGB hex ("FFFF0000"), "theme:N[:tint]",
	// "indexed:N" or "auto".
	Font = ooxml.Font
	// Fill of a cell; a Pattern of "" with a color means "solid".
	Fill      = ooxml.Fill
	Border    = ooxml.Border
	Side      = ooxml.Side
	Alignment = ooxml.Alignment
	// NumFmt is a number format: either a built-in ID, or a format Code.
	NumFmt = ooxml.NumFmt
)

// Style is the formatting of a cell. The zero Style is the default format.
// Equal Styles intern to the same index.
type Style struct {
	Font      Font
	Fill      Fill
	Border    Border
	NumFmt    NumFmt
	Alignment Alignment
}

// FirstCustomNumFmt is the first id given to custom number formats.
const FirstCustomNumFmt = 164

var builtinNumFmts = map[int]string{
	0: "General", 1: "0", 2: "0.00", 3: "#,##0", 4: "#,##0.00",
	9: "0%", 10: "0.00%", 11: "0.00E+00", 12: "# ?/?", 13: "# ??/??",
	14: "mm-dd-yy", 15: "d-mmm-yy", 16: "d-mmm", 17: "mmm-yy",
	18: "h:mm AM/PM", 19: "h:mm:ss AM/PM", 20: "h:mm", 21: "h:mm:ss", 22: "m/d/yy h:mm",
	37: "#,##0 ;(#,##0)", 38: "#,##0 ;[Red](#,##0)",
	39: "#,##0.00;(#,##0.00)", 40: "#,##0.00;[Red](#,##0.00)",
	45: "mm:ss", 46: "[h]:mm:ss", 47: "mmss.0", 48: "##0.0E+0", 49: "@",
}

var builtinNumFmtIDs = func() map[string]int {
	m := make(map[string]int, len(builtinNumFmts))
	for id, code := range builtinNumFmts {
		m[code] = id
	}
	return m
}()

type xfKey struct {
	numFmt, font, fill, border int
	alignment                  Alignment
}

// Styles is the table of cell formats (cellXfs) with its component tables.
// Every table is append-only and deduplicated by content.
type Styles struct {
	part string
	src  []byte
	ss   *ooxml.StyleSheet
	// from counts the records of src, base the records after seeding
	// the empty tables with the defaults.
	from, base ooxml.Counts
	// err is why the styles part could not be read; such a table is
	// never written back, as cells may refer to its lost records.
	err error

	fonts   map[Font]int
	fills   map[Fill]int
	borders map[Border]int
	numFmts map[string]int
	xfs     map[xfKey]int
}

// defaultStyleSheet returns the style records of a new workbook.
func defaultStyleSheet() (src []byte, ss *ooxml.StyleSheet) {
	_, parts := ooxml.DefaultPackage()
	src = parts[ooxml.PartStyles]
	ss, err := ooxml.DecodeStyles(src)
	if err != nil {
		panic(fmt.Errorf("default styles: %w", err))
	}
	return src, ss
}

func newStyles(part string, src []byte, ss *ooxml.StyleSheet) *Styles {
	from := ss.Counts()
	if len(ss.Fonts) == 0 || len(ss.Fills) == 0 || len(ss.Borders) == 0 || len(ss.CellXfs) == 0 {
		_, def := defaultStyleSheet()
		if len(ss.Fonts) == 0 {
			ss.Fonts = def.Fonts
		}
		if len(ss.Fills) == 0 {
			ss.Fills = def.Fills
		}
		if len(ss.Borders) == 0 {
			ss.Borders = def.Borders
		}
		if len(ss.CellXfs) == 0 {
			ss.CellXfs = def.CellXfs
		}
	}
	t := &Styles{
		part: part, src: src, ss: ss, from: from, base: ss.Counts(),
		fonts:   make(map[Font]int, len(ss.Fonts)),
		fills:   make(map[Fill]int, len(ss.Fills)),
		borders: make(map[Border]int, len(ss.Borders)),
		numFmts: make(map[string]int, len(ss.NumFmts)),
		xfs:     make(map[xfKey]int, len(ss.CellXfs)),
	}
	for i, f := range ss.Fonts {
		if _, ok := t.fonts[f]; !ok {
			t.fonts[f] = i
		}
	}
	for i, f := range ss.Fills {
		if _, ok := t.fills[f]; !ok {
			t.fills[f] = i
		}
	}
	for i, b := range ss.Borders {
		if _, ok := t.borders[b]; !ok {
			t.borders[b] = i
		}
	}
	for _, nf := range ss.NumFmts {
		if _, ok := t.numFmts[nf.Code]; !ok {
			t.numFmts[nf.Code] = nf.ID
		}
	}
	for i, xf := range ss.CellXfs {
		k := xfKey{numFmt: xf.NumFmtID, font: xf.FontID, fill: xf.FillID, border: xf.BorderID, alignment: xf.Alignment}
		if _, ok := t.xfs[k]; !ok {
			t.xfs[k] = i
		}
	}
	return t
}

// Len returns the number of cell formats.
func (t *Styles) Len() int { return len(t.ss.CellXfs) }

// Intern returns the index of the cell format of st, appending the format
// and its missing components if needed. The zero Style is always 0.
func (t *Styles) Intern(st Style) int {
	st.Fill = normalFill(st.Fill)
	if st == (Style{}) {
		return 0
	}
	k := xfKey{
		numFmt:    t.numFmtID(st.NumFmt),
		font:      intern(&t.ss.Fonts, t.fonts, st.Font),
		fill:      intern(&t.ss.Fills, t.fills, st.Fill),
		border:    intern(&t.ss.Borders, t.borders, st.Border),
		alignment: st.Alignment,
	}
	if i, ok := t.xfs[k]; ok {
		return i
	}
	t.ss.CellXfs = append(t.ss.CellXfs, ooxml.Xf{
		NumFmtID: k.numFmt, FontID: k.font, FillID: k.fill, BorderID: k.border,
		Alignment: k.alignment,
	})
	i := len(t.ss.CellXfs) - 1
	t.xfs[k] = i
	return i
}

// normalFill spells out the pattern the way it is written and read back.
func normalFill(f Fill) Fill {
	if f.Pattern == "" && (f.FgColor != "" || f.BgColor != "") {
		f.Pattern = "solid"
	}
	return f
}

// intern returns the index of v in *list, appending it when missing.
// The zero value is the first record.
func intern[T comparable](list *[]T, index map[T]int, v T) int {
	var zero T
	if v == zero && len(*list) != 0 {
		return 0
	}
	if i, ok := index[v]; ok {
		return i
	}
	*list = append(*list, v)
	i := len(*list) - 1
	index[v] = i
	return i
}

func (t *Styles) numFmtID(nf NumFmt) int {
	if nf.Code == "" {
		return nf.ID
	}
	if id, ok := builtinNumFmtIDs[nf.Code]; ok {
		return id
	}
	if id, ok := t.numFmts[nf.Code]; ok {
		return id
	}
	id := FirstCustomNumFmt
	for _, x := range t.ss.NumFmts {
		id = max(id, x.ID+1)
	}
	t.ss.NumFmts = append(t.ss.NumFmts, NumFmt{ID: id, Code: nf.Code})
	t.numFmts[nf.Code] = id
	return id
}

func (t *Styles) numFmtCode(id int) string {
	for _, nf := range t.ss.NumFmts {
		if nf.ID == id {
			return nf.Code
		}
	}
	return builtinNumFmts[id]
}

// Resolve returns the Style of the cell format at index i.
func (t *Styles) Resolve(i int) (Style, error) {
	if i < 0 || i >= len(t.ss.CellXfs) {
		return Style{}, fmt.Errorf("style %d of %d: %w", i, len(t.ss.CellXfs), xlsxedit.ErrIndexOutOfRange)
	}
	xf := t.ss.CellXfs[i]
	st := Style{
		NumFmt:    NumFmt{ID: xf.NumFmtID, Code: t.numFmtCode(xf.NumFmtID)},
		Alignment: xf.Alignment,
	}
	var err error
	if st.Font, err = component(t.ss.Fonts, xf.FontID, "font"); err != nil {
		return st, fmt.Errorf("style %d: %w", i, err)
	}
	if st.Fill, err = component(t.ss.Fills, xf.FillID, "fill"); err != nil {
		return st, fmt.Errorf("style %d: %w", i, err)
	}
	if st.Border, err = component(t.ss.Borders, xf.BorderID, "border"); err != nil {
		return st, fmt.Errorf("style %d: %w", i, err)
	}
	return st, nil
}

func component[T any](list []T, i int, what string) (T, error) {
	if i < 0 || i >= len(list) {
		var zero T
		return zero, fmt.Errorf("%s %d of %d: %w", what, i, len(list), xlsxedit.ErrIndexOutOfRange)
	}
	return list[i], nil
}

func (t *Styles) dirty() bool { return t.ss.Counts() != t.base }
