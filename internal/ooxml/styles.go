// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package ooxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Colors are strings: an ARGB hex value like "FFFF0000", "theme:N" or
// "indexed:N" (either optionally followed by ":tint"), or "auto".

// Font is a <font> record.
type Font struct {
	Name   string
	Size   float64
	Bold   bool
	Italic bool
	Strike bool
	// Underline is "", "single", "double", "singleAccounting" or "doubleAccounting".
	Underline string
	Color     string
}

// Fill is a <fill> record. Gradient fills read as Pattern "gradient".
type Fill struct {
	Pattern string
	FgColor string
	BgColor string
}

// Side is one edge of a Border.
type Side struct {
	Style string
	Color string
}

// Border is a <border> record.
type Border struct {
	Left, Right, Top, Bottom, Diagonal Side
}

// Alignment is the <alignment> of a cell format.
type Alignment struct {
	Horizontal   string
	Vertical     string
	WrapText     bool
	Indent       int
	TextRotation int
}

// NumFmt is a number format: a built-in ID, or a custom Code.
type NumFmt struct {
	ID   int
	Code string
}

// Xf is a cell format of cellXfs, referencing the component tables by index.
type Xf struct {
	NumFmtID, FontID, FillID, BorderID, XfID int
	Alignment                                Alignment
}

// StyleSheet is the decoded content of the styles part.
type StyleSheet struct {
	NumFmts []NumFmt
	Fonts   []Font
	Fills   []Fill
	Borders []Border
	CellXfs []Xf
}

// Counts are the lengths of the StyleSheet tables.
type Counts struct {
	NumFmts, Fonts, Fills, Borders, CellXfs int
}

// Counts returns the current table lengths.
func (ss *StyleSheet) Counts() Counts {
	return Counts{
		NumFmts: len(ss.NumFmts), Fonts: len(ss.Fonts), Fills: len(ss.Fills),
		Borders: len(ss.Borders), CellXfs: len(ss.CellXfs),
	}
}

var stylesOrder = []string{
	"numFmts", "fonts", "fills", "borders", "cellStyleXfs", "cellXfs",
	"cellStyles", "dxfs", "tableStyles", "colors", "extLst",
}

type attrVal struct {
	Val *string `xml:"val,attr"`
}

type xlsxColor struct {
	Auto    string `xml:"auto,attr"`
	RGB     string `xml:"rgb,attr"`
	Theme   string `xml:"theme,attr"`
	Indexed string `xml:"indexed,attr"`
	Tint    string `xml:"tint,attr"`
}

type xlsxFont struct {
	B      *attrVal   `xml:"b"`
	I      *attrVal   `xml:"i"`
	Strike *attrVal   `xml:"strike"`
	U      *attrVal   `xml:"u"`
	Sz     *attrVal   `xml:"sz"`
	Color  *xlsxColor `xml:"color"`
	Name   *attrVal   `xml:"name"`
}

type xlsxPatternFill struct {
	PatternType string     `xml:"patternType,attr"`
	FgColor     *xlsxColor `xml:"fgColor"`
	BgColor     *xlsxColor `xml:"bgColor"`
}

type xlsxFill struct {
	PatternFill  *xlsxPatternFill `xml:"patternFill"`
	GradientFill *struct{}        `xml:"gradientFill"`
}

type xlsxSide struct {
	Style string     `xml:"style,attr"`
	Color *xlsxColor `xml:"color"`
}

type xlsxBorder struct {
	Start    *xlsxSide `xml:"start"`
	End      *xlsxSide `xml:"end"`
	Left     *xlsxSide `xml:"left"`
	Right    *xlsxSide `xml:"right"`
	Top      *xlsxSide `xml:"top"`
	Bottom   *xlsxSide `xml:"bottom"`
	Diagonal *xlsxSide `xml:"diagonal"`
}

type xlsxAlignment struct {
	Horizontal   string `xml:"horizontal,attr"`
	Vertical     string `xml:"vertical,attr"`
	WrapText     string `xml:"wrapText,attr"`
	Indent       string `xml:"indent,attr"`
	TextRotation string `xml:"textRotation,attr"`
}

type xlsxXf struct {
	NumFmtID  string         `xml:"numFmtId,attr"`
	FontID    string         `xml:"fontId,attr"`
	FillID    string         `xml:"fillId,attr"`
	BorderID  string         `xml:"borderId,attr"`
	XfID      string         `xml:"xfId,attr"`
	Alignment *xlsxAlignment `xml:"alignment"`
}

type xlsxNumFmt struct {
	NumFmtID   string `xml:"numFmtId,attr"`
	FormatCode string `xml:"formatCode,attr"`
}

// DecodeStyles parses the tables of the styles part.
func DecodeStyles(src []byte) (*StyleSheet, error) {
	doc, err := Scan(src)
	if err != nil {
		return nil, err
	}
	if doc.Root.Name.Local != "styleSheet" {
		return nil, fmt.Errorf("root element is <%s>, not <styleSheet>", doc.Root.Name.Local)
	}
	var ss StyleSheet
	for _, el := range doc.Children {
		var decode func([]byte) error
		switch el.Name.Local {
		case "numFmts":
			decode = func(b []byte) error {
				var x xlsxNumFmt
				if err := xml.Unmarshal(b, &x); err != nil {
					return err
				}
				id, err := strconv.Atoi(x.NumFmtID)
				if err != nil {
					return fmt.Errorf("numFmtId %q: %w", x.NumFmtID, err)
				}
				ss.NumFmts = append(ss.NumFmts, NumFmt{ID: id, Code: x.FormatCode})
				return nil
			}
		case "fonts":
			decode = func(b []byte) error {
				var x xlsxFont
				if err := xml.Unmarshal(b, &x); err != nil {
					return err
				}
				ss.Fonts = append(ss.Fonts, x.font())
				return nil
			}
		case "fills":
			decode = func(b []byte) error {
				var x xlsxFill
				if err := xml.Unmarshal(b, &x); err != nil {
					return err
				}
				ss.Fills = append(ss.Fills, x.fill())
				return nil
			}
		case "borders":
			decode = func(b []byte) error {
				var x xlsxBorder
				if err := xml.Unmarshal(b, &x); err != nil {
					return err
				}
				ss.Borders = append(ss.Borders, x.border())
				return nil
			}
		case "cellXfs":
			decode = func(b []byte) error {
				var x xlsxXf
				if err := xml.Unmarshal(b, &x); err != nil {
					return err
				}
				ss.CellXfs = append(ss.CellXfs, x.xf())
				return nil
			}
		default:
			continue
		}
		children, err := Children(src, el)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			if err := decode(src[c.Start:c.End]); err != nil {
				return nil, fmt.Errorf("%s: %w", el.Name.Local, err)
			}
		}
	}
	return &ss, nil
}

func (v *attrVal) isTrue() bool {
	if v == nil {
		return false
	}
	return v.Val == nil || *v.Val == "1" || *v.Val == "true"
}

func (v *attrVal) value() string {
	if v == nil || v.Val == nil {
		return ""
	}
	return *v.Val
}

func (c *xlsxColor) String() string {
	if c == nil {
		return ""
	}
	var s string
	switch {
	case c.RGB != "":
		return strings.ToUpper(c.RGB)
	case c.Theme != "":
		s = "theme:" + c.Theme
	case c.Indexed != "":
		s = "indexed:" + c.Indexed
	case c.Auto == "1" || c.Auto == "true":
		return "auto"
	default:
		return ""
	}
	if c.Tint != "" {
		s += ":" + c.Tint
	}
	return s
}

func (x xlsxFont) font() Font {
	f := Font{
		Name: x.Name.value(), Bold: x.B.isTrue(), Italic: x.I.isTrue(),
		Strike: x.Strike.isTrue(), Color: x.Color.String(),
	}
	if x.U != nil {
		if f.Underline = x.U.value(); f.Underline == "" {
			f.Underline = "single"
		} else if f.Underline == "none" {
			f.Underline = ""
		}
	}
	if s := x.Sz.value(); s != "" {
		f.Size, _ = strconv.ParseFloat(s, 64)
	}
	return f
}

func (x xlsxFill) fill() Fill {
	if x.GradientFill != nil {
		return Fill{Pattern: "gradient"}
	}
	if x.PatternFill == nil {
		return Fill{}
	}
	return Fill{
		Pattern: x.PatternFill.PatternType,
		FgColor: x.PatternFill.FgColor.String(),
		BgColor: x.PatternFill.BgColor.String(),
	}
}

func (x *xlsxSide) side() Side {
	if x == nil {
		return Side{}
	}
	return Side{Style: x.Style, Color: x.Color.String()}
}

func (x xlsxBorder) border() Border {
	left, right := x.Left, x.Right
	if left == nil {
		left = x.Start
	}
	if right == nil {
		right = x.End
	}
	return Border{
		Left: left.side(), Right: right.side(), Top: x.Top.side(),
		Bottom: x.Bottom.side(), Diagonal: x.Diagonal.side(),
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func (x xlsxXf) xf() Xf {
	xf := Xf{
		NumFmtID: atoi(x.NumFmtID), FontID: atoi(x.FontID), FillID: atoi(x.FillID),
		BorderID: atoi(x.BorderID), XfID: atoi(x.XfID),
	}
	if a := x.Alignment; a != nil {
		xf.Alignment = Alignment{
			Horizontal: a.Horizontal, Vertical: a.Vertical,
			WrapText: a.WrapText == "1" || a.WrapText == "true",
			Indent:   atoi(a.Indent), TextRotation: atoi(a.TextRotation),
		}
	}
	return xf
}

// EncodeStyles appends the records of ss beyond from to the tables of src.
// Tables missing from src are inserted at their schema position.
func EncodeStyles(src []byte, ss *StyleSheet, from Counts) ([]byte, error) {
	doc, err := Scan(src)
	if err != nil {
		return nil, err
	}
	type table struct {
		name, child string
		from, n     int
		write       func(w *xmlWriter, i int)
	}
	tables := []table{
		{"numFmts", "numFmt", from.NumFmts, len(ss.NumFmts), func(w *xmlWriter, i int) { w.numFmt(ss.NumFmts[i]) }},
		{"fonts", "font", from.Fonts, len(ss.Fonts), func(w *xmlWriter, i int) { w.font(ss.Fonts[i]) }},
		{"fills", "fill", from.Fills, len(ss.Fills), func(w *xmlWriter, i int) { w.fill(ss.Fills[i]) }},
		{"borders", "border", from.Borders, len(ss.Borders), func(w *xmlWriter, i int) { w.border(ss.Borders[i]) }},
		{"cellXfs", "xf", from.CellXfs, len(ss.CellXfs), func(w *xmlWriter, i int) { w.xf(ss.CellXfs[i]) }},
	}
	var edits []edit
	for _, t := range tables {
		if t.n <= t.from {
			continue
		}
		var buf bytes.Buffer
		el, ok := doc.Child(t.name)
		if ok {
			w := newXMLWriter(&buf, el.Prefix())
			w.startTag(el, setAttr(slices.Clone(el.Attr), "count", strconv.Itoa(t.n)))
			w.raw(el.Content(src))
			for i := t.from; i < t.n; i++ {
				t.write(w, i)
			}
			w.endTag(el)
			w.release()
			edits = append(edits, edit{start: el.Start, end: el.End, data: slices.Clone(buf.Bytes())})
			continue
		}
		w := newXMLWriter(&buf, doc.Root.Prefix())
		w.open(t.name)
		w.attrInt("count", t.n)
		w.gt()
		for i := 0; i < t.n; i++ {
			t.write(w, i)
		}
		w.end(t.name)
		w.release()
		at := doc.insertPoint(t.name, stylesOrder)
		edits = append(edits, edit{start: at, end: at, data: slices.Clone(buf.Bytes())})
	}
	if len(edits) == 0 {
		return src, nil
	}
	return splice(src, edits...), nil
}

func (w *xmlWriter) color(local, c string) {
	if c == "" {
		return
	}
	w.open(local)
	switch {
	case c == "auto":
		w.attr("auto", "1")
	case strings.HasPrefix(c, "theme:") || strings.HasPrefix(c, "indexed:"):
		kind, rest, _ := strings.Cut(c, ":")
		val, tint, hasTint := strings.Cut(rest, ":")
		w.attr(kind, val)
		if hasTint {
			w.attr("tint", tint)
		}
	default:
		w.attr("rgb", c)
	}
	w.selfClose()
}

func (w *xmlWriter) numFmt(nf NumFmt) {
	w.open("numFmt")
	w.attrInt("numFmtId", nf.ID)
	w.attr("formatCode", nf.Code)
	w.selfClose()
}

func (w *xmlWriter) font(f Font) {
	w.open("font")
	w.gt()
	for _, b := range []struct {
		local string
		on    bool
	}{{"b", f.Bold}, {"i", f.Italic}, {"strike", f.Strike}} {
		if b.on {
			w.open(b.local)
			w.selfClose()
		}
	}
	if f.Underline != "" {
		w.open("u")
		if f.Underline != "single" {
			w.attr("val", f.Underline)
		}
		w.selfClose()
	}
	if f.Size != 0 {
		w.valElement("sz", strconv.FormatFloat(f.Size, 'f', -1, 64))
	}
	w.color("color", f.Color)
	if f.Name != "" {
		w.valElement("name", f.Name)
	}
	w.end("font")
}

func (w *xmlWriter) fill(f Fill) {
	w.open("fill")
	w.gt()
	w.open("patternFill")
	pattern := f.Pattern
	if pattern == "" {
		if pattern = "none"; f.FgColor != "" || f.BgColor != "" {
			pattern = "solid"
		}
	}
	w.attr("patternType", pattern)
	if f.FgColor == "" && f.BgColor == "" {
		w.selfClose()
	} else {
		w.gt()
		w.color("fgColor", f.FgColor)
		w.color("bgColor", f.BgColor)
		w.end("patternFill")
	}
	w.end("fill")
}

func (w *xmlWriter) border(b Border) {
	w.open("border")
	w.gt()
	for _, s := range []struct {
		local string
		side  Side
	}{{"left", b.Left}, {"right", b.Right}, {"top", b.Top}, {"bottom", b.Bottom}, {"diagonal", b.Diagonal}} {
		w.open(s.local)
		if s.side.Style != "" {
			w.attr("style", s.side.Style)
		}
		if s.side.Color == "" {
			w.selfClose()
			continue
		}
		w.gt()
		w.color("color", s.side.Color)
		w.end(s.local)
	}
	w.end("border")
}

func (w *xmlWriter) xf(xf Xf) {
	w.open("xf")
	w.attrInt("numFmtId", xf.NumFmtID)
	w.attrInt("fontId", xf.FontID)
	w.attrInt("fillId", xf.FillID)
	w.attrInt("borderId", xf.BorderID)
	w.attrInt("xfId", xf.XfID)
	for _, a := range []struct {
		name string
		on   bool
	}{
		{"applyNumberFormat", xf.NumFmtID != 0},
		{"applyFont", xf.FontID != 0},
		{"applyFill", xf.FillID != 0},
		{"applyBorder", xf.BorderID != 0},
		{"applyAlignment", xf.Alignment != Alignment{}},
	} {
		if a.on {
			w.attr(a.name, "1")
		}
	}
	if xf.Alignment == (Alignment{}) {
		w.selfClose()
		return
	}
	w.gt()
	a := xf.Alignment
	w.open("alignment")
	if a.Horizontal != "" {
		w.attr("horizontal", a.Horizontal)
	}
	if a.Vertical != "" {
		w.attr("vertical", a.Vertical)
	}
	if a.TextRotation != 0 {
		w.attrInt("textRotation", a.TextRotation)
	}
	if a.WrapText {
		w.attr("wrapText", "1")
	}
	if a.Indent != 0 {
		w.attrInt("indent", a.Indent)
	}
	w.selfClose()
	w.end("xf")
}
