// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package ooxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/UNO-SOFT/xlsxedit/cellref"
)

// Cell types (the t attribute).
const (
	TypeNumber       = "n"
	TypeSharedString = "s"
	TypeInlineString = "inlineStr"
	TypeFormulaStr   = "str"
	TypeBool         = "b"
	TypeError        = "e"
	TypeDate         = "d"
)

// Row is a <row> of sheetData.
type Row struct {
	Num int
	// Attr holds the attributes other than r.
	Attr  []xml.Attr
	Cells []Cell
}

// Cell is a <c> element.
type Cell struct {
	Row, Col int
	// Type is the t attribute, "" meaning number.
	Type  string
	Style int
	// Value is the text of <v>.
	Value    string
	HasValue bool
	// Inline is the text of <is>, rich text runs concatenated.
	Inline    string
	HasInline bool
	Formula   *Formula
	// Attr holds the attributes other than r, s and t.
	Attr []xml.Attr
	// Raw is the element as read; nil when it has to be regenerated.
	Raw []byte
}

// Formula is an <f> element.
type Formula struct {
	Attr []xml.Attr
	Text string
}

// Worksheet is the decoded cell grid of a sheet part.
type Worksheet struct {
	// Kind is the root element: "worksheet", "chartsheet" or "dialogsheet".
	Kind string
	Rows []Row
}

var worksheetOrder = []string{
	"sheetPr", "dimension", "sheetViews", "sheetFormatPr", "cols", "sheetData",
	"sheetCalcPr", "sheetProtection", "protectedRanges", "scenarios", "autoFilter",
	"sortState", "dataConsolidate", "customSheetViews", "mergeCells", "phoneticPr",
	"conditionalFormatting", "dataValidations", "hyperlinks", "printOptions",
	"pageMargins", "pageSetup", "headerFooter", "rowBreaks", "colBreaks",
	"customProperties", "cellWatches", "ignoredErrors", "smartTags", "drawing",
	"legacyDrawing", "legacyDrawingHF", "picture", "oleObjects", "controls",
	"webPublishItems", "tableParts", "extLst",
}

// DecodeWorksheet parses the sheetData of a sheet part.
func DecodeWorksheet(src []byte) (*Worksheet, error) {
	doc, err := Scan(src)
	if err != nil {
		return nil, err
	}
	ws := Worksheet{Kind: doc.Root.Name.Local}
	switch ws.Kind {
	case "worksheet":
	case "chartsheet", "dialogsheet":
		return &ws, nil
	default:
		return nil, fmt.Errorf("root element is <%s>, not <worksheet>", ws.Kind)
	}
	el, ok := doc.Child("sheetData")
	if !ok {
		return &ws, nil
	}
	if ws.Rows, err = decodeSheetData(src, el); err != nil {
		return nil, err
	}
	return &ws, nil
}

type cellDecoder struct {
	src    []byte
	d      *xml.Decoder
	base   int
	path   []string
	rowNum int
	col    int
}

func decodeSheetData(src []byte, el Element) ([]Row, error) {
	cd := cellDecoder{
		src:  src,
		d:    xml.NewDecoder(bytes.NewReader(el.Content(src))),
		base: el.OpenEnd,
	}
	var rows []Row
	for {
		tok, err := cd.d.RawToken()
		if err != nil {
			if err == io.EOF {
				return rows, nil
			}
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != "row" {
			if err := skip(cd.d); err != nil {
				return nil, err
			}
			continue
		}
		row, err := cd.row(se)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

func (cd *cellDecoder) offset() int { return cd.base + int(cd.d.InputOffset()) }

func (cd *cellDecoder) row(se xml.StartElement) (Row, error) {
	row := Row{Num: cd.rowNum + 1}
	for _, a := range se.Attr {
		if a.Name.Local == "r" && a.Name.Space == "" {
			n, err := strconv.Atoi(a.Value)
			if err != nil || n < 1 || n > cellref.MaxRows {
				return row, fmt.Errorf("row %q: invalid number", a.Value)
			}
			row.Num = n
			continue
		}
		row.Attr = append(row.Attr, a)
	}
	cd.rowNum, cd.col = row.Num, 0
	for {
		off := cd.offset()
		tok, err := cd.d.RawToken()
		if err != nil {
			return row, unexpectedEOF(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "c" {
				if err := skip(cd.d); err != nil {
					return row, err
				}
				continue
			}
			c, err := cd.cell(t, off)
			if err != nil {
				return row, err
			}
			row.Cells = append(row.Cells, c)
		case xml.EndElement:
			return row, nil
		}
	}
}

func (cd *cellDecoder) cell(se xml.StartElement, start int) (Cell, error) {
	c := Cell{Row: cd.rowNum, Col: cd.col + 1}
	var hasRef bool
	for _, a := range se.Attr {
		if a.Name.Space != "" {
			c.Attr = append(c.Attr, a)
			continue
		}
		switch a.Name.Local {
		case "r":
			row, col, err := cellref.ParseAddress(a.Value)
			if err != nil {
				return c, err
			}
			c.Row, c.Col, hasRef = row, col, true
		case "s":
			n, err := strconv.Atoi(a.Value)
			if err != nil || n < 0 {
				return c, fmt.Errorf("cell %s: style %q: invalid index", cellref.MustFormat(c.Row, c.Col), a.Value)
			}
			c.Style = n
		case "t":
			c.Type = a.Value
		default:
			c.Attr = append(c.Attr, a)
		}
	}
	cd.col = c.Col

	var (
		text    strings.Builder
		inRPh   int
		inText  bool
		inlines []string
	)
	cd.path = cd.path[:0]
	for {
		tok, err := cd.d.RawToken()
		if err != nil {
			return c, unexpectedEOF(err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			cd.path = append(cd.path, t.Name.Local)
			switch {
			case len(cd.path) == 1 && t.Name.Local == "f":
				c.Formula = &Formula{Attr: slices.Clone(t.Attr)}
				inText = true
			case len(cd.path) == 1 && (t.Name.Local == "v" || t.Name.Local == "is"):
				inText = t.Name.Local == "v"
				if t.Name.Local == "is" {
					c.HasInline = true
				}
			case t.Name.Local == "rPh":
				inRPh++
			case t.Name.Local == "t" && len(cd.path) > 1 && cd.path[0] == "is" && inRPh == 0:
				inText = true
			}
		case xml.CharData:
			if inText {
				text.Write(t)
			}
		case xml.EndElement:
			if len(cd.path) == 0 {
				if hasRef {
					c.Raw = slices.Clone(cd.src[start:cd.offset()])
				}
				if c.HasInline {
					c.Inline = UnescapeString(strings.Join(inlines, ""))
				}
				return c, nil
			}
			switch local := cd.path[len(cd.path)-1]; {
			case len(cd.path) == 1 && local == "f":
				c.Formula.Text = text.String()
			case len(cd.path) == 1 && local == "v":
				c.Value, c.HasValue = UnescapeString(text.String()), true
			case local == "rPh":
				inRPh--
			case local == "t" && inText:
				inlines = append(inlines, text.String())
			}
			text.Reset()
			inText = false
			cd.path = cd.path[:len(cd.path)-1]
		}
	}
}

// skip consumes the rest of the element whose start was just read.
// xml.Decoder.Skip cannot be mixed with RawToken.
func skip(d *xml.Decoder) error {
	for depth := 1; depth > 0; {
		tok, err := d.RawToken()
		if err != nil {
			return unexpectedEOF(err)
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// EncodeWorksheet replaces the sheetData of src with rows, and the
// dimension element, when present, with dimension.
// Everything else in src is kept byte by byte.
func EncodeWorksheet(src []byte, rows []Row, dimension string) ([]byte, error) {
	doc, err := Scan(src)
	if err != nil {
		return nil, err
	}
	if doc.Root.Name.Local != "worksheet" {
		return nil, fmt.Errorf("root element is <%s>, not <worksheet>", doc.Root.Name.Local)
	}
	var edits []edit
	el, ok := doc.Child("sheetData")
	if !ok {
		at := doc.insertPoint("sheetData", worksheetOrder)
		el = Element{Name: xml.Name{Space: doc.Root.Name.Space, Local: "sheetData"}, Start: at, End: at}
	}
	edits = append(edits, edit{start: el.Start, end: el.End, data: encodeSheetData(el, rows)})

	if dim, ok := doc.Child("dimension"); ok && dimension != "" {
		var buf bytes.Buffer
		w := newXMLWriter(&buf, dim.Prefix())
		w.open("dimension")
		w.attr("ref", dimension)
		w.selfClose()
		w.release()
		edits = append(edits, edit{start: dim.Start, end: dim.End, data: slices.Clone(buf.Bytes())})
	}
	return splice(src, edits...), nil
}

func encodeSheetData(el Element, rows []Row) []byte {
	var buf bytes.Buffer
	w := newXMLWriter(&buf, el.Prefix())
	defer w.release()
	if len(rows) == 0 {
		w.open("sheetData", el.Attr...)
		w.selfClose()
		return slices.Clone(buf.Bytes())
	}
	w.open("sheetData", el.Attr...)
	w.gt()
	for _, row := range rows {
		w.open("row")
		w.attrInt("r", row.Num)
		for _, a := range fitSpans(row.Attr, row.Cells) {
			w.attr(qname(a.Name), a.Value)
		}
		if len(row.Cells) == 0 {
			w.selfClose()
			continue
		}
		w.gt()
		for _, c := range row.Cells {
			if c.Raw != nil {
				w.raw(c.Raw)
				continue
			}
			w.cell(c)
		}
		w.end("row")
	}
	w.end("sheetData")
	return slices.Clone(buf.Bytes())
}

// fitSpans widens the spans attribute of a row to cover its cells.
// An unparsable spans attribute is dropped.
func fitSpans(attrs []xml.Attr, cells []Cell) []xml.Attr {
	v, ok := attrValue(attrs, "spans")
	if !ok || len(cells) == 0 {
		return attrs
	}
	lo, hi := cells[0].Col, cells[0].Col
	for _, c := range cells[1:] {
		lo, hi = min(lo, c.Col), max(hi, c.Col)
	}
	first, last := 0, 0
	for _, f := range strings.Fields(v) {
		a, b, _ := strings.Cut(f, ":")
		x, errA := strconv.Atoi(a)
		y, errB := strconv.Atoi(b)
		if errA != nil || errB != nil || x < 1 || y < x {
			return removeAttr(slices.Clone(attrs), "spans")
		}
		if first == 0 {
			first, last = x, y
		}
		first, last = min(first, x), max(last, y)
	}
	if first == 0 {
		return removeAttr(slices.Clone(attrs), "spans")
	}
	if first <= lo && hi <= last {
		return attrs
	}
	spans := strconv.Itoa(min(first, lo)) + ":" + strconv.Itoa(max(last, hi))
	return setAttr(slices.Clone(attrs), "spans", spans)
}

func (w *xmlWriter) cell(c Cell) {
	w.open("c")
	w.attr("r", cellref.MustFormat(c.Row, c.Col))
	if c.Style != 0 {
		w.attrInt("s", c.Style)
	}
	if c.Type != "" && c.Type != TypeNumber {
		w.attr("t", c.Type)
	}
	for _, a := range c.Attr {
		w.attr(qname(a.Name), a.Value)
	}
	hasInline := c.Type == TypeInlineString
	if c.Formula == nil && !c.HasValue && !hasInline {
		w.selfClose()
		return
	}
	w.gt()
	if f := c.Formula; f != nil {
		if f.Text == "" {
			w.open("f", f.Attr...)
			w.selfClose()
		} else {
			w.textElement("f", f.Text, f.Attr...)
		}
	}
	if hasInline {
		w.open("is")
		w.gt()
		w.tElement(c.Inline)
		w.end("is")
	} else if c.HasValue {
		w.textElement("v", c.Value)
	}
	w.end("c")
}
