// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package ooxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"slices"
	"strconv"
)

// SheetEntry is a <sheet> of the workbook part.
type SheetEntry struct {
	Name    string
	SheetID int
	RelID   string
	// State is "", "hidden" or "veryHidden".
	State string
	// Attr holds the attributes as read, nil for a sheet added since.
	Attr []xml.Attr
	// Orig is the position the sheet was decoded at, -1 for an added sheet.
	Orig int
}

// Workbook is the decoded sheet list of the workbook part.
type Workbook struct {
	Sheets []SheetEntry
}

// DecodeWorkbook parses the sheet list of the workbook part.
func DecodeWorkbook(src []byte) (*Workbook, error) {
	doc, err := Scan(src)
	if err != nil {
		return nil, err
	}
	if doc.Root.Name.Local != "workbook" {
		return nil, fmt.Errorf("root element is <%s>, not <workbook>", doc.Root.Name.Local)
	}
	sheetsEl, ok := doc.Child("sheets")
	if !ok {
		return nil, errors.New("no <sheets>")
	}
	children, err := Children(src, sheetsEl)
	if err != nil {
		return nil, err
	}
	var wb Workbook
	for _, c := range children {
		if c.Name.Local != "sheet" {
			continue
		}
		se := SheetEntry{Attr: c.Attr, Orig: len(wb.Sheets)}
		for _, a := range c.Attr {
			switch {
			case a.Name.Local == "name" && a.Name.Space == "":
				se.Name = a.Value
			case a.Name.Local == "sheetId" && a.Name.Space == "":
				se.SheetID, _ = strconv.Atoi(a.Value)
			case a.Name.Local == "state" && a.Name.Space == "":
				se.State = a.Value
			case a.Name.Local == "id" && a.Name.Space != "" && a.Name.Space != "xmlns":
				se.RelID = a.Value
			}
		}
		if se.Name == "" {
			return nil, fmt.Errorf("<sheet> #%d without name", len(wb.Sheets)+1)
		}
		wb.Sheets = append(wb.Sheets, se)
	}
	return &wb, nil
}

// EncodeWorkbook rewrites the sheet list of src. Sheet-local defined names
// and the active tab follow the sheets' new positions; names local to a
// removed sheet are dropped.
func EncodeWorkbook(src []byte, sheets []SheetEntry) ([]byte, error) {
	doc, err := Scan(src)
	if err != nil {
		return nil, err
	}
	sheetsEl, ok := doc.Child("sheets")
	if !ok {
		return nil, errors.New("no <sheets>")
	}
	relPrefix, hasRelPrefix := doc.NamespacePrefix(NSRelationships)

	var buf bytes.Buffer
	w := newXMLWriter(&buf, sheetsEl.Prefix())
	w.startTag(sheetsEl, sheetsEl.Attr)
	for _, s := range sheets {
		w.open("sheet", s.attrs(relPrefix, hasRelPrefix)...)
		w.selfClose()
	}
	w.endTag(sheetsEl)
	w.release()
	edits := []edit{{start: sheetsEl.Start, end: sheetsEl.End, data: slices.Clone(buf.Bytes())}}

	origSheets, err := Children(src, sheetsEl)
	if err != nil {
		return nil, err
	}
	var origCount int
	for _, c := range origSheets {
		if c.Name.Local == "sheet" {
			origCount++
		}
	}
	// remap[orig] is the new position, -1 if removed
	remap := make([]int, origCount)
	for i := range remap {
		remap[i] = -1
	}
	identity := origCount == len(sheets)
	for i, s := range sheets {
		if s.Orig >= 0 && s.Orig < origCount {
			remap[s.Orig] = i
		}
		if s.Orig != i {
			identity = false
		}
	}
	lookup := func(v string) (int, bool) {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, false
		}
		if n >= len(remap) {
			return -1, true
		}
		return remap[n], true
	}
	if !identity {
		if el, ok := doc.Child("definedNames"); ok {
			e, err := remapDefinedNames(src, el, lookup)
			if err != nil {
				return nil, err
			}
			edits = append(edits, e)
		}
		if el, ok := doc.Child("bookViews"); ok {
			e, err := remapBookViews(src, el, lookup, len(sheets))
			if err != nil {
				return nil, err
			}
			edits = append(edits, e...)
		}
	}
	return splice(src, edits...), nil
}

func (s SheetEntry) attrs(relPrefix string, hasRelPrefix bool) []xml.Attr {
	if s.Attr == nil {
		attrs := []xml.Attr{
			{Name: xml.Name{Local: "name"}, Value: s.Name},
			{Name: xml.Name{Local: "sheetId"}, Value: strconv.Itoa(s.SheetID)},
		}
		if s.State != "" {
			attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "state"}, Value: s.State})
		}
		if !hasRelPrefix {
			relPrefix = "r"
			attrs = append(attrs, xml.Attr{Name: xml.Name{Space: "xmlns", Local: relPrefix}, Value: NSRelationships})
		}
		return append(attrs, xml.Attr{Name: xml.Name{Space: relPrefix, Local: "id"}, Value: s.RelID})
	}
	attrs := setAttr(slices.Clone(s.Attr), "name", s.Name)
	if s.State == "" {
		return removeAttr(attrs, "state")
	}
	return setAttr(attrs, "state", s.State)
}

func remapDefinedNames(src []byte, el Element, lookup func(string) (int, bool)) (edit, error) {
	names, err := Children(src, el)
	if err != nil {
		return edit{}, err
	}
	var buf bytes.Buffer
	w := newXMLWriter(&buf, el.Prefix())
	var kept int
	for _, dn := range names {
		attrs := slices.Clone(dn.Attr)
		if v, ok := attrValue(attrs, "localSheetId"); ok {
			if n, ok := lookup(v); ok {
				if n < 0 {
					continue
				}
				attrs = setAttr(attrs, "localSheetId", strconv.Itoa(n))
			}
		}
		kept++
		if dn.OpenEnd == dn.End {
			w.n.S("<")
			w.n.S(qname(dn.Name))
			for _, a := range attrs {
				w.attr(qname(a.Name), a.Value)
			}
			w.selfClose()
			continue
		}
		w.startTag(dn, attrs)
		w.raw(dn.Content(src))
		w.endTag(dn)
	}
	w.release()
	if kept == 0 {
		return edit{start: el.Start, end: el.End}, nil
	}
	return edit{start: el.OpenEnd, end: el.CloseStart, data: slices.Clone(buf.Bytes())}, nil
}

func remapBookViews(src []byte, el Element, lookup func(string) (int, bool), sheetCount int) ([]edit, error) {
	views, err := Children(src, el)
	if err != nil {
		return nil, err
	}
	var edits []edit
	for _, v := range views {
		attrs := slices.Clone(v.Attr)
		changed := false
		for _, local := range []string{"activeTab", "firstSheet"} {
			s, ok := attrValue(attrs, local)
			if !ok {
				continue
			}
			n, ok := lookup(s)
			if !ok {
				continue
			}
			n = min(max(n, 0), max(sheetCount-1, 0))
			attrs = setAttr(attrs, local, strconv.Itoa(n))
			changed = true
		}
		if !changed {
			continue
		}
		var buf bytes.Buffer
		w := newXMLWriter(&buf, "")
		w.n.S("<")
		w.n.S(qname(v.Name))
		for _, a := range attrs {
			w.attr(qname(a.Name), a.Value)
		}
		if v.OpenEnd == v.End {
			w.selfClose()
		} else {
			w.gt()
		}
		w.release()
		edits = append(edits, edit{start: v.Start, end: v.OpenEnd, data: slices.Clone(buf.Bytes())})
	}
	return edits, nil
}
