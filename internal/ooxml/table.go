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
)

// TableStyle is the style of new tables.
const TableStyle = "TableStyleMedium2"

// Table is the header of a table part.
type Table struct {
	ID   int
	Name string
	// Ref is the range of the table, header row included.
	Ref     string
	Columns []string
}

// DecodeTable reads the id, name and ref of a table part.
// Columns are not decoded.
func DecodeTable(src []byte) (Table, error) {
	doc, err := Scan(src)
	if err != nil {
		return Table{}, err
	}
	if doc.Root.Name.Local != "table" {
		return Table{}, fmt.Errorf("root element is <%s>, not <table>", doc.Root.Name.Local)
	}
	var t Table
	if v, ok := attrValue(doc.Root.Attr, "id"); ok {
		if t.ID, err = strconv.Atoi(v); err != nil {
			return t, fmt.Errorf("table id %q: %w", v, err)
		}
	}
	t.Name, _ = attrValue(doc.Root.Attr, "name")
	if t.Name == "" {
		t.Name, _ = attrValue(doc.Root.Attr, "displayName")
	}
	t.Ref, _ = attrValue(doc.Root.Attr, "ref")
	return t, nil
}

// EncodeTable returns a table part with an autofilter over the whole
// range and the default table style.
func EncodeTable(t Table) []byte {
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	w := newXMLWriter(&buf, "")
	defer w.release()
	w.open("table")
	w.attr("xmlns", NSMain)
	w.attrInt("id", t.ID)
	w.attr("name", t.Name)
	w.attr("displayName", t.Name)
	w.attr("ref", t.Ref)
	w.attr("totalsRowShown", "0")
	w.gt()
	w.open("autoFilter")
	w.attr("ref", t.Ref)
	w.selfClose()
	w.open("tableColumns")
	w.attrInt("count", len(t.Columns))
	w.gt()
	for i, name := range t.Columns {
		w.open("tableColumn")
		w.attrInt("id", i+1)
		w.attr("name", name)
		w.selfClose()
	}
	w.end("tableColumns")
	w.open("tableStyleInfo")
	w.attr("name", TableStyle)
	w.attr("showFirstColumn", "0")
	w.attr("showLastColumn", "0")
	w.attr("showRowStripes", "1")
	w.attr("showColumnStripes", "0")
	w.selfClose()
	w.end("table")
	return slices.Clone(buf.Bytes())
}

// AddTablePart appends a <tablePart> referencing relID to the tableParts
// of a worksheet part, creating the element at its schema position.
func AddTablePart(src []byte, relID string) ([]byte, error) {
	doc, err := Scan(src)
	if err != nil {
		return nil, err
	}
	if doc.Root.Name.Local != "worksheet" {
		return nil, fmt.Errorf("root element is <%s>, not <worksheet>", doc.Root.Name.Local)
	}
	el, ok := doc.Child("tableParts")
	var parts []Element
	if ok {
		if parts, err = Children(src, el); err != nil {
			return nil, err
		}
	} else {
		at := doc.insertPoint("tableParts", worksheetOrder)
		el = Element{Name: xml.Name{Space: doc.Root.Name.Space, Local: "tableParts"}, Start: at, End: at}
	}

	var buf bytes.Buffer
	w := newXMLWriter(&buf, el.Prefix())
	defer w.release()
	w.open("tableParts", setAttr(slices.Clone(el.Attr), "count", strconv.Itoa(len(parts)+1))...)
	w.gt()
	for _, p := range parts {
		w.raw(src[p.Start:p.End])
	}
	w.open("tablePart")
	if prefix, ok := doc.NamespacePrefix(NSRelationships); ok && prefix != "" {
		w.attr(prefix+":id", relID)
	} else {
		w.attr("xmlns:r", NSRelationships)
		w.attr("r:id", relID)
	}
	w.selfClose()
	w.end("tableParts")
	return splice(src, edit{start: el.Start, end: el.End, data: slices.Clone(buf.Bytes())}), nil
}
