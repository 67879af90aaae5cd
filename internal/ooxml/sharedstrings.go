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
)

// SharedString is an <si> of the shared strings part.
type SharedString struct {
	Text string
	// Rich is set for an entry with formatted runs.
	Rich bool
}

// DecodeSharedStrings parses the shared strings part.
func DecodeSharedStrings(src []byte) ([]SharedString, error) {
	doc, err := Scan(src)
	if err != nil {
		return nil, err
	}
	if doc.Root.Name.Local != "sst" {
		return nil, fmt.Errorf("root element is <%s>, not <sst>", doc.Root.Name.Local)
	}
	items := make([]SharedString, 0, len(doc.Children))
	for _, si := range doc.Children {
		if si.Name.Local != "si" {
			continue
		}
		item, err := decodeSI(si.Content(src))
		if err != nil {
			return nil, fmt.Errorf("si #%d: %w", len(items), err)
		}
		items = append(items, item)
	}
	return items, nil
}

// decodeSI concatenates the <t> of the entry and of its runs,
// leaving out phonetic runs.
func decodeSI(content []byte) (SharedString, error) {
	d := xml.NewDecoder(bytes.NewReader(content))
	var (
		item  SharedString
		b     strings.Builder
		path  []string
		inRPh int
	)
	for {
		tok, err := d.RawToken()
		if err != nil {
			if err == io.EOF {
				item.Text = UnescapeString(b.String())
				return item, nil
			}
			return item, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			path = append(path, t.Name.Local)
			switch t.Name.Local {
			case "r":
				if len(path) == 1 {
					item.Rich = true
				}
			case "rPh":
				inRPh++
			}
		case xml.EndElement:
			if len(path) == 0 {
				return item, fmt.Errorf("unexpected </%s>", t.Name.Local)
			}
			if path[len(path)-1] == "rPh" {
				inRPh--
			}
			path = path[:len(path)-1]
		case xml.CharData:
			if inRPh == 0 && len(path) > 0 && path[len(path)-1] == "t" &&
				(len(path) == 1 || len(path) == 2 && path[0] == "r") {
				b.Write(t)
			}
		}
	}
}

// EncodeSharedStrings appends items[from:] to the entries of src, and sets
// count to the number of cells referencing the table. With a nil src a new
// part is generated from all the items.
func EncodeSharedStrings(src []byte, items []SharedString, from, count int) ([]byte, error) {
	if src == nil {
		src = []byte(xmlHeader + `<sst xmlns="` + NSMain + `"/>`)
		from = 0
	}
	doc, err := Scan(src)
	if err != nil {
		return nil, err
	}
	root := doc.Root
	attrs := setAttr(slices.Clone(root.Attr), "count", strconv.Itoa(count))
	attrs = setAttr(attrs, "uniqueCount", strconv.Itoa(len(items)))

	var buf bytes.Buffer
	w := newXMLWriter(&buf, root.Prefix())
	w.startTag(root, attrs)
	w.raw(root.Content(src))
	for _, item := range items[min(from, len(items)):] {
		w.open("si")
		w.gt()
		w.tElement(item.Text)
		w.end("si")
	}
	w.endTag(root)
	w.release()
	return splice(src, edit{start: root.Start, end: root.End, data: slices.Clone(buf.Bytes())}), nil
}
