// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package ooxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Element is the position of an element inside the source bytes.
// Names and attributes keep their literal prefixes in Space.
type Element struct {
	Name xml.Name
	Attr []xml.Attr
	// Start is the offset of '<', OpenEnd is just past the start tag,
	// CloseStart is the offset of the end tag and End is just past it.
	// For a self-closing element OpenEnd == CloseStart == End.
	Start, OpenEnd, CloseStart, End int
}

// Prefix returns the element's prefix with the colon, or "".
func (e Element) Prefix() string {
	if e.Name.Space == "" {
		return ""
	}
	return e.Name.Space + ":"
}

// Content returns the bytes between the start and end tags.
func (e Element) Content(src []byte) []byte { return src[e.OpenEnd:e.CloseStart] }

// Doc is a scanned document: its root element and the root's children.
type Doc struct {
	Src      []byte
	Root     Element
	Children []Element
}

var errNoRoot = errors.New("no root element")

// Scan locates the root element of src and its direct children.
func Scan(src []byte) (*Doc, error) {
	tops, err := children(src, 0)
	if err != nil {
		return nil, err
	}
	if len(tops) != 1 {
		if len(tops) == 0 {
			return nil, errNoRoot
		}
		return nil, fmt.Errorf("%d root elements", len(tops))
	}
	doc := Doc{Src: src, Root: tops[0]}
	if doc.Children, err = Children(src, doc.Root); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Children returns the direct child elements of parent.
func Children(src []byte, parent Element) ([]Element, error) {
	return children(src[parent.OpenEnd:parent.CloseStart], parent.OpenEnd)
}

// Child returns the first child with the given local name.
func (d *Doc) Child(local string) (Element, bool) {
	i := slices.IndexFunc(d.Children, func(e Element) bool { return e.Name.Local == local })
	if i < 0 {
		return Element{}, false
	}
	return d.Children[i], true
}

// NamespacePrefix returns the prefix the root binds to ns, without colon.
func (d *Doc) NamespacePrefix(ns string) (string, bool) {
	for _, a := range d.Root.Attr {
		if a.Name.Space == "xmlns" && a.Value == ns {
			return a.Name.Local, true
		}
	}
	return "", false
}

func children(frag []byte, base int) ([]Element, error) {
	d := xml.NewDecoder(bytes.NewReader(frag))
	var (
		out   []Element
		cur   Element
		stack []xml.Name
	)
	for {
		off := int(d.InputOffset())
		tok, err := d.RawToken()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 {
				cur = Element{
					Name: t.Name, Attr: slices.Clone(t.Attr),
					Start: base + off, OpenEnd: base + int(d.InputOffset()),
				}
			}
			stack = append(stack, t.Name)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("offset %d: unexpected </%s>", base+off, qname(t.Name))
			}
			if top := stack[len(stack)-1]; top != t.Name {
				return nil, fmt.Errorf("offset %d: element <%s> closed by </%s>", base+off, qname(top), qname(t.Name))
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				cur.CloseStart, cur.End = base+off, base+int(d.InputOffset())
				out = append(out, cur)
			}
		}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("<%s>: %w", qname(stack[len(stack)-1]), io.ErrUnexpectedEOF)
	}
	return out, nil
}

func qname(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// edit replaces src[start:end] with data.
type edit struct {
	start, end int
	data       []byte
}

// splice applies non-overlapping edits to src.
func splice(src []byte, edits ...edit) []byte {
	slices.SortStableFunc(edits, func(a, b edit) int { return a.start - b.start })
	n := len(src)
	for _, e := range edits {
		n += len(e.data) - (e.end - e.start)
	}
	out := make([]byte, 0, n)
	last := 0
	for _, e := range edits {
		out = append(out, src[last:e.start]...)
		out = append(out, e.data...)
		last = e.end
	}
	return append(out, src[last:]...)
}

// insertPoint returns where an element named local belongs among the root
// children, given the schema order of the parent's children.
func (d *Doc) insertPoint(local string, order []string) int {
	rank := slices.Index(order, local)
	for _, c := range d.Children {
		if r := slices.Index(order, c.Name.Local); r > rank {
			return c.Start
		}
	}
	return d.Root.CloseStart
}

func attrValue(attrs []xml.Attr, local string) (string, bool) {
	for _, a := range attrs {
		if a.Name.Local == local && a.Name.Space == "" {
			return a.Value, true
		}
	}
	return "", false
}

// setAttr replaces the value of the unprefixed attribute local, appending it if absent.
func setAttr(attrs []xml.Attr, local, value string) []xml.Attr {
	for i, a := range attrs {
		if a.Name.Local == local && a.Name.Space == "" {
			attrs[i].Value = value
			return attrs
		}
	}
	return append(attrs, xml.Attr{Name: xml.Name{Local: local}, Value: value})
}

func removeAttr(attrs []xml.Attr, local string) []xml.Attr {
	return slices.DeleteFunc(attrs, func(a xml.Attr) bool { return a.Name.Local == local && a.Name.Space == "" })
}
