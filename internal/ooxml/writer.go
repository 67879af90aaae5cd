// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package ooxml

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/valyala/quicktemplate"
)

// xmlWriter writes SpreadsheetML elements with a fixed namespace prefix.
type xmlWriter struct {
	qw     *quicktemplate.Writer
	n, e   *quicktemplate.QWriter
	prefix string
}

func newXMLWriter(buf *bytes.Buffer, prefix string) *xmlWriter {
	qw := quicktemplate.AcquireWriter(buf)
	return &xmlWriter{qw: qw, n: qw.N(), e: qw.E(), prefix: prefix}
}

func (w *xmlWriter) release() {
	quicktemplate.ReleaseWriter(w.qw)
	w.qw, w.n, w.e = nil, nil, nil
}

// open writes "<prefix:local" and the attributes; finish it with gt or selfClose.
func (w *xmlWriter) open(local string, attrs ...xml.Attr) {
	w.n.S("<")
	w.n.S(w.prefix)
	w.n.S(local)
	for _, a := range attrs {
		w.attr(qname(a.Name), a.Value)
	}
}

func (w *xmlWriter) attr(name, value string) {
	w.n.S(" ")
	w.n.S(name)
	w.n.S(`="`)
	w.attrValue(value)
	w.n.S(`"`)
}

func (w *xmlWriter) attrInt(name string, v int) {
	w.n.S(" ")
	w.n.S(name)
	w.n.S(`="`)
	w.n.D(v)
	w.n.S(`"`)
}

// attrValue escapes whitespace that attribute normalization would destroy,
// and drops the characters XML cannot carry.
func (w *xmlWriter) attrValue(s string) {
	s = DropIllegal(s)
	for {
		i := strings.IndexAny(s, "\t\n\r")
		if i < 0 {
			w.e.S(s)
			return
		}
		w.e.S(s[:i])
		switch s[i] {
		case '\t':
			w.n.S("&#9;")
		case '\n':
			w.n.S("&#10;")
		default:
			w.n.S("&#13;")
		}
		s = s[i+1:]
	}
}

func (w *xmlWriter) gt()        { w.n.S(">") }
func (w *xmlWriter) selfClose() { w.n.S("/>") }

func (w *xmlWriter) end(local string) {
	w.n.S("</")
	w.n.S(w.prefix)
	w.n.S(local)
	w.n.S(">")
}

// text writes escaped character data.
func (w *xmlWriter) text(s string) {
	s = EscapeString(s)
	for {
		i := strings.IndexByte(s, '\r')
		if i < 0 {
			w.e.S(s)
			return
		}
		w.e.S(s[:i])
		w.n.S("&#13;")
		s = s[i+1:]
	}
}

func (w *xmlWriter) raw(b []byte) { w.n.Z(b) }

// textElement writes <local attrs>text</local>.
func (w *xmlWriter) textElement(local, text string, attrs ...xml.Attr) {
	w.open(local, attrs...)
	w.gt()
	w.text(text)
	w.end(local)
}

// valElement writes <local val="v"/>.
func (w *xmlWriter) valElement(local, v string) {
	w.open(local)
	w.attr("val", v)
	w.selfClose()
}

// startTag writes a start tag of el with the given attributes and its own prefix.
func (w *xmlWriter) startTag(el Element, attrs []xml.Attr) {
	w.n.S("<")
	w.n.S(qname(el.Name))
	for _, a := range attrs {
		w.attr(qname(a.Name), a.Value)
	}
	w.n.S(">")
}

func (w *xmlWriter) endTag(el Element) {
	w.n.S("</")
	w.n.S(qname(el.Name))
	w.n.S(">")
}

// needsPreserve reports whether <t> needs xml:space="preserve".
func needsPreserve(s string) bool {
	if s == "" {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return first == ' ' || first == '\t' || first == '\n' || first == '\r' ||
		last == ' ' || last == '\t' || last == '\n' || last == '\r' ||
		strings.Contains(s, "  ")
}

var preserveSpace = xml.Attr{Name: xml.Name{Space: "xml", Local: "space"}, Value: "preserve"}

// tElement writes a <t> with space preservation when needed.
func (w *xmlWriter) tElement(s string) {
	if needsPreserve(s) {
		w.textElement("t", s, preserveSpace)
	} else {
		w.textElement("t", s)
	}
}
