// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package ooxml

import (
	"bytes"
	"encoding/xml"
	"path"
	"slices"
	"strconv"
	"strings"
)

// ContentTypes maps the [Content_Types].xml part.
type ContentTypes struct {
	XMLName   xml.Name   `xml:"Types"`
	Xmlns     string     `xml:"xmlns,attr"`
	Defaults  []Default  `xml:"Default"`
	Overrides []Override `xml:"Override"`
}

// Default assigns a content type to an extension.
type Default struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// Override assigns a content type to one part; PartName starts with "/".
type Override struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// DecodeContentTypes parses [Content_Types].xml.
func DecodeContentTypes(src []byte) (*ContentTypes, error) {
	var ct ContentTypes
	if err := xml.Unmarshal(src, &ct); err != nil {
		return nil, err
	}
	return &ct, nil
}

// Encode marshals the content types.
func (ct *ContentTypes) Encode() ([]byte, error) {
	// a decoded XMLName carries the namespace, which would repeat xmlns
	ct.XMLName, ct.Xmlns = xml.Name{}, NSContentTypes
	return marshal(ct)
}

// TypeOf returns the content type of the part (name without leading "/").
func (ct *ContentTypes) TypeOf(name string) string {
	partName := "/" + strings.TrimPrefix(name, "/")
	for _, o := range ct.Overrides {
		if strings.EqualFold(o.PartName, partName) {
			return o.ContentType
		}
	}
	ext := strings.TrimPrefix(path.Ext(partName), ".")
	for _, d := range ct.Defaults {
		if strings.EqualFold(d.Extension, ext) {
			return d.ContentType
		}
	}
	return ""
}

// SetOverride adds or replaces the override for the part.
func (ct *ContentTypes) SetOverride(name, contentType string) {
	partName := "/" + strings.TrimPrefix(name, "/")
	for i, o := range ct.Overrides {
		if strings.EqualFold(o.PartName, partName) {
			ct.Overrides[i].ContentType = contentType
			return
		}
	}
	ct.Overrides = append(ct.Overrides, Override{PartName: partName, ContentType: contentType})
}

// RemoveOverride deletes the override of the part, reporting whether it existed.
func (ct *ContentTypes) RemoveOverride(name string) bool {
	partName := "/" + strings.TrimPrefix(name, "/")
	n := len(ct.Overrides)
	ct.Overrides = slices.DeleteFunc(ct.Overrides, func(o Override) bool {
		return strings.EqualFold(o.PartName, partName)
	})
	return len(ct.Overrides) != n
}

// Relationships maps a *.rels part.
type Relationships struct {
	XMLName       xml.Name       `xml:"Relationships"`
	Xmlns         string         `xml:"xmlns,attr"`
	Relationships []Relationship `xml:"Relationship"`
}

// Relationship is one link from the source part.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// DecodeRelationships parses a relationships part.
func DecodeRelationships(src []byte) (*Relationships, error) {
	var rels Relationships
	if err := xml.Unmarshal(src, &rels); err != nil {
		return nil, err
	}
	return &rels, nil
}

// Encode marshals the relationships.
func (rels *Relationships) Encode() ([]byte, error) {
	rels.XMLName, rels.Xmlns = xml.Name{}, NSPackageRels
	return marshal(rels)
}

// ByID returns the relationship with the given id.
func (rels *Relationships) ByID(id string) (Relationship, bool) {
	for _, r := range rels.Relationships {
		if r.ID == id {
			return r, true
		}
	}
	return Relationship{}, false
}

// ByType returns the first relationship of the given type.
func (rels *Relationships) ByType(typ string) (Relationship, bool) {
	for _, r := range rels.Relationships {
		if r.Type == typ {
			return r, true
		}
	}
	return Relationship{}, false
}

// Add appends a relationship with a fresh "rIdN" id, and returns that id.
func (rels *Relationships) Add(typ, target string) string {
	ids := make(map[string]struct{}, len(rels.Relationships))
	for _, r := range rels.Relationships {
		ids[r.ID] = struct{}{}
	}
	var id string
	for n := len(rels.Relationships) + 1; ; n++ {
		id = "rId" + strconv.Itoa(n)
		if _, ok := ids[id]; !ok {
			break
		}
	}
	rels.Relationships = append(rels.Relationships, Relationship{ID: id, Type: typ, Target: target})
	return id
}

// Remove deletes the relationship with the given id.
func (rels *Relationships) Remove(id string) {
	rels.Relationships = slices.DeleteFunc(rels.Relationships, func(r Relationship) bool { return r.ID == id })
}

// RelsPart returns the relationships part name of the part: xl/workbook.xml
// has xl/_rels/workbook.xml.rels.
func RelsPart(part string) string {
	dir, file := path.Split(strings.TrimPrefix(part, "/"))
	return dir + "_rels/" + file + ".rels"
}

// ResolveTarget resolves an internal relationship target against its source part.
func ResolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return strings.TrimPrefix(path.Join(path.Dir(strings.TrimPrefix(source, "/")), target), "/")
}

// RelativeTarget is the inverse of ResolveTarget: the path of part
// relative to the directory of source.
func RelativeTarget(source, part string) string {
	part = strings.TrimPrefix(part, "/")
	var up string
	for dir := path.Dir(strings.TrimPrefix(source, "/")); dir != "."; dir = path.Dir(dir) {
		if rel, ok := strings.CutPrefix(part, dir+"/"); ok {
			return up + rel
		}
		up += "../"
	}
	return up + part
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xmlHeader)
	if err := xml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
