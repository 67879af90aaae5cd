// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/UNO-SOFT/xlsxedit/internal/archive"
	"github.com/UNO-SOFT/xlsxedit/internal/ooxml"
)

const (
	xmlDecl   = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	sheetPart = "xl/worksheets/sheet1.xml"
)

// worksheetXML returns a sheet part with the given sheetData content.
func worksheetXML(dimension, rows string) string {
	return xmlDecl + `<worksheet xmlns="` + ooxml.NSMain + `" xmlns:r="` + ooxml.NSRelationships + `">` +
		`<dimension ref="` + dimension + `"/><sheetViews><sheetView workbookViewId="0"/></sheetViews>` +
		`<sheetData>` + rows + `</sheetData>` +
		`<pageMargins left="0.7" right="0.7" top="0.75" bottom="0.75" header="0.3" footer="0.3"/></worksheet>`
}

// sstXML returns a shared string table of plain strings.
func sstXML(items ...string) string {
	s := xmlDecl + `<sst xmlns="` + ooxml.NSMain + `">`
	for _, it := range items {
		s += `<si><t>` + it + `</t></si>`
	}
	return s + `</sst>`
}

// buildPackage returns the default package with parts overridden (or
// added) and dropped.
func buildPackage(t *testing.T, override map[string]string, drop ...string) []byte {
	t.Helper()
	order, parts := ooxml.DefaultPackage()
	for _, name := range slices.Sorted(maps.Keys(override)) {
		if _, ok := parts[name]; !ok {
			order = append(order, name)
		}
		parts[name] = []byte(override[name])
	}
	for _, name := range drop {
		delete(parts, name)
		order = slices.DeleteFunc(order, func(n string) bool { return n == name })
	}
	data, err := archive.New(order, parts)
	require.NoError(t, err)
	return data
}

// sample is a workbook with Sheet1 holding A1=1.0, B2=4.0 and
// "Hello" shared by A3 and C3.
func sample(t *testing.T) []byte {
	t.Helper()
	return buildPackage(t, map[string]string{
		sheetPart: worksheetXML("A1:C3",
			`<row r="1" spans="1:3"><c r="A1"><v>1.0</v></c></row>`+
				`<row r="2" spans="1:3" ht="20" customHeight="1"><c r="B2"><v>4.0</v></c></row>`+
				`<row r="3" spans="1:3"><c r="A3" t="s"><v>0</v></c><c r="C3" t="s"><v>0</v></c></row>`),
		ooxml.PartSharedStrings: sstXML("Hello", "unused"),
		"xl/media/image1.png":   "\x89PNG\r\n\x1a\nnot really",
	})
}

func load(t *testing.T, data []byte) *Workbook {
	t.Helper()
	wb, err := Load(data, Options{})
	require.NoError(t, err)
	return wb
}

// reload saves wb and loads the result.
func reload(t *testing.T, wb *Workbook) *Workbook {
	t.Helper()
	data, err := wb.Bytes()
	require.NoError(t, err)
	return load(t, data)
}

func value(t *testing.T, wb *Workbook, sheet, address string) string {
	t.Helper()
	sh, err := wb.Sheet(sheet)
	require.NoError(t, err)
	v, err := sh.Value(address)
	require.NoError(t, err)
	return v
}

// part returns the named part of the saved archive.
func part(t *testing.T, data []byte, name string) string {
	t.Helper()
	arc, err := archive.Open(data)
	require.NoError(t, err)
	b, err := arc.Read(name)
	require.NoError(t, err)
	return string(b)
}
