// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package ooxml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentTypes(t *testing.T) {
	_, parts := DefaultPackage()
	ct, err := DecodeContentTypes(parts["[Content_Types].xml"])
	require.NoError(t, err)
	assert.Equal(t, MimeWorkbook, ct.TypeOf("xl/workbook.xml"))
	assert.Equal(t, MimeWorkbook, ct.TypeOf("/xl/workbook.xml"))
	assert.Equal(t, MimeRels, ct.TypeOf("_rels/.rels"))
	assert.Equal(t, MimeXML, ct.TypeOf("xl/unknown.xml"))
	assert.Equal(t, "", ct.TypeOf("xl/media/image1.png"))

	ct.SetOverride("xl/worksheets/sheet2.xml", MimeWorksheet)
	assert.True(t, ct.RemoveOverride("/xl/sharedStrings.xml"))
	assert.False(t, ct.RemoveOverride("xl/sharedStrings.xml"))

	b, err := ct.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(b), `<Types xmlns="`+NSContentTypes+`">`)
	ct2, err := DecodeContentTypes(b)
	require.NoError(t, err)
	assert.Equal(t, MimeWorksheet, ct2.TypeOf("xl/worksheets/sheet2.xml"))
	assert.Equal(t, MimeXML, ct2.TypeOf("xl/sharedStrings.xml"))
	assert.Equal(t, ct.Overrides, ct2.Overrides)
}

func TestRelationships(t *testing.T) {
	_, parts := DefaultPackage()
	rels, err := DecodeRelationships(parts["xl/_rels/workbook.xml.rels"])
	require.NoError(t, err)
	r, ok := rels.ByType(RelStyles)
	require.True(t, ok)
	assert.Equal(t, "styles.xml", r.Target)
	r, ok = rels.ByID("rId1")
	require.True(t, ok)
	assert.Equal(t, RelWorksheet, r.Type)

	id := rels.Add(RelWorksheet, "worksheets/sheet2.xml")
	assert.Equal(t, "rId4", id)
	rels.Remove("rId2")
	assert.Equal(t, "rId5", rels.Add(RelWorksheet, "worksheets/sheet3.xml"))
	assert.Equal(t, "rId6", rels.Add(RelWorksheet, "worksheets/sheet4.xml"))
	_, ok = rels.ByType(RelStyles)
	assert.False(t, ok)

	b, err := rels.Encode()
	require.NoError(t, err)
	rels2, err := DecodeRelationships(b)
	require.NoError(t, err)
	assert.Equal(t, rels.Relationships, rels2.Relationships)
}

func TestTargets(t *testing.T) {
	assert.Equal(t, "xl/_rels/workbook.xml.rels", RelsPart("xl/workbook.xml"))
	assert.Equal(t, "xl/_rels/workbook.xml.rels", RelsPart("/xl/workbook.xml"))
	assert.Equal(t, "_rels/.rels", RelsPart(""))

	assert.Equal(t, "xl/worksheets/sheet1.xml", ResolveTarget("xl/workbook.xml", "worksheets/sheet1.xml"))
	assert.Equal(t, "xl/styles.xml", ResolveTarget("xl/workbook.xml", "/xl/styles.xml"))
	assert.Equal(t, "docProps/app.xml", ResolveTarget("xl/workbook.xml", "../docProps/app.xml"))
	assert.Equal(t, "xl/workbook.xml", ResolveTarget("", "xl/workbook.xml"))

	assert.Equal(t, "worksheets/sheet2.xml", RelativeTarget("xl/workbook.xml", "xl/worksheets/sheet2.xml"))
	assert.Equal(t, "../other/sheet.xml", RelativeTarget("xl/workbook.xml", "other/sheet.xml"))
	assert.Equal(t, "../tables/table1.xml", RelativeTarget("xl/worksheets/sheet1.xml", "xl/tables/table1.xml"))
	assert.Equal(t, "../../t.xml", RelativeTarget("/xl/worksheets/sheet1.xml", "/t.xml"))
	for _, part := range []string{"xl/tables/table1.xml", "docProps/app.xml", "xl/worksheets/sheet2.xml"} {
		assert.Equal(t, part, ResolveTarget("xl/worksheets/sheet1.xml", RelativeTarget("xl/worksheets/sheet1.xml", part)))
	}
	assert.Equal(t, "xl/workbook.xml", RelativeTarget("", "xl/workbook.xml"))
}

func TestDefaultPackage(t *testing.T) {
	order, parts := DefaultPackage()
	require.Len(t, parts, len(order))
	for _, name := range order {
		_, err := Scan(parts[name])
		assert.NoError(t, err, name)
	}
	wb, err := DecodeWorkbook(parts[PartWorkbook])
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)
	assert.Equal(t, "Sheet1", wb.Sheets[0].Name)
	assert.Equal(t, "rId1", wb.Sheets[0].RelID)

	ss, err := DecodeStyles(parts[PartStyles])
	require.NoError(t, err)
	assert.Len(t, ss.CellXfs, 1)

	items, err := DecodeSharedStrings(parts[PartSharedStrings])
	require.NoError(t, err)
	assert.Empty(t, items)
}
