// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package ooxml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workbookSrc = `<workbook xmlns="` + NSMain + `" xmlns:r="` + NSRelationships + `">` +
	`<bookViews><workbookView xWindow="0" activeTab="2"/></bookViews>` +
	`<sheets><sheet name="A" sheetId="1" r:id="rId1"/><sheet name="B" sheetId="2" r:id="rId2"/>` +
	`<sheet name="C" sheetId="3" state="hidden" r:id="rId3"/></sheets>` +
	`<definedNames><definedName name="x" localSheetId="0">A!$A$1</definedName>` +
	`<definedName name="y" localSheetId="2">C!$A$1</definedName>` +
	`<definedName name="g">B!$A$1</definedName></definedNames>` +
	`<calcPr calcId="191029"/></workbook>`

func TestDecodeWorkbook(t *testing.T) {
	wb, err := DecodeWorkbook([]byte(workbookSrc))
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 3)
	c := wb.Sheets[2]
	assert.Equal(t, "C", c.Name)
	assert.Equal(t, 3, c.SheetID)
	assert.Equal(t, "rId3", c.RelID)
	assert.Equal(t, "hidden", c.State)
	assert.Equal(t, 2, c.Orig)

	_, err = DecodeWorkbook([]byte(`<workbook/>`))
	assert.Error(t, err)
	_, err = DecodeWorkbook([]byte(`<workbook><sheets><sheet sheetId="1"/></sheets></workbook>`))
	assert.Error(t, err)
}

func TestEncodeWorkbookIdentity(t *testing.T) {
	wb, err := DecodeWorkbook([]byte(workbookSrc))
	require.NoError(t, err)
	got, err := EncodeWorkbook([]byte(workbookSrc), wb.Sheets)
	require.NoError(t, err)
	assert.Equal(t, workbookSrc, string(got))
}

func TestEncodeWorkbookRemove(t *testing.T) {
	wb, err := DecodeWorkbook([]byte(workbookSrc))
	require.NoError(t, err)
	got, err := EncodeWorkbook([]byte(workbookSrc), wb.Sheets[1:])
	require.NoError(t, err)
	assert.Equal(t, `<workbook xmlns="`+NSMain+`" xmlns:r="`+NSRelationships+`">`+
		`<bookViews><workbookView xWindow="0" activeTab="1"/></bookViews>`+
		`<sheets><sheet name="B" sheetId="2" r:id="rId2"/>`+
		`<sheet name="C" sheetId="3" state="hidden" r:id="rId3"/></sheets>`+
		`<definedNames><definedName name="y" localSheetId="1">C!$A$1</definedName>`+
		`<definedName name="g">B!$A$1</definedName></definedNames>`+
		`<calcPr calcId="191029"/></workbook>`, string(got))

	// removing the only sheet a name is local to drops the whole element
	src := `<workbook xmlns:r="` + NSRelationships + `"><sheets><sheet name="A" sheetId="1" r:id="rId1"/>` +
		`<sheet name="B" sheetId="2" r:id="rId2"/></sheets>` +
		`<definedNames><definedName name="x" localSheetId="1">B!$A$1</definedName></definedNames></workbook>`
	wb, err = DecodeWorkbook([]byte(src))
	require.NoError(t, err)
	got, err = EncodeWorkbook([]byte(src), wb.Sheets[:1])
	require.NoError(t, err)
	assert.Equal(t, `<workbook xmlns:r="`+NSRelationships+`"><sheets><sheet name="A" sheetId="1" r:id="rId1"/></sheets></workbook>`, string(got))
}

func TestEncodeWorkbookInsertRename(t *testing.T) {
	wb, err := DecodeWorkbook([]byte(workbookSrc))
	require.NoError(t, err)
	sheets := append([]SheetEntry{{Name: "New", SheetID: 4, RelID: "rId4", Orig: -1}}, wb.Sheets...)
	sheets[2].Name = "Bee"
	sheets[3].State = ""
	got, err := EncodeWorkbook([]byte(workbookSrc), sheets)
	require.NoError(t, err)
	s := string(got)
	assert.Contains(t, s, `<sheets><sheet name="New" sheetId="4" r:id="rId4"/><sheet name="A" sheetId="1" r:id="rId1"/>`+
		`<sheet name="Bee" sheetId="2" r:id="rId2"/><sheet name="C" sheetId="3" r:id="rId3"/></sheets>`)
	assert.Contains(t, s, `<definedName name="x" localSheetId="1">`)
	assert.Contains(t, s, `<definedName name="y" localSheetId="3">`)
	assert.Contains(t, s, `activeTab="3"`)

	// a workbook without the relationships prefix gets a local declaration
	src := `<workbook xmlns="` + NSMain + `"><sheets/></workbook>`
	got, err = EncodeWorkbook([]byte(src), []SheetEntry{{Name: "S", SheetID: 1, RelID: "rId1", Orig: -1}})
	require.NoError(t, err)
	assert.Equal(t, `<workbook xmlns="`+NSMain+`"><sheets><sheet name="S" sheetId="1" xmlns:r="`+NSRelationships+`" r:id="rId1"/></sheets></workbook>`, string(got))
	wb, err = DecodeWorkbook(got)
	require.NoError(t, err)
	assert.Equal(t, "rId1", wb.Sheets[0].RelID)
}
