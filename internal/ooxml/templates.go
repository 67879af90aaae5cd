// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package ooxml

// Part names of a default package.
const (
	PartWorkbook      = "xl/workbook.xml"
	PartStyles        = "xl/styles.xml"
	PartSharedStrings = "xl/sharedStrings.xml"
	PartRootRels      = "_rels/.rels"
)

// DefaultPackage returns the parts of a workbook with one empty sheet
// "Sheet1", in archive order.
func DefaultPackage() (order []string, parts map[string][]byte) {
	parts = map[string][]byte{
		"[Content_Types].xml": []byte(xmlHeader + `<Types xmlns="` + NSContentTypes + `">` +
			`<Default Extension="rels" ContentType="` + MimeRels + `"/>` +
			`<Default Extension="xml" ContentType="` + MimeXML + `"/>` +
			`<Override PartName="/xl/workbook.xml" ContentType="` + MimeWorkbook + `"/>` +
			`<Override PartName="/xl/worksheets/sheet1.xml" ContentType="` + MimeWorksheet + `"/>` +
			`<Override PartName="/xl/styles.xml" ContentType="` + MimeStyles + `"/>` +
			`<Override PartName="/xl/sharedStrings.xml" ContentType="` + MimeSharedStrings + `"/>` +
			`<Override PartName="/docProps/core.xml" ContentType="` + MimeCoreProps + `"/>` +
			`<Override PartName="/docProps/app.xml" ContentType="` + MimeExtendedProps + `"/>` +
			`</Types>`),
		PartRootRels: []byte(xmlHeader + `<Relationships xmlns="` + NSPackageRels + `">` +
			`<Relationship Id="rId1" Type="` + RelOfficeDocument + `" Target="xl/workbook.xml"/>` +
			`<Relationship Id="rId2" Type="` + RelCoreProps + `" Target="docProps/core.xml"/>` +
			`<Relationship Id="rId3" Type="` + RelExtendedProps + `" Target="docProps/app.xml"/>` +
			`</Relationships>`),
		"docProps/app.xml": []byte(xmlHeader +
			`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">` +
			`<Application>xlsxedit</Application></Properties>`),
		"docProps/core.xml": []byte(xmlHeader +
			`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"` +
			` xmlns:dc="http://purl.org/dc/elements/1.1/"/>`),
		PartWorkbook: []byte(xmlHeader + `<workbook xmlns="` + NSMain + `" xmlns:r="` + NSRelationships + `">` +
			`<bookViews><workbookView activeTab="0"/></bookViews>` +
			`<sheets><sheet name="Sheet1" sheetId="1" r:id="rId1"/></sheets>` +
			`</workbook>`),
		"xl/_rels/workbook.xml.rels": []byte(xmlHeader + `<Relationships xmlns="` + NSPackageRels + `">` +
			`<Relationship Id="rId1" Type="` + RelWorksheet + `" Target="worksheets/sheet1.xml"/>` +
			`<Relationship Id="rId2" Type="` + RelStyles + `" Target="styles.xml"/>` +
			`<Relationship Id="rId3" Type="` + RelSharedStrings + `" Target="sharedStrings.xml"/>` +
			`</Relationships>`),
		"xl/worksheets/sheet1.xml": NewWorksheet(),
		PartStyles: []byte(xmlHeader + `<styleSheet xmlns="` + NSMain + `">` +
			`<fonts count="1"><font><sz val="11"/><name val="Calibri"/></font></fonts>` +
			`<fills count="2"><fill><patternFill patternType="none"/></fill>` +
			`<fill><patternFill patternType="gray125"/></fill></fills>` +
			`<borders count="1"><border><left/><right/><top/><bottom/><diagonal/></border></borders>` +
			`<cellStyleXfs count="1"><xf numFmtId="0" fontId="0" fillId="0" borderId="0"/></cellStyleXfs>` +
			`<cellXfs count="1"><xf numFmtId="0" fontId="0" fillId="0" borderId="0" xfId="0"/></cellXfs>` +
			`<cellStyles count="1"><cellStyle name="Normal" xfId="0" builtinId="0"/></cellStyles>` +
			`</styleSheet>`),
		PartSharedStrings: []byte(xmlHeader + `<sst xmlns="` + NSMain + `" count="0" uniqueCount="0"/>`),
	}
	order = []string{
		"[Content_Types].xml", PartRootRels, "docProps/app.xml", "docProps/core.xml",
		PartWorkbook, "xl/_rels/workbook.xml.rels", "xl/worksheets/sheet1.xml",
		PartStyles, PartSharedStrings,
	}
	return order, parts
}

// NewWorksheet returns an empty worksheet part.
func NewWorksheet() []byte {
	return []byte(xmlHeader + `<worksheet xmlns="` + NSMain + `" xmlns:r="` + NSRelationships + `">` +
		`<dimension ref="A1"/><sheetData/></worksheet>`)
}
