// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package ooxml decodes and encodes the XML parts of a SpreadsheetML package.
//
// Parts are never fully re-modeled: encoders splice regenerated elements into
// the original bytes, so whatever the decoder does not understand survives
// a load/save cycle verbatim.
package ooxml

// Namespaces.
const (
	NSMain          = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	NSRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSPackageRels   = "http://schemas.openxmlformats.org/package/2006/relationships"
	NSContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
)

// Relationship types.
const (
	RelOfficeDocument = NSRelationships + "/officeDocument"
	RelWorksheet      = NSRelationships + "/worksheet"
	RelChartsheet     = NSRelationships + "/chartsheet"
	RelSharedStrings  = NSRelationships + "/sharedStrings"
	RelStyles         = NSRelationships + "/styles"
	RelCalcChain      = NSRelationships + "/calcChain"
	RelTable          = NSRelationships + "/table"
	RelCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	RelExtendedProps  = NSRelationships + "/extended-properties"
)

// Content types.
const (
	MimeRels          = "application/vnd.openxmlformats-package.relationships+xml"
	MimeXML           = "application/xml"
	MimeWorkbook      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	MimeWorkbookMacro = "application/vnd.ms-excel.sheet.macroEnabled.main+xml"
	MimeTemplate      = "application/vnd.openxmlformats-officedocument.spreadsheetml.template.main+xml"
	MimeTemplateMacro = "application/vnd.ms-excel.template.macroEnabled.main+xml"
	MimeWorksheet     = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	MimeStyles        = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
	MimeSharedStrings = "application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"
	MimeTable         = "application/vnd.openxmlformats-officedocument.spreadsheetml.table+xml"
	MimeCoreProps     = "application/vnd.openxmlformats-package.core-properties+xml"
	MimeExtendedProps = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
