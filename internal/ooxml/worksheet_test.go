// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package ooxml

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sheetSrc = xmlHeader + `<worksheet xmlns="` + NSMain + `" xmlns:r="` + NSRelationships + `">` +
	`<dimension ref="A1:B2"/><sheetViews><sheetView workbookViewId="0"/></sheetViews>` +
	`<sheetData>` +
	`<row r="1" ht="20" customHeight="1"><c r="A1"><v>1.0</v></c><c r="B1" s="3" t="s"><v>0</v></c></row>` +
	`<row r="2"><c r="B2" t="inlineStr"><is><r><t>in</t></r><r><t>l</t></r></is></c><c t="b"><v>1</v></c>` +
	`<c r="D2"><f>SUM(A1:A2)</f><v>3</v></c></row>` +
	`</sheetData><pageMargins left="0.7" right="0.7" top="0.75" bottom="0.75" header="0.3" footer="0.3"/>` +
	`</worksheet>`

func TestDecodeWorksheet(t *testing.T) {
	ws, err := DecodeWorksheet([]byte(sheetSrc))
	require.NoError(t, err)
	assert.Equal(t, "worksheet", ws.Kind)
	require.Len(t, ws.Rows, 2)

	r1 := ws.Rows[0]
	assert.Equal(t, 1, r1.Num)
	require.Len(t, r1.Attr, 2)
	assert.Equal(t, "ht", r1.Attr[0].Name.Local)
	require.Len(t, r1.Cells, 2)
	a1 := r1.Cells[0]
	assert.Equal(t, "1.0", a1.Value)
	assert.True(t, a1.HasValue)
	assert.Equal(t, `<c r="A1"><v>1.0</v></c>`, string(a1.Raw))
	b1 := r1.Cells[1]
	assert.Equal(t, TypeSharedString, b1.Type)
	assert.Equal(t, 3, b1.Style)
	assert.Equal(t, "0", b1.Value)

	r2 := ws.Rows[1]
	require.Len(t, r2.Cells, 3)
	b2 := r2.Cells[0]
	assert.True(t, b2.HasInline)
	assert.Equal(t, "inl", b2.Inline)
	c2 := r2.Cells[1]
	assert.Equal(t, 2, c2.Row)
	assert.Equal(t, 3, c2.Col, "cell without r follows the previous one")
	assert.Nil(t, c2.Raw)
	assert.Equal(t, TypeBool, c2.Type)
	d2 := r2.Cells[2]
	require.NotNil(t, d2.Formula)
	assert.Equal(t, "SUM(A1:A2)", d2.Formula.Text)
	assert.Equal(t, "3", d2.Value)
}

func TestEncodeWorksheetKeepsBytes(t *testing.T) {
	ws, err := DecodeWorksheet([]byte(sheetSrc))
	require.NoError(t, err)
	got, err := EncodeWorksheet([]byte(sheetSrc), ws.Rows, "A1:D2")
	require.NoError(t, err)

	want := strings.Replace(sheetSrc, `<c t="b"><v>1</v></c>`, `<c r="C2" t="b"><v>1</v></c>`, 1)
	want = strings.Replace(want, `<dimension ref="A1:B2"/>`, `<dimension ref="A1:D2"/>`, 1)
	assert.Equal(t, want, string(got))

	again, err := EncodeWorksheet(got, ws.Rows, "A1:D2")
	require.NoError(t, err)
	assert.Equal(t, string(got), string(again))
}

func TestEncodeWorksheetNewCells(t *testing.T) {
	src := `<x:worksheet xmlns:x="` + NSMain + `"><x:sheetData><x:row r="1"><x:c r="A1"><x:v>5</x:v></x:c></x:row></x:sheetData></x:worksheet>`
	ws, err := DecodeWorksheet([]byte(src))
	require.NoError(t, err)
	require.Len(t, ws.Rows, 1)
	require.Len(t, ws.Rows[0].Cells, 1)
	assert.Equal(t, "5", ws.Rows[0].Cells[0].Value)

	rows := ws.Rows
	rows[0].Cells = append(rows[0].Cells,
		Cell{Row: 1, Col: 2, Value: "7", HasValue: true, Style: 2},
		Cell{Row: 1, Col: 3, Type: TypeInlineString, Inline: " x "},
		Cell{Row: 1, Col: 4, Type: TypeFormulaStr, Formula: &Formula{Text: `A1&"<"`}},
	)
	rows = append(rows, Row{Num: 3})
	got, err := EncodeWorksheet([]byte(src), rows, "")
	require.NoError(t, err)
	assert.Equal(t, `<x:worksheet xmlns:x="`+NSMain+`"><x:sheetData><x:row r="1">`+
		`<x:c r="A1"><x:v>5</x:v></x:c>`+
		`<x:c r="B1" s="2"><x:v>7</x:v></x:c>`+
		`<x:c r="C1" t="inlineStr"><x:is><x:t xml:space="preserve"> x </x:t></x:is></x:c>`+
		`<x:c r="D1" t="str"><x:f>A1&amp;&quot;&lt;&quot;</x:f></x:c>`+
		`</x:row><x:row r="3"/></x:sheetData></x:worksheet>`, string(got))

	ws2, err := DecodeWorksheet(got)
	require.NoError(t, err)
	require.Len(t, ws2.Rows, 2)
	require.Len(t, ws2.Rows[0].Cells, 4)
	assert.Equal(t, " x ", ws2.Rows[0].Cells[2].Inline)
	assert.Equal(t, `A1&"<"`, ws2.Rows[0].Cells[3].Formula.Text)
}

func TestEncodeWorksheetInsertsSheetData(t *testing.T) {
	src := `<worksheet xmlns="` + NSMain + `"><dimension ref="A1"/><pageMargins left="0.7"/></worksheet>`
	got, err := EncodeWorksheet([]byte(src), []Row{{Num: 1, Cells: []Cell{{Row: 1, Col: 1, Value: "1", HasValue: true}}}}, "A1")
	require.NoError(t, err)
	assert.Equal(t, `<worksheet xmlns="`+NSMain+`"><dimension ref="A1"/>`+
		`<sheetData><row r="1"><c r="A1"><v>1</v></c></row></sheetData>`+
		`<pageMargins left="0.7"/></worksheet>`, string(got))

	got, err = EncodeWorksheet([]byte(src), nil, "")
	require.NoError(t, err)
	assert.Contains(t, string(got), `<sheetData/><pageMargins`)
}

func TestEncodeEscapes(t *testing.T) {
	rows := []Row{{Num: 1, Cells: []Cell{{Row: 1, Col: 1, Type: TypeInlineString, Inline: "a\x01b\r"}}}}
	got, err := EncodeWorksheet(NewWorksheet(), rows, "A1")
	require.NoError(t, err)
	assert.Contains(t, string(got), `<t xml:space="preserve">a_x0001_b&#13;</t>`)

	ws, err := DecodeWorksheet(got)
	require.NoError(t, err)
	assert.Equal(t, "a\x01b\r", ws.Rows[0].Cells[0].Inline)
}

func TestDecodeWorksheetErrors(t *testing.T) {
	for _, src := range []string{
		`<worksheet><sheetData><row r="x"/></sheetData></worksheet>`,
		`<worksheet><sheetData><row r="1"><c r="1A"/></row></sheetData></worksheet>`,
		`<worksheet><sheetData><row r="1"><c r="A1" s="-1"/></row></sheetData></worksheet>`,
		`<worksheet><sheetData><row r="1"><c r="A1"><v>1</v></row></sheetData></worksheet>`,
		`<workbook/>`,
	} {
		_, err := DecodeWorksheet([]byte(src))
		assert.Error(t, err, src)
	}

	ws, err := DecodeWorksheet([]byte(`<chartsheet xmlns="` + NSMain + `"><drawing/></chartsheet>`))
	require.NoError(t, err)
	assert.Equal(t, "chartsheet", ws.Kind)
	assert.Empty(t, ws.Rows)
}

func TestFitSpans(t *testing.T) {
	cells := func(cols ...int) []Cell {
		cs := make([]Cell, len(cols))
		for i, c := range cols {
			cs[i] = Cell{Row: 1, Col: c}
		}
		return cs
	}
	for _, tc := range []struct {
		spans string
		cols  []int
		want  string
	}{
		{"1:3", []int{1, 3}, "1:3"},
		{"2:3", []int{1, 5}, "1:5"},
		{"1:2 4:5", []int{5}, "1:2 4:5"},
		{"1:2 4:5", []int{7}, "1:7"},
		{"1:3", nil, "1:3"},
		{"x", []int{1}, ""},
		{"", []int{1}, ""},
	} {
		attrs := []xml.Attr{
			{Name: xml.Name{Local: "spans"}, Value: tc.spans},
			{Name: xml.Name{Local: "ht"}, Value: "20"},
		}
		got := fitSpans(attrs, cells(tc.cols...))
		v, _ := attrValue(got, "spans")
		assert.Equal(t, tc.want, v, "%q %v", tc.spans, tc.cols)
		ht, _ := attrValue(got, "ht")
		assert.Equal(t, "20", ht)
		assert.Equal(t, tc.spans, attrs[0].Value, "the row attributes are not modified")
	}
}
