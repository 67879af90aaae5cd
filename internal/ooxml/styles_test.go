// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package ooxml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStyles(t *testing.T) {
	src := `<x:styleSheet xmlns:x="` + NSMain + `">` +
		`<x:numFmts count="1"><x:numFmt numFmtId="165" formatCode="0.0%"/></x:numFmts>` +
		`<x:fonts count="2"><x:font><x:sz val="11"/><x:name val="Calibri"/></x:font>` +
		`<x:font><x:b/><x:i val="0"/><x:u/><x:color theme="1" tint="-0.25"/><x:name val="Arial"/></x:font></x:fonts>` +
		`<x:fills count="3"><x:fill><x:patternFill patternType="none"/></x:fill>` +
		`<x:fill><x:patternFill patternType="solid"><x:fgColor rgb="ffff0000"/><x:bgColor indexed="64"/></x:patternFill></x:fill>` +
		`<x:fill><x:gradientFill degree="90"/></x:fill></x:fills>` +
		`<x:borders count="1"><x:border><x:start style="thin"><x:color auto="1"/></x:start><x:bottom style="double"/></x:border></x:borders>` +
		`<x:cellXfs count="2"><x:xf numFmtId="0" fontId="0" fillId="0" borderId="0" xfId="0"/>` +
		`<x:xf numFmtId="165" fontId="1" fillId="1" borderId="0" xfId="0" applyFont="1">` +
		`<x:alignment horizontal="center" wrapText="1" indent="2"/></x:xf></x:cellXfs>` +
		`</x:styleSheet>`
	ss, err := DecodeStyles([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, []NumFmt{{ID: 165, Code: "0.0%"}}, ss.NumFmts)
	assert.Equal(t, []Font{
		{Name: "Calibri", Size: 11},
		{Name: "Arial", Bold: true, Underline: "single", Color: "theme:1:-0.25"},
	}, ss.Fonts)
	assert.Equal(t, []Fill{
		{Pattern: "none"},
		{Pattern: "solid", FgColor: "FFFF0000", BgColor: "indexed:64"},
		{Pattern: "gradient"},
	}, ss.Fills)
	assert.Equal(t, []Border{{Left: Side{Style: "thin", Color: "auto"}, Bottom: Side{Style: "double"}}}, ss.Borders)
	assert.Equal(t, []Xf{
		{},
		{NumFmtID: 165, FontID: 1, FillID: 1, Alignment: Alignment{Horizontal: "center", WrapText: true, Indent: 2}},
	}, ss.CellXfs)
	assert.Equal(t, Counts{NumFmts: 1, Fonts: 2, Fills: 3, Borders: 1, CellXfs: 2}, ss.Counts())
}

func TestEncodeStyles(t *testing.T) {
	_, parts := DefaultPackage()
	src := parts[PartStyles]
	ss, err := DecodeStyles(src)
	require.NoError(t, err)
	from := ss.Counts()

	got, err := EncodeStyles(src, ss, from)
	require.NoError(t, err)
	assert.Equal(t, string(src), string(got), "nothing appended")

	ss.NumFmts = append(ss.NumFmts, NumFmt{ID: 164, Code: `0.000" €"`})
	ss.Fonts = append(ss.Fonts, Font{Name: "Arial", Size: 12.5, Bold: true, Underline: "double", Color: "FFFF0000"})
	ss.Fills = append(ss.Fills, Fill{Pattern: "solid", FgColor: "theme:4:0.5"})
	ss.Borders = append(ss.Borders, Border{Top: Side{Style: "thin", Color: "indexed:8"}})
	ss.CellXfs = append(ss.CellXfs, Xf{
		NumFmtID: 164, FontID: 1, FillID: 2, BorderID: 1,
		Alignment: Alignment{Vertical: "top", TextRotation: 90},
	})
	got, err = EncodeStyles(src, ss, from)
	require.NoError(t, err)
	s := string(got)
	assert.Contains(t, s, `<styleSheet xmlns="`+NSMain+`"><numFmts count="1"><numFmt numFmtId="164" formatCode="0.000&quot; €&quot;"/></numFmts><fonts count="2">`)
	assert.Contains(t, s, `<font><b/><u val="double"/><sz val="12.5"/><color rgb="FFFF0000"/><name val="Arial"/></font></fonts>`)
	assert.Contains(t, s, `<fill><patternFill patternType="solid"><fgColor theme="4" tint="0.5"/></patternFill></fill></fills>`)
	assert.Contains(t, s, `<border><left/><right/><top style="thin"><color indexed="8"/></top><bottom/><diagonal/></border></borders>`)
	assert.Contains(t, s, `<xf numFmtId="164" fontId="1" fillId="2" borderId="1" xfId="0" applyNumberFormat="1" applyFont="1" applyFill="1" applyBorder="1" applyAlignment="1">`+
		`<alignment vertical="top" textRotation="90"/></xf></cellXfs>`)
	assert.Contains(t, s, `<cellStyleXfs count="1">`)
	assert.Contains(t, s, `<cellStyles count="1">`)

	ss2, err := DecodeStyles(got)
	require.NoError(t, err)
	assert.Equal(t, ss, ss2)

	// appending again on top of the result only adds the new records
	ss2.Fonts = append(ss2.Fonts, Font{Italic: true, Strike: true})
	got2, err := EncodeStyles(got, ss2, ss.Counts())
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(got2), `<fonts count="3">`))
	assert.Contains(t, string(got2), `<font><i/><strike/></font></fonts>`)
}

func TestDecodeStylesErrors(t *testing.T) {
	_, err := DecodeStyles([]byte(`<sst/>`))
	assert.Error(t, err)
	_, err = DecodeStyles([]byte(`<styleSheet><numFmts><numFmt numFmtId="x" formatCode="0"/></numFmts></styleSheet>`))
	assert.Error(t, err)
}
