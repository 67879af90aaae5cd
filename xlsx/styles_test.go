// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UNO-SOFT/xlsxedit"
	"github.com/UNO-SOFT/xlsxedit/internal/ooxml"
)

func TestStylesIntern(t *testing.T) {
	styles := New(Options{}).Styles()
	require.Equal(t, 1, styles.Len())
	assert.Zero(t, styles.Intern(Style{}))

	bold := Style{Font: Font{Name: "Arial", Size: 10, Bold: true}}
	i := styles.Intern(bold)
	assert.Equal(t, 1, i)
	assert.Equal(t, i, styles.Intern(Style{Font: Font{Bold: true, Size: 10, Name: "Arial"}}))
	assert.Equal(t, 2, styles.Len())

	wrapped := bold
	wrapped.Alignment = Alignment{Horizontal: "center", WrapText: true}
	j := styles.Intern(wrapped)
	assert.Equal(t, 2, j, "same font, different alignment")
	assert.Len(t, styles.ss.Fonts, 2, "the font is shared")

	st, err := styles.Resolve(j)
	require.NoError(t, err)
	assert.Equal(t, wrapped.Font, st.Font)
	assert.Equal(t, wrapped.Alignment, st.Alignment)
	assert.Equal(t, "none", st.Fill.Pattern, "unset components resolve to the defaults")

	_, err = styles.Resolve(styles.Len())
	assert.ErrorIs(t, err, xlsxedit.ErrIndexOutOfRange)
}

func TestStylesNumFmt(t *testing.T) {
	styles := New(Options{}).Styles()
	for _, tc := range []struct {
		in   NumFmt
		want NumFmt
	}{
		{NumFmt{Code: "0.00"}, NumFmt{ID: 2, Code: "0.00"}},
		{NumFmt{ID: 14}, NumFmt{ID: 14, Code: "mm-dd-yy"}},
		{NumFmt{Code: "0.000"}, NumFmt{ID: FirstCustomNumFmt, Code: "0.000"}},
		{NumFmt{Code: "yyyy-mm-dd"}, NumFmt{ID: FirstCustomNumFmt + 1, Code: "yyyy-mm-dd"}},
		{NumFmt{Code: "0.000"}, NumFmt{ID: FirstCustomNumFmt, Code: "0.000"}},
	} {
		i := styles.Intern(Style{NumFmt: tc.in})
		st, err := styles.Resolve(i)
		require.NoError(t, err)
		assert.Equal(t, tc.want, st.NumFmt, "%+v", tc.in)
	}
	assert.Len(t, styles.ss.NumFmts, 2)
	assert.Equal(t, 5, styles.Len())
}

func TestStylesSeedDefaults(t *testing.T) {
	for name, styles := range map[string]string{
		"fonts only": `<styleSheet xmlns="` + ooxml.NSMain + `"><fonts count="1"><font><sz val="10"/><name val="Arial"/></font></fonts></styleSheet>`,
		"empty":      `<styleSheet xmlns="` + ooxml.NSMain + `"><fonts count="0"/><cellXfs count="0"/></styleSheet>`,
	} {
		src := buildPackage(t, map[string]string{ooxml.PartStyles: styles})
		wb := load(t, src)
		table := wb.Styles()
		assert.Equal(t, 1, table.Len(), name)
		i := table.Intern(Style{Font: Font{Bold: true}})
		assert.Equal(t, 1, i, "%s: index 0 stays the default", name)

		out, err := wb.Bytes()
		require.NoError(t, err)
		wb2 := load(t, out)
		require.Equal(t, 2, wb2.Styles().Len(), name)
		def, err := wb2.Styles().Resolve(0)
		require.NoError(t, err)
		assert.False(t, def.Font.Bold, name)
		st, err := wb2.Styles().Resolve(1)
		require.NoError(t, err)
		assert.True(t, st.Font.Bold, name)

		unchanged, err := load(t, src).Bytes()
		require.NoError(t, err)
		assert.Equal(t, styles, part(t, unchanged, ooxml.PartStyles), "%s: seeding alone does not rewrite the part", name)
	}
}

func TestStylesFillPattern(t *testing.T) {
	wb := New(Options{})
	sh, err := wb.Sheet("Sheet1")
	require.NoError(t, err)
	red := Style{Fill: Fill{FgColor: "FFFF0000"}}
	require.NoError(t, sh.SetStyle("A1", red))
	a1, err := sh.Cell("A1")
	require.NoError(t, err)
	assert.Equal(t, a1.StyleIndex(), wb.Styles().Intern(Style{Fill: Fill{Pattern: "solid", FgColor: "FFFF0000"}}))

	wb2 := reload(t, wb)
	sh2, err := wb2.Sheet("Sheet1")
	require.NoError(t, err)
	a1, err = sh2.Cell("A1")
	require.NoError(t, err)
	n := wb2.Styles().Len()
	assert.Equal(t, a1.StyleIndex(), wb2.Styles().Intern(red), "re-interning after a reload finds the record")
	assert.Equal(t, n, wb2.Styles().Len())
}

func TestSharedStringsTable(t *testing.T) {
	sst := New(Options{}).SharedStrings()
	assert.Zero(t, sst.Len())
	assert.Equal(t, 0, sst.Intern("a"))
	assert.Equal(t, 1, sst.Intern("b"))
	assert.Equal(t, 0, sst.Intern("a"))
	assert.Equal(t, 2, sst.Intern(""))
	assert.Equal(t, 3, sst.Len())
	s, err := sst.Resolve(1)
	require.NoError(t, err)
	assert.Equal(t, "b", s)
	for _, i := range []int{-1, 3} {
		_, err = sst.Resolve(i)
		assert.ErrorIs(t, err, xlsxedit.ErrIndexOutOfRange, "%d", i)
	}
}
