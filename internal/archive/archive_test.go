// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UNO-SOFT/xlsxedit"
)

func buildZip(t *testing.T, parts ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i := 0; i < len(parts); i += 2 {
		w, err := zw.Create(parts[i])
		require.NoError(t, err)
		_, err = w.Write([]byte(parts[i+1]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func readZip(t *testing.T, data []byte) (names []string, parts map[string]string) {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	parts = make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		names = append(names, f.Name)
		parts[f.Name] = string(b)
	}
	return names, parts
}

func TestOpenCorrupt(t *testing.T) {
	_, err := Open([]byte("this is not a zip file"))
	assert.ErrorIs(t, err, xlsxedit.ErrCorruptArchive)

	_, err = Open(buildZip(t, "xl/workbook.xml", "<workbook/>"))
	assert.ErrorIs(t, err, xlsxedit.ErrCorruptArchive)
}

func TestReadAndWrite(t *testing.T) {
	data := buildZip(t,
		ContentTypesPart, "<Types/>",
		"xl/workbook.xml", "<workbook/>",
		"xl/media/image1.png", "\x89PNG....",
		"docProps/core.xml", "<core/>",
	)
	a, err := Open(data)
	require.NoError(t, err)
	assert.Equal(t, []string{ContentTypesPart, "xl/workbook.xml", "xl/media/image1.png", "docProps/core.xml"}, a.Names())
	assert.True(t, a.Has("/xl/workbook.xml"))
	assert.False(t, a.Has("xl/styles.xml"))

	b, err := a.Read("/xl/workbook.xml")
	require.NoError(t, err)
	assert.Equal(t, "<workbook/>", string(b))
	_, err = a.Read("xl/styles.xml")
	assert.ErrorIs(t, err, ErrPartNotFound)

	var out bytes.Buffer
	require.NoError(t, a.Write(&out,
		map[string][]byte{
			"xl/workbook.xml":  []byte("<workbook><sheets/></workbook>"),
			"xl/zz.xml":        []byte("<zz/>"),
			"xl/sharedStr.xml": []byte("<sst/>"),
		},
		map[string]bool{"docProps/core.xml": true},
	))
	names, parts := readZip(t, out.Bytes())
	assert.Equal(t, []string{ContentTypesPart, "xl/workbook.xml", "xl/media/image1.png", "xl/sharedStr.xml", "xl/zz.xml"}, names)
	assert.Equal(t, "<workbook><sheets/></workbook>", parts["xl/workbook.xml"])
	assert.Equal(t, "\x89PNG....", parts["xl/media/image1.png"])
	assert.ElementsMatch(t, []string{"xl/workbook.xml", "docProps/core.xml", "xl/sharedStr.xml", "xl/zz.xml"}, a.Touched())
}

func TestWriteIsDeterministic(t *testing.T) {
	a, err := Open(buildZip(t, ContentTypesPart, "<Types/>", "a.xml", "<a/>"))
	require.NoError(t, err)
	replace := map[string][]byte{"a.xml": []byte("<a>1</a>"), "b.xml": []byte("<b/>")}
	var first, second bytes.Buffer
	require.NoError(t, a.Write(&first, replace, nil))
	require.NoError(t, a.Write(&second, replace, nil))
	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestNew(t *testing.T) {
	data, err := New([]string{ContentTypesPart, "x.xml"}, map[string][]byte{
		ContentTypesPart: []byte("<Types/>"), "x.xml": []byte("<x/>"),
	})
	require.NoError(t, err)
	a, err := Open(data)
	require.NoError(t, err)
	assert.Equal(t, []string{ContentTypesPart, "x.xml"}, a.Names())
}
