// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOutput(t *testing.T) {
	for _, fn := range []string{"", "-"} {
		out, closeOut, err := createOutput(fn)
		require.NoError(t, err)
		assert.Same(t, os.Stdout, out)
		assert.NoError(t, closeOut())
		assert.NoError(t, closeOut(), "stdout stays open")
	}

	fn := filepath.Join(t.TempDir(), "out.xlsx")
	out, closeOut, err := createOutput(fn)
	require.NoError(t, err)
	_, err = io.WriteString(out, "data")
	require.NoError(t, err)
	require.NoError(t, closeOut())
	b, err := os.ReadFile(fn)
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))
}

func TestParseColor(t *testing.T) {
	c, err := parseColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, "FFFF8000", c)
	for _, s := range []string{"f80", "zzzzzz", "FF00FF00"} {
		_, err = parseColor(s)
		assert.Error(t, err, s)
	}
}
