// Copyright 2020, 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsxedit

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// EncName is the default CSV charset, taken from $LANG.
var EncName = "utf-8"

func init() {
	lang := os.Getenv("LANG")
	if i := strings.IndexByte(lang, '.'); i >= 0 {
		EncName = strings.ToLower(lang[i+1:])
	}
	if i := strings.IndexByte(EncName, '@'); i >= 0 {
		EncName = EncName[:i]
	}
	if EncName == "" {
		EncName = "utf-8"
	}
}

// GetEncoding returns the encoding for encName, or nil for UTF-8.
func GetEncoding(encName string) (encoding.Encoding, error) {
	encName = strings.ToLower(encName)
	if encName == "" || encName == "utf-8" || encName == "utf8" {
		return nil, nil
	}
	enc, err := htmlindex.Get(encName)
	if err != nil {
		err = fmt.Errorf("%q: %w", encName, err)
	}
	return enc, err
}

type csvReadCloser struct {
	*csv.Reader
	io.Closer
}

// OpenCsv opens fn ("" or "-" is stdin) as CSV in the given charset,
// sniffing the separator from the first KiB.
func OpenCsv(fn, encName string) (csvReadCloser, error) {
	fh := os.Stdin
	if !(fn == "" || fn == "-") {
		var err error
		if fh, err = os.Open(fn); err != nil {
			return csvReadCloser{}, err
		}
	}
	cr, err := NewCsvReader(fh, encName)
	if err != nil {
		fh.Close()
		return csvReadCloser{}, err
	}
	return csvReadCloser{cr, fh}, nil
}

// NewCsvReader wraps r into a csv.Reader, decoding from encName.
func NewCsvReader(r io.Reader, encName string) (*csv.Reader, error) {
	enc, err := GetEncoding(encName)
	if err != nil {
		return nil, err
	}
	if enc != nil {
		r = enc.NewDecoder().Reader(r)
	}
	br := bufio.NewReaderSize(r, 1<<20)
	b, err := br.Peek(1024)
	if err != nil && len(b) == 0 {
		return nil, err
	}
	sep := rune(',')
	for _, r := range string(b) {
		if r == '\n' || r == '\r' {
			break
		}
		if r == '"' || r == '_' || r == ' ' || r == '.' || r == '-' ||
			unicode.IsLetter(r) || unicode.IsNumber(r) {
			continue
		}
		sep = r
		break
	}

	cr := csv.NewReader(br)
	cr.ReuseRecord = true
	cr.Comma = sep
	return cr, nil
}

// NewCsvWriter returns a csv.Writer encoding into encName.
func NewCsvWriter(w io.Writer, encName string) (*csv.Writer, error) {
	enc, err := GetEncoding(encName)
	if err != nil {
		return nil, err
	}
	if enc != nil {
		w = enc.NewEncoder().Writer(w)
	}
	return csv.NewWriter(w), nil
}
