// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package archive exposes the parts of an OPC (zipped) package as byte slices,
// and writes them back, copying untouched parts verbatim.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/UNO-SOFT/xlsxedit"
)

// ContentTypesPart is the mandatory part listing the content type of every other part.
const ContentTypesPart = "[Content_Types].xml"

// Archive is a fully read ZIP container.
type Archive struct {
	zr      *zip.Reader
	byName  map[string]*zip.File
	cache   map[string][]byte
	touched []string
}

// Open reads the container from data.
// It fails with ErrCorruptArchive if data is not a ZIP or lacks ContentTypesPart.
func Open(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", xlsxedit.ErrCorruptArchive, err)
	}
	a := &Archive{zr: zr, byName: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		if _, ok := a.byName[f.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate part %q", xlsxedit.ErrCorruptArchive, f.Name)
		}
		a.byName[f.Name] = f
	}
	if _, ok := a.byName[ContentTypesPart]; !ok {
		return nil, fmt.Errorf("%w: missing %s", xlsxedit.ErrCorruptArchive, ContentTypesPart)
	}
	return a, nil
}

// Names returns the part names in archive order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.zr.File))
	for i, f := range a.zr.File {
		names[i] = f.Name
	}
	return names
}

// Has reports whether the part exists. A leading "/" is ignored.
func (a *Archive) Has(name string) bool {
	_, ok := a.byName[strings.TrimPrefix(name, "/")]
	return ok
}

// Read returns the uncompressed bytes of the named part.
// The returned slice must not be modified.
func (a *Archive) Read(name string) ([]byte, error) {
	name = strings.TrimPrefix(name, "/")
	if b, ok := a.cache[name]; ok {
		return b, nil
	}
	f, ok := a.byName[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrPartNotFound)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", name, xlsxedit.ErrCorruptArchive, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", name, xlsxedit.ErrCorruptArchive, err)
	}
	if a.cache == nil {
		a.cache = make(map[string][]byte)
	}
	a.cache[name] = b
	return b, nil
}

// ErrPartNotFound is returned by Read for a missing part.
var ErrPartNotFound = errors.New("part not found")

// Touched returns the names of the parts the last Write did not copy verbatim,
// including the removed ones.
func (a *Archive) Touched() []string { return slices.Clone(a.touched) }

// Write writes the archive to w. Parts in replace are written with the given
// content (new ones after the original parts, in name order), parts in remove
// are left out, and every other part is copied without recompression.
func (a *Archive) Write(w io.Writer, replace map[string][]byte, remove map[string]bool) error {
	a.touched = a.touched[:0]
	zw := zip.NewWriter(w)
	if a.zr.Comment != "" {
		if err := zw.SetComment(a.zr.Comment); err != nil {
			return err
		}
	}
	for _, f := range a.zr.File {
		if remove[f.Name] {
			a.touched = append(a.touched, f.Name)
			continue
		}
		b, ok := replace[f.Name]
		if !ok {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}
		a.touched = append(a.touched, f.Name)
		method := f.Method
		if method != zip.Store {
			method = zip.Deflate
		}
		if err := writePart(zw, &zip.FileHeader{
			Name: f.Name, Method: method, Modified: f.Modified,
		}, b); err != nil {
			return err
		}
	}

	added := make([]string, 0, len(replace))
	for name := range replace {
		if _, ok := a.byName[name]; !ok && !remove[name] {
			added = append(added, name)
		}
	}
	slices.Sort(added)
	for _, name := range added {
		a.touched = append(a.touched, name)
		if err := writePart(zw, &zip.FileHeader{Name: name, Method: zip.Deflate}, replace[name]); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writePart(zw *zip.Writer, fh *zip.FileHeader, b []byte) error {
	pw, err := zw.CreateHeader(fh)
	if err != nil {
		return fmt.Errorf("create %s: %w", fh.Name, err)
	}
	if _, err = pw.Write(b); err != nil {
		return fmt.Errorf("write %s: %w", fh.Name, err)
	}
	return nil
}

// New builds an in-memory container from parts, written in the given order.
func New(order []string, parts map[string][]byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		if err := writePart(zw, &zip.FileHeader{Name: name, Method: zip.Deflate}, parts[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
