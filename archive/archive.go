// Package archive packages a generated project tree into one downloadable
// artifact. The generator hands over the full tree in memory, so packaging
// either produces the whole archive or fails as a unit; callers never see a
// partially written result.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
)

// Packager turns a path -> content mapping into a single archive blob.
type Packager interface {
	Package(files map[string]string) ([]byte, error)
}

// ZipPackager implements Packager with the zip format browsers and build
// hosts unpack without extra tooling.
type ZipPackager struct{}

func NewZipPackager() *ZipPackager {
	return &ZipPackager{}
}

// Package writes every file into a zip archive. Entries are added in
// sorted path order so the archive bytes are reproducible for the same
// input tree.
func (z *ZipPackager) Package(files map[string]string) ([]byte, error) {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, p := range paths {
		f, err := w.Create(p)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("adding %s to archive: %w", p, err)
		}
		if _, err := f.Write([]byte(files[p])); err != nil {
			w.Close()
			return nil, fmt.Errorf("writing %s to archive: %w", p, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}
	return buf.Bytes(), nil
}
