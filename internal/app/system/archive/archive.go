// Package archive parses uploaded package containers into in-memory
// entries. The archive is treated purely as an index of named byte
// entries; nothing ever touches the filesystem.
package archive

import (
	"bytes"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/aalaeg1/into-EdU/internal/domain/errs"
)

// Entry is one named member of a decoded archive. Directory entries
// carry no bytes.
type Entry struct {
	Path        string
	IsDirectory bool
	Bytes       []byte
}

// Decode parses raw archive bytes into an ordered list of entries.
// Every byte-bearing entry is kept regardless of extension; the
// resolver decides what is referenced. Returns *errs.DecodeError when
// the bytes are not a valid container.
func Decode(raw []byte) ([]Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, &errs.DecodeError{Err: err}
	}

	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		// A trailing separator marks a directory, as does a zero-size
		// entry declared as one by its mode bits.
		if strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir() {
			entries = append(entries, Entry{Path: f.Name, IsDirectory: true})
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, &errs.DecodeError{Err: err}
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, &errs.DecodeError{Err: err}
		}

		entries = append(entries, Entry{Path: f.Name, Bytes: data})
	}

	return entries, nil
}

// IsContainer reports whether the stored name looks like an archive
// container this package can decode. Anything else is rendered as a
// standalone document.
func IsContainer(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".zip") || strings.HasSuffix(lower, ".h5p")
}
