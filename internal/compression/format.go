// Package compression provides transparent compression for mask and image files.
package compression

import (
	"path/filepath"
	"strings"
)

// Format identifies the compression wrapped around a file.
type Format string

const (
	// FormatNone is an uncompressed file.
	FormatNone Format = ""
	// FormatXz is an xz stream.
	FormatXz Format = "xz"
	// FormatGz is a gzip stream.
	FormatGz Format = "gz"
	// FormatBz2 is a bzip2 stream. Read only.
	FormatBz2 Format = "bz2"
)

// DetectFormat returns the compression format implied by a file name's extension.
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xz", ".txz":
		return FormatXz
	case ".gz", ".tgz":
		return FormatGz
	case ".bz2", ".tbz", ".tbz2":
		return FormatBz2
	}
	return FormatNone
}

// InnerName strips a compression extension, so "mask.vpmk.xz" becomes "mask.vpmk".
func InnerName(filename string) string {
	if DetectFormat(filename) == FormatNone {
		return filename
	}
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
