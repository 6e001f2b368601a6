package compression

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/jmylchreest/vecprep/internal/security"
	"github.com/ulikunitz/xz"
)

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type writeCloser struct {
	io.Writer
	closers []io.Closer
}

func (w *writeCloser) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewReader wraps r in a decompressor for the given format. The output is capped at
// security.DefaultDecompressLimit bytes.
func NewReader(r io.Reader, format Format) (io.ReadCloser, error) {
	var (
		inner  io.Reader
		closer io.Closer = nopCloser{}
	)

	switch format {
	case FormatNone:
		return &readCloser{Reader: r, closers: []io.Closer{closer}}, nil
	case FormatXz:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		inner = xzr
	case FormatGz:
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		inner = gzr
		closer = gzr
	case FormatBz2:
		inner = bzip2.NewReader(r)
	default:
		return nil, fmt.Errorf("unsupported compression format: %q", format)
	}

	limited := security.NewLimitedReader(inner, security.DefaultDecompressLimit)
	return &readCloser{Reader: limited, closers: []io.Closer{closer}}, nil
}

// NewWriter wraps w in a compressor for the given format. Closing the returned writer
// flushes the compressor but does not close w.
func NewWriter(w io.Writer, format Format) (io.WriteCloser, error) {
	switch format {
	case FormatNone:
		return &writeCloser{Writer: w, closers: []io.Closer{nopCloser{}}}, nil
	case FormatXz:
		xzw, err := xz.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return &writeCloser{Writer: xzw, closers: []io.Closer{xzw}}, nil
	case FormatGz:
		gzw := gzip.NewWriter(w)
		return &writeCloser{Writer: gzw, closers: []io.Closer{gzw}}, nil
	case FormatBz2:
		return nil, fmt.Errorf("bzip2 output is not supported")
	}
	return nil, fmt.Errorf("unsupported compression format: %q", format)
}

// Open opens a file and decompresses it according to its extension.
func Open(path string) (io.ReadCloser, error) {
	file, err := os.Open(path) // #nosec G304 - User-specified input path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	rc, err := NewReader(file, DetectFormat(path))
	if err != nil {
		file.Close()
		return nil, err
	}
	rc.(*readCloser).closers = append([]io.Closer{file}, rc.(*readCloser).closers...)
	return rc, nil
}

// Create creates a file and compresses writes to it according to its extension.
// Close must be called to flush the compressor and close the file.
func Create(path string) (io.WriteCloser, error) {
	file, err := os.Create(path) // #nosec G304 - User-specified output path
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	wc, err := NewWriter(file, DetectFormat(path))
	if err != nil {
		file.Close()
		return nil, err
	}
	inner := wc.(*writeCloser)
	inner.closers = append(inner.closers, file)
	return inner, nil
}
