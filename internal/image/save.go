package image

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/jmylchreest/vecprep/internal/compression"
)

// Encode writes img to w in the format named by ext (".png", ".jpg", ".gif", ".bmp", ".tiff").
func Encode(w io.Writer, img image.Image, ext string) error {
	switch strings.ToLower(ext) {
	case ".png", "":
		return png.Encode(w, img)
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case ".gif":
		return gif.Encode(w, img, nil)
	case ".bmp":
		return bmp.Encode(w, img)
	case ".tif", ".tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("unsupported output format: %s", ext)
}

// Save encodes img to path, choosing the format from the extension.
// A trailing .xz or .gz compresses the encoded file.
func Save(path string, img image.Image) error {
	ext := filepath.Ext(compression.InnerName(path))

	w, err := compression.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output image: %w", err)
	}

	if err := Encode(w, img, ext); err != nil {
		w.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close output image: %w", err)
	}
	return nil
}

// SaveBuffer saves a Buffer as an image file.
func SaveBuffer(path string, b *Buffer) error {
	return Save(path, b.ToNRGBA())
}
