// Package security provides validation helpers for untrusted paths and sizes.
package security

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// DefaultDecompressLimit caps how many bytes a compressed input may expand to.
const DefaultDecompressLimit = 1 << 30

// ValidateFilePath validates a relative file name returned by an external tool so that
// joining it onto baseDir cannot escape baseDir.
func ValidateFilePath(filePath, baseDir string) error {
	if filePath == "" {
		return fmt.Errorf("empty file path")
	}

	if strings.Contains(filePath, "..") {
		return fmt.Errorf("file path contains directory traversal (..) - not allowed")
	}

	if filepath.IsAbs(filePath) {
		return fmt.Errorf("absolute output paths are not allowed")
	}

	finalPath := filepath.Join(baseDir, filePath)
	cleanFinal := filepath.Clean(finalPath)
	cleanBase := filepath.Clean(baseDir)

	if !strings.HasPrefix(cleanFinal, cleanBase+string(filepath.Separator)) &&
		cleanFinal != cleanBase {
		return fmt.Errorf("file path would escape base directory")
	}

	return nil
}

// SafeUint8 converts an integer to uint8, clamping to 0-255.
func SafeUint8(val int) uint8 {
	if val < 0 {
		return 0
	}
	if val > 255 {
		return 255
	}
	return uint8(val)
}

// SafeUint8FromFloat rounds and clamps a float to 0-255.
func SafeUint8FromFloat(val float64) uint8 {
	if val <= 0 {
		return 0
	}
	if val >= 255 {
		return 255
	}
	return uint8(val + 0.5)
}

// LimitedReader wraps an io.Reader and fails once more than the allowed bytes were read.
// Decompressed files and downloads pass through it.
type LimitedReader struct {
	R         io.Reader
	Remaining int64
}

// Read implements io.Reader with size limits.
func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.Remaining <= 0 {
		return 0, fmt.Errorf("read size limit exceeded")
	}
	if int64(len(p)) > l.Remaining {
		p = p[:l.Remaining]
	}
	n, err := l.R.Read(p)
	l.Remaining -= int64(n)
	return n, err
}

// NewLimitedReader creates a new LimitedReader with the specified size limit.
func NewLimitedReader(r io.Reader, maxBytes int64) *LimitedReader {
	return &LimitedReader{
		R:         r,
		Remaining: maxBytes,
	}
}
