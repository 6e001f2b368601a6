package colour

import (
	"fmt"
	"slices"

	"github.com/jmylchreest/vecprep/internal/image"
)

// Extractor builds a palette from a pixel buffer.
type Extractor interface {
	// Extract returns at most count colours representing buf.
	Extract(buf *image.Buffer, count int) (*Palette, error)
}

// Algorithm represents the palette extraction algorithm type.
type Algorithm string

const (
	// AlgorithmMedianCut quantises the pre-quantised histogram with median cut.
	AlgorithmMedianCut Algorithm = "mediancut"

	// AlgorithmSnap keeps the colours of a fixed palette that the image uses.
	AlgorithmSnap Algorithm = "snap"

	// AlgorithmKMeans uses k-means clustering for color extraction.
	AlgorithmKMeans Algorithm = "kmeans"
)

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{AlgorithmMedianCut, AlgorithmSnap, AlgorithmKMeans}
}

// IsValidAlgorithm checks if the given algorithm name is valid.
func IsValidAlgorithm(alg Algorithm) bool {
	return slices.Contains(ValidAlgorithms(), alg)
}

// MedianCutExtractor runs BuildHistogram and Quantize.
type MedianCutExtractor struct{}

// Extract implements Extractor.
func (MedianCutExtractor) Extract(buf *image.Buffer, count int) (*Palette, error) {
	if buf == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	return Quantize(BuildHistogram(buf), count), nil
}

// SnapExtractor runs BuildHistogram and SnapToPalette against a fixed palette.
type SnapExtractor struct {
	Fixed     *Palette
	Tolerance float64
}

// Extract implements Extractor. The count caps the snapped palette, keeping the
// earliest fixed colours.
func (e SnapExtractor) Extract(buf *image.Buffer, count int) (*Palette, error) {
	if buf == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	pal := SnapToPalette(BuildHistogram(buf), e.Fixed, e.Tolerance)
	if count > 0 && pal.Len() > count {
		pal = NewPalette(pal.Colors[:count])
	}
	return pal, nil
}

// ExtractorConfig holds configuration for palette extraction.
type ExtractorConfig struct {
	Algorithm  Algorithm
	ColorCount int
	// FixedPalette is a preset name, hex list or .pal path. Required for AlgorithmSnap.
	FixedPalette string
	// Tolerance is the snap distance limit.
	Tolerance float64
}

// DefaultExtractorConfig returns the default extractor configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Algorithm:  AlgorithmMedianCut,
		ColorCount: 16,
		Tolerance:  32,
	}
}

// Validate validates the extractor configuration.
func (c ExtractorConfig) Validate() error {
	if !IsValidAlgorithm(c.Algorithm) {
		return fmt.Errorf("invalid algorithm: %s (valid algorithms: %v)", c.Algorithm, ValidAlgorithms())
	}
	if c.ColorCount < 1 {
		return fmt.Errorf("color count must be at least 1, got %d", c.ColorCount)
	}
	if c.ColorCount > 256 {
		return fmt.Errorf("color count too large: %d (maximum: 256)", c.ColorCount)
	}
	if c.Algorithm == AlgorithmSnap {
		if c.FixedPalette == "" {
			return fmt.Errorf("snap algorithm requires a fixed palette")
		}
		if c.Tolerance < 0 {
			return fmt.Errorf("tolerance must be non-negative, got %g", c.Tolerance)
		}
	}
	return nil
}

// NewExtractor creates an Extractor for the configuration.
func NewExtractor(c ExtractorConfig) (Extractor, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	switch c.Algorithm {
	case AlgorithmMedianCut:
		return MedianCutExtractor{}, nil
	case AlgorithmKMeans:
		return NewKMeansExtractor(), nil
	case AlgorithmSnap:
		fixed, err := LoadFixedPalette(c.FixedPalette)
		if err != nil {
			return nil, fmt.Errorf("failed to load fixed palette: %w", err)
		}
		return SnapExtractor{Fixed: fixed, Tolerance: c.Tolerance}, nil
	}
	return nil, fmt.Errorf("unknown algorithm: %s", c.Algorithm)
}
