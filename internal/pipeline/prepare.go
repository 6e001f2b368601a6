// Package pipeline runs the batch path that prepares an image for vector tracing:
// palette extraction, classification and region segmentation.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/vecprep/internal/colour"
	"github.com/jmylchreest/vecprep/internal/image"
	"github.com/jmylchreest/vecprep/internal/region"
)

// PrepareOptions configures Prepare.
type PrepareOptions struct {
	// Extractor selects and configures palette extraction.
	Extractor colour.ExtractorConfig

	// Workers is the number of classification goroutines. Values below 1 use one per CPU.
	Workers int

	// MaxPixels downscales larger inputs before processing. Zero disables downscaling.
	MaxPixels int

	// Segment configures region extraction.
	Segment region.Options

	// Logger receives progress messages. Nil discards them.
	Logger hclog.Logger
}

// DefaultPrepareOptions returns options using median cut and default segmentation.
func DefaultPrepareOptions() PrepareOptions {
	return PrepareOptions{
		Extractor: colour.DefaultExtractorConfig(),
		MaxPixels: image.DefaultMaxPixels,
		Segment:   region.DefaultOptions(),
	}
}

// Prepared is the output of the batch path.
type Prepared struct {
	// Buffer is the processed buffer, downscaled when the input exceeded MaxPixels.
	Buffer *image.Buffer

	// Downscaled reports whether Buffer is smaller than the input.
	Downscaled bool

	// Hash is the content hash of the input buffer, for callers that memoise results.
	Hash [32]byte

	Palette        *colour.Palette
	Classification *colour.Classification
	Regions        []region.Region
}

// Prepare extracts a palette from buf, classifies every pixel against it and
// segments the classification into regions. buf is not modified.
func Prepare(ctx context.Context, buf *image.Buffer, opts PrepareOptions) (*Prepared, error) {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	if err := buf.Validate(); err != nil {
		return nil, err
	}

	extractor, err := colour.NewExtractor(opts.Extractor)
	if err != nil {
		return nil, fmt.Errorf("invalid palette options: %w", err)
	}

	out := &Prepared{Buffer: buf, Hash: buf.ContentHash()}
	if image.NeedsDownscale(buf.Width, buf.Height, opts.MaxPixels) {
		out.Buffer = image.DownscaleBuffer(buf, opts.MaxPixels)
		out.Downscaled = true
		logger.Info("downscaled input", "from", fmt.Sprintf("%dx%d", buf.Width, buf.Height),
			"to", fmt.Sprintf("%dx%d", out.Buffer.Width, out.Buffer.Height))
	}

	start := time.Now()
	out.Palette, err = extractor.Extract(out.Buffer, opts.Extractor.ColorCount)
	if err != nil {
		return nil, fmt.Errorf("failed to extract palette: %w", err)
	}
	logger.Debug("palette extracted", "algorithm", opts.Extractor.Algorithm, "colours", out.Palette.Len(), "elapsed", time.Since(start))

	start = time.Now()
	out.Classification, err = colour.ClassifyParallel(ctx, out.Buffer, out.Palette, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to classify pixels: %w", err)
	}
	logger.Debug("pixels classified", "elapsed", time.Since(start))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	out.Regions, err = region.Segment(out.Classification, out.Palette, opts.Segment)
	if err != nil {
		return nil, fmt.Errorf("failed to segment regions: %w", err)
	}
	logger.Debug("regions segmented", "regions", len(out.Regions), "elapsed", time.Since(start))

	return out, nil
}
