package colour

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/jmylchreest/vecprep/internal/image"
)

// KMeansExtractor builds a palette with k-means clustering over sampled opaque pixels.
// Seeding is derived from the buffer content, so the same image always yields the
// same palette.
type KMeansExtractor struct {
	maxIterations int
	convergence   float64
	maxSamples    int
}

// NewKMeansExtractor creates a new KMeansExtractor with default settings.
func NewKMeansExtractor() *KMeansExtractor {
	return &KMeansExtractor{
		maxIterations: 20,
		convergence:   2.0,
		maxSamples:    5000,
	}
}

// Extract clusters the opaque pixels of buf into at most count colours.
func (e *KMeansExtractor) Extract(buf *image.Buffer, count int) (*Palette, error) {
	if buf == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	if count < 1 {
		return nil, fmt.Errorf("color count must be at least 1, got %d", count)
	}

	points := e.samplePixels(buf)
	if len(points) == 0 {
		return NewPalette(nil), nil
	}

	unique := make([]RGBA, 0, len(points))
	seen := make(map[RGBA]bool)
	for _, p := range points {
		c := p.rgba()
		if !seen[c] {
			unique = append(unique, c)
			seen[c] = true
		}
	}

	if count >= len(unique) {
		return NewPalette(unique), nil
	}

	rng := rand.New(rand.NewSource(buf.Seed())) // #nosec G404 - deterministic clustering, not security sensitive
	centroids := e.kmeans(rng, points, count)

	colors := make([]RGBA, len(centroids))
	for i, c := range centroids {
		colors[i] = c.rgba()
	}
	return NewPalette(colors), nil
}

// point3D represents a point in 3D RGB color space.
type point3D struct {
	R, G, B float64
}

func (p point3D) distance(other point3D) float64 {
	dr := p.R - other.R
	dg := p.G - other.G
	db := p.B - other.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

func (p point3D) rgba() RGBA {
	return Opaque(uint8(math.Round(p.R)), uint8(math.Round(p.G)), uint8(math.Round(p.B)))
}

// samplePixels grid-samples opaque pixels, capped at maxSamples.
func (e *KMeansExtractor) samplePixels(buf *image.Buffer) []point3D {
	total := buf.Len()
	step := 1
	if total > e.maxSamples {
		step = max(int(math.Sqrt(float64(total)/float64(e.maxSamples))), 1)
	}

	points := make([]point3D, 0, min(total, e.maxSamples))
	for y := 0; y < buf.Height; y += step {
		for x := 0; x < buf.Width; x += step {
			r, g, b, a := buf.At(x, y)
			if a < OpaqueThreshold {
				continue
			}
			points = append(points, point3D{R: float64(r), G: float64(g), B: float64(b)})
			if len(points) >= e.maxSamples {
				return points
			}
		}
	}
	return points
}

func (e *KMeansExtractor) kmeans(rng *rand.Rand, points []point3D, k int) []point3D {
	centroids := e.initializeCentroids(rng, points, k)
	assignments := make([]int, len(points))

	for range e.maxIterations {
		changed := 0
		for i, point := range points {
			nearest := findNearestCentroid(point, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed++
			}
		}

		// Fewer than 1% of points moved.
		if float64(changed)/float64(len(points)) < 0.01 {
			break
		}

		next := recalculateCentroids(rng, points, assignments, k)

		movement := 0.0
		for i := range centroids {
			movement += centroids[i].distance(next[i])
		}
		centroids = next

		if movement/float64(k) < e.convergence {
			break
		}
	}

	return centroids
}

// initializeCentroids picks k starting centroids with k-means++.
func (e *KMeansExtractor) initializeCentroids(rng *rand.Rand, points []point3D, k int) []point3D {
	centroids := make([]point3D, 0, k)
	centroids = append(centroids, points[rng.Intn(len(points))])

	distances := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, point := range points {
			minDist := math.MaxFloat64
			for _, c := range centroids {
				minDist = math.Min(minDist, point.distance(c))
			}
			distances[i] = minDist * minDist
			total += distances[i]
		}

		if total == 0 {
			last := centroids[len(centroids)-1]
			centroids = append(centroids, point3D{R: last.R + 0.1, G: last.G + 0.1, B: last.B + 0.1})
			continue
		}

		target := rng.Float64() * total
		cumulative := 0.0
		picked := len(points) - 1
		for i, d := range distances {
			cumulative += d
			if cumulative >= target {
				picked = i
				break
			}
		}
		centroids = append(centroids, points[picked])
	}

	return centroids
}

func findNearestCentroid(point point3D, centroids []point3D) int {
	minDist := math.MaxFloat64
	nearest := 0
	for i, c := range centroids {
		if d := point.distance(c); d < minDist {
			minDist = d
			nearest = i
		}
	}
	return nearest
}

func recalculateCentroids(rng *rand.Rand, points []point3D, assignments []int, k int) []point3D {
	sums := make([]point3D, k)
	counts := make([]int, k)

	for i, point := range points {
		cluster := assignments[i]
		sums[cluster].R += point.R
		sums[cluster].G += point.G
		sums[cluster].B += point.B
		counts[cluster]++
	}

	centroids := make([]point3D, k)
	for i := range k {
		if counts[i] == 0 {
			centroids[i] = points[rng.Intn(len(points))]
			continue
		}
		n := float64(counts[i])
		centroids[i] = point3D{R: sums[i].R / n, G: sums[i].G / n, B: sums[i].B / n}
	}
	return centroids
}
