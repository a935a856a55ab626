package img2ascii

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/rivo/uniseg"
	"golang.org/x/sync/errgroup"

	"github.com/wbrown/img2ascii/imageutil"
)

// FeatureBuilder turns an alphabet into globally normalized lightness
// vectors by rendering every character through a GlyphRenderer.
type FeatureBuilder struct {
	renderer GlyphRenderer
	sampling SamplingConfig
	workers  int
	debugDir string
	logger   *log.Logger
}

// FeatureOption configures a FeatureBuilder.
type FeatureOption func(*FeatureBuilder)

// WithWorkers bounds the number of characters rendered concurrently.
func WithWorkers(n int) FeatureOption {
	return func(b *FeatureBuilder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithDebugDir writes every rendered glyph, with its sampling windows
// outlined, as a PNG into dir.
func WithDebugDir(dir string) FeatureOption {
	return func(b *FeatureBuilder) {
		b.debugDir = dir
	}
}

// WithFeatureLogger sets the logger used for progress reporting.
func WithFeatureLogger(l *log.Logger) FeatureOption {
	return func(b *FeatureBuilder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewFeatureBuilder creates a FeatureBuilder.
func NewFeatureBuilder(renderer GlyphRenderer, sampling SamplingConfig, opts ...FeatureOption) *FeatureBuilder {
	b := &FeatureBuilder{
		renderer: renderer,
		sampling: sampling,
		workers:  runtime.GOMAXPROCS(0),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build renders each character, samples it and normalizes the result. The
// output preserves the order of chars. The returned scales are the
// per-dimension maxima the vectors were divided by; a sampler divides raw
// frame luminance by the same scales.
func (b *FeatureBuilder) Build(ctx context.Context, chars []string) ([]CharacterVector, []float64, error) {
	if len(chars) == 0 {
		return nil, nil, ErrEmptyAlphabet
	}
	if err := b.sampling.Validate(); err != nil {
		return nil, nil, err
	}
	if b.debugDir != "" {
		if err := os.MkdirAll(b.debugDir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create debug dir: %w", err)
		}
	}

	for i, ch := range chars {
		if uniseg.GraphemeClusterCount(ch) != 1 {
			return nil, nil, fmt.Errorf("character %d (%q): %w", i, ch, ErrInvalidGrapheme)
		}
	}

	vectors := make([]CharacterVector, len(chars))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, ch := range chars {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := b.renderer.RenderCharacter(ch)
			if err != nil {
				return err
			}
			vectors[i] = CharacterVector{Char: ch, Vector: LightnessVector(img, b.sampling)}
			if b.debugDir != "" {
				if err := b.writeDebugImage(i, ch, img); err != nil {
					b.logger.Warn("debug image not written", "char", ch, "err", err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to build feature vectors: %w", err)
	}

	scales := NormalizeVectors(vectors)
	b.logger.Debug("feature vectors built",
		"characters", len(vectors),
		"dimensions", b.sampling.Dimensions(),
		"scales", scales)
	return vectors, scales, nil
}

// NormalizeVectors scales every dimension independently so that its
// maximum across all vectors becomes 1. Relative magnitudes between
// characters at the same sampling point are preserved. A dimension that is
// zero for every vector is left untouched. It returns the per-dimension
// maxima found before scaling.
func NormalizeVectors(vectors []CharacterVector) []float64 {
	if len(vectors) == 0 {
		return nil
	}
	dims := len(vectors[0].Vector)
	maxima := make([]float64, dims)
	for _, cv := range vectors {
		for d := 0; d < dims && d < len(cv.Vector); d++ {
			maxima[d] = math.Max(maxima[d], cv.Vector[d])
		}
	}

	for _, cv := range vectors {
		for d := 0; d < dims && d < len(cv.Vector); d++ {
			if maxima[d] > 0 {
				cv.Vector[d] /= maxima[d]
			}
		}
	}
	return maxima
}

// writeDebugImage saves the rendered glyph with the sampling windows
// outlined in red.
func (b *FeatureBuilder) writeDebugImage(i int, ch string, glyph *imageutil.RGBAImage) error {
	img := glyph.Clone()
	width, height := img.Width(), img.Height()
	radius := b.sampling.CircleRadius
	marker := imageutil.RGB{R: 255}

	for _, p := range b.sampling.Points {
		cx := math.Floor(p.X * float64(width))
		cy := math.Floor(p.Y * float64(height))
		steps := max(16, int(2*math.Pi*radius))
		for s := 0; s < steps; s++ {
			theta := 2 * math.Pi * float64(s) / float64(steps)
			x := int(math.Round(cx + radius*math.Cos(theta)))
			y := int(math.Round(cy + radius*math.Sin(theta)))
			if x >= 0 && x < width && y >= 0 && y < height {
				img.SetRGB(x, y, marker)
			}
		}
	}

	name := fmt.Sprintf("%03d_U+%04X.png", i, []rune(ch)[0])
	return imageutil.SavePNG(img.RGBA, filepath.Join(b.debugDir, name))
}
