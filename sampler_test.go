package img2ascii

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/img2ascii/imageutil"
)

func newTrivialSampler(t *testing.T, opts ...SamplerOption) *Sampler {
	t.Helper()
	ix, err := NewIndex(trivialProfile())
	require.NoError(t, err)
	s, err := NewSampler(ix, opts...)
	require.NoError(t, err)
	return s
}

func TestSamplerTrivialAlphabet(t *testing.T) {
	s := newTrivialSampler(t)
	got := s.GenerateASCII(solidBuffer(4, 4, 128), 4, 4, 2, 2)
	assert.Equal(t, "..\n..", got)
}

func TestSamplerCoordinateFlip(t *testing.T) {
	// Buffer rows 0-49 are bright and rows 50-99 dark. Row 0 is the
	// bottom of the picture, so the first text line must be dark.
	pix := solidBuffer(100, 100, 0)
	for i := 0; i < 50*100*4; i += 4 {
		pix[i], pix[i+1], pix[i+2] = 255, 255, 255
	}

	s := newTrivialSampler(t)
	got := s.GenerateASCII(pix, 100, 100, 2, 2)
	assert.Equal(t, "  \n##", got)
}

func TestSamplerShortBufferReadsBlack(t *testing.T) {
	s := newTrivialSampler(t)

	assert.Equal(t, "  \n  ", s.GenerateASCII(nil, 4, 4, 2, 2))

	// Only the first two buffer rows exist; they hold the bottom half.
	pix := solidBuffer(4, 2, 255)
	assert.Equal(t, "  \n##", s.GenerateASCII(pix, 4, 4, 2, 2))
}

func TestSamplerDegenerateSizes(t *testing.T) {
	s := newTrivialSampler(t)
	assert.Equal(t, "", s.GenerateASCII(solidBuffer(4, 4, 255), 4, 4, 0, 2))
	assert.Equal(t, "", s.GenerateASCII(solidBuffer(4, 4, 255), 4, 4, 2, 0))
	assert.Equal(t, "  \n  ", s.GenerateASCII(nil, 0, 0, 2, 2))
}

func TestSamplerRoundTripTiling(t *testing.T) {
	renderer := quadrantRenderer{size: 8}
	vectors, _, err := NewFeatureBuilder(renderer, quadrantSampling()).Build(context.Background(), hexDigits())
	require.NoError(t, err)

	ix, err := NewIndex(&AlphabetProfile{
		Metadata:   Metadata{SamplingConfig: quadrantSampling(), Width: 8, Height: 8},
		Characters: vectors,
	})
	require.NoError(t, err)
	s, err := NewSampler(ix)
	require.NoError(t, err)

	const cols, rows = 5, 3
	for _, ch := range hexDigits() {
		glyph, err := renderer.RenderCharacter(ch)
		require.NoError(t, err)

		canvas := imageutil.TileImage(glyph, cols*8, rows*8).FlipVertical()
		got := s.GenerateASCII(canvas.Buffer(), cols*8, rows*8, cols, rows)

		line := strings.Repeat(ch, cols)
		want := strings.TrimSuffix(strings.Repeat(line+"\n", rows), "\n")
		assert.Equal(t, want, got, "char %s", ch)
	}
}

// distinctVectors drops every character whose vector equals another's.
func distinctVectors(vectors []CharacterVector) []CharacterVector {
	var out []CharacterVector
	for i, cv := range vectors {
		unique := true
		for j, other := range vectors {
			if i != j && slices.Equal(cv.Vector, other.Vector) {
				unique = false
				break
			}
		}
		if unique {
			out = append(out, cv)
		}
	}
	return out
}

func TestSamplerRoundTripRenderedGlyphs(t *testing.T) {
	f, err := LoadFont(FontSource{})
	require.NoError(t, err)
	const cellW, cellH = 8, 16
	rast, err := NewRasterizer(f, RasterOptions{Width: cellW, Height: cellH, FontSize: DefaultFontSize})
	require.NoError(t, err)

	// Vertical offsets land mid-row: 0.3, 0.55 and 0.8 of 16px.
	sampling := SamplingConfig{CircleRadius: 0.5}
	for _, y := range []float64{0.3, 0.55, 0.8} {
		for _, x := range []float64{0.2, 0.5, 0.8} {
			sampling.Points = append(sampling.Points, SamplingPoint{X: x, Y: y})
		}
	}

	chars, err := Charset("ascii")
	require.NoError(t, err)
	vectors, scales, err := NewFeatureBuilder(rast, sampling).Build(context.Background(), chars)
	require.NoError(t, err)

	alphabet := distinctVectors(vectors)
	require.GreaterOrEqual(t, len(alphabet), 10)

	ix, err := NewIndex(&AlphabetProfile{
		Metadata: Metadata{
			SamplingConfig: sampling,
			Scales:         scales,
			Width:          cellW,
			Height:         cellH,
		},
		Characters: alphabet,
	})
	require.NoError(t, err)
	s, err := NewSampler(ix)
	require.NoError(t, err)

	const cols, rows = 5, 3
	for _, cv := range alphabet {
		glyph, err := rast.RenderCharacter(cv.Char)
		require.NoError(t, err)

		canvas := imageutil.TileImage(glyph, cols*cellW, rows*cellH).FlipVertical()
		got := s.GenerateASCII(canvas.Buffer(), cols*cellW, rows*cellH, cols, rows)

		line := strings.Repeat(cv.Char, cols)
		want := strings.TrimSuffix(strings.Repeat(line+"\n", rows), "\n")
		assert.Equal(t, want, got, "char %q", cv.Char)
	}
}

func TestSamplerAppliesProfileScales(t *testing.T) {
	plain, err := NewIndex(trivialProfile())
	require.NoError(t, err)
	profile := trivialProfile()
	profile.Metadata.Scales = []float64{0.5}
	scaled, err := NewIndex(profile)
	require.NoError(t, err)

	// Luminance 100/255 is nearest "." unscaled and "#" once doubled.
	pix := solidBuffer(4, 4, 100)
	assert.Equal(t, "..\n..", GenerateASCIIChars(plain, pix, 4, 4, 2, 2))
	assert.Equal(t, "##\n##", GenerateASCIIChars(scaled, pix, 4, 4, 2, 2))
}

func TestSampleCircleIncludesCenter(t *testing.T) {
	// Only the middle pixel of a 7x7 canvas is lit. A radius 3 circle
	// visits the 3x3 lattice at offsets -2, 0 and 2.
	pix := solidBuffer(7, 7, 0)
	i := (3*7 + 3) * 4
	pix[i], pix[i+1], pix[i+2] = 255, 255, 255

	s := &Sampler{radius: 3}
	assert.InDelta(t, 1.0/9, s.sampleCircle(pix, 7, 7, 3, 3), 1e-9)

	s.radius = 1.5
	assert.InDelta(t, 1.0, s.sampleCircle(pix, 7, 7, 3, 3), 1e-9)
	assert.Zero(t, s.sampleCircle(pix, 7, 7, 2, 3))
}

func TestSamplerLookupCache(t *testing.T) {
	s := newTrivialSampler(t, WithLookupCache(16))

	got := s.GenerateASCII(solidBuffer(4, 4, 128), 4, 4, 2, 2)
	assert.Equal(t, "..\n..", got)

	stats := s.Stats()
	assert.Equal(t, 1, stats.Frames)
	assert.Equal(t, 1, stats.Cache.Entries)
	assert.Equal(t, 1, stats.Cache.Misses)
	assert.Equal(t, 3, stats.Cache.Hits)
	assert.InDelta(t, 0.75, stats.Cache.HitRate(), 1e-12)

	s.ResetStats()
	stats = s.Stats()
	assert.Zero(t, stats.Frames)
	assert.Zero(t, stats.Cache.Hits)
	assert.Equal(t, 1, stats.Cache.Entries)
}

func TestSamplerWithoutCacheReportsNoCacheStats(t *testing.T) {
	s := newTrivialSampler(t)
	s.GenerateASCII(solidBuffer(4, 4, 0), 4, 4, 2, 2)
	s.GenerateASCII(solidBuffer(4, 4, 0), 4, 4, 2, 2)

	stats := s.Stats()
	assert.Equal(t, 2, stats.Frames)
	assert.Equal(t, CacheStats{}, stats.Cache)
}

func TestNewSamplerRequiresIndex(t *testing.T) {
	_, err := NewSampler(nil)
	assert.Error(t, err)
	assert.Equal(t, "", GenerateASCIIChars(nil, nil, 4, 4, 2, 2))
}

func TestGenerateASCIIChars(t *testing.T) {
	ix, err := NewIndex(trivialProfile())
	require.NoError(t, err)
	assert.Equal(t, "##\n##", GenerateASCIIChars(ix, solidBuffer(4, 4, 255), 4, 4, 2, 2))
}
