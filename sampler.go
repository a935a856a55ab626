package img2ascii

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/wbrown/img2ascii/imageutil"
)

const (
	// maxSampleRadius caps the per-point neighbourhood in canvas pixels.
	maxSampleRadius = 3.0
	// sampleStride is the pixel step within a neighbourhood.
	sampleStride = 2
)

// Sampler converts RGBA frames into text using a shared Index. Its
// buffers are reused across frames, so a Sampler must not be used from
// more than one goroutine at a time; create one per render loop.
type Sampler struct {
	index  *Index
	points []SamplingPoint
	scales []float64
	radius float64
	cache  *lookupCache

	vector []float64
	cells  []string

	frames  int
	elapsed time.Duration
}

// SamplerOption configures a Sampler.
type SamplerOption func(*Sampler)

// WithLookupCache memoizes matches for cell vectors that agree after
// quantizing every dimension to levels steps. It trades exactness for
// speed on frames with large flat regions. Zero or negative levels leave
// the cache off.
func WithLookupCache(levels int) SamplerOption {
	return func(s *Sampler) {
		if levels > 0 {
			s.cache = newLookupCache(levels)
		}
	}
}

// NewSampler creates a Sampler that samples frames at the index's sampling
// points.
func NewSampler(index *Index, opts ...SamplerOption) (*Sampler, error) {
	if index == nil {
		return nil, errors.New("sampler requires an index")
	}
	cfg := index.Sampling()
	s := &Sampler{
		index:  index,
		points: cfg.Points,
		scales: index.Profile().Metadata.Scales,
		radius: cfg.CircleRadius,
		vector: make([]float64, len(cfg.Points)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GenerateASCII matches every cell of an outputWidth x outputHeight grid
// laid over the canvasWidth x canvasHeight RGBA buffer pix and returns the
// characters as outputHeight newline-joined lines.
//
// Row 0 of pix is the bottom of the image, as read back from a GL
// framebuffer; the first line of text is the top of the image. Reads past
// the end of pix are treated as black, and a cell that cannot be matched
// becomes a space. It never fails.
//
// Sampled luminance is divided by the profile's scales, so a frame that
// tiles a glyph reproduces that glyph's stored vector when the circle
// radius is below 1 and every sampling point's vertical offset falls
// inside a pixel row rather than on a row boundary.
func (s *Sampler) GenerateASCII(pix []byte, canvasWidth, canvasHeight, outputWidth, outputHeight int) string {
	if outputWidth <= 0 || outputHeight <= 0 {
		return ""
	}
	start := time.Now()

	charWidth := float64(canvasWidth) / float64(outputWidth)
	charHeight := float64(canvasHeight) / float64(outputHeight)

	var sb strings.Builder
	sb.Grow((outputWidth + 1) * outputHeight)
	if cap(s.cells) < outputWidth {
		s.cells = make([]string, outputWidth)
	}
	row := s.cells[:outputWidth]

	for y := 0; y < outputHeight; y++ {
		for x := 0; x < outputWidth; x++ {
			for i, p := range s.points {
				if canvasWidth <= 0 || canvasHeight <= 0 {
					s.vector[i] = 0
					continue
				}
				px := int(math.Floor(float64(x)*charWidth + p.X*charWidth))
				v := (float64(y)*charHeight + p.Y*charHeight) / float64(canvasHeight)
				py := int(math.Floor((1 - v) * float64(canvasHeight)))
				s.vector[i] = s.sampleCircle(pix, canvasWidth, canvasHeight, px, py)
				if i < len(s.scales) && s.scales[i] > 0 {
					s.vector[i] /= s.scales[i]
				}
			}
			row[x] = s.match(s.vector)
		}

		if y > 0 {
			sb.WriteByte('\n')
		}
		for _, ch := range row {
			if ch == blank {
				ch = " "
			}
			sb.WriteString(ch)
		}
	}

	s.frames++
	s.elapsed += time.Since(start)
	return sb.String()
}

// match resolves a cell vector to a character, consulting the lookup cache
// when enabled. Any failure yields blank.
func (s *Sampler) match(vector []float64) string {
	if s.cache != nil {
		if ch, ok := s.cache.get(vector); ok {
			return ch
		}
	}
	ch, err := s.index.Match(vector)
	if err != nil {
		ch = blank
	}
	if s.cache != nil {
		s.cache.add(vector, ch)
	}
	return ch
}

// sampleCircle returns the mean luminance of the pixels strictly inside a
// circle around (px, py), visiting every sampleStride-th pixel of a lattice
// that passes through (px, py). Pixels off the canvas are skipped; if none
// remain the center pixel alone is used.
func (s *Sampler) sampleCircle(pix []byte, width, height, px, py int) float64 {
	r := math.Min(s.radius, maxSampleRadius)
	reach := int(r) / sampleStride * sampleStride
	rsq := r * r

	var sum float64
	var n int
	for dy := -reach; dy <= reach; dy += sampleStride {
		for dx := -reach; dx <= reach; dx += sampleStride {
			if float64(dx*dx+dy*dy) >= rsq {
				continue
			}
			x, y := px+dx, py+dy
			if x < 0 || x >= width || y < 0 || y >= height {
				continue
			}
			sum += pixelLuminance(pix, width, x, y)
			n++
		}
	}
	if n == 0 {
		if px < 0 || px >= width || py < 0 || py >= height {
			return 0
		}
		return pixelLuminance(pix, width, px, py)
	}
	return sum / float64(n)
}

// pixelLuminance reads the pixel at (x, y) of a packed RGBA buffer. A pixel
// beyond the end of the buffer is black.
func pixelLuminance(pix []byte, width, x, y int) float64 {
	i := (y*width + x) * 4
	if i < 0 || i+2 >= len(pix) {
		return 0
	}
	return imageutil.Luminance(pix[i], pix[i+1], pix[i+2])
}

// SamplerStats reports cumulative sampler activity.
type SamplerStats struct {
	Frames  int
	Elapsed time.Duration
	Cache   CacheStats
}

// Stats returns the frames sampled, the time spent sampling them and the
// lookup cache counters.
func (s *Sampler) Stats() SamplerStats {
	return SamplerStats{
		Frames:  s.frames,
		Elapsed: s.elapsed,
		Cache:   s.cache.stats(),
	}
}

// ResetStats clears the frame and cache counters. Cached matches are kept.
func (s *Sampler) ResetStats() {
	s.frames = 0
	s.elapsed = 0
	if s.cache != nil {
		s.cache.hits = 0
		s.cache.misses = 0
	}
}

// GenerateASCIIChars samples a single frame against index with a
// throwaway Sampler. Render loops should keep a Sampler instead.
func GenerateASCIIChars(index *Index, pix []byte, canvasWidth, canvasHeight, outputWidth, outputHeight int) string {
	s, err := NewSampler(index)
	if err != nil {
		return ""
	}
	return s.GenerateASCII(pix, canvasWidth, canvasHeight, outputWidth, outputHeight)
}
