package img2ascii

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/wbrown/img2ascii/imageutil"
)

// Default cell size used when a profile does not record one.
const (
	defaultCellWidth  = 8
	defaultCellHeight = 16
)

// Renderer converts still images to ASCII art with an alphabet profile.
// It owns a Sampler, so renders on one Renderer are serialized; use
// separate Renderers for parallel work. They can share one Index.
type Renderer struct {
	// Configuration options
	OutputWidth int
	ScaleFactor float64
	Sharpen     bool
	CacheLevels int

	index   *Index
	sampler *Sampler
	logger  *log.Logger
	err     error

	mu sync.Mutex
}

// RendererOption is a functional option for configuring a Renderer.
type RendererOption func(*Renderer)

// NewRenderer creates a Renderer. A profile must be supplied with
// WithProfile or WithIndex.
// Default values: OutputWidth=80, ScaleFactor=2.0, Sharpen=false,
// CacheLevels=0 (exact matching).
func NewRenderer(opts ...RendererOption) (*Renderer, error) {
	r := &Renderer{
		OutputWidth: 80,
		ScaleFactor: 2.0,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.err != nil {
		return nil, r.err
	}
	if r.index == nil {
		return nil, errors.New("renderer requires a profile")
	}
	if r.OutputWidth <= 0 {
		return nil, fmt.Errorf("invalid output width %d", r.OutputWidth)
	}
	if r.ScaleFactor <= 0 {
		return nil, fmt.Errorf("invalid scale factor %v", r.ScaleFactor)
	}

	var samplerOpts []SamplerOption
	if r.CacheLevels > 0 {
		samplerOpts = append(samplerOpts, WithLookupCache(r.CacheLevels))
	}
	sampler, err := NewSampler(r.index, samplerOpts...)
	if err != nil {
		return nil, err
	}
	r.sampler = sampler
	return r, nil
}

// WithProfile loads the profile at path through the process-wide index
// cache.
func WithProfile(path string) RendererOption {
	return func(r *Renderer) {
		ix, err := LoadIndex(path)
		if err != nil {
			r.err = fmt.Errorf("failed to load profile: %w", err)
			return
		}
		r.index = ix
	}
}

// WithIndex uses an already built index.
func WithIndex(ix *Index) RendererOption {
	return func(r *Renderer) {
		r.index = ix
	}
}

// WithOutputWidth sets the output width in characters.
func WithOutputWidth(width int) RendererOption {
	return func(r *Renderer) {
		r.OutputWidth = width
	}
}

// WithScaleFactor sets the aspect ratio scale factor for terminal characters.
func WithScaleFactor(factor float64) RendererOption {
	return func(r *Renderer) {
		r.ScaleFactor = factor
	}
}

// WithSharpen sharpens the resized canvas before sampling.
func WithSharpen(sharpen bool) RendererOption {
	return func(r *Renderer) {
		r.Sharpen = sharpen
	}
}

// WithCacheLevels enables the sampler lookup cache with the given
// quantization levels per dimension.
func WithCacheLevels(levels int) RendererOption {
	return func(r *Renderer) {
		r.CacheLevels = levels
	}
}

// WithRendererLogger sets the logger.
func WithRendererLogger(l *log.Logger) RendererOption {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// Index returns the index the renderer matches against.
func (r *Renderer) Index() *Index {
	return r.index
}

// cellSize returns the pixel size of one character cell of the profile.
func (r *Renderer) cellSize() (int, int) {
	md := r.index.Profile().Metadata
	w, h := md.Width, md.Height
	if w <= 0 || h <= 0 {
		return defaultCellWidth, defaultCellHeight
	}
	return w, h
}

// OutputSize returns the text grid size for an image of the given pixel
// dimensions.
func (r *Renderer) OutputSize(imgWidth, imgHeight int) (int, int) {
	if imgWidth <= 0 || imgHeight <= 0 {
		return r.OutputWidth, 1
	}
	aspect := float64(imgWidth) / float64(imgHeight)
	height := int(float64(r.OutputWidth) / aspect / r.ScaleFactor)
	return r.OutputWidth, max(height, 1)
}

// RenderImage converts img to text. The image is resized to a canvas of
// whole profile cells and flipped bottom-row-first before sampling.
func (r *Renderer) RenderImage(img *imageutil.RGBAImage) (string, error) {
	if img == nil || img.Width() == 0 || img.Height() == 0 {
		return "", errors.New("empty image")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	outW, outH := r.OutputSize(img.Width(), img.Height())
	cellW, cellH := r.cellSize()
	canvasW, canvasH := outW*cellW, outH*cellH

	canvas := imageutil.PrepareCanvas(img, canvasW, canvasH, r.Sharpen)
	text := r.sampler.GenerateASCII(canvas.Buffer(), canvasW, canvasH, outW, outH)

	r.logger.Debug("rendered image",
		"source", fmt.Sprintf("%dx%d", img.Width(), img.Height()),
		"canvas", fmt.Sprintf("%dx%d", canvasW, canvasH),
		"output", fmt.Sprintf("%dx%d", outW, outH))
	return text, nil
}

// RenderFile loads the image at path and converts it to text.
func (r *Renderer) RenderFile(path string) (string, error) {
	img, err := imageutil.LoadImage(path)
	if err != nil {
		return "", err
	}
	return r.RenderImage(img)
}

// Stats returns the sampler statistics accumulated by this renderer.
func (r *Renderer) Stats() SamplerStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sampler.Stats()
}
