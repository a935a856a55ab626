package img2ascii

import (
	"fmt"
	"image"
	"math"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/wbrown/img2ascii/imageutil"
)

// GlyphRenderer renders one character to a cell-sized bitmap.
type GlyphRenderer interface {
	RenderCharacter(char string) (*imageutil.RGBAImage, error)
}

// RasterOptions configures a Rasterizer.
type RasterOptions struct {
	// Width and Height are the cell size in pixels.
	Width  int
	Height int
	// FontSize is the font size in points at 72 DPI, so one point is one
	// pixel.
	FontSize float64
	// BlurRadius enables a separable Gaussian blur when positive.
	BlurRadius float64
}

// Rasterizer renders glyphs of a TrueType font onto fixed-size cells:
// black background, white glyph, centered. It creates a fresh face per
// call and is safe for concurrent use.
type Rasterizer struct {
	font *truetype.Font
	opts RasterOptions
}

// NewRasterizer creates a Rasterizer for the given font.
func NewRasterizer(f *truetype.Font, opts RasterOptions) (*Rasterizer, error) {
	if f == nil {
		return nil, fmt.Errorf("rasterizer requires a font")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid cell size %dx%d", opts.Width, opts.Height)
	}
	if opts.FontSize <= 0 {
		return nil, fmt.Errorf("invalid font size %v", opts.FontSize)
	}
	return &Rasterizer{font: f, opts: opts}, nil
}

// Options returns the rasterizer configuration.
func (r *Rasterizer) Options() RasterOptions {
	return r.opts
}

// RenderCharacter draws char centered on a black Width x Height cell and
// applies the configured blur.
//
// Horizontal placement uses the measured advance of the string; vertical
// placement centers the ascent+descent box, which keeps descenders such
// as g, j, p, q and y inside the cell.
func (r *Rasterizer) RenderCharacter(char string) (*imageutil.RGBAImage, error) {
	width, height := r.opts.Width, r.opts.Height

	face := truetype.NewFace(r.font, &truetype.Options{
		Size:    r.opts.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	img := imageutil.NewRGBAImage(width, height)
	img.Fill(imageutil.RGB{})

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(r.font)
	ctx.SetFontSize(r.opts.FontSize)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img.RGBA)
	ctx.SetSrc(image.White)
	ctx.SetHinting(font.HintingFull)

	metrics := face.Metrics()
	advance := font.MeasureString(face, char)
	dot := fixed.Point26_6{
		X: (fixed.I(width) - advance) / 2,
		Y: (fixed.I(height) + metrics.Ascent - metrics.Descent) / 2,
	}
	if _, err := ctx.DrawString(char, dot); err != nil {
		return nil, fmt.Errorf("failed to draw %q: %w", char, err)
	}

	if r.opts.BlurRadius > 0 {
		img = imageutil.GaussianBlur(img, r.opts.BlurRadius)
	}
	return img, nil
}

// GenerateLightnessVector renders char and samples it with cfg.
func (r *Rasterizer) GenerateLightnessVector(char string, cfg SamplingConfig) ([]float64, error) {
	img, err := r.RenderCharacter(char)
	if err != nil {
		return nil, err
	}
	return LightnessVector(img, cfg), nil
}

// LightnessVector measures img at every sampling point of cfg. Each
// component is the mean luminance of all pixels within CircleRadius
// (inclusive) of the point's pixel-space center; the window is flat, not
// Gaussian-weighted. A point whose window misses the image reads 0.
func LightnessVector(img *imageutil.RGBAImage, cfg SamplingConfig) []float64 {
	width, height := img.Width(), img.Height()
	radius := cfg.CircleRadius
	reach := int(math.Ceil(radius))
	radiusSq := radius * radius

	vector := make([]float64, len(cfg.Points))
	for i, p := range cfg.Points {
		cx := int(math.Floor(p.X * float64(width)))
		cy := int(math.Floor(p.Y * float64(height)))

		var sum float64
		var count int
		for dy := -reach; dy <= reach; dy++ {
			y := cy + dy
			if y < 0 || y >= height {
				continue
			}
			for dx := -reach; dx <= reach; dx++ {
				x := cx + dx
				if x < 0 || x >= width {
					continue
				}
				if float64(dx*dx+dy*dy) > radiusSq {
					continue
				}
				sum += img.LuminanceAt(x, y)
				count++
			}
		}
		if count > 0 {
			vector[i] = sum / float64(count)
		}
	}
	return vector
}
