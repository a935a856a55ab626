// Package imageutil provides the pixel-level helpers used to rasterize
// glyphs and to prepare source images for ASCII sampling.
package imageutil

import (
	"image"
	"image/color"
	"image/draw"
)

// RGB represents a color in the RGB color space with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// ToColor converts RGB to color.RGBA for use with standard library.
func (rgb RGB) ToColor() color.RGBA {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// Luminance returns the relative luminance of the color in [0, 1].
func (rgb RGB) Luminance() float64 {
	return Luminance(rgb.R, rgb.G, rgb.B)
}

// RGBAImage wraps image.RGBA with convenience methods for pixel access.
type RGBAImage struct {
	*image.RGBA
}

// NewRGBAImage creates a new RGBAImage with the specified dimensions.
func NewRGBAImage(width, height int) *RGBAImage {
	return &RGBAImage{
		RGBA: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// RGBAImageFromImage converts any image.Image to an RGBAImage whose bounds
// start at the origin.
func RGBAImageFromImage(img image.Image) *RGBAImage {
	bounds := img.Bounds()
	rgba := NewRGBAImage(bounds.Dx(), bounds.Dy())
	draw.Draw(rgba.RGBA, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

// Width returns the image width.
func (img *RGBAImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *RGBAImage) Height() int {
	return img.Bounds().Dy()
}

// GetRGB returns the RGB value at (x, y).
func (img *RGBAImage) GetRGB(x, y int) RGB {
	c := img.RGBAAt(x, y)
	return RGB{R: c.R, G: c.G, B: c.B}
}

// SetRGB sets the RGB value at (x, y).
func (img *RGBAImage) SetRGB(x, y int, c RGB) {
	img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
}

// LuminanceAt returns the relative luminance of the pixel at (x, y).
// Pixels outside the image read as black.
func (img *RGBAImage) LuminanceAt(x, y int) float64 {
	if !(image.Point{X: x, Y: y}.In(img.Bounds())) {
		return 0
	}
	i := img.PixOffset(x, y)
	return Luminance(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
}

// Fill paints every pixel with c.
func (img *RGBAImage) Fill(c RGB) {
	draw.Draw(img.RGBA, img.Bounds(), &image.Uniform{C: c.ToColor()},
		image.Point{}, draw.Src)
}

// Clone creates a deep copy of the image.
func (img *RGBAImage) Clone() *RGBAImage {
	clone := NewRGBAImage(img.Width(), img.Height())
	copy(clone.Pix, img.Pix)
	return clone
}

// FlipVertical returns a copy of the image with row order reversed. It
// converts between top-row-first images and bottom-row-first buffers such
// as GPU read-backs.
func (img *RGBAImage) FlipVertical() *RGBAImage {
	width, height := img.Width(), img.Height()
	dst := NewRGBAImage(width, height)
	rowBytes := width * 4
	for y := 0; y < height; y++ {
		src := img.PixOffset(img.Bounds().Min.X, img.Bounds().Min.Y+y)
		out := dst.PixOffset(0, height-1-y)
		copy(dst.Pix[out:out+rowBytes], img.Pix[src:src+rowBytes])
	}
	return dst
}

// Buffer returns the image as a tightly packed RGBA byte slice, row by row.
func (img *RGBAImage) Buffer() []byte {
	width, height := img.Width(), img.Height()
	rowBytes := width * 4
	if img.Stride == rowBytes && img.Bounds().Min == (image.Point{}) {
		return img.Pix[:rowBytes*height]
	}
	buf := make([]byte, rowBytes*height)
	for y := 0; y < height; y++ {
		src := img.PixOffset(img.Bounds().Min.X, img.Bounds().Min.Y+y)
		copy(buf[y*rowBytes:(y+1)*rowBytes], img.Pix[src:src+rowBytes])
	}
	return buf
}
