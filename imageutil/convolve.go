package imageutil

import "math"

// Kernel represents a convolution kernel.
type Kernel struct {
	Values [][]float64
	Width  int
	Height int
}

// NewKernel creates a new kernel from a 2D slice.
func NewKernel(values [][]float64) *Kernel {
	height := len(values)
	width := 0
	if height > 0 {
		width = len(values[0])
	}
	return &Kernel{
		Values: values,
		Width:  width,
		Height: height,
	}
}

// SharpeningKernel returns a mild sharpening kernel.
func SharpeningKernel() *Kernel {
	return NewKernel([][]float64{
		{0, -0.5, 0},
		{-0.5, 3, -0.5},
		{0, -0.5, 0},
	})
}

// Convolve applies a convolution kernel to an RGBA image.
// Border pixels are handled by replicating edge values.
func Convolve(img *RGBAImage, kernel *Kernel) *RGBAImage {
	width, height := img.Width(), img.Height()
	dst := NewRGBAImage(width, height)

	halfKW := kernel.Width / 2
	halfKH := kernel.Height / 2

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sumR, sumG, sumB float64

			for ky := 0; ky < kernel.Height; ky++ {
				for kx := 0; kx < kernel.Width; kx++ {
					sx := clampInt(x+kx-halfKW, 0, width-1)
					sy := clampInt(y+ky-halfKH, 0, height-1)

					c := img.RGBAAt(sx, sy)
					k := kernel.Values[ky][kx]

					sumR += float64(c.R) * k
					sumG += float64(c.G) * k
					sumB += float64(c.B) * k
				}
			}

			dst.SetRGB(x, y, RGB{
				R: clampUint8(sumR),
				G: clampUint8(sumG),
				B: clampUint8(sumB),
			})
		}
	}

	return dst
}

// Sharpen applies a mild sharpening filter to an RGBA image.
func Sharpen(img *RGBAImage) *RGBAImage {
	return Convolve(img, SharpeningKernel())
}

// GaussianKernel1D returns a normalized one-dimensional Gaussian kernel for
// the given blur radius. The kernel has ceil(radius*2)*2+1 taps and uses
// sigma = radius. A non-positive radius yields the identity kernel {1}.
func GaussianKernel1D(radius float64) []float64 {
	if radius <= 0 {
		return []float64{1}
	}
	half := int(math.Ceil(radius * 2))
	kernel := make([]float64, half*2+1)
	twoSigmaSq := 2 * radius * radius

	var sum float64
	for i := range kernel {
		d := float64(i - half)
		kernel[i] = math.Exp(-d * d / twoSigmaSq)
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// GaussianBlur applies a separable Gaussian blur: a horizontal pass
// followed by a vertical pass over the same normalized 1D kernel. Border
// pixels are replicated. A non-positive radius returns a copy of img.
func GaussianBlur(img *RGBAImage, radius float64) *RGBAImage {
	if radius <= 0 {
		return img.Clone()
	}
	kernel := GaussianKernel1D(radius)
	half := len(kernel) / 2
	width, height := img.Width(), img.Height()

	// Horizontal pass into a float buffer to avoid double rounding.
	tmp := make([]float64, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var r, g, b float64
			for k, w := range kernel {
				sx := clampInt(x+k-half, 0, width-1)
				c := img.RGBAAt(sx, y)
				r += float64(c.R) * w
				g += float64(c.G) * w
				b += float64(c.B) * w
			}
			i := (y*width + x) * 3
			tmp[i], tmp[i+1], tmp[i+2] = r, g, b
		}
	}

	dst := NewRGBAImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var r, g, b float64
			for k, w := range kernel {
				sy := clampInt(y+k-half, 0, height-1)
				i := (sy*width + x) * 3
				r += tmp[i] * w
				g += tmp[i+1] * w
				b += tmp[i+2] * w
			}
			dst.SetRGB(x, y, RGB{
				R: clampUint8(r),
				G: clampUint8(g),
				B: clampUint8(b),
			})
		}
	}

	return dst
}

// clampInt clamps an integer to the given range.
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clampUint8 clamps a float64 to [0, 255] and converts to uint8.
func clampUint8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}
