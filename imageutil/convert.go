package imageutil

// Luminance returns the BT.601 relative luminance of an 8-bit RGB triple,
// normalized to [0, 1]: Y = (0.299*R + 0.587*G + 0.114*B) / 255.
func Luminance(r, g, b uint8) float64 {
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
}
