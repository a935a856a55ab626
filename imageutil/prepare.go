package imageutil

// PrepareCanvas prepares a source image for ASCII sampling.
//
// The function:
// 1. Resizes to the canvas size using area interpolation
// 2. Optionally applies mild sharpening to restore edges lost in downscaling
// 3. Flips the rows so the result follows the bottom-row-first convention
//    of GPU read-backs, which is what the sampler consumes
//
// Parameters:
//   - img: The input image, top row first
//   - width, height: Canvas size in pixels
//   - sharpen: Whether to sharpen after resizing
//
// Returns:
//   - canvas: The processed image at (width x height), bottom row first
func PrepareCanvas(img *RGBAImage, width, height int, sharpen bool) *RGBAImage {
	canvas := Resize(img, width, height, InterpolationArea)
	if sharpen {
		canvas = Sharpen(canvas)
	}
	return canvas.FlipVertical()
}
