package img2ascii

import (
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"

	"github.com/wbrown/img2ascii/imageutil"
)

// RenderTextImage draws text, one line per row, as a grid of glyphs of
// cellWidth x cellHeight pixels. Short lines are padded with black. Each
// distinct character is rendered once.
func RenderTextImage(text string, r GlyphRenderer, cellWidth, cellHeight int) (*imageutil.RGBAImage, error) {
	if cellWidth <= 0 || cellHeight <= 0 {
		return nil, fmt.Errorf("invalid cell size %dx%d", cellWidth, cellHeight)
	}

	lines := strings.Split(text, "\n")
	rows := make([][]string, len(lines))
	cols := 0
	for i, line := range lines {
		rows[i] = splitGraphemes(line)
		cols = max(cols, len(rows[i]))
	}
	if cols == 0 {
		return nil, fmt.Errorf("no characters to draw")
	}

	img := imageutil.NewRGBAImage(cols*cellWidth, len(rows)*cellHeight)
	img.Fill(imageutil.RGB{})

	glyphs := make(map[string]*imageutil.RGBAImage)
	for y, row := range rows {
		for x, ch := range row {
			if ch == " " {
				continue
			}
			glyph, ok := glyphs[ch]
			if !ok {
				var err error
				glyph, err = r.RenderCharacter(ch)
				if err != nil {
					return nil, err
				}
				glyphs[ch] = glyph
			}
			cell := image.Rect(x*cellWidth, y*cellHeight, (x+1)*cellWidth, (y+1)*cellHeight)
			draw.Draw(img.RGBA, cell, glyph.RGBA, glyph.Bounds().Min, draw.Src)
		}
	}
	return img, nil
}
