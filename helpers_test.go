package img2ascii

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wbrown/img2ascii/imageutil"
)

// quadrantRenderer draws hex digits as 2x2 quadrant patterns: bit 0 is the
// top-left quadrant, bit 1 top-right, bit 2 bottom-left, bit 3
// bottom-right.
type quadrantRenderer struct {
	size int
}

func (q quadrantRenderer) RenderCharacter(char string) (*imageutil.RGBAImage, error) {
	mask, err := strconv.ParseUint(char, 16, 8)
	if err != nil || len(char) != 1 {
		return nil, fmt.Errorf("unsupported character %q", char)
	}
	img := imageutil.NewRGBAImage(q.size, q.size)
	img.Fill(imageutil.RGB{})
	half := q.size / 2
	white := imageutil.RGB{R: 255, G: 255, B: 255}
	for y := 0; y < q.size; y++ {
		for x := 0; x < q.size; x++ {
			bit := 0
			if x >= half {
				bit++
			}
			if y >= half {
				bit += 2
			}
			if mask&(1<<bit) != 0 {
				img.SetRGB(x, y, white)
			}
		}
	}
	return img, nil
}

// quadrantSampling samples the center of each quadrant of a cell.
func quadrantSampling() SamplingConfig {
	return GridSampling(2, 2, 1.5)
}

// hexDigits are the sixteen quadrant patterns.
func hexDigits() []string {
	chars := make([]string, 16)
	for i := range chars {
		chars[i] = strconv.FormatInt(int64(i), 16)
	}
	return chars
}

// quadrantVectors builds the normalized vectors of all sixteen patterns.
func quadrantVectors(t *testing.T) []CharacterVector {
	t.Helper()
	b := NewFeatureBuilder(quadrantRenderer{size: 8}, quadrantSampling())
	vectors, _, err := b.Build(context.Background(), hexDigits())
	require.NoError(t, err)
	return vectors
}

// trivialProfile maps " ", "." and "#" to 0, 0.5 and 1 at a single
// sampling point in the middle of a 4x4 cell.
func trivialProfile() *AlphabetProfile {
	return &AlphabetProfile{
		Metadata: Metadata{
			Name: "trivial",
			SamplingConfig: SamplingConfig{
				Points:       []SamplingPoint{{X: 0.5, Y: 0.5}},
				CircleRadius: 2,
			},
			Width:  4,
			Height: 4,
		},
		Characters: []CharacterVector{
			{Char: " ", Vector: []float64{0.0}},
			{Char: ".", Vector: []float64{0.5}},
			{Char: "#", Vector: []float64{1.0}},
		},
	}
}

// solidBuffer returns a packed RGBA buffer of one gray level.
func solidBuffer(width, height int, level uint8) []byte {
	pix := make([]byte, width*height*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = level, level, level, 255
	}
	return pix
}
