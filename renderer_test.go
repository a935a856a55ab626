package img2ascii

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/img2ascii/imageutil"
)

func newTrivialRenderer(t *testing.T, opts ...RendererOption) *Renderer {
	t.Helper()
	ix, err := NewIndex(trivialProfile())
	require.NoError(t, err)
	r, err := NewRenderer(append([]RendererOption{WithIndex(ix)}, opts...)...)
	require.NoError(t, err)
	return r
}

func TestNewRendererDefaults(t *testing.T) {
	r := newTrivialRenderer(t)
	assert.Equal(t, 80, r.OutputWidth)
	assert.Equal(t, 2.0, r.ScaleFactor)
	assert.False(t, r.Sharpen)
	assert.Zero(t, r.CacheLevels)
}

func TestNewRendererErrors(t *testing.T) {
	_, err := NewRenderer()
	assert.ErrorContains(t, err, "requires a profile")

	_, err = NewRenderer(WithProfile(filepath.Join(t.TempDir(), "missing.json")))
	assert.ErrorContains(t, err, "failed to load profile")

	ix, err := NewIndex(trivialProfile())
	require.NoError(t, err)
	_, err = NewRenderer(WithIndex(ix), WithOutputWidth(0))
	assert.Error(t, err)
	_, err = NewRenderer(WithIndex(ix), WithScaleFactor(-1))
	assert.Error(t, err)
}

func TestRendererOutputSize(t *testing.T) {
	r := newTrivialRenderer(t, WithOutputWidth(40))

	w, h := r.OutputSize(200, 100)
	assert.Equal(t, 40, w)
	assert.Equal(t, 10, h)

	_, h = r.OutputSize(1000, 10)
	assert.Equal(t, 1, h)
}

func TestRendererUniformImage(t *testing.T) {
	r := newTrivialRenderer(t, WithOutputWidth(6), WithScaleFactor(1))
	img := imageutil.CreateSolidImage(30, 15, imageutil.RGB{R: 128, G: 128, B: 128})

	text, err := r.RenderImage(img)
	require.NoError(t, err)
	assert.Equal(t, "......\n......\n......", text)
	assert.Equal(t, 1, r.Stats().Frames)
}

func TestRendererKeepsImageUpright(t *testing.T) {
	r := newTrivialRenderer(t, WithOutputWidth(4), WithScaleFactor(1), WithCacheLevels(8))
	img := imageutil.CreateSplitImage(40, 40,
		imageutil.RGB{R: 255, G: 255, B: 255},
		imageutil.RGB{})

	text, err := r.RenderImage(img)
	require.NoError(t, err)
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "####", lines[0])
	assert.Equal(t, "    ", lines[3])
	assert.Positive(t, r.Stats().Cache.Hits)
}

func TestRendererRenderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.png")
	img := imageutil.CreateSolidImage(16, 8, imageutil.RGB{R: 255, G: 255, B: 255})
	require.NoError(t, imageutil.SavePNG(img.RGBA, path))

	profile := filepath.Join(t.TempDir(), "trivial.json")
	require.NoError(t, trivialProfile().SaveProfile(profile))

	r, err := NewRenderer(WithProfile(profile), WithOutputWidth(4))
	require.NoError(t, err)
	text, err := r.RenderFile(path)
	require.NoError(t, err)
	assert.Equal(t, "####", text)

	_, err = r.RenderFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
	_, err = r.RenderImage(nil)
	assert.Error(t, err)
}
